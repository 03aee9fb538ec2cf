package testharness

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bacworks/bacworks-go/pkg/transport"
	"github.com/bacworks/bacworks-go/pkg/wire"
)

func TestScriptedAdapterPlaysSteps(t *testing.T) {
	oid := wire.ObjectID{Type: wire.ObjectTypeAnalogInput, Instance: 3}
	ack := wire.WrapAPDU(wire.ComplexACKAPDU(1, oid, wire.PropPresentValue, wire.AppendAppReal(nil, 21.5)))

	a := NewScriptedAdapter(
		Step{Err: transport.ErrTimeout},
		Step{Reply: ack},
	)
	if err := a.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	frame := wire.EncodeReadProperty(1, oid, wire.PropPresentValue)
	if _, err := a.Send(context.Background(), transport.Endpoint{}, frame, time.Second); !errors.Is(err, transport.ErrTimeout) {
		t.Fatalf("step 1: got %v, want ErrTimeout", err)
	}
	reply, err := a.Send(context.Background(), transport.Endpoint{}, frame, time.Second)
	if err != nil {
		t.Fatalf("step 2: %v", err)
	}
	if !bytes.Equal(reply, ack) {
		t.Errorf("step 2 reply mismatch")
	}

	// The script is exhausted; the last step keeps answering.
	reply, err = a.Send(context.Background(), transport.Endpoint{}, frame, time.Second)
	if err != nil {
		t.Fatalf("step 3: %v", err)
	}
	if !bytes.Equal(reply, ack) {
		t.Errorf("step 3 reply mismatch")
	}
}

func TestScriptedAdapterEmptyScriptTimesOut(t *testing.T) {
	a := NewScriptedAdapter()
	if err := a.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := a.Send(context.Background(), transport.Endpoint{}, []byte{0x01}, time.Second); !errors.Is(err, transport.ErrTimeout) {
			t.Fatalf("send %d: got %v, want ErrTimeout", i, err)
		}
	}
}

func TestScriptedAdapterRecordsSentFrames(t *testing.T) {
	a := NewScriptedAdapter(Step{Err: transport.ErrTimeout})
	if err := a.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	first := []byte{0x81, 0x0a}
	second := []byte{0x81, 0x0b}
	a.Send(context.Background(), transport.Endpoint{}, first, time.Second)
	a.Send(context.Background(), transport.Endpoint{}, second, time.Second)

	sent := a.Sent()
	if len(sent) != 2 {
		t.Fatalf("sent frames: got %d, want 2", len(sent))
	}
	if !bytes.Equal(sent[0], first) || !bytes.Equal(sent[1], second) {
		t.Errorf("sent frames mismatch: %x, %x", sent[0], sent[1])
	}

	// Mutating the caller's buffer must not change the record.
	first[0] = 0xff
	if a.Sent()[0][0] != 0x81 {
		t.Error("sent frame aliases the caller's buffer")
	}
}

func TestScriptedAdapterBroadcast(t *testing.T) {
	canned := []transport.Reply{{Addr: "10.0.0.9:47808", Frame: wire.EncodeIAm(99, 480, 7)}}
	a := NewScriptedAdapter()
	a.BroadcastReplies = canned
	if err := a.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	replies, err := a.Broadcast(context.Background(), wire.EncodeWhoIs(-1, -1), time.Second)
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if len(replies) != 1 || replies[0].Addr != "10.0.0.9:47808" {
		t.Errorf("broadcast replies mismatch: %+v", replies)
	}

	a.BroadcastErr = transport.ErrTimeout
	if _, err := a.Broadcast(context.Background(), wire.EncodeWhoIs(-1, -1), time.Second); !errors.Is(err, transport.ErrTimeout) {
		t.Fatalf("scripted broadcast error: got %v, want ErrTimeout", err)
	}
}

func TestScriptedAdapterLifecycle(t *testing.T) {
	a := NewScriptedAdapter(Step{Reply: []byte{0x81}})

	if _, err := a.Send(context.Background(), transport.Endpoint{}, []byte{0x01}, time.Second); !errors.Is(err, transport.ErrNotOpen) {
		t.Fatalf("send before open: got %v, want ErrNotOpen", err)
	}
	if err := a.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := a.Send(context.Background(), transport.Endpoint{}, []byte{0x01}, time.Second); !errors.Is(err, transport.ErrClosed) {
		t.Fatalf("send after close: got %v, want ErrClosed", err)
	}
	if err := a.Open(context.Background()); !errors.Is(err, transport.ErrClosed) {
		t.Fatalf("reopen: got %v, want ErrClosed", err)
	}
}
