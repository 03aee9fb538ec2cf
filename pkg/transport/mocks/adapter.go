// Package mocks provides a testify double for transport.Adapter, for
// expectation-style tests that need to assert exactly which transport
// calls were made. Behavioral tests use internal/testharness instead.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bacworks/bacworks-go/pkg/transport"
)

// Adapter is a testify/mock implementation of transport.Adapter.
type Adapter struct {
	mock.Mock
}

// Compile-time interface satisfaction check.
var _ transport.Adapter = (*Adapter)(nil)

// NewAdapter creates a mock that reports unexpected calls to t and
// asserts its expectations at test cleanup.
func NewAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *Adapter {
	a := &Adapter{}
	a.Mock.Test(t)
	t.Cleanup(func() { a.AssertExpectations(t) })
	return a
}

// Open implements transport.Adapter.
func (a *Adapter) Open(ctx context.Context) error {
	return a.Called(ctx).Error(0)
}

// Send implements transport.Adapter.
func (a *Adapter) Send(ctx context.Context, ep transport.Endpoint, frame []byte, timeout time.Duration) ([]byte, error) {
	ret := a.Called(ctx, ep, frame, timeout)
	var reply []byte
	if ret.Get(0) != nil {
		reply = ret.Get(0).([]byte)
	}
	return reply, ret.Error(1)
}

// Broadcast implements transport.Adapter.
func (a *Adapter) Broadcast(ctx context.Context, frame []byte, window time.Duration) ([]transport.Reply, error) {
	ret := a.Called(ctx, frame, window)
	var replies []transport.Reply
	if ret.Get(0) != nil {
		replies = ret.Get(0).([]transport.Reply)
	}
	return replies, ret.Error(1)
}

// Close implements transport.Adapter.
func (a *Adapter) Close() error {
	return a.Called().Error(0)
}
