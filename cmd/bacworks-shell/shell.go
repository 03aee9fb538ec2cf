package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/bacworks/bacworks-go/pkg/inspect"
	"github.com/bacworks/bacworks-go/pkg/object"
	"github.com/bacworks/bacworks-go/pkg/session"
	"github.com/bacworks/bacworks-go/pkg/wire"
)

// shell is the interactive command loop around one open session.
type shell struct {
	sess *session.Session
	rl   *readline.Instance
}

func newShell(sess *session.Session, history string) (*shell, error) {
	s := &shell{sess: sess}

	completer := readline.NewPrefixCompleter(
		readline.PcItem("scan"),
		readline.PcItem("add"),
		readline.PcItem("remove", readline.PcItemDynamic(s.objectNames)),
		readline.PcItem("objects"),
		readline.PcItem("read", readline.PcItemDynamic(s.objectNames)),
		readline.PcItem("write", readline.PcItemDynamic(s.objectNames)),
		readline.PcItem("stats"),
		readline.PcItem("health"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "bacworks> ",
		HistoryFile:     history,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("create readline: %w", err)
	}
	s.rl = rl
	return s, nil
}

// objectNames feeds tab completion with the current registry.
func (s *shell) objectNames(string) []string {
	objs := s.sess.Objects()
	names := make([]string, 0, len(objs))
	for _, o := range objs {
		names = append(names, o.Name)
	}
	return names
}

func (s *shell) run(ctx context.Context) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "bye")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()
		case "scan":
			s.cmdScan(ctx, args)
		case "add":
			s.cmdAdd(args)
		case "remove", "rm":
			s.cmdRemove(args)
		case "objects", "ls":
			fmt.Fprint(s.rl.Stdout(), inspect.FormatObjects(s.sess.Objects()))
		case "read", "r":
			s.cmdRead(ctx, args)
		case "write", "w":
			s.cmdWrite(ctx, args)
		case "stats":
			fmt.Fprint(s.rl.Stdout(), inspect.FormatSnapshot(s.sess.Stats()))
		case "health":
			fmt.Fprintln(s.rl.Stdout(), s.sess.Health())
		case "quit", "exit", "q":
			return
		default:
			fmt.Fprintf(s.rl.Stdout(), "unknown command %q, try help\n", cmd)
		}
	}
}

func (s *shell) printHelp() {
	fmt.Fprint(s.rl.Stdout(), `Commands:
  scan [window]              Who-Is sweep of the local broadcast domain
  add <name> <type> <inst>   Track an object (types: ai ao av bi bo bv msi mso msv string-value device)
  remove <name>              Stop tracking an object
  objects                    List tracked objects
  read [name [property]]     Read one object, or sweep all
  write <name> <value>       Write a present value
  stats                      Request statistics for the device
  health                     Health verdict for the device
  quit                       Exit
`)
}

func (s *shell) cmdScan(ctx context.Context, args []string) {
	window := time.Duration(0)
	if len(args) > 0 {
		parsed, err := time.ParseDuration(args[0])
		if err != nil {
			fmt.Fprintf(s.rl.Stdout(), "bad window %q: %v\n", args[0], err)
			return
		}
		window = parsed
	}

	devices, err := s.sess.Discover(ctx, window)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "scan failed: %v\n", err)
		return
	}
	fmt.Fprint(s.rl.Stdout(), inspect.FormatDevices(devices))
}

func (s *shell) cmdAdd(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(s.rl.Stdout(), "usage: add <name> <type> <instance> [unit]")
		return
	}

	kind, ok := object.KindByName(args[1])
	if !ok {
		fmt.Fprintf(s.rl.Stdout(), "unknown object type %q\n", args[1])
		return
	}
	instance, err := strconv.ParseUint(args[2], 10, 32)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "bad instance %q\n", args[2])
		return
	}

	obj := object.Object{Kind: kind, Instance: uint32(instance), Name: args[0]}
	if len(args) > 3 {
		obj.Unit = args[3]
	}

	if err := s.sess.AddObject(obj); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "add failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "tracking %s\n", obj)
}

func (s *shell) cmdRemove(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stdout(), "usage: remove <name>")
		return
	}
	if !s.sess.RemoveObject(args[0]) {
		fmt.Fprintf(s.rl.Stdout(), "not tracked: %s\n", args[0])
	}
}

func (s *shell) cmdRead(ctx context.Context, args []string) {
	if len(args) == 0 {
		results, err := s.sess.ReadObjects(ctx)
		if err != nil {
			fmt.Fprintf(s.rl.Stdout(), "sweep failed: %v\n", err)
		}
		fmt.Fprint(s.rl.Stdout(), inspect.FormatResults(results))
		return
	}

	prop := wire.PropertyID(0)
	if len(args) > 1 {
		parsed, ok := wire.PropertyByName(args[1])
		if !ok {
			fmt.Fprintf(s.rl.Stdout(), "unknown property %q\n", args[1])
			return
		}
		prop = parsed
	}

	reading, err := s.sess.ReadProperty(ctx, args[0], prop)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "read failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "%s = %s\n", args[0],
		inspect.FormatValue(reading.Value, reading.Object.Unit))
}

func (s *shell) cmdWrite(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.rl.Stdout(), "usage: write <name> <value>")
		return
	}

	obj, found := find(s.sess.Objects(), args[0])
	if !found {
		fmt.Fprintf(s.rl.Stdout(), "not tracked: %s\n", args[0])
		return
	}

	value, err := parseValue(obj.Kind, args[1])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "%v\n", err)
		return
	}

	if err := s.sess.WriteObject(ctx, args[0], value); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "write failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "wrote %v to %s\n", value, args[0])
}

func find(objs []object.Object, name string) (object.Object, bool) {
	for _, o := range objs {
		if o.Name == name {
			return o, true
		}
	}
	return object.Object{}, false
}

// parseValue converts shell input into the Go type the object's kind
// expects, so validation errors name the real problem instead of a
// string mismatch.
func parseValue(kind object.Kind, raw string) (any, error) {
	switch kind {
	case object.KindAnalogInput, object.KindAnalogOutput, object.KindAnalogValue:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("bad analog value %q", raw)
		}
		return v, nil

	case object.KindBinaryInput, object.KindBinaryOutput, object.KindBinaryValue:
		switch strings.ToLower(raw) {
		case "true", "on", "active", "1":
			return true, nil
		case "false", "off", "inactive", "0":
			return false, nil
		}
		return nil, fmt.Errorf("bad binary value %q (true/false, on/off, active/inactive)", raw)

	case object.KindMultiStateInput, object.KindMultiStateOutput, object.KindMultiStateValue:
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad state number %q", raw)
		}
		return uint64(v), nil

	default:
		return raw, nil
	}
}
