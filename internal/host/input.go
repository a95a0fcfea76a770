package host

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Op is an input command verb.
type Op string

const (
	OpScroll   Op = "scroll"
	OpScrollBy Op = "scrollby"
	OpResize   Op = "resize"
	OpStatus   Op = "status"
	OpQuit     Op = "quit"
)

// Command is one parsed input line.
type Command struct {
	Op   Op
	A, B float64
}

// ParseCommand parses a single input line. It returns ok=false for blank lines
// and comments.
func ParseCommand(line string) (cmd Command, ok bool, err error) {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, "#") {
		return Command{}, false, nil
	}
	f := strings.Fields(s)
	op := Op(strings.ToLower(f[0]))
	switch op {
	case OpStatus, OpQuit:
		if len(f) != 1 {
			return Command{}, false, fmt.Errorf("%s: takes no arguments", op)
		}
		return Command{Op: op}, true, nil
	case OpScroll, OpScrollBy, OpResize:
		if len(f) != 3 {
			return Command{}, false, fmt.Errorf("%s: want 2 numbers, got %d args", op, len(f)-1)
		}
		a, err := strconv.ParseFloat(f[1], 64)
		if err != nil {
			return Command{}, false, fmt.Errorf("%s: invalid number %q: %w", op, f[1], err)
		}
		b, err := strconv.ParseFloat(f[2], 64)
		if err != nil {
			return Command{}, false, fmt.Errorf("%s: invalid number %q: %w", op, f[2], err)
		}
		if op == OpResize && (a <= 0 || b <= 0) {
			return Command{}, false, fmt.Errorf("resize: width and height must be > 0")
		}
		return Command{Op: op, A: a, B: b}, true, nil
	default:
		return Command{}, false, fmt.Errorf("unknown command %q (use scroll, scrollby, resize, status, quit)", f[0])
	}
}

// Apply performs the viewport part of cmd. Must be called on the loop.
// It reports false for commands the page doesn't handle (status, quit).
func (p *Page) Apply(cmd Command) bool {
	switch cmd.Op {
	case OpScroll:
		p.ScrollTo(cmd.A, cmd.B)
	case OpScrollBy:
		p.ScrollBy(cmd.A, cmd.B)
	case OpResize:
		p.Resize(cmd.A, cmd.B)
	default:
		return false
	}
	return true
}

// Drive reads commands from r until EOF, ctx cancellation or a quit command.
// Viewport commands are applied on the page's loop; everything else goes to
// other (which may be nil). Parse errors are passed to onErr and skipped.
func Drive(ctx context.Context, r io.Reader, p *Page, other func(Command), onErr func(error)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		cmd, ok, err := ParseCommand(sc.Text())
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			continue
		}
		if !ok {
			continue
		}
		switch cmd.Op {
		case OpScroll, OpScrollBy, OpResize:
			if err := p.loop.Call(ctx, func() { p.Apply(cmd) }); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		default:
			if other != nil {
				other(cmd)
			}
			if cmd.Op == OpQuit {
				return nil
			}
		}
	}
	return sc.Err()
}
