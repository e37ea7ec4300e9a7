package scriptty

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Session drives a child process under a PTY through a parsed script. It
// owns the event loop: before each command it drains pending child output
// into the screen, then dispatches the command; after the last command it
// drains to EOF and reaps the child.
type Session struct {
	child  *child
	screen *Screen
	script []Command
	opts   options
	buf    []byte

	// finishing is set once EOF has been observed on the master; any
	// remaining script commands are skipped.
	finishing bool
	// everRead tracks whether the screen has seen any output; negated
	// waits cannot be satisfied before it is set.
	everRead bool
}

// NewSession spawns `sh -c command` under a fresh PTY and prepares the
// script for execution. The script must already be parsed; parse failures
// should never spawn a child.
func NewSession(command string, script []Command, userOpts ...Option) (*Session, error) {
	opts := defaultOptions()
	for _, o := range userOpts {
		o(&opts)
	}
	if opts.cols <= 0 || opts.rows <= 0 || opts.cols > 0xffff || opts.rows > 0xffff {
		return nil, fmt.Errorf("invalid terminal size %dx%d", opts.cols, opts.rows)
	}

	child, err := startChild(command, uint16(opts.cols), uint16(opts.rows))
	if err != nil {
		return nil, err
	}

	return &Session{
		child:  child,
		screen: NewScreen(opts.cols, opts.rows),
		script: script,
		opts:   opts,
		buf:    make([]byte, 4096),
	}, nil
}

// Run executes the script and returns the child's translated exit code.
// Wait timeouts, EOF during a pattern wait, master I/O errors, and sink
// failures are fatal; the child is killed and the error returned.
func (s *Session) Run(ctx context.Context) (int, error) {
	defer s.child.close()

	code, err := s.run(ctx)
	if err != nil {
		_ = s.child.kill(unix.SIGKILL)
		s.child.wait()
		return 0, err
	}
	return code, nil
}

func (s *Session) run(ctx context.Context) (int, error) {
	for _, cmd := range s.script {
		if err := s.drain(preDrainReadTimeout); err != nil {
			return 0, err
		}
		if s.finishing {
			break
		}
		if err := s.execute(ctx, cmd); err != nil {
			return 0, err
		}
		if s.finishing {
			break
		}
	}

	if !s.finishing {
		if err := s.drainUntilEOF(); err != nil {
			return 0, err
		}
	}

	code := s.child.wait()
	if err := s.opts.log.Exit(code); err != nil {
		return 0, err
	}
	return code, nil
}

func (s *Session) execute(ctx context.Context, cmd Command) error {
	switch c := cmd.(type) {
	case WaitPattern:
		return s.waitPattern(ctx, c)

	case WaitMs:
		// Time-based waits are intentionally oblivious to output; the
		// next pre-drain picks up whatever arrived during the sleep.
		return s.opts.clock.sleep(ctx, c.Duration)

	case Send:
		for _, part := range c.Parts {
			switch p := part.(type) {
			case Bytes:
				if err := s.opts.log.Send(lossyString(p)); err != nil {
					return err
				}
				if err := s.child.write(p); err != nil {
					return err
				}
			case Delay:
				if err := s.opts.clock.sleep(ctx, time.Duration(p)); err != nil {
					return err
				}
			}
		}
		return nil

	case Snapshot:
		seq, err := s.screen.ForceSave(s.opts.sink)
		if err != nil {
			return err
		}
		return s.opts.log.Snapshot(seq, c.Name)

	case Kill:
		name := signalName(c.Signal)
		if err := s.opts.log.Kill(name); err != nil {
			return err
		}
		if err := s.child.kill(c.Signal); err != nil {
			// Non-fatal: the child may already have exited.
			fmt.Fprintf(os.Stderr, "scriptty: kill %s: %v\n", name, err)
		}
		return nil
	}
	return fmt.Errorf("unhandled command %T", cmd)
}

// waitPattern loops: evaluate the match condition, check the deadline, then
// perform one bounded read. The order matters: a pattern already on screen
// satisfies even a zero timeout, and a zero timeout with an unsatisfied
// condition fails without reading.
func (s *Session) waitPattern(ctx context.Context, c WaitPattern) error {
	budget := s.opts.waitTimeout
	if c.HasTimeout {
		budget = c.Timeout
	}
	deadline := s.opts.clock.now().Add(budget)
	pattern := c.Pattern.String()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		matched := s.screen.Matches(c.Pattern)
		satisfied := matched != c.Negated
		if c.Negated && !s.everRead {
			// Absence means nothing until the screen has been fed.
			satisfied = false
		}
		if satisfied {
			return s.opts.log.WaitMatch(pattern)
		}

		if s.opts.clock.now().After(deadline) {
			if err := s.opts.log.WaitTimeout(pattern); err != nil {
				return err
			}
			return &WaitTimeoutError{Pattern: pattern, Negated: c.Negated}
		}

		n, err := s.child.readTimeout(s.buf, waitReadTimeout)
		switch {
		case errors.Is(err, errReadTimeout):
			continue
		case errors.Is(err, io.EOF):
			s.finishing = true
			if logErr := s.opts.log.WaitEOF(pattern); logErr != nil {
				return logErr
			}
			return &WaitEOFError{Pattern: pattern}
		case err != nil:
			return err
		}
		if err := s.ingest(s.buf[:n]); err != nil {
			return err
		}
	}
}

// drain absorbs pending child output until one bounded read comes back
// empty. EOF flips the session into finishing mode instead of failing.
func (s *Session) drain(timeout time.Duration) error {
	for {
		n, err := s.child.readTimeout(s.buf, timeout)
		switch {
		case errors.Is(err, errReadTimeout):
			return nil
		case errors.Is(err, io.EOF):
			s.finishing = true
			return nil
		case err != nil:
			return err
		}
		if err := s.ingest(s.buf[:n]); err != nil {
			return err
		}
	}
}

// drainUntilEOF runs after the last command, absorbing everything the
// child produces until it closes its side.
func (s *Session) drainUntilEOF() error {
	for {
		n, err := s.child.readTimeout(s.buf, finalDrainReadTimeout)
		switch {
		case errors.Is(err, errReadTimeout):
			continue
		case errors.Is(err, io.EOF):
			s.finishing = true
			return nil
		case err != nil:
			return err
		}
		if err := s.ingest(s.buf[:n]); err != nil {
			return err
		}
	}
}

// ingest feeds one master read into the raw log and the screen, emitting a
// frame when the rendered grid changed.
func (s *Session) ingest(data []byte) error {
	s.everRead = true
	if s.opts.raw != nil {
		if _, err := s.opts.raw.Write(data); err != nil {
			return err
		}
	}
	s.screen.Feed(data)
	seq, emitted, err := s.screen.SaveIfChanged(s.opts.sink)
	if err != nil {
		return err
	}
	if emitted {
		return s.opts.log.Frame(seq)
	}
	return nil
}

// lossyString decodes b as UTF-8, substituting the replacement character
// for invalid sequences. Event logs carry this form.
func lossyString(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

func signalName(sig syscall.Signal) string {
	if name := unix.SignalName(sig); name != "" {
		return name
	}
	return fmt.Sprintf("%d", int(sig))
}
