package scriptty

import (
	"fmt"
	"regexp"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Command is one parsed script command. The concrete types are WaitPattern,
// WaitMs, Send, Snapshot, and Kill; the set is closed.
type Command interface {
	fmt.Stringer
	command()
}

// WaitPattern blocks until the rendered screen matches (or, when Negated,
// stops matching) the pattern, within the wait budget.
type WaitPattern struct {
	Pattern *regexp.Regexp
	Negated bool
	Timeout time.Duration // valid only when HasTimeout
	// HasTimeout distinguishes an explicit budget from the session default.
	HasTimeout bool
}

// WaitMs sleeps for a fixed duration without draining child output.
type WaitMs struct {
	Duration time.Duration
}

// Send injects bytes into the child, optionally interleaved with delays.
type Send struct {
	Parts []SendPart
}

// Snapshot forces a frame to be emitted even if the screen is unchanged.
type Snapshot struct {
	Name string // optional; "" means unnamed
}

// Kill delivers a POSIX signal to the child.
type Kill struct {
	Signal syscall.Signal
}

func (WaitPattern) command() {}
func (WaitMs) command()      {}
func (Send) command()        {}
func (Snapshot) command()    {}
func (Kill) command()        {}

// SendPart is either Bytes or Delay.
type SendPart interface {
	fmt.Stringer
	sendPart()
}

// Bytes is a literal byte run within a send command.
type Bytes []byte

// Delay is a pause between byte runs within a send command.
type Delay time.Duration

func (Bytes) sendPart() {}
func (Delay) sendPart() {}

// String renders the command in script syntax. Parsing the result of String
// on a parsed command yields an equal command.
func (c WaitPattern) String() string {
	var b strings.Builder
	b.WriteString("wait ")
	if c.Negated {
		b.WriteByte('!')
	}
	b.WriteString(quoteString(c.Pattern.String()))
	if c.HasTimeout {
		fmt.Fprintf(&b, " %d", c.Timeout.Milliseconds())
	}
	return b.String()
}

func (c WaitMs) String() string {
	return fmt.Sprintf("wait %d", c.Duration.Milliseconds())
}

func (c Send) String() string {
	parts := make([]string, len(c.Parts))
	for i, p := range c.Parts {
		parts[i] = p.String()
	}
	return "send " + strings.Join(parts, " ")
}

func (c Snapshot) String() string {
	if c.Name == "" {
		return "snapshot"
	}
	return "snapshot " + quoteString(c.Name)
}

func (c Kill) String() string {
	if name := unix.SignalName(c.Signal); name != "" {
		return "kill " + name
	}
	return fmt.Sprintf("kill %d", int(c.Signal))
}

func (b Bytes) String() string {
	return quoteString(string(b))
}

func (d Delay) String() string {
	return fmt.Sprintf("%d", time.Duration(d).Milliseconds())
}

// quoteString renders s as a double-quoted script string literal, escaping
// the sequences the lexer understands.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\x%02X`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
