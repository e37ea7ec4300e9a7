package scriptty

import "fmt"

// ParseError describes a malformed script. Line and Col are 1-based.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Msg)
}

// WaitTimeoutError is returned when a pattern wait exhausts its budget.
type WaitTimeoutError struct {
	Pattern string
	Negated bool
}

func (e *WaitTimeoutError) Error() string {
	if e.Negated {
		return fmt.Sprintf("timeout waiting for absence of: %s", e.Pattern)
	}
	return fmt.Sprintf("timeout waiting for: %s", e.Pattern)
}

// WaitEOFError is returned when the child closes its side of the PTY while
// a pattern wait is still unsatisfied.
type WaitEOFError struct {
	Pattern string
}

func (e *WaitEOFError) Error() string {
	return fmt.Sprintf("EOF while waiting for: %s", e.Pattern)
}
