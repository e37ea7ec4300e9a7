package scriptty

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Parse turns script text into a command list. Blank lines and lines whose
// first non-whitespace character is '#' are skipped; every other line is
// exactly one command. Errors carry the 1-based line and column of the
// offending token.
func Parse(src string) ([]Command, error) {
	var cmds []Command
	for idx, raw := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || trimmed[0] == '#' {
			continue
		}
		toks, err := lexLine(strings.TrimSuffix(raw, "\r"), idx+1)
		if err != nil {
			return nil, err
		}
		cmd, err := parseCommand(toks)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func parseCommand(toks []token) (Command, error) {
	head := toks[0]
	if head.kind != tokWord {
		return nil, errAt(head, "expected a command keyword")
	}
	switch head.text {
	case "wait":
		return parseWait(head, toks[1:])
	case "send":
		return parseSend(head, toks[1:])
	case "snapshot":
		return parseSnapshot(head, toks[1:])
	case "kill":
		return parseKill(head, toks[1:])
	}
	return nil, errAt(head, fmt.Sprintf("unknown command %q", head.text))
}

// parseWait handles both forms: "wait <duration>" and
// "wait [!]<pattern> [<timeout>]". A bare integer or duration literal after
// the keyword selects the timed form.
func parseWait(head token, args []token) (Command, error) {
	if len(args) == 0 {
		return nil, errAt(head, "wait requires a pattern or duration")
	}

	if args[0].kind == tokWord {
		d, ok := parseDurationToken(args[0].text)
		if !ok {
			return nil, errAt(args[0], fmt.Sprintf("expected pattern or duration, got %q", args[0].text))
		}
		if len(args) > 1 {
			return nil, errAt(args[1], "unexpected token after wait duration")
		}
		return WaitMs{Duration: d}, nil
	}

	var negated bool
	i := 0
	if args[i].kind == tokBang {
		negated = true
		i++
	}
	if i >= len(args) || args[i].kind != tokString {
		return nil, errAt(args[min(i, len(args)-1)], "expected quoted pattern")
	}
	re, err := regexp.Compile(args[i].text)
	if err != nil {
		return nil, errAt(args[i], fmt.Sprintf("bad pattern: %v", err))
	}
	cmd := WaitPattern{Pattern: re, Negated: negated}
	i++
	if i < len(args) {
		if args[i].kind != tokWord {
			return nil, errAt(args[i], "unexpected token after pattern")
		}
		d, ok := parseDurationToken(args[i].text)
		if !ok {
			return nil, errAt(args[i], fmt.Sprintf("bad timeout %q", args[i].text))
		}
		cmd.Timeout = d
		cmd.HasTimeout = true
		i++
	}
	if i < len(args) {
		return nil, errAt(args[i], "unexpected token after wait command")
	}
	return cmd, nil
}

// parseSend builds the part list. Strings and key tokens concatenate into
// the current Bytes part; a duration flushes it and inserts a Delay.
func parseSend(head token, args []token) (Command, error) {
	if len(args) == 0 {
		return nil, errAt(head, "send requires at least one part")
	}

	var parts []SendPart
	var cur []byte
	haveCur := false
	flush := func() {
		if haveCur {
			parts = append(parts, Bytes(cur))
			cur = nil
			haveCur = false
		}
	}

	for _, t := range args {
		switch t.kind {
		case tokString:
			cur = append(cur, t.text...)
			haveCur = true
		case tokKey:
			b, err := keyBytes(t.text)
			if err != nil {
				return nil, errAt(t, err.Error())
			}
			cur = append(cur, b...)
			haveCur = true
		case tokWord:
			d, ok := parseDurationToken(t.text)
			if !ok {
				return nil, errAt(t, fmt.Sprintf("expected string, key, or delay, got %q", t.text))
			}
			flush()
			parts = append(parts, Delay(d))
		default:
			return nil, errAt(t, "unexpected token in send command")
		}
	}
	flush()
	return Send{Parts: parts}, nil
}

func parseSnapshot(head token, args []token) (Command, error) {
	switch len(args) {
	case 0:
		return Snapshot{}, nil
	case 1:
		if args[0].kind != tokString {
			return nil, errAt(args[0], "snapshot name must be a quoted string")
		}
		return Snapshot{Name: args[0].text}, nil
	}
	return nil, errAt(args[1], "unexpected token after snapshot name")
}

func parseKill(head token, args []token) (Command, error) {
	if len(args) != 1 || args[0].kind != tokWord {
		return nil, errAt(head, "kill requires a signal name or number")
	}
	sig, err := parseSignal(args[0].text)
	if err != nil {
		return nil, errAt(args[0], err.Error())
	}
	return Kill{Signal: sig}, nil
}

// parseSignal accepts a decimal signal number or a symbolic name, with or
// without the SIG prefix, case-insensitively.
func parseSignal(s string) (syscall.Signal, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("bad signal number %d", n)
		}
		return syscall.Signal(n), nil
	}
	name := strings.ToUpper(s)
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}
	sig := unix.SignalNum(name)
	if sig == 0 {
		return 0, fmt.Errorf("unknown signal %q", s)
	}
	return sig, nil
}

// parseDurationToken parses N, Nms, Ns, and Nm forms, where N is a
// non-negative decimal integer. A bare integer means milliseconds.
func parseDurationToken(s string) (time.Duration, bool) {
	num := s
	unit := time.Millisecond
	switch {
	case strings.HasSuffix(s, "ms"):
		num = s[:len(s)-2]
	case strings.HasSuffix(s, "s"):
		num = s[:len(s)-1]
		unit = time.Second
	case strings.HasSuffix(s, "m"):
		num = s[:len(s)-1]
		unit = time.Minute
	}
	if num == "" {
		return 0, false
	}
	for i := 0; i < len(num); i++ {
		if num[i] < '0' || num[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(n) * unit, true
}

func errAt(t token, msg string) error {
	return &ParseError{Line: t.line, Col: t.col, Msg: msg}
}
