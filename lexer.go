package scriptty

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	// tokWord is a bare token: a command keyword, duration, signal, etc.
	tokWord tokenKind = iota
	// tokString is a double-quoted literal; text holds the decoded bytes.
	tokString
	// tokKey is a <...> key token; text holds the inner name.
	tokKey
	// tokBang is the negation marker before a wait pattern.
	tokBang
)

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

// lexLine tokenizes one script line. The caller has already stripped blank
// and comment lines. Columns are 1-based byte offsets.
func lexLine(line string, lineno int) ([]token, error) {
	var toks []token
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t':
			i++

		case c == '"':
			start := i
			text, next, err := lexString(line, i)
			if err != nil {
				return nil, &ParseError{Line: lineno, Col: start + 1, Msg: err.Error()}
			}
			toks = append(toks, token{kind: tokString, text: text, line: lineno, col: start + 1})
			i = next

		case c == '<':
			start := i
			end := strings.IndexByte(line[i:], '>')
			if end < 0 {
				return nil, &ParseError{Line: lineno, Col: start + 1, Msg: "unterminated key token"}
			}
			toks = append(toks, token{kind: tokKey, text: line[i+1 : i+end], line: lineno, col: start + 1})
			i += end + 1

		case c == '!' && i+1 < len(line) && line[i+1] == '"':
			toks = append(toks, token{kind: tokBang, text: "!", line: lineno, col: i + 1})
			i++

		default:
			start := i
			for i < len(line) && line[i] != ' ' && line[i] != '\t' {
				i++
			}
			toks = append(toks, token{kind: tokWord, text: line[start:i], line: lineno, col: start + 1})
		}
	}
	return toks, nil
}

// lexString decodes a double-quoted literal starting at line[i] == '"'.
// It returns the decoded text and the index just past the closing quote.
func lexString(line string, i int) (string, int, error) {
	var b strings.Builder
	i++ // opening quote
	for i < len(line) {
		c := line[i]
		switch c {
		case '"':
			return b.String(), i + 1, nil
		case '\\':
			i++
			if i >= len(line) {
				return "", 0, fmt.Errorf("unterminated string")
			}
			switch e := line[i]; e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case 'x':
				if i+2 >= len(line) {
					return "", 0, fmt.Errorf("truncated \\x escape")
				}
				hi, ok1 := hexVal(line[i+1])
				lo, ok2 := hexVal(line[i+2])
				if !ok1 || !ok2 {
					return "", 0, fmt.Errorf("invalid \\x escape %q", line[i:i+3])
				}
				b.WriteByte(hi<<4 | lo)
				i += 2
			default:
				return "", 0, fmt.Errorf("unknown escape \\%c", e)
			}
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", 0, fmt.Errorf("unterminated string")
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
