package scriptty

import (
	"fmt"
	"strings"
)

// keyBytes translates the inner text of a <...> key token into the byte
// sequence a terminal would produce for that key. Letter names are
// case-insensitive and modifier prefixes (C-, M-, A-, S-) may appear in any
// order.
func keyBytes(token string) ([]byte, error) {
	var ctrl, meta, shift bool

	rest := token
	for len(rest) > 2 && rest[1] == '-' {
		switch rest[0] {
		case 'C', 'c':
			ctrl = true
		case 'M', 'm', 'A', 'a':
			meta = true
		case 'S', 's':
			shift = true
		default:
			return nil, fmt.Errorf("unknown modifier %q in key <%s>", rest[:1], token)
		}
		rest = rest[2:]
	}

	if rest == "" {
		return nil, fmt.Errorf("empty key name in <%s>", token)
	}

	name := strings.ToLower(rest)

	// Plain named keys. Modifiers do not produce distinct sequences for
	// these, so reject them rather than guess.
	if seq, ok := namedKeys[name]; ok {
		if ctrl || meta || shift {
			return nil, fmt.Errorf("modifiers do not apply to <%s>", rest)
		}
		return []byte(seq), nil
	}

	// xterm modifier parameter: 1 + shift(1) + alt(2) + ctrl(4).
	mod := 1
	if shift {
		mod++
	}
	if meta {
		mod += 2
	}
	if ctrl {
		mod += 4
	}

	// Cursor-style keys: ESC [ X, or CSI 1;mod X when modified.
	if final, ok := cursorKeys[name]; ok {
		if mod == 1 {
			return []byte{0x1b, '[', final}, nil
		}
		return []byte(fmt.Sprintf("\x1b[1;%d%c", mod, final)), nil
	}

	// Tilde-coded keys: CSI code ~, or CSI code;mod ~.
	if code, ok := tildeKeys[name]; ok {
		if mod == 1 {
			return []byte(fmt.Sprintf("\x1b[%d~", code)), nil
		}
		return []byte(fmt.Sprintf("\x1b[%d;%d~", code, mod)), nil
	}

	// F1-F4 are SS3 sequences unmodified, CSI 1;mod when modified.
	if final, ok := ss3Keys[name]; ok {
		if mod == 1 {
			return []byte{0x1b, 'O', final}, nil
		}
		return []byte(fmt.Sprintf("\x1b[1;%d%c", mod, final)), nil
	}

	// Single ASCII character with modifiers.
	if len(rest) == 1 {
		c := rest[0]
		if c < 0x21 || c > 0x7e {
			return nil, fmt.Errorf("unknown key <%s>", token)
		}
		switch {
		case ctrl:
			if !isASCIILetter(c) {
				return nil, fmt.Errorf("Ctrl does not apply to <%s>", token)
			}
			b := c & 0x1f
			if meta {
				return []byte{0x1b, b}, nil
			}
			return []byte{b}, nil
		case meta:
			return []byte{0x1b, lowerASCII(c)}, nil
		case shift:
			return nil, fmt.Errorf("Shift does not apply to <%s>", token)
		}
	}

	return nil, fmt.Errorf("unknown key <%s>", token)
}

var namedKeys = map[string]string{
	"enter":     "\r",
	"cr":        "\r",
	"tab":       "\t",
	"esc":       "\x1b",
	"space":     " ",
	"backspace": "\x7f",
	"bs":        "\x7f",
}

var cursorKeys = map[string]byte{
	"up":    'A',
	"down":  'B',
	"right": 'C',
	"left":  'D',
	"home":  'H',
	"end":   'F',
}

var tildeKeys = map[string]int{
	"ins":  2,
	"del":  3,
	"pgup": 5,
	"pgdn": 6,
	"f5":   15,
	"f6":   17,
	"f7":   18,
	"f8":   19,
	"f9":   20,
	"f10":  21,
	"f11":  23,
	"f12":  24,
}

var ss3Keys = map[string]byte{
	"f1": 'P',
	"f2": 'Q',
	"f3": 'R',
	"f4": 'S',
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
