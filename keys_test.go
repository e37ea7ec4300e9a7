package scriptty

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyBytesNamed(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"Enter", "\r"},
		{"enter", "\r"},
		{"CR", "\r"},
		{"Tab", "\t"},
		{"Esc", "\x1b"},
		{"Space", " "},
		{"Backspace", "\x7f"},
		{"BS", "\x7f"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := keyBytes(tt.token)
			require.NoError(t, err)
			require.Equal(t, []byte(tt.want), got)
		})
	}
}

func TestKeyBytesCursorAndEditing(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"Up", "\x1b[A"},
		{"Down", "\x1b[B"},
		{"Right", "\x1b[C"},
		{"Left", "\x1b[D"},
		{"Home", "\x1b[H"},
		{"End", "\x1b[F"},
		{"Ins", "\x1b[2~"},
		{"Del", "\x1b[3~"},
		{"PgUp", "\x1b[5~"},
		{"PgDn", "\x1b[6~"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := keyBytes(tt.token)
			require.NoError(t, err)
			require.Equal(t, []byte(tt.want), got)
		})
	}
}

func TestKeyBytesFunctionKeys(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"F1", "\x1bOP"},
		{"F2", "\x1bOQ"},
		{"F3", "\x1bOR"},
		{"F4", "\x1bOS"},
		{"F5", "\x1b[15~"},
		{"F6", "\x1b[17~"},
		{"F7", "\x1b[18~"},
		{"F8", "\x1b[19~"},
		{"F9", "\x1b[20~"},
		{"F10", "\x1b[21~"},
		{"F11", "\x1b[23~"},
		{"F12", "\x1b[24~"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := keyBytes(tt.token)
			require.NoError(t, err)
			require.Equal(t, []byte(tt.want), got)
		})
	}
}

func TestKeyBytesCtrl(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"C-a", "\x01"},
		{"C-A", "\x01"},
		{"C-c", "\x03"},
		{"C-d", "\x04"},
		{"C-z", "\x1a"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := keyBytes(tt.token)
			require.NoError(t, err)
			require.Equal(t, []byte(tt.want), got)
		})
	}
}

func TestKeyBytesMeta(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"M-x", "\x1bx"},
		{"M-X", "\x1bx"},
		{"A-x", "\x1bx"},
		{"M-.", "\x1b."},
		{"M-C-f", "\x1b\x06"},
		{"C-M-f", "\x1b\x06"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := keyBytes(tt.token)
			require.NoError(t, err)
			require.Equal(t, []byte(tt.want), got)
		})
	}
}

// Modified special keys use the xterm parameter convention:
// 1 + shift(1) + alt(2) + ctrl(4).
func TestKeyBytesModifiedSpecial(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"S-Up", "\x1b[1;2A"},
		{"M-Up", "\x1b[1;3A"},
		{"C-Up", "\x1b[1;5A"},
		{"C-S-Up", "\x1b[1;6A"},
		{"C-M-S-Up", "\x1b[1;8A"},
		{"S-C-Up", "\x1b[1;6A"}, // order of prefixes does not matter
		{"C-Home", "\x1b[1;5H"},
		{"C-Del", "\x1b[3;5~"},
		{"S-PgUp", "\x1b[5;2~"},
		{"C-F1", "\x1b[1;5P"},
		{"S-F3", "\x1b[1;2R"},
		{"C-F5", "\x1b[15;5~"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := keyBytes(tt.token)
			require.NoError(t, err)
			require.Equal(t, []byte(tt.want), got)
		})
	}
}

func TestKeyBytesErrors(t *testing.T) {
	tokens := []string{
		"Bogus",
		"C-Enter", // named keys take no modifiers
		"M-Esc",
		"S-x",  // shift alone has no encoding for plain characters
		"C-1",  // ctrl applies to letters only
		"C-",   // empty name
		"X-a",  // unknown modifier
		"ab",   // multi-character, not a known name
		"\x7f", // outside printable ASCII
	}
	for _, tok := range tokens {
		t.Run(tok, func(t *testing.T) {
			_, err := keyBytes(tok)
			require.Error(t, err)
		})
	}
}
