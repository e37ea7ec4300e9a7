package scriptty

import (
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseWaitPattern(t *testing.T) {
	cmds, err := Parse(`wait "Ready>"`)
	require.NoError(t, err)
	require.Len(t, cmds, 1)

	w, ok := cmds[0].(WaitPattern)
	require.True(t, ok, "expected WaitPattern, got %T", cmds[0])
	require.Equal(t, "Ready>", w.Pattern.String())
	require.False(t, w.Negated)
	require.False(t, w.HasTimeout)
}

func TestParseWaitPatternWithTimeout(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{`wait "x" 250`, 250 * time.Millisecond},
		{`wait "x" 250ms`, 250 * time.Millisecond},
		{`wait "x" 2s`, 2 * time.Second},
		{`wait "x" 1m`, time.Minute},
		{`wait "x" 0`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cmds, err := Parse(tt.in)
			require.NoError(t, err)
			w := cmds[0].(WaitPattern)
			require.True(t, w.HasTimeout)
			require.Equal(t, tt.want, w.Timeout)
		})
	}
}

func TestParseWaitNegated(t *testing.T) {
	cmds, err := Parse(`wait !"Loading" 2s`)
	require.NoError(t, err)

	w := cmds[0].(WaitPattern)
	require.True(t, w.Negated)
	require.Equal(t, "Loading", w.Pattern.String())
	require.Equal(t, 2*time.Second, w.Timeout)
}

func TestParseWaitMs(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"wait 2000", 2 * time.Second},
		{"wait 100ms", 100 * time.Millisecond},
		{"wait 3s", 3 * time.Second},
		{"wait 1m", time.Minute},
		{"wait 0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cmds, err := Parse(tt.in)
			require.NoError(t, err)
			require.Equal(t, WaitMs{Duration: tt.want}, cmds[0])
		})
	}
}

func TestParseSendText(t *testing.T) {
	cmds, err := Parse(`send "hello\n"`)
	require.NoError(t, err)
	require.Equal(t, Send{Parts: []SendPart{Bytes("hello\n")}}, cmds[0])
}

func TestParseSendKeys(t *testing.T) {
	cmds, err := Parse(`send <Up> <C-d>`)
	require.NoError(t, err)
	require.Equal(t, Send{Parts: []SendPart{Bytes("\x1b[A\x04")}}, cmds[0])
}

func TestParseSendMergesBytesAroundDelays(t *testing.T) {
	cmds, err := Parse(`send "a" <Enter> 50 "b" 100ms <Tab> "c"`)
	require.NoError(t, err)

	want := Send{Parts: []SendPart{
		Bytes("a\r"),
		Delay(50 * time.Millisecond),
		Bytes("b"),
		Delay(100 * time.Millisecond),
		Bytes("\tc"),
	}}
	require.Equal(t, want, cmds[0])
}

func TestParseSendOnlyDelay(t *testing.T) {
	cmds, err := Parse(`send 500`)
	require.NoError(t, err)
	require.Equal(t, Send{Parts: []SendPart{Delay(500 * time.Millisecond)}}, cmds[0])
}

func TestParseSendEscapes(t *testing.T) {
	cmds, err := Parse(`send "a\r\t\\\"\x1b\x00z"`)
	require.NoError(t, err)
	require.Equal(t, Send{Parts: []SendPart{Bytes("a\r\t\\\"\x1b\x00z")}}, cmds[0])
}

func TestParseSnapshot(t *testing.T) {
	cmds, err := Parse("snapshot\nsnapshot \"initial-state\"")
	require.NoError(t, err)
	require.Equal(t, Snapshot{}, cmds[0])
	require.Equal(t, Snapshot{Name: "initial-state"}, cmds[1])
}

func TestParseKill(t *testing.T) {
	tests := []struct {
		in   string
		want syscall.Signal
	}{
		{"kill TERM", syscall.SIGTERM},
		{"kill SIGTERM", syscall.SIGTERM},
		{"kill sigterm", syscall.SIGTERM},
		{"kill term", syscall.SIGTERM},
		{"kill KILL", syscall.SIGKILL},
		{"kill HUP", syscall.SIGHUP},
		{"kill INT", syscall.SIGINT},
		{"kill QUIT", syscall.SIGQUIT},
		{"kill USR1", syscall.SIGUSR1},
		{"kill USR2", syscall.SIGUSR2},
		{"kill 9", syscall.SIGKILL},
		{"kill 15", syscall.SIGTERM},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cmds, err := Parse(tt.in)
			require.NoError(t, err)
			require.Equal(t, Kill{Signal: tt.want}, cmds[0])
		})
	}
}

func TestParseSkipsBlankAndCommentLines(t *testing.T) {
	src := `
# a comment
   # indented comment

wait 100

snapshot
`
	cmds, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, cmds, 2)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"unknown command", "explode", 1, `unknown command "explode"`},
		{"unknown command line number", "wait 100\nsnap", 2, `unknown command "snap"`},
		{"wait missing argument", "wait", 1, "pattern or duration"},
		{"wait bad regex", `wait "("`, 1, "bad pattern"},
		{"wait bad timeout", `wait "x" nope`, 1, `bad timeout "nope"`},
		{"wait trailing garbage", `wait 100 200`, 1, "unexpected token"},
		{"send empty", "send", 1, "at least one part"},
		{"send bad word", `send noquotes`, 1, "expected string, key, or delay"},
		{"send unknown key", "send <Bogus>", 1, "unknown key <Bogus>"},
		{"unterminated string", `send "abc`, 1, "unterminated string"},
		{"unterminated key", "send <Enter", 1, "unterminated key token"},
		{"bad escape", `send "a\qb"`, 1, `unknown escape \q`},
		{"bad hex escape", `send "\xZZ"`, 1, `invalid \x escape`},
		{"snapshot bare word name", "snapshot name", 1, "quoted string"},
		{"kill missing signal", "kill", 1, "signal name or number"},
		{"kill unknown signal", "kill SIGBOGUS", 1, `unknown signal "SIGBOGUS"`},
		{"kill bad number", "kill -3", 1, "bad signal number -3"},
		{"negative duration", "wait -5", 1, "pattern or duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			require.Equal(t, tt.line, pe.Line)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseErrorColumn(t *testing.T) {
	_, err := Parse(`wait "ok" huh`)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, 1, pe.Line)
	require.Equal(t, 11, pe.Col)
}

func TestParseIsDeterministic(t *testing.T) {
	src := `wait "Ready>" 2s
send "hello" 50 <Enter>
snapshot "done"
kill TERM`
	a, err := Parse(src)
	require.NoError(t, err)
	b, err := Parse(src)
	require.NoError(t, err)

	require.Equal(t, printScript(a), printScript(b))
}

func TestParsePrintRoundTrip(t *testing.T) {
	src := strings.Join([]string{
		`wait "Ready>" 2000`,
		`wait !"Loading" 5000`,
		`wait 250`,
		`send "hello\r" 50 "\x1B[A"`,
		`snapshot`,
		`snapshot "named"`,
		`kill SIGTERM`,
		`kill SIGUSR1`,
	}, "\n")

	cmds, err := Parse(src)
	require.NoError(t, err)

	printed := printScript(cmds)
	reparsed, err := Parse(printed)
	require.NoError(t, err)
	require.Equal(t, printed, printScript(reparsed))
	require.Equal(t, src, printed)
}

func printScript(cmds []Command) string {
	lines := make([]string, len(cmds))
	for i, c := range cmds {
		lines[i] = c.String()
	}
	return strings.Join(lines, "\n")
}

func TestParseDurationToken(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"0", 0, true},
		{"5", 5 * time.Millisecond, true},
		{"5ms", 5 * time.Millisecond, true},
		{"5s", 5 * time.Second, true},
		{"5m", 5 * time.Minute, true},
		{"", 0, false},
		{"ms", 0, false},
		{"s", 0, false},
		{"-5", 0, false},
		{"5.5", 0, false},
		{"5h", 0, false},
		{"x5", 0, false},
		{"5sms", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDurationToken(tt.in)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.want, got)
			}
		})
	}
}
