// Package scriptty drives terminal programs headlessly from a small
// imperative script.
//
// scriptty spawns a child command inside a pseudo-terminal, folds its output
// through a virtual-terminal emulator into a fixed text grid, and executes a
// script of waits, keystrokes, snapshots, and signals against it. It makes
// interactive terminal programs scriptable and deterministically observable
// without a real tty.
//
// # Quick Start
//
//	script, err := scriptty.Parse(`
//	wait "login:" 5s
//	send "root" <Enter>
//	snapshot "after-login"
//	`)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sess, err := scriptty.NewSession("my-app", script, scriptty.WithSize(80, 24))
//	if err != nil {
//		log.Fatal(err)
//	}
//	code, err := sess.Run(context.Background())
//
// # Script Language
//
// The script is line-oriented. Blank lines and lines starting with # are
// skipped. One command per line:
//
//	wait "pattern" [timeout]    block until the screen matches the regexp
//	wait !"pattern" [timeout]   block until the screen does NOT match
//	wait 500                    sleep (durations: 500, 500ms, 2s, 1m)
//	send "text" <Enter>         inject bytes; delays may be interleaved
//	send "slow" 100 "typing"    100 ms pause between the two strings
//	snapshot ["name"]           force a frame even if the screen is unchanged
//	kill TERM                   deliver a signal (name or number)
//
// String literals support \n, \r, \t, \\, \", and \xNN escapes. Key tokens
// name special keys: <Enter>, <Tab>, <Esc>, <Up>, <Home>, <PgDn>, <F1>
// through <F12>, and modifier forms such as <C-d>, <M-p>, and <S-Up>.
//
// # Sessions and Frames
//
// A [Session] owns the event loop: before each command it drains pending
// child output into the [Screen], emitting a frame through the [FrameSink]
// whenever the rendered grid changed. Frame sequence numbers are contiguous
// from 1. [DirSink] persists frames as numbered text files with a latest.txt
// symlink; [Recording] logs session events as line-delimited JSON with
// millisecond timestamps and captures the raw byte stream.
//
// Waits poll the rendered screen, not the raw byte stream: escape sequences
// that cancel out produce no frame and cannot satisfy a pattern.
//
// # Exit Codes
//
// Run returns the child's exit code; a child killed by signal s yields
// 128+s. Wait timeouts, EOF during a pattern wait, and I/O or sink failures
// are fatal errors, which the scriptty command maps to exit code 1.
//
// # Requirements
//
//   - Go 1.24+
//   - Linux or macOS (PTY semantics; EIO-at-EOF on the master is handled)
package scriptty
