// Command scriptty runs a program under a pseudo-terminal and drives it
// with a script read from standard input.
//
// Usage:
//
//	scriptty [flags] [--] command [args...]
//
// The command and its arguments are joined and executed via `sh -c`. With
// -frames DIR, every changed frame is written to DIR as a numbered text
// file alongside recording.jsonl (the event log) and raw.bin (the verbatim
// child output).
//
// Exit status: the child's exit code; 128+s when the child dies by signal
// s, or when SIGTERM/SIGINT reaches scriptty itself; 1 on parse, I/O, or
// wait failures.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/scriptty/scriptty"
)

func main() {
	os.Exit(run())
}

func run() int {
	cols := flag.Int("cols", 80, "terminal width")
	rows := flag.Int("rows", 24, "terminal height")
	frames := flag.String("frames", "", "directory for frame snapshots and the event log")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: scriptty [flags] [--] command [args...]\n\nThe script is read from standard input.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return 1
	}
	command := strings.Join(flag.Args(), " ")

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "scriptty: reading script from terminal; end with ^D")
	}
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scriptty: read script: %v\n", err)
		return 1
	}

	// Parse before the PTY opens; a bad script never spawns the child.
	script, err := scriptty.Parse(string(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "scriptty: %v\n", err)
		return 1
	}

	opts := []scriptty.Option{scriptty.WithSize(*cols, *rows)}
	var rec *scriptty.Recording
	if *frames != "" {
		sink, err := scriptty.NewDirSink(*frames)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scriptty: frames dir: %v\n", err)
			return 1
		}
		rec, err = scriptty.NewRecording(*frames)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scriptty: recording: %v\n", err)
			return 1
		}
		defer rec.Close()
		opts = append(opts,
			scriptty.WithFrameSink(sink),
			scriptty.WithEventLog(rec),
			scriptty.WithRawWriter(rec),
		)
	}

	sess, err := scriptty.NewSession(command, script, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scriptty: %v\n", err)
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	type result struct {
		code int
		err  error
	}
	resCh := make(chan result, 1)
	go func() {
		code, err := sess.Run(context.Background())
		resCh <- result{code, err}
	}()

	select {
	case sig := <-sigCh:
		// The session is abandoned; no further script steps run.
		return hostSignalCode(sig)
	case res := <-resCh:
		if res.err != nil {
			fmt.Fprintf(os.Stderr, "scriptty: %v\n", res.err)
		}
		return sessionExitCode(res.code, res.err)
	}
}

// hostSignalCode maps a signal delivered to scriptty itself to the process
// exit status: 128 + signo.
func hostSignalCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}

// sessionExitCode maps a session outcome to the process exit status: any
// failure (parse, I/O, wait timeout, wait EOF) is 1, otherwise the child's
// translated exit code passes through.
func sessionExitCode(code int, err error) int {
	if err != nil {
		return 1
	}
	return code
}
