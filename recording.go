package scriptty

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// An EventLog receives the structured events of a session: frames, sends,
// waits, kills, and the final exit. Implementations must tolerate being
// called from the single session goroutine.
type EventLog interface {
	Frame(seq uint64) error
	Snapshot(seq uint64, name string) error
	Send(payload string) error
	WaitMatch(pattern string) error
	WaitTimeout(pattern string) error
	WaitEOF(pattern string) error
	Kill(signal string) error
	Exit(code int) error
}

// NopLog discards events.
type NopLog struct{}

func (NopLog) Frame(uint64) error            { return nil }
func (NopLog) Snapshot(uint64, string) error { return nil }
func (NopLog) Send(string) error             { return nil }
func (NopLog) WaitMatch(string) error        { return nil }
func (NopLog) WaitTimeout(string) error      { return nil }
func (NopLog) WaitEOF(string) error          { return nil }
func (NopLog) Kill(string) error             { return nil }
func (NopLog) Exit(int) error                { return nil }

// Recording writes the event log as line-delimited JSON to recording.jsonl
// and the verbatim child output to raw.bin, both inside dir. Timestamps are
// wall-clock milliseconds since the recording was created.
type Recording struct {
	start     time.Time
	jsonlFile *os.File
	jsonl     *bufio.Writer
	rawFile   *os.File
	raw       *bufio.Writer
}

// NewRecording creates (or truncates) recording.jsonl and raw.bin in dir.
func NewRecording(dir string) (*Recording, error) {
	jsonlFile, err := os.Create(filepath.Join(dir, "recording.jsonl"))
	if err != nil {
		return nil, err
	}
	rawFile, err := os.Create(filepath.Join(dir, "raw.bin"))
	if err != nil {
		jsonlFile.Close()
		return nil, err
	}
	return &Recording{
		start:     time.Now(),
		jsonlFile: jsonlFile,
		jsonl:     bufio.NewWriter(jsonlFile),
		rawFile:   rawFile,
		raw:       bufio.NewWriter(rawFile),
	}, nil
}

func (r *Recording) elapsedMs() int64 {
	return time.Since(r.start).Milliseconds()
}

// Field order in these structs fixes the key order in the output.

type frameEvent struct {
	Ms    int64  `json:"ms"`
	Frame string `json:"frame"`
}

type snapshotEvent struct {
	Ms       int64  `json:"ms"`
	Snapshot string `json:"snapshot"`
	Name     string `json:"name,omitempty"`
}

type sendEvent struct {
	Ms   int64  `json:"ms"`
	Send string `json:"send"`
}

type waitMatchEvent struct {
	Ms      int64  `json:"ms"`
	Pattern string `json:"wait_match"`
}

type waitTimeoutEvent struct {
	Ms      int64  `json:"ms"`
	Pattern string `json:"wait_timeout"`
}

type waitEOFEvent struct {
	Ms      int64  `json:"ms"`
	Pattern string `json:"wait_eof"`
}

type killEvent struct {
	Ms     int64  `json:"ms"`
	Signal string `json:"kill"`
}

type exitEvent struct {
	Ms   int64 `json:"ms"`
	Code int   `json:"exit"`
}

func (r *Recording) writeEvent(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := r.jsonl.Write(line); err != nil {
		return err
	}
	return r.jsonl.WriteByte('\n')
}

func (r *Recording) Frame(seq uint64) error {
	return r.writeEvent(frameEvent{Ms: r.elapsedMs(), Frame: frameName(seq)})
}

func (r *Recording) Snapshot(seq uint64, name string) error {
	return r.writeEvent(snapshotEvent{Ms: r.elapsedMs(), Snapshot: frameName(seq), Name: name})
}

func (r *Recording) Send(payload string) error {
	return r.writeEvent(sendEvent{Ms: r.elapsedMs(), Send: payload})
}

func (r *Recording) WaitMatch(pattern string) error {
	return r.writeEvent(waitMatchEvent{Ms: r.elapsedMs(), Pattern: pattern})
}

func (r *Recording) WaitTimeout(pattern string) error {
	return r.writeEvent(waitTimeoutEvent{Ms: r.elapsedMs(), Pattern: pattern})
}

func (r *Recording) WaitEOF(pattern string) error {
	return r.writeEvent(waitEOFEvent{Ms: r.elapsedMs(), Pattern: pattern})
}

func (r *Recording) Kill(signal string) error {
	return r.writeEvent(killEvent{Ms: r.elapsedMs(), Signal: signal})
}

func (r *Recording) Exit(code int) error {
	return r.writeEvent(exitEvent{Ms: r.elapsedMs(), Code: code})
}

// AppendRaw appends one master read verbatim to raw.bin. Reads are appended
// in arrival order with no reordering or dedup.
func (r *Recording) AppendRaw(p []byte) error {
	_, err := r.raw.Write(p)
	return err
}

// Write implements io.Writer by delegating to AppendRaw, so a Recording
// can be handed to WithRawWriter directly.
func (r *Recording) Write(p []byte) (int, error) {
	if err := r.AppendRaw(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close flushes and closes both files.
func (r *Recording) Close() error {
	var firstErr error
	for _, f := range []func() error{r.jsonl.Flush, r.raw.Flush, r.jsonlFile.Close, r.rawFile.Close} {
		if err := f(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DirSink persists frames as %06d.txt files in a directory, maintaining a
// latest.txt symlink to the newest frame.
type DirSink struct {
	dir string
}

// NewDirSink creates dir if needed and returns a sink writing into it.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DirSink{dir: dir}, nil
}

func (d *DirSink) WriteFrame(seq uint64, text string) error {
	return os.WriteFile(filepath.Join(d.dir, frameName(seq)+".txt"), []byte(text), 0o644)
}

func (d *DirSink) UpdateLatest(seq uint64) error {
	latest := filepath.Join(d.dir, "latest.txt")
	_ = os.Remove(latest)
	return os.Symlink(frameName(seq)+".txt", latest)
}

func frameName(seq uint64) string {
	return fmt.Sprintf("%06d", seq)
}
