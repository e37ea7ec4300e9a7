package scriptty

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/vt"
)

// A FrameSink receives rendered frames as they are emitted. Implementations
// may persist them (see DirSink) or discard them (NopSink). Both methods are
// called synchronously from the session loop.
type FrameSink interface {
	// WriteFrame persists frame seq with its rendered text.
	WriteFrame(seq uint64, text string) error
	// UpdateLatest points the sink's "latest" marker at frame seq.
	UpdateLatest(seq uint64) error
}

// NopSink discards frames.
type NopSink struct{}

func (NopSink) WriteFrame(uint64, string) error { return nil }
func (NopSink) UpdateLatest(uint64) error       { return nil }

// Screen folds child output into a fixed-size grid through a VT emulator
// and detects changes between rendered frames. It performs no I/O of its
// own; frames go to whatever sink the caller passes in.
type Screen struct {
	emu      *vt.Emulator
	cols     int
	rows     int
	frameSeq uint64
	last     string
	hasLast  bool
}

// NewScreen creates a screen of the given grid size. The size is fixed for
// the lifetime of the screen.
func NewScreen(cols, rows int) *Screen {
	return &Screen{
		emu:  vt.NewEmulator(cols, rows),
		cols: cols,
		rows: rows,
	}
}

// Feed pushes raw child output through the VT parser.
func (s *Screen) Feed(data []byte) {
	_, _ = s.emu.Write(data)
}

// Render returns the grid as rows lines joined by newlines. Every line is
// padded to the full column width so renders of equal grids compare equal
// byte-for-byte.
func (s *Screen) Render() string {
	lines := strings.Split(s.emu.String(), "\n")
	if len(lines) > s.rows {
		lines = lines[:s.rows]
	}
	for len(lines) < s.rows {
		lines = append(lines, "")
	}
	for i, l := range lines {
		if n := len([]rune(l)); n < s.cols {
			lines[i] = l + strings.Repeat(" ", s.cols-n)
		}
	}
	return strings.Join(lines, "\n")
}

// Matches tests the pattern against the rendered grid. The pattern is
// applied verbatim, with no implicit anchoring.
func (s *Screen) Matches(re *regexp.Regexp) bool {
	return re.MatchString(s.Render())
}

// FrameSeq returns the sequence number of the most recently emitted frame,
// or 0 if none has been emitted.
func (s *Screen) FrameSeq() uint64 {
	return s.frameSeq
}

// SaveIfChanged emits a frame if the rendered grid differs byte-for-byte
// from the previous frame (or if no frame has been emitted yet). It returns
// the new sequence number and whether a frame was emitted. On sink failure
// neither the sequence counter nor the baseline advances.
func (s *Screen) SaveIfChanged(sink FrameSink) (uint64, bool, error) {
	frame := s.Render()
	if s.hasLast && frame == s.last {
		return 0, false, nil
	}
	seq, err := s.emit(sink, frame)
	if err != nil {
		return 0, false, err
	}
	return seq, true, nil
}

// ForceSave emits a frame regardless of whether the grid changed.
func (s *Screen) ForceSave(sink FrameSink) (uint64, error) {
	return s.emit(sink, s.Render())
}

func (s *Screen) emit(sink FrameSink, frame string) (uint64, error) {
	seq := s.frameSeq + 1
	if err := sink.WriteFrame(seq, frame); err != nil {
		return 0, err
	}
	if err := sink.UpdateLatest(seq); err != nil {
		return 0, err
	}
	s.frameSeq = seq
	s.last = frame
	s.hasLast = true
	return seq, nil
}
