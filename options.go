package scriptty

import (
	"context"
	"io"
	"time"
)

const (
	defaultCols = 80
	defaultRows = 24

	// DefaultWaitTimeout is the budget applied to pattern waits that carry
	// no explicit timeout.
	DefaultWaitTimeout = 30 * time.Second

	// preDrainReadTimeout bounds each read while absorbing pending output
	// before a command; waitReadTimeout bounds each read inside a pattern
	// wait; finalDrainReadTimeout bounds each read while draining to EOF
	// after the last command.
	preDrainReadTimeout   = 10 * time.Millisecond
	waitReadTimeout       = 100 * time.Millisecond
	finalDrainReadTimeout = 100 * time.Millisecond
)

type options struct {
	cols        int
	rows        int
	sink        FrameSink
	log         EventLog
	raw         io.Writer
	waitTimeout time.Duration
	clock       clock
}

// Option configures a Session created by NewSession.
type Option func(*options)

// WithSize sets the terminal dimensions (columns x rows). The grid size is
// fixed for the lifetime of the session.
func WithSize(cols, rows int) Option {
	return func(o *options) {
		o.cols = cols
		o.rows = rows
	}
}

// WithFrameSink sets where emitted frames go. Defaults to NopSink.
func WithFrameSink(sink FrameSink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithEventLog sets where session events go. Defaults to NopLog.
func WithEventLog(log EventLog) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithRawWriter captures every master read verbatim, in arrival order.
func WithRawWriter(w io.Writer) Option {
	return func(o *options) {
		o.raw = w
	}
}

// WithWaitTimeout overrides the default budget for pattern waits that carry
// no explicit timeout.
func WithWaitTimeout(d time.Duration) Option {
	return func(o *options) {
		o.waitTimeout = d
	}
}

// withClock substitutes the time source; tests use it to make sleeps
// virtual.
func withClock(c clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

func defaultOptions() options {
	return options{
		cols:        defaultCols,
		rows:        defaultRows,
		sink:        NopSink{},
		log:         NopLog{},
		waitTimeout: DefaultWaitTimeout,
		clock:       systemClock{},
	}
}

// clock abstracts the session's time source so timed waits can be advanced
// virtually in tests. Production wires the OS monotonic clock.
type clock interface {
	now() time.Time
	sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) now() time.Time { return time.Now() }

func (systemClock) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
