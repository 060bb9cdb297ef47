package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar for file processing.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	out   io.Writer
	quiet bool
}

type options struct {
	out   io.Writer
	quiet bool
}

// Option configures a Tracker.
type Option func(*options)

// WithWriter renders the bar and status lines to w instead of stderr.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithQuiet suppresses all output when quiet is true.
func WithQuiet(quiet bool) Option {
	return func(o *options) {
		o.quiet = quiet
	}
}

func resolve(opts []Option) options {
	o := options{out: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	if o.quiet {
		o.out = io.Discard
	}
	return o
}

// NewSpinner creates a spinner for operations with unknown total count.
func NewSpinner(label string, opts ...Option) *Tracker {
	o := resolve(opts)
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(o.out),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{bar: bar, label: label, out: o.out, quiet: o.quiet}
}

// NewTracker creates a progress bar with the given label and total count.
func NewTracker(label string, total int, opts ...Option) *Tracker {
	o := resolve(opts)
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(o.out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, label: label, out: o.out, quiet: o.quiet}
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	_ = t.bar.Add(1)
}

// SetTotal switches a spinner to a bar once the total is known.
func (t *Tracker) SetTotal(total int) {
	t.bar.ChangeMax(total)
}

// FinishSuccess clears the bar completely.
func (t *Tracker) FinishSuccess() {
	t.clear()
}

// FinishSkipped clears the bar and prints a skip message.
func (t *Tracker) FinishSkipped(reason string) {
	t.clear()
	fmt.Fprintf(t.out, "  %s skipped (%s)\n", t.label, reason)
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	t.clear()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}

func (t *Tracker) clear() {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}
