// Package progress shows transfer progress for uploads and downloads.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/klauern/boxsync/internal/logging"
	"github.com/klauern/boxsync/internal/transport"
	"github.com/klauern/boxsync/internal/ui"
)

// Bar is a byte-count progress bar. A disabled bar logs at debug level
// instead of drawing.
type Bar struct {
	bar     *progressbar.ProgressBar
	enabled bool
	desc    string
}

// Options configures a bar.
type Options struct {
	// Size is the total byte count, or -1 when unknown (spinner).
	Size int64
	// Description is shown before the bar.
	Description string
	// Writer defaults to os.Stderr.
	Writer io.Writer
	// Force draws the bar even when Writer is not a terminal.
	Force bool
}

// New creates a bar. It only draws on a color-capable terminal when debug
// logging is off, unless Force is set.
func New(opts Options) *Bar {
	if opts.Writer == nil {
		opts.Writer = os.Stderr
	}

	b := &Bar{
		enabled: opts.Force || shouldShowProgress(opts.Writer),
		desc:    opts.Description,
	}
	if !b.enabled {
		logging.Debug(fmt.Sprintf("%s started", opts.Description), logging.Count(int(opts.Size)))
		return b
	}

	b.bar = progressbar.NewOptions64(
		opts.Size,
		progressbar.OptionSetDescription(opts.Description),
		progressbar.OptionSetWriter(opts.Writer),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(opts.Writer, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionEnableColorCodes(ui.IsColorEnabled()),
	)
	return b
}

// Add64 advances the bar by n bytes.
func (b *Bar) Add64(n int64) error {
	if !b.enabled {
		return nil
	}
	return b.bar.Add64(n)
}

// Finish completes the bar.
func (b *Bar) Finish() error {
	if !b.enabled {
		logging.Debug(fmt.Sprintf("%s completed", b.desc))
		return nil
	}
	return b.bar.Finish()
}

// Enabled reports whether the bar draws.
func (b *Bar) Enabled() bool {
	return b.enabled
}

// Reader wraps r so reads advance the bar. The bar finishes at EOF.
func (b *Bar) Reader(r io.Reader) io.Reader {
	return &reader{r: r, bar: b}
}

type reader struct {
	r    io.Reader
	bar  *Bar
	once sync.Once
}

func (r *reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		_ = r.bar.Add64(int64(n))
	}
	if err == io.EOF {
		r.once.Do(func() { _ = r.bar.Finish() })
	}
	return n, err
}

// Wrapper returns a transport.ReaderWrapper that draws one bar per
// transfer on w. A nil result means progress is off for w, and transports
// then stream unwrapped. Bars share a line, so use it for one transfer at
// a time.
func Wrapper(w io.Writer) transport.ReaderWrapper {
	if w == nil {
		w = os.Stderr
	}
	if !shouldShowProgress(w) {
		return nil
	}
	return func(name string, size int64, r io.Reader) io.Reader {
		return New(Options{Size: size, Description: name, Writer: w, Force: true}).Reader(r)
	}
}

// shouldShowProgress is false for pipes and files, when colors are
// disabled, and when debug logging would interleave with the bar.
func shouldShowProgress(w io.Writer) bool {
	if !ui.IsColorEnabled() {
		return false
	}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false
	}
	if logging.Default().Enabled(context.Background(), logging.LevelDebug) {
		return false
	}
	return true
}
