// Package progress renders a terminal progress bar for the archive download.
package progress

import (
	"io"

	"github.com/vbauerster/mpb/v6"
	"github.com/vbauerster/mpb/v6/decor"
)

// Bar tracks a single download. A nil *Bar is valid and does nothing.
type Bar struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

// New starts a bar named name writing to w. A nil w returns a nil *Bar.
func New(w io.Writer, name string) *Bar {
	if w == nil {
		return nil
	}

	p := mpb.New(
		mpb.WithOutput(w),
		mpb.WithWidth(64),
	)
	return &Bar{p: p, bar: p.AddBar(0,
		mpb.BarWidth(24),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DidentRight}),
		),
		mpb.AppendDecorators(
			decor.CountersKibiByte("% .1f / % .1f", decor.WC{W: 20}),
			decor.AverageSpeed(decor.UnitKiB, " % .1f", decor.WC{W: 15, C: decor.DidentRight}),
		),
	)}
}

// Reader wraps r so that bytes read advance the bar. size is the expected
// length, or a non-positive value when unknown.
func (b *Bar) Reader(r io.Reader, size int64) io.Reader {
	if b == nil {
		return r
	}
	if size > 0 {
		b.bar.SetTotal(size, false)
	}
	return b.bar.ProxyReader(r)
}

// Done completes or aborts the bar and waits for the final render.
func (b *Bar) Done(err error) {
	if b == nil {
		return
	}
	if err != nil {
		b.bar.Abort(false)
	} else {
		// Total takes the current count, which also covers unknown sizes.
		b.bar.SetTotal(-1, true)
	}
	b.p.Wait()
}
