package main

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressReporter draws a bar on terminals and stays silent otherwise. The
// bar is created on the first update because the total is only known then.
type progressReporter struct {
	out         io.Writer
	enabled     bool
	description string
	bar         *progressbar.ProgressBar
}

func newProgressReporter(out io.Writer, description string, enabled bool) *progressReporter {
	return &progressReporter{out: out, enabled: enabled, description: description}
}

func (p *progressReporter) update(done, total int) {
	if p == nil || !p.enabled || total <= 0 {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription(p.description),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionThrottle(65*time.Millisecond),
		)
	}
	_ = p.bar.Set(done)
}

func (p *progressReporter) finish() {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
