package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/tsawler/pagemark/batch"
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
	dim      = color.New(color.Faint).SprintFunc()
)

// progress renders batch events as a bar on stderr with one status line per
// finished file
type progress struct {
	bar *progressbar.ProgressBar
	out io.Writer
}

func newProgress(files int) *progress {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("converting %d file(s)", files)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &progress{bar: bar, out: os.Stderr}
}

// BatchEvent implements batch.Observer
func (p *progress) BatchEvent(e batch.Event) {
	switch e.Status {
	case batch.StatusPending:
		return
	case batch.StatusDone, batch.StatusError:
		_ = p.bar.Clear()
		p.line(e)
	default:
		desc := fmt.Sprintf("[%d/%d] %s %s", e.Index+1, e.Total, e.File, e.Status)
		if e.Stage != "" && e.StageTotal > 0 {
			desc += dim(fmt.Sprintf(" %s %d/%d", e.Stage, e.StageDone, e.StageTotal))
		}
		p.bar.Describe(desc)
	}
	_ = p.bar.Set(e.Percent)
}

func (p *progress) line(e batch.Event) {
	if e.Status == batch.StatusDone {
		fmt.Fprintf(p.out, "%s %s\n", okMark("✓"), e.File)
		return
	}
	fmt.Fprintf(p.out, "%s %s: %v\n", failMark("✗"), e.File, e.Err)
}

func (p *progress) finish() {
	_ = p.bar.Finish()
}
