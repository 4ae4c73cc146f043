package app

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/kerbaras/mangapdf/pkg/app/styles"
	"github.com/kerbaras/mangapdf/pkg/services"
)

// Console is the plain front end: one status line per stage and a
// progress bar per chapter download.
type Console struct {
	out     io.Writer
	bar     *progressbar.ProgressBar
	chapter int
	stage   services.Stage
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Run renders events until the channel is closed.
func (c *Console) Run(events <-chan services.Progress) {
	for p := range events {
		c.Handle(p)
	}
	c.finishBar()
}

func (c *Console) Handle(p services.Progress) {
	switch p.Stage {
	case services.StageFetchingTitle:
		c.println(styles.StatusRunning.Render("Fetching title..."))

	case services.StageFetchingImages:
		c.finishBar()
		c.println(styles.TextStyle.Render(fmt.Sprintf("[%d/%d] %s", p.ChapterIndex, p.ChapterCount, p.Chapter)))

	case services.StageDownloading:
		if p.ChapterIndex != c.chapter || c.bar == nil {
			c.finishBar()
			c.chapter = p.ChapterIndex
			c.bar = c.newBar(p.TotalPages)
		}
		if p.CurrentPage > 0 {
			c.bar.Set(p.CurrentPage)
		}

	case services.StageConverting:
		c.finishBar()
		c.println(styles.MutedStyle.Render("  converting to pdf"))

	case services.StageMerging, services.StageWritingBookmarks, services.StageStamping:
		c.finishBar()
		if p.Stage != c.stage {
			c.println(styles.StatusRunning.Render(capitalize(string(p.Stage)) + "..."))
		}

	case services.StageDone:
		c.finishBar()
		c.println(styles.StatusCompleted.Render(fmt.Sprintf("Saved %s (%d pages)", p.Output, p.TotalPages)))

	case services.StageFailed:
		c.finishBar()
		c.println(styles.StatusError.Render("Failed"))
	}
	c.stage = p.Stage
}

func (c *Console) newBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("  downloading"),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *Console) finishBar() {
	if c.bar == nil {
		return
	}
	if !c.bar.IsFinished() {
		c.bar.Finish()
	}
	c.bar = nil
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
