package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/kerbaras/mangapdf/pkg/app/styles"
	"github.com/kerbaras/mangapdf/pkg/services"
)

// ProgressTracker renders the state of one pipeline run: the overall chapter
// count, the current chapter's pages and a log of finished chapters.
type ProgressTracker struct {
	current   services.Progress
	completed []string
	chapters  progress.Model
	pages     progress.Model
	width     int
}

func NewProgressTracker(width int) *ProgressTracker {
	p := &ProgressTracker{
		chapters: progress.New(progress.WithGradient(string(styles.Secondary), string(styles.Primary))),
		pages:    progress.New(progress.WithSolidFill(string(styles.Info))),
	}
	p.SetWidth(width)
	return p
}

func (p *ProgressTracker) SetWidth(width int) {
	if width < 10 {
		width = 10
	}
	p.width = width
	p.chapters.Width = width
	p.pages.Width = width
}

func (p *ProgressTracker) Update(update services.Progress) {
	// A chapter finished once the next one starts or assembly moves on.
	if p.current.ChapterIndex > 0 && update.ChapterIndex != p.current.ChapterIndex && update.Stage != services.StageFailed {
		p.completed = append(p.completed, p.current.Chapter)
	}
	if update.Title == "" {
		update.Title = p.current.Title
	}
	p.current = update
}

func (p *ProgressTracker) Current() services.Progress {
	return p.current
}

func (p *ProgressTracker) Completed() []string {
	return p.completed
}

// Finished reports whether the run reached a terminal stage.
func (p *ProgressTracker) Finished() bool {
	return p.current.Stage == services.StageDone || p.current.Stage == services.StageFailed
}

func (p *ProgressTracker) View() string {
	var b strings.Builder

	title := p.current.Title
	if title == "" {
		title = "mangapdf"
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n")

	for _, chapter := range p.completed {
		b.WriteString(styles.StatusCompleted.Render("✓ "))
		b.WriteString(styles.MutedStyle.Render(chapter))
		b.WriteString("\n")
	}
	if len(p.completed) > 0 {
		b.WriteString("\n")
	}

	cur := p.current
	if cur.ChapterCount > 0 {
		done := len(p.completed)
		b.WriteString(styles.TextStyle.Render(fmt.Sprintf("Chapters %d/%d", done, cur.ChapterCount)))
		b.WriteString("\n")
		b.WriteString(p.chapters.ViewAs(ratio(done, cur.ChapterCount)))
		b.WriteString("\n\n")
	}

	if cur.ChapterIndex > 0 && cur.TotalPages > 0 && cur.Stage != services.StageDone {
		b.WriteString(styles.TextStyle.Render(fmt.Sprintf("%s (%d/%d pages)", cur.Chapter, cur.CurrentPage, cur.TotalPages)))
		b.WriteString("\n")
		b.WriteString(p.pages.ViewAs(ratio(cur.CurrentPage, cur.TotalPages)))
		b.WriteString("\n\n")
	}

	status := string(cur.Stage)
	switch cur.Stage {
	case services.StageDone:
		status = fmt.Sprintf("done: %s (%d pages)", cur.Output, cur.TotalPages)
	case services.StageFailed:
		status = "failed"
	case "":
		status = "starting"
	}
	b.WriteString(styles.StatusStyle(cur.Stage).Render(status))
	b.WriteString("\n")

	if cur.Error != nil {
		b.WriteString(styles.StatusError.Render(fmt.Sprintf("Error: %s", cur.Error)))
		b.WriteString("\n")
	}

	return b.String()
}

func ratio(current, total int) float64 {
	if total <= 0 {
		return 0
	}
	r := float64(current) / float64(total)
	if r > 1 {
		return 1
	}
	return r
}
