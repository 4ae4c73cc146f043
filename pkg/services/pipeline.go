package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/kerbaras/mangapdf/pkg/data"
	"github.com/kerbaras/mangapdf/pkg/integrations"
	"github.com/kerbaras/mangapdf/pkg/toc"
	"github.com/kerbaras/mangapdf/pkg/utils"
)

type PipelineOptions struct {
	// Output is the final PDF path. Empty means "<title>.pdf" in the working directory.
	Output  string
	Jobs    int
	Retries int
	// Pause is slept after each chapter is assembled.
	Pause time.Duration
	// PageCounter, when set, checks every chapter PDF against its image count.
	PageCounter integrations.PageCounter
	// Optimizer, when set, rewrites pages for a target device before conversion.
	Optimizer *integrations.PageOptimizer
}

// Result describes a finished run.
type Result struct {
	Output      string
	Title       string
	Bookmarks   []toc.Bookmark
	Pages       int
	ChapterPDFs []string
}

// Pipeline turns a title into one bookmarked PDF, one chapter at a time.
type Pipeline struct {
	fetcher      *Fetcher
	downloader   *Downloader
	tools        integrations.Toolchain
	opts         PipelineOptions
	logger       *slog.Logger
	progressChan chan Progress
	closeOnce    sync.Once
}

func NewPipeline(fetcher *Fetcher, downloader *Downloader, tools integrations.Toolchain, opts PipelineOptions, logger *slog.Logger) *Pipeline {
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		fetcher:      fetcher,
		downloader:   downloader,
		tools:        tools,
		opts:         opts,
		logger:       logger,
		progressChan: make(chan Progress, 100),
	}
}

// Progress returns the channel for receiving progress updates. It is closed by Close.
func (p *Pipeline) Progress() <-chan Progress {
	return p.progressChan
}

// Close closes the progress channel. Run must not be called afterwards.
func (p *Pipeline) Close() {
	p.closeOnce.Do(func() { close(p.progressChan) })
}

// Run downloads and assembles titleID. Any failure aborts the run and leaves
// the output path untouched.
func (p *Pipeline) Run(ctx context.Context, titleID int) (*Result, error) {
	if titleID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTitleID, titleID)
	}

	result, err := p.run(ctx, titleID)
	if err != nil {
		p.sendProgress(Progress{Stage: StageFailed, Error: err})
		return nil, err
	}
	p.sendProgress(Progress{Stage: StageDone, Title: result.Title, Output: result.Output, TotalPages: result.Pages})
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, titleID int) (*Result, error) {
	p.sendProgress(Progress{Stage: StageFetchingTitle})
	title, err := p.fetcher.GetTitle(ctx, titleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch title %d: %w", titleID, err)
	}
	p.logger.Info("fetched title",
		"id", titleID,
		"title", title.Title,
		"description", title.Description,
		"cover", title.CoverURL,
		"authors", title.Authors,
	)

	section, ok := title.FirstSection()
	if !ok || len(section.Chapters) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoChapters, titleID)
	}
	if skipped := title.Sections[1:]; len(skipped) > 0 {
		names := make([]string, len(skipped))
		for i, s := range skipped {
			names[i] = s.Title
		}
		p.logger.Warn("only the first chapter section is processed", "section", section.Title, "skipped", names)
	}

	output := p.opts.Output
	if output == "" {
		output = utils.SanitizeFilename(title.Title) + ".pdf"
	}

	ws, err := utils.NewWorkspace("mangapdf-*")
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	ledger := toc.NewLedger()
	ledger.AddTitle(title.Title)
	ledger.AddAuthors(title.Authors)

	chapters := section.ReadingOrder()
	chapterPDFs := make([]string, 0, len(chapters))
	page := 1
	for i, chapter := range chapters {
		ledger.AddBookmark(page, chapter.Title, 1)

		pdf, pages, err := p.assembleChapter(ctx, ws, title, chapter, i+1, len(chapters))
		if err != nil {
			return nil, fmt.Errorf("chapter %q: %w", chapter.Title, err)
		}
		chapterPDFs = append(chapterPDFs, pdf)
		page += pages

		if err := sleepContext(ctx, p.opts.Pause); err != nil {
			return nil, err
		}
	}

	p.sendProgress(Progress{Stage: StageMerging, Title: title.Title, ChapterCount: len(chapters)})
	merged := ws.Path("merge.pdf")
	if err := p.tools.MergePDFs(ctx, chapterPDFs, merged); err != nil {
		return nil, fmt.Errorf("failed to merge chapters: %w", err)
	}

	p.sendProgress(Progress{Stage: StageWritingBookmarks, Title: title.Title})
	bookmarkFile := ws.Path("toc.txt")
	if err := ledger.WriteFile(bookmarkFile); err != nil {
		return nil, fmt.Errorf("failed to write bookmarks: %w", err)
	}

	p.sendProgress(Progress{Stage: StageStamping, Title: title.Title, Output: output})
	stamped := ws.Path("final.pdf")
	if err := p.tools.Stamp(ctx, merged, bookmarkFile, stamped); err != nil {
		return nil, fmt.Errorf("failed to add table of contents: %w", err)
	}
	if err := promote(stamped, output); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", output, err)
	}
	p.logger.Info("pdf written", "output", output, "pages", page-1, "chapters", len(chapters))

	return &Result{
		Output:      output,
		Title:       title.Title,
		Bookmarks:   ledger.Bookmarks(),
		Pages:       page - 1,
		ChapterPDFs: chapterPDFs,
	}, nil
}

// assembleChapter downloads one chapter and converts it to a PDF inside the
// workspace. It returns the PDF path and its page count.
func (p *Pipeline) assembleChapter(ctx context.Context, ws *utils.Workspace, title *data.Title, chapter data.ChapterRef, index, count int) (string, int, error) {
	progress := Progress{Title: title.Title, Chapter: chapter.Title, ChapterIndex: index, ChapterCount: count}
	logger := p.logger.With("chapter", chapter.Title, "index", index)

	progress.Stage = StageFetchingImages
	p.sendProgress(progress)
	images, err := p.fetcher.Fetch(ctx, title.ID, chapter.ID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch images: %w", err)
	}
	if len(images.Pages) == 0 {
		return "", 0, ErrEmptyChapter
	}
	progress.TotalPages = len(images.Pages)

	dir, err := ws.Dir("chapter-" + strconv.Itoa(index))
	if err != nil {
		return "", 0, err
	}
	logger.Debug("downloading chapter", "pages", len(images.Pages), "dir", dir)

	progress.Stage = StageDownloading
	p.sendProgress(progress)
	paths, _, err := p.downloader.DownloadWithProgress(ctx, images.Pages, dir, p.opts.Jobs, p.opts.Retries, func(done, total int) {
		update := progress
		update.CurrentPage = done
		p.sendProgress(update)
	})
	if err != nil {
		return "", 0, err
	}

	progress.Stage = StageConverting
	progress.CurrentPage = len(paths)
	p.sendProgress(progress)
	if p.opts.Optimizer != nil {
		paths, err = p.opts.Optimizer.OptimizeAll(ctx, paths, filepath.Join(dir, "optimized"))
		if err != nil {
			return "", 0, fmt.Errorf("failed to optimize pages: %w", err)
		}
	}
	pdf := ws.Path(fmt.Sprintf("%d-%s.pdf", index, utils.SanitizeFilename(chapter.Title)))
	if err := p.tools.ImagesToPDF(ctx, paths, pdf); err != nil {
		return "", 0, fmt.Errorf("failed to convert images: %w", err)
	}

	if p.opts.PageCounter != nil {
		got, err := p.opts.PageCounter.PageCount(pdf)
		if err != nil {
			return "", 0, err
		}
		if got != len(paths) {
			return "", 0, fmt.Errorf("%w: %s has %d pages, want %d", ErrPageCountMismatch, filepath.Base(pdf), got, len(paths))
		}
	}

	logger.Info("chapter assembled", "pages", len(paths))
	return pdf, len(paths), nil
}

// sendProgress sends a progress update (non-blocking)
func (p *Pipeline) sendProgress(progress Progress) {
	select {
	case p.progressChan <- progress:
	default:
		// Channel full, skip this update
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// promote moves the finished file to its destination, copying when the
// workspace is on another filesystem.
func promote(src, dst string) error {
	if dir := filepath.Dir(dst); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
