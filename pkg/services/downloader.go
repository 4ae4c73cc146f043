package services

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/kerbaras/mangapdf/pkg/integrations"
	"github.com/kerbaras/mangapdf/pkg/transfer"
)

type DownloaderOptions struct {
	// RetryDelay is the base backoff between attempts of a single page.
	RetryDelay time.Duration
	// RateLimit caps page requests per second; 0 disables it.
	RateLimit float64
	// Verify checks each downloaded page. Defaults to integrations.VerifyImage.
	Verify func(path string) error
}

// Downloader fetches the pages of one chapter into a directory.
type Downloader struct {
	transfer *transfer.Downloader
	opts     DownloaderOptions
	logger   *slog.Logger
}

// NewDownloader creates a new Downloader instance
func NewDownloader(client *http.Client, opts DownloaderOptions, logger *slog.Logger) *Downloader {
	if opts.Verify == nil {
		opts.Verify = integrations.VerifyImage
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		transfer: transfer.NewDownloader(client),
		opts:     opts,
		logger:   logger,
	}
}

// Download saves every image into dir as PageName(url, index) and returns
// the local paths in page order. If any page fails, all failures are logged
// and returned alongside an error wrapping ErrDownloadFailed.
func (d *Downloader) Download(ctx context.Context, images []string, dir string, jobs, retries int) ([]string, []Failure, error) {
	return d.DownloadWithProgress(ctx, images, dir, jobs, retries, nil)
}

// DownloadWithProgress is Download with a callback invoked after each page.
func (d *Downloader) DownloadWithProgress(ctx context.Context, images []string, dir string, jobs, retries int, onProgress func(done, total int)) ([]string, []Failure, error) {
	items := make([]transfer.Item, len(images))
	for i, url := range images {
		items[i] = transfer.Item{URL: url, Filename: PageName(url, i)}
	}

	summaries := d.transfer.Download(ctx, items, dir, transfer.Options{
		Concurrency: jobs,
		Retries:     retries,
		RetryDelay:  d.opts.RetryDelay,
		RateLimit:   d.opts.RateLimit,
		OnProgress:  onProgress,
	})

	paths := make([]string, 0, len(summaries))
	var failures []Failure
	for _, s := range summaries {
		if s.Status == transfer.Failed {
			failures = append(failures, Failure{File: s.Item.Filename, Reason: s.Reason})
			continue
		}
		if err := d.opts.Verify(s.Path); err != nil {
			failures = append(failures, Failure{File: s.Item.Filename, Reason: err.Error()})
			continue
		}
		paths = append(paths, s.Path)
	}

	if err := ctx.Err(); err != nil {
		return nil, failures, err
	}
	if len(failures) > 0 {
		d.logger.Error("chapter pages failed to download", "count", len(failures), "dir", dir)
		for _, f := range failures {
			d.logger.Error("download failed", "file", f.File, "reason", f.Reason)
		}
		return nil, failures, &DownloadError{Failures: failures}
	}
	return paths, nil, nil
}
