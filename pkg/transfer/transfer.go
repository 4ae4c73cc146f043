// Package transfer downloads batches of files concurrently with per-file retries
// and reports one outcome per file.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type Status int

const (
	Succeeded Status = iota
	Failed
)

func (s Status) String() string {
	if s == Succeeded {
		return "succeeded"
	}
	return "failed"
}

// Item is a single file to fetch. Filename is a bare name inside the batch's directory.
type Item struct {
	URL      string
	Filename string
}

type Summary struct {
	Item   Item
	Path   string
	Status Status
	Reason string
}

type Options struct {
	Concurrency int
	Retries     int
	RetryDelay  time.Duration
	// RateLimit caps requests per second across the batch; 0 disables it.
	RateLimit float64
	// OnProgress is called after each item finishes. Calls are serialized.
	OnProgress func(done, total int)
}

type Downloader struct {
	client    *http.Client
	userAgent string
}

func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Downloader{client: client, userAgent: "mangapdf"}
}

// Download fetches every item into dir. The returned summaries are in the
// same order as items regardless of completion order.
func (d *Downloader) Download(ctx context.Context, items []Item, dir string, opts Options) []Summary {
	summaries := make([]Summary, len(items))
	if len(items) == 0 {
		return summaries
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	attempts := opts.Retries
	if attempts < 1 {
		attempts = 1
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	var (
		mu   sync.Mutex
		done int
	)
	report := func() {
		mu.Lock()
		defer mu.Unlock()
		done++
		if opts.OnProgress != nil {
			opts.OnProgress(done, len(items))
		}
	}

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, item := range items {
		g.Go(func() error {
			defer report()

			summary := Summary{Item: item, Path: filepath.Join(dir, item.Filename)}
			if err := validFilename(item.Filename); err != nil {
				summary.Status = Failed
				summary.Reason = err.Error()
				summaries[i] = summary
				return nil
			}

			err := retry.Do(
				func() error {
					if limiter != nil {
						if err := limiter.Wait(ctx); err != nil {
							return err
						}
					}
					return d.fetch(ctx, item.URL, summary.Path)
				},
				retry.Context(ctx),
				retry.Attempts(uint(attempts)),
				retry.Delay(opts.RetryDelay),
				retry.DelayType(retry.BackOffDelay),
				retry.LastErrorOnly(true),
			)
			if err != nil {
				summary.Status = Failed
				summary.Reason = err.Error()
			}
			summaries[i] = summary
			return nil
		})
	}

	// Workers never return errors; outcomes live in summaries.
	_ = g.Wait()
	return summaries
}

// fetch streams url into path through a temporary file so a failed
// attempt never leaves a truncated page behind.
func (d *Downloader) fetch(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return retry.Unrecoverable(err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("bad status: %s", resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return retry.Unrecoverable(err)
		}
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".part-*")
	if err != nil {
		return retry.Unrecoverable(err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to read body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

var errInvalidFilename = errors.New("invalid filename")

func validFilename(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", errInvalidFilename, name)
	}
	return nil
}
