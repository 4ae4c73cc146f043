package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/kerbaras/mangapdf/pkg/data"
	"github.com/kerbaras/mangapdf/pkg/sources"
)

// RetryPolicy bounds how a Fetcher retries failed source calls.
type RetryPolicy struct {
	// Attempts is the total number of tries, including the first.
	Attempts uint
	Delay    time.Duration
	// MaxJitter adds a random extra wait of up to MaxJitter to every delay.
	MaxJitter time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 5, Delay: 10 * time.Second, MaxJitter: 10 * time.Second}
}

// Fetcher wraps a Source with a fixed-interval, jittered retry policy. Each
// call starts with a fresh attempt budget.
type Fetcher struct {
	source sources.Source
	policy RetryPolicy
	logger *slog.Logger
}

func NewFetcher(source sources.Source, policy RetryPolicy, logger *slog.Logger) *Fetcher {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{source: source, policy: policy, logger: logger}
}

// GetTitle fetches title details.
func (f *Fetcher) GetTitle(ctx context.Context, titleID int) (*data.Title, error) {
	return retry.DoWithData(
		func() (*data.Title, error) {
			return f.source.GetTitle(ctx, titleID)
		},
		f.options(ctx, "title", "title_id", titleID)...,
	)
}

// Fetch fetches the image list of one chapter. After the last attempt the
// most recent error is returned.
func (f *Fetcher) Fetch(ctx context.Context, titleID, chapterID int) (*data.ChapterImages, error) {
	return retry.DoWithData(
		func() (*data.ChapterImages, error) {
			return f.source.GetChapterImages(ctx, titleID, chapterID)
		},
		f.options(ctx, "chapter images", "title_id", titleID, "chapter_id", chapterID)...,
	)
}

func (f *Fetcher) options(ctx context.Context, what string, attrs ...any) []retry.Option {
	var delayType retry.DelayTypeFunc = retry.FixedDelay
	// RandomDelay panics on a zero jitter.
	if f.policy.MaxJitter > 0 {
		delayType = retry.CombineDelay(retry.FixedDelay, retry.RandomDelay)
	}

	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(f.policy.Attempts),
		retry.Delay(f.policy.Delay),
		retry.MaxJitter(f.policy.MaxJitter),
		retry.DelayType(delayType),
		retry.LastErrorOnly(true),
		retry.RetryIf(sources.IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			args := append([]any{"attempt", n + 1, "error", err}, attrs...)
			f.logger.Warn("fetching "+what+" failed, retrying", args...)
		}),
	}
}
