package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTitleID    = errors.New("invalid title id")
	ErrNoChapters        = errors.New("title has no chapters")
	ErrEmptyChapter      = errors.New("chapter has no pages")
	ErrDownloadFailed    = errors.New("failed to download chapter pages")
	ErrPageCountMismatch = errors.New("chapter pdf page count mismatch")
)

// Failure is a page that could not be downloaded.
type Failure struct {
	File   string
	Reason string
}

func (f Failure) String() string {
	return fmt.Sprintf("file: %s, reason: %s", f.File, f.Reason)
}

// DownloadError lists every failed page of a chapter.
type DownloadError struct {
	Failures []Failure
}

func (e *DownloadError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%d page(s) failed to download: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *DownloadError) Unwrap() error {
	return ErrDownloadFailed
}
