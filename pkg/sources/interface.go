package sources

import (
	"context"

	"github.com/kerbaras/mangapdf/pkg/data"
)

// Source is a content API exposing title details and per-chapter image lists.
// Both operations are idempotent reads.
type Source interface {
	GetTitle(ctx context.Context, titleID int) (*data.Title, error)
	GetChapterImages(ctx context.Context, titleID, chapterID int) (*data.ChapterImages, error)
}
