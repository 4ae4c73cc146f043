package services

import (
	"context"
	"sync"

	"github.com/kerbaras/mangapdf/pkg/data"
)

type mockSource struct {
	getTitleFunc         func(ctx context.Context, titleID int) (*data.Title, error)
	getChapterImagesFunc func(ctx context.Context, titleID, chapterID int) (*data.ChapterImages, error)

	mu           sync.Mutex
	titleCalls   int
	chapterCalls map[int]int
}

func (m *mockSource) GetTitle(ctx context.Context, titleID int) (*data.Title, error) {
	m.mu.Lock()
	m.titleCalls++
	m.mu.Unlock()
	if m.getTitleFunc != nil {
		return m.getTitleFunc(ctx, titleID)
	}
	return nil, nil
}

func (m *mockSource) GetChapterImages(ctx context.Context, titleID, chapterID int) (*data.ChapterImages, error) {
	m.mu.Lock()
	if m.chapterCalls == nil {
		m.chapterCalls = make(map[int]int)
	}
	m.chapterCalls[chapterID]++
	m.mu.Unlock()
	if m.getChapterImagesFunc != nil {
		return m.getChapterImagesFunc(ctx, titleID, chapterID)
	}
	return nil, nil
}

func (m *mockSource) calls(chapterID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chapterCalls[chapterID]
}

type toolCall struct {
	op     string
	inputs []string
	output string
}

// mockToolchain records invocations and writes a placeholder output file.
type mockToolchain struct {
	imagesToPDFFunc func(ctx context.Context, images []string, output string) error
	mergeFunc       func(ctx context.Context, pdfs []string, output string) error
	stampFunc       func(ctx context.Context, input, bookmarkFile, output string) error

	mu    sync.Mutex
	calls []toolCall
}

func (m *mockToolchain) record(op string, inputs []string, output string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, toolCall{op: op, inputs: append([]string(nil), inputs...), output: output})
}

func (m *mockToolchain) ImagesToPDF(ctx context.Context, images []string, output string) error {
	m.record("images", images, output)
	if m.imagesToPDFFunc != nil {
		return m.imagesToPDFFunc(ctx, images, output)
	}
	return touch(output)
}

func (m *mockToolchain) MergePDFs(ctx context.Context, pdfs []string, output string) error {
	m.record("merge", pdfs, output)
	if m.mergeFunc != nil {
		return m.mergeFunc(ctx, pdfs, output)
	}
	return touch(output)
}

func (m *mockToolchain) Stamp(ctx context.Context, input, bookmarkFile, output string) error {
	m.record("stamp", []string{input, bookmarkFile}, output)
	if m.stampFunc != nil {
		return m.stampFunc(ctx, input, bookmarkFile, output)
	}
	return touch(output)
}

func (m *mockToolchain) callsOf(op string) []toolCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []toolCall
	for _, c := range m.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

type mockPageCounter struct {
	pageCountFunc func(path string) (int, error)
}

func (m *mockPageCounter) PageCount(path string) (int, error) {
	return m.pageCountFunc(path)
}
