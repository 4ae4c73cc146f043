package integrations

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kerbaras/mangapdf/pkg/toc"
)

// NativeTools implements Toolchain in-process with pdfcpu, for hosts without
// img2pdf or pdftk. It reads the same bookmark file the pdftk backend does.
type NativeTools struct {
	conf *model.Configuration
}

func NewNativeTools() *NativeTools {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &NativeTools{conf: conf}
}

func (t *NativeTools) ImagesToPDF(ctx context.Context, images []string, output string) error {
	if len(images) == 0 {
		return ErrNoInputs
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// ImportImagesFile appends to an existing output file.
	if err := removeIfExists(output); err != nil {
		return err
	}
	if err := api.ImportImagesFile(images, output, nil, t.conf); err != nil {
		return &ToolError{Tool: "pdfcpu import", Args: images, Err: err}
	}
	return nil
}

func (t *NativeTools) MergePDFs(ctx context.Context, pdfs []string, output string) error {
	if len(pdfs) == 0 {
		return ErrNoInputs
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := api.MergeCreateFile(pdfs, output, false, t.conf); err != nil {
		return &ToolError{Tool: "pdfcpu merge", Args: pdfs, Err: err}
	}
	return nil
}

func (t *NativeTools) Stamp(ctx context.Context, input, bookmarkFile, output string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(bookmarkFile)
	if err != nil {
		return fmt.Errorf("failed to open bookmark file: %w", err)
	}
	ledger, err := toc.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to parse bookmark file: %w", err)
	}

	staged := filepath.Join(filepath.Dir(output), "."+filepath.Base(output)+".bookmarks")
	defer os.Remove(staged)

	src := input
	if bms := BookmarkTree(ledger.Bookmarks()); len(bms) > 0 {
		if err := api.AddBookmarksFile(input, staged, bms, true, t.conf); err != nil {
			return &ToolError{Tool: "pdfcpu bookmarks", Args: []string{input}, Err: err}
		}
		src = staged
	}

	props := make(map[string]string)
	for _, info := range ledger.Infos() {
		props[info.Key] = info.Value
	}
	if len(props) == 0 {
		return copyFile(src, output)
	}
	if err := api.AddPropertiesFile(src, output, props, t.conf); err != nil {
		return &ToolError{Tool: "pdfcpu properties", Args: []string{src}, Err: err}
	}
	return nil
}

// BookmarkTree nests a flat, level-annotated bookmark list into the outline
// tree pdfcpu expects. A bookmark deeper than its predecessor becomes its kid;
// skipped levels attach to the nearest shallower ancestor.
func BookmarkTree(flat []toc.Bookmark) []pdfcpu.Bookmark {
	type node struct {
		bm    pdfcpu.Bookmark
		level int
		kids  []*node
	}

	var (
		roots []*node
		stack []*node
	)
	for _, b := range flat {
		n := &node{bm: pdfcpu.Bookmark{Title: b.Title, PageFrom: b.Page}, level: b.Level}
		for len(stack) > 0 && stack[len(stack)-1].level >= n.level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, n)
		} else {
			parent := stack[len(stack)-1]
			parent.kids = append(parent.kids, n)
		}
		stack = append(stack, n)
	}

	var build func(nodes []*node) []pdfcpu.Bookmark
	build = func(nodes []*node) []pdfcpu.Bookmark {
		if len(nodes) == 0 {
			return nil
		}
		out := make([]pdfcpu.Bookmark, len(nodes))
		for i, n := range nodes {
			out[i] = n.bm
			out[i].Kids = build(n.kids)
		}
		return out
	}
	return build(roots)
}

// PDFPageCounter counts pages with pdfcpu.
type PDFPageCounter struct{}

func (PDFPageCounter) PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count for %s: %w", path, err)
	}
	return count, nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func copyFile(src, dst string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, content, 0o644)
}
