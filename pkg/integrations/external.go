package integrations

import (
	"context"
	"log/slog"
)

const (
	Img2PDF = "img2pdf"
	PDFTK   = "pdftk"
)

// ExternalTools implements Toolchain with img2pdf and pdftk.
type ExternalTools struct {
	Runner CommandRunner
	// Dir is the working directory for every invocation; empty means the current one.
	Dir    string
	Logger *slog.Logger
}

func NewExternalTools() *ExternalTools {
	return &ExternalTools{Runner: &ExecRunner{}, Logger: slog.Default()}
}

func (t *ExternalTools) ImagesToPDF(ctx context.Context, images []string, output string) error {
	if len(images) == 0 {
		return ErrNoInputs
	}
	args := append([]string{"--rotation=ifvalid"}, images...)
	args = append(args, "-o", output)
	return t.run(ctx, Img2PDF, args...)
}

func (t *ExternalTools) MergePDFs(ctx context.Context, pdfs []string, output string) error {
	if len(pdfs) == 0 {
		return ErrNoInputs
	}
	args := append(append([]string{}, pdfs...), "cat", "output", output)
	return t.run(ctx, PDFTK, args...)
}

func (t *ExternalTools) Stamp(ctx context.Context, input, bookmarkFile, output string) error {
	return t.run(ctx, PDFTK, input, "update_info_utf8", bookmarkFile, "output", output)
}

func (t *ExternalTools) run(ctx context.Context, tool string, args ...string) error {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("running tool", "tool", tool, "args", args)

	_, stderr, err := t.Runner.Run(ctx, t.Dir, tool, args...)
	if err != nil {
		toolErr := &ToolError{Tool: tool, Args: args, Stderr: stderr, Err: err}
		logger.Error("tool failed", "tool", tool, "stderr", stderr, "error", err)
		return toolErr
	}
	return nil
}
