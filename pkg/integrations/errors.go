package integrations

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrToolFailed   = errors.New("external tool failed")
	ErrNoInputs     = errors.New("no input files")
	ErrInvalidImage = errors.New("invalid image")
)

// ToolError carries the captured error stream of a failed tool invocation.
type ToolError struct {
	Tool   string
	Args   []string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s failed: %s", e.Tool, msg)
}

func (e *ToolError) Unwrap() []error {
	return []error{ErrToolFailed, e.Err}
}
