// Package encode builds the external encoder invocation (an ffmpeg-style
// CLI) from the composite layout: the filter-complex graph, the ordered
// input list, and the output specifiers, plus the chapter-metadata
// re-mux pass that runs after the main encode.
package encode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/andrewarrow/weave/internal/pipelineerr"
)

// Client runs the configured encoder binary with an argument slice built by
// the caller, never a shell-interpolated string.
type Client interface {
	Run(ctx context.Context, args []string) error
}

// ExecClient shells out to bin (default "ffmpeg") via os/exec, the same
// invocation idiom the teacher's fcp/transaction.go and
// fcp/dtd_validation.go use for external tools.
type ExecClient struct {
	Bin string
}

// NewExecClient returns an ExecClient bound to bin.
func NewExecClient(bin string) *ExecClient {
	return &ExecClient{Bin: bin}
}

// Run invokes the encoder and awaits it to completion. A nonzero exit
// aborts the whole pipeline; the combined output is attached to the error
// for diagnosis.
func (c *ExecClient) Run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, c.Bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return pipelineerr.ToolFailure(c.Bin, fmt.Errorf("%v: %s", err, strings.TrimSpace(out.String())))
	}
	return nil
}
