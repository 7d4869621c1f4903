// Package fontmetric wraps the external font-metric tool: a process that,
// given a string and a point size, returns the rendered pixel width of that
// string in the DejaVuSans font the annotation layer assumes. The core
// never measures glyphs itself; it delegates to this oracle.
package fontmetric

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/andrewarrow/weave/internal/pipelineerr"
)

// Client measures the rendered pixel width of a string at a given point
// size.
type Client interface {
	Measure(ctx context.Context, s string, pointSize float64) (float64, error)
}

// ExecClient shells out to an ImageMagick-style binary supporting
// `-format "%[fx:w]" label:<text>` pixel-width queries, the same
// os/exec invocation idiom the teacher's dtd_validation.go and
// transaction.go use for external tool calls.
type ExecClient struct {
	// Bin is the binary to invoke, typically "convert" or "magick".
	Bin string
	// Font names the font file passed via -font.
	Font string
}

// NewExecClient returns a Client bound to bin, defaulting to DejaVuSans.
func NewExecClient(bin string) *ExecClient {
	return &ExecClient{Bin: bin, Font: "DejaVu-Sans"}
}

// Measure invokes the configured binary and parses its stdout as a pixel
// width. A nonzero exit or unparsable output is reported as
// pipelineerr.ErrExternalTool.
func (c *ExecClient) Measure(ctx context.Context, s string, pointSize float64) (float64, error) {
	args := []string{
		"-font", c.Font,
		"-pointsize", strconv.FormatFloat(pointSize, 'f', -1, 64),
		"-format", "%[fx:w]",
		fmt.Sprintf("label:%s", s),
		"info:",
	}
	cmd := exec.CommandContext(ctx, c.Bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, pipelineerr.ToolFailure(c.Bin, fmt.Errorf("%v: %s", err, strings.TrimSpace(stderr.String())))
	}

	w, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, pipelineerr.ToolFailure(c.Bin, fmt.Errorf("unparsable width output %q: %v", stdout.String(), err))
	}
	return w, nil
}

// MonospaceClient is a pure-Go fallback measurer used by unit tests and any
// caller that cannot or should not spawn a child process: it assumes every
// rune is pointSize*ratio pixels wide, matching the 3:5 monospace-ratio
// assumption the chat layer already relies on for CHAT_FONT_SIZE_X.
type MonospaceClient struct {
	Ratio float64
}

// NewMonospaceClient returns a MonospaceClient with the standard 0.6 ratio.
func NewMonospaceClient() *MonospaceClient {
	return &MonospaceClient{Ratio: 0.6}
}

// Measure returns len([]rune(s)) * pointSize * Ratio.
func (c *MonospaceClient) Measure(_ context.Context, s string, pointSize float64) (float64, error) {
	n := len([]rune(s))
	return float64(n) * pointSize * c.Ratio, nil
}
