// Package frame composes, per breakpoint interval, the whiteboard frame SVG
// (slide + active viewBox + visible shapes) and the concat playlist that
// feeds the filter-graph assembler's whiteboard input.
package frame

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andrewarrow/weave/internal/config"
	"github.com/andrewarrow/weave/internal/interval"
	"github.com/andrewarrow/weave/internal/panzoom"
	"github.com/andrewarrow/weave/internal/pipelineerr"
	"github.com/andrewarrow/weave/internal/shapes"
	"github.com/andrewarrow/weave/internal/svgmodel"
)

// Result is the output of Emit: the concat playlist text and the frame
// count, for callers that need to report progress or verify determinism.
type Result struct {
	Playlist   string
	FrameCount int
}

// Emit writes one frame file per breakpoint interval into outDir and
// returns the concat playlist describing their durations.
func Emit(
	breakpoints []float64,
	slides []shapes.Slide,
	annotations []shapes.Annotation,
	panzooms []panzoom.Event,
	cfg config.Config,
	outDir string,
) (*Result, error) {
	if len(breakpoints) < 2 {
		return nil, pipelineerr.Malformed("breakpoints", errTooFewBreakpoints)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, pipelineerr.Output(outDir, err)
	}

	tree := interval.New(toAnnotationIntervals(annotations))

	ext := "svg"
	if cfg.SVGZCompression {
		ext = "svgz"
	}

	var playlist strings.Builder
	slideIdx := -1
	pzIdx := -1

	var lastLine string

	for i := 0; i+1 < len(breakpoints); i++ {
		ta, tb := breakpoints[i], breakpoints[i+1]

		for slideIdx+1 < len(slides) && slides[slideIdx+1].Begin <= ta {
			slideIdx++
		}
		for pzIdx+1 < len(panzooms) && panzooms[pzIdx+1].T <= ta {
			pzIdx++
		}

		var slide shapes.Slide
		if slideIdx >= 0 {
			slide = slides[slideIdx]
		}

		viewBox := fmt.Sprintf("0 0 %d %d", slide.Width, slide.Height)
		if pzIdx >= 0 {
			viewBox = panzooms[pzIdx].ViewBox
		}

		visible := visibleShapes(tree, annotations, ta, cfg.RemoveRedundantShapes)

		doc, err := composeFrame(slide, viewBox, visible, cfg)
		if err != nil {
			return nil, err
		}

		data, err := svgmodel.Marshal(doc)
		if err != nil {
			return nil, err
		}

		name := fmt.Sprintf("frame%d.%s", i, ext)
		if err := writeFrame(filepath.Join(outDir, name), data, cfg.SVGZCompression); err != nil {
			return nil, err
		}

		lastLine = fmt.Sprintf("file ../frames/%s", name)
		playlist.WriteString(lastLine)
		playlist.WriteByte('\n')
		playlist.WriteString(fmt.Sprintf("duration %s\n", strconv.FormatFloat(round1(tb-ta), 'f', -1, 64)))
	}

	// Concat-demuxer convention: repeat the final frame with no duration.
	playlist.WriteString(lastLine)
	playlist.WriteByte('\n')

	return &Result{Playlist: playlist.String(), FrameCount: len(breakpoints) - 1}, nil
}

func toAnnotationIntervals(annotations []shapes.Annotation) []interval.Annotation {
	out := make([]interval.Annotation, len(annotations))
	for i, a := range annotations {
		out[i] = interval.Annotation{Begin: a.Begin, End: a.End}
	}
	return out
}

// visibleShapes queries the tree at t, drops shapes whose leave time is t
// (they are gone in the frame that starts at t), and applies the adjacent
// z-order dedup policy when enabled: of two adjacent equal-id shapes, the
// earlier is dropped since a redraw with the same id always supersedes it.
func visibleShapes(tree *interval.Tree, annotations []shapes.Annotation, t float64, dedup bool) []shapes.Annotation {
	idx := tree.Search(t)
	visible := make([]shapes.Annotation, 0, len(idx))
	for _, id := range idx {
		if annotations[id].End <= t {
			continue
		}
		visible = append(visible, annotations[id])
	}
	if !dedup {
		return visible
	}

	out := visible[:0:0]
	for i, a := range visible {
		if i+1 < len(visible) && visible[i+1].ID == a.ID {
			continue
		}
		out = append(out, a)
	}
	return out
}

// composeFrame builds the outer letterboxed Document holding the active
// slide and its visible shapes.
func composeFrame(slide shapes.Slide, activeViewBox string, visible []shapes.Annotation, cfg config.Config) (*svgmodel.Document, error) {
	outerViewBox, err := letterboxViewBox(activeViewBox, cfg.SlidesWidth, cfg.SlidesHeight)
	if err != nil {
		return nil, err
	}

	inner := svgmodel.Inner{ViewBox: activeViewBox}
	if slide.Href != "" {
		inner.Image = &svgmodel.Image{XlinkHref: slide.Href, Width: slide.Width, Height: slide.Height}
	}
	fragments := make([]svgmodel.Raw, len(visible))
	for i, a := range visible {
		fragments[i] = svgmodel.Raw(a.Value)
	}
	inner.Shapes = svgmodel.Join(fragments)

	return &svgmodel.Document{
		Xmlns:      "http://www.w3.org/2000/svg",
		XmlnsXlink: "http://www.w3.org/1999/xlink",
		Width:      cfg.SlidesWidth,
		Height:     cfg.SlidesHeight,
		ViewBox:    outerViewBox,
		Inner:      inner,
	}, nil
}

// letterboxViewBox computes the outer viewBox that letterboxes active's
// aspect ratio into a boxW x boxH box: it keeps one of active's own
// dimensions and pads the other so that scaling the result uniformly to
// fill boxW x boxH centers the content exactly as CSS object-fit: contain
// would.
func letterboxViewBox(active string, boxW, boxH int) (string, error) {
	fields := strings.Fields(active)
	if len(fields) != 4 {
		return "", pipelineerr.Malformed("viewBox", errBadViewBox)
	}
	x, errx := strconv.ParseFloat(fields[0], 64)
	y, erry := strconv.ParseFloat(fields[1], 64)
	w, errw := strconv.ParseFloat(fields[2], 64)
	h, errh := strconv.ParseFloat(fields[3], 64)
	if errx != nil || erry != nil || errw != nil || errh != nil || w <= 0 || h <= 0 {
		return "", pipelineerr.Malformed("viewBox", errBadViewBox)
	}

	boxAspect := float64(boxW) / float64(boxH)
	slideAspect := w / h

	var outW, outH, outX, outY float64
	if slideAspect > boxAspect {
		outW = w
		outH = w / boxAspect
		outX = x
		outY = y - (outH-h)/2
	} else {
		outH = h
		outW = h * boxAspect
		outY = y
		outX = x - (outW-w)/2
	}

	return fmt.Sprintf("%s %s %s %s",
		strconv.FormatFloat(outX, 'f', -1, 64),
		strconv.FormatFloat(outY, 'f', -1, 64),
		strconv.FormatFloat(outW, 'f', -1, 64),
		strconv.FormatFloat(outH, 'f', -1, 64),
	), nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func writeFrame(path string, data []byte, gzipped bool) error {
	if !gzipped {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return pipelineerr.Output(path, err)
		}
		return nil
	}

	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return pipelineerr.Output(path, err)
	}
	if _, err := w.Write(data); err != nil {
		return pipelineerr.Output(path, err)
	}
	if err := w.Close(); err != nil {
		return pipelineerr.Output(path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return pipelineerr.Output(path, err)
	}
	return nil
}

type frameErr string

func (e frameErr) Error() string { return string(e) }

const errTooFewBreakpoints = frameErr("need at least 2 breakpoints to emit a frame")
const errBadViewBox = frameErr("viewBox must have exactly 4 numeric components")
