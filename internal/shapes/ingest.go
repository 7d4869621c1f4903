package shapes

import (
	"bytes"
	"context"
	"os"

	"github.com/beevik/etree"

	"github.com/andrewarrow/weave/internal/fontmetric"
	"github.com/andrewarrow/weave/internal/pipelineerr"
)

// Options configures a single Ingest call.
type Options struct {
	// PublishedRoot is the per-meeting directory local image references in
	// poll shapes are resolved against.
	PublishedRoot string
	// FileRefs selects file:// URIs over inlined base64 data URIs for slide
	// and poll images (Config.FFmpegReferenceSupport).
	FileRefs bool
	Font     fontmetric.Client
}

// Ingest parses shapes.svg at path, producing the slide timeline, every
// normalized shape annotation with its visible interval, and the
// breakpoints this document contributes.
func Ingest(ctx context.Context, path string, opts Options) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, pipelineerr.Missing(path, err)
	}

	rawSlides, rawShapesList, err := scanTimeline(bytes.NewReader(raw), path)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, pipelineerr.Malformed(path, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, pipelineerr.Malformed(path, errNoRoot)
	}
	canvas := findCanvas(root)
	if canvas == nil {
		canvas = root
	}

	elements := findShapeElements(canvas)
	if len(elements) != len(rawShapesList) {
		// Streaming and DOM passes disagree on shape count; the document
		// is structurally inconsistent (namespaces not flattened, or a
		// shape missing its timestamp attribute in one view but not the
		// other).
		return nil, pipelineerr.Malformed(path, errShapeCountMismatch)
	}

	n := &normalizer{
		ctx:           ctx,
		font:          opts.Font,
		publishedRoot: opts.PublishedRoot,
		fileRefs:      opts.FileRefs,
	}

	out := &Document{}

	slideIdx := -1
	var breakpoints []float64

	for _, s := range rawSlides {
		href, err := n.resolveImageRef(s.href)
		if err != nil {
			return nil, err
		}
		out.Slides = append(out.Slides, Slide{
			Href:   href,
			Begin:  s.begin,
			End:    s.end,
			Width:  s.width,
			Height: s.height,
		})
		breakpoints = append(breakpoints, s.begin, s.end)
	}

	for i, rs := range rawShapesList {
		slide := slideFor(rawSlides, &slideIdx, rs.timestamp)
		enter, leave := intervalForShape(rs, slide)
		breakpoints = append(breakpoints, enter, leave)

		el := elements[i]
		id, err := n.normalizeShape(el)
		if err != nil {
			return nil, err
		}
		value, err := serialize(el)
		if err != nil {
			return nil, err
		}

		out.Annotations = append(out.Annotations, Annotation{
			Begin: enter,
			End:   leave,
			Value: value,
			ID:    id,
		})
	}

	out.Breakpoints = breakpoints

	normalized, err := doc.WriteToBytes()
	if err != nil {
		return nil, pipelineerr.Malformed(path, err)
	}
	out.Normalized = normalized

	return out, nil
}

// findCanvas returns the root <g> the annotation/slide traversal starts
// from, conventionally id="canvas" in the recorder's document.
func findCanvas(root *etree.Element) *etree.Element {
	for _, g := range root.SelectElements("g") {
		if g.SelectAttrValue("id", "") == "canvas" {
			return g
		}
	}
	return nil
}

// findShapeElements returns every descendant <g> of root carrying a
// "timestamp" attribute, in document order, the same traversal the
// streaming pass applies when it decides an element is a shape group.
func findShapeElements(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		for _, child := range el.ChildElements() {
			if child.Tag == "g" && child.SelectAttr("timestamp") != nil {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(root)
	return out
}
