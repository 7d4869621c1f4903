package shapes

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/andrewarrow/weave/internal/pipelineerr"
)

// rawSlide is a slide/poll image as it appears in the document, before any
// href rewriting.
type rawSlide struct {
	href          string
	begin, end    float64
	width, height int
}

// rawShape is one `<g class="shape">` annotation's timing attributes, in
// document order.
type rawShape struct {
	timestamp float64
	undo      float64
	shapeAttr string
}

// scanTimeline performs the streaming timing pass over shapes.svg: a pull
// reader tracks the current slide's in/out and, for every shape group,
// computes its enter/leave window per distilled §4.4. It never builds a
// DOM; only the normalization pass materializes a tree.
func scanTimeline(r io.Reader, path string) ([]rawSlide, []rawShape, error) {
	dec := xml.NewDecoder(r)

	var slides []rawSlide
	var shapes []rawShape

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, pipelineerr.Malformed(path, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "image":
			if attrVal(start, "class") != "slide" {
				continue
			}
			in, _ := strconv.ParseFloat(attrVal(start, "in"), 64)
			out, _ := strconv.ParseFloat(attrVal(start, "out"), 64)
			w, _ := strconv.Atoi(attrVal(start, "width"))
			h, _ := strconv.Atoi(attrVal(start, "height"))
			href := attrVal(start, "href")
			if href == "" {
				href = attrVal(start, "xlink:href")
			}
			slides = append(slides, rawSlide{href: href, begin: in, end: out, width: w, height: h})

		case "g":
			ts := attrVal(start, "timestamp")
			if ts == "" {
				continue
			}
			timestamp, _ := strconv.ParseFloat(ts, 64)
			undo := -1.0
			if u := attrVal(start, "undo"); u != "" {
				undo, _ = strconv.ParseFloat(u, 64)
			}
			shapes = append(shapes, rawShape{
				timestamp: timestamp,
				undo:      undo,
				shapeAttr: attrVal(start, "shape"),
			})
		}
	}

	return slides, shapes, nil
}

func attrVal(start xml.StartElement, name string) string {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// intervalForShape computes a shape's visible [enter, leave] window given
// the slide active when it was drawn, per distilled §4.4:
//
//	enter = max(timestamp, slide.in)
//	leave = min(max(undo_or_slide_out_if_negative, slide.in), slide.out)
func intervalForShape(s rawShape, slide rawSlide) (enter, leave float64) {
	enter = maxFloat(s.timestamp, slide.begin)

	undoOrOut := s.undo
	if undoOrOut < 0 {
		undoOrOut = slide.end
	}
	leave = minFloat(maxFloat(undoOrOut, slide.begin), slide.end)
	return enter, leave
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// slideFor returns the slide active at the time a shape was drawn: the last
// slide whose begin is <= timestamp. Shapes are expected to be interleaved
// with slide boundaries in document order, so a linear scan from the most
// recently seen slide is sufficient; callers walk shapes in document order
// alongside a running slide index.
func slideFor(slides []rawSlide, idx *int, timestamp float64) rawSlide {
	for *idx+1 < len(slides) && slides[*idx+1].begin <= timestamp {
		*idx++
	}
	if *idx < 0 || *idx >= len(slides) {
		return rawSlide{}
	}
	return slides[*idx]
}
