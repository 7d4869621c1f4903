// Package panzoom ingests panzooms.xml: a streaming sequence of viewport
// change events, each naming the viewBox active from its timestamp until
// the next event.
package panzoom

import (
	"encoding/xml"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/andrewarrow/weave/internal/pipelineerr"
)

// Event is one `(t, viewBox)` pair: viewBox becomes active at t and remains
// so until the next Event's t.
type Event struct {
	T       float64
	ViewBox string // "x y w h"
}

// Box returns the four numeric components of e.ViewBox.
func (e Event) Box() (x, y, w, h float64, err error) {
	fields := strings.Fields(e.ViewBox)
	if len(fields) != 4 {
		return 0, 0, 0, 0, pipelineerr.Malformed("panzoom viewBox", errBadViewBox)
	}
	vals := make([]float64, 4)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, 0, 0, 0, pipelineerr.Malformed("panzoom viewBox", err)
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}

// Ingest parses panzooms.xml at path into a time-sorted slice of Events,
// pulling viewBox text content via a streaming decoder rather than
// building a DOM, per the design's streaming-vs-DOM split.
func Ingest(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pipelineerr.Missing(path, err)
	}
	defer f.Close()
	return decode(f, path)
}

func decode(r io.Reader, path string) ([]Event, error) {
	dec := xml.NewDecoder(r)

	var events []Event
	var current float64

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, pipelineerr.Malformed(path, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "event":
			for _, a := range start.Attr {
				if a.Name.Local == "timestamp" {
					current, _ = strconv.ParseFloat(a.Value, 64)
				}
			}
		case "viewBox":
			var text string
			if err := dec.DecodeElement(&text, &start); err != nil {
				return nil, pipelineerr.Malformed(path, err)
			}
			events = append(events, Event{T: current, ViewBox: strings.TrimSpace(text)})
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].T < events[j].T })
	return events, nil
}

// Breakpoints returns every event timestamp, for folding into the overall
// breakpoint set.
func Breakpoints(events []Event) []float64 {
	out := make([]float64, len(events))
	for i, e := range events {
		out[i] = e.T
	}
	return out
}

var errBadViewBox = xmlErr("viewBox must have exactly 4 components")

type xmlErr string

func (e xmlErr) Error() string { return string(e) }
