// Package cursor ingests cursor.xml and projects normalized cursor samples
// through the active panzoom viewBox into composite-frame pixel
// coordinates.
package cursor

import (
	"encoding/xml"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/andrewarrow/weave/internal/pipelineerr"
)

// Sample is one normalized cursor position, paired with the timestamp of
// its most recently opened enclosing <event> element (not a positional
// index), so an <event> that does not enclose a <cursor> contributes
// nothing.
type Sample struct {
	T  float64
	Nx float64
	Ny float64
}

// Ingest parses cursor.xml at path into a time-ordered slice of Samples.
func Ingest(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pipelineerr.Missing(path, err)
	}
	defer f.Close()
	return decode(f, path)
}

func decode(r io.Reader, path string) ([]Sample, error) {
	dec := xml.NewDecoder(r)

	var samples []Sample
	var current float64
	haveEvent := false

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
					haveEvent = true
				}
			}
		case "cursor":
			var text string
			if err := dec.DecodeElement(&text, &start); err != nil {
				return nil, pipelineerr.Malformed(path, err)
			}
			if !haveEvent {
				return nil, pipelineerr.Malformed(path, errCursorWithoutEvent)
			}
			fields := strings.Fields(text)
			if len(fields) != 2 {
				return nil, pipelineerr.Malformed(path, errBadCursor)
			}
			nx, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return nil, pipelineerr.Malformed(path, err)
			}
			ny, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, pipelineerr.Malformed(path, err)
			}
			samples = append(samples, Sample{T: current, Nx: nx, Ny: ny})
		}
	}

	sort.SliceStable(samples, func(i, j int) bool { return samples[i].T < samples[j].T })
	return samples, nil
}

type xmlErr string

func (e xmlErr) Error() string { return string(e) }

const errCursorWithoutEvent = xmlErr("cursor element has no enclosing event")
const errBadCursor = xmlErr("cursor element must contain exactly 2 numeric fields")
