// Package metadata reads and rewrites the recording's metadata.xml
// (duration, meeting name, the playback portal's format/link pointers) and
// discovers the optional captions.json sidecar, mirroring the struct-tagged
// XML approach the teacher uses for its own document model rather than any
// hand-built string templating.
package metadata

import (
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"

	"github.com/andrewarrow/weave/internal/pipelineerr"
)

// Meta is the subset of metadata.xml this pipeline reads and rewrites: the
// meeting name under recording/meta and the playback pointer the portal
// follows. The pipeline only ever needs these fields.
type Meta struct {
	XMLName  xml.Name `xml:"recording"`
	Meeting  string   `xml:"meta>meetingName"`
	Playback Playback `xml:"playback"`
}

// Playback holds the portal's pointer to the playable artifact (format and
// link, rewritten once composition succeeds) and its declared duration,
// which is written back unchanged.
type Playback struct {
	Format   string `xml:"format"`
	Link     string `xml:"link"`
	Duration int64  `xml:"duration"` // milliseconds on disk
}

// DurationSeconds returns the recording's declared duration in seconds, the
// unit every other component in this module works in.
func (m Meta) DurationSeconds() float64 {
	return float64(m.Playback.Duration) / 1000
}

// Read parses metadata.xml at path.
func Read(path string) (Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, pipelineerr.Missing(path, err)
	}
	var m Meta
	if err := xml.Unmarshal(data, &m); err != nil {
		return Meta{}, pipelineerr.Malformed(path, err)
	}
	return m, nil
}

// RewriteSuccess points the portal at the finished MP4 and writes the
// result back to path. Called only after the final file has been moved
// into place by the scratch/commit step.
func RewriteSuccess(path string, m Meta, outputLink string) error {
	m.Playback.Format = "video"
	m.Playback.Link = outputLink
	return write(path, m)
}

func write(path string, m Meta) error {
	data, err := xml.MarshalIndent(m, "", "  ")
	if err != nil {
		return pipelineerr.Output(path, err)
	}
	data = append([]byte(xml.Header), data...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return pipelineerr.Output(path, err)
	}
	return nil
}

// CaptionEntry is one locale's subtitle track as listed in captions.json.
// The VTT path is not part of the index; it follows the caption_<locale>.vtt
// naming convention and is filled in by ResolveCaptionPaths.
type CaptionEntry struct {
	Locale     string `json:"locale"`
	LocaleName string `json:"localeName"`
	File       string `json:"-"`
}

// ReadCaptionIndex parses captions.json at path. A missing file is not an
// error: captions are an optional artifact, and the caller should fall back
// to no-caption behavior.
func ReadCaptionIndex(path string) ([]CaptionEntry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, pipelineerr.Missing(path, err)
	}
	var entries []CaptionEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, pipelineerr.Malformed(path, err)
	}
	return entries, nil
}

// ResolveCaptionPaths derives each entry's VTT path as
// caption_<locale>.vtt under dir and verifies it actually exists on disk,
// dropping (not erroring on) any entry whose file is missing so one absent
// track doesn't fail the whole caption pass.
func ResolveCaptionPaths(dir string, entries []CaptionEntry) []CaptionEntry {
	var resolved []CaptionEntry
	for _, e := range entries {
		full := filepath.Join(dir, "caption_"+e.Locale+".vtt")
		if _, err := os.Stat(full); err != nil {
			continue
		}
		e.File = full
		resolved = append(resolved, e)
	}
	return resolved
}
