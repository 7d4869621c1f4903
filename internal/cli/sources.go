package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/andrewarrow/weave/internal/meeting"
	"github.com/andrewarrow/weave/internal/pipelineerr"
)

// discoverSources locates every artifact under the meeting's published
// tree. Required artifacts (shapes, panzooms, cursor, metadata, webcams,
// background) must exist; optional ones (chat, deskshare, captions) are
// left empty when absent, which flips the corresponding feature off
// downstream.
func discoverSources(publishedBase, meetingID, background string) (meeting.Sources, error) {
	dir := filepath.Join(publishedBase, meetingID)

	src := meeting.Sources{
		Dir:         dir,
		ShapesSVG:   filepath.Join(dir, "shapes.svg"),
		PanzoomsXML: filepath.Join(dir, "panzooms.xml"),
		CursorXML:   filepath.Join(dir, "cursor.xml"),
		MetadataXML: filepath.Join(dir, "metadata.xml"),
	}

	for _, required := range []string{src.ShapesSVG, src.PanzoomsXML, src.CursorXML, src.MetadataXML} {
		if _, err := os.Stat(required); err != nil {
			return meeting.Sources{}, pipelineerr.Missing(required, err)
		}
	}

	webcams, err := firstExisting(
		filepath.Join(dir, "video", "webcams.mp4"),
		filepath.Join(dir, "video", "webcams.webm"),
	)
	if err != nil {
		return meeting.Sources{}, pipelineerr.Missing(filepath.Join(dir, "video", "webcams.{mp4|webm}"), err)
	}
	src.WebcamsVideo = webcams

	if background == "" {
		background = filepath.Join(dir, "background.mp4")
	}
	if _, err := os.Stat(background); err != nil {
		return meeting.Sources{}, pipelineerr.Missing(background, err)
	}
	src.BackgroundLoop = background

	if deskshare, err := firstExisting(
		filepath.Join(dir, "deskshare", "deskshare.mp4"),
		filepath.Join(dir, "deskshare", "deskshare.webm"),
	); err == nil {
		src.DeskshareVideo = deskshare
	}

	if chat := filepath.Join(dir, "slides_new.xml"); exists(chat) {
		src.ChatXML = chat
	}
	if captions := filepath.Join(dir, "captions.json"); exists(captions) {
		src.CaptionsJSON = captions
	}

	return src, nil
}

// firstExisting returns the first path that stats cleanly.
func firstExisting(paths ...string) (string, error) {
	for _, p := range paths {
		if exists(p) {
			return p, nil
		}
	}
	return "", errors.New("no candidate file exists")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
