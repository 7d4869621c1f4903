package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleXML = `<?xml version="1.0"?>
<recording>
  <meta>
    <meetingName>Weekly Standup</meetingName>
  </meta>
  <playback>
    <format>presentation</format>
    <link>https://portal.example/playback/presentation/2.3/meeting-1</link>
    <duration>65000</duration>
  </playback>
</recording>`

func TestReadParsesDurationAndMeeting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.xml")
	if err := os.WriteFile(path, []byte(sampleXML), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Meeting != "Weekly Standup" {
		t.Fatalf("Meeting = %q, want %q", m.Meeting, "Weekly Standup")
	}
	if m.DurationSeconds() != 65 {
		t.Fatalf("DurationSeconds() = %v, want 65", m.DurationSeconds())
	}
}

func TestRewriteSuccessUpdatesLinkAndFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.xml")
	if err := os.WriteFile(path, []byte(sampleXML), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := RewriteSuccess(path, m, "recordings/weekly-standup.mp4"); err != nil {
		t.Fatal(err)
	}

	reread, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if reread.Playback.Link != "recordings/weekly-standup.mp4" {
		t.Fatalf("Link = %q, want rewritten path", reread.Playback.Link)
	}
	if reread.Playback.Format != "video" {
		t.Fatalf("Format = %q, want video", reread.Playback.Format)
	}
}

func TestReadMissingFileReturnsInputMissing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.xml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "input missing") {
		t.Fatalf("error = %v, want input missing", err)
	}
}

func TestReadCaptionIndexMissingFileReturnsNoError(t *testing.T) {
	entries, err := ReadCaptionIndex(filepath.Join(t.TempDir(), "captions.json"))
	if err != nil {
		t.Fatal(err)
	}
	if entries != nil {
		t.Fatalf("entries = %v, want nil", entries)
	}
}

func TestResolveCaptionPathsDropsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "caption_en.vtt"), []byte("WEBVTT\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	entries := []CaptionEntry{
		{Locale: "en", LocaleName: "English"},
		{Locale: "es", LocaleName: "Spanish"}, // caption_es.vtt absent
	}

	resolved := ResolveCaptionPaths(dir, entries)
	if len(resolved) != 1 {
		t.Fatalf("len(resolved) = %d, want 1", len(resolved))
	}
	if resolved[0].Locale != "en" {
		t.Fatalf("resolved[0].Locale = %q, want en", resolved[0].Locale)
	}
	if filepath.Base(resolved[0].File) != "caption_en.vtt" {
		t.Fatalf("resolved[0].File = %q, want caption_en.vtt under dir", resolved[0].File)
	}
}
