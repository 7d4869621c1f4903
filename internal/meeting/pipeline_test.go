package meeting

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/andrewarrow/weave/internal/config"
	"github.com/andrewarrow/weave/internal/fontmetric"
)

const testShapesSVG = `<svg xmlns="http://www.w3.org/2000/svg">
  <g id="canvas">
    <image class="slide" in="0" out="10" width="800" height="600" href="slide1.png"/>
    <g timestamp="1" undo="5" shape="whiteboard-abc-rect" style="visibility:hidden;stroke:red">
      <rect x="0" y="0" width="10" height="10"/>
    </g>
  </g>
</svg>`

const testPanzoomsXML = `<panzooms>
  <event timestamp="0"><viewBox>0 0 800 600</viewBox></event>
</panzooms>`

const testCursorXML = `<recording>
  <event timestamp="0"><cursor>0.1 0.2</cursor></event>
  <event timestamp="2"><cursor>0.3 0.4</cursor></event>
</recording>`

const testMetadataXML = `<?xml version="1.0"?>
<recording>
  <meta>
    <meetingName>Test Meeting</meetingName>
  </meta>
  <playback>
    <format>presentation</format>
    <link>https://portal.example/playback/presentation/2.3/meeting-1</link>
    <duration>10000</duration>
  </playback>
</recording>`

type fakeEncoder struct {
	runs [][]string
}

func (f *fakeEncoder) Run(ctx context.Context, args []string) error {
	f.runs = append(f.runs, args)
	// Every invocation names an output path as its last argument; create
	// it so downstream stages that stat/rename it succeed.
	if len(args) > 0 {
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("fake media"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func writeFixtures(t *testing.T, dir string) Sources {
	t.Helper()
	shapesPath := filepath.Join(dir, "shapes.svg")
	panzoomsPath := filepath.Join(dir, "panzooms.xml")
	cursorPath := filepath.Join(dir, "cursor.xml")
	metadataPath := filepath.Join(dir, "metadata.xml")
	backgroundPath := filepath.Join(dir, "background.mp4")
	webcamsPath := filepath.Join(dir, "webcams.mp4")

	for path, content := range map[string]string{
		shapesPath:   testShapesSVG,
		panzoomsPath: testPanzoomsXML,
		cursorPath:   testCursorXML,
		metadataPath: testMetadataXML,
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	for _, path := range []string{backgroundPath, webcamsPath} {
		if err := os.WriteFile(path, []byte("fake media"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return Sources{
		Dir:            dir,
		ShapesSVG:      shapesPath,
		PanzoomsXML:    panzoomsPath,
		CursorXML:      cursorPath,
		WebcamsVideo:   webcamsPath,
		BackgroundLoop: backgroundPath,
		MetadataXML:    metadataPath,
	}
}

func TestPipelineRunProducesCommittedOutput(t *testing.T) {
	dir := t.TempDir()
	src := writeFixtures(t, dir)

	cfg := config.Default()
	cfg.SVGZCompression = false
	// file:// refs keep the fixture slide from needing to exist as a
	// readable image for data-URI inlining.
	cfg.FFmpegReferenceSupport = true

	encoder := &fakeEncoder{}
	p := Pipeline{
		Config:       cfg,
		ScratchBase:  filepath.Join(dir, "scratch"),
		RecordingDir: filepath.Join(dir, "recordings"),
		Font:         fontmetric.NewMonospaceClient(),
		Encoder:      encoder,
	}

	outcome, err := p.Run(context.Background(), "meeting-1", src)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(outcome.OutputPath); err != nil {
		t.Fatalf("expected committed output at %s: %v", outcome.OutputPath, err)
	}
	if len(encoder.runs) < 2 {
		t.Fatalf("expected at least a main encode and a chapter remux, got %d runs", len(encoder.runs))
	}

	if _, err := os.Stat(filepath.Join(dir, "scratch", "meeting-1.scratch")); !os.IsNotExist(err) {
		t.Fatalf("expected scratch tree removed after commit, err = %v", err)
	}
}

func TestPipelineRunFailsOnMissingShapesSVG(t *testing.T) {
	dir := t.TempDir()
	src := writeFixtures(t, dir)
	src.ShapesSVG = filepath.Join(dir, "does-not-exist.svg")

	p := Pipeline{
		Config:       config.Default(),
		ScratchBase:  filepath.Join(dir, "scratch"),
		RecordingDir: filepath.Join(dir, "recordings"),
		Font:         fontmetric.NewMonospaceClient(),
		Encoder:      &fakeEncoder{},
	}

	if _, err := p.Run(context.Background(), "meeting-1", src); err == nil {
		t.Fatal("expected error for missing shapes.svg")
	}

	// Rollback must leave the scratch tree in place for diagnosis.
	if _, err := os.Stat(filepath.Join(dir, "scratch", "meeting-1.scratch")); err != nil {
		t.Fatalf("expected scratch tree preserved on failure: %v", err)
	}
}
