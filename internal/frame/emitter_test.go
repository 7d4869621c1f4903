package frame

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrewarrow/weave/internal/config"
	"github.com/andrewarrow/weave/internal/panzoom"
	"github.com/andrewarrow/weave/internal/shapes"
)

func testCfg() config.Config {
	cfg := config.Default()
	cfg.SVGZCompression = false
	cfg.SlidesWidth = 800
	cfg.SlidesHeight = 600
	return cfg
}

func TestEmitSingleSlideNoShapes(t *testing.T) {
	dir := t.TempDir()
	slides := []shapes.Slide{{Href: "slide.png", Begin: 0, End: 10, Width: 800, Height: 600}}

	res, err := Emit([]float64{0, 10}, slides, nil, nil, testCfg(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if res.FrameCount != 1 {
		t.Fatalf("FrameCount = %d, want 1", res.FrameCount)
	}
	if !strings.Contains(res.Playlist, "duration 10") {
		t.Fatalf("playlist missing duration 10: %s", res.Playlist)
	}
	// Concat-demuxer convention: last frame file repeated with no duration.
	lines := strings.Split(strings.TrimRight(res.Playlist, "\n"), "\n")
	if lines[len(lines)-1] != "file ../frames/frame0.svg" {
		t.Fatalf("last playlist line = %q, want bare repeat of frame0", lines[len(lines)-1])
	}

	if _, err := os.Stat(filepath.Join(dir, "frame0.svg")); err != nil {
		t.Fatalf("frame0.svg not written: %v", err)
	}
}

func TestEmitTwoShapesOneSlide(t *testing.T) {
	dir := t.TempDir()
	slides := []shapes.Slide{{Href: "slide.png", Begin: 0, End: 10, Width: 800, Height: 600}}
	annotations := []shapes.Annotation{
		{Begin: 1, End: 5, Value: "<g id=\"A\"/>", ID: "A"},
		{Begin: 3, End: 8, Value: "<g id=\"B\"/>", ID: "B"},
	}
	breakpoints := []float64{0, 1, 3, 5, 8, 10}

	res, err := Emit(breakpoints, slides, annotations, nil, testCfg(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if res.FrameCount != 5 {
		t.Fatalf("FrameCount = %d, want 5", res.FrameCount)
	}

	// Frame covering [3,5]: both A and B visible.
	frame2, err := os.ReadFile(filepath.Join(dir, "frame2.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(frame2), `id="A"`) || !strings.Contains(string(frame2), `id="B"`) {
		t.Fatalf("frame2 (interval [3,5]) missing a shape: %s", frame2)
	}

	// Frame covering [5,8]: only B visible.
	frame3, err := os.ReadFile(filepath.Join(dir, "frame3.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(frame3), `id="A"`) {
		t.Fatalf("frame3 (interval [5,8]) should not contain A: %s", frame3)
	}
	if !strings.Contains(string(frame3), `id="B"`) {
		t.Fatalf("frame3 (interval [5,8]) missing B: %s", frame3)
	}
}

func TestEmitUsesPanzoomViewBoxAtBoundary(t *testing.T) {
	dir := t.TempDir()
	slides := []shapes.Slide{{Href: "slide.png", Begin: 0, End: 10, Width: 800, Height: 600}}
	panzooms := []panzoom.Event{{T: 4, ViewBox: "0 0 400 300"}}
	breakpoints := []float64{0, 4, 10}

	res, err := Emit(breakpoints, slides, nil, panzooms, testCfg(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if res.FrameCount != 2 {
		t.Fatalf("FrameCount = %d, want 2", res.FrameCount)
	}

	frame0, _ := os.ReadFile(filepath.Join(dir, "frame0.svg"))
	frame1, _ := os.ReadFile(filepath.Join(dir, "frame1.svg"))
	if strings.Contains(string(frame0), `viewBox="0 0 400 300"`) {
		t.Fatalf("frame0 should not yet use the new viewBox: %s", frame0)
	}
	if !strings.Contains(string(frame1), `viewBox="0 0 400 300"`) {
		t.Fatalf("frame1 should use the new viewBox: %s", frame1)
	}
}

func TestEmitIsDeterministic(t *testing.T) {
	dir1, dir2 := t.TempDir(), t.TempDir()
	slides := []shapes.Slide{{Href: "slide.png", Begin: 0, End: 10, Width: 800, Height: 600}}
	annotations := []shapes.Annotation{{Begin: 1, End: 5, Value: "<g/>", ID: "A"}}
	breakpoints := []float64{0, 1, 5, 10}

	r1, err := Emit(breakpoints, slides, annotations, nil, testCfg(), dir1)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Emit(breakpoints, slides, annotations, nil, testCfg(), dir2)
	if err != nil {
		t.Fatal(err)
	}
	if r1.Playlist != r2.Playlist {
		t.Fatalf("playlist not deterministic:\n%s\n!=\n%s", r1.Playlist, r2.Playlist)
	}
}

func TestRemoveRedundantShapesDropsEarlierDuplicateID(t *testing.T) {
	dir := t.TempDir()
	slides := []shapes.Slide{{Href: "slide.png", Begin: 0, End: 10, Width: 800, Height: 600}}
	annotations := []shapes.Annotation{
		{Begin: 0, End: 10, Value: `<g id="v1">old</g>`, ID: "dup"},
		{Begin: 0, End: 10, Value: `<g id="v2">new</g>`, ID: "dup"},
	}
	cfg := testCfg()
	cfg.RemoveRedundantShapes = true

	res, err := Emit([]float64{0, 10}, slides, annotations, nil, cfg, dir)
	if err != nil {
		t.Fatal(err)
	}
	_ = res

	frame0, err := os.ReadFile(filepath.Join(dir, "frame0.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(frame0), `id="v1"`) {
		t.Fatalf("expected earlier duplicate shape dropped: %s", frame0)
	}
	if !strings.Contains(string(frame0), `id="v2"`) {
		t.Fatalf("expected later duplicate shape kept: %s", frame0)
	}
}
