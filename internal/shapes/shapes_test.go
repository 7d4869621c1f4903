package shapes

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"

	"github.com/andrewarrow/weave/internal/fontmetric"
)

func TestStripVisibilityHidden(t *testing.T) {
	el := etree.NewElement("g")
	el.CreateAttr("style", "visibility:hidden;stroke:red")
	stripVisibilityHidden(el)
	if got := el.SelectAttrValue("style", ""); got != "stroke:red" {
		t.Fatalf("style = %q, want %q", got, "stroke:red")
	}
}

func TestStripVisibilityHiddenNoStyle(t *testing.T) {
	el := etree.NewElement("g")
	stripVisibilityHidden(el) // must not panic
}

func TestLastDashToken(t *testing.T) {
	cases := map[string]string{
		"whiteboard-abc123-line": "line",
		"poll":                   "poll",
		"":                       "",
	}
	for in, want := range cases {
		if got := lastDashToken(in); got != want {
			t.Errorf("lastDashToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIntervalForShapeUndoInheritsSlideOut(t *testing.T) {
	slide := rawSlide{begin: 0, end: 10}
	shape := rawShape{timestamp: 4, undo: -1}
	enter, leave := intervalForShape(shape, slide)
	if enter != 4 || leave != 10 {
		t.Fatalf("enter=%v leave=%v, want 4,10", enter, leave)
	}
}

func TestIntervalForShapeClampsToSlideWindow(t *testing.T) {
	// Scenario: shape A [1,5], shape B [3,8], slide [0,10].
	slide := rawSlide{begin: 0, end: 10}

	a := rawShape{timestamp: 1, undo: 5}
	enter, leave := intervalForShape(a, slide)
	if enter != 1 || leave != 5 {
		t.Fatalf("A: enter=%v leave=%v, want 1,5", enter, leave)
	}

	b := rawShape{timestamp: 3, undo: 8}
	enter, leave = intervalForShape(b, slide)
	if enter != 3 || leave != 8 {
		t.Fatalf("B: enter=%v leave=%v, want 3,8", enter, leave)
	}
}

func TestIntervalForShapeOutsideSlideWindowContributesNothingExtra(t *testing.T) {
	slide := rawSlide{begin: 2, end: 6}
	shape := rawShape{timestamp: 0, undo: 100}
	enter, leave := intervalForShape(shape, slide)
	if enter != 2 || leave != 6 {
		t.Fatalf("enter=%v leave=%v, want clamped to slide window 2,6", enter, leave)
	}
}

func TestPackGreedyWrap(t *testing.T) {
	client := fontmetric.NewMonospaceClient() // 0.6 px/char at pointsize
	lines, err := pack(context.Background(), client, "the quick brown fox", " ", 10, 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) == 0 {
		t.Fatal("expected wrapped lines")
	}
	for _, l := range lines {
		w, _ := client.Measure(context.Background(), l, 10)
		if w > 30+1e-9 {
			t.Errorf("line %q exceeds maxWidth: %v > 30", l, w)
		}
	}
}

func TestPackCharLevelFallbackRequeuesTail(t *testing.T) {
	client := fontmetric.NewMonospaceClient()
	// A single token far wider than maxWidth must be split char-wise, and
	// a short following word should be able to join the final fragment.
	lines, err := pack(context.Background(), client, "supercalifragilisticexpialidocious hi", " ", 10, 18)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines from char-level fallback, got %v", lines)
	}
}

func TestWrapTextHandlesBR(t *testing.T) {
	client := fontmetric.NewMonospaceClient()
	lines, err := wrapText(context.Background(), client, "hello<br/>world", 10, 100)
	if err != nil {
		t.Fatal(err)
	}
	var sawBR bool
	for _, l := range lines {
		if l.isBR {
			sawBR = true
		}
	}
	if !sawBR {
		t.Fatalf("expected a <br/> tspan marker in %v", lines)
	}
}

func TestWrapTextSuppressesLeadingBR(t *testing.T) {
	client := fontmetric.NewMonospaceClient()
	lines, err := wrapText(context.Background(), client, "<br/>hello", 10, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0].isBR {
		t.Fatalf("leading <br/> should be suppressed, got %v", lines)
	}
}

const testShapesSVG = `<svg xmlns="http://www.w3.org/2000/svg">
  <g id="canvas">
    <image class="slide" in="0" out="10" width="800" height="600" href="slide1.png"/>
    <g timestamp="1" undo="5" shape="whiteboard-abc-rect" style="visibility:hidden;stroke:red">
      <rect x="0" y="0" width="10" height="10"/>
    </g>
    <g timestamp="3" undo="8" shape="whiteboard-def-line" style="stroke:blue">
      <line x1="0" y1="0" x2="5" y2="5"/>
    </g>
  </g>
</svg>`

func TestIngestTwoShapesOneSlide(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shapes.svg")
	if err := os.WriteFile(path, []byte(testShapesSVG), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := Ingest(context.Background(), path, Options{
		PublishedRoot: dir,
		FileRefs:      true,
		Font:          fontmetric.NewMonospaceClient(),
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(doc.Slides) != 1 {
		t.Fatalf("slides = %d, want 1", len(doc.Slides))
	}
	if !strings.HasPrefix(doc.Slides[0].Href, "file://") {
		t.Fatalf("slide href = %q, want file:// URI", doc.Slides[0].Href)
	}

	if len(doc.Annotations) != 2 {
		t.Fatalf("annotations = %d, want 2", len(doc.Annotations))
	}

	a, b := doc.Annotations[0], doc.Annotations[1]
	if a.Begin != 1 || a.End != 5 {
		t.Fatalf("shape A interval = [%v,%v], want [1,5]", a.Begin, a.End)
	}
	if b.Begin != 3 || b.End != 8 {
		t.Fatalf("shape B interval = [%v,%v], want [3,8]", b.Begin, b.End)
	}
	if a.ID != "rect" || b.ID != "line" {
		t.Fatalf("ids = %q,%q, want rect,line", a.ID, b.ID)
	}
	if strings.Contains(a.Value, "visibility:hidden") {
		t.Fatalf("shape A value retains visibility:hidden: %s", a.Value)
	}
}
