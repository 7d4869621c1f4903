package svgmodel

import (
	"strings"
	"testing"
)

func TestMarshalKeepsRawFragmentsUnescaped(t *testing.T) {
	doc := Document{
		Xmlns:   "http://www.w3.org/2000/svg",
		Width:   800,
		Height:  600,
		ViewBox: "0 0 800 600",
		Inner: Inner{
			ViewBox: "0 0 800 600",
			Shapes:  Join([]Raw{`<g id="a"/>`, `<g id="b"/>`}),
		},
	}

	data, err := Marshal(&doc)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, `<g id="a"/>`) || !strings.Contains(s, `<g id="b"/>`) {
		t.Fatalf("shape fragments must appear verbatim: %s", s)
	}
	if strings.Contains(s, "&lt;g") {
		t.Fatalf("shape fragments must not be escaped: %s", s)
	}
}

func TestMarshalSpriteCarriesNodesVerbatim(t *testing.T) {
	sprite := Sprite{
		Xmlns:  "http://www.w3.org/2000/svg",
		Width:  16,
		Height: 16,
		Nodes:  `<circle cx="8" cy="8" r="8" fill="red"/>`,
	}
	data, err := Marshal(&sprite)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `<circle cx="8"`) {
		t.Fatalf("sprite node must appear verbatim: %s", data)
	}
}
