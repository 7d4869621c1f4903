package chat

import (
	"fmt"
	"html"
	"strconv"

	"github.com/andrewarrow/weave/internal/svgmodel"
)

// SVG renders every accumulated text node into the chat sprite document.
func (e *Engine) SVG() ([]byte, error) {
	fragments := make([]svgmodel.Raw, len(e.texts))
	for i, t := range e.texts {
		fragments[i] = renderText(t, e.cfg.ChatWidth, e.cfg.ChatFontSize)
	}

	sprite := svgmodel.Sprite{
		Xmlns:  "http://www.w3.org/2000/svg",
		Width:  int(e.Width()),
		Height: int(e.Height()),
		Nodes:  svgmodel.Join(fragments),
	}

	return svgmodel.Marshal(sprite)
}

func renderText(t textNode, chatWidth, fontSize int) svgmodel.Raw {
	x := t.x
	anchor := ""
	if t.rtl {
		// RTL messages anchor at the column's right edge.
		x += float64(chatWidth)
		anchor = ` text-anchor="end"`
	}
	weight := ""
	if t.bold {
		weight = ` font-weight="bold"`
	}
	return svgmodel.Raw(fmt.Sprintf(
		`<text x="%s" y="%s" font-family="monospace" font-size="%d"%s%s>%s</text>`,
		strconv.FormatFloat(x, 'f', -1, 64),
		strconv.FormatFloat(t.y, 'f', -1, 64),
		fontSize,
		anchor, weight,
		html.EscapeString(t.text),
	))
}

// FormatCommandLines renders cmds as the "<t> crop@c x <x>, crop@c y <y>;"
// timestamps file the encoder's sendcmd filter consumes for the chat
// sprite's crop window.
func FormatCommandLines(cmds []Command) []string {
	lines := make([]string, len(cmds))
	for i, c := range cmds {
		lines[i] = fmt.Sprintf("%s crop@c x %s, crop@c y %s;",
			strconv.FormatFloat(c.T, 'f', -1, 64),
			strconv.FormatFloat(c.X, 'f', 0, 64),
			strconv.FormatFloat(c.Y, 'f', 0, 64),
		)
	}
	return lines
}
