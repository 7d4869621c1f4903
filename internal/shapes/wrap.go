package shapes

import (
	"context"
	"strings"

	"github.com/andrewarrow/weave/internal/fontmetric"
)

// pack greedily accumulates separator-delimited tokens of s into lines no
// wider than maxWidth at point size pt, measured through client. A token
// that alone exceeds maxWidth is recursively packed char-by-char
// (separator ""); the last char-level fragment from that recursive call is
// not flushed; it becomes the new pending line so a following token may
// still join it.
func pack(ctx context.Context, client fontmetric.Client, s, separator string, pt, maxWidth float64) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	tokens := strings.Split(s, separator)

	var lines []string
	current := ""

	for _, tok := range tokens {
		candidate := tok
		if current != "" {
			candidate = current + separator + tok
		}
		w, err := client.Measure(ctx, candidate, pt)
		if err != nil {
			return nil, err
		}
		if w <= maxWidth {
			current = candidate
			continue
		}

		if current != "" {
			lines = append(lines, current)
			current = ""

			wTok, err := client.Measure(ctx, tok, pt)
			if err != nil {
				return nil, err
			}
			if wTok <= maxWidth {
				current = tok
				continue
			}
		}

		// tok alone (current is now empty) still exceeds maxWidth: fall
		// back to char-level packing.
		charLines, err := pack(ctx, client, tok, "", pt, maxWidth)
		if err != nil {
			return nil, err
		}
		if len(charLines) == 0 {
			continue
		}
		lines = append(lines, charLines[:len(charLines)-1]...)
		current = charLines[len(charLines)-1]
	}

	if current != "" {
		lines = append(lines, current)
	}
	return lines, nil
}

// brSegment is one run of text between (or around) <br/> markers in an
// annotation's XHTML body.
type brSegment struct {
	text      string
	leadingBR bool // a <br/> preceded this segment
}

// splitBR splits raw XHTML-ish text on literal "<br/>", "<br>", and
// "<br />" markers, tracking which segments were introduced by one.
func splitBR(s string) []brSegment {
	replacer := strings.NewReplacer("<br/>", "\x00", "<br />", "\x00", "<br>", "\x00")
	marked := replacer.Replace(s)
	parts := strings.Split(marked, "\x00")

	segs := make([]brSegment, 0, len(parts))
	for i, p := range parts {
		segs = append(segs, brSegment{text: p, leadingBR: i > 0})
	}
	return segs
}

// wrappedLine is one line of the final <text> element: either a line of
// wrapped text, or a blank line standing in for a literal <br/> marker.
type wrappedLine struct {
	text string
	isBR bool
}

// wrapText converts a text annotation's plain-text body (already HTML
// stripped to plain text apart from <br/> markers) into wrapped lines
// ready for one <tspan> each, per the 4.2a algorithm: consecutive <br/>
// markers produce a blank tspan containing the literal "<br/>"; a <br/>
// that comes before any text line (after non-text content only) is
// suppressed because the first text line is already implicit.
func wrapText(ctx context.Context, client fontmetric.Client, body string, pt, maxWidth float64) ([]wrappedLine, error) {
	segs := splitBR(body)

	var out []wrappedLine
	for _, seg := range segs {
		if seg.leadingBR && len(out) > 0 {
			out = append(out, wrappedLine{text: "<br/>", isBR: true})
		}
		if strings.TrimSpace(seg.text) != "" {
			lines, err := pack(ctx, client, seg.text, " ", pt, maxWidth)
			if err != nil {
				return nil, err
			}
			for _, l := range lines {
				out = append(out, wrappedLine{text: l})
			}
		}
	}
	return out, nil
}
