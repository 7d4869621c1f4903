// Package chat wraps, columns, and packs chat messages into a fixed-width
// multi-column SVG sprite, with a parallel overlay-command stream that
// drives the player's crop window and a duplicate-block replay for
// seamless column transitions.
package chat

import (
	"fmt"
	"math"
	"time"

	"github.com/andrewarrow/weave/internal/config"
)

// Message is one chat event as it arrives from slides_new.xml.
type Message struct {
	T    float64
	Name string
	Text string
}

// Command is one instantaneous crop-origin overlay command.
type Command struct {
	T float64
	X float64
	Y float64
}

// textNode is one rendered <text> element in the chat sprite.
type textNode struct {
	x, y float64
	bold bool
	rtl  bool
	text string
}

// tailEntry is one (header, wrapped-lines, x-offset) triple carried across
// column transitions, per the §3 data model.
type tailEntry struct {
	header string
	lines  []string
	rtl    bool
	x      float64
}

// Engine accumulates chat messages into sprite geometry and crop commands.
// It is not safe for concurrent use; messages must be added in time order.
type Engine struct {
	cfg  config.Config
	sani *sanitizer

	svgX, svgY   float64
	chatX, chatY float64

	tail    []tailEntry
	tailCap int

	texts    []textNode
	commands []Command

	columns int
}

// NewEngine returns an Engine configured from cfg. startupSalt seeds the
// per-run name pseudonymization; pass any fixed value in tests for
// deterministic output.
func NewEngine(cfg config.Config, hideNames bool, startupSalt int64) *Engine {
	tailCap := int(math.Ceil(float64(cfg.ChatHeight)/(3*float64(cfg.ChatFontSize)))) + 1
	return &Engine{
		cfg:     cfg,
		sani:    newSanitizer(hideNames, startupSalt),
		svgY:    float64(cfg.ChatStartingOffset),
		tailCap: tailCap,
		columns: 1,
	}
}

// maxChars is the fixed wrap width in characters: CHAT_WIDTH /
// CHAT_FONT_SIZE_X, minus one character of slack.
func (e *Engine) maxChars() int {
	fx := e.cfg.ChatFontSizeX()
	if fx <= 0 {
		return 1
	}
	n := e.cfg.ChatWidth/fx - 1
	if n < 1 {
		n = 1
	}
	return n
}

// wrapByChars breaks text into lines no longer than maxChars, preferring to
// break at the last space seen; a line with no space at all breaks at the
// boundary itself.
func wrapByChars(text string, maxChars int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var lines []string
	lineStart := 0
	lastSpace := -1

	for i := 0; i < len(runes); i++ {
		if runes[i] == ' ' {
			lastSpace = i
		}
		if i-lineStart+1 > maxChars {
			breakAt := i
			if lastSpace > lineStart {
				breakAt = lastSpace
			}
			lines = append(lines, string(runes[lineStart:breakAt]))
			// Skip the space itself when breaking at one.
			if breakAt < len(runes) && runes[breakAt] == ' ' {
				breakAt++
			}
			lineStart = breakAt
			lastSpace = -1
		}
	}
	if lineStart < len(runes) {
		lines = append(lines, string(runes[lineStart:]))
	}
	return lines
}

// Add ingests one message: sanitizes it, wraps it, places it (starting a
// new column if it would overflow), and records the resulting crop
// command.
func (e *Engine) Add(msg Message) {
	name := e.sani.name(msg.Name)
	text := e.sani.clean(msg.Text)
	rtl := detectRTL(text)

	lines := wrapByChars(text, e.maxChars())
	height := float64(len(lines)+2) * float64(e.cfg.ChatFontSize)

	header := fmt.Sprintf("%s    %s", name, formatUTC(msg.T))

	overflow := e.svgY+height > float64(e.cfg.ChatCanvasHeight)

	var drawX, drawY float64
	if overflow {
		e.emitDuplicateBlock()

		drawX = e.svgX + float64(e.cfg.ChatWidth)
		drawY = float64(e.cfg.ChatStartingOffset)

		e.svgX += float64(e.cfg.ChatWidth)
		e.svgY = float64(e.cfg.ChatStartingOffset) + height
		e.chatX += float64(e.cfg.ChatWidth)
		e.chatY = height
		e.columns++
	} else {
		drawX = e.svgX
		drawY = e.svgY

		e.svgY += height
		e.chatY += height
	}

	e.commands = append(e.commands, Command{T: msg.T, X: e.chatX, Y: e.chatY})

	e.texts = append(e.texts, textNode{x: drawX, y: drawY, bold: true, rtl: rtl, text: header})
	for i, l := range lines {
		e.texts = append(e.texts, textNode{
			x:    drawX,
			y:    drawY + float64(i+1)*float64(e.cfg.ChatFontSize),
			rtl:  rtl,
			text: l,
		})
	}

	e.pushTail(tailEntry{header: header, lines: lines, rtl: rtl, x: drawX})
}

// pushTail records the most recently emitted message at the front of the
// tail buffer, evicting the oldest entry once the buffer is full.
func (e *Engine) pushTail(entry tailEntry) {
	e.tail = append([]tailEntry{entry}, e.tail...)
	if len(e.tail) > e.tailCap {
		e.tail = e.tail[:e.tailCap]
	}
}

// emitDuplicateBlock replays the tail buffer into the previous column's
// footer region so a viewer scrolling past the column boundary sees
// uninterrupted context. The replay cursor is decremented exactly once per
// line written (header counts as one line): the §9 design note explicitly
// calls out and fixes the source's double-decrement quirk here.
func (e *Engine) emitDuplicateBlock() {
	y := float64(e.cfg.ChatCanvasHeight)
	fontSize := float64(e.cfg.ChatFontSize)

	for _, entry := range e.tail {
		if y < 0 {
			break
		}
		for i := len(entry.lines) - 1; i >= 0; i-- {
			if y < 0 {
				break
			}
			y -= fontSize
			e.texts = append(e.texts, textNode{x: entry.x, y: y, rtl: entry.rtl, text: entry.lines[i]})
		}
		if y < 0 {
			break
		}
		y -= fontSize
		e.texts = append(e.texts, textNode{x: entry.x, y: y, bold: true, rtl: entry.rtl, text: entry.header})
	}
}

// formatUTC renders t (seconds from recording start treated as a Unix
// timestamp) as HH:MM:SS UTC.
func formatUTC(t float64) string {
	return time.Unix(int64(t), 0).UTC().Format("15:04:05")
}

// Width returns the final SVG width: svg_x plus one column width, cropping
// any columns that were never used.
func (e *Engine) Width() float64 {
	return e.svgX + float64(e.cfg.ChatWidth)
}

// Height returns the final SVG height: svg_y if only one column was used,
// else the full canvas height.
func (e *Engine) Height() float64 {
	if e.columns <= 1 {
		return e.svgY
	}
	return float64(e.cfg.ChatCanvasHeight)
}

// Empty reports whether no messages were ever added. Callers must skip
// emitting chat.svg entirely and omit chat inputs from the filter graph.
func (e *Engine) Empty() bool {
	return len(e.texts) == 0
}

// Commands returns the accumulated crop-origin overlay commands, in the
// order messages were added (and therefore monotonically non-decreasing in
// T, since Add is called in time order).
func (e *Engine) Commands() []Command {
	return e.commands
}
