package shapes

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/andrewarrow/weave/internal/fontmetric"
	"github.com/andrewarrow/weave/internal/pipelineerr"
)

const xlinkNS = "http://www.w3.org/1999/xlink"

// normalizer holds everything a single shape-element normalization pass
// needs: the font-metric oracle, whether image references should be
// file:// URIs or inlined data URIs, and the root to resolve local image
// paths against.
type normalizer struct {
	ctx           context.Context
	font          fontmetric.Client
	publishedRoot string
	fileRefs      bool // Config.FFmpegReferenceSupport
}

// normalizeShape mutates el in place per distilled §4.2 and returns el's
// stable id (the last dash-separated token of its "shape" attribute).
func (n *normalizer) normalizeShape(el *etree.Element) (string, error) {
	stripVisibilityHidden(el)

	shapeAttr := el.SelectAttrValue("shape", "")
	id := lastDashToken(shapeAttr)

	switch {
	case strings.Contains(shapeAttr, "poll"):
		if err := n.normalizePoll(el); err != nil {
			return "", err
		}
	case strings.Contains(shapeAttr, "text"):
		if err := n.normalizeText(el); err != nil {
			return "", err
		}
	}

	return id, nil
}

// stripVisibilityHidden removes a "visibility:hidden" declaration from el's
// style attribute, forcing the element visible regardless of what the
// recorder originally marked it as.
func stripVisibilityHidden(el *etree.Element) {
	styleAttr := el.SelectAttr("style")
	if styleAttr == nil {
		return
	}
	decls := strings.Split(styleAttr.Value, ";")
	kept := decls[:0]
	for _, d := range decls {
		if strings.TrimSpace(strings.ReplaceAll(d, " ", "")) == "visibility:hidden" {
			continue
		}
		if strings.TrimSpace(d) == "" {
			continue
		}
		kept = append(kept, d)
	}
	styleAttr.Value = strings.Join(kept, ";")
}

// lastDashToken returns the final "-"-delimited token of s, the shape's
// stable identifier.
func lastDashToken(s string) string {
	parts := strings.Split(s, "-")
	return parts[len(parts)-1]
}

// normalizePoll rewrites a poll shape's first child image reference into
// either a file:// URI or an inlined base64 data URI.
func (n *normalizer) normalizePoll(el *etree.Element) error {
	children := el.ChildElements()
	if len(children) == 0 {
		return nil
	}
	img := children[0]

	href := img.SelectAttrValue("href", "")
	if href == "" {
		href = img.SelectAttrValue("xlink:href", "")
	}
	if href == "" {
		return nil
	}

	resolved, err := n.resolveImageRef(href)
	if err != nil {
		return err
	}

	img.RemoveAttr("href")
	img.CreateAttr("xlink:href", resolved)
	el.CreateAttr("xmlns:xlink", xlinkNS)
	return nil
}

// resolveImageRef turns a local image path into either a file:// URI or a
// base64 data: URI, per n.fileRefs.
func (n *normalizer) resolveImageRef(href string) (string, error) {
	if strings.HasPrefix(href, "data:") || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href, nil
	}

	path := href
	if !filepath.IsAbs(path) {
		path = filepath.Join(n.publishedRoot, href)
	}

	if n.fileRefs {
		return "file://" + path, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", pipelineerr.Missing(path, err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "image/png"
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("data:%s;base64,%s", mimeType, encoded), nil
}

// normalizeText converts the XHTML body inside <switch><foreignObject> into
// a wrapped SVG <text> element, replacing the <switch>.
func (n *normalizer) normalizeText(el *etree.Element) error {
	sw := el.SelectElement("switch")
	if sw == nil {
		return nil
	}
	fo := sw.SelectElement("foreignObject")
	if fo == nil {
		el.RemoveChild(sw)
		return nil
	}

	x := fo.SelectAttrValue("x", "0")
	y := fo.SelectAttrValue("y", "0")
	width := fo.SelectAttrValue("width", "0")

	color, fontSize := extractColorAndFontSize(el.SelectAttrValue("style", ""))
	maxWidth, _ := strconv.ParseFloat(width, 64)

	body := innerText(fo)
	lines, err := wrapText(n.ctx, n.font, body, fontSize, maxWidth)
	if err != nil {
		return err
	}

	text := etree.NewElement("text")
	text.CreateAttr("x", x)
	text.CreateAttr("y", y)
	text.CreateAttr("fill", color)
	text.CreateAttr("xml:space", "preserve")

	for _, l := range lines {
		tspan := etree.NewElement("tspan")
		tspan.CreateAttr("x", x)
		tspan.CreateAttr("dy", "1.0em")
		if l.isBR {
			tspan.SetText("<br/>")
		} else {
			// etree escapes text content on serialization.
			tspan.SetText(l.text)
		}
		text.AddChild(tspan)
	}

	el.RemoveChild(sw)
	el.AddChild(text)
	return nil
}

// extractColorAndFontSize pulls "color" and "font-size" declarations out of
// a CSS-style-attribute string, appending ";fill:currentcolor" to the color
// value per distilled §4.2.
func extractColorAndFontSize(style string) (color string, fontSize float64) {
	fontSize = 12
	color = "black;fill:currentcolor"
	for _, decl := range strings.Split(style, ";") {
		kv := strings.SplitN(decl, ":", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])
		switch key {
		case "color":
			color = val + ";fill:currentcolor"
		case "font-size":
			if v, err := strconv.ParseFloat(strings.TrimSuffix(val, "px"), 64); err == nil {
				fontSize = v
			}
		}
	}
	return color, fontSize
}

// innerText concatenates el's descendant text, preserving literal <br/>
// markers that appear as raw text (the annotated-shapes document stores
// line breaks this way rather than as real child elements).
func innerText(el *etree.Element) string {
	var sb strings.Builder
	for _, child := range el.Child {
		switch c := child.(type) {
		case *etree.CharData:
			sb.WriteString(c.Data)
		case *etree.Element:
			if c.Tag == "br" {
				sb.WriteString("<br/>")
			}
			sb.WriteString(innerText(c))
		}
	}
	return sb.String()
}

// serialize renders el (including its own tag) as a standalone XML
// fragment, matching the "<g style=...>inner</g>" shape of distilled §4.4.
func serialize(el *etree.Element) (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}
