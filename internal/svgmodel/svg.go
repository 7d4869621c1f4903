// Package svgmodel is the small struct-tagged XML object model shared by the
// whiteboard frame emitter, the cursor sprite, and the chat sprite sheet:
// structs only, marshaled with encoding/xml, never string-templated
// documents.
package svgmodel

import (
	"encoding/xml"
	"strings"
)

// Raw is already-serialized XML (one or more complete, well-formed
// elements, such as a shape's own `<g>...</g>`) copied into the output
// verbatim through an `,innerxml` field, never re-escaped. It is an alias of
// string because encoding/xml writes an `,innerxml` field verbatim only when
// its type is exactly string or []byte.
type Raw = string

// Join concatenates fragments into one Raw block, one fragment per line.
func Join(fragments []Raw) Raw {
	parts := make([]string, len(fragments))
	for i, f := range fragments {
		parts[i] = string(f)
	}
	return Raw(strings.Join(parts, "\n"))
}

// Document is the outer composite frame: a fixed-size SVG canvas whose
// viewBox letterboxes the active slide aspect into the slide box, holding
// exactly one Inner.
type Document struct {
	XMLName    xml.Name `xml:"svg"`
	Xmlns      string   `xml:"xmlns,attr"`
	XmlnsXlink string   `xml:"xmlns:xlink,attr,omitempty"`
	Width      int      `xml:"width,attr"`
	Height     int      `xml:"height,attr"`
	ViewBox    string   `xml:"viewBox,attr"`
	Inner      Inner    `xml:"svg"`
}

// Inner is the nested SVG holding the slide image and visible shapes at the
// active viewBox. Shapes carries the z-ordered shape fragments verbatim.
type Inner struct {
	ViewBox string `xml:"viewBox,attr"`
	Image   *Image `xml:"image,omitempty"`
	Shapes  Raw    `xml:",innerxml"`
}

// Image is a slide or poll image reference, either a data URI or a
// file:// URI per the FFmpegReferenceSupport flag.
type Image struct {
	XlinkHref string `xml:"xlink:href,attr"`
	Width     int    `xml:"width,attr"`
	Height    int    `xml:"height,attr"`
}

// Sprite is a minimal flat SVG, used for the static cursor dot and as the
// root of the chat sprite sheet. Nodes carries the child elements verbatim.
type Sprite struct {
	XMLName xml.Name `xml:"svg"`
	Xmlns   string   `xml:"xmlns,attr"`
	Width   int      `xml:"width,attr"`
	Height  int      `xml:"height,attr"`
	Nodes   Raw      `xml:",innerxml"`
}

// Marshal renders v as an indented, standalone XML document with the
// standard <?xml?> prolog.
func Marshal(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	out := append([]byte(xml.Header), body...)
	return out, nil
}
