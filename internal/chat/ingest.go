package chat

import (
	"encoding/xml"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/andrewarrow/weave/internal/pipelineerr"
)

// Ingest parses slides_new.xml's `<chattimeline target="chat" ...>`
// entries into a time-sorted slice of Messages. A missing file is reported
// as ErrInputMissing; the caller treats an absent chat artifact as the
// optional "no chat" feature toggle and does not call Ingest in that case.
func Ingest(path string) ([]Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pipelineerr.Missing(path, err)
	}
	defer f.Close()
	return decode(f, path)
}

func decode(r io.Reader, path string) ([]Message, error) {
	dec := xml.NewDecoder(r)

	var messages []Message
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, pipelineerr.Malformed(path, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "chattimeline" {
			continue
		}

		var target, name, text, in string
		for _, a := range start.Attr {
			switch a.Name.Local {
			case "target":
				target = a.Value
			case "name":
				name = a.Value
			case "message":
				text = a.Value
			case "in":
				in = a.Value
			}
		}
		if target != "chat" {
			continue
		}
		t, err := strconv.ParseFloat(in, 64)
		if err != nil {
			return nil, pipelineerr.Malformed(path, err)
		}
		messages = append(messages, Message{T: t, Name: name, Text: text})
	}

	sort.SliceStable(messages, func(i, j int) bool { return messages[i].T < messages[j].T })
	return messages, nil
}
