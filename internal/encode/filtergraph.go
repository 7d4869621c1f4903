package encode

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/andrewarrow/weave/internal/config"
)

// Inputs names every source file the filter graph may reference. Optional
// fields left empty omit the corresponding input and its filter branch
// entirely; desk-share and chat are optional, the single webcams input is
// required.
type Inputs struct {
	BackgroundLoop     string
	WhiteboardPlaylist string
	CursorSprite       string
	CursorTimestamps   string
	Webcams            string
	Deskshare          string // optional
	ChatSprite         string // optional
	ChatTimestamps     string // optional

	MeetingName string
	Duration    float64
	OutputPath  string
}

// inputIndex tracks the stable ffmpeg input index assigned to each stream,
// since conditional inputs shift every later index.
type inputIndex struct {
	background int
	whiteboard int
	cursor     int
	webcams    int
	deskshare  int // -1 if absent
	chatBg     int // -1 if absent
	chatSprite int // -1 if absent
}

// Assemble builds the full ffmpeg argument slice for the main composite
// encode, per distilled §4.8: input order is stable and determines filter
// labels, cursor overlay commands bind via sendcmd, webcams and chat get a
// rounded-corner alpha mask, and chat/deskshare branches are entirely
// omitted when absent.
func Assemble(cfg config.Config, in Inputs) ([]string, error) {
	args := []string{"-y"}
	if cfg.BenchmarkFFmpeg {
		args = append(args, "-benchmark")
	}

	idx := inputIndex{background: 0, whiteboard: 1, cursor: 2, webcams: 3, deskshare: -1, chatBg: -1, chatSprite: -1}
	args = append(args,
		"-stream_loop", "-1", "-i", in.BackgroundLoop,
		"-f", "concat", "-safe", "0", "-i", in.WhiteboardPlaylist,
		"-i", in.CursorSprite,
		"-i", in.Webcams,
	)
	next := 4
	if in.Deskshare != "" && !cfg.HideDeskshare {
		idx.deskshare = next
		args = append(args, "-i", in.Deskshare)
		next++
	}
	if in.ChatSprite != "" && !cfg.HideChat {
		idx.chatBg = next
		args = append(args, "-f", "lavfi", "-i", fmt.Sprintf("color=c=white:s=%dx%d", cfg.ChatWidth, cfg.ChatHeight))
		next++
		idx.chatSprite = next
		args = append(args, "-i", in.ChatSprite)
		next++
	}

	filter := buildFilterComplex(cfg, idx, in)
	args = append(args, "-filter_complex", filter)
	args = append(args, "-map", "[final]")
	args = append(args, "-map", fmt.Sprintf("%d:a?", idx.webcams))

	args = append(args,
		"-c:v", "libx264",
		"-crf", fmt.Sprintf("%d", cfg.ConstantRateFactor),
		"-shortest",
		"-t", fmt.Sprintf("%g", in.Duration),
		"-threads", fmt.Sprintf("%d", runtime.NumCPU()),
		"-metadata", fmt.Sprintf("title=%s", in.MeetingName),
		in.OutputPath,
	)

	return args, nil
}

// buildFilterComplex assembles the -filter_complex expression by hand, as a
// single string: the graph's named pads, sendcmd bindings, and conditional
// branches are far more naturally expressed this way than through a
// generic fluent filter-graph builder (see DESIGN.md).
func buildFilterComplex(cfg config.Config, idx inputIndex, in Inputs) string {
	var chain []string

	chain = append(chain, fmt.Sprintf("[%d:v]sendcmd=f=%s[cursor]", idx.cursor, in.CursorTimestamps))

	chain = append(chain, fmt.Sprintf(
		"[%d:v]scale=%d:%d[wcscaled]", idx.webcams, cfg.WebcamsWidth, cfg.WebcamsHeight,
	))
	chain = append(chain, fmt.Sprintf(
		"[wcscaled]geq=lum='p(X,Y)':a='%s'[webcams]", roundedCornerAlpha(cfg.WebcamsWidth, cfg.WebcamsHeight, cfg.BorderRadius, 255),
	))

	mainLabel := fmt.Sprintf("%d:v", idx.whiteboard)
	if idx.deskshare >= 0 {
		chain = append(chain, fmt.Sprintf(
			"[%d:v]scale=%d:%d:force_original_aspect_ratio=1[deskscaled]",
			idx.deskshare, cfg.SlidesWidth, cfg.SlidesHeight,
		))
		chain = append(chain, fmt.Sprintf(
			"[deskscaled][%d:v]overlay[deskboard]", idx.whiteboard,
		))
		mainLabel = "deskboard"
	}

	// The cursor overlay is the @m instance the sendcmd stream's
	// "overlay@m x/y" commands address.
	chain = append(chain, fmt.Sprintf("[%s][cursor]overlay@m[mainraw]", mainLabel))
	chain = append(chain, fmt.Sprintf(
		"[mainraw]geq=lum='p(X,Y)':a='%s'[mainmasked]",
		roundedCornerAlpha(cfg.SlidesWidth, cfg.SlidesHeight, cfg.BorderRadius, 255),
	))
	chain = append(chain, fmt.Sprintf(
		"[%d:v][mainmasked]overlay=%d:%d[composited]",
		idx.background, cfg.SlidesX, cfg.SlidesY,
	))

	last := "composited"
	if idx.chatSprite >= 0 {
		// crop@c is the instance the chat command stream's "crop@c x/y"
		// commands address.
		chain = append(chain, fmt.Sprintf(
			"[%d:v]sendcmd=f=%s,crop@c=%d:%d:0:0[chatcropped]",
			idx.chatSprite, in.ChatTimestamps, cfg.ChatWidth, cfg.ChatHeight,
		))
		chain = append(chain, fmt.Sprintf(
			"[%d:v]geq=lum='p(X,Y)':a='%s'[chatbgmasked]",
			idx.chatBg, roundedCornerAlpha(cfg.ChatWidth, cfg.ChatHeight, cfg.BorderRadius, 153),
		))
		chain = append(chain, "[chatbgmasked][chatcropped]overlay[chatfinal]")
		chain = append(chain, fmt.Sprintf(
			"[%s][chatfinal]overlay=%d:%d[withchat]", last, cfg.ChatOuterX, cfg.ChatOuterY,
		))
		last = "withchat"
	}

	chain = append(chain, fmt.Sprintf(
		"[%s][webcams]overlay=%d:%d[final]", last, cfg.WebcamsX, cfg.WebcamsY,
	))

	return strings.Join(chain, ";")
}

// roundedCornerAlpha builds the geq alpha expression masking the four
// outer corners of a w x h box to a rounded radius r: a point is opaque
// (value alpha) everywhere except within a corner's r x r outer square,
// where it is opaque only if its distance from the corner's inner anchor
// is within r.
func roundedCornerAlpha(w, h, r, alpha int) string {
	return fmt.Sprintf(
		"if(lte(hypot(min(X\\,%d-X)-%d\\,min(Y\\,%d-Y)-%d)\\,%d)\\,%d\\,if(lt(min(X\\,%d-X)\\,%d)*lt(min(Y\\,%d-Y)\\,%d)\\,0\\,%d))",
		w, r, h, r, r, alpha, w, r, h, r, alpha,
	)
}
