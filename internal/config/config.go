// Package config carries the compose pipeline's layout constants, feature
// flags, and paths as one explicit, immutable value instead of package-level
// globals.
package config

// Config is threaded by value or pointer through every ingest and emission
// stage. No ingest or emission stage reads a package-level mutable variable.
type Config struct {
	// Feature flags.
	SVGZCompression        bool
	FFmpegReferenceSupport bool
	CaptionSupport         bool
	RemoveRedundantShapes  bool
	HideDeskshare          bool
	HideChat               bool
	HideChatNames          bool
	BenchmarkFFmpeg        bool

	ConstantRateFactor int // 0-51

	// Composite layout, all in output pixels unless noted.
	OutputWidth  int
	OutputHeight int

	SlidesX      int
	SlidesY      int
	SlidesWidth  int
	SlidesHeight int

	WebcamsX      int
	WebcamsY      int
	WebcamsWidth  int
	WebcamsHeight int

	ChatOuterX int
	ChatOuterY int
	ChatWidth  int
	ChatHeight int

	ChatCanvasHeight   int
	ChatStartingOffset int
	ChatFontSize       int

	CursorRadius    int
	BorderRadius    int
	ComponentMargin int

	// External tool binaries.
	FontMetricBin string
	EncoderBin    string
}

// ChatFontSizeX returns the monospace glyph width assumed for chat wrapping,
// a 3:5 aspect of the configured font size.
func (c Config) ChatFontSizeX() int {
	return (c.ChatFontSize * 3) / 5
}

// Default returns the layout the original recorder shipped with, scaled to
// a 1920x1080 composite: slides on the left, a stacked webcam column on the
// right, and a chat column beneath it.
func Default() Config {
	return Config{
		SVGZCompression:        true,
		FFmpegReferenceSupport: false,
		CaptionSupport:         true,
		RemoveRedundantShapes:  false,
		HideDeskshare:          false,
		HideChat:               false,
		HideChatNames:          false,
		BenchmarkFFmpeg:        false,

		ConstantRateFactor: 23,

		OutputWidth:  1920,
		OutputHeight: 1080,

		SlidesX:      0,
		SlidesY:      0,
		SlidesWidth:  1440,
		SlidesHeight: 1080,

		WebcamsX:      1440,
		WebcamsY:      0,
		WebcamsWidth:  480,
		WebcamsHeight: 540,

		ChatOuterX: 1440,
		ChatOuterY: 540,
		ChatWidth:  480,
		ChatHeight: 540,

		ChatCanvasHeight:   2160,
		ChatStartingOffset: 20,
		ChatFontSize:       15,

		CursorRadius:    8,
		BorderRadius:    12,
		ComponentMargin: 8,

		FontMetricBin: "convert",
		EncoderBin:    "ffmpeg",
	}
}
