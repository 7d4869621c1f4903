package cursor

import (
	"math"
	"strconv"

	"github.com/andrewarrow/weave/internal/config"
	"github.com/andrewarrow/weave/internal/panzoom"
)

// Command is one overlay-command line: at time T, move the cursor overlay
// to composite-frame pixel (X, Y).
type Command struct {
	T float64
	X float64
	Y float64
}

// Project walks samples and panzooms in lockstep, computing each sample's
// composite-frame position per distilled §4.5: fit the active viewBox into
// the slide box preserving aspect ratio (letterboxing), offset by the
// webcams column width, and center the cursor radius on the point.
func Project(samples []Sample, panzooms []panzoom.Event, cfg config.Config) ([]Command, error) {
	cmds := make([]Command, 0, len(samples))

	pzIdx := -1
	for _, s := range samples {
		for pzIdx+1 < len(panzooms) && panzooms[pzIdx+1].T <= s.T {
			pzIdx++
		}

		var W, H float64 = float64(cfg.SlidesWidth), float64(cfg.SlidesHeight)
		if pzIdx >= 0 {
			_, _, w, h, err := panzooms[pzIdx].Box()
			if err != nil {
				return nil, err
			}
			W, H = w, h
		}

		cx := s.Nx * W
		cy := s.Ny * H

		scale := math.Min(float64(cfg.SlidesWidth)/W, float64(cfg.SlidesHeight)/H)
		offsetX := (float64(cfg.SlidesWidth) - scale*W) / 2
		offsetY := (float64(cfg.SlidesHeight) - scale*H) / 2

		x := cx*scale + offsetX - float64(cfg.CursorRadius) + float64(cfg.WebcamsWidth)
		y := cy*scale + offsetY - float64(cfg.CursorRadius)

		cmds = append(cmds, Command{
			T: s.T,
			X: round3(x),
			Y: round3(y),
		})
	}

	return cmds, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// FormatLines renders cmds as the "<t> overlay@m x <cx>, overlay@m y <cy>;"
// timestamps file the encoder's sendcmd filter consumes.
func FormatLines(cmds []Command) []string {
	lines := make([]string, len(cmds))
	for i, c := range cmds {
		lines[i] = formatLine(c)
	}
	return lines
}

func formatLine(c Command) string {
	return formatFloat(c.T) + " overlay@m x " + formatFloat(c.X) + ", overlay@m y " + formatFloat(c.Y) + ";"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
