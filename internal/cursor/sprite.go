package cursor

import (
	"fmt"

	"github.com/andrewarrow/weave/internal/config"
	"github.com/andrewarrow/weave/internal/svgmodel"
)

// Sprite renders the static cursor overlay image: a red circle of radius
// cfg.CursorRadius centered on a 2r square canvas.
func Sprite(cfg config.Config) ([]byte, error) {
	r := cfg.CursorRadius
	circle := svgmodel.Raw(fmt.Sprintf(`<circle cx="%d" cy="%d" r="%d" fill="red"/>`, r, r, r))

	sprite := svgmodel.Sprite{
		Xmlns:  "http://www.w3.org/2000/svg",
		Width:  2 * r,
		Height: 2 * r,
		Nodes:  circle,
	}
	return svgmodel.Marshal(sprite)
}
