package shapes

import "errors"

var (
	errNoRoot             = errors.New("shapes.svg: no root element")
	errShapeCountMismatch = errors.New("shapes.svg: streaming and DOM passes disagree on shape count")
)
