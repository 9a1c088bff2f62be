package algo

import "github.com/elektrokombinacija/dmapf/internal/core"

// Manhattan returns |a.x-b.x| + |a.y-b.y|. It is admissible and consistent
// for 4-connected unit-cost moves.
func Manhattan(a, b core.Point) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
