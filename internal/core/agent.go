package core

// AgentID is a unique agent identifier, assigned in increasing order.
type AgentID int

// Agent is an entity moving from Start to Goal.
type Agent struct {
	ID    AgentID
	Start Point
	Goal  Point
}

// Chebyshev returns max(|dx|, |dy|) between two points.
func Chebyshev(a, b Point) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
