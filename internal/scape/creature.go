package scape

// Clock is the world state every creature of a GridWorld shares.
type Clock struct {
	Turn       int
	MaxTurn    int
	Generation int
	MaxX       int
	MaxY       int
}

// Creature is the per-agent property record of the grid world.
type Creature struct {
	X         int
	Y         int
	Direction Direction
	Clock     *Clock
}

func (c *Creature) TouchingBorder() bool {
	return c.X == 0 || c.Y == 0 || c.X == c.Clock.MaxX || c.Y == c.Clock.MaxY
}

// move shifts the creature by steps cells along its heading, clamped to the
// grid. Negative steps move backwards.
func (c *Creature) move(steps int) {
	dx, dy := c.Direction.Delta()
	c.X = clampInt(c.X+dx*steps, 0, c.Clock.MaxX)
	c.Y = clampInt(c.Y+dy*steps, 0, c.Clock.MaxY)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
