package scape

// Direction is one of the four headings a creature can face. TurnRight and
// TurnLeft rotate through Up, Right, Down, Left modulo four.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

var directions = [...]Direction{Up, Right, Down, Left}

func (d Direction) TurnRight() Direction {
	return (d + 1) % 4
}

func (d Direction) TurnLeft() Direction {
	return (d + 3) % 4
}

// Delta is the unit step for d with y growing downwards.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	default:
		return -1, 0
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "UP"
	case Right:
		return "RIGHT"
	case Down:
		return "DOWN"
	case Left:
		return "LEFT"
	default:
		return "UNKNOWN"
	}
}
