package world

// Direction is the cardinal direction an agent on a tile should travel.
type Direction uint8

const (
	// DirNone means no direction: blocked, unreachable, the exit itself or not yet computed.
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight

	directionCount
)

// Valid returns true if d is DirNone or one of the four cardinal directions.
func (d Direction) Valid() bool {
	return d < directionCount
}

// Delta returns the unit step for the direction. Up is negative Y.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	default:
		return 0, 0
	}
}

// String returns the direction tag used in map strings, or "" for DirNone.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return ""
	}
}

// ParseDirection converts a map string tag back into a Direction.
func ParseDirection(tag string) (Direction, bool) {
	switch tag {
	case "up":
		return DirUp, true
	case "down":
		return DirDown, true
	case "left":
		return DirLeft, true
	case "right":
		return DirRight, true
	default:
		return DirNone, false
	}
}

// Toward returns the direction of the single cardinal step from one point to an adjacent one.
// Returns DirNone if the points are not cardinal neighbors.
func Toward(from, to Point) Direction {
	dx, dy := to.X-from.X, to.Y-from.Y
	switch {
	case dx == -1 && dy == 0:
		return DirLeft
	case dx == 1 && dy == 0:
		return DirRight
	case dx == 0 && dy == -1:
		return DirUp
	case dx == 0 && dy == 1:
		return DirDown
	default:
		return DirNone
	}
}
