package world

// Point is a tile coordinate. X is the column, Y the row.
type Point struct {
	X, Y int
}

// Add returns the point offset by (dx, dy).
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Step returns the neighboring point in direction d.
func (p Point) Step(d Direction) Point {
	dx, dy := d.Delta()
	return p.Add(dx, dy)
}

// Neighbors lists the cardinal directions in the order the flood fill visits them.
var Neighbors = [4]Direction{DirUp, DirDown, DirLeft, DirRight}
