// Package flowfield computes shortest-path directions toward the level exit.
//
// The field is a breadth-first flood fill from the exit over walkable tiles. Every
// reached tile points at the neighbor it was discovered from, which is one step
// closer to the exit. Movement cost is uniform and only cardinal steps are allowed.
package flowfield

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/towerfield/internal/telemetry"
	"github.com/samdwyer/towerfield/internal/world"
)

const unvisited = -1

// Field is the result of a flood fill, stored row-major like the grid it came from.
type Field struct {
	Cols, Rows int
	Directions []world.Direction
	Distances  []int // Steps to the exit, -1 if unreachable
	Reachable  int   // Visited tiles, exit included
	MaxDist    int
}

// Distance returns the step count from (x, y) to the exit, -1 if unreachable or out of bounds.
func (f *Field) Distance(x, y int) int {
	if x < 0 || y < 0 || x >= f.Cols || y >= f.Rows {
		return -1
	}
	return f.Distances[y*f.Cols+x]
}

// Stats summarizes a recalculation.
type Stats struct {
	HasExit     bool
	Reachable   int
	MaxDistance int
	Duration    time.Duration
}

// Compute runs the flood fill without touching the grid.
// Returns nil if the grid has no exit.
func Compute(g *world.Grid) *Field {
	exit, ok := g.Exit()
	if !ok {
		return nil
	}

	cols, rows := g.Cols(), g.Rows()
	size := cols * rows
	walk := g.WalkMap()

	// cameFrom holds the flat index of each tile's predecessor; the exit points at itself
	cameFrom := make([]int, size)
	dist := make([]int, size)
	for i := range cameFrom {
		cameFrom[i] = unvisited
		dist[i] = unvisited
	}

	target := exit.Y*cols + exit.X
	cameFrom[target] = target
	dist[target] = 0

	frontier := make([]int, 0, size)
	frontier = append(frontier, target)
	reachable, maxDist := 1, 0

	for head := 0; head < len(frontier); head++ {
		current := frontier[head]
		cx, cy := current%cols, current/cols

		for _, d := range world.Neighbors {
			dx, dy := d.Delta()
			nx, ny := cx+dx, cy+dy
			if nx < 0 || ny < 0 || nx >= cols || ny >= rows {
				continue
			}
			next := ny*cols + nx
			if !walk[next] || cameFrom[next] != unvisited {
				continue
			}
			cameFrom[next] = current
			dist[next] = dist[current] + 1
			maxDist = max(maxDist, dist[next])
			reachable++
			frontier = append(frontier, next)
		}
	}

	dirs := make([]world.Direction, size)
	for i, prev := range cameFrom {
		if prev == unvisited || i == target {
			continue
		}
		dirs[i] = world.Toward(
			world.Point{X: i % cols, Y: i / cols},
			world.Point{X: prev % cols, Y: prev / cols},
		)
	}

	return &Field{
		Cols:       cols,
		Rows:       rows,
		Directions: dirs,
		Distances:  dist,
		Reachable:  reachable,
		MaxDist:    maxDist,
	}
}

// Recalculate rebuilds the grid's direction array from scratch. Manual direction
// overrides are discarded. Without an exit the grid is left untouched.
func Recalculate(ctx context.Context, g *world.Grid) Stats {
	_, span := telemetry.Tracer("flowfield").Start(ctx, "flowfield.recalculate")
	defer span.End()

	start := time.Now()
	field := Compute(g)
	if field == nil {
		span.SetAttributes(attribute.Bool("flowfield.has_exit", false))
		return Stats{}
	}

	// Sizes always match: the field was computed from this grid
	_ = g.ReplaceDirections(field.Directions)

	stats := Stats{
		HasExit:     true,
		Reachable:   field.Reachable,
		MaxDistance: field.MaxDist,
		Duration:    time.Since(start),
	}

	span.SetAttributes(
		attribute.Bool("flowfield.has_exit", true),
		attribute.Int("grid.cols", g.Cols()),
		attribute.Int("grid.rows", g.Rows()),
		attribute.Int("flowfield.reachable", stats.Reachable),
		attribute.Int("flowfield.max_distance", stats.MaxDistance),
		attribute.Int64("flowfield.duration_ms", stats.Duration.Milliseconds()),
	)

	return stats
}

// Follow walks the grid's direction field from start until it reaches the exit,
// hits a tile without a direction, leaves the grid or would revisit a tile.
// Returns the visited points (start first) and whether the exit was reached.
func Follow(g *world.Grid, start world.Point) ([]world.Point, bool) {
	exit, ok := g.Exit()
	if !ok || !g.InBounds(start.X, start.Y) {
		return nil, false
	}

	seen := make([]bool, g.Cols()*g.Rows())
	path := []world.Point{start}
	p := start

	for steps := 0; steps < g.Cols()*g.Rows(); steps++ {
		if p == exit {
			return path, true
		}
		seen[p.Y*g.Cols()+p.X] = true

		d := g.DirectionAt(p.X, p.Y)
		if d == world.DirNone {
			return path, false
		}
		p = p.Step(d)
		if !g.InBounds(p.X, p.Y) || seen[p.Y*g.Cols()+p.X] {
			return path, false
		}
		path = append(path, p)
	}

	return path, p == exit
}
