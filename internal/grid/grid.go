// Package grid models the battlefield cell space and picks collision-free
// enemy spawn cells.
package grid

import (
	"errors"
	"math/rand/v2"
)

var ErrOutOfBounds = errors.New("cell out of bounds")
var ErrOccupied = errors.New("cell occupied")
var ErrNoFreeCell = errors.New("no free cell in spawn area")

const (
	Width  = 9
	Height = 5

	// Enemies start on the right-hand side of the board until the first
	// round transition opens up the whole grid.
	DefaultSpawnMinX = 5
)

type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Area is a half-open rectangle of cells.
type Area struct {
	MinX, MaxX int
	MinY, MaxY int
}

func Full() Area { return Area{MinX: 0, MaxX: Width, MinY: 0, MaxY: Height} }

func DefaultSpawnArea() Area {
	return Area{MinX: DefaultSpawnMinX, MaxX: Width, MinY: 0, MaxY: Height}
}

func (a Area) Contains(c Cell) bool {
	return c.X >= a.MinX && c.X < a.MaxX && c.Y >= a.MinY && c.Y < a.MaxY
}

// Grid is not safe for concurrent use; the owning session serializes access.
type Grid struct {
	cells [Width][Height]string
	spawn Area
	rng   *rand.Rand
}

func New(rng *rand.Rand) *Grid {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Grid{spawn: DefaultSpawnArea(), rng: rng}
}

func (g *Grid) SpawnArea() Area { return g.spawn }

func (g *Grid) SetSpawnArea(a Area) {
	full := Full()
	a.MinX, a.MinY = max(a.MinX, full.MinX), max(a.MinY, full.MinY)
	a.MaxX, a.MaxY = min(a.MaxX, full.MaxX), min(a.MaxY, full.MaxY)
	g.spawn = a
}

// Widen lets enemies spawn anywhere on the board.
func (g *Grid) Widen() { g.spawn = Full() }

func (g *Grid) Put(c Cell, id string) error {
	if !Full().Contains(c) {
		return ErrOutOfBounds
	}
	if g.cells[c.X][c.Y] != "" {
		return ErrOccupied
	}
	g.cells[c.X][c.Y] = id
	return nil
}

// Occupant returns the id stored at c, or "" when the cell is empty.
func (g *Grid) Occupant(c Cell) string {
	if !Full().Contains(c) {
		return ""
	}
	return g.cells[c.X][c.Y]
}

func (g *Grid) Clear(c Cell) {
	if Full().Contains(c) {
		g.cells[c.X][c.Y] = ""
	}
}

// SpawnLocation picks uniformly among the free cells of the spawn area.
func (g *Grid) SpawnLocation() (Cell, error) {
	var free []Cell
	for x := g.spawn.MinX; x < g.spawn.MaxX; x++ {
		for y := g.spawn.MinY; y < g.spawn.MaxY; y++ {
			if g.cells[x][y] == "" {
				free = append(free, Cell{X: x, Y: y})
			}
		}
	}
	if len(free) == 0 {
		return Cell{}, ErrNoFreeCell
	}
	return free[g.rng.IntN(len(free))], nil
}

func (g *Grid) Occupied() int {
	n := 0
	for x := range g.cells {
		for y := range g.cells[x] {
			if g.cells[x][y] != "" {
				n++
			}
		}
	}
	return n
}
