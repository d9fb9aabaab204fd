package etm

import "fmt"

// Coord is a position on the fixed 3-D lattice.
type Coord struct {
	X, Y, Z int
}

// String renders a coordinate as "x,y,z", the key format used for
// JSON-facing registries.
func (c Coord) String() string {
	return fmt.Sprintf("%d,%d,%d", c.X, c.Y, c.Z)
}

// Add returns the coordinate offset by (dx,dy,dz).
func (c Coord) Add(dx, dy, dz int) Coord {
	return Coord{c.X + dx, c.Y + dy, c.Z + dz}
}

// neighborOffsets is the full connectivity offset table, ordered axis-aligned
// first, then xy-plane face diagonals, then the remaining edge diagonals.
// Neighbors truncates this list to the configured connectivity count, so the
// ordering is part of the contract: callers that pick the first or extreme
// matching neighbor depend on it.
var neighborOffsets = [][3]int{
	// 6-connectivity: axis-aligned
	{-1, 0, 0}, {1, 0, 0}, {0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1},
	// 8-connectivity adds the xy-plane diagonals
	{-1, -1, 0}, {-1, 1, 0}, {1, -1, 0}, {1, 1, 0},
	// 12-connectivity adds edge diagonals
	{-1, 0, -1}, {-1, 0, 1}, {1, 0, -1}, {1, 0, 1},
	{0, -1, -1}, {0, -1, 1}, {0, 1, -1}, {0, 1, 1},
}

// Lattice is the fixed-size coordinate space the engine simulates on.
type Lattice struct {
	Size [3]int
}

// NewLattice builds a lattice with the given dimensions.
func NewLattice(size [3]int) Lattice {
	return Lattice{Size: size}
}

// Contains reports whether c is inside the lattice bounds.
func (l Lattice) Contains(c Coord) bool {
	return c.X >= 0 && c.X < l.Size[0] &&
		c.Y >= 0 && c.Y < l.Size[1] &&
		c.Z >= 0 && c.Z < l.Size[2]
}

// Center returns the integer midpoint of the lattice.
func (l Lattice) Center() Coord {
	return Coord{l.Size[0] / 2, l.Size[1] / 2, l.Size[2] / 2}
}

// Clamp pins a coordinate to the nearest in-bounds position.
func (l Lattice) Clamp(c Coord) Coord {
	clampAxis := func(v, size int) int {
		if v < 0 {
			return 0
		}
		if v >= size {
			return size - 1
		}
		return v
	}
	return Coord{
		clampAxis(c.X, l.Size[0]),
		clampAxis(c.Y, l.Size[1]),
		clampAxis(c.Z, l.Size[2]),
	}
}

// Neighbors returns the in-bounds neighbors of c for the given connectivity
// (6, 8 or 12), in the deterministic offset order. Out-of-bounds positions
// are filtered, never reported as errors.
func (l Lattice) Neighbors(c Coord, connectivity int) []Coord {
	if connectivity > len(neighborOffsets) {
		connectivity = len(neighborOffsets)
	}
	result := make([]Coord, 0, connectivity)
	for _, off := range neighborOffsets[:connectivity] {
		n := c.Add(off[0], off[1], off[2])
		if l.Contains(n) {
			result = append(result, n)
		}
	}
	return result
}

// Positions enumerates every lattice coordinate in x-major order. Used for
// field initialization and the per-tick decay pass.
func (l Lattice) Positions() []Coord {
	out := make([]Coord, 0, l.Size[0]*l.Size[1]*l.Size[2])
	for x := 0; x < l.Size[0]; x++ {
		for y := 0; y < l.Size[1]; y++ {
			for z := 0; z < l.Size[2]; z++ {
				out = append(out, Coord{x, y, z})
			}
		}
	}
	return out
}
