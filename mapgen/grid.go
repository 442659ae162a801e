package mapgen

import (
	"encoding/binary"
	"hash/fnv"
)

// TileID names a tile asset. The empty string means no tile.
type TileID string

// Point is an integer tile coordinate
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Layer is a rectangular tile layer centred on the origin.
// Cells outside the layer rectangle cannot be written.
type Layer struct {
	minX, minY    int
	width, height int
	cells         []TileID
	filled        int
}

func newLayer(minX, minY, width, height int) *Layer {
	return &Layer{
		minX:   minX,
		minY:   minY,
		width:  width,
		height: height,
		cells:  make([]TileID, width*height),
	}
}

func (l *Layer) index(x, y int) (int, bool) {
	lx := x - l.minX
	ly := y - l.minY
	if lx < 0 || lx >= l.width || ly < 0 || ly >= l.height {
		return 0, false
	}
	return ly*l.width + lx, true
}

// Get returns the tile at (x, y), or "" for empty and out-of-range cells
func (l *Layer) Get(x, y int) TileID {
	i, ok := l.index(x, y)
	if !ok {
		return ""
	}
	return l.cells[i]
}

// Set writes a tile and reports whether (x, y) lies inside the layer
func (l *Layer) Set(x, y int, tile TileID) bool {
	i, ok := l.index(x, y)
	if !ok {
		return false
	}
	switch {
	case l.cells[i] == "" && tile != "":
		l.filled++
	case l.cells[i] != "" && tile == "":
		l.filled--
	}
	l.cells[i] = tile
	return true
}

// Count returns the number of non-empty cells
func (l *Layer) Count() int {
	return l.filled
}

// Clear empties every cell
func (l *Layer) Clear() {
	for i := range l.cells {
		l.cells[i] = ""
	}
	l.filled = 0
}

// Each calls fn for every non-empty cell in row-major order
func (l *Layer) Each(fn func(p Point, tile TileID)) {
	for i, t := range l.cells {
		if t == "" {
			continue
		}
		fn(Point{X: l.minX + i%l.width, Y: l.minY + i/l.width}, t)
	}
}

// Equal reports whether both layers hold the same tiles at the same places
func (l *Layer) Equal(o *Layer) bool {
	if l.minX != o.minX || l.minY != o.minY || l.width != o.width || l.height != o.height {
		return false
	}
	for i := range l.cells {
		if l.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Grid holds the three parallel tile layers of a generated map.
// Ground is fully populated after generation; Decoration and Collision are sparse.
type Grid struct {
	Width      int
	Height     int
	Ground     *Layer
	Decoration *Layer
	Collision  *Layer
}

// NewGrid creates an empty grid covering x in [-w/2, w/2) and y in [-h/2, h/2)
func NewGrid(width, height int) *Grid {
	halfW, halfH := width/2, height/2
	return &Grid{
		Width:      width,
		Height:     height,
		Ground:     newLayer(-halfW, -halfH, 2*halfW, 2*halfH),
		Decoration: newLayer(-halfW, -halfH, 2*halfW, 2*halfH),
		Collision:  newLayer(-halfW, -halfH, 2*halfW, 2*halfH),
	}
}

// Min returns the lowest tile coordinate on both axes (inclusive)
func (g *Grid) Min() Point {
	return Point{X: -g.Width / 2, Y: -g.Height / 2}
}

// Max returns the highest tile coordinate on both axes (exclusive)
func (g *Grid) Max() Point {
	return Point{X: g.Width / 2, Y: g.Height / 2}
}

// Contains reports whether (x, y) is a cell of the map
func (g *Grid) Contains(x, y int) bool {
	_, ok := g.Ground.index(x, y)
	return ok
}

// Blocked reports whether (x, y) is impassable: outside the map or marked in the collision layer
func (g *Grid) Blocked(x, y int) bool {
	if !g.Contains(x, y) {
		return true
	}
	return g.Collision.Get(x, y) != ""
}

// Clear empties all layers
func (g *Grid) Clear() {
	g.Ground.Clear()
	g.Decoration.Clear()
	g.Collision.Clear()
}

// Equal reports whether two grids are tile-for-tile identical
func (g *Grid) Equal(o *Grid) bool {
	return g.Width == o.Width && g.Height == o.Height &&
		g.Ground.Equal(o.Ground) &&
		g.Decoration.Equal(o.Decoration) &&
		g.Collision.Equal(o.Collision)
}

// Digest returns a stable fingerprint of all three layers.
// Peers compare digests instead of exchanging tile data.
func (g *Grid) Digest() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(g.Width))
	binary.LittleEndian.PutUint32(buf[4:], uint32(g.Height))
	h.Write(buf[:])
	for _, layer := range []*Layer{g.Ground, g.Decoration, g.Collision} {
		for _, t := range layer.cells {
			h.Write([]byte(t))
			h.Write([]byte{0})
		}
	}
	return h.Sum64()
}
