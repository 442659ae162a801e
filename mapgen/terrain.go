package mapgen

// Edge tile slots. GrassEdges is laid out as a 3x3 block:
//
//	0 1 2
//	3 4 5
//	6 7 8
const (
	EdgeTopLeft = iota
	EdgeTop
	EdgeTopRight
	EdgeLeft
	EdgeCenter
	EdgeRight
	EdgeBottomLeft
	EdgeBottom
	EdgeBottomRight

	EdgeTileCount
)

// Rand is the slice of *rand.Rand the generator draws from
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// terrain classifies cells as grass or dirt from the noise field
type terrain struct {
	cfg   *Config
	field *NoiseField
}

// isGrass works for any coordinate, including cells beyond the map edge
func (t terrain) isGrass(x, y int) bool {
	return t.field.Sample(x, y) > t.cfg.GrassThreshold
}

// buildGround fills the ground layer and then refines grass edges
func (t terrain) buildGround(grid *Grid, rng Rand) {
	lo, hi := grid.Min(), grid.Max()

	for x := lo.X; x < hi.X; x++ {
		for y := lo.Y; y < hi.Y; y++ {
			var tile TileID
			if t.isGrass(x, y) {
				// No draw without a variation set
				if n := len(t.cfg.GroundVariations); n > 0 && rng.Float64() < DefaultVariationChance {
					tile = t.cfg.GroundVariations[rng.Intn(n)]
				} else {
					tile = t.cfg.GrassFill
				}
			} else {
				tile = t.cfg.DirtFill
			}
			if tile != "" {
				grid.Ground.Set(x, y, tile)
			}
		}
	}

	t.applyEdges(grid)
}

// applyEdges swaps grass cells for the edge tile matching their neighbours
func (t terrain) applyEdges(grid *Grid) {
	if len(t.cfg.GrassEdges) < EdgeTileCount {
		return
	}
	lo, hi := grid.Min(), grid.Max()

	for x := lo.X; x < hi.X; x++ {
		for y := lo.Y; y < hi.Y; y++ {
			if !t.isGrass(x, y) {
				continue
			}
			idx := EdgeIndex(
				t.isGrass(x, y+1),
				t.isGrass(x, y-1),
				t.isGrass(x-1, y),
				t.isGrass(x+1, y),
			)
			if tile := t.cfg.GrassEdges[idx]; tile != "" {
				grid.Ground.Set(x, y, tile)
			}
		}
	}
}

// EdgeIndex picks the edge slot for a grass cell from its four neighbours.
// The first matching rule wins; unmatched patterns fall back to the centre.
func EdgeIndex(top, bottom, left, right bool) int {
	switch {
	case top && bottom && left && right:
		return EdgeCenter

	case !top && !left && bottom && right:
		return EdgeTopLeft
	case !top && left && bottom && !right:
		return EdgeTopRight
	case top && !left && !bottom && right:
		return EdgeBottomLeft
	case top && left && !bottom && !right:
		return EdgeBottomRight

	case !top && left && bottom && right:
		return EdgeTop
	case top && left && !bottom && right:
		return EdgeBottom
	case top && !left && bottom && right:
		return EdgeLeft
	case top && left && bottom && !right:
		return EdgeRight
	}
	return EdgeCenter
}
