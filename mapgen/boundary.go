package mapgen

// WallThickness is the depth of each boundary wall in tiles
const WallThickness = 1.0

// Vec2 is a point in world units, tile (0,0) spanning [0,1) on both axes
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Wall is a solid axis-aligned rectangle
type Wall struct {
	Name   string `json:"name"`
	Center Vec2   `json:"center"`
	Size   Vec2   `json:"size"`
}

// Contains reports whether p lies inside the wall rectangle
func (w Wall) Contains(p Vec2) bool {
	return p.X >= w.Center.X-w.Size.X/2 && p.X <= w.Center.X+w.Size.X/2 &&
		p.Y >= w.Center.Y-w.Size.Y/2 && p.Y <= w.Center.Y+w.Size.Y/2
}

// CameraBounds is the trigger-only region handed to camera confinement
type CameraBounds struct {
	Padding float64 `json:"padding"`
	// Points is a closed rectangle: bottom-left, top-left, top-right, bottom-right
	Points  []Vec2 `json:"points"`
	Trigger bool   `json:"trigger"`
}

// Contains reports whether p lies inside the bounds
func (b CameraBounds) Contains(p Vec2) bool {
	if len(b.Points) != 4 {
		return false
	}
	lo, hi := b.Points[0], b.Points[2]
	return p.X >= lo.X && p.X <= hi.X && p.Y >= lo.Y && p.Y <= hi.Y
}

// BuildWalls returns the four walls just outside each map edge
func BuildWalls(width, height int) []Wall {
	halfW := float64(width) / 2
	halfH := float64(height) / 2
	t := WallThickness

	return []Wall{
		{Name: "TopWall", Center: Vec2{0, halfH + t/2}, Size: Vec2{float64(width) + 2, t}},
		{Name: "BottomWall", Center: Vec2{0, -halfH - t/2}, Size: Vec2{float64(width) + 2, t}},
		{Name: "LeftWall", Center: Vec2{-halfW - t/2, 0}, Size: Vec2{t, float64(height) + 2}},
		{Name: "RightWall", Center: Vec2{halfW + t/2, 0}, Size: Vec2{t, float64(height) + 2}},
	}
}

// BuildCameraBounds returns the map rectangle inset by padding
func BuildCameraBounds(width, height int, padding float64) CameraBounds {
	halfW := float64(width)/2 - padding
	halfH := float64(height)/2 - padding

	return CameraBounds{
		Padding: padding,
		Points: []Vec2{
			{-halfW, -halfH},
			{-halfW, halfH},
			{halfW, halfH},
			{halfW, -halfH},
		},
		Trigger: true,
	}
}
