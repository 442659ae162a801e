package mapgen

import "testing"

func TestBuildWalls(t *testing.T) {
	walls := BuildWalls(100, 60)
	want := map[string]Wall{
		"TopWall":    {Center: Vec2{0, 30.5}, Size: Vec2{102, 1}},
		"BottomWall": {Center: Vec2{0, -30.5}, Size: Vec2{102, 1}},
		"LeftWall":   {Center: Vec2{-50.5, 0}, Size: Vec2{1, 62}},
		"RightWall":  {Center: Vec2{50.5, 0}, Size: Vec2{1, 62}},
	}
	if len(walls) != len(want) {
		t.Fatalf("expected %d walls, got %d", len(want), len(walls))
	}
	for _, w := range walls {
		exp, ok := want[w.Name]
		if !ok {
			t.Fatalf("unexpected wall %q", w.Name)
		}
		if w.Center != exp.Center || w.Size != exp.Size {
			t.Fatalf("%s: got center %v size %v, want center %v size %v", w.Name, w.Center, w.Size, exp.Center, exp.Size)
		}
		if w.Contains(Vec2{0, 0}) {
			t.Fatalf("%s covers the map centre", w.Name)
		}
	}
}

func TestBuildCameraBounds(t *testing.T) {
	b := BuildCameraBounds(100, 80, 5)
	if !b.Trigger {
		t.Fatalf("camera bounds must be trigger-only")
	}
	want := []Vec2{{-45, -35}, {-45, 35}, {45, 35}, {45, -35}}
	if len(b.Points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(b.Points))
	}
	for i := range want {
		if b.Points[i] != want[i] {
			t.Fatalf("point %d: got %v, want %v", i, b.Points[i], want[i])
		}
	}
	if !b.Contains(Vec2{44, -34}) || b.Contains(Vec2{46, 0}) {
		t.Fatalf("Contains does not match the padded rectangle")
	}
}
