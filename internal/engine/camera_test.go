package engine

import (
	"math"
	"testing"

	"github.com/inkboard/inkboard/engine-go/internal/geom"
)

func TestCameraIdentity(t *testing.T) {
	c := NewCamera()
	center := geom.Pt(400, 300)
	p := geom.Pt(123, 456)
	w := c.ScreenToWorld(p, center)
	if w != p {
		t.Fatalf("identity camera changed the point: %v", w)
	}
}

func TestCameraPanZoom(t *testing.T) {
	c := Camera{PanX: 100, PanY: 50, Zoom: 2}
	center := geom.Pt(0, 0)
	w := c.ScreenToWorld(geom.Pt(300, 250), center)
	if w.X != 100 || w.Y != 100 {
		t.Fatalf("screenToWorld = %v, want (100,100)", w)
	}
	s := c.WorldToScreen(geom.Pt(100, 100), center)
	if s.X != 300 || s.Y != 250 {
		t.Fatalf("worldToScreen = %v, want (300,250)", s)
	}
}

func TestCameraRoundTripWithRotation(t *testing.T) {
	c := Camera{PanX: -37, PanY: 12.5, Zoom: 1.75, ViewRotationDeg: 33}
	center := geom.Pt(512, 384)
	points := []geom.Point{
		geom.Pt(0, 0),
		geom.Pt(512, 384),
		geom.Pt(-250, 900),
		geom.Pt(1e4, -1e4),
	}
	for _, p := range points {
		back := c.WorldToScreen(c.ScreenToWorld(p, center), center)
		if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
			t.Errorf("round trip drifted for %v: got %v", p, back)
		}
	}
}

func TestCameraViewRotationPivotsOnCenter(t *testing.T) {
	c := Camera{Zoom: 1, ViewRotationDeg: 90}
	center := geom.Pt(100, 100)
	// The viewport center maps to itself regardless of rotation.
	w := c.ScreenToWorld(center, center)
	if math.Abs(w.X-100) > 1e-9 || math.Abs(w.Y-100) > 1e-9 {
		t.Fatalf("center should be a fixed point, got %v", w)
	}
	// A point right of center unrotates to below center (clockwise view).
	w = c.ScreenToWorld(geom.Pt(150, 100), center)
	if math.Abs(w.X-100) > 1e-9 || math.Abs(w.Y-150) > 1e-9 {
		t.Fatalf("rotated mapping = %v, want (100,150)", w)
	}
}

func TestScreenDistToWorld(t *testing.T) {
	c := Camera{Zoom: 4, ViewRotationDeg: 57}
	if got := c.ScreenDistToWorld(8); got != 2 {
		t.Fatalf("dist = %v, want 2", got)
	}
}
