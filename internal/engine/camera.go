// Package engine implements the client-side interaction core: the camera
// mapping between screen and world space, the hit-tester, and the pointer /
// key gesture state machine that turns host events into mutation intents.
package engine

import (
	"github.com/inkboard/inkboard/engine-go/internal/geom"
)

// Camera maps between screen pixels and world units. Pan is the screen
// offset of the world origin, Zoom scales world to screen, and
// ViewRotationDeg rotates the whole view clockwise about the viewport
// center after pan and zoom.
type Camera struct {
	PanX            float64 `json:"panX"`
	PanY            float64 `json:"panY"`
	Zoom            float64 `json:"zoom"`
	ViewRotationDeg float64 `json:"viewRotationDeg"`
}

// NewCamera returns an identity camera.
func NewCamera() Camera {
	return Camera{Zoom: 1}
}

// ScreenToWorld converts a screen point to world space. viewportCenter is
// the screen-space center the view rotation pivots around.
func (c Camera) ScreenToWorld(p, viewportCenter geom.Point) geom.Point {
	if c.ViewRotationDeg != 0 {
		p = geom.RotatePoint(p, viewportCenter, -c.ViewRotationDeg)
	}
	return geom.Pt((p.X-c.PanX)/c.Zoom, (p.Y-c.PanY)/c.Zoom)
}

// WorldToScreen converts a world point to screen space, the exact inverse of
// ScreenToWorld.
func (c Camera) WorldToScreen(p, viewportCenter geom.Point) geom.Point {
	s := geom.Pt(p.X*c.Zoom+c.PanX, p.Y*c.Zoom+c.PanY)
	if c.ViewRotationDeg != 0 {
		s = geom.RotatePoint(s, viewportCenter, c.ViewRotationDeg)
	}
	return s
}

// ScreenDistToWorld converts a screen-pixel distance to world units.
// Rotation never changes lengths, so only zoom applies.
func (c Camera) ScreenDistToWorld(d float64) float64 {
	return d / c.Zoom
}
