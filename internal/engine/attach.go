package engine

import (
	"math"

	"github.com/inkboard/inkboard/engine-go/internal/board"
	"github.com/inkboard/inkboard/engine-go/internal/geom"
)

// AttachedAnchorPoint returns the world position of a normalized (ux, uy)
// anchor on the object's rotated box.
func AttachedAnchorPoint(obj *board.Object, ux, uy float64) geom.Point {
	p := geom.Pt(obj.X+ux*obj.Width, obj.Y+uy*obj.Height)
	if obj.Rotation == 0 {
		return p
	}
	return geom.RotatePoint(p, obj.Center(), obj.Rotation)
}

// resolvedEndpoint returns an endpoint's live world position. An attached
// endpoint follows its target's boundary anchor as the target moves; a free
// endpoint (or one whose target is gone) uses the stored point.
func resolvedEndpoint(obj *board.Object, key string, store *board.Store) (geom.Point, bool) {
	if att, ok := obj.EndpointAttachment(key); ok {
		if target := store.Get(att.ObjectID); target != nil {
			return AttachedAnchorPoint(target, att.UX, att.UY), true
		}
	}
	if key == "a" {
		return obj.EndpointA()
	}
	return obj.EndpointB()
}

// findEdgeAttachmentTarget finds the nearest non-edge object whose boundary
// is within the snap radius of the pointer, preferring the closest boundary
// point. The dragged edge itself never attaches to anything.
func (c *Core) findEdgeAttachmentTarget(edgeID board.ObjectID, worldPt geom.Point) (board.ObjectID, float64, float64, geom.Point, bool) {
	snapRadius := c.camera.ScreenDistToWorld(c.tuning.EdgeAttachSnapPx)
	candidates := c.store.SortedObjectsInBounds(geom.BoundsFromPoint(worldPt).Expand(snapRadius))

	var (
		bestID         board.ObjectID
		bestUX, bestUY float64
		bestPt         geom.Point
		found          bool
	)
	bestDist := math.Inf(1)
	for i := len(candidates) - 1; i >= 0; i-- {
		obj := candidates[i]
		if obj.ID == edgeID || obj.Kind.IsEdge() {
			continue
		}
		ux, uy, snapped := anchorOnObjectBoundary(obj, worldPt)
		dist := math.Hypot(worldPt.X-snapped.X, worldPt.Y-snapped.Y)
		if dist > snapRadius || dist >= bestDist {
			continue
		}
		bestID, bestUX, bestUY, bestPt, bestDist, found = obj.ID, ux, uy, snapped, dist, true
	}
	return bestID, bestUX, bestUY, bestPt, found
}

// anchorOnObjectBoundary projects a world point onto the nearest point of
// the object's boundary and returns the normalized anchor with its world
// position. A degenerate box anchors at its center.
func anchorOnObjectBoundary(obj *board.Object, worldPt geom.Point) (float64, float64, geom.Point) {
	if obj.Width <= 0 || obj.Height <= 0 {
		return 0.5, 0.5, geom.Pt(obj.X, obj.Y)
	}

	local, _ := worldToLocal(worldPt, obj)
	var bx, by float64
	if obj.Kind == board.KindEllipse {
		bx, by = nearestEllipseBoundaryLocal(local, obj.Width, obj.Height)
	} else {
		bx, by = nearestRectBoundaryLocal(local, obj.Width, obj.Height)
	}

	ux := clamp(bx/obj.Width, 0, 1)
	uy := clamp(by/obj.Height, 0, 1)
	return ux, uy, AttachedAnchorPoint(obj, ux, uy)
}

func nearestRectBoundaryLocal(local geom.Point, w, h float64) (float64, float64) {
	x := clamp(local.X, 0, w)
	y := clamp(local.Y, 0, h)
	inside := local.X >= 0 && local.X <= w && local.Y >= 0 && local.Y <= h
	if !inside {
		return x, y
	}

	// Inside the box: push out through the closest side.
	toLeft := x
	toRight := w - x
	toTop := y
	toBottom := h - y
	switch min := math.Min(math.Min(toLeft, toRight), math.Min(toTop, toBottom)); min {
	case toLeft:
		return 0, y
	case toRight:
		return w, y
	case toTop:
		return x, 0
	default:
		return x, h
	}
}

func nearestEllipseBoundaryLocal(local geom.Point, w, h float64) (float64, float64) {
	cx, cy := w/2, h/2
	if cx <= 0 || cy <= 0 {
		return nearestRectBoundaryLocal(local, w, h)
	}

	dx := local.X - cx
	dy := local.Y - cy
	denom := (dx*dx)/(cx*cx) + (dy*dy)/(cy*cy)
	if denom <= 1e-9 {
		// Pointer at the exact center: pick the top of the ellipse.
		return cx, 0
	}
	scale := 1 / math.Sqrt(denom)
	return cx + dx*scale, cy + dy*scale
}
