package engine

import (
	"math"

	"github.com/inkboard/inkboard/engine-go/internal/board"
	"github.com/inkboard/inkboard/engine-go/internal/config"
	"github.com/inkboard/inkboard/engine-go/internal/geom"
)

// HitPart identifies which part of an object the pointer is over.
type HitPart int

const (
	PartBody HitPart = iota
	PartResizeHandle
	PartRotateHandle
	PartEdgeEndpoint
	PartEdgeBody
)

// ResizeAnchor names a resize handle, clockwise from the top midpoint.
type ResizeAnchor int

const (
	AnchorN ResizeAnchor = iota
	AnchorNE
	AnchorE
	AnchorSE
	AnchorS
	AnchorSW
	AnchorW
	AnchorNW
)

// EdgeEnd names an endpoint of a line or arrow.
type EdgeEnd int

const (
	EdgeEndA EdgeEnd = iota
	EdgeEndB
)

// Hit is the result of a hit test. Anchor is meaningful only for
// PartResizeHandle and End only for PartEdgeEndpoint.
type Hit struct {
	ObjectID board.ObjectID `json:"objectId"`
	Part     HitPart        `json:"part"`
	Anchor   ResizeAnchor   `json:"anchor"`
	End      EdgeEnd        `json:"end"`
}

// HitTest finds the topmost object part under a world point. Handles and
// edge endpoints are only offered for the single selected object; they take
// priority over any body, and rotate beats resize. Slop distances are screen
// pixels converted through the camera so they stay constant on screen.
func HitTest(worldPt geom.Point, store *board.Store, cam Camera, tuning *config.Tuning, selected *board.ObjectID) (Hit, bool) {
	handleRadius := cam.ScreenDistToWorld(tuning.HandleRadiusPx)
	rotateOffset := cam.ScreenDistToWorld(tuning.RotateHandleOffsetPx)

	if selected != nil {
		if obj := store.Get(*selected); obj != nil {
			if hit, ok := hitSelectedParts(worldPt, obj, store, handleRadius, rotateOffset); ok {
				return hit, true
			}
		}
	}

	// Pad the query by the edge slop plus the handle reach so edges and
	// rotated extremities near bucket borders are not missed.
	pad := handleRadius + rotateOffset
	query := geom.BoundsFromPoint(worldPt).Expand(pad)
	candidates := store.SortedObjectsInBounds(query)

	var best Hit
	found := false
	for _, obj := range candidates {
		if part, ok := hitBody(worldPt, obj, store, handleRadius); ok {
			best = Hit{ObjectID: obj.ID, Part: part}
			found = true
		}
	}
	return best, found
}

func hitSelectedParts(p geom.Point, obj *board.Object, store *board.Store, handleRadius, rotateOffset float64) (Hit, bool) {
	if obj.Kind.IsEdge() {
		if a, ok := resolvedEndpoint(obj, "a", store); ok && geom.PointNear(p, a, handleRadius) {
			return Hit{ObjectID: obj.ID, Part: PartEdgeEndpoint, End: EdgeEndA}, true
		}
		if b, ok := resolvedEndpoint(obj, "b", store); ok && geom.PointNear(p, b, handleRadius) {
			return Hit{ObjectID: obj.ID, Part: PartEdgeEndpoint, End: EdgeEndB}, true
		}
		return Hit{}, false
	}

	rh := RotateHandlePosition(obj, rotateOffset)
	if geom.PointNear(p, rh, handleRadius) {
		return Hit{ObjectID: obj.ID, Part: PartRotateHandle}, true
	}
	for i, hp := range ResizeHandlePositions(obj) {
		if geom.PointNear(p, hp, handleRadius) {
			return Hit{ObjectID: obj.ID, Part: PartResizeHandle, Anchor: ResizeAnchor(i)}, true
		}
	}
	return Hit{}, false
}

func hitBody(p geom.Point, obj *board.Object, store *board.Store, edgeSlop float64) (HitPart, bool) {
	if obj.Kind.IsEdge() {
		a, okA := resolvedEndpoint(obj, "a", store)
		b, okB := resolvedEndpoint(obj, "b", store)
		if !okA || !okB {
			return 0, false
		}
		if geom.DistToSegment(p, a, b) <= edgeSlop {
			return PartEdgeBody, true
		}
		return 0, false
	}
	if shapeContains(p, obj) {
		return PartBody, true
	}
	return 0, false
}

func shapeContains(p geom.Point, obj *board.Object) bool {
	local, ok := worldToLocal(p, obj)
	if !ok {
		return false
	}
	switch obj.Kind {
	case board.KindEllipse:
		return localInEllipse(local, obj.Width, obj.Height)
	case board.KindDiamond:
		return localInDiamond(local, obj.Width, obj.Height)
	case board.KindStar:
		return localInStar(local, obj.Width, obj.Height)
	default:
		// rect, text, frame, svg all hit on their box.
		return local.X >= 0 && local.X <= obj.Width && local.Y >= 0 && local.Y <= obj.Height
	}
}

// worldToLocal maps a world point into the object's unrotated local frame
// with the origin at the box top-left.
func worldToLocal(p geom.Point, obj *board.Object) (geom.Point, bool) {
	center := obj.Center()
	if obj.Rotation != 0 {
		p = geom.RotatePoint(p, center, -obj.Rotation)
	}
	return geom.Pt(p.X-obj.X, p.Y-obj.Y), true
}

func localInEllipse(local geom.Point, w, h float64) bool {
	rx, ry := w/2, h/2
	if rx <= 0 || ry <= 0 {
		return false
	}
	nx := (local.X - rx) / rx
	ny := (local.Y - ry) / ry
	return nx*nx+ny*ny <= 1
}

func localInDiamond(local geom.Point, w, h float64) bool {
	rx, ry := w/2, h/2
	if rx <= 0 || ry <= 0 {
		return false
	}
	return math.Abs(local.X-rx)/rx+math.Abs(local.Y-ry)/ry <= 1
}

const starInnerRatio = 0.5

// localInStar tests against the standard five-point star inscribed in the
// box: ten vertices alternating outer and inner radius, starting at the top.
func localInStar(local geom.Point, w, h float64) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	cx, cy := w/2, h/2
	verts := make([]geom.Point, 10)
	for i := range verts {
		angle := -math.Pi/2 + float64(i)*math.Pi/5
		scale := 1.0
		if i%2 == 1 {
			scale = starInnerRatio
		}
		verts[i] = geom.Pt(cx+math.Cos(angle)*cx*scale, cy+math.Sin(angle)*cy*scale)
	}
	return geom.PointInPolygon(local, verts)
}

// ResizeHandlePositions returns the eight handle centers in world space,
// ordered N, NE, E, SE, S, SW, W, NW.
func ResizeHandlePositions(obj *board.Object) [8]geom.Point {
	x, y, w, h := obj.X, obj.Y, obj.Width, obj.Height
	cx, cy := x+w/2, y+h/2
	raw := [8]geom.Point{
		geom.Pt(cx, y),
		geom.Pt(x+w, y),
		geom.Pt(x+w, cy),
		geom.Pt(x+w, y+h),
		geom.Pt(cx, y+h),
		geom.Pt(x, y+h),
		geom.Pt(x, cy),
		geom.Pt(x, y),
	}
	if obj.Rotation == 0 {
		return raw
	}
	center := obj.Center()
	for i, p := range raw {
		raw[i] = geom.RotatePoint(p, center, obj.Rotation)
	}
	return raw
}

// RotateHandlePosition returns the rotate handle center in world space:
// offsetWorld above the top edge midpoint, rotated with the object.
func RotateHandlePosition(obj *board.Object, offsetWorld float64) geom.Point {
	center := obj.Center()
	p := geom.Pt(center.X, obj.Y-offsetWorld)
	if obj.Rotation == 0 {
		return p
	}
	return geom.RotatePoint(p, center, obj.Rotation)
}
