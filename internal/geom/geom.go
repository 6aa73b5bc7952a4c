// Package geom holds the scalar 2D geometry the board and engine packages
// share: points, axis-aligned world bounds, rotation about an arbitrary
// origin, and the containment/distance tests hit-testing is built from.
package geom

import "math"

// Point is a location in either screen or world space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for constructing a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Bounds is an axis-aligned min/max rectangle in world units.
type Bounds struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// BoundsFromPoint returns a zero-area Bounds at p.
func BoundsFromPoint(p Point) Bounds {
	return Bounds{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
}

// Expand grows the bounds by d on every side.
func (b Bounds) Expand(d float64) Bounds {
	return Bounds{MinX: b.MinX - d, MinY: b.MinY - d, MaxX: b.MaxX + d, MaxY: b.MaxY + d}
}

// Union returns the smallest bounds containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// Intersects reports whether the two bounds overlap, edges inclusive.
func (b Bounds) Intersects(other Bounds) bool {
	return b.MinX <= other.MaxX && b.MaxX >= other.MinX &&
		b.MinY <= other.MaxY && b.MaxY >= other.MinY
}

// ContainsPoint reports whether p lies inside the bounds, edges inclusive.
func (b Bounds) ContainsPoint(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// RotatePoint rotates p clockwise by deg degrees around origin.
func RotatePoint(p, origin Point, deg float64) Point {
	rad := deg * math.Pi / 180.0
	sin, cos := math.Sincos(rad)
	dx := p.X - origin.X
	dy := p.Y - origin.Y
	return Point{
		X: origin.X + dx*cos - dy*sin,
		Y: origin.Y + dx*sin + dy*cos,
	}
}

// PointInPolygon reports whether p lies inside the polygon using the
// even-odd ray-casting rule. Fewer than three vertices never contain.
func PointInPolygon(p Point, verts []Point) bool {
	n := len(verts)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := verts[i].X, verts[i].Y
		xj, yj := verts[j].X, verts[j].Y
		if (yi > p.Y) != (yj > p.Y) &&
			p.X < (xj-xi)*(p.Y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// DistSqToSegment returns the squared distance from p to the segment a-b,
// clamped to the segment ends.
func DistSqToSegment(p, a, b Point) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	lenSq := abx*abx + aby*aby
	t := 0.0
	if lenSq > 0 {
		t = ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	cx := a.X + t*abx
	cy := a.Y + t*aby
	dx := p.X - cx
	dy := p.Y - cy
	return dx*dx + dy*dy
}

// DistToSegment returns the distance from p to the segment a-b.
func DistToSegment(p, a, b Point) float64 {
	return math.Sqrt(DistSqToSegment(p, a, b))
}

// PointNear reports whether p lies within radius of center, inclusive.
func PointNear(p, center Point, radius float64) bool {
	dx := p.X - center.X
	dy := p.Y - center.Y
	return dx*dx+dy*dy <= radius*radius
}
