// Package board owns the in-memory document for one whiteboard: the object
// model shared with the sync wire format, the typed props accessor, and the
// Store that keeps a coarse spatial index over every live object.
package board

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/inkboard/inkboard/engine-go/internal/geom"
)

// ObjectID identifies a board object. IDs are UUIDs on the wire.
type ObjectID = uuid.UUID

// Kind is the drawable kind of a board object.
type Kind string

const (
	KindRect    Kind = "rect"
	KindText    Kind = "text"
	KindFrame   Kind = "frame"
	KindEllipse Kind = "ellipse"
	KindDiamond Kind = "diamond"
	KindStar    Kind = "star"
	KindLine    Kind = "line"
	KindArrow   Kind = "arrow"
	KindSvg     Kind = "svg"
)

// IsEdge reports whether the kind is a line-like connector whose geometry
// lives in the props endpoints rather than the bounding box.
func (k Kind) IsEdge() bool {
	return k == KindLine || k == KindArrow
}

// Object is a board object as stored in the document and on the wire.
// X/Y/Width/Height are world units with a left/top origin; Rotation is
// clockwise degrees about the box center. For line/arrow kinds the effective
// bounds derive from the "a"/"b" endpoints in Props and the box fields are
// unused placeholders.
type Object struct {
	ID        ObjectID       `json:"id"`
	BoardID   ObjectID       `json:"board_id"`
	Kind      Kind           `json:"kind"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Rotation  float64        `json:"rotation"`
	ZIndex    int64          `json:"z_index"`
	Props     map[string]any `json:"props"`
	CreatedBy *ObjectID      `json:"created_by"`
	Version   int64          `json:"version"`
	GroupID   *ObjectID      `json:"group_id"`
}

// Center returns the center of the bounding box.
func (o *Object) Center() geom.Point {
	return geom.Pt(o.X+o.Width/2, o.Y+o.Height/2)
}

// EndpointA returns the world position of edge endpoint "a", if present.
func (o *Object) EndpointA() (geom.Point, bool) {
	return endpoint(o.Props, "a")
}

// EndpointB returns the world position of edge endpoint "b", if present.
func (o *Object) EndpointB() (geom.Point, bool) {
	return endpoint(o.Props, "b")
}

func endpoint(props map[string]any, key string) (geom.Point, bool) {
	raw, ok := props[key]
	if !ok {
		return geom.Point{}, false
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return geom.Point{}, false
	}
	x, okX := asFloat(m["x"])
	y, okY := asFloat(m["y"])
	if !okX || !okY {
		return geom.Point{}, false
	}
	return geom.Pt(x, y), true
}

// Attachment binds an edge endpoint to a normalized (ux, uy) anchor on
// another object's boundary. The endpoint's cached x/y is the world position
// at the time of the last write; following the live target is the engine's
// job.
type Attachment struct {
	ObjectID ObjectID
	UX       float64
	UY       float64
}

// EndpointAttachment returns the attachment record for endpoint key "a" or
// "b", if that endpoint is attached rather than free.
func (o *Object) EndpointAttachment(key string) (Attachment, bool) {
	m, ok := o.Props[key].(map[string]any)
	if !ok {
		return Attachment{}, false
	}
	if t, _ := m["type"].(string); t != "attached" {
		return Attachment{}, false
	}
	idStr, ok := m["objectId"].(string)
	if !ok {
		return Attachment{}, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return Attachment{}, false
	}
	ux, okX := asFloat(m["ux"])
	uy, okY := asFloat(m["uy"])
	if !okX || !okY {
		return Attachment{}, false
	}
	return Attachment{ObjectID: id, UX: ux, UY: uy}, true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Bounds returns the object's world bounds. Edges use their endpoints; every
// other kind uses the axis-aligned box of its four rotated corners so a
// rotated object still lands in every bucket it visually covers.
func (o *Object) Bounds() geom.Bounds {
	if o.Kind.IsEdge() {
		a, okA := o.EndpointA()
		b, okB := o.EndpointB()
		if okA && okB {
			return geom.BoundsFromPoint(a).Union(geom.BoundsFromPoint(b))
		}
		if okA {
			return geom.BoundsFromPoint(a)
		}
		if okB {
			return geom.BoundsFromPoint(b)
		}
		return geom.BoundsFromPoint(geom.Pt(o.X, o.Y))
	}

	center := o.Center()
	corners := [4]geom.Point{
		geom.Pt(o.X, o.Y),
		geom.Pt(o.X+o.Width, o.Y),
		geom.Pt(o.X+o.Width, o.Y+o.Height),
		geom.Pt(o.X, o.Y+o.Height),
	}
	b := geom.BoundsFromPoint(geom.RotatePoint(corners[0], center, o.Rotation))
	for _, c := range corners[1:] {
		b = b.Union(geom.BoundsFromPoint(geom.RotatePoint(c, center, o.Rotation)))
	}
	return b
}

// Clone returns a deep copy of the object (props map included).
func (o *Object) Clone() Object {
	dup := *o
	if o.Props != nil {
		dup.Props = make(map[string]any, len(o.Props))
		for k, v := range o.Props {
			dup.Props[k] = cloneValue(v)
		}
	}
	if o.CreatedBy != nil {
		id := *o.CreatedBy
		dup.CreatedBy = &id
	}
	if o.GroupID != nil {
		id := *o.GroupID
		dup.GroupID = &id
	}
	return dup
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}

// OptionalUUID is a three-state UUID field for sparse updates: absent means
// unchanged, present with a value sets, present with JSON null clears.
type OptionalUUID struct {
	Set   bool
	Value *ObjectID
}

// MarshalJSON writes the value, or null when clearing.
func (u OptionalUUID) MarshalJSON() ([]byte, error) {
	if u.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(u.Value)
}

// UnmarshalJSON records that the field was present; null leaves Value nil.
func (u *OptionalUUID) UnmarshalJSON(data []byte) error {
	u.Set = true
	if string(data) == "null" {
		u.Value = nil
		return nil
	}
	return json.Unmarshal(data, &u.Value)
}

// Partial is a sparse update for an Object. Only non-nil fields apply. Props
// is merged key-by-key into the target's bag: a JSON null deletes the key,
// any other value upserts it.
type Partial struct {
	X        *float64        `json:"x,omitempty"`
	Y        *float64        `json:"y,omitempty"`
	Width    *float64        `json:"width,omitempty"`
	Height   *float64        `json:"height,omitempty"`
	Rotation *float64        `json:"rotation,omitempty"`
	ZIndex   *int64          `json:"z_index,omitempty"`
	Props    json.RawMessage `json:"props,omitempty"`
	Version  *int64          `json:"version,omitempty"`
	GroupID  *OptionalUUID   `json:"group_id,omitempty"`
}

// F returns a *float64 for building Partial literals.
func F(v float64) *float64 { return &v }

// I returns an *int64 for building Partial literals.
func I(v int64) *int64 { return &v }

// PropsPatch marshals a key set into a Partial props patch.
func PropsPatch(fields map[string]any) json.RawMessage {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	return data
}
