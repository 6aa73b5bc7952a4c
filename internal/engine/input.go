package engine

import (
	"github.com/inkboard/inkboard/engine-go/internal/board"
	"github.com/inkboard/inkboard/engine-go/internal/geom"
)

// Tool is the active editing tool.
type Tool string

const (
	ToolSelect  Tool = "select"
	ToolHand    Tool = "hand"
	ToolRect    Tool = "rect"
	ToolText    Tool = "text"
	ToolFrame   Tool = "frame"
	ToolEllipse Tool = "ellipse"
	ToolDiamond Tool = "diamond"
	ToolStar    Tool = "star"
	ToolLine    Tool = "line"
	ToolArrow   Tool = "arrow"
)

// IsShape reports whether the tool draws a node shape.
func (t Tool) IsShape() bool {
	switch t {
	case ToolRect, ToolText, ToolFrame, ToolEllipse, ToolDiamond, ToolStar:
		return true
	}
	return false
}

// IsEdge reports whether the tool draws a line or arrow.
func (t Tool) IsEdge() bool {
	return t == ToolLine || t == ToolArrow
}

// Kind returns the object kind the tool creates.
func (t Tool) Kind() (board.Kind, bool) {
	switch t {
	case ToolRect:
		return board.KindRect, true
	case ToolText:
		return board.KindText, true
	case ToolFrame:
		return board.KindFrame, true
	case ToolEllipse:
		return board.KindEllipse, true
	case ToolDiamond:
		return board.KindDiamond, true
	case ToolStar:
		return board.KindStar, true
	case ToolLine:
		return board.KindLine, true
	case ToolArrow:
		return board.KindArrow, true
	}
	return "", false
}

// Modifiers are the modifier keys held during an event.
type Modifiers struct {
	Shift bool `json:"shift"`
	Ctrl  bool `json:"ctrl"`
	Alt   bool `json:"alt"`
	Meta  bool `json:"meta"`
}

// Accel reports the platform accelerator (ctrl or cmd).
func (m Modifiers) Accel() bool {
	return m.Ctrl || m.Meta
}

// Button is a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Key is a keyboard key value as reported by the host.
type Key string

// WheelDelta is a wheel or trackpad scroll delta in screen pixels.
type WheelDelta struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// SelectionRect is the live marquee rectangle in world units.
type SelectionRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// UIState is the persistent interaction state shared with the renderer.
type UIState struct {
	Tool        Tool
	SelectedIDs map[board.ObjectID]struct{}
	Marquee     *SelectionRect
	SpacePan    bool
}

func newUIState() UIState {
	return UIState{
		Tool:        ToolSelect,
		SelectedIDs: make(map[board.ObjectID]struct{}),
	}
}

// gestureState is the in-flight gesture. One struct per state; each active
// state carries the context needed to compute deltas, revert on cancel, and
// emit final intents on release.
type gestureState interface {
	isGesture()
}

type idleState struct{}

type panningState struct {
	lastScreen geom.Point
}

type dragAxis int

const (
	axisNone dragAxis = iota
	axisX
	axisY
)

type dragOriginal struct {
	id board.ObjectID
	x  float64
	y  float64
}

type draggingState struct {
	ids        []board.ObjectID
	startWorld geom.Point
	originals  []dragOriginal
	axisLock   dragAxis
	duplicated bool
}

type marqueeState struct {
	anchorWorld geom.Point
	lastWorld   geom.Point
	union       bool
}

type drawingState struct {
	id          board.ObjectID
	anchorWorld geom.Point
}

type resizingState struct {
	id         board.ObjectID
	anchor     ResizeAnchor
	startWorld geom.Point
	origX      float64
	origY      float64
	origW      float64
	origH      float64
}

type rotatingState struct {
	id           board.ObjectID
	pivot        geom.Point
	origRotation float64
	startAngle   float64
	applied      float64
}

type endpointDragState struct {
	id   board.ObjectID
	end  EdgeEnd
	orig any // the endpoint's full props record at press, for revert
}

func (idleState) isGesture()         {}
func (panningState) isGesture()      {}
func (draggingState) isGesture()     {}
func (marqueeState) isGesture()      {}
func (drawingState) isGesture()      {}
func (resizingState) isGesture()     {}
func (rotatingState) isGesture()     {}
func (endpointDragState) isGesture() {}
