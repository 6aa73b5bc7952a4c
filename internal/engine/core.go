package engine

import (
	"bytes"
	"math"

	"github.com/google/uuid"

	"github.com/inkboard/inkboard/engine-go/internal/board"
	"github.com/inkboard/inkboard/engine-go/internal/config"
	"github.com/inkboard/inkboard/engine-go/internal/geom"
	"github.com/inkboard/inkboard/engine-go/internal/typeid"
)

// Core is the interaction engine for one board: document, camera, selection
// and the gesture state machine. It performs no I/O; every input method
// mutates local state and returns the intents the host must act on.
//
// Core is not safe for concurrent use. The session layer serializes callers.
type Core struct {
	store   *board.Store
	camera  Camera
	ui      UIState
	gesture gestureState
	tuning  *config.Tuning

	boardID board.ObjectID

	viewportWidth  float64
	viewportHeight float64
	dpr            float64
}

// NewCore returns an engine with an empty document. A nil tuning uses the
// built-in defaults.
func NewCore(tuning *config.Tuning) *Core {
	if tuning == nil {
		tuning = config.Default()
	}
	return &Core{
		store:   board.NewStore(tuning.BucketSize),
		camera:  NewCamera(),
		ui:      newUIState(),
		gesture: idleState{},
		tuning:  tuning,
		dpr:     1,
	}
}

// SetBoardID sets the board id stamped on objects this engine creates.
func (c *Core) SetBoardID(id board.ObjectID) {
	c.boardID = id
}

// --- Remote deltas ---

// LoadSnapshot replaces the document with a server snapshot. Any in-flight
// gesture is cancelled; the objects it referenced no longer exist.
func (c *Core) LoadSnapshot(objects []board.Object) {
	c.cancelGesture()
	c.store.LoadSnapshot(objects)
	for id := range c.ui.SelectedIDs {
		if c.store.Get(id) == nil {
			delete(c.ui.SelectedIDs, id)
		}
	}
}

// ApplyCreate applies a remote object creation.
func (c *Core) ApplyCreate(obj board.Object) {
	c.store.Insert(obj)
}

// ApplyUpdate applies a remote partial update. If the object is part of an
// in-flight drag, the drag baseline is rebased so local pointer deltas apply
// on top of the remote position instead of fighting it.
func (c *Core) ApplyUpdate(id board.ObjectID, fields board.Partial) {
	c.store.ApplyPartial(id, fields)
	if st, ok := c.gesture.(draggingState); ok {
		for i := range st.originals {
			if st.originals[i].id != id {
				continue
			}
			if fields.X != nil {
				st.originals[i].x = *fields.X
			}
			if fields.Y != nil {
				st.originals[i].y = *fields.Y
			}
		}
		c.gesture = st
	}
}

// ApplyDelete applies a remote deletion. The object leaves the selection,
// and any gesture targeting it is cancelled so the engine never keeps
// manipulating a ghost.
func (c *Core) ApplyDelete(id board.ObjectID) {
	if c.gestureTargets(id) {
		c.cancelGesture()
	}
	c.store.Remove(id)
	delete(c.ui.SelectedIDs, id)
}

// --- Tool / text ---

// SetTool switches the active tool. A gesture never survives a tool switch.
func (c *Core) SetTool(tool Tool) {
	if c.ui.Tool != tool {
		c.cancelGesture()
	}
	c.ui.Tool = tool
}

// SetText commits text from the host editor into an object's props. A
// no-change commit emits nothing.
func (c *Core) SetText(id board.ObjectID, head, text, foot string) []Action {
	obj := c.store.Get(id)
	if obj == nil {
		return nil
	}
	existing := board.PropsOf(obj)
	if existing.Head() == head && existing.Text() == text && existing.Foot() == foot {
		return nil
	}
	fields := board.Partial{Props: board.PropsPatch(map[string]any{
		"head": head,
		"text": text,
		"foot": foot,
	})}
	if !c.store.ApplyPartial(id, fields) {
		return nil
	}
	return []Action{c.updated(id, fields)}
}

// --- Viewport ---

// SetViewport records the viewport size in CSS pixels and the device pixel
// ratio.
func (c *Core) SetViewport(widthCSS, heightCSS, dpr float64) {
	c.viewportWidth = widthCSS
	c.viewportHeight = heightCSS
	c.dpr = dpr
}

// SetViewRotationDeg sets the whole-canvas view rotation.
func (c *Core) SetViewRotationDeg(deg float64) {
	c.camera.ViewRotationDeg = deg
}

// ViewRotationDeg returns the current view rotation.
func (c *Core) ViewRotationDeg() float64 {
	return c.camera.ViewRotationDeg
}

// --- Pointer events ---

// PointerDown handles a pointer press.
func (c *Core) PointerDown(screenPt geom.Point, button Button, mods Modifiers) []Action {
	worldPt := c.screenToWorld(screenPt)

	// Middle button, space+drag and the hand tool always pan.
	if button == ButtonMiddle ||
		(button == ButtonPrimary && (c.ui.SpacePan || c.ui.Tool == ToolHand)) {
		c.gesture = panningState{lastScreen: screenPt}
		return []Action{SetCursor{Cursor: "grab"}}
	}
	if button != ButtonPrimary {
		return nil
	}

	switch {
	case c.ui.Tool == ToolSelect:
		return c.selectDown(worldPt, mods)
	case c.ui.Tool.IsShape():
		return c.shapeToolDown(worldPt)
	case c.ui.Tool.IsEdge():
		return c.edgeToolDown(worldPt)
	}
	return nil
}

// PointerMove handles pointer motion.
func (c *Core) PointerMove(screenPt geom.Point, mods Modifiers) []Action {
	worldPt := c.screenToWorld(screenPt)

	switch st := c.gesture.(type) {
	case panningState:
		c.camera.PanX += screenPt.X - st.lastScreen.X
		c.camera.PanY += screenPt.Y - st.lastScreen.Y
		c.gesture = panningState{lastScreen: screenPt}
		return []Action{RenderNeeded{}}

	case draggingState:
		dx := worldPt.X - st.startWorld.X
		dy := worldPt.Y - st.startWorld.Y
		if mods.Shift {
			if st.axisLock == axisNone {
				if math.Abs(dx) >= math.Abs(dy) {
					st.axisLock = axisX
				} else {
					st.axisLock = axisY
				}
			}
			switch st.axisLock {
			case axisX:
				dy = 0
			case axisY:
				dx = 0
			}
		} else {
			st.axisLock = axisNone
		}
		for _, orig := range st.originals {
			c.store.ApplyPartial(orig.id, board.Partial{X: board.F(orig.x + dx), Y: board.F(orig.y + dy)})
		}
		c.gesture = st
		return []Action{RenderNeeded{}}

	case marqueeState:
		c.updateMarquee(st.anchorWorld, worldPt)
		st.lastWorld = worldPt
		c.gesture = st
		return []Action{RenderNeeded{}}

	case drawingState:
		c.drawingMove(st.id, st.anchorWorld, worldPt)
		return []Action{RenderNeeded{}}

	case resizingState:
		rotation := 0.0
		if obj := c.store.Get(st.id); obj != nil {
			rotation = obj.Rotation
		}
		center := geom.Pt(st.origX+st.origW/2, st.origY+st.origH/2)
		startLocal := geom.RotatePoint(st.startWorld, center, -rotation)
		currentLocal := geom.RotatePoint(worldPt, center, -rotation)
		c.applyResize(st, currentLocal.X-startLocal.X, currentLocal.Y-startLocal.Y, rotation)
		return []Action{RenderNeeded{}}

	case rotatingState:
		angle := angleDeg(st.pivot, worldPt)
		newRotation := st.origRotation + normalizeAngleDelta(angle-st.startAngle)
		delta := normalizeAngleDelta(newRotation - st.applied)
		if obj := c.store.Get(st.id); obj != nil && obj.Kind == board.KindFrame && delta != 0 {
			c.rotateChildrenAroundPivot(c.frameChildren(obj), st.pivot, delta)
		}
		c.store.ApplyPartial(st.id, board.Partial{Rotation: board.F(newRotation)})
		st.applied = newRotation
		c.gesture = st
		return []Action{RenderNeeded{}}

	case endpointDragState:
		endpoint := map[string]any{"type": "free", "x": worldPt.X, "y": worldPt.Y}
		if target, ux, uy, snapped, ok := c.findEdgeAttachmentTarget(st.id, worldPt); ok {
			endpoint = map[string]any{
				"type":     "attached",
				"objectId": target.String(),
				"ux":       ux,
				"uy":       uy,
				"x":        snapped.X,
				"y":        snapped.Y,
			}
		}
		c.store.ApplyPartial(st.id, board.Partial{Props: board.PropsPatch(map[string]any{
			endpointKey(st.end): endpoint,
		})})
		return []Action{RenderNeeded{}}
	}
	return nil
}

// PointerUp handles pointer release, committing the gesture.
func (c *Core) PointerUp(screenPt geom.Point, button Button, mods Modifiers) []Action {
	prev := c.gesture
	c.gesture = idleState{}
	var actions []Action

	switch st := prev.(type) {
	case panningState:
		actions = append(actions, RenderNeeded{})

	case draggingState:
		// Duplicates announce themselves before any update references them.
		if st.duplicated {
			for _, id := range st.ids {
				if obj := c.store.Get(id); obj != nil {
					actions = append(actions, ObjectCreated{OpID: typeid.NewOpID(), Object: obj.Clone()})
				}
			}
		}
		for _, orig := range st.originals {
			obj := c.store.Get(orig.id)
			if obj == nil {
				continue
			}
			moved := math.Abs(obj.X-orig.x) > 0 || math.Abs(obj.Y-orig.y) > 0
			if moved {
				actions = append(actions, c.updated(orig.id, board.Partial{X: board.F(obj.X), Y: board.F(obj.Y)}))
			}
		}

	case marqueeState:
		c.ui.Marquee = nil
		c.selectByMarquee(st.anchorWorld, st.lastWorld, st.union || mods.Shift)
		actions = append(actions, RenderNeeded{})

	case drawingState:
		if obj := c.store.Get(st.id); obj != nil {
			tooSmall := !obj.Kind.IsEdge() &&
				(math.Abs(obj.Width) < c.tuning.MinShapeSize || math.Abs(obj.Height) < c.tuning.MinShapeSize)
			if tooSmall {
				c.store.Remove(st.id)
				delete(c.ui.SelectedIDs, st.id)
			} else {
				actions = append(actions, ObjectCreated{OpID: typeid.NewOpID(), Object: obj.Clone()})
			}
		}
		c.ui.Tool = ToolSelect
		actions = append(actions, RenderNeeded{})

	case resizingState:
		if obj := c.store.Get(st.id); obj != nil {
			if obj.Width < c.tuning.MinShapeSize || obj.Height < c.tuning.MinShapeSize {
				// Accidental shrink-to-nothing: restore the original box.
				c.store.ApplyPartial(st.id, board.Partial{
					X:      board.F(st.origX),
					Y:      board.F(st.origY),
					Width:  board.F(st.origW),
					Height: board.F(st.origH),
				})
				actions = append(actions, RenderNeeded{})
			} else {
				actions = append(actions, c.updated(st.id, board.Partial{
					X:      board.F(obj.X),
					Y:      board.F(obj.Y),
					Width:  board.F(obj.Width),
					Height: board.F(obj.Height),
				}))
			}
		}

	case rotatingState:
		if obj := c.store.Get(st.id); obj != nil {
			actions = append(actions, c.updated(st.id, board.Partial{Rotation: board.F(obj.Rotation)}))
			// Frame rotation is a grouped transform: persist child geometry.
			if obj.Kind == board.KindFrame {
				for _, childID := range c.frameChildren(obj) {
					if child := c.store.Get(childID); child != nil {
						actions = append(actions, c.updated(childID, board.Partial{
							X:        board.F(child.X),
							Y:        board.F(child.Y),
							Rotation: board.F(child.Rotation),
						}))
					}
				}
			}
		}

	case endpointDragState:
		if obj := c.store.Get(st.id); obj != nil {
			// Commit the whole endpoint record so attachments survive the
			// round trip through the sync layer.
			if v, ok := obj.Props[endpointKey(st.end)]; ok {
				actions = append(actions, c.updated(st.id, board.Partial{
					Props: board.PropsPatch(map[string]any{endpointKey(st.end): v}),
				}))
			}
		}
	}
	return actions
}

// PointerCancel aborts the gesture without committing, reverting any
// provisional document changes.
func (c *Core) PointerCancel() []Action {
	if _, idle := c.gesture.(idleState); idle {
		return nil
	}
	c.cancelGesture()
	return []Action{RenderNeeded{}}
}

// --- Wheel ---

// Wheel handles scroll input: accel+wheel zooms toward the cursor, plain
// wheel pans.
func (c *Core) Wheel(screenPt geom.Point, delta WheelDelta, mods Modifiers) []Action {
	if mods.Accel() {
		anchorWorld := c.screenToWorld(screenPt)
		factor := c.tuning.ZoomStep
		if delta.DY >= 0 {
			factor = 1 / factor
		}
		c.camera.Zoom = clamp(c.camera.Zoom*factor, c.tuning.ZoomMin, c.tuning.ZoomMax)

		// Re-derive pan so the world point under the cursor stays put,
		// accounting for view rotation about the viewport center.
		center := c.viewportCenter()
		unrotated := geom.RotatePoint(screenPt, center, -c.camera.ViewRotationDeg)
		c.camera.PanX = unrotated.X - anchorWorld.X*c.camera.Zoom
		c.camera.PanY = unrotated.Y - anchorWorld.Y*c.camera.Zoom
	} else {
		c.camera.PanX -= delta.DX
		c.camera.PanY -= delta.DY
	}
	return []Action{RenderNeeded{}}
}

// --- Keys ---

// KeyDown handles a key press.
func (c *Core) KeyDown(key Key, mods Modifiers) []Action {
	var actions []Action
	accel := mods.Accel()

	switch key {
	case " ":
		c.ui.SpacePan = true

	case "Delete", "Backspace":
		for _, id := range c.selectedSorted() {
			c.store.Remove(id)
			delete(c.ui.SelectedIDs, id)
			actions = append(actions, ObjectDeleted{OpID: typeid.NewOpID(), ID: id})
		}
		if len(actions) > 0 {
			actions = append(actions, RenderNeeded{})
		}

	case "Escape":
		c.cancelGesture()
		if len(c.ui.SelectedIDs) > 0 {
			clear(c.ui.SelectedIDs)
		}
		actions = append(actions, RenderNeeded{})

	case "Enter":
		if len(c.ui.SelectedIDs) == 1 {
			if id, ok := c.primarySelection(); ok {
				if obj := c.store.Get(id); obj != nil {
					props := board.PropsOf(obj)
					actions = append(actions, EditTextRequested{
						ID:   id,
						Head: props.Head(),
						Text: props.Text(),
						Foot: props.Foot(),
					})
				}
			}
		}

	case "a", "A":
		if accel {
			for _, obj := range c.store.SortedObjects() {
				c.ui.SelectedIDs[obj.ID] = struct{}{}
			}
			actions = append(actions, RenderNeeded{})
		}

	case "g", "G":
		if !accel {
			break
		}
		if mods.Shift {
			for _, id := range c.selectedSorted() {
				fields := board.Partial{GroupID: &board.OptionalUUID{Set: true}}
				c.store.ApplyPartial(id, fields)
				actions = append(actions, c.updated(id, fields))
			}
			actions = append(actions, RenderNeeded{})
		} else if len(c.ui.SelectedIDs) >= 2 {
			groupID := uuid.New()
			for _, id := range c.selectedSorted() {
				gid := groupID
				fields := board.Partial{GroupID: &board.OptionalUUID{Set: true, Value: &gid}}
				c.store.ApplyPartial(id, fields)
				actions = append(actions, c.updated(id, fields))
			}
			actions = append(actions, RenderNeeded{})
		}

	case "ArrowUp", "ArrowDown", "ArrowLeft", "ArrowRight":
		step := 1.0
		if mods.Shift {
			step = 10
		}
		var dx, dy float64
		switch key {
		case "ArrowUp":
			dy = -step
		case "ArrowDown":
			dy = step
		case "ArrowLeft":
			dx = -step
		case "ArrowRight":
			dx = step
		}
		for _, id := range c.selectedSorted() {
			if obj := c.store.Get(id); obj != nil {
				fields := board.Partial{X: board.F(obj.X + dx), Y: board.F(obj.Y + dy)}
				c.store.ApplyPartial(id, fields)
				actions = append(actions, c.updated(id, fields))
			}
		}
		actions = append(actions, RenderNeeded{})
	}

	return actions
}

// KeyUp handles a key release.
func (c *Core) KeyUp(key Key, _ Modifiers) []Action {
	if key == " " {
		c.ui.SpacePan = false
	}
	return nil
}

// --- Queries ---

// Selection returns the primary selected object, if any.
func (c *Core) Selection() (board.ObjectID, bool) {
	return c.primarySelection()
}

// Selections returns all selected ids in stable order.
func (c *Core) Selections() []board.ObjectID {
	return c.selectedSorted()
}

// CameraState returns the current camera.
func (c *Core) CameraState() Camera {
	return c.camera
}

// ActiveTool returns the current tool.
func (c *Core) ActiveTool() Tool {
	return c.ui.Tool
}

// Marquee returns the live marquee rectangle, if a marquee drag is active.
func (c *Core) Marquee() *SelectionRect {
	return c.ui.Marquee
}

// Object looks up an object by id.
func (c *Core) Object(id board.ObjectID) *board.Object {
	return c.store.Get(id)
}

// ObjectAt returns the topmost object part under a world point.
func (c *Core) ObjectAt(worldPt geom.Point) (Hit, bool) {
	return HitTest(worldPt, c.store, c.camera, c.tuning, c.handleTarget())
}

// ObjectCount returns the number of objects in the document.
func (c *Core) ObjectCount() int {
	return c.store.Len()
}

// ViewportPhysical returns the backing-store size in device pixels, the CSS
// viewport scaled by the device pixel ratio.
func (c *Core) ViewportPhysical() (int, int) {
	return int(c.viewportWidth * c.dpr), int(c.viewportHeight * c.dpr)
}

// =============================================================
// Internals
// =============================================================

func (c *Core) selectDown(worldPt geom.Point, mods Modifiers) []Action {
	var actions []Action
	hit, ok := HitTest(worldPt, c.store, c.camera, c.tuning, c.handleTarget())
	if !ok {
		// Empty press starts a marquee. Without shift it also deselects.
		if !mods.Shift && len(c.ui.SelectedIDs) > 0 {
			clear(c.ui.SelectedIDs)
		}
		c.gesture = marqueeState{anchorWorld: worldPt, lastWorld: worldPt, union: mods.Shift}
		c.updateMarquee(worldPt, worldPt)
		return []Action{RenderNeeded{}}
	}

	switch hit.Part {
	case PartResizeHandle:
		if c.singleSelected(hit.ObjectID) {
			if obj := c.store.Get(hit.ObjectID); obj != nil {
				c.gesture = resizingState{
					id:         hit.ObjectID,
					anchor:     hit.Anchor,
					startWorld: worldPt,
					origX:      obj.X,
					origY:      obj.Y,
					origW:      obj.Width,
					origH:      obj.Height,
				}
			}
		}

	case PartRotateHandle:
		if c.singleSelected(hit.ObjectID) {
			if obj := c.store.Get(hit.ObjectID); obj != nil {
				pivot := obj.Center()
				c.gesture = rotatingState{
					id:           hit.ObjectID,
					pivot:        pivot,
					origRotation: obj.Rotation,
					startAngle:   angleDeg(pivot, worldPt),
					applied:      obj.Rotation,
				}
			}
		}

	case PartEdgeEndpoint:
		clear(c.ui.SelectedIDs)
		c.ui.SelectedIDs[hit.ObjectID] = struct{}{}
		st := endpointDragState{id: hit.ObjectID, end: hit.End}
		if obj := c.store.Get(hit.ObjectID); obj != nil {
			st.orig = obj.Clone().Props[endpointKey(hit.End)]
		}
		c.gesture = st
		actions = append(actions, RenderNeeded{})

	case PartBody, PartEdgeBody:
		if mods.Shift {
			// Shift toggles membership without starting a drag.
			if _, sel := c.ui.SelectedIDs[hit.ObjectID]; sel {
				delete(c.ui.SelectedIDs, hit.ObjectID)
			} else {
				c.ui.SelectedIDs[hit.ObjectID] = struct{}{}
			}
			return append(actions, RenderNeeded{})
		}
		if _, sel := c.ui.SelectedIDs[hit.ObjectID]; !sel {
			clear(c.ui.SelectedIDs)
			c.ui.SelectedIDs[hit.ObjectID] = struct{}{}
		}
		dragIDs := c.selectedSorted()
		duplicated := mods.Alt
		if duplicated {
			dragIDs = c.duplicateObjects(dragIDs)
			clear(c.ui.SelectedIDs)
			for _, id := range dragIDs {
				c.ui.SelectedIDs[id] = struct{}{}
			}
		}
		originals := make([]dragOriginal, 0, len(dragIDs))
		for _, id := range dragIDs {
			if obj := c.store.Get(id); obj != nil {
				originals = append(originals, dragOriginal{id: id, x: obj.X, y: obj.Y})
			}
		}
		if len(originals) > 0 {
			c.gesture = draggingState{
				ids:        dragIDs,
				startWorld: worldPt,
				originals:  originals,
				duplicated: duplicated,
			}
		}
		actions = append(actions, RenderNeeded{})
	}
	return actions
}

func (c *Core) shapeToolDown(worldPt geom.Point) []Action {
	kind, ok := c.ui.Tool.Kind()
	if !ok {
		return nil
	}
	obj := c.defaultObject(kind, worldPt.X, worldPt.Y)
	c.store.Insert(obj)
	clear(c.ui.SelectedIDs)
	c.ui.SelectedIDs[obj.ID] = struct{}{}
	c.gesture = drawingState{id: obj.ID, anchorWorld: worldPt}
	return []Action{RenderNeeded{}}
}

func (c *Core) edgeToolDown(worldPt geom.Point) []Action {
	kind, ok := c.ui.Tool.Kind()
	if !ok {
		return nil
	}
	obj := c.defaultObject(kind, worldPt.X, worldPt.Y)
	obj.Props = map[string]any{
		"a": map[string]any{"x": worldPt.X, "y": worldPt.Y},
		"b": map[string]any{"x": worldPt.X, "y": worldPt.Y},
	}
	c.store.Insert(obj)
	clear(c.ui.SelectedIDs)
	c.ui.SelectedIDs[obj.ID] = struct{}{}
	c.gesture = drawingState{id: obj.ID, anchorWorld: worldPt}
	return []Action{RenderNeeded{}}
}

func (c *Core) drawingMove(id board.ObjectID, anchor, worldPt geom.Point) {
	obj := c.store.Get(id)
	if obj == nil {
		return
	}
	if obj.Kind.IsEdge() {
		c.store.ApplyPartial(id, board.Partial{Props: board.PropsPatch(map[string]any{
			"b": map[string]any{"x": worldPt.X, "y": worldPt.Y},
		})})
		return
	}
	c.store.ApplyPartial(id, board.Partial{
		X:      board.F(math.Min(anchor.X, worldPt.X)),
		Y:      board.F(math.Min(anchor.Y, worldPt.Y)),
		Width:  board.F(math.Abs(worldPt.X - anchor.X)),
		Height: board.F(math.Abs(worldPt.Y - anchor.Y)),
	})
}

// applyResize resizes in the object's local unrotated space centered on the
// original box so handle anchoring stays consistent at any rotation. Each
// edge clamps against its opposite so the box never inverts.
func (c *Core) applyResize(st resizingState, dx, dy, rotation float64) {
	left := -st.origW / 2
	top := -st.origH / 2
	right := st.origW / 2
	bottom := st.origH / 2

	moveTop := func() { top = math.Min(top+dy, bottom) }
	moveBottom := func() { bottom = math.Max(bottom+dy, top) }
	moveLeft := func() { left = math.Min(left+dx, right) }
	moveRight := func() { right = math.Max(right+dx, left) }

	switch st.anchor {
	case AnchorN:
		moveTop()
	case AnchorS:
		moveBottom()
	case AnchorE:
		moveRight()
	case AnchorW:
		moveLeft()
	case AnchorNE:
		moveTop()
		moveRight()
	case AnchorNW:
		moveTop()
		moveLeft()
	case AnchorSE:
		moveBottom()
		moveRight()
	case AnchorSW:
		moveBottom()
		moveLeft()
	}

	w := right - left
	h := bottom - top
	origCenter := geom.Pt(st.origX+st.origW/2, st.origY+st.origH/2)
	localCenter := geom.Pt(origCenter.X+(left+right)/2, origCenter.Y+(top+bottom)/2)
	worldCenter := geom.RotatePoint(localCenter, origCenter, rotation)

	c.store.ApplyPartial(st.id, board.Partial{
		X:      board.F(worldCenter.X - w/2),
		Y:      board.F(worldCenter.Y - h/2),
		Width:  board.F(w),
		Height: board.F(h),
	})
}

// cancelGesture aborts the in-flight gesture and reverts any provisional
// document state it introduced.
func (c *Core) cancelGesture() {
	switch st := c.gesture.(type) {
	case draggingState:
		for _, orig := range st.originals {
			c.store.ApplyPartial(orig.id, board.Partial{X: board.F(orig.x), Y: board.F(orig.y)})
		}
		if st.duplicated {
			for _, id := range st.ids {
				c.store.Remove(id)
				delete(c.ui.SelectedIDs, id)
			}
		}

	case drawingState:
		c.store.Remove(st.id)
		delete(c.ui.SelectedIDs, st.id)

	case resizingState:
		c.store.ApplyPartial(st.id, board.Partial{
			X:      board.F(st.origX),
			Y:      board.F(st.origY),
			Width:  board.F(st.origW),
			Height: board.F(st.origH),
		})

	case rotatingState:
		applied := normalizeAngleDelta(st.applied - st.origRotation)
		if obj := c.store.Get(st.id); obj != nil && obj.Kind == board.KindFrame && applied != 0 {
			c.rotateChildrenAroundPivot(c.frameChildren(obj), st.pivot, -applied)
		}
		c.store.ApplyPartial(st.id, board.Partial{Rotation: board.F(st.origRotation)})

	case endpointDragState:
		if st.orig != nil {
			c.store.ApplyPartial(st.id, board.Partial{Props: board.PropsPatch(map[string]any{
				endpointKey(st.end): st.orig,
			})})
		}
	}
	c.gesture = idleState{}
	c.ui.Marquee = nil
}

// gestureTargets reports whether the in-flight gesture manipulates id.
func (c *Core) gestureTargets(id board.ObjectID) bool {
	switch st := c.gesture.(type) {
	case draggingState:
		for _, dragID := range st.ids {
			if dragID == id {
				return true
			}
		}
	case drawingState:
		return st.id == id
	case resizingState:
		return st.id == id
	case rotatingState:
		return st.id == id
	case endpointDragState:
		return st.id == id
	}
	return false
}

func (c *Core) frameChildren(frame *board.Object) []board.ObjectID {
	var children []board.ObjectID
	for _, obj := range c.store.SortedObjects() {
		if obj.ID == frame.ID || obj.Kind.IsEdge() {
			continue
		}
		center := obj.Center()
		local := geom.RotatePoint(center, frame.Center(), -frame.Rotation)
		if local.X >= frame.X && local.X <= frame.X+frame.Width &&
			local.Y >= frame.Y && local.Y <= frame.Y+frame.Height {
			children = append(children, obj.ID)
		}
	}
	return children
}

func (c *Core) rotateChildrenAroundPivot(childIDs []board.ObjectID, pivot geom.Point, deltaDeg float64) {
	for _, id := range childIDs {
		child := c.store.Get(id)
		if child == nil {
			continue
		}
		rotatedCenter := geom.RotatePoint(child.Center(), pivot, deltaDeg)
		c.store.ApplyPartial(id, board.Partial{
			X:        board.F(rotatedCenter.X - child.Width/2),
			Y:        board.F(rotatedCenter.Y - child.Height/2),
			Rotation: board.F(child.Rotation + deltaDeg),
		})
	}
}

func (c *Core) defaultObject(kind board.Kind, x, y float64) board.Object {
	var props map[string]any
	if kind == board.KindText {
		props = map[string]any{"text": "Text"}
	} else {
		props = map[string]any{
			"fill":        board.DefaultFill,
			"stroke":      board.DefaultStroke,
			"strokeWidth": 0.0,
		}
	}
	return board.Object{
		ID:      uuid.New(),
		BoardID: c.boardID,
		Kind:    kind,
		X:       x,
		Y:       y,
		ZIndex:  c.nextZIndex(),
		Props:   props,
		Version: 1,
	}
}

func (c *Core) nextZIndex() int64 {
	if c.store.Len() == 0 {
		return 0
	}
	return c.store.MaxZIndex() + 1
}

func (c *Core) duplicateObjects(ids []board.ObjectID) []board.ObjectID {
	duplicated := make([]board.ObjectID, 0, len(ids))
	for _, id := range ids {
		obj := c.store.Get(id)
		if obj == nil {
			continue
		}
		dup := obj.Clone()
		dup.ID = uuid.New()
		dup.ZIndex = c.nextZIndex()
		dup.Version = 1
		c.store.Insert(dup)
		duplicated = append(duplicated, dup.ID)
	}
	return duplicated
}

func (c *Core) updateMarquee(anchor, current geom.Point) {
	c.ui.Marquee = &SelectionRect{
		X:      math.Min(anchor.X, current.X),
		Y:      math.Min(anchor.Y, current.Y),
		Width:  math.Abs(current.X - anchor.X),
		Height: math.Abs(current.Y - anchor.Y),
	}
}

func (c *Core) selectByMarquee(anchor, current geom.Point, union bool) {
	w := math.Abs(current.X - anchor.X)
	h := math.Abs(current.Y - anchor.Y)
	if w <= 0 || h <= 0 {
		return
	}
	query := geom.Bounds{
		MinX: math.Min(anchor.X, current.X),
		MinY: math.Min(anchor.Y, current.Y),
	}
	query.MaxX = query.MinX + w
	query.MaxY = query.MinY + h

	if !union {
		clear(c.ui.SelectedIDs)
	}
	for _, obj := range c.store.SortedObjectsInBounds(query) {
		c.ui.SelectedIDs[obj.ID] = struct{}{}
	}
}

// handleTarget returns the object whose handles the hit-tester should offer:
// only a single selection gets handles.
func (c *Core) handleTarget() *board.ObjectID {
	if len(c.ui.SelectedIDs) != 1 {
		return nil
	}
	for id := range c.ui.SelectedIDs {
		target := id
		return &target
	}
	return nil
}

func (c *Core) singleSelected(id board.ObjectID) bool {
	if len(c.ui.SelectedIDs) != 1 {
		return false
	}
	_, ok := c.ui.SelectedIDs[id]
	return ok
}

func (c *Core) primarySelection() (board.ObjectID, bool) {
	ids := c.selectedSorted()
	if len(ids) == 0 {
		return board.ObjectID{}, false
	}
	return ids[0], true
}

func (c *Core) selectedSorted() []board.ObjectID {
	ids := make([]board.ObjectID, 0, len(c.ui.SelectedIDs))
	for id := range c.ui.SelectedIDs {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && bytes.Compare(ids[j][:], ids[j-1][:]) < 0; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

func (c *Core) viewportCenter() geom.Point {
	return geom.Pt(c.viewportWidth/2, c.viewportHeight/2)
}

func (c *Core) screenToWorld(p geom.Point) geom.Point {
	return c.camera.ScreenToWorld(p, c.viewportCenter())
}

func (c *Core) updated(id board.ObjectID, fields board.Partial) ObjectUpdated {
	return ObjectUpdated{OpID: typeid.NewOpID(), ID: id, Fields: fields}
}

func endpointKey(end EdgeEnd) string {
	if end == EdgeEndA {
		return "a"
	}
	return "b"
}

func angleDeg(from, to geom.Point) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X) * 180 / math.Pi
}

// normalizeAngleDelta maps a degree delta into [-180, 180).
func normalizeAngleDelta(delta float64) float64 {
	d := math.Mod(delta+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
