//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/google/uuid"

	"github.com/inkboard/inkboard/engine-go/internal/board"
	"github.com/inkboard/inkboard/engine-go/internal/engine"
	"github.com/inkboard/inkboard/engine-go/internal/geom"
	"github.com/inkboard/inkboard/engine-go/internal/session"
)

var sess *session.Session

func main() {
	sess = session.New(nil, nil)

	// Create the engine API object
	boardEngine := js.Global().Get("Object").New()

	// --- Remote deltas (server → engine) ---
	boardEngine.Set("loadSnapshot", js.FuncOf(loadSnapshot))
	boardEngine.Set("applyCreate", js.FuncOf(applyCreate))
	boardEngine.Set("applyUpdate", js.FuncOf(applyUpdate))
	boardEngine.Set("applyDelete", js.FuncOf(applyDelete))

	// --- Local input (page → engine) ---
	boardEngine.Set("pointerDown", js.FuncOf(pointerDown))
	boardEngine.Set("pointerMove", js.FuncOf(pointerMove))
	boardEngine.Set("pointerUp", js.FuncOf(pointerUp))
	boardEngine.Set("pointerCancel", js.FuncOf(pointerCancel))
	boardEngine.Set("wheel", js.FuncOf(wheel))
	boardEngine.Set("keyDown", js.FuncOf(keyDown))
	boardEngine.Set("keyUp", js.FuncOf(keyUp))
	boardEngine.Set("setTool", js.FuncOf(setTool))
	boardEngine.Set("setText", js.FuncOf(setText))
	boardEngine.Set("setViewport", js.FuncOf(setViewport))
	boardEngine.Set("setViewRotation", js.FuncOf(setViewRotation))
	boardEngine.Set("setBoardId", js.FuncOf(setBoardID))

	// --- Queries (page ← engine) ---
	boardEngine.Set("getSelection", js.FuncOf(getSelection))
	boardEngine.Set("getCamera", js.FuncOf(getCamera))
	boardEngine.Set("getActiveTool", js.FuncOf(getActiveTool))
	boardEngine.Set("getMarquee", js.FuncOf(getMarquee))
	boardEngine.Set("objectAt", js.FuncOf(objectAt))
	boardEngine.Set("getObjectCount", js.FuncOf(getObjectCount))
	boardEngine.Set("getPhysicalSize", js.FuncOf(getPhysicalSize))

	// Register on global scope
	js.Global().Set("boardEngine", boardEngine)

	// Signal that WASM is ready
	js.Global().Set("boardWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// actionEnvelope tags an intent with its type for the page-side dispatcher.
type actionEnvelope struct {
	Type   string        `json:"type"`
	Action engine.Action `json:"action"`
}

func actionsJSON(actions []engine.Action) string {
	envelopes := make([]actionEnvelope, 0, len(actions))
	for _, a := range actions {
		var kind string
		switch a.(type) {
		case engine.ObjectCreated:
			kind = "objectCreated"
		case engine.ObjectUpdated:
			kind = "objectUpdated"
		case engine.ObjectDeleted:
			kind = "objectDeleted"
		case engine.EditTextRequested:
			kind = "editTextRequested"
		case engine.SetCursor:
			kind = "setCursor"
		case engine.RenderNeeded:
			kind = "renderNeeded"
		default:
			continue
		}
		envelopes = append(envelopes, actionEnvelope{Type: kind, Action: a})
	}
	out, err := json.Marshal(envelopes)
	if err != nil {
		return "[]"
	}
	return string(out)
}

func parseMods(v js.Value) engine.Modifiers {
	var mods engine.Modifiers
	if v.Type() == js.TypeString {
		_ = json.Unmarshal([]byte(v.String()), &mods)
	}
	return mods
}

func parseID(v js.Value) (board.ObjectID, bool) {
	id, err := uuid.Parse(v.String())
	if err != nil {
		return board.ObjectID{}, false
	}
	return id, true
}

// --- Remote delta handlers ---

func loadSnapshot(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing snapshot JSON"})
	}
	var objects []board.Object
	if err := json.Unmarshal([]byte(args[0].String()), &objects); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	sess.LoadSnapshot(objects)
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func applyCreate(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing object JSON"})
	}
	var obj board.Object
	if err := json.Unmarshal([]byte(args[0].String()), &obj); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	sess.ApplyCreate(obj)
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func applyUpdate(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "missing id or fields"})
	}
	id, ok := parseID(args[0])
	if !ok {
		return js.ValueOf(map[string]interface{}{"error": "invalid object id"})
	}
	var fields board.Partial
	if err := json.Unmarshal([]byte(args[1].String()), &fields); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	sess.ApplyUpdate(id, fields)
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func applyDelete(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing id"})
	}
	id, ok := parseID(args[0])
	if !ok {
		return js.ValueOf(map[string]interface{}{"error": "invalid object id"})
	}
	sess.ApplyDelete(id)
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Input handlers ---

func parseButton(v js.Value) engine.Button {
	switch v.Int() {
	case 1:
		return engine.ButtonMiddle
	case 2:
		return engine.ButtonSecondary
	}
	return engine.ButtonPrimary
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return js.ValueOf("[]")
	}
	pt := geom.Pt(args[0].Float(), args[1].Float())
	actions := sess.PointerDown(pt, parseButton(args[2]), parseMods(args[3]))
	return js.ValueOf(actionsJSON(actions))
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf("[]")
	}
	pt := geom.Pt(args[0].Float(), args[1].Float())
	actions := sess.PointerMove(pt, parseMods(args[2]))
	return js.ValueOf(actionsJSON(actions))
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return js.ValueOf("[]")
	}
	pt := geom.Pt(args[0].Float(), args[1].Float())
	actions := sess.PointerUp(pt, parseButton(args[2]), parseMods(args[3]))
	return js.ValueOf(actionsJSON(actions))
}

func pointerCancel(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(actionsJSON(sess.PointerCancel()))
}

func wheel(this js.Value, args []js.Value) interface{} {
	if len(args) < 5 {
		return js.ValueOf("[]")
	}
	pt := geom.Pt(args[0].Float(), args[1].Float())
	delta := engine.WheelDelta{DX: args[2].Float(), DY: args[3].Float()}
	actions := sess.Wheel(pt, delta, parseMods(args[4]))
	return js.ValueOf(actionsJSON(actions))
}

func keyDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("[]")
	}
	actions := sess.KeyDown(engine.Key(args[0].String()), parseMods(args[1]))
	return js.ValueOf(actionsJSON(actions))
}

func keyUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("[]")
	}
	actions := sess.KeyUp(engine.Key(args[0].String()), parseMods(args[1]))
	return js.ValueOf(actionsJSON(actions))
}

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sess.SetTool(engine.Tool(args[0].String()))
	return nil
}

func setText(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return js.ValueOf("[]")
	}
	id, ok := parseID(args[0])
	if !ok {
		return js.ValueOf("[]")
	}
	actions := sess.SetText(id, args[1].String(), args[2].String(), args[3].String())
	return js.ValueOf(actionsJSON(actions))
}

func setViewport(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	sess.SetViewport(args[0].Float(), args[1].Float(), args[2].Float())
	return nil
}

func setViewRotation(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sess.SetViewRotation(args[0].Float())
	return nil
}

func setBoardID(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	if id, ok := parseID(args[0]); ok {
		sess.SetBoardID(id)
	}
	return nil
}

// --- Query handlers ---

func getSelection(this js.Value, args []js.Value) interface{} {
	ids := sess.Selections()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	data, _ := json.Marshal(out)
	return js.ValueOf(string(data))
}

func getCamera(this js.Value, args []js.Value) interface{} {
	data, _ := json.Marshal(sess.CameraState())
	return js.ValueOf(string(data))
}

func getActiveTool(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(string(sess.ActiveTool()))
}

func getMarquee(this js.Value, args []js.Value) interface{} {
	m := sess.Marquee()
	if m == nil {
		return js.ValueOf("null")
	}
	data, _ := json.Marshal(m)
	return js.ValueOf(string(data))
}

func objectAt(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("null")
	}
	hit, ok := sess.ObjectAt(geom.Pt(args[0].Float(), args[1].Float()))
	if !ok {
		return js.ValueOf("null")
	}
	data, _ := json.Marshal(hit)
	return js.ValueOf(string(data))
}

func getObjectCount(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(sess.ObjectCount())
}

func getPhysicalSize(this js.Value, args []js.Value) interface{} {
	w, h := sess.ViewportPhysical()
	return js.ValueOf(map[string]interface{}{"width": w, "height": h})
}
