// Package session is the host boundary around the interaction engine. The
// engine core is single-threaded by contract; Session serializes every
// caller behind one lock so local input handlers and remote delta appliers
// never interleave mid-gesture.
package session

import (
	"log/slog"
	"sync"

	"github.com/inkboard/inkboard/engine-go/internal/board"
	"github.com/inkboard/inkboard/engine-go/internal/config"
	"github.com/inkboard/inkboard/engine-go/internal/engine"
	"github.com/inkboard/inkboard/engine-go/internal/geom"
	"github.com/inkboard/inkboard/engine-go/internal/typeid"
)

// ActionSink receives the intents a call produced, in order, while the
// session lock is still held. A nil sink drops them; callers can also use
// the returned slice.
type ActionSink func(actions []engine.Action)

type Session struct {
	mu   sync.Mutex
	core *engine.Core
	sink ActionSink

	sessionID string
	clientID  string
}

// New creates a session around a fresh engine. A nil tuning uses defaults.
func New(tuning *config.Tuning, sink ActionSink) *Session {
	s := &Session{
		core:      engine.NewCore(tuning),
		sink:      sink,
		sessionID: typeid.NewSessionID(),
		clientID:  typeid.NewClientID(),
	}
	slog.Info("session started", "session", s.sessionID, "client", s.clientID)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.sessionID }

// ClientID returns the client identifier stamped on outgoing intents.
func (s *Session) ClientID() string { return s.clientID }

// SetBoardID sets the board new objects are created against.
func (s *Session) SetBoardID(id board.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.core.SetBoardID(id)
}

// --- Remote deltas ---

func (s *Session) LoadSnapshot(objects []board.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.core.LoadSnapshot(objects)
	slog.Info("snapshot loaded", "session", s.sessionID, "objects", len(objects))
}

func (s *Session) ApplyCreate(obj board.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.core.ApplyCreate(obj)
}

func (s *Session) ApplyUpdate(id board.ObjectID, fields board.Partial) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.core.ApplyUpdate(id, fields)
}

func (s *Session) ApplyDelete(id board.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.core.ApplyDelete(id)
}

// --- Local input ---

func (s *Session) PointerDown(screenPt geom.Point, button engine.Button, mods engine.Modifiers) []engine.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatch(s.core.PointerDown(screenPt, button, mods))
}

func (s *Session) PointerMove(screenPt geom.Point, mods engine.Modifiers) []engine.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatch(s.core.PointerMove(screenPt, mods))
}

func (s *Session) PointerUp(screenPt geom.Point, button engine.Button, mods engine.Modifiers) []engine.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatch(s.core.PointerUp(screenPt, button, mods))
}

func (s *Session) PointerCancel() []engine.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatch(s.core.PointerCancel())
}

func (s *Session) Wheel(screenPt geom.Point, delta engine.WheelDelta, mods engine.Modifiers) []engine.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatch(s.core.Wheel(screenPt, delta, mods))
}

func (s *Session) KeyDown(key engine.Key, mods engine.Modifiers) []engine.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatch(s.core.KeyDown(key, mods))
}

func (s *Session) KeyUp(key engine.Key, mods engine.Modifiers) []engine.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatch(s.core.KeyUp(key, mods))
}

func (s *Session) SetTool(tool engine.Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.core.SetTool(tool)
}

func (s *Session) SetText(id board.ObjectID, head, text, foot string) []engine.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatch(s.core.SetText(id, head, text, foot))
}

func (s *Session) SetViewport(widthCSS, heightCSS, dpr float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.core.SetViewport(widthCSS, heightCSS, dpr)
}

func (s *Session) SetViewRotation(deg float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.core.SetViewRotationDeg(deg)
}

// --- Queries ---

func (s *Session) Selections() []board.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.Selections()
}

func (s *Session) CameraState() engine.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.CameraState()
}

func (s *Session) ActiveTool() engine.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.ActiveTool()
}

func (s *Session) Marquee() *engine.SelectionRect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.Marquee()
}

func (s *Session) Object(id board.ObjectID) *board.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj := s.core.Object(id); obj != nil {
		clone := obj.Clone()
		return &clone
	}
	return nil
}

func (s *Session) ObjectAt(worldPt geom.Point) (engine.Hit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.ObjectAt(worldPt)
}

func (s *Session) ObjectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.ObjectCount()
}

// ViewportPhysical returns the render surface size in device pixels.
func (s *Session) ViewportPhysical() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.ViewportPhysical()
}

// dispatch logs mutation intents, hands the batch to the sink, and passes
// it through to the caller. Called with the lock held.
func (s *Session) dispatch(actions []engine.Action) []engine.Action {
	for _, a := range actions {
		switch act := a.(type) {
		case engine.ObjectCreated:
			slog.Info("object created", "session", s.sessionID, "op", act.OpID, "object", act.Object.ID)
		case engine.ObjectUpdated:
			slog.Info("object updated", "session", s.sessionID, "op", act.OpID, "object", act.ID)
		case engine.ObjectDeleted:
			slog.Info("object deleted", "session", s.sessionID, "op", act.OpID, "object", act.ID)
		}
	}
	if s.sink != nil && len(actions) > 0 {
		s.sink(actions)
	}
	return actions
}
