package session

import (
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/inkboard/inkboard/engine-go/internal/board"
	"github.com/inkboard/inkboard/engine-go/internal/engine"
	"github.com/inkboard/inkboard/engine-go/internal/geom"
)

func TestSessionIDs(t *testing.T) {
	s := New(nil, nil)
	if !strings.HasPrefix(s.ID(), "sess_") {
		t.Errorf("session id = %q", s.ID())
	}
	if !strings.HasPrefix(s.ClientID(), "client_") {
		t.Errorf("client id = %q", s.ClientID())
	}
}

func TestSinkReceivesIntents(t *testing.T) {
	var got []engine.Action
	s := New(nil, func(actions []engine.Action) {
		got = append(got, actions...)
	})
	s.SetViewport(800, 600, 1)

	s.SetTool(engine.ToolRect)
	s.PointerDown(geom.Pt(10, 10), engine.ButtonPrimary, engine.Modifiers{})
	s.PointerMove(geom.Pt(100, 100), engine.Modifiers{})
	s.PointerUp(geom.Pt(100, 100), engine.ButtonPrimary, engine.Modifiers{})

	created := false
	for _, a := range got {
		if _, ok := a.(engine.ObjectCreated); ok {
			created = true
		}
	}
	if !created {
		t.Fatal("sink should have received the ObjectCreated intent")
	}
}

func TestNilSinkStillReturnsActions(t *testing.T) {
	s := New(nil, nil)
	s.SetViewport(800, 600, 1)
	actions := s.Wheel(geom.Pt(0, 0), engine.WheelDelta{DY: 10}, engine.Modifiers{})
	if len(actions) == 0 {
		t.Fatal("wheel should return actions even without a sink")
	}
}

func TestObjectReturnsCopy(t *testing.T) {
	s := New(nil, nil)
	obj := board.Object{
		ID: uuid.New(), Kind: board.KindRect,
		Width: 100, Height: 80, Version: 1,
		Props: map[string]any{"fill": "#111111"},
	}
	s.ApplyCreate(obj)

	got := s.Object(obj.ID)
	got.X = 999
	got.Props["fill"] = "#222222"

	again := s.Object(obj.ID)
	if again.X != 0 || again.Props["fill"] != "#111111" {
		t.Fatal("mutating a returned object must not touch the document")
	}
}

func TestConcurrentCallersDoNotRace(t *testing.T) {
	s := New(nil, nil)
	s.SetViewport(800, 600, 1)
	obj := board.Object{ID: uuid.New(), Kind: board.KindRect, Width: 100, Height: 80, Version: 1}
	s.ApplyCreate(obj)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				switch g {
				case 0:
					s.PointerDown(geom.Pt(50, 40), engine.ButtonPrimary, engine.Modifiers{})
					s.PointerMove(geom.Pt(60, 40), engine.Modifiers{})
					s.PointerUp(geom.Pt(60, 40), engine.ButtonPrimary, engine.Modifiers{})
				case 1:
					s.ApplyUpdate(obj.ID, board.Partial{X: board.F(float64(i))})
				case 2:
					s.Selections()
					s.CameraState()
				case 3:
					s.Wheel(geom.Pt(100, 100), engine.WheelDelta{DY: 1}, engine.Modifiers{})
				}
			}
		}(g)
	}
	wg.Wait()

	if s.ObjectCount() != 1 {
		t.Fatalf("object count = %d", s.ObjectCount())
	}
}
