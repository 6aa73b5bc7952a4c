package engine

import (
	"github.com/inkboard/inkboard/engine-go/internal/board"
)

// Action is an outbound intent for the host to process. Mutation intents
// (create/update/delete) carry an operation ID so the host's sync layer can
// correlate acks and rebroadcasts.
type Action interface {
	isAction()
}

// ObjectCreated reports a finalized new object to persist and broadcast.
type ObjectCreated struct {
	OpID   string       `json:"opId"`
	Object board.Object `json:"object"`
}

// ObjectUpdated reports a local mutation; Fields holds only what changed.
type ObjectUpdated struct {
	OpID   string         `json:"opId"`
	ID     board.ObjectID `json:"id"`
	Fields board.Partial  `json:"fields"`
}

// ObjectDeleted reports a local deletion to broadcast.
type ObjectDeleted struct {
	OpID string         `json:"opId"`
	ID   board.ObjectID `json:"id"`
}

// EditTextRequested asks the host to open its text editing overlay.
type EditTextRequested struct {
	ID   board.ObjectID `json:"id"`
	Head string         `json:"head"`
	Text string         `json:"text"`
	Foot string         `json:"foot"`
}

// SetCursor asks the host to change the CSS cursor.
type SetCursor struct {
	Cursor string `json:"cursor"`
}

// RenderNeeded tells the host the scene changed and needs a redraw.
type RenderNeeded struct{}

func (ObjectCreated) isAction()     {}
func (ObjectUpdated) isAction()     {}
func (ObjectDeleted) isAction()     {}
func (EditTextRequested) isAction() {}
func (SetCursor) isAction()         {}
func (RenderNeeded) isAction()      {}
