package canvas

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/dmfenton/Sketchpad-sub000/internal/actor"
	"github.com/dmfenton/Sketchpad-sub000/internal/protocol"
)

// Events (observations routed from the server or emitted by runtimes).

type evConnected struct {
	actor.InputBase
}

type evDisconnected struct {
	actor.InputBase
	Reason string
}

type evInit struct {
	actor.InputBase
	Strokes    []protocol.Stroke
	Gallery    []protocol.GalleryPiece
	Status     string
	Paused     bool
	PieceCount int
	Monologue  string
	NowMs      int64
}

type evPen struct {
	actor.InputBase
	Point protocol.Point
	Down  bool
}

type evPendingBatch struct {
	actor.InputBase
	BatchID string
	Strokes []protocol.Stroke
}

type evInlineStroke struct {
	actor.InputBase
	Stroke protocol.Stroke
}

type evThinkingDelta struct {
	actor.InputBase
	Text string
}

type evThinking struct {
	actor.InputBase
	Text  string
	NowMs int64
}

type evStatus struct {
	actor.InputBase
	Status string
	NowMs  int64
}

type evIteration struct {
	actor.InputBase
	Iteration int
	NowMs     int64
}

type evCodeExecution struct {
	actor.InputBase
	Phase    string
	Tool     string
	Input    json.RawMessage
	Stdout   string
	Stderr   string
	ExitCode int
	NowMs    int64
}

type evError struct {
	actor.InputBase
	Text  string
	NowMs int64
}

type evPieceComplete struct {
	actor.InputBase
	Title string
	NowMs int64
}

type evClear struct {
	actor.InputBase
}

type evNewCanvas struct {
	actor.InputBase
}

type evGalleryUpdate struct {
	actor.InputBase
	Gallery []protocol.GalleryPiece
}

type evLoadCanvas struct {
	actor.InputBase
	Strokes []protocol.Stroke
}

type evPieceCount struct {
	actor.InputBase
	Count int
}

// Performer feedback events.

type evAgentStrokeDone struct {
	actor.InputBase
	Stroke protocol.Stroke
}

type evBatchAnimated struct {
	actor.InputBase
	BatchID string
}

type evBatchAbandoned struct {
	actor.InputBase
	BatchID string
}

// NewConnectedEvent marks the transport open.
func NewConnectedEvent() actor.Input { return evConnected{} }

// NewDisconnectedEvent marks the transport closed.
func NewDisconnectedEvent(reason string) actor.Input { return evDisconnected{Reason: reason} }

// NewPenEvent reports a pen frame. Both server pen events and local
// playback frames funnel through this input so they render identically.
func NewPenEvent(p protocol.Point, down bool) actor.Input { return evPen{Point: p, Down: down} }

// NewAgentStrokeDoneEvent reports a fully animated agent stroke, appended
// to the completed-strokes list in playback order.
func NewAgentStrokeDoneEvent(s protocol.Stroke) actor.Input { return evAgentStrokeDone{Stroke: s} }

// NewBatchAnimatedEvent reports that a batch finished animating; the
// reducer emits the animation_done acknowledgement.
func NewBatchAnimatedEvent(batchID string) actor.Input { return evBatchAnimated{BatchID: batchID} }

// NewBatchAbandonedEvent reports a batch dropped before completion. The
// pending marker goes away but no acknowledgement is sent; the server
// redelivers the batch on the next connection.
func NewBatchAbandonedEvent(batchID string) actor.Input { return evBatchAbandoned{BatchID: batchID} }

// Commands (user gestures and view lifecycle).

type cmdSubmitStroke struct {
	actor.InputBase
	Stroke protocol.Stroke
}

type cmdTogglePause struct {
	actor.InputBase
}

type cmdNudge struct {
	actor.InputBase
	Text string
}

type cmdClearCanvas struct {
	actor.InputBase
}

type cmdRequestNewCanvas struct {
	actor.InputBase
	Direction string
	Style     string
}

type cmdSetStyle struct {
	actor.InputBase
	Style string
}

type cmdLoadCanvas struct {
	actor.InputBase
	CanvasID string
}

type cmdEnterStudio struct {
	actor.InputBase
}

type cmdLeaveStudio struct {
	actor.InputBase
}

// NewSubmitStrokeCommand wraps a completed pointer-down/up cycle. The
// stroke gets a local id so the server can de-duplicate resends.
func NewSubmitStrokeCommand(points []protocol.Point, brush string) actor.Input {
	return cmdSubmitStroke{Stroke: protocol.Stroke{
		ID:     uuid.NewString(),
		Type:   "path",
		Points: points,
		Brush:  brush,
	}}
}

// NewTogglePauseCommand flips the pause flag optimistically and sends the
// matching pause/resume message.
func NewTogglePauseCommand() actor.Input { return cmdTogglePause{} }

// NewNudgeCommand sends a freeform prompt to the agent.
func NewNudgeCommand(text string) actor.Input { return cmdNudge{Text: text} }

// NewClearCanvasCommand clears locally and asks the server to clear.
func NewClearCanvasCommand() actor.Input { return cmdClearCanvas{} }

// NewRequestNewCanvasCommand asks for a fresh canvas.
func NewRequestNewCanvasCommand(direction, style string) actor.Input {
	return cmdRequestNewCanvas{Direction: direction, Style: style}
}

// NewSetStyleCommand changes the agent's drawing style.
func NewSetStyleCommand(style string) actor.Input { return cmdSetStyle{Style: style} }

// NewLoadCanvasCommand restores a gallery piece onto the canvas.
func NewLoadCanvasCommand(canvasID string) actor.Input { return cmdLoadCanvas{CanvasID: canvasID} }

// NewEnterStudioCommand opens the render gate for the studio view.
func NewEnterStudioCommand() actor.Input { return cmdEnterStudio{} }

// NewLeaveStudioCommand pauses the agent optimistically before any server
// acknowledgement and closes the render gate.
func NewLeaveStudioCommand() actor.Input { return cmdLeaveStudio{} }
