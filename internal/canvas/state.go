// Package canvas holds the client's authoritative view model and the pure
// reducer that folds the inbound event stream into it.
//
// The state is owned by a single actor loop. Completed strokes and agent
// messages are append-only; the live message and performance fields are
// ephemeral and reset at turn boundaries.
package canvas

import (
	"encoding/json"
	"fmt"

	"github.com/dmfenton/Sketchpad-sub000/internal/protocol"
)

// Agent status values reported by the server.
const (
	StatusIdle     = "idle"
	StatusThinking = "thinking"
	StatusDrawing  = "drawing"
	StatusPaused   = "paused"
)

// LiveMessageID is the sentinel id reserved for the in-progress thought
// stream. Exactly one live message exists at a time.
const LiveMessageID = "live"

// MessageKind discriminates agent history entries.
type MessageKind string

const (
	KindThinking      MessageKind = "thinking"
	KindCodeExecution MessageKind = "code_execution"
	KindError         MessageKind = "error"
	KindIteration     MessageKind = "iteration"
	KindPieceComplete MessageKind = "piece_complete"
)

// Message is one immutable agent history entry. Entries are ordered by
// arrival and never reordered or deleted except by an explicit clear.
type Message struct {
	ID   string
	Kind MessageKind
	Text string

	// code_execution fields.
	Tool     string
	Label    string
	Running  bool
	Stdout   string
	Stderr   string
	ExitCode int

	// iteration / piece_complete fields.
	Iteration int
	Title     string

	CreatedAt int64
}

// IDGen issues history entry ids. It is a value threaded through the
// state so id generation stays inside the reducer's ownership, not a
// package-level counter.
type IDGen struct {
	Seq int64
}

// Next returns the advanced generator and a fresh id.
func (g IDGen) Next(nowMs int64) (IDGen, string) {
	g.Seq++
	return g, fmt.Sprintf("msg-%d-%d", nowMs, g.Seq)
}

// PerformanceState is the derived animation state. It is reset wholesale
// on pause teardown, clear, and new_canvas.
type PerformanceState struct {
	// AgentStrokePoints accumulates the live in-progress point stream for
	// the stroke the agent is currently drawing.
	AgentStrokePoints        []protocol.Point
	AgentStrokeStyleOverride json.RawMessage

	PenPosition protocol.Point
	PenDown     bool
	StrokeIndex int

	// PendingBatchIDs mirrors the performer's FIFO queue for display. The
	// performer owns playback detail; the store only tracks which batches
	// are still pending.
	PendingBatchIDs []string
}

// State is the full client view model.
type State struct {
	Connected bool
	LastError string

	Strokes  []protocol.Stroke
	Messages []Message

	// Live message buffer: mutable until finalized into Messages.
	LiveText   string
	LiveActive bool

	// CurrentThinking is the legacy scalar mirror of the newest thinking
	// text, kept for backward display compatibility.
	CurrentThinking string

	Status      string
	Paused      bool
	InStudio    bool
	ToolRunning bool

	Gallery    []protocol.GalleryPiece
	PieceCount int

	// Per-turn counters, reset at each turn boundary.
	Iteration int
	ToolCalls int

	Perf PerformanceState
	IDs  IDGen
}

// NewState returns the initial state for a studio session.
func NewState() State {
	return State{Status: StatusIdle, InStudio: true}
}

// RenderGateOpen reports whether stroke playback may advance. Thinking
// alone does not close the gate; pause, leaving the studio, and a running
// tool call do.
func (s State) RenderGateOpen() bool {
	return !s.Paused && s.InStudio && !s.ToolRunning
}

// finalizeLive converts the live message into an immutable history entry.
// Finalizing an inactive or empty live message is a no-op, which makes the
// operation idempotent.
func finalizeLive(state State, nowMs int64) State {
	if !state.LiveActive {
		return state
	}
	if state.LiveText != "" {
		ids, id := state.IDs.Next(nowMs)
		state.IDs = ids
		state.Messages = appendMessage(state.Messages, Message{
			ID:        id,
			Kind:      KindThinking,
			Text:      state.LiveText,
			CreatedAt: nowMs,
		})
	}
	state.LiveText = ""
	state.LiveActive = false
	return state
}

// appendMessage appends without aliasing the previous snapshot's backing
// array, so prior states observed by hooks stay stable.
func appendMessage(msgs []Message, m Message) []Message {
	out := make([]Message, len(msgs), len(msgs)+1)
	copy(out, msgs)
	return append(out, m)
}

func appendStroke(strokes []protocol.Stroke, s protocol.Stroke) []protocol.Stroke {
	out := make([]protocol.Stroke, len(strokes), len(strokes)+1)
	copy(out, strokes)
	return append(out, s)
}

func removeBatchID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
