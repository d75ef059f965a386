// Package protocol defines the wire types exchanged with the Sketchpad
// server over the updates socket, plus the REST payloads that hydrate
// pending stroke batches.
//
// Every socket frame is a flat JSON object with a "type" discriminator.
// Unknown or malformed frames are a decode error; the transport logs and
// drops them so a bad frame can never reach the reducer.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Canvas logical size. Screen coordinates map onto this space by a pure
// affine scale, so stroke geometry is device independent.
const (
	CanvasWidth  = 1000.0
	CanvasHeight = 1000.0
)

// Point is a canvas-space coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one drawn path. Once appended to the completed-strokes list it
// is never mutated; only clear/new_canvas destroys it.
type Stroke struct {
	ID            string          `json:"id,omitempty"`
	Type          string          `json:"type"`
	Points        []Point         `json:"points"`
	Brush         string          `json:"brush,omitempty"`
	StyleOverride json.RawMessage `json:"styleOverride,omitempty"`
}

// GalleryPiece is one finished artwork in the gallery listing.
type GalleryPiece struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

// Server event type tags.
const (
	TypeInit           = "init"
	TypePen            = "pen"
	TypeStrokeComplete = "stroke_complete"
	TypeThinking       = "thinking"
	TypeThinkingDelta  = "thinking_delta"
	TypeStatus         = "status"
	TypeIteration      = "iteration"
	TypeCodeExecution  = "code_execution"
	TypeError          = "error"
	TypePieceComplete  = "piece_complete"
	TypeClear          = "clear"
	TypeNewCanvas      = "new_canvas"
	TypeGalleryUpdate  = "gallery_update"
	TypeLoadCanvas     = "load_canvas"
	TypePieceCount     = "piece_count"
)

// Code execution phases carried by code_execution events.
const (
	PhaseStarted   = "started"
	PhaseCompleted = "completed"
)

// ServerEvent is the decoded form of one inbound frame. Only the fields
// relevant to Type are populated; the rest stay at their zero values.
type ServerEvent struct {
	Type string `json:"type"`

	// init / load_canvas snapshot.
	Strokes    []Stroke       `json:"strokes,omitempty"`
	Gallery    []GalleryPiece `json:"gallery,omitempty"`
	Paused     bool           `json:"paused,omitempty"`
	PieceCount int            `json:"pieceCount,omitempty"`
	CanvasID   string         `json:"canvasId,omitempty"`

	// pen.
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
	Down bool    `json:"down,omitempty"`

	// stroke_complete. Strokes may arrive inline; when only BatchID is set
	// the client hydrates the batch over REST.
	BatchID string `json:"batchId,omitempty"`

	// thinking / thinking_delta / error.
	Text string `json:"text,omitempty"`

	// status.
	Status string `json:"status,omitempty"`

	// iteration.
	Iteration int `json:"iteration,omitempty"`

	// code_execution.
	Phase    string          `json:"phase,omitempty"`
	Tool     string          `json:"tool,omitempty"`
	Input    json.RawMessage `json:"input,omitempty"`
	Stdout   string          `json:"stdout,omitempty"`
	Stderr   string          `json:"stderr,omitempty"`
	ExitCode int             `json:"exitCode,omitempty"`

	// piece_complete.
	Title string `json:"title,omitempty"`
}

var knownServerTypes = map[string]struct{}{
	TypeInit:           {},
	TypePen:            {},
	TypeStrokeComplete: {},
	TypeThinking:       {},
	TypeThinkingDelta:  {},
	TypeStatus:         {},
	TypeIteration:      {},
	TypeCodeExecution:  {},
	TypeError:          {},
	TypePieceComplete:  {},
	TypeClear:          {},
	TypeNewCanvas:      {},
	TypeGalleryUpdate:  {},
	TypeLoadCanvas:     {},
	TypePieceCount:     {},
}

// DecodeServerEvent parses one inbound frame. It fails on malformed JSON,
// a missing discriminator, or an unrecognized tag.
func DecodeServerEvent(data []byte) (*ServerEvent, error) {
	var ev ServerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("parse server event: %w", err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("server event missing type")
	}
	if _, ok := knownServerTypes[ev.Type]; !ok {
		return nil, fmt.Errorf("unknown server event type %q", ev.Type)
	}
	return &ev, nil
}
