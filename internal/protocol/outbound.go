package protocol

import (
	"encoding/json"
	"fmt"
)

// Outbound is a client-to-server message. Encode returns the full frame
// including the "type" discriminator.
type Outbound interface {
	MessageType() string
}

// StrokeMessage submits a human-drawn stroke.
type StrokeMessage struct {
	Type   string `json:"type"`
	Stroke Stroke `json:"stroke"`
}

func (StrokeMessage) MessageType() string { return "stroke" }

// NewStrokeMessage wraps a completed user stroke.
func NewStrokeMessage(s Stroke) StrokeMessage {
	return StrokeMessage{Type: "stroke", Stroke: s}
}

// NudgeMessage sends a freeform prompt to the agent.
type NudgeMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

func (NudgeMessage) MessageType() string { return "nudge" }

// NewNudgeMessage builds a nudge.
func NewNudgeMessage(text string) NudgeMessage {
	return NudgeMessage{Type: "nudge", Text: text}
}

// ControlMessage covers the bodyless control tags: clear, pause, resume.
type ControlMessage struct {
	Type string `json:"type"`
}

func (m ControlMessage) MessageType() string { return m.Type }

// NewClearMessage asks the server to clear the canvas.
func NewClearMessage() ControlMessage { return ControlMessage{Type: "clear"} }

// NewPauseMessage pauses the agent.
func NewPauseMessage() ControlMessage { return ControlMessage{Type: "pause"} }

// NewResumeMessage resumes the agent.
func NewResumeMessage() ControlMessage { return ControlMessage{Type: "resume"} }

// NewCanvasMessage requests a fresh canvas, optionally steering the agent.
type NewCanvasMessage struct {
	Type      string `json:"type"`
	Direction string `json:"direction,omitempty"`
	Style     string `json:"style,omitempty"`
}

func (NewCanvasMessage) MessageType() string { return "new_canvas" }

// NewNewCanvasMessage builds a new_canvas request.
func NewNewCanvasMessage(direction, style string) NewCanvasMessage {
	return NewCanvasMessage{Type: "new_canvas", Direction: direction, Style: style}
}

// SetStyleMessage changes the agent's drawing style.
type SetStyleMessage struct {
	Type  string `json:"type"`
	Style string `json:"style"`
}

func (SetStyleMessage) MessageType() string { return "set_style" }

// NewSetStyleMessage builds a set_style request.
func NewSetStyleMessage(style string) SetStyleMessage {
	return SetStyleMessage{Type: "set_style", Style: style}
}

// LoadCanvasMessage asks the server to restore a gallery piece onto the
// canvas.
type LoadCanvasMessage struct {
	Type     string `json:"type"`
	CanvasID string `json:"canvasId"`
}

func (LoadCanvasMessage) MessageType() string { return "load_canvas" }

// NewLoadCanvasMessage builds a load_canvas request.
func NewLoadCanvasMessage(canvasID string) LoadCanvasMessage {
	return LoadCanvasMessage{Type: "load_canvas", CanvasID: canvasID}
}

// AnimationDoneMessage acknowledges that a pending-stroke batch finished
// animating. Sent at most once per batch.
type AnimationDoneMessage struct {
	Type    string `json:"type"`
	BatchID string `json:"batch_id"`
}

func (AnimationDoneMessage) MessageType() string { return "animation_done" }

// NewAnimationDoneMessage builds a batch acknowledgement.
func NewAnimationDoneMessage(batchID string) AnimationDoneMessage {
	return AnimationDoneMessage{Type: "animation_done", BatchID: batchID}
}

// EncodeOutbound serializes an outbound message to one frame.
func EncodeOutbound(m Outbound) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}
	return data, nil
}
