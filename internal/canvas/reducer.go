package canvas

import (
	"encoding/json"
	"fmt"

	"github.com/dmfenton/Sketchpad-sub000/internal/actor"
	"github.com/dmfenton/Sketchpad-sub000/internal/protocol"
)

// Reduce is the canvas store reducer. It is pure and total over the known
// input set; unknown inputs fall through unchanged. Unknown server tags
// never get here: the transport rejects them at the decode boundary.
func Reduce(state State, input actor.Input) (State, []actor.Effect) {
	switch in := input.(type) {
	case evConnected:
		state.Connected = true
		state.LastError = ""
		return state, nil
	case evDisconnected:
		state.Connected = false
		state.LastError = in.Reason
		return state, nil
	case evInit:
		return reduceInit(state, in)
	case evPen:
		return reducePen(state, in)
	case evPendingBatch:
		state.Perf.PendingBatchIDs = append(state.Perf.PendingBatchIDs, in.BatchID)
		return state, []actor.Effect{EffEnqueueBatch{BatchID: in.BatchID, Strokes: in.Strokes}}
	case evInlineStroke:
		state.Strokes = appendStroke(state.Strokes, in.Stroke)
		return state, nil
	case evThinkingDelta:
		state.LiveActive = true
		state.LiveText += in.Text
		state.CurrentThinking += in.Text
		return state, nil
	case evThinking:
		// Finalize before updating the scalar. The full-turn text repeats
		// what was already streamed; finalizing first is what prevents the
		// same text rendering twice.
		state = finalizeLive(state, in.NowMs)
		state.CurrentThinking = in.Text
		return state, nil
	case evStatus:
		return reduceStatus(state, in)
	case evIteration:
		state = finalizeLive(state, in.NowMs)
		state.Iteration = in.Iteration
		ids, id := state.IDs.Next(in.NowMs)
		state.IDs = ids
		state.Messages = appendMessage(state.Messages, Message{
			ID:        id,
			Kind:      KindIteration,
			Iteration: in.Iteration,
			CreatedAt: in.NowMs,
		})
		return state, nil
	case evCodeExecution:
		return reduceCodeExecution(state, in)
	case evError:
		state = finalizeLive(state, in.NowMs)
		ids, id := state.IDs.Next(in.NowMs)
		state.IDs = ids
		state.Messages = appendMessage(state.Messages, Message{
			ID:        id,
			Kind:      KindError,
			Text:      in.Text,
			CreatedAt: in.NowMs,
		})
		return state, nil
	case evPieceComplete:
		state = finalizeLive(state, in.NowMs)
		ids, id := state.IDs.Next(in.NowMs)
		state.IDs = ids
		state.Messages = appendMessage(state.Messages, Message{
			ID:        id,
			Kind:      KindPieceComplete,
			Title:     in.Title,
			CreatedAt: in.NowMs,
		})
		state.PieceCount++
		return state, nil
	case evClear, evNewCanvas:
		return reduceCanvasReset(state), []actor.Effect{EffResetPlayback{}}
	case evGalleryUpdate:
		state.Gallery = in.Gallery
		return state, nil
	case evLoadCanvas:
		state.Strokes = in.Strokes
		state.Perf = PerformanceState{}
		return state, []actor.Effect{EffResetPlayback{}}
	case evPieceCount:
		state.PieceCount = in.Count
		return state, nil
	case evAgentStrokeDone:
		state.Strokes = appendStroke(state.Strokes, in.Stroke)
		state.Perf.AgentStrokePoints = nil
		state.Perf.AgentStrokeStyleOverride = nil
		state.Perf.PenDown = false
		state.Perf.StrokeIndex++
		return state, nil
	case evBatchAnimated:
		state.Perf.PendingBatchIDs = removeBatchID(state.Perf.PendingBatchIDs, in.BatchID)
		return state, []actor.Effect{EffSend{Msg: protocol.NewAnimationDoneMessage(in.BatchID)}}
	case evBatchAbandoned:
		state.Perf.PendingBatchIDs = removeBatchID(state.Perf.PendingBatchIDs, in.BatchID)
		return state, nil

	case cmdSubmitStroke:
		state.Strokes = appendStroke(state.Strokes, in.Stroke)
		return state, []actor.Effect{EffSend{Msg: protocol.NewStrokeMessage(in.Stroke)}}
	case cmdTogglePause:
		// Optimistic local-first: flip the flag, then tell the server. The
		// next init or status snapshot wins any disagreement.
		state.Paused = !state.Paused
		msg := protocol.Outbound(protocol.NewPauseMessage())
		if !state.Paused {
			msg = protocol.NewResumeMessage()
		}
		return state, []actor.Effect{EffSend{Msg: msg}}
	case cmdNudge:
		return state, []actor.Effect{EffSend{Msg: protocol.NewNudgeMessage(in.Text)}}
	case cmdClearCanvas:
		state = reduceCanvasReset(state)
		return state, []actor.Effect{
			EffResetPlayback{},
			EffSend{Msg: protocol.NewClearMessage()},
		}
	case cmdRequestNewCanvas:
		return state, []actor.Effect{EffSend{Msg: protocol.NewNewCanvasMessage(in.Direction, in.Style)}}
	case cmdSetStyle:
		return state, []actor.Effect{EffSend{Msg: protocol.NewSetStyleMessage(in.Style)}}
	case cmdLoadCanvas:
		return state, []actor.Effect{EffSend{Msg: protocol.NewLoadCanvasMessage(in.CanvasID)}}
	case cmdEnterStudio:
		state.InStudio = true
		return state, nil
	case cmdLeaveStudio:
		state.InStudio = false
		state.Paused = true
		// Playback tears down with the studio: the performer drops its queue
		// on EffResetPlayback, so the mirrored batch markers and live stroke
		// must go with it or a redelivery would duplicate them.
		state.Perf = PerformanceState{}
		return state, []actor.Effect{
			EffSend{Msg: protocol.NewPauseMessage()},
			EffResetPlayback{},
		}
	default:
		return state, nil
	}
}

func reduceInit(state State, in evInit) (State, []actor.Effect) {
	state.Strokes = in.Strokes
	state.Gallery = in.Gallery
	state.Status = in.Status
	state.Paused = in.Paused
	state.PieceCount = in.PieceCount
	state.LiveText = ""
	state.LiveActive = false
	state.CurrentThinking = in.Monologue
	state.Iteration = 0
	state.ToolCalls = 0
	state.ToolRunning = false
	state.Perf = PerformanceState{}
	state.Messages = nil
	if in.Monologue != "" {
		ids, id := state.IDs.Next(in.NowMs)
		state.IDs = ids
		state.Messages = appendMessage(nil, Message{
			ID:        id,
			Kind:      KindThinking,
			Text:      in.Monologue,
			CreatedAt: in.NowMs,
		})
	}
	return state, []actor.Effect{EffResetPlayback{}}
}

func reducePen(state State, in evPen) (State, []actor.Effect) {
	state.Perf.PenPosition = in.Point
	if in.Down {
		if !state.Perf.PenDown {
			// Pen just touched down: a new live stroke starts.
			state.Perf.AgentStrokePoints = nil
		}
		state.Perf.AgentStrokePoints = append(state.Perf.AgentStrokePoints, in.Point)
	}
	state.Perf.PenDown = in.Down
	return state, nil
}

func reduceStatus(state State, in evStatus) (State, []actor.Effect) {
	state.Status = in.Status
	if in.Status == StatusThinking {
		// Turn boundary: finalize the stream and reset per-turn counters.
		state = finalizeLive(state, in.NowMs)
		state.Iteration = 0
		state.ToolCalls = 0
	}
	return state, nil
}

func reduceCodeExecution(state State, in evCodeExecution) (State, []actor.Effect) {
	// A tool call interrupts a thought.
	state = finalizeLive(state, in.NowMs)

	ids, id := state.IDs.Next(in.NowMs)
	state.IDs = ids
	msg := Message{
		ID:        id,
		Kind:      KindCodeExecution,
		Tool:      in.Tool,
		CreatedAt: in.NowMs,
	}
	switch in.Phase {
	case protocol.PhaseStarted:
		state.ToolRunning = true
		state.ToolCalls++
		msg.Running = true
		msg.Label = startedLabel(in.Tool, in.Input)
	case protocol.PhaseCompleted:
		state.ToolRunning = false
		msg.Stdout = in.Stdout
		msg.Stderr = in.Stderr
		msg.ExitCode = in.ExitCode
		msg.Label = completedLabel(in.Tool, in.ExitCode)
	default:
		// Unknown phase: record the raw tool name only.
		msg.Label = in.Tool
	}
	state.Messages = appendMessage(state.Messages, msg)
	return state, nil
}

// reduceCanvasReset drops strokes and message history together. Clearing
// one without the other would desynchronize the two views.
func reduceCanvasReset(state State) State {
	state.Strokes = nil
	state.Messages = nil
	state.LiveText = ""
	state.LiveActive = false
	state.CurrentThinking = ""
	state.Iteration = 0
	state.ToolCalls = 0
	state.ToolRunning = false
	state.Perf = PerformanceState{}
	return state
}

// startedLabel synthesizes a display label for a starting tool call.
func startedLabel(tool string, input json.RawMessage) string {
	if tool == "draw_paths" && len(input) > 0 {
		var args struct {
			Paths []json.RawMessage `json:"paths"`
		}
		if err := json.Unmarshal(input, &args); err == nil && len(args.Paths) > 0 {
			if len(args.Paths) == 1 {
				return "Drawing 1 path"
			}
			return fmt.Sprintf("Drawing %d paths", len(args.Paths))
		}
	}
	return fmt.Sprintf("Running %s", tool)
}

// completedLabel reflects the outcome of a finished tool call.
func completedLabel(tool string, exitCode int) string {
	if exitCode == 0 {
		return fmt.Sprintf("Ran %s", tool)
	}
	return fmt.Sprintf("%s failed (exit %d)", tool, exitCode)
}
