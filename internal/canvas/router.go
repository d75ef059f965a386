package canvas

import (
	"github.com/dmfenton/Sketchpad-sub000/internal/actor"
	"github.com/dmfenton/Sketchpad-sub000/internal/protocol"
)

// RouteServerEvent maps one decoded server event to zero or more store
// inputs. It carries no state of its own; nowMs stamps any history entry
// the event will produce.
func RouteServerEvent(ev *protocol.ServerEvent, nowMs int64) []actor.Input {
	if ev == nil {
		return nil
	}
	switch ev.Type {
	case protocol.TypeInit:
		return []actor.Input{evInit{
			Strokes:    ev.Strokes,
			Gallery:    ev.Gallery,
			Status:     ev.Status,
			Paused:     ev.Paused,
			PieceCount: ev.PieceCount,
			Monologue:  ev.Text,
			NowMs:      nowMs,
		}}
	case protocol.TypePen:
		return []actor.Input{evPen{Point: protocol.Point{X: ev.X, Y: ev.Y}, Down: ev.Down}}
	case protocol.TypeStrokeComplete:
		if ev.BatchID != "" {
			return []actor.Input{evPendingBatch{BatchID: ev.BatchID, Strokes: ev.Strokes}}
		}
		// No batch id means the strokes skip animation entirely.
		inputs := make([]actor.Input, 0, len(ev.Strokes))
		for _, s := range ev.Strokes {
			inputs = append(inputs, evInlineStroke{Stroke: s})
		}
		return inputs
	case protocol.TypeThinking:
		return []actor.Input{evThinking{Text: ev.Text, NowMs: nowMs}}
	case protocol.TypeThinkingDelta:
		return []actor.Input{evThinkingDelta{Text: ev.Text}}
	case protocol.TypeStatus:
		return []actor.Input{evStatus{Status: ev.Status, NowMs: nowMs}}
	case protocol.TypeIteration:
		return []actor.Input{evIteration{Iteration: ev.Iteration, NowMs: nowMs}}
	case protocol.TypeCodeExecution:
		return []actor.Input{evCodeExecution{
			Phase:    ev.Phase,
			Tool:     ev.Tool,
			Input:    ev.Input,
			Stdout:   ev.Stdout,
			Stderr:   ev.Stderr,
			ExitCode: ev.ExitCode,
			NowMs:    nowMs,
		}}
	case protocol.TypeError:
		return []actor.Input{evError{Text: ev.Text, NowMs: nowMs}}
	case protocol.TypePieceComplete:
		return []actor.Input{evPieceComplete{Title: ev.Title, NowMs: nowMs}}
	case protocol.TypeClear:
		return []actor.Input{evClear{}}
	case protocol.TypeNewCanvas:
		return []actor.Input{evNewCanvas{}}
	case protocol.TypeGalleryUpdate:
		return []actor.Input{evGalleryUpdate{Gallery: ev.Gallery}}
	case protocol.TypeLoadCanvas:
		return []actor.Input{evLoadCanvas{Strokes: ev.Strokes}}
	case protocol.TypePieceCount:
		return []actor.Input{evPieceCount{Count: ev.PieceCount}}
	default:
		// Decode already rejects unknown tags; anything that still slips
		// through is intentionally a no-op.
		return nil
	}
}
