package canvas

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmfenton/Sketchpad-sub000/internal/protocol"
)

func TestRouteServerEvent_Nil(t *testing.T) {
	t.Parallel()
	require.Nil(t, RouteServerEvent(nil, 0))
}

func TestRouteServerEvent_StrokeCompleteWithBatchID(t *testing.T) {
	t.Parallel()

	inputs := RouteServerEvent(&protocol.ServerEvent{
		Type:    protocol.TypeStrokeComplete,
		BatchID: "b9",
	}, 1)
	require.Len(t, inputs, 1)
	batch, ok := inputs[0].(evPendingBatch)
	require.True(t, ok)
	require.Equal(t, "b9", batch.BatchID)
	require.Nil(t, batch.Strokes)
}

func TestRouteServerEvent_StrokeCompleteInlineWithoutBatch(t *testing.T) {
	t.Parallel()

	inputs := RouteServerEvent(&protocol.ServerEvent{
		Type:    protocol.TypeStrokeComplete,
		Strokes: []protocol.Stroke{{ID: "s1"}, {ID: "s2"}},
	}, 1)
	require.Len(t, inputs, 2)
	require.IsType(t, evInlineStroke{}, inputs[0])
}

func TestRouteServerEvent_StampsNow(t *testing.T) {
	t.Parallel()

	inputs := RouteServerEvent(&protocol.ServerEvent{
		Type: protocol.TypeThinking,
		Text: "hello",
	}, 1234)
	require.Len(t, inputs, 1)
	require.Equal(t, int64(1234), inputs[0].(evThinking).NowMs)
}

func TestRouteServerEvent_EveryKnownTagRoutes(t *testing.T) {
	t.Parallel()

	tags := []string{
		protocol.TypeInit, protocol.TypePen, protocol.TypeThinking,
		protocol.TypeThinkingDelta, protocol.TypeStatus, protocol.TypeIteration,
		protocol.TypeCodeExecution, protocol.TypeError, protocol.TypePieceComplete,
		protocol.TypeClear, protocol.TypeNewCanvas, protocol.TypeGalleryUpdate,
		protocol.TypeLoadCanvas, protocol.TypePieceCount,
	}
	for _, tag := range tags {
		inputs := RouteServerEvent(&protocol.ServerEvent{Type: tag}, 1)
		require.NotEmpty(t, inputs, "tag %s must route", tag)
	}
}
