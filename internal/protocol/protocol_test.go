package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeServerEvent_KnownTags(t *testing.T) {
	t.Parallel()

	ev, err := DecodeServerEvent([]byte(`{"type":"thinking_delta","text":"Hel"}`))
	require.NoError(t, err)
	require.Equal(t, TypeThinkingDelta, ev.Type)
	require.Equal(t, "Hel", ev.Text)

	ev, err = DecodeServerEvent([]byte(`{"type":"stroke_complete","batchId":"b1"}`))
	require.NoError(t, err)
	require.Equal(t, "b1", ev.BatchID)

	ev, err = DecodeServerEvent([]byte(`{"type":"code_execution","phase":"completed","tool":"draw_paths","exitCode":1,"stderr":"bad path"}`))
	require.NoError(t, err)
	require.Equal(t, PhaseCompleted, ev.Phase)
	require.Equal(t, 1, ev.ExitCode)

	ev, err = DecodeServerEvent([]byte(`{"type":"init","strokes":[{"type":"path","points":[{"x":1,"y":2}]}],"paused":true,"pieceCount":3}`))
	require.NoError(t, err)
	require.True(t, ev.Paused)
	require.Len(t, ev.Strokes, 1)
	require.Equal(t, Point{X: 1, Y: 2}, ev.Strokes[0].Points[0])
}

func TestDecodeServerEvent_Rejects(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data string
	}{
		{"malformed json", `{"type":`},
		{"missing type", `{"text":"x"}`},
		{"unknown tag", `{"type":"telepathy"}`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeServerEvent([]byte(tc.data))
			require.Error(t, err)
		})
	}
}

func TestEncodeOutbound(t *testing.T) {
	t.Parallel()

	data, err := EncodeOutbound(NewAnimationDoneMessage("b7"))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"animation_done","batch_id":"b7"}`, string(data))

	data, err = EncodeOutbound(NewPauseMessage())
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"pause"}`, string(data))

	data, err = EncodeOutbound(NewNewCanvasMessage("abstract", "charcoal"))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"new_canvas","direction":"abstract","style":"charcoal"}`, string(data))
}
