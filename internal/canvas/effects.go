package canvas

import (
	"github.com/dmfenton/Sketchpad-sub000/internal/actor"
	"github.com/dmfenton/Sketchpad-sub000/internal/protocol"
)

// EffSend transmits one outbound message. The transport drops it silently
// when the socket is not open; callers retry at the UI-action level.
type EffSend struct {
	actor.EffectBase
	Msg protocol.Outbound
}

// EffEnqueueBatch hands a pending-stroke batch to the performer. Strokes
// may be nil, in which case the performer hydrates the batch over REST.
type EffEnqueueBatch struct {
	actor.EffectBase
	BatchID string
	Strokes []protocol.Stroke
}

// EffResetPlayback abandons any in-flight animation without sending an
// acknowledgement; the server redelivers unacknowledged batches.
type EffResetPlayback struct {
	actor.EffectBase
}
