// Package performer plays agent-drawn stroke batches onto the canvas at a
// readable pace instead of flashing them in at delivery speed.
//
// Batches queue strictly FIFO. A batch announced by id only is hydrated
// over REST, but playback order never depends on fetch completion order:
// the head of the queue waits for its own hydration even when newer
// batches are already hydrated. Each batch is acknowledged exactly once,
// after its last stroke finishes; abandoned batches are never
// acknowledged and the server redelivers them.
package performer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/dmfenton/Sketchpad-sub000/internal/protocol"
)

// DefaultPace is the delay between animated points.
const DefaultPace = 16 * time.Millisecond

// StrokeFetcher hydrates a batch announced without inline stroke data.
type StrokeFetcher interface {
	FetchPendingStrokes(ctx context.Context, batchID string) ([]protocol.Stroke, error)
}

// Sink receives playback output. Playback calls (OnPen, OnStrokeFinished,
// OnBatchFinished) arrive from the run loop one at a time, but
// OnBatchAbandoned fires from the hydration goroutine and may overlap
// them; implementations must be safe for that.
type Sink interface {
	// OnPen reports the pen position for the current frame.
	OnPen(p protocol.Point, down bool)
	// OnStrokeFinished reports a fully animated stroke, in batch order.
	OnStrokeFinished(s protocol.Stroke)
	// OnBatchFinished reports batch exhaustion; fires once per batch.
	OnBatchFinished(batchID string)
	// OnBatchAbandoned reports a batch dropped before completion (failed
	// hydration). No acknowledgement is owed for it.
	OnBatchAbandoned(batchID string)
}

type batchEntry struct {
	batchID  string
	strokes  []protocol.Stroke
	hydrated bool
}

// Performer is the stroke playback scheduler.
type Performer struct {
	fetcher StrokeFetcher
	sink    Sink
	pace    time.Duration
	debug   bool

	mu        sync.Mutex
	queue     []*batchEntry
	strokeIdx int
	pointIdx  int
	gateOpen  bool

	kick   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Option configures a Performer.
type Option func(*Performer)

// WithPace overrides the per-point animation delay.
func WithPace(d time.Duration) Option {
	return func(p *Performer) {
		if d >= 0 {
			p.pace = d
		}
	}
}

// WithDebug enables verbose logging.
func WithDebug(enabled bool) Option {
	return func(p *Performer) { p.debug = enabled }
}

// New creates a performer. The gate starts closed.
func New(fetcher StrokeFetcher, sink Sink, opts ...Option) *Performer {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Performer{
		fetcher: fetcher,
		sink:    sink,
		pace:    DefaultPace,
		kick:    make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the playback loop. Idempotent.
func (p *Performer) Start() {
	p.once.Do(func() { go p.run() })
}

// Stop abandons any in-flight batch and stops the loop. The abandoned
// batch is simply redelivered later; no acknowledgement is sent.
func (p *Performer) Stop() {
	p.cancel()
}

// Done closes when the playback loop has exited.
func (p *Performer) Done() <-chan struct{} { return p.done }

// SetGate opens or closes the render gate. Closing it mid-stroke freezes
// playback in place; reopening continues from the frozen point, never
// restarting the batch.
func (p *Performer) SetGate(open bool) {
	p.mu.Lock()
	changed := p.gateOpen != open
	p.gateOpen = open
	p.mu.Unlock()
	if changed && open {
		p.wake()
	}
}

// Enqueue appends a batch to the playback queue. Strokes may be nil, in
// which case the batch hydrates over REST while holding its queue slot.
func (p *Performer) Enqueue(batchID string, strokes []protocol.Stroke) {
	entry := &batchEntry{batchID: batchID, strokes: strokes, hydrated: strokes != nil}

	p.mu.Lock()
	p.queue = append(p.queue, entry)
	p.mu.Unlock()

	if !entry.hydrated {
		go p.hydrate(entry)
	}
	p.wake()
}

// Reset abandons the whole queue without acknowledgements.
func (p *Performer) Reset() {
	p.mu.Lock()
	p.queue = nil
	p.strokeIdx = 0
	p.pointIdx = 0
	p.mu.Unlock()
}

// QueueLen reports how many batches are pending, for tests and display.
func (p *Performer) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func (p *Performer) hydrate(entry *batchEntry) {
	strokes, err := p.fetcher.FetchPendingStrokes(p.ctx, entry.batchID)
	if err != nil {
		log.Printf("performer: hydrate batch %s: %v", entry.batchID, err)
		p.mu.Lock()
		p.removeLocked(entry)
		p.mu.Unlock()
		if p.sink != nil {
			p.sink.OnBatchAbandoned(entry.batchID)
		}
		return
	}

	p.mu.Lock()
	entry.strokes = strokes
	entry.hydrated = true
	p.mu.Unlock()
	p.wake()
}

// removeLocked drops an entry wherever it sits in the queue. Progress
// counters only reset when the head goes away.
func (p *Performer) removeLocked(entry *batchEntry) {
	for i, e := range p.queue {
		if e == entry {
			if i == 0 {
				p.strokeIdx = 0
				p.pointIdx = 0
			}
			p.queue = append(p.queue[:i], p.queue[i+1:]...)
			return
		}
	}
}

func (p *Performer) wake() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

type frameOut struct {
	pen        *protocol.Point
	penDown    bool
	strokeDone *protocol.Stroke
	batchDone  string
}

func (p *Performer) run() {
	defer close(p.done)
	for {
		p.mu.Lock()
		for !p.canAdvanceLocked() {
			p.mu.Unlock()
			select {
			case <-p.ctx.Done():
				return
			case <-p.kick:
			}
			p.mu.Lock()
		}
		out := p.advanceLocked()
		p.mu.Unlock()

		p.emit(out)

		if p.pace > 0 {
			select {
			case <-p.ctx.Done():
				return
			case <-time.After(p.pace):
			}
		} else {
			select {
			case <-p.ctx.Done():
				return
			default:
			}
		}
	}
}

// canAdvanceLocked is the cooperative cancellation point: checked before
// every point, not just at batch start.
func (p *Performer) canAdvanceLocked() bool {
	return p.gateOpen && len(p.queue) > 0 && p.queue[0].hydrated
}

// advanceLocked moves the animation clock by one point.
func (p *Performer) advanceLocked() frameOut {
	var out frameOut
	head := p.queue[0]

	if p.strokeIdx >= len(head.strokes) {
		// Hydrated empty batch: acknowledge and move on.
		out.batchDone = head.batchID
		p.queue = p.queue[1:]
		p.strokeIdx = 0
		p.pointIdx = 0
		return out
	}

	stroke := head.strokes[p.strokeIdx]
	if len(stroke.Points) == 0 {
		s := stroke
		out.strokeDone = &s
		p.strokeIdx++
		p.pointIdx = 0
		if p.strokeIdx >= len(head.strokes) {
			out.batchDone = head.batchID
			p.queue = p.queue[1:]
			p.strokeIdx = 0
		}
		return out
	}
	pt := stroke.Points[p.pointIdx]
	out.pen = &pt
	out.penDown = true
	p.pointIdx++

	if p.pointIdx >= len(stroke.Points) {
		out.penDown = false
		s := stroke
		out.strokeDone = &s
		p.strokeIdx++
		p.pointIdx = 0
		if p.strokeIdx >= len(head.strokes) {
			out.batchDone = head.batchID
			p.queue = p.queue[1:]
			p.strokeIdx = 0
		}
	}
	return out
}

func (p *Performer) emit(out frameOut) {
	if p.sink == nil {
		return
	}
	if out.pen != nil {
		p.sink.OnPen(*out.pen, out.penDown)
	}
	if out.strokeDone != nil {
		p.sink.OnStrokeFinished(*out.strokeDone)
	}
	if out.batchDone != "" {
		if p.debug {
			log.Printf("performer: batch %s done", out.batchDone)
		}
		p.sink.OnBatchFinished(out.batchDone)
	}
}
