package resume

import (
	"context"
	"sync"

	"github.com/verte-zerg/tuiread/internal/clock"
	"github.com/verte-zerg/tuiread/internal/model"
)

type opKind int

const (
	opSave opKind = iota
	opClear
)

type op struct {
	kind opKind
	rec  model.ResumeRecord
}

// Writer forwards resume updates to a Store without blocking the caller.
// Only the most recent pending operation is kept; older ones are dropped.
type Writer struct {
	store  Store
	device string
	onErr  func(error)
	clock  clock.Clock

	writeMu   sync.Mutex
	mu        sync.Mutex
	pending   *op
	mode      model.Mode
	chunkSize int

	signal chan struct{}
	done   chan struct{}
}

// NewWriter returns a Writer for device stamping records with clk (the system
// clock when nil). onErr receives write failures and may be nil.
func NewWriter(st Store, device string, clk clock.Clock, onErr func(error)) *Writer {
	if clk == nil {
		clk = clock.System
	}
	return &Writer{
		store:     st,
		device:    device,
		onErr:     onErr,
		clock:     clk,
		chunkSize: 1,
		signal:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// SetLayout records the mode and chunk size stored with subsequent saves.
func (w *Writer) SetLayout(mode model.Mode, chunkSize int) {
	w.mu.Lock()
	w.mode = mode
	w.chunkSize = chunkSize
	w.mu.Unlock()
}

// Save queues the current position. It never blocks.
func (w *Writer) Save(rawText string, cursor int) {
	w.mu.Lock()
	w.pending = &op{kind: opSave, rec: model.ResumeRecord{
		Device:    w.device,
		RawText:   rawText,
		Cursor:    cursor,
		Mode:      w.mode,
		ChunkSize: w.chunkSize,
		UpdatedAt: w.clock.Now(),
	}}
	w.mu.Unlock()
	w.notify()
}

// Clear queues removal of the record. It never blocks.
func (w *Writer) Clear() {
	w.mu.Lock()
	w.pending = &op{kind: opClear}
	w.mu.Unlock()
	w.notify()
}

// Run applies queued operations until ctx is cancelled, then flushes the last one.
func (w *Writer) Run(ctx context.Context) error {
	defer close(w.done)
	for {
		select {
		case <-w.signal:
			w.flush(ctx)
		case <-ctx.Done():
			// Final flush must not be cut short by the cancelled context.
			w.flush(context.Background())
			return nil
		}
	}
}

// Done is closed once Run has returned.
func (w *Writer) Done() <-chan struct{} {
	return w.done
}

// Flush applies the pending operation synchronously.
func (w *Writer) Flush(ctx context.Context) {
	w.flush(ctx)
}

func (w *Writer) notify() {
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

func (w *Writer) flush(ctx context.Context) {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()
	if pending == nil || w.store == nil {
		return
	}
	var err error
	switch pending.kind {
	case opSave:
		err = w.store.SaveResume(ctx, pending.rec)
	case opClear:
		err = w.store.ClearResume(ctx, w.device)
	}
	if err != nil && w.onErr != nil {
		w.onErr(err)
	}
}
