// Package framebuffer provides the single-slot frame broadcast cell that
// decouples a capture loop from any number of streaming readers.
//
// One writer publishes the most recent frame; every reader independently
// waits for a frame newer than the last one it observed. Readers that fall
// behind skip intermediate frames instead of queueing them, so memory use is
// O(1) no matter how many readers are attached or how fast the producer runs.
package framebuffer

import (
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("framebuffer: closed")

// Frame is one encoded still image with its capture timestamp. The data
// slice is treated as immutable once published; writers hand in a fresh
// slice per frame and never mutate it afterwards.
type Frame struct {
	Data      []byte
	Timestamp time.Time
}

// Buffer holds the most recent frame and a monotonically increasing
// generation counter. The zero value is not usable; call New.
type Buffer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	frame  *Frame
	seq    uint64
	closed bool
}

// New creates an empty buffer.
func New() *Buffer {
	b := &Buffer{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Publish replaces the current frame, advances the generation counter and
// wakes every reader blocked in AwaitNext. The superseded frame is dropped.
func (b *Buffer) Publish(frame Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	b.frame = &frame
	b.seq++
	b.cond.Broadcast()
	return nil
}

// AwaitNext blocks until a frame with a generation newer than lastSeq is
// available and returns it together with its generation. Callers pass the
// generation from their previous call (or 0 to accept whatever is current),
// which makes the sequence of frames each reader observes strictly
// monotonic. ok is false once the buffer has been closed; the returned
// generation is then lastSeq unchanged.
//
// If the producer stalls, AwaitNext blocks indefinitely; liveness bounds
// (keepalives, request contexts) are the caller's concern.
func (b *Buffer) AwaitNext(lastSeq uint64) (frame Frame, seq uint64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.seq <= lastSeq && !b.closed {
		b.cond.Wait()
	}
	if b.closed {
		return Frame{}, lastSeq, false
	}
	return *b.frame, b.seq, true
}

// Latest returns the current frame without blocking. ok is false when
// nothing has been published yet or the buffer is closed.
func (b *Buffer) Latest() (Frame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || b.frame == nil {
		return Frame{}, false
	}
	return *b.frame, true
}

// Seq returns the current generation counter. A reader connecting mid-stream
// uses it to skip everything published before it attached.
func (b *Buffer) Seq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

// Close releases all blocked readers. Further Publish calls fail with
// ErrClosed; Close is idempotent.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	b.frame = nil
	b.cond.Broadcast()
}
