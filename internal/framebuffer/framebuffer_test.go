package framebuffer

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func frameWith(b byte) Frame {
	return Frame{Data: []byte{b}, Timestamp: time.Now()}
}

// TestPublishLatest verifies the buffer holds only the most recent frame.
func TestPublishLatest(t *testing.T) {
	buf := New()
	defer buf.Close()

	if _, ok := buf.Latest(); ok {
		t.Fatal("Expected no frame before first Publish")
	}

	for i := byte(1); i <= 5; i++ {
		if err := buf.Publish(frameWith(i)); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	latest, ok := buf.Latest()
	if !ok {
		t.Fatal("Expected a frame after Publish")
	}
	if latest.Data[0] != 5 {
		t.Errorf("Expected latest frame 5, got %d", latest.Data[0])
	}
	if buf.Seq() != 5 {
		t.Errorf("Expected seq 5, got %d", buf.Seq())
	}
}

// TestAwaitNextBlocksUntilNewer verifies a reader blocks until a frame newer
// than its last observed generation arrives.
func TestAwaitNextBlocksUntilNewer(t *testing.T) {
	buf := New()
	defer buf.Close()

	buf.Publish(frameWith(1))
	seq := buf.Seq()

	got := make(chan Frame, 1)
	go func() {
		frame, _, ok := buf.AwaitNext(seq)
		if ok {
			got <- frame
		}
	}()

	// Reader must not wake for the frame it already observed.
	select {
	case <-got:
		t.Fatal("AwaitNext returned without a newer frame")
	case <-time.After(50 * time.Millisecond):
	}

	buf.Publish(frameWith(2))

	select {
	case frame := <-got:
		if frame.Data[0] != 2 {
			t.Errorf("Expected frame 2, got %d", frame.Data[0])
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout waiting for frame")
	}
}

// TestMonotonicPerReader verifies every AwaitNext call returns a frame at
// least as new as the latest one the caller observed.
func TestMonotonicPerReader(t *testing.T) {
	buf := New()

	const readers = 8
	const frames = 200

	var wg sync.WaitGroup
	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			var last uint64
			for {
				_, seq, ok := buf.AwaitNext(last)
				if !ok {
					return
				}
				if seq <= last {
					t.Errorf("Reader %d: seq went backwards (%d after %d)", id, seq, last)
					return
				}
				last = seq
			}
		}(r)
	}

	for i := 0; i < frames; i++ {
		buf.Publish(frameWith(byte(i)))
	}
	buf.Close()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Readers did not drain after Close")
	}
}

// TestBroadcastWakesAllReaders verifies one Publish reaches every waiting
// reader with the same frame.
func TestBroadcastWakesAllReaders(t *testing.T) {
	buf := New()
	defer buf.Close()

	const readers = 10
	got := make(chan byte, readers)

	for r := 0; r < readers; r++ {
		go func() {
			frame, _, ok := buf.AwaitNext(0)
			if ok {
				got <- frame.Data[0]
			}
		}()
	}

	// Give all readers time to block before publishing.
	time.Sleep(20 * time.Millisecond)
	buf.Publish(frameWith(42))

	for r := 0; r < readers; r++ {
		select {
		case b := <-got:
			if b != 42 {
				t.Errorf("Reader received frame %d, want 42", b)
			}
		case <-time.After(1 * time.Second):
			t.Fatalf("Reader %d: timeout waiting for broadcast", r)
		}
	}
}

// TestMidStreamReaderSkipsBacklog verifies a reader connecting after N
// publishes never observes them: it starts from the current generation.
func TestMidStreamReaderSkipsBacklog(t *testing.T) {
	buf := New()
	defer buf.Close()

	for i := byte(1); i <= 50; i++ {
		buf.Publish(frameWith(i))
	}

	// A consumer connecting mid-stream records the current generation and
	// waits for strictly newer frames only.
	joinSeq := buf.Seq()

	got := make(chan Frame, 1)
	go func() {
		frame, _, ok := buf.AwaitNext(joinSeq)
		if ok {
			got <- frame
		}
	}()

	select {
	case <-got:
		t.Fatal("Reader observed a frame published before it connected")
	case <-time.After(50 * time.Millisecond):
	}

	buf.Publish(frameWith(51))

	select {
	case frame := <-got:
		if frame.Data[0] != 51 {
			t.Errorf("Expected frame 51, got %d", frame.Data[0])
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout waiting for post-connect frame")
	}
}

// TestSlowReaderSkipsIntermediateFrames verifies lossy broadcast semantics:
// a reader that wakes late sees the newest frame, not the ones in between.
func TestSlowReaderSkipsIntermediateFrames(t *testing.T) {
	buf := New()
	defer buf.Close()

	buf.Publish(frameWith(1))
	frame, seq, ok := buf.AwaitNext(0)
	if !ok || frame.Data[0] != 1 {
		t.Fatalf("Expected frame 1, got %v ok=%v", frame.Data, ok)
	}

	// Producer races ahead while the reader is busy.
	for i := byte(2); i <= 9; i++ {
		buf.Publish(frameWith(i))
	}

	frame, seq2, ok := buf.AwaitNext(seq)
	if !ok {
		t.Fatal("AwaitNext failed after more publishes")
	}
	if frame.Data[0] != 9 {
		t.Errorf("Expected newest frame 9, got %d", frame.Data[0])
	}
	if seq2 != 9 {
		t.Errorf("Expected seq 9, got %d", seq2)
	}
}

// TestCloseReleasesBlockedReaders verifies Close wakes waiting readers with
// ok=false instead of leaving them blocked.
func TestCloseReleasesBlockedReaders(t *testing.T) {
	buf := New()

	released := make(chan bool, 3)
	for r := 0; r < 3; r++ {
		go func() {
			_, _, ok := buf.AwaitNext(0)
			released <- ok
		}()
	}

	time.Sleep(20 * time.Millisecond)
	buf.Close()

	for r := 0; r < 3; r++ {
		select {
		case ok := <-released:
			if ok {
				t.Error("Expected ok=false after Close")
			}
		case <-time.After(1 * time.Second):
			t.Fatal("Reader still blocked after Close")
		}
	}

	if err := buf.Publish(frameWith(1)); err != ErrClosed {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

// TestIdempotentClose verifies Close can be called multiple times.
func TestIdempotentClose(t *testing.T) {
	buf := New()
	buf.Close()
	buf.Close()

	if _, ok := buf.Latest(); ok {
		t.Error("Expected no frame from a closed buffer")
	}
}

// TestConcurrentPublishers verifies thread safety and that the generation
// counter accounts for every publish.
func TestConcurrentPublishers(t *testing.T) {
	buf := New()
	defer buf.Close()

	var wg sync.WaitGroup
	for p := 0; p < 10; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				buf.Publish(Frame{Data: []byte(fmt.Sprintf("%d-%d", id, i)), Timestamp: time.Now()})
			}
		}(p)
	}
	wg.Wait()

	if buf.Seq() != 1000 {
		t.Errorf("Expected seq 1000 after 1000 publishes, got %d", buf.Seq())
	}
}

// BenchmarkPublish measures the producer hot path with no readers.
func BenchmarkPublish(b *testing.B) {
	buf := New()
	defer buf.Close()

	frame := Frame{Data: make([]byte, 16*1024), Timestamp: time.Now()}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Publish(frame)
	}
}

// BenchmarkPublishWithReaders measures publish while readers stream.
func BenchmarkPublishWithReaders(b *testing.B) {
	buf := New()

	for r := 0; r < 4; r++ {
		go func() {
			var last uint64
			for {
				_, seq, ok := buf.AwaitNext(last)
				if !ok {
					return
				}
				last = seq
			}
		}()
	}

	frame := Frame{Data: make([]byte, 16*1024), Timestamp: time.Now()}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Publish(frame)
	}
	b.StopTimer()
	buf.Close()
}
