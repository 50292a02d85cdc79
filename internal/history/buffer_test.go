package history

import (
	"sync"
	"testing"

	"mower-map-go/internal/geo"
)

func TestBufferAppendAndSnapshot(t *testing.T) {
	b := NewBuffer(5)

	for i := 0; i < 3; i++ {
		b.Append(geo.PixelPoint{X: i, Y: i * 10})
	}

	snapshot := b.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("expected 3 points, got %d", len(snapshot))
	}
	for i, p := range snapshot {
		if p.X != i || p.Y != i*10 {
			t.Errorf("point %d out of order: %+v", i, p)
		}
	}
}

func TestBufferEvictsOldest(t *testing.T) {
	b := NewBuffer(5)

	// После N+1 добавлений буфер содержит ровно последние N точек
	for i := 0; i < 6; i++ {
		b.Append(geo.PixelPoint{X: i})
	}

	if b.Len() != 5 {
		t.Fatalf("expected length 5, got %d", b.Len())
	}

	snapshot := b.Snapshot()
	for i, p := range snapshot {
		if p.X != i+1 {
			t.Errorf("expected point %d at index %d, got %d", i+1, i, p.X)
		}
	}
}

func TestBufferNeverExceedsLimit(t *testing.T) {
	b := NewBuffer(10)

	for i := 0; i < 100; i++ {
		b.Append(geo.PixelPoint{X: i})
		if b.Len() > 10 {
			t.Fatalf("buffer exceeded limit after %d appends: %d", i+1, b.Len())
		}
	}
}

func TestBufferSnapshotIsCopy(t *testing.T) {
	b := NewBuffer(5)
	b.Append(geo.PixelPoint{X: 1})
	b.Append(geo.PixelPoint{X: 2})

	snapshot := b.Snapshot()
	b.Append(geo.PixelPoint{X: 3})
	snapshot[0] = geo.PixelPoint{X: 99}

	if len(snapshot) != 2 {
		t.Errorf("snapshot must not grow after later appends, got %d", len(snapshot))
	}
	if b.Snapshot()[0].X != 1 {
		t.Error("mutating a snapshot must not affect the buffer")
	}
}

func TestBufferReset(t *testing.T) {
	b := NewBuffer(5)
	for i := 0; i < 5; i++ {
		b.Append(geo.PixelPoint{X: i})
	}

	b.Reset()
	if b.Len() != 0 {
		t.Errorf("expected empty buffer after reset, got %d", b.Len())
	}

	b.Append(geo.PixelPoint{X: 7})
	if got := b.Snapshot(); len(got) != 1 || got[0].X != 7 {
		t.Errorf("buffer must be usable after reset, got %+v", got)
	}
}

func TestBufferDefaultLimit(t *testing.T) {
	b := NewBuffer(0)
	if b.Limit() != 50 {
		t.Errorf("expected default limit 50, got %d", b.Limit())
	}
}

func TestBufferConcurrentAppendAndSnapshot(t *testing.T) {
	b := NewBuffer(20)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				b.Append(geo.PixelPoint{X: g, Y: i})
				_ = b.Snapshot()
			}
		}(g)
	}
	wg.Wait()

	if b.Len() != 20 {
		t.Errorf("expected full buffer of 20, got %d", b.Len())
	}
}
