package alert

import (
	"sync"
	"testing"
	"time"
)

type batchRecorder struct {
	mu      sync.Mutex
	batches [][]Alert
}

func (r *batchRecorder) record(alerts []Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, alerts)
}

func (r *batchRecorder) sizes() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	sizes := make([]int, len(r.batches))
	for i, b := range r.batches {
		sizes[i] = len(b)
	}
	return sizes
}

func TestBatcher_Add(t *testing.T) {
	tests := []struct {
		name   string
		window time.Duration
		delays []time.Duration
		want   []int
	}{
		{
			name:   "single batch within window",
			window: 100 * time.Millisecond,
			delays: []time.Duration{0, 10 * time.Millisecond, 10 * time.Millisecond},
			want:   []int{3},
		},
		{
			name:   "multiple batches across windows",
			window: 50 * time.Millisecond,
			delays: []time.Duration{0, 100 * time.Millisecond, 10 * time.Millisecond},
			want:   []int{1, 2},
		},
		{
			name:   "single alert triggers batch",
			window: 30 * time.Millisecond,
			delays: []time.Duration{0},
			want:   []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &batchRecorder{}
			b := NewBatcher(tt.window, rec.record)

			for i, d := range tt.delays {
				time.Sleep(d)
				b.Add(Alert{Title: string(rune('a' + i))})
			}
			time.Sleep(tt.window * 3)

			got := rec.sizes()
			if len(got) != len(tt.want) {
				t.Fatalf("batches = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("batch %d size = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBatcher_Flush(t *testing.T) {
	rec := &batchRecorder{}
	b := NewBatcher(time.Hour, rec.record)

	b.Add(Alert{Title: "1"})
	b.Add(Alert{Title: "2"})
	if b.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", b.Pending())
	}

	b.Flush()
	if got := rec.sizes(); len(got) != 1 || got[0] != 2 {
		t.Errorf("batches = %v, want [2]", got)
	}
	if b.Pending() != 0 {
		t.Errorf("Pending() after flush = %d, want 0", b.Pending())
	}

	// Flushing an empty batcher sends nothing.
	b.Flush()
	if got := rec.sizes(); len(got) != 1 {
		t.Errorf("batches = %v, want one batch", got)
	}
}
