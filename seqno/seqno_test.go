package seqno

import (
	"sync"
	"testing"
)

func TestNext_Monotonic(t *testing.T) {
	g := New()
	for i := uint64(0); i < 5; i++ {
		if got := g.Next(); got != i {
			t.Fatalf("expected %d, got %d", i, got)
		}
	}
}

func TestNext_ConcurrentUnique(t *testing.T) {
	g := New()
	const n = 1000
	seen := make([]bool, n)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := g.Next()
			mu.Lock()
			defer mu.Unlock()
			if v >= n {
				t.Errorf("value %d out of expected range", v)
				return
			}
			if seen[v] {
				t.Errorf("duplicate value %d", v)
			}
			seen[v] = true
		}()
	}
	wg.Wait()
}
