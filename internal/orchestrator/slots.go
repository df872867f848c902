package orchestrator

import (
	"sync"

	"github.com/rohmanhakim/product-aggregator/internal/product"
)

// slots holds one contribution per adapter position. Once sealed, later
// writes are discarded so a deadline-bounded caller sees a stable snapshot.
type slots struct {
	mu     sync.Mutex
	values [][]product.Record
	sealed bool
}

func newSlots(n int) *slots {
	return &slots{values: make([][]product.Record, n)}
}

func (s *slots) set(i int, records []product.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed {
		return
	}
	s.values[i] = records
}

func (s *slots) seal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sealed = true
}

func (s *slots) concat() []product.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, v := range s.values {
		total += len(v)
	}
	out := make([]product.Record, 0, total)
	for _, v := range s.values {
		out = append(out, v...)
	}
	return out
}
