// Package history keeps the most recent submission outcomes in memory for
// the operator debug endpoint. Nothing is persisted.
package history

import (
	"sync"

	"github.com/healingsoulutions/intake-api/internal/entity"
)

const DefaultSize = 20

// Ring is a fixed-size, newest-wins buffer of outcome records. It is safe for
// concurrent use.
type Ring struct {
	mu    sync.RWMutex
	items []entity.OutcomeRecord
	next  int
	count int
}

func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultSize
	}
	return &Ring{items: make([]entity.OutcomeRecord, size)}
}

func (r *Ring) Record(rec entity.OutcomeRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[r.next] = rec
	r.next = (r.next + 1) % len(r.items)
	if r.count < len(r.items) {
		r.count++
	}
}

// Last returns a copy of the newest record, or nil when nothing was recorded.
func (r *Ring) Last() *entity.OutcomeRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}
	rec := r.at(0)
	return &rec
}

// Recent returns up to n records, newest first. n <= 0 returns everything held.
func (r *Ring) Recent(n int) []entity.OutcomeRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n <= 0 || n > r.count {
		n = r.count
	}
	out := make([]entity.OutcomeRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.at(i))
	}
	return out
}

func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// at returns the i-th newest record. Callers hold the lock.
func (r *Ring) at(i int) entity.OutcomeRecord {
	size := len(r.items)
	rec := r.items[(r.next-1-i+size*2)%size]
	rec.Outcome = rec.Outcome.Snapshot()
	return rec
}

