package staging

import (
	"context"
	"sync"
)

// Buffer accumulates not-yet-persisted edits keyed by the entity they target.
// A later Record for the same key supersedes the earlier entry in place
// (last-write-wins per entity), so the buffer never holds two changes for one
// entity. Buffered changes are visual-only: confirmed state is replaced
// exclusively by data that round-tripped through the flush operation.
type Buffer[K comparable, C any] struct {
	mu      sync.Mutex
	gen     uint64
	order   []K
	changes map[K]entry[C]
}

// entry stamps each buffered change with the generation of the Record that
// wrote it, so Save can tell whether a flushed key was re-recorded while the
// flush was running.
type entry[C any] struct {
	change C
	gen    uint64
}

// BatchResult reports the per-entity outcome of a flush. Keys absent from
// Failed are considered saved.
type BatchResult[K comparable] struct {
	Failed map[K]string
}

// FlushFunc persists the buffered changes as one batch and reports per-entity
// failures. A non-nil error means the whole batch failed.
type FlushFunc[K comparable, C any] func(ctx context.Context, changes []C) (BatchResult[K], error)

// SaveReport summarizes a Save call.
type SaveReport[K comparable] struct {
	Saved  int
	Failed map[K]string
}

func NewBuffer[K comparable, C any]() *Buffer[K, C] {
	return &Buffer[K, C]{changes: make(map[K]entry[C])}
}

func (b *Buffer[K, C]) Record(key K, change C) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.changes[key]; !exists {
		b.order = append(b.order, key)
	}
	b.gen++
	b.changes[key] = entry[C]{change: change, gen: b.gen}
}

func (b *Buffer[K, C]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}

func (b *Buffer[K, C]) Empty() bool {
	return b.Len() == 0
}

// Changes returns the buffered changes in record order.
func (b *Buffer[K, C]) Changes() []C {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.changesLocked()
}

func (b *Buffer[K, C]) changesLocked() []C {
	out := make([]C, 0, len(b.order))
	for _, key := range b.order {
		out = append(out, b.changes[key].change)
	}
	return out
}

// Save flushes the full buffer through flush as one unit. An empty buffer is
// a no-op. On whole-batch failure every entry is retained. On partial failure
// only the failed entries remain buffered; saved ones are cleared. A change
// recorded while the flush is running never round-tripped and stays buffered,
// whether its key is new or was part of the flight.
func (b *Buffer[K, C]) Save(ctx context.Context, flush FlushFunc[K, C]) (SaveReport[K], error) {
	b.mu.Lock()
	if len(b.order) == 0 {
		b.mu.Unlock()
		return SaveReport[K]{}, nil
	}
	batch := b.changesLocked()
	keys := make([]K, len(b.order))
	copy(keys, b.order)
	gens := make(map[K]uint64, len(keys))
	for _, key := range keys {
		gens[key] = b.changes[key].gen
	}
	b.mu.Unlock()

	result, err := flush(ctx, batch)
	if err != nil {
		return SaveReport[K]{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	saved := 0
	for _, key := range keys {
		if _, failed := result.Failed[key]; failed {
			continue
		}
		saved++
		// Clear only the exact value that was flushed. A newer generation
		// means the key was re-recorded mid-flight; that edit is retained.
		if current, ok := b.changes[key]; ok && current.gen == gens[key] {
			delete(b.changes, key)
		}
	}
	kept := b.order[:0]
	for _, key := range b.order {
		if _, ok := b.changes[key]; ok {
			kept = append(kept, key)
		}
	}
	b.order = kept

	report := SaveReport[K]{Saved: saved}
	if len(result.Failed) > 0 {
		report.Failed = result.Failed
	}
	return report, nil
}

// Undo discards every buffered change. Always synchronous, never fails.
// Returns the number of entries discarded.
func (b *Buffer[K, C]) Undo() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.order)
	b.order = nil
	b.changes = make(map[K]entry[C])
	return n
}
