// Package memory holds process-local repositories. Records are indexed by id and keep insertion
// order for iteration; every read returns a copy.
package memory

import (
	"fmt"
	"slices"
	"sync"
)

type table[T any] struct {
	mu    sync.RWMutex
	order []string
	rows  map[string]T
	clone func(T) T
}

func newTable[T any](clone func(T) T) *table[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &table[T]{rows: make(map[string]T), clone: clone}
}

func (t *table[T]) insert(id string, v T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; ok {
		return fmt.Errorf("duplicate id %q", id)
	}
	t.rows[id] = t.clone(v)
	t.order = append(t.order, id)
	return nil
}

func (t *table[T]) get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.clone(v), true
}

// update applies fn to a copy of the row and stores the result only when fn succeeds.
func (t *table[T]) update(id string, fn func(T) (T, error)) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.rows[id]
	if !ok {
		return false, nil
	}
	next, err := fn(t.clone(v))
	if err != nil {
		return true, err
	}
	t.rows[id] = next
	return true, nil
}

// updateWhere rewrites every row match accepts and returns how many it touched.
func (t *table[T]) updateWhere(match func(T) bool, fn func(T) T) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, id := range t.order {
		if v := t.rows[id]; match(v) {
			t.rows[id] = fn(t.clone(v))
			n++
		}
	}
	return n
}

func (t *table[T]) list(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []T
	for _, id := range t.order {
		v := t.rows[id]
		if keep == nil || keep(v) {
			out = append(out, t.clone(v))
		}
	}
	return out
}

func (t *table[T]) deleteWhere(drop func(T) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	kept := t.order[:0]
	for _, id := range t.order {
		if drop(t.rows[id]) {
			delete(t.rows, id)
			n++
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
	return n
}

// deleteIf removes the row when allow accepts it. found is false when the id is unknown.
func (t *table[T]) deleteIf(id string, allow func(T) error) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.rows[id]
	if !ok {
		return false, nil
	}
	if allow != nil {
		if err := allow(t.clone(v)); err != nil {
			return true, err
		}
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(k string) bool { return k == id })
	return true, nil
}
