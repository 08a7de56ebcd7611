package dynamo

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Set is an insertion-ordered copy-on-write set. Writers serialise on a
// mutex and publish a fresh slice; readers load the current slice without
// locking and never observe a partial write. The zero value is empty and
// ready to use.
type Set[T any] struct {
	mu    sync.Mutex
	items atomic.Pointer[[]T]
}

// Snapshot returns the current members. The slice must not be modified.
func (s *Set[T]) Snapshot() []T {
	p := s.items.Load()
	if p == nil {
		return nil
	}
	return *p
}

func (s *Set[T]) Len() int {
	return len(s.Snapshot())
}

func (s *Set[T]) Contains(v T) bool {
	return indexOf(s.Snapshot(), v) >= 0
}

// Add appends v unless it is already a member. It reports whether the set
// changed.
func (s *Set[T]) Add(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.Snapshot()
	if indexOf(cur, v) >= 0 {
		return false
	}
	next := make([]T, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, v)
	s.items.Store(&next)
	return true
}

// Remove deletes v and reports whether it was a member.
func (s *Set[T]) Remove(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.Snapshot()
	idx := indexOf(cur, v)
	if idx < 0 {
		return false
	}
	next := make([]T, 0, len(cur)-1)
	next = append(next, cur[:idx]...)
	next = append(next, cur[idx+1:]...)
	s.items.Store(&next)
	return true
}

func (s *Set[T]) Clear() {
	s.mu.Lock()
	s.items.Store(nil)
	s.mu.Unlock()
}

func indexOf[T any](items []T, v T) int {
	for i := range items {
		if same(items[i], v) {
			return i
		}
	}
	return -1
}

// same compares by identity. Values whose dynamic type is not comparable
// (func-valued listeners, for instance) are never equal to anything.
func same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
