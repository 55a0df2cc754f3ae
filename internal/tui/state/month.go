// Package state holds UI state shared between screens.
package state

import (
	"sync"

	"github.com/Veraticus/pennywise/internal/model"
)

// MonthStore holds the month every screen is looking at. It is not
// persisted: each process starts at the month it was created with.
type MonthStore struct {
	subscribers map[int]func(model.Month)
	month       model.Month
	nextID      int
	mu          sync.RWMutex
}

// NewMonthStore returns a store starting at initial.
func NewMonthStore(initial model.Month) *MonthStore {
	return &MonthStore{
		month:       initial,
		subscribers: make(map[int]func(model.Month)),
	}
}

// Month returns the selected month.
func (s *MonthStore) Month() model.Month {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.month
}

// SetMonth selects m and notifies subscribers if it changed.
// Subscribers are called after the lock is released.
func (s *MonthStore) SetMonth(m model.Month) {
	s.mu.Lock()
	if s.month == m {
		s.mu.Unlock()
		return
	}
	s.month = m
	subs := make([]func(model.Month), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(m)
	}
}

// Subscribe registers fn to be called with the new month after every
// change. The returned function removes the subscription.
func (s *MonthStore) Subscribe(fn func(model.Month)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
		})
	}
}
