// Copyright 2025 SiteVitals Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package output

import "sync"

// Subscriber consumes output events from a stream.
//
// Handle cannot return an error: presentation failures (broken pipe,
// closed terminal) must never propagate back into scan logic.
type Subscriber interface {
	// Name identifies the subscriber for registration bookkeeping.
	Name() string

	// ShouldHandle decides if this subscriber cares about the event.
	ShouldHandle(event OutputEvent) bool

	// Handle processes one event.
	Handle(event OutputEvent)
}

// OutputEventStream fans events out to registered subscribers.
// Emission is synchronous and in subscription order, which keeps CLI
// output deterministic.
type OutputEventStream struct {
	mu          sync.RWMutex
	subscribers []Subscriber
}

// NewOutputEventStream creates an empty stream.
func NewOutputEventStream() *OutputEventStream {
	return &OutputEventStream{}
}

// Subscribe registers a subscriber. A subscriber with a name already
// registered replaces the previous registration.
func (s *OutputEventStream) Subscribe(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.subscribers {
		if existing.Name() == sub.Name() {
			s.subscribers[i] = sub
			return
		}
	}
	s.subscribers = append(s.subscribers, sub)
}

// Unsubscribe removes the subscriber with the given name, if registered.
func (s *OutputEventStream) Unsubscribe(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.subscribers {
		if existing.Name() == name {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			return
		}
	}
}

// SubscriberCount returns the number of registered subscribers.
func (s *OutputEventStream) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// Emit delivers the event to every subscriber whose ShouldHandle accepts
// it. Safe for concurrent use; analyzer goroutines emit progress events
// while the scan runs.
func (s *OutputEventStream) Emit(event OutputEvent) {
	s.mu.RLock()
	subs := make([]Subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()

	for _, sub := range subs {
		if sub.ShouldHandle(event) {
			sub.Handle(event)
		}
	}
}
