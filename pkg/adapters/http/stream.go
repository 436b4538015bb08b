package http

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aretw0/hdt/pkg/domain"
)

// Message is one server-sent event.
type Message struct {
	Event string
	Data  string
}

// StreamManager fans session events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan Message]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan Message]struct{}),
	}
}

// Subscribe registers a new subscriber. The returned func unregisters it.
func (sm *StreamManager) Subscribe() (<-chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Message, 16)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Subscribers returns the number of active subscribers.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast sends msg to every subscriber, dropping it for slow ones.
func (sm *StreamManager) Broadcast(msg Message) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// CloseAll disconnects every subscriber.
func (sm *StreamManager) CloseAll() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for ch := range sm.subscribers {
		delete(sm.subscribers, ch)
		close(ch)
	}
}

func (sm *StreamManager) publish(event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	sm.Broadcast(Message{Event: event, Data: string(data)})
}

// Hooks returns lifecycle hooks that broadcast each event as JSON.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhase: func(_ context.Context, e *domain.PhaseEvent) {
			sm.publish("phase", e)
		},
		OnTrial: func(_ context.Context, e *domain.TrialEvent) {
			sm.publish("trial", e)
		},
		OnReversal: func(_ context.Context, e *domain.ReversalEvent) {
			sm.publish("reversal", e)
		},
		OnStaircaseDone: func(_ context.Context, e *domain.StaircaseEvent) {
			sm.publish("staircase_done", e)
		},
	}
}
