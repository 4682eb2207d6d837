package service

import (
	"sync"

	"wallet-core-backend/internal/features/wallet/models"
)

// StatePublisher is the observer registry broadcasting wallet-state
// snapshots. Delivery is strictly ordered: Subscribe hands the current
// snapshot to the listener synchronously before returning, then every
// committed snapshot follows in commit order.
type StatePublisher struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]func(models.WalletState)
	current     models.WalletState
}

func NewStatePublisher(initial models.WalletState) *StatePublisher {
	return &StatePublisher{
		subscribers: make(map[int]func(models.WalletState)),
		current:     initial,
	}
}

// Subscribe registers a listener and returns its unsubscribe function.
// Unsubscribing more than once is a no-op.
func (p *StatePublisher) Subscribe(listener func(models.WalletState)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.subscribers[id] = listener

	// Deliver the current snapshot before any later publish can reach
	// this listener.
	listener(p.current)

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

// Publish commits a new snapshot and delivers it to every listener.
func (p *StatePublisher) Publish(state models.WalletState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = state
	for _, listener := range p.subscribers {
		listener(state)
	}
}

// Current returns the latest committed snapshot.
func (p *StatePublisher) Current() models.WalletState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}
