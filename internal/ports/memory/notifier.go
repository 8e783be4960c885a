package memory

import (
	"context"
	"sync"

	"burako/internal/domain"
	"burako/internal/ports"
)

// Notifier records every notification it is given.
type Notifier struct {
	mu   sync.Mutex
	sent []ports.Notification
	// Err, when set, is returned from Publish after recording.
	Err error
}

func (n *Notifier) Publish(ctx context.Context, note ports.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, note)
	return n.Err
}

// Sent returns a copy of the recorded notifications.
func (n *Notifier) Sent() []ports.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ports.Notification(nil), n.sent...)
}

// Archive keeps scored hands per game.
type Archive struct {
	mu    sync.Mutex
	hands map[string][]domain.HandResult
}

func NewArchive() *Archive {
	return &Archive{hands: make(map[string][]domain.HandResult)}
}

func (a *Archive) RecordHand(ctx context.Context, gameID string, result domain.HandResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hands[gameID] = append(a.hands[gameID], result)
	return nil
}

func (a *Archive) Hands(gameID string) []domain.HandResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.HandResult(nil), a.hands[gameID]...)
}

var (
	_ ports.Notifier    = (*Notifier)(nil)
	_ ports.HandArchive = (*Archive)(nil)
)
