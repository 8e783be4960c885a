package ports

import (
	"context"

	"burako/internal/domain"
)

// Status summarizes where the game stands after an action.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusNewHand    Status = "new_hand"
	StatusFinished   Status = "finished"
)

// EventRecord is a single event emitted by an action.
type EventRecord struct {
	Kind       string   `json:"kind"`
	Recipients []string `json:"recipients,omitempty"` // empty means everyone at the table
	Payload    any      `json:"payload,omitempty"`
}

// Notification is published after every committed action.
type Notification struct {
	GameID  string              `json:"game_id"`
	Version Version             `json:"version"`
	Status  Status              `json:"status"`
	Round   int                 `json:"round"`
	Scores  map[domain.Team]int `json:"scores"`
	Winner  domain.Team         `json:"winner,omitempty"`
	Events  []EventRecord       `json:"events"`
	// State is the full authoritative state; adapters decide how much of it to forward.
	State *domain.GameState `json:"-"`
}

// Notifier delivers notifications to observers.
type Notifier interface {
	// Publish hands a notification to the transport. Errors are reported but never undo
	// the action that produced the notification.
	Publish(ctx context.Context, n Notification) error
}

// HandArchive records scored hands.
type HandArchive interface {
	RecordHand(ctx context.Context, gameID string, result domain.HandResult) error
}
