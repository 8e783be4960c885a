package ports

import (
	"context"
	"errors"

	"burako/internal/domain"
)

// Version identifies one committed revision of a game state. Stores treat it as opaque.
type Version string

// ErrGameNotFound is returned by Load when no state exists for the game id.
var ErrGameNotFound = errors.New("game not found")

// StateStore persists game states with compare-and-swap commits.
type StateStore interface {
	// Load returns the current state of gameID and its version.
	// Returns ErrGameNotFound if the game does not exist.
	Load(ctx context.Context, gameID string) (*domain.GameState, Version, error)

	// CommitIfUnchanged replaces the state only if it is still at expected.
	// Returns *domain.ConflictError when another commit got there first.
	CommitIfUnchanged(ctx context.Context, gameID string, expected Version, state *domain.GameState) (Version, error)

	// Create stores the first state of a game.
	// Returns *domain.ConflictError if the game already exists.
	Create(ctx context.Context, gameID string, state *domain.GameState) (Version, error)
}
