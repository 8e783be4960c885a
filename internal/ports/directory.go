package ports

import (
	"context"

	"burako/internal/domain"
)

// PlayerDirectory knows which players sit at a game and on which team.
// Seating is decided by the lobby before a round is created.
type PlayerDirectory interface {
	// OrderedPlayers returns the seats of gameID in turn order.
	OrderedPlayers(ctx context.Context, gameID string) ([]domain.Seat, error)

	// TeamOf returns the team of playerID.
	// Returns *domain.NotInGameError when the player is not seated at the game.
	TeamOf(ctx context.Context, gameID, playerID string) (domain.Team, error)
}

// RosterWriter registers the seats of a game. Directories backed by a store implement it.
type RosterWriter interface {
	Register(ctx context.Context, gameID string, seats []domain.Seat) error
}
