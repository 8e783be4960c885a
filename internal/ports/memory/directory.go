package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"burako/internal/domain"
	"burako/internal/ports"
)

// Directory keeps rosters in memory.
type Directory struct {
	mu      sync.RWMutex
	rosters map[string][]domain.Seat
}

func NewDirectory() *Directory {
	return &Directory{rosters: make(map[string][]domain.Seat)}
}

// Register replaces the roster of gameID.
func (d *Directory) Register(ctx context.Context, gameID string, seats []domain.Seat) error {
	ordered := append([]domain.Seat(nil), seats...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].TurnOrder < ordered[j].TurnOrder })
	d.mu.Lock()
	d.rosters[gameID] = ordered
	d.mu.Unlock()
	return nil
}

func (d *Directory) OrderedPlayers(ctx context.Context, gameID string) ([]domain.Seat, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	seats, ok := d.rosters[gameID]
	if !ok {
		return nil, fmt.Errorf("no roster for game %s: %w", gameID, ports.ErrGameNotFound)
	}
	return append([]domain.Seat(nil), seats...), nil
}

func (d *Directory) TeamOf(ctx context.Context, gameID, playerID string) (domain.Team, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, seat := range d.rosters[gameID] {
		if seat.PlayerID == playerID {
			return seat.Team, nil
		}
	}
	return domain.NoTeam, &domain.NotInGameError{GameID: gameID, PlayerID: playerID}
}

var (
	_ ports.PlayerDirectory = (*Directory)(nil)
	_ ports.RosterWriter    = (*Directory)(nil)
)
