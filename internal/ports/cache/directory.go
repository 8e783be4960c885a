package cache

import (
	"context"
	"fmt"
	"time"

	"burako/internal/domain"
	"burako/internal/ports"

	"github.com/dgraph-io/ristretto"
)

// DefaultTTL bounds how long a roster is served from memory after it was read.
const DefaultTTL = 10 * time.Minute

// Directory caches rosters of another PlayerDirectory. Rosters only change through
// Register, which drops the cached copy.
type Directory struct {
	next  ports.PlayerDirectory
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewDirectory caches up to maxEntries rosters read from next.
func NewDirectory(next ports.PlayerDirectory, maxEntries int64, ttl time.Duration) (*Directory, error) {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create roster cache: %w", err)
	}
	return &Directory{next: next, cache: c, ttl: ttl}, nil
}

func (d *Directory) OrderedPlayers(ctx context.Context, gameID string) ([]domain.Seat, error) {
	if v, ok := d.cache.Get(gameID); ok {
		if seats, ok := v.([]domain.Seat); ok {
			return append([]domain.Seat(nil), seats...), nil
		}
	}
	seats, err := d.next.OrderedPlayers(ctx, gameID)
	if err != nil {
		return nil, err
	}
	d.cache.SetWithTTL(gameID, append([]domain.Seat(nil), seats...), 1, d.ttl)
	d.cache.Wait()
	return seats, nil
}

func (d *Directory) TeamOf(ctx context.Context, gameID, playerID string) (domain.Team, error) {
	seats, err := d.OrderedPlayers(ctx, gameID)
	if err != nil {
		return domain.NoTeam, err
	}
	for _, seat := range seats {
		if seat.PlayerID == playerID {
			return seat.Team, nil
		}
	}
	return domain.NoTeam, &domain.NotInGameError{GameID: gameID, PlayerID: playerID}
}

// Register writes through to the wrapped directory when it accepts rosters.
func (d *Directory) Register(ctx context.Context, gameID string, seats []domain.Seat) error {
	w, ok := d.next.(ports.RosterWriter)
	if !ok {
		return fmt.Errorf("directory %T does not accept rosters", d.next)
	}
	d.cache.Del(gameID)
	return w.Register(ctx, gameID, seats)
}

func (d *Directory) Close() {
	d.cache.Close()
}

var (
	_ ports.PlayerDirectory = (*Directory)(nil)
	_ ports.RosterWriter    = (*Directory)(nil)
)
