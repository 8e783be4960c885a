package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"burako/internal/config"
	"burako/internal/domain"
	"burako/internal/ports"

	"github.com/redis/go-redis/v9"
)

const (
	// gameKeyPrefix: burako:game:{game_id} -> hash{state, version}
	gameKeyPrefix = "burako:game:"
	// rosterKeyPrefix: burako:roster:{game_id} -> hash{player_id: seat JSON}
	rosterKeyPrefix = "burako:roster:"

	fieldState   = "state"
	fieldVersion = "version"
)

func gameKey(gameID string) string   { return gameKeyPrefix + gameID }
func rosterKey(gameID string) string { return rosterKeyPrefix + gameID }

// Connect opens a client and checks the server answers.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// Store keeps each game in a hash and commits with WATCH/MULTI so a commit fails when
// the version field moved since it was read.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func (s *Store) Load(ctx context.Context, gameID string) (*domain.GameState, ports.Version, error) {
	fields, err := s.rdb.HMGet(ctx, gameKey(gameID), fieldState, fieldVersion).Result()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load game %s: %w", gameID, err)
	}
	raw, ok := fields[0].(string)
	version, vok := fields[1].(string)
	if !ok || !vok {
		return nil, "", ports.ErrGameNotFound
	}
	var st domain.GameState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, "", fmt.Errorf("failed to decode game %s: %w", gameID, err)
	}
	return &st, ports.Version(version), nil
}

func (s *Store) CommitIfUnchanged(ctx context.Context, gameID string, expected ports.Version, state *domain.GameState) (ports.Version, error) {
	return s.swap(ctx, gameID, state, func(current string, exists bool) (string, bool) {
		if !exists || current != string(expected) {
			return "", false
		}
		n, err := strconv.Atoi(current)
		if err != nil {
			return "", false
		}
		return strconv.Itoa(n + 1), true
	})
}

func (s *Store) Create(ctx context.Context, gameID string, state *domain.GameState) (ports.Version, error) {
	return s.swap(ctx, gameID, state, func(current string, exists bool) (string, bool) {
		return "1", !exists
	})
}

// swap writes state under a WATCH on the game key. next decides, from the version read
// inside the transaction, whether to write and which version to store.
func (s *Store) swap(ctx context.Context, gameID string, state *domain.GameState, next func(current string, exists bool) (string, bool)) (ports.Version, error) {
	value, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to encode game %s: %w", gameID, err)
	}
	key := gameKey(gameID)
	var written string
	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, fieldVersion).Result()
		exists := true
		if errors.Is(err, redis.Nil) {
			exists = false
		} else if err != nil {
			return err
		}
		version, ok := next(current, exists)
		if !ok {
			return &domain.ConflictError{GameID: gameID}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fieldState, value, fieldVersion, version)
			return nil
		})
		if err != nil {
			return err
		}
		written = version
		return nil
	}, key)
	switch {
	case err == nil:
		return ports.Version(written), nil
	case errors.Is(err, redis.TxFailedErr):
		return "", &domain.ConflictError{GameID: gameID}
	case errors.Is(err, domain.ErrConflict):
		return "", err
	default:
		return "", fmt.Errorf("failed to write game %s: %w", gameID, err)
	}
}

// Directory keeps rosters in a hash per game.
type Directory struct {
	rdb *redis.Client
}

func NewDirectory(rdb *redis.Client) *Directory {
	return &Directory{rdb: rdb}
}

// Register replaces the roster of gameID.
func (d *Directory) Register(ctx context.Context, gameID string, seats []domain.Seat) error {
	key := rosterKey(gameID)
	values := make([]interface{}, 0, 2*len(seats))
	for _, seat := range seats {
		b, err := json.Marshal(seat)
		if err != nil {
			return fmt.Errorf("failed to encode seat: %w", err)
		}
		values = append(values, seat.PlayerID, b)
	}
	_, err := d.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.HSet(ctx, key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to register roster %s: %w", gameID, err)
	}
	return nil
}

func (d *Directory) OrderedPlayers(ctx context.Context, gameID string) ([]domain.Seat, error) {
	all, err := d.rdb.HGetAll(ctx, rosterKey(gameID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load roster %s: %w", gameID, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no roster for game %s: %w", gameID, ports.ErrGameNotFound)
	}
	seats := make([]domain.Seat, 0, len(all))
	for _, raw := range all {
		var seat domain.Seat
		if err := json.Unmarshal([]byte(raw), &seat); err != nil {
			return nil, fmt.Errorf("failed to decode roster %s: %w", gameID, err)
		}
		seats = append(seats, seat)
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i].TurnOrder < seats[j].TurnOrder })
	return seats, nil
}

func (d *Directory) TeamOf(ctx context.Context, gameID, playerID string) (domain.Team, error) {
	raw, err := d.rdb.HGet(ctx, rosterKey(gameID), playerID).Result()
	if errors.Is(err, redis.Nil) {
		return domain.NoTeam, &domain.NotInGameError{GameID: gameID, PlayerID: playerID}
	}
	if err != nil {
		return domain.NoTeam, fmt.Errorf("failed to look up %s in %s: %w", playerID, gameID, err)
	}
	var seat domain.Seat
	if err := json.Unmarshal([]byte(raw), &seat); err != nil {
		return domain.NoTeam, fmt.Errorf("failed to decode seat: %w", err)
	}
	return seat.Team, nil
}

var (
	_ ports.StateStore      = (*Store)(nil)
	_ ports.PlayerDirectory = (*Directory)(nil)
	_ ports.RosterWriter    = (*Directory)(nil)
)
