package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"burako/internal/domain"
	"burako/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// storageModule is the part of runtime.NakamaModule the storage adapters use.
type storageModule interface {
	StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error)
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
}

// StateStore keeps game states in Nakama storage. The storage object version is the
// game version, so a conditional write is the compare-and-swap.
type StateStore struct {
	nk storageModule
}

func NewStateStore(nk storageModule) *StateStore {
	return &StateStore{nk: nk}
}

func (s *StateStore) Load(ctx context.Context, gameID string) (*domain.GameState, ports.Version, error) {
	obj, err := readObject(ctx, s.nk, CollectionGames, gameID)
	if err != nil {
		return nil, "", err
	}
	if obj == nil {
		return nil, "", ports.ErrGameNotFound
	}
	var st domain.GameState
	if err := json.Unmarshal([]byte(obj.Value), &st); err != nil {
		return nil, "", fmt.Errorf("decode game %s: %w", gameID, err)
	}
	return &st, ports.Version(obj.Version), nil
}

func (s *StateStore) CommitIfUnchanged(ctx context.Context, gameID string, expected ports.Version, state *domain.GameState) (ports.Version, error) {
	if expected == "" {
		// An empty version would turn the write unconditional.
		return "", &domain.ConflictError{GameID: gameID}
	}
	return s.write(ctx, gameID, string(expected), state)
}

func (s *StateStore) Create(ctx context.Context, gameID string, state *domain.GameState) (ports.Version, error) {
	return s.write(ctx, gameID, "*", state)
}

func (s *StateStore) write(ctx context.Context, gameID, version string, state *domain.GameState) (ports.Version, error) {
	value, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("encode game %s: %w", gameID, err)
	}
	acks, err := s.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      CollectionGames,
		Key:             gameID,
		UserID:          systemUserID,
		Value:           string(value),
		Version:         version,
		PermissionRead:  permissionNoRead,
		PermissionWrite: permissionNoWrite,
	}})
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return "", &domain.ConflictError{GameID: gameID}
		}
		return "", fmt.Errorf("write game %s: %w", gameID, err)
	}
	if len(acks) == 0 {
		return "", fmt.Errorf("write game %s: no ack", gameID)
	}
	return ports.Version(acks[0].Version), nil
}

// Directory stores rosters in Nakama storage, one object per game.
type Directory struct {
	nk storageModule
}

func NewDirectory(nk storageModule) *Directory {
	return &Directory{nk: nk}
}

// Register overwrites the roster of gameID.
func (d *Directory) Register(ctx context.Context, gameID string, seats []domain.Seat) error {
	return d.write(ctx, gameID, "", seats)
}

// RegisterNew writes the roster of gameID only if none exists yet. A roster already in
// place is reported as a ConflictError.
func (d *Directory) RegisterNew(ctx context.Context, gameID string, seats []domain.Seat) error {
	return d.write(ctx, gameID, "*", seats)
}

func (d *Directory) write(ctx context.Context, gameID, version string, seats []domain.Seat) error {
	ordered := append([]domain.Seat(nil), seats...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].TurnOrder < ordered[j].TurnOrder })
	value, err := json.Marshal(ordered)
	if err != nil {
		return fmt.Errorf("encode roster %s: %w", gameID, err)
	}
	_, err = d.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      CollectionRosters,
		Key:             gameID,
		UserID:          systemUserID,
		Value:           string(value),
		Version:         version,
		PermissionRead:  permissionPublicRead,
		PermissionWrite: permissionNoWrite,
	}})
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return &domain.ConflictError{GameID: gameID}
		}
		return fmt.Errorf("write roster %s: %w", gameID, err)
	}
	return nil
}

func (d *Directory) OrderedPlayers(ctx context.Context, gameID string) ([]domain.Seat, error) {
	obj, err := readObject(ctx, d.nk, CollectionRosters, gameID)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("no roster for game %s: %w", gameID, ports.ErrGameNotFound)
	}
	var seats []domain.Seat
	if err := json.Unmarshal([]byte(obj.Value), &seats); err != nil {
		return nil, fmt.Errorf("decode roster %s: %w", gameID, err)
	}
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

func readObject(ctx context.Context, nk storageModule, collection, key string) (*api.StorageObject, error) {
	objs, err := nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: collection,
		Key:        key,
		UserID:     systemUserID,
	}})
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", collection, key, err)
	}
	if len(objs) == 0 {
		return nil, nil
	}
	return objs[0], nil
}

var (
	_ ports.StateStore      = (*StateStore)(nil)
	_ ports.PlayerDirectory = (*Directory)(nil)
	_ ports.RosterWriter    = (*Directory)(nil)
)
