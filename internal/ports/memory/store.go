package memory

import (
	"context"
	"strconv"
	"sync"

	"burako/internal/domain"
	"burako/internal/ports"
)

type entry struct {
	state   *domain.GameState
	version int
}

// Store is an in-process StateStore. Versions are per-game counters.
type Store struct {
	mu    sync.Mutex
	games map[string]entry
}

func NewStore() *Store {
	return &Store{games: make(map[string]entry)}
}

func (s *Store) Load(ctx context.Context, gameID string) (*domain.GameState, ports.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.games[gameID]
	if !ok {
		return nil, "", ports.ErrGameNotFound
	}
	return e.state.Clone(), versionOf(e.version), nil
}

func (s *Store) CommitIfUnchanged(ctx context.Context, gameID string, expected ports.Version, state *domain.GameState) (ports.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.games[gameID]
	if !ok || versionOf(e.version) != expected {
		return "", &domain.ConflictError{GameID: gameID}
	}
	e = entry{state: state.Clone(), version: e.version + 1}
	s.games[gameID] = e
	return versionOf(e.version), nil
}

func (s *Store) Create(ctx context.Context, gameID string, state *domain.GameState) (ports.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[gameID]; ok {
		return "", &domain.ConflictError{GameID: gameID}
	}
	s.games[gameID] = entry{state: state.Clone(), version: 1}
	return versionOf(1), nil
}

func versionOf(v int) ports.Version {
	return ports.Version(strconv.Itoa(v))
}

var _ ports.StateStore = (*Store)(nil)
