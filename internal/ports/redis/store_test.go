package redis

import (
	"context"
	"os"
	"sync"
	"testing"

	"burako/internal/config"
	"burako/internal/domain"
	"burako/internal/ports"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connect returns a client for BURAKO_TEST_REDIS_ADDR (default localhost:6379) or skips.
func connect(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("BURAKO_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb, err := Connect(context.Background(), config.RedisConfig{Addr: addr})
	if err != nil {
		t.Skipf("skipping redis integration test: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func freshGame(t *testing.T, rdb *redis.Client) string {
	t.Helper()
	id := "test-" + uuid.NewString()
	t.Cleanup(func() { rdb.Del(context.Background(), gameKey(id), rosterKey(id)) })
	return id
}

func TestStoreCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	rdb := connect(t)
	store := NewStore(rdb)
	id := freshGame(t, rdb)

	_, _, err := store.Load(ctx, id)
	assert.ErrorIs(t, err, ports.ErrGameNotFound)

	v1, err := store.Create(ctx, id, &domain.GameState{GameID: id, Round: 1})
	require.NoError(t, err)
	_, err = store.Create(ctx, id, &domain.GameState{GameID: id})
	assert.ErrorIs(t, err, domain.ErrConflict)

	v2, err := store.CommitIfUnchanged(ctx, id, v1, &domain.GameState{GameID: id, Round: 2})
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)

	_, err = store.CommitIfUnchanged(ctx, id, v1, &domain.GameState{GameID: id, Round: 3})
	assert.ErrorIs(t, err, domain.ErrConflict)

	st, version, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, v2, version)
	assert.Equal(t, 2, st.Round)
}

func TestStoreConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	rdb := connect(t)
	store := NewStore(rdb)
	id := freshGame(t, rdb)

	v1, err := store.Create(ctx, id, &domain.GameState{GameID: id, Round: 1})
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(round int) {
			defer wg.Done()
			_, err := store.CommitIfUnchanged(ctx, id, v1, &domain.GameState{GameID: id, Round: round})
			errs <- err
		}(i + 2)
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrConflict)
	}
	assert.Equal(t, 1, wins)
}

func TestDirectory(t *testing.T) {
	ctx := context.Background()
	rdb := connect(t)
	dir := NewDirectory(rdb)
	id := freshGame(t, rdb)

	require.NoError(t, dir.Register(ctx, id, []domain.Seat{
		{PlayerID: "b", Team: domain.TeamTwo, TurnOrder: 1},
		{PlayerID: "a", Team: domain.TeamOne, TurnOrder: 0},
	}))

	seats, err := dir.OrderedPlayers(ctx, id)
	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.Equal(t, "a", seats[0].PlayerID)

	team, err := dir.TeamOf(ctx, id, "b")
	require.NoError(t, err)
	assert.Equal(t, domain.TeamTwo, team)

	_, err = dir.TeamOf(ctx, id, "zed")
	assert.ErrorIs(t, err, domain.ErrNotInGame)
}
