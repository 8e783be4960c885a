package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"sync"
	"testing"

	"burako/internal/domain"
	"burako/internal/logging"
	"burako/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type storedObject struct {
	value   string
	version int
}

// fakeNakama implements the storage and notification calls with Nakama's version rules:
// "" writes unconditionally, "*" only creates, anything else must match.
type fakeNakama struct {
	runtime.NakamaModule

	mu            sync.Mutex
	objects       map[string]storedObject
	notifications []*runtime.NotificationSend
	sendErr       error
}

func newFakeNakama() *fakeNakama {
	return &fakeNakama{objects: make(map[string]storedObject)}
}

func objectKey(collection, key, userID string) string {
	return collection + "/" + key + "/" + userID
}

func (f *fakeNakama) StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*api.StorageObject
	for _, r := range reads {
		obj, ok := f.objects[objectKey(r.Collection, r.Key, r.UserID)]
		if !ok {
			continue
		}
		out = append(out, &api.StorageObject{
			Collection: r.Collection,
			Key:        r.Key,
			UserId:     r.UserID,
			Value:      obj.value,
			Version:    strconv.Itoa(obj.version),
		})
	}
	return out, nil
}

func (f *fakeNakama) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acks := make([]*api.StorageObjectAck, 0, len(writes))
	for _, w := range writes {
		k := objectKey(w.Collection, w.Key, w.UserID)
		cur, exists := f.objects[k]
		switch {
		case w.Version == "":
		case w.Version == "*":
			if exists {
				return nil, runtime.ErrStorageRejectedVersion
			}
		case !exists || strconv.Itoa(cur.version) != w.Version:
			return nil, runtime.ErrStorageRejectedVersion
		}
		next := storedObject{value: w.Value, version: cur.version + 1}
		f.objects[k] = next
		acks = append(acks, &api.StorageObjectAck{
			Collection: w.Collection,
			Key:        w.Key,
			UserId:     w.UserID,
			Version:    strconv.Itoa(next.version),
		})
	}
	return acks, nil
}

func (f *fakeNakama) NotificationsSend(ctx context.Context, notifications []*runtime.NotificationSend) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.notifications = append(f.notifications, notifications...)
	return nil
}

func (f *fakeNakama) notificationsFor(userID string) []*runtime.NotificationSend {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*runtime.NotificationSend
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func userCtx(userID string) context.Context {
	return context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, userID)
}

func testHandlers() *Handlers {
	h := NewHandlers(500, logging.NewWithWriter(io.Discard, "test", "error"))
	h.newRng = func() *rand.Rand { return rand.New(rand.NewSource(7)) }
	return h
}

func codeOf(t *testing.T, err error) int {
	t.Helper()
	var rErr *runtime.Error
	if !errors.As(err, &rErr) {
		t.Fatalf("expected *runtime.Error, got %T: %v", err, err)
	}
	return rErr.Code
}

func decodeResponse(t *testing.T, raw string) StateResponse {
	t.Helper()
	var resp StateResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("bad response %q: %v", raw, err)
	}
	return resp
}

func createTwoPlayerGame(t *testing.T, h *Handlers, nk *fakeNakama) StateResponse {
	t.Helper()
	payload := `{"game_id":"g1","participants":2,"players":[{"player_id":"alice","team":1},{"player_id":"bob","team":2}]}`
	raw, err := h.rpcCreateRound(userCtx("alice"), noopLogger{}, nil, nk, payload)
	if err != nil {
		t.Fatalf("create round: %v", err)
	}
	return decodeResponse(t, raw)
}

func TestStateStoreCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	nk := newFakeNakama()
	store := NewStateStore(nk)
	st := &domain.GameState{GameID: "g1", Round: 1}

	if _, _, err := store.Load(ctx, "g1"); !errors.Is(err, ports.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
	v1, err := store.Create(ctx, "g1", st)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, "g1", st); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on second create, got %v", err)
	}

	st.Round = 2
	v2, err := store.CommitIfUnchanged(ctx, "g1", v1, st)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if v2 == v1 {
		t.Fatalf("version did not change: %s", v2)
	}
	if _, err := store.CommitIfUnchanged(ctx, "g1", v1, st); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on stale commit, got %v", err)
	}
	if _, err := store.CommitIfUnchanged(ctx, "g1", "", st); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on empty version, got %v", err)
	}

	loaded, version, err := store.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if version != v2 || loaded.Round != 2 {
		t.Fatalf("loaded round %d at %s, want round 2 at %s", loaded.Round, version, v2)
	}
}

func TestDirectoryTeamOf(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory(newFakeNakama())
	seats := []domain.Seat{
		{PlayerID: "b", Team: domain.TeamTwo, TurnOrder: 1},
		{PlayerID: "a", Team: domain.TeamOne, TurnOrder: 0},
	}
	if err := dir.Register(ctx, "g1", seats); err != nil {
		t.Fatalf("register: %v", err)
	}
	ordered, err := dir.OrderedPlayers(ctx, "g1")
	if err != nil {
		t.Fatalf("ordered players: %v", err)
	}
	if ordered[0].PlayerID != "a" || ordered[1].PlayerID != "b" {
		t.Fatalf("roster not in turn order: %+v", ordered)
	}
	team, err := dir.TeamOf(ctx, "g1", "b")
	if err != nil || team != domain.TeamTwo {
		t.Fatalf("TeamOf(b) = %v, %v", team, err)
	}
	if _, err := dir.TeamOf(ctx, "g1", "z"); !errors.Is(err, domain.ErrNotInGame) {
		t.Fatalf("expected ErrNotInGame, got %v", err)
	}
	if _, err := dir.OrderedPlayers(ctx, "missing"); !errors.Is(err, ports.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestRpcCreateRound(t *testing.T) {
	h := testHandlers()
	nk := newFakeNakama()
	resp := createTwoPlayerGame(t, h, nk)

	if resp.GameID != "g1" || resp.Version == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(resp.View.Hand) != domain.HandSize {
		t.Fatalf("expected %d tiles in hand, got %d", domain.HandSize, len(resp.View.Hand))
	}
	if resp.View.TurnStep != domain.StepChooseDraw {
		t.Fatalf("expected choose_draw, got %s", resp.View.TurnStep)
	}
	for _, player := range []string{"alice", "bob"} {
		if got := len(nk.notificationsFor(player)); got != 1 {
			t.Fatalf("%s got %d notifications, want 1", player, got)
		}
	}

	_, err := h.rpcCreateRound(userCtx("alice"), noopLogger{}, nil, nk,
		`{"game_id":"g1","participants":2,"players":[{"player_id":"alice","team":1},{"player_id":"bob","team":2}]}`)
	if code := codeOf(t, err); code != codeAborted {
		t.Fatalf("expected aborted for existing game, got %d", code)
	}
}

// A create that loses the race for the roster must not overwrite it or write a state.
func TestRpcCreateRoundKeepsExistingRoster(t *testing.T) {
	h := testHandlers()
	nk := newFakeNakama()
	ctx := context.Background()
	dir := NewDirectory(nk)
	winner := []domain.Seat{
		{PlayerID: "alice", Team: domain.TeamOne, TurnOrder: 0},
		{PlayerID: "carol", Team: domain.TeamTwo, TurnOrder: 1},
	}
	if err := dir.RegisterNew(ctx, "g1", winner); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := dir.RegisterNew(ctx, "g1", winner); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on second register, got %v", err)
	}

	_, err := h.rpcCreateRound(userCtx("alice"), noopLogger{}, nil, nk,
		`{"game_id":"g1","participants":2,"players":[{"player_id":"alice","team":1},{"player_id":"bob","team":2}]}`)
	if code := codeOf(t, err); code != codeAborted {
		t.Fatalf("expected aborted, got %d (%v)", code, err)
	}
	team, err := dir.TeamOf(ctx, "g1", "carol")
	if err != nil || team != domain.TeamTwo {
		t.Fatalf("roster was overwritten: TeamOf(carol) = %v, %v", team, err)
	}
	if _, _, err := NewStateStore(nk).Load(ctx, "g1"); !errors.Is(err, ports.ErrGameNotFound) {
		t.Fatalf("expected no state for g1, got %v", err)
	}
}

func TestRpcCreateRoundRejects(t *testing.T) {
	h := testHandlers()
	tests := []struct {
		name    string
		user    string
		payload string
		code    int
	}{
		{"caller not seated", "carol", `{"participants":2,"players":[{"player_id":"alice","team":1},{"player_id":"bob","team":2}]}`, codePermissionDenied},
		{"bad participants", "alice", `{"participants":3,"players":[{"player_id":"alice","team":1},{"player_id":"bob","team":2},{"player_id":"c","team":1}]}`, codeInvalidArgument},
		{"unbalanced teams", "alice", `{"participants":2,"players":[{"player_id":"alice","team":1},{"player_id":"bob","team":1}]}`, codeInvalidArgument},
		{"malformed", "alice", `{"participants":`, codeInvalidArgument},
		{"empty", "alice", ``, codeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.rpcCreateRound(userCtx(tt.user), noopLogger{}, nil, newFakeNakama(), tt.payload)
			if code := codeOf(t, err); code != tt.code {
				t.Fatalf("expected code %d, got %d (%v)", tt.code, code, err)
			}
		})
	}

	if _, err := h.rpcCreateRound(context.Background(), noopLogger{}, nil, newFakeNakama(), `{}`); codeOf(t, err) != codeUnauthenticated {
		t.Fatalf("expected unauthenticated without a user, got %v", err)
	}
}

func TestRpcDrawKeepsDeckTilesPrivate(t *testing.T) {
	h := testHandlers()
	nk := newFakeNakama()
	created := createTwoPlayerGame(t, h, nk)
	mover := created.View.TurnPlayer
	other := "alice"
	if mover == "alice" {
		other = "bob"
	}

	_, err := h.rpcDraw(userCtx(other), noopLogger{}, nil, nk, `{"game_id":"g1","source":"deck"}`)
	if code := codeOf(t, err); code != codeFailedPrecondition {
		t.Fatalf("expected failed precondition for out-of-turn draw, got %d", code)
	}

	raw, err := h.rpcDraw(userCtx(mover), noopLogger{}, nil, nk, `{"game_id":"g1","source":"deck"}`)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	resp := decodeResponse(t, raw)
	if len(resp.View.Hand) != domain.HandSize+1 || resp.View.TurnStep != domain.StepMelds {
		t.Fatalf("unexpected view after draw: hand %d step %s", len(resp.View.Hand), resp.View.TurnStep)
	}
	if resp.Version == created.Version {
		t.Fatalf("version not advanced")
	}

	if tiles := drawnTiles(t, nk.notificationsFor(mover)); tiles != 1 {
		t.Fatalf("drawing player should see 1 drawn tile, saw %d", tiles)
	}
	if tiles := drawnTiles(t, nk.notificationsFor(other)); tiles != 0 {
		t.Fatalf("other player should not see drawn tiles, saw %d", tiles)
	}
}

// drawnTiles counts tiles revealed in tiles_drawn events of the latest notification.
func drawnTiles(t *testing.T, notes []*runtime.NotificationSend) int {
	t.Helper()
	if len(notes) == 0 {
		t.Fatalf("no notifications")
	}
	last := notes[len(notes)-1]
	events, _ := last.Content["events"].([]interface{})
	count := 0
	for _, raw := range events {
		ev, _ := raw.(map[string]interface{})
		if ev["kind"] != "tiles_drawn" {
			continue
		}
		payload, _ := ev["payload"].(map[string]interface{})
		tiles, _ := payload["tiles"].([]interface{})
		count += len(tiles)
	}
	return count
}

func TestRpcTurnSequence(t *testing.T) {
	h := testHandlers()
	nk := newFakeNakama()
	created := createTwoPlayerGame(t, h, nk)
	mover := created.View.TurnPlayer
	game := `{"game_id":"g1"}`

	if _, err := h.rpcPass(userCtx(mover), noopLogger{}, nil, nk, game); codeOf(t, err) != codeFailedPrecondition {
		t.Fatalf("pass before draw should fail with failed precondition, got %v", err)
	}
	if _, err := h.rpcDraw(userCtx(mover), noopLogger{}, nil, nk, `{"game_id":"g1","source":"deck"}`); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if _, err := h.rpcPass(userCtx(mover), noopLogger{}, nil, nk, game); err != nil {
		t.Fatalf("pass: %v", err)
	}
	raw, err := h.rpcDiscard(userCtx(mover), noopLogger{}, nil, nk, `{"game_id":"g1","tile_index":0}`)
	if err != nil {
		t.Fatalf("discard: %v", err)
	}
	resp := decodeResponse(t, raw)
	if resp.View.TurnPlayer == mover || resp.View.TurnStep != domain.StepChooseDraw {
		t.Fatalf("turn did not pass: %+v", resp.View)
	}
	if len(resp.View.DiscardPile) != 1 || len(resp.View.Hand) != domain.HandSize {
		t.Fatalf("unexpected piles after discard: discard %d hand %d", len(resp.View.DiscardPile), len(resp.View.Hand))
	}

	stateRaw, err := h.rpcState(userCtx(resp.View.TurnPlayer), noopLogger{}, nil, nk, game)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if view := decodeResponse(t, stateRaw); view.Version != resp.Version {
		t.Fatalf("state version %s, want %s", view.Version, resp.Version)
	}

	if _, err := h.rpcState(userCtx("mallory"), noopLogger{}, nil, nk, game); codeOf(t, err) != codePermissionDenied {
		t.Fatalf("outsider state should be permission denied, got %v", err)
	}
	if _, err := h.rpcState(userCtx(mover), noopLogger{}, nil, nk, `{"game_id":"nope"}`); codeOf(t, err) != codeNotFound {
		t.Fatalf("unknown game should be not found, got %v", err)
	}
	if _, err := h.rpcSubmitMeld(userCtx(mover), noopLogger{}, nil, nk, `{"tiles":[]}`); codeOf(t, err) != codeInvalidArgument {
		t.Fatalf("missing game id should be invalid argument, got %v", err)
	}
}

func TestRpcSurvivesNotificationFailure(t *testing.T) {
	h := testHandlers()
	nk := newFakeNakama()
	created := createTwoPlayerGame(t, h, nk)
	nk.sendErr = fmt.Errorf("socket closed")

	if _, err := h.rpcDraw(userCtx(created.View.TurnPlayer), noopLogger{}, nil, nk, `{"game_id":"g1","source":"deck"}`); err != nil {
		t.Fatalf("draw should commit despite notification failure: %v", err)
	}
}

func TestToRuntimeError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{&domain.WrongTurnError{Expected: "a", Actual: "b"}, codeFailedPrecondition},
		{&domain.WrongStepError{Actual: domain.StepMelds}, codeFailedPrecondition},
		{&domain.EmptyPileError{Pile: domain.SourceDiscard}, codeFailedPrecondition},
		{&domain.InvalidMeldError{Reason: "short"}, codeInvalidArgument},
		{&domain.MissingTileError{Tile: domain.Joker()}, codeInvalidArgument},
		{&domain.ConfigurationError{Reason: "bad"}, codeInvalidArgument},
		{&domain.ForbiddenError{PlayerTeam: domain.TeamOne, TargetTeam: domain.TeamTwo}, codePermissionDenied},
		{&domain.NotInGameError{GameID: "g", PlayerID: "p"}, codePermissionDenied},
		{fmt.Errorf("commit: %w", &domain.ConflictError{GameID: "g"}), codeAborted},
		{fmt.Errorf("load: %w", ports.ErrGameNotFound), codeNotFound},
		{errors.New("disk on fire"), codeInternal},
	}
	for _, tt := range tests {
		if code := codeOf(t, toRuntimeError(tt.err)); code != tt.code {
			t.Errorf("%v: expected code %d, got %d", tt.err, tt.code, code)
		}
	}
	if toRuntimeError(nil) != nil {
		t.Errorf("nil error should stay nil")
	}
}

func TestTargetScoreFromEnv(t *testing.T) {
	tests := []struct {
		env  map[string]string
		want int
	}{
		{nil, 3000},
		{map[string]string{EnvTargetScore: "1500"}, 1500},
		{map[string]string{EnvTargetScore: "-4"}, 3000},
		{map[string]string{EnvTargetScore: "lots"}, 3000},
	}
	for _, tt := range tests {
		if got := targetScoreFromEnv(tt.env, noopLogger{}); got != tt.want {
			t.Errorf("targetScoreFromEnv(%v) = %d, want %d", tt.env, got, tt.want)
		}
	}
}
