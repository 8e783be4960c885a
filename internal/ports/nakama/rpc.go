package nakama

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"

	"burako/internal/app"
	"burako/internal/domain"
	"burako/internal/ports"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

// Handlers serves the Burako RPCs. A Service is built per call over the call's
// NakamaModule; all shared state lives in Nakama storage.
type Handlers struct {
	targetScore int
	log         *log.Logger
	// newRng is nil in production, which lets the Service seed from the clock.
	newRng func() *rand.Rand
}

func NewHandlers(targetScore int, logger *log.Logger) *Handlers {
	if targetScore <= 0 {
		targetScore = app.DefaultTargetScore
	}
	return &Handlers{targetScore: targetScore, log: logger}
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer, h *Handlers) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcCreateRound: h.rpcCreateRound,
		RpcDraw:        h.rpcDraw,
		RpcSubmitMeld:  h.rpcSubmitMeld,
		RpcAddToMeld:   h.rpcAddToMeld,
		RpcDiscard:     h.rpcDiscard,
		RpcPass:        h.rpcPass,
		RpcState:       h.rpcState,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handlers) service(nk runtime.NakamaModule, logger runtime.Logger) *app.Service {
	var rng *rand.Rand
	if h.newRng != nil {
		rng = h.newRng()
	}
	return app.NewService(NewStateStore(nk), NewDirectory(nk), NewNotifier(nk, logger), rng, app.WithLogger(h.log))
}

func (h *Handlers) rpcCreateRound(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return "", errNoUser
	}
	var req CreateRoundRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	if req.GameID == "" {
		req.GameID = uuid.NewString()
	}
	if !req.seated(userID) {
		return "", toRuntimeError(&domain.NotInGameError{GameID: req.GameID, PlayerID: userID})
	}
	if req.TargetScore == 0 {
		req.TargetScore = h.targetScore
	}

	store := NewStateStore(nk)
	if _, _, err := store.Load(ctx, req.GameID); err == nil {
		return "", toRuntimeError(&domain.ConflictError{GameID: req.GameID})
	} else if !errors.Is(err, ports.ErrGameNotFound) {
		logger.Error("CreateRound [User:%s]: failed to check game %s: %v", userID, req.GameID, err)
		return "", toRuntimeError(err)
	}
	seats := req.seats()
	if err := domain.ValidateSeats(domain.RoundConfig{Participants: req.Participants, TargetScore: req.TargetScore}, seats); err != nil {
		return "", toRuntimeError(err)
	}
	// A concurrent create for the same id loses here, before the state is written.
	if err := NewDirectory(nk).RegisterNew(ctx, req.GameID, seats); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			logger.Warn("CreateRound [User:%s]: roster of %s already registered", userID, req.GameID)
		} else {
			logger.Error("CreateRound [User:%s]: failed to register roster of %s: %v", userID, req.GameID, err)
		}
		return "", toRuntimeError(err)
	}

	res, err := h.service(nk, logger).CreateRound(ctx, req.GameID, domain.RoundConfig{
		Participants: req.Participants,
		TargetScore:  req.TargetScore,
	})
	if err != nil {
		logger.Warn("CreateRound [User:%s]: %v", userID, err)
		return "", toRuntimeError(err)
	}
	logger.Info("CreateRound [User:%s]: created game %s for %d players", userID, req.GameID, req.Participants)
	return respond(req.GameID, userID, res)
}

func (h *Handlers) rpcDraw(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req drawRequest
	return h.act(ctx, logger, nk, payload, &req, &req.GameID, "Draw", func(svc *app.Service, userID string) (*app.ActionResult, error) {
		return svc.ChooseDraw(ctx, req.GameID, userID, req.Source)
	})
}

func (h *Handlers) rpcSubmitMeld(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req meldRequest
	return h.act(ctx, logger, nk, payload, &req, &req.GameID, "SubmitMeld", func(svc *app.Service, userID string) (*app.ActionResult, error) {
		return svc.SubmitMelds(ctx, req.GameID, userID, req.Tiles)
	})
}

func (h *Handlers) rpcAddToMeld(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req addToMeldRequest
	return h.act(ctx, logger, nk, payload, &req, &req.GameID, "AddToMeld", func(svc *app.Service, userID string) (*app.ActionResult, error) {
		return svc.AddTilesToMeld(ctx, req.GameID, userID, req.Target.toApp(), req.MeldIndex, req.Tiles)
	})
}

func (h *Handlers) rpcDiscard(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req discardRequest
	return h.act(ctx, logger, nk, payload, &req, &req.GameID, "Discard", func(svc *app.Service, userID string) (*app.ActionResult, error) {
		return svc.DiscardTile(ctx, req.GameID, userID, req.selector())
	})
}

func (h *Handlers) rpcPass(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req gameRequest
	return h.act(ctx, logger, nk, payload, &req, &req.GameID, "Pass", func(svc *app.Service, userID string) (*app.ActionResult, error) {
		return svc.PassTurn(ctx, req.GameID, userID)
	})
}

func (h *Handlers) rpcState(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return "", errNoUser
	}
	var req gameRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	if req.GameID == "" {
		return "", errNoGameID
	}
	view, version, err := h.service(nk, logger).PlayerView(ctx, req.GameID, userID)
	if err != nil {
		logger.Debug("State [User:%s]: %v", userID, err)
		return "", toRuntimeError(err)
	}
	return encodeResponse(req.GameID, version, "", view)
}

// act decodes the payload into req, runs fn as the calling user and answers with the
// caller's view of the committed state.
func (h *Handlers) act(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, payload string, req interface{}, gameID *string, name string,
	fn func(svc *app.Service, userID string) (*app.ActionResult, error)) (string, error) {
	userID, ok := callerID(ctx)
	if !ok {
		return "", errNoUser
	}
	if err := decodePayload(payload, req); err != nil {
		return "", err
	}
	if *gameID == "" {
		return "", errNoGameID
	}
	res, err := fn(h.service(nk, logger), userID)
	if err != nil {
		logger.Warn("%s [User:%s]: game %s: %v", name, userID, *gameID, err)
		return "", toRuntimeError(err)
	}
	return respond(*gameID, userID, res)
}

func respond(gameID, userID string, res *app.ActionResult) (string, error) {
	view, err := res.State.ViewFor(userID)
	if err != nil {
		return "", toRuntimeError(err)
	}
	return encodeResponse(gameID, res.Version, res.Status, view)
}

func callerID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	return userID, ok && userID != ""
}
