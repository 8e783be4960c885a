package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"burako/internal/domain"
	"burako/internal/ports"

	"github.com/charmbracelet/log"
)

// Service runs Burako turns against stored game state. Every action loads the state,
// applies the rules to a copy and commits it only if nobody else committed in between.
type Service struct {
	store     ports.StateStore
	directory ports.PlayerDirectory
	notifier  ports.Notifier
	archive   ports.HandArchive
	logger    *log.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option customizes a Service.
type Option func(*Service)

// WithArchive records every scored hand.
func WithArchive(a ports.HandArchive) Option {
	return func(s *Service) { s.archive = a }
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService constructs a Service with provided rng or a time-seeded default.
// A nil notifier drops notifications.
func NewService(store ports.StateStore, directory ports.PlayerDirectory, notifier ports.Notifier, rng *rand.Rand, opts ...Option) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Service{
		store:     store,
		directory: directory,
		notifier:  notifier,
		rng:       rng,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ActionResult is what a committed action produced.
type ActionResult struct {
	State   *domain.GameState
	Version ports.Version
	Status  ports.Status
	Events  []Event
	// Hand is set when the action ended a hand.
	Hand *domain.HandResult
}

// MeldTarget names the team whose meld is extended, either directly or through one of
// its players.
type MeldTarget struct {
	Team     domain.Team
	PlayerID string
}

// CreateRound deals the first hand of gameID to the players registered in the directory.
func (s *Service) CreateRound(ctx context.Context, gameID string, cfg domain.RoundConfig) (*ActionResult, error) {
	if cfg.TargetScore == 0 {
		cfg.TargetScore = DefaultTargetScore
	}
	seats, err := s.directory.OrderedPlayers(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load players of game %s: %w", gameID, err)
	}
	st, err := s.deal(gameID, cfg, seats)
	if err != nil {
		return nil, err
	}
	version, err := s.store.Create(ctx, gameID, st)
	if err != nil {
		return nil, err
	}
	events := []Event{{
		Kind: EventRoundStarted,
		Payload: RoundStartedPayload{
			Round:       st.Round,
			Seats:       st.Seats,
			FirstPlayer: st.TurnPlayer,
			TargetScore: cfg.TargetScore,
		},
	}}
	res := &ActionResult{State: st, Version: version, Status: ports.StatusInProgress, Events: events}
	s.logger.Info("round created", "game", gameID, "players", len(seats), "target", cfg.TargetScore)
	s.publish(ctx, gameID, res)
	return res, nil
}

// ChooseDraw draws from the deck or takes the whole discard pile.
func (s *Service) ChooseDraw(ctx context.Context, gameID, player string, source domain.DrawSource) (*ActionResult, error) {
	return s.apply(ctx, gameID, player, func(st *domain.GameState) (domain.Outcome, []Event, error) {
		out, err := st.Draw(player, source)
		if err != nil {
			return out, nil, err
		}
		payload := TilesDrawnPayload{PlayerID: player, Source: source, Count: len(out.Drawn)}
		if source == domain.SourceDiscard {
			payload.Tiles = out.Drawn
			return out, []Event{{Kind: EventTilesDrawn, Payload: payload}}, nil
		}
		private := payload
		private.Tiles = out.Drawn
		return out, []Event{
			{Kind: EventTilesDrawn, Payload: private, Recipients: []string{player}},
			{Kind: EventTilesDrawn, Payload: payload, Recipients: s.othersOf(st, player)},
		}, nil
	})
}

// SubmitMelds lays a new meld for the player's team.
func (s *Service) SubmitMelds(ctx context.Context, gameID, player string, tiles []domain.Tile) (*ActionResult, error) {
	return s.apply(ctx, gameID, player, func(st *domain.GameState) (domain.Outcome, []Event, error) {
		out, err := st.SubmitMeld(player, tiles)
		if err != nil {
			return out, nil, err
		}
		return out, []Event{meldEvent(EventMeldLaid, player, out)}, nil
	})
}

// AddTilesToMeld extends a meld of the player's own team.
func (s *Service) AddTilesToMeld(ctx context.Context, gameID, player string, target MeldTarget, index int, tiles []domain.Tile) (*ActionResult, error) {
	return s.apply(ctx, gameID, player, func(st *domain.GameState) (domain.Outcome, []Event, error) {
		if err := st.CheckTurn(player, domain.StepMelds); err != nil {
			return domain.Outcome{}, nil, err
		}
		team, err := s.resolveTarget(ctx, gameID, target)
		if err != nil {
			return domain.Outcome{}, nil, err
		}
		out, err := st.AddToMeld(player, team, index, tiles)
		if err != nil {
			return out, nil, err
		}
		return out, []Event{meldEvent(EventMeldExtended, player, out)}, nil
	})
}

// DiscardTile ends the player's turn.
func (s *Service) DiscardTile(ctx context.Context, gameID, player string, sel domain.TileSelector) (*ActionResult, error) {
	return s.apply(ctx, gameID, player, func(st *domain.GameState) (domain.Outcome, []Event, error) {
		out, err := st.Discard(player, sel)
		if err != nil {
			return out, nil, err
		}
		return out, []Event{{
			Kind: EventTileDiscarded,
			Payload: TileDiscardedPayload{
				PlayerID:       player,
				Tile:           *out.Discarded,
				NextTurnUserID: st.TurnPlayer,
			},
		}}, nil
	})
}

// PassTurn skips melding; the player must still discard.
func (s *Service) PassTurn(ctx context.Context, gameID, player string) (*ActionResult, error) {
	return s.apply(ctx, gameID, player, func(st *domain.GameState) (domain.Outcome, []Event, error) {
		out, err := st.Pass(player)
		if err != nil {
			return out, nil, err
		}
		return out, []Event{{Kind: EventTurnPassed, Payload: TurnPassedPayload{PlayerID: player}}}, nil
	})
}

// PlayerView returns what player may see of gameID.
func (s *Service) PlayerView(ctx context.Context, gameID, player string) (domain.PlayerView, ports.Version, error) {
	st, version, err := s.load(ctx, gameID)
	if err != nil {
		return domain.PlayerView{}, "", err
	}
	view, err := st.ViewFor(player)
	return view, version, err
}

type action func(st *domain.GameState) (domain.Outcome, []Event, error)

// apply is the load, mutate copy, commit cycle shared by every action. A lost commit is
// returned as a ConflictError and never retried here.
func (s *Service) apply(ctx context.Context, gameID, player string, act action) (*ActionResult, error) {
	current, version, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	next := current.Clone()
	out, events, err := act(next)
	if err != nil {
		return nil, err
	}

	res := &ActionResult{State: next, Status: ports.StatusInProgress, Events: events}
	if out.ReserveTaken != domain.NoTeam {
		res.Events = append(res.Events, Event{
			Kind: EventReserveTaken,
			Payload: ReserveTakenPayload{
				PlayerID: player,
				Team:     out.ReserveTaken,
				Size:     domain.ReserveSize(len(next.Seats)),
			},
		})
	}
	if out.HandOver {
		res.State = s.finishHand(next, out.Closer, res)
	}

	newVersion, err := s.store.CommitIfUnchanged(ctx, gameID, version, res.State)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.logger.Debug("commit lost", "game", gameID, "version", version)
			return nil, err
		}
		return nil, fmt.Errorf("commit game %s: %w", gameID, err)
	}
	res.Version = newVersion

	s.publish(ctx, gameID, res)
	if res.Hand != nil && s.archive != nil {
		if err := s.archive.RecordHand(ctx, gameID, *res.Hand); err != nil {
			s.logger.Warn("archive hand failed", "game", gameID, "round", res.Hand.Round, "err", err)
		}
	}
	return res, nil
}

// finishHand scores the hand and either finishes the game or deals the next hand.
func (s *Service) finishHand(st *domain.GameState, closer domain.Team, res *ActionResult) *domain.GameState {
	hand := st.SettleHand(closer)
	res.Hand = &hand
	res.Events = append(res.Events, Event{Kind: EventHandScored, Payload: hand})

	if st.Phase == domain.PhaseFinished {
		res.Status = ports.StatusFinished
		res.Events = append(res.Events, Event{
			Kind:    EventGameFinished,
			Payload: GameFinishedPayload{Winner: st.Winner, Scores: st.Scores},
		})
		s.logger.Info("game finished", "game", st.GameID, "winner", st.Winner, "scores", st.Scores)
		return st
	}

	s.rngMu.Lock()
	next := domain.NextHand(st, s.rng)
	s.rngMu.Unlock()
	res.Status = ports.StatusNewHand
	res.Events = append(res.Events, Event{
		Kind: EventNewHand,
		Payload: RoundStartedPayload{
			Round:       next.Round,
			Seats:       next.Seats,
			FirstPlayer: next.TurnPlayer,
			TargetScore: next.Config.TargetScore,
		},
	})
	s.logger.Info("new hand dealt", "game", st.GameID, "round", next.Round, "closer", closer)
	return next
}

func (s *Service) deal(gameID string, cfg domain.RoundConfig, seats []domain.Seat) (*domain.GameState, error) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return domain.Deal(gameID, cfg, seats, s.rng)
}

func (s *Service) load(ctx context.Context, gameID string) (*domain.GameState, ports.Version, error) {
	st, version, err := s.store.Load(ctx, gameID)
	if err != nil {
		return nil, "", fmt.Errorf("load game %s: %w", gameID, err)
	}
	return st, version, nil
}

func (s *Service) resolveTarget(ctx context.Context, gameID string, target MeldTarget) (domain.Team, error) {
	if target.PlayerID == "" {
		return target.Team, nil
	}
	return s.directory.TeamOf(ctx, gameID, target.PlayerID)
}

func (s *Service) publish(ctx context.Context, gameID string, res *ActionResult) {
	if s.notifier == nil {
		return
	}
	n := ports.Notification{
		GameID:  gameID,
		Version: res.Version,
		Status:  res.Status,
		Round:   res.State.Round,
		Scores:  res.State.Scores,
		Winner:  res.State.Winner,
		Events:  toRecords(res.Events),
		State:   res.State,
	}
	if err := s.notifier.Publish(ctx, n); err != nil {
		s.logger.Warn("notification failed", "game", gameID, "version", res.Version, "err", err)
	}
}

func (s *Service) othersOf(st *domain.GameState, player string) []string {
	out := make([]string, 0, len(st.Seats)-1)
	for _, seat := range st.Seats {
		if seat.PlayerID != player {
			out = append(out, seat.PlayerID)
		}
	}
	return out
}

func meldEvent(kind EventKind, player string, out domain.Outcome) Event {
	return Event{
		Kind: kind,
		Payload: MeldPayload{
			PlayerID: player,
			Team:     out.MeldTeam,
			Index:    out.MeldIndex,
			Meld:     *out.Meld,
			Added:    out.Added,
		},
	}
}
