package app

import (
	"burako/internal/domain"
	"burako/internal/ports"
)

// EventKind identifies emitted domain events for dispatch to observers.
type EventKind string

const (
	EventRoundStarted  EventKind = "round_started"
	EventTilesDrawn    EventKind = "tiles_drawn"
	EventMeldLaid      EventKind = "meld_laid"
	EventMeldExtended  EventKind = "meld_extended"
	EventTileDiscarded EventKind = "tile_discarded"
	EventTurnPassed    EventKind = "turn_passed"
	EventReserveTaken  EventKind = "reserve_taken"
	EventHandScored    EventKind = "hand_scored"
	EventNewHand       EventKind = "new_hand"
	EventGameFinished  EventKind = "game_finished"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type RoundStartedPayload struct {
	Round       int           `json:"round"`
	Seats       []domain.Seat `json:"seats"`
	FirstPlayer string        `json:"first_player"`
	TargetScore int           `json:"target_score"`
}

// TilesDrawnPayload carries the drawn tiles only for the drawing player when they came
// from the deck; everyone sees discard pile pickups.
type TilesDrawnPayload struct {
	PlayerID string            `json:"player_id"`
	Source   domain.DrawSource `json:"source"`
	Count    int               `json:"count"`
	Tiles    []domain.Tile     `json:"tiles,omitempty"`
}

type MeldPayload struct {
	PlayerID string        `json:"player_id"`
	Team     domain.Team   `json:"team"`
	Index    int           `json:"index"`
	Meld     domain.Meld   `json:"meld"`
	Added    []domain.Tile `json:"added,omitempty"`
}

type TileDiscardedPayload struct {
	PlayerID       string      `json:"player_id"`
	Tile           domain.Tile `json:"tile"`
	NextTurnUserID string      `json:"next_turn_user_id"`
}

type TurnPassedPayload struct {
	PlayerID string `json:"player_id"`
}

type ReserveTakenPayload struct {
	PlayerID string      `json:"player_id"`
	Team     domain.Team `json:"team"`
	Size     int         `json:"size"`
}

type GameFinishedPayload struct {
	Winner domain.Team         `json:"winner"`
	Scores map[domain.Team]int `json:"scores"`
}

func toRecords(events []Event) []ports.EventRecord {
	out := make([]ports.EventRecord, 0, len(events))
	for _, ev := range events {
		out = append(out, ports.EventRecord{
			Kind:       string(ev.Kind),
			Recipients: ev.Recipients,
			Payload:    ev.Payload,
		})
	}
	return out
}
