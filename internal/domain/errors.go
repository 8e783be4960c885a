package domain

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks. The typed errors below carry the details.
var (
	ErrWrongTurn     = errors.New("not the player's turn")
	ErrWrongStep     = errors.New("action not allowed at this turn step")
	ErrInvalidMeld   = errors.New("invalid meld")
	ErrMissingTile   = errors.New("tile not in hand")
	ErrEmptyPile     = errors.New("pile is empty")
	ErrForbidden     = errors.New("action forbidden")
	ErrConfiguration = errors.New("invalid round configuration")
	ErrConflict      = errors.New("game state changed concurrently")
	ErrNotInGame     = errors.New("player not in game")
)

type WrongTurnError struct {
	Expected string
	Actual   string
}

func (e *WrongTurnError) Error() string {
	return fmt.Sprintf("wrong turn: expected %s, got %s", e.Expected, e.Actual)
}

func (e *WrongTurnError) Is(target error) bool { return target == ErrWrongTurn }

type WrongStepError struct {
	Expected []TurnStep
	Actual   TurnStep
}

func (e *WrongStepError) Error() string {
	return fmt.Sprintf("wrong step: expected %v, got %s", e.Expected, e.Actual)
}

func (e *WrongStepError) Is(target error) bool { return target == ErrWrongStep }

type InvalidMeldError struct {
	Tiles  []Tile
	Reason string
}

func (e *InvalidMeldError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid meld %v: %s", e.Tiles, e.Reason)
	}
	return fmt.Sprintf("invalid meld %v", e.Tiles)
}

func (e *InvalidMeldError) Is(target error) bool { return target == ErrInvalidMeld }

type MissingTileError struct {
	Tile Tile
	// Index is set instead of Tile when a discard named a hand position.
	Index *int
}

func (e *MissingTileError) Error() string {
	if e.Index != nil {
		return fmt.Sprintf("no tile at hand index %d", *e.Index)
	}
	return fmt.Sprintf("tile %s not in hand", e.Tile)
}

func (e *MissingTileError) Is(target error) bool { return target == ErrMissingTile }

type EmptyPileError struct {
	Pile DrawSource
}

func (e *EmptyPileError) Error() string {
	return fmt.Sprintf("%s pile is empty", e.Pile)
}

func (e *EmptyPileError) Is(target error) bool { return target == ErrEmptyPile }

// ForbiddenError is returned when a player touches the other team's melds.
type ForbiddenError struct {
	PlayerTeam Team
	TargetTeam Team
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("team %d cannot modify melds of team %d", e.PlayerTeam, e.TargetTeam)
}

func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid round configuration: " + e.Reason
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// ConflictError means the commit lost a race; the caller should reload and retry.
type ConflictError struct {
	GameID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("game %s was modified concurrently", e.GameID)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

type NotInGameError struct {
	GameID   string
	PlayerID string
}

func (e *NotInGameError) Error() string {
	return fmt.Sprintf("player %s is not in game %s", e.PlayerID, e.GameID)
}

func (e *NotInGameError) Is(target error) bool { return target == ErrNotInGame }
