package main

import (
	"context"
	"errors"

	"burako/internal/app"
	"burako/internal/domain"
	"burako/internal/ports"
)

// playSummary is what the play command prints.
type playSummary struct {
	GameID string              `json:"game_id"`
	Turns  int                 `json:"turns"`
	Phase  domain.Phase        `json:"phase"`
	Scores map[domain.Team]int `json:"scores"`
	Winner domain.Team         `json:"winner,omitempty"`
	Hands  []domain.HandResult `json:"hands"`
}

// autoplay drives every seat until the game ends or maxTurns turns were played.
// observer is any seated player and is only used to find whose turn it is.
func autoplay(ctx context.Context, svc *app.Service, gameID, observer string, maxTurns int) (*playSummary, error) {
	summary := &playSummary{GameID: gameID}
	for summary.Turns < maxTurns {
		table, _, err := svc.PlayerView(ctx, gameID, observer)
		if err != nil {
			return nil, err
		}
		if table.Phase == domain.PhaseFinished {
			break
		}
		hands, err := playTurn(ctx, svc, gameID, table.TurnPlayer)
		if err != nil {
			return nil, err
		}
		summary.Hands = append(summary.Hands, hands...)
		summary.Turns++
	}

	final, _, err := svc.PlayerView(ctx, gameID, observer)
	if err != nil {
		return nil, err
	}
	summary.Phase = final.Phase
	summary.Scores = final.Scores
	summary.Winner = final.Winner
	return summary, nil
}

// playTurn draws, lays every meld it can find and discards the first tile in hand.
// It returns the hands scored during the turn.
func playTurn(ctx context.Context, svc *app.Service, gameID, player string) ([]domain.HandResult, error) {
	var scored []domain.HandResult
	view, _, err := svc.PlayerView(ctx, gameID, player)
	if err != nil {
		return nil, err
	}

	source := domain.SourceDeck
	if len(view.DiscardPile) >= 4 || (view.CentralCount == 0 && len(view.DiscardPile) > 0) {
		source = domain.SourceDiscard
	}
	res, err := svc.ChooseDraw(ctx, gameID, player, source)
	if err != nil {
		return nil, err
	}

	for stillMelding(res, player) {
		view, err = res.State.ViewFor(player)
		if err != nil {
			return nil, err
		}
		next, err := meldOnce(ctx, svc, gameID, player, view)
		if err != nil {
			return nil, err
		}
		if next == nil {
			break
		}
		res = next
		if res.Hand != nil {
			scored = append(scored, *res.Hand)
		}
	}
	if !stillMelding(res, player) {
		return scored, nil
	}

	res, err = svc.DiscardTile(ctx, gameID, player, domain.TileSelector{Index: new(int)})
	if err != nil {
		return nil, err
	}
	if res.Hand != nil {
		scored = append(scored, *res.Hand)
	}
	return scored, nil
}

func stillMelding(res *app.ActionResult, player string) bool {
	return res.Status == ports.StatusInProgress &&
		res.State.TurnPlayer == player &&
		res.State.TurnStep == domain.StepMelds
}

// meldOnce lays one new meld or extends one of the team's melds. It returns nil when
// nothing in hand fits.
func meldOnce(ctx context.Context, svc *app.Service, gameID, player string, view domain.PlayerView) (*app.ActionResult, error) {
	if tiles := findMeld(view.Hand); tiles != nil {
		return svc.SubmitMelds(ctx, gameID, player, tiles)
	}
	for i, meld := range view.Melds[view.Team] {
		for _, tile := range view.Hand {
			combined := append(append([]domain.Tile(nil), meld.Tiles...), tile)
			if !domain.IsValidMeld(combined) {
				continue
			}
			res, err := svc.AddTilesToMeld(ctx, gameID, player, app.MeldTarget{Team: view.Team}, i, []domain.Tile{tile})
			if errors.Is(err, domain.ErrInvalidMeld) {
				continue
			}
			return res, err
		}
	}
	return nil, nil
}

// findMeld returns the first three tiles of hand that form a valid meld.
func findMeld(hand []domain.Tile) []domain.Tile {
	for i := 0; i < len(hand); i++ {
		for j := i + 1; j < len(hand); j++ {
			for k := j + 1; k < len(hand); k++ {
				tiles := []domain.Tile{hand[i], hand[j], hand[k]}
				if domain.IsValidMeld(tiles) {
					return tiles
				}
			}
		}
	}
	return nil
}
