package nakama

import (
	"encoding/json"

	"burako/internal/app"
	"burako/internal/domain"
	"burako/internal/ports"
)

type playerEntry struct {
	PlayerID string      `json:"player_id"`
	Team     domain.Team `json:"team"`
}

// CreateRoundRequest is the burako_create_round payload. Players are listed in turn order.
type CreateRoundRequest struct {
	GameID       string        `json:"game_id,omitempty"`
	Participants int           `json:"participants"`
	TargetScore  int           `json:"target_score,omitempty"`
	Players      []playerEntry `json:"players"`
}

type gameRequest struct {
	GameID string `json:"game_id"`
}

type drawRequest struct {
	GameID string            `json:"game_id"`
	Source domain.DrawSource `json:"source"`
}

type meldRequest struct {
	GameID string        `json:"game_id"`
	Tiles  []domain.Tile `json:"tiles"`
}

type meldTarget struct {
	Team     domain.Team `json:"team,omitempty"`
	PlayerID string      `json:"player_id,omitempty"`
}

type addToMeldRequest struct {
	GameID    string        `json:"game_id"`
	Target    meldTarget    `json:"target"`
	MeldIndex int           `json:"meld_index"`
	Tiles     []domain.Tile `json:"tiles"`
}

type discardRequest struct {
	GameID    string       `json:"game_id"`
	TileIndex *int         `json:"tile_index,omitempty"`
	Tile      *domain.Tile `json:"tile,omitempty"`
}

// StateResponse is returned by every game RPC: the caller's view at the given version.
type StateResponse struct {
	GameID  string            `json:"game_id"`
	Version ports.Version     `json:"version"`
	Status  ports.Status      `json:"status,omitempty"`
	View    domain.PlayerView `json:"view"`
}

func decodePayload(payload string, into interface{}) error {
	if payload == "" {
		return errBadPayload
	}
	if err := json.Unmarshal([]byte(payload), into); err != nil {
		return errBadPayload
	}
	return nil
}

func (r CreateRoundRequest) seats() []domain.Seat {
	seats := make([]domain.Seat, len(r.Players))
	for i, p := range r.Players {
		seats[i] = domain.Seat{PlayerID: p.PlayerID, Team: p.Team, TurnOrder: i}
	}
	return seats
}

func (r CreateRoundRequest) seated(userID string) bool {
	for _, p := range r.Players {
		if p.PlayerID == userID {
			return true
		}
	}
	return false
}

func (t meldTarget) toApp() app.MeldTarget {
	return app.MeldTarget{Team: t.Team, PlayerID: t.PlayerID}
}

func (r discardRequest) selector() domain.TileSelector {
	return domain.TileSelector{Index: r.TileIndex, Tile: r.Tile}
}

func encodeResponse(gameID string, version ports.Version, status ports.Status, view domain.PlayerView) (string, error) {
	b, err := json.Marshal(StateResponse{GameID: gameID, Version: version, Status: status, View: view})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
