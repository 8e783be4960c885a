package domain

// Phase represents the lifecycle stage of a game.
type Phase string

const (
	// PhasePlaying is set while hands are being played.
	PhasePlaying Phase = "playing"
	// PhaseFinished is set once a team reached the target score; the state is frozen.
	PhaseFinished Phase = "finished"
)

// TurnStep is the sub-phase of the current player's turn.
type TurnStep string

const (
	StepChooseDraw TurnStep = "choose_draw"
	StepMelds      TurnStep = "melds"
	StepDiscard    TurnStep = "discard"
	// StepFinished is only reported in errors for actions sent to a finished game.
	StepFinished TurnStep = "finished"
)

// DrawSource is where a player draws from at the start of a turn.
type DrawSource string

const (
	SourceDeck    DrawSource = "deck"
	SourceDiscard DrawSource = "discard"
)

// Team identifies one of the two partnerships.
type Team int

const (
	NoTeam  Team = 0
	TeamOne Team = 1
	TeamTwo Team = 2
)

// Teams lists both teams in order.
var Teams = []Team{TeamOne, TeamTwo}

func (t Team) Valid() bool { return t == TeamOne || t == TeamTwo }

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamOne {
		return TeamTwo
	}
	return TeamOne
}

// Seat places a player in the turn order.
type Seat struct {
	PlayerID  string `json:"player_id"`
	Team      Team   `json:"team"`
	TurnOrder int    `json:"turn_order"`
}

// RoundConfig is fixed when the game is created.
type RoundConfig struct {
	Participants int `json:"participants"`
	TargetScore  int `json:"target_score"`
}

// Meld is a laid-down run or group with the classification it was accepted under.
type Meld struct {
	Tiles []Tile   `json:"tiles"`
	Info  MeldInfo `json:"info"`
}

// LastDrawn records the most recent draw for observers.
type LastDrawn struct {
	By     string     `json:"by"`
	Source DrawSource `json:"source"`
	Tiles  []Tile     `json:"tiles"`
}

// GameState is the authoritative aggregate for one game.
type GameState struct {
	GameID string      `json:"game_id"`
	Round  int         `json:"round"`
	Config RoundConfig `json:"config"`
	Seats  []Seat      `json:"seats"`

	CentralPile  []Tile            `json:"central_pile"`
	DiscardPile  []Tile            `json:"discard_pile"`
	PlayerHands  map[string][]Tile `json:"player_hands"`
	TeamReserves map[Team][]Tile   `json:"team_reserves"`
	Melds        map[Team][]Meld   `json:"melds"`

	TurnPlayer string     `json:"turn_player"`
	TurnStep   TurnStep   `json:"turn_step"`
	Phase      Phase      `json:"phase"`
	LastDrawn  *LastDrawn `json:"last_drawn,omitempty"`

	Scores   map[Team]int `json:"scores"`
	Winner   Team         `json:"winner,omitempty"`
	LastHand *HandResult  `json:"last_hand,omitempty"`
}

// Clone returns a deep copy so that a failed action never touches the loaded state.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Seats = append([]Seat(nil), s.Seats...)
	out.CentralPile = cloneTiles(s.CentralPile)
	out.DiscardPile = cloneTiles(s.DiscardPile)

	out.PlayerHands = make(map[string][]Tile, len(s.PlayerHands))
	for id, hand := range s.PlayerHands {
		out.PlayerHands[id] = cloneTiles(hand)
	}
	out.TeamReserves = make(map[Team][]Tile, len(s.TeamReserves))
	for team, r := range s.TeamReserves {
		out.TeamReserves[team] = cloneTiles(r)
	}
	out.Melds = make(map[Team][]Meld, len(s.Melds))
	for team, melds := range s.Melds {
		cp := make([]Meld, len(melds))
		for i, m := range melds {
			cp[i] = Meld{Tiles: cloneTiles(m.Tiles), Info: m.Info}
		}
		out.Melds[team] = cp
	}
	out.Scores = make(map[Team]int, len(s.Scores))
	for team, v := range s.Scores {
		out.Scores[team] = v
	}
	if s.LastDrawn != nil {
		ld := *s.LastDrawn
		ld.Tiles = cloneTiles(ld.Tiles)
		out.LastDrawn = &ld
	}
	if s.LastHand != nil {
		lh := *s.LastHand
		lh.Teams = make(map[Team]TeamScore, len(s.LastHand.Teams))
		for team, ts := range s.LastHand.Teams {
			lh.Teams[team] = ts
		}
		out.LastHand = &lh
	}
	return &out
}

// TileCount counts every tile held anywhere in the state.
func (s *GameState) TileCount() int {
	n := len(s.CentralPile) + len(s.DiscardPile)
	for _, hand := range s.PlayerHands {
		n += len(hand)
	}
	for _, r := range s.TeamReserves {
		n += len(r)
	}
	for _, melds := range s.Melds {
		for _, m := range melds {
			n += len(m.Tiles)
		}
	}
	return n
}

// SeatOf returns the seat of playerID.
func (s *GameState) SeatOf(playerID string) (Seat, bool) {
	for _, seat := range s.Seats {
		if seat.PlayerID == playerID {
			return seat, true
		}
	}
	return Seat{}, false
}

// TeamOf returns the team of playerID, or NoTeam.
func (s *GameState) TeamOf(playerID string) Team {
	seat, _ := s.SeatOf(playerID)
	return seat.Team
}

// NextPlayer returns the player after playerID in turn order, wrapping around.
func (s *GameState) NextPlayer(playerID string) string {
	for i, seat := range s.Seats {
		if seat.PlayerID == playerID {
			return s.Seats[(i+1)%len(s.Seats)].PlayerID
		}
	}
	return s.Seats[0].PlayerID
}

func cloneTiles(tiles []Tile) []Tile {
	if tiles == nil {
		return nil
	}
	out := make([]Tile, len(tiles))
	copy(out, tiles)
	return out
}
