package domain

import (
	"fmt"
	"math/rand"
	"sort"
)

const (
	// StockSize is the number of tiles in play: two copies of every coloured number plus two jokers.
	StockSize     = 4*MaxNumber*copiesPerTile + jokerCount
	HandSize      = 11
	jokerCount    = 2
	copiesPerTile = 2
)

// ReserveSize returns the size of each team reserve for the given participant count.
func ReserveSize(participants int) int {
	if participants == 2 {
		return 22
	}
	return 11
}

// NewStock returns the full ordered stock.
func NewStock() []Tile {
	stock := make([]Tile, 0, StockSize)
	for i := 0; i < copiesPerTile; i++ {
		for _, c := range SuitColors {
			for n := MinNumber; n <= MaxNumber; n++ {
				stock = append(stock, T(c, n))
			}
		}
	}
	for i := 0; i < jokerCount; i++ {
		stock = append(stock, Joker())
	}
	return stock
}

// Shuffle returns a uniformly shuffled copy of tiles.
func Shuffle(tiles []Tile, rng *rand.Rand) []Tile {
	out := cloneTiles(tiles)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// ValidateSeats checks the registered players against the round configuration.
func ValidateSeats(cfg RoundConfig, seats []Seat) error {
	if cfg.Participants != 2 && cfg.Participants != 4 {
		return &ConfigurationError{Reason: fmt.Sprintf("participants must be 2 or 4, got %d", cfg.Participants)}
	}
	if len(seats) != cfg.Participants {
		return &ConfigurationError{Reason: fmt.Sprintf("expected %d players, got %d", cfg.Participants, len(seats))}
	}
	if cfg.TargetScore <= 0 {
		return &ConfigurationError{Reason: "target score must be positive"}
	}
	perTeam := map[Team]int{}
	seen := map[string]bool{}
	for _, seat := range seats {
		if seat.PlayerID == "" || seen[seat.PlayerID] {
			return &ConfigurationError{Reason: fmt.Sprintf("duplicate or empty player id %q", seat.PlayerID)}
		}
		seen[seat.PlayerID] = true
		if !seat.Team.Valid() {
			return &ConfigurationError{Reason: fmt.Sprintf("player %s has no team", seat.PlayerID)}
		}
		perTeam[seat.Team]++
	}
	if perTeam[TeamOne] != cfg.Participants/2 || perTeam[TeamTwo] != cfg.Participants/2 {
		return &ConfigurationError{Reason: "teams are not balanced"}
	}
	return nil
}

// Deal builds the first hand of a game: 11 tiles per player, two team reserves and the
// draw pile, with a random starting player.
func Deal(gameID string, cfg RoundConfig, seats []Seat, rng *rand.Rand) (*GameState, error) {
	if err := ValidateSeats(cfg, seats); err != nil {
		return nil, err
	}
	ordered := append([]Seat(nil), seats...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].TurnOrder < ordered[j].TurnOrder })

	st := &GameState{
		GameID: gameID,
		Round:  1,
		Config: cfg,
		Seats:  ordered,
		Phase:  PhasePlaying,
		Scores: map[Team]int{TeamOne: 0, TeamTwo: 0},
	}
	dealHand(st, rng)
	return st, nil
}

// NextHand deals a fresh hand keeping seats and cumulative scores.
func NextHand(prev *GameState, rng *rand.Rand) *GameState {
	st := &GameState{
		GameID:   prev.GameID,
		Round:    prev.Round + 1,
		Config:   prev.Config,
		Seats:    append([]Seat(nil), prev.Seats...),
		Phase:    PhasePlaying,
		Scores:   map[Team]int{TeamOne: prev.Scores[TeamOne], TeamTwo: prev.Scores[TeamTwo]},
		LastHand: prev.LastHand,
	}
	dealHand(st, rng)
	return st
}

func dealHand(st *GameState, rng *rand.Rand) {
	stock := Shuffle(NewStock(), rng)

	st.PlayerHands = make(map[string][]Tile, len(st.Seats))
	for _, seat := range st.Seats {
		st.PlayerHands[seat.PlayerID] = cloneTiles(stock[:HandSize])
		stock = stock[HandSize:]
	}
	reserve := ReserveSize(len(st.Seats))
	st.TeamReserves = make(map[Team][]Tile, 2)
	for _, team := range Teams {
		st.TeamReserves[team] = cloneTiles(stock[:reserve])
		stock = stock[reserve:]
	}
	st.CentralPile = cloneTiles(stock)
	st.DiscardPile = []Tile{}
	st.Melds = map[Team][]Meld{TeamOne: {}, TeamTwo: {}}
	st.TurnPlayer = st.Seats[rng.Intn(len(st.Seats))].PlayerID
	st.TurnStep = StepChooseDraw
	st.LastDrawn = nil
}
