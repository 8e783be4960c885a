package domain

// PlayerView is what one player is allowed to see of a game.
type PlayerView struct {
	GameID       string          `json:"game_id"`
	Round        int             `json:"round"`
	PlayerID     string          `json:"player_id"`
	Team         Team            `json:"team"`
	Hand         []Tile          `json:"hand"`
	HandSizes    map[string]int  `json:"hand_sizes"`
	Melds        map[Team][]Meld `json:"melds"`
	DiscardPile  []Tile          `json:"discard_pile"`
	CentralCount int             `json:"central_count"`
	ReserveTaken map[Team]bool   `json:"reserve_taken"`
	TurnPlayer   string          `json:"turn_player"`
	TurnStep     TurnStep        `json:"turn_step"`
	Phase        Phase           `json:"phase"`
	LastDrawn    *LastDrawn      `json:"last_drawn,omitempty"`
	Scores       map[Team]int    `json:"scores"`
	Winner       Team            `json:"winner,omitempty"`
	LastHand     *HandResult     `json:"last_hand,omitempty"`
}

// ViewFor projects the state for playerID. Other hands are reduced to their sizes, and a
// draw made by someone else from the deck is not revealed.
func (s *GameState) ViewFor(playerID string) (PlayerView, error) {
	seat, ok := s.SeatOf(playerID)
	if !ok {
		return PlayerView{}, &NotInGameError{GameID: s.GameID, PlayerID: playerID}
	}
	c := s.Clone()
	v := PlayerView{
		GameID:       c.GameID,
		Round:        c.Round,
		PlayerID:     playerID,
		Team:         seat.Team,
		Hand:         c.PlayerHands[playerID],
		HandSizes:    make(map[string]int, len(c.Seats)),
		Melds:        c.Melds,
		DiscardPile:  c.DiscardPile,
		CentralCount: len(c.CentralPile),
		ReserveTaken: make(map[Team]bool, 2),
		TurnPlayer:   c.TurnPlayer,
		TurnStep:     c.TurnStep,
		Phase:        c.Phase,
		Scores:       c.Scores,
		Winner:       c.Winner,
		LastHand:     c.LastHand,
	}
	for _, other := range c.Seats {
		v.HandSizes[other.PlayerID] = len(c.PlayerHands[other.PlayerID])
	}
	for _, team := range Teams {
		v.ReserveTaken[team] = len(c.TeamReserves[team]) == 0
	}
	if ld := c.LastDrawn; ld != nil {
		if ld.By != playerID && ld.Source == SourceDeck {
			ld.Tiles = nil
		}
		v.LastDrawn = ld
	}
	return v, nil
}
