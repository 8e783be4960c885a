package domain

const (
	burakoMinSize         = 7
	burakoCleanBonus      = 200
	burakoDirtyBonus      = 100
	closingBonus          = 100
	untakenReservePenalty = 100
)

// BurakoBonus scores a meld of seven or more tiles: 200 when clean, 100 when a wildcard
// is used. A 2 standing in for a tile still counts as clean when the meld already holds the
// literal 3 it sits next to: a same-colour 3 in a run, or a group of 3s.
func BurakoBonus(m Meld) int {
	if len(m.Tiles) < burakoMinSize {
		return 0
	}
	switch m.Info.Wildcard {
	case WildcardNone:
		return burakoCleanBonus
	case WildcardJoker:
		return burakoDirtyBonus
	}
	naturals := naturalsOf(m.Tiles, m.Info)
	if len(naturals) == 0 || m.Info.Substitute == nil {
		return burakoDirtyBonus
	}
	switch m.Info.Kind {
	case MeldRun:
		color := naturals[0].Color
		if m.Info.Substitute.Color == color && indexOf(naturals, T(color, 3)) >= 0 {
			return burakoCleanBonus
		}
	case MeldGroup:
		// Not reached while ClassifyMeld caps groups at maxGroupSize.
		if naturals[0].Number == 3 {
			return burakoCleanBonus
		}
	}
	return burakoDirtyBonus
}

// TeamScore is one team's breakdown for a finished hand.
type TeamScore struct {
	MeldPoints     int  `json:"meld_points"`
	BurakoBonus    int  `json:"burako_bonus"`
	MeldScore      int  `json:"meld_score"`
	HandPenalty    int  `json:"hand_penalty"`
	ClosingBonus   int  `json:"closing_bonus"`
	ReservePenalty int  `json:"reserve_penalty"`
	Delta          int  `json:"delta"`
	Total          int  `json:"total"`
	ReserveTaken   bool `json:"reserve_taken"`
}

// HandResult is the outcome of scoring one hand.
type HandResult struct {
	Round  int                `json:"round"`
	Closer Team               `json:"closer"`
	Teams  map[Team]TeamScore `json:"teams"`
	Winner Team               `json:"winner,omitempty"`
}

// ScoreTeam computes one team's hand delta. Without a Burako the meld points count
// against the team.
func ScoreTeam(melds []Meld, handTiles []Tile, closed, reserveTaken bool) TeamScore {
	var s TeamScore
	for _, m := range melds {
		s.MeldPoints += SumPoints(m.Tiles)
		s.BurakoBonus += BurakoBonus(m)
	}
	if s.BurakoBonus == 0 {
		s.MeldScore = -s.MeldPoints
	} else {
		s.MeldScore = s.MeldPoints + s.BurakoBonus
	}
	s.HandPenalty = SumPoints(handTiles)
	if closed {
		s.ClosingBonus = closingBonus
	}
	s.ReserveTaken = reserveTaken
	if !reserveTaken {
		s.ReservePenalty = untakenReservePenalty
	}
	s.Delta = s.MeldScore - s.HandPenalty + s.ClosingBonus - s.ReservePenalty
	return s
}

// ScoreHand scores both teams of st with closer credited for closing the hand. Totals
// include the scores already accumulated on st; st itself is not modified.
func ScoreHand(st *GameState, closer Team) HandResult {
	res := HandResult{Round: st.Round, Closer: closer, Teams: make(map[Team]TeamScore, 2)}
	for _, team := range Teams {
		var left []Tile
		for _, seat := range st.Seats {
			if seat.Team == team {
				left = append(left, st.PlayerHands[seat.PlayerID]...)
			}
		}
		s := ScoreTeam(st.Melds[team], left, team == closer, len(st.TeamReserves[team]) == 0)
		s.Total = st.Scores[team] + s.Delta
		res.Teams[team] = s
	}
	res.Winner = decideWinner(res.Teams[TeamOne].Total, res.Teams[TeamTwo].Total, st.Config.TargetScore)
	return res
}

// decideWinner returns the team whose total reached target, the higher one if both did.
// An exact tie at or past the target means another hand is played.
func decideWinner(one, two, target int) Team {
	if one < target && two < target {
		return NoTeam
	}
	switch {
	case one > two:
		return TeamOne
	case two > one:
		return TeamTwo
	default:
		return NoTeam
	}
}
