package domain

import "fmt"

// Outcome describes what an action did beyond the state change itself.
type Outcome struct {
	Drawn     []Tile
	Meld      *Meld
	MeldTeam  Team
	MeldIndex int
	Added     []Tile
	Discarded *Tile

	// ReserveTaken is the team whose reserve moved into the acting player's hand.
	ReserveTaken Team
	// HandOver is set when the hand must be scored with Closer credited for closing it.
	HandOver bool
	Closer   Team
}

// TileSelector picks the tile to discard, by hand index or by value.
type TileSelector struct {
	Index *int
	Tile  *Tile
}

// CheckTurn rejects player unless it is their turn and the turn is at one of steps.
func (s *GameState) CheckTurn(player string, steps ...TurnStep) error {
	if s.TurnPlayer != player {
		return &WrongTurnError{Expected: s.TurnPlayer, Actual: player}
	}
	actual := s.TurnStep
	if s.Phase == PhaseFinished {
		actual = StepFinished
	}
	for _, step := range steps {
		if actual == step {
			return nil
		}
	}
	return &WrongStepError{Expected: steps, Actual: actual}
}

// Draw takes the top of the draw pile or the whole discard pile.
func (s *GameState) Draw(player string, source DrawSource) (Outcome, error) {
	if err := s.CheckTurn(player, StepChooseDraw); err != nil {
		return Outcome{}, err
	}
	var drawn []Tile
	switch source {
	case SourceDeck:
		if len(s.CentralPile) == 0 {
			return Outcome{}, &EmptyPileError{Pile: SourceDeck}
		}
		last := len(s.CentralPile) - 1
		drawn = []Tile{s.CentralPile[last]}
		s.CentralPile = s.CentralPile[:last]
	case SourceDiscard:
		if len(s.DiscardPile) == 0 {
			return Outcome{}, &EmptyPileError{Pile: SourceDiscard}
		}
		drawn = s.DiscardPile
		s.DiscardPile = []Tile{}
	default:
		return Outcome{}, fmt.Errorf("unknown draw source %q", source)
	}
	s.PlayerHands[player] = append(s.PlayerHands[player], drawn...)
	s.LastDrawn = &LastDrawn{By: player, Source: source, Tiles: cloneTiles(drawn)}
	s.TurnStep = StepMelds
	return Outcome{Drawn: drawn}, nil
}

// SubmitMeld lays tiles from the player's hand as a new meld of their team.
func (s *GameState) SubmitMeld(player string, tiles []Tile) (Outcome, error) {
	if err := s.CheckTurn(player, StepMelds); err != nil {
		return Outcome{}, err
	}
	team := s.TeamOf(player)
	if !team.Valid() {
		return Outcome{}, &NotInGameError{GameID: s.GameID, PlayerID: player}
	}
	info := ClassifyMeld(tiles)
	if !info.Valid() {
		return Outcome{}, &InvalidMeldError{Tiles: cloneTiles(tiles), Reason: "not a run or a group"}
	}
	hand, missing := RemoveTiles(s.PlayerHands[player], tiles)
	if missing != nil {
		return Outcome{}, &MissingTileError{Tile: *missing}
	}
	s.PlayerHands[player] = hand
	meld := Meld{Tiles: cloneTiles(tiles), Info: info}
	s.Melds[team] = append(s.Melds[team], meld)

	out := Outcome{Meld: &meld, MeldTeam: team, MeldIndex: len(s.Melds[team]) - 1}
	s.afterMeld(player, team, &out)
	return out, nil
}

// AddToMeld extends one of the team's melds. The combined meld is validated as a whole.
func (s *GameState) AddToMeld(player string, target Team, index int, tiles []Tile) (Outcome, error) {
	if err := s.CheckTurn(player, StepMelds); err != nil {
		return Outcome{}, err
	}
	team := s.TeamOf(player)
	if !team.Valid() {
		return Outcome{}, &NotInGameError{GameID: s.GameID, PlayerID: player}
	}
	if team != target {
		return Outcome{}, &ForbiddenError{PlayerTeam: team, TargetTeam: target}
	}
	melds := s.Melds[team]
	if index < 0 || index >= len(melds) {
		return Outcome{}, &InvalidMeldError{Tiles: cloneTiles(tiles), Reason: fmt.Sprintf("team %d has no meld %d", team, index)}
	}
	if len(tiles) == 0 {
		return Outcome{}, &InvalidMeldError{Reason: "no tiles to add"}
	}
	combined := append(cloneTiles(melds[index].Tiles), tiles...)
	info := ClassifyMeld(combined)
	if !info.Valid() {
		return Outcome{}, &InvalidMeldError{Tiles: combined, Reason: "extension breaks the meld"}
	}
	hand, missing := RemoveTiles(s.PlayerHands[player], tiles)
	if missing != nil {
		return Outcome{}, &MissingTileError{Tile: *missing}
	}
	s.PlayerHands[player] = hand
	meld := Meld{Tiles: combined, Info: info}
	melds[index] = meld

	out := Outcome{Meld: &meld, MeldTeam: team, MeldIndex: index, Added: cloneTiles(tiles)}
	s.afterMeld(player, team, &out)
	return out, nil
}

// afterMeld applies the reserve rule when melding emptied the player's hand: the reserve
// is picked up and the turn goes on, or, if it is already gone, the opponents close.
func (s *GameState) afterMeld(player string, team Team, out *Outcome) {
	if len(s.PlayerHands[player]) > 0 {
		return
	}
	if s.takeReserve(player, team) {
		out.ReserveTaken = team
		return
	}
	out.HandOver = true
	out.Closer = team.Opponent()
}

// Pass skips laying melds; the player still has to discard.
func (s *GameState) Pass(player string) (Outcome, error) {
	if err := s.CheckTurn(player, StepMelds); err != nil {
		return Outcome{}, err
	}
	s.TurnStep = StepDiscard
	return Outcome{}, nil
}

// Discard puts one tile on the discard pile and passes the turn. Emptying the draw pile
// closes the hand for the discarding team; that takes precedence over the reserve rule.
func (s *GameState) Discard(player string, sel TileSelector) (Outcome, error) {
	if err := s.CheckTurn(player, StepMelds, StepDiscard); err != nil {
		return Outcome{}, err
	}
	team := s.TeamOf(player)
	if !team.Valid() {
		return Outcome{}, &NotInGameError{GameID: s.GameID, PlayerID: player}
	}
	hand := s.PlayerHands[player]
	idx := -1
	switch {
	case sel.Index != nil:
		if *sel.Index < 0 || *sel.Index >= len(hand) {
			return Outcome{}, &MissingTileError{Index: sel.Index}
		}
		idx = *sel.Index
	case sel.Tile != nil:
		idx = indexOf(hand, *sel.Tile)
		if idx < 0 {
			return Outcome{}, &MissingTileError{Tile: *sel.Tile}
		}
	default:
		return Outcome{}, fmt.Errorf("discard needs a tile index or a tile")
	}

	tile := hand[idx]
	rest := make([]Tile, 0, len(hand)-1)
	rest = append(rest, hand[:idx]...)
	rest = append(rest, hand[idx+1:]...)
	s.PlayerHands[player] = rest
	s.DiscardPile = append(s.DiscardPile, tile)
	out := Outcome{Discarded: &tile}

	switch {
	case len(s.CentralPile) == 0:
		out.HandOver = true
		out.Closer = team
	case len(rest) == 0:
		if s.takeReserve(player, team) {
			out.ReserveTaken = team
		} else {
			out.HandOver = true
			out.Closer = team.Opponent()
		}
	}
	s.TurnPlayer = s.NextPlayer(player)
	s.TurnStep = StepChooseDraw
	return out, nil
}

func (s *GameState) takeReserve(player string, team Team) bool {
	reserve := s.TeamReserves[team]
	if len(reserve) == 0 {
		return false
	}
	s.PlayerHands[player] = append(s.PlayerHands[player], reserve...)
	s.TeamReserves[team] = []Tile{}
	return true
}

// SettleHand scores the hand, folds the result into the running totals and finishes the
// game when a team has won. The caller deals the next hand otherwise.
func (s *GameState) SettleHand(closer Team) HandResult {
	res := ScoreHand(s, closer)
	for team, ts := range res.Teams {
		s.Scores[team] = ts.Total
	}
	s.LastHand = &res
	if res.Winner != NoTeam {
		s.Phase = PhaseFinished
		s.Winner = res.Winner
	}
	return res
}
