package domain

import "sort"

// MeldKind classifies a candidate meld.
type MeldKind string

const (
	MeldInvalid MeldKind = "invalid"
	MeldRun     MeldKind = "run"
	MeldGroup   MeldKind = "group"
)

// WildcardKind names the tile, if any, that fills a missing slot.
type WildcardKind string

const (
	WildcardNone  WildcardKind = "none"
	WildcardJoker WildcardKind = "joker"
	WildcardTwo   WildcardKind = "two"
)

const (
	minMeldSize  = 3
	maxRunSize   = MaxNumber
	maxGroupSize = 5 // four colours plus one wildcard
	aceHigh      = MaxNumber + 1
)

// MeldInfo is the validator's verdict, kept with the meld so scoring and display never
// have to guess which tile was the wildcard.
type MeldInfo struct {
	Kind       MeldKind     `json:"kind"`
	Wildcard   WildcardKind `json:"wildcard"`
	Substitute *Tile        `json:"substitute,omitempty"`
	// AceHigh is set when a run uses 1 after 13.
	AceHigh bool `json:"ace_high,omitempty"`
}

func (m MeldInfo) Valid() bool { return m.Kind == MeldRun || m.Kind == MeldGroup }

// IsValidMeld reports whether tiles form a legal run or group.
func IsValidMeld(tiles []Tile) bool {
	return ClassifyMeld(tiles).Valid()
}

// meldCandidate is one way of reading a tile set: the tiles taken literally and the
// number of wildcards standing in for missing ones.
type meldCandidate struct {
	naturals   []Tile
	wildcards  int
	wildcard   WildcardKind
	substitute *Tile
}

// candidates enumerates the readings in the order they must be tried: the explicit joker
// reading (or the all-literal reading when there is no joker), then one reading per
// distinct 2 treated as a substitute. A joker excludes any 2 substitute.
func candidates(tiles []Tile) []meldCandidate {
	var naturals []Tile
	jokers := 0
	for _, t := range tiles {
		if t.IsJoker() {
			jokers++
			continue
		}
		naturals = append(naturals, t)
	}
	if jokers > 1 {
		return nil
	}
	if jokers == 1 {
		return []meldCandidate{{naturals: naturals, wildcards: 1, wildcard: WildcardJoker}}
	}

	out := []meldCandidate{{naturals: naturals, wildcard: WildcardNone}}
	seen := make(map[Tile]bool)
	for i, t := range naturals {
		if !t.IsTwo() || seen[t] {
			continue
		}
		seen[t] = true
		rest := make([]Tile, 0, len(naturals)-1)
		rest = append(rest, naturals[:i]...)
		rest = append(rest, naturals[i+1:]...)
		sub := t
		out = append(out, meldCandidate{naturals: rest, wildcards: 1, wildcard: WildcardTwo, substitute: &sub})
	}
	return out
}

// ClassifyMeld validates tiles and reports how they were read. The first candidate
// reading that forms a run or a group wins.
func ClassifyMeld(tiles []Tile) MeldInfo {
	invalid := MeldInfo{Kind: MeldInvalid, Wildcard: WildcardNone}
	if len(tiles) < minMeldSize {
		return invalid
	}
	for _, t := range tiles {
		if !t.Valid() {
			return invalid
		}
	}
	for _, c := range candidates(tiles) {
		if len(c.naturals) == 0 {
			continue
		}
		info := MeldInfo{Wildcard: c.wildcard, Substitute: c.substitute}
		if ok, high := isRun(c.naturals, c.wildcards); ok {
			info.Kind = MeldRun
			info.AceHigh = high
			return info
		}
		if isGroup(c.naturals, c.wildcards) {
			info.Kind = MeldGroup
			return info
		}
	}
	return invalid
}

// isRun checks a same-colour sequence. The ace is read low first, then high (after 13);
// a run can never use both ends at once.
func isRun(naturals []Tile, wildcards int) (ok bool, high bool) {
	total := len(naturals) + wildcards
	if total < minMeldSize || total > maxRunSize {
		return false, false
	}
	color := naturals[0].Color
	numbers := make([]int, 0, len(naturals))
	hasAce := false
	for _, t := range naturals {
		if t.Color != color {
			return false, false
		}
		if t.Number == 1 {
			hasAce = true
		}
		numbers = append(numbers, t.Number)
	}
	if runGaps(numbers) <= wildcards {
		return true, false
	}
	if !hasAce {
		return false, false
	}
	lifted := make([]int, len(numbers))
	for i, n := range numbers {
		if n == 1 {
			n = aceHigh
		}
		lifted[i] = n
	}
	if runGaps(lifted) <= wildcards {
		return true, true
	}
	return false, false
}

// runGaps returns how many numbers are missing between the lowest and highest value, or a
// value larger than any wildcard count when numbers repeat.
func runGaps(numbers []int) int {
	sorted := append([]int(nil), numbers...)
	sort.Ints(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return maxRunSize + 1
		}
	}
	span := sorted[len(sorted)-1] - sorted[0] + 1
	return span - len(sorted)
}

func isGroup(naturals []Tile, wildcards int) bool {
	total := len(naturals) + wildcards
	if total < minMeldSize || total > maxGroupSize || wildcards > 1 {
		return false
	}
	number := naturals[0].Number
	colors := make(map[Color]bool, len(naturals))
	for _, t := range naturals {
		if t.Number != number || colors[t.Color] {
			return false
		}
		colors[t.Color] = true
	}
	return true
}

// naturalsOf returns the tiles read literally under info.
func naturalsOf(tiles []Tile, info MeldInfo) []Tile {
	out := make([]Tile, 0, len(tiles))
	skipped := false
	for _, t := range tiles {
		if t.IsJoker() {
			continue
		}
		if !skipped && info.Wildcard == WildcardTwo && info.Substitute != nil && t == *info.Substitute {
			skipped = true
			continue
		}
		out = append(out, t)
	}
	return out
}
