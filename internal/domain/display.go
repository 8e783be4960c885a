package domain

import "sort"

// DisplayTile is one slot of a meld laid out for presentation.
type DisplayTile struct {
	Tile Tile `json:"tile"`
	// Covers is the tile a wildcard stands for.
	Covers *Tile `json:"covers,omitempty"`
	// Placeholder marks a slot no tile fills.
	Placeholder bool `json:"placeholder,omitempty"`
}

// OrderForDisplay lays out a meld the way it reads: runs low to high with the wildcard in
// the slot it fills, groups in colour order with the wildcard in the first missing colour.
// It uses the same wildcard reading as ClassifyMeld. Invalid melds come back unchanged.
func OrderForDisplay(tiles []Tile) []DisplayTile {
	info := ClassifyMeld(tiles)
	if !info.Valid() {
		out := make([]DisplayTile, len(tiles))
		for i, t := range tiles {
			out[i] = DisplayTile{Tile: t}
		}
		return out
	}
	naturals := naturalsOf(tiles, info)
	var wild []Tile
	if len(naturals) < len(tiles) {
		wild = wildcardsOf(tiles, info)
	}
	if info.Kind == MeldRun {
		return layoutRun(naturals, wild, info.AceHigh)
	}
	return layoutGroup(naturals, wild)
}

func wildcardsOf(tiles []Tile, info MeldInfo) []Tile {
	if info.Wildcard == WildcardJoker {
		return []Tile{Joker()}
	}
	if info.Substitute != nil {
		return []Tile{*info.Substitute}
	}
	return nil
}

func layoutRun(naturals, wild []Tile, high bool) []DisplayTile {
	color := naturals[0].Color
	byNumber := make(map[int]Tile, len(naturals))
	for _, t := range naturals {
		n := t.Number
		if high && n == 1 {
			n = aceHigh
		}
		byNumber[n] = t
	}
	numbers := make([]int, 0, len(byNumber))
	for n := range byNumber {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	lo, hi := numbers[0], numbers[len(numbers)-1]

	cover := func(n int) *Tile {
		if n == aceHigh {
			n = 1
		}
		t := T(color, n)
		return &t
	}

	var out []DisplayTile
	for n := lo; n <= hi; n++ {
		if t, ok := byNumber[n]; ok {
			out = append(out, DisplayTile{Tile: t})
			continue
		}
		if len(wild) > 0 {
			out = append(out, DisplayTile{Tile: wild[0], Covers: cover(n)})
			wild = wild[1:]
			continue
		}
		out = append(out, DisplayTile{Tile: T(color, n), Placeholder: true})
	}
	top := MaxNumber
	if high {
		top = aceHigh
	}
	for _, w := range wild {
		if hi < top {
			hi++
			out = append(out, DisplayTile{Tile: w, Covers: cover(hi)})
		} else {
			lo--
			out = append([]DisplayTile{{Tile: w, Covers: cover(lo)}}, out...)
		}
	}
	return out
}

func layoutGroup(naturals, wild []Tile) []DisplayTile {
	number := naturals[0].Number
	byColor := make(map[Color]Tile, len(naturals))
	for _, t := range naturals {
		byColor[t.Color] = t
	}
	var out []DisplayTile
	for _, c := range SuitColors {
		if t, ok := byColor[c]; ok {
			out = append(out, DisplayTile{Tile: t})
			continue
		}
		if len(wild) > 0 {
			covers := T(c, number)
			out = append(out, DisplayTile{Tile: wild[0], Covers: &covers})
			wild = wild[1:]
		}
	}
	// All four colours present: the wildcard trails the group.
	for _, w := range wild {
		out = append(out, DisplayTile{Tile: w})
	}
	return out
}
