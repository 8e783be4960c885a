package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Color is the colour of a tile. Jokers carry their own colour.
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorBlue   Color = "blue"
	ColorBlack  Color = "black"
	ColorJoker  Color = "joker"
)

// SuitColors lists the four numbered colours in display precedence.
var SuitColors = []Color{ColorRed, ColorYellow, ColorBlue, ColorBlack}

const (
	MinNumber = 1
	MaxNumber = 13
)

// Tile is a value object; two tiles with the same colour and number are interchangeable.
type Tile struct {
	Color  Color
	Number int // 0 for jokers
}

// Joker returns the joker tile.
func Joker() Tile { return Tile{Color: ColorJoker} }

// T is shorthand for a numbered tile.
func T(c Color, n int) Tile { return Tile{Color: c, Number: n} }

func (t Tile) IsJoker() bool { return t.Color == ColorJoker }

// IsTwo reports whether the tile is a numbered 2, the only tile that can stand in as a wildcard.
func (t Tile) IsTwo() bool { return !t.IsJoker() && t.Number == 2 }

// Valid reports whether the tile exists in the stock.
func (t Tile) Valid() bool {
	if t.IsJoker() {
		return t.Number == 0
	}
	if !isSuitColor(t.Color) {
		return false
	}
	return t.Number >= MinNumber && t.Number <= MaxNumber
}

// Points is the value of the tile when counted in melds or left in a hand.
func (t Tile) Points() int {
	switch {
	case t.IsJoker():
		return 50
	case t.Number == 1:
		return 15
	case t.Number == 2:
		return 20
	case t.Number <= 7:
		return 5
	default:
		return 10
	}
}

func (t Tile) String() string {
	if t.IsJoker() {
		return "joker"
	}
	return fmt.Sprintf("%s-%d", t.Color, t.Number)
}

type tileJSON struct {
	Color  Color `json:"color"`
	Number *int  `json:"number"`
}

// MarshalJSON writes jokers with a null number.
func (t Tile) MarshalJSON() ([]byte, error) {
	out := tileJSON{Color: t.Color}
	if !t.IsJoker() {
		n := t.Number
		out.Number = &n
	}
	return json.Marshal(out)
}

func (t *Tile) UnmarshalJSON(data []byte) error {
	var in tileJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	t.Color = in.Color
	t.Number = 0
	if in.Number != nil {
		t.Number = *in.Number
	}
	if !t.Valid() {
		return fmt.Errorf("invalid tile %s", t)
	}
	return nil
}

var colorAliases = map[string]Color{
	"r": ColorRed, "red": ColorRed,
	"y": ColorYellow, "yellow": ColorYellow,
	"u": ColorBlue, "blue": ColorBlue,
	"k": ColorBlack, "black": ColorBlack,
}

// ParseTile reads forms such as "red-5", "red5", "R5", "K13" and "joker".
func ParseTile(s string) (Tile, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if raw == "j" || raw == "joker" {
		return Joker(), nil
	}
	i := strings.IndexAny(raw, "0123456789")
	if i <= 0 {
		return Tile{}, fmt.Errorf("parse tile %q: missing colour or number", s)
	}
	color, ok := colorAliases[strings.TrimSuffix(raw[:i], "-")]
	if !ok {
		return Tile{}, fmt.Errorf("parse tile %q: unknown colour", s)
	}
	n, err := strconv.Atoi(raw[i:])
	if err != nil {
		return Tile{}, fmt.Errorf("parse tile %q: %w", s, err)
	}
	t := T(color, n)
	if !t.Valid() {
		return Tile{}, fmt.Errorf("parse tile %q: number out of range", s)
	}
	return t, nil
}

// ParseTiles parses a comma or space separated tile list.
func ParseTiles(s string) ([]Tile, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]Tile, 0, len(fields))
	for _, f := range fields {
		t, err := ParseTile(f)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// SumPoints totals the point value of tiles.
func SumPoints(tiles []Tile) int {
	total := 0
	for _, t := range tiles {
		total += t.Points()
	}
	return total
}

func isSuitColor(c Color) bool {
	for _, sc := range SuitColors {
		if sc == c {
			return true
		}
	}
	return false
}

// RemoveTiles removes one instance per requested tile, first match wins.
// It returns the first tile that could not be found.
func RemoveTiles(hand []Tile, tiles []Tile) ([]Tile, *Tile) {
	out := append([]Tile(nil), hand...)
	for _, want := range tiles {
		idx := indexOf(out, want)
		if idx < 0 {
			missing := want
			return hand, &missing
		}
		out = append(out[:idx], out[idx+1:]...)
	}
	return out, nil
}

func indexOf(tiles []Tile, want Tile) int {
	for i, t := range tiles {
		if t == want {
			return i
		}
	}
	return -1
}
