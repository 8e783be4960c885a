package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func covers(d DisplayTile) string {
	if d.Covers == nil {
		return ""
	}
	return d.Covers.String()
}

func TestOrderForDisplayRun(t *testing.T) {
	got := OrderForDisplay([]Tile{r(7), jk, r(5), r(4)})
	require.Len(t, got, 4)
	assert.Equal(t, []Tile{r(4), r(5), jk, r(7)}, []Tile{got[0].Tile, got[1].Tile, got[2].Tile, got[3].Tile})
	assert.Equal(t, "red-6", covers(got[2]))
}

func TestOrderForDisplayAceHigh(t *testing.T) {
	got := OrderForDisplay([]Tile{r(1), r(13), y(2)})
	require.Len(t, got, 3)
	assert.Equal(t, y(2), got[0].Tile)
	assert.Equal(t, "red-12", covers(got[0]))
	assert.Equal(t, r(13), got[1].Tile)
	assert.Equal(t, r(1), got[2].Tile, "ace goes last when played high")

	got = OrderForDisplay([]Tile{r(1), r(2), r(13)})
	require.Len(t, got, 3)
	assert.Equal(t, r(2), got[0].Tile)
	assert.Equal(t, "red-12", covers(got[0]))
}

func TestOrderForDisplayWildcardAtEnd(t *testing.T) {
	got := OrderForDisplay([]Tile{jk, b(12), b(11)})
	require.Len(t, got, 3)
	assert.Equal(t, b(11), got[0].Tile)
	assert.Equal(t, b(12), got[1].Tile)
	assert.Equal(t, "blue-13", covers(got[2]))

	got = OrderForDisplay([]Tile{k(12), jk, k(13)})
	assert.Equal(t, "black-11", covers(got[0]), "no room above the king, so the joker goes below")
}

func TestOrderForDisplayKeepsLiteralTwo(t *testing.T) {
	got := OrderForDisplay([]Tile{r(3), r(1), r(2)})
	for _, d := range got {
		assert.Nil(t, d.Covers)
	}
	assert.Equal(t, []Tile{r(1), r(2), r(3)}, []Tile{got[0].Tile, got[1].Tile, got[2].Tile})
}

func TestOrderForDisplayGroup(t *testing.T) {
	got := OrderForDisplay([]Tile{k(9), jk, r(9)})
	require.Len(t, got, 3)
	assert.Equal(t, r(9), got[0].Tile)
	assert.Equal(t, jk, got[1].Tile)
	assert.Equal(t, "yellow-9", covers(got[1]))
	assert.Equal(t, k(9), got[2].Tile)
}

func TestOrderForDisplayFullGroupKeepsWildcard(t *testing.T) {
	in := []Tile{jk, k(5), r(5), b(5), y(5)}
	got := OrderForDisplay(in)
	require.Len(t, got, len(in))
	assert.Equal(t, []Tile{r(5), y(5), b(5), k(5), jk},
		[]Tile{got[0].Tile, got[1].Tile, got[2].Tile, got[3].Tile, got[4].Tile})
	assert.Nil(t, got[4].Covers)
}

func TestOrderForDisplayInvalidUnchanged(t *testing.T) {
	in := []Tile{r(1), y(5), b(9)}
	got := OrderForDisplay(in)
	require.Len(t, got, 3)
	for i := range in {
		assert.Equal(t, in[i], got[i].Tile)
	}
}

func TestTileJSON(t *testing.T) {
	data, err := json.Marshal([]Tile{jk, r(5)})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"color":"joker","number":null},{"color":"red","number":5}]`, string(data))

	var back []Tile
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []Tile{jk, r(5)}, back)

	assert.Error(t, json.Unmarshal([]byte(`{"color":"red","number":null}`), new(Tile)))
}

func TestParseTile(t *testing.T) {
	tests := []struct {
		in   string
		want Tile
	}{
		{"red-5", r(5)},
		{"R5", r(5)},
		{"yellow13", y(13)},
		{"u1", b(1)},
		{"K10", k(10)},
		{"Joker", jk},
		{"j", jk},
	}
	for _, tt := range tests {
		got, err := ParseTile(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	for _, bad := range []string{"", "green-4", "red-14", "red", "5"} {
		_, err := ParseTile(bad)
		assert.Error(t, err, bad)
	}

	tiles, err := ParseTiles("R1, R2 joker")
	require.NoError(t, err)
	assert.Equal(t, []Tile{r(1), r(2), jk}, tiles)
}

func TestRemoveTilesFirstMatch(t *testing.T) {
	hand := []Tile{r(5), y(5), r(5)}
	rest, missing := RemoveTiles(hand, []Tile{r(5)})
	assert.Nil(t, missing)
	assert.Equal(t, []Tile{y(5), r(5)}, rest)
	assert.Len(t, hand, 3)

	_, missing = RemoveTiles(hand, []Tile{r(5), r(5), r(5)})
	require.NotNil(t, missing)
	assert.Equal(t, r(5), *missing)
}
