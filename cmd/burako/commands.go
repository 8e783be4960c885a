package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"burako/internal/app"
	"burako/internal/config"
	"burako/internal/domain"
	"burako/internal/ports/memory"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newDealCmd() *cobra.Command {
	var (
		players int
		seed    int64
		target  int
		gameID  string
		as      string
	)
	cmd := &cobra.Command{
		Use:   "deal",
		Short: "Deal a new round and print the table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if gameID == "" {
				gameID = uuid.NewString()
			}
			if target == 0 {
				target = config.TargetScore()
			}
			dir := memory.NewDirectory()
			if err := dir.Register(cmd.Context(), gameID, defaultSeats(players)); err != nil {
				return err
			}
			svc := app.NewService(memory.NewStore(), dir, nil, newRand(seed), app.WithLogger(logger))
			res, err := svc.CreateRound(cmd.Context(), gameID, domain.RoundConfig{Participants: players, TargetScore: target})
			if err != nil {
				return err
			}
			if as == "" {
				return writeJSON(cmd.OutOrStdout(), res.State)
			}
			view, err := res.State.ViewFor(as)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), view)
		},
	}
	cmd.Flags().IntVar(&players, "players", 4, "number of players (2 or 4)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "shuffle seed (0 uses the clock)")
	cmd.Flags().IntVar(&target, "target", 0, "target score (defaults to config)")
	cmd.Flags().StringVar(&gameID, "game", "", "game id (random if empty)")
	cmd.Flags().StringVar(&as, "as", "", "print only what this player sees (p1..p4)")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "validate TILES...",
		Short:   "Classify a meld, e.g. validate r3 r4 j",
		Args:    cobra.MinimumNArgs(1),
		Example: "  burako validate red-3 red-4 joker\n  burako validate y7,b7,k7",
		RunE: func(cmd *cobra.Command, args []string) error {
			tiles, err := domain.ParseTiles(strings.Join(args, " "))
			if err != nil {
				return err
			}
			info := domain.ClassifyMeld(tiles)
			if !info.Valid() {
				return &domain.InvalidMeldError{Tiles: tiles, Reason: "neither a run nor a group"}
			}
			return writeJSON(cmd.OutOrStdout(), struct {
				domain.MeldInfo
				Points      int `json:"points"`
				BurakoBonus int `json:"burako_bonus"`
			}{info, domain.SumPoints(tiles), domain.BurakoBonus(domain.Meld{Tiles: tiles, Info: info})})
		},
	}
}

func newDisplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "display TILES...",
		Short: "Print a meld in table order with wildcards in place",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tiles, err := domain.ParseTiles(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatDisplay(domain.OrderForDisplay(tiles)))
			return nil
		},
	}
}

func newScoreCmd() *cobra.Command {
	var (
		melds        []string
		hand         string
		closed       bool
		reserveTaken bool
	)
	cmd := &cobra.Command{
		Use:     "score",
		Short:   "Score one team's table and hand",
		Example: "  burako score --meld 'r3 r4 r5 r6 r7 r8 r9' --meld 'k1 b1 y1' --hand 'j r2' --closed --reserve-taken",
		RunE: func(cmd *cobra.Command, args []string) error {
			table := make([]domain.Meld, 0, len(melds))
			for _, raw := range melds {
				tiles, err := domain.ParseTiles(raw)
				if err != nil {
					return err
				}
				info := domain.ClassifyMeld(tiles)
				if !info.Valid() {
					return &domain.InvalidMeldError{Tiles: tiles, Reason: "neither a run nor a group"}
				}
				table = append(table, domain.Meld{Tiles: tiles, Info: info})
			}
			var handTiles []domain.Tile
			if strings.TrimSpace(hand) != "" {
				var err error
				if handTiles, err = domain.ParseTiles(hand); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), domain.ScoreTeam(table, handTiles, closed, reserveTaken))
		},
	}
	cmd.Flags().StringArrayVar(&melds, "meld", nil, "a meld on the table (repeatable)")
	cmd.Flags().StringVar(&hand, "hand", "", "tiles left in the team's hands")
	cmd.Flags().BoolVar(&closed, "closed", false, "the team closed the hand")
	cmd.Flags().BoolVar(&reserveTaken, "reserve-taken", false, "the team took its reserve")
	return cmd
}

// defaultSeats names players p1..pN and alternates teams around the table.
func defaultSeats(n int) []domain.Seat {
	seats := make([]domain.Seat, n)
	for i := range seats {
		team := domain.TeamOne
		if i%2 == 1 {
			team = domain.TeamTwo
		}
		seats[i] = domain.Seat{PlayerID: fmt.Sprintf("p%d", i+1), Team: team, TurnOrder: i}
	}
	return seats
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func formatDisplay(tiles []domain.DisplayTile) string {
	parts := make([]string, len(tiles))
	for i, dt := range tiles {
		switch {
		case dt.Placeholder:
			parts[i] = "[ ]"
		case dt.Covers != nil:
			parts[i] = fmt.Sprintf("[%s=%s]", dt.Tile, *dt.Covers)
		default:
			parts[i] = fmt.Sprintf("[%s]", dt.Tile)
		}
	}
	return strings.Join(parts, " ")
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
