package main

import (
	"fmt"
	"os"
	"os/signal"

	"burako/internal/ports/wire"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var gameID, playerID string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the notifications published on nats",
		RunE: func(cmd *cobra.Command, args []string) error {
			if playerID != "" && gameID == "" {
				return fmt.Errorf("--player needs --game")
			}
			conn, err := nats.Connect(cfg.Nats.URL, nats.Name("burako-watch"))
			if err != nil {
				return fmt.Errorf("nats connect %s: %w", cfg.Nats.URL, err)
			}
			defer conn.Close()

			// Public subjects only; private events sit one token deeper.
			subjects := []string{cfg.Nats.SubjectPrefix + ".*"}
			if gameID != "" {
				subjects = []string{cfg.Nats.SubjectPrefix + "." + gameID}
			}
			if playerID != "" {
				subjects = append(subjects, subjects[0]+"."+playerID)
			}
			out := cmd.OutOrStdout()
			handler := func(msg *nats.Msg) {
				text, err := wire.JSON(msg.Data)
				if err != nil {
					logger.Warn("undecodable notification", "subject", msg.Subject, "err", err)
					return
				}
				fmt.Fprintf(out, "%s\n%s\n", msg.Subject, text)
			}
			for _, subject := range subjects {
				sub, err := conn.Subscribe(subject, handler)
				if err != nil {
					return err
				}
				defer sub.Unsubscribe()
				logger.Info("watching", "subject", subject)
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt)
			select {
			case <-stop:
			case <-cmd.Context().Done():
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&gameID, "game", "", "game id (all games if empty)")
	cmd.Flags().StringVar(&playerID, "player", "", "also print the private events of this player")
	return cmd
}
