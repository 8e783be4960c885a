package main

import (
	"context"
	"fmt"

	"burako/internal/app"
	"burako/internal/config"
	"burako/internal/domain"
	"burako/internal/ports"
	"burako/internal/ports/cache"
	"burako/internal/ports/memory"
	mongoport "burako/internal/ports/mongo"
	natsport "burako/internal/ports/nats"
	redisport "burako/internal/ports/redis"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type playOptions struct {
	players  int
	seed     int64
	target   int
	maxTurns int
	store    string
	notify   string
	archive  string
}

func newPlayCmd() *cobra.Command {
	var opts playOptions
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Simulate a game with simple automatic players",
		Long: `Simulate a game in which every player draws, lays whatever melds it finds and
discards. The table can live in memory or redis, notifications can go to the log or
nats, and scored hands can be archived in mongo.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := openBackends(ctx, opts)
			if err != nil {
				return err
			}
			defer b.close()

			gameID := uuid.NewString()
			seats := defaultSeats(opts.players)
			if err := b.roster.Register(ctx, gameID, seats); err != nil {
				return err
			}
			target := opts.target
			if target == 0 {
				target = config.TargetScore()
			}
			svc := app.NewService(b.store, b.directory, b.notifier, newRand(opts.seed),
				app.WithLogger(logger), app.WithArchive(b.archive))
			if _, err := svc.CreateRound(ctx, gameID, domain.RoundConfig{Participants: opts.players, TargetScore: target}); err != nil {
				return err
			}
			summary, err := autoplay(ctx, svc, gameID, seats[0].PlayerID, opts.maxTurns)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().IntVar(&opts.players, "players", 4, "number of players (2 or 4)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "shuffle seed (0 uses the clock)")
	cmd.Flags().IntVar(&opts.target, "target", 0, "target score (defaults to config)")
	cmd.Flags().IntVar(&opts.maxTurns, "max-turns", 2000, "stop after this many turns")
	cmd.Flags().StringVar(&opts.store, "store", "memory", "state store: memory or redis")
	cmd.Flags().StringVar(&opts.notify, "notify", "log", "notifications: none, log or nats")
	cmd.Flags().StringVar(&opts.archive, "archive", "memory", "hand archive: memory or mongo")
	return cmd
}

type backends struct {
	store     ports.StateStore
	directory ports.PlayerDirectory
	roster    ports.RosterWriter
	notifier  ports.Notifier
	archive   ports.HandArchive
	closers   []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, opts playOptions) (*backends, error) {
	b := &backends{}
	if err := b.open(ctx, opts); err != nil {
		b.close()
		return nil, err
	}
	return b, nil
}

func (b *backends) open(ctx context.Context, opts playOptions) error {
	switch opts.store {
	case "memory":
		dir := memory.NewDirectory()
		b.store, b.directory, b.roster = memory.NewStore(), dir, dir
	case "redis":
		rdb, err := redisport.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func() { rdb.Close() })
		dir, err := cache.NewDirectory(redisport.NewDirectory(rdb), cfg.DirectoryCache.MaxEntries, cache.DefaultTTL)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, dir.Close)
		b.store, b.directory, b.roster = redisport.NewStore(rdb), dir, dir
	default:
		return fmt.Errorf("unknown store %q", opts.store)
	}

	switch opts.notify {
	case "none":
	case "log":
		b.notifier = &logNotifier{logger: logger}
	case "nats":
		n, conn, err := natsport.Connect(cfg.Nats.URL, cfg.Nats.SubjectPrefix, logger)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func() { conn.Drain() })
		b.notifier = n
	default:
		return fmt.Errorf("unknown notifier %q", opts.notify)
	}

	switch opts.archive {
	case "memory":
		b.archive = memory.NewArchive()
	case "mongo":
		client, err := mongoport.Connect(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func() { client.Disconnect(context.Background()) })
		b.archive = mongoport.NewArchive(client.Database(cfg.Mongo.Database))
	default:
		return fmt.Errorf("unknown archive %q", opts.archive)
	}
	return nil
}

// logNotifier writes every event to the logger.
type logNotifier struct {
	logger *log.Logger
}

func (n *logNotifier) Publish(ctx context.Context, note ports.Notification) error {
	for _, ev := range note.Events {
		n.logger.Info(ev.Kind, "game", note.GameID, "version", note.Version, "to", ev.Recipients, "payload", ev.Payload)
	}
	return nil
}
