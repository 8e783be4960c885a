package nats

import (
	"context"
	"errors"
	"fmt"

	"burako/internal/ports"
	"burako/internal/ports/wire"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"
)

var ErrNotConnected = errors.New("nats connection is not established")

// publisher is the part of *nats.Conn the notifier needs.
type publisher interface {
	Publish(subject string, data []byte) error
	IsConnected() bool
}

// Notifier publishes each notification as protobuf bytes. Events addressed to everyone go
// on <prefix>.<game_id>; events addressed to given players go only on
// <prefix>.<game_id>.<player_id> of each recipient.
type Notifier struct {
	conn   publisher
	prefix string
	logger *log.Logger
}

// Connect dials url and returns a notifier publishing under prefix.
func Connect(url, prefix string, logger *log.Logger) (*Notifier, *nats.Conn, error) {
	logger.Info("connecting to nats", "url", url)
	conn, err := nats.Connect(url, nats.Name("burako"))
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	return NewNotifier(conn, prefix, logger), conn, nil
}

func NewNotifier(conn publisher, prefix string, logger *log.Logger) *Notifier {
	return &Notifier{conn: conn, prefix: prefix, logger: logger}
}

// Subject returns the subject public notifications of gameID are published on.
func (n *Notifier) Subject(gameID string) string {
	return n.prefix + "." + gameID
}

// PlayerSubject returns the subject carrying the private events of playerID in gameID.
func (n *Notifier) PlayerSubject(gameID, playerID string) string {
	return n.Subject(gameID) + "." + playerID
}

func (n *Notifier) Publish(ctx context.Context, note ports.Notification) error {
	if !n.conn.IsConnected() {
		return ErrNotConnected
	}
	public, private := splitEvents(note.Events)
	shared := note
	shared.Events = public
	if err := n.send(n.Subject(note.GameID), shared); err != nil {
		return err
	}
	for _, playerID := range private.players {
		direct := note
		direct.Events = private.byPlayer[playerID]
		if err := n.send(n.PlayerSubject(note.GameID, playerID), direct); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notifier) send(subject string, note ports.Notification) error {
	data, err := wire.Marshal(note)
	if err != nil {
		return err
	}
	if err := n.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	n.logger.Debug("notification published", "subject", subject, "version", note.Version, "events", len(note.Events))
	return nil
}

type privateEvents struct {
	players  []string
	byPlayer map[string][]ports.EventRecord
}

// splitEvents separates events for everyone from events for named players, keeping the
// order recipients first appear in.
func splitEvents(events []ports.EventRecord) ([]ports.EventRecord, privateEvents) {
	public := make([]ports.EventRecord, 0, len(events))
	private := privateEvents{byPlayer: map[string][]ports.EventRecord{}}
	for _, ev := range events {
		if len(ev.Recipients) == 0 {
			public = append(public, ev)
			continue
		}
		for _, r := range ev.Recipients {
			if _, ok := private.byPlayer[r]; !ok {
				private.players = append(private.players, r)
			}
			private.byPlayer[r] = append(private.byPlayer[r], ev)
		}
	}
	return public, private
}

var _ ports.Notifier = (*Notifier)(nil)
