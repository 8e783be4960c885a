package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"burako/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

type notificationModule interface {
	NotificationsSend(ctx context.Context, notifications []*runtime.NotificationSend) error
}

// Notifier sends one in-app notification per seated player after each action. Each
// player only receives the events addressed to everyone or to them.
type Notifier struct {
	nk     notificationModule
	logger runtime.Logger
}

func NewNotifier(nk notificationModule, logger runtime.Logger) *Notifier {
	return &Notifier{nk: nk, logger: logger}
}

func (n *Notifier) Publish(ctx context.Context, note ports.Notification) error {
	if note.State == nil {
		return nil
	}
	batch := make([]*runtime.NotificationSend, 0, len(note.State.Seats))
	for _, seat := range note.State.Seats {
		content, err := contentFor(note, seat.PlayerID)
		if err != nil {
			return err
		}
		batch = append(batch, &runtime.NotificationSend{
			UserID:     seat.PlayerID,
			Subject:    subjectOf(note),
			Content:    content,
			Code:       NotificationCodeGameUpdate,
			Persistent: note.Status != ports.StatusInProgress,
		})
	}
	if err := n.nk.NotificationsSend(ctx, batch); err != nil {
		n.logger.Warn("Notifier: send for game %s failed: %v", note.GameID, err)
		return fmt.Errorf("send notifications for game %s: %w", note.GameID, err)
	}
	return nil
}

// contentFor renders the notification a single player may see as a generic map.
func contentFor(note ports.Notification, playerID string) (map[string]interface{}, error) {
	visible := note
	visible.Events = visibleEvents(note.Events, playerID)
	raw, err := json.Marshal(visible)
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	var content map[string]interface{}
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	return content, nil
}

func visibleEvents(events []ports.EventRecord, playerID string) []ports.EventRecord {
	out := make([]ports.EventRecord, 0, len(events))
	for _, ev := range events {
		if len(ev.Recipients) == 0 {
			out = append(out, ev)
			continue
		}
		for _, r := range ev.Recipients {
			if r == playerID {
				ev.Recipients = nil
				out = append(out, ev)
				break
			}
		}
	}
	return out
}

func subjectOf(note ports.Notification) string {
	switch note.Status {
	case ports.StatusFinished:
		return "Burako game finished"
	case ports.StatusNewHand:
		return "Burako new hand"
	default:
		return "Burako update"
	}
}

var _ ports.Notifier = (*Notifier)(nil)
