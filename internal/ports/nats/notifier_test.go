package nats

import (
	"context"
	"errors"
	"io"
	"testing"

	"burako/internal/logging"
	"burako/internal/ports"
	"burako/internal/ports/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	subject string
	data    []byte
}

type fakeConn struct {
	connected bool
	err       error
	sent      []message
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, message{subject: subject, data: data})
	return nil
}

func (f *fakeConn) IsConnected() bool { return f.connected }

func TestPublish(t *testing.T) {
	conn := &fakeConn{connected: true}
	n := NewNotifier(conn, "burako.games", logging.NewWithWriter(io.Discard, "test", "error"))

	err := n.Publish(context.Background(), ports.Notification{
		GameID:  "g1",
		Version: "3",
		Status:  ports.StatusInProgress,
		Events:  []ports.EventRecord{{Kind: "turn_passed"}},
	})
	require.NoError(t, err)
	require.Len(t, conn.sent, 1)
	assert.Equal(t, "burako.games.g1", conn.sent[0].subject)

	got, err := wire.Unmarshal(conn.sent[0].data)
	require.NoError(t, err)
	assert.Equal(t, ports.Version("3"), got.Version)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "turn_passed", got.Events[0].Kind)
}

func TestPublishKeepsPrivateEventsOffSharedSubject(t *testing.T) {
	conn := &fakeConn{connected: true}
	n := NewNotifier(conn, "burako.games", logging.NewWithWriter(io.Discard, "test", "error"))

	err := n.Publish(context.Background(), ports.Notification{
		GameID:  "g1",
		Version: "4",
		Status:  ports.StatusInProgress,
		Events: []ports.EventRecord{
			{Kind: "tiles_drawn", Recipients: []string{"alice"}, Payload: map[string]any{"count": 1, "tiles": []any{"red-7"}}},
			{Kind: "tiles_drawn", Recipients: []string{"bob"}, Payload: map[string]any{"count": 1}},
			{Kind: "turn_passed", Payload: map[string]any{"player_id": "alice"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, conn.sent, 3)

	subjects := map[string][]ports.EventRecord{}
	for _, m := range conn.sent {
		got, err := wire.Unmarshal(m.data)
		require.NoError(t, err)
		assert.Equal(t, ports.Version("4"), got.Version)
		subjects[m.subject] = got.Events
	}

	shared := subjects["burako.games.g1"]
	require.Len(t, shared, 1)
	assert.Equal(t, "turn_passed", shared[0].Kind)

	alice := subjects["burako.games.g1.alice"]
	require.Len(t, alice, 1)
	assert.Contains(t, alice[0].Payload, "tiles")

	bob := subjects["burako.games.g1.bob"]
	require.Len(t, bob, 1)
	assert.NotContains(t, bob[0].Payload, "tiles")
}

func TestPublishErrors(t *testing.T) {
	logger := logging.NewWithWriter(io.Discard, "test", "error")

	n := NewNotifier(&fakeConn{}, "p", logger)
	assert.ErrorIs(t, n.Publish(context.Background(), ports.Notification{GameID: "g"}), ErrNotConnected)

	boom := errors.New("slow consumer")
	n = NewNotifier(&fakeConn{connected: true, err: boom}, "p", logger)
	assert.ErrorIs(t, n.Publish(context.Background(), ports.Notification{GameID: "g"}), boom)
}
