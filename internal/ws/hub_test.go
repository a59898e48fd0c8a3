package ws_test

import (
	"encoding/json"
	"testing"
	"time"

	"catalog/internal/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(hub *ws.Hub, userID, fullName string) *ws.Client {
	return &ws.Client{
		Hub:      hub,
		Send:     make(chan []byte, 16),
		UserID:   userID,
		FullName: fullName,
	}
}

func receiveEvent(t *testing.T, c *ws.Client) ws.Event {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		require.True(t, ok, "send channel closed unexpectedly")
		var event ws.Event
		require.NoError(t, json.Unmarshal(raw, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return ws.Event{}
	}
}

func rosterNames(t *testing.T, event ws.Event) []string {
	t.Helper()
	require.Equal(t, "clients-updated", event.Event)
	raw, err := json.Marshal(event.Data)
	require.NoError(t, err)
	var roster []ws.ConnectedClient
	require.NoError(t, json.Unmarshal(raw, &roster))
	names := make([]string, 0, len(roster))
	for _, entry := range roster {
		names = append(names, entry.FullName)
	}
	return names
}

func TestHub_RosterBroadcastOnConnectAndDisconnect(t *testing.T) {
	hub := ws.NewHub()
	go hub.Run()

	alice := newClient(hub, "u-1", "Alice")
	hub.Register <- alice
	assert.Equal(t, []string{"Alice"}, rosterNames(t, receiveEvent(t, alice)))

	bob := newClient(hub, "u-2", "Bob")
	hub.Register <- bob
	assert.ElementsMatch(t, []string{"Alice", "Bob"}, rosterNames(t, receiveEvent(t, alice)))
	assert.ElementsMatch(t, []string{"Alice", "Bob"}, rosterNames(t, receiveEvent(t, bob)))

	hub.Unregister <- bob
	assert.Equal(t, []string{"Alice"}, rosterNames(t, receiveEvent(t, alice)))

	// The departed client's channel is closed by the hub.
	select {
	case _, ok := <-bob.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("expected bob's send channel to be closed")
	}
}

func TestHub_BroadcastFansOutToAllClients(t *testing.T) {
	hub := ws.NewHub()
	go hub.Run()

	alice := newClient(hub, "u-1", "Alice")
	bob := newClient(hub, "u-2", "Bob")
	hub.Register <- alice
	receiveEvent(t, alice)
	hub.Register <- bob
	receiveEvent(t, alice)
	receiveEvent(t, bob)

	payload, err := json.Marshal(ws.Event{Event: "message-from-server", Data: map[string]string{
		"full_name": "Alice",
		"message":   "hello",
	}})
	require.NoError(t, err)
	hub.Broadcast <- payload

	for _, client := range []*ws.Client{alice, bob} {
		event := receiveEvent(t, client)
		assert.Equal(t, "message-from-server", event.Event)
	}
}
