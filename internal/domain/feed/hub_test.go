package feed

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data := <-c.Send:
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected event %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubLocalFanOutWithCommunityFilter(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Shutdown()

	all := hub.Subscribe("")
	homesick := hub.Subscribe("homesick")
	exams := hub.Subscribe("exam-stress")

	hub.Publish(context.Background(), Event{Type: EventPostCreated, Community: "homesick", Data: map[string]string{"id": "p1"}})

	require.Equal(t, EventPostCreated, receive(t, all).Type)
	require.Equal(t, "homesick", receive(t, homesick).Community)
	assertNothing(t, exams)

	hub.Publish(context.Background(), Event{Type: EventPollCreated})
	require.Equal(t, EventPollCreated, receive(t, exams).Type)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Shutdown()

	c := hub.Subscribe("")
	require.Equal(t, 1, hub.ClientCount())

	hub.Unsubscribe(c)
	hub.Unsubscribe(c)

	_, ok := <-c.Send
	require.False(t, ok)
	require.Equal(t, 0, hub.ClientCount())
}

func TestHubRedisFanOutAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)

	newClient := func() *redis.Client {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		return client
	}

	a := NewHub(newClient())
	b := NewHub(newClient())
	defer a.Shutdown()
	defer b.Shutdown()
	go a.Run()
	go b.Run()

	onA := a.Subscribe("")
	onB := b.Subscribe("")

	a.Publish(context.Background(), Event{Type: EventPollVotes, Data: map[string]int{"totalVotes": 1}})

	require.Equal(t, EventPollVotes, receive(t, onB).Type)
	require.Equal(t, EventPollVotes, receive(t, onA).Type)
	// The publishing instance must not deliver its own event twice.
	assertNothing(t, onA)
}
