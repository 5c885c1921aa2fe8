package realtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/disaster_response_system/internal/auth"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(buffer int) *Hub {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return NewHub(buffer, logger)
}

func testIdentity() auth.Identity {
	return auth.Identity{UserID: uuid.New(), Username: "observer", Role: models.RoleUser, SessionID: uuid.NewString()}
}

// drain returns everything queued for c without blocking.
func drain(c *Client) []Event {
	var out []Event
	for {
		select {
		case evt, ok := <-c.Events():
			if !ok {
				return out
			}
			out = append(out, evt)
		default:
			return out
		}
	}
}

// publish builds an event and hands it to every observer.
func publish(t *testing.T, hub *Hub, kind EventKind, payload any) {
	t.Helper()
	evt, err := NewEvent(kind, payload)
	require.NoError(t, err)
	hub.Broadcast(evt)
}

func TestRegister_RejectsAnonymous(t *testing.T) {
	hub := newTestHub(4)

	_, err := hub.Register(auth.Identity{})

	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	assert.Zero(t, hub.Count())
}

func TestBroadcast_ReachesEveryObserver(t *testing.T) {
	hub := newTestHub(4)
	a, err := hub.Register(testIdentity())
	require.NoError(t, err)
	b, err := hub.Register(testIdentity())
	require.NoError(t, err)

	publish(t, hub, EventNewIncident, map[string]string{"id": "1"})

	for _, c := range []*Client{a, b} {
		events := drain(c)
		require.Len(t, events, 1)
		assert.Equal(t, EventNewIncident, events[0].Kind)
		assert.JSONEq(t, `{"id":"1"}`, string(events[0].Data))
	}
}

func TestBroadcast_DropsOldestWhenFull(t *testing.T) {
	hub := newTestHub(3)
	c, err := hub.Register(testIdentity())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		publish(t, hub, EventEmergencyBroadcast, i)
	}

	events := drain(c)
	require.Len(t, events, 3)
	for i, evt := range events {
		assert.Equal(t, fmt.Sprint(i+2), string(evt.Data))
	}
	assert.Equal(t, int64(2), c.Dropped())
}

func TestBroadcast_SameOrderForAllObservers(t *testing.T) {
	hub := newTestHub(256)
	a, err := hub.Register(testIdentity())
	require.NoError(t, err)
	b, err := hub.Register(testIdentity())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				publish(t, hub, EventNewIncident, fmt.Sprintf("%d-%d", p, i))
			}
		}(p)
	}
	wg.Wait()

	first, second := drain(a), drain(b)
	require.Len(t, first, 100)
	require.Len(t, second, 100)
	for i := range first {
		assert.Equal(t, first[i].Data, second[i].Data)
	}
}

func TestUnregister_ClosesQueue(t *testing.T) {
	hub := newTestHub(4)
	c, err := hub.Register(testIdentity())
	require.NoError(t, err)

	hub.Unregister(c)
	hub.Unregister(c)
	publish(t, hub, EventNewIncident, nil)

	_, ok := <-c.Events()
	assert.False(t, ok)
	assert.Zero(t, hub.Count())
}

func TestSend_OnlyTargetObserver(t *testing.T) {
	hub := newTestHub(4)
	a, err := hub.Register(testIdentity())
	require.NoError(t, err)
	b, err := hub.Register(testIdentity())
	require.NoError(t, err)

	require.NoError(t, hub.Send(a, EventDashboardUpdate, map[string]int{"active_incidents": 1}))

	assert.Len(t, drain(a), 1)
	assert.Empty(t, drain(b))
}

func TestRelayLocation_ExcludesSender(t *testing.T) {
	hub := newTestHub(4)
	sender, err := hub.Register(testIdentity())
	require.NoError(t, err)
	other, err := hub.Register(testIdentity())
	require.NoError(t, err)

	require.NoError(t, hub.RelayLocation(sender, json.RawMessage(`{"latitude":1,"longitude":2,"user_id":"spoofed"}`)))

	assert.Empty(t, drain(sender))
	events := drain(other)
	require.Len(t, events, 1)
	assert.Equal(t, EventUserLocationUpdate, events[0].Kind)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(events[0].Data, &payload))
	assert.Equal(t, sender.Identity.UserID.String(), payload["user_id"])
	assert.Equal(t, float64(1), payload["latitude"])
}

func TestRelayLocation_RejectsNonObject(t *testing.T) {
	hub := newTestHub(4)
	sender, err := hub.Register(testIdentity())
	require.NoError(t, err)

	assert.Error(t, hub.RelayLocation(sender, json.RawMessage(`[1,2]`)))
}

func TestOnline_DistinctUsers(t *testing.T) {
	hub := newTestHub(4)
	id := testIdentity()
	_, err := hub.Register(id)
	require.NoError(t, err)
	_, err = hub.Register(id)
	require.NoError(t, err)

	assert.Equal(t, 2, hub.Count())
	assert.Equal(t, []uuid.UUID{id.UserID}, hub.Online())
}
