package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shenikar/disaster_response_system/internal/webhook"
	"github.com/shenikar/disaster_response_system/internal/webhook/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestFanout_MirrorsToWebhookQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	mirror := mocks.NewMockWebhookPublisher(ctrl)
	hub := newTestHub(4)
	c, err := hub.Register(testIdentity())
	require.NoError(t, err)

	mirrored := make(chan webhook.WebhookEvent, 1)
	mirror.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event webhook.WebhookEvent) error {
			mirrored <- event
			return nil
		}).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	NewFanout(hub, mirror, hub.logger).Publish(ctx, EventSOSAlert, map[string]string{"id": "a"})
	// The mirror outlives the request that triggered it.
	cancel()

	events := drain(c)
	require.Len(t, events, 1)

	select {
	case event := <-mirrored:
		assert.Equal(t, "sos_alert", event.Event)
		assert.Equal(t, events[0].At, event.At)
		assert.JSONEq(t, string(events[0].Data), string(event.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("event was not mirrored")
	}
}

func TestFanout_MirrorFailureDoesNotAffectObservers(t *testing.T) {
	ctrl := gomock.NewController(t)
	mirror := mocks.NewMockWebhookPublisher(ctrl)
	hub := newTestHub(4)
	c, err := hub.Register(testIdentity())
	require.NoError(t, err)

	done := make(chan struct{})
	mirror.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, webhook.WebhookEvent) error {
			defer close(done)
			return errors.New("redis down")
		})

	NewFanout(hub, mirror, hub.logger).Publish(context.Background(), EventNewShelter, nil)

	<-done
	assert.Len(t, drain(c), 1)
}

func TestFanout_WithoutMirror(t *testing.T) {
	hub := newTestHub(4)
	c, err := hub.Register(testIdentity())
	require.NoError(t, err)

	NewFanout(hub, nil, hub.logger).Publish(context.Background(), EventNewResource, map[string]int{"capacity": 3})

	assert.Len(t, drain(c), 1)
}
