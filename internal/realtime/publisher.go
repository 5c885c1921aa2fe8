package realtime

import (
	"context"
	"time"

	"github.com/shenikar/disaster_response_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

// Publisher is the fan-out side of every mutation. Publish never fails the
// caller and never waits on observers.
type Publisher interface {
	Publish(ctx context.Context, kind EventKind, payload any)
}

const mirrorTimeout = 2 * time.Second

// Fanout delivers events to connected observers and mirrors them to the
// webhook queue when one is configured.
type Fanout struct {
	hub    *Hub
	mirror webhook.WebhookPublisher
	logger *logrus.Logger
}

func NewFanout(hub *Hub, mirror webhook.WebhookPublisher, logger *logrus.Logger) *Fanout {
	return &Fanout{hub: hub, mirror: mirror, logger: logger}
}

func (f *Fanout) Publish(ctx context.Context, kind EventKind, payload any) {
	evt, err := NewEvent(kind, payload)
	if err != nil {
		f.logger.WithError(err).WithField("event", kind).Error("Failed to build event")
		return
	}
	f.hub.Broadcast(evt)

	if f.mirror == nil {
		return
	}
	mirrorCtx := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(mirrorCtx, mirrorTimeout)
		defer cancel()
		err := f.mirror.Publish(ctx, webhook.WebhookEvent{
			Event: string(evt.Kind),
			At:    evt.At,
			Data:  evt.Data,
		})
		if err != nil {
			f.logger.WithError(err).WithField("event", kind).Warn("Failed to mirror event to webhook queue")
		}
	}()
}
