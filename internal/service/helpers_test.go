package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/disaster_response_system/internal/auth"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/sirupsen/logrus"
)

// newTestLogger returns a logger whose output is discarded.
func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

// asRole returns a context carrying a logged-in identity with the given role.
func asRole(t *testing.T, role models.Role) (context.Context, auth.Identity) {
	t.Helper()
	id := auth.Identity{
		UserID:    uuid.New(),
		Username:  "tester-" + string(role),
		Role:      role,
		SessionID: uuid.NewString(),
	}
	return auth.WithIdentity(context.Background(), id), id
}

func ptr[T any](v T) *T {
	return &v
}
