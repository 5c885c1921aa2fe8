//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Run with: go test -tags=integration -timeout 180s ./internal/repository/...

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("disaster"),
		postgres.WithUsername("disaster"),
		postgres.WithPassword("disaster"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("failed to get connection string: %v", err)
	}
	if err := migrateUp(connStr); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	testPool, err = pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}

	code := m.Run()

	testPool.Close()
	if err := pgContainer.Terminate(ctx); err != nil {
		log.Printf("failed to terminate postgres container: %v", err)
	}
	os.Exit(code)
}

func migrateUp(connStr string) error {
	m, err := migrate.New("file://../../migrations", strings.Replace(connStr, "postgres://", "pgx5://", 1))
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func createTestUser(t *testing.T, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Username:     "user-" + uuid.NewString()[:8],
		PasswordHash: "hash",
		Role:         role,
	}
	require.NoError(t, NewUserRepository(testPool).Create(context.Background(), user))
	return user
}

func TestUserRepository_UniqueUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testPool)
	first := createTestUser(t, models.RoleUser)

	err := repo.Create(ctx, &models.User{ID: uuid.New(), Username: first.Username, PasswordHash: "other", Role: models.RoleUser})
	require.ErrorIs(t, err, models.ErrConflict)

	var count int
	require.NoError(t, testPool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE username = $1`, first.Username).Scan(&count))
	assert.Equal(t, 1, count)

	got, err := repo.GetByUsername(ctx, first.Username)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	updated, err := repo.UpdateRole(ctx, first.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	_, err = repo.UpdateRole(ctx, uuid.New(), models.RoleAdmin)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestIncidentRepository_ConcurrentVerification(t *testing.T) {
	ctx := context.Background()
	reporter := createTestUser(t, models.RoleUser)
	repo := NewIncidentRepository(testPool, nil, time.Minute)

	incident := &models.Incident{
		ID:         uuid.New(),
		Type:       "flood",
		Latitude:   1,
		Longitude:  2,
		ReportedBy: reporter.ID,
		Urgency:    models.UrgencyMedium,
		Status:     models.IncidentActive,
	}
	require.NoError(t, repo.Create(ctx, incident))
	assert.Zero(t, incident.VerificationCount)
	assert.Equal(t, 1, incident.Version)
	assert.False(t, incident.ReportedAt.IsZero())

	const callers = 25
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.IncrementVerification(ctx, incident.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := repo.GetByID(ctx, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, callers, stored.VerificationCount)
	assert.Equal(t, callers+1, stored.Version)

	_, err = repo.IncrementVerification(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestIncidentRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	reporter := createTestUser(t, models.RoleUser)
	repo := NewIncidentRepository(testPool, nil, time.Minute)
	incidentType := "landslide-" + uuid.NewString()[:8]

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Incident{
			ID:         uuid.New(),
			Type:       incidentType,
			Latitude:   float64(i),
			ReportedBy: reporter.ID,
			Urgency:    models.UrgencyLow,
			Status:     models.IncidentActive,
		}))
		time.Sleep(5 * time.Millisecond)
	}

	incidents, err := repo.List(ctx, models.IncidentFilter{Type: incidentType, Status: models.IncidentActive, Limit: 2})
	require.NoError(t, err)
	require.Len(t, incidents, 2)
	assert.Equal(t, 2.0, incidents[0].Latitude)
	assert.False(t, incidents[0].ReportedAt.Before(incidents[1].ReportedAt))
}

func TestResourceRepository_LoadBoundedByCapacity(t *testing.T) {
	ctx := context.Background()
	repo := NewResourceRepository(testPool)

	resource := &models.Resource{ID: uuid.New(), Type: "water", Name: "Tanker", Capacity: 10, Status: models.ResourceOperational}
	require.NoError(t, repo.Create(ctx, resource))

	_, err := repo.UpdateLoad(ctx, resource.ID, 11)
	require.ErrorIs(t, err, models.ErrValidation)

	updated, err := repo.UpdateLoad(ctx, resource.ID, 10)
	require.NoError(t, err)
	assert.Zero(t, updated.Available())

	_, err = repo.UpdateLoad(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestShelterRepository_OccupancyAndResources(t *testing.T) {
	ctx := context.Background()
	creator := createTestUser(t, models.RoleEmergency)
	repo := NewShelterRepository(testPool)

	shelter := &models.Shelter{
		Name:      "Library",
		Capacity:  20,
		Status:    models.ShelterOperational,
		Latitude:  1,
		Longitude: 1,
		CreatedBy: creator.ID,
		Resources: []*models.ShelterResource{{Name: "Blankets", Quantity: 5}},
	}
	require.NoError(t, repo.Create(ctx, shelter))
	require.NotZero(t, shelter.ID)

	_, err := repo.UpdateOccupancy(ctx, shelter.ID, 21)
	require.ErrorIs(t, err, models.ErrValidation)
	stored, err := repo.GetByID(ctx, shelter.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.CurrentOccupancy)

	resources := []*models.ShelterResource{{Name: "Water", Quantity: 10}}
	updated, err := repo.Update(ctx, shelter.ID, models.ShelterPatch{Resources: &resources})
	require.NoError(t, err)
	require.Len(t, updated.Resources, 1)
	assert.Equal(t, "Water", updated.Resources[0].Name)
	assert.Equal(t, 10, updated.Resources[0].Quantity)
	assert.NotNil(t, updated.UpdatedAt)

	_, err = repo.Update(ctx, shelter.ID, models.ShelterPatch{Capacity: ptrInt(0)})
	require.NoError(t, err)
	_, err = repo.UpdateOccupancy(ctx, shelter.ID, 1)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = repo.UpdateOccupancy(ctx, shelter.ID+1000, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSOSRepository_StatusFilter(t *testing.T) {
	ctx := context.Background()
	owner := createTestUser(t, models.RoleUser)
	repo := NewSOSRepository(testPool)

	alert := &models.SOSAlert{ID: uuid.New(), UserID: owner.ID, Latitude: 3, Longitude: 4, Status: models.SOSActive}
	require.NoError(t, repo.Create(ctx, alert))
	assert.Equal(t, owner.Username, alert.Username)

	active, err := repo.List(ctx, models.SOSActive)
	require.NoError(t, err)
	assert.True(t, containsSOS(active, alert.ID, owner.Username), "active alerts: %v", active)

	_, err = repo.UpdateStatus(ctx, alert.ID, models.SOSResolved)
	require.NoError(t, err)

	active, err = repo.List(ctx, models.SOSActive)
	require.NoError(t, err)
	assert.False(t, containsSOS(active, alert.ID, owner.Username))

	_, err = repo.UpdateStatus(ctx, uuid.New(), models.SOSResolved)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBroadcastRepository_ListRecent(t *testing.T) {
	ctx := context.Background()
	sender := createTestUser(t, models.RoleUser)
	repo := NewBroadcastRepository(testPool)

	for i := 0; i < 12; i++ {
		require.NoError(t, repo.Create(ctx, &models.Broadcast{
			ID:       uuid.New(),
			SenderID: sender.ID,
			Message:  fmt.Sprintf("message %d", i),
			Radius:   models.DefaultBroadcastRadius,
		}))
	}

	recent, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.Equal(t, "message 11", recent[0].Message)
}

func containsSOS(alerts []*models.SOSAlert, id uuid.UUID, username string) bool {
	for _, a := range alerts {
		if a.ID == id && a.Username == username {
			return true
		}
	}
	return false
}

func ptrInt(v int) *int {
	return &v
}
