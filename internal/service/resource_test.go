package service_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/shenikar/disaster_response_system/internal/realtime"
	realtime_mocks "github.com/shenikar/disaster_response_system/internal/realtime/mocks"
	"github.com/shenikar/disaster_response_system/internal/service"
	"github.com/shenikar/disaster_response_system/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestResourceService(t *testing.T) (service.ResourceService, *mocks.MockResourceRepository, *realtime_mocks.MockPublisher) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockResourceRepository(ctrl)
	publisherMock := realtime_mocks.NewMockPublisher(ctrl)
	return service.NewResourceService(repoMock, publisherMock, newTestLogger()), repoMock, publisherMock
}

func validResourceInput() service.CreateResourceInput {
	return service.CreateResourceInput{
		Type:        "medical",
		Name:        "Field hospital",
		Latitude:    ptr(55.75),
		Longitude:   ptr(37.61),
		Capacity:    40,
		CurrentLoad: 10,
	}
}

func TestCreateResource_Admin(t *testing.T) {
	svc, repoMock, publisherMock := newTestResourceService(t)
	ctx, _ := asRole(t, models.RoleAdmin)

	repoMock.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	publisherMock.EXPECT().Publish(gomock.Any(), realtime.EventNewResource, gomock.Any()).Times(1)

	resource, err := svc.CreateResource(ctx, validResourceInput())
	require.NoError(t, err)
	assert.Equal(t, models.ResourceOperational, resource.Status)
	assert.Equal(t, 30, resource.Available())
}

func TestCreateResource_Forbidden(t *testing.T) {
	for _, role := range []models.Role{models.RoleUser, models.RoleEmergency} {
		t.Run(string(role), func(t *testing.T) {
			svc, repoMock, publisherMock := newTestResourceService(t)
			ctx, _ := asRole(t, role)

			repoMock.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			publisherMock.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			_, err := svc.CreateResource(ctx, validResourceInput())
			assert.ErrorIs(t, err, models.ErrForbidden)
		})
	}
}

func TestCreateResource_LoadAboveCapacity(t *testing.T) {
	svc, repoMock, _ := newTestResourceService(t)
	ctx, _ := asRole(t, models.RoleAdmin)
	repoMock.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	input := validResourceInput()
	input.CurrentLoad = input.Capacity + 1

	_, err := svc.CreateResource(ctx, input)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "current_load", verr.Field)
}

func TestUpdateResourceLoad_Success(t *testing.T) {
	svc, repoMock, publisherMock := newTestResourceService(t)
	ctx, _ := asRole(t, models.RoleAdmin)
	resourceID := uuid.New()
	updated := &models.Resource{ID: resourceID, Capacity: 10, CurrentLoad: 10}

	repoMock.EXPECT().UpdateLoad(gomock.Any(), resourceID, 10).Return(updated, nil).Times(1)
	publisherMock.EXPECT().Publish(gomock.Any(), realtime.EventResourceUpdated, updated).Times(1)

	resource, err := svc.UpdateResourceLoad(ctx, resourceID, 10)
	require.NoError(t, err)
	assert.Zero(t, resource.Available())
}

func TestUpdateResourceLoad_RejectedByStore(t *testing.T) {
	svc, repoMock, publisherMock := newTestResourceService(t)
	ctx, _ := asRole(t, models.RoleAdmin)
	resourceID := uuid.New()

	repoMock.EXPECT().
		UpdateLoad(gomock.Any(), resourceID, 11).
		Return(nil, models.NewValidationError("current_load", "cannot exceed capacity %d", 10)).
		Times(1)
	publisherMock.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.UpdateResourceLoad(ctx, resourceID, 11)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdateResourceLoad_Negative(t *testing.T) {
	svc, repoMock, _ := newTestResourceService(t)
	ctx, _ := asRole(t, models.RoleAdmin)
	repoMock.EXPECT().UpdateLoad(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.UpdateResourceLoad(ctx, uuid.New(), -1)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdateResourceLoad_NotFound(t *testing.T) {
	svc, repoMock, _ := newTestResourceService(t)
	ctx, _ := asRole(t, models.RoleAdmin)
	resourceID := uuid.New()

	repoMock.EXPECT().
		UpdateLoad(gomock.Any(), resourceID, 1).
		Return(nil, fmt.Errorf("resource: %w", models.ErrNotFound))

	_, err := svc.UpdateResourceLoad(ctx, resourceID, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListResources_ByType(t *testing.T) {
	svc, repoMock, _ := newTestResourceService(t)
	ctx, _ := asRole(t, models.RoleUser)

	repoMock.EXPECT().
		ListOperational(gomock.Any(), "water").
		Return([]*models.Resource{{Type: "water"}}, nil)

	resources, err := svc.ListResources(ctx, "water")
	require.NoError(t, err)
	assert.Len(t, resources, 1)
}
