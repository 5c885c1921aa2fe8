package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/shenikar/disaster_response_system/internal/realtime"
	realtime_mocks "github.com/shenikar/disaster_response_system/internal/realtime/mocks"
	"github.com/shenikar/disaster_response_system/internal/service"
	"github.com/shenikar/disaster_response_system/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestBroadcastService(t *testing.T) (service.BroadcastService, *mocks.MockBroadcastRepository, *realtime_mocks.MockPublisher) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockBroadcastRepository(ctrl)
	publisherMock := realtime_mocks.NewMockPublisher(ctrl)
	return service.NewBroadcastService(repoMock, publisherMock, newTestLogger()), repoMock, publisherMock
}

func TestCreateBroadcast_DefaultRadius(t *testing.T) {
	svc, repoMock, publisherMock := newTestBroadcastService(t)
	ctx, caller := asRole(t, models.RoleUser)

	repoMock.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	publisherMock.EXPECT().Publish(gomock.Any(), realtime.EventEmergencyBroadcast, gomock.Any()).Times(1)

	broadcast, err := svc.CreateBroadcast(ctx, service.CreateBroadcastInput{Message: "  evacuate the valley "})
	require.NoError(t, err)
	assert.Equal(t, "evacuate the valley", broadcast.Message)
	assert.Equal(t, models.DefaultBroadcastRadius, broadcast.Radius)
	assert.Equal(t, caller.UserID, broadcast.SenderID)
	assert.Nil(t, broadcast.Latitude)
}

func TestCreateBroadcast_Validation(t *testing.T) {
	testCases := map[string]service.CreateBroadcastInput{
		"empty message":         {Message: "   "},
		"latitude only":         {Message: "m", Latitude: ptr(1.0)},
		"zero radius":           {Message: "m", Radius: ptr(0.0)},
		"latitude out of range": {Message: "m", Latitude: ptr(100.0), Longitude: ptr(1.0)},
	}
	for name, input := range testCases {
		t.Run(name, func(t *testing.T) {
			svc, repoMock, publisherMock := newTestBroadcastService(t)
			ctx, _ := asRole(t, models.RoleUser)
			repoMock.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			publisherMock.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			_, err := svc.CreateBroadcast(ctx, input)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestCreateBroadcast_StoreFailure(t *testing.T) {
	svc, repoMock, publisherMock := newTestBroadcastService(t)
	ctx, _ := asRole(t, models.RoleUser)

	repoMock.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
	publisherMock.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.CreateBroadcast(ctx, service.CreateBroadcastInput{Message: "m"})
	require.Error(t, err)
}

func TestListBroadcasts_Recent(t *testing.T) {
	svc, repoMock, _ := newTestBroadcastService(t)
	ctx, _ := asRole(t, models.RoleUser)

	repoMock.EXPECT().ListRecent(gomock.Any(), 10).Return([]*models.Broadcast{{Message: "m"}}, nil)

	broadcasts, err := svc.ListBroadcasts(ctx)
	require.NoError(t, err)
	assert.Len(t, broadcasts, 1)
}

func TestListBroadcasts_Unauthenticated(t *testing.T) {
	svc, repoMock, _ := newTestBroadcastService(t)
	repoMock.EXPECT().ListRecent(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.ListBroadcasts(context.Background())
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}
