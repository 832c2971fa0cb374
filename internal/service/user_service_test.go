package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/freelynk/freelynk-backend/internal/models"
	"github.com/freelynk/freelynk-backend/internal/pkg/apperror"
	"github.com/freelynk/freelynk-backend/internal/repository"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) UpdateProfile(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) UpdateAvatar(ctx context.Context, userID, avatarID uuid.UUID) error {
	args := m.Called(ctx, userID, avatarID)
	return args.Error(0)
}

func (m *MockUserStore) SearchFreelancers(ctx context.Context, params repository.FreelancerFilterParams) (*repository.FreelancerListResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.FreelancerListResult), args.Error(1)
}

type MockProjectStatsStore struct {
	mock.Mock
}

func (m *MockProjectStatsStore) GetOwnerStats(ctx context.Context, ownerID uuid.UUID) ([]repository.ProjectStatusCount, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ProjectStatusCount), args.Error(1)
}

func (m *MockProjectStatsStore) GetFreelancerProjectStats(ctx context.Context, freelancerID uuid.UUID) ([]repository.ProjectStatusCount, error) {
	args := m.Called(ctx, freelancerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ProjectStatusCount), args.Error(1)
}

func (m *MockProjectStatsStore) ListCompletedByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit int) ([]models.CompletedProjectSummary, error) {
	args := m.Called(ctx, freelancerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CompletedProjectSummary), args.Error(1)
}

type MockBidStatsStore struct {
	mock.Mock
}

func (m *MockBidStatsStore) GetFreelancerStats(ctx context.Context, freelancerID uuid.UUID) ([]models.BidStatusCount, error) {
	args := m.Called(ctx, freelancerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BidStatusCount), args.Error(1)
}

func (m *MockBidStatsStore) GetClientStats(ctx context.Context, ownerID uuid.UUID) ([]models.BidStatusCount, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BidStatusCount), args.Error(1)
}

func (m *MockBidStatsStore) ListRecentByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit int) ([]models.Bid, error) {
	args := m.Called(ctx, freelancerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Bid), args.Error(1)
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	users := new(MockUserStore)
	svc := NewUserService(users, new(MockProjectStatsStore), new(MockBidStatsStore), nil)

	id := uuid.New()
	users.On("GetByID", mock.Anything, id).Return(nil, repository.ErrUserNotFound)

	_, err := svc.GetUser(context.Background(), id)
	assert.True(t, apperror.IsNotFound(err))
	users.AssertExpectations(t)
}

func TestUserService_UpdateProfile(t *testing.T) {
	users := new(MockUserStore)
	svc := NewUserService(users, new(MockProjectStatsStore), new(MockBidStatsStore), nil)

	userID := uuid.New()
	existing := &models.User{
		ID:     userID,
		Name:   "Старое имя",
		Role:   models.RoleFreelancer,
		Skills: []string{"go"},
	}

	users.On("GetByID", mock.Anything, userID).Return(existing, nil)
	users.On("UpdateProfile", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	newName := "Новое имя"
	rate := 45.0
	updated, err := svc.UpdateProfile(context.Background(), userID, UpdateProfileInput{
		Name:       &newName,
		HourlyRate: &rate,
		Skills:     []string{"go", "postgresql"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Новое имя", updated.Name)
	assert.Equal(t, 45.0, updated.HourlyRate)
	assert.Equal(t, []string{"go", "postgresql"}, updated.Skills)
	users.AssertExpectations(t)
}

func TestUserService_UpdateProfile_Validation(t *testing.T) {
	users := new(MockUserStore)
	svc := NewUserService(users, new(MockProjectStatsStore), new(MockBidStatsStore), nil)

	userID := uuid.New()
	users.On("GetByID", mock.Anything, userID).Return(&models.User{ID: userID}, nil)

	badName := "x"
	_, err := svc.UpdateProfile(context.Background(), userID, UpdateProfileInput{Name: &badName})
	assert.True(t, apperror.IsValidation(err))

	badRate := -5.0
	_, err = svc.UpdateProfile(context.Background(), userID, UpdateProfileInput{HourlyRate: &badRate})
	assert.True(t, apperror.IsValidation(err))

	// До записи в хранилище дело дойти не должно.
	users.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestUserService_GetFreelancerProfile(t *testing.T) {
	users := new(MockUserStore)
	projects := new(MockProjectStatsStore)
	bids := new(MockBidStatsStore)
	svc := NewUserService(users, projects, bids, nil)

	freelancerID := uuid.New()
	freelancer := &models.User{ID: freelancerID, Role: models.RoleFreelancer, Name: "Мария"}

	completed := []models.CompletedProjectSummary{{ID: uuid.New(), Title: "Сайт-визитка"}}
	recent := []models.Bid{{ID: uuid.New(), FreelancerID: freelancerID}}

	users.On("GetByID", mock.Anything, freelancerID).Return(freelancer, nil)
	projects.On("ListCompletedByFreelancer", mock.Anything, freelancerID, 5).Return(completed, nil)
	bids.On("ListRecentByFreelancer", mock.Anything, freelancerID, 5).Return(recent, nil)

	profile, err := svc.GetFreelancerProfile(context.Background(), freelancerID)
	assert.NoError(t, err)
	assert.Equal(t, freelancer, profile.Freelancer)
	assert.Len(t, profile.CompletedProjects, 1)
	assert.Len(t, profile.RecentBids, 1)
}

func TestUserService_GetFreelancerProfile_ClientHidden(t *testing.T) {
	users := new(MockUserStore)
	svc := NewUserService(users, new(MockProjectStatsStore), new(MockBidStatsStore), nil)

	clientID := uuid.New()
	users.On("GetByID", mock.Anything, clientID).Return(&models.User{ID: clientID, Role: models.RoleClient}, nil)

	_, err := svc.GetFreelancerProfile(context.Background(), clientID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUserService_GetFreelancerStats(t *testing.T) {
	projects := new(MockProjectStatsStore)
	bids := new(MockBidStatsStore)
	svc := NewUserService(new(MockUserStore), projects, bids, nil)

	freelancerID := uuid.New()

	bids.On("GetFreelancerStats", mock.Anything, freelancerID).Return([]models.BidStatusCount{
		{Status: models.BidStatusPending, Count: 2},
		{Status: models.BidStatusAccepted, Count: 3, TotalAmount: 1500},
		{Status: models.BidStatusRejected, Count: 1},
	}, nil)
	projects.On("GetFreelancerProjectStats", mock.Anything, freelancerID).Return([]repository.ProjectStatusCount{
		{Status: models.ProjectStatusInProgress, Count: 2},
		{Status: models.ProjectStatusCompleted, Count: 1},
	}, nil)

	stats, err := svc.GetFreelancerStats(context.Background(), freelancerID)
	assert.NoError(t, err)
	assert.Equal(t, 6, stats.TotalBids)
	assert.Equal(t, 2, stats.PendingBids)
	assert.Equal(t, 3, stats.AcceptedBids)
	assert.Equal(t, 1, stats.RejectedBids)
	assert.Equal(t, 1500.0, stats.TotalEarnings)
	assert.Equal(t, 2, stats.ActiveProjects)
	assert.Equal(t, 1, stats.CompletedProjects)
}

func TestUserService_GetFreelancerStats_Cached(t *testing.T) {
	projects := new(MockProjectStatsStore)
	bids := new(MockBidStatsStore)
	svc := NewUserService(new(MockUserStore), projects, bids, NewCacheService())

	freelancerID := uuid.New()

	bids.On("GetFreelancerStats", mock.Anything, freelancerID).Return([]models.BidStatusCount{
		{Status: models.BidStatusPending, Count: 1},
	}, nil)
	projects.On("GetFreelancerProjectStats", mock.Anything, freelancerID).Return([]repository.ProjectStatusCount{}, nil)

	first, err := svc.GetFreelancerStats(context.Background(), freelancerID)
	assert.NoError(t, err)

	second, err := svc.GetFreelancerStats(context.Background(), freelancerID)
	assert.NoError(t, err)
	assert.Equal(t, first, second)

	// Повторный запрос обслуживается из кеша без обращения к хранилищу.
	bids.AssertNumberOfCalls(t, "GetFreelancerStats", 1)
	projects.AssertNumberOfCalls(t, "GetFreelancerProjectStats", 1)
}

func TestUserService_GetClientStats(t *testing.T) {
	projects := new(MockProjectStatsStore)
	bids := new(MockBidStatsStore)
	svc := NewUserService(new(MockUserStore), projects, bids, nil)

	ownerID := uuid.New()

	projects.On("GetOwnerStats", mock.Anything, ownerID).Return([]repository.ProjectStatusCount{
		{Status: models.ProjectStatusOpen, Count: 2},
		{Status: models.ProjectStatusInProgress, Count: 1},
		{Status: models.ProjectStatusCompleted, Count: 4},
	}, nil)
	bids.On("GetClientStats", mock.Anything, ownerID).Return([]models.BidStatusCount{
		{Status: models.BidStatusPending, Count: 5},
		{Status: models.BidStatusAccepted, Count: 1},
	}, nil)

	stats, err := svc.GetClientStats(context.Background(), ownerID)
	assert.NoError(t, err)
	assert.Equal(t, 7, stats.TotalProjects)
	assert.Equal(t, 2, stats.OpenProjects)
	assert.Equal(t, 1, stats.InProgressProjects)
	assert.Equal(t, 4, stats.CompletedProjects)
	assert.Equal(t, 6, stats.TotalBids)
	assert.Equal(t, 5, stats.PendingBids)
	assert.Equal(t, 1, stats.AcceptedBids)
}

func TestUserService_SetAvatar(t *testing.T) {
	users := new(MockUserStore)
	svc := NewUserService(users, new(MockProjectStatsStore), new(MockBidStatsStore), nil)

	userID := uuid.New()
	avatarID := uuid.New()

	users.On("UpdateAvatar", mock.Anything, userID, avatarID).Return(nil)

	assert.NoError(t, svc.SetAvatar(context.Background(), userID, avatarID))
	users.AssertExpectations(t)
}
