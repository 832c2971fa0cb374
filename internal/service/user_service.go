package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/freelynk/freelynk-backend/internal/models"
	"github.com/freelynk/freelynk-backend/internal/pkg/apperror"
	"github.com/freelynk/freelynk-backend/internal/repository"
	"github.com/freelynk/freelynk-backend/internal/validation"
)

// Срок жизни кеша статистики дашборда.
const statsCacheTTL = 30 * time.Second

// UserStore описывает взаимодействие сервиса с хранилищем пользователей.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateAvatar(ctx context.Context, userID, avatarID uuid.UUID) error
	SearchFreelancers(ctx context.Context, params repository.FreelancerFilterParams) (*repository.FreelancerListResult, error)
}

// ProjectStatsStore читает агрегаты проектов для дашбордов.
type ProjectStatsStore interface {
	GetOwnerStats(ctx context.Context, ownerID uuid.UUID) ([]repository.ProjectStatusCount, error)
	GetFreelancerProjectStats(ctx context.Context, freelancerID uuid.UUID) ([]repository.ProjectStatusCount, error)
	ListCompletedByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit int) ([]models.CompletedProjectSummary, error)
}

// BidStatsStore читает агрегаты ставок для дашбордов.
type BidStatsStore interface {
	GetFreelancerStats(ctx context.Context, freelancerID uuid.UUID) ([]models.BidStatusCount, error)
	GetClientStats(ctx context.Context, ownerID uuid.UUID) ([]models.BidStatusCount, error)
	ListRecentByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit int) ([]models.Bid, error)
}

// UserService инкапсулирует профили, поиск фрилансеров и статистику дашбордов.
type UserService struct {
	users    UserStore
	projects ProjectStatsStore
	bids     BidStatsStore
	cache    *CacheService
}

// NewUserService создаёт сервис пользователей. cache может быть nil.
func NewUserService(users UserStore, projects ProjectStatsStore, bids BidStatsStore, cache *CacheService) *UserService {
	return &UserService{users: users, projects: projects, bids: bids, cache: cache}
}

// GetUser возвращает пользователя по идентификатору.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пользователя")
	}
	return user, nil
}

// UpdateProfileInput содержит изменяемые поля профиля. Nil поля не трогаются.
type UpdateProfileInput struct {
	Name       *string
	Bio        *string
	Skills     []string
	HourlyRate *float64
	Location   *string
	Website    *string
}

// UpdateProfile правит публичный профиль пользователя.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if err := validation.ValidateLength("имя", *in.Name, validation.MinNameLength, validation.MaxNameLength); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		user.Name = *in.Name
	}
	if in.Bio != nil {
		if err := validation.ValidateLength("о себе", *in.Bio, 0, validation.MaxBioLength); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		user.Bio = in.Bio
	}
	if in.Skills != nil {
		if err := validation.ValidateSkills(in.Skills); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		user.Skills = in.Skills
	}
	if in.HourlyRate != nil {
		if *in.HourlyRate < validation.MinHourlyRate || *in.HourlyRate > validation.MaxHourlyRate {
			return nil, apperror.New(apperror.ErrCodeValidation, "часовая ставка вне допустимого диапазона")
		}
		user.HourlyRate = *in.HourlyRate
	}
	if in.Location != nil {
		if err := validation.ValidateLength("локация", *in.Location, 0, validation.MaxLocationLength); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		user.Location = in.Location
	}
	if in.Website != nil {
		if err := validation.ValidateLength("сайт", *in.Website, 0, validation.MaxExternalLinkLength); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		user.Website = in.Website
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить профиль")
	}

	return user, nil
}

// SetAvatar сохраняет идентификатор загруженного аватара.
func (s *UserService) SetAvatar(ctx context.Context, userID, avatarID uuid.UUID) error {
	if err := s.users.UpdateAvatar(ctx, userID, avatarID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить аватар")
	}
	return nil
}

// SearchFreelancers ищет фрилансеров по фильтрам с пагинацией.
func (s *UserService) SearchFreelancers(ctx context.Context, params repository.FreelancerFilterParams) (*repository.FreelancerListResult, error) {
	result, err := s.users.SearchFreelancers(ctx, params)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось выполнить поиск")
	}
	return result, nil
}

// FreelancerProfile публичный профиль фрилансера с работами и ставками.
type FreelancerProfile struct {
	Freelancer        *models.User                     `json:"freelancer"`
	CompletedProjects []models.CompletedProjectSummary `json:"completed_projects"`
	RecentBids        []models.Bid                     `json:"recent_bids"`
}

// GetFreelancerProfile возвращает публичный профиль фрилансера.
func (s *UserService) GetFreelancerProfile(ctx context.Context, id uuid.UUID) (*FreelancerProfile, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleFreelancer {
		return nil, apperror.New(apperror.ErrCodeNotFound, "фрилансер не найден")
	}

	completed, err := s.projects.ListCompletedByFreelancer(ctx, id, 5)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить завершённые проекты")
	}

	recent, err := s.bids.ListRecentByFreelancer(ctx, id, 5)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить последние ставки")
	}

	return &FreelancerProfile{
		Freelancer:        user,
		CompletedProjects: completed,
		RecentBids:        recent,
	}, nil
}

// GetFreelancerStats собирает статистику фрилансера для дашборда.
func (s *UserService) GetFreelancerStats(ctx context.Context, freelancerID uuid.UUID) (*models.FreelancerStats, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(FreelancerStatsCacheKey(freelancerID)); ok {
			return cached.(*models.FreelancerStats), nil
		}
	}

	bidRows, err := s.bids.GetFreelancerStats(ctx, freelancerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику ставок")
	}

	projectRows, err := s.projects.GetFreelancerProjectStats(ctx, freelancerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику проектов")
	}

	stats := &models.FreelancerStats{}
	for _, row := range bidRows {
		stats.TotalBids += row.Count
		switch row.Status {
		case models.BidStatusPending:
			stats.PendingBids = row.Count
		case models.BidStatusAccepted:
			stats.AcceptedBids = row.Count
			stats.TotalEarnings = row.TotalAmount
		case models.BidStatusRejected:
			stats.RejectedBids = row.Count
		}
	}
	for _, row := range projectRows {
		switch row.Status {
		case models.ProjectStatusInProgress:
			stats.ActiveProjects = row.Count
		case models.ProjectStatusCompleted:
			stats.CompletedProjects = row.Count
		}
	}

	if s.cache != nil {
		s.cache.Set(FreelancerStatsCacheKey(freelancerID), stats, statsCacheTTL)
	}

	return stats, nil
}

// GetClientStats собирает статистику заказчика для дашборда.
func (s *UserService) GetClientStats(ctx context.Context, ownerID uuid.UUID) (*models.ClientStats, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ClientStatsCacheKey(ownerID)); ok {
			return cached.(*models.ClientStats), nil
		}
	}

	projectRows, err := s.projects.GetOwnerStats(ctx, ownerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику проектов")
	}

	bidRows, err := s.bids.GetClientStats(ctx, ownerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику ставок")
	}

	stats := &models.ClientStats{}
	for _, row := range projectRows {
		stats.TotalProjects += row.Count
		switch row.Status {
		case models.ProjectStatusOpen:
			stats.OpenProjects = row.Count
		case models.ProjectStatusInProgress:
			stats.InProgressProjects = row.Count
		case models.ProjectStatusCompleted:
			stats.CompletedProjects = row.Count
		}
	}
	for _, row := range bidRows {
		stats.TotalBids += row.Count
		switch row.Status {
		case models.BidStatusPending:
			stats.PendingBids = row.Count
		case models.BidStatusAccepted:
			stats.AcceptedBids = row.Count
		}
	}

	if s.cache != nil {
		s.cache.Set(ClientStatsCacheKey(ownerID), stats, statsCacheTTL)
	}

	return stats, nil
}
