package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/freelynk/freelynk-backend/internal/logger"
	"github.com/freelynk/freelynk-backend/internal/models"
	"github.com/freelynk/freelynk-backend/internal/pkg/apperror"
	"github.com/freelynk/freelynk-backend/internal/repository"
	"github.com/freelynk/freelynk-backend/internal/validation"
)

// BidStore описывает взаимодействие сервиса с хранилищем ставок.
type BidStore interface {
	Create(ctx context.Context, bid *models.Bid) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Bid, error)
	Update(ctx context.Context, bid *models.Bid) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Bid, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Accept(ctx context.Context, projectID, bidID uuid.UUID) (*models.Bid, error)
	GetFreelancerStats(ctx context.Context, freelancerID uuid.UUID) ([]models.BidStatusCount, error)
}

// ProjectGetter описывает минимальный контракт для чтения проектов.
type ProjectGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// BidNotifier отправляет событие пользователю. Реализуется WebSocket хабом.
type BidNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// BidService инкапсулирует бизнес-логику ставок: размещение, правки,
// принятие с одновременным отклонением конкурентов.
type BidService struct {
	bids     BidStore
	projects ProjectGetter
	notifier BidNotifier
}

// NewBidService создаёт сервис ставок. notifier может быть nil.
func NewBidService(bids BidStore, projects ProjectGetter, notifier BidNotifier) *BidService {
	return &BidService{bids: bids, projects: projects, notifier: notifier}
}

// PlaceBidInput содержит данные новой ставки.
type PlaceBidInput struct {
	ProjectID     uuid.UUID
	FreelancerID  uuid.UUID
	Amount        float64
	Proposal      string
	EstimatedDays int
}

// PlaceBid размещает ставку на открытый чужой проект.
// Уникальность пары (проект, фрилансер) обеспечивается ограничением в базе,
// поэтому конкурентные повторные ставки не проходят даже без предварительной проверки.
func (s *BidService) PlaceBid(ctx context.Context, in PlaceBidInput) (*models.Bid, error) {
	if err := validation.ValidateBidAmount(in.Amount); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateBidProposal(in.Proposal); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEstimatedDays(in.EstimatedDays); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить проект")
	}

	if !project.IsOpen() {
		return nil, apperror.ErrProjectNotOpen
	}
	if project.IsOwnedBy(in.FreelancerID) {
		return nil, apperror.ErrOwnProjectBid
	}

	bid := &models.Bid{
		ProjectID:     in.ProjectID,
		FreelancerID:  in.FreelancerID,
		Amount:        in.Amount,
		Proposal:      in.Proposal,
		EstimatedDays: in.EstimatedDays,
		Status:        models.BidStatusPending,
	}

	if err := s.bids.Create(ctx, bid); err != nil {
		if errors.Is(err, repository.ErrDuplicateBid) {
			return nil, apperror.ErrDuplicateBid
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить ставку")
	}

	s.notify(project.OwnerID, "bids.new", bid)

	return bid, nil
}

// AcceptBid принимает ставку от имени владельца проекта. Перевод проекта в
// in_progress, принятие целевой ставки и отклонение остальных pending ставок
// выполняются одной транзакцией в хранилище: при гонке двух вызовов выигрывает
// ровно один, второй получает ошибку INVALID_STATE без каких-либо изменений.
func (s *BidService) AcceptBid(ctx context.Context, bidID, requesterID uuid.UUID) (*models.Bid, error) {
	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return nil, apperror.ErrBidNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить ставку")
	}

	project, err := s.projects.GetByID(ctx, bid.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить проект")
	}

	if !project.IsOwnedBy(requesterID) {
		return nil, apperror.ErrForbidden
	}
	if !project.IsOpen() {
		return nil, apperror.ErrProjectNotOpen
	}

	// Запоминаем конкурентов до транзакции, чтобы после успеха уведомить только
	// тех, кто был отклонён именно этим принятием.
	siblings, err := s.bids.ListByProject(ctx, bid.ProjectID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить ставки проекта")
	}

	accepted, err := s.bids.Accept(ctx, project.ID, bid.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProjectClosed):
			return nil, apperror.ErrProjectNotOpen
		case errors.Is(err, repository.ErrBidNotPending):
			return nil, apperror.ErrBidNotPending
		default:
			return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось принять ставку")
		}
	}

	logger.WithComponent("bid_service").WithFields(logrus.Fields{
		"project_id": project.ID,
		"bid_id":     accepted.ID,
	}).Info("ставка принята, проект переведён в работу")

	s.notify(accepted.FreelancerID, "bids.accepted", accepted)
	for i := range siblings {
		if siblings[i].ID != accepted.ID && siblings[i].Status == models.BidStatusPending {
			s.notify(siblings[i].FreelancerID, "bids.rejected", siblings[i].ID)
		}
	}

	return accepted, nil
}

// RejectBid отклоняет ставку от имени владельца проекта.
// Статус pending намеренно не проверяется: повторное отклонение допустимо.
func (s *BidService) RejectBid(ctx context.Context, bidID, requesterID uuid.UUID) (*models.Bid, error) {
	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return nil, apperror.ErrBidNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить ставку")
	}

	project, err := s.projects.GetByID(ctx, bid.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить проект")
	}

	if !project.IsOwnedBy(requesterID) {
		return nil, apperror.ErrForbidden
	}

	rejected, err := s.bids.UpdateStatus(ctx, bid.ID, models.BidStatusRejected)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return nil, apperror.ErrBidNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось отклонить ставку")
	}

	s.notify(rejected.FreelancerID, "bids.rejected", rejected.ID)

	return rejected, nil
}

// UpdateBidInput содержит изменяемые поля ставки. Nil поля не трогаются.
type UpdateBidInput struct {
	BidID         uuid.UUID
	RequesterID   uuid.UUID
	Amount        *float64
	Proposal      *string
	EstimatedDays *int
}

// UpdateBid правит ставку её автора, пока она не обработана.
func (s *BidService) UpdateBid(ctx context.Context, in UpdateBidInput) (*models.Bid, error) {
	bid, err := s.bids.GetByID(ctx, in.BidID)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return nil, apperror.ErrBidNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить ставку")
	}

	if bid.FreelancerID != in.RequesterID {
		return nil, apperror.ErrForbidden
	}
	if bid.Status != models.BidStatusPending {
		return nil, apperror.ErrBidNotPending
	}

	if in.Amount != nil {
		if err := validation.ValidateBidAmount(*in.Amount); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		bid.Amount = *in.Amount
	}
	if in.Proposal != nil {
		if err := validation.ValidateBidProposal(*in.Proposal); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		bid.Proposal = *in.Proposal
	}
	if in.EstimatedDays != nil {
		if err := validation.ValidateEstimatedDays(*in.EstimatedDays); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		bid.EstimatedDays = *in.EstimatedDays
	}

	// Условие status = pending повторяется в UPDATE: между чтением и записью
	// ставку могла принять или отклонить параллельная операция.
	if err := s.bids.Update(ctx, bid); err != nil {
		if errors.Is(err, repository.ErrBidNotPending) {
			return nil, apperror.ErrBidNotPending
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить ставку")
	}

	return bid, nil
}

// DeleteBid удаляет ставку её автора, пока она не обработана.
func (s *BidService) DeleteBid(ctx context.Context, bidID, requesterID uuid.UUID) error {
	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return apperror.ErrBidNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить ставку")
	}

	if bid.FreelancerID != requesterID {
		return apperror.ErrForbidden
	}
	if bid.Status != models.BidStatusPending {
		return apperror.ErrBidNotPending
	}

	if err := s.bids.Delete(ctx, bidID); err != nil {
		if errors.Is(err, repository.ErrBidNotPending) {
			return apperror.ErrBidNotPending
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить ставку")
	}

	return nil
}

// ListProjectBids возвращает ставки проекта. Доступно только владельцу.
func (s *BidService) ListProjectBids(ctx context.Context, projectID, requesterID uuid.UUID) ([]models.Bid, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить проект")
	}

	if !project.IsOwnedBy(requesterID) {
		return nil, apperror.ErrForbidden
	}

	bids, err := s.bids.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить ставки")
	}
	return bids, nil
}

// ListMyBids возвращает все ставки фрилансера.
func (s *BidService) ListMyBids(ctx context.Context, freelancerID uuid.UUID) ([]models.Bid, error) {
	bids, err := s.bids.ListByFreelancer(ctx, freelancerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить ставки")
	}
	return bids, nil
}

// ComputeStats считает ставки фрилансера по статусам и сумму принятых.
func (s *BidService) ComputeStats(ctx context.Context, freelancerID uuid.UUID) (*models.BidStats, error) {
	rows, err := s.bids.GetFreelancerStats(ctx, freelancerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику ставок")
	}

	stats := &models.BidStats{}
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case models.BidStatusPending:
			stats.Pending = row.Count
		case models.BidStatusAccepted:
			stats.Accepted = row.Count
			stats.TotalAmount = row.TotalAmount
		case models.BidStatusRejected:
			stats.Rejected = row.Count
		}
	}
	return stats, nil
}

// notify отправляет событие, если хаб подключён. Ошибки доставки не критичны.
func (s *BidService) notify(userID uuid.UUID, event string, data any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BroadcastToUser(userID, event, data); err != nil {
		logger.WithComponent("bid_service").WithError(err).Warn("не удалось отправить уведомление")
	}
}
