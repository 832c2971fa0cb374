package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/freelynk/freelynk-backend/internal/models"
)

// BidRepository отвечает за работу со ставками.
type BidRepository struct {
	db *sqlx.DB
}

// Ошибки уровня репозитория.
var (
	ErrBidNotFound   = errors.New("bid not found")
	ErrDuplicateBid  = errors.New("duplicate bid for project and freelancer")
	ErrProjectClosed = errors.New("project is not open")
	ErrBidNotPending = errors.New("bid is not pending")
)

// Код ошибки PostgreSQL для нарушения уникального ограничения.
const pgUniqueViolation = "23505"

// NewBidRepository создаёт новый экземпляр.
func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

// Create добавляет ставку. Уникальность пары (project_id, freelancer_id)
// обеспечивает ограничение в базе, а не предварительная проверка.
func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	query := `
		INSERT INTO bids (project_id, freelancer_id, amount, proposal, estimated_days, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(
		ctx, query,
		bid.ProjectID, bid.FreelancerID, bid.Amount, bid.Proposal, bid.EstimatedDays, bid.Status,
	).Scan(&bid.ID, &bid.CreatedAt, &bid.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return ErrDuplicateBid
		}
		return fmt.Errorf("bid repository: create %w", err)
	}
	return nil
}

// GetByID возвращает ставку по идентификатору.
func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	query := `
		SELECT id, project_id, freelancer_id, amount, proposal, estimated_days, status, created_at, updated_at
		FROM bids
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &bid, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBidNotFound
		}
		return nil, fmt.Errorf("bid repository: get by id %w", err)
	}
	return &bid, nil
}

// GetByProjectAndFreelancer возвращает ставку фрилансера на конкретный проект.
func (r *BidRepository) GetByProjectAndFreelancer(ctx context.Context, projectID, freelancerID uuid.UUID) (*models.Bid, error) {
	var bid models.Bid
	query := `
		SELECT id, project_id, freelancer_id, amount, proposal, estimated_days, status, created_at, updated_at
		FROM bids
		WHERE project_id = $1 AND freelancer_id = $2
	`
	if err := r.db.GetContext(ctx, &bid, query, projectID, freelancerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBidNotFound
		}
		return nil, fmt.Errorf("bid repository: get by project and freelancer %w", err)
	}
	return &bid, nil
}

// ListByProject возвращает все ставки на проект, дешёвые первыми.
func (r *BidRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	query := `
		SELECT id, project_id, freelancer_id, amount, proposal, estimated_days, status, created_at, updated_at
		FROM bids
		WHERE project_id = $1
		ORDER BY amount ASC, created_at DESC
	`
	if err := r.db.SelectContext(ctx, &bids, query, projectID); err != nil {
		return nil, fmt.Errorf("bid repository: list by project %w", err)
	}
	return bids, nil
}

// ListByFreelancer возвращает ставки фрилансера, свежие первыми.
func (r *BidRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	query := `
		SELECT id, project_id, freelancer_id, amount, proposal, estimated_days, status, created_at, updated_at
		FROM bids
		WHERE freelancer_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &bids, query, freelancerID); err != nil {
		return nil, fmt.Errorf("bid repository: list by freelancer %w", err)
	}
	return bids, nil
}

// Update перезаписывает изменяемые поля ставки, пока она в статусе pending.
// Возвращает ErrBidNotPending, если ставка уже обработана.
func (r *BidRepository) Update(ctx context.Context, bid *models.Bid) error {
	query := `
		UPDATE bids
		SET amount = $1, proposal = $2, estimated_days = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(
		ctx, query,
		bid.Amount, bid.Proposal, bid.EstimatedDays, bid.ID, models.BidStatusPending,
	).Scan(&bid.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBidNotPending
		}
		return fmt.Errorf("bid repository: update %w", err)
	}
	return nil
}

// UpdateStatus выставляет статус ставки без дополнительных условий.
func (r *BidRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Bid, error) {
	var bid models.Bid
	query := `
		UPDATE bids
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, project_id, freelancer_id, amount, proposal, estimated_days, status, created_at, updated_at
	`
	if err := r.db.GetContext(ctx, &bid, query, status, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBidNotFound
		}
		return nil, fmt.Errorf("bid repository: update status %w", err)
	}
	return &bid, nil
}

// Delete удаляет ставку, пока она в статусе pending.
func (r *BidRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bids WHERE id = $1 AND status = $2`, id, models.BidStatusPending)
	if err != nil {
		return fmt.Errorf("bid repository: delete %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bid repository: delete rows affected %w", err)
	}
	if affected == 0 {
		return ErrBidNotPending
	}
	return nil
}

// Accept применяет принятие ставки одной транзакцией: переводит проект в
// in_progress, принимает целевую ставку и отклоняет остальные pending ставки.
// Условный UPDATE проекта из статуса open служит точкой сериализации: из двух
// конкурентных вызовов ровно один увидит затронутую строку, второй получит
// ErrProjectClosed, и его транзакция откатится целиком.
func (r *BidRepository) Accept(ctx context.Context, projectID, bidID uuid.UUID) (*models.Bid, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("bid repository: begin accept tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE projects
		SET status = $1, accepted_bid_id = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4
	`, models.ProjectStatusInProgress, bidID, projectID, models.ProjectStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("bid repository: accept project cas %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("bid repository: accept rows affected %w", err)
	}
	if affected == 0 {
		err = ErrProjectClosed
		return nil, err
	}

	var bid models.Bid
	err = tx.QueryRowxContext(ctx, `
		UPDATE bids
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING id, project_id, freelancer_id, amount, proposal, estimated_days, status, created_at, updated_at
	`, models.BidStatusAccepted, bidID, models.BidStatusPending).StructScan(&bid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrBidNotPending
		} else {
			err = fmt.Errorf("bid repository: accept target bid %w", err)
		}
		return nil, err
	}

	// Уже отклонённые ставки не трогаем.
	if _, err = tx.ExecContext(ctx, `
		UPDATE bids
		SET status = $1, updated_at = NOW()
		WHERE project_id = $2 AND id <> $3 AND status = $4
	`, models.BidStatusRejected, projectID, bidID, models.BidStatusPending); err != nil {
		return nil, fmt.Errorf("bid repository: reject sibling bids %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("bid repository: commit accept tx %w", err)
	}
	return &bid, nil
}

// GetFreelancerStats агрегирует ставки фрилансера по статусам.
func (r *BidRepository) GetFreelancerStats(ctx context.Context, freelancerID uuid.UUID) ([]models.BidStatusCount, error) {
	var rows []models.BidStatusCount
	query := `
		SELECT status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount
		FROM bids
		WHERE freelancer_id = $1
		GROUP BY status
	`
	if err := r.db.SelectContext(ctx, &rows, query, freelancerID); err != nil {
		return nil, fmt.Errorf("bid repository: freelancer stats %w", err)
	}
	return rows, nil
}

// GetClientStats агрегирует ставки по всем проектам заказчика.
func (r *BidRepository) GetClientStats(ctx context.Context, ownerID uuid.UUID) ([]models.BidStatusCount, error) {
	var rows []models.BidStatusCount
	query := `
		SELECT b.status, COUNT(*) AS count, COALESCE(SUM(b.amount), 0) AS total_amount
		FROM bids b
		JOIN projects p ON p.id = b.project_id
		WHERE p.owner_id = $1
		GROUP BY b.status
	`
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("bid repository: client stats %w", err)
	}
	return rows, nil
}

// ListRecentByFreelancer возвращает последние ставки фрилансера для публичного профиля.
func (r *BidRepository) ListRecentByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit int) ([]models.Bid, error) {
	var bids []models.Bid
	query := `
		SELECT id, project_id, freelancer_id, amount, proposal, estimated_days, status, created_at, updated_at
		FROM bids
		WHERE freelancer_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &bids, query, freelancerID, limit); err != nil {
		return nil, fmt.Errorf("bid repository: recent by freelancer %w", err)
	}
	return bids, nil
}
