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

// ProjectRepository отвечает за работу с проектами.
type ProjectRepository struct {
	db *sqlx.DB
}

var ErrProjectNotFound = errors.New("project not found")

// NewProjectRepository создаёт новый экземпляр.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, owner_id, title, description, budget, category, skills, deadline, status, accepted_bid_id, views, is_featured, created_at, updated_at`

// scanProject читает одну строку проекта с массивом навыков.
func scanProject(row sqlx.ColScanner) (*models.Project, error) {
	var p models.Project
	var skills pq.StringArray
	if err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Budget, &p.Category,
		&skills, &p.Deadline, &p.Status, &p.AcceptedBidID, &p.Views, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Skills = []string(skills)
	return &p, nil
}

// Create сохраняет новый проект.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (owner_id, title, description, budget, category, skills, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, views, is_featured, created_at, updated_at
	`
	err := r.db.QueryRowxContext(
		ctx, query,
		project.OwnerID, project.Title, project.Description, project.Budget,
		project.Category, pq.Array(project.Skills), project.Deadline, project.Status,
	).Scan(&project.ID, &project.Views, &project.IsFeatured, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("project repository: create %w", err)
	}
	return nil
}

// GetByID возвращает проект по идентификатору.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	row := r.db.QueryRowxContext(ctx, query, id)
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("project repository: get by id %w", err)
	}
	return project, nil
}

// IncrementViews увеличивает счётчик просмотров.
func (r *ProjectRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE projects SET views = views + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("project repository: increment views %w", err)
	}
	return nil
}

// ProjectFilterParams содержит параметры фильтрации и поиска проектов.
type ProjectFilterParams struct {
	Status    string
	Category  string
	OwnerID   *uuid.UUID
	Search    string
	BudgetMin *float64
	BudgetMax *float64
	Limit     int
	Offset    int
}

// ProjectListResult содержит страницу проектов и метаданные пагинации.
type ProjectListResult struct {
	Projects []models.Project `json:"projects"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
	HasMore  bool             `json:"has_more"`
}

// List возвращает проекты с фильтрацией, поиском и пагинацией.
func (r *ProjectRepository) List(ctx context.Context, params ProjectFilterParams) (*ProjectListResult, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if params.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, params.Status)
		argIndex++
	}
	if params.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, params.Category)
		argIndex++
	}
	if params.OwnerID != nil {
		where += fmt.Sprintf(" AND owner_id = $%d", argIndex)
		args = append(args, *params.OwnerID)
		argIndex++
	}
	if params.BudgetMin != nil {
		where += fmt.Sprintf(" AND budget >= $%d", argIndex)
		args = append(args, *params.BudgetMin)
		argIndex++
	}
	if params.BudgetMax != nil {
		where += fmt.Sprintf(" AND budget <= $%d", argIndex)
		args = append(args, *params.BudgetMax)
		argIndex++
	}
	if params.Search != "" {
		where += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+params.Search+"%")
		argIndex++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM projects`+where, args...); err != nil {
		return nil, fmt.Errorf("project repository: count %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + projectColumns + ` FROM projects` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("project repository: list %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("project repository: list scan %w", err)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("project repository: list rows %w", err)
	}

	return &ProjectListResult{
		Projects: projects,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
		HasMore:  offset+len(projects) < total,
	}, nil
}

// ListByOwner возвращает все проекты заказчика, свежие первыми.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryxContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("project repository: list by owner %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("project repository: list by owner scan %w", err)
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

// Update перезаписывает изменяемые поля проекта.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET title = $1, description = $2, budget = $3, category = $4, skills = $5, deadline = $6, status = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(
		ctx, query,
		project.Title, project.Description, project.Budget, project.Category,
		pq.Array(project.Skills), project.Deadline, project.Status, project.ID,
	).Scan(&project.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("project repository: update %w", err)
	}
	return nil
}

// Delete удаляет проект вместе со ставками (каскад в схеме).
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("project repository: delete %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("project repository: delete rows affected %w", err)
	}
	if affected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// ProjectStatusCount одна строка агрегации проектов по статусу.
type ProjectStatusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

// GetOwnerStats агрегирует проекты заказчика по статусам.
func (r *ProjectRepository) GetOwnerStats(ctx context.Context, ownerID uuid.UUID) ([]ProjectStatusCount, error) {
	var rows []ProjectStatusCount
	query := `SELECT status, COUNT(*) AS count FROM projects WHERE owner_id = $1 GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("project repository: owner stats %w", err)
	}
	return rows, nil
}

// GetFreelancerProjectStats агрегирует по статусам проекты, где принята ставка фрилансера.
func (r *ProjectRepository) GetFreelancerProjectStats(ctx context.Context, freelancerID uuid.UUID) ([]ProjectStatusCount, error) {
	var rows []ProjectStatusCount
	query := `
		SELECT p.status, COUNT(*) AS count
		FROM projects p
		JOIN bids b ON b.id = p.accepted_bid_id
		WHERE b.freelancer_id = $1
		GROUP BY p.status
	`
	if err := r.db.SelectContext(ctx, &rows, query, freelancerID); err != nil {
		return nil, fmt.Errorf("project repository: freelancer project stats %w", err)
	}
	return rows, nil
}

// ListCompletedByFreelancer возвращает завершённые проекты фрилансера для публичного профиля.
func (r *ProjectRepository) ListCompletedByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit int) ([]models.CompletedProjectSummary, error) {
	var summaries []models.CompletedProjectSummary
	query := `
		SELECT p.id, p.title, p.description, p.budget, p.category, p.updated_at AS completed_at
		FROM projects p
		JOIN bids b ON b.id = p.accepted_bid_id
		WHERE b.freelancer_id = $1 AND p.status = $2
		ORDER BY p.updated_at DESC
		LIMIT $3
	`
	if err := r.db.SelectContext(ctx, &summaries, query, freelancerID, models.ProjectStatusCompleted, limit); err != nil {
		return nil, fmt.Errorf("project repository: completed by freelancer %w", err)
	}
	return summaries, nil
}
