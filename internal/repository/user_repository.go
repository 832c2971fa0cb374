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

// UserRepository отвечает за работу с пользователями и сессиями.
type UserRepository struct {
	db *sqlx.DB
}

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrSessionNotFound = errors.New("session not found")
)

// NewUserRepository создаёт новый экземпляр.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, password_hash, role, bio, skills, hourly_rate, location, website, avatar_id, rating, completed_projects, is_active, last_login_at, created_at, updated_at`

// scanUser читает одну строку пользователя с массивом навыков.
func scanUser(row sqlx.ColScanner) (*models.User, error) {
	var u models.User
	var skills pq.StringArray
	if err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Bio, &skills,
		&u.HourlyRate, &u.Location, &u.Website, &u.AvatarID, &u.Rating,
		&u.CompletedProjects, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Skills = []string(skills)
	return &u, nil
}

// Create сохраняет нового пользователя. Уникальность email обеспечивает база.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, name, password_hash, role, skills)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, updated_at
	`
	skills := user.Skills
	if skills == nil {
		skills = []string{}
	}
	err := r.db.QueryRowxContext(
		ctx, query,
		user.Email, user.Name, user.PasswordHash, user.Role, pq.Array(skills),
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("user repository: create %w", err)
	}
	return nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}
	return user, nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by email %w", err)
	}
	return user, nil
}

// UpdateProfile перезаписывает публичные поля профиля.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $1, bio = $2, skills = $3, hourly_rate = $4, location = $5, website = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(
		ctx, query,
		user.Name, user.Bio, pq.Array(user.Skills), user.HourlyRate,
		user.Location, user.Website, user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("user repository: update profile %w", err)
	}
	return nil
}

// UpdateAvatar сохраняет идентификатор загруженного аватара.
func (r *UserRepository) UpdateAvatar(ctx context.Context, userID, avatarID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET avatar_id = $1, updated_at = NOW() WHERE id = $2`, avatarID, userID)
	if err != nil {
		return fmt.Errorf("user repository: update avatar %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("user repository: update avatar rows affected %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateLastLoginAt отмечает время последнего входа.
func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("user repository: update last login %w", err)
	}
	return nil
}

// FreelancerFilterParams содержит параметры поиска фрилансеров.
type FreelancerFilterParams struct {
	Search    string
	Skills    []string
	MinRate   *float64
	MaxRate   *float64
	MinRating *float64
	Limit     int
	Offset    int
}

// FreelancerListResult содержит страницу фрилансеров и метаданные пагинации.
type FreelancerListResult struct {
	Freelancers []models.User `json:"freelancers"`
	Total       int           `json:"total"`
	Limit       int           `json:"limit"`
	Offset      int           `json:"offset"`
	HasMore     bool          `json:"has_more"`
}

// SearchFreelancers ищет активных фрилансеров по имени, навыкам, ставке и рейтингу.
func (r *UserRepository) SearchFreelancers(ctx context.Context, params FreelancerFilterParams) (*FreelancerListResult, error) {
	where := ` WHERE role = 'freelancer' AND is_active`
	args := []interface{}{}
	argIndex := 1

	if params.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR bio ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+params.Search+"%")
		argIndex++
	}
	if len(params.Skills) > 0 {
		where += fmt.Sprintf(" AND skills && $%d", argIndex)
		args = append(args, pq.Array(params.Skills))
		argIndex++
	}
	if params.MinRate != nil {
		where += fmt.Sprintf(" AND hourly_rate >= $%d", argIndex)
		args = append(args, *params.MinRate)
		argIndex++
	}
	if params.MaxRate != nil {
		where += fmt.Sprintf(" AND hourly_rate <= $%d", argIndex)
		args = append(args, *params.MaxRate)
		argIndex++
	}
	if params.MinRating != nil {
		where += fmt.Sprintf(" AND rating >= $%d", argIndex)
		args = append(args, *params.MinRating)
		argIndex++
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`+where, args...); err != nil {
		return nil, fmt.Errorf("user repository: search count %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + userColumns + ` FROM users` + where +
		fmt.Sprintf(" ORDER BY rating DESC, completed_projects DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("user repository: search %w", err)
	}
	defer rows.Close()

	freelancers := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("user repository: search scan %w", err)
		}
		freelancers = append(freelancers, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("user repository: search rows %w", err)
	}

	return &FreelancerListResult{
		Freelancers: freelancers,
		Total:       total,
		Limit:       limit,
		Offset:      offset,
		HasMore:     offset+len(freelancers) < total,
	}, nil
}

// CreateSession сохраняет refresh сессию.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(
		ctx, query,
		session.UserID, session.RefreshToken, session.UserAgent, session.IPAddress, session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}
	return nil
}

// GetSession возвращает сессию по refresh токену.
func (r *UserRepository) GetSession(ctx context.Context, refreshToken string) (*models.Session, error) {
	var session models.Session
	query := `SELECT id, user_id, refresh_token, user_agent, ip_address, expires_at, created_at FROM sessions WHERE refresh_token = $1`
	if err := r.db.GetContext(ctx, &session, query, refreshToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("user repository: get session %w", err)
	}
	return &session, nil
}

// DeleteSession удаляет сессию по refresh токену.
func (r *UserRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, refreshToken); err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}
	return nil
}
