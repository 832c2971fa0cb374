package models

import (
	"time"

	"github.com/google/uuid"
)

// User описывает пользователя платформы: заказчика или фрилансера.
type User struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Email             string     `db:"email" json:"email"`
	Name              string     `db:"name" json:"name"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	Role              string     `db:"role" json:"role"`
	Bio               *string    `db:"bio" json:"bio,omitempty"`
	Skills            []string   `db:"skills" json:"skills"`
	HourlyRate        float64    `db:"hourly_rate" json:"hourly_rate"`
	Location          *string    `db:"location" json:"location,omitempty"`
	Website           *string    `db:"website" json:"website,omitempty"`
	AvatarID          *uuid.UUID `db:"avatar_id" json:"avatar_id,omitempty"`
	Rating            float64    `db:"rating" json:"rating"`
	CompletedProjects int        `db:"completed_projects" json:"completed_projects"`
	IsActive          bool       `db:"is_active" json:"is_active"`
	LastLoginAt       *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// FreelancerStats статистика фрилансера для дашборда.
type FreelancerStats struct {
	TotalBids         int     `json:"total_bids"`
	PendingBids       int     `json:"pending_bids"`
	AcceptedBids      int     `json:"accepted_bids"`
	RejectedBids      int     `json:"rejected_bids"`
	TotalEarnings     float64 `json:"total_earnings"`
	ActiveProjects    int     `json:"active_projects"`
	CompletedProjects int     `json:"completed_projects"`
}

// ClientStats статистика заказчика для дашборда.
type ClientStats struct {
	TotalProjects      int `json:"total_projects"`
	OpenProjects       int `json:"open_projects"`
	InProgressProjects int `json:"in_progress_projects"`
	CompletedProjects  int `json:"completed_projects"`
	TotalBids          int `json:"total_bids"`
	PendingBids        int `json:"pending_bids"`
	AcceptedBids       int `json:"accepted_bids"`
}

// CompletedProjectSummary завершённый проект в публичном профиле фрилансера.
type CompletedProjectSummary struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Budget      float64   `db:"budget" json:"budget"`
	Category    string    `db:"category" json:"category"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}
