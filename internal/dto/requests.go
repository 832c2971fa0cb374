package dto

import (
	"time"
)

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the token refresh payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateProjectRequest represents the request to create a project
type CreateProjectRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Budget      float64  `json:"budget"`
	Category    string   `json:"category" binding:"required"`
	Skills      []string `json:"skills"`
	DeadlineAt  *string  `json:"deadline_at"`
}

// UpdateProjectRequest represents the request to update a project
type UpdateProjectRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Budget      float64  `json:"budget"`
	Category    string   `json:"category" binding:"required"`
	Skills      []string `json:"skills"`
	DeadlineAt  *string  `json:"deadline_at"`
	Status      string   `json:"status"`
}

// CreateBidRequest represents the request to place a bid
type CreateBidRequest struct {
	ProjectID     string  `json:"project_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
	Proposal      string  `json:"proposal" binding:"required"`
	EstimatedDays int     `json:"estimated_days" binding:"required"`
}

// UpdateBidRequest represents the request to update a pending bid
type UpdateBidRequest struct {
	Amount        *float64 `json:"amount"`
	Proposal      *string  `json:"proposal"`
	EstimatedDays *int     `json:"estimated_days"`
}

// UpdateProfileRequest represents the request to update user profile
type UpdateProfileRequest struct {
	Name       *string  `json:"name"`
	Bio        *string  `json:"bio"`
	Skills     []string `json:"skills"`
	HourlyRate *float64 `json:"hourly_rate"`
	Location   *string  `json:"location"`
	Website    *string  `json:"website"`
}

// ParseDeadline converts string deadline to time.Time pointer
func (r *CreateProjectRequest) ParseDeadline() (*time.Time, error) {
	return parseDeadline(r.DeadlineAt)
}

// ParseDeadline converts string deadline to time.Time pointer
func (r *UpdateProjectRequest) ParseDeadline() (*time.Time, error) {
	return parseDeadline(r.DeadlineAt)
}

// parseDeadline is a helper to parse an optional RFC3339 timestamp
func parseDeadline(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
