package models

import (
	"time"

	"github.com/google/uuid"
)

// Bid представляет ставку фрилансера на проект.
type Bid struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ProjectID     uuid.UUID `db:"project_id" json:"project_id"`
	FreelancerID  uuid.UUID `db:"freelancer_id" json:"freelancer_id"`
	Amount        float64   `db:"amount" json:"amount"`
	Proposal      string    `db:"proposal" json:"proposal"`
	EstimatedDays int       `db:"estimated_days" json:"estimated_days"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// BidStats агрегирует ставки фрилансера по статусам.
type BidStats struct {
	Total       int     `json:"total"`
	Pending     int     `json:"pending"`
	Accepted    int     `json:"accepted"`
	Rejected    int     `json:"rejected"`
	TotalAmount float64 `json:"total_amount"`
}

// BidStatusCount одна строка агрегации ставок по статусу.
type BidStatusCount struct {
	Status      string  `db:"status"`
	Count       int     `db:"count"`
	TotalAmount float64 `db:"total_amount"`
}
