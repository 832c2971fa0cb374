package models

import (
	"time"

	"github.com/google/uuid"
)

// Project описывает проект, размещённый заказчиком.
type Project struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	OwnerID       uuid.UUID  `db:"owner_id" json:"owner_id"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description"`
	Budget        float64    `db:"budget" json:"budget"`
	Category      string     `db:"category" json:"category"`
	Skills        []string   `db:"skills" json:"skills"`
	Deadline      time.Time  `db:"deadline" json:"deadline"`
	Status        string     `db:"status" json:"status"`
	AcceptedBidID *uuid.UUID `db:"accepted_bid_id" json:"accepted_bid_id,omitempty"`
	Views         int        `db:"views" json:"views"`
	IsFeatured    bool       `db:"is_featured" json:"is_featured"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	BidsCount     *int       `db:"bids_count" json:"bids_count,omitempty"`
}

// IsOwnedBy проверяет, принадлежит ли проект пользователю.
func (p *Project) IsOwnedBy(userID uuid.UUID) bool {
	return p.OwnerID == userID
}

// IsOpen сообщает, принимает ли проект новые ставки.
func (p *Project) IsOpen() bool {
	return p.Status == ProjectStatusOpen
}
