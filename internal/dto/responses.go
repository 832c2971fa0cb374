package dto

import (
	"github.com/freelynk/freelynk-backend/internal/models"
)

// TokenPairResponse represents an issued access/refresh token pair
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents the response after register/login/refresh
type AuthResponse struct {
	User   *models.User      `json:"user"`
	Tokens TokenPairResponse `json:"tokens"`
}

// BidWithProjectResponse represents a bid with basic project info
type BidWithProjectResponse struct {
	*models.Bid
	Project *ProjectShortInfo `json:"project,omitempty"`
}

// ProjectShortInfo represents basic project information
type ProjectShortInfo struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Budget   float64 `json:"budget"`
	Category string  `json:"category"`
	Status   string  `json:"status"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// PaginatedProjectsResponse represents a paginated projects list
type PaginatedProjectsResponse struct {
	Data       []models.Project `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// PaginatedFreelancersResponse represents a paginated freelancers list
type PaginatedFreelancersResponse struct {
	Data       []models.User `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
