package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/freelynk/freelynk-backend/internal/dto"
	"github.com/freelynk/freelynk-backend/internal/http/handlers/common"
	"github.com/freelynk/freelynk-backend/internal/service"
)

// BidHandler обслуживает маршруты ставок.
type BidHandler struct {
	bids *service.BidService
}

// NewBidHandler создаёт новый хэндлер.
func NewBidHandler(bids *service.BidService) *BidHandler {
	return &BidHandler{bids: bids}
}

// Create обрабатывает POST /api/bids.
func (h *BidHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req dto.CreateBidRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор проекта"})
		return
	}

	bid, err := h.bids.PlaceBid(c.Request.Context(), service.PlaceBidInput{
		ProjectID:     projectID,
		FreelancerID:  userID,
		Amount:        req.Amount,
		Proposal:      req.Proposal,
		EstimatedDays: req.EstimatedDays,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, bid)
}

// ListMy обрабатывает GET /api/bids/my.
func (h *BidHandler) ListMy(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	bids, err := h.bids.ListMyBids(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, bids)
}

// Stats обрабатывает GET /api/bids/stats.
func (h *BidHandler) Stats(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.bids.ComputeStats(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Update обрабатывает PUT /api/bids/:id.
func (h *BidHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	bidID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор ставки"})
		return
	}

	var req dto.UpdateBidRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bid, err := h.bids.UpdateBid(c.Request.Context(), service.UpdateBidInput{
		BidID:         bidID,
		RequesterID:   userID,
		Amount:        req.Amount,
		Proposal:      req.Proposal,
		EstimatedDays: req.EstimatedDays,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, bid)
}

// Delete обрабатывает DELETE /api/bids/:id.
func (h *BidHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	bidID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор ставки"})
		return
	}

	if err := h.bids.DeleteBid(c.Request.Context(), bidID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Accept обрабатывает PUT /api/bids/:id/accept.
func (h *BidHandler) Accept(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	bidID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор ставки"})
		return
	}

	bid, err := h.bids.AcceptBid(c.Request.Context(), bidID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bid":     bid,
		"message": "ставка принята, проект переведён в работу",
	})
}

// Reject обрабатывает PUT /api/bids/:id/reject.
func (h *BidHandler) Reject(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	bidID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор ставки"})
		return
	}

	bid, err := h.bids.RejectBid(c.Request.Context(), bidID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, bid)
}
