package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/freelynk/freelynk-backend/internal/dto"
	"github.com/freelynk/freelynk-backend/internal/http/handlers/common"
	"github.com/freelynk/freelynk-backend/internal/repository"
	"github.com/freelynk/freelynk-backend/internal/service"
)

// ProjectHandler обслуживает маршруты проектов.
type ProjectHandler struct {
	projects *service.ProjectService
	bids     *service.BidService
}

// NewProjectHandler создаёт новый хэндлер.
func NewProjectHandler(projects *service.ProjectService, bids *service.BidService) *ProjectHandler {
	return &ProjectHandler{projects: projects, bids: bids}
}

// Create обрабатывает POST /api/projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req dto.CreateProjectRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deadline, err := req.ParseDeadline()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный формат срока выполнения"})
		return
	}

	in := service.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		Category:    req.Category,
		Skills:      req.Skills,
	}
	if deadline != nil {
		in.Deadline = *deadline
	}

	project, err := h.projects.CreateProject(c.Request.Context(), userID, in)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// Get обрабатывает GET /api/projects/:id. Увеличивает счётчик просмотров.
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор проекта"})
		return
	}

	project, err := h.projects.GetProject(c.Request.Context(), projectID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// List обрабатывает GET /api/projects.
func (h *ProjectHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	params := repository.ProjectFilterParams{
		Status:    c.Query("status"),
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		BudgetMin: common.ParseFloatQuery(c, "min_budget"),
		BudgetMax: common.ParseFloatQuery(c, "max_budget"),
		Limit:     limit,
		Offset:    offset,
	}

	if raw := c.Query("owner_id"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "неверный owner_id"})
			return
		}
		params.OwnerID = &ownerID
	}

	result, err := h.projects.ListProjects(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedProjectsResponse{
		Data: result.Projects,
		Pagination: dto.Pagination{
			Total:   result.Total,
			Limit:   result.Limit,
			Offset:  result.Offset,
			HasMore: result.HasMore,
		},
	})
}

// ListMy обрабатывает GET /api/projects/my.
func (h *ProjectHandler) ListMy(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	projects, err := h.projects.ListMyProjects(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, projects)
}

// Update обрабатывает PUT /api/projects/:id.
func (h *ProjectHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор проекта"})
		return
	}

	var req dto.UpdateProjectRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deadline, err := req.ParseDeadline()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный формат срока выполнения"})
		return
	}

	in := service.UpdateProjectInput{
		ProjectInput: service.ProjectInput{
			Title:       req.Title,
			Description: req.Description,
			Budget:      req.Budget,
			Category:    req.Category,
			Skills:      req.Skills,
		},
		Status: req.Status,
	}
	if deadline != nil {
		in.Deadline = *deadline
	}

	project, err := h.projects.UpdateProject(c.Request.Context(), projectID, userID, in)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// Delete обрабатывает DELETE /api/projects/:id.
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор проекта"})
		return
	}

	if err := h.projects.DeleteProject(c.Request.Context(), projectID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListBids обрабатывает GET /api/projects/:id/bids. Доступно только владельцу.
func (h *ProjectHandler) ListBids(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор проекта"})
		return
	}

	bids, err := h.bids.ListProjectBids(c.Request.Context(), projectID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, bids)
}
