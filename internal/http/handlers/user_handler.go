package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/freelynk/freelynk-backend/internal/dto"
	"github.com/freelynk/freelynk-backend/internal/http/handlers/common"
	"github.com/freelynk/freelynk-backend/internal/repository"
	"github.com/freelynk/freelynk-backend/internal/service"
	"github.com/freelynk/freelynk-backend/internal/storage"
)

// Разрешённые типы файлов для аватара
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Разрешённые расширения файлов
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UserHandler обслуживает профили, поиск фрилансеров и дашборды.
type UserHandler struct {
	users   *service.UserService
	avatars *storage.AvatarStorage
}

// NewUserHandler создаёт новый хэндлер.
func NewUserHandler(users *service.UserService, avatars *storage.AvatarStorage) *UserHandler {
	return &UserHandler{users: users, avatars: avatars}
}

// SearchFreelancers обрабатывает GET /api/freelancers/search.
func (h *UserHandler) SearchFreelancers(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	params := repository.FreelancerFilterParams{
		Search:    c.Query("search"),
		MinRate:   common.ParseFloatQuery(c, "min_rate"),
		MaxRate:   common.ParseFloatQuery(c, "max_rate"),
		MinRating: common.ParseFloatQuery(c, "min_rating"),
		Limit:     limit,
		Offset:    offset,
	}

	if raw := c.Query("skills"); raw != "" {
		for _, skill := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(skill); trimmed != "" {
				params.Skills = append(params.Skills, trimmed)
			}
		}
	}

	result, err := h.users.SearchFreelancers(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedFreelancersResponse{
		Data: result.Freelancers,
		Pagination: dto.Pagination{
			Total:   result.Total,
			Limit:   result.Limit,
			Offset:  result.Offset,
			HasMore: result.HasMore,
		},
	})
}

// GetFreelancer обрабатывает GET /api/freelancers/:id.
func (h *UserHandler) GetFreelancer(c *gin.Context) {
	freelancerID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор фрилансера"})
		return
	}

	profile, err := h.users.GetFreelancerProfile(c.Request.Context(), freelancerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile обрабатывает PUT /api/profile.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req dto.UpdateProfileRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, service.UpdateProfileInput{
		Name:       req.Name,
		Bio:        req.Bio,
		Skills:     req.Skills,
		HourlyRate: req.HourlyRate,
		Location:   req.Location,
		Website:    req.Website,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetProfile обрабатывает GET /api/profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UploadAvatar обрабатывает POST /api/profile/avatar.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "поле file обязательно"})
		return
	}

	if file.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "файл не может быть пустым"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "неподдерживаемый формат файла. Разрешены: .jpg, .jpeg, .png, .gif, .webp",
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	// Проверяем магические байты: реальный тип файла, а не заявленный.
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "не удалось прочитать файл"})
		return
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "не удалось определить тип файла. Разрешены только изображения",
		})
		return
	}

	contentType := kind.MIME.Value
	if !allowedMimeTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("неподдерживаемый тип файла (%s). Разрешены только изображения", contentType),
		})
		return
	}

	expectedExt := "." + kind.Extension
	// .jpg и .jpeg - это одно и то же
	if ext != expectedExt && !(ext == ".jpg" && expectedExt == ".jpeg") && !(ext == ".jpeg" && expectedExt == ".jpg") {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("расширение файла (%s) не соответствует реальному типу (%s)", ext, expectedExt),
		})
		return
	}

	if seeker, ok := src.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "не удалось сбросить позицию файла"})
			return
		}
	}

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	avatarID, size, err := h.avatars.Save(c.Request.Context(), userID, src)
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "размер файла превышает допустимый лимит"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.SetAvatar(c.Request.Context(), userID, avatarID); err != nil {
		_ = h.avatars.Delete(c.Request.Context(), userID, avatarID)
		_ = c.Error(err)
		return
	}

	// Старый файл больше не нужен.
	if user.AvatarID != nil {
		_ = h.avatars.Delete(c.Request.Context(), userID, *user.AvatarID)
	}

	c.JSON(http.StatusCreated, gin.H{
		"avatar_id": avatarID,
		"file_type": contentType,
		"file_size": size,
	})
}

// GetAvatar обрабатывает GET /api/users/:id/avatar.
func (h *UserHandler) GetAvatar(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "неверный идентификатор пользователя"})
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if user.AvatarID == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "аватар не найден"})
		return
	}

	f, err := h.avatars.Open(c.Request.Context(), userID, *user.AvatarID)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "аватар не найден"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "не удалось прочитать файл"})
		return
	}

	contentType := "application/octet-stream"
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		contentType = kind.MIME.Value
	}

	c.Data(http.StatusOK, contentType, data)
}

// FreelancerStats обрабатывает GET /api/stats/freelancer.
func (h *UserHandler) FreelancerStats(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.users.GetFreelancerStats(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ClientStats обрабатывает GET /api/stats/client.
func (h *UserHandler) ClientStats(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.users.GetClientStats(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
