package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/freelynk/freelynk-backend/internal/logger"
	"github.com/freelynk/freelynk-backend/internal/models"
	"github.com/freelynk/freelynk-backend/internal/pkg/apperror"
	"github.com/freelynk/freelynk-backend/internal/repository"
	"github.com/freelynk/freelynk-backend/internal/validation"
)

// ProjectStore описывает взаимодействие сервиса с хранилищем проектов.
type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params repository.ProjectFilterParams) (*repository.ProjectListResult, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProjectService инкапсулирует бизнес-логику проектов.
type ProjectService struct {
	projects ProjectStore
}

// NewProjectService создаёт сервис проектов.
func NewProjectService(projects ProjectStore) *ProjectService {
	return &ProjectService{projects: projects}
}

// ProjectInput содержит данные для создания или обновления проекта.
type ProjectInput struct {
	Title       string
	Description string
	Budget      float64
	Category    string
	Skills      []string
	Deadline    time.Time
}

func validateProjectInput(in ProjectInput) error {
	if err := validation.ValidateNonEmpty("название проекта", in.Title); err != nil {
		return err
	}
	if err := validation.ValidateLength("название проекта", in.Title, validation.MinProjectTitleLength, validation.MaxProjectTitleLength); err != nil {
		return err
	}
	if err := validation.ValidateLength("описание проекта", in.Description, validation.MinProjectDescLength, validation.MaxProjectDescLength); err != nil {
		return err
	}
	if err := validation.ValidateBudget(in.Budget); err != nil {
		return err
	}
	if err := validation.ValidateProjectCategory(in.Category); err != nil {
		return err
	}
	if err := validation.ValidateSkills(in.Skills); err != nil {
		return err
	}
	if in.Deadline.IsZero() {
		return errors.New("срок выполнения обязателен")
	}
	return nil
}

// CreateProject создаёт новый открытый проект.
func (s *ProjectService) CreateProject(ctx context.Context, ownerID uuid.UUID, in ProjectInput) (*models.Project, error) {
	if err := validateProjectInput(in); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	skills := in.Skills
	if skills == nil {
		skills = []string{}
	}

	project := &models.Project{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Budget:      in.Budget,
		Category:    in.Category,
		Skills:      skills,
		Deadline:    in.Deadline,
		Status:      models.ProjectStatusOpen,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить проект")
	}

	logger.WithComponent("project_service").WithField("project_id", project.ID).Info("проект создан")

	return project, nil
}

// GetProject возвращает проект и увеличивает счётчик просмотров.
func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить проект")
	}

	// Счётчик просмотров не критичен, ошибку только логируем.
	if err := s.projects.IncrementViews(ctx, id); err != nil {
		logger.WithComponent("project_service").WithError(err).Warn("не удалось увеличить счётчик просмотров")
	} else {
		project.Views++
	}

	return project, nil
}

// ListProjects возвращает страницу проектов по фильтрам.
func (s *ProjectService) ListProjects(ctx context.Context, params repository.ProjectFilterParams) (*repository.ProjectListResult, error) {
	if params.Status != "" {
		if err := validation.ValidateProjectStatus(params.Status); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	}
	if params.Category != "" {
		if err := validation.ValidateProjectCategory(params.Category); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
	}

	result, err := s.projects.List(ctx, params)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить список проектов")
	}
	return result, nil
}

// ListMyProjects возвращает все проекты заказчика.
func (s *ProjectService) ListMyProjects(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error) {
	projects, err := s.projects.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить проекты")
	}
	return projects, nil
}

// UpdateProjectInput содержит данные обновления вместе с новым статусом.
type UpdateProjectInput struct {
	ProjectInput
	Status string
}

// UpdateProject правит проект его владельца. Смена статуса допустима только в
// пределах инварианта: без принятой ставки проект не может быть в работе или
// завершён, с принятой — не может снова стать открытым.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID, requesterID uuid.UUID, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить проект")
	}

	if !project.IsOwnedBy(requesterID) {
		return nil, apperror.ErrForbidden
	}

	if err := validateProjectInput(in.ProjectInput); err != nil {
		return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
	}

	if in.Status != "" && in.Status != project.Status {
		if err := validation.ValidateProjectStatus(in.Status); err != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, err.Error())
		}
		if !statusChangeAllowed(project, in.Status) {
			return nil, apperror.New(apperror.ErrCodeInvalidState, "недопустимая смена статуса проекта")
		}
		project.Status = in.Status
	}

	skills := in.Skills
	if skills == nil {
		skills = []string{}
	}

	project.Title = in.Title
	project.Description = in.Description
	project.Budget = in.Budget
	project.Category = in.Category
	project.Skills = skills
	project.Deadline = in.Deadline

	if err := s.projects.Update(ctx, project); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось обновить проект")
	}

	return project, nil
}

// statusChangeAllowed проверяет инвариант: accepted_bid_id заполнен тогда и
// только тогда, когда проект в работе или завершён.
func statusChangeAllowed(project *models.Project, newStatus string) bool {
	if project.AcceptedBidID == nil {
		return newStatus == models.ProjectStatusOpen || newStatus == models.ProjectStatusCancelled
	}
	return newStatus == models.ProjectStatusInProgress || newStatus == models.ProjectStatusCompleted
}

// DeleteProject удаляет проект его владельца вместе со ставками.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID, requesterID uuid.UUID) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return apperror.ErrProjectNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить проект")
	}

	if !project.IsOwnedBy(requesterID) {
		return apperror.ErrForbidden
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return apperror.ErrProjectNotFound
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось удалить проект")
	}

	return nil
}
