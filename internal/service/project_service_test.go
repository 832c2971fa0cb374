package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/freelynk/freelynk-backend/internal/models"
	"github.com/freelynk/freelynk-backend/internal/pkg/apperror"
	"github.com/freelynk/freelynk-backend/internal/repository"
)

// mockProjectStore хранит проекты в памяти.
type mockProjectStore struct {
	projects map[uuid.UUID]*models.Project
	viewsErr error
}

func newMockProjectStore() *mockProjectStore {
	return &mockProjectStore{projects: make(map[uuid.UUID]*models.Project)}
}

func (m *mockProjectStore) Create(ctx context.Context, project *models.Project) error {
	project.ID = uuid.New()
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	stored := *project
	m.projects[project.ID] = &stored
	return nil
}

func (m *mockProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if p, ok := m.projects[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, repository.ErrProjectNotFound
}

func (m *mockProjectStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	if m.viewsErr != nil {
		return m.viewsErr
	}
	if p, ok := m.projects[id]; ok {
		p.Views++
		return nil
	}
	return repository.ErrProjectNotFound
}

func (m *mockProjectStore) List(ctx context.Context, params repository.ProjectFilterParams) (*repository.ProjectListResult, error) {
	var page []models.Project
	for _, p := range m.projects {
		if params.Status != "" && p.Status != params.Status {
			continue
		}
		if params.Category != "" && p.Category != params.Category {
			continue
		}
		page = append(page, *p)
	}
	return &repository.ProjectListResult{
		Projects: page,
		Total:    len(page),
		Limit:    params.Limit,
		Offset:   params.Offset,
	}, nil
}

func (m *mockProjectStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error) {
	var result []models.Project
	for _, p := range m.projects {
		if p.OwnerID == ownerID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProjectStore) Update(ctx context.Context, project *models.Project) error {
	if _, ok := m.projects[project.ID]; !ok {
		return repository.ErrProjectNotFound
	}
	copied := *project
	m.projects[project.ID] = &copied
	return nil
}

func (m *mockProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.projects[id]; !ok {
		return repository.ErrProjectNotFound
	}
	delete(m.projects, id)
	return nil
}

func validProjectInput() ProjectInput {
	return ProjectInput{
		Title:       "Мобильное приложение доставки",
		Description: "Нужно приложение для iOS и Android с картой курьеров",
		Budget:      3000,
		Category:    models.CategoryMobileDevelopment,
		Skills:      []string{"swift", "kotlin"},
		Deadline:    time.Now().Add(30 * 24 * time.Hour),
	}
}

func TestProjectService_CreateProject(t *testing.T) {
	store := newMockProjectStore()
	svc := NewProjectService(store)

	ownerID := uuid.New()
	project, err := svc.CreateProject(context.Background(), ownerID, validProjectInput())
	if err != nil {
		t.Fatalf("создание проекта вернуло ошибку: %v", err)
	}

	if project.Status != models.ProjectStatusOpen {
		t.Fatalf("новый проект должен быть open, получили %s", project.Status)
	}
	if project.OwnerID != ownerID {
		t.Fatal("владелец должен совпадать с создателем")
	}
	if project.ID == uuid.Nil {
		t.Fatal("проекту должен быть присвоен ID")
	}
}

func TestProjectService_CreateProject_Validation(t *testing.T) {
	svc := NewProjectService(newMockProjectStore())

	cases := []struct {
		name   string
		mutate func(*ProjectInput)
	}{
		{name: "короткое название", mutate: func(in *ProjectInput) { in.Title = "ab" }},
		{name: "короткое описание", mutate: func(in *ProjectInput) { in.Description = "мало" }},
		{name: "отрицательный бюджет", mutate: func(in *ProjectInput) { in.Budget = -100 }},
		{name: "неизвестная категория", mutate: func(in *ProjectInput) { in.Category = "plumbing" }},
		{name: "пустой навык", mutate: func(in *ProjectInput) { in.Skills = []string{"go", " "} }},
		{name: "нет срока", mutate: func(in *ProjectInput) { in.Deadline = time.Time{} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validProjectInput()
			tc.mutate(&in)
			if _, err := svc.CreateProject(context.Background(), uuid.New(), in); !apperror.IsValidation(err) {
				t.Fatalf("ожидалась ошибка валидации, получили %v", err)
			}
		})
	}
}

func TestProjectService_GetProject_CountsViews(t *testing.T) {
	store := newMockProjectStore()
	svc := NewProjectService(store)

	created, err := svc.CreateProject(context.Background(), uuid.New(), validProjectInput())
	if err != nil {
		t.Fatalf("создание проекта вернуло ошибку: %v", err)
	}

	got, err := svc.GetProject(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("получение проекта вернуло ошибку: %v", err)
	}
	if got.Views != 1 {
		t.Fatalf("просмотр должен увеличить счётчик до 1, получили %d", got.Views)
	}

	got, err = svc.GetProject(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("получение проекта вернуло ошибку: %v", err)
	}
	if got.Views != 2 {
		t.Fatalf("счётчик должен расти с каждым просмотром, получили %d", got.Views)
	}
}

func TestProjectService_GetProject_ViewsErrorNotFatal(t *testing.T) {
	store := newMockProjectStore()
	svc := NewProjectService(store)

	created, err := svc.CreateProject(context.Background(), uuid.New(), validProjectInput())
	if err != nil {
		t.Fatalf("создание проекта вернуло ошибку: %v", err)
	}

	store.viewsErr = context.DeadlineExceeded

	got, err := svc.GetProject(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("сбой счётчика не должен ломать чтение: %v", err)
	}
	if got.Views != 0 {
		t.Fatalf("при сбое счётчик не увеличивается, получили %d", got.Views)
	}
}

func TestProjectService_GetProject_NotFound(t *testing.T) {
	svc := NewProjectService(newMockProjectStore())

	if _, err := svc.GetProject(context.Background(), uuid.New()); !apperror.IsNotFound(err) {
		t.Fatalf("ожидалась ошибка not found, получили %v", err)
	}
}

func TestProjectService_ListProjects_BadFilter(t *testing.T) {
	svc := NewProjectService(newMockProjectStore())

	_, err := svc.ListProjects(context.Background(), repository.ProjectFilterParams{Status: "archived"})
	if !apperror.IsValidation(err) {
		t.Fatalf("неизвестный статус в фильтре должен отклоняться, получили %v", err)
	}

	_, err = svc.ListProjects(context.Background(), repository.ProjectFilterParams{Category: "plumbing"})
	if !apperror.IsValidation(err) {
		t.Fatalf("неизвестная категория в фильтре должна отклоняться, получили %v", err)
	}
}

func TestProjectService_UpdateProject_OwnerOnly(t *testing.T) {
	store := newMockProjectStore()
	svc := NewProjectService(store)

	created, err := svc.CreateProject(context.Background(), uuid.New(), validProjectInput())
	if err != nil {
		t.Fatalf("создание проекта вернуло ошибку: %v", err)
	}

	in := UpdateProjectInput{ProjectInput: validProjectInput()}
	if _, err := svc.UpdateProject(context.Background(), created.ID, uuid.New(), in); !apperror.IsForbidden(err) {
		t.Fatalf("чужой проект править нельзя, получили %v", err)
	}
}

func TestProjectService_UpdateProject_StatusTransitions(t *testing.T) {
	store := newMockProjectStore()
	svc := NewProjectService(store)
	ctx := context.Background()

	ownerID := uuid.New()
	created, err := svc.CreateProject(ctx, ownerID, validProjectInput())
	if err != nil {
		t.Fatalf("создание проекта вернуло ошибку: %v", err)
	}

	// Без принятой ставки проект не может перейти в работу.
	in := UpdateProjectInput{ProjectInput: validProjectInput(), Status: models.ProjectStatusInProgress}
	if _, err := svc.UpdateProject(ctx, created.ID, ownerID, in); !apperror.IsInvalidState(err) {
		t.Fatalf("переход open -> in_progress без ставки должен отклоняться, получили %v", err)
	}

	// Отмена открытого проекта допустима.
	in.Status = models.ProjectStatusCancelled
	updated, err := svc.UpdateProject(ctx, created.ID, ownerID, in)
	if err != nil {
		t.Fatalf("отмена проекта вернула ошибку: %v", err)
	}
	if updated.Status != models.ProjectStatusCancelled {
		t.Fatalf("проект должен быть отменён, получили %s", updated.Status)
	}
}

func TestProjectService_UpdateProject_AcceptedBidTransitions(t *testing.T) {
	store := newMockProjectStore()
	svc := NewProjectService(store)
	ctx := context.Background()

	ownerID := uuid.New()
	created, err := svc.CreateProject(ctx, ownerID, validProjectInput())
	if err != nil {
		t.Fatalf("создание проекта вернуло ошибку: %v", err)
	}

	// Имитируем принятую ставку.
	bidID := uuid.New()
	stored := store.projects[created.ID]
	stored.Status = models.ProjectStatusInProgress
	stored.AcceptedBidID = &bidID

	// Обратно в open нельзя.
	in := UpdateProjectInput{ProjectInput: validProjectInput(), Status: models.ProjectStatusOpen}
	if _, err := svc.UpdateProject(ctx, created.ID, ownerID, in); !apperror.IsInvalidState(err) {
		t.Fatalf("проект с принятой ставкой не может снова стать open, получили %v", err)
	}

	// Завершение допустимо.
	in.Status = models.ProjectStatusCompleted
	updated, err := svc.UpdateProject(ctx, created.ID, ownerID, in)
	if err != nil {
		t.Fatalf("завершение проекта вернуло ошибку: %v", err)
	}
	if updated.Status != models.ProjectStatusCompleted {
		t.Fatalf("проект должен быть завершён, получили %s", updated.Status)
	}
	if updated.AcceptedBidID == nil || *updated.AcceptedBidID != bidID {
		t.Fatal("ссылка на принятую ставку должна сохраняться")
	}
}

func TestProjectService_DeleteProject(t *testing.T) {
	store := newMockProjectStore()
	svc := NewProjectService(store)
	ctx := context.Background()

	ownerID := uuid.New()
	created, err := svc.CreateProject(ctx, ownerID, validProjectInput())
	if err != nil {
		t.Fatalf("создание проекта вернуло ошибку: %v", err)
	}

	if err := svc.DeleteProject(ctx, created.ID, uuid.New()); !apperror.IsForbidden(err) {
		t.Fatalf("чужой проект удалять нельзя, получили %v", err)
	}

	if err := svc.DeleteProject(ctx, created.ID, ownerID); err != nil {
		t.Fatalf("удаление вернуло ошибку: %v", err)
	}
	if _, ok := store.projects[created.ID]; ok {
		t.Fatal("проект должен быть удалён из хранилища")
	}
}
