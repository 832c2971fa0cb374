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

// mockAuthRepository хранит пользователей и сессии в памяти.
type mockAuthRepository struct {
	byEmail  map[string]*models.User
	byID     map[uuid.UUID]*models.User
	sessions map[string]*models.Session
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		byEmail:  make(map[string]*models.User),
		byID:     make(map[uuid.UUID]*models.User),
		sessions: make(map[string]*models.Session),
	}
}

func (m *mockAuthRepository) Create(ctx context.Context, user *models.User) error {
	if _, exists := m.byEmail[user.Email]; exists {
		return repository.ErrEmailTaken
	}
	user.ID = uuid.New()
	user.IsActive = true
	user.CreatedAt = time.Now()
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *mockAuthRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	u, ok := m.byID[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

func (m *mockAuthRepository) CreateSession(ctx context.Context, session *models.Session) error {
	session.ID = uuid.New()
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockAuthRepository) GetSession(ctx context.Context, refreshToken string) (*models.Session, error) {
	if s, ok := m.sessions[refreshToken]; ok {
		return s, nil
	}
	return nil, repository.ErrSessionNotFound
}

func (m *mockAuthRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

func newTestTokenManager() *TokenManager {
	return NewTokenManager("access-test-secret", "refresh-test-secret", 15*time.Minute, 7*24*time.Hour)
}

func newAuthTestEnv() (*AuthService, *mockAuthRepository) {
	repo := newMockAuthRepository()
	return NewAuthService(repo, newTestTokenManager()), repo
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, repo := newAuthTestEnv()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "anna@example.com",
		Name:     "Анна",
		Password: "Password123",
		Role:     models.RoleFreelancer,
	}, map[string]string{"user_agent": "test-agent", "ip": "127.0.0.1"})
	if err != nil {
		t.Fatalf("регистрация вернула ошибку: %v", err)
	}
	if result.User.ID == uuid.Nil {
		t.Fatal("пользователю должен быть присвоен ID")
	}
	if result.TokenPair.AccessToken == "" || result.TokenPair.RefreshToken == "" {
		t.Fatal("после регистрации должна быть выдана пара токенов")
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("ожидалась одна сессия, получили %d", len(repo.sessions))
	}

	session := repo.sessions[result.TokenPair.RefreshToken]
	if session == nil {
		t.Fatal("сессия должна быть сохранена по refresh токену")
	}
	if session.UserAgent == nil || *session.UserAgent != "test-agent" {
		t.Fatal("user agent должен сохраняться в сессии")
	}

	login, err := svc.Login(ctx, LoginInput{Email: "anna@example.com", Password: "Password123"}, nil)
	if err != nil {
		t.Fatalf("вход вернул ошибку: %v", err)
	}
	if login.User.ID != result.User.ID {
		t.Fatal("вход должен вернуть того же пользователя")
	}
	if login.User.LastLoginAt == nil {
		t.Fatal("после входа должно обновиться время последнего входа")
	}
}

func TestAuthService_Register_EmailNormalized(t *testing.T) {
	svc, repo := newAuthTestEnv()

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  boris@example.com  ",
		Name:     "Борис",
		Password: "Password123",
		Role:     models.RoleClient,
	}, nil)
	if err != nil {
		t.Fatalf("регистрация вернула ошибку: %v", err)
	}
	if result.User.Email != "boris@example.com" {
		t.Fatalf("email должен быть нормализован, получили %q", result.User.Email)
	}
	if _, ok := repo.byEmail["boris@example.com"]; !ok {
		t.Fatal("пользователь должен храниться по нормализованному email")
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthTestEnv()
	ctx := context.Background()

	in := RegisterInput{
		Email:    "carl@example.com",
		Name:     "Карл",
		Password: "Password123",
		Role:     models.RoleClient,
	}
	if _, err := svc.Register(ctx, in, nil); err != nil {
		t.Fatalf("первая регистрация вернула ошибку: %v", err)
	}

	if _, err := svc.Register(ctx, in, nil); !apperror.IsConflict(err) {
		t.Fatalf("повторная регистрация должна давать конфликт, получили %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newAuthTestEnv()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{name: "плохой email", in: RegisterInput{Email: "not-an-email", Name: "Имя", Password: "Password123", Role: models.RoleClient}},
		{name: "слабый пароль", in: RegisterInput{Email: "ok@example.com", Name: "Имя", Password: "short", Role: models.RoleClient}},
		{name: "пустое имя", in: RegisterInput{Email: "ok@example.com", Name: "   ", Password: "Password123", Role: models.RoleClient}},
		{name: "неизвестная роль", in: RegisterInput{Email: "ok@example.com", Name: "Имя", Password: "Password123", Role: "admin"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.in, nil); !apperror.IsValidation(err) {
				t.Fatalf("ожидалась ошибка валидации, получили %v", err)
			}
		})
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _ := newAuthTestEnv()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		Email:    "dina@example.com",
		Name:     "Дина",
		Password: "Password123",
		Role:     models.RoleFreelancer,
	}, nil); err != nil {
		t.Fatalf("регистрация вернула ошибку: %v", err)
	}

	_, err := svc.Login(ctx, LoginInput{Email: "dina@example.com", Password: "WrongPassword1"}, nil)
	if err != apperror.ErrInvalidCredentials {
		t.Fatalf("неверный пароль должен давать ErrInvalidCredentials, получили %v", err)
	}

	// Несуществующий пользователь даёт ту же ошибку, чтобы не раскрывать наличие email.
	_, err = svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "Password123"}, nil)
	if err != apperror.ErrInvalidCredentials {
		t.Fatalf("неизвестный email должен давать ErrInvalidCredentials, получили %v", err)
	}
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	svc, repo := newAuthTestEnv()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "eva@example.com",
		Name:     "Ева",
		Password: "Password123",
		Role:     models.RoleClient,
	}, nil)
	if err != nil {
		t.Fatalf("регистрация вернула ошибку: %v", err)
	}

	repo.byID[result.User.ID].IsActive = false

	if _, err := svc.Login(ctx, LoginInput{Email: "eva@example.com", Password: "Password123"}, nil); !apperror.IsForbidden(err) {
		t.Fatalf("заблокированный аккаунт не должен входить, получили %v", err)
	}
}

func TestAuthService_Refresh_RotatesSession(t *testing.T) {
	svc, repo := newAuthTestEnv()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "fred@example.com",
		Name:     "Фёдор",
		Password: "Password123",
		Role:     models.RoleFreelancer,
	}, nil)
	if err != nil {
		t.Fatalf("регистрация вернула ошибку: %v", err)
	}

	oldToken := result.TokenPair.RefreshToken

	pair, err := svc.Refresh(ctx, oldToken, nil)
	if err != nil {
		t.Fatalf("refresh вернул ошибку: %v", err)
	}
	if pair.RefreshToken == oldToken {
		t.Fatal("refresh токен должен ротироваться")
	}
	if _, ok := repo.sessions[oldToken]; ok {
		t.Fatal("старая сессия должна быть удалена")
	}
	if _, ok := repo.sessions[pair.RefreshToken]; !ok {
		t.Fatal("новая сессия должна быть сохранена")
	}

	// Повторное использование старого токена не проходит.
	if _, err := svc.Refresh(ctx, oldToken, nil); err == nil {
		t.Fatal("старый refresh токен не должен приниматься повторно")
	}
}

func TestAuthService_Refresh_GarbageToken(t *testing.T) {
	svc, _ := newAuthTestEnv()

	if _, err := svc.Refresh(context.Background(), "definitely-not-a-jwt", nil); err == nil {
		t.Fatal("мусорный refresh токен должен отклоняться")
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, repo := newAuthTestEnv()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "gleb@example.com",
		Name:     "Глеб",
		Password: "Password123",
		Role:     models.RoleClient,
	}, nil)
	if err != nil {
		t.Fatalf("регистрация вернула ошибку: %v", err)
	}

	if err := svc.Logout(ctx, result.TokenPair.RefreshToken); err != nil {
		t.Fatalf("logout вернул ошибку: %v", err)
	}
	if len(repo.sessions) != 0 {
		t.Fatal("после logout сессий остаться не должно")
	}
}

func TestTokenManager_ParseAccess(t *testing.T) {
	tm := newTestTokenManager()

	user := &models.User{ID: uuid.New(), Role: models.RoleFreelancer}
	pair, _, _, err := tm.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось выпустить токены: %v", err)
	}

	userID, role, err := tm.ParseAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse вернул ошибку: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("ожидался userID %s, получили %s", user.ID, userID)
	}
	if role != models.RoleFreelancer {
		t.Fatalf("ожидалась роль freelancer, получили %s", role)
	}

	// Access токен не должен проходить как refresh и наоборот.
	if _, err := tm.ParseRefresh(pair.AccessToken); err == nil {
		t.Fatal("access токен не должен приниматься как refresh")
	}
	if _, _, err := tm.ParseAccess(pair.RefreshToken); err == nil {
		t.Fatal("refresh токен не должен приниматься как access")
	}
}
