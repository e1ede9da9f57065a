package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcosvillarreal/reelstack-backend/internal/users"
	pkgAuth "github.com/marcosvillarreal/reelstack-backend/pkg/auth"
	"github.com/marcosvillarreal/reelstack-backend/pkg/auth/session"
	"github.com/marcosvillarreal/reelstack-backend/pkg/config"
	"github.com/marcosvillarreal/reelstack-backend/pkg/db/models"
	pkgerrors "github.com/marcosvillarreal/reelstack-backend/pkg/errors"
	"github.com/marcosvillarreal/reelstack-backend/pkg/security"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "reelstack",
	ExpirationMinutes: 30,
}

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    32768,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type stubUserRepo struct {
	byEmail    map[string]*models.User
	byUsername map[string]*models.User
	lastLogin  map[uuid.UUID]time.Time
}

func newStubUserRepo(existing ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{
		byEmail:    make(map[string]*models.User),
		byUsername: make(map[string]*models.User),
		lastLogin:  make(map[uuid.UUID]time.Time),
	}
	for _, u := range existing {
		repo.byEmail[u.Email] = u
		repo.byUsername[u.Username] = u
	}
	return repo
}

func (r *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	user.ID = uuid.New()
	r.byEmail[user.Email] = user
	r.byUsername[user.Username] = user
	return user, nil
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := r.byUsername[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.lastLogin[id] = at
	return nil
}

type stubSessionManager struct {
	tokens map[string]string
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{tokens: make(map[string]string)}
}

func (m *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	m.tokens[accessID] = token
	return token, nil
}

func (m *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := m.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(m.tokens, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	m.tokens[newID] = token
	return newID, token, nil
}

func (m *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	delete(m.tokens, accessID)
	return nil
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func buildService(t *testing.T, repo *stubUserRepo) (Service, *stubSessionManager) {
	t.Helper()
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
		PasswordConfig: testPasswordConfig,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessions
}

func TestRegisterIssuesTokens(t *testing.T) {
	svc, _ := buildService(t, newStubUserRepo())

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "Marta@Example.com",
		Username: "marta",
		Password: "very-secret-pass",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User == nil || resp.User.Email != "marta@example.com" {
		t.Fatalf("expected normalized email, got %+v", resp.User)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Username != "marta" {
		t.Fatalf("unexpected username claim %q", claims.Username)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	existing := &models.User{
		ID:       uuid.New(),
		Email:    "taken@example.com",
		Username: "taken",
	}
	svc, _ := buildService(t, newStubUserRepo(existing))

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "taken@example.com",
		Username: "someone-else",
		Password: "very-secret-pass",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginSucceedsWithValidCredentials(t *testing.T) {
	password := "login-secret-pass"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "marta@example.com",
		Username:     "marta",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     true,
	}
	repo := newStubUserRepo(user)
	svc, _ := buildService(t, repo)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "MARTA@example.com", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if _, ok := repo.lastLogin[user.ID]; !ok {
		t.Fatal("expected last login to be recorded")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "marta@example.com",
		Username:     "marta",
		PasswordHash: mustHashPassword(t, "right-password"),
		IsActive:     true,
	}
	svc, _ := buildService(t, newStubUserRepo(user))

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "wrong-password"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if typed != nil && !strings.Contains(typed.Message(), "invalid credentials") {
		t.Fatalf("expected generic message, got %q", typed.Message())
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	password := "inactive-pass-123"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "gone@example.com",
		Username:     "gone",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     false,
	}
	svc, _ := buildService(t, newStubUserRepo(user))

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	password := "refresh-pass-123"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "marta@example.com",
		Username:     "marta",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     true,
	}
	svc, sessions := buildService(t, newStubUserRepo(user))

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	pair, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected rotated tokens")
	}
	if pair.RefreshToken == login.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	// Old refresh token must be dead after rotation.
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on replay, got %v", err)
	}
	if len(sessions.tokens) != 1 {
		t.Fatalf("expected exactly one live session, got %d", len(sessions.tokens))
	}
}
