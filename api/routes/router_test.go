package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcosvillarreal/reelstack-backend/internal/assets"
	"github.com/marcosvillarreal/reelstack-backend/internal/auth"
	"github.com/marcosvillarreal/reelstack-backend/internal/batch"
	"github.com/marcosvillarreal/reelstack-backend/internal/imaging"
	"github.com/marcosvillarreal/reelstack-backend/internal/reels"
	"github.com/marcosvillarreal/reelstack-backend/internal/themes"
	"github.com/marcosvillarreal/reelstack-backend/internal/users"
	pkgAuth "github.com/marcosvillarreal/reelstack-backend/pkg/auth"
	"github.com/marcosvillarreal/reelstack-backend/pkg/auth/session"
	"github.com/marcosvillarreal/reelstack-backend/pkg/config"
	"github.com/marcosvillarreal/reelstack-backend/pkg/db/models"
	"github.com/marcosvillarreal/reelstack-backend/pkg/logger"
	"github.com/marcosvillarreal/reelstack-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(context.Context, auth.RegisterRequest) (*auth.RegisterResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Refresh(context.Context, auth.RefreshRequest) (*auth.TokenPair, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) Logout(context.Context, string) error {
	return nil
}

type routerStorage struct{}

func (routerStorage) Upload(context.Context, string, io.Reader) error {
	return nil
}

func (routerStorage) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, io.ErrUnexpectedEOF
}

func (routerStorage) Delete(context.Context, string) error {
	return nil
}

func (routerStorage) PublicURL(key string) string {
	return "https://cdn.reelstack.test/" + key
}

func (routerStorage) KeyFromURL(url string) string {
	return strings.TrimPrefix(url, "https://cdn.reelstack.test/")
}

const routerDDL = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  display_name TEXT,
  avatar_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS assets (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  original_filename TEXT NOT NULL,
  mime_type TEXT NOT NULL,
  file_size INTEGER NOT NULL DEFAULT 0,
  storage_url TEXT NOT NULL,
  thumbnail_url TEXT,
  width INTEGER NOT NULL DEFAULT 0,
  height INTEGER NOT NULL DEFAULT 0,
  x REAL NOT NULL DEFAULT 0,
  y REAL NOT NULL DEFAULT 0,
  scale REAL NOT NULL DEFAULT 1,
  rotation REAL NOT NULL DEFAULT 0,
  tags TEXT NOT NULL DEFAULT '[]',
  local_tags TEXT NOT NULL DEFAULT '[]',
  caption TEXT,
  analyzed INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'completed',
  parent_id TEXT,
  version_number INTEGER NOT NULL DEFAULT 1,
  is_original INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_assets_parent_version ON assets (parent_id, version_number) WHERE parent_id IS NOT NULL;
CREATE TABLE IF NOT EXISTS reels (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  asset_ids TEXT NOT NULL DEFAULT '{}',
  theme_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS themes (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  name TEXT NOT NULL,
  description TEXT,
  mood TEXT,
  colors TEXT NOT NULL DEFAULT '[]',
  is_builtin INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0", LogLevel: "debug"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "reelstack-test",
			ExpirationMinutes: 60,
		},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:        time.Minute,
			LoginEmailLimit:    5,
			LoginIPLimit:       20,
			RegisterWindow:     5 * time.Minute,
			RegisterEmailLimit: 3,
			RegisterIPLimit:    20,
		},
	}
}

type routerHarness struct {
	handler http.Handler
	db      *gorm.DB
	cfg     *config.Config
}

func newTestRouter(t *testing.T) *routerHarness {
	t.Helper()

	dsn := "file:router_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec(routerDDL).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}

	processor := imaging.NewProcessor(config.ImagingConfig{
		MaxWidth:      1920,
		MaxHeight:     1080,
		JPEGQuality:   85,
		ThumbnailSize: 300,
	})
	assetRepo := assets.NewRepository(db)
	resolver := assets.NewVersionResolver(assetRepo, 3)
	assetService, err := assets.NewService(assets.ServiceParams{
		Repo:      assetRepo,
		Resolver:  resolver,
		Storage:   routerStorage{},
		Processor: processor,
	})
	if err != nil {
		t.Fatalf("build asset service: %v", err)
	}
	reelService, err := reels.NewService(reels.ServiceParams{Repo: reels.NewRepository(db)})
	if err != nil {
		t.Fatalf("build reel service: %v", err)
	}
	themeService, err := themes.NewService(themes.ServiceParams{Repo: themes.NewRepository(db)})
	if err != nil {
		t.Fatalf("build theme service: %v", err)
	}
	executor, err := batch.NewExecutor(batch.ExecutorParams{
		Repo:      assetRepo,
		Resolver:  resolver,
		Storage:   routerStorage{},
		Processor: processor,
	})
	if err != nil {
		t.Fatalf("build executor: %v", err)
	}
	registry := batch.NewRegistry()
	dispatcher, err := batch.NewDispatcher(batch.DispatcherParams{
		Registry: registry,
		Executor: executor,
		Config:   config.BatchConfig{MaxConcurrency: 2, TaskTimeout: time.Second},
	})
	if err != nil {
		t.Fatalf("build dispatcher: %v", err)
	}

	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "router-test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	handler := NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubPinger{},
		stubSessionChecker{},
		stubAuthService{},
		users.NewRepository(db),
		assetService,
		reelService,
		themeService,
		dispatcher,
		registry,
	)
	return &routerHarness{handler: handler, db: db, cfg: cfg}
}

func (h *routerHarness) seedUser(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{
		Email:        "ansel@reelstack.test",
		Username:     "ansel",
		PasswordHash: "x",
		IsActive:     true,
	}
	if err := h.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (h *routerHarness) bearerFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(h.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthLive(t *testing.T) {
	h := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	h := newTestRouter(t)
	for _, path := range []string{"/api/v1/assets/", "/api/v1/reels/", "/api/v1/themes/", "/api/v1/batch/jobs", "/api/v1/users/me"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		h.handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s got %d", path, resp.Code)
		}
	}
}

func TestUsersMeWithValidToken(t *testing.T) {
	h := newTestRouter(t)
	user := h.seedUser(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", h.bearerFor(t, user.ID))
	resp := httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data users.UserDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Username != "ansel" {
		t.Fatalf("unexpected username: %s", envelope.Data.Username)
	}
}

func TestUsersUpdateMeThroughRouter(t *testing.T) {
	h := newTestRouter(t)
	user := h.seedUser(t)
	token := h.bearerFor(t, user.ID)

	body := `{"display_name":"Ansel A.","avatar_url":"https://cdn.reelstack.test/avatars/ansel.png"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/me", strings.NewReader(body))
	req.Header.Set("Authorization", token)
	resp := httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data users.UserDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.DisplayName == nil || *envelope.Data.DisplayName != "Ansel A." {
		t.Fatalf("display name not updated: %+v", envelope.Data.DisplayName)
	}
	if envelope.Data.AvatarURL == nil || *envelope.Data.AvatarURL != "https://cdn.reelstack.test/avatars/ansel.png" {
		t.Fatalf("avatar url not updated: %+v", envelope.Data.AvatarURL)
	}

	// The patch survives a fresh read.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", token)
	resp = httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	envelope.Data = users.UserDTO{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.DisplayName == nil || *envelope.Data.DisplayName != "Ansel A." {
		t.Fatalf("display name not persisted: %+v", envelope.Data.DisplayName)
	}

	// An invalid avatar url is rejected before touching the row.
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/users/me", strings.NewReader(`{"avatar_url":"not-a-url"}`))
	req.Header.Set("Authorization", token)
	resp = httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAssetLifecycleThroughRouter(t *testing.T) {
	h := newTestRouter(t)
	user := h.seedUser(t)
	bearer := h.bearerFor(t, user.ID)

	body := `{
		"original_filename": "ridge.jpg",
		"mime_type": "image/jpeg",
		"file_size": 512,
		"storage_url": "https://cdn.reelstack.test/assets/ridge.jpg",
		"width": 800,
		"height": 600
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assets/", strings.NewReader(body))
	req.Header.Set("Authorization", bearer)
	resp := httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		Data assets.AssetDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/assets/"+created.Data.ID.String(), nil)
	req.Header.Set("Authorization", bearer)
	resp = httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/assets/"+created.Data.ID.String()+"/versions", nil)
	req.Header.Set("Authorization", bearer)
	resp = httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for versions got %d", resp.Code)
	}
}

func TestBatchValidationThroughRouter(t *testing.T) {
	h := newTestRouter(t)
	user := h.seedUser(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/batch/process", strings.NewReader(`{"asset_ids": [], "operation": "analyze"}`))
	req.Header.Set("Authorization", h.bearerFor(t, user.ID))
	resp := httptest.NewRecorder()
	h.handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
	}
}
