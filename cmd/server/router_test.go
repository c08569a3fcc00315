package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/reviewdesk/internal/api"
	apiMiddleware "github.com/phrazzld/reviewdesk/internal/api/middleware"
	"github.com/phrazzld/reviewdesk/internal/api/shared"
	"github.com/phrazzld/reviewdesk/internal/config"
	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/mocks"
	"github.com/phrazzld/reviewdesk/internal/service"
	"github.com/phrazzld/reviewdesk/internal/service/auth"
	"github.com/phrazzld/reviewdesk/internal/store"
	"github.com/phrazzld/reviewdesk/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAdmin    = domain.Principal{ID: uuid.New(), Username: "admin", Role: domain.RoleAdmin}
	testReviewer = domain.Principal{ID: uuid.New(), Username: "kim", Role: domain.RoleReviewer}
)

// newTestApplication returns an application backed by function-field fakes.
// The tokens "admin-token" and "reviewer-token" authenticate as testAdmin
// and testReviewer.
func newTestApplication() *application {
	jwtService := &mocks.MockJWTService{
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			switch token {
			case "admin-token":
				return mocks.ClaimsFor(testAdmin), nil
			case "reviewer-token":
				return mocks.ClaimsFor(testReviewer), nil
			default:
				return nil, auth.ErrInvalidToken
			}
		},
	}

	return &application{
		config: &config.Config{
			Server: config.ServerConfig{Port: 8080, LogLevel: "info", RequestTimeoutSeconds: 30, ShutdownTimeoutSeconds: 5},
			Auth:   config.AuthConfig{CookieSecure: false},
		},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		location:   time.UTC,
		jwtService: jwtService,
		authService: &mocks.MockAuthService{
			LoginFn: func(_ context.Context, username, _ string) (*service.LoginResult, error) {
				if username != "admin" {
					return nil, service.ErrInvalidCredentials
				}
				return &service.LoginResult{Token: "admin-token", Principal: testAdmin, ExpiresAt: time.Now().Add(time.Hour)}, nil
			},
		},
		taskService: &mocks.MockTaskService{
			ListTasksFn: func(context.Context, store.TaskFilter) ([]*domain.TaskView, error) {
				return []*domain.TaskView{}, nil
			},
			ListReviewerTasksFn: func(_ context.Context, reviewerID uuid.UUID) ([]*domain.TaskView, error) {
				return []*domain.TaskView{}, nil
			},
		},
		settlementService: &mocks.MockSettlementService{
			MonthDetailFn: func(_ context.Context, reviewerID uuid.UUID, month string) (*domain.SettlementDetail, error) {
				return &domain.SettlementDetail{Month: domain.Month(month), Tasks: []*domain.ApprovedTask{}}, nil
			},
		},
		reviewerService: &mocks.MockReviewerService{
			ListReviewersFn: func(context.Context) ([]*domain.ReviewerSummary, error) {
				return nil, nil
			},
		},
		cafeService: &mocks.MockCafeService{},
	}
}

func TestRouter_RoleGates(t *testing.T) {
	t.Parallel()

	router := newTestApplication().setupRouter()

	tests := []struct {
		name           string
		method         string
		path           string
		token          string
		expectedStatus int
	}{
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
		{"verify is public", http.MethodGet, "/api/auth/verify", "admin-token", http.StatusOK},
		{"admin tasks without token", http.MethodGet, "/api/admin/tasks", "", http.StatusUnauthorized},
		{"admin tasks with bad token", http.MethodGet, "/api/admin/tasks", "forged", http.StatusUnauthorized},
		{"admin tasks as admin", http.MethodGet, "/api/admin/tasks", "admin-token", http.StatusOK},
		{"admin tasks as reviewer", http.MethodGet, "/api/admin/tasks", "reviewer-token", http.StatusForbidden},
		{"admin reviewers as admin", http.MethodGet, "/api/admin/reviewers", "admin-token", http.StatusOK},
		{"reviewer tasks as reviewer", http.MethodGet, "/api/reviewer/tasks", "reviewer-token", http.StatusOK},
		{"reviewer tasks as admin", http.MethodGet, "/api/reviewer/tasks", "admin-token", http.StatusForbidden},
		{"unknown route", http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, testutils.NewJSONRequest(t, tc.method, tc.path, nil, tc.token))

			assert.Equal(t, tc.expectedStatus, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get(apiMiddleware.TraceIDHeader))
		})
	}
}

func TestRouter_ForbiddenBodyNamesRoles(t *testing.T) {
	t.Parallel()

	router := newTestApplication().setupRouter()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutils.NewJSONRequest(t, http.MethodGet, "/api/admin/settlements", nil, "reviewer-token"))

	require.Equal(t, http.StatusForbidden, rec.Code)
	var resp shared.ForbiddenResponse
	testutils.DecodeJSONResponse(t, rec, &resp)
	assert.Equal(t, "reviewer", resp.UserRole)
	assert.Equal(t, []string{"admin"}, resp.RequiredRoles)
	assert.Equal(t, "Access denied. Required role: admin, but got: reviewer", resp.Message)
	assert.NotEmpty(t, resp.TraceID)
}

func TestRouter_LoginSessionCookieAuthenticates(t *testing.T) {
	t.Parallel()

	router := newTestApplication().setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutils.NewJSONRequest(t, http.MethodPost, "/api/auth/login",
		api.LoginRequest{Username: "admin", Password: "pw"}, ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == shared.TokenCookieName {
			session = c
		}
	}
	require.NotNil(t, session)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reviewers", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reviewers":[]}`, rec.Body.String())
}

func TestRouter_MonthParam(t *testing.T) {
	t.Parallel()

	router := newTestApplication().setupRouter()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutils.NewJSONRequest(t, http.MethodGet, "/api/reviewer/settlements/2024-06", nil, "reviewer-token"))

	require.Equal(t, http.StatusOK, rec.Code)
	var detail domain.SettlementDetail
	testutils.DecodeJSONResponse(t, rec, &detail)
	assert.Equal(t, domain.Month("2024-06"), detail.Month)
}

func TestBootstrapAdmin(t *testing.T) {
	t.Parallel()

	t.Run("skipped without username", func(t *testing.T) {
		t.Parallel()
		app := newTestApplication()
		app.authService = &mocks.MockAuthService{
			EnsureAdminFn: func(context.Context, string, string) error {
				t.Fatal("EnsureAdmin must not be called")
				return nil
			},
		}
		require.NoError(t, app.bootstrapAdmin(context.Background()))
	})

	t.Run("creates configured admin", func(t *testing.T) {
		t.Parallel()
		app := newTestApplication()
		app.config.Auth.BootstrapAdminUsername = "root"
		app.config.Auth.BootstrapAdminPassword = "s3cret-pass"
		var got string
		app.authService = &mocks.MockAuthService{
			EnsureAdminFn: func(_ context.Context, username, password string) error {
				got = username + ":" + password
				return nil
			},
		}
		require.NoError(t, app.bootstrapAdmin(context.Background()))
		assert.Equal(t, "root:s3cret-pass", got)
	})
}
