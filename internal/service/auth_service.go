package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/reviewdesk/internal/domain"
	"github.com/phrazzld/reviewdesk/internal/platform/logger"
	"github.com/phrazzld/reviewdesk/internal/service/auth"
	"github.com/phrazzld/reviewdesk/internal/store"
)

// LoginResult is a successful login.
type LoginResult struct {
	Token     string
	Principal domain.Principal
	ExpiresAt time.Time
}

// AuthService authenticates admins and reviewers.
type AuthService interface {
	// Login checks the credentials against admins first, then reviewers,
	// and issues a token. Any mismatch returns ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*LoginResult, error)

	// EnsureAdmin creates the admin account if no admin has the username.
	EnsureAdmin(ctx context.Context, username, password string) error
}

type authServiceImpl struct {
	admins    store.AdminStore
	reviewers store.ReviewerStore
	jwt       auth.JWTService
	verifier  auth.PasswordVerifier
	hasher    auth.PasswordHasher
	logger    *slog.Logger
	timeFunc  func() time.Time
}

var _ AuthService = (*authServiceImpl)(nil)

// NewAuthService creates a new AuthService.
func NewAuthService(
	admins store.AdminStore,
	reviewers store.ReviewerStore,
	jwtService auth.JWTService,
	verifier auth.PasswordVerifier,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) (AuthService, error) {
	if admins == nil {
		return nil, domain.NewValidationError("admins", "cannot be nil", domain.ErrValidation)
	}
	if reviewers == nil {
		return nil, domain.NewValidationError("reviewers", "cannot be nil", domain.ErrValidation)
	}
	if jwtService == nil {
		return nil, domain.NewValidationError("jwtService", "cannot be nil", domain.ErrValidation)
	}
	if verifier == nil {
		return nil, domain.NewValidationError("verifier", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &authServiceImpl{
		admins:    admins,
		reviewers: reviewers,
		jwt:       jwtService,
		verifier:  verifier,
		hasher:    hasher,
		logger:    logger.With(slog.String("component", "auth_service")),
		timeFunc:  time.Now,
	}, nil
}

// Login implements AuthService.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("username", username))

	principal, err := s.authenticate(ctx, username, password)
	if err != nil {
		logFailure(log, "login failed", err)
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, err
		}
		return nil, NewServiceError("auth", "login", "could not authenticate", err)
	}

	token, err := s.jwt.GenerateToken(ctx, principal)
	if err != nil {
		log.Error("failed to issue token", slog.String("error", err.Error()))
		return nil, NewServiceError("auth", "login", "could not issue token", err)
	}

	log.Info("login succeeded",
		slog.String("user_id", principal.ID.String()),
		slog.String("role", string(principal.Role)))
	return &LoginResult{
		Token:     token,
		Principal: principal,
		ExpiresAt: s.timeFunc().Add(s.jwt.TokenLifetime()),
	}, nil
}

func (s *authServiceImpl) authenticate(ctx context.Context, username, password string) (domain.Principal, error) {
	if username == "" || password == "" {
		return domain.Principal{}, ErrInvalidCredentials
	}

	admin, err := s.admins.GetByUsername(ctx, username)
	switch {
	case err == nil:
		if s.verifier.Compare(admin.PasswordHash, password) != nil {
			return domain.Principal{}, ErrInvalidCredentials
		}
		return domain.Principal{ID: admin.ID, Username: admin.Username, Role: domain.RoleAdmin}, nil
	case !errors.Is(err, store.ErrAdminNotFound):
		return domain.Principal{}, err
	}

	reviewer, err := s.reviewers.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrReviewerNotFound) {
			return domain.Principal{}, ErrInvalidCredentials
		}
		return domain.Principal{}, err
	}
	if s.verifier.Compare(reviewer.PasswordHash, password) != nil {
		return domain.Principal{}, ErrInvalidCredentials
	}
	return domain.Principal{ID: reviewer.ID, Username: reviewer.Username, Role: domain.RoleReviewer}, nil
}

// EnsureAdmin implements AuthService.
func (s *authServiceImpl) EnsureAdmin(ctx context.Context, username, password string) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("username", username))

	if username == "" {
		return nil
	}

	_, err := s.admins.GetByUsername(ctx, username)
	if err == nil {
		log.Debug("bootstrap admin already exists")
		return nil
	}
	if !errors.Is(err, store.ErrAdminNotFound) {
		return NewServiceError("auth", "ensure_admin", "could not look up admin", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return NewServiceError("auth", "ensure_admin", "could not hash password", err)
	}

	admin, err := domain.NewAdmin(username, hash, s.timeFunc())
	if err != nil {
		return NewServiceError("auth", "ensure_admin", "invalid admin account", err)
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			return nil
		}
		return NewServiceError("auth", "ensure_admin", "could not create admin", err)
	}

	log.Info("bootstrap admin created", slog.String("admin_id", admin.ID.String()))
	return nil
}
