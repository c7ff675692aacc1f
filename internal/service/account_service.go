package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/repository"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// ProfileUpdate carries the fields an account may change on itself.
// Role and active flag are admin-only and deliberately absent.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Mobile   *string
	Password *string
}

// AdminUpdate carries the fields an admin may change on any account.
type AdminUpdate struct {
	Name     *string
	Email    *string
	Mobile   *string
	Password *string
	Role     *domain.Role
	IsActive *bool
}

// AccountService coordinates registration, login and account management.
type AccountService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	throttle   *auth.LoginThrottle
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AccountDependencies encapsulates collaborator requirements.
type AccountDependencies struct {
	UserRepo   repository.UserRepository
	Throttle   *auth.LoginThrottle
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAccountService builds the service.
func NewAccountService(cfg config.AuthConfig, deps AccountDependencies) *AccountService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		throttle:   deps.Throttle,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a new customer account.
func (s *AccountService) Register(ctx context.Context, name, email, mobile, password string) (*domain.User, error) {
	return s.create(ctx, name, email, mobile, password, domain.RoleCustomer)
}

// AdminCreate creates an account with an explicit role.
func (s *AccountService) AdminCreate(ctx context.Context, name, email, mobile, password string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		role = domain.RoleCustomer
	}
	return s.create(ctx, name, email, mobile, password, role)
}

func (s *AccountService) create(ctx context.Context, name, email, mobile, password string, role domain.Role) (*domain.User, error) {
	email = NormalizeEmail(email)

	// Friendly pre-check; the UNIQUE constraint settles concurrent races.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		Mobile:       mobile,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAccountRegistered,
		UserID:    user.ID,
		Email:     user.Email,
		Timestamp: time.Now(),
		Payload:   events.AccountRegisteredPayload{Name: user.Name, Role: user.Role},
	})
	return user, nil
}

// Login verifies credentials and issues a bearer token. Lookup and
// password failures share one error so callers cannot probe for emails.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	email = NormalizeEmail(email)

	if !s.throttle.Allow(ctx, email) {
		return "", time.Time{}, domain.ErrTooManyAttempts
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.throttle.RecordFailure(ctx, email)
			return "", time.Time{}, domain.ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		s.throttle.RecordFailure(ctx, email)
		return "", time.Time{}, domain.ErrInvalidCredentials
	}
	s.throttle.Reset(ctx, email)

	token, expiresAt, err := s.tokenMgr.Issue(user.Email, user.Role)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// UpdateProfile applies a self-service partial update.
func (s *AccountService) UpdateProfile(ctx context.Context, id int64, in ProfileUpdate) (*domain.User, error) {
	patch := domain.UserUpdate{
		Name:   in.Name,
		Mobile: in.Mobile,
	}
	if in.Email != nil {
		normalized := NormalizeEmail(*in.Email)
		patch.Email = &normalized
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}
	return s.applyUpdate(ctx, id, patch)
}

// AdminUpdate applies an admin partial update to any account.
func (s *AccountService) AdminUpdate(ctx context.Context, id int64, in AdminUpdate) (*domain.User, error) {
	if in.Role != nil && !in.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": string(*in.Role)})
	}
	patch := domain.UserUpdate{
		Name:     in.Name,
		Mobile:   in.Mobile,
		Role:     in.Role,
		IsActive: in.IsActive,
	}
	if in.Email != nil {
		normalized := NormalizeEmail(*in.Email)
		patch.Email = &normalized
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}
	return s.applyUpdate(ctx, id, patch)
}

func (s *AccountService) applyUpdate(ctx context.Context, id int64, patch domain.UserUpdate) (*domain.User, error) {
	user, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	// An empty patch mutates nothing, so no update event is emitted.
	if patch.Empty() {
		return user, nil
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAccountUpdated,
		UserID:    user.ID,
		Email:     user.Email,
		Timestamp: time.Now(),
		Payload:   events.AccountUpdatedPayload{Fields: patchFields(patch)},
	})
	return user, nil
}

// Get fetches a single account by id.
func (s *AccountService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns all accounts ordered by id.
func (s *AccountService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AccountService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AccountService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// NormalizeEmail lower-cases and trims the login identifier so uniqueness
// is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func patchFields(patch domain.UserUpdate) []string {
	fields := make([]string, 0, 6)
	if patch.Name != nil {
		fields = append(fields, "name")
	}
	if patch.Email != nil {
		fields = append(fields, "email")
	}
	if patch.Mobile != nil {
		fields = append(fields, "mobile")
	}
	if patch.PasswordHash != nil {
		fields = append(fields, "password")
	}
	if patch.Role != nil {
		fields = append(fields, "role")
	}
	if patch.IsActive != nil {
		fields = append(fields, "is_active")
	}
	return fields
}
