package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/camera_shop/internal/hash"
	"github.com/Skotchmaster/camera_shop/internal/logging"
	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/internal/mykafka"
	"github.com/Skotchmaster/camera_shop/internal/repo"
	"github.com/Skotchmaster/camera_shop/internal/transport"
	"github.com/Skotchmaster/camera_shop/pkg/tokens"
)

type UserService struct {
	Repo          *repo.GormRepo
	Events        mykafka.Publisher
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewUserService(r *repo.GormRepo, events mykafka.Publisher, accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *UserService {
	if events == nil {
		events = mykafka.Nop{}
	}
	return &UserService{
		Repo:          r,
		Events:        events,
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
}

func (s *UserService) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResponse, error) {
	l := logging.FromContext(ctx).With("svc", "users.register")

	taken, err := s.Repo.EmailTaken(ctx, req.Email, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: User already exists", ErrValidation)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	u := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		if repo.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: User already exists", ErrValidation)
		}
		return nil, err
	}

	s.publish(ctx, "user_registered", u)
	return s.issue(ctx, u)
}

func (s *UserService) Login(ctx context.Context, req transport.LoginRequest) (*transport.AuthResponse, error) {
	u, err := s.Repo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: Invalid email or password", ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(u.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: Invalid email or password", ErrUnauthorized)
	}
	return s.issue(ctx, u)
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked, so replaying it fails.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*transport.AuthResponse, error) {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	u, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return nil, err
	}

	refreshExp := time.Now().Add(s.RefreshTTL)
	newRefresh, jti, err := tokens.SignRefresh(s.RefreshSecret, u.ID.String(), refreshExp)
	if err != nil {
		return nil, err
	}
	next := &models.RefreshToken{
		Token:     tokens.Sha256Hex(newRefresh),
		UserID:    u.ID,
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	}
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, tokens.Sha256Hex(refreshToken), next); err != nil {
		if errors.Is(err, repo.ErrRefreshUnusable) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: refresh token expired or revoked", ErrUnauthorized)
		}
		return nil, err
	}

	access, accessExp, err := s.signAccess(u)
	if err != nil {
		return nil, err
	}
	return authResponse(u, access, accessExp, newRefresh, refreshExp), nil
}

// Logout revokes the refresh token. Unknown or already revoked tokens are not an error.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}
	return s.Repo.RevokeRefreshToken(ctx, claims.ID)
}

func (s *UserService) Profile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req transport.UpdateProfileRequest) (*transport.AuthResponse, error) {
	u, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User")
	}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		if err := s.ensureEmailFree(ctx, *req.Email, u.ID); err != nil {
			return nil, err
		}
		u.Email = *req.Email
	}
	if req.Password != nil {
		pwHash, err := hash.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = pwHash
	}
	if err := s.saveUser(ctx, u); err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.Profile(ctx, id)
}

func (s *UserService) AdminUpdateUser(ctx context.Context, id uuid.UUID, req transport.AdminUpdateUserRequest) (*models.User, error) {
	u, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User")
	}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		if err := s.ensureEmailFree(ctx, *req.Email, u.ID); err != nil {
			return nil, err
		}
		u.Email = *req.Email
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if err := s.saveUser(ctx, u); err != nil {
		return nil, err
	}
	s.publish(ctx, "user_updated", u)
	return u, nil
}

// DeleteUser refuses to remove the caller's own account so an admin cannot lock
// themselves out.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID, caller Caller) error {
	if id == caller.ID {
		return fmt.Errorf("%w: cannot delete your own account", ErrValidation)
	}
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		return notFound(err, "User")
	}
	s.publishEvent(ctx, id.String(), map[string]any{"type": "user_deleted", "userID": id})
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	taken, err := s.Repo.EmailTaken(ctx, email, self)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: email already in use", ErrConflict)
	}
	return nil
}

func (s *UserService) saveUser(ctx context.Context, u *models.User) error {
	if err := s.Repo.SaveUser(ctx, u); err != nil {
		if repo.IsUniqueViolation(err) {
			return fmt.Errorf("%w: email already in use", ErrConflict)
		}
		return err
	}
	return nil
}

func (s *UserService) signAccess(u *models.User) (string, time.Time, error) {
	exp := time.Now().Add(s.AccessTTL)
	tok, err := tokens.SignAccess(s.AccessSecret, u.ID.String(), u.Role, u.Name, exp)
	return tok, exp, err
}

// issue signs an access token and stores a fresh refresh token.
func (s *UserService) issue(ctx context.Context, u *models.User) (*transport.AuthResponse, error) {
	access, accessExp, err := s.signAccess(u)
	if err != nil {
		return nil, err
	}
	refreshExp := time.Now().Add(s.RefreshTTL)
	refresh, jti, err := tokens.SignRefresh(s.RefreshSecret, u.ID.String(), refreshExp)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, &models.RefreshToken{
		Token:     tokens.Sha256Hex(refresh),
		UserID:    u.ID,
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	}); err != nil {
		return nil, err
	}
	return authResponse(u, access, accessExp, refresh, refreshExp), nil
}

func authResponse(u *models.User, access string, accessExp time.Time, refresh string, refreshExp time.Time) *transport.AuthResponse {
	return &transport.AuthResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		IsAdmin:      u.IsAdmin(),
		Token:        access,
		TokenExp:     accessExp,
		RefreshToken: refresh,
		RefreshExp:   refreshExp,
	}
}

func (s *UserService) publish(ctx context.Context, eventType string, u *models.User) {
	s.publishEvent(ctx, u.ID.String(), map[string]any{
		"type":   eventType,
		"userID": u.ID,
		"email":  u.Email,
		"role":   u.Role,
	})
}

func (s *UserService) publishEvent(ctx context.Context, key string, event map[string]any) {
	if err := s.Events.PublishEvent(ctx, mykafka.TopicUsers, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", mykafka.TopicUsers, "error", err)
	}
}
