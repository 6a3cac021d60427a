package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sudharshini/backend/internal/domain/identity"
	"github.com/sudharshini/backend/internal/domain/shared"
	"github.com/sudharshini/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// ErrNotDeliveryMan is returned when an admin targets a non-agent account
var ErrNotDeliveryMan = shared.NewDomainError(shared.CodeNotFound, "Delivery man not found")

// UserService holds the admin-side account operations
type UserService struct {
	userRepo  identity.UserRepository
	blacklist auth.TokenBlacklist
	revokeTTL time.Duration
	logger    *zap.Logger
}

// NewUserService creates the admin user service. revokeTTL bounds how long
// a removed agent's tokens stay on the blacklist and should match the
// refresh token lifetime.
func NewUserService(userRepo identity.UserRepository, blacklist auth.TokenBlacklist, revokeTTL time.Duration, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo:  userRepo,
		blacklist: blacklist,
		revokeTTL: revokeTTL,
		logger:    logger,
	}
}

// ListUsers lists every account, newest first
func (s *UserService) ListUsers(ctx context.Context) ([]UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToUserResponses(users), nil
}

// ListDeliveryMen lists delivery agents, newest first
func (s *UserService) ListDeliveryMen(ctx context.Context) ([]UserResponse, error) {
	users, err := s.userRepo.FindByRole(ctx, identity.RoleDeliveryMan)
	if err != nil {
		return nil, err
	}
	return ToUserResponses(users), nil
}

// GetDeliveryMan returns one agent
func (s *UserService) GetDeliveryMan(ctx context.Context, id int64) (*UserResponse, error) {
	user, err := s.loadDeliveryMan(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// CreateDeliveryMan adds an agent with a username and password
func (s *UserService) CreateDeliveryMan(ctx context.Context, req CreateDeliveryManRequest) (*UserResponse, error) {
	if err := s.ensureUnique(ctx, req.Email, req.Username, nil); err != nil {
		return nil, err
	}

	user, err := identity.NewDeliveryMan(req.Name, req.Email, req.Mobile, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	user.ClearDomainEvents()

	s.logger.Info("delivery man created", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateDeliveryMan applies the non-empty fields of req
func (s *UserService) UpdateDeliveryMan(ctx context.Context, id int64, req UpdateDeliveryManRequest) (*UserResponse, error) {
	user, err := s.loadDeliveryMan(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, req.Email, req.Username, user); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Name) != "" {
		if err := user.SetName(req.Name); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(req.Email) != "" {
		if err := user.SetEmail(req.Email); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(req.Mobile) != "" {
		if err := user.SetMobile(req.Mobile); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(req.Username) != "" {
		if err := user.SetUsername(req.Username); err != nil {
			return nil, err
		}
	}
	if req.Password != "" {
		if err := user.SetPassword(req.Password); err != nil {
			return nil, err
		}
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if req.Password != "" {
		s.revoke(ctx, user.ID)
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// DeleteDeliveryMan removes an agent and revokes their sessions
func (s *UserService) DeleteDeliveryMan(ctx context.Context, id int64) error {
	if _, err := s.loadDeliveryMan(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.revoke(ctx, id)
	s.logger.Info("delivery man deleted", zap.Int64("user_id", id))
	return nil
}

func (s *UserService) loadDeliveryMan(ctx context.Context, id int64) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrNotDeliveryMan
		}
		return nil, err
	}
	if !user.IsDeliveryMan() {
		return nil, ErrNotDeliveryMan
	}
	return user, nil
}

// ensureUnique rejects an email or username held by an account other than self
func (s *UserService) ensureUnique(ctx context.Context, email, username string, self *identity.User) error {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.ToLower(strings.TrimSpace(username))

	if email != "" && (self == nil || self.Email != email) {
		exists, err := s.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailTaken
		}
	}
	if username != "" && (self == nil || self.Username != username) {
		exists, err := s.userRepo.ExistsByUsername(ctx, username)
		if err != nil {
			return err
		}
		if exists {
			return ErrUsernameTaken
		}
	}
	return nil
}

func (s *UserService) revoke(ctx context.Context, userID int64) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.RevokeUserTokens(ctx, userID, s.revokeTTL); err != nil {
		s.logger.Warn("failed to revoke user tokens", zap.Int64("user_id", userID), zap.Error(err))
	}
}
