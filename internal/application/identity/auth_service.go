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

// OTPMailer delivers login codes
type OTPMailer interface {
	SendLoginOTP(ctx context.Context, email, code string) error
}

// Authentication errors
var (
	ErrInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Invalid credentials")
	ErrInvalidOTP         = shared.NewDomainError(shared.CodeUnauthorized, "Invalid or expired OTP")
	ErrNotAdmin           = shared.NewDomainError(shared.CodeForbidden, "Access denied. Admin only.")
	ErrEmailTaken         = shared.NewDomainError(shared.CodeAlreadyExists, "Email already registered")
	ErrUsernameTaken      = shared.NewDomainError(shared.CodeAlreadyExists, "Username already taken")
	ErrUserNotFound       = shared.NewDomainError(shared.CodeNotFound, "User not found")
)

// AuthService handles registration, logins and the caller's own profile
type AuthService struct {
	userRepo       identity.UserRepository
	otpStore       identity.OTPStore
	mailer         OTPMailer
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	otpStore identity.OTPStore,
	mailer OTPMailer,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		otpStore:   otpStore,
		mailer:     mailer,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
		now:        time.Now,
	}
}

// SetEventPublisher sets the event publisher for the service
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Register creates a customer account and logs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	user, err := identity.NewCustomer(req.Email, req.Name, req.Mobile, req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.publishUserEvents(ctx, user)

	s.logger.Info("customer registered", zap.Int64("user_id", user.ID))
	return s.issue(ctx, user)
}

// Login authenticates by email or username. Every failure reports the same
// error so callers cannot probe which accounts exist.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.findByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("login for unknown account", zap.String("login", req.Login))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("invalid password attempt", zap.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

// AdminLogin is Login restricted to administrators
func (s *AuthService) AdminLogin(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.findByLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsAdmin() {
		s.logger.Warn("non-admin attempted admin login", zap.Int64("user_id", user.ID))
		return nil, ErrNotAdmin
	}
	return s.issue(ctx, user)
}

func (s *AuthService) findByLogin(ctx context.Context, login string) (*identity.User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, shared.ErrNotFound
	}
	if strings.Contains(login, "@") {
		return s.userRepo.FindByEmail(ctx, strings.ToLower(login))
	}
	return s.userRepo.FindByUsername(ctx, strings.ToLower(login))
}

// RefreshToken exchanges a refresh token, re-reading the user's role
func (s *AuthService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Warn("refresh token validation failed", zap.Error(err))
		return nil, tokenError(err)
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		if errors.Is(err, auth.ErrTokenBlacklisted) {
			return nil, tokenError(err)
		}
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	pair, err := s.jwtService.RefreshTokenPair(req.RefreshToken, tokenInput(user))
	if err != nil {
		s.logger.Warn("token refresh failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, tokenError(err)
	}
	return toAuthResponse(pair, user), nil
}

// Logout revokes the presented access token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("failed to revoke token on logout", zap.Int64("user_id", claims.UserID), zap.Error(err))
		return err
	}
	s.logger.Info("user logged out", zap.Int64("user_id", claims.UserID))
	return nil
}

// SendOTP stores a fresh login code for the email and mails it
func (s *AuthService) SendOTP(ctx context.Context, req SendOTPRequest) (*OTPSentResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Email is required")
	}

	code, err := identity.GenerateOTP()
	if err != nil {
		return nil, err
	}
	if err := s.otpStore.Save(ctx, email, code, identity.OTPTTL); err != nil {
		return nil, err
	}
	if s.mailer != nil {
		if err := s.mailer.SendLoginOTP(ctx, email, code); err != nil {
			s.logger.Error("failed to send otp email", zap.String("email", email), zap.Error(err))
			return nil, shared.NewDomainError("EMAIL_FAILED", "Failed to send OTP email")
		}
	}

	s.logger.Info("otp sent", zap.String("email", email))
	return &OTPSentResponse{Email: email, ExpiresAt: s.now().Add(identity.OTPTTL)}, nil
}

// VerifyOTP consumes the code and logs in, creating a passwordless customer
// on first login
func (s *AuthService) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	ok, err := s.otpStore.Consume(ctx, email, strings.TrimSpace(req.Code))
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Warn("invalid otp", zap.String("email", email))
		return nil, ErrInvalidOTP
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrNotFound):
		user, err = identity.NewPasswordlessCustomer(email)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		s.publishUserEvents(ctx, user)
		s.logger.Info("customer created by otp login", zap.Int64("user_id", user.ID))
	default:
		return nil, err
	}
	return s.issue(ctx, user)
}

// GetProfile returns the caller's account
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*UserResponse, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile changes the caller's name and mobile
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(req.Name, req.Mobile); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword verifies the old password and stores the new one
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info("user password changed", zap.Int64("user_id", userID))
	return nil
}

// ValidateAccessToken checks signature, expiry and revocation
func (s *AuthService) ValidateAccessToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil {
		return nil
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return err
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserTokenRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			return err
		}
	}
	if revoked {
		return auth.ErrTokenBlacklisted
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, user *identity.User) (*AuthResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(tokenInput(user))
	if err != nil {
		s.logger.Error("failed to generate token pair", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	user.RecordLogin(s.now())
	if err := s.userRepo.Update(ctx, user); err != nil {
		// The login itself succeeded
		s.logger.Warn("failed to record login", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	return toAuthResponse(pair, user), nil
}

func (s *AuthService) loadUser(ctx context.Context, userID int64) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) publishUserEvents(ctx context.Context, user *identity.User) {
	events := user.GetDomainEvents()
	user.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish user events", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}

// tokenError maps JWT validation failures onto UNAUTHORIZED domain errors
func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError(shared.CodeUnauthorized, "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError(shared.CodeUnauthorized, "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return shared.NewDomainError(shared.CodeUnauthorized, "Token has been revoked")
	default:
		return shared.NewDomainError(shared.CodeUnauthorized, "Invalid refresh token")
	}
}
