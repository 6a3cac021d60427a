package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sudharshini/backend/internal/domain/identity"
	"github.com/sudharshini/backend/internal/domain/shared"
	"github.com/sudharshini/backend/internal/infrastructure/auth"
	"github.com/sudharshini/backend/internal/infrastructure/config"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	identity.BcryptCost = bcrypt.MinCost
}

var testNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

type authFixture struct {
	users     *MockUserRepository
	otps      *MockOTPStore
	mailer    *MockOTPMailer
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
	svc       *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	f := &authFixture{
		users:     new(MockUserRepository),
		otps:      new(MockOTPStore),
		mailer:    new(MockOTPMailer),
		blacklist: auth.NewInMemoryTokenBlacklist(),
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "test",
			MaxRefreshCount:        5,
		}),
	}
	f.svc = NewAuthService(f.users, f.otps, f.mailer, f.jwt, f.blacklist, zaptest.NewLogger(t))
	f.svc.now = func() time.Time { return testNow }
	return f
}

func testCustomer(t *testing.T, id int64) *identity.User {
	t.Helper()
	u, err := identity.NewCustomer("asha@example.com", "Asha", "9876543210", "secret123")
	require.NoError(t, err)
	u.ID = id
	u.ClearDomainEvents()
	return u
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates customer and issues tokens", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("ExistsByEmail", ctx, "asha@example.com").Return(false, nil)
		f.users.On("Create", ctx, mock.AnythingOfType("*identity.User")).Run(func(args mock.Arguments) {
			args.Get(1).(*identity.User).ID = 7
		}).Return(nil)
		f.users.On("Update", ctx, mock.Anything).Return(nil)

		resp, err := f.svc.Register(ctx, RegisterRequest{
			Email: " Asha@Example.com ", Name: "Asha", Mobile: "9876543210", Password: "secret123",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(7), resp.User.ID)
		assert.Equal(t, "CUSTOMER", resp.User.Role)
		assert.Equal(t, &testNow, resp.User.LastLoginAt)

		claims, err := f.jwt.ValidateAccessToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.UserID)
		assert.Equal(t, "CUSTOMER", claims.Role)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("ExistsByEmail", ctx, "asha@example.com").Return(true, nil)

		_, err := f.svc.Register(ctx, RegisterRequest{Email: "asha@example.com", Name: "Asha", Password: "secret123"})

		assert.ErrorIs(t, err, ErrEmailTaken)
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("by email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", ctx, "asha@example.com").Return(testCustomer(t, 7), nil)
		f.users.On("Update", ctx, mock.Anything).Return(nil)

		resp, err := f.svc.Login(ctx, LoginRequest{Login: "ASHA@example.com", Password: "secret123"})

		require.NoError(t, err)
		assert.Equal(t, int64(7), resp.User.ID)
		assert.Equal(t, "Bearer", resp.TokenType)
	})

	t.Run("by username", func(t *testing.T) {
		f := newAuthFixture(t)
		agent, err := identity.NewDeliveryMan("Ravi", "ravi@example.com", "", "ravi", "secret123")
		require.NoError(t, err)
		agent.ID = 21
		f.users.On("FindByUsername", ctx, "ravi").Return(agent, nil)
		f.users.On("Update", ctx, mock.Anything).Return(nil)

		resp, err := f.svc.Login(ctx, LoginRequest{Login: "Ravi", Password: "secret123"})

		require.NoError(t, err)
		assert.Equal(t, "DELIVERY_MAN", resp.User.Role)
	})

	t.Run("wrong password and unknown account report the same error", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", ctx, "asha@example.com").Return(testCustomer(t, 7), nil)
		f.users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, shared.ErrNotFound)

		_, err := f.svc.Login(ctx, LoginRequest{Login: "asha@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = f.svc.Login(ctx, LoginRequest{Login: "ghost@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("repository failures propagate", func(t *testing.T) {
		f := newAuthFixture(t)
		boom := errors.New("db down")
		f.users.On("FindByEmail", ctx, "asha@example.com").Return(nil, boom)

		_, err := f.svc.Login(ctx, LoginRequest{Login: "asha@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestAuthService_AdminLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("admin gets tokens", func(t *testing.T) {
		f := newAuthFixture(t)
		admin, err := identity.NewAdmin("admin", "admin@sudharshini.com", "admin123")
		require.NoError(t, err)
		admin.ID = 1
		f.users.On("FindByUsername", ctx, "admin").Return(admin, nil)
		f.users.On("Update", ctx, mock.Anything).Return(nil)

		resp, err := f.svc.AdminLogin(ctx, LoginRequest{Login: "admin", Password: "admin123"})

		require.NoError(t, err)
		assert.Equal(t, "ADMIN", resp.User.Role)
	})

	t.Run("customer is refused", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByEmail", ctx, "asha@example.com").Return(testCustomer(t, 7), nil)

		_, err := f.svc.AdminLogin(ctx, LoginRequest{Login: "asha@example.com", Password: "secret123"})

		assert.ErrorIs(t, err, ErrNotAdmin)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a new pair with the current role", func(t *testing.T) {
		f := newAuthFixture(t)
		user := testCustomer(t, 7)
		pair, err := f.jwt.GenerateTokenPair(tokenInput(user))
		require.NoError(t, err)
		f.users.On("FindByID", ctx, int64(7)).Return(user, nil)

		resp, err := f.svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: pair.RefreshToken})

		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, resp.RefreshToken)
		assert.Equal(t, int64(7), resp.User.ID)
	})

	t.Run("invalid token is unauthorized", func(t *testing.T) {
		f := newAuthFixture(t)

		_, err := f.svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: "garbage"})

		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, shared.CodeUnauthorized, derr.Code)
	})

	t.Run("revoked user cannot refresh", func(t *testing.T) {
		f := newAuthFixture(t)
		pair, err := f.jwt.GenerateTokenPair(tokenInput(testCustomer(t, 7)))
		require.NoError(t, err)
		require.NoError(t, f.blacklist.RevokeUserTokens(ctx, 7, time.Hour))

		_, err = f.svc.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: pair.RefreshToken})

		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "Token has been revoked", derr.Message)
		f.users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	pair, err := f.jwt.GenerateTokenPair(tokenInput(testCustomer(t, 7)))
	require.NoError(t, err)

	claims, err := f.svc.ValidateAccessToken(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, claims))

	_, err = f.svc.ValidateAccessToken(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenBlacklisted)
}

func TestAuthService_SendOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and mails a six digit code", func(t *testing.T) {
		f := newAuthFixture(t)
		var stored string
		f.otps.On("Save", ctx, "asha@example.com", mock.AnythingOfType("string"), identity.OTPTTL).
			Run(func(args mock.Arguments) { stored = args.String(2) }).Return(nil)
		f.mailer.On("SendLoginOTP", ctx, "asha@example.com", mock.AnythingOfType("string")).Return(nil)

		resp, err := f.svc.SendOTP(ctx, SendOTPRequest{Email: "Asha@example.com"})

		require.NoError(t, err)
		assert.Len(t, stored, identity.OTPLength)
		assert.Equal(t, testNow.Add(10*time.Minute), resp.ExpiresAt)
		f.mailer.AssertCalled(t, "SendLoginOTP", ctx, "asha@example.com", stored)
	})

	t.Run("mail failure is reported", func(t *testing.T) {
		f := newAuthFixture(t)
		f.otps.On("Save", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		f.mailer.On("SendLoginOTP", ctx, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		_, err := f.svc.SendOTP(ctx, SendOTPRequest{Email: "asha@example.com"})

		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "EMAIL_FAILED", derr.Code)
	})
}

func TestAuthService_VerifyOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("first login creates a passwordless customer", func(t *testing.T) {
		f := newAuthFixture(t)
		f.otps.On("Consume", ctx, "new@example.com", "123456").Return(true, nil)
		f.users.On("FindByEmail", ctx, "new@example.com").Return(nil, shared.ErrNotFound)
		f.users.On("Create", ctx, mock.AnythingOfType("*identity.User")).Run(func(args mock.Arguments) {
			args.Get(1).(*identity.User).ID = 30
		}).Return(nil)
		f.users.On("Update", ctx, mock.Anything).Return(nil)

		resp, err := f.svc.VerifyOTP(ctx, VerifyOTPRequest{Email: "new@example.com", Code: "123456"})

		require.NoError(t, err)
		assert.Equal(t, int64(30), resp.User.ID)
		assert.Equal(t, "new", resp.User.Name)
		assert.Equal(t, "CUSTOMER", resp.User.Role)
	})

	t.Run("existing user logs in", func(t *testing.T) {
		f := newAuthFixture(t)
		f.otps.On("Consume", ctx, "asha@example.com", "123456").Return(true, nil)
		f.users.On("FindByEmail", ctx, "asha@example.com").Return(testCustomer(t, 7), nil)
		f.users.On("Update", ctx, mock.Anything).Return(nil)

		resp, err := f.svc.VerifyOTP(ctx, VerifyOTPRequest{Email: "asha@example.com", Code: "123456"})

		require.NoError(t, err)
		assert.Equal(t, int64(7), resp.User.ID)
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("wrong code", func(t *testing.T) {
		f := newAuthFixture(t)
		f.otps.On("Consume", ctx, "asha@example.com", "000000").Return(false, nil)

		_, err := f.svc.VerifyOTP(ctx, VerifyOTPRequest{Email: "asha@example.com", Code: "000000"})

		assert.ErrorIs(t, err, ErrInvalidOTP)
	})
}

func TestAuthService_Profile(t *testing.T) {
	ctx := context.Background()

	t.Run("update profile", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByID", ctx, int64(7)).Return(testCustomer(t, 7), nil)
		f.users.On("Update", ctx, mock.Anything).Return(nil)

		resp, err := f.svc.UpdateProfile(ctx, 7, UpdateProfileRequest{Name: "Asha K", Mobile: "9000000000"})

		require.NoError(t, err)
		assert.Equal(t, "Asha K", resp.Name)
		assert.Equal(t, "9000000000", resp.Mobile)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByID", ctx, int64(99)).Return(nil, shared.ErrNotFound)

		_, err := f.svc.GetProfile(ctx, 99)

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("change password verifies old password", func(t *testing.T) {
		f := newAuthFixture(t)
		user := testCustomer(t, 7)
		f.users.On("FindByID", ctx, int64(7)).Return(user, nil)
		f.users.On("Update", ctx, user).Return(nil)

		err := f.svc.ChangePassword(ctx, 7, ChangePasswordRequest{OldPassword: "wrong", NewPassword: "newsecret"})
		assert.Error(t, err)
		f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)

		err = f.svc.ChangePassword(ctx, 7, ChangePasswordRequest{OldPassword: "secret123", NewPassword: "newsecret"})
		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("newsecret"))
	})
}
