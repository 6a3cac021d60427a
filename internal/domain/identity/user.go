package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/sudharshini/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the cost used for new password hashes
var BcryptCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	mobileRegex   = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// User represents an account of any role
// It is the aggregate root for identity operations
type User struct {
	shared.BaseAggregateRoot
	Email        string
	Name         string
	Mobile       string
	Username     string
	PasswordHash string
	Role         Role
	PhotoURL     string
	LastLoginAt  *time.Time
}

// NewCustomer registers a customer with a password
func NewCustomer(email, name, mobile, password string) (*User, error) {
	u, err := newUser(RoleCustomer, email, name)
	if err != nil {
		return nil, err
	}
	if err := u.SetMobile(mobile); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	u.AddDomainEvent(NewUserCreatedEvent(u))
	return u, nil
}

// NewPasswordlessCustomer creates a customer on first OTP login. The name
// defaults to the email's local part.
func NewPasswordlessCustomer(email string) (*User, error) {
	email = normalizeEmail(email)
	name, _, _ := strings.Cut(email, "@")
	u, err := newUser(RoleCustomer, email, name)
	if err != nil {
		return nil, err
	}
	u.AddDomainEvent(NewUserCreatedEvent(u))
	return u, nil
}

// NewDeliveryMan creates a delivery agent that logs in by username
func NewDeliveryMan(name, email, mobile, username, password string) (*User, error) {
	u, err := newUser(RoleDeliveryMan, email, name)
	if err != nil {
		return nil, err
	}
	if err := u.SetMobile(mobile); err != nil {
		return nil, err
	}
	if err := u.SetUsername(username); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	u.AddDomainEvent(NewUserCreatedEvent(u))
	return u, nil
}

// NewAdmin creates an administrator
func NewAdmin(username, email, password string) (*User, error) {
	u, err := newUser(RoleAdmin, email, "Administrator")
	if err != nil {
		return nil, err
	}
	if err := u.SetUsername(username); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

func newUser(role Role, email, name string) (*User, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Role:              role,
	}
	if err := u.SetName(name); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile changes the display name and mobile
func (u *User) UpdateProfile(name, mobile string) error {
	if err := u.SetName(name); err != nil {
		return err
	}
	if err := u.SetMobile(mobile); err != nil {
		return err
	}
	u.UpdatedAt = time.Now()
	return nil
}

// SetName sets the display name
func (u *User) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Name cannot exceed 100 characters")
	}
	u.Name = name
	return nil
}

// SetMobile sets the mobile number; empty clears it
func (u *User) SetMobile(mobile string) error {
	mobile = strings.ReplaceAll(strings.TrimSpace(mobile), " ", "")
	if mobile != "" && !mobileRegex.MatchString(mobile) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid mobile number")
	}
	u.Mobile = mobile
	return nil
}

// SetEmail changes the email address
func (u *User) SetEmail(email string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	u.Email = email
	return nil
}

// SetUsername sets the login name
func (u *User) SetUsername(username string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	u.Username = strings.ToLower(strings.TrimSpace(username))
	return nil
}

// ChangePassword changes the user's password
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError(shared.CodeUnauthorized, "Current password is incorrect")
	}
	return u.SetPassword(newPassword)
}

// SetPassword sets a new password (admin reset, no old password check)
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), BcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	return nil
}

// HasPassword reports whether password login is possible
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	if !u.HasPassword() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
}

// IsAdmin returns true for administrators
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsDeliveryMan returns true for delivery agents
func (u *User) IsDeliveryMan() bool {
	return u.Role == RoleDeliveryMan
}

// IsCustomer returns true for customers
func (u *User) IsCustomer() bool {
	return u.Role == RoleCustomer
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validation functions

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Username cannot exceed 100 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Password cannot be empty")
	}
	if len(password) < 6 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Password must be at least 6 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Password cannot exceed 72 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid email format")
	}
	return nil
}
