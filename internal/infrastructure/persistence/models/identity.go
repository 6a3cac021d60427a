package models

import (
	"time"

	"github.com/sudharshini/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
// Username is NULL for customers so the unique index only covers staff.
type UserModel struct {
	AggregateModel
	Email        string        `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name         string        `gorm:"type:varchar(100);not null"`
	Mobile       string        `gorm:"type:varchar(20)"`
	Username     *string       `gorm:"type:varchar(100);uniqueIndex"`
	PasswordHash string        `gorm:"type:varchar(255)"`
	Role         identity.Role `gorm:"type:varchar(20);not null;index"`
	PhotoURL     string        `gorm:"type:varchar(500)"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Email:             m.Email,
		Name:              m.Name,
		Mobile:            m.Mobile,
		PasswordHash:      m.PasswordHash,
		Role:              m.Role,
		PhotoURL:          m.PhotoURL,
		LastLoginAt:       m.LastLoginAt,
	}
	if m.Username != nil {
		u.Username = *m.Username
	}
	return u
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.Name = u.Name
	m.Mobile = u.Mobile
	m.Username = nil
	if u.Username != "" {
		username := u.Username
		m.Username = &username
	}
	m.PasswordHash = u.PasswordHash
	m.Role = u.Role
	m.PhotoURL = u.PhotoURL
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
