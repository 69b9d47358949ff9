// Package entity defines the domain entities for the auth feature.
package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account. It lives only on the fallback/master
// partition and carries the irreversibly hashed password credential.
type User struct {
	// ID is the opaque unique identifier for the account.
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// Name is the display name shown next to comments.
	Name string `gorm:"size:255;not null" json:"name"`

	// Email is the account identity. Stored lowercased, unique.
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`

	// Phone is an optional contact number.
	Phone *string `gorm:"size:20" json:"phone,omitempty"`

	// Bio is optional free-form profile text.
	Bio *string `gorm:"type:text" json:"bio,omitempty"`

	// PasswordHash is the argon2id credential. Never the plaintext.
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	// Verified records that the email was proven via a verification code.
	// Accounts are only created through a completed verification, so this is
	// true for every row; it exists so the invariant is visible in storage.
	Verified bool `gorm:"not null;default:false" json:"verified"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the account was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh UUID when none was provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
