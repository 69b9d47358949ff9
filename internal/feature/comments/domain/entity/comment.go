// Package entity defines the domain entities for the comments feature.
package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is one threaded comment on a canonical URL. Comments live on the
// partition that owns their URLHash; replies share the parent's hash and so
// always land on the same partition as their parent.
type Comment struct {
	// ID is the opaque unique identifier for the comment.
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// Content is the comment text, trimmed, at most 5000 characters.
	Content string `gorm:"type:text;not null" json:"content"`

	// OriginalURL is the URL exactly as the client submitted it.
	OriginalURL string `gorm:"type:text;not null" json:"original_url"`

	// CanonicalURL is the normalized form used for grouping.
	CanonicalURL string `gorm:"type:text;not null" json:"canonical_url"`

	// URLHash is the sha256 hex digest of CanonicalURL. It is both the
	// grouping key and the partition key.
	URLHash string `gorm:"size:64;index;not null" json:"url_hash"`

	// AccountID is the owning account. Accounts live on the master
	// partition, so this reference is enforced by the application, not by a
	// cross-database foreign key.
	AccountID uuid.UUID `gorm:"type:uuid;index;not null" json:"account_id"`

	// ParentID threads the comment under another comment on the same URL.
	// The self-referencing foreign key cascades deletes, so a parent removed
	// between the repository's in-transaction check and the insert cannot
	// leave an orphaned reply behind.
	ParentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`

	// Parent carries the foreign-key definition only. The repository never
	// populates it, so gorm does not try to upsert the parent row on create.
	Parent *Comment `gorm:"foreignKey:ParentID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh UUID when none was provided.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
