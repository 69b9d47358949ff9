package entity

import "time"

// PendingCode is a transient verification code awaiting signup completion.
// Keyed by email: inserting a new code for the same email replaces the old
// one, which keeps at most one live code per address.
type PendingCode struct {
	Email     string    `gorm:"primaryKey;size:255"`
	Code      string    `gorm:"size:6;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// Expired reports whether the code's validity window has passed. An expired
// code is logically invalid even before a cleanup pass deletes the row.
func (p *PendingCode) Expired() bool {
	return time.Now().After(p.ExpiresAt)
}
