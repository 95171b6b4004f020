// Package model defines database models
package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FirstName    string `gorm:"not null" json:"firstName"`
	LastName     string `gorm:"not null" json:"lastName"`
	Bio          string `json:"bio"`

	IsBlocked         bool `gorm:"default:false" json:"isBlocked"`
	IsAdmin           bool `gorm:"default:false" json:"isAdmin"`
	IsAccountVerified bool `gorm:"default:false" json:"isAccountVerified"`

	// Token hash and expiry pairs are always written and cleared together
	AccountVerificationTokenHash *string    `gorm:"index" json:"-"`
	AccountVerificationExpiresAt *time.Time `json:"-"`
	PasswordResetTokenHash       *string    `gorm:"index" json:"-"`
	PasswordResetExpiresAt       *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Projections of the follows table, filled on demand
	Followers []string `gorm:"-" json:"followers"`
	Following []string `gorm:"-" json:"following"`

	Posts []Post `gorm:"foreignKey:UserID" json:"-"`
}
