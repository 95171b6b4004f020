package model

import "time"

type Post struct {
	ID          string `gorm:"primaryKey" json:"id"`
	UserID      string `gorm:"index;not null" json:"userId"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"not null" json:"description"`
	Category    string `gorm:"index" json:"category"`
	NumViews    int64  `gorm:"default:0" json:"numViews"`

	// Bumped by every like/dislike toggle and every edit, used as the
	// compare-and-swap guard for reaction updates
	Version int `gorm:"default:1" json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Likes    []string `gorm:"-" json:"likes"`
	DisLikes []string `gorm:"-" json:"disLikes"`
}
