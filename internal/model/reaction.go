package model

import "time"

type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// Reaction is keyed by (post, user) so a user can hold at most one of
// like/dislike on a post at any time
type Reaction struct {
	PostID    string       `gorm:"primaryKey"`
	UserID    string       `gorm:"primaryKey;index"`
	Kind      ReactionKind `gorm:"not null"`
	UpdatedAt time.Time
}

func (Reaction) TableName() string {
	return "post_reactions"
}
