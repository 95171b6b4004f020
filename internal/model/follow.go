package model

import "time"

// Follow is a single follower -> followee edge. The one row backs both the
// followee's followers set and the follower's following set.
type Follow struct {
	FollowerID string `gorm:"primaryKey"`
	FolloweeID string `gorm:"primaryKey;index"`
	CreatedAt  time.Time
}
