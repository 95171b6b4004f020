package service

import (
	"context"
	"fmt"

	"inkwell/blog-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GraphService manages follow edges. Following is a single row per
// (follower, followee) pair, so the followers and following sets of the two
// users can never disagree.
type GraphService struct {
	db *gorm.DB
}

func NewGraphService(db *gorm.DB) *GraphService {
	return &GraphService{db: db}
}

func (s *GraphService) Follow(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return ErrSelfFollow
	}

	if targetID == "" {
		return invalidInput(fmt.Errorf("no user to follow provided"))
	}

	var exists int64

	err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", targetID).Count(&exists).Error
	if err != nil {
		return fmt.Errorf("failed to look up follow target, %w", err)
	}

	if exists == 0 {
		return ErrNotFound
	}

	r := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Follow{FollowerID: actorID, FolloweeID: targetID})
	if r.Error != nil {
		return fmt.Errorf("failed to create follow, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return ErrAlreadyFollowing
	}

	return nil
}

// Unfollow is idempotent, removing an edge that doesn't exist is not an error
func (s *GraphService) Unfollow(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return ErrSelfFollow
	}

	if targetID == "" {
		return invalidInput(fmt.Errorf("no user to unfollow provided"))
	}

	err := s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", actorID, targetID).
		Delete(&model.Follow{}).
		Error
	if err != nil {
		return fmt.Errorf("failed to delete follow, %w", err)
	}

	return nil
}

func (s *GraphService) Followers(ctx context.Context, userID string) ([]string, error) {
	return s.ids(ctx, "follower_id", "followee_id = ?", userID)
}

func (s *GraphService) Following(ctx context.Context, userID string) ([]string, error) {
	return s.ids(ctx, "followee_id", "follower_id = ?", userID)
}

func (s *GraphService) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	var n int64

	err := s.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", actorID, targetID).
		Count(&n).
		Error
	if err != nil {
		return false, fmt.Errorf("failed to check follow, %w", err)
	}

	return n > 0, nil
}

func (s *GraphService) ids(ctx context.Context, col, where, userID string) ([]string, error) {
	out := []string{}

	err := s.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where(where, userID).
		Order(col).
		Pluck(col, &out).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list follows, %w", err)
	}

	return out, nil
}

func (s *GraphService) fillEdges(ctx context.Context, u *model.User) error {
	followers, err := s.Followers(ctx, u.ID)
	if err != nil {
		return err
	}

	following, err := s.Following(ctx, u.ID)
	if err != nil {
		return err
	}

	u.Followers = followers
	u.Following = following
	return nil
}
