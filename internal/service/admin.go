package service

import (
	"context"
	"fmt"

	"inkwell/blog-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminService holds the operations only admins can reach. The admin check
// itself lives in the HTTP middleware.
type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// Block takes effect on the target's next request since every request
// re-reads the blocked flag
func (s *AdminService) Block(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return ErrSelfBlock
	}

	return s.setBlocked(ctx, targetID, true)
}

func (s *AdminService) Unblock(ctx context.Context, actorID, targetID string) error {
	return s.setBlocked(ctx, targetID, false)
}

func (s *AdminService) setBlocked(ctx context.Context, targetID string, blocked bool) error {
	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", targetID).
		Update("is_blocked", blocked)
	if r.Error != nil {
		return fmt.Errorf("failed to update blocked flag, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	zap.L().Info("User blocked flag changed", zap.String("userID", targetID), zap.Bool("blocked", blocked))
	return nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}

	if err := s.db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users, %w", err)
	}

	return users, nil
}

// DeleteUser removes the user together with their follow edges, reactions
// and posts in one transaction
func (s *AdminService) DeleteUser(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return fmt.Errorf("%w: you can't delete your own account here", ErrInvalidOperation)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64

		if err := tx.Model(&model.User{}).Where("id = ?", targetID).Count(&exists).Error; err != nil {
			return fmt.Errorf("failed to look up user, %w", err)
		}

		if exists == 0 {
			return ErrNotFound
		}

		err := tx.Where("follower_id = ? OR followee_id = ?", targetID, targetID).Delete(&model.Follow{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete follows, %w", err)
		}

		err = tx.Where("user_id = ?", targetID).Delete(&model.Reaction{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete reactions, %w", err)
		}

		err = tx.Where("post_id IN (?)", tx.Model(&model.Post{}).Select("id").Where("user_id = ?", targetID)).
			Delete(&model.Reaction{}).
			Error
		if err != nil {
			return fmt.Errorf("failed to delete reactions on posts, %w", err)
		}

		if err := tx.Where("user_id = ?", targetID).Delete(&model.Post{}).Error; err != nil {
			return fmt.Errorf("failed to delete posts, %w", err)
		}

		if err := tx.Where("id = ?", targetID).Delete(&model.User{}).Error; err != nil {
			return fmt.Errorf("failed to delete user, %w", err)
		}

		zap.L().Info("User deleted", zap.String("userID", targetID), zap.String("by", actorID))
		return nil
	})
}
