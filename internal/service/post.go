package service

import (
	"context"
	"errors"
	"fmt"

	"inkwell/blog-api/internal/model"
	"inkwell/blog-api/internal/moderation"
	"inkwell/blog-api/pkg/validators"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PostInput struct {
	Title       string
	Description string
	Category    string
}

type PostService struct {
	db   *gorm.DB
	gate *moderation.Gate
}

func NewPostService(db *gorm.DB, gate *moderation.Gate) *PostService {
	return &PostService{db: db, gate: gate}
}

func validatePost(in PostInput) error {
	if err := validators.TitleValidator(in.Title); err != nil {
		return invalidInput(err)
	}

	if err := validators.DescriptionValidator(in.Description); err != nil {
		return invalidInput(err)
	}

	if err := validators.CategoryValidator(in.Category); err != nil {
		return invalidInput(err)
	}

	return nil
}

// moderate blocks the author when the content is profane. The block commits
// even if the request context is already gone, the caller only sees
// ErrContentRejected after it has been written.
func (s *PostService) moderate(ctx context.Context, authorID string, in PostInput) error {
	if s.gate.Check(in.Title, in.Description, in.Category) == moderation.Clean {
		return nil
	}

	err := s.db.WithContext(context.WithoutCancel(ctx)).
		Model(&model.User{}).
		Where("id = ?", authorID).
		Update("is_blocked", true).
		Error
	if err != nil {
		return fmt.Errorf("failed to block user, %w", err)
	}

	zap.L().Warn("User blocked for profane content", zap.String("userID", authorID))
	return ErrContentRejected
}

func (s *PostService) Create(ctx context.Context, authorID string, in PostInput) (*model.Post, error) {
	if err := validatePost(in); err != nil {
		return nil, err
	}

	if err := s.moderate(ctx, authorID, in); err != nil {
		return nil, err
	}

	postID, err := newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate post ID, %w", err)
	}

	post := &model.Post{
		ID:          postID,
		UserID:      authorID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Version:     1,
		Likes:       []string{},
		DisLikes:    []string{},
	}

	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post, %w", err)
	}

	return post, nil
}

// Update lets the author replace the content of a post. Edits go through the
// same moderation as new posts.
func (s *PostService) Update(ctx context.Context, actorID, postID string, in PostInput) (*model.Post, error) {
	if err := validatePost(in); err != nil {
		return nil, err
	}

	if err := s.ensureOwner(ctx, actorID, postID); err != nil {
		return nil, err
	}

	if err := s.moderate(ctx, actorID, in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", postID).
		Updates(map[string]any{
			"title":       in.Title,
			"description": in.Description,
			"category":    in.Category,
			"version":     gorm.Expr("version + 1"),
		}).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to update post, %w", err)
	}

	return s.get(ctx, postID)
}

func (s *PostService) Delete(ctx context.Context, actorID, postID string) error {
	if err := s.ensureOwner(ctx, actorID, postID); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&model.Reaction{}).Error; err != nil {
			return fmt.Errorf("failed to delete post reactions, %w", err)
		}

		if err := tx.Where("id = ?", postID).Delete(&model.Post{}).Error; err != nil {
			return fmt.Errorf("failed to delete post, %w", err)
		}

		return nil
	})
}

// Fetch returns a post and counts the view
func (s *PostService) Fetch(ctx context.Context, postID string) (*model.Post, error) {
	r := s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", postID).
		UpdateColumn("num_views", gorm.Expr("num_views + 1"))
	if r.Error != nil {
		return nil, fmt.Errorf("failed to count post view, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.get(ctx, postID)
}

// List returns posts newest first, optionally filtered by category
func (s *PostService) List(ctx context.Context, category string) ([]model.Post, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}

	posts := []model.Post{}
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts, %w", err)
	}

	if err := fillReactions(s.db.WithContext(ctx), posts); err != nil {
		return nil, err
	}

	return posts, nil
}

func (s *PostService) get(ctx context.Context, postID string) (*model.Post, error) {
	var post model.Post

	err := s.db.WithContext(ctx).Where("id = ?", postID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to fetch post, %w", err)
	}

	posts := []model.Post{post}
	if err := fillReactions(s.db.WithContext(ctx), posts); err != nil {
		return nil, err
	}

	return &posts[0], nil
}

func (s *PostService) ensureOwner(ctx context.Context, actorID, postID string) error {
	var post model.Post

	err := s.db.WithContext(ctx).Select("id", "user_id").Where("id = ?", postID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("failed to fetch post, %w", err)
	}

	if post.UserID != actorID {
		return ErrForbidden
	}

	return nil
}
