package service

import (
	"context"
	"errors"
	"fmt"

	"inkwell/blog-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultToggleAttempts = 5

var errStaleVersion = errors.New("post version changed")

// PostState is the like/dislike state of a post after a toggle
type PostState struct {
	PostID   string   `json:"postId"`
	Likes    []string `json:"likes"`
	DisLikes []string `json:"disLikes"`
	Version  int      `json:"version"`
}

// ReactionService applies like/dislike toggles. Each toggle is one
// transaction that ends in a compare-and-swap on posts.version, a lost race
// rolls back and is retried against the fresh state.
type ReactionService struct {
	db          *gorm.DB
	maxAttempts int
}

func NewReactionService(db *gorm.DB) *ReactionService {
	return &ReactionService{db: db, maxAttempts: defaultToggleAttempts}
}

func (s *ReactionService) ToggleLike(ctx context.Context, userID, postID string) (*PostState, error) {
	return s.toggle(ctx, userID, postID, model.ReactionLike)
}

func (s *ReactionService) ToggleDislike(ctx context.Context, userID, postID string) (*PostState, error) {
	return s.toggle(ctx, userID, postID, model.ReactionDislike)
}

// nextReaction pressing the held reaction clears it, pressing the other one
// switches straight to it
func nextReaction(current, pressed model.ReactionKind) model.ReactionKind {
	if current == pressed {
		return ""
	}

	return pressed
}

func (s *ReactionService) toggle(ctx context.Context, userID, postID string, pressed model.ReactionKind) (*PostState, error) {
	if postID == "" {
		return nil, invalidInput(errors.New("no post ID provided"))
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		state, err := s.tryToggle(ctx, userID, postID, pressed)
		if errors.Is(err, errStaleVersion) {
			zap.L().Debug("Reaction toggle lost a race, retrying",
				zap.String("postID", postID),
				zap.Int("attempt", attempt))
			continue
		}

		return state, err
	}

	return nil, ErrBusy
}

func (s *ReactionService) tryToggle(ctx context.Context, userID, postID string, pressed model.ReactionKind) (*PostState, error) {
	var state *PostState

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post

		err := tx.Select("id", "version").Where("id = ?", postID).First(&post).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return fmt.Errorf("failed to fetch post, %w", err)
		}

		var current []model.Reaction

		err = tx.Where("post_id = ? AND user_id = ?", postID, userID).Limit(1).Find(&current).Error
		if err != nil {
			return fmt.Errorf("failed to fetch reaction, %w", err)
		}

		var held model.ReactionKind
		if len(current) > 0 {
			held = current[0].Kind
		}

		switch next := nextReaction(held, pressed); next {
		case "":
			err = tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.Reaction{}).Error
		default:
			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"kind", "updated_at"}),
			}).Create(&model.Reaction{PostID: postID, UserID: userID, Kind: next}).Error
		}
		if err != nil {
			return fmt.Errorf("failed to write reaction, %w", err)
		}

		r := tx.Model(&model.Post{}).
			Where("id = ? AND version = ?", postID, post.Version).
			UpdateColumn("version", gorm.Expr("version + 1"))
		if r.Error != nil {
			return fmt.Errorf("failed to bump post version, %w", r.Error)
		}

		if r.RowsAffected == 0 {
			return errStaleVersion
		}

		post.Version++

		likes, dislikes, err := reactionSets(tx, postID)
		if err != nil {
			return err
		}

		state = &PostState{
			PostID:   postID,
			Likes:    likes,
			DisLikes: dislikes,
			Version:  post.Version,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return state, nil
}

func reactionSets(tx *gorm.DB, postID string) (likes, dislikes []string, err error) {
	var rows []model.Reaction

	err = tx.Where("post_id = ?", postID).Order("user_id").Find(&rows).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch reactions, %w", err)
	}

	likes, dislikes = []string{}, []string{}
	for _, r := range rows {
		switch r.Kind {
		case model.ReactionLike:
			likes = append(likes, r.UserID)
		case model.ReactionDislike:
			dislikes = append(dislikes, r.UserID)
		}
	}

	return likes, dislikes, nil
}

// fillReactions loads the like/dislike sets of several posts in one query
func fillReactions(tx *gorm.DB, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]string, len(posts))
	byID := make(map[string]*model.Post, len(posts))

	for i := range posts {
		posts[i].Likes, posts[i].DisLikes = []string{}, []string{}
		ids[i] = posts[i].ID
		byID[posts[i].ID] = &posts[i]
	}

	var rows []model.Reaction

	err := tx.Where("post_id IN ?", ids).Order("user_id").Find(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to fetch reactions, %w", err)
	}

	for _, r := range rows {
		p := byID[r.PostID]
		if p == nil {
			continue
		}

		switch r.Kind {
		case model.ReactionLike:
			p.Likes = append(p.Likes, r.UserID)
		case model.ReactionDislike:
			p.DisLikes = append(p.DisLikes, r.UserID)
		}
	}

	return nil
}
