package service

import (
	"context"
	"errors"
	"fmt"

	"inkwell/blog-api/internal/model"
	"inkwell/blog-api/pkg/security"
	"inkwell/blog-api/pkg/validators"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLength = 16
)

// Identity is what the auth gate hands to downstream handlers
type Identity struct {
	UserID            string `json:"userID"`
	Email             string `json:"email"`
	IsAdmin           bool   `json:"isAdmin"`
	IsAccountVerified bool   `json:"isAccountVerified"`
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ProfileInput holds the optional fields of a profile update, nil fields are
// left unchanged
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Bio       *string
}

type LoginResult struct {
	Token string
	User  *model.User
}

type AuthService struct {
	db       *gorm.DB
	argon    *security.ArgonHash
	sessions *security.SessionIssuer
	graph    *GraphService
}

func NewAuthService(db *gorm.DB, argon *security.ArgonHash, sessions *security.SessionIssuer, graph *GraphService) *AuthService {
	return &AuthService{
		db:       db,
		argon:    argon,
		sessions: sessions,
		graph:    graph,
	}
}

func newID() (string, error) {
	return gonanoid.Generate(charset, idLength)
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := validators.NormalizeEmail(in.Email)

	if err := validators.EmailValidator(email); err != nil {
		return nil, invalidInput(err)
	}

	if err := validators.PasswordValidator(in.Password); err != nil {
		return nil, invalidInput(err)
	}

	if err := validators.NameValidator(in.FirstName); err != nil {
		return nil, invalidInput(err)
	}

	if err := validators.NameValidator(in.LastName); err != nil {
		return nil, invalidInput(err)
	}

	var found int64

	err := s.db.WithContext(ctx).
		Model(model.User{}).
		Where("email = ?", email).
		Count(&found).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to check if user is registered, %w", err)
	}

	if found > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := s.argon.GenerateFromPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	userID, err := newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID, %w", err)
	}

	user := &model.User{
		ID:           userID,
		Email:        email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Followers:    []string{},
		Following:    []string{},
	}

	// The unique index settles two registrations racing past the check above
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}

		return nil, fmt.Errorf("failed to create user, %w", err)
	}

	zap.L().Debug("User registered", zap.String("userID", userID))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = validators.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrUnauthenticated
	}

	var user model.User

	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}

		return nil, fmt.Errorf("failed to fetch user, %w", err)
	}

	if !s.argon.VerifyPasswd(password, user.PasswordHash) {
		return nil, ErrUnauthenticated
	}

	if user.IsBlocked {
		return nil, ErrForbidden
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token, %w", err)
	}

	return &LoginResult{Token: token, User: &user}, nil
}

// Authenticate resolves a session token to a non-blocked user. It runs on
// every authenticated request since sessions can't be revoked, blocking a
// user only takes effect through this check.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	userID, err := s.sessions.Validate(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	var user model.User

	err = s.db.WithContext(ctx).
		Select("id", "email", "is_blocked", "is_admin", "is_account_verified").
		Where("id = ?", userID).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}

		return nil, fmt.Errorf("failed to check if user exists, %w", err)
	}

	if user.IsBlocked {
		return nil, ErrForbidden
	}

	return &Identity{
		UserID:            user.ID,
		Email:             user.Email,
		IsAdmin:           user.IsAdmin,
		IsAccountVerified: user.IsAccountVerified,
	}, nil
}

// Profile returns a user together with their followers and following sets
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.User, error) {
	var user model.User

	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to fetch user, %w", err)
	}

	if err := s.graph.fillEdges(ctx, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateProfile never touches the password hash. Changing the email resets
// the verification state.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error) {
	var current model.User

	err := s.db.WithContext(ctx).Select("id", "email").Where("id = ?", userID).First(&current).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to fetch user, %w", err)
	}

	updates := map[string]any{}

	if in.FirstName != nil {
		if err := validators.NameValidator(*in.FirstName); err != nil {
			return nil, invalidInput(err)
		}
		updates["first_name"] = *in.FirstName
	}

	if in.LastName != nil {
		if err := validators.NameValidator(*in.LastName); err != nil {
			return nil, invalidInput(err)
		}
		updates["last_name"] = *in.LastName
	}

	if in.Bio != nil {
		if err := validators.BioValidator(*in.Bio); err != nil {
			return nil, invalidInput(err)
		}
		updates["bio"] = *in.Bio
	}

	if in.Email != nil {
		email := validators.NormalizeEmail(*in.Email)
		if err := validators.EmailValidator(email); err != nil {
			return nil, invalidInput(err)
		}

		if email != current.Email {
			updates["email"] = email
			updates["is_account_verified"] = false
			updates["account_verification_token_hash"] = nil
			updates["account_verification_expires_at"] = nil
		}
	}

	if len(updates) > 0 {
		err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrEmailTaken
			}

			return nil, fmt.Errorf("failed to update user, %w", err)
		}
	}

	return s.Profile(ctx, userID)
}

// UpdatePassword rehashes only after the current password checks out
func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, next string) error {
	if err := validators.PasswordValidator(next); err != nil {
		return invalidInput(err)
	}

	var user model.User

	err := s.db.WithContext(ctx).Select("id", "password_hash").Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("failed to fetch user, %w", err)
	}

	if !s.argon.VerifyPasswd(current, user.PasswordHash) {
		return ErrUnauthenticated
	}

	hash, err := s.argon.GenerateFromPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	// Guard on the old hash so a concurrent reset isn't silently overwritten
	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND password_hash = ?", userID, user.PasswordHash).
		Update("password_hash", hash)
	if r.Error != nil {
		return fmt.Errorf("failed to update password, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return ErrBusy
	}

	return nil
}
