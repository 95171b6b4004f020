package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwell/blog-api/internal/model"
	"inkwell/blog-api/pkg/security"
	"inkwell/blog-api/pkg/validators"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	verifyAccountPath = "/verify-account/"
	resetPasswordPath = "/reset-password/"
)

// VerificationService issues and redeems the single-use account verification
// and password reset tokens
type VerificationService struct {
	db       *gorm.DB
	codec    *security.TokenCodec
	argon    *security.ArgonHash
	notifier Notifier
	baseURL  string
}

func NewVerificationService(db *gorm.DB, codec *security.TokenCodec, argon *security.ArgonHash, notifier Notifier, baseURL string) *VerificationService {
	return &VerificationService{
		db:       db,
		codec:    codec,
		argon:    argon,
		notifier: notifier,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// StartAccountVerification stores a fresh token for the user and sends them
// the link. A previously issued token stops working.
func (s *VerificationService) StartAccountVerification(ctx context.Context, userID string) (string, error) {
	var user model.User

	err := s.db.WithContext(ctx).
		Select("id", "email", "is_account_verified").
		Where("id = ?", userID).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("failed to fetch user, %w", err)
	}

	if user.IsAccountVerified {
		return "", ErrAlreadyVerified
	}

	tok, err := s.codec.Issue()
	if err != nil {
		return "", fmt.Errorf("failed to generate verification token, %w", err)
	}

	err = s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"account_verification_token_hash": tok.Hash,
			"account_verification_expires_at": tok.ExpiresAt,
		}).
		Error
	if err != nil {
		return "", fmt.Errorf("failed to store verification token, %w", err)
	}

	link := s.baseURL + verifyAccountPath + tok.Secret
	s.notifier.Send(user.Email, "Verify your account",
		fmt.Sprintf(`<p>Click <a href="%s">here</a> to verify your account. The link is valid for %s.</p>`, link, s.codec.TTL))

	return tok.Secret, nil
}

// CompleteAccountVerification only accepts a token issued to the caller
func (s *VerificationService) CompleteAccountVerification(ctx context.Context, callerID, secret string) error {
	user, err := s.byTokenHash(ctx, "account_verification_token_hash", secret)
	if err != nil {
		return err
	}

	if user.ID != callerID {
		return ErrTokenMismatch
	}

	if err := s.codec.Redeem(secret, user.AccountVerificationTokenHash, user.AccountVerificationExpiresAt); err != nil {
		return err
	}

	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND account_verification_token_hash = ?", user.ID, *user.AccountVerificationTokenHash).
		Updates(map[string]any{
			"is_account_verified":             true,
			"account_verification_token_hash": nil,
			"account_verification_expires_at": nil,
		})
	if r.Error != nil {
		return fmt.Errorf("failed to verify account, %w", r.Error)
	}

	// Another request redeemed the same token first
	if r.RowsAffected == 0 {
		return ErrTokenMismatch
	}

	zap.L().Debug("Account verified", zap.String("userID", user.ID))
	return nil
}

func (s *VerificationService) StartPasswordReset(ctx context.Context, email string) (string, error) {
	email = validators.NormalizeEmail(email)
	if err := validators.EmailValidator(email); err != nil {
		return "", invalidInput(err)
	}

	var user model.User

	err := s.db.WithContext(ctx).Select("id", "email").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("failed to fetch user, %w", err)
	}

	tok, err := s.codec.Issue()
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token, %w", err)
	}

	err = s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"password_reset_token_hash": tok.Hash,
			"password_reset_expires_at": tok.ExpiresAt,
		}).
		Error
	if err != nil {
		return "", fmt.Errorf("failed to store reset token, %w", err)
	}

	link := s.baseURL + resetPasswordPath + tok.Secret
	s.notifier.Send(user.Email, "Reset your password",
		fmt.Sprintf(`<p>Click <a href="%s">here</a> to reset your password. The link is valid for %s.</p>`, link, s.codec.TTL))

	return tok.Secret, nil
}

func (s *VerificationService) CompletePasswordReset(ctx context.Context, secret, newPassword string) error {
	if err := validators.PasswordValidator(newPassword); err != nil {
		return invalidInput(err)
	}

	user, err := s.byTokenHash(ctx, "password_reset_token_hash", secret)
	if err != nil {
		return err
	}

	if err := s.codec.Redeem(secret, user.PasswordResetTokenHash, user.PasswordResetExpiresAt); err != nil {
		return err
	}

	hash, err := s.argon.GenerateFromPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND password_reset_token_hash = ?", user.ID, *user.PasswordResetTokenHash).
		Updates(map[string]any{
			"password_hash":             hash,
			"password_reset_token_hash": nil,
			"password_reset_expires_at": nil,
		})
	if r.Error != nil {
		return fmt.Errorf("failed to reset password, %w", r.Error)
	}

	if r.RowsAffected == 0 {
		return ErrTokenMismatch
	}

	zap.L().Debug("Password reset", zap.String("userID", user.ID))
	return nil
}

// byTokenHash finds the holder of a token. Unknown and already used tokens
// both come back as ErrTokenMismatch.
func (s *VerificationService) byTokenHash(ctx context.Context, column, secret string) (*model.User, error) {
	if secret == "" {
		return nil, ErrTokenMismatch
	}

	var user model.User

	err := s.db.WithContext(ctx).Where(column+" = ?", security.HashToken(secret)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenMismatch
		}

		return nil, fmt.Errorf("failed to look up token, %w", err)
	}

	return &user, nil
}
