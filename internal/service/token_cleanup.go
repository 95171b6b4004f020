package service

import (
	"context"
	"fmt"
	"time"

	"inkwell/blog-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultTokenRetention is how long an expired token is kept so redeeming it
// still reports ErrTokenExpired instead of ErrTokenMismatch
const DefaultTokenRetention = 24 * time.Hour

// SweepExpiredTokens clears every verification and reset token that expired
// more than retention before now. Redemption checks expiry on its own, this
// only keeps stale hashes out of the table.
func SweepExpiredTokens(db *gorm.DB, now time.Time, retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = DefaultTokenRetention
	}

	cutoff := now.Add(-retention)

	var cleared int64

	err := db.Transaction(func(tx *gorm.DB) error {
		r := tx.Model(&model.User{}).
			Where("account_verification_expires_at < ?", cutoff).
			Updates(map[string]any{
				"account_verification_token_hash": nil,
				"account_verification_expires_at": nil,
			})
		if r.Error != nil {
			return fmt.Errorf("failed to clear verification tokens, %w", r.Error)
		}
		cleared += r.RowsAffected

		r = tx.Model(&model.User{}).
			Where("password_reset_expires_at < ?", cutoff).
			Updates(map[string]any{
				"password_reset_token_hash": nil,
				"password_reset_expires_at": nil,
			})
		if r.Error != nil {
			return fmt.Errorf("failed to clear reset tokens, %w", r.Error)
		}
		cleared += r.RowsAffected

		return nil
	})

	return cleared, err
}

// TokenCleanup periodically sweeps tokens expired for longer than retention
// until ctx is cancelled
func TokenCleanup(ctx context.Context, t, retention time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Token cleanup attached", zap.Duration("tick_every", t), zap.Duration("retention", retention))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := SweepExpiredTokens(db.WithContext(ctx), now, retention)
				if err != nil {
					zap.L().Error("Failed to cleanup expired tokens", zap.Error(err))
					continue
				}

				if n > 0 {
					zap.L().Debug("Cleaned up expired tokens", zap.Int64("count", n))
				}
			}
		}
	}()
}
