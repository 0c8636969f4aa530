package refreshtoken

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrTokenNotFound = errors.New("refresh token not found")
	// ErrTokenNotActive is returned when a conditional revoke loses to a
	// concurrent rotation or hits an expired/revoked row.
	ErrTokenNotActive = errors.New("refresh token is not active")
)

type Repository interface {
	Create(token *RefreshToken) error
	Find(token string) (*RefreshToken, error)
	// Revoke marks a token revoked. Revoking an already-revoked token is
	// a no-op success; revocation is terminal.
	Revoke(token, revokedByIP string, at time.Time) (*RefreshToken, error)
	// RevokeAndRotate atomically revokes oldToken and records its
	// successor. The update is conditional on the row still being active,
	// so exactly one of two concurrent callers succeeds.
	RevokeAndRotate(oldToken, revokedByIP, newToken string, at time.Time) (*RefreshToken, error)
	RevokeAllForUser(userID, revokedByIP string, at time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(token *RefreshToken) error {
	return r.db.Create(token).Error
}

func (r *repository) Find(token string) (*RefreshToken, error) {
	var rt RefreshToken
	if err := r.db.Where("token = ?", token).First(&rt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &rt, nil
}

func (r *repository) Revoke(token, revokedByIP string, at time.Time) (*RefreshToken, error) {
	err := r.db.Model(&RefreshToken{}).
		Where("token = ? AND revoked_at IS NULL", token).
		Updates(map[string]interface{}{
			"revoked_at":    at,
			"revoked_by_ip": revokedByIP,
		}).Error
	if err != nil {
		return nil, err
	}
	return r.Find(token)
}

func (r *repository) RevokeAndRotate(oldToken, revokedByIP, newToken string, at time.Time) (*RefreshToken, error) {
	res := r.db.Model(&RefreshToken{}).
		Where("token = ? AND revoked_at IS NULL AND expires_at > ?", oldToken, at).
		Updates(map[string]interface{}{
			"revoked_at":        at,
			"revoked_by_ip":     revokedByIP,
			"replaced_by_token": newToken,
			"is_rotated":        true,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.Find(oldToken); errors.Is(err, ErrTokenNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, ErrTokenNotActive
	}
	return r.Find(oldToken)
}

func (r *repository) RevokeAllForUser(userID, revokedByIP string, at time.Time) (int64, error) {
	res := r.db.Model(&RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Updates(map[string]interface{}{
			"revoked_at":    at,
			"revoked_by_ip": revokedByIP,
		})
	return res.RowsAffected, res.Error
}
