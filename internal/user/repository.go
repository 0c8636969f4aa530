package user

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

type Repository interface {
	Create(user *User) error
	FindByID(id string) (*User, error)
	// FindByIdentifier resolves a user by email or username,
	// case-insensitive on both.
	FindByIdentifier(identifier string) (*User, error)
	FindByResetTokenHash(hash string, now time.Time) (*User, error)
	FindByVerificationTokenHash(hash string, now time.Time) (*User, error)
	UpdateLastLogin(id string, at time.Time) error
	SetVerificationToken(id, hash string, expiresAt time.Time) error
	SetResetToken(id, hash string, expiresAt time.Time) error
	// MarkEmailVerified flips the verification flag and clears the token
	// fields in a single update.
	MarkEmailVerified(id string) error
	// UpdatePassword sets the new hash and PasswordChangedAt and clears
	// the reset-token fields in a single update.
	UpdatePassword(id, passwordHash string, changedAt time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(user *User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

func (r *repository) FindByID(id string) (*User, error) {
	var user User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

func (r *repository) FindByIdentifier(identifier string) (*User, error) {
	var user User
	err := r.db.
		Where("LOWER(email) = LOWER(?) OR LOWER(username) = LOWER(?)", identifier, identifier).
		First(&user).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

func (r *repository) FindByResetTokenHash(hash string, now time.Time) (*User, error) {
	var user User
	err := r.db.
		Where("password_reset_token_hash = ? AND password_reset_expires_at > ?", hash, now).
		First(&user).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

func (r *repository) FindByVerificationTokenHash(hash string, now time.Time) (*User, error) {
	var user User
	err := r.db.
		Where("email_verification_token_hash = ? AND email_verification_expires_at > ?", hash, now).
		First(&user).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

func (r *repository) UpdateLastLogin(id string, at time.Time) error {
	return r.db.Model(&User{}).Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *repository) SetVerificationToken(id, hash string, expiresAt time.Time) error {
	return r.db.Model(&User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"email_verification_token_hash": hash,
			"email_verification_expires_at": expiresAt,
		}).Error
}

func (r *repository) SetResetToken(id, hash string, expiresAt time.Time) error {
	return r.db.Model(&User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_reset_token_hash": hash,
			"password_reset_expires_at": expiresAt,
		}).Error
}

func (r *repository) MarkEmailVerified(id string) error {
	return r.db.Model(&User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_email_verified":             true,
			"email_verification_token_hash": "",
			"email_verification_expires_at": nil,
		}).Error
}

func (r *repository) UpdatePassword(id, passwordHash string, changedAt time.Time) error {
	return r.db.Model(&User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash":             passwordHash,
			"password_changed_at":       changedAt,
			"password_reset_token_hash": "",
			"password_reset_expires_at": nil,
		}).Error
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
