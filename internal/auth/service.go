package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quillhq/quill-backend/internal/apperr"
	"github.com/quillhq/quill-backend/internal/clock"
	"github.com/quillhq/quill-backend/internal/config"
	"github.com/quillhq/quill-backend/internal/notify"
	"github.com/quillhq/quill-backend/internal/refreshtoken"
	"github.com/quillhq/quill-backend/internal/token"
	"github.com/quillhq/quill-backend/internal/user"
)

// Service orchestrates the session lifecycle: registration, credential
// verification, token issuance/rotation/revocation, and the ephemeral
// verification and reset flows.
type Service struct {
	config    *config.AuthConfig
	log       *zap.Logger
	users     user.Repository
	tokens    refreshtoken.Repository
	signer    *token.Signer
	ephemeral *token.EphemeralIssuer
	hasher    *PasswordHasher
	mail      *notify.Dispatcher
	clock     clock.Clock
}

// Session is the result of any operation that authenticates the user.
type Session struct {
	User         *user.User
	AccessToken  string
	RefreshToken string
}

// Principal is the minimal authenticated identity attached to a request.
type Principal struct {
	ID   string
	Role user.Role
}

func NewService(
	cfg *config.AuthConfig,
	log *zap.Logger,
	users user.Repository,
	tokens refreshtoken.Repository,
	mail *notify.Dispatcher,
	clk clock.Clock,
) *Service {
	return &Service{
		config:    cfg,
		log:       log,
		users:     users,
		tokens:    tokens,
		signer:    token.NewSigner(cfg, clk),
		ephemeral: token.NewEphemeralIssuer(cfg.EphemeralTokenDuration, clk),
		hasher:    NewPasswordHasher(cfg.BcryptCost),
		mail:      mail,
		clock:     clk,
	}
}

// Register creates an unverified account and dispatches the verification
// email. Email delivery failure never fails registration.
func (s *Service) Register(username, email, password string) (*user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByIdentifier(email); err == nil {
		return nil, apperr.Conflict("user with this email or username already exists")
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return nil, apperr.Internal(err)
	}
	if _, err := s.users.FindByIdentifier(username); err == nil {
		return nil, apperr.Conflict("user with this email or username already exists")
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return nil, apperr.Internal(err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Error("failed to hash password", zap.Error(err))
		return nil, apperr.Internal(err)
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         user.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(u); err != nil {
		if errors.Is(err, user.ErrUserExists) {
			return nil, apperr.Conflict("user with this email or username already exists")
		}
		s.log.Error("failed to create user", zap.Error(err))
		return nil, apperr.Internal(err)
	}

	if err := s.issueVerificationToken(u); err != nil {
		// The account exists; the token can be re-issued later.
		s.log.Error("failed to issue verification token",
			zap.String("user_id", u.ID), zap.Error(err))
	}

	return u, nil
}

// Login verifies credentials against an email-or-username identifier.
// Unknown users and bad passwords are deliberately distinguishable.
func (s *Service) Login(identifier, password string, rememberMe bool, clientIP, userAgent string) (*Session, error) {
	if err := validateCredentials(identifier, password); err != nil {
		return nil, err
	}

	u, err := s.users.FindByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperr.NotFound("user does not exist")
		}
		return nil, apperr.Internal(err)
	}

	if !u.IsEmailVerified {
		return nil, apperr.Unauthorized("email not verified")
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	now := s.clock.Now()
	if err := s.users.UpdateLastLogin(u.ID, now); err != nil {
		s.log.Error("failed to update last login",
			zap.String("user_id", u.ID), zap.Error(err))
	} else {
		u.LastLoginAt = &now
	}

	return s.issueSession(u, s.refreshTTL(rememberMe), clientIP, userAgent)
}

// Refresh rotates a refresh token: the old token is atomically revoked
// and linked to its successor. Replaying a rotated token fails closed,
// as does the loser of two concurrent refreshes.
func (s *Service) Refresh(oldToken, clientIP, userAgent string) (*Session, error) {
	now := s.clock.Now()

	rt, err := s.tokens.Find(oldToken)
	if err != nil {
		if errors.Is(err, refreshtoken.ErrTokenNotFound) {
			return nil, apperr.Unauthorized("invalid refresh token")
		}
		return nil, apperr.Internal(err)
	}
	if !rt.IsActive(now) {
		return nil, apperr.Unauthorized("invalid refresh token")
	}

	u, err := s.users.FindByID(rt.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperr.Unauthorized("user not found for this token")
		}
		return nil, apperr.Internal(err)
	}

	newToken, err := token.NewOpaque()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if _, err := s.tokens.RevokeAndRotate(oldToken, clientIP, newToken, now); err != nil {
		if errors.Is(err, refreshtoken.ErrTokenNotActive) || errors.Is(err, refreshtoken.ErrTokenNotFound) {
			return nil, apperr.Unauthorized("invalid refresh token")
		}
		return nil, apperr.Internal(err)
	}

	if err := s.tokens.Create(&refreshtoken.RefreshToken{
		Token:       newToken,
		UserID:      u.ID,
		ExpiresAt:   now.Add(s.config.RefreshTokenDuration),
		CreatedAt:   now,
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}); err != nil {
		return nil, apperr.Internal(err)
	}

	accessToken, err := s.signer.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &Session{User: u, AccessToken: accessToken, RefreshToken: newToken}, nil
}

// ForgotPassword issues a reset token and dispatches the reset email.
func (s *Service) ForgotPassword(email string) error {
	u, err := s.users.FindByIdentifier(email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return apperr.NotFound("user does not exist")
		}
		return apperr.Internal(err)
	}

	eph, err := s.ephemeral.Issue()
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.users.SetResetToken(u.ID, eph.Hash, eph.ExpiresAt); err != nil {
		return apperr.Internal(err)
	}

	s.mail.DispatchPasswordResetEmail(u, eph.Plaintext)
	return nil
}

// ResetPassword consumes a reset token, replaces the password, revokes
// every existing refresh token for the user, and signs the user in.
func (s *Service) ResetPassword(plaintextToken, newPassword string, clientIP, userAgent string, rememberMe bool) (*Session, error) {
	if len(newPassword) < minPasswordLength {
		return nil, apperr.BadRequest("password must be at least 8 characters")
	}

	now := s.clock.Now()
	hash := token.HashOf(plaintextToken)

	u, err := s.users.FindByResetTokenHash(hash, now)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			// Expired tokens are indistinguishable from missing ones.
			return nil, apperr.NotFound("invalid or expired reset token")
		}
		return nil, apperr.Internal(err)
	}

	if s.hasher.Verify(newPassword, u.PasswordHash) {
		return nil, apperr.BadRequest("new password cannot be the same as the old password")
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.log.Error("failed to hash password", zap.Error(err))
		return nil, apperr.Internal(err)
	}

	if err := s.users.UpdatePassword(u.ID, newHash, now); err != nil {
		return nil, apperr.Internal(err)
	}
	u.PasswordHash = newHash
	u.PasswordChangedAt = &now
	u.PasswordResetTokenHash = ""
	u.PasswordResetExpiresAt = nil

	// A password change kills every existing session.
	if _, err := s.tokens.RevokeAllForUser(u.ID, clientIP, now); err != nil {
		s.log.Error("failed to revoke sessions after password reset",
			zap.String("user_id", u.ID), zap.Error(err))
	}

	session, err := s.issueSession(u, s.refreshTTL(rememberMe), clientIP, userAgent)
	if err != nil {
		return nil, err
	}

	s.mail.DispatchPasswordChangedEmail(u)
	return session, nil
}

// VerifyEmail consumes a verification token. The token fields are cleared
// in the same update that flips the flag, so a token is never usable twice.
func (s *Service) VerifyEmail(plaintextToken string) (*user.User, error) {
	now := s.clock.Now()
	hash := token.HashOf(plaintextToken)

	u, err := s.users.FindByVerificationTokenHash(hash, now)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperr.NotFound("invalid or expired verification token")
		}
		return nil, apperr.Internal(err)
	}

	if u.IsEmailVerified {
		return nil, apperr.BadRequest("email already verified")
	}

	if err := s.users.MarkEmailVerified(u.ID); err != nil {
		return nil, apperr.Internal(err)
	}
	u.IsEmailVerified = true
	u.EmailVerificationTokenHash = ""
	u.EmailVerificationExpiresAt = nil

	s.mail.DispatchWelcomeEmail(u)
	return u, nil
}

// ResendVerificationEmail re-issues a verification token; only the latest
// hash is stored, so any prior token is implicitly invalidated.
func (s *Service) ResendVerificationEmail(userID string) (*user.User, error) {
	u, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperr.NotFound("user does not exist")
		}
		return nil, apperr.Internal(err)
	}

	if u.IsEmailVerified {
		return nil, apperr.BadRequest("email already verified")
	}

	if err := s.issueVerificationToken(u); err != nil {
		return nil, apperr.Internal(err)
	}
	return u, nil
}

// Logout revokes a single refresh token. Revoking an unknown or already
// revoked token is a no-op success.
func (s *Service) Logout(refreshToken, clientIP string) error {
	_, err := s.tokens.Revoke(refreshToken, clientIP, s.clock.Now())
	if err != nil && !errors.Is(err, refreshtoken.ErrTokenNotFound) {
		return apperr.Internal(err)
	}
	return nil
}

// LogoutAll revokes every active refresh token for the user.
func (s *Service) LogoutAll(userID, clientIP string) (int64, error) {
	count, err := s.tokens.RevokeAllForUser(userID, clientIP, s.clock.Now())
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return count, nil
}

func (s *Service) GetProfile(userID string) (*user.User, error) {
	u, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	return u, nil
}

// Authenticate verifies an access token and loads the principal. Tokens
// issued before the user's last password change are rejected; this is how
// stateless access tokens get revoked without a blocklist.
func (s *Service) Authenticate(accessToken string) (*Principal, error) {
	claims, err := s.signer.Verify(accessToken)
	if err != nil {
		return nil, apperr.Unauthorized("invalid access token")
	}

	u, err := s.users.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperr.Unauthorized("this user no longer exists")
		}
		return nil, apperr.Internal(err)
	}

	if !u.IsActive {
		return nil, apperr.Unauthorized("account is deactivated")
	}

	if u.PasswordChangedAt != nil && claims.IssuedAt.Unix() < u.PasswordChangedAt.Unix() {
		return nil, apperr.Unauthorized("password changed, please log in again")
	}

	return &Principal{ID: u.ID, Role: u.Role}, nil
}

func (s *Service) refreshTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return s.config.RememberMeDuration
	}
	return s.config.RefreshTokenDuration
}

func (s *Service) issueSession(u *user.User, refreshTTL time.Duration, clientIP, userAgent string) (*Session, error) {
	now := s.clock.Now()

	accessToken, err := s.signer.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	refreshToken, err := token.NewOpaque()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if err := s.tokens.Create(&refreshtoken.RefreshToken{
		Token:       refreshToken,
		UserID:      u.ID,
		ExpiresAt:   now.Add(refreshTTL),
		CreatedAt:   now,
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}); err != nil {
		return nil, apperr.Internal(err)
	}

	return &Session{User: u, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *Service) issueVerificationToken(u *user.User) error {
	eph, err := s.ephemeral.Issue()
	if err != nil {
		return err
	}
	if err := s.users.SetVerificationToken(u.ID, eph.Hash, eph.ExpiresAt); err != nil {
		return err
	}
	u.EmailVerificationTokenHash = eph.Hash
	u.EmailVerificationExpiresAt = &eph.ExpiresAt

	s.mail.DispatchVerificationEmail(u, eph.Plaintext)
	return nil
}
