package auth

import (
	"net/mail"
	"regexp"

	"github.com/quillhq/quill-backend/internal/apperr"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

const minPasswordLength = 8

func validateRegistration(username, email, password string) error {
	if !usernamePattern.MatchString(username) {
		return apperr.BadRequest("username must be 3-20 characters of letters, numbers, and underscores")
	}
	if !isValidEmail(email) {
		return apperr.BadRequest("invalid email format")
	}
	if len(password) < minPasswordLength {
		return apperr.BadRequest("password must be at least 8 characters")
	}
	return nil
}

func validateCredentials(identifier, password string) error {
	if identifier == "" {
		return apperr.BadRequest("identifier is required")
	}
	if password == "" {
		return apperr.BadRequest("password is required")
	}
	return nil
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
