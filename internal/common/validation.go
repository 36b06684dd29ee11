package common

import (
	"errors"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

const maxCaptionLength = 5000

func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return errors.New("email is required")
	}

	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}

	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters long")
	}

	if len(password) > 100 {
		return errors.New("password is too long")
	}

	return nil
}

func ValidateCaption(caption string) error {
	if strings.TrimSpace(caption) == "" {
		return errors.New("caption is required")
	}

	if len(caption) > maxCaptionLength {
		return errors.New("caption is too long")
	}

	return nil
}
