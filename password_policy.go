package campusgate

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	passwordMinLength    = 8
	passwordMaxLength    = 20
	passwordSpecialRunes = `!@#$%^&*(),.?":{}|<>`
)

// checkPasswordPolicy mirrors the identity provider's pool policy so invalid
// passwords are rejected before a hand-off token would be burned downstream.
func checkPasswordPolicy(password string) error {
	if len(password) < passwordMinLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrPasswordPolicy, passwordMinLength)
	}
	if len(password) > passwordMaxLength {
		return fmt.Errorf("%w: password cannot exceed %d characters", ErrPasswordPolicy, passwordMaxLength)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecialRunes, r):
			hasSpecial = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("%w: password must contain at least one uppercase letter", ErrPasswordPolicy)
	}
	if !hasLower {
		return fmt.Errorf("%w: password must contain at least one lowercase letter", ErrPasswordPolicy)
	}
	if !hasSpecial {
		return fmt.Errorf("%w: password must contain at least one special character", ErrPasswordPolicy)
	}
	if !hasDigit {
		return fmt.Errorf("%w: password must contain at least one number", ErrPasswordPolicy)
	}
	return nil
}
