package common

import (
	"math"
	"regexp"

	"github.com/AlexZinkM/narwallet/internal/model"
)

const (
	MinAccountIDLen   = 2
	MaxAccountIDLen   = 64 // implicit accounts are 64 hex chars
	MinPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidAccountID checks NEAR account id syntax in one pass.
// Equivalent to ^(([a-z\d]+[-_])*[a-z\d]+\.)*([a-z\d]+[-_])*[a-z\d]+$ with length 2..64.
func IsValidAccountID(accountID string) bool {
	if len(accountID) < MinAccountIDLen || len(accountID) > MaxAccountIDLen {
		return false
	}

	// start as if a separator was just seen so a leading one is rejected
	lastIsSeparator := true
	for i := 0; i < len(accountID); i++ {
		c := accountID[i]
		isSeparator := c == '-' || c == '_' || c == '.'
		if !isSeparator && !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')) {
			return false
		}
		if isSeparator && lastIsSeparator {
			return false
		}
		lastIsSeparator = isSeparator
	}
	return !lastIsSeparator
}

// IsValidAmount reports whether x is finite and non-negative
func IsValidAmount(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && x >= 0
}

// IsValidEmail does a loose syntax check of a user id
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateAccountID returns a ValidationError naming field when id is malformed
func ValidateAccountID(field, id string) error {
	if !IsValidAccountID(id) {
		return model.NewValidationError(field, "malformed account id '"+id+"'")
	}
	return nil
}

// ValidatePassword enforces the password policy
func ValidatePassword(password []byte) error {
	if len(password) < MinPasswordLength {
		return model.NewValidationError("password", "must be at least 6 characters long")
	}
	return nil
}
