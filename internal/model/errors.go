package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Reasons carried by AuthError. None of them ever embeds key material or passwords.
var (
	ErrInvalidPassword  = errors.New("invalid password")
	ErrTokenExpired     = errors.New("auto-unlock token expired")
	ErrTokenInvalid     = errors.New("auto-unlock token invalid")
	ErrNotFullAccess    = errors.New("access key is not full access")
	ErrReadOnlyAccount  = errors.New("account has no private key")
	ErrPasswordRequired = errors.New("password required for this operation")
	ErrLocked           = errors.New("wallet is locked")
)

// ValidationError is returned before any network or crypto work is done.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AuthError reports a failed password, token or permission check.
type AuthError struct {
	Reason error
}

func (e *AuthError) Error() string {
	return "authentication failed: " + e.Reason.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Reason
}

// NewAuthError wraps one of the Err* reasons above.
func NewAuthError(reason error) error {
	return &AuthError{Reason: reason}
}

// NetworkError reports an unreachable node or a timeout.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a malformed, unparsable or remote-rejected RPC response.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// LedgerExecutionError carries the flattened explanation of a failed transaction.
// Lines[0] is always TransactionFailedMarker.
type LedgerExecutionError struct {
	Lines []string
}

// TransactionFailedMarker prefixes every execution failure message.
const TransactionFailedMarker = "Transaction failed."

// NewLedgerExecutionError builds the error from detail lines, adding the marker.
func NewLedgerExecutionError(details ...string) *LedgerExecutionError {
	lines := make([]string, 0, len(details)+1)
	lines = append(lines, TransactionFailedMarker)
	lines = append(lines, details...)
	return &LedgerExecutionError{Lines: lines}
}

func (e *LedgerExecutionError) Error() string {
	return strings.Join(e.Lines, "\n")
}

// IsValidationError checks if err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsAuthError checks if err is (or wraps) an AuthError
func IsAuthError(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsNetworkError checks if err is (or wraps) a NetworkError
func IsNetworkError(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

// IsProtocolError checks if err is (or wraps) a ProtocolError
func IsProtocolError(err error) bool {
	var target *ProtocolError
	return errors.As(err, &target)
}

// IsLedgerExecutionError checks if err is (or wraps) a LedgerExecutionError
func IsLedgerExecutionError(err error) bool {
	var target *LedgerExecutionError
	return errors.As(err, &target)
}
