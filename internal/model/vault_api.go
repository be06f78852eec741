package model

// CreateUserRequest represents request for POST /vault/create
type CreateUserRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// UnlockRequest represents request for POST /vault/unlock.
// Either Password or Token must be set.
type UnlockRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

// AutoUnlockRequest represents request for POST /vault/auto-unlock
type AutoUnlockRequest struct {
	Seconds int `json:"seconds"`
}

// OptionsRequest represents request for POST /vault/options. Omitted fields keep their value.
type OptionsRequest struct {
	Network           *string `json:"network,omitempty"`
	AutoUnlockSeconds *int    `json:"autoUnlockSeconds,omitempty"`
	AdvancedMode      *bool   `json:"advancedMode,omitempty"`
}

// ImportAccountRequest represents request for POST /accounts/import.
// Exactly one of PrivateKey and SeedPhrase is expected; neither means read-only.
type ImportAccountRequest struct {
	AccountID  string `json:"accountId"`
	PrivateKey string `json:"privateKey,omitempty"`
	SeedPhrase string `json:"seedPhrase,omitempty"`
}

// ReorderRequest represents request for POST /accounts/reorder
type ReorderRequest struct {
	AccountIDs []string `json:"accountIds"`
}

// SessionResponse represents response for POST /vault/create and POST /vault/unlock
type SessionResponse struct {
	Success      bool   `json:"success"`
	UserID       string `json:"userId"`
	SessionID    string `json:"sessionId"`
	TokenDerived bool   `json:"tokenDerived"`
}

// AccountsResponse represents response for GET /accounts
type AccountsResponse struct {
	Network  string    `json:"network"`
	Accounts []Account `json:"accounts"`
}

// GenerateAccountResponse represents response for POST /accounts/generate.
// SeedPhrase is shown once and never stored in clear.
type GenerateAccountResponse struct {
	Account    Account `json:"account"`
	SeedPhrase string  `json:"seedPhrase"`
}

// QRResponse represents response for GET /accounts/qr
type QRResponse struct {
	AccountID string `json:"accountId"`
	QRCode    string `json:"qrCode"` // base64 PNG
}

// ChangePasswordRequest represents request for POST /vault/password
type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// RemoveAccountRequest represents request for POST /accounts/remove
type RemoveAccountRequest struct {
	AccountID string `json:"accountId"`
}
