package model

import "time"

// KDFParams are the scrypt parameters a vault record was sealed with
type KDFParams struct {
	N      int `json:"n"`
	R      int `json:"r"`
	P      int `json:"p"`
	KeyLen int `json:"keyLen"`
}

// VaultRecord is the persisted, encrypted form of a SecureState
type VaultRecord struct {
	Version    int       `json:"version"`
	KDF        KDFParams `json:"kdf"`
	Salt       string    `json:"salt"`
	Nonce      string    `json:"nonce"`
	CipherText string    `json:"cipherText"`
}

// VaultIndex is the unencrypted list of known users
type VaultIndex struct {
	CurrentUser string   `json:"currentUser"`
	Users       []string `json:"users"`
	DataVersion int      `json:"dataVersion"`
}

// HasUser reports whether userID is registered in the index
func (i *VaultIndex) HasUser(userID string) bool {
	for _, u := range i.Users {
		if u == userID {
			return true
		}
	}
	return false
}

// AutoUnlockRecord is the side-channel record sealed under an auto-unlock token.
// It lives outside the vault record and holds no password-derived material.
type AutoUnlockRecord struct {
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
	ExpiresAt  int64  `json:"exp"` // unix milliseconds
}

// UnlockToken grants a password-less unlock until ExpiresAt
type UnlockToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
