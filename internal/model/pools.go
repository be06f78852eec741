package model

// PoolResponse represents one entry of GET /pools
type PoolResponse struct {
	AccountID string   `json:"accountId"`
	Stake     string   `json:"stake"` // NEAR
	Slashed   bool     `json:"slashed"`
	Uptime    int      `json:"uptime"`        // percent
	Fee       *float64 `json:"fee,omitempty"` // percent
	Error     string   `json:"error,omitempty"`
}

// PoolBalanceResponse represents response for GET /pools/balance
type PoolBalanceResponse struct {
	AccountID   string `json:"accountId"`
	Pool        string `json:"pool"`
	Staked      string `json:"staked"`   // NEAR
	Unstaked    string `json:"unstaked"` // NEAR
	CanWithdraw bool   `json:"canWithdraw"`
}
