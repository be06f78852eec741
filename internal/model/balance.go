package model

// BalanceResponse represents response for GET /balance
type BalanceResponse struct {
	AccountID string `json:"accountId"`
	Total     string `json:"total"`  // NEAR, 4 decimals truncated
	Locked    string `json:"locked"` // NEAR staked by the account itself
	Rate      string `json:"rate"`   // NEAR/USD
	USD       string `json:"near_amount_in_usd"`
}
