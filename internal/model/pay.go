package model

// SendRequest represents request for POST /send
type SendRequest struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"` // NEAR, at most 4 decimals are kept
}

// CallRequest represents request for POST /call
type CallRequest struct {
	From     string      `json:"from"`
	Contract string      `json:"contract"`
	Method   string      `json:"method"`
	Args     interface{} `json:"args"`
	TGas     uint64      `json:"tgas"`
	Deposit  float64     `json:"deposit"` // NEAR attached to the call
}

// DeleteAccountRequest represents request for POST /accounts/delete
type DeleteAccountRequest struct {
	AccountID   string `json:"accountId"`
	Beneficiary string `json:"beneficiary"`
}

// TxResponse represents response for every transaction-submitting endpoint
type TxResponse struct {
	TxHash string `json:"txHash"`
	Result string `json:"result"`
}
