package model

// ErrorResponse is the body of every failed request. Code names the error
// kind: validation, auth, network, protocol, execution or internal.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// StatusResponse is the generic success body
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Address string `json:"address,omitempty"`
}
