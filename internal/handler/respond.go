package handler

import (
	"encoding/json"
	"net/http"

	"github.com/AlexZinkM/narwallet/internal/model"

	"github.com/rs/zerolog/log"
)

// Error codes of model.ErrorResponse
const (
	CodeValidation = "validation"
	CodeAuth       = "auth"
	CodeNetwork    = "network"
	CodeProtocol   = "protocol"
	CodeExecution  = "execution"
	CodeInternal   = "internal"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}

// writeError maps the wallet error taxonomy onto HTTP statuses
func writeError(w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: code})
}

func statusOf(err error) (int, string) {
	switch {
	case model.IsValidationError(err):
		return http.StatusBadRequest, CodeValidation
	case model.IsAuthError(err):
		return http.StatusUnauthorized, CodeAuth
	case model.IsLedgerExecutionError(err):
		return http.StatusUnprocessableEntity, CodeExecution
	case model.IsNetworkError(err):
		return http.StatusBadGateway, CodeNetwork
	case model.IsProtocolError(err):
		return http.StatusBadGateway, CodeProtocol
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed. Should be "+method, http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func decodeBody(r *http.Request, out interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return model.NewValidationError("body", err.Error())
	}
	return nil
}
