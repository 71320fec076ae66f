package api

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/brandkit/pkg/errors"
)

type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var payload errorPayload
	payload.Error.Code = string(errors.GetCode(err))
	payload.Error.Message = errors.UserMessage(err)
	writeJSON(w, statusFor(err), payload)
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeKitNotFound, errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidElement, errors.ErrCodeInvalidSource,
		errors.ErrCodeTargetDecode, errors.ErrCodeBatchSize:
		return http.StatusBadRequest
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeCancelled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}
