// internal/api/response.go
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	apperrors "ai-advisor/internal/common/errors"
	"ai-advisor/internal/common/validation"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the status mapped from err's code. Errors without
// a code are internal and their text is not exposed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr, ok := apperrors.As(err)
	if !ok {
		s.logger.Error("unhandled error", map[string]interface{}{
			"requestId": requestIDFrom(r.Context()),
			"error":     err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error", Code: string(apperrors.ErrCodeInternal)})
		return
	}

	status := apperrors.HTTPStatus(stdErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("request error", map[string]interface{}{
			"requestId": requestIDFrom(r.Context()),
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
	}

	msg := stdErr.Message
	if stdErr.Code == apperrors.ErrCodeValidationFailed && stdErr.Details != "" {
		msg = stdErr.Details
	}
	writeJSON(w, status, errorBody{Error: msg, Code: string(stdErr.Code), Retryable: stdErr.Retryable})
}

// decodeBody validates the request body against schema and decodes it into
// dst. An empty body is treated as an empty object.
func decodeBody(r *http.Request, schema *validation.Schema, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return apperrors.NewValidationError("body could not be read")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	if result := schema.Validate(body); !result.Valid {
		return apperrors.NewValidationError(result.Error()).
			WithMetadata("schema", schema.Name())
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.NewValidationError("body does not match the expected shape")
	}
	return nil
}
