package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	id "statusreg/pkg/domain"
	dErrors "statusreg/pkg/domain-errors"
	"statusreg/pkg/requestcontext"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteBytes writes a raw binary body.
func WriteBytes(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// WriteError centralizes domain error translation to HTTP responses.
// Internal errors never leak their message.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		status := DomainCodeToHTTPStatus(domainErr.Code)
		response := make(map[string]string, len(domainErr.Details)+2)
		if domainErr.Code != dErrors.CodeInternal {
			for k, v := range domainErr.Details {
				response[k] = v
			}
			if domainErr.Message != "" {
				response["error_description"] = domainErr.Message
			}
		}
		response["error"] = DomainCodeToHTTPCode(domainErr.Code)
		WriteJSON(w, status, response)
		return
	}

	WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": DomainCodeToHTTPCode(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput,
		dErrors.CodeSizeTooLarge, dErrors.CodeOutOfBounds:
		return http.StatusBadRequest
	case dErrors.CodeConflict, dErrors.CodeStatusNotReversible:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to HTTP error codes (for JSON response).
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return "bad_request"
	case dErrors.CodeValidation:
		return "validation_error"
	case dErrors.CodeSizeTooLarge:
		return "size_too_large"
	case dErrors.CodeOutOfBounds:
		return "out_of_bounds"
	case dErrors.CodeStatusNotReversible:
		return "status_not_reversible"
	case dErrors.CodeConflict:
		return "conflict"
	case dErrors.CodeUnauthorized:
		return "unauthorized"
	case dErrors.CodeForbidden:
		return "forbidden"
	case dErrors.CodeTimeout:
		return "timeout"
	default:
		return "internal_error"
	}
}

// RequireOwnerID extracts the authenticated owner from context.
// A missing owner behind the auth middleware is a wiring bug, hence internal.
func RequireOwnerID(ctx context.Context, logger *slog.Logger, requestID string) (id.OwnerID, error) {
	ownerID := requestcontext.OwnerID(ctx)
	if ownerID.IsNil() {
		if logger != nil {
			logger.ErrorContext(ctx, "ownerID missing from context despite auth middleware",
				"request_id", requestID)
		}
		return id.OwnerID{}, dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	return ownerID, nil
}
