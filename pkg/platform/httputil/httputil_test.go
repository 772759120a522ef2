package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "statusreg/pkg/domain"
	dErrors "statusreg/pkg/domain-errors"
	"statusreg/pkg/requestcontext"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"size too large", dErrors.New(dErrors.CodeSizeTooLarge, "status list size must be below 512"), http.StatusBadRequest, "size_too_large"},
		{"out of bounds", dErrors.New(dErrors.CodeOutOfBounds, "entry out of bounds"), http.StatusBadRequest, "out_of_bounds"},
		{"not reversible", dErrors.New(dErrors.CodeStatusNotReversible, "status not reversible"), http.StatusConflict, "status_not_reversible"},
		{"conflict", dErrors.New(dErrors.CodeConflict, "exists"), http.StatusConflict, "conflict"},
		{"not found", dErrors.New(dErrors.CodeNotFound, "missing"), http.StatusNotFound, "not_found"},
		{"invalid input", dErrors.New(dErrors.CodeInvalidInput, "bad"), http.StatusBadRequest, "bad_request"},
		{"validation", dErrors.New(dErrors.CodeValidation, "size is required"), http.StatusBadRequest, "validation_error"},
		{"unauthorized", dErrors.New(dErrors.CodeUnauthorized, "no"), http.StatusUnauthorized, "unauthorized"},
		{"wrapped domain error", fmt.Errorf("toggle: %w", dErrors.New(dErrors.CodeOutOfBounds, "entry out of bounds")), http.StatusBadRequest, "out_of_bounds"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantCode, decodeBody(t, w)["error"])
		})
	}

	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		body := decodeBody(t, w)
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("details are added to the envelope", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.NewWithDetails(dErrors.CodeSizeTooLarge, "status list size must be below 512",
			map[string]string{"max_size": "512", "error": "spoofed"}))

		assert.Equal(t, map[string]string{
			"error":             "size_too_large",
			"error_description": "status list size must be below 512",
			"max_size":          "512",
		}, decodeBody(t, w))
	})

	t.Run("internal errors drop details", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, &dErrors.Error{Code: dErrors.CodeInternal, Details: map[string]string{"table": "status_lists"}})

		assert.Equal(t, map[string]string{"error": "internal_error"}, decodeBody(t, w))
	})

	t.Run("client errors include description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeOutOfBounds, "entry out of bounds"))

		assert.Equal(t, "entry out of bounds", decodeBody(t, w)["error_description"])
	})
}

func TestWriteBytes(t *testing.T) {
	w := httptest.NewRecorder()
	WriteBytes(w, http.StatusOK, []byte{1})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "1", w.Header().Get("Content-Length"))
	assert.Equal(t, []byte{1}, w.Body.Bytes())
}

func TestRequireOwnerID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("missing owner is an internal error", func(t *testing.T) {
		_, err := RequireOwnerID(context.Background(), logger, "req-1")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("returns the authenticated owner", func(t *testing.T) {
		ownerID := id.NewOwnerID()
		ctx := requestcontext.WithOwnerID(context.Background(), ownerID)

		got, err := RequireOwnerID(ctx, logger, "req-1")
		require.NoError(t, err)
		assert.Equal(t, ownerID, got)
	})
}

type sizeRequest struct {
	Size int `json:"size"`
}

func (r *sizeRequest) Validate() error {
	if r.Size == 0 {
		return errors.New("size is required")
	}
	return nil
}

type purposeRequest struct {
	Purpose string `json:"purpose"`
}

func (r *purposeRequest) Normalize() {}

func (r *purposeRequest) Validate() error {
	if r.Purpose == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "purpose is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	post := func(body string) *http.Request {
		return httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	}

	t.Run("decodes valid body", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, ok := DecodeAndPrepare[sizeRequest](w, post(`{"size":8}`), logger, ctx, "req")
		require.True(t, ok)
		assert.Equal(t, 8, req.Size)
	})

	t.Run("malformed json is bad_request", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[sizeRequest](w, post(`{size`), logger, ctx, "req")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeBody(t, w)["error"])
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[sizeRequest](w, post(`{"size":8,"extra":true}`), logger, ctx, "req")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("plain validation error becomes validation_error", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[sizeRequest](w, post(`{}`), logger, ctx, "req")
		assert.False(t, ok)
		body := decodeBody(t, w)
		assert.Equal(t, "validation_error", body["error"])
		assert.Equal(t, "size is required", body["error_description"])
	})

	t.Run("domain validation error keeps its code", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[purposeRequest](w, post(`{}`), logger, ctx, "req")
		assert.False(t, ok)
		assert.Equal(t, "bad_request", decodeBody(t, w)["error"])
	})
}
