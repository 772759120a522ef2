package auth

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "statusreg/pkg/domain"
	"statusreg/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return s.claims, s.err
}

func serve(t *testing.T, v JWTValidator, header string) (*httptest.ResponseRecorder, id.OwnerID) {
	t.Helper()
	var seen id.OwnerID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.OwnerID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	req := httptest.NewRequest(http.MethodGet, "/status-list", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	RequireAuth(v, logger)(next).ServeHTTP(rr, req)
	return rr, seen
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"]
}

func TestRequireAuth(t *testing.T) {
	ownerID := id.NewOwnerID()

	t.Run("valid token sets owner", func(t *testing.T) {
		rr, seen := serve(t, stubValidator{claims: &JWTClaims{OwnerID: ownerID.String(), JTI: "j"}}, "Bearer token")
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, ownerID, seen)
	})

	t.Run("missing header", func(t *testing.T) {
		rr, seen := serve(t, stubValidator{}, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "unauthorized", errorCode(t, rr))
		assert.True(t, seen.IsNil())
	})

	t.Run("non bearer scheme", func(t *testing.T) {
		rr, _ := serve(t, stubValidator{}, "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("validator rejects token", func(t *testing.T) {
		rr, _ := serve(t, stubValidator{err: errors.New("bad signature")}, "Bearer token")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "unauthorized", errorCode(t, rr))
	})

	t.Run("malformed owner claim", func(t *testing.T) {
		rr, _ := serve(t, stubValidator{claims: &JWTClaims{OwnerID: "not-a-uuid"}}, "Bearer token")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
