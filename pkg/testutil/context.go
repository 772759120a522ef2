package testutil

import (
	"net/http"

	id "statusreg/pkg/domain"
	"statusreg/pkg/requestcontext"
)

// WithOwner authenticates the request as ownerID, the way RequireAuth does.
func WithOwner(req *http.Request, ownerID id.OwnerID) *http.Request {
	return req.WithContext(requestcontext.WithOwnerID(req.Context(), ownerID))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
