package handler

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"statusreg/internal/statuslist/models"
	id "statusreg/pkg/domain"
	dErrors "statusreg/pkg/domain-errors"
	"statusreg/pkg/platform/httputil"
	"statusreg/pkg/requestcontext"
)

const octetStream = "application/octet-stream"

// Service defines the interface for status list operations.
type Service interface {
	Create(ctx context.Context, ownerID id.OwnerID, req *models.CreateRequest) (*models.StatusList, error)
	Find(ctx context.Context, ownerID id.OwnerID) (*models.StatusList, error)
	Toggle(ctx context.Context, ownerID id.OwnerID, location uint32) (*models.StatusList, error)
	Read(ctx context.Context, ownerID id.OwnerID, location uint32) (models.ReadResult, error)
}

// Handler serves the owner-scoped status list endpoints. It expects the auth
// middleware to have resolved the owner.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the status list routes. Authentication is applied by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/status-list", h.HandleCreate)
	r.Get("/status-list", h.HandleFind)
	r.Post("/status-list/toggle", h.HandleToggle)
	r.Get("/status-list/entries/{location}", h.HandleRead)
}

// HandleCreate allocates the caller's status list.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	ownerID, err := httputil.RequireOwnerID(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	list, err := h.service.Create(ctx, ownerID, req)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create status list", requestID)
		return
	}

	h.logger.InfoContext(ctx, "status list created",
		"owner_id", ownerID.String(),
		"purpose", list.Purpose.String(),
		"size", list.Size,
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusCreated, models.ToResponse(list))
}

// HandleFind returns the caller's status list with its raw buffer.
func (h *Handler) HandleFind(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	ownerID, err := httputil.RequireOwnerID(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	list, err := h.service.Find(ctx, ownerID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to load status list", requestID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(list))
}

// HandleToggle flips one entry and returns the updated list.
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	ownerID, err := httputil.RequireOwnerID(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.ToggleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	list, err := h.service.Toggle(ctx, ownerID, *req.Location)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to toggle status list entry", requestID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToResponse(list))
}

// HandleRead returns one entry. Clients that accept application/octet-stream
// receive the single return byte instead of JSON.
func (h *Handler) HandleRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	ownerID, err := httputil.RequireOwnerID(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	location, err := parseLocation(chi.URLParam(r, "location"))
	if err != nil {
		h.logger.WarnContext(ctx, "invalid entry location",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Read(ctx, ownerID, location)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to read status list entry", requestID)
		return
	}

	if wantsOctetStream(r) {
		httputil.WriteBytes(w, http.StatusOK, result.ReturnData())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ToReadResponse(result))
}

// parseLocation accepts any non-negative integer. Values past the uint32
// range cannot address an entry and are reported as out of bounds.
func parseLocation(raw string) (uint32, error) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, models.ErrOutOfBounds
		}
		return 0, dErrors.New(dErrors.CodeBadRequest, "location must be a non-negative integer")
	}
	if n > math.MaxUint32 {
		return 0, models.ErrOutOfBounds
	}
	return uint32(n), nil
}

func wantsOctetStream(r *http.Request) bool {
	for part := range strings.SplitSeq(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == octetStream {
			return true
		}
	}
	return false
}

// writeServiceError logs client errors at warn and everything else at error.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string, requestID string) {
	if httputil.DomainCodeToHTTPStatus(codeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg,
			"error", err,
			"request_id", requestID,
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"error", err,
			"request_id", requestID,
		)
	}
	httputil.WriteError(w, err)
}

func codeOf(err error) dErrors.Code {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return dErrors.CodeInternal
}
