package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"statusreg/internal/statuslist/metrics"
	"statusreg/internal/statuslist/models"
	"statusreg/internal/statuslist/tracer"
	id "statusreg/pkg/domain"
	dErrors "statusreg/pkg/domain-errors"
	"statusreg/pkg/platform/audit"
	"statusreg/pkg/platform/middleware/metadata"
	"statusreg/pkg/platform/sentinel"
	"statusreg/pkg/requestcontext"
)

// Store persists one status list per owner. Execute must apply mutate
// atomically with respect to other Execute calls for the same owner.
type Store interface {
	Create(ctx context.Context, list *models.StatusList) error
	FindByOwner(ctx context.Context, ownerID id.OwnerID) (*models.StatusList, error)
	Execute(ctx context.Context, ownerID id.OwnerID, mutate func(*models.StatusList) error) (*models.StatusList, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service orchestrates status list creation, toggling and reads on top of a
// Store. The bit arithmetic lives in models.StatusList.
type Service struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         tracer.Tracer

	// irreversibleRevocation forbids clearing a set bit on revocation lists.
	irreversibleRevocation bool
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithIrreversibleRevocation makes revocation one-way: once an entry of a
// revocation list is set, toggling it fails with status_not_reversible.
func WithIrreversibleRevocation(enabled bool) Option {
	return func(s *Service) {
		s.irreversibleRevocation = enabled
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create allocates a zeroed list of req.Size bytes for ownerID.
func (s *Service) Create(ctx context.Context, ownerID id.OwnerID, req *models.CreateRequest) (_ *models.StatusList, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanCreate,
		tracer.String(tracer.AttrOwnerID, ownerID.String()),
		tracer.String(tracer.AttrPurpose, req.Purpose.String()),
		tracer.Int64(tracer.AttrSize, int64(req.Size)),
	)
	defer func() { span.End(err) }()

	list, err := models.New(req.Size, req.Purpose)
	if err != nil {
		s.recordFailure(ctx, "create", err)
		return nil, err
	}
	now := requestcontext.Now(ctx)
	list.OwnerID = ownerID
	list.CreatedAt = now
	list.UpdatedAt = now

	start := time.Now()
	err = s.store.Create(ctx, list)
	s.observeStore("create", start)
	if err != nil {
		err = translateStoreError(err, "create")
		s.recordFailure(ctx, "create", err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncListCreated(list.Purpose.String())
	}
	s.emit(ctx, span, audit.Event{
		Action:  string(audit.EventStatusListCreated),
		OwnerID: ownerID,
		Purpose: list.Purpose.String(),
		Size:    list.Size,
	})
	return list, nil
}

// Find returns the owner's full record.
func (s *Service) Find(ctx context.Context, ownerID id.OwnerID) (_ *models.StatusList, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanFind,
		tracer.String(tracer.AttrOwnerID, ownerID.String()),
	)
	defer func() { span.End(err) }()

	list, err := s.load(ctx, ownerID)
	if err != nil {
		s.recordFailure(ctx, "find", err)
		return nil, err
	}
	s.emit(ctx, span, audit.Event{
		Action:  string(audit.EventStatusListReturned),
		OwnerID: ownerID,
		Purpose: list.Purpose.String(),
		Size:    list.Size,
	})
	return list, nil
}

// Toggle flips the entry at location under the store's per-owner lock and
// returns the list as persisted.
func (s *Service) Toggle(ctx context.Context, ownerID id.OwnerID, location uint32) (_ *models.StatusList, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanToggle,
		tracer.String(tracer.AttrOwnerID, ownerID.String()),
		tracer.Int64(tracer.AttrLocation, int64(location)),
	)
	defer func() { span.End(err) }()

	now := requestcontext.Now(ctx)
	mutate := func(list *models.StatusList) error {
		if s.irreversibleRevocation && list.Purpose == models.PurposeRevocation {
			set, err := list.Get(location)
			if err != nil {
				return err
			}
			if set {
				return models.ErrStatusNotReversible
			}
		}
		if err := list.Toggle(location); err != nil {
			return err
		}
		list.UpdatedAt = now
		return nil
	}

	start := time.Now()
	list, err := s.store.Execute(ctx, ownerID, mutate)
	s.observeStore("toggle", start)
	if err != nil {
		err = translateStoreError(err, "toggle")
		s.recordFailure(ctx, "toggle", err)
		if dErrors.HasCode(err, dErrors.CodeStatusNotReversible) {
			s.emit(ctx, span, audit.Event{
				Action:   string(audit.EventToggleRejected),
				OwnerID:  ownerID,
				Purpose:  models.PurposeRevocation.String(),
				Location: &location,
				Reason:   err.Error(),
			})
		}
		return nil, err
	}

	result, err := list.Read(location)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read toggled entry")
	}
	span.SetAttributes(tracer.Int64(tracer.AttrValue, int64(result.Value)))
	if s.metrics != nil {
		s.metrics.IncToggle(list.Purpose.String(), result.IsSet())
	}
	s.logger.InfoContext(ctx, "status list entry toggled",
		"owner_id", ownerID.String(),
		"location", location,
		"value", result.Value,
		"request_id", requestcontext.RequestID(ctx),
	)
	value := result.Value
	s.emit(ctx, span, audit.Event{
		Action:   string(audit.EventEntryToggled),
		OwnerID:  ownerID,
		Purpose:  list.Purpose.String(),
		Size:     list.Size,
		Location: &location,
		Value:    &value,
	})
	return list, nil
}

// Read returns the entry at location. It never mutates the list.
func (s *Service) Read(ctx context.Context, ownerID id.OwnerID, location uint32) (_ models.ReadResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanRead,
		tracer.String(tracer.AttrOwnerID, ownerID.String()),
		tracer.Int64(tracer.AttrLocation, int64(location)),
	)
	defer func() { span.End(err) }()

	list, err := s.load(ctx, ownerID)
	if err != nil {
		s.recordFailure(ctx, "read", err)
		return models.ReadResult{}, err
	}
	result, err := list.Read(location)
	if err != nil {
		s.recordFailure(ctx, "read", err)
		return models.ReadResult{}, err
	}

	span.SetAttributes(tracer.Int64(tracer.AttrValue, int64(result.Value)))
	if s.metrics != nil {
		s.metrics.IncRead(list.Purpose.String())
	}
	value := result.Value
	s.emit(ctx, span, audit.Event{
		Action:   string(audit.EventEntryRead),
		OwnerID:  ownerID,
		Purpose:  list.Purpose.String(),
		Location: &location,
		Value:    &value,
	})
	return result, nil
}

func (s *Service) load(ctx context.Context, ownerID id.OwnerID) (*models.StatusList, error) {
	start := time.Now()
	list, err := s.store.FindByOwner(ctx, ownerID)
	s.observeStore("find", start)
	if err != nil {
		return nil, translateStoreError(err, "load")
	}
	return list, nil
}

// translateStoreError maps sentinel facts to domain errors. Domain errors
// raised inside an Execute callback pass through unchanged.
func translateStoreError(err error, op string) error {
	var domainErr *dErrors.Error
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "status list not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "status list already exists for owner")
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "status list store timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+op+" status list")
	}
}

func (s *Service) recordFailure(ctx context.Context, operation string, err error) {
	reason := string(dErrors.CodeInternal)
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		reason = string(domainErr.Code)
	}
	if s.metrics != nil {
		s.metrics.IncFailure(operation, reason)
	}
	if reason == string(dErrors.CodeInternal) || reason == string(dErrors.CodeTimeout) {
		s.logger.ErrorContext(ctx, "status list operation failed",
			"operation", operation,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Service) observeStore(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStoreOperation(operation, start)
	}
}

// emit enriches the event with request metadata and hands it to the audit
// publisher. Audit failures are logged, never returned.
func (s *Service) emit(ctx context.Context, span tracer.Span, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.ClientIP = requestcontext.ClientIP(ctx)
	if ua := requestcontext.UserAgent(ctx); ua != "" {
		event.Client = metadata.ClientDescriptor(ua)
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"owner_id", event.OwnerID.String(),
			"error", err,
		)
		return
	}
	span.AddEvent(tracer.EventAuditEmitted, tracer.String("action", event.Action))
}
