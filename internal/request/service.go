package request

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/auth"
	requestDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/request"
	"github.com/frahmantamala/request-routing/internal/core/events"
	"github.com/frahmantamala/request-routing/internal/metrics"
)

type RepositoryAPI interface {
	// List returns every request in insertion order.
	List(ctx context.Context) ([]*requestDatamodel.Request, error)
	GetByRequestID(ctx context.Context, requestID string) (*requestDatamodel.Request, error)
	// ReserveID issues the next request ID for year.
	ReserveID(ctx context.Context, year int) (string, error)
	Create(ctx context.Context, req *requestDatamodel.Request) error
	// Update writes req if its version is unchanged and bumps the version.
	Update(ctx context.Context, req *requestDatamodel.Request) error
}

// FileStore keeps request attachments.
type FileStore interface {
	SaveUpload(ctx context.Context, requestID, filename string, r io.Reader) (string, error)
}

// Upload is an attachment sent with a new request.
type Upload struct {
	Filename string
	Content  io.Reader
}

type Service struct {
	repo       RepositoryAPI
	files      FileStore
	lifecycle  *Lifecycle
	visibility *VisibilityFilter
	events     events.Publisher
	now        func() time.Time
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, files FileStore, lifecycle *Lifecycle, visibility *VisibilityFilter, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		files:      files,
		lifecycle:  lifecycle,
		visibility: visibility,
		events:     publisher,
		now:        lifecycle.now,
		logger:     logger,
	}
}

// Create validates the submission, issues a request ID, stores the optional
// attachment and appends the request. Nothing is written when validation
// fails.
func (s *Service) Create(ctx context.Context, dto CreateRequestDTO, upload *Upload) (*Request, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	requestID, err := s.repo.ReserveID(ctx, now.Year())
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to reserve request id", "error", err)
		return nil, internal.ErrStoreUnavailable.Wrap(err)
	}

	var fileName string
	if upload != nil && upload.Filename != "" {
		if s.files == nil {
			return nil, internal.NewInternalError("file storage is not configured", nil)
		}
		fileName, err = s.files.SaveUpload(ctx, requestID, upload.Filename, upload.Content)
		if err != nil {
			if appErr, ok := internal.IsAppError(err); ok {
				return nil, appErr
			}
			s.logger.Error("failed to store attachment", "request_id", requestID, "error", err)
			return nil, internal.NewInternalError("failed to store attachment", err)
		}
	}

	lastUpdatedBy := dto.SenderName
	if lastUpdatedBy == "" {
		lastUpdatedBy = "-"
	}

	req := &Request{
		RequestID:        requestID,
		Title:            dto.Title,
		Description:      dto.Description,
		SenderDepartment: dto.SenderDepartment,
		SenderName:       dto.SenderName,
		TargetDepartment: dto.TargetDepartment,
		Status:           StatusNew,
		LastUpdatedBy:    lastUpdatedBy,
		FileName:         fileName,
		Version:          1,
		CreatedAt:        now,
	}

	row := ToDataModel(req)
	if err := s.repo.Create(ctx, row); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create request", "request_id", requestID, "error", err)
		return nil, internal.ErrStoreUnavailable.Wrap(err)
	}

	created := FromDataModel(row)
	metrics.RequestsCreatedTotal.WithLabelValues(created.TargetCanonical()).Inc()
	s.logger.Info("request created",
		"request_id", created.RequestID,
		"sender_department", created.SenderCanonical(),
		"target_department", created.TargetCanonical())
	s.publish(ctx, events.NewRequestCreatedEvent(created.RequestID, created.SenderDepartment, created.TargetDepartment))
	return created, nil
}

// List returns the requests visible to the caller described by dto.
func (s *Service) List(ctx context.Context, dto ListRequestsDTO) ([]*Request, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list requests", "error", err)
		return nil, internal.ErrStoreUnavailable.Wrap(err)
	}

	role, err := auth.ParseRole(dto.Role)
	if err != nil {
		s.logger.Warn("listing requests for unrecognized role", "role", dto.Role)
		role = ""
	}
	return s.visibility.Visible(FromDataModelSlice(rows), role, dto.Department), nil
}

func (s *Service) UpdateStatus(ctx context.Context, dto UpdateStatusDTO) (*Request, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	req, err := s.load(ctx, dto.RequestID)
	if err != nil {
		return nil, err
	}

	status, err := ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	from := req.Status
	if err := s.lifecycle.Apply(req, Transition{To: status, Actor: dto.Updater, Duration: dto.Duration}); err != nil {
		metrics.TransitionsRejectedTotal.WithLabelValues(string(from), string(status)).Inc()
		s.logger.Warn("status transition rejected",
			"request_id", req.RequestID, "from", from, "to", status)
		return nil, err
	}

	if err := s.save(ctx, req); err != nil {
		return nil, err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(from), string(status)).Inc()
	s.logger.Info("request status changed",
		"request_id", req.RequestID, "from", from, "to", status, "actor", dto.Updater)
	s.publish(ctx, events.NewRequestStatusChangedEvent(req.RequestID, string(from), string(status), dto.Updater))
	return req, nil
}

// Delegate hands a request to another person without changing its routing.
func (s *Service) Delegate(ctx context.Context, dto DelegateDTO) (*Request, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.load(ctx, dto.RequestID)
	if err != nil {
		return nil, err
	}

	from := req.Status
	err = s.lifecycle.Apply(req, Transition{To: StatusDelegated, Actor: dto.DelegatedBy, Delegate: dto.Delegate})
	if err != nil {
		metrics.TransitionsRejectedTotal.WithLabelValues(string(from), string(StatusDelegated)).Inc()
		return nil, err
	}

	if err := s.save(ctx, req); err != nil {
		return nil, err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(from), string(StatusDelegated)).Inc()
	s.logger.Info("request delegated",
		"request_id", req.RequestID, "delegate", dto.Delegate, "by", dto.DelegatedBy)
	s.publish(ctx, events.NewRequestDelegatedEvent(req.RequestID, dto.Delegate, dto.DelegatedBy))
	return req, nil
}

func (s *Service) load(ctx context.Context, requestID string) (*Request, error) {
	row, err := s.repo.GetByRequestID(ctx, requestID)
	if err != nil {
		s.logger.Error("failed to load request", "request_id", requestID, "error", err)
		return nil, internal.ErrStoreUnavailable.Wrap(err)
	}
	if row == nil {
		return nil, internal.ErrRequestNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) save(ctx context.Context, req *Request) error {
	row := ToDataModel(req)
	if err := s.repo.Update(ctx, row); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return appErr
		}
		s.logger.Error("failed to update request", "request_id", req.RequestID, "error", err)
		return internal.ErrStoreUnavailable.Wrap(err)
	}
	req.Version = row.Version
	req.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
