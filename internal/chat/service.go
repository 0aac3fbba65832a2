package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/request-routing/internal"
	chatDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/chat"
	requestDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/request"
	"github.com/frahmantamala/request-routing/internal/core/events"
	"github.com/frahmantamala/request-routing/internal/storage"
)

type RepositoryAPI interface {
	Append(ctx context.Context, msg *chatDatamodel.Message) error
	// ListByRequest returns a request's messages in append order.
	ListByRequest(ctx context.Context, requestID string) ([]*chatDatamodel.Message, error)
}

// RequestFinder resolves the request a message belongs to.
type RequestFinder interface {
	GetByRequestID(ctx context.Context, requestID string) (*requestDatamodel.Request, error)
}

type Service struct {
	repo     RepositoryAPI
	requests RequestFinder
	events   events.Publisher
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, requests RequestFinder, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		requests: requests,
		events:   publisher,
		now:      time.Now,
		logger:   logger,
	}
}

// Send appends a message to a request's conversation.
func (s *Service) Send(ctx context.Context, dto SendMessageDTO) (*Message, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if s.requests != nil {
		req, err := s.requests.GetByRequestID(ctx, dto.RequestID)
		if err != nil {
			s.logger.Error("failed to look up request for chat", "request_id", dto.RequestID, "error", err)
			return nil, internal.ErrStoreUnavailable.Wrap(err)
		}
		if req == nil {
			return nil, internal.ErrRequestNotFound
		}
	}

	var fileName string
	if dto.File != "" {
		name, err := storage.SanitizeName(dto.File)
		if err != nil {
			return nil, err
		}
		fileName = name
	}

	msg := &Message{
		RequestID:  dto.RequestID,
		Sender:     dto.Sender,
		Department: dto.Department,
		Body:       dto.Message,
		FileName:   fileName,
		SentAt:     s.now(),
	}

	row := ToDataModel(msg)
	if err := s.repo.Append(ctx, row); err != nil {
		s.logger.Error("failed to append chat message", "request_id", dto.RequestID, "error", err)
		return nil, internal.ErrStoreUnavailable.Wrap(err)
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, events.NewChatMessagePostedEvent(msg.RequestID, msg.Sender)); err != nil {
			s.logger.Warn("failed to publish chat event", "request_id", msg.RequestID, "error", err)
		}
	}
	return FromDataModel(row), nil
}

func (s *Service) History(ctx context.Context, requestID string) ([]*Message, error) {
	rows, err := s.repo.ListByRequest(ctx, requestID)
	if err != nil {
		s.logger.Error("failed to load chat history", "request_id", requestID, "error", err)
		return nil, internal.ErrStoreUnavailable.Wrap(err)
	}

	messages := make([]*Message, len(rows))
	for i, row := range rows {
		messages[i] = FromDataModel(row)
	}
	return messages, nil
}
