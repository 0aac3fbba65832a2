package chatbot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/i18n"
	"github.com/frahmantamala/request-routing/internal/metrics"
)

// Completer produces a reply for one user message.
type Completer interface {
	Complete(ctx context.Context, message string) (string, error)
}

type Service struct {
	completer Completer
	logger    *slog.Logger
}

func NewService(completer Completer, logger *slog.Logger) *Service {
	return &Service{completer: completer, logger: logger}
}

// Reply never fails: every upstream problem becomes a localized canned reply.
func (s *Service) Reply(ctx context.Context, message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return i18n.T(ctx, "CHATBOT_EMPTY_MESSAGE")
	}

	start := time.Now()
	reply, err := s.completer.Complete(ctx, message)
	metrics.ChatbotLatency.Observe(time.Since(start).Seconds())

	if err == nil {
		metrics.ChatbotCallsTotal.WithLabelValues("ok").Inc()
		return reply
	}

	var statusErr *StatusError
	switch {
	case errors.Is(err, internal.ErrUpstreamTimeout):
		metrics.ChatbotCallsTotal.WithLabelValues("timeout").Inc()
		s.logger.Warn("chatbot upstream timed out", "error", err)
		return i18n.T(ctx, "UPSTREAM_TIMEOUT")
	case errors.Is(err, ErrNoReply):
		metrics.ChatbotCallsTotal.WithLabelValues("no_reply").Inc()
		return i18n.T(ctx, "CHATBOT_NO_REPLY")
	case errors.As(err, &statusErr):
		metrics.ChatbotCallsTotal.WithLabelValues("server_error").Inc()
		s.logger.Error("chatbot upstream returned an error",
			"status", statusErr.StatusCode, "body", statusErr.Body)
		return i18n.T(ctx, "CHATBOT_SERVER_ERROR")
	default:
		metrics.ChatbotCallsTotal.WithLabelValues("unreachable").Inc()
		s.logger.Error("chatbot upstream unreachable", "error", err)
		return i18n.T(ctx, "UPSTREAM_ERROR")
	}
}
