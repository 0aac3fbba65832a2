package chat

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/request-routing/internal/transport"
)

type ServiceAPI interface {
	Send(ctx context.Context, dto SendMessageDTO) (*Message, error)
	History(ctx context.Context, requestID string) ([]*Message, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var dto SendMessageDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	if _, err := h.Service.Send(r.Context(), dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, nil)
}

// Get answers with the bare array of a request's messages.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := strings.TrimSpace(chi.URLParam(r, "requestId"))

	messages, err := h.Service.History(r.Context(), requestID)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	out := make([]MessageResponse, len(messages))
	for i, m := range messages {
		out[i] = m.ToResponse()
	}
	h.WriteJSON(w, http.StatusOK, out)
}
