package chatbot

import (
	"context"
	"net/http"

	"github.com/frahmantamala/request-routing/internal/transport"
)

type ServiceAPI interface {
	Reply(ctx context.Context, message string) string
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

type replyRequest struct {
	Message string `json:"message"`
}

type replyResponse struct {
	Reply string `json:"reply"`
}

// Reply always answers 200; a malformed body is treated as an empty message.
func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	var body replyRequest
	if err := h.DecodeJSON(r, &body); err != nil {
		h.Logger.Warn("chatbot: malformed body", "error", err)
		body.Message = ""
	}

	h.WriteJSON(w, http.StatusOK, replyResponse{Reply: h.Service.Reply(r.Context(), body.Message)})
}
