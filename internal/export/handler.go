package export

import (
	"context"
	"net/http"

	"github.com/frahmantamala/request-routing/internal/transport"
)

type ServiceAPI interface {
	Export(ctx context.Context, dto ExportRequestsDTO) (string, error)
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

func (h *Handler) ExportRequests(w http.ResponseWriter, r *http.Request) {
	var dto ExportRequestsDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	file, err := h.Service.Export(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{"file": file})
}
