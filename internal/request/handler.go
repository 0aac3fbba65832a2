package request

import (
	"context"
	"errors"
	"net/http"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/transport"
)

const defaultMaxUploadBytes = 32 << 20

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateRequestDTO, upload *Upload) (*Request, error)
	List(ctx context.Context, dto ListRequestsDTO) ([]*Request, error)
	UpdateStatus(ctx context.Context, dto UpdateStatusDTO) (*Request, error)
	Delegate(ctx context.Context, dto DelegateDTO) (*Request, error)
}

type Handler struct {
	*transport.BaseHandler
	Service        ServiceAPI
	MaxUploadBytes int64
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		BaseHandler:    baseHandler,
		Service:        service,
		MaxUploadBytes: maxUploadBytes,
	}
}

// CreateRequest accepts a multipart form with an optional "file" part.
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.WriteAppError(w, r, internal.ErrFileTooLarge)
			return
		}
		h.WriteAppError(w, r, internal.ErrInvalidBody.Wrap(err))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	dto := CreateRequestDTO{
		Title:            r.FormValue("title"),
		Description:      r.FormValue("description"),
		TargetDepartment: r.FormValue("targetDept"),
		SenderDepartment: r.FormValue("senderDept"),
		SenderName:       r.FormValue("senderName"),
	}

	var upload *Upload
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		upload = &Upload{Filename: header.Filename, Content: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		h.WriteAppError(w, r, internal.ErrInvalidBody.Wrap(err))
		return
	}

	req, err := h.Service.Create(r.Context(), dto, upload)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{"request_id": req.RequestID})
}

// GetRequests answers with a bare array of flattened records.
func (h *Handler) GetRequests(w http.ResponseWriter, r *http.Request) {
	var dto ListRequestsDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	if dto.Role == "" {
		if p, ok := internal.PrincipalFromContext(r.Context()); ok {
			dto.Role = p.Role
			if dto.Department == "" {
				dto.Department = p.Department
			}
		}
	}

	requests, err := h.Service.List(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToRecords(requests))
}

func (h *Handler) UpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
	var dto UpdateStatusDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	if _, err := h.Service.UpdateStatus(r.Context(), dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, nil)
}

func (h *Handler) DelegateRequest(w http.ResponseWriter, r *http.Request) {
	var dto DelegateDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	if _, err := h.Service.Delegate(r.Context(), dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, nil)
}
