package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/request-routing/internal/i18n"
	"github.com/frahmantamala/request-routing/internal/transport"
)

type ServiceAPI interface {
	ListUsers(ctx context.Context, dto ListUsersDTO) ([]*User, error)
	AddUser(ctx context.Context, dto AddUserDTO) (*User, error)
	UpdateUser(ctx context.Context, dto UpdateUserDTO) (*User, error)
	ArchiveUser(ctx context.Context, dto ArchiveUserDTO) error
	Employees(ctx context.Context, dto GetEmployeesDTO) ([]Employee, error)
	ResetPassword(ctx context.Context, dto ResetPasswordDTO) error
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

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var dto ListUsersDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	users, err := h.Service.ListUsers(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (h *Handler) AddUser(w http.ResponseWriter, r *http.Request) {
	var dto AddUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	u, err := h.Service.AddUser(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, map[string]interface{}{"user": u})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var dto UpdateUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	u, err := h.Service.UpdateUser(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{"user": u})
}

func (h *Handler) ArchiveUser(w http.ResponseWriter, r *http.Request) {
	var dto ArchiveUserDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	if err := h.Service.ArchiveUser(r.Context(), dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, nil)
}

// GetEmployees lists delegation candidates.
func (h *Handler) GetEmployees(w http.ResponseWriter, r *http.Request) {
	var dto GetEmployeesDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	employees, err := h.Service.Employees(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{"employees": employees})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var dto ResetPasswordDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	if err := h.Service.ResetPassword(r.Context(), dto); err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"message": i18n.T(r.Context(), "PASSWORD_RESET_OK"),
	})
}
