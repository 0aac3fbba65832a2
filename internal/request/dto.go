package request

import (
	"strings"

	"github.com/frahmantamala/request-routing/internal/core/common/validation"
)

type CreateRequestDTO struct {
	Title            string `form:"title" validate:"required,max=300"`
	Description      string `form:"description" validate:"required"`
	TargetDepartment string `form:"targetDept" validate:"required"`
	SenderDepartment string `form:"senderDept" validate:"required"`
	SenderName       string `form:"senderName"`
}

func (d *CreateRequestDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.TargetDepartment = strings.TrimSpace(d.TargetDepartment)
	d.SenderDepartment = strings.TrimSpace(d.SenderDepartment)
	d.SenderName = strings.TrimSpace(d.SenderName)
}

func (d CreateRequestDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

// ListRequestsDTO identifies the viewer. Role is a canonical code or its
// Arabic label; anything else is treated as an unrecognized role.
type ListRequestsDTO struct {
	Role       string `json:"role"`
	Department string `json:"department"`
}

type UpdateStatusDTO struct {
	RequestID string `json:"requestId" validate:"required"`
	Status    string `json:"status" validate:"required"`
	Updater   string `json:"updater"`
	Duration  string `json:"duration,omitempty"`
}

func (d *UpdateStatusDTO) Normalize() {
	d.RequestID = strings.TrimSpace(d.RequestID)
	d.Status = strings.TrimSpace(d.Status)
	d.Updater = strings.TrimSpace(d.Updater)
	d.Duration = strings.TrimSpace(d.Duration)
}

func (d UpdateStatusDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

type DelegateDTO struct {
	RequestID   string `json:"requestId" validate:"required"`
	Delegate    string `json:"delegate" validate:"required"`
	DelegatedBy string `json:"delegatedBy" validate:"required"`
}

func (d *DelegateDTO) Normalize() {
	d.RequestID = strings.TrimSpace(d.RequestID)
	d.Delegate = strings.TrimSpace(d.Delegate)
	d.DelegatedBy = strings.TrimSpace(d.DelegatedBy)
}

func (d DelegateDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}
