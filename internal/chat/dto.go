package chat

import (
	"strings"

	"github.com/frahmantamala/request-routing/internal/core/common/validation"
)

type SendMessageDTO struct {
	RequestID  string `json:"request_id" validate:"required"`
	Sender     string `json:"sender" validate:"required"`
	Department string `json:"department"`
	Message    string `json:"message" validate:"required,max=4000"`
	File       string `json:"file,omitempty"`
}

func (d *SendMessageDTO) Normalize() {
	d.RequestID = strings.TrimSpace(d.RequestID)
	d.Sender = strings.TrimSpace(d.Sender)
	d.Department = strings.TrimSpace(d.Department)
	d.Message = strings.TrimSpace(d.Message)
	d.File = strings.TrimSpace(d.File)
}

func (d SendMessageDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}
