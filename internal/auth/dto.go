package auth

import (
	"strings"

	"github.com/frahmantamala/request-routing/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Normalize trims surrounding whitespace.
func (d *LoginDTO) Normalize() {
	d.Email = strings.TrimSpace(d.Email)
	d.Password = strings.TrimSpace(d.Password)
}

func (d LoginDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}
