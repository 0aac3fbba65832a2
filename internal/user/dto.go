package user

import (
	"strings"

	"github.com/frahmantamala/request-routing/internal/core/common/validation"
)

// ListUsersDTO filters the HR user listing. Empty fields do not filter.
type ListUsersDTO struct {
	Department      string `json:"department"`
	Role            string `json:"role"`
	IncludeArchived bool   `json:"include_archived"`
}

type AddUserDTO struct {
	Name       string `json:"name" validate:"required,max=200"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	Role       string `json:"role" validate:"required"`
	Department string `json:"department" validate:"required"`
}

func (d *AddUserDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = normalizeEmail(d.Email)
	d.Password = strings.TrimSpace(d.Password)
	d.Role = strings.TrimSpace(d.Role)
	d.Department = strings.TrimSpace(d.Department)
}

func (d AddUserDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

// UpdateUserDTO changes the fields that are set; Email selects the user.
type UpdateUserDTO struct {
	Email      string  `json:"email" validate:"required"`
	Name       *string `json:"name,omitempty"`
	Password   *string `json:"password,omitempty"`
	Role       *string `json:"role,omitempty"`
	Department *string `json:"department,omitempty"`
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=active archived"`
}

func (d *UpdateUserDTO) Normalize() {
	d.Email = normalizeEmail(d.Email)
	for _, p := range []*string{d.Name, d.Password, d.Role, d.Department, d.Status} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

func (d UpdateUserDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

type ArchiveUserDTO struct {
	Email string `json:"email" validate:"required"`
}

func (d ArchiveUserDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

// GetEmployeesDTO lists delegation candidates, optionally for one department.
type GetEmployeesDTO struct {
	Department string `json:"department"`
}

type ResetPasswordDTO struct {
	Email       string `json:"email" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (d *ResetPasswordDTO) Normalize() {
	d.Email = normalizeEmail(d.Email)
	d.NewPassword = strings.TrimSpace(d.NewPassword)
}

func (d ResetPasswordDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

// normalizeEmail gives the stored form of an email key.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
