package user

import (
	"time"

	"github.com/frahmantamala/request-routing/internal/auth"
	userDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/user"
	"github.com/frahmantamala/request-routing/internal/department"
)

const (
	StatusActive   = userDatamodel.StatusActive
	StatusArchived = userDatamodel.StatusArchived
)

type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       auth.Role `json:"role"`
	RawRole    string    `json:"raw_role,omitempty"`
	Password   string    `json:"-"`
	Department string    `json:"department"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u.Status != StatusArchived
}

// CanonicalDepartment is the alias-resolved department.
func (u *User) CanonicalDepartment() string {
	return department.Normalize(u.Department)
}

// Employee is the delegation candidate shape returned by get_employees.
type Employee struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       string(u.Role),
		RawRole:    u.RawRole,
		Password:   u.Password,
		Department: u.Department,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       auth.Role(u.Role),
		RawRole:    u.RawRole,
		Password:   u.Password,
		Department: u.Department,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func FromDataModelSlice(users []*userDatamodel.User) []*User {
	result := make([]*User, len(users))
	for i, u := range users {
		result[i] = FromDataModel(u)
	}
	return result
}
