package postgres

import (
	"context"

	userDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// UserSource reads login candidates straight from the users table.
type UserSource struct {
	db *gorm.DB
}

func NewUserSource(db *gorm.DB) *UserSource {
	return &UserSource{db: db}
}

// ListUsers returns every user row in insertion order, archived rows included;
// the authenticator decides which ones may log in.
func (r *UserSource) ListUsers(ctx context.Context) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
