package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/request-routing/internal/chat"
	chatDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/chat"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) chat.RepositoryAPI {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Append(ctx context.Context, msg *chatDatamodel.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *ChatRepository) ListByRequest(ctx context.Context, requestID string) ([]*chatDatamodel.Message, error) {
	var rows []*chatDatamodel.Message
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
