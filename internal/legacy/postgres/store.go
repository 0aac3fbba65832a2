package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	chatDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/chat"
	requestDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/request"
	userDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/user"
	"github.com/frahmantamala/request-routing/internal/legacy"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) legacy.Store {
	return &Store{db: db}
}

func (s *Store) UpsertUser(ctx context.Context, u *userDatamodel.User) (bool, error) {
	var created bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing userDatamodel.User
		err := tx.Where("LOWER(email) = ?", u.Email).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(u).Error
		}
		if err != nil {
			return err
		}
		u.ID = existing.ID
		u.CreatedAt = existing.CreatedAt
		return tx.Save(u).Error
	})
	return created, err
}

// UpsertRequest replaces an existing request's fields and bumps its version
// so that in-flight updates holding the old version fail.
func (s *Store) UpsertRequest(ctx context.Context, r *requestDatamodel.Request) (bool, error) {
	var created bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing requestDatamodel.Request
		err := tx.Where("request_id = ?", r.RequestID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(r).Error
		}
		if err != nil {
			return err
		}
		r.ID = existing.ID
		r.Version = existing.Version + 1
		return tx.Save(r).Error
	})
	return created, err
}

func (s *Store) AppendChat(ctx context.Context, m *chatDatamodel.Message) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&chatDatamodel.Message{}).
		Where("request_id = ? AND sender = ? AND message = ? AND sent_at = ?", m.RequestID, m.Sender, m.Body, m.SentAt).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	return true, s.db.WithContext(ctx).Create(m).Error
}

func (s *Store) RequestExists(ctx context.Context, requestID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&requestDatamodel.Request{}).
		Where("request_id = ?", requestID).
		Count(&count).Error
	return count > 0, err
}

// AdvanceSequence leaves a missing sequence row alone; it is seeded from the
// stored request IDs on first use.
func (s *Store) AdvanceSequence(ctx context.Context, year, n int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq requestDatamodel.Sequence
		err := tx.Where("year = ?", year).First(&seq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if seq.LastValue >= n {
			return nil
		}
		return tx.Model(&requestDatamodel.Sequence{}).
			Where("year = ? AND version = ?", year, seq.Version).
			Updates(map[string]interface{}{"last_value": n, "version": seq.Version + 1}).Error
	})
}
