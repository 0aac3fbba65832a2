package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/request-routing/internal"
	requestDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/request"
	"github.com/frahmantamala/request-routing/internal/request"
)

const maxSequenceAttempts = 5

var errSequenceContention = errors.New("request sequence changed concurrently")

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) request.RepositoryAPI {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) List(ctx context.Context) ([]*requestDatamodel.Request, error) {
	var rows []*requestDatamodel.Request
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}

// GetByRequestID returns nil, nil when no request has the id.
func (r *RequestRepository) GetByRequestID(ctx context.Context, requestID string) (*requestDatamodel.Request, error) {
	var row requestDatamodel.Request
	err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ReserveID increments the year's sequence with a compare-and-swap on its
// version. A missing sequence row is seeded from the highest request number
// already stored for that year.
func (r *RequestRepository) ReserveID(ctx context.Context, year int) (string, error) {
	for attempt := 0; attempt < maxSequenceAttempts; attempt++ {
		var next int
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			n, err := r.advance(tx, year)
			next = n
			return err
		})
		if err == nil {
			return request.FormatRequestID(year, next), nil
		}
		if !errors.Is(err, errSequenceContention) && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", err
		}
	}
	return "", internal.ErrConcurrentUpdate.Wrap(errSequenceContention)
}

func (r *RequestRepository) advance(tx *gorm.DB, year int) (int, error) {
	var seq requestDatamodel.Sequence
	err := tx.Where("year = ?", year).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		last, err := r.highestNumber(tx, year)
		if err != nil {
			return 0, err
		}
		seq = requestDatamodel.Sequence{Year: year, LastValue: last + 1, Version: 1}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, err
		}
		return seq.LastValue, nil
	}
	if err != nil {
		return 0, err
	}

	res := tx.Model(&requestDatamodel.Sequence{}).
		Where("year = ? AND version = ?", year, seq.Version).
		Updates(map[string]interface{}{
			"last_value": seq.LastValue + 1,
			"version":    seq.Version + 1,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected != 1 {
		return 0, errSequenceContention
	}
	return seq.LastValue + 1, nil
}

func (r *RequestRepository) highestNumber(tx *gorm.DB, year int) (int, error) {
	var ids []string
	err := tx.Model(&requestDatamodel.Request{}).
		Where("request_id LIKE ?", fmt.Sprintf("REQ-%d-%%", year)).
		Pluck("request_id", &ids).Error
	if err != nil {
		return 0, err
	}

	highest := 0
	for _, id := range ids {
		if y, n, ok := request.ParseRequestID(id); ok && y == year && n > highest {
			highest = n
		}
	}
	return highest, nil
}

func (r *RequestRepository) Create(ctx context.Context, row *requestDatamodel.Request) error {
	if row.Version == 0 {
		row.Version = 1
	}
	err := r.db.WithContext(ctx).Create(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrDuplicateRequestID.Wrap(err)
	}
	return err
}

// Update writes every mutable column when the stored version still equals
// row.Version, then advances row.Version.
func (r *RequestRepository) Update(ctx context.Context, row *requestDatamodel.Request) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&requestDatamodel.Request{}).
		Where("id = ? AND version = ?", row.ID, row.Version).
		Updates(map[string]interface{}{
			"status":          row.Status,
			"assignee":        row.Assignee,
			"last_updated_by": row.LastUpdatedBy,
			"started_by":      row.StartedBy,
			"closed_by":       row.ClosedBy,
			"duration":        row.Duration,
			"file_name":       row.FileName,
			"started_at":      row.StartedAt,
			"paused_at":       row.PausedAt,
			"closed_at":       row.ClosedAt,
			"version":         row.Version + 1,
			"updated_at":      now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrConcurrentUpdate
	}
	row.Version++
	row.UpdatedAt = now
	return nil
}
