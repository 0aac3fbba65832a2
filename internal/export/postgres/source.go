package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/request-routing/internal/export"
)

const requestColumns = `request_id, created_at, title, description, sender_department, sender_name,
	target_department, status, assignee, last_updated_by, started_by, closed_by,
	duration, file_name, started_at, closed_at`

// Source reads spreadsheet rows with plain SQL.
type Source struct {
	db *sqlx.DB
}

func NewSource(db *sqlx.DB) *Source {
	return &Source{db: db}
}

func (s *Source) RequestsCreatedBetween(ctx context.Context, from, to time.Time) ([]export.Row, error) {
	var (
		where []string
		args  []interface{}
	)
	if !from.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, from)
	}
	if !to.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, to)
	}

	query := "SELECT " + requestColumns + " FROM requests"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id ASC"

	rows := []export.Row{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// ChatMessages returns every chat message in append order.
func (s *Source) ChatMessages(ctx context.Context) ([]export.ChatRow, error) {
	rows := []export.ChatRow{}
	err := s.db.SelectContext(ctx, &rows,
		"SELECT request_id, sender, department, message, file_name, sent_at FROM chat_messages ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	return rows, nil
}
