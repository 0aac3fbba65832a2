// Package legacy imports the spreadsheets the service used to run on. Column
// headers are matched loosely once, here, and rows are written into the fixed
// schema.
package legacy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/request-routing/internal/auth"
	chatDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/chat"
	requestDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/request"
	userDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/user"
	"github.com/frahmantamala/request-routing/internal/department"
	"github.com/frahmantamala/request-routing/internal/request"
)

// Store writes imported rows. Upserts report whether a row was created.
type Store interface {
	UpsertUser(ctx context.Context, u *userDatamodel.User) (created bool, err error)
	UpsertRequest(ctx context.Context, r *requestDatamodel.Request) (created bool, err error)
	AppendChat(ctx context.Context, m *chatDatamodel.Message) (created bool, err error)
	RequestExists(ctx context.Context, requestID string) (bool, error)
	// AdvanceSequence raises the year's request sequence to at least n.
	AdvanceSequence(ctx context.Context, year, n int) error
}

// Counts summarizes one import.
type Counts struct {
	Created int
	Updated int
	Skipped int
}

func (c Counts) String() string {
	return fmt.Sprintf("created=%d updated=%d skipped=%d", c.Created, c.Updated, c.Skipped)
}

func (c *Counts) add(created bool) {
	if created {
		c.Created++
	} else {
		c.Updated++
	}
}

type Importer struct {
	store     Store
	passwords auth.PasswordScheme
	roles     *auth.RoleResolver
	location  *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

func NewImporter(store Store, passwords auth.PasswordScheme, location *time.Location, logger *slog.Logger) *Importer {
	if passwords == nil {
		passwords = auth.PlainPasswords{}
	}
	if location == nil {
		location = time.Local
	}
	return &Importer{
		store:     store,
		passwords: passwords,
		roles:     auth.NewRoleResolver(logger),
		location:  location,
		now:       time.Now,
		logger:    logger,
	}
}

// readSheet returns the header and data rows of the workbook's first sheet.
func readSheet(r io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	return rows[0], rows[1:], nil
}

// ImportUsers upserts users keyed by lower-cased email. Rows without an
// email are skipped.
func (i *Importer) ImportUsers(ctx context.Context, r io.Reader) (Counts, error) {
	var counts Counts
	header, rows, err := readSheet(r)
	if err != nil {
		return counts, err
	}
	cols := locate(header, userFields)
	if !cols.has("email", "password") {
		return counts, fmt.Errorf("users sheet has no email or password column (header %v)", header)
	}

	for n, row := range rows {
		email := strings.ToLower(cols.get(row, "email"))
		if email == "" {
			counts.Skipped++
			continue
		}
		rawRole := cols.get(row, "role")
		role, _ := i.roles.Resolve(rawRole)
		password, err := i.passwords.Hash(cols.get(row, "password"))
		if err != nil {
			return counts, fmt.Errorf("row %d: %w", n+2, err)
		}
		status := userDatamodel.StatusActive
		if strings.EqualFold(cols.get(row, "status"), userDatamodel.StatusArchived) {
			status = userDatamodel.StatusArchived
		}

		created, err := i.store.UpsertUser(ctx, &userDatamodel.User{
			Email:      email,
			Name:       cols.get(row, "name"),
			Role:       string(role),
			RawRole:    rawRole,
			Password:   password,
			Department: department.Normalize(cols.get(row, "department")),
			Status:     status,
		})
		if err != nil {
			return counts, fmt.Errorf("row %d: %w", n+2, err)
		}
		counts.add(created)
	}

	i.logger.Info("users imported", "counts", counts.String())
	return counts, nil
}

// ImportRequests upserts requests keyed by request ID and raises each
// year's sequence past the highest imported number.
func (i *Importer) ImportRequests(ctx context.Context, r io.Reader) (Counts, error) {
	var counts Counts
	header, rows, err := readSheet(r)
	if err != nil {
		return counts, err
	}
	cols := locate(header, requestFields)
	if !cols.has("request_id") {
		return counts, fmt.Errorf("requests sheet has no request id column (header %v)", header)
	}

	highest := make(map[int]int)
	for n, row := range rows {
		id := cols.get(row, "request_id")
		year, seq, ok := request.ParseRequestID(id)
		if !ok {
			i.logger.Warn("skipping request with malformed id", "row", n+2, "request_id", id)
			counts.Skipped++
			continue
		}

		status := request.StatusNew
		if raw := cols.get(row, "status"); raw != "" {
			parsed, err := request.ParseStatus(raw)
			if err != nil {
				i.logger.Warn("skipping request with unknown status", "row", n+2, "request_id", id, "status", raw)
				counts.Skipped++
				continue
			}
			status = parsed
		}

		createdAt := i.parseTime(cols.get(row, "created_at"))
		if createdAt == nil {
			now := i.now()
			createdAt = &now
		}

		created, err := i.store.UpsertRequest(ctx, &requestDatamodel.Request{
			RequestID:        id,
			Title:            cols.get(row, "title"),
			Description:      cols.get(row, "description"),
			SenderDepartment: cols.get(row, "sender_department"),
			SenderName:       cols.get(row, "sender_name"),
			TargetDepartment: cols.get(row, "target_department"),
			Status:           string(status),
			Assignee:         firstSet(placeholder(cols.get(row, "assignee")), placeholder(cols.get(row, "designated"))),
			LastUpdatedBy:    placeholder(cols.get(row, "last_updated_by")),
			StartedBy:        cols.get(row, "started_by"),
			ClosedBy:         cols.get(row, "closed_by"),
			Duration:         cols.get(row, "duration"),
			FileName:         cols.get(row, "file"),
			StartedAt:        i.parseTime(cols.get(row, "started_at")),
			PausedAt:         i.parseTime(cols.get(row, "paused_at")),
			ClosedAt:         i.parseTime(cols.get(row, "closed_at")),
			CreatedAt:        *createdAt,
			Version:          1,
		})
		if err != nil {
			return counts, fmt.Errorf("row %d: %w", n+2, err)
		}
		counts.add(created)
		if seq > highest[year] {
			highest[year] = seq
		}
	}

	for year, n := range highest {
		if err := i.store.AdvanceSequence(ctx, year, n); err != nil {
			return counts, fmt.Errorf("advance sequence %d: %w", year, err)
		}
	}

	i.logger.Info("requests imported", "counts", counts.String())
	return counts, nil
}

// ImportChats appends chat messages. A message already present with the
// same request, sender, text and time is not added again, and messages of
// unknown requests are skipped, so requests must be imported first.
func (i *Importer) ImportChats(ctx context.Context, r io.Reader) (Counts, error) {
	var counts Counts
	header, rows, err := readSheet(r)
	if err != nil {
		return counts, err
	}
	cols := locate(header, chatFields)
	if !cols.has("request_id", "message") {
		return counts, fmt.Errorf("chats sheet has no request id or message column (header %v)", header)
	}

	for n, row := range rows {
		id := cols.get(row, "request_id")
		body := cols.get(row, "message")
		if id == "" || body == "" {
			counts.Skipped++
			continue
		}
		exists, err := i.store.RequestExists(ctx, id)
		if err != nil {
			return counts, fmt.Errorf("row %d: %w", n+2, err)
		}
		if !exists {
			i.logger.Warn("skipping chat message of unknown request", "row", n+2, "request_id", id)
			counts.Skipped++
			continue
		}
		sentAt := i.parseTime(cols.get(row, "sent_at"))
		if sentAt == nil {
			now := i.now()
			sentAt = &now
		}

		created, err := i.store.AppendChat(ctx, &chatDatamodel.Message{
			RequestID:  id,
			Sender:     cols.get(row, "sender"),
			Department: cols.get(row, "department"),
			Body:       body,
			FileName:   cols.get(row, "file"),
			SentAt:     *sentAt,
		})
		if err != nil {
			return counts, fmt.Errorf("row %d: %w", n+2, err)
		}
		if created {
			counts.Created++
		} else {
			counts.Skipped++
		}
	}

	i.logger.Info("chats imported", "counts", counts.String())
	return counts, nil
}

var timeLayouts = []string{
	request.TimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01-02-06 15:04",
	"1/2/06 15:04",
	"1/2/2006 15:04:05",
}

func (i *Importer) parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, i.location); err == nil {
			return &t
		}
	}
	i.logger.Warn("unparseable timestamp ignored", "value", s)
	return nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// placeholder clears the "-" the old sheets used for empty cells.
func placeholder(s string) string {
	if s == "-" {
		return ""
	}
	return s
}
