package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/department"
	"github.com/frahmantamala/request-routing/internal/metrics"
	"github.com/frahmantamala/request-routing/internal/request"
)

// Source reads requests for spreadsheets.
type Source interface {
	// RequestsCreatedBetween returns requests created in [from, to) in
	// insertion order. A zero bound is open.
	RequestsCreatedBetween(ctx context.Context, from, to time.Time) ([]Row, error)
}

// FileWriter stores finished workbooks.
type FileWriter interface {
	WriteExport(ctx context.Context, name string, write func(io.Writer) error) (string, error)
}

type Service struct {
	source   Source
	files    FileWriter
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(source Source, files FileWriter, location *time.Location, logger *slog.Logger) *Service {
	if location == nil {
		location = time.Local
	}
	return &Service{
		source:   source,
		files:    files,
		location: location,
		now:      time.Now,
		logger:   logger,
	}
}

// Export writes the department's received requests within the date range
// to a workbook with one sheet per status and returns the file name.
func (s *Service) Export(ctx context.Context, dto ExportRequestsDTO) (string, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return "", err
	}
	from, to, err := dto.Range(s.location)
	if err != nil {
		return "", err
	}

	rows, err := s.source.RequestsCreatedBetween(ctx, from, to)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("error").Inc()
		s.logger.Error("failed to read requests for export", "error", err)
		return "", internal.ErrStoreUnavailable.Wrap(err)
	}

	canonical := department.Normalize(dto.Department)
	byStatus := make(map[request.Status][]Row)
	matched := 0
	for _, row := range rows {
		if department.Normalize(row.TargetDepartment) != canonical {
			continue
		}
		status := request.Status(row.Status)
		byStatus[status] = append(byStatus[status], row)
		matched++
	}
	if matched == 0 {
		metrics.ExportsTotal.WithLabelValues("empty").Inc()
		return "", internal.ErrNothingToExport
	}

	wb := NewWorkbook()
	defer wb.Close()
	for _, status := range request.Statuses() {
		if len(byStatus[status]) == 0 {
			continue
		}
		if err := wb.AddRequestSheet(status.Label(), byStatus[status]); err != nil {
			return "", internal.NewInternalError("failed to build workbook", err)
		}
	}

	name := fmt.Sprintf("requests_%s_%s.xlsx", department.FileToken(canonical), s.now().Format("20060102_150405"))
	stored, err := s.files.WriteExport(ctx, name, func(w io.Writer) error {
		_, err := wb.File().WriteTo(w)
		return err
	})
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("error").Inc()
		s.logger.Error("failed to write export", "file", name, "error", err)
		return "", internal.NewInternalError("failed to write export", err)
	}

	metrics.ExportsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("requests exported",
		"department", canonical, "rows", matched, "sheets", wb.Sheets(), "file", stored)
	return stored, nil
}
