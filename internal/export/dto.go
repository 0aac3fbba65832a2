package export

import (
	"strings"
	"time"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/core/common/validation"
)

const dateLayout = "2006-01-02"

type ExportRequestsDTO struct {
	Department string `json:"department" validate:"required"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func (d *ExportRequestsDTO) Normalize() {
	d.Department = strings.TrimSpace(d.Department)
	d.StartDate = strings.TrimSpace(d.StartDate)
	d.EndDate = strings.TrimSpace(d.EndDate)
}

func (d ExportRequestsDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

// Range converts the dates into [from, to). The end date is inclusive, so to
// is the start of the following day. Missing bounds are zero.
func (d ExportRequestsDTO) Range(loc *time.Location) (from, to time.Time, err error) {
	if d.StartDate != "" {
		from, err = time.ParseInLocation(dateLayout, d.StartDate, loc)
		if err != nil {
			return time.Time{}, time.Time{}, internal.ErrInvalidDate.Wrap(err)
		}
	}
	if d.EndDate != "" {
		end, err := time.ParseInLocation(dateLayout, d.EndDate, loc)
		if err != nil {
			return time.Time{}, time.Time{}, internal.ErrInvalidDate.Wrap(err)
		}
		to = end.AddDate(0, 0, 1)
	}
	return from, to, nil
}
