package request

import (
	"time"

	requestDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/request"
	"github.com/frahmantamala/request-routing/internal/department"
)

// TimeLayout is how timestamps appear in flattened records and exports.
const TimeLayout = "2006-01-02 15:04:05"

type Request struct {
	ID               int64
	RequestID        string
	Title            string
	Description      string
	SenderDepartment string
	SenderName       string
	TargetDepartment string
	Status           Status
	Assignee         string
	LastUpdatedBy    string
	StartedBy        string
	ClosedBy         string
	Duration         string
	FileName         string
	StartedAt        *time.Time
	PausedAt         *time.Time
	ClosedAt         *time.Time
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (r *Request) SenderCanonical() string {
	return department.Normalize(r.SenderDepartment)
}

func (r *Request) TargetCanonical() string {
	return department.Normalize(r.TargetDepartment)
}

// Record is the flattened wire form of a request. Missing values are empty
// strings, never null.
type Record struct {
	RequestID        string `json:"request_id"`
	CreatedAt        string `json:"created_at"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	SenderDepartment string `json:"sender_department"`
	SenderName       string `json:"sender_name"`
	TargetDepartment string `json:"target_department"`
	Status           string `json:"status"`
	StatusLabel      string `json:"status_label"`
	Assignee         string `json:"assignee"`
	LastUpdatedBy    string `json:"last_updated_by"`
	StartedBy        string `json:"started_by"`
	ClosedBy         string `json:"closed_by"`
	StartedAt        string `json:"started_at"`
	PausedAt         string `json:"paused_at"`
	ClosedAt         string `json:"closed_at"`
	Duration         string `json:"duration"`
	File             string `json:"file"`
}

func (r *Request) ToRecord() Record {
	return Record{
		RequestID:        r.RequestID,
		CreatedAt:        formatTime(&r.CreatedAt),
		Title:            r.Title,
		Description:      r.Description,
		SenderDepartment: r.SenderDepartment,
		SenderName:       r.SenderName,
		TargetDepartment: r.TargetDepartment,
		Status:           string(r.Status),
		StatusLabel:      r.Status.Label(),
		Assignee:         r.Assignee,
		LastUpdatedBy:    r.LastUpdatedBy,
		StartedBy:        r.StartedBy,
		ClosedBy:         r.ClosedBy,
		StartedAt:        formatTime(r.StartedAt),
		PausedAt:         formatTime(r.PausedAt),
		ClosedAt:         formatTime(r.ClosedAt),
		Duration:         r.Duration,
		File:             r.FileName,
	}
}

func ToRecords(requests []*Request) []Record {
	records := make([]Record, len(requests))
	for i, r := range requests {
		records[i] = r.ToRecord()
	}
	return records
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

func ToDataModel(r *Request) *requestDatamodel.Request {
	return &requestDatamodel.Request{
		ID:               r.ID,
		RequestID:        r.RequestID,
		Title:            r.Title,
		Description:      r.Description,
		SenderDepartment: r.SenderDepartment,
		SenderName:       r.SenderName,
		TargetDepartment: r.TargetDepartment,
		Status:           string(r.Status),
		Assignee:         r.Assignee,
		LastUpdatedBy:    r.LastUpdatedBy,
		StartedBy:        r.StartedBy,
		ClosedBy:         r.ClosedBy,
		Duration:         r.Duration,
		FileName:         r.FileName,
		StartedAt:        r.StartedAt,
		PausedAt:         r.PausedAt,
		ClosedAt:         r.ClosedAt,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func FromDataModel(r *requestDatamodel.Request) *Request {
	return &Request{
		ID:               r.ID,
		RequestID:        r.RequestID,
		Title:            r.Title,
		Description:      r.Description,
		SenderDepartment: r.SenderDepartment,
		SenderName:       r.SenderName,
		TargetDepartment: r.TargetDepartment,
		Status:           Status(r.Status),
		Assignee:         r.Assignee,
		LastUpdatedBy:    r.LastUpdatedBy,
		StartedBy:        r.StartedBy,
		ClosedBy:         r.ClosedBy,
		Duration:         r.Duration,
		FileName:         r.FileName,
		StartedAt:        r.StartedAt,
		PausedAt:         r.PausedAt,
		ClosedAt:         r.ClosedAt,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*requestDatamodel.Request) []*Request {
	result := make([]*Request, len(rows))
	for i, r := range rows {
		result[i] = FromDataModel(r)
	}
	return result
}
