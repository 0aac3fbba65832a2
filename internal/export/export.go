// Package export renders requests into spreadsheet workbooks.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/request-routing/internal/request"
)

// Row is a request as read for spreadsheets.
type Row struct {
	RequestID        string     `db:"request_id"`
	CreatedAt        time.Time  `db:"created_at"`
	Title            string     `db:"title"`
	Description      string     `db:"description"`
	SenderDepartment string     `db:"sender_department"`
	SenderName       string     `db:"sender_name"`
	TargetDepartment string     `db:"target_department"`
	Status           string     `db:"status"`
	Assignee         string     `db:"assignee"`
	LastUpdatedBy    string     `db:"last_updated_by"`
	StartedBy        string     `db:"started_by"`
	ClosedBy         string     `db:"closed_by"`
	Duration         string     `db:"duration"`
	FileName         string     `db:"file_name"`
	StartedAt        *time.Time `db:"started_at"`
	ClosedAt         *time.Time `db:"closed_at"`
}

// ChatRow is a chat message as read for spreadsheets.
type ChatRow struct {
	RequestID  string    `db:"request_id"`
	Sender     string    `db:"sender"`
	Department string    `db:"department"`
	Message    string    `db:"message"`
	FileName   string    `db:"file_name"`
	SentAt     time.Time `db:"sent_at"`
}

var requestHeaders = []interface{}{
	"رقم الطلب", "التاريخ", "العنوان", "الوصف", "القسم المرسل", "اسم المرسل",
	"القسم المستلم", "الحالة", "الموظف المعين", "آخر تحديث بواسطة",
	"بدأ التنفيذ بواسطة", "وقت البداية", "أغلق بواسطة", "وقت الإغلاق", "الوقت", "الملف",
}

var chatHeaders = []interface{}{"رقم الطلب", "المرسل", "القسم", "الرسالة", "الملف", "الوقت"}

func (r Row) values() []interface{} {
	return []interface{}{
		r.RequestID, r.CreatedAt.Format(request.TimeLayout), r.Title, r.Description,
		r.SenderDepartment, r.SenderName, r.TargetDepartment, statusLabel(r.Status),
		r.Assignee, r.LastUpdatedBy, r.StartedBy, formatTime(r.StartedAt),
		r.ClosedBy, formatTime(r.ClosedAt), r.Duration, r.FileName,
	}
}

func (c ChatRow) values() []interface{} {
	return []interface{}{c.RequestID, c.Sender, c.Department, c.Message, c.FileName, c.SentAt.Format(request.TimeLayout)}
}

func statusLabel(code string) string {
	if label := request.Status(code).Label(); label != "" {
		return label
	}
	return code
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(request.TimeLayout)
}

// Workbook wraps an excelize file whose sheets are written right to left.
type Workbook struct {
	file   *excelize.File
	sheets int
}

func NewWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile()}
}

func (w *Workbook) File() *excelize.File {
	return w.file
}

func (w *Workbook) Sheets() int {
	return w.sheets
}

// AddRequestSheet writes rows under the request header. The first sheet
// added takes over the workbook's default sheet.
func (w *Workbook) AddRequestSheet(name string, rows []Row) error {
	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		values[i] = r.values()
	}
	return w.addSheet(name, requestHeaders, values)
}

func (w *Workbook) AddChatSheet(name string, rows []ChatRow) error {
	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		values[i] = r.values()
	}
	return w.addSheet(name, chatHeaders, values)
}

func (w *Workbook) addSheet(name string, headers []interface{}, rows [][]interface{}) error {
	if w.sheets == 0 {
		if err := w.file.SetSheetName(w.file.GetSheetName(0), name); err != nil {
			return err
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return err
	}
	w.sheets++

	rtl := true
	if err := w.file.SetSheetView(name, -1, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return err
	}

	if err := w.file.SetSheetRow(name, "A1", &headers); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.file.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i+1, name, err)
		}
	}
	return nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}
