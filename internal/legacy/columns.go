package legacy

import (
	"github.com/frahmantamala/request-routing/internal/core/textfold"
)

// field names one logical column and the header spellings that identify it.
type field struct {
	name     string
	keywords []string
}

// columnIndex maps field names to header positions.
type columnIndex map[string]int

// locate assigns each field the first header that folds to one of its
// keywords, then falls back to the first header containing one. A header
// is assigned to at most one field, in field order.
func locate(header []string, fields []field) columnIndex {
	idx := make(columnIndex, len(fields))
	used := make(map[int]bool, len(header))

	for _, f := range fields {
		if i, ok := find(header, used, f.keywords, textfold.Equal); ok {
			idx[f.name] = i
			used[i] = true
		}
	}
	for _, f := range fields {
		if _, ok := idx[f.name]; ok {
			continue
		}
		if i, ok := find(header, used, f.keywords, textfold.Contains); ok {
			idx[f.name] = i
			used[i] = true
		}
	}
	return idx
}

func find(header []string, used map[int]bool, keywords []string, match func(a, b string) bool) (int, bool) {
	for _, kw := range keywords {
		for i, h := range header {
			if used[i] {
				continue
			}
			if match(h, kw) {
				return i, true
			}
		}
	}
	return 0, false
}

// get returns the cleaned cell for name, or "" when the column or the cell
// is missing.
func (c columnIndex) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return textfold.Clean(row[i])
}

func (c columnIndex) has(names ...string) bool {
	for _, n := range names {
		if _, ok := c[n]; !ok {
			return false
		}
	}
	return true
}

var userFields = []field{
	{"email", []string{"البريد الإلكتروني", "بريد", "ايميل", "email"}},
	{"password", []string{"كلمة المرور", "مرور", "password"}},
	{"role", []string{"الصلاحية", "صلاح", "الوظيفة", "وظيف", "role"}},
	{"department", []string{"القسم", "قسم", "ادارة", "department"}},
	{"name", []string{"الاسم", "اسم", "name"}},
	{"status", []string{"حالة الحساب", "status"}},
}

var requestFields = []field{
	{"request_id", []string{"رقم الطلب"}},
	{"created_at", []string{"التاريخ"}},
	{"title", []string{"العنوان"}},
	{"description", []string{"الوصف"}},
	{"sender_department", []string{"القسم المرسل"}},
	{"sender_name", []string{"اسم المرسل"}},
	{"target_department", []string{"القسم المستلم"}},
	{"status", []string{"الحالة"}},
	{"assignee", []string{"اسم المستلم"}},
	// Older sheets kept a separate column that was almost always "-".
	{"designated", []string{"الموظف المعين"}},
	{"last_updated_by", []string{"آخر تحديث بواسطة", "اخر تحديث"}},
	{"started_by", []string{"بدأ التنفيذ بواسطة", "بدا التنفيذ"}},
	{"closed_by", []string{"أغلق بواسطة", "اغلق"}},
	{"started_at", []string{"وقت البداية"}},
	{"paused_at", []string{"وقت التوقف المؤقت", "وقت التوقف", "وقت الإيقاف", "وقت التعليق"}},
	{"closed_at", []string{"وقت الإغلاق"}},
	{"duration", []string{"الوقت", "المدة"}},
	{"file", []string{"الملف"}},
}

var chatFields = []field{
	{"request_id", []string{"رقم الطلب"}},
	{"sender", []string{"المرسل"}},
	{"department", []string{"القسم"}},
	{"message", []string{"الرسالة"}},
	{"sent_at", []string{"الوقت"}},
	{"file", []string{"الملف"}},
}
