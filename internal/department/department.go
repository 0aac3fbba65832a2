// Package department resolves free-text department names to one canonical
// spelling per real department.
package department

import (
	"sort"
	"strings"

	"github.com/frahmantamala/request-routing/internal/core/textfold"
)

const (
	IT              = "إدارة تقنية المعلومات"
	Finance         = "الإدارة المالية"
	Maintenance     = "إدارة الصيانة وقطع الغيار"
	TelesalesMadina = "إدارة المبيعات الهاتفية - المدينة"
	TelesalesRiyadh = "إدارة المبيعات الهاتفية - الرياض"
	ShowroomMadina  = "قسم مبيعات الصالة المدينة المنورة"
	ShowroomJeddah  = "قسم مبيعات الصالة - جدة"
	Marketing       = "إدارة التسويق"
	Sales           = "إدارة المبيعات"
	GeneralAdmin    = "الإدارة العامة"
	Administration  = "الإدارة الإدارية"
	Operations      = "إدارة التشغيل"
	Leasing         = "إدارة مكتب التأجير"
	VehicleStock    = "إدارة المخزون - مستودع السيارات"
)

var aliases = map[string]string{
	"ادارة التقنية والشبكات": IT,
	"الادارة التقنية":        IT,
	"ادارة تقنية المعلومات":  IT,

	"الادارة المالية": Finance,
	"إدارة المالية":   Finance,

	"ادارة الصيانة وقطع الغيار": Maintenance,
	"قسم استقبال عملاء الصيانة": Maintenance,
	"قسم خدمة عملاء الصيانة":    Maintenance,

	"قسم المبيعات الهاتفية":        TelesalesMadina,
	"قسم المبيعات الهاتفية الرياض": TelesalesRiyadh,

	"مبيعات الصالة - المدينة": ShowroomMadina,

	"ادارة التسويق":  Marketing,
	"ادارة المبيعات": Sales,

	"الادارة العامة":     GeneralAdmin,
	"الادارة الادارية":   Administration,
	"ادارة التشغيل":      Operations,
	"مكتب التأجير":       Leasing,
	"ادارة مكتب التأجير": Leasing,
	"قسم مخزون السيارات": VehicleStock,
}

var canonicals = []string{
	IT, Finance, Maintenance, TelesalesMadina, TelesalesRiyadh, ShowroomMadina,
	ShowroomJeddah, Marketing, Sales, GeneralAdmin, Administration, Operations,
	Leasing, VehicleStock,
}

// rule maps a name to Canonical when it contains every keyword in All and, if
// Any is set, at least one keyword in Any. Keywords compare folded.
type rule struct {
	All       []string
	Any       []string
	Canonical string
}

func (r rule) matches(name string) bool {
	for _, k := range r.All {
		if !textfold.Contains(name, k) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return true
	}
	for _, k := range r.Any {
		if textfold.Contains(name, k) {
			return true
		}
	}
	return false
}

// Order matters: the Riyadh telesales rule must run before the generic one.
var rules = []rule{
	{Any: []string{"تقنية", "الشبكات", "المعلومات"}, Canonical: IT},
	{Any: []string{"الصيانة"}, Canonical: Maintenance},
	{All: []string{"المبيعات الهاتفية", "الرياض"}, Canonical: TelesalesRiyadh},
	{All: []string{"المبيعات الهاتفية"}, Canonical: TelesalesMadina},
}

// Table is an alias dictionary plus ordered fallback rules. The zero value is
// not usable; use Default.
type Table struct {
	verbatim map[string]string
	folded   map[string]string
	rules    []rule
}

// newTable builds a table from alias pairs. Every canonical value is also
// registered as an alias of itself so that Normalize is idempotent.
func newTable(aliasPairs map[string]string, canonicalNames []string, fallback []rule) *Table {
	t := &Table{
		verbatim: make(map[string]string, len(aliasPairs)+len(canonicalNames)),
		folded:   make(map[string]string, len(aliasPairs)+len(canonicalNames)),
		rules:    fallback,
	}
	add := func(alias, canonical string) {
		alias = textfold.Clean(alias)
		t.verbatim[alias] = canonical
		t.folded[textfold.Fold(alias)] = canonical
	}
	for alias, canonical := range aliasPairs {
		add(alias, canonical)
	}
	for _, c := range canonicalNames {
		add(c, c)
	}
	for _, c := range aliasPairs {
		add(c, c)
	}
	return t
}

var defaultTable = newTable(aliases, canonicals, rules)

// Default returns the built-in department table.
func Default() *Table {
	return defaultTable
}

// Normalize returns the canonical department for name using the built-in table.
func Normalize(name string) string {
	return defaultTable.Normalize(name)
}

// Same reports whether a and b resolve to the same canonical department.
func Same(a, b string) bool {
	return defaultTable.Same(a, b)
}

// Normalize cleans name and resolves it through the verbatim dictionary, the
// folded dictionary and the fallback rules, in that order. Names that match
// nothing are returned cleaned and act as their own canonical department.
func (t *Table) Normalize(name string) string {
	cleaned := textfold.Clean(name)
	if cleaned == "" {
		return ""
	}
	if c, ok := t.verbatim[cleaned]; ok {
		return c
	}
	if c, ok := t.folded[textfold.Fold(cleaned)]; ok {
		return c
	}
	for _, r := range t.rules {
		if r.matches(cleaned) {
			return r.Canonical
		}
	}
	return cleaned
}

func (t *Table) Same(a, b string) bool {
	na := t.Normalize(a)
	return na != "" && na == t.Normalize(b)
}

// IsKnown reports whether name resolves through the dictionary or a rule
// rather than falling through as its own department.
func (t *Table) IsKnown(name string) bool {
	cleaned := textfold.Clean(name)
	n := t.Normalize(cleaned)
	if n != cleaned {
		return true
	}
	_, ok := t.verbatim[cleaned]
	return ok
}

// Canonical lists every canonical department in the table, sorted.
func (t *Table) Canonical() []string {
	seen := make(map[string]struct{})
	for _, c := range t.verbatim {
		seen[c] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Aliases returns the alias spellings that resolve to canonical, sorted.
func (t *Table) Aliases(canonical string) []string {
	var out []string
	for alias, c := range t.verbatim {
		if c == canonical && alias != canonical {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

// FileToken renders a canonical name as a file name fragment.
func FileToken(name string) string {
	return strings.ReplaceAll(Normalize(name), " ", "_")
}
