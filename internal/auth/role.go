package auth

import (
	"log/slog"
	"strings"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/core/textfold"
	"github.com/frahmantamala/request-routing/internal/metrics"
)

// Role is one of the four canonical roles.
type Role string

const (
	RoleEmployee          Role = "employee"
	RoleDepartmentManager Role = "department_manager"
	RoleGeneralManager    Role = "general_manager"
	RoleHR                Role = "hr"
)

var roleLabels = map[Role]string{
	RoleEmployee:          "موظف",
	RoleDepartmentManager: "مدير قسم",
	RoleGeneralManager:    "مدير عام",
	RoleHR:                "موارد بشرية",
}

// Roles lists the canonical roles.
func Roles() []Role {
	return []Role{RoleEmployee, RoleDepartmentManager, RoleGeneralManager, RoleHR}
}

func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label returns the Arabic display label.
func (r Role) Label() string {
	return roleLabels[r]
}

func (r Role) String() string {
	return string(r)
}

// keywordGroup matches a folded role string when it equals one of exact or
// contains one of contains.
type keywordGroup struct {
	role     Role
	exact    []string
	contains []string
}

// Checked in order: HR first so that "شؤون الموظفين" is not taken for an
// employee, department manager before general manager.
var roleGroups = []keywordGroup{
	{
		role:     RoleHR,
		exact:    []string{"hr", "h.r"},
		contains: []string{"موارد بشرية", "الموارد البشرية", "شؤون الموظفين", "شؤون موظفين", "human resources", "humanresource"},
	},
	{
		role:     RoleDepartmentManager,
		exact:    []string{"مدير"},
		contains: []string{"مدير قسم", "مدير القسم", "مدير أقسام", "مدير الأقسام", "رئيس قسم", "رئيس القسم", "department manager", "dept manager", "head of department"},
	},
	{
		role:     RoleGeneralManager,
		exact:    []string{"gm", "ceo"},
		contains: []string{"مدير عام", "المدير العام", "الإدارة العامة", "general manager"},
	},
	{
		role:     RoleEmployee,
		contains: []string{"موظف", "عامل", "employee", "staff"},
	},
}

type foldedGroup struct {
	role     Role
	exact    map[string]struct{}
	contains []string
}

var foldedGroups = func() []foldedGroup {
	out := make([]foldedGroup, 0, len(roleGroups))
	for _, g := range roleGroups {
		fg := foldedGroup{role: g.role, exact: make(map[string]struct{})}
		for _, e := range g.exact {
			fg.exact[textfold.Fold(e)] = struct{}{}
		}
		for _, c := range g.contains {
			fg.contains = append(fg.contains, textfold.Fold(c))
		}
		out = append(out, fg)
	}
	return out
}()

// ResolveRole maps a free-text role to a canonical role. It never fails:
// input matching no keyword group resolves to RoleEmployee with matched
// reported as false.
func ResolveRole(raw string) (role Role, matched bool) {
	key := textfold.Fold(raw)
	if key == "" {
		return RoleEmployee, false
	}

	for _, r := range Roles() {
		if key == textfold.Fold(string(r)) || key == textfold.Fold(r.Label()) {
			return r, true
		}
	}

	for _, g := range foldedGroups {
		if _, ok := g.exact[key]; ok {
			return g.role, true
		}
		for _, c := range g.contains {
			if strings.Contains(key, c) {
				return g.role, true
			}
		}
	}
	return RoleEmployee, false
}

// RoleResolver wraps ResolveRole and reports fallbacks for operator review.
type RoleResolver struct {
	logger *slog.Logger
}

func NewRoleResolver(logger *slog.Logger) *RoleResolver {
	return &RoleResolver{logger: logger}
}

func (rr *RoleResolver) Resolve(raw string) (Role, bool) {
	role, matched := ResolveRole(raw)
	if !matched {
		metrics.RoleFallbackTotal.Inc()
		rr.logger.Warn("role string matched no keyword group, defaulting to employee",
			"raw_role", raw)
	}
	return role, matched
}

// ParseRole accepts only canonical codes and their exact Arabic labels.
func ParseRole(s string) (Role, error) {
	cleaned := textfold.Clean(s)
	for _, r := range Roles() {
		if cleaned == string(r) || cleaned == r.Label() {
			return r, nil
		}
	}
	return "", internal.ErrInvalidRole
}
