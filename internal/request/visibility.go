package request

import (
	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/auth"
	"github.com/frahmantamala/request-routing/internal/core/textfold"
	"github.com/frahmantamala/request-routing/internal/department"
)

// VisibilityFilter decides which requests a caller may see.
type VisibilityFilter struct {
	policy      internal.Policy
	departments *department.Table
}

// NewVisibilityFilter creates a filter. policy applies to roles without a
// view of their own (hr and anything unrecognized): fail_closed shows
// nothing, fail_safe shows the employee view.
func NewVisibilityFilter(policy internal.Policy, departments *department.Table) *VisibilityFilter {
	if !policy.Valid() {
		policy = internal.PolicyFailClosed
	}
	if departments == nil {
		departments = department.Default()
	}
	return &VisibilityFilter{policy: policy, departments: departments}
}

// Visible returns the requests visible to (role, dept) in input order.
func (f *VisibilityFilter) Visible(requests []*Request, role auth.Role, dept string) []*Request {
	var match func(*Request) bool

	switch role {
	case auth.RoleGeneralManager:
		out := make([]*Request, len(requests))
		copy(out, requests)
		return out
	case auth.RoleEmployee:
		match = f.employeeMatch(dept)
	case auth.RoleDepartmentManager:
		match = f.managerMatch(dept)
	default:
		if f.policy != internal.PolicyFailSafe {
			return []*Request{}
		}
		match = f.employeeMatch(dept)
	}

	out := make([]*Request, 0, len(requests))
	for _, r := range requests {
		if r.Status.Terminal() {
			continue
		}
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

// A blank caller department matches nothing, not the requests with blank
// departments.
func (f *VisibilityFilter) employeeMatch(dept string) func(*Request) bool {
	canonical := f.departments.Normalize(dept)
	return func(r *Request) bool {
		return canonical != "" && f.departments.Normalize(r.TargetDepartment) == canonical
	}
}

func (f *VisibilityFilter) managerMatch(dept string) func(*Request) bool {
	canonical := f.departments.Normalize(dept)
	return func(r *Request) bool {
		if canonical == "" {
			return false
		}
		if f.departments.Normalize(r.SenderDepartment) == canonical ||
			f.departments.Normalize(r.TargetDepartment) == canonical {
			return true
		}
		return textfold.Overlaps(r.SenderDepartment, dept) || textfold.Overlaps(r.TargetDepartment, dept)
	}
}
