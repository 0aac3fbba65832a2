package request_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/auth"
	"github.com/frahmantamala/request-routing/internal/department"
	"github.com/frahmantamala/request-routing/internal/request"
)

func ids(requests []*request.Request) []string {
	out := make([]string, len(requests))
	for i, r := range requests {
		out[i] = r.RequestID
	}
	return out
}

var _ = Describe("VisibilityFilter", func() {
	var (
		filter   *request.VisibilityFilter
		requests []*request.Request
	)

	BeforeEach(func() {
		filter = request.NewVisibilityFilter(internal.PolicyFailClosed, nil)
		requests = []*request.Request{
			{RequestID: "REQ-2025-001", SenderDepartment: "الادارة المالية", TargetDepartment: "ادارة التقنية والشبكات", Status: request.StatusNew},
			{RequestID: "REQ-2025-002", SenderDepartment: "تقنية المعلومات", TargetDepartment: "ادارة الصيانة وقطع الغيار", Status: request.StatusInProgress},
			{RequestID: "REQ-2025-003", SenderDepartment: "ادارة التسويق", TargetDepartment: "إدارة تقنية المعلومات", Status: request.StatusClosed},
			{RequestID: "REQ-2025-004", SenderDepartment: "ادارة التسويق", TargetDepartment: "قسم الأرشيف المركزي", Status: request.StatusSuspended},
			{RequestID: "REQ-2025-005", SenderDepartment: "الادارة المالية", TargetDepartment: "الشبكات", Status: request.StatusRejected},
		}
	})

	It("shows employees what their department received", func() {
		visible := filter.Visible(requests, auth.RoleEmployee, "ادارة التقنية")
		Expect(ids(visible)).To(Equal([]string{"REQ-2025-001"}))
	})

	It("shows department managers what their department sent or received", func() {
		visible := filter.Visible(requests, auth.RoleDepartmentManager, "إدارة تقنية المعلومات")
		Expect(ids(visible)).To(Equal([]string{"REQ-2025-001", "REQ-2025-002"}))
	})

	It("falls back to loose matching for unaliased department names", func() {
		visible := filter.Visible(requests, auth.RoleDepartmentManager, "الأرشيف")
		Expect(ids(visible)).To(Equal([]string{"REQ-2025-004"}))
	})

	It("shows the general manager everything including terminal requests", func() {
		visible := filter.Visible(requests, auth.RoleGeneralManager, "")
		Expect(ids(visible)).To(Equal(ids(requests)))
	})

	It("shows a caller without a department nothing", func() {
		blank := append(requests,
			&request.Request{RequestID: "REQ-2025-006", SenderDepartment: "", TargetDepartment: "", Status: request.StatusNew},
			&request.Request{RequestID: "REQ-2025-007", SenderDepartment: " \u200f", TargetDepartment: "ادارة التسويق", Status: request.StatusNew},
		)
		Expect(filter.Visible(blank, auth.RoleEmployee, "")).To(BeEmpty())
		Expect(filter.Visible(blank, auth.RoleDepartmentManager, "  ")).To(BeEmpty())
	})

	It("shows hr nothing under fail_closed", func() {
		Expect(filter.Visible(requests, auth.RoleHR, "ادارة التقنية")).To(BeEmpty())
		Expect(filter.Visible(requests, auth.Role("boss"), "ادارة التقنية")).To(BeEmpty())
	})

	It("gives unrecognized roles the employee view under fail_safe", func() {
		safe := request.NewVisibilityFilter(internal.PolicyFailSafe, nil)
		visible := safe.Visible(requests, auth.Role(""), "ادارة التقنية")
		Expect(ids(visible)).To(Equal([]string{"REQ-2025-001"}))
	})

	Describe("properties over generated request sets", func() {
		names := []string{
			"ادارة التقنية", "الشبكات", "إدارة تقنية المعلومات", "الادارة المالية",
			"إدارة المالية", "قسم خدمة عملاء الصيانة", "قسم المبيعات الهاتفية",
			"قسم المبيعات الهاتفية الرياض", "ادارة التسويق", "مكتب التأجير",
			"قسم الأرشيف", "  الادارة   العامة ", "",
		}
		statuses := request.Statuses()

		generate := func(rng *rand.Rand, n int) []*request.Request {
			out := make([]*request.Request, n)
			for i := range out {
				out[i] = &request.Request{
					RequestID:        request.FormatRequestID(2025, i+1),
					SenderDepartment: names[rng.Intn(len(names))],
					TargetDepartment: names[rng.Intn(len(names))],
					Status:           statuses[rng.Intn(len(statuses))],
				}
			}
			return out
		}

		It("holds for every viewer", func() {
			rng := rand.New(rand.NewSource(7))
			roles := append(auth.Roles(), auth.Role("unknown"))

			for round := 0; round < 50; round++ {
				set := generate(rng, 30)
				gm := filter.Visible(set, auth.RoleGeneralManager, "")

				for _, dept := range names {
					employee := filter.Visible(set, auth.RoleEmployee, dept)
					inEmployee := make(map[string]bool, len(employee))
					for _, r := range employee {
						inEmployee[r.RequestID] = true
					}
					for _, r := range set {
						canonical := department.Normalize(dept)
						want := !r.Status.Terminal() && canonical != "" && department.Normalize(r.TargetDepartment) == canonical
						Expect(inEmployee[r.RequestID]).To(Equal(want), "request %s for %q", r.RequestID, dept)
					}

					for _, role := range roles {
						view := filter.Visible(set, role, dept)
						Expect(len(gm)).To(BeNumerically(">=", len(view)))
						if role == auth.RoleGeneralManager {
							continue
						}
						for _, r := range view {
							Expect(r.Status.Terminal()).To(BeFalse())
						}
					}
				}

				terminal := 0
				for _, r := range gm {
					if r.Status.Terminal() {
						terminal++
					}
				}
				expected := 0
				for _, r := range set {
					if r.Status.Terminal() {
						expected++
					}
				}
				Expect(terminal).To(Equal(expected))
			}
		})
	})
})
