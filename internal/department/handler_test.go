package department_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/request-routing/internal/department"
	"github.com/frahmantamala/request-routing/internal/transport"
	"github.com/frahmantamala/request-routing/pkg/logger"
)

var _ = Describe("Handler", func() {
	var handler *department.Handler

	BeforeEach(func() {
		handler = department.NewHandler(transport.NewBaseHandler(logger.Discard()), nil)
	})

	It("lists every canonical department with its aliases", func() {
		rec := httptest.NewRecorder()
		handler.GetDepartments(rec, httptest.NewRequest(http.MethodGet, "/api/departments", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))

		var body struct {
			Success     bool               `json:"success"`
			Departments []department.Entry `json:"departments"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Success).To(BeTrue())
		Expect(body.Departments).To(HaveLen(len(department.Default().Canonical())))

		var it department.Entry
		for _, e := range body.Departments {
			if e.Name == department.IT {
				it = e
			}
		}
		Expect(it.Aliases).To(ContainElement("ادارة التقنية والشبكات"))
	})

	DescribeTable("normalizes a single name",
		func(input, expected string, known bool) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/normalize_department",
				strings.NewReader(`{"name":"`+input+`"}`))
			handler.NormalizeDepartment(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["department"]).To(Equal(expected))
			Expect(body["known"]).To(Equal(known))
		},
		Entry("alias", "الادارة المالية", department.Finance, true),
		Entry("canonical", department.Marketing, department.Marketing, true),
		Entry("unknown", "  قسم  جديد ", "قسم جديد", false),
	)

	It("rejects a malformed body", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/normalize_department", strings.NewReader(`{`))
		handler.NormalizeDepartment(rec, req)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})
})
