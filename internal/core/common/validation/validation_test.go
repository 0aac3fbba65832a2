package validation_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/core/common/validation"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Title string `json:"title" validate:"required,max=10"`
	Date  string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

var _ = Describe("Struct", func() {
	It("passes valid input", func() {
		Expect(validation.Struct(sample{Email: "a@x.com", Title: "ok"})).To(BeNil())
	})

	It("reports missing fields with json names", func() {
		err := validation.Struct(sample{})
		Expect(err).NotTo(BeNil())
		Expect(err.Code).To(Equal(errors.ErrCodeMissingFields))
		Expect(err.StatusCode).To(Equal(400))

		details, ok := err.Details.(errors.ValidationErrors)
		Expect(ok).To(BeTrue())
		Expect(details.Errors).To(HaveLen(2))
		Expect(details.Errors[0].Field).To(Equal("email"))
	})

	It("reports other failures as validation failures", func() {
		err := validation.Struct(sample{Email: "nope", Title: "far too long a title", Date: "01/02/2025"})
		Expect(err).NotTo(BeNil())
		Expect(err.Code).To(Equal(errors.ErrCodeValidationFailed))
		Expect(err.GetDetailedMessage()).To(ContainSubstring("email must be a valid email"))
	})

	It("does not mutate the shared sentinel", func() {
		_ = validation.Struct(sample{})
		Expect(errors.ErrMissingFields.Details).To(BeNil())
	})
})

var _ = Describe("Var", func() {
	It("validates single values", func() {
		Expect(validation.Var("start_date", "2025-13-01", "datetime=2006-01-02")).NotTo(BeNil())
		Expect(validation.Var("start_date", "2025-01-31", "datetime=2006-01-02")).To(BeNil())
	})
})
