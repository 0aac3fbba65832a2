package textfold_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/request-routing/internal/core/textfold"
)

var _ = Describe("Clean", func() {
	It("removes directional marks and collapses spacing", func() {
		Expect(textfold.Clean("\u200f  ادارة  التقنية \u200e والشبكات ")).To(Equal("ادارة التقنية والشبكات"))
	})

	It("keeps letter variants untouched", func() {
		Expect(textfold.Clean("إدارة")).To(Equal("إدارة"))
	})

	It("is idempotent", func() {
		once := textfold.Clean("\ufeff قسم   الصيانة ")
		Expect(textfold.Clean(once)).To(Equal(once))
	})
})

var _ = Describe("Fold", func() {
	DescribeTable("unifies variants",
		func(a, b string) {
			Expect(textfold.Fold(a)).To(Equal(textfold.Fold(b)))
		},
		Entry("hamza on alef", "إدارة", "ادارة"),
		Entry("hamza above alef", "أحمد", "احمد"),
		Entry("alef maddah", "آخر", "اخر"),
		Entry("taa marbuta", "الصيانة", "الصيانه"),
		Entry("spacing", "مدير  قسم", "مديرقسم"),
		Entry("invisible marks", "\u200fموظف\u200e", "موظف"),
		Entry("harakat", "مُدِير", "مدير"),
		Entry("latin case", "A@X.com", "a@x.COM"),
	)

	It("does not unify unrelated letters", func() {
		Expect(textfold.Fold("قسم")).NotTo(Equal(textfold.Fold("قسمه")))
	})

	It("returns empty for whitespace only input", func() {
		Expect(textfold.Fold(" \t\u200f ")).To(BeEmpty())
	})
})

var _ = Describe("Contains and Overlaps", func() {
	It("matches folded substrings", func() {
		Expect(textfold.Contains("قسم المبيعات الهاتفية الرياض", "الهاتفيه")).To(BeTrue())
	})

	It("never matches an empty needle", func() {
		Expect(textfold.Contains("anything", "  ")).To(BeFalse())
		Expect(textfold.Overlaps("", "قسم")).To(BeFalse())
	})

	It("matches in either direction", func() {
		Expect(textfold.Overlaps("التقنية", "ادارة التقنية والشبكات")).To(BeTrue())
		Expect(textfold.Overlaps("ادارة التقنية والشبكات", "التقنيه")).To(BeTrue())
	})
})
