package i18n_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/request-routing/internal/i18n"
)

var _ = Describe("i18n", func() {
	BeforeEach(func() {
		Expect(i18n.Init("ar")).To(Succeed())
	})

	It("translates into the default locale", func() {
		Expect(i18n.T(context.Background(), "REQUEST_NOT_FOUND")).To(Equal("الطلب غير موجود"))
	})

	It("translates into the context locale", func() {
		ctx := i18n.WithLocale(context.Background(), "en")
		Expect(i18n.T(ctx, "REQUEST_NOT_FOUND")).To(Equal("Request not found"))
	})

	It("returns the id for unknown messages", func() {
		Expect(i18n.T(context.Background(), "NO_SUCH_MESSAGE")).To(Equal("NO_SUCH_MESSAGE"))
		Expect(i18n.TOr(context.Background(), "NO_SUCH_MESSAGE", "fallback")).To(Equal("fallback"))
	})

	DescribeTable("MatchLocale",
		func(header, expected string) {
			Expect(i18n.MatchLocale(header)).To(Equal(expected))
		},
		Entry("empty header", "", "ar"),
		Entry("english", "en-US,en;q=0.9", "en"),
		Entry("arabic region", "ar-SA", "ar"),
		Entry("unsupported", "ja", "ar"),
		Entry("garbage", ";;;", "ar"),
	)
})
