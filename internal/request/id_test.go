package request_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/request-routing/internal/request"
)

var _ = Describe("Request IDs", func() {
	DescribeTable("NextRequestID",
		func(last string, year int, want string) {
			Expect(request.NextRequestID(last, year)).To(Equal(want))
		},
		Entry("empty store", "", 2025, "REQ-2025-001"),
		Entry("increments", "REQ-2025-009", 2025, "REQ-2025-010"),
		Entry("grows past three digits", "REQ-2025-999", 2025, "REQ-2025-1000"),
		Entry("carries the number into a new year", "REQ-2024-041", 2025, "REQ-2025-042"),
		Entry("malformed", "abc", 2025, "REQ-2025-001"),
	)

	DescribeTable("ParseRequestID",
		func(id string, year, n int, ok bool) {
			y, got, parsed := request.ParseRequestID(id)
			Expect(parsed).To(Equal(ok))
			if ok {
				Expect(y).To(Equal(year))
				Expect(got).To(Equal(n))
			}
		},
		Entry(nil, "REQ-2025-007", 2025, 7, true),
		Entry(nil, "REQ-2025-1200", 2025, 1200, true),
		Entry(nil, "REQ-x-001", 0, 0, false),
		Entry(nil, "ORD-2025-001", 0, 0, false),
	)

	It("hands the same id to concurrent callers that share a snapshot", func() {
		const last = "REQ-2025-004"
		ids := make([]string, 2)

		var wg sync.WaitGroup
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ids[i] = request.NextRequestID(last, 2025)
			}(i)
		}
		wg.Wait()

		Expect(ids[0]).To(Equal("REQ-2025-005"))
		Expect(ids[1]).To(Equal(ids[0]), "legacy derivation is not serialized and duplicates ids")
	})
})
