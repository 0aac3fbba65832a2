package mirror_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/request-routing/internal/core/events"
	"github.com/frahmantamala/request-routing/internal/export"
	"github.com/frahmantamala/request-routing/internal/mirror"
)

type countingSource struct {
	reads atomic.Int32
	err   error
}

func (s *countingSource) RequestsCreatedBetween(context.Context, time.Time, time.Time) ([]export.Row, error) {
	s.reads.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []export.Row{{
		RequestID: "REQ-2025-001",
		CreatedAt: time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC),
		Title:     "طابعة",
		Status:    "new",
	}}, nil
}

func (s *countingSource) ChatMessages(context.Context) ([]export.ChatRow, error) {
	return []export.ChatRow{{RequestID: "REQ-2025-001", Sender: "سارة", Message: "تم", SentAt: time.Now()}}, nil
}

var _ = Describe("Mirror", func() {
	var (
		fs     afero.Fs
		source *countingSource
		bus    *events.EventBus
		m      *mirror.Mirror
		logger *slog.Logger
	)

	BeforeEach(func() {
		fs = afero.NewMemMapFs()
		source = &countingSource{}
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		bus = events.NewEventBus(logger)
		m = mirror.New(fs, "/data/mirror.xlsx", 20*time.Millisecond, source, logger)
		m.Register(bus)
	})

	It("writes requests and chats sheets after a mutation", func() {
		Expect(bus.Publish(context.Background(), events.NewRequestCreatedEvent("REQ-2025-001", "a", "b"))).To(Succeed())
		bus.Wait()

		Eventually(func() bool {
			ok, _ := afero.Exists(fs, "/data/mirror.xlsx")
			return ok
		}).Should(BeTrue())

		data, err := afero.ReadFile(fs, "/data/mirror.xlsx")
		Expect(err).NotTo(HaveOccurred())
		f, err := excelize.OpenReader(bytes.NewReader(data))
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		Expect(f.GetSheetList()).To(Equal([]string{mirror.RequestsSheet, mirror.ChatsSheet}))
		rows, err := f.GetRows(mirror.RequestsSheet)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[1][0]).To(Equal("REQ-2025-001"))

		exists, _ := afero.Exists(fs, "/data/mirror.xlsx.tmp")
		Expect(exists).To(BeFalse())
	})

	It("coalesces a burst of events into one rewrite", func() {
		for i := 0; i < 10; i++ {
			Expect(bus.Publish(context.Background(), events.NewChatMessagePostedEvent("REQ-2025-001", "سارة"))).To(Succeed())
		}
		bus.Wait()

		Eventually(source.reads.Load).Should(Equal(int32(1)))
		Consistently(source.reads.Load, 100*time.Millisecond).Should(Equal(int32(1)))
	})

	It("writes pending changes on flush", func() {
		slow := mirror.New(fs, "/data/slow.xlsx", time.Hour, source, logger)
		Expect(slow.Handle(context.Background(), events.NewUserChangedEvent("a@x.com", "added"))).To(Succeed())

		Expect(slow.Flush(context.Background())).To(Succeed())
		exists, _ := afero.Exists(fs, "/data/slow.xlsx")
		Expect(exists).To(BeTrue())
		Expect(source.reads.Load()).To(Equal(int32(1)))
	})

	It("does nothing on flush without changes", func() {
		Expect(m.Flush(context.Background())).To(Succeed())
		Expect(source.reads.Load()).To(Equal(int32(0)))
	})

	It("reports read failures from rebuild", func() {
		source.err = errors.New("down")
		Expect(m.Rebuild(context.Background())).To(MatchError(ContainSubstring("read requests")))
	})
})
