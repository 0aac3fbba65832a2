package storage_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/storage"
	"github.com/frahmantamala/request-routing/internal/transport"
)

var _ = Describe("Store", func() {
	var (
		fs    afero.Fs
		store *storage.Store
	)

	BeforeEach(func() {
		var err error
		fs = afero.NewMemMapFs()
		store, err = storage.New(fs, "/data/uploads", "/data/exports")
		Expect(err).NotTo(HaveOccurred())
	})

	DescribeTable("SanitizeName",
		func(in, want string, ok bool) {
			got, err := storage.SanitizeName(in)
			if !ok {
				Expect(err).To(MatchError(internal.ErrInvalidFile))
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("plain", "report.pdf", "report.pdf", true),
		Entry("unix path", "../../etc/passwd", "passwd", true),
		Entry("windows path", `C:\Users\a\scan.png`, "scan.png", true),
		Entry("arabic", "  تقرير.docx ", "تقرير.docx", true),
		Entry("empty", "", "", false),
		Entry("parent", "..", "", false),
		Entry("root", "/", "", false),
	)

	It("stores uploads under the request id prefix", func() {
		name, err := store.SaveUpload(context.Background(), "REQ-2025-004", "../scan.pdf", strings.NewReader("pdf"))

		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("REQ-2025-004_scan.pdf"))
		data, err := afero.ReadFile(fs, "/data/uploads/REQ-2025-004_scan.pdf")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("pdf"))
	})

	It("writes exports through the callback", func() {
		name, err := store.WriteExport(context.Background(), "out.xlsx", func(w io.Writer) error {
			_, err := w.Write([]byte("xlsx"))
			return err
		})

		Expect(err).NotTo(HaveOccurred())
		f, err := store.OpenExport(name)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		data, _ := io.ReadAll(f)
		Expect(string(data)).To(Equal("xlsx"))
	})

	It("reports missing files as not found", func() {
		_, err := store.OpenUpload("missing.txt")
		Expect(err).To(MatchError(internal.ErrFileNotFound))
	})

	Describe("Handler", func() {
		var router chi.Router

		BeforeEach(func() {
			_, err := store.SaveUpload(context.Background(), "REQ-2025-001", "a.txt", strings.NewReader("hello"))
			Expect(err).NotTo(HaveOccurred())

			slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			h := storage.NewHandler(transport.NewBaseHandler(slogger), store)
			router = chi.NewRouter()
			router.Get("/uploads/{file}", h.ServeUpload)
			router.Get("/download/{file}", h.ServeExport)
		})

		It("serves an upload inline", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/REQ-2025-001_a.txt", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("hello"))
			Expect(w.Header().Get("Content-Disposition")).To(HavePrefix("inline"))
		})

		It("answers 404 for an unknown export", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/nope.xlsx", nil))

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})
