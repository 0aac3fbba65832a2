package middleware_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/i18n"
	"github.com/frahmantamala/request-routing/internal/transport/middleware"
	"github.com/frahmantamala/request-routing/pkg/logger"
)

type stubVerifier struct {
	principal internal.Principal
	err       error
}

func (s stubVerifier) VerifyToken(string) (internal.Principal, error) {
	return s.principal, s.err
}

var _ = Describe("Middleware", func() {
	Describe("Recovery", func() {
		It("turns a panic into a 500 envelope", func() {
			h := middleware.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic("boom")
			}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(rec.Body.String()).To(ContainSubstring(`"success":false`))
			Expect(rec.Body.String()).To(ContainSubstring(`"code":"INTERNAL_ERROR"`))
			Expect(rec.Body.String()).NotTo(ContainSubstring("boom"))
		})
	})

	Describe("Logging", func() {
		It("masks credentials in logged bodies", func() {
			var buf bytes.Buffer
			lg := slog.New(slog.NewJSONHandler(&buf, nil))

			h := middleware.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				Expect(string(body)).To(ContainSubstring("s3cret"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"success":true,"token":"abc.def"}`))
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/login",
				strings.NewReader(`{"email":"a@x.com","password":"s3cret"}`))
			req.Header.Set("Content-Type", "application/json")
			req = req.WithContext(logger.Into(req.Context(), lg))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			Expect(rec.Body.String()).To(ContainSubstring("abc.def"))
			Expect(buf.String()).To(ContainSubstring("a@x.com"))
			Expect(buf.String()).NotTo(ContainSubstring("s3cret"))
			Expect(buf.String()).NotTo(ContainSubstring("abc.def"))
		})
	})

	Describe("Locale", func() {
		It("stores the negotiated locale", func() {
			var got string
			h := middleware.Locale(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = i18n.LocaleFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Accept-Language", "en-US,en;q=0.9")
			h.ServeHTTP(httptest.NewRecorder(), req)
			Expect(got).To(Equal("en"))
		})
	})

	Describe("Identify", func() {
		run := func(v middleware.TokenVerifier, header string) (internal.Principal, bool) {
			var (
				p  internal.Principal
				ok bool
			)
			h := middleware.Identify(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				p, ok = internal.PrincipalFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			return p, ok
		}

		It("attaches a verified principal", func() {
			p, ok := run(stubVerifier{principal: internal.Principal{Email: "a@x.com", Role: "employee"}}, "Bearer t")
			Expect(ok).To(BeTrue())
			Expect(p.Email).To(Equal("a@x.com"))
		})

		It("passes anonymous and invalid callers through", func() {
			_, ok := run(stubVerifier{}, "")
			Expect(ok).To(BeFalse())

			_, ok = run(stubVerifier{err: errors.New("bad")}, "Bearer t")
			Expect(ok).To(BeFalse())
		})
	})
})
