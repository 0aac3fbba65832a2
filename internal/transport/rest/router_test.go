package rest_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/auth"
	requestDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/request"
	userDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/user"
	"github.com/frahmantamala/request-routing/internal/department"
	"github.com/frahmantamala/request-routing/internal/transport"
	"github.com/frahmantamala/request-routing/internal/transport/rest"
	"github.com/frahmantamala/request-routing/internal/user"
	userPostgres "github.com/frahmantamala/request-routing/internal/user/postgres"
	pkglogger "github.com/frahmantamala/request-routing/pkg/logger"
)

var _ = Describe("Router", func() {
	var (
		router *chi.Mux
		db     *sqlx.DB
		tokens *auth.JWTTokenIssuer
	)

	BeforeEach(func() {
		gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := gdb.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(gdb.AutoMigrate(&requestDatamodel.Request{}, &userDatamodel.User{})).To(Succeed())
		Expect(gdb.Create(&userDatamodel.User{
			Email: "hr@x.com", Name: "هدى", Role: "hr", Password: "pw", Department: "الموارد البشرية", Status: "active",
		}).Error).To(Succeed())

		db = sqlx.NewDb(sqlDB, "sqlite3")
		lg := pkglogger.Discard()
		base := transport.NewBaseHandler(lg)
		tokens = auth.NewJWTTokenIssuer("test-secret", time.Hour)
		authSvc := auth.NewService(nil, tokens, auth.PlainPasswords{}, internal.PolicyFailSafe, lg)
		userSvc := user.NewService(userPostgres.NewUserRepository(gdb), auth.PlainPasswords{}, nil, lg)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, db, rest.Handlers{
			Base:       base,
			Verifier:   authSvc,
			User:       user.NewHandler(base, userSvc),
			Department: department.NewHandler(base, nil),
		}, rest.Options{AllowedOrigins: []string{"*"}, MetricsEnabled: true, MetricsPath: "/metrics"})
	})

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("answers ping", func() {
		rec := serve(httptest.NewRequest(http.MethodGet, "/api/ping", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"OK"`))
	})

	It("reports the database as healthy", func() {
		rec := serve(httptest.NewRequest(http.MethodGet, "/api/health", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))

		var resp rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal(rest.HealthHealthy))
		Expect(resp.Components).To(HaveKey("database"))
	})

	It("reports an unreachable database", func() {
		Expect(db.Close()).To(Succeed())
		rec := serve(httptest.NewRequest(http.MethodGet, "/api/health", nil))
		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("echoes a request id", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := serve(req)
		Expect(rec.Header().Get("X-Request-ID")).To(Equal("abc-123"))

		rec = serve(httptest.NewRequest(http.MethodGet, "/api/ping", nil))
		Expect(rec.Header().Get("X-Request-ID")).NotTo(BeEmpty())
	})

	It("serves the OpenAPI document", func() {
		rec := serve(httptest.NewRequest(http.MethodGet, "/openapi.yml", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("/api/create_request"))
	})

	It("exposes metrics", func() {
		serve(httptest.NewRequest(http.MethodGet, "/api/ping", nil))
		rec := serve(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("http_requests_total"))
	})

	It("lists departments publicly", func() {
		rec := serve(httptest.NewRequest(http.MethodGet, "/api/departments", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(department.IT))
	})

	Describe("HR routes", func() {
		listUsers := func(token string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/hr/list_users", strings.NewReader(`{}`))
			req.Header.Set("Content-Type", "application/json")
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			return serve(req)
		}

		It("requires a token", func() {
			Expect(listUsers("").Code).To(Equal(http.StatusUnauthorized))
		})

		It("refuses other roles", func() {
			token, _, err := tokens.Issue(internal.Principal{Email: "e@x.com", Role: string(auth.RoleEmployee)})
			Expect(err).NotTo(HaveOccurred())
			Expect(listUsers(token).Code).To(Equal(http.StatusForbidden))
		})

		It("lets HR through", func() {
			token, _, err := tokens.Issue(internal.Principal{Email: "hr@x.com", Role: string(auth.RoleHR)})
			Expect(err).NotTo(HaveOccurred())
			rec := listUsers(token)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("hr@x.com"))
		})
	})

	It("answers unknown routes with the error envelope", func() {
		rec := serve(httptest.NewRequest(http.MethodGet, "/nope", nil))
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(ContainSubstring(`"success":false`))
	})
})
