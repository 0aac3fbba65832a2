package auth_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/auth"
	authPostgres "github.com/frahmantamala/request-routing/internal/auth/postgres"
	userDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/user"
	"github.com/frahmantamala/request-routing/internal/department"
	"github.com/frahmantamala/request-routing/internal/transport"
	"github.com/frahmantamala/request-routing/internal/transport/middleware"
)

var _ = Describe("Auth Handler Integration", func() {
	var (
		db      *gorm.DB
		service *auth.Service
		handler *auth.Handler
		base    *transport.BaseHandler
		router  chi.Router
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&userDatamodel.User{})).To(Succeed())

		Expect(db.Create(&userDatamodel.User{
			Email: "a@x.com", Name: "أحمد", RawRole: "مدير القسم", Role: "department_manager",
			Password: "pw1", Department: "ادارة التقنية", Status: userDatamodel.StatusActive,
		}).Error).To(Succeed())
		Expect(db.Create(&userDatamodel.User{
			Email: "hr@x.com", Name: "HR", RawRole: "موارد بشرية", Role: "hr",
			Password: "pw", Department: "الإدارة الإدارية", Status: userDatamodel.StatusActive,
		}).Error).To(Succeed())

		service = auth.NewService(authPostgres.NewUserSource(db), auth.NewJWTTokenIssuer(testSecret, time.Hour),
			auth.PlainPasswords{}, internal.PolicyFailSafe, slogger)
		base = &transport.BaseHandler{Logger: slogger}
		handler = auth.NewHandler(base, service)

		router = chi.NewRouter()
		router.Post("/api/login", handler.Login)
		router.With(auth.RequireRole(service, base, auth.RoleHR)).Get("/hr-only", func(w http.ResponseWriter, r *http.Request) {
			p, _ := internal.PrincipalFromContext(r.Context())
			_, _ = w.Write([]byte(p.Email))
		})
	})

	login := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("returns the session on valid credentials", func() {
		w := login(`{"email":"a@x.com","password":"pw1"}`)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp struct {
			Success bool             `json:"success"`
			User    auth.SessionUser `json:"user"`
			Token   string           `json:"token"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Success).To(BeTrue())
		Expect(resp.User.Role).To(Equal(auth.RoleDepartmentManager))
		Expect(resp.User.Department).To(Equal(department.IT))
		Expect(resp.Token).NotTo(BeEmpty())
	})

	It("returns 401 with a localized message on bad credentials", func() {
		w := login(`{"email":"a@x.com","password":"wrong"}`)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		var resp internal.Response
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Success).To(BeFalse())
		Expect(resp.Code).To(Equal(internal.ErrCodeInvalidCredentials))
		Expect(resp.Message).To(Equal("البريد أو كلمة المرور غير صحيحة"))
	})

	It("returns 400 on malformed bodies", func() {
		w := login(`{"email":`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 500 when no users exist", func() {
		Expect(db.Exec("DELETE FROM users").Error).To(Succeed())
		w := login(`{"email":"a@x.com","password":"pw1"}`)
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})

	Describe("RequireRole", func() {
		tokenFor := func(email, password string) string {
			session, err := service.Authenticate(ctx(), auth.LoginDTO{Email: email, Password: password})
			Expect(err).NotTo(HaveOccurred())
			return session.Token
		}

		get := func(token string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/hr-only", nil)
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w
		}

		It("rejects missing tokens", func() {
			Expect(get("").Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects other roles", func() {
			Expect(get(tokenFor("a@x.com", "pw1")).Code).To(Equal(http.StatusForbidden))
		})

		It("admits the allowed role and exposes the principal", func() {
			w := get(tokenFor("hr@x.com", "pw"))
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("hr@x.com"))
		})

		It("shares one verifier with the optional identity middleware", func() {
			var verifier middleware.TokenVerifier = service
			shared := chi.NewRouter()
			shared.Use(middleware.Identify(verifier))
			shared.With(auth.RequireRole(verifier, base, auth.RoleHR)).Get("/hr-only", func(w http.ResponseWriter, r *http.Request) {
				p, _ := internal.PrincipalFromContext(r.Context())
				_, _ = w.Write([]byte(p.Email))
			})

			req := httptest.NewRequest(http.MethodGet, "/hr-only", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor("hr@x.com", "pw"))
			w := httptest.NewRecorder()
			shared.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("hr@x.com"))
		})
	})
})
