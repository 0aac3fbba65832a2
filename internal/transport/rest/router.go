package rest

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/request-routing/internal/auth"
	"github.com/frahmantamala/request-routing/internal/chat"
	"github.com/frahmantamala/request-routing/internal/chatbot"
	"github.com/frahmantamala/request-routing/internal/department"
	"github.com/frahmantamala/request-routing/internal/export"
	"github.com/frahmantamala/request-routing/internal/metrics"
	"github.com/frahmantamala/request-routing/internal/request"
	"github.com/frahmantamala/request-routing/internal/storage"
	"github.com/frahmantamala/request-routing/internal/transport"
	"github.com/frahmantamala/request-routing/internal/transport/middleware"
	"github.com/frahmantamala/request-routing/internal/transport/swagger"
	"github.com/frahmantamala/request-routing/internal/user"
)

// Handlers groups the HTTP handlers of every module. Nil handlers leave
// their routes unregistered.
type Handlers struct {
	Base       *transport.BaseHandler
	Verifier   middleware.TokenVerifier
	Auth       *auth.Handler
	User       *user.Handler
	Department *department.Handler
	Request    *request.Handler
	Chat       *chat.Handler
	Chatbot    *chatbot.Handler
	Export     *export.Handler
	Storage    *storage.Handler
}

type Options struct {
	AllowedOrigins []string
	MetricsEnabled bool
	MetricsPath    string
}

func RegisterAllRoutes(router *chi.Mux, db *sqlx.DB, h Handlers, opts Options) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.RequestID)
	router.Use(middleware.Locale)
	router.Use(middleware.Recovery)
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.Logging)
	if opts.MetricsEnabled {
		router.Use(metrics.Middleware)
		router.Handle(opts.MetricsPath, metrics.Handler())
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.Base.WriteError(w, http.StatusNotFound, "route not found")
	})

	router.Get("/openapi.yml", swagger.SpecHandler())
	router.Handle("/swagger/*", swagger.Handler())

	if h.Storage != nil {
		router.Get("/uploads/{file}", h.Storage.ServeUpload)
		router.Get("/download/{file}", h.Storage.ServeExport)
	}
	if h.Chatbot != nil {
		router.Post("/chatbot", h.Chatbot.Reply)
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Post("/login", h.Auth.Login)
		}

		if h.Department != nil {
			r.Get("/departments", h.Department.GetDepartments)
			r.Post("/normalize_department", h.Department.NormalizeDepartment)
		}

		if h.User != nil {
			r.Post("/get_employees", h.User.GetEmployees)
			r.Post("/forgot_reset_password", h.User.ResetPassword)

			r.Route("/hr", func(hr chi.Router) {
				hr.Use(auth.RequireRole(h.Verifier, h.Base, auth.RoleHR))
				hr.Post("/list_users", h.User.ListUsers)
				hr.Post("/add_user", h.User.AddUser)
				hr.Post("/update_user", h.User.UpdateUser)
				hr.Post("/archive_user", h.User.ArchiveUser)
			})
		}

		if h.Request != nil {
			r.Group(func(rr chi.Router) {
				rr.Use(middleware.Identify(h.Verifier))
				rr.Post("/get_requests", h.Request.GetRequests)
			})
			r.Post("/create_request", h.Request.CreateRequest)
			r.Post("/update_request_status", h.Request.UpdateRequestStatus)
			r.Post("/delegate_request", h.Request.DelegateRequest)
		}

		if h.Export != nil {
			r.Post("/export_requests", h.Export.ExportRequests)
		}

		if h.Chat != nil {
			r.Post("/chat_send", h.Chat.Send)
			r.Get("/chat_get/{requestId}", h.Chat.Get)
		}
	})
}
