package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/auth"
	authPostgres "github.com/frahmantamala/request-routing/internal/auth/postgres"
	"github.com/frahmantamala/request-routing/internal/chat"
	chatPostgres "github.com/frahmantamala/request-routing/internal/chat/postgres"
	"github.com/frahmantamala/request-routing/internal/chatbot"
	"github.com/frahmantamala/request-routing/internal/core/events"
	"github.com/frahmantamala/request-routing/internal/department"
	"github.com/frahmantamala/request-routing/internal/export"
	exportPostgres "github.com/frahmantamala/request-routing/internal/export/postgres"
	"github.com/frahmantamala/request-routing/internal/i18n"
	"github.com/frahmantamala/request-routing/internal/mirror"
	"github.com/frahmantamala/request-routing/internal/request"
	requestPostgres "github.com/frahmantamala/request-routing/internal/request/postgres"
	"github.com/frahmantamala/request-routing/internal/storage"
	"github.com/frahmantamala/request-routing/internal/transport"
	"github.com/frahmantamala/request-routing/internal/transport/rest"
	"github.com/frahmantamala/request-routing/internal/transport/swagger"
	"github.com/frahmantamala/request-routing/internal/user"
	userPostgres "github.com/frahmantamala/request-routing/internal/user/postgres"
	"github.com/frahmantamala/request-routing/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	Gorm   *gorm.DB
	DB     *sqlx.DB
	Router *chi.Mux
	Bus    *events.EventBus
	Mirror *mirror.Mirror
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "driver", deps.Config.Database.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.Bus.Wait()
		if deps.Mirror != nil {
			if err := deps.Mirror.Flush(ctx); err != nil {
				deps.Logger.Error("Mirror flush error", "error", err)
			}
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Setup(logger.Options{
		Level:  config.Observability.Logging.Level,
		Format: config.Observability.Logging.Format,
	})
	lg := logger.LoggerWrapper()

	if err := i18n.Init(config.I18n.DefaultLocale); err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}
	if _, err := swagger.Load(); err != nil {
		return nil, err
	}

	gdb, err := openDatabase(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db, err := sqlxFrom(gdb, config.Database.Driver)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewLocalStore(config.Storage.UploadDir, config.Storage.ExportDir)
	if err != nil {
		return nil, err
	}
	passwords, err := auth.NewPasswordScheme(config.Security.PasswordScheme, config.Security.BCryptCost)
	if err != nil {
		return nil, err
	}

	bus := events.NewEventBus(lg)
	exportSource := exportPostgres.NewSource(db)

	var mirrorWriter *mirror.Mirror
	if config.Mirror.Enabled {
		mirrorWriter = mirror.New(afero.NewOsFs(), config.Mirror.Path, config.Mirror.Debounce, exportSource, lg)
		mirrorWriter.Register(bus)
	}

	requestRepo := requestPostgres.NewRequestRepository(gdb)
	tokens := auth.NewJWTTokenIssuer(config.Security.JWTSecret, config.Security.TokenDuration)

	authService := auth.NewService(authPostgres.NewUserSource(gdb), tokens, passwords, config.Policies.RoleResolution, lg)
	userService := user.NewService(userPostgres.NewUserRepository(gdb), passwords, bus, lg)
	requestService := request.NewService(
		requestRepo,
		store,
		request.NewLifecycle(config.Workflow.EnforceTransitions, time.Now),
		request.NewVisibilityFilter(config.Policies.Visibility, department.Default()),
		bus,
		lg,
	)
	chatService := chat.NewService(chatPostgres.NewChatRepository(gdb), requestRepo, bus, lg)
	chatbotService := chatbot.NewService(chatbot.NewClient(chatbot.Config{
		BaseURL:      config.Chatbot.BaseURL,
		APIKey:       config.Chatbot.APIKey,
		Model:        config.Chatbot.Model,
		SystemPrompt: config.Chatbot.SystemPrompt,
		Temperature:  config.Chatbot.Temperature,
		MaxTokens:    config.Chatbot.MaxTokens,
		Timeout:      config.Chatbot.Timeout,
	}, lg), lg)
	exportService := export.NewService(exportSource, store, time.Local, lg)

	base := transport.NewBaseHandler(lg)
	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db, rest.Handlers{
		Base:       base,
		Verifier:   authService,
		Auth:       auth.NewHandler(base, authService),
		User:       user.NewHandler(base, userService),
		Department: department.NewHandler(base, department.Default()),
		Request:    request.NewHandler(base, requestService, config.Server.MaxUploadBytes),
		Chat:       chat.NewHandler(base, chatService),
		Chatbot:    chatbot.NewHandler(base, chatbotService),
		Export:     export.NewHandler(base, exportService),
		Storage:    storage.NewHandler(base, store),
	}, rest.Options{
		AllowedOrigins: config.Server.Origins(),
		MetricsEnabled: config.Observability.Metrics.Enabled,
		MetricsPath:    config.Observability.Metrics.Path,
	})

	return &Dependencies{
		Config: config,
		Gorm:   gdb,
		DB:     db,
		Router: router,
		Bus:    bus,
		Mirror: mirrorWriter,
		Logger: lg,
	}, nil
}
