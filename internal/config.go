package internal

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Policy selects how a component treats input it cannot classify.
type Policy string

const (
	// PolicyFailSafe falls back to the least privileged known behavior.
	PolicyFailSafe Policy = "fail_safe"
	// PolicyFailClosed refuses or returns nothing.
	PolicyFailClosed Policy = "fail_closed"
)

func (p Policy) Valid() bool {
	return p == PolicyFailSafe || p == PolicyFailClosed
}

type Config struct {
	Env           string              `mapstructure:"env" env:"APP_ENV, default=development"`
	Server        ServerConfig        `mapstructure:"http_server" env:", prefix=HTTP_"`
	Database      DatabaseConfig      `mapstructure:"database" env:", prefix=DB_"`
	Security      SecurityConfig      `mapstructure:"security" env:", prefix=SECURITY_"`
	Storage       StorageConfig       `mapstructure:"storage" env:", prefix=STORAGE_"`
	Chatbot       ChatbotConfig       `mapstructure:"chatbot" env:", prefix=CHATBOT_"`
	Policies      PolicyConfig        `mapstructure:"policies" env:", prefix=POLICY_"`
	Workflow      WorkflowConfig      `mapstructure:"workflow" env:", prefix=WORKFLOW_"`
	Mirror        MirrorConfig        `mapstructure:"mirror" env:", prefix=MIRROR_"`
	I18n          I18nConfig          `mapstructure:"i18n" env:", prefix=I18N_"`
	Observability ObservabilityConfig `mapstructure:"observability" env:", prefix=OBS_"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" env:"PORT, default=5000"`
	BaseURL           string        `mapstructure:"base_url" env:"BASE_URL"`
	AllowedOrigins    string        `mapstructure:"allowed_origins" env:"ALLOWED_ORIGINS, default=*"`
	MaxUploadBytes    int64         `mapstructure:"max_upload_bytes" env:"MAX_UPLOAD_BYTES, default=20971520"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" env:"READ_HEADER_TIMEOUT, default=5s"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" env:"READ_TIMEOUT, default=30s"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" env:"IDLE_TIMEOUT, default=60s"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" env:"WRITE_TIMEOUT, default=30s"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" env:"DRIVER, default=postgres"`
	Source          string        `mapstructure:"source" env:"SOURCE"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" env:"MAX_OPEN_CONNS, default=10"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" env:"MAX_IDLE_CONNS, default=5"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" env:"CONN_MAX_LIFETIME, default=30m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" env:"CONN_MAX_IDLE_TIME, default=5m"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	PasswordSchemePlain  = "plain"
	PasswordSchemeBcrypt = "bcrypt"
)

type SecurityConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret" env:"JWT_SECRET"`
	TokenDuration  time.Duration `mapstructure:"token_duration" env:"TOKEN_DURATION, default=8h"`
	PasswordScheme string        `mapstructure:"password_scheme" env:"PASSWORD_SCHEME, default=plain"`
	BCryptCost     int           `mapstructure:"bcrypt_cost" env:"BCRYPT_COST, default=10"`
}

type StorageConfig struct {
	UploadDir string `mapstructure:"upload_dir" env:"UPLOAD_DIR, default=uploads"`
	ExportDir string `mapstructure:"export_dir" env:"EXPORT_DIR, default=exports"`
}

type ChatbotConfig struct {
	BaseURL      string        `mapstructure:"base_url" env:"BASE_URL, default=https://openrouter.ai/api/v1"`
	APIKey       string        `mapstructure:"api_key" env:"API_KEY"`
	Model        string        `mapstructure:"model" env:"MODEL, default=qwen/qwen-2.5-7b-instruct"`
	SystemPrompt string        `mapstructure:"system_prompt" env:"SYSTEM_PROMPT"`
	Temperature  float64       `mapstructure:"temperature" env:"TEMPERATURE, default=0.6"`
	MaxTokens    int           `mapstructure:"max_tokens" env:"MAX_TOKENS, default=200"`
	Timeout      time.Duration `mapstructure:"timeout" env:"TIMEOUT, default=15s"`
}

type PolicyConfig struct {
	// RoleResolution applies at login when a stored role string matches no keyword group.
	RoleResolution Policy `mapstructure:"role_resolution" env:"ROLE_RESOLUTION, default=fail_safe"`
	// Visibility applies when a request listing names a role with no visibility rule.
	Visibility Policy `mapstructure:"visibility" env:"VISIBILITY, default=fail_closed"`
}

type WorkflowConfig struct {
	EnforceTransitions bool `mapstructure:"enforce_transitions" env:"ENFORCE_TRANSITIONS, default=true"`
}

type MirrorConfig struct {
	Enabled  bool          `mapstructure:"enabled" env:"ENABLED, default=false"`
	Path     string        `mapstructure:"path" env:"PATH, default=exports/mirror.xlsx"`
	Debounce time.Duration `mapstructure:"debounce" env:"DEBOUNCE, default=2s"`
}

type I18nConfig struct {
	DefaultLocale string `mapstructure:"default_locale" env:"DEFAULT_LOCALE, default=ar"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics" env:", prefix=METRICS_"`
	Logging LoggingConfig `mapstructure:"logging" env:", prefix=LOG_"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" env:"ENABLED, default=true"`
	Path    string `mapstructure:"path" env:"PATH, default=/metrics"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" env:"LEVEL, default=info"`
	Format string `mapstructure:"format" env:"FORMAT, default=json"`
}

// LoadConfigFromEnv builds the configuration from process environment
// variables, used by container deployments where no config file is mounted.
func LoadConfigFromEnv(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	return &cfg, nil
}

// ApplyDefaults fills values a partial config file leaves empty.
func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 20 << 20
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Security.TokenDuration == 0 {
		c.Security.TokenDuration = 8 * time.Hour
	}
	if c.Security.PasswordScheme == "" {
		c.Security.PasswordScheme = PasswordSchemePlain
	}
	if c.Security.BCryptCost == 0 {
		c.Security.BCryptCost = 10
	}
	if c.Storage.UploadDir == "" {
		c.Storage.UploadDir = "uploads"
	}
	if c.Storage.ExportDir == "" {
		c.Storage.ExportDir = "exports"
	}
	if c.Chatbot.Timeout == 0 {
		c.Chatbot.Timeout = 15 * time.Second
	}
	if c.Chatbot.MaxTokens == 0 {
		c.Chatbot.MaxTokens = 200
	}
	if c.Policies.RoleResolution == "" {
		c.Policies.RoleResolution = PolicyFailSafe
	}
	if c.Policies.Visibility == "" {
		c.Policies.Visibility = PolicyFailClosed
	}
	if c.Mirror.Path == "" {
		c.Mirror.Path = "exports/mirror.xlsx"
	}
	if c.Mirror.Debounce == 0 {
		c.Mirror.Debounce = 2 * time.Second
	}
	if c.I18n.DefaultLocale == "" {
		c.I18n.DefaultLocale = "ar"
	}
	if c.Observability.Metrics.Path == "" {
		c.Observability.Metrics.Path = "/metrics"
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Chatbot.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("chatbot config: %v", err))
	}

	if !c.Policies.RoleResolution.Valid() {
		errs = append(errs, fmt.Sprintf("policies config: unknown role_resolution policy %q", c.Policies.RoleResolution))
	}
	if !c.Policies.Visibility.Valid() {
		errs = append(errs, fmt.Sprintf("policies config: unknown visibility policy %q", c.Policies.Visibility))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

// Origins splits AllowedOrigins into the list the CORS middleware expects.
func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func (c *DatabaseConfig) Validate() error {
	if c.Driver != DriverPostgres && c.Driver != DriverSQLite {
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *SecurityConfig) Validate() error {
	switch c.PasswordScheme {
	case PasswordSchemePlain:
	case PasswordSchemeBcrypt:
		if c.BCryptCost < 4 || c.BCryptCost > 31 {
			return fmt.Errorf("bcrypt_cost %d out of range", c.BCryptCost)
		}
	default:
		return fmt.Errorf("unknown password_scheme %q", c.PasswordScheme)
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt_secret must be at least 32 characters")
	}
	return nil
}

func (c *ChatbotConfig) Validate() error {
	if c.BaseURL == "" {
		return nil
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}
