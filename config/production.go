// Package config provides configuration management and environment variable handling for the application
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Database     DatabaseConfig     `json:"database"`
	Server       ServerConfig       `json:"server"`
	Security     SecurityConfig     `json:"security"`
	JWT          JWTConfig          `json:"jwt"`
	Voice        VoiceConfig        `json:"voice"`
	Embedding    EmbeddingConfig    `json:"embedding"`
	Matcher      MatcherConfig      `json:"matcher"`
	Pricing      PricingConfig      `json:"pricing"`
	Negotiation  NegotiationConfig  `json:"negotiation"`
	Orchestrator OrchestratorConfig `json:"orchestrator"`
	Email        EmailConfig        `json:"email"`
	Logging      LoggingConfig      `json:"logging"`
	Metrics      MetricsConfig      `json:"metrics"`
	Cache        CacheConfig        `json:"cache"`
	Deployment   DeploymentConfig   `json:"deployment"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	SlowQueryLog    bool          `json:"slow_query_log"`
	SlowQueryTime   time.Duration `json:"slow_query_time"`
}

type ServerConfig struct {
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	ReadTimeout       time.Duration `json:"read_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout"`
	IdleTimeout       time.Duration `json:"idle_timeout"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout"`
	BodyLimit         int           `json:"body_limit"`
	EnableMetrics     bool          `json:"enable_metrics"`
	TrustedProxies    []string      `json:"trusted_proxies"`
	ProxyHeader       string        `json:"proxy_header"`
	EnableCompression bool          `json:"enable_compression"`
}

type SecurityConfig struct {
	// CORS
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	CORSMaxAge       int      `json:"cors_max_age"`

	// Rate Limiting
	AuthRateLimit   int           `json:"auth_rate_limit"`   // requests per minute
	GlobalRateLimit int           `json:"global_rate_limit"` // requests per minute
	RateLimitWindow time.Duration `json:"rate_limit_window"`
}

type JWTConfig struct {
	SecretKey       string        `json:"secret_key"`
	PrivateKey      string        `json:"private_key"`  // RSA private key in PEM format
	PublicKey       string        `json:"public_key"`   // RSA public key in PEM format
	UseRSAKeys      bool          `json:"use_rsa_keys"` // Whether to use RSA keys instead of secret key
	AccessTokenTTL  time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL time.Duration `json:"refresh_token_ttl"`
	Issuer          string        `json:"issuer"`
	Audience        string        `json:"audience"`
}

// VoiceConfig configures the outbound voice call provider.
// When APIKey is empty the mock provider is used instead.
type VoiceConfig struct {
	APIBase            string        `json:"api_base"`
	APIKey             string        `json:"api_key"`
	AgentID            string        `json:"agent_id"`
	AgentPhoneNumberID string        `json:"agent_phone_number_id"`
	Timeout            time.Duration `json:"timeout"`
}

// EmbeddingConfig configures the text embedding backend.
// When APIKey is empty the deterministic hash fallback is used.
type EmbeddingConfig struct {
	APIBase    string        `json:"api_base"`
	APIKey     string        `json:"api_key"`
	Model      string        `json:"model"`
	Dimensions int           `json:"dimensions"`
	Timeout    time.Duration `json:"timeout"`
	CacheTTL   time.Duration `json:"cache_ttl"`
}

type MatcherConfig struct {
	SimilarityWeight    float64 `json:"similarity_weight"`
	PriceWeight         float64 `json:"price_weight"`
	CompatibleBonus     float64 `json:"compatible_bonus"`
	IncompatibleBonus   float64 `json:"incompatible_bonus"`
	PriceWindowLow      float64 `json:"price_window_low"`
	PriceWindowHigh     float64 `json:"price_window_high"`
	MinSimilarityFloor  float64 `json:"min_similarity_floor"`
	DefaultTopN         int     `json:"default_top_n"`
}

type PricingConfig struct {
	MicroTierFactor float64 `json:"micro_tier_factor"`
	MacroTierFactor float64 `json:"macro_tier_factor"`
	MegaTierFactor  float64 `json:"mega_tier_factor"`
	MaxRateMarkup   float64 `json:"max_rate_markup"`
}

type NegotiationConfig struct {
	MaxAttempts        int           `json:"max_attempts"`
	BackoffBase        time.Duration `json:"backoff_base"`
	BackoffCap         time.Duration `json:"backoff_cap"`
	MaxCallDuration    time.Duration `json:"max_call_duration"`
	PollInterval       time.Duration `json:"poll_interval"`
	PollBackoffCap     time.Duration `json:"poll_backoff_cap"`
	AcceptFloorFactor  float64       `json:"accept_floor_factor"`
}

type OrchestratorConfig struct {
	MaxConcurrentNegotiations int           `json:"max_concurrent_negotiations"`
	CampaignDeadline          time.Duration `json:"campaign_deadline"`
	SnapshotCacheTTL          time.Duration `json:"snapshot_cache_ttl"`
	EstimatePerCreator        time.Duration `json:"estimate_per_creator"`
	RetainFinishedFor         time.Duration `json:"retain_finished_for"`
}

type EmailConfig struct {
	Host          string        `json:"host"`
	Port          int           `json:"port"`
	Username      string        `json:"username"`
	Password      string        `json:"password"`
	FromEmail     string        `json:"from_email"`
	FromName      string        `json:"from_name"`
	UseTLS        bool          `json:"use_tls"`
	RetryAttempts int           `json:"retry_attempts"`
	Timeout       time.Duration `json:"timeout"`
}

type LoggingConfig struct {
	Level      string `json:"level"`  // debug, info, warn, error
	Output     string `json:"output"` // stdout, file, both
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`

	// Orchestrator Logs
	OrchestratorLogPath string `json:"orchestrator_log_path"`
}

type MetricsConfig struct {
	Enabled        bool   `json:"enabled"`
	Path           string `json:"path"`
	CollectDB      bool   `json:"collect_db"`
	CollectApp     bool   `json:"collect_app"`
}

type CacheConfig struct {
	Enabled         bool          `json:"enabled"`
	Provider        string        `json:"provider"` // redis, memory
	RedisURL        string        `json:"redis_url"`
	RedisDB         int           `json:"redis_db"`
	RedisPrefix     string        `json:"redis_prefix"`
	DefaultTTL      time.Duration `json:"default_ttl"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

type DeploymentConfig struct {
	Domain      string `json:"domain"`
	APIDomain   string `json:"api_domain"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	CommitHash  string `json:"commit_hash"`
	BuildTime   string `json:"build_time"`
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	// Load environment variables from .env file
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "postgres"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
			SlowQueryLog:    getEnvBool("DB_SLOW_QUERY_LOG", true),
			SlowQueryTime:   getEnvDuration("DB_SLOW_QUERY_TIME", 1*time.Second),
		},
		Server: ServerConfig{
			Host:              getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:              getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:       getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:      getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:       getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout:   getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:         getEnvInt("SERVER_BODY_LIMIT", 4*1024*1024), // 4MB
			EnableMetrics:     getEnvBool("SERVER_ENABLE_METRICS", true),
			TrustedProxies:    getEnvStringSlice("SERVER_TRUSTED_PROXIES", []string{"127.0.0.1"}),
			ProxyHeader:       getEnvString("SERVER_PROXY_HEADER", "X-Real-IP"),
			EnableCompression: getEnvBool("SERVER_ENABLE_COMPRESSION", true),
		},
		Security: SecurityConfig{
			AllowedOrigins:   getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"https://influencer-ai.com", "https://api.influencer-ai.com"}),
			AllowedMethods:   getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"}),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
			CORSMaxAge:       getEnvInt("CORS_MAX_AGE", 86400),
			AuthRateLimit:    getEnvInt("AUTH_RATE_LIMIT", 20),
			GlobalRateLimit:  getEnvInt("GLOBAL_RATE_LIMIT", 2000),
			RateLimitWindow:  getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
		},
		JWT: JWTConfig{
			SecretKey:       getEnvString("JWT_SECRET_KEY", ""),
			PrivateKey:      getEnvString("JWT_PRIVATE_KEY", ""),
			PublicKey:       getEnvString("JWT_PUBLIC_KEY", ""),
			UseRSAKeys:      getEnvBool("JWT_USE_RSA_KEYS", false),
			AccessTokenTTL:  getEnvDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour),
			RefreshTokenTTL: getEnvDuration("JWT_REFRESH_TOKEN_TTL", 7*24*time.Hour),
			Issuer:          getEnvString("JWT_ISSUER", "influencer-ai"),
			Audience:        getEnvString("JWT_AUDIENCE", "influencer-ai-api"),
		},
		Voice: VoiceConfig{
			APIBase:            getEnvString("VOICE_API_BASE", "https://api.elevenlabs.io"),
			APIKey:             getEnvString("VOICE_API_KEY", ""),
			AgentID:            getEnvString("VOICE_AGENT_ID", ""),
			AgentPhoneNumberID: getEnvString("VOICE_AGENT_PHONE_NUMBER_ID", ""),
			Timeout:            getEnvDuration("VOICE_TIMEOUT", 30*time.Second),
		},
		Embedding: EmbeddingConfig{
			APIBase:    getEnvString("EMBEDDING_API_BASE", "https://api.openai.com/v1"),
			APIKey:     getEnvString("EMBEDDING_API_KEY", ""),
			Model:      getEnvString("EMBEDDING_MODEL", "text-embedding-3-small"),
			Dimensions: getEnvInt("EMBEDDING_DIMENSIONS", 384),
			Timeout:    getEnvDuration("EMBEDDING_TIMEOUT", 15*time.Second),
			CacheTTL:   getEnvDuration("EMBEDDING_CACHE_TTL", 24*time.Hour),
		},
		Matcher: MatcherConfig{
			SimilarityWeight:   getEnvFloat("MATCHER_SIMILARITY_WEIGHT", 0.6),
			PriceWeight:        getEnvFloat("MATCHER_PRICE_WEIGHT", 0.4),
			CompatibleBonus:    getEnvFloat("MATCHER_COMPATIBLE_BONUS", 1.0),
			IncompatibleBonus:  getEnvFloat("MATCHER_INCOMPATIBLE_BONUS", 0.3),
			PriceWindowLow:     getEnvFloat("MATCHER_PRICE_WINDOW_LOW", 0.5),
			PriceWindowHigh:    getEnvFloat("MATCHER_PRICE_WINDOW_HIGH", 1.5),
			MinSimilarityFloor: getEnvFloat("MATCHER_MIN_SIMILARITY_FLOOR", 0.1),
			DefaultTopN:        getEnvInt("MATCHER_DEFAULT_TOP_N", 3),
		},
		Pricing: PricingConfig{
			MicroTierFactor: getEnvFloat("PRICING_MICRO_TIER_FACTOR", 0.9),
			MacroTierFactor: getEnvFloat("PRICING_MACRO_TIER_FACTOR", 1.0),
			MegaTierFactor:  getEnvFloat("PRICING_MEGA_TIER_FACTOR", 1.15),
			MaxRateMarkup:   getEnvFloat("PRICING_MAX_RATE_MARKUP", 1.3),
		},
		Negotiation: NegotiationConfig{
			MaxAttempts:       getEnvInt("NEGOTIATION_MAX_ATTEMPTS", 3),
			BackoffBase:       getEnvDuration("NEGOTIATION_BACKOFF_BASE", 5*time.Second),
			BackoffCap:        getEnvDuration("NEGOTIATION_BACKOFF_CAP", 60*time.Second),
			MaxCallDuration:   getEnvDuration("NEGOTIATION_MAX_CALL_DURATION", 10*time.Minute),
			PollInterval:      getEnvDuration("NEGOTIATION_POLL_INTERVAL", 10*time.Second),
			PollBackoffCap:    getEnvDuration("NEGOTIATION_POLL_BACKOFF_CAP", 60*time.Second),
			AcceptFloorFactor: getEnvFloat("NEGOTIATION_ACCEPT_FLOOR_FACTOR", 0.7),
		},
		Orchestrator: OrchestratorConfig{
			MaxConcurrentNegotiations: getEnvInt("ORCHESTRATOR_MAX_CONCURRENT_NEGOTIATIONS", 10),
			CampaignDeadline:          getEnvDuration("ORCHESTRATOR_CAMPAIGN_DEADLINE", 1*time.Hour),
			SnapshotCacheTTL:          getEnvDuration("ORCHESTRATOR_SNAPSHOT_CACHE_TTL", 5*time.Second),
			EstimatePerCreator:        getEnvDuration("ORCHESTRATOR_ESTIMATE_PER_CREATOR", 2*time.Minute),
			RetainFinishedFor:         getEnvDuration("ORCHESTRATOR_RETAIN_FINISHED_FOR", 5*time.Minute),
		},
		Email: EmailConfig{
			Host:          getEnvString("EMAIL_HOST", ""),
			Port:          getEnvInt("EMAIL_PORT", 587),
			Username:      getEnvString("EMAIL_USERNAME", ""),
			Password:      getEnvString("EMAIL_PASSWORD", ""),
			FromEmail:     getEnvString("EMAIL_FROM_EMAIL", "contracts@influencer-ai.com"),
			FromName:      getEnvString("EMAIL_FROM_NAME", "InfluencerAI Contracts"),
			UseTLS:        getEnvBool("EMAIL_USE_TLS", true),
			RetryAttempts: getEnvInt("EMAIL_RETRY_ATTEMPTS", 3),
			Timeout:       getEnvDuration("EMAIL_TIMEOUT", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:               getEnvString("LOG_LEVEL", "info"),
			Output:              getEnvString("LOG_OUTPUT", "both"),
			FilePath:            getEnvString("LOG_FILE_PATH", "/var/log/influencer-ai/app.log"),
			MaxSize:             getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups:          getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:              getEnvInt("LOG_MAX_AGE", 30),
			Compress:            getEnvBool("LOG_COMPRESS", true),
			OrchestratorLogPath: getEnvString("LOG_ORCHESTRATOR_PATH", "data/orchestrator.log"),
		},
		Metrics: MetricsConfig{
			Enabled:    getEnvBool("METRICS_ENABLED", true),
			Path:       getEnvString("METRICS_PATH", "/metrics"),
			CollectDB:  getEnvBool("METRICS_COLLECT_DB", true),
			CollectApp: getEnvBool("METRICS_COLLECT_APP", true),
		},
		Cache: CacheConfig{
			Enabled:         getEnvBool("CACHE_ENABLED", true),
			Provider:        getEnvString("CACHE_PROVIDER", "redis"),
			RedisURL:        getEnvString("CACHE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:         getEnvInt("CACHE_REDIS_DB", 0),
			RedisPrefix:     getEnvString("CACHE_REDIS_PREFIX", "influencerai:"),
			DefaultTTL:      getEnvDuration("CACHE_DEFAULT_TTL", 1*time.Hour),
			CleanupInterval: getEnvDuration("CACHE_CLEANUP_INTERVAL", 10*time.Minute),
		},
		Deployment: DeploymentConfig{
			Domain:      getEnvString("DOMAIN", "influencer-ai.com"),
			APIDomain:   getEnvString("API_DOMAIN", "api.influencer-ai.com"),
			Environment: getEnvString("APP_ENV", "production"),
			Version:     getEnvString("VERSION", "1.0.0"),
			CommitHash:  getEnvString("COMMIT_HASH", "unknown"),
			BuildTime:   getEnvString("BUILD_TIME", "unknown"),
		},
	}

	// Validate the loaded configuration
	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFile loads environment variables from .env file if it exists
func loadEnvFile() error {
	envFile := ".env"

	// Check if .env file exists
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		// .env file doesn't exist, continue with environment variables
		return nil
	}

	// Open .env file
	file, err := os.Open(envFile)
	if err != nil {
		return fmt.Errorf("failed to open .env file: %w", err)
	}
	defer file.Close()

	// Read file line by line
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key=value pairs
		if strings.Contains(line, "=") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				key := strings.TrimSpace(parts[0])
				value := strings.TrimSpace(parts[1])

				// Remove quotes if present
				if (strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)) ||
					(strings.HasPrefix(value, `'`) && strings.HasSuffix(value, `'`)) {
					value = value[1 : len(value)-1]
				}

				// Set environment variable if not already set
				if os.Getenv(key) == "" {
					os.Setenv(key, value)
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// ValidateProductionConfig validates the production configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errors []string

	// Validate database configuration
	if cfg.Database.Host == "" {
		errors = append(errors, "DB_HOST is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		errors = append(errors, "DB_PORT must be between 1 and 65535")
	}
	if cfg.Database.Name == "" {
		errors = append(errors, "DB_NAME is required")
	}
	if cfg.Database.User == "" {
		errors = append(errors, "DB_USER is required")
	}
	if cfg.Database.Password == "" {
		errors = append(errors, "DB_PASSWORD is required")
	}

	// Validate JWT configuration
	if cfg.JWT.SecretKey == "" && !cfg.JWT.UseRSAKeys {
		errors = append(errors, "JWT_SECRET_KEY is required")
	}
	if !cfg.JWT.UseRSAKeys && len(cfg.JWT.SecretKey) < 32 {
		errors = append(errors, "JWT_SECRET_KEY must be at least 32 characters long")
	}
	if cfg.JWT.AccessTokenTTL <= 0 {
		errors = append(errors, "JWT_ACCESS_TOKEN_TTL must be positive")
	}
	if cfg.JWT.RefreshTokenTTL <= 0 {
		errors = append(errors, "JWT_REFRESH_TOKEN_TTL must be positive")
	}
	if cfg.JWT.Issuer == "" {
		errors = append(errors, "JWT_ISSUER is required")
	}
	if cfg.JWT.Audience == "" {
		errors = append(errors, "JWT_AUDIENCE is required")
	}

	// Validate server configuration
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout <= 0 {
		errors = append(errors, "SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		errors = append(errors, "SERVER_WRITE_TIMEOUT must be positive")
	}
	if cfg.Server.IdleTimeout <= 0 {
		errors = append(errors, "SERVER_IDLE_TIMEOUT must be positive")
	}

	// Validate matcher configuration
	if cfg.Matcher.SimilarityWeight < 0 || cfg.Matcher.PriceWeight < 0 {
		errors = append(errors, "MATCHER weights must be non-negative")
	}
	if sum := cfg.Matcher.SimilarityWeight + cfg.Matcher.PriceWeight; sum < 0.999 || sum > 1.001 {
		errors = append(errors, "MATCHER_SIMILARITY_WEIGHT and MATCHER_PRICE_WEIGHT must sum to 1")
	}
	if cfg.Matcher.MinSimilarityFloor < 0 || cfg.Matcher.MinSimilarityFloor > 1 {
		errors = append(errors, "MATCHER_MIN_SIMILARITY_FLOOR must be in [0,1]")
	}
	if cfg.Matcher.DefaultTopN < 1 {
		errors = append(errors, "MATCHER_DEFAULT_TOP_N must be at least 1")
	}
	if cfg.Matcher.PriceWindowLow <= 0 || cfg.Matcher.PriceWindowHigh < cfg.Matcher.PriceWindowLow {
		errors = append(errors, "MATCHER price window bounds are invalid")
	}

	// Validate pricing configuration
	if cfg.Pricing.MicroTierFactor <= 0 || cfg.Pricing.MacroTierFactor <= 0 || cfg.Pricing.MegaTierFactor <= 0 {
		errors = append(errors, "PRICING tier factors must be positive")
	}
	if cfg.Pricing.MaxRateMarkup < 1 {
		errors = append(errors, "PRICING_MAX_RATE_MARKUP must be at least 1")
	}

	// Validate negotiation configuration
	if cfg.Negotiation.MaxAttempts < 1 {
		errors = append(errors, "NEGOTIATION_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.Negotiation.BackoffBase <= 0 || cfg.Negotiation.BackoffCap < cfg.Negotiation.BackoffBase {
		errors = append(errors, "NEGOTIATION backoff configuration is invalid")
	}
	if cfg.Negotiation.PollInterval <= 0 {
		errors = append(errors, "NEGOTIATION_POLL_INTERVAL must be positive")
	}
	if cfg.Negotiation.MaxCallDuration <= 0 {
		errors = append(errors, "NEGOTIATION_MAX_CALL_DURATION must be positive")
	}
	if cfg.Negotiation.AcceptFloorFactor <= 0 || cfg.Negotiation.AcceptFloorFactor > 1 {
		errors = append(errors, "NEGOTIATION_ACCEPT_FLOOR_FACTOR must be in (0,1]")
	}

	// Validate orchestrator configuration
	if cfg.Orchestrator.MaxConcurrentNegotiations < 1 {
		errors = append(errors, "ORCHESTRATOR_MAX_CONCURRENT_NEGOTIATIONS must be at least 1")
	}
	if cfg.Orchestrator.CampaignDeadline <= 0 {
		errors = append(errors, "ORCHESTRATOR_CAMPAIGN_DEADLINE must be positive")
	}
	if cfg.Orchestrator.RetainFinishedFor <= 0 {
		errors = append(errors, "ORCHESTRATOR_RETAIN_FINISHED_FOR must be positive")
	}

	// Validate embedding configuration
	if cfg.Embedding.Dimensions <= 0 {
		errors = append(errors, "EMBEDDING_DIMENSIONS must be positive")
	}

	// Validate email configuration if enabled
	if cfg.Email.Host != "" {
		if cfg.Email.Username == "" {
			errors = append(errors, "EMAIL_USERNAME is required for email configuration")
		}
		if cfg.Email.Password == "" {
			errors = append(errors, "EMAIL_PASSWORD is required for email configuration")
		}
		if cfg.Email.FromEmail == "" {
			errors = append(errors, "EMAIL_FROM_EMAIL is required for email configuration")
		}
	}

	// Validate logging configuration
	if cfg.Logging.Level != "" {
		validLevels := []string{"debug", "info", "warn", "error"}
		valid := false
		for _, level := range validLevels {
			if cfg.Logging.Level == level {
				valid = true
				break
			}
		}
		if !valid {
			errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %v", validLevels))
		}
	}

	// Validate cache configuration if enabled
	if cfg.Cache.Enabled {
		if cfg.Cache.Provider == "redis" && cfg.Cache.RedisURL == "" {
			errors = append(errors, "CACHE_REDIS_URL is required when cache is enabled with redis provider")
		}
	}

	// Return validation errors if any
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}
