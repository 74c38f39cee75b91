// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/noticeboard/internal/app/notify"
	"github.com/dalemusser/noticeboard/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the noticeboard service.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: NOTICEBOARD_MONGO_URI, NOTICEBOARD_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "noticeboard", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer tokens
	{Name: "jwt_secret", Default: devSecret, Desc: "HMAC secret for bearer tokens (at least 32 bytes)"},
	{Name: "jwt_issuer", Default: "", Desc: "Required token issuer (blank accepts any)"},

	// Listing defaults
	{Name: "feed_default_limit", Default: notify.DefaultFeedLimit, Desc: "Broadcast feed size when no limit is given"},
	{Name: "history_page_size", Default: notify.DefaultHistoryPageSize, Desc: "Admin message history page size when no limit is given"},

	// Report throttling
	{Name: "feedback_rate_limit", Default: 5, Desc: "Bug/feature reports allowed per identity per window (0 disables)"},
	{Name: "feedback_rate_window", Default: "10m", Desc: "Window for feedback_rate_limit"},

	// Background jobs
	{Name: "orphan_sweep_interval", Default: "1h", Desc: "How often to remove receipts of deleted broadcasts (0 disables)"},

	// Store deadlines
	{Name: "timeout_short", Default: "", Desc: "Deadline for single-document store calls (e.g., 5s)"},
	{Name: "timeout_medium", Default: "", Desc: "Deadline for list and send store calls (e.g., 10s)"},
	{Name: "timeout_long", Default: "", Desc: "Deadline for bulk store calls and sweeps (e.g., 30s)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges, in order of precedence,
// flags > env (NOTICEBOARD_*) > config files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "NOTICEBOARD", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),

		FeedDefaultLimit: appValues.Int("feed_default_limit"),
		HistoryPageSize:  appValues.Int("history_page_size"),

		FeedbackRateLimit:  appValues.Int("feedback_rate_limit"),
		FeedbackRateWindow: appValues.Duration("feedback_rate_window", 10*time.Minute),

		OrphanSweepInterval: appValues.Duration("orphan_sweep_interval", time.Hour),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI format is checked before attempting to connect, and the
// token secret must be long enough for HS256.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if len(appCfg.JWTSecret) < auth.MinSecretLength {
		return fmt.Errorf("jwt_secret must be at least %d bytes", auth.MinSecretLength)
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}
	if appCfg.FeedbackRateLimit > 0 && appCfg.FeedbackRateWindow <= 0 {
		return fmt.Errorf("feedback_rate_window must be positive when feedback_rate_limit is set")
	}
	if appCfg.OrphanSweepInterval < 0 {
		return fmt.Errorf("orphan_sweep_interval must not be negative")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.JWTSecret == devSecret {
		return fmt.Errorf("jwt_secret must be changed from the development default in prod")
	}
	return nil
}

const devSecret = "dev-only-change-me-please-0123456789ABCDEF"
