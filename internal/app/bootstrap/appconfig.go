// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS); everything the
// notification service itself needs lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer token verification
	JWTSecret string // HMAC key shared with the identity provider
	JWTIssuer string // Expected "iss" claim (blank disables the check)

	// Listing defaults
	FeedDefaultLimit int // Broadcast feed size when the request gives no limit
	HistoryPageSize  int // Admin history page size when the request gives no limit

	// Report submissions per identity (0 disables throttling)
	FeedbackRateLimit  int
	FeedbackRateWindow time.Duration

	// Background jobs
	OrphanSweepInterval time.Duration // 0 disables the orphan receipt sweep

	// Store call deadlines (0 keeps the package default)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
