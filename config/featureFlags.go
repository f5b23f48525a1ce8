package config

import (
	"os"
	"strings"
)

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// OutboxDirectProcessing processes outbox records in-process instead of via Pub/Sub push.
//
// Set via env:
// - OUTBOX_DIRECT_PROCESSING=true
func OutboxDirectProcessing() bool {
	return envBool("OUTBOX_DIRECT_PROCESSING")
}

// PubSubConfigured reports whether a topic is configured for the outbox dispatcher.
func PubSubConfigured() bool {
	return strings.TrimSpace(os.Getenv("PUBSUB_TOPIC")) != ""
}

// ClosingReplacesTransactionsByDefault makes every saved closing delete that day's
// store transactions unless the request says otherwise.
//
// Set via env:
// - CLOSING_REPLACES_TRANSACTIONS=true
func ClosingReplacesTransactionsByDefault() bool {
	return envBool("CLOSING_REPLACES_TRANSACTIONS")
}

// SkipMigrations disables AutoMigrate on startup.
func SkipMigrations() bool {
	return envBool("SKIP_MIGRATIONS")
}

// DefaultTimezone is used for client bases without an explicit timezone.
func DefaultTimezone() string {
	if tz := strings.TrimSpace(os.Getenv("DEFAULT_TIMEZONE")); tz != "" {
		return tz
	}
	return "America/Sao_Paulo"
}
