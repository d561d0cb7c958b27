// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by backends that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scipaper/0.1").
	UserAgent string

	// MaxRetries bounds retry attempts on transport failure (default 1).
	MaxRetries int
}

// CrossrefConfig holds settings for the crossref identifier resolver.
type CrossrefConfig struct {
	HTTPConfig

	// Email is attached to every request as the mailto query key, which
	// moves requests into the polite pool. Optional.
	Email string
}

// CoreConfig holds settings for the CORE repository backend.
type CoreConfig struct {
	HTTPConfig

	// APIKey is the bearer-style key sent as the apiKey query parameter.
	// Required; backend init fails without it.
	APIKey string

	// RateLimit is advisory (requests per time unit the key allows).
	RateLimit int
}

// ScihubConfig holds settings for the PDF resolver backend.
type ScihubConfig struct {
	HTTPConfig

	// BaseURL is the mirror the resolver scrapes. Required; backend init
	// fails without it.
	BaseURL string
}

// LibraryConfig holds settings for the saved-papers catalog.
type LibraryConfig struct {
	// Dir is the base directory for the catalog (contains library.db and
	// pdf/, metadata/ subdirectories).
	Dir string
}
