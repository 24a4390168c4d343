package utils

import (
	"time"
)

// Token time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Campaign domain constants
const (
	// EmbeddingDimensions is the fixed vector size used by the fallback embedder
	EmbeddingDimensions = 384

	// USDCurrency is the currency all rates and budgets are denominated in
	USDCurrency = "USD"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// ContextKey is the type for request-scoped context values
type ContextKey string

// Context keys for request-scoped observability values
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)
