package jwks

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrSourceRequired is returned by NewClient when no usable Source is given.
var ErrSourceRequired = errors.New("a jwks source is required, use Direct or Discover")

// ============================================================================
// Client Options
// ============================================================================

// ClientOption is how options for the Client are set up.
type ClientOption func(*Client) error

// WithHTTPClient sets a custom HTTP client used for discovery and JWKS
// requests. If not specified, http.DefaultClient is used.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) error {
		if httpClient == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.httpClient = httpClient
		return nil
	}
}

// WithBackoff sets the retry policy applied around each fetch operation.
// If not specified, NoBackoff is used and the first failure is terminal.
func WithBackoff(policy Backoff) ClientOption {
	return func(c *Client) error {
		if policy == nil {
			return fmt.Errorf("backoff policy cannot be nil")
		}
		c.backoff = policy
		return nil
	}
}

// WithClientLogger sets the logger for fetch and retry events.
func WithClientLogger(logger Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// ============================================================================
// Cache Options
// ============================================================================

// CacheOption is how options for the Cache are set up.
type CacheOption func(*Cache) error

// WithRefresh installs a background refresh that reloads the cache through
// load every interval, independently of demand. The first refresh happens
// immediately on construction.
func WithRefresh(interval time.Duration, load LoadFunc) CacheOption {
	return func(c *Cache) error {
		if interval <= 0 {
			return fmt.Errorf("refresh interval must be positive")
		}
		if load == nil {
			return fmt.Errorf("refresh load func cannot be nil")
		}
		c.refreshInterval = interval
		c.refreshLoad = load
		return nil
	}
}

// WithCacheLogger sets the logger for reload and refresh events.
func WithCacheLogger(logger Logger) CacheOption {
	return func(c *Cache) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// ============================================================================
// Cache Config
// ============================================================================

// CacheConfig is the caching policy a verifier applies to key sets. The zero
// value disables caching entirely.
type CacheConfig struct {
	// Enabled turns key-set caching on.
	Enabled bool

	// TTL bounds an entry's lifetime. Zero falls back to DefaultTTL.
	TTL time.Duration

	// RefreshInterval, when positive, additionally refreshes the cached key
	// set in the background on this interval so that steady-state
	// verifications rarely pay for a fetch.
	RefreshInterval time.Duration

	// ReloadOnKeyNotFound forces one key-set reload when a token references
	// a kid absent from the cached set, picking up freshly rotated keys
	// before giving up on the token.
	ReloadOnKeyNotFound bool
}
