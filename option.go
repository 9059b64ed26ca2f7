package idtokenverifier

import (
	"errors"
	"net/http"
	"time"

	"github.com/attestra/go-idtoken-verifier/jwks"
)

// Option configures the Verifier.
// Returns error for validation failures.
type Option func(*Verifier) error

// WithSource sets where the verifier obtains its key set (REQUIRED).
// Use jwks.Direct for a JWKS endpoint URL or jwks.Discover for an OIDC
// discovery document URL.
//
// Example:
//
//	issuerURL, err := url.Parse("https://auth.example.com")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	verifier, err := idtokenverifier.New(
//	    idtokenverifier.WithSource(jwks.DiscoverIssuer(issuerURL)),
//	)
func WithSource(source jwks.Source) Option {
	return func(v *Verifier) error {
		if source.IsZero() {
			return ErrSourceRequired
		}
		v.source = source
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for discovery and key set
// requests.
//
// Default: http.DefaultClient
func WithHTTPClient(client *http.Client) Option {
	return func(v *Verifier) error {
		if client == nil {
			return ErrHTTPClientNil
		}
		v.httpClient = client
		return nil
	}
}

// WithBackoff sets the retry policy applied to key set fetches. See the
// jwks package for the available policies.
//
// Default: jwks.NoBackoff (a single attempt)
func WithBackoff(policy jwks.Backoff) Option {
	return func(v *Verifier) error {
		if policy == nil {
			return ErrBackoffNil
		}
		v.backoff = policy
		return nil
	}
}

// WithCache enables key set caching. The zero config leaves caching off,
// in which case every verification fetches the key set.
//
// Example:
//
//	verifier, err := idtokenverifier.New(
//	    idtokenverifier.WithSource(source),
//	    idtokenverifier.WithCache(jwks.CacheConfig{
//	        Enabled:             true,
//	        TTL:                 5 * time.Minute,
//	        RefreshInterval:     time.Minute,
//	        ReloadOnKeyNotFound: true,
//	    }),
//	)
func WithCache(config jwks.CacheConfig) Option {
	return func(v *Verifier) error {
		if config.TTL < 0 {
			return ErrCacheTTLNegative
		}
		if config.RefreshInterval < 0 {
			return ErrRefreshIntervalNegative
		}
		v.cacheConfig = config
		return nil
	}
}

// WithIssuers sets the iss values tokens may carry. The token issuer must
// equal one of them. When no issuers are configured the issuer claim is
// not checked.
func WithIssuers(issuers ...string) Option {
	return func(v *Verifier) error {
		if len(issuers) == 0 {
			return ErrIssuersEmpty
		}
		for _, issuer := range issuers {
			if issuer == "" {
				return ErrIssuerEmpty
			}
		}
		v.policy.AllowedIssuers = issuers
		return nil
	}
}

// WithAudiences sets the aud values tokens may carry. The token must
// carry at least one of them. When no audiences are configured the
// audience claim is not checked.
func WithAudiences(audiences ...string) Option {
	return func(v *Verifier) error {
		if len(audiences) == 0 {
			return ErrAudiencesEmpty
		}
		for _, audience := range audiences {
			if audience == "" {
				return ErrAudienceEmpty
			}
		}
		v.policy.AllowedAudiences = audiences
		return nil
	}
}

// WithExpiryCheck sets whether the exp claim is required and enforced.
//
// Default: true
func WithExpiryCheck(value bool) Option {
	return func(v *Verifier) error {
		v.policy.ValidateExpiry = value
		return nil
	}
}

// WithNotBeforeCheck sets whether the nbf claim is required and enforced.
//
// Default: false
func WithNotBeforeCheck(value bool) Option {
	return func(v *Verifier) error {
		v.policy.ValidateNotBefore = value
		return nil
	}
}

// WithLeeway sets the clock skew tolerance applied to the exp and nbf
// claims.
//
// Default: validator.DefaultLeeway (60 seconds)
func WithLeeway(leeway time.Duration) Option {
	return func(v *Verifier) error {
		if leeway < 0 {
			return ErrLeewayNegative
		}
		v.policy.Leeway = leeway
		return nil
	}
}

// WithAllowMissingKeyAlgorithm sets whether a key that declares no alg may
// be used with the algorithm from the token header instead. Only enable
// this when the key set operator is trusted: the token header is
// attacker-controlled, and the fallback lets the token pick the algorithm
// the key is verified with.
//
// Default: false
func WithAllowMissingKeyAlgorithm(value bool) Option {
	return func(v *Verifier) error {
		v.policy.AllowMissingKeyAlgorithm = value
		return nil
	}
}

// WithLogger sets the logger used throughout the verification flow and by
// the key set client and cache.
//
// Default: NoopLogger
func WithLogger(logger Logger) Option {
	return func(v *Verifier) error {
		if logger == nil {
			return ErrLoggerNil
		}
		v.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics sink for verification counters and
// durations.
//
// Default: NoopMetrics
func WithMetrics(metrics Metrics) Option {
	return func(v *Verifier) error {
		if metrics == nil {
			return ErrMetricsNil
		}
		v.metrics = metrics
		return nil
	}
}

// WithTracer sets the tracer used to start one span per verification.
//
// Default: NoopTracer
func WithTracer(tracer Tracer) Option {
	return func(v *Verifier) error {
		if tracer == nil {
			return ErrTracerNil
		}
		v.tracer = tracer
		return nil
	}
}

// WithName sets the instance name attached to logs, metrics and spans.
// Useful when one process verifies tokens from several providers.
//
// Default: "default"
func WithName(name string) Option {
	return func(v *Verifier) error {
		if name == "" {
			return ErrNameEmpty
		}
		v.name = name
		return nil
	}
}

// Sentinel errors for configuration validation
var (
	ErrSourceRequired          = errors.New("a jwks source is required (use WithSource)")
	ErrHTTPClientNil           = errors.New("http client cannot be nil")
	ErrBackoffNil              = errors.New("backoff policy cannot be nil")
	ErrCacheTTLNegative        = errors.New("cache ttl cannot be negative")
	ErrRefreshIntervalNegative = errors.New("refresh interval cannot be negative")
	ErrIssuersEmpty            = errors.New("issuers list cannot be empty")
	ErrIssuerEmpty             = errors.New("issuer cannot be empty")
	ErrAudiencesEmpty          = errors.New("audiences list cannot be empty")
	ErrAudienceEmpty           = errors.New("audience cannot be empty")
	ErrLeewayNegative          = errors.New("leeway cannot be negative")
	ErrLoggerNil               = errors.New("logger cannot be nil")
	ErrMetricsNil              = errors.New("metrics cannot be nil")
	ErrTracerNil               = errors.New("tracer cannot be nil")
	ErrNameEmpty               = errors.New("verifier name cannot be empty")
)
