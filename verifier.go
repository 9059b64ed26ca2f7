package idtokenverifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"

	"github.com/attestra/go-idtoken-verifier/jwks"
	"github.com/attestra/go-idtoken-verifier/validator"
)

// Metric names reported through the Metrics interface.
const (
	metricVerifyTotal    = "idtoken_verify_total"
	metricVerifyDuration = "idtoken_verify_duration_seconds"
	metricJWKSReloads    = "idtoken_jwks_reload_total"
)

// Metric tag keys.
const (
	tagVerifier = "verifier"
	tagResult   = "result"
	tagReason   = "reason"
)

// Reasons reported on the key set reload counter.
const (
	reloadReasonMiss        = "miss"
	reloadReasonKeyNotFound = "key_not_found"
	reloadReasonRefresh     = "refresh"
)

// Verifier verifies OIDC ID tokens against the key set of a single
// provider. It owns one key set client and, when caching is enabled, one
// cache with an optional background refresh job. A Verifier is safe for
// concurrent use.
type Verifier struct {
	client *jwks.Client
	cache  *jwks.Cache

	policy              validator.Policy
	reloadOnKeyNotFound bool

	logger  Logger
	metrics Metrics
	tracer  Tracer
	name    string

	// Temporary fields used during construction
	source      jwks.Source
	httpClient  *http.Client
	backoff     jwks.Backoff
	cacheConfig jwks.CacheConfig
}

// New constructs a new Verifier instance with the supplied options.
// All parameters are passed via options (pure options pattern); WithSource
// is required.
//
// Example:
//
//	verifier, err := idtokenverifier.New(
//	    idtokenverifier.WithSource(jwks.DiscoverIssuer(issuerURL)),
//	    idtokenverifier.WithIssuers(issuerURL.String()),
//	    idtokenverifier.WithAudiences("my-api"),
//	)
//	if err != nil {
//	    log.Fatalf("failed to create verifier: %v", err)
//	}
//	defer verifier.Close()
func New(opts ...Option) (*Verifier, error) {
	v := &Verifier{
		policy:  validator.DefaultPolicy(),
		logger:  &NoopLogger{},
		metrics: &NoopMetrics{},
		tracer:  &NoopTracer{},
		name:    "default",
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if v.source.IsZero() {
		return nil, ErrSourceRequired
	}

	if err := v.buildKeySetAccess(); err != nil {
		return nil, fmt.Errorf("invalid verifier configuration: %w", err)
	}

	return v, nil
}

// buildKeySetAccess creates the key set client and, when enabled, the
// cache from the collected construction fields.
func (v *Verifier) buildKeySetAccess() error {
	clientOpts := []jwks.ClientOption{
		jwks.WithClientLogger(v.logger),
	}
	if v.httpClient != nil {
		clientOpts = append(clientOpts, jwks.WithHTTPClient(v.httpClient))
	}
	if v.backoff != nil {
		clientOpts = append(clientOpts, jwks.WithBackoff(v.backoff))
	}

	client, err := jwks.NewClient(v.source, clientOpts...)
	if err != nil {
		return err
	}
	v.client = client

	if !v.cacheConfig.Enabled {
		return nil
	}

	cacheOpts := []jwks.CacheOption{
		jwks.WithCacheLogger(v.logger),
	}
	if v.cacheConfig.RefreshInterval > 0 {
		cacheOpts = append(cacheOpts, jwks.WithRefresh(v.cacheConfig.RefreshInterval, v.refreshKeySet))
	}

	cache, err := jwks.NewCache(v.cacheConfig.TTL, cacheOpts...)
	if err != nil {
		return err
	}
	v.cache = cache
	v.reloadOnKeyNotFound = v.cacheConfig.ReloadOnKeyNotFound

	return nil
}

// Close stops the background refresh job when one is running. The
// verifier must not be used after Close.
func (v *Verifier) Close() {
	if v.cache != nil {
		v.cache.Close()
	}
}

// Verify checks the raw compact token and, on success, decodes its
// verified payload into claims when claims is non-nil. The returned error
// wraps one of the package kind sentinels; claim-level failures
// additionally match the validator package sentinels.
func (v *Verifier) Verify(ctx context.Context, rawToken string, claims any) error {
	start := time.Now()
	ctx, span := v.tracer.StartSpan(ctx, "idtoken.verify")
	defer span.Finish()
	span.SetTag(tagVerifier, v.name)

	err := v.verify(ctx, rawToken, claims, span)

	result := resultLabel(err)
	span.SetTag(tagResult, result)
	v.metrics.IncCounter(metricVerifyTotal, map[string]string{tagVerifier: v.name, tagResult: result})
	v.metrics.ObserveHistogram(metricVerifyDuration, time.Since(start).Seconds(), map[string]string{tagVerifier: v.name})

	if err != nil {
		v.logger.Warnf("id token verification failed: %v", err)
		return err
	}
	v.logger.Debugf("id token verified in %s", time.Since(start))
	return nil
}

func (v *Verifier) verify(ctx context.Context, rawToken string, claims any, span Span) error {
	message, err := jws.ParseString(rawToken)
	if err != nil {
		return &verificationError{kind: ErrMalformedHeader, details: err}
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return &verificationError{kind: ErrMalformedHeader, details: errors.New("token carries no signature")}
	}
	headers := signatures[0].ProtectedHeaders()
	if headers == nil {
		return &verificationError{kind: ErrUnknown, details: errors.New("token signature carries no protected headers")}
	}

	kid := headers.KeyID()
	if kid == "" {
		return &verificationError{kind: ErrMissingKeyID}
	}
	span.SetTag("kid", kid)

	key, err := v.lookupKey(ctx, kid)
	if err != nil {
		return err
	}

	algorithm, err := v.signatureAlgorithm(key, headers)
	if err != nil {
		return err
	}
	span.SetTag("alg", algorithm.String())

	var rawKey any
	if err := key.Raw(&rawKey); err != nil {
		return &verificationError{kind: ErrInvalidKey, details: err}
	}

	payload, err := jws.Verify([]byte(rawToken), jws.WithKey(algorithm, rawKey))
	if err != nil {
		return &verificationError{kind: ErrValidationFailed, details: err}
	}

	var registered validator.RegisteredClaims
	if err := json.Unmarshal(payload, &registered); err != nil {
		return &verificationError{kind: ErrInvalidToken, details: err}
	}

	if err := v.policy.Validate(registered, time.Now()); err != nil {
		return &verificationError{kind: ErrValidationFailed, details: err}
	}

	if claims != nil {
		if err := json.Unmarshal(payload, claims); err != nil {
			return &verificationError{kind: ErrInvalidToken, details: err}
		}
	}

	return nil
}

// lookupKey resolves the key set and finds the key for kid, forcing one
// cache reload when the kid is unknown and ReloadOnKeyNotFound is set.
func (v *Verifier) lookupKey(ctx context.Context, kid string) (jwk.Key, error) {
	keySet, err := v.keySet(ctx)
	if err != nil {
		return nil, &verificationError{kind: ErrKeySetUnavailable, details: err}
	}

	key, found := keySet.LookupKeyID(kid)
	if !found && v.cache != nil && v.reloadOnKeyNotFound {
		v.logger.Debugf("key %q not in the cached key set, forcing a reload", kid)
		v.metrics.IncCounter(metricJWKSReloads, map[string]string{tagVerifier: v.name, tagReason: reloadReasonKeyNotFound})

		keySet, err = v.cache.ReloadWith(ctx, v.client.Fetch)
		if err != nil {
			return nil, &verificationError{kind: ErrKeySetUnavailable, details: err}
		}
		key, found = keySet.LookupKeyID(kid)
	}
	if !found {
		return nil, &verificationError{kind: ErrKeyNotFound, details: fmt.Errorf("no key with kid %q", kid)}
	}

	return key, nil
}

func (v *Verifier) keySet(ctx context.Context) (jwk.Set, error) {
	if v.cache == nil {
		return v.client.Fetch(ctx)
	}
	return v.cache.GetOrLoad(ctx, func(ctx context.Context) (jwk.Set, error) {
		v.metrics.IncCounter(metricJWKSReloads, map[string]string{tagVerifier: v.name, tagReason: reloadReasonMiss})
		return v.client.Fetch(ctx)
	})
}

// refreshKeySet is the load func handed to the cache refresh job.
func (v *Verifier) refreshKeySet(ctx context.Context) (jwk.Set, error) {
	v.metrics.IncCounter(metricJWKSReloads, map[string]string{tagVerifier: v.name, tagReason: reloadReasonRefresh})
	return v.client.Fetch(ctx)
}

// signatureAlgorithm resolves the algorithm to verify with. The key's
// declared alg wins; the token header is only consulted when the key
// declares none and the fallback is allowed, since the header is under
// the token issuer's control.
func (v *Verifier) signatureAlgorithm(key jwk.Key, headers jws.Headers) (jwa.SignatureAlgorithm, error) {
	declared := key.Algorithm()
	if declared == nil || declared.String() == "" {
		if !v.policy.AllowMissingKeyAlgorithm {
			return "", &verificationError{
				kind:    ErrMissingKeyAlgorithm,
				details: fmt.Errorf("key %q declares no algorithm", key.KeyID()),
			}
		}
		v.logger.Debugf("key %q declares no algorithm, using %q from the token header", key.KeyID(), headers.Algorithm())
		return usableSignatureAlgorithm(headers.Algorithm())
	}

	algorithm, ok := declared.(jwa.SignatureAlgorithm)
	if !ok {
		return "", &verificationError{
			kind:    ErrUnsupportedAlgorithm,
			details: fmt.Errorf("key %q declares %q which is not a signature algorithm", key.KeyID(), declared),
		}
	}
	return usableSignatureAlgorithm(algorithm)
}

func usableSignatureAlgorithm(algorithm jwa.SignatureAlgorithm) (jwa.SignatureAlgorithm, error) {
	if algorithm == "" {
		return "", &verificationError{
			kind:    ErrMissingKeyAlgorithm,
			details: errors.New("no algorithm declared on the key or the token header"),
		}
	}
	if algorithm == jwa.NoSignature {
		return "", &verificationError{
			kind:    ErrUnsupportedAlgorithm,
			details: errors.New(`"none" is not acceptable for verification`),
		}
	}
	return algorithm, nil
}

// VerifyToken verifies rawToken and returns its claims decoded into T.
//
// Example:
//
//	type profileClaims struct {
//	    Subject string `json:"sub"`
//	    Email   string `json:"email"`
//	}
//
//	claims, err := idtokenverifier.VerifyToken[profileClaims](ctx, verifier, rawToken)
//	if err != nil {
//	    log.Printf("rejected: %v", err)
//	    return
//	}
//	fmt.Println(claims.Email)
func VerifyToken[T any](ctx context.Context, v *Verifier, rawToken string) (T, error) {
	var claims T
	if err := v.Verify(ctx, rawToken, &claims); err != nil {
		var zero T
		return zero, err
	}
	return claims, nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedHeader):
		return "malformed_header"
	case errors.Is(err, ErrMissingKeyID):
		return "missing_key_id"
	case errors.Is(err, ErrKeySetUnavailable):
		return "key_set_unavailable"
	case errors.Is(err, ErrKeyNotFound):
		return "key_not_found"
	case errors.Is(err, ErrMissingKeyAlgorithm):
		return "missing_key_algorithm"
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return "unsupported_algorithm"
	case errors.Is(err, ErrInvalidKey):
		return "invalid_key"
	case errors.Is(err, ErrValidationFailed):
		return "validation_failed"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	default:
		return "unknown"
	}
}
