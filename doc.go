/*
Package idtokenverifier verifies OIDC ID tokens.

A Verifier resolves the signing keys of a single provider, either from a
JWKS endpoint directly or through the provider's OIDC discovery document,
verifies the token signature against the key named by the token's kid,
and checks the registered claims against a configurable policy. Key set
fetching supports retry policies, TTL caching, background refresh and a
forced reload when a token names a key the cached set does not contain.

# Quick Start

	import (
	    "github.com/attestra/go-idtoken-verifier"
	    "github.com/attestra/go-idtoken-verifier/jwks"
	)

	func main() {
	    issuerURL, err := url.Parse("https://auth.example.com")
	    if err != nil {
	        log.Fatal(err)
	    }

	    verifier, err := idtokenverifier.New(
	        idtokenverifier.WithSource(jwks.DiscoverIssuer(issuerURL)),
	        idtokenverifier.WithIssuers(issuerURL.String()),
	        idtokenverifier.WithAudiences("my-api"),
	        idtokenverifier.WithCache(jwks.CacheConfig{Enabled: true}),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }
	    defer verifier.Close()

	    var claims struct {
	        Subject string `json:"sub"`
	        Email   string `json:"email"`
	    }
	    if err := verifier.Verify(ctx, rawToken, &claims); err != nil {
	        log.Printf("rejected: %v", err)
	        return
	    }
	    fmt.Println(claims.Email)
	}

The generic helper avoids declaring the claims variable up front:

	claims, err := idtokenverifier.VerifyToken[myClaims](ctx, verifier, rawToken)

# Configuration Options

All configuration is done through functional options:

Required:
  - WithSource: where the key set comes from (jwks.Direct or jwks.Discover)

Optional:
  - WithHTTPClient: HTTP client for discovery and key set requests
  - WithBackoff: retry policy for key set fetches
  - WithCache: key set caching, background refresh, forced reload
  - WithIssuers, WithAudiences: allowed iss and aud values
  - WithExpiryCheck, WithNotBeforeCheck, WithLeeway: time-based claims
  - WithAllowMissingKeyAlgorithm: header-alg fallback for keys without alg
  - WithLogger, WithMetrics, WithTracer, WithName: observability

# Error Classification

Every verification failure wraps one of the package kind sentinels, so
callers branch with errors.Is and never match messages:

	err := verifier.Verify(ctx, rawToken, nil)
	switch {
	case errors.Is(err, idtokenverifier.ErrKeySetUnavailable):
	    // provider unreachable, retry later
	case errors.Is(err, idtokenverifier.ErrValidationFailed):
	    // bad signature or a claim out of policy
	}

Claim-level failures stay reachable through the chain:

	if errors.Is(err, validator.ErrExpired) {
	    // ask the client to refresh its token
	}

So do the fetch-level kinds from the jwks package, underneath
ErrKeySetUnavailable.

# Caching

Without WithCache every verification fetches the key set. With caching
enabled the set is fetched once and served until the TTL expires; an
optional refresh job re-fetches in the background so callers rarely wait
on the network. ReloadOnKeyNotFound covers provider key rotation: a
token naming an unknown kid triggers exactly one forced reload before
the verifier gives up on the key.

# Observability

Logging, metrics and tracing all default to no-ops. WithLogger accepts
anything implementing the four-method Logger interface; adapters for
logrus, zap and zerolog ship with the package. WithMetrics feeds
idtoken_verify_total, idtoken_verify_duration_seconds and
idtoken_jwks_reload_total, labelled with the verifier's name; a
Prometheus-backed implementation is provided. WithTracer starts one span
per verification tagged with kid, alg and result.

# Thread Safety

The Verifier is immutable after creation and safe for concurrent use.
Close only needs to be called when caching with a refresh interval is
enabled, but is always safe to call.
*/
package idtokenverifier
