/*
Package jwks fetches and caches JSON Web Key Sets for ID-token verification.

The package has two building blocks. Client retrieves a key set from a
Source, either directly from a JWKS URL or through an OIDC discovery
document, with a configurable retry policy around the whole operation. Cache
keeps the most recently fetched set in memory for a bounded time, with an
optional background refresh.

# Sources

A Source is one of two closed variants:

	src := jwks.Direct(jwksURL)       // url serves the JWKS document itself
	src := jwks.Discover(metadataURL) // url serves an OIDC discovery document

With Discover, the client first retrieves the discovery document and follows
its jwks_uri member. Discovery runs on every fetch, so a provider that moves
its JWKS endpoint is picked up without reconfiguration. DiscoverIssuer
appends the conventional /.well-known/openid-configuration path to an issuer
URL for callers who hold only the issuer.

# Retries

Every fetch is wrapped in the client's Backoff policy, again a closed set of
variants: NoBackoff (single attempt, the default), ConstantBackoff and
ExponentialBackoff. A retried attempt repeats the full operation including
discovery. Retrying stops when the retry budget or the total-delay budget of
the policy is exhausted, and the last error is returned.

	client, err := jwks.NewClient(src,
		jwks.WithBackoff(jwks.ExponentialBackoff{
			InitialDelay: 500 * time.Millisecond,
			Factor:       2,
			MaxDelay:     8 * time.Second,
			MaxRetries:   5,
			Jitter:       true,
		}),
	)

Fetch failures carry the stage that failed and are classified with
errors.Is against ErrDiscoveryRequestFailed, ErrDiscoveryResponseInvalid,
ErrJWKSRequestFailed and ErrJWKSResponseInvalid.

# Cache Behavior

A Cache holds exactly one entry: the last key set loaded and when it was
loaded. GetOrLoad serves that entry while it is younger than the TTL and
otherwise reloads under the cache's write lock. The reload is
unconditional: two goroutines that both observed an expired entry both load,
one after the other, and the later result replaces the earlier. Key sets are
replaced, never mutated, so a set obtained from the cache remains safe to
read after replacement.

ReloadWith bypasses the freshness check entirely; verifiers use it to force
a reload when a token references an unknown key ID.

With WithRefresh, the cache additionally reloads itself on a fixed interval,
starting immediately, regardless of demand. A failed refresh keeps the
previous entry and logs a warning, so verification degrades to
possibly-stale keys rather than failing outright.

# Thread Safety

Client is immutable after construction. Cache guards its single entry slot
with an RWMutex; all of its methods are safe for concurrent use. Owners of a
cache with background refresh must call Close on every teardown path; Close
cancels the refresh goroutine without waiting for an in-flight refresh,
whose result is then discarded.
*/
package jwks
