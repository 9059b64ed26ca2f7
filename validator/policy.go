package validator

import (
	"fmt"
	"time"
)

// DefaultLeeway is the clock skew tolerance applied by DefaultPolicy.
const DefaultLeeway = 60 * time.Second

// Policy describes which registered claims to check and against what.
// The zero value checks nothing; DefaultPolicy is the usual starting
// point. A Policy holds no clock and performs no I/O, so the same value
// can be shared across goroutines.
type Policy struct {
	// AllowedIssuers lists the accepted iss values. Empty disables the
	// issuer check entirely.
	AllowedIssuers []string

	// AllowedAudiences lists the accepted aud values. The token must
	// carry at least one of them. Empty disables the audience check.
	AllowedAudiences []string

	// ValidateExpiry requires an exp claim and rejects tokens whose
	// expiry lies more than Leeway in the past.
	ValidateExpiry bool

	// ValidateNotBefore requires an nbf claim and rejects tokens whose
	// not-before lies more than Leeway in the future.
	ValidateNotBefore bool

	// Leeway is the clock skew tolerance applied to exp and nbf.
	Leeway time.Duration

	// AllowMissingKeyAlgorithm permits a key that declares no alg to be
	// used with the algorithm asserted in the token header instead. It is
	// consulted during key selection, before the signature is checked;
	// Validate does not read it.
	AllowMissingKeyAlgorithm bool
}

// DefaultPolicy returns the policy applied when the caller configures
// nothing: expiry is checked with DefaultLeeway of skew, everything
// else is off.
func DefaultPolicy() Policy {
	return Policy{
		ValidateExpiry: true,
		Leeway:         DefaultLeeway,
	}
}

// Validate checks claims against the policy at the given instant and
// returns the first failure. The returned error wraps one of the
// claim-level sentinels from this package.
func (p Policy) Validate(claims RegisteredClaims, now time.Time) error {
	if len(p.AllowedIssuers) > 0 {
		if claims.Issuer == "" {
			return missingClaim("iss")
		}
		if !containsString(p.AllowedIssuers, claims.Issuer) {
			return fmt.Errorf("%w: %q", ErrIssuerMismatch, claims.Issuer)
		}
	}

	if len(p.AllowedAudiences) > 0 {
		if len(claims.Audience) == 0 {
			return missingClaim("aud")
		}
		if !p.audienceAllowed(claims.Audience) {
			return fmt.Errorf("%w: %q", ErrAudienceMismatch, []string(claims.Audience))
		}
	}

	if p.ValidateExpiry {
		if claims.ExpiresAt == 0 {
			return missingClaim("exp")
		}
		expiresAt := time.Unix(claims.ExpiresAt, 0)
		if now.Add(-p.Leeway).After(expiresAt) {
			return fmt.Errorf("%w: expired at %s", ErrExpired, expiresAt.UTC().Format(time.RFC3339))
		}
	}

	if p.ValidateNotBefore {
		if claims.NotBefore == 0 {
			return missingClaim("nbf")
		}
		notBefore := time.Unix(claims.NotBefore, 0)
		if now.Add(p.Leeway).Before(notBefore) {
			return fmt.Errorf("%w: valid from %s", ErrNotYetValid, notBefore.UTC().Format(time.RFC3339))
		}
	}

	return nil
}

func (p Policy) audienceAllowed(audience Audience) bool {
	for _, allowed := range p.AllowedAudiences {
		if audience.Contains(allowed) {
			return true
		}
	}
	return false
}

func containsString(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
