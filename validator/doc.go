/*
Package validator checks the registered claims of a verified ID token
against a configurable policy.

The package contains no cryptography and no I/O. Signature
verification happens before a Policy ever sees the claims; Validate is a
pure function of the claims, the policy, and an instant supplied by the
caller.

# Policy

A Policy names the issuers and audiences a token may carry and whether the
time-based claims are enforced:

	policy := validator.Policy{
	    AllowedIssuers:   []string{"https://auth.example.com"},
	    AllowedAudiences: []string{"my-api"},
	    ValidateExpiry:   true,
	    Leeway:           30 * time.Second,
	}

	err := policy.Validate(claims, time.Now())

Empty issuer or audience lists disable the corresponding check entirely:
a policy with no AllowedIssuers never rejects a token for its iss claim.
DefaultPolicy returns the configuration used when the caller sets
nothing: expiry checked with DefaultLeeway of clock skew, all other
checks off.

# Claims

RegisteredClaims holds the RFC 7519 registered claims. The aud claim
decodes from either a bare string or an array of strings; numeric date
claims are unix seconds with zero meaning absent. The iat claim is
decoded but never validated.

# Error Classification

Validate wraps one of the package sentinels on failure, so callers
classify with errors.Is rather than message matching:

	if errors.Is(err, validator.ErrExpired) {
	    // prompt for a token refresh
	}

# Thread Safety

Policy values are plain data. Sharing one across goroutines is safe as
long as no goroutine mutates it.
*/
package validator
