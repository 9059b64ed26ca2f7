package idtokenverifier

import (
	"errors"
	"fmt"
)

// Verification failure kinds. Verify wraps every failure in one of these
// so callers can classify with errors.Is instead of matching messages.
var (
	// ErrMalformedHeader is returned when the token is not a compact JWS
	// or its header cannot be decoded.
	ErrMalformedHeader = errors.New("malformed id token header")

	// ErrMissingKeyID is returned when the token header carries no kid.
	ErrMissingKeyID = errors.New("id token header has no key id")

	// ErrKeyNotFound is returned when the key set contains no key with
	// the token's kid, after any configured forced reload.
	ErrKeyNotFound = errors.New("no key found for the id token key id")

	// ErrMissingKeyAlgorithm is returned when the matched key declares no
	// algorithm and falling back to the token header is not allowed.
	ErrMissingKeyAlgorithm = errors.New("key declares no signature algorithm")

	// ErrUnsupportedAlgorithm is returned when the declared algorithm is
	// not a supported signature algorithm, including "none".
	ErrUnsupportedAlgorithm = errors.New("unsupported signature algorithm")

	// ErrInvalidKey is returned when the matched key cannot be
	// materialized into usable key material.
	ErrInvalidKey = errors.New("invalid key in key set")

	// ErrInvalidToken is returned when the verified payload cannot be
	// decoded into claims.
	ErrInvalidToken = errors.New("invalid id token payload")

	// ErrValidationFailed is returned when the signature does not verify
	// or a registered claim fails the policy. Claim failures additionally
	// match the validator package sentinels through errors.Is.
	ErrValidationFailed = errors.New("id token validation failed")

	// ErrKeySetUnavailable is returned when the key set cannot be
	// fetched. The jwks package error kinds stay reachable via errors.Is.
	ErrKeySetUnavailable = errors.New("key set unavailable")

	// ErrUnknown is returned for failures that match no other kind.
	ErrUnknown = errors.New("unknown verification failure")
)

// verificationError wraps a failure cause with one of the kind sentinels.
// We do not expose this publicly because the interface methods of Is and
// Unwrap should give the user all they need.
type verificationError struct {
	kind    error
	details error
}

// Is allows the error to support equality to its kind sentinel.
func (e *verificationError) Is(target error) bool {
	return target == e.kind
}

// Error returns a string representation of the error.
func (e *verificationError) Error() string {
	if e.details == nil {
		return e.kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.kind, e.details)
}

// Unwrap allows the error to support equality to the
// underlying cause and not just the kind sentinel.
func (e *verificationError) Unwrap() error {
	return e.details
}
