package jwks

import (
	"errors"
	"fmt"
)

// Sentinel errors naming the stage at which a fetch failed. Callers classify
// failures with errors.Is against these; messages are not part of the
// contract.
var (
	// ErrDiscoveryRequestFailed is returned when the OIDC discovery document
	// could not be retrieved (transport failure or non-2xx status).
	ErrDiscoveryRequestFailed = errors.New("oidc discovery request failed")

	// ErrDiscoveryResponseInvalid is returned when the discovery document
	// could not be decoded or carries no usable jwks_uri.
	ErrDiscoveryResponseInvalid = errors.New("invalid oidc discovery response")

	// ErrJWKSRequestFailed is returned when the JWKS document could not be
	// retrieved (transport failure or non-2xx status).
	ErrJWKSRequestFailed = errors.New("jwks request failed")

	// ErrJWKSResponseInvalid is returned when the JWKS document could not be
	// parsed as a JWK set.
	ErrJWKSResponseInvalid = errors.New("invalid jwks response")
)

// FetchError tags a failed fetch with the stage that failed. errors.Is
// matches the stage sentinel and errors.Unwrap yields the underlying cause,
// so both classification and inspection work through the standard errors
// package.
type FetchError struct {
	kind  error
	cause error
}

func newFetchError(kind, cause error) *FetchError {
	return &FetchError{kind: kind, cause: cause}
}

func (e *FetchError) Error() string {
	if e.cause == nil {
		return e.kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.kind, e.cause)
}

func (e *FetchError) Is(target error) bool {
	return target == e.kind
}

func (e *FetchError) Unwrap() error {
	return e.cause
}

// Kind returns the stage sentinel the error was tagged with.
func (e *FetchError) Kind() error {
	return e.kind
}
