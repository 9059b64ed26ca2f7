package validator

import (
	"errors"
	"fmt"
)

// Claim-level validation errors. Policy.Validate wraps these so callers
// can classify failures with errors.Is without matching messages.
var (
	// ErrMissingClaim is returned when a claim required by the policy is
	// absent from the token. The wrapped message names the claim.
	ErrMissingClaim = errors.New("required claim is missing")

	// ErrIssuerMismatch is returned when the iss claim is not in the
	// policy's allowed issuers.
	ErrIssuerMismatch = errors.New("issuer is not allowed")

	// ErrAudienceMismatch is returned when the aud claim shares no value
	// with the policy's allowed audiences.
	ErrAudienceMismatch = errors.New("audience is not allowed")

	// ErrExpired is returned when the exp claim is further in the past
	// than the policy's leeway tolerates.
	ErrExpired = errors.New("token has expired")

	// ErrNotYetValid is returned when the nbf claim is further in the
	// future than the policy's leeway tolerates.
	ErrNotYetValid = errors.New("token is not valid yet")
)

func missingClaim(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingClaim, name)
}
