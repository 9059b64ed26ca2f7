package validator

import (
	"encoding/json"
	"fmt"
)

// RegisteredClaims represents the registered claim values
// (as specified in RFC 7519) decoded from a verified token payload.
// Numeric date claims are unix seconds; zero means the claim was absent.
type RegisteredClaims struct {
	Issuer    string   `json:"iss,omitempty"`
	Subject   string   `json:"sub,omitempty"`
	Audience  Audience `json:"aud,omitempty"`
	ExpiresAt int64    `json:"exp,omitempty"`
	NotBefore int64    `json:"nbf,omitempty"`
	IssuedAt  int64    `json:"iat,omitempty"`
	ID        string   `json:"jti,omitempty"`
}

// Audience is the aud claim. RFC 7519 allows it to be either a single
// string or an array of strings; both forms decode into the slice form.
type Audience []string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Audience) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*a = Audience{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("aud must be a string or an array of strings: %w", err)
	}
	*a = Audience(many)
	return nil
}

// Contains reports whether the audience includes the given value.
func (a Audience) Contains(value string) bool {
	for _, candidate := range a {
		if candidate == value {
			return true
		}
	}
	return false
}
