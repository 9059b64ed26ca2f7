package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// WellKnownPath is the conventional location of the OIDC discovery document
// relative to an issuer URL.
const WellKnownPath = ".well-known/openid-configuration"

// maxResponseSize caps how much of a discovery response is read, as a guard
// against misbehaving providers.
const maxResponseSize = 1024 * 1024

// Sentinel errors separating a failed request from an unusable response, so
// the caller can classify without inspecting messages.
var (
	ErrRequestFailed   = errors.New("discovery document request failed")
	ErrInvalidResponse = errors.New("discovery document response invalid")
)

// ProviderMetadata is the subset of the OIDC discovery document needed to
// locate the provider's key set.
type ProviderMetadata struct {
	JWKSURI string `json:"jwks_uri"`
}

// GetProviderMetadata retrieves and decodes the discovery document at
// metadataURL. Transport failures and non-2xx statuses wrap
// ErrRequestFailed; undecodable bodies and missing or unparsable jwks_uri
// members wrap ErrInvalidResponse.
func GetProviderMetadata(ctx context.Context, client *http.Client, metadataURL string) (*ProviderMetadata, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: could not build request for %s: %v", ErrRequestFailed, metadataURL, err)
	}

	response, err := client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: could not get discovery document from %s: %v", ErrRequestFailed, metadataURL, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: discovery document request to %s returned status %d", ErrRequestFailed, metadataURL, response.StatusCode)
	}

	var metadata ProviderMetadata
	if err := json.NewDecoder(io.LimitReader(response.Body, maxResponseSize)).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("%w: could not decode json body of discovery document: %v", ErrInvalidResponse, err)
	}

	if metadata.JWKSURI == "" {
		return nil, fmt.Errorf("%w: discovery document has no jwks_uri", ErrInvalidResponse)
	}
	if u, err := url.Parse(metadata.JWKSURI); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: discovery document jwks_uri %q is not a valid url", ErrInvalidResponse, metadata.JWKSURI)
	}

	return &metadata, nil
}
