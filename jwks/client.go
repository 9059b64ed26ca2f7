package jwks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/attestra/go-idtoken-verifier/internal/oidc"
)

// maxJWKSResponseSize caps how much of a JWKS response is read, as a guard
// against misbehaving providers.
const maxJWKSResponseSize = 1024 * 1024

// Client fetches JWK sets from a Source, resolving the JWKS location through
// OIDC discovery first when the source asks for it, and retrying the whole
// operation according to its Backoff policy. A Client is immutable after
// construction and safe for concurrent use.
type Client struct {
	source     Source
	httpClient *http.Client
	backoff    Backoff
	logger     Logger
}

// NewClient sets up a Client for the given source.
func NewClient(source Source, opts ...ClientOption) (*Client, error) {
	if source.IsZero() {
		return nil, ErrSourceRequired
	}

	client := &Client{
		source:     source,
		httpClient: http.DefaultClient,
		backoff:    NoBackoff{},
		logger:     noopLogger{},
	}

	for _, opt := range opts {
		if err := opt(client); err != nil {
			return nil, err
		}
	}

	return client, nil
}

// Source returns the source the client fetches from.
func (c *Client) Source() Source {
	return c.source
}

// Fetch retrieves the key set, applying the client's backoff policy around
// the whole operation. Discovery, when configured, is repeated on every
// attempt so a jwks_uri that moved between attempts is still honored. The
// returned set must be treated as immutable: it is shared with every other
// caller that received it.
func (c *Client) Fetch(ctx context.Context) (jwk.Set, error) {
	operation := func() (jwk.Set, error) {
		return c.fetchKeySet(ctx)
	}
	notify := func(err error, delay time.Duration) {
		c.logger.Warnf("fetching jwks failed, retrying in %s: %v", delay, err)
	}

	return backoff.RetryNotifyWithData(operation, backoff.WithContext(c.backoff.build(), ctx), notify)
}

func (c *Client) fetchKeySet(ctx context.Context) (jwk.Set, error) {
	jwksURL := c.source.URL().String()

	if c.source.IsDiscover() {
		c.logger.Debugf("fetching oidc provider metadata from %s", jwksURL)

		metadata, err := oidc.GetProviderMetadata(ctx, c.httpClient, jwksURL)
		if err != nil {
			kind := ErrDiscoveryRequestFailed
			if errors.Is(err, oidc.ErrInvalidResponse) {
				kind = ErrDiscoveryResponseInvalid
			}
			return nil, newFetchError(kind, err)
		}
		jwksURL = metadata.JWKSURI
	}

	c.logger.Debugf("fetching jwks from %s", jwksURL)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURL, nil)
	if err != nil {
		return nil, newFetchError(ErrJWKSRequestFailed, err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, newFetchError(ErrJWKSRequestFailed, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, newFetchError(ErrJWKSRequestFailed, fmt.Errorf("jwks request to %s returned status %d", jwksURL, response.StatusCode))
	}

	set, err := jwk.ParseReader(io.LimitReader(response.Body, maxJWKSResponseSize))
	if err != nil {
		return nil, newFetchError(ErrJWKSResponseInvalid, err)
	}

	return set, nil
}
