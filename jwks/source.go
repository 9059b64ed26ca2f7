package jwks

import (
	"fmt"
	"net/url"
	"path"

	"github.com/attestra/go-idtoken-verifier/internal/oidc"
)

type sourceKind int

const (
	sourceUnset sourceKind = iota
	sourceDirect
	sourceDiscover
)

func (k sourceKind) String() string {
	switch k {
	case sourceDirect:
		return "direct"
	case sourceDiscover:
		return "discover"
	default:
		return "unset"
	}
}

// Source describes where a client obtains its JWKS document. It is a closed
// set of two variants: a direct JWKS URL, or an OIDC discovery document URL
// whose jwks_uri member locates the JWKS. Construct values with Direct or
// Discover; the zero value is invalid.
type Source struct {
	kind sourceKind
	url  *url.URL
}

// Direct returns a Source that treats u as the JWKS document URL itself.
func Direct(u *url.URL) Source {
	return Source{kind: sourceDirect, url: u}
}

// Discover returns a Source that treats u as an OIDC discovery document URL.
// The JWKS location is resolved from the document's jwks_uri member on every
// fetch, so a provider rotating its JWKS endpoint is picked up without
// reconfiguration.
func Discover(u *url.URL) Source {
	return Source{kind: sourceDiscover, url: u}
}

// DiscoverIssuer returns a Discover Source for the conventional discovery
// document location under the given issuer URL, issuer +
// "/.well-known/openid-configuration". The issuer URL is not modified.
func DiscoverIssuer(issuer *url.URL) Source {
	u := *issuer
	u.Path = path.Join(u.Path, oidc.WellKnownPath)
	return Discover(&u)
}

// ParseDirect is a convenience wrapper around Direct for string URLs.
func ParseDirect(rawURL string) (Source, error) {
	u, err := parseSourceURL(rawURL)
	if err != nil {
		return Source{}, err
	}
	return Direct(u), nil
}

// ParseDiscover is a convenience wrapper around Discover for string URLs.
func ParseDiscover(rawURL string) (Source, error) {
	u, err := parseSourceURL(rawURL)
	if err != nil {
		return Source{}, err
	}
	return Discover(u), nil
}

func parseSourceURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse the jwks source url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("jwks source url %q is missing a scheme or host", rawURL)
	}
	return u, nil
}

// URL returns the configured URL: the JWKS document for Direct sources, the
// discovery document for Discover sources.
func (s Source) URL() *url.URL {
	return s.url
}

// IsDiscover reports whether the JWKS location must be resolved through an
// OIDC discovery document first.
func (s Source) IsDiscover() bool {
	return s.kind == sourceDiscover
}

// IsZero reports whether the Source was never initialized through Direct or
// Discover.
func (s Source) IsZero() bool {
	return s.kind == sourceUnset || s.url == nil
}

func (s Source) String() string {
	if s.IsZero() {
		return "jwks source (unset)"
	}
	return fmt.Sprintf("jwks source %s (%s)", s.url, s.kind)
}
