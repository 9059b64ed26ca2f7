/*
Package oidc retrieves OIDC provider metadata for JWKS discovery.

This internal package fetches and decodes the OIDC discovery document (the
.well-known/openid-configuration resource) and extracts the jwks_uri member
that locates the provider's key set.

Failures are split into two sentinel kinds so callers can classify them
without inspecting messages: ErrRequestFailed covers transport failures and
non-2xx statuses, ErrInvalidResponse covers bodies that cannot be decoded or
carry no usable jwks_uri.

This package implements the relevant subset of OpenID Connect Discovery 1.0,
https://openid.net/specs/openid-connect-discovery-1_0.html.
*/
package oidc
