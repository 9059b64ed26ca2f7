package jwks

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceConstructors(t *testing.T) {
	jwksURL, err := url.Parse("https://idp.example.com/oauth2/jwks.json")
	require.NoError(t, err)

	t.Run("direct", func(t *testing.T) {
		source := Direct(jwksURL)

		assert.False(t, source.IsZero())
		assert.False(t, source.IsDiscover())
		assert.Equal(t, jwksURL, source.URL())
	})

	t.Run("discover", func(t *testing.T) {
		source := Discover(jwksURL)

		assert.False(t, source.IsZero())
		assert.True(t, source.IsDiscover())
		assert.Equal(t, jwksURL, source.URL())
	})

	t.Run("zero value", func(t *testing.T) {
		var source Source

		assert.True(t, source.IsZero())
		assert.Equal(t, "jwks source (unset)", source.String())
	})
}

func TestDiscoverIssuer(t *testing.T) {
	t.Run("appends the well-known path", func(t *testing.T) {
		issuer, err := url.Parse("https://idp.example.com")
		require.NoError(t, err)

		source := DiscoverIssuer(issuer)

		assert.True(t, source.IsDiscover())
		assert.Equal(t, "https://idp.example.com/.well-known/openid-configuration", source.URL().String())
	})

	t.Run("preserves an issuer path prefix", func(t *testing.T) {
		issuer, err := url.Parse("https://idp.example.com/tenants/acme")
		require.NoError(t, err)

		source := DiscoverIssuer(issuer)

		assert.Equal(t, "https://idp.example.com/tenants/acme/.well-known/openid-configuration", source.URL().String())
	})

	t.Run("does not modify the issuer url", func(t *testing.T) {
		issuer, err := url.Parse("https://idp.example.com/tenants/acme")
		require.NoError(t, err)

		_ = DiscoverIssuer(issuer)

		assert.Equal(t, "https://idp.example.com/tenants/acme", issuer.String())
	})
}

func TestParseSource(t *testing.T) {
	t.Run("parses a direct url", func(t *testing.T) {
		source, err := ParseDirect("https://idp.example.com/jwks.json")
		require.NoError(t, err)

		assert.False(t, source.IsDiscover())
		assert.Equal(t, "https://idp.example.com/jwks.json", source.URL().String())
	})

	t.Run("parses a discovery url", func(t *testing.T) {
		source, err := ParseDiscover("https://idp.example.com/.well-known/openid-configuration")
		require.NoError(t, err)

		assert.True(t, source.IsDiscover())
	})

	t.Run("rejects a url without scheme or host", func(t *testing.T) {
		_, err := ParseDirect("idp.example.com/jwks.json")
		assert.ErrorContains(t, err, "missing a scheme or host")

		_, err = ParseDiscover("/relative/path")
		assert.ErrorContains(t, err, "missing a scheme or host")
	})

	t.Run("rejects an unparsable url", func(t *testing.T) {
		_, err := ParseDirect("https://idp.example.com/jwks.json\x00")
		assert.Error(t, err)
	})
}
