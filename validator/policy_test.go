package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyValidate(t *testing.T) {
	now := time.Unix(1756100000, 0)

	testCases := []struct {
		name         string
		policy       Policy
		claims       RegisteredClaims
		expectedKind error
		expectedMsg  string
	}{
		{
			name:   "the zero policy accepts empty claims",
			policy: Policy{},
			claims: RegisteredClaims{},
		},
		{
			name:   "the zero policy accepts an expired token",
			policy: Policy{},
			claims: RegisteredClaims{ExpiresAt: now.Add(-time.Hour).Unix()},
		},
		{
			name:   "a matching issuer passes",
			policy: Policy{AllowedIssuers: []string{"https://auth.example.com"}},
			claims: RegisteredClaims{Issuer: "https://auth.example.com"},
		},
		{
			name: "any of several allowed issuers passes",
			policy: Policy{AllowedIssuers: []string{
				"https://auth-one.example.com",
				"https://auth-two.example.com",
			}},
			claims: RegisteredClaims{Issuer: "https://auth-two.example.com"},
		},
		{
			name:         "a wrong issuer is rejected",
			policy:       Policy{AllowedIssuers: []string{"https://auth.example.com"}},
			claims:       RegisteredClaims{Issuer: "https://evil.example.com"},
			expectedKind: ErrIssuerMismatch,
		},
		{
			name:         "a missing issuer is rejected when issuers are configured",
			policy:       Policy{AllowedIssuers: []string{"https://auth.example.com"}},
			claims:       RegisteredClaims{},
			expectedKind: ErrMissingClaim,
			expectedMsg:  "iss",
		},
		{
			name:   "no configured issuers never rejects",
			policy: Policy{},
			claims: RegisteredClaims{Issuer: "https://anything.example.com"},
		},
		{
			name:   "an intersecting audience passes",
			policy: Policy{AllowedAudiences: []string{"my-api"}},
			claims: RegisteredClaims{Audience: Audience{"other-api", "my-api"}},
		},
		{
			name:         "a disjoint audience is rejected",
			policy:       Policy{AllowedAudiences: []string{"my-api"}},
			claims:       RegisteredClaims{Audience: Audience{"other-api"}},
			expectedKind: ErrAudienceMismatch,
		},
		{
			name:         "a missing audience is rejected when audiences are configured",
			policy:       Policy{AllowedAudiences: []string{"my-api"}},
			claims:       RegisteredClaims{},
			expectedKind: ErrMissingClaim,
			expectedMsg:  "aud",
		},
		{
			name:   "no configured audiences never rejects",
			policy: Policy{},
			claims: RegisteredClaims{Audience: Audience{"anything"}},
		},
		{
			name:   "a future expiry passes",
			policy: Policy{ValidateExpiry: true},
			claims: RegisteredClaims{ExpiresAt: now.Add(time.Hour).Unix()},
		},
		{
			name:         "an expired token is rejected",
			policy:       Policy{ValidateExpiry: true},
			claims:       RegisteredClaims{ExpiresAt: now.Add(-time.Hour).Unix()},
			expectedKind: ErrExpired,
		},
		{
			name:   "an expiry within the leeway passes",
			policy: Policy{ValidateExpiry: true, Leeway: time.Minute},
			claims: RegisteredClaims{ExpiresAt: now.Add(-30 * time.Second).Unix()},
		},
		{
			name:         "an expiry beyond the leeway is rejected",
			policy:       Policy{ValidateExpiry: true, Leeway: time.Minute},
			claims:       RegisteredClaims{ExpiresAt: now.Add(-2 * time.Minute).Unix()},
			expectedKind: ErrExpired,
		},
		{
			name:         "a missing expiry is rejected when the check is on",
			policy:       Policy{ValidateExpiry: true},
			claims:       RegisteredClaims{},
			expectedKind: ErrMissingClaim,
			expectedMsg:  "exp",
		},
		{
			name:   "a future not-before is ignored when the check is off",
			policy: Policy{},
			claims: RegisteredClaims{NotBefore: now.Add(time.Hour).Unix()},
		},
		{
			name:   "a past not-before passes",
			policy: Policy{ValidateNotBefore: true},
			claims: RegisteredClaims{NotBefore: now.Add(-time.Hour).Unix()},
		},
		{
			name:         "a future not-before is rejected",
			policy:       Policy{ValidateNotBefore: true},
			claims:       RegisteredClaims{NotBefore: now.Add(time.Hour).Unix()},
			expectedKind: ErrNotYetValid,
		},
		{
			name:   "a not-before within the leeway passes",
			policy: Policy{ValidateNotBefore: true, Leeway: time.Minute},
			claims: RegisteredClaims{NotBefore: now.Add(30 * time.Second).Unix()},
		},
		{
			name:         "a missing not-before is rejected when the check is on",
			policy:       Policy{ValidateNotBefore: true},
			claims:       RegisteredClaims{},
			expectedKind: ErrMissingClaim,
			expectedMsg:  "nbf",
		},
		{
			name:   "a future issued-at is never rejected",
			policy: DefaultPolicy(),
			claims: RegisteredClaims{
				IssuedAt:  now.Add(time.Hour).Unix(),
				ExpiresAt: now.Add(2 * time.Hour).Unix(),
			},
		},
		{
			name: "the issuer check runs before the expiry check",
			policy: Policy{
				AllowedIssuers: []string{"https://auth.example.com"},
				ValidateExpiry: true,
			},
			claims: RegisteredClaims{
				Issuer:    "https://evil.example.com",
				ExpiresAt: now.Add(-time.Hour).Unix(),
			},
			expectedKind: ErrIssuerMismatch,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := testCase.policy.Validate(testCase.claims, now)

			if testCase.expectedKind == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, testCase.expectedKind)
			if testCase.expectedMsg != "" {
				assert.ErrorContains(t, err, testCase.expectedMsg)
			}
		})
	}
}

func TestDefaultPolicy(t *testing.T) {
	policy := DefaultPolicy()

	assert.True(t, policy.ValidateExpiry)
	assert.False(t, policy.ValidateNotBefore)
	assert.False(t, policy.AllowMissingKeyAlgorithm)
	assert.Equal(t, DefaultLeeway, policy.Leeway)
	assert.Empty(t, policy.AllowedIssuers)
	assert.Empty(t, policy.AllowedAudiences)
}

func TestDefaultPolicyLeewayKeepsRecentTokensValid(t *testing.T) {
	now := time.Unix(1756100000, 0)
	policy := DefaultPolicy()

	// A token that expired 59s ago sits inside the default leeway.
	claims := RegisteredClaims{ExpiresAt: now.Add(-59 * time.Second).Unix()}
	assert.NoError(t, policy.Validate(claims, now))

	claims.ExpiresAt = now.Add(-61 * time.Second).Unix()
	assert.ErrorIs(t, policy.Validate(claims, now), ErrExpired)
}
