package idtokenverifier_test

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	idtokenverifier "github.com/attestra/go-idtoken-verifier"
	"github.com/attestra/go-idtoken-verifier/jwks"
)

func ExampleNew() {
	issuerURL, err := url.Parse("https://auth.example.com")
	if err != nil {
		log.Fatal(err)
	}

	verifier, err := idtokenverifier.New(
		idtokenverifier.WithSource(jwks.DiscoverIssuer(issuerURL)),
		idtokenverifier.WithIssuers(issuerURL.String()),
		idtokenverifier.WithAudiences("my-api"),
		idtokenverifier.WithCache(jwks.CacheConfig{
			Enabled:             true,
			TTL:                 5 * time.Minute,
			ReloadOnKeyNotFound: true,
		}),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer verifier.Close()

	var claims struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
	}
	if err := verifier.Verify(context.Background(), "eyJ...", &claims); err != nil {
		log.Printf("token rejected: %v", err)
		return
	}
	fmt.Println(claims.Email)
}

func ExampleVerifyToken() {
	verifier, err := idtokenverifier.New(
		idtokenverifier.WithSource(jwks.Direct(&url.URL{
			Scheme: "https",
			Host:   "auth.example.com",
			Path:   "/jwks.json",
		})),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer verifier.Close()

	type profileClaims struct {
		Subject string `json:"sub"`
		Name    string `json:"name"`
	}

	claims, err := idtokenverifier.VerifyToken[profileClaims](context.Background(), verifier, "eyJ...")
	if err != nil {
		log.Printf("token rejected: %v", err)
		return
	}
	fmt.Println(claims.Name)
}

func ExampleWithBackoff() {
	verifier, err := idtokenverifier.New(
		idtokenverifier.WithSource(jwks.Direct(&url.URL{
			Scheme: "https",
			Host:   "auth.example.com",
			Path:   "/jwks.json",
		})),
		idtokenverifier.WithBackoff(jwks.ExponentialBackoff{
			InitialDelay: 100 * time.Millisecond,
			Factor:       2,
			MaxDelay:     2 * time.Second,
			MaxRetries:   5,
			Jitter:       true,
		}),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer verifier.Close()
}
