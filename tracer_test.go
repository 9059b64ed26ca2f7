package idtokenverifier

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNoopTracer(t *testing.T) {
	tracer := &NoopTracer{}
	ctx, span := tracer.StartSpan(context.Background(), "test_span")

	assert.Equal(t, context.Background(), ctx, "the context should pass through unchanged")
	_, ok := span.(*NoopSpan)
	assert.True(t, ok, "Should return a NoopSpan")

	// Span methods should not panic.
	span.SetTag("tag", "value")
	span.Finish()
}

func TestOpenTelemetryTracer(t *testing.T) {
	tp := noop.NewTracerProvider()
	tracer := NewOpenTelemetryTracer(tp.Tracer("test"))

	ctx, span := tracer.StartSpan(context.Background(), "test_span")

	assert.NotNil(t, ctx)
	_, ok := span.(*OpenTelemetrySpan)
	assert.True(t, ok, "Should return an OpenTelemetrySpan")

	// Span methods should not panic.
	span.SetTag("tag", "value")
	span.Finish()
}

// recordingTracer captures started spans and their tags.
type recordingTracer struct {
	mu    sync.Mutex
	spans []*recordingSpan
}

type recordingSpan struct {
	name     string
	mu       sync.Mutex
	tags     map[string]string
	finished bool
}

func (t *recordingTracer) StartSpan(ctx context.Context, operationName string) (context.Context, Span) {
	span := &recordingSpan{name: operationName, tags: make(map[string]string)}
	t.mu.Lock()
	t.spans = append(t.spans, span)
	t.mu.Unlock()
	return ctx, span
}

func (s *recordingSpan) Finish() {
	s.mu.Lock()
	s.finished = true
	s.mu.Unlock()
}

func (s *recordingSpan) SetTag(key string, value interface{}) {
	s.mu.Lock()
	s.tags[key] = fmt.Sprint(value)
	s.mu.Unlock()
}

func TestVerifierTracing(t *testing.T) {
	signingKey := generateRSAKey(t)

	var hits int32
	keySet := keySetJSON(t, publicJWK(t, signingKey, "kid-1"))
	server := newKeySetServer(t, &hits, func() []byte { return keySet })

	tracer := &recordingTracer{}
	verifier := newVerifier(t,
		WithSource(directSource(t, server.URL)),
		WithName("tenant-a"),
		WithTracer(tracer),
	)

	t.Run("tags a successful verification", func(t *testing.T) {
		token := mintToken(t, signingKey, "kid-1", tokenClaims("https://auth.example.com"))
		require.NoError(t, verifier.Verify(context.Background(), token, nil))

		require.Len(t, tracer.spans, 1)
		span := tracer.spans[0]
		assert.Equal(t, "idtoken.verify", span.name)
		assert.True(t, span.finished)
		assert.Equal(t, "tenant-a", span.tags["verifier"])
		assert.Equal(t, "kid-1", span.tags["kid"])
		assert.Equal(t, "RS256", span.tags["alg"])
		assert.Equal(t, "ok", span.tags["result"])
	})

	t.Run("tags a failed verification with its result", func(t *testing.T) {
		expired := tokenClaims("https://auth.example.com")
		expired["exp"] = time.Now().Add(-2 * time.Hour).Unix()
		token := mintToken(t, signingKey, "kid-1", expired)
		require.Error(t, verifier.Verify(context.Background(), token, nil))

		require.Len(t, tracer.spans, 2)
		span := tracer.spans[1]
		assert.True(t, span.finished)
		assert.Equal(t, "validation_failed", span.tags["result"])
	})
}
