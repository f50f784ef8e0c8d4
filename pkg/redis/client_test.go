package redis

import (
	"context"
	"testing"

	"github.com/maldonadorepuestos/backend/pkg/config"
)

func TestIdempotencyKeyNamespacing(t *testing.T) {
	t.Parallel()

	c := &Client{}
	if got := c.IdempotencyKey("mp-webhook", "evt-1"); got != "mr:idempotency:mp-webhook:evt-1" {
		t.Fatalf("unexpected key %q", got)
	}
	// Empty parts collapse instead of producing double separators.
	if got := c.buildKey("a", "", "b"); got != "mr:a:b" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	t.Parallel()

	c := &Client{}
	ctx := context.Background()
	if _, err := c.SetNX(ctx, "k", "v", 0); err == nil {
		t.Fatal("expected error from uninitialized SetNX")
	}
	if _, err := c.IncrWithTTL(ctx, "k", 0); err == nil {
		t.Fatal("expected error from uninitialized IncrWithTTL")
	}
	if err := c.Ping(ctx); err == nil {
		t.Fatal("expected error from uninitialized Ping")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close on zero client must be a no-op, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	t.Parallel()

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 2 {
		t.Fatalf("unexpected options %+v", opts)
	}

	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
}
