package memory

import (
	"context"
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	l := NewLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "k", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	res, err := l.Allow(ctx, "k", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if res.Allowed {
		t.Fatal("fourth request should be denied")
	}
	if res.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", res.Remaining)
	}
}

func TestWindowExpiry(t *testing.T) {
	l := NewLimiter()
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "k", 1, 10*time.Millisecond); !res.Allowed {
		t.Fatal("first request should be allowed")
	}
	if res, _ := l.Allow(ctx, "k", 1, 10*time.Millisecond); res.Allowed {
		t.Fatal("second request within window should be denied")
	}

	time.Sleep(15 * time.Millisecond)

	if res, _ := l.Allow(ctx, "k", 1, 10*time.Millisecond); !res.Allowed {
		t.Fatal("request after window expiry should be allowed")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := NewLimiter()
	ctx := context.Background()

	l.Allow(ctx, "a", 1, time.Minute)
	res, _ := l.Allow(ctx, "b", 1, time.Minute)
	if !res.Allowed {
		t.Fatal("key b should have its own window")
	}
}
