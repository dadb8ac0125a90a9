package worker

import (
	"context"
	"testing"
)

func allow(l *Limiter, path string) bool {
	return l.getLimiter(Scope(path)).Allow()
}

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !allow(limiter, "src/a.go") {
			t.Fatalf("read %d throttled by unlimited limiter", i)
		}
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "src/auth.ts"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := limiter.Wait(ctx, "vendor/lib/x.go"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	allow(limiter, "src/a.go")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := limiter.Wait(ctx, "src/b.go"); err == nil {
		t.Error("expected error from cancelled wait")
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "src/a.go"); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// same scope, token consumed
	if allow(limiter, "src/b.go") {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	if !allow(limiter, "docs/guide.md") {
		t.Errorf("expected allow for other scope")
	}
}

func TestLimiter_SetScopeRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetScopeRate("vendor", 0.1, 1)

	if !allow(limiter, "vendor/a.go") {
		t.Errorf("first read should pass")
	}
	if allow(limiter, "vendor/b.go") {
		t.Errorf("second read should fail")
	}
	if !allow(limiter, "src/a.go") {
		t.Errorf("other scope should pass")
	}
}

func TestScope(t *testing.T) {
	cases := map[string]string{
		"src/auth.ts":    "src",
		"./src/auth.ts":  "src",
		"/vendor/x/y.go": "vendor",
		"main.go":        ".",
		"":               ".",
	}
	for in, want := range cases {
		if got := Scope(in); got != want {
			t.Errorf("Scope(%q) = %q, want %q", in, got, want)
		}
	}
}
