package worker

import (
	"context"
	"testing"
	"time"
)

func TestNewLimiter_Defaults(t *testing.T) {
	l := NewLimiter(10, 0)
	if l.burst != 1 {
		t.Errorf("Expected burst 1 for non-positive input, got %d", l.burst)
	}
}

func TestLimiter_PerHost(t *testing.T) {
	l := NewLimiter(0.001, 1)

	if !l.Allow("https://a.example.com/data.csv") {
		t.Error("Expected first request to a.example.com to be allowed")
	}
	if l.Allow("https://a.example.com/other.csv") {
		t.Error("Expected second request to a.example.com to be throttled")
	}
	if !l.Allow("https://b.example.com/data.csv") {
		t.Error("Expected first request to b.example.com to be allowed")
	}
	if l.Hosts() != 2 {
		t.Errorf("Expected 2 hosts, got %d", l.Hosts())
	}
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	l := NewLimiter(0.001, 1)
	ctx := context.Background()

	if err := l.Wait(ctx, "https://example.com/a.csv"); err != nil {
		t.Fatalf("Expected first wait to pass, got %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "https://example.com/b.csv"); err == nil {
		t.Error("Expected second wait to fail before the deadline")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	l := NewLimiter(0, 1)
	for i := 0; i < 20; i++ {
		if !l.Allow("https://example.com/x.csv") {
			t.Fatalf("Expected unlimited limiter to allow request %d", i)
		}
	}
}

func TestLimiter_BadURL(t *testing.T) {
	l := NewLimiter(1, 1)
	if err := l.Wait(context.Background(), "not a url"); err == nil {
		t.Error("Expected error for URL without host")
	}
}
