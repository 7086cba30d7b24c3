//go:build !integration

package kv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"souksync/internal/domain"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")

// flakyStore wraps a MemoryStore and fails every call while down is set.
type flakyStore struct {
	*MemoryStore
	down bool
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, error) {
	if f.down {
		return "", errConnRefused
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.down {
		return errConnRefused
	}
	return f.MemoryStore.SetWithTTL(ctx, key, value, ttl)
}

func (f *flakyStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if f.down {
		return 0, errConnRefused
	}
	return f.MemoryStore.IncrWithTTL(ctx, key, ttl)
}

func (f *flakyStore) Del(ctx context.Context, key string) error {
	if f.down {
		return errConnRefused
	}
	return f.MemoryStore.Del(ctx, key)
}

func (f *flakyStore) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	if f.down {
		return false, errConnRefused
	}
	return f.MemoryStore.CompareAndDelete(ctx, key, expected)
}

func newTestFailover() (*FailoverStore, *flakyStore, *MemoryStore) {
	primary := &flakyStore{MemoryStore: NewMemoryStore()}
	fallback := NewMemoryStore()
	logger := zerolog.Nop()
	return NewFailoverStore(primary, fallback, &logger), primary, fallback
}

func TestFailoverStore_PrimaryServes(t *testing.T) {
	ctx := context.Background()
	s, primary, fallback := newTestFailover()

	if err := s.SetWithTTL(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("SetWithTTL failed: %v", err)
	}
	if v, _ := primary.MemoryStore.Get(ctx, "k"); v != "v" {
		t.Error("write should land on the primary")
	}
	if _, err := fallback.Get(ctx, "k"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("fallback should not see primary writes")
	}
}

func TestFailoverStore_NotFoundIsNotAFailure(t *testing.T) {
	ctx := context.Background()
	s, _, fallback := newTestFailover()

	// Seed only the fallback; a healthy primary answering not-found must
	// settle the call without consulting the fallback.
	fallback.SetWithTTL(ctx, "k", "shadow", time.Minute)

	if _, err := s.Get(ctx, "k"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected the primary's not-found to stand, got %v", err)
	}
}

func TestFailoverStore_FallsBackOnConnectionError(t *testing.T) {
	ctx := context.Background()
	s, primary, fallback := newTestFailover()
	primary.down = true

	if err := s.SetWithTTL(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("SetWithTTL should fall back: %v", err)
	}
	if v, _ := fallback.Get(ctx, "k"); v != "v" {
		t.Error("write should land on the fallback while the primary is down")
	}

	v, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get should fall back: %v", err)
	}
	if v != "v" {
		t.Errorf("expected %q, got %q", "v", v)
	}

	if n, err := s.IncrWithTTL(ctx, "c", time.Minute); err != nil || n != 1 {
		t.Errorf("IncrWithTTL should fall back, got n=%d err=%v", n, err)
	}
	if ok, err := s.CompareAndDelete(ctx, "k", "v"); err != nil || !ok {
		t.Errorf("CompareAndDelete should fall back, got ok=%v err=%v", ok, err)
	}
	if err := s.Del(ctx, "c"); err != nil {
		t.Errorf("Del should fall back: %v", err)
	}
}

func TestFailoverStore_RecoversToPrimary(t *testing.T) {
	ctx := context.Background()
	s, primary, _ := newTestFailover()

	primary.down = true
	s.SetWithTTL(ctx, "k", "while-down", time.Minute)

	primary.down = false
	if err := s.SetWithTTL(ctx, "k", "after-recovery", time.Minute); err != nil {
		t.Fatalf("SetWithTTL failed: %v", err)
	}
	if v, _ := primary.MemoryStore.Get(ctx, "k"); v != "after-recovery" {
		t.Error("writes should return to the primary once it is reachable")
	}
}

func TestFailoverStore_NilPrimaryIsFallbackOnly(t *testing.T) {
	ctx := context.Background()
	fallback := NewMemoryStore()
	logger := zerolog.Nop()
	s := NewFailoverStore(nil, fallback, &logger)

	if err := s.SetWithTTL(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("SetWithTTL failed: %v", err)
	}
	if v, err := s.Get(ctx, "k"); err != nil || v != "v" {
		t.Errorf("expected fallback to serve, got %q err=%v", v, err)
	}
}
