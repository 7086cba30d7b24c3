package kv

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"souksync/internal/domain"
	"souksync/internal/domain/ports/repository"
	"souksync/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ repository.KeyValueStore = (*FailoverStore)(nil)

// FailoverStore tries the shared cache on every call and transparently
// falls back to the in-process store when the cache is unreachable. Both
// backends honor the same TTL contract, so callers cannot tell which one
// answered. A nil primary means fallback-only (Redis never configured).
type FailoverStore struct {
	primary  repository.KeyValueStore
	fallback repository.KeyValueStore
	log      *zerolog.Logger

	// degraded tracks whether the previous call used the fallback, so the
	// transition is logged once instead of on every operation.
	degraded atomic.Bool
}

func NewFailoverStore(primary, fallback repository.KeyValueStore, logger *zerolog.Logger) *FailoverStore {
	return &FailoverStore{primary: primary, fallback: fallback, log: logger}
}

// usable reports whether the primary's answer settles the call. A not-found
// is a real answer; anything else is a connection-class failure.
func usable(err error) bool {
	return err == nil || errors.Is(err, domain.ErrNotFound)
}

func (s *FailoverStore) noteFailover(op string, err error) {
	metrics.IncKVFailover(op)
	if s.degraded.CompareAndSwap(false, true) {
		s.log.Warn().Err(err).Str("op", op).Msg("shared cache unreachable; serving from in-process store")
	}
}

func (s *FailoverStore) noteRecovered() {
	if s.degraded.CompareAndSwap(true, false) {
		s.log.Info().Msg("shared cache reachable again")
	}
}

func (s *FailoverStore) Get(ctx context.Context, key string) (string, error) {
	if s.primary != nil {
		v, err := s.primary.Get(ctx, key)
		if usable(err) {
			s.noteRecovered()
			metrics.IncKVRequest("redis", "get")
			return v, err
		}
		s.noteFailover("get", err)
	}
	metrics.IncKVRequest("memory", "get")
	return s.fallback.Get(ctx, key)
}

func (s *FailoverStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if s.primary != nil {
		err := s.primary.SetWithTTL(ctx, key, value, ttl)
		if err == nil {
			s.noteRecovered()
			metrics.IncKVRequest("redis", "set")
			return nil
		}
		s.noteFailover("set", err)
	}
	metrics.IncKVRequest("memory", "set")
	return s.fallback.SetWithTTL(ctx, key, value, ttl)
}

func (s *FailoverStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if s.primary != nil {
		n, err := s.primary.IncrWithTTL(ctx, key, ttl)
		if err == nil {
			s.noteRecovered()
			metrics.IncKVRequest("redis", "incr")
			return n, nil
		}
		s.noteFailover("incr", err)
	}
	metrics.IncKVRequest("memory", "incr")
	return s.fallback.IncrWithTTL(ctx, key, ttl)
}

func (s *FailoverStore) Del(ctx context.Context, key string) error {
	if s.primary != nil {
		err := s.primary.Del(ctx, key)
		if err == nil {
			s.noteRecovered()
			metrics.IncKVRequest("redis", "del")
			return nil
		}
		s.noteFailover("del", err)
	}
	metrics.IncKVRequest("memory", "del")
	return s.fallback.Del(ctx, key)
}

func (s *FailoverStore) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	if s.primary != nil {
		ok, err := s.primary.CompareAndDelete(ctx, key, expected)
		if err == nil {
			s.noteRecovered()
			metrics.IncKVRequest("redis", "compare_and_delete")
			return ok, nil
		}
		s.noteFailover("compare_and_delete", err)
	}
	metrics.IncKVRequest("memory", "compare_and_delete")
	return s.fallback.CompareAndDelete(ctx, key, expected)
}
