package seed

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rewear-app/rewear-backend/pkg/enums"
)

type stubLockStore struct {
	values map[string]string
}

func newStubLockStore() *stubLockStore {
	return &stubLockStore{values: map[string]string{}}
}

func (s *stubLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value.(string)
	return true, nil
}

func (s *stubLockStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (s *stubLockStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func TestRedisLockAcquireRelease(t *testing.T) {
	store := newStubLockStore()
	lock, err := NewRedisLock(store, "rw:lock:seed", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock returned error: %v", err)
	}

	ok, err := lock.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, got ok=%v err=%v", ok, err)
	}

	second, err := NewRedisLock(store, "rw:lock:seed", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock returned error: %v", err)
	}
	ok, err = second.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected second acquire to fail while lock is held")
	}

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	ok, err = second.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected acquire after release to succeed, got ok=%v err=%v", ok, err)
	}
}

func TestRedisLockReleaseIgnoresStolenLock(t *testing.T) {
	store := newStubLockStore()
	lock, err := NewRedisLock(store, "rw:lock:seed", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock returned error: %v", err)
	}
	if ok, err := lock.Acquire(context.Background()); err != nil || !ok {
		t.Fatalf("expected acquire to succeed, got ok=%v err=%v", ok, err)
	}

	// Simulate expiry plus takeover by another run.
	store.values["rw:lock:seed"] = "someone-else"

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if store.values["rw:lock:seed"] != "someone-else" {
		t.Fatalf("release must not delete a lock owned by another run")
	}
}

func TestDemoCorpusBorrowTermsAreConsistent(t *testing.T) {
	for _, g := range demoGarments {
		lendable := g.mode == enums.ItemModeBorrow || g.mode == enums.ItemModeBoth
		if lendable {
			fee, err := decimal.NewFromString(g.fee)
			if err != nil {
				t.Fatalf("garment %q has unparseable fee %q: %v", g.title, g.fee, err)
			}
			if fee.IsNegative() {
				t.Fatalf("garment %q has negative fee %s", g.title, fee)
			}
			if g.duration <= 0 {
				t.Fatalf("garment %q is lendable but has duration %d", g.title, g.duration)
			}
			continue
		}
		if g.fee != "" || g.duration != 0 {
			t.Fatalf("exchange-only garment %q must not carry borrow terms", g.title)
		}
	}
}
