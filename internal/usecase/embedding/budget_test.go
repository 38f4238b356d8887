package embedding

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/skinrec/internal/db"
	"github.com/kailas-cloud/skinrec/internal/domain"
)

type memCounters struct {
	mu   sync.Mutex
	vals map[string]int64
	ttls map[string]time.Duration
}

func newMemCounters() *memCounters {
	return &memCounters{vals: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (m *memCounters) IncrBy(_ context.Context, key string, val int64, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] += val
	m.ttls[key] = ttl
	return m.vals[key], nil
}

func (m *memCounters) GetInt(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[key]
	if !ok {
		return 0, db.ErrKeyNotFound
	}
	return v, nil
}

func TestTokenBudget_Reject(t *testing.T) {
	b := NewTokenBudget("openai", 100, 0, BudgetActionReject, zap.NewNop())
	if err := b.Check(context.Background()); err != nil {
		t.Fatalf("fresh budget: %v", err)
	}
	b.Record(100)
	if err := b.Check(context.Background()); !errors.Is(err, domain.ErrTokenBudgetExceeded) {
		t.Errorf("err = %v, want ErrTokenBudgetExceeded", err)
	}
}

func TestTokenBudget_WarnAllows(t *testing.T) {
	b := NewTokenBudget("openai", 10, 10, BudgetActionWarn, zap.NewNop())
	b.Record(50)
	if err := b.Check(context.Background()); err != nil {
		t.Errorf("warn action must allow, got %v", err)
	}
}

func TestTokenBudget_Remaining(t *testing.T) {
	b := NewTokenBudget("openai", 100, 0, BudgetActionReject, zap.NewNop())
	b.Record(30)
	b.Record(-5)
	r := b.Remaining()
	if r["daily"] != 70 {
		t.Errorf("daily = %d, want 70", r["daily"])
	}
	if r["monthly"] != -1 {
		t.Errorf("monthly = %d, want -1 (unlimited)", r["monthly"])
	}
	b.Record(500)
	if b.Remaining()["daily"] != 0 {
		t.Errorf("daily should floor at 0, got %d", b.Remaining()["daily"])
	}
}

func TestTokenBudget_DayRollover(t *testing.T) {
	b := NewTokenBudget("openai", 10, 0, BudgetActionReject, zap.NewNop())
	now := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	for _, w := range b.windows {
		w.start = w.trunc(now)
	}
	b.Record(10)
	if err := b.Check(context.Background()); err == nil {
		t.Fatal("expected exhausted budget")
	}
	now = now.Add(2 * time.Hour)
	if err := b.Check(context.Background()); err != nil {
		t.Errorf("budget should reset on a new day: %v", err)
	}
}

func TestTokenBudget_Persistence(t *testing.T) {
	store := newMemCounters()
	b := NewTokenBudget("openai", 1000, 5000, BudgetActionReject, zap.NewNop()).WithStore(context.Background(), store)
	b.Record(40)

	if len(store.vals) != 2 {
		t.Fatalf("expected daily and monthly keys, got %v", store.vals)
	}
	for k, v := range store.vals {
		if !strings.HasPrefix(k, domain.KeyPrefix+"budget:openai:") || v != 40 {
			t.Errorf("%s = %d", k, v)
		}
		if store.ttls[k] <= 0 {
			t.Errorf("%s has no ttl", k)
		}
	}

	restored := NewTokenBudget("openai", 1000, 5000, BudgetActionReject, zap.NewNop()).WithStore(context.Background(), store)
	if r := restored.Remaining(); r["daily"] != 960 || r["monthly"] != 4960 {
		t.Errorf("restored remaining = %v", r)
	}
}
