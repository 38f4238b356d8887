package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/skinrec/internal/domain"
)

// BudgetAction defines behavior when the token budget is spent.
type BudgetAction string

const (
	// BudgetActionWarn logs and lets the request through.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject refuses the request; the vectorizer then serves zero vectors.
	BudgetActionReject BudgetAction = "reject"
)

// CounterStore persists window counters across restarts.
type CounterStore interface {
	IncrBy(ctx context.Context, key string, val int64, ttl time.Duration) (int64, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

// window is one rolling budget period (a UTC day or month).
type window struct {
	name   string
	limit  int64
	used   int64
	start  time.Time
	layout string
	ttl    time.Duration
	trunc  func(time.Time) time.Time
}

func (w *window) roll(now time.Time) {
	if s := w.trunc(now); s.After(w.start) {
		w.start = s
		w.used = 0
	}
}

func (w *window) exceeded() bool { return w.limit > 0 && w.used >= w.limit }

func (w *window) remaining() int64 {
	if w.limit == 0 {
		return -1
	}
	return max(w.limit-w.used, 0)
}

// TokenBudget enforces daily and monthly token caps. Check is in-memory;
// Record persists write-behind when a store is attached.
type TokenBudget struct {
	mu       sync.Mutex
	provider string
	action   BudgetAction
	windows  []*window
	store    CounterStore
	now      func() time.Time
	logger   *zap.Logger
}

// NewTokenBudget creates a budget. A zero limit means unlimited.
func NewTokenBudget(provider string, dailyLimit, monthlyLimit int64, action BudgetAction, logger *zap.Logger) *TokenBudget {
	b := &TokenBudget{provider: provider, action: action, now: time.Now, logger: logger}
	now := b.now().UTC()
	b.windows = []*window{
		{name: "daily", limit: dailyLimit, layout: "2006-01-02", ttl: 48 * time.Hour, trunc: truncateToDay},
		{name: "monthly", limit: monthlyLimit, layout: "2006-01", ttl: 32 * 24 * time.Hour, trunc: truncateToMonth},
	}
	for _, w := range b.windows {
		w.start = w.trunc(now)
	}
	return b
}

// WithStore attaches persistence and loads the current counters.
func (b *TokenBudget) WithStore(ctx context.Context, store CounterStore) *TokenBudget {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	now := b.now().UTC()
	for _, w := range b.windows {
		n, err := store.GetInt(ctx, b.key(w, now))
		if err != nil {
			b.logger.Debug("Token budget counter not loaded", zap.String("window", w.name), zap.Error(err))
			continue
		}
		w.used = n
	}
	return b
}

// Check reports ErrTokenBudgetExceeded when a cap is reached and the action is reject.
func (b *TokenBudget) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now().UTC()
	var spent []string
	for _, w := range b.windows {
		w.roll(now)
		if w.exceeded() {
			spent = append(spent, w.name)
		}
	}
	if len(spent) == 0 {
		return nil
	}
	if b.action == BudgetActionReject {
		return fmt.Errorf("%s %v: %w", b.provider, spent, domain.ErrTokenBudgetExceeded)
	}
	b.logger.Warn("Token budget exceeded", zap.String("provider", b.provider), zap.Strings("windows", spent))
	return nil
}

// Record adds consumed tokens to every window.
func (b *TokenBudget) Record(tokens int64) {
	if tokens <= 0 {
		return
	}
	b.mu.Lock()
	now := b.now().UTC()
	type write struct {
		key string
		ttl time.Duration
	}
	writes := make([]write, 0, len(b.windows))
	for _, w := range b.windows {
		w.roll(now)
		w.used += tokens
		writes = append(writes, write{key: b.key(w, now), ttl: w.ttl})
	}
	store := b.store
	b.mu.Unlock()

	if store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, wr := range writes {
		if _, err := store.IncrBy(ctx, wr.key, tokens, wr.ttl); err != nil {
			b.logger.Warn("Failed to persist token budget", zap.String("key", wr.key), zap.Error(err))
		}
	}
}

// Remaining returns tokens left per window name, -1 when unlimited.
func (b *TokenBudget) Remaining() map[string]int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now().UTC()
	out := make(map[string]int64, len(b.windows))
	for _, w := range b.windows {
		w.roll(now)
		out[w.name] = w.remaining()
	}
	return out
}

func (b *TokenBudget) key(w *window, now time.Time) string {
	return fmt.Sprintf("%sbudget:%s:%s:%s", domain.KeyPrefix, b.provider, w.name, now.Format(w.layout))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
