package reliability

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/carekeeper/internal/models"
)

// TierLimit лимит запросов для уровня подписки
type TierLimit struct {
	// PerWindow максимальное количество операций за Window
	PerWindow int           `mapstructure:"per_window"`
	Window    time.Duration `mapstructure:"window"`
	// Burst максимальное количество операций за BurstWindow, 0 - без ограничения
	Burst       int           `mapstructure:"burst"`
	BurstWindow time.Duration `mapstructure:"burst_window"`
}

// DefaultTierLimits returns the built-in per-tier limits.
func DefaultTierLimits() map[models.Tier]TierLimit {
	return map[models.Tier]TierLimit{
		models.TierFree:     {PerWindow: 30, Window: time.Minute, Burst: 5, BurstWindow: time.Second},
		models.TierPremium:  {PerWindow: 120, Window: time.Minute, Burst: 10, BurstWindow: time.Second},
		models.TierClinical: {PerWindow: 300, Window: time.Minute, Burst: 20, BurstWindow: time.Second},
	}
}

// Decision результат проверки лимита
type Decision struct {
	RetryAfter time.Duration
	Remaining  int
	Allowed    bool
}

// window хранит отметки времени принятых операций для конкретного пользователя
type window struct {
	lastSeen time.Time
	stamps   []time.Time
	mu       sync.Mutex
}

// RateLimiter ограничивает частоту операций по ключу "пользователь|уровень" скользящим окном.
// Кризисные операции никогда не ограничиваются.
type RateLimiter struct {
	windows map[string]*window
	limits  map[models.Tier]TierLimit
	logger  *slog.Logger
	now     func() time.Time
	mu      sync.RWMutex
}

// NewRateLimiter создает rate limiter
func NewRateLimiter(limits map[models.Tier]TierLimit, now func() time.Time, logger *slog.Logger) *RateLimiter {
	if limits == nil {
		limits = DefaultTierLimits()
	}
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		windows: make(map[string]*window),
		limits:  limits,
		logger:  logger,
		now:     now,
	}
}

func limiterKey(userID string, tier models.Tier) string {
	return fmt.Sprintf("%s|%s", userID, tier)
}

func (rl *RateLimiter) limitFor(tier models.Tier) TierLimit {
	if l, ok := rl.limits[tier]; ok {
		return l
	}
	return rl.limits[models.TierFree]
}

// Allow проверяет операцию и, если она разрешена, учитывает ее в окне
func (rl *RateLimiter) Allow(userID string, tier models.Tier, priority models.Priority) Decision {
	if priority == models.PriorityCrisis {
		return Decision{Allowed: true, Remaining: -1}
	}

	limit := rl.limitFor(tier)
	if limit.PerWindow <= 0 || limit.Window <= 0 {
		return Decision{Allowed: true, Remaining: -1}
	}

	key := limiterKey(userID, tier)

	rl.mu.RLock()
	w, exists := rl.windows[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		// другой вызов мог создать окно, пока ждали блокировку
		if w, exists = rl.windows[key]; !exists {
			w = &window{}
			rl.windows[key] = w
		}
		rl.mu.Unlock()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := rl.now()
	w.lastSeen = now

	// Отбрасываем отметки за пределами окна
	cutoff := now.Add(-limit.Window)
	drop := 0
	for drop < len(w.stamps) && !w.stamps[drop].After(cutoff) {
		drop++
	}
	w.stamps = w.stamps[drop:]

	if len(w.stamps) >= limit.PerWindow {
		retry := w.stamps[0].Add(limit.Window).Sub(now)
		rl.logger.Warn("Rate limit exceeded", "user_id", userID, "tier", tier, "retry_after", retry)
		return Decision{Allowed: false, RetryAfter: retry}
	}

	if limit.Burst > 0 && limit.BurstWindow > 0 {
		burstCutoff := now.Add(-limit.BurstWindow)
		inBurst := 0
		var oldest time.Time
		for i := len(w.stamps) - 1; i >= 0 && w.stamps[i].After(burstCutoff); i-- {
			inBurst++
			oldest = w.stamps[i]
		}
		if inBurst >= limit.Burst {
			retry := oldest.Add(limit.BurstWindow).Sub(now)
			rl.logger.Warn("Burst limit exceeded", "user_id", userID, "tier", tier, "retry_after", retry)
			return Decision{Allowed: false, RetryAfter: retry}
		}
	}

	w.stamps = append(w.stamps, now)
	return Decision{Allowed: true, Remaining: limit.PerWindow - len(w.stamps)}
}

// Cleanup удаляет окна пользователей, неактивных дольше двух окон
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	var longest time.Duration
	for _, l := range rl.limits {
		if l.Window > longest {
			longest = l.Window
		}
	}

	now := rl.now()
	removed := 0
	for key, w := range rl.windows {
		w.mu.Lock()
		if now.Sub(w.lastSeen) > longest*2 {
			delete(rl.windows, key)
			removed++
		}
		w.mu.Unlock()
	}
	return removed
}

// Tracked returns the number of tracked user windows.
func (rl *RateLimiter) Tracked() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.windows)
}
