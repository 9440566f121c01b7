package guardian

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/iudanet/carekeeper/internal/models"
)

// CacheConfig параметры кэша
type CacheConfig struct {
	MaxEntries int           `mapstructure:"max_entries"`
	CrisisTTL  time.Duration `mapstructure:"crisis_ttl"`  // CrisisTTL время жизни кризисных планов
	GeneralTTL time.Duration `mapstructure:"general_ttl"` // GeneralTTL время жизни остальных записей
}

// DefaultCacheConfig returns the default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxEntries: 256,
		CrisisTTL:  time.Hour,
		GeneralTTL: 5 * time.Minute,
	}
}

// CacheEntry запись кэша. Поля кроме lastUsed не изменяются после вставки.
type CacheEntry struct {
	InsertedAt time.Time
	ValidUntil time.Time
	Data       *models.SyncEntity
	Key        string
	lastUsed   atomic.Int64
	Priority   models.Priority
	Preloaded  bool // Preloaded закрепленная запись: не вытесняется и не удаляется при очистке
}

func (e *CacheEntry) expired(now time.Time) bool {
	return !now.Before(e.ValidUntil)
}

type cacheMap map[string]*CacheEntry

// Cache кэш кризисных данных.
// Чтение не берет блокировок: читатели работают со снимком map, который
// писатели заменяют целиком (copy-on-write) под мьютексом.
type Cache struct {
	snapshot atomic.Pointer[cacheMap]
	now      func() time.Time
	cfg      CacheConfig
	mu       sync.Mutex // mu сериализует писателей
}

// NewCache creates a cache. A nil now defaults to time.Now.
func NewCache(cfg CacheConfig, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultCacheConfig().MaxEntries
	}
	c := &Cache{cfg: cfg, now: now}
	empty := cacheMap{}
	c.snapshot.Store(&empty)
	return c
}

// Get возвращает копию закэшированной записи.
// Просроченные незакрепленные записи считаются промахом;
// закрепленные отдаются всегда, чтобы кризисный план оставался доступен офлайн.
func (c *Cache) Get(key string) (*models.SyncEntity, bool) {
	m := *c.snapshot.Load()
	e, ok := m[key]
	if !ok {
		return nil, false
	}
	now := c.now()
	if !e.Preloaded && e.expired(now) {
		return nil, false
	}
	e.lastUsed.Store(now.UnixNano())
	return e.Data.Clone(), true
}

// Set кладет запись в кэш. TTL выбирается по типу записи.
// Если запись уже закреплена, закрепление сохраняется.
func (c *Cache) Set(entity *models.SyncEntity, priority models.Priority, preloaded bool) {
	if entity == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(entity, priority, preloaded)
}

// set вызывается под c.mu
func (c *Cache) set(entity *models.SyncEntity, priority models.Priority, preloaded bool) {
	now := c.now()
	ttl := c.cfg.GeneralTTL
	if entity.Type == models.EntityCrisisPlan {
		ttl = c.cfg.CrisisTTL
	}

	old := *c.snapshot.Load()
	if prev, ok := old[entity.ID]; ok && prev.Preloaded {
		preloaded = true
		if prev.Priority > priority {
			priority = prev.Priority
		}
	}

	entry := &CacheEntry{
		InsertedAt: now,
		ValidUntil: now.Add(ttl),
		Data:       entity.Clone(),
		Key:        entity.ID,
		Priority:   priority,
		Preloaded:  preloaded,
	}
	entry.lastUsed.Store(now.UnixNano())

	next := make(cacheMap, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	next[entity.ID] = entry

	for len(next) > c.cfg.MaxEntries {
		victim := evictionCandidate(next, entity.ID)
		if victim == "" {
			// остались только закрепленные записи
			break
		}
		delete(next, victim)
	}

	c.snapshot.Store(&next)
}

// evictionCandidate выбирает запись с наименьшим приоритетом, затем давно неиспользуемую.
// Закрепленные записи и только что вставленный ключ не вытесняются.
func evictionCandidate(m cacheMap, keep string) string {
	var victim *CacheEntry
	for k, e := range m {
		if e.Preloaded || k == keep {
			continue
		}
		if victim == nil ||
			e.Priority < victim.Priority ||
			(e.Priority == victim.Priority && e.lastUsed.Load() < victim.lastUsed.Load()) {
			victim = e
		}
	}
	if victim == nil {
		return ""
	}
	return victim.Key
}

// Refresh обновляет данные записи, если она уже есть в кэше
func (c *Cache) Refresh(entity *models.SyncEntity) {
	if entity == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := (*c.snapshot.Load())[entity.ID]
	if !ok {
		return
	}
	c.set(entity, prev.Priority, prev.Preloaded)
}

// Delete removes a key, pinned or not.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := *c.snapshot.Load()
	if _, ok := old[key]; !ok {
		return
	}
	next := make(cacheMap, len(old))
	for k, v := range old {
		if k != key {
			next[k] = v
		}
	}
	c.snapshot.Store(&next)
}

// Sweep удаляет просроченные незакрепленные записи и возвращает их количество
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	old := *c.snapshot.Load()
	next := make(cacheMap, len(old))
	removed := 0
	for k, v := range old {
		if !v.Preloaded && v.expired(now) {
			removed++
			continue
		}
		next[k] = v
	}
	if removed > 0 {
		c.snapshot.Store(&next)
	}
	return removed
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(*c.snapshot.Load())
}

// Pinned returns the number of preloaded entries.
func (c *Cache) Pinned() int {
	n := 0
	for _, e := range *c.snapshot.Load() {
		if e.Preloaded {
			n++
		}
	}
	return n
}
