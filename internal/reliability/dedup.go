package reliability

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/carekeeper/internal/crypto"
	"github.com/iudanet/carekeeper/internal/models"
)

// DefaultDedupWindow окно, в течение которого повторная операция считается дубликатом
const DefaultDedupWindow = 5 * time.Second

// DedupKey вычисляет ключ дедупликации операции по ее содержимому.
// Две операции с одинаковым типом, записью, checksum и уровнем подписки дают один ключ.
func DedupKey(op *models.Operation) string {
	return crypto.DedupKey(
		string(op.EntityType),
		op.EntityID,
		string(op.Type),
		op.Checksum(),
		string(op.Tier),
	)
}

type dedupEntry[V any] struct {
	storedAt time.Time
	value    V
	key      string
}

// DedupCache LRU-кэш результатов операций с ограниченным окном жизни.
// Одновременные вызовы с одним ключом схлопываются в один; кэшируются только успешные результаты.
type DedupCache[V any] struct {
	now     func() time.Time
	entries map[string]*list.Element
	order   *list.List
	group   singleflight.Group
	window  time.Duration
	max     int
	hits    int64
	mu      sync.Mutex
}

// NewDedupCache creates a cache. Zero window and max select defaults.
func NewDedupCache[V any](window time.Duration, max int, now func() time.Time) *DedupCache[V] {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	if max <= 0 {
		max = 1024
	}
	if now == nil {
		now = time.Now
	}
	return &DedupCache[V]{
		now:     now,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		window:  window,
		max:     max,
	}
}

// Get возвращает сохраненный результат, если он еще в окне
func (c *DedupCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*dedupEntry[V])
	if c.now().Sub(e.storedAt) >= c.window {
		c.removeElement(el)
		return zero, false
	}
	c.order.MoveToFront(el)
	c.hits++
	return e.value, true
}

// Put сохраняет результат. Окно отсчитывается от момента сохранения.
func (c *DedupCache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		e := el.Value.(*dedupEntry[V])
		e.value = value
		e.storedAt = c.now()
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&dedupEntry[V]{key: key, value: value, storedAt: c.now()})
	c.entries[key] = el
	for c.order.Len() > c.max {
		c.removeElement(c.order.Back())
	}
}

// Do возвращает сохраненный результат для key или выполняет fn.
// shared сообщает, что результат получен без собственного вызова fn.
func (c *DedupCache[V]) Do(ctx context.Context, key string, fn func(ctx context.Context) (V, error)) (v V, shared bool, err error) {
	if cached, ok := c.Get(key); ok {
		return cached, true, nil
	}

	res, err, shared := c.group.Do(key, func() (any, error) {
		// повторная проверка: результат мог появиться, пока ждали группу
		if cached, ok := c.Get(key); ok {
			return cached, nil
		}
		val, err := fn(ctx)
		if err != nil {
			return val, err
		}
		c.Put(key, val)
		return val, nil
	})
	if res != nil {
		v = res.(V)
	}
	return v, shared, err
}

// Sweep удаляет записи с истекшим окном и возвращает их количество
func (c *DedupCache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if now.Sub(el.Value.(*dedupEntry[V]).storedAt) >= c.window {
			c.removeElement(el)
			removed++
		}
		el = prev
	}
	return removed
}

// Len returns the number of stored results, including expired ones not yet swept.
func (c *DedupCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Hits returns the number of cache hits.
func (c *DedupCache[V]) Hits() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

func (c *DedupCache[V]) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*dedupEntry[V]).key)
}
