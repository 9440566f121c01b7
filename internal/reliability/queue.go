package reliability

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/syncerr"
)

//go:generate moq -out queue_store_mock.go . QueueStore

// QueueStore персистентное хранилище офлайн-очереди
type QueueStore interface {
	SaveQueueItem(ctx context.Context, item *models.QueueItem) error
	DeleteQueueItem(ctx context.Context, id string) error
	LoadQueueItems(ctx context.Context) ([]*models.QueueItem, error)
	SaveDeadLetter(ctx context.Context, item *models.QueueItem) error
	LoadDeadLetters(ctx context.Context) ([]*models.QueueItem, error)
}

// ErrItemNotInFlight возвращается, если Ack/Fail вызваны для операции, не выданной NextBatch
var ErrItemNotInFlight = errors.New("queue item is not in flight")

// QueueConfig параметры очереди
type QueueConfig struct {
	MaxSize     int           `mapstructure:"max_size"`
	MaxRetries  int           `mapstructure:"max_retries"`
	BaseBackoff time.Duration `mapstructure:"base_backoff"`
	MaxBackoff  time.Duration `mapstructure:"max_backoff"`
}

// DefaultQueueConfig returns the default queue configuration.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		MaxSize:     1000,
		MaxRetries:  5,
		BaseBackoff: time.Second,
		MaxBackoff:  5 * time.Minute,
	}
}

// Backoff возвращает задержку перед попыткой номер retryCount: base * 2^retryCount, не больше MaxBackoff
func (c QueueConfig) Backoff(retryCount int) time.Duration {
	d := c.BaseBackoff
	for i := 0; i < retryCount; i++ {
		d *= 2
		if d >= c.MaxBackoff {
			return c.MaxBackoff
		}
	}
	if d > c.MaxBackoff {
		return c.MaxBackoff
	}
	return d
}

// itemHeap упорядочивает элементы по (priority desc, scheduledAt asc, seq asc)
type itemHeap []*models.QueueItem

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !a.ScheduledAt.Equal(b.ScheduledAt) {
		return a.ScheduledAt.Before(b.ScheduledAt)
	}
	return a.Seq < b.Seq
}

func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x any) { *h = append(*h, x.(*models.QueueItem)) }

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// QueueStatus снимок состояния очереди
type QueueStatus struct {
	Next        *models.QueueItem
	ByPriority  map[models.Priority]int
	Size        int
	InFlight    int
	DeadLetters int
}

// Queue приоритетная офлайн-очередь исходящих операций.
// Выданные NextBatch элементы считаются "в полете" до Ack, Fail или Release.
type Queue struct {
	store    QueueStore
	logger   *slog.Logger
	now      func() time.Time
	inflight map[string]*models.QueueItem
	signal   chan struct{}
	items    itemHeap
	dead     []*models.QueueItem
	cfg      QueueConfig
	seq      uint64
	mu       sync.Mutex
	restored bool
}

// NewQueue creates a queue. A nil store keeps the queue in memory only.
func NewQueue(cfg QueueConfig, store QueueStore, now func() time.Time, logger *slog.Logger) *Queue {
	if now == nil {
		now = time.Now
	}
	return &Queue{
		store:    store,
		logger:   logger,
		now:      now,
		inflight: make(map[string]*models.QueueItem),
		signal:   make(chan struct{}, 1),
		cfg:      cfg,
	}
}

// Restore загружает сохраненные элементы и dead letters.
// Элементы, бывшие "в полете" при остановке, возвращаются в очередь.
// Повторный вызов ничего не делает.
func (q *Queue) Restore(ctx context.Context) error {
	if q.store == nil {
		return nil
	}
	q.mu.Lock()
	done := q.restored
	q.mu.Unlock()
	if done {
		return nil
	}
	items, err := q.store.LoadQueueItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to load queue: %w", err)
	}
	dead, err := q.store.LoadDeadLetters(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dead letters: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for _, item := range items {
		if item.Seq > q.seq {
			q.seq = item.Seq
		}
		heap.Push(&q.items, item)
	}
	q.dead = append(q.dead, dead...)
	q.restored = true
	q.notify()

	q.logger.Info("Offline queue restored", "items", len(items), "dead_letters", len(dead))
	return nil
}

// Enqueue ставит операцию в очередь.
// При переполнении возвращает ошибку ResourceExhaustion; кризисные операции принимаются всегда.
func (q *Queue) Enqueue(ctx context.Context, op *models.Operation) (*models.QueueItem, error) {
	return q.EnqueueAfter(ctx, op, 0)
}

// EnqueueAfter ставит операцию в очередь с отсрочкой первой отправки на delay.
// Операция, уже стоящая в очереди или в полете, повторно не добавляется.
func (q *Queue) EnqueueAfter(ctx context.Context, op *models.Operation, delay time.Duration) (*models.QueueItem, error) {
	if op == nil || op.ID == "" {
		return nil, syncerr.New(syncerr.KindValidation, "enqueue", "operation id is required")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if existing := q.lookup(op.ID); existing != nil {
		return existing.Clone(), nil
	}

	if q.cfg.MaxSize > 0 && len(q.items)+len(q.inflight) >= q.cfg.MaxSize && op.Priority < models.PriorityCrisis {
		return nil, syncerr.Exhausted("enqueue", q.cfg.BaseBackoff, "offline queue is full (%d items)", q.cfg.MaxSize)
	}

	now := q.now()
	q.seq++
	item := &models.QueueItem{
		ScheduledAt: now.Add(max(delay, 0)),
		EnqueuedAt:  now,
		Operation:   op.Clone(),
		Seq:         q.seq,
		Priority:    op.Priority,
	}

	if err := q.persist(ctx, item); err != nil {
		q.seq--
		return nil, err
	}

	heap.Push(&q.items, item)
	q.notify()
	return item.Clone(), nil
}

// NextBatch выдает до n готовых к отправке элементов в порядке приоритета.
// Элементы с ScheduledAt в будущем остаются в очереди.
func (q *Queue) NextBatch(n int) []*models.QueueItem {
	return q.NextBatchAtLeast(n, models.PriorityLow)
}

// NextBatchAtLeast как NextBatch, но выдает только элементы с приоритетом не ниже minPriority.
// Используется при отложенной синхронизации, когда отправляются только кризисные операции.
func (q *Queue) NextBatchAtLeast(n int, minPriority models.Priority) []*models.QueueItem {
	if n <= 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	var batch, notReady []*models.QueueItem
	for len(batch) < n && q.items.Len() > 0 {
		if q.items[0].Priority < minPriority {
			break
		}
		item := heap.Pop(&q.items).(*models.QueueItem)
		if item.ScheduledAt.After(now) {
			notReady = append(notReady, item)
			continue
		}
		q.inflight[item.ID()] = item
		batch = append(batch, item.Clone())
	}
	for _, item := range notReady {
		heap.Push(&q.items, item)
	}
	return batch
}

// Ack удаляет успешно отправленный элемент
func (q *Queue) Ack(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.inflight[id]; !ok {
		return ErrItemNotInFlight
	}
	delete(q.inflight, id)

	if q.store != nil {
		if err := q.store.DeleteQueueItem(ctx, id); err != nil {
			return fmt.Errorf("failed to delete queue item: %w", err)
		}
	}
	return nil
}

// Release возвращает элемент в очередь без увеличения счетчика попыток
func (q *Queue) Release(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.inflight[id]
	if !ok {
		return ErrItemNotInFlight
	}
	delete(q.inflight, id)
	heap.Push(&q.items, item)
	q.notify()
	return nil
}

// Fail регистрирует неудачную попытку.
// Повторяемые ошибки возвращают элемент в очередь с экспоненциальной задержкой;
// после MaxRetries или при неповторяемой ошибке элемент уходит в dead letters.
// Возвращает dead letter, если элемент был туда перемещен.
func (q *Queue) Fail(ctx context.Context, id string, cause error) (*models.QueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.inflight[id]
	if !ok {
		return nil, ErrItemNotInFlight
	}
	delete(q.inflight, id)

	item.RetryCount++
	if cause != nil {
		item.LastError = cause.Error()
	}

	if item.RetryCount > q.cfg.MaxRetries || (cause != nil && !syncerr.IsRetryable(cause)) {
		return q.deadLetter(ctx, item)
	}

	delay := q.cfg.Backoff(item.RetryCount)
	if ra := syncerr.RetryAfter(cause); ra > delay {
		delay = ra
	}
	item.ScheduledAt = q.now().Add(delay)

	// в памяти элемент остается в очереди, но после перезапуска повтор начнется с прежнего счетчика
	perr := q.persist(ctx, item)
	heap.Push(&q.items, item)
	q.notify()
	if perr != nil {
		return nil, fmt.Errorf("retry of %s: %w", id, perr)
	}

	q.logger.Debug("Operation scheduled for retry",
		"operation_id", id,
		"retry_count", item.RetryCount,
		"delay", delay)
	return nil, nil
}

func (q *Queue) deadLetter(ctx context.Context, item *models.QueueItem) (*models.QueueItem, error) {
	q.dead = append(q.dead, item)
	if q.store != nil {
		if err := q.store.SaveDeadLetter(ctx, item); err != nil {
			return item.Clone(), fmt.Errorf("failed to save dead letter: %w", err)
		}
		if err := q.store.DeleteQueueItem(ctx, item.ID()); err != nil {
			return item.Clone(), fmt.Errorf("failed to delete queue item: %w", err)
		}
	}
	q.logger.Error("Operation dead-lettered",
		"operation_id", item.ID(),
		"entity_id", item.Operation.EntityID,
		"retry_count", item.RetryCount,
		"error", item.LastError)
	return item.Clone(), nil
}

// Status возвращает снимок состояния очереди
func (q *Queue) Status() QueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	st := QueueStatus{
		ByPriority:  make(map[models.Priority]int),
		Size:        len(q.items),
		InFlight:    len(q.inflight),
		DeadLetters: len(q.dead),
	}
	for _, item := range q.items {
		st.ByPriority[item.Priority]++
	}
	if len(q.items) > 0 {
		st.Next = q.items[0].Clone()
	}
	return st
}

// DeadLetters returns copies of dead-lettered items.
func (q *Queue) DeadLetters() []*models.QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*models.QueueItem, 0, len(q.dead))
	for _, item := range q.dead {
		out = append(out, item.Clone())
	}
	return out
}

// lookup ищет операцию в очереди и в полете. Вызывается под q.mu.
func (q *Queue) lookup(opID string) *models.QueueItem {
	if item, ok := q.inflight[opID]; ok {
		return item
	}
	for _, item := range q.items {
		if item.ID() == opID {
			return item
		}
	}
	return nil
}

// HasPending сообщает, есть ли в очереди или в полете операция для записи entityID
func (q *Queue) HasPending(entityID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, item := range q.items {
		if item.Operation.EntityID == entityID {
			return true
		}
	}
	for _, item := range q.inflight {
		if item.Operation.EntityID == entityID {
			return true
		}
	}
	return false
}

// Len returns the number of queued items, excluding in-flight ones.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Ready возвращает канал-сигнал о появлении элементов. Сигналы схлопываются.
func (q *Queue) Ready() <-chan struct{} {
	return q.signal
}

func (q *Queue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *Queue) persist(ctx context.Context, item *models.QueueItem) error {
	if q.store == nil {
		return nil
	}
	if err := q.store.SaveQueueItem(ctx, item); err != nil {
		return fmt.Errorf("failed to persist queue item: %w", err)
	}
	return nil
}
