package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

//go:generate moq -out publisher_mock.go . Publisher

// Publisher принимает события. Реализации не должны блокировать вызывающего.
type Publisher interface {
	Publish(e Event)
}

// Discard отбрасывает все события
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}

// Observer обрабатывает события в цикле наблюдателя
type Observer interface {
	Observe(ctx context.Context, e Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, e Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(ctx context.Context, e Event) { f(ctx, e) }

// Bus буферизованная шина событий.
// Publish никогда не блокирует: при переполнении буфера событие отбрасывается и учитывается в Dropped.
// События доставляются наблюдателям по одному, в порядке публикации.
type Bus struct {
	ch        chan Event
	logger    *slog.Logger
	observers []Observer
	dropped   atomic.Int64
	mu        sync.RWMutex
	closed    bool
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int, logger *slog.Logger) *Bus {
	if buffer <= 0 {
		buffer = 256
	}
	return &Bus{
		ch:     make(chan Event, buffer),
		logger: logger,
	}
}

// Subscribe регистрирует наблюдателя. Вызывается до Run.
func (b *Bus) Subscribe(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, o)
}

// Publish implements Publisher.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.dropped.Add(1)
		return
	}
	select {
	case b.ch <- e:
	default:
		b.dropped.Add(1)
	}
}

// Run доставляет события наблюдателям до отмены ctx или закрытия шины.
// После Close оставшиеся в буфере события доставляются до выхода.
func (b *Bus) Run(ctx context.Context) {
	b.mu.RLock()
	observers := append([]Observer(nil), b.observers...)
	b.mu.RUnlock()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-b.ch:
			if !ok {
				return
			}
			for _, o := range observers {
				b.deliver(ctx, o, e)
			}
		}
	}
}

func (b *Bus) deliver(ctx context.Context, o Observer, e Event) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("Event observer panicked", "event", e.EventType(), "panic", rec)
		}
	}()
	o.Observe(ctx, e)
}

// Close закрывает шину; последующие события отбрасываются
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}

// Dropped returns the number of events dropped because the buffer was full or the bus closed.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

// LogObserver записывает события в лог
func LogObserver(logger *slog.Logger) Observer {
	return ObserverFunc(func(ctx context.Context, e Event) {
		switch ev := e.(type) {
		case ConflictDetected:
			logger.InfoContext(ctx, "Conflict detected",
				"entity_id", ev.Conflict.EntityID,
				"type", ev.Conflict.Type,
				"severity", ev.Conflict.Severity.String())
		case GuaranteeViolated:
			logger.WarnContext(ctx, "Performance guarantee violated",
				"operation", ev.Operation,
				"entity_id", ev.EntityID,
				"response_time", ev.ResponseTime,
				"budget", ev.Budget,
				"data_source", ev.DataSource,
				"reason", ev.Reason)
		case ResolutionCompleted:
			logger.InfoContext(ctx, "Resolution completed",
				"entity_id", ev.Result.EntityID,
				"strategy", ev.Result.StrategyUsed,
				"resolution_required", ev.Result.ResolutionRequired)
		case OperationDeadLettered:
			logger.ErrorContext(ctx, "Operation dead-lettered",
				"operation_id", ev.Operation.ID,
				"entity_id", ev.Operation.EntityID,
				"attempts", ev.Attempts,
				"error", ev.LastError)
		default:
			logger.InfoContext(ctx, "Event", "type", e.EventType())
		}
	})
}
