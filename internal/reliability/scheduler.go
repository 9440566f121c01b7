// Package reliability содержит механизмы, которые делают синхронизацию устойчивой
// к плохой сети: офлайн-очередь, дедупликацию, ограничение частоты запросов,
// оценку качества сети и планировщик фоновых задач.
package reliability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// ErrSchedulerStopped возвращается при попытке добавить задачу в остановленный планировщик
var ErrSchedulerStopped = errors.New("scheduler stopped")

// Job периодическая задача
type Job func(ctx context.Context)

// Handle управляет одной периодической задачей
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	name   string
}

// Name returns the job name.
func (h *Handle) Name() string { return h.name }

// Cancel останавливает задачу и ждет завершения текущего запуска
func (h *Handle) Cancel() {
	h.cancel()
	<-h.done
}

// Scheduler запускает периодические задачи, каждая со своим отменяемым Handle.
// Stop останавливает все задачи и дожидается их завершения.
type Scheduler struct {
	ctx     context.Context
	cancel  context.CancelFunc
	handles map[string]*Handle
	logger  *slog.Logger
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool
}

// NewScheduler creates a scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:     ctx,
		cancel:  cancel,
		handles: make(map[string]*Handle),
		logger:  logger,
	}
}

// Every запускает job с интервалом interval. Первый запуск - через interval.
func (s *Scheduler) Every(name string, interval time.Duration, job Job) (*Handle, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("job %s: interval must be positive", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, ErrSchedulerStopped
	}
	if _, exists := s.handles[name]; exists {
		return nil, fmt.Errorf("job %s already scheduled", name)
	}

	ctx, cancel := context.WithCancel(s.ctx)
	h := &Handle{name: name, cancel: cancel, done: make(chan struct{})}
	s.handles[name] = h

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(h.done)
		defer s.forget(h)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.run(ctx, name, job)
			}
		}
	}()

	s.logger.Debug("Job scheduled", "job", name, "interval", interval)
	return h, nil
}

func (s *Scheduler) run(ctx context.Context, name string, job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("Scheduled job panicked", "job", name, "panic", rec)
		}
	}()
	job(ctx)
}

func (s *Scheduler) forget(h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handles[h.name] == h {
		delete(s.handles, h.name)
	}
}

// Jobs returns the names of running jobs in sorted order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.handles))
	for name := range s.handles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stop отменяет все задачи и ждет их завершения. Повторный вызов безопасен.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.logger.Debug("Scheduler stopped")
}
