package guardian

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/carekeeper/internal/events"
)

// ButtonHandler действие, выполняемое при нажатии кризисной кнопки
type ButtonHandler func(ctx context.Context) error

// Feedback тактильный или звуковой отклик. Выполняется асинхронно и не влияет на результат.
type Feedback func(ctx context.Context) error

// ButtonResult результат нажатия кризисной кнопки
type ButtonResult struct {
	Failed       map[string]error
	ResponseTime time.Duration
	Budget       time.Duration
	Compliant    bool
}

type namedHandler struct {
	fn   ButtonHandler
	name string
}

// CrisisButton выполняет все зарегистрированные обработчики параллельно
type CrisisButton struct {
	publisher events.Publisher
	logger    *slog.Logger
	feedback  Feedback
	handlers  []namedHandler
	budget    time.Duration
	mu        sync.RWMutex
}

// NewCrisisButton creates a crisis button with the crisis_button_response budget.
func NewCrisisButton(budgets Budgets, feedback Feedback, publisher events.Publisher, logger *slog.Logger) *CrisisButton {
	if publisher == nil {
		publisher = events.Discard
	}
	return &CrisisButton{
		publisher: publisher,
		logger:    logger,
		feedback:  feedback,
		budget:    budgets.For(OpCrisisButtonResponse),
	}
}

// Register adds a handler.
func (b *CrisisButton) Register(name string, fn ButtonHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, namedHandler{name: name, fn: fn})
}

// Press запускает все обработчики одновременно и ждет их завершения.
// Ошибка одного обработчика не отменяет остальные. Отклик запускается
// в отдельной горутине и в измеряемое время не входит.
func (b *CrisisButton) Press(ctx context.Context) ButtonResult {
	start := time.Now()

	b.mu.RLock()
	handlers := append([]namedHandler(nil), b.handlers...)
	b.mu.RUnlock()

	if b.feedback != nil {
		go b.runFeedback(context.WithoutCancel(ctx))
	}

	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.budget)
	defer cancel()

	var (
		mu     sync.Mutex
		failed = map[string]error{}
		g      errgroup.Group
	)
	for _, h := range handlers {
		g.Go(func() error {
			err := runHandler(hctx, h.fn)
			if err != nil {
				mu.Lock()
				failed[h.name] = err
				mu.Unlock()
			}
			// ошибки собираются в failed, чтобы не прерывать остальных
			return nil
		})
	}
	_ = g.Wait()

	res := ButtonResult{
		Failed:       failed,
		ResponseTime: time.Since(start),
		Budget:       b.budget,
	}
	res.Compliant = res.ResponseTime <= b.budget

	for name, err := range failed {
		b.logger.Warn("Crisis button handler failed", "handler", name, "error", err)
	}
	if !res.Compliant {
		b.publisher.Publish(events.GuaranteeViolated{
			At:           time.Now(),
			Operation:    string(OpCrisisButtonResponse),
			DataSource:   "handlers",
			Reason:       fmt.Sprintf("%d handlers exceeded budget", len(handlers)),
			ResponseTime: res.ResponseTime,
			Budget:       b.budget,
		})
	}
	return res
}

func runHandler(ctx context.Context, fn ButtonHandler) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panicked: %v", rec)
		}
	}()
	return fn(ctx)
}

func (b *CrisisButton) runFeedback(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Debug("Crisis feedback panicked", "panic", rec)
		}
	}()
	if err := b.feedback(ctx); err != nil {
		b.logger.Debug("Crisis feedback failed", "error", err)
	}
}
