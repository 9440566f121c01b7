// Package sync связывает обнаружение конфликтов, Guardian и слой надежности
// в единый сервис синхронизации клиента.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/iudanet/carekeeper/internal/client/storage"
	"github.com/iudanet/carekeeper/internal/conflict"
	"github.com/iudanet/carekeeper/internal/events"
	"github.com/iudanet/carekeeper/internal/guardian"
	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/reliability"
)

// ErrAlreadyStarted возвращается при повторном вызове Start
var ErrAlreadyStarted = errors.New("orchestrator already started")

// Config параметры оркестратора
type Config struct {
	UserID                  string        `mapstructure:"user_id"`
	DeviceID                string        `mapstructure:"device_id"`
	Platform                string        `mapstructure:"platform"`
	Tier                    models.Tier   `mapstructure:"tier"`
	MaxConcurrent           int64         `mapstructure:"max_concurrent"`
	CrisisTimeout           time.Duration `mapstructure:"crisis_timeout"`
	SweepInterval           time.Duration `mapstructure:"sweep_interval"`
	DrainInterval           time.Duration `mapstructure:"drain_interval"`
	ProbeInterval           time.Duration `mapstructure:"probe_interval"`
	ClinicalReviewAvailable bool          `mapstructure:"clinical_review_available"`
	CanIntervene            bool          `mapstructure:"can_intervene"`
}

// DefaultConfig returns the default orchestrator configuration.
func DefaultConfig() Config {
	return Config{
		Tier:          models.TierFree,
		MaxConcurrent: 4,
		CrisisTimeout: 2 * time.Second,
		SweepInterval: time.Minute,
		DrainInterval: 30 * time.Second,
		ProbeInterval: 15 * time.Second,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Tier == "" {
		c.Tier = def.Tier
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = def.MaxConcurrent
	}
	if c.CrisisTimeout <= 0 {
		c.CrisisTimeout = def.CrisisTimeout
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = def.SweepInterval
	}
	if c.DrainInterval <= 0 {
		c.DrainInterval = def.DrainInterval
	}
	if c.ProbeInterval <= 0 {
		c.ProbeInterval = def.ProbeInterval
	}
}

// Deps компоненты, которыми владеет оркестратор.
// Dedup, Limiter, Network, Bus и Scheduler создаются по умолчанию, если не заданы.
type Deps struct {
	Transport Transport
	Entities  storage.EntityStorage
	Audit     storage.AuditStorage
	Metadata  storage.MetadataStorage
	Queue     *reliability.Queue
	Dedup     *reliability.DedupCache[*Outcome]
	Limiter   *reliability.RateLimiter
	Network   *reliability.NetworkAssessor
	Detector  *conflict.Detector
	Resolver  *conflict.Resolver
	Guardian  *guardian.Guardian
	Bus       *events.Bus
	Scheduler *reliability.Scheduler
	Now       func() time.Time
}

// Orchestrator маршрутизирует операции по приоритету через слой надежности,
// разрешает конфликты и сообщает о событиях.
type Orchestrator struct {
	transport Transport
	entities  storage.EntityStorage
	audit     storage.AuditStorage
	metadata  storage.MetadataStorage
	queue     *reliability.Queue
	dedup     *reliability.DedupCache[*Outcome]
	limiter   *reliability.RateLimiter
	network   *reliability.NetworkAssessor
	detector  *conflict.Detector
	resolver  *conflict.Resolver
	guardian  *guardian.Guardian
	bus       *events.Bus
	scheduler *reliability.Scheduler
	sem       *semaphore.Weighted
	locks     *keyedMutex
	logger    *slog.Logger
	now       func() time.Time
	wake      chan struct{}
	cancel    context.CancelFunc
	cfg       Config
	loopWG    gosync.WaitGroup
	busWG     gosync.WaitGroup
	drainMu   gosync.Mutex
	mu        gosync.Mutex
	started   bool
	stopped   bool
}

// New creates an orchestrator.
func New(cfg Config, deps Deps, logger *slog.Logger) (*Orchestrator, error) {
	switch {
	case deps.Transport == nil:
		return nil, errors.New("transport is required")
	case deps.Entities == nil:
		return nil, errors.New("entity storage is required")
	case deps.Audit == nil:
		return nil, errors.New("audit storage is required")
	case deps.Metadata == nil:
		return nil, errors.New("metadata storage is required")
	case deps.Queue == nil:
		return nil, errors.New("offline queue is required")
	case deps.Detector == nil || deps.Resolver == nil:
		return nil, errors.New("conflict detector and resolver are required")
	case deps.Guardian == nil:
		return nil, errors.New("guardian is required")
	}
	cfg.applyDefaults()

	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Dedup == nil {
		deps.Dedup = reliability.NewDedupCache[*Outcome](reliability.DefaultDedupWindow, 0, deps.Now)
	}
	if deps.Limiter == nil {
		deps.Limiter = reliability.NewRateLimiter(reliability.DefaultTierLimits(), deps.Now, logger)
	}
	if deps.Network == nil {
		deps.Network = reliability.NewNetworkAssessor(nil, deps.Now)
	}
	if deps.Bus == nil {
		deps.Bus = events.NewBus(0, logger)
	}
	if deps.Scheduler == nil {
		deps.Scheduler = reliability.NewScheduler(logger)
	}

	return &Orchestrator{
		transport: deps.Transport,
		entities:  deps.Entities,
		audit:     deps.Audit,
		metadata:  deps.Metadata,
		queue:     deps.Queue,
		dedup:     deps.Dedup,
		limiter:   deps.Limiter,
		network:   deps.Network,
		detector:  deps.Detector,
		resolver:  deps.Resolver,
		guardian:  deps.Guardian,
		bus:       deps.Bus,
		scheduler: deps.Scheduler,
		sem:       semaphore.NewWeighted(cfg.MaxConcurrent),
		locks:     newKeyedMutex(),
		logger:    logger,
		now:       deps.Now,
		wake:      make(chan struct{}, 1),
		cfg:       cfg,
	}, nil
}

// Subscribe регистрирует наблюдателя событий. Вызывается до Start.
func (o *Orchestrator) Subscribe(observer events.Observer) {
	o.bus.Subscribe(observer)
}

// Start восстанавливает офлайн-очередь, закрепляет кризисные планы в кэше
// и запускает фоновые задачи: доставку событий, обслуживание кэшей,
// опрос сети и отправку очереди.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return ErrAlreadyStarted
	}

	if err := o.queue.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore offline queue: %w", err)
	}
	if err := o.Preload(ctx); err != nil {
		o.logger.Warn("Failed to preload crisis plans", "error", err)
	}

	// шина живет до Close, чтобы доставить накопленные события при остановке
	busCtx := context.WithoutCancel(ctx)
	o.busWG.Add(1)
	go func() {
		defer o.busWG.Done()
		o.bus.Run(busCtx)
	}()

	jobs := []struct {
		job      reliability.Job
		name     string
		interval time.Duration
	}{
		{name: "guardian-sweep", interval: o.cfg.SweepInterval, job: o.guardian.Sweep},
		{name: "dedup-sweep", interval: o.cfg.SweepInterval, job: o.sweepDedup},
		{name: "ratelimit-cleanup", interval: o.cfg.SweepInterval, job: o.cleanupLimiter},
		{name: "queue-drain", interval: o.cfg.DrainInterval, job: o.drainJob},
		{name: "network-probe", interval: o.cfg.ProbeInterval, job: o.probeJob},
	}
	for _, j := range jobs {
		if _, err := o.scheduler.Every(j.name, j.interval, j.job); err != nil {
			o.scheduler.Stop()
			o.bus.Close()
			o.busWG.Wait()
			return fmt.Errorf("failed to schedule %s: %w", j.name, err)
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.loopWG.Add(1)
	go o.wakeLoop(loopCtx)

	o.started = true
	o.logger.Info("Sync orchestrator started",
		"user_id", o.cfg.UserID,
		"device_id", o.cfg.DeviceID,
		"tier", o.cfg.Tier,
		"queued", o.queue.Len())
	return nil
}

// Stop останавливает фоновые задачи и дожидается их завершения.
// Повторный вызов ничего не делает.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.started || o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	cancel := o.cancel
	o.mu.Unlock()

	o.scheduler.Stop()
	cancel()
	o.loopWG.Wait()
	o.bus.Close()
	o.busWG.Wait()

	o.logger.Info("Sync orchestrator stopped", "queued", o.queue.Len(), "dropped_events", o.bus.Dropped())
}

// wakeLoop отправляет очередь при появлении в ней элементов и при восстановлении сети
func (o *Orchestrator) wakeLoop(ctx context.Context) {
	defer o.loopWG.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-o.queue.Ready():
		case <-o.wake:
		}
		if _, err := o.Drain(ctx); err != nil && ctx.Err() == nil {
			o.logger.Warn("Queue drain failed", "error", err)
		}
	}
}

func (o *Orchestrator) signalWake() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *Orchestrator) sweepDedup(context.Context) {
	if n := o.dedup.Sweep(); n > 0 {
		o.logger.Debug("Dedup cache swept", "removed", n)
	}
}

func (o *Orchestrator) cleanupLimiter(context.Context) {
	if n := o.limiter.Cleanup(); n > 0 {
		o.logger.Debug("Rate limiter cleaned up", "removed", n)
	}
}

func (o *Orchestrator) drainJob(ctx context.Context) {
	if _, err := o.Drain(ctx); err != nil && ctx.Err() == nil {
		o.logger.Warn("Scheduled queue drain failed", "error", err)
	}
}

func (o *Orchestrator) probeJob(ctx context.Context) {
	wasOnline := o.network.Online()
	strategy := o.network.Assess(ctx)
	online := o.network.Online()

	switch {
	case online && !wasOnline:
		o.logger.Info("Network restored", "score", strategy.Score, "batch_size", strategy.BatchSize)
		o.signalWake()
	case !online && wasOnline:
		o.logger.Warn("Network lost, operations will be queued")
	}
}

// GetQueueStatus returns a snapshot of the offline queue.
func (o *Orchestrator) GetQueueStatus() reliability.QueueStatus {
	return o.queue.Status()
}

// DeadLetters returns operations that exhausted their retries.
func (o *Orchestrator) DeadLetters() []*models.QueueItem {
	return o.queue.DeadLetters()
}

// NetworkStrategy returns the current network adaptation strategy.
func (o *Orchestrator) NetworkStrategy() reliability.SyncStrategy {
	return o.network.Strategy()
}

func (o *Orchestrator) deviceContext() models.DeviceContext {
	return models.DeviceContext{
		DeviceID:       o.cfg.DeviceID,
		Platform:       o.cfg.Platform,
		NetworkQuality: o.network.Quality(),
		Online:         o.network.Online(),
	}
}

func (o *Orchestrator) resolutionContext(priority models.Priority) models.ResolutionContext {
	return models.ResolutionContext{
		SubscriptionTier:        o.cfg.Tier,
		Priority:                priority,
		CrisisMode:              priority == models.PriorityCrisis,
		CanIntervene:            o.cfg.CanIntervene,
		ClinicalReviewAvailable: o.cfg.ClinicalReviewAvailable,
	}
}
