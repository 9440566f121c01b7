package guardian

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/iudanet/carekeeper/internal/events"
	"github.com/iudanet/carekeeper/internal/models"
)

//go:generate moq -out loader_mock.go . Loader

// Loader источник кризисных данных (локальное хранилище)
type Loader interface {
	LoadEntity(ctx context.Context, id string) (*models.SyncEntity, error)
}

// DataSource откуда получены данные кризисного ответа
type DataSource string

// Источники данных
const (
	SourceCache    DataSource = "cache"
	SourceStorage  DataSource = "storage"
	SourceFallback DataSource = "fallback"
	SourceConstant DataSource = "constant"
)

// CrisisResult ответ на кризисное чтение. Data никогда не nil.
type CrisisResult struct {
	Data                *models.SyncEntity
	DataSource          DataSource
	ResponseTime        time.Duration
	Budget              time.Duration
	GuaranteeCompliance bool
}

// Stats счетчики Guardian
type Stats struct {
	Hits       int64
	Misses     int64
	Fallbacks  int64
	Violations int64
}

// Guardian обслуживает кризисные чтения в пределах бюджета времени
type Guardian struct {
	cache     *Cache
	loader    Loader
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
	budgets   Budgets

	hits       atomic.Int64
	misses     atomic.Int64
	fallbacks  atomic.Int64
	violations atomic.Int64
}

// New creates a guardian. A nil publisher discards violation events.
func New(loader Loader, cache *Cache, budgets Budgets, publisher events.Publisher, logger *slog.Logger) *Guardian {
	if publisher == nil {
		publisher = events.Discard
	}
	return &Guardian{
		cache:     cache,
		loader:    loader,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		budgets:   budgets,
	}
}

// Cache returns the underlying cache.
func (g *Guardian) Cache() *Cache {
	return g.cache
}

// GetCrisisData возвращает кризисный план в пределах бюджета crisis_data_access.
// Никогда не возвращает ошибку: при промахе и медленном хранилище отдается резервный план.
func (g *Guardian) GetCrisisData(ctx context.Context, entityID string) CrisisResult {
	return g.read(ctx, OpCrisisDataAccess, entityID)
}

// GetEmergencyContacts возвращает запись с экстренными контактами в пределах
// бюджета emergency_contact_access.
func (g *Guardian) GetEmergencyContacts(ctx context.Context, entityID string) CrisisResult {
	return g.read(ctx, OpEmergencyContactAccess, entityID)
}

// Hotline возвращает горячую линию. Обслуживается из константы без I/O.
func (g *Guardian) Hotline() Hotline {
	return CrisisHotline
}

type loadResult struct {
	entity *models.SyncEntity
	err    error
}

func (g *Guardian) read(ctx context.Context, op Operation, entityID string) CrisisResult {
	start := g.now()
	budget := g.budgets.For(op)

	if data, ok := g.cache.Get(entityID); ok {
		g.hits.Add(1)
		return g.finish(op, entityID, start, budget, data, SourceCache)
	}
	g.misses.Add(1)

	// кризисное чтение не отменяется вызывающим: оно ограничено только бюджетом
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), budget)
	resCh := make(chan loadResult, 1)

	go func() {
		defer cancel()
		entity, err := g.safeLoad(loadCtx, entityID)
		if err == nil && entity != nil {
			// поздний ответ тоже прогревает кэш для следующего запроса
			g.cache.Set(entity, models.PriorityCrisis, false)
		}
		resCh <- loadResult{entity: entity, err: err}
	}()

	timer := time.NewTimer(g.budgets.LoadWait(op))
	defer timer.Stop()

	select {
	case res := <-resCh:
		if res.err != nil || res.entity == nil {
			reason := "entity not found"
			if res.err != nil {
				reason = fmt.Sprintf("storage failed: %v", res.err)
			}
			return g.fallback(op, entityID, start, budget, reason)
		}
		return g.finish(op, entityID, start, budget, res.entity.Clone(), SourceStorage)
	case <-timer.C:
		return g.fallback(op, entityID, start, budget, "storage did not respond before the safety margin")
	}
}

func (g *Guardian) safeLoad(ctx context.Context, id string) (entity *models.SyncEntity, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("loader panicked: %v", rec)
		}
	}()
	return g.loader.LoadEntity(ctx, id)
}

func (g *Guardian) fallback(op Operation, entityID string, start time.Time, budget time.Duration, reason string) CrisisResult {
	g.fallbacks.Add(1)
	res := CrisisResult{
		Data:         FallbackSafetyPlan(),
		DataSource:   SourceFallback,
		ResponseTime: g.now().Sub(start),
		Budget:       budget,
	}
	g.violate(op, entityID, res, reason)
	return res
}

func (g *Guardian) finish(op Operation, entityID string, start time.Time, budget time.Duration, data *models.SyncEntity, src DataSource) CrisisResult {
	res := CrisisResult{
		Data:         data,
		DataSource:   src,
		ResponseTime: g.now().Sub(start),
		Budget:       budget,
	}
	res.GuaranteeCompliance = res.ResponseTime <= budget
	if !res.GuaranteeCompliance {
		g.violate(op, entityID, res, "response exceeded budget")
	}
	return res
}

func (g *Guardian) violate(op Operation, entityID string, res CrisisResult, reason string) {
	g.violations.Add(1)
	g.logger.Warn("Crisis guarantee violated",
		"operation", op,
		"entity_id", entityID,
		"response_time", res.ResponseTime,
		"budget", res.Budget,
		"data_source", res.DataSource,
		"reason", reason)
	g.publisher.Publish(events.GuaranteeViolated{
		At:           g.now(),
		Operation:    string(op),
		EntityID:     entityID,
		DataSource:   string(res.DataSource),
		Reason:       reason,
		ResponseTime: res.ResponseTime,
		Budget:       res.Budget,
	})
}

// Preload загружает записи из хранилища и закрепляет их в кэше.
// Ошибки отдельных записей не прерывают загрузку остальных; возвращается первая из них.
func (g *Guardian) Preload(ctx context.Context, ids []string) error {
	var firstErr error
	for _, id := range ids {
		entity, err := g.loader.LoadEntity(ctx, id)
		if err != nil {
			g.logger.Warn("Failed to preload crisis data", "entity_id", id, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("preload %s: %w", id, err)
			}
			continue
		}
		g.Pin(entity)
	}
	return firstErr
}

// Pin закрепляет запись в кэше
func (g *Guardian) Pin(entity *models.SyncEntity) {
	g.cache.Set(entity, models.PriorityCrisis, true)
}

// Observe обновляет кэш после сохранения записи.
// Закрепленные записи и кризисные планы всегда держатся актуальными.
func (g *Guardian) Observe(entity *models.SyncEntity) {
	if entity == nil {
		return
	}
	if entity.Deleted {
		g.cache.Delete(entity.ID)
		return
	}
	if entity.Type == models.EntityCrisisPlan {
		g.cache.Set(entity, models.PriorityCrisis, false)
		return
	}
	g.cache.Refresh(entity)
}

// Sweep removes expired cache entries.
func (g *Guardian) Sweep(context.Context) {
	if n := g.cache.Sweep(); n > 0 {
		g.logger.Debug("Crisis cache swept", "removed", n)
	}
}

// Stats returns guardian counters.
func (g *Guardian) Stats() Stats {
	return Stats{
		Hits:       g.hits.Load(),
		Misses:     g.misses.Load(),
		Fallbacks:  g.fallbacks.Load(),
		Violations: g.violations.Load(),
	}
}
