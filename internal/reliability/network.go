package reliability

import (
	"context"
	"math"
	"sync"
	"time"
)

//go:generate moq -out prober_mock.go . Prober

// Sample одно измерение качества сети
type Sample struct {
	Latency       time.Duration
	Jitter        time.Duration
	BandwidthKbps float64
	PacketLoss    float64 // доля потерянных пакетов 0..1
	Online        bool
}

// Prober измеряет текущее состояние сети
type Prober interface {
	Probe(ctx context.Context) (Sample, error)
}

// RetryPolicy политика повтора для текущего качества сети
type RetryPolicy string

// Политики повтора
const (
	RetryImmediate   RetryPolicy = "immediate"
	RetryExponential RetryPolicy = "exponential"
	RetryDelayed     RetryPolicy = "delayed"
)

// SyncStrategy параметры синхронизации, подобранные по качеству сети
type SyncStrategy struct {
	RetryPolicy RetryPolicy
	Timeout     time.Duration
	BatchSize   int
	Score       float64
	Compression bool
	// Defer означает, что некризисные операции следует отложить до улучшения сети
	Defer bool
}

// Пороговые значения оценки качества сети
const (
	ScoreExcellent = 80.0
	ScoreGood      = 50.0
	ScorePoor      = 20.0
)

// offlineAfter количество подряд неудачных измерений, после которого сеть считается недоступной
const offlineAfter = 3

// ewmaAlpha вес нового измерения в скользящем среднем
const ewmaAlpha = 0.3

// NetworkAssessor сглаживает измерения сети и подбирает стратегию синхронизации
type NetworkAssessor struct {
	prober   Prober
	now      func() time.Time
	lastAt   time.Time
	avg      Sample
	failures int
	samples  int
	mu       sync.RWMutex
}

// NewNetworkAssessor creates an assessor. prober may be nil when samples are recorded manually.
func NewNetworkAssessor(prober Prober, now func() time.Time) *NetworkAssessor {
	if now == nil {
		now = time.Now
	}
	return &NetworkAssessor{prober: prober, now: now}
}

// Assess выполняет измерение через Prober и возвращает обновленную стратегию
func (a *NetworkAssessor) Assess(ctx context.Context) SyncStrategy {
	if a.prober == nil {
		return a.Strategy()
	}
	s, err := a.prober.Probe(ctx)
	if err != nil {
		a.RecordFailure()
	} else {
		a.Record(s)
	}
	return a.Strategy()
}

// Record учитывает измерение в скользящем среднем
func (a *NetworkAssessor) Record(s Sample) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.lastAt = a.now()
	if !s.Online {
		a.failures++
		return
	}
	a.failures = 0

	if a.samples == 0 {
		a.avg = s
	} else {
		a.avg.Latency = time.Duration(ewma(float64(a.avg.Latency), float64(s.Latency)))
		a.avg.Jitter = time.Duration(ewma(float64(a.avg.Jitter), float64(s.Jitter)))
		a.avg.BandwidthKbps = ewma(a.avg.BandwidthKbps, s.BandwidthKbps)
		a.avg.PacketLoss = ewma(a.avg.PacketLoss, s.PacketLoss)
	}
	a.avg.Online = true
	a.samples++
}

// RecordFailure учитывает неудачное измерение
func (a *NetworkAssessor) RecordFailure() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastAt = a.now()
	a.failures++
}

func ewma(prev, next float64) float64 {
	return prev*(1-ewmaAlpha) + next*ewmaAlpha
}

// Online сообщает, доступна ли сеть по последним измерениям
func (a *NetworkAssessor) Online() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.failures < offlineAfter
}

// Quality returns the score rounded to an integer, as carried in device context.
func (a *NetworkAssessor) Quality() int {
	return int(math.Round(a.Strategy().Score))
}

// Score оценка качества сети 0..100. Без измерений возвращает умеренную оценку.
func (a *NetworkAssessor) Score() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.score()
}

func (a *NetworkAssessor) score() float64 {
	if a.failures >= offlineAfter {
		return 0
	}
	if a.samples == 0 {
		return ScoreGood
	}
	return ScoreSample(a.avg)
}

// ScoreSample вычисляет оценку одного измерения.
// Веса: задержка 0.35, пропускная способность 0.25, потери 0.25, джиттер 0.15.
func ScoreSample(s Sample) float64 {
	if !s.Online {
		return 0
	}
	latency := clamp01(1 - float64(s.Latency)/float64(2*time.Second))
	bandwidth := clamp01(s.BandwidthKbps / 10000)
	loss := clamp01(1 - s.PacketLoss*5)
	jitter := clamp01(1 - float64(s.Jitter)/float64(500*time.Millisecond))

	return 100 * (0.35*latency + 0.25*bandwidth + 0.25*loss + 0.15*jitter)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Strategy подбирает параметры синхронизации по текущей оценке
func (a *NetworkAssessor) Strategy() SyncStrategy {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return StrategyForScore(a.score())
}

// StrategyForScore maps a quality score onto sync parameters.
func StrategyForScore(score float64) SyncStrategy {
	switch {
	case score >= ScoreExcellent:
		return SyncStrategy{Score: score, BatchSize: 50, RetryPolicy: RetryImmediate, Timeout: 5 * time.Second}
	case score >= ScoreGood:
		return SyncStrategy{Score: score, BatchSize: 20, RetryPolicy: RetryExponential, Timeout: 10 * time.Second, Compression: true}
	case score >= ScorePoor:
		return SyncStrategy{Score: score, BatchSize: 5, RetryPolicy: RetryDelayed, Timeout: 30 * time.Second, Compression: true}
	default:
		return SyncStrategy{Score: score, BatchSize: 1, RetryPolicy: RetryDelayed, Timeout: 30 * time.Second, Compression: true, Defer: true}
	}
}

// LastSample returns the smoothed sample and the time of the last measurement.
func (a *NetworkAssessor) LastSample() (Sample, time.Time) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.avg, a.lastAt
}
