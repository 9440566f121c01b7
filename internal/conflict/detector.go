// Package conflict обнаруживает и разрешает конфликты между локальной и удаленной версией записи.
package conflict

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/syncerr"
)

// DetectorConfig пороги детектора
type DetectorConfig struct {
	MoodThreshold     float64       `mapstructure:"mood_threshold"`     // MoodThreshold допустимая разница настроения в баллах
	ScoreDeltaSafety  float64       `mapstructure:"score_delta_safety"` // ScoreDeltaSafety разница баллов опросника, с которой конфликт safety_critical
	TimestampSkew     time.Duration `mapstructure:"timestamp_skew"`     // TimestampSkew допустимое расхождение времени изменения
	CrisisDeadline    time.Duration `mapstructure:"crisis_deadline"`    // CrisisDeadline дедлайн разрешения в кризисном режиме
	EmergencyDeadline time.Duration `mapstructure:"emergency_deadline"` // EmergencyDeadline дедлайн для конфликтов emergency
}

// DefaultDetectorConfig returns the default detector thresholds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MoodThreshold:     1,
		ScoreDeltaSafety:  5,
		TimestampSkew:     time.Hour,
		CrisisDeadline:    200 * time.Millisecond,
		EmergencyDeadline: 60 * time.Second,
	}
}

// DetectionContext обстоятельства, в которых сравниваются версии
type DetectionContext struct {
	Device     models.DeviceContext
	CrisisMode bool
}

// Detector сравнивает локальную и удаленную версию записи.
// Не выполняет I/O; время берется из переданной функции now.
type Detector struct {
	policies *PolicyTable
	now      func() time.Time
	cfg      DetectorConfig
}

// NewDetector creates a detector. A nil now defaults to time.Now.
func NewDetector(cfg DetectorConfig, policies *PolicyTable, now func() time.Time) *Detector {
	if now == nil {
		now = time.Now
	}
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &Detector{cfg: cfg, policies: policies, now: now}
}

// Detect возвращает упорядоченный список конфликтов между local и remote.
// Проходы выполняются последовательно: метаданные, затем проверки по типу записи.
// Конфликт раннего прохода не подавляет последующие.
func (d *Detector) Detect(local, remote *models.SyncEntity, dctx DetectionContext) ([]models.SyncConflict, error) {
	if local == nil || remote == nil {
		return nil, syncerr.New(syncerr.KindValidation, "detect", "both versions are required")
	}
	if local.ID != remote.ID {
		return nil, syncerr.New(syncerr.KindValidation, "detect", "entity id mismatch: %q vs %q", local.ID, remote.ID)
	}
	if local.Type != remote.Type {
		return nil, syncerr.New(syncerr.KindValidation, "detect", "entity type mismatch: %q vs %q", local.Type, remote.Type)
	}

	var found []models.SyncConflict
	add := func(ct models.ConflictType, sev models.Severity, field, detail string) {
		found = append(found, models.SyncConflict{
			Local:    local,
			Remote:   remote,
			EntityID: local.ID,
			Type:     ct,
			Field:    field,
			Detail:   detail,
			Severity: sev,
		})
	}

	// Проход 1: метаданные
	if local.Version != remote.Version {
		add(models.ConflictVersionMismatch, models.SeverityRoutine, "",
			fmt.Sprintf("version %d vs %d", local.Version, remote.Version))
	}
	if local.Checksum != remote.Checksum {
		add(models.ConflictChecksumMismatch, models.SeverityRoutine, "", "content differs")
	}
	skew := local.LastModified.Sub(remote.LastModified)
	if skew < 0 {
		skew = -skew
	}
	if skew > d.cfg.TimestampSkew {
		add(models.ConflictTimestampAnomaly, models.SeverityRoutine, "",
			fmt.Sprintf("last modified differs by %s", skew.Round(time.Second)))
	}

	// Проход 2: проверки по типу записи
	switch local.Type {
	case models.EntityCheckIn:
		lm, lok := local.Payload.Number(models.FieldMood)
		rm, rok := remote.Payload.Number(models.FieldMood)
		if lok && rok && math.Abs(lm-rm) > d.cfg.MoodThreshold {
			add(models.ConflictClinicalDivergence, models.SeverityClinical, models.FieldMood,
				fmt.Sprintf("mood %g vs %g", lm, rm))
		}
	case models.EntityAssessment:
		if sev, detail, ok := d.assessmentDivergence(local.Payload, remote.Payload); ok {
			add(models.ConflictClinicalDivergence, sev, models.FieldTotalScore, detail)
		}
	case models.EntityCrisisPlan:
		if !sameJSON(local.Payload.EmergencyContacts(), remote.Payload.EmergencyContacts()) {
			add(models.ConflictClinicalDivergence, models.SeveritySafetyCritical, models.FieldEmergencyContacts,
				fmt.Sprintf("emergency contacts %d vs %d", len(local.Payload.EmergencyContacts()), len(remote.Payload.EmergencyContacts())))
		}
	case models.EntityUserProfile:
		lt, _ := local.Payload.String(models.FieldSubscriptionTier)
		rt, _ := remote.Payload.String(models.FieldSubscriptionTier)
		if lt != rt {
			add(models.ConflictSubscriptionTier, models.SeverityRoutine, models.FieldSubscriptionTier,
				fmt.Sprintf("tier %q vs %q", lt, rt))
		}
	default:
		return nil, syncerr.New(syncerr.KindValidation, "detect", "unknown entity type %q", local.Type)
	}

	// Проход 3: обогащение контекстом
	now := d.now()
	policy := d.policies.For(local.Type)
	for i := range found {
		c := &found[i]
		c.ID = conflictID(local, remote, c.Type, i)
		c.EntityType = local.Type
		c.DetectedAt = now
		c.Device = dctx.Device
		c.CrisisMode = dctx.CrisisMode
		switch {
		case dctx.CrisisMode:
			c.ResolutionDeadline = now.Add(d.cfg.CrisisDeadline)
		case c.Severity == models.SeverityEmergency:
			c.ResolutionDeadline = now.Add(d.cfg.EmergencyDeadline)
		}
		switch {
		case dctx.CrisisMode || c.Severity == models.SeverityEmergency:
			c.SuggestedStrategy = policy.CrisisOverrideStrategy
		case policy.RequiresClinicalReview && c.HasClinicalContext():
			c.SuggestedStrategy = models.StrategyClinicalValidation
		default:
			c.SuggestedStrategy = policy.StrategyFor(c.Type)
		}
	}

	return found, nil
}

func (d *Detector) assessmentDivergence(local, remote models.Payload) (models.Severity, string, bool) {
	ls, lok := local.Number(models.FieldTotalScore)
	rs, rok := remote.Number(models.FieldTotalScore)
	if lok != rok {
		return models.SeverityClinical, "totalScore present on one side only", true
	}
	if !lok || ls == rs {
		return models.SeverityRoutine, "", false
	}

	kind, _ := local.String(models.FieldAssessmentType)
	if kind == "" {
		kind, _ = remote.String(models.FieldAssessmentType)
	}
	threshold := models.CrisisThreshold(kind)
	detail := fmt.Sprintf("totalScore %g vs %g", ls, rs)

	switch {
	case ls >= threshold || rs >= threshold:
		return models.SeverityEmergency, detail + fmt.Sprintf(" (crisis threshold %g)", threshold), true
	case math.Abs(ls-rs) >= d.cfg.ScoreDeltaSafety:
		return models.SeveritySafetyCritical, detail, true
	default:
		return models.SeverityClinical, detail, true
	}
}

// conflictID детерминированный идентификатор конфликта для пары версий
func conflictID(local, remote *models.SyncEntity, ct models.ConflictType, idx int) string {
	return fmt.Sprintf("%s:%d:%d:%s:%d", local.ID, local.Version, remote.Version, ct, idx)
}

func sameJSON(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}

// HighestSeverity returns the conflict with the highest severity, the first one on ties.
func HighestSeverity(conflicts []models.SyncConflict) (models.SyncConflict, bool) {
	if len(conflicts) == 0 {
		return models.SyncConflict{}, false
	}
	best := conflicts[0]
	for _, c := range conflicts[1:] {
		if c.Severity > best.Severity {
			best = c
		}
	}
	return best, true
}
