package models

import (
	"fmt"
	"time"
)

// ConflictType классификация расхождения между локальной и удаленной версией
type ConflictType string

// Типы конфликтов
const (
	ConflictVersionMismatch    ConflictType = "version_mismatch"
	ConflictChecksumMismatch   ConflictType = "checksum_mismatch"
	ConflictTimestampAnomaly   ConflictType = "timestamp_anomaly"
	ConflictClinicalDivergence ConflictType = "clinical_data_divergence"
	ConflictSubscriptionTier   ConflictType = "subscription_tier_mismatch"
)

// Valid reports whether c is a known conflict type.
func (c ConflictType) Valid() bool {
	switch c {
	case ConflictVersionMismatch, ConflictChecksumMismatch, ConflictTimestampAnomaly,
		ConflictClinicalDivergence, ConflictSubscriptionTier:
		return true
	default:
		return false
	}
}

// Severity порядковая оценка клинического риска конфликта.
// routine < clinical < safety_critical < emergency
type Severity int

// Уровни серьезности
const (
	SeverityRoutine Severity = iota
	SeverityClinical
	SeveritySafetyCritical
	SeverityEmergency
)

var severityNames = map[Severity]string{
	SeverityRoutine:        "routine",
	SeverityClinical:       "clinical",
	SeveritySafetyCritical: "safety_critical",
	SeverityEmergency:      "emergency",
}

// String implements fmt.Stringer.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	name, ok := severityNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown severity %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	for sev, name := range severityNames {
		if name == string(text) {
			*s = sev
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", string(text))
}

// Strategy стратегия разрешения конфликта
type Strategy string

// Стратегии разрешения
const (
	StrategyLatestWins           Strategy = "latest_wins"
	StrategyServerWins           Strategy = "server_wins"
	StrategyClientWins           Strategy = "client_wins"
	StrategyPaymentAuthoritative Strategy = "payment_authoritative"
	StrategyClinicalValidation   Strategy = "clinical_validation"
	StrategyIntelligentMerge     Strategy = "intelligent_merge"
	StrategyCrisisOverride       Strategy = "crisis_override"
	StrategyManualReview         Strategy = "manual_review"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyLatestWins, StrategyServerWins, StrategyClientWins, StrategyPaymentAuthoritative,
		StrategyClinicalValidation, StrategyIntelligentMerge, StrategyCrisisOverride, StrategyManualReview:
		return true
	default:
		return false
	}
}

// DeviceContext информация об устройстве и сети на момент обнаружения конфликта
type DeviceContext struct {
	DeviceID       string `json:"device_id"`
	Platform       string `json:"platform,omitempty"`
	NetworkQuality int    `json:"network_quality"` // 0-100, см. reliability.NetworkAssessor
	Online         bool   `json:"online"`
}

// SyncConflict описывает расхождение между локальной и удаленной версией одной записи.
// Создается детектором на каждую попытку синхронизации и после создания не изменяется.
type SyncConflict struct {
	DetectedAt         time.Time     `json:"detected_at"`
	ResolutionDeadline time.Time     `json:"resolution_deadline,omitzero"` // нулевое значение - без дедлайна
	Local              *SyncEntity   `json:"local"`
	Remote             *SyncEntity   `json:"remote"`
	Device             DeviceContext `json:"device"`
	ID                 string        `json:"id"`
	EntityID           string        `json:"entity_id"`
	EntityType         EntityType    `json:"entity_type"`
	Type               ConflictType  `json:"type"`
	Field              string        `json:"field,omitempty"`
	Detail             string        `json:"detail,omitempty"`
	SuggestedStrategy  Strategy      `json:"suggested_strategy"`
	Severity           Severity      `json:"severity"`
	CrisisMode         bool          `json:"crisis_mode"`
}

// HasDeadline reports whether the conflict must be resolved before a deadline.
func (c *SyncConflict) HasDeadline() bool {
	return !c.ResolutionDeadline.IsZero()
}

// HasClinicalContext сообщает, затрагивает ли конфликт клинические данные
func (c *SyncConflict) HasClinicalContext() bool {
	return c.Type == ConflictClinicalDivergence || c.Severity >= SeverityClinical
}

// ResolutionContext описывает обстоятельства, в которых разрешается конфликт
type ResolutionContext struct {
	SubscriptionTier        Tier     `json:"subscription_tier"`
	Priority                Priority `json:"priority"`
	CrisisMode              bool     `json:"crisis_mode"`
	CanIntervene            bool     `json:"can_intervene"` // пользователь может вмешаться вручную
	ClinicalReviewAvailable bool     `json:"clinical_review_available"`
}

// AuditAction шаг журнала разрешения конфликта
type AuditAction string

// Шаги журнала
const (
	AuditConflictDetected    AuditAction = "conflict_detected"
	AuditStrategySelected    AuditAction = "strategy_selected"
	AuditSideSelected        AuditAction = "side_selected"
	AuditFieldMerged         AuditAction = "field_merged"
	AuditFieldDiscarded      AuditAction = "field_discarded"
	AuditFallback            AuditAction = "strategy_fallback"
	AuditValidationRejected  AuditAction = "validation_rejected"
	AuditResolutionValidated AuditAction = "resolution_validated"
	AuditResolutionFailed    AuditAction = "resolution_failed"
)

// AuditStep одна запись журнала разрешения
type AuditStep struct {
	Timestamp time.Time   `json:"timestamp"`
	Action    AuditAction `json:"action"`
	Detail    string      `json:"detail"`
	Step      int         `json:"step"`
}

// ClinicalValidation результат клинической проверки payload
type ClinicalValidation struct {
	Issues                []string `json:"data_integrity_issues"`
	IsValid               bool     `json:"is_valid"`
	ValidAssessmentScores bool     `json:"valid_assessment_scores"`
	ValidCrisisThresholds bool     `json:"valid_crisis_thresholds"`
}

// ResolutionResult результат разрешения одного конфликта.
// Создается один раз и сохраняется вызывающим кодом вместе с журналом.
type ResolutionResult struct {
	ResolvedAt         time.Time          `json:"resolved_at"`
	Resolved           *SyncEntity        `json:"resolved"`
	ConflictID         string             `json:"conflict_id"`
	EntityID           string             `json:"entity_id"`
	Reason             string             `json:"reason"`
	StrategyUsed       Strategy           `json:"strategy_used"`
	AuditTrail         []AuditStep        `json:"audit_trail"`
	DiscardedFields    []string           `json:"discarded_fields,omitempty"`
	Validation         ClinicalValidation `json:"clinical_validation"`
	Confidence         float64            `json:"confidence"`
	ResolutionRequired bool               `json:"resolution_required"`
}
