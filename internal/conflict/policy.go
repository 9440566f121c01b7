package conflict

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iudanet/carekeeper/internal/models"
)

// Policy конфигурация разрешения конфликтов для одного типа записи.
// После загрузки не изменяется.
type Policy struct {
	Strategies             map[models.ConflictType]models.Strategy `yaml:"strategies"`
	DefaultStrategy        models.Strategy                         `yaml:"default_strategy"`
	CrisisOverrideStrategy models.Strategy                         `yaml:"crisis_override_strategy"`
	TimeoutBudget          time.Duration                           `yaml:"timeout_budget"`
	RequiresClinicalReview bool                                    `yaml:"requires_clinical_review"`
}

// StrategyFor returns the configured strategy for the conflict type, or the default.
func (p Policy) StrategyFor(ct models.ConflictType) models.Strategy {
	if s, ok := p.Strategies[ct]; ok {
		return s
	}
	return p.DefaultStrategy
}

// Validate проверяет, что политика использует только известные значения.
// manual_review допустим только как аварийный путь и не может быть настроен явно.
func (p Policy) Validate() error {
	if err := validateConfigured(p.DefaultStrategy); err != nil {
		return fmt.Errorf("default_strategy: %w", err)
	}
	if p.CrisisOverrideStrategy != models.StrategyCrisisOverride {
		return fmt.Errorf("crisis_override_strategy must be %q, got %q", models.StrategyCrisisOverride, p.CrisisOverrideStrategy)
	}
	if p.TimeoutBudget <= 0 {
		return fmt.Errorf("timeout_budget must be positive")
	}
	for ct, s := range p.Strategies {
		if !ct.Valid() {
			return fmt.Errorf("unknown conflict type %q", ct)
		}
		if err := validateConfigured(s); err != nil {
			return fmt.Errorf("strategies[%s]: %w", ct, err)
		}
	}
	return nil
}

func validateConfigured(s models.Strategy) error {
	if !s.Valid() {
		return fmt.Errorf("unknown strategy %q", s)
	}
	if s == models.StrategyManualReview {
		return fmt.Errorf("strategy %q cannot be configured", s)
	}
	return nil
}

func (p Policy) clone() Policy {
	cp := p
	cp.Strategies = make(map[models.ConflictType]models.Strategy, len(p.Strategies))
	for k, v := range p.Strategies {
		cp.Strategies[k] = v
	}
	return cp
}

// PolicyTable набор политик по типам записей
type PolicyTable struct {
	policies map[models.EntityType]Policy
}

// DefaultPolicies returns the built-in policy table.
func DefaultPolicies() *PolicyTable {
	return &PolicyTable{policies: map[models.EntityType]Policy{
		models.EntityCheckIn: {
			DefaultStrategy:        models.StrategyIntelligentMerge,
			CrisisOverrideStrategy: models.StrategyCrisisOverride,
			TimeoutBudget:          5 * time.Second,
			Strategies: map[models.ConflictType]models.Strategy{
				models.ConflictVersionMismatch:    models.StrategyLatestWins,
				models.ConflictTimestampAnomaly:   models.StrategyLatestWins,
				models.ConflictChecksumMismatch:   models.StrategyIntelligentMerge,
				models.ConflictClinicalDivergence: models.StrategyIntelligentMerge,
			},
		},
		models.EntityAssessment: {
			DefaultStrategy:        models.StrategyClinicalValidation,
			CrisisOverrideStrategy: models.StrategyCrisisOverride,
			TimeoutBudget:          2 * time.Second,
			RequiresClinicalReview: true,
			Strategies: map[models.ConflictType]models.Strategy{
				models.ConflictVersionMismatch:    models.StrategyLatestWins,
				models.ConflictTimestampAnomaly:   models.StrategyLatestWins,
				models.ConflictChecksumMismatch:   models.StrategyClinicalValidation,
				models.ConflictClinicalDivergence: models.StrategyIntelligentMerge,
			},
		},
		models.EntityCrisisPlan: {
			DefaultStrategy:        models.StrategyIntelligentMerge,
			CrisisOverrideStrategy: models.StrategyCrisisOverride,
			TimeoutBudget:          200 * time.Millisecond,
			Strategies: map[models.ConflictType]models.Strategy{
				models.ConflictVersionMismatch:    models.StrategyIntelligentMerge,
				models.ConflictChecksumMismatch:   models.StrategyIntelligentMerge,
				models.ConflictClinicalDivergence: models.StrategyIntelligentMerge,
				models.ConflictTimestampAnomaly:   models.StrategyLatestWins,
			},
		},
		models.EntityUserProfile: {
			DefaultStrategy:        models.StrategyLatestWins,
			CrisisOverrideStrategy: models.StrategyCrisisOverride,
			TimeoutBudget:          5 * time.Second,
			Strategies: map[models.ConflictType]models.Strategy{
				models.ConflictSubscriptionTier: models.StrategyPaymentAuthoritative,
				models.ConflictVersionMismatch:  models.StrategyLatestWins,
			},
		},
	}}
}

// For возвращает копию политики для типа записи.
// Для неизвестного типа возвращается политика latest_wins.
func (t *PolicyTable) For(et models.EntityType) Policy {
	if p, ok := t.policies[et]; ok {
		return p.clone()
	}
	return Policy{
		DefaultStrategy:        models.StrategyLatestWins,
		CrisisOverrideStrategy: models.StrategyCrisisOverride,
		TimeoutBudget:          5 * time.Second,
	}
}

// Validate validates every policy in the table.
func (t *PolicyTable) Validate() error {
	for _, et := range models.AllEntityTypes() {
		p, ok := t.policies[et]
		if !ok {
			return fmt.Errorf("missing policy for %s", et)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("policy %s: %w", et, err)
		}
	}
	return nil
}

// policyOverride частичная политика из файла: незаданные поля берутся из встроенной таблицы
type policyOverride struct {
	Strategies             map[models.ConflictType]models.Strategy `yaml:"strategies"`
	DefaultStrategy        *models.Strategy                        `yaml:"default_strategy"`
	CrisisOverrideStrategy *models.Strategy                        `yaml:"crisis_override_strategy"`
	TimeoutBudget          *time.Duration                          `yaml:"timeout_budget"`
	RequiresClinicalReview *bool                                   `yaml:"requires_clinical_review"`
}

// LoadPolicies читает YAML с переопределениями политик и накладывает их на встроенную таблицу.
//
//	assessment:
//	  default_strategy: latest_wins
//	  strategies:
//	    clinical_data_divergence: intelligent_merge
func LoadPolicies(r io.Reader) (*PolicyTable, error) {
	var overrides map[models.EntityType]policyOverride
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&overrides); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode policies: %w", err)
	}

	table := DefaultPolicies()
	for et, o := range overrides {
		if !et.Valid() {
			return nil, fmt.Errorf("unknown entity type %q in policies", et)
		}
		p := table.policies[et].clone()
		if o.DefaultStrategy != nil {
			p.DefaultStrategy = *o.DefaultStrategy
		}
		if o.CrisisOverrideStrategy != nil {
			p.CrisisOverrideStrategy = *o.CrisisOverrideStrategy
		}
		if o.TimeoutBudget != nil {
			p.TimeoutBudget = *o.TimeoutBudget
		}
		if o.RequiresClinicalReview != nil {
			p.RequiresClinicalReview = *o.RequiresClinicalReview
		}
		for ct, s := range o.Strategies {
			p.Strategies[ct] = s
		}
		table.policies[et] = p
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// LoadPolicyFile loads policy overrides from a YAML file.
// An empty path returns the built-in table.
func LoadPolicyFile(path string) (*PolicyTable, error) {
	if path == "" {
		return DefaultPolicies(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open policy file: %w", err)
	}
	defer f.Close()

	return LoadPolicies(f)
}
