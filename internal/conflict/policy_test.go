package conflict

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/carekeeper/internal/models"
)

func TestDefaultPolicies_Valid(t *testing.T) {
	table := DefaultPolicies()
	require.NoError(t, table.Validate())

	for _, et := range models.AllEntityTypes() {
		p := table.For(et)
		assert.Equal(t, models.StrategyCrisisOverride, p.CrisisOverrideStrategy, et)
		assert.Positive(t, p.TimeoutBudget, et)
	}
}

func TestPolicyTable_ForReturnsCopy(t *testing.T) {
	table := DefaultPolicies()
	p := table.For(models.EntityCheckIn)
	p.Strategies[models.ConflictVersionMismatch] = models.StrategyServerWins

	assert.Equal(t, models.StrategyLatestWins, table.For(models.EntityCheckIn).StrategyFor(models.ConflictVersionMismatch))
}

func TestLoadPolicies(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		errMsg  string
		wantErr bool
		check   func(t *testing.T, table *PolicyTable)
	}{
		{
			name: "empty input keeps defaults",
			yaml: "",
			check: func(t *testing.T, table *PolicyTable) {
				assert.Equal(t, models.StrategyIntelligentMerge, table.For(models.EntityCheckIn).DefaultStrategy)
			},
		},
		{
			name: "partial override",
			yaml: `
check_in:
  default_strategy: client_wins
  timeout_budget: 750ms
  strategies:
    version_mismatch: server_wins
`,
			check: func(t *testing.T, table *PolicyTable) {
				p := table.For(models.EntityCheckIn)
				assert.Equal(t, models.StrategyClientWins, p.DefaultStrategy)
				assert.Equal(t, 750*time.Millisecond, p.TimeoutBudget)
				assert.Equal(t, models.StrategyServerWins, p.StrategyFor(models.ConflictVersionMismatch))
				assert.Equal(t, models.StrategyIntelligentMerge, p.StrategyFor(models.ConflictClinicalDivergence))
				assert.Equal(t, models.StrategyPaymentAuthoritative,
					table.For(models.EntityUserProfile).StrategyFor(models.ConflictSubscriptionTier))
			},
		},
		{
			name:    "unknown strategy",
			yaml:    "check_in:\n  default_strategy: coin_flip\n",
			wantErr: true,
			errMsg:  "unknown strategy",
		},
		{
			name:    "manual review cannot be configured",
			yaml:    "assessment:\n  strategies:\n    version_mismatch: manual_review\n",
			wantErr: true,
			errMsg:  "cannot be configured",
		},
		{
			name:    "crisis override must stay",
			yaml:    "crisis_plan:\n  crisis_override_strategy: latest_wins\n",
			wantErr: true,
			errMsg:  "crisis_override_strategy",
		},
		{
			name:    "unknown entity type",
			yaml:    "journal:\n  default_strategy: latest_wins\n",
			wantErr: true,
			errMsg:  "unknown entity type",
		},
		{
			name:    "unknown conflict type",
			yaml:    "check_in:\n  strategies:\n    cosmic_ray: latest_wins\n",
			wantErr: true,
			errMsg:  "unknown conflict type",
		},
		{
			name:    "unknown field",
			yaml:    "check_in:\n  fallback: latest_wins\n",
			wantErr: true,
			errMsg:  "failed to decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := LoadPolicies(strings.NewReader(tt.yaml))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			tt.check(t, table)
		})
	}
}

func TestLoadPolicyFile(t *testing.T) {
	table, err := LoadPolicyFile("")
	require.NoError(t, err)
	assert.NotNil(t, table)

	path := filepath.Join(t.TempDir(), "policies.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user_profile:\n  default_strategy: server_wins\n"), 0o600))

	table, err = LoadPolicyFile(path)
	require.NoError(t, err)
	assert.Equal(t, models.StrategyServerWins, table.For(models.EntityUserProfile).DefaultStrategy)

	_, err = LoadPolicyFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
