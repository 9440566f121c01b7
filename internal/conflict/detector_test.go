package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/syncerr"
)

func findType(conflicts []models.SyncConflict, ct models.ConflictType) (models.SyncConflict, bool) {
	for _, c := range conflicts {
		if c.Type == ct {
			return c, true
		}
	}
	return models.SyncConflict{}, false
}

func TestDetector_Detect(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig(), DefaultPolicies(), fixedNow)
	earlier := testNow.Add(-time.Minute)

	tests := []struct {
		local        *models.SyncEntity
		remote       *models.SyncEntity
		name         string
		wantType     models.ConflictType
		wantSeverity models.Severity
		wantNone     bool
	}{
		{
			name:     "identical versions",
			local:    newEntity(models.EntityCheckIn, 2, earlier, models.Payload{"mood": 6.0}),
			remote:   newEntity(models.EntityCheckIn, 2, earlier, models.Payload{"mood": 6.0}),
			wantNone: true,
		},
		{
			name:         "mood diverges by more than one point",
			local:        newEntity(models.EntityCheckIn, 3, testNow, models.Payload{"mood": 8.0}),
			remote:       newEntity(models.EntityCheckIn, 2, earlier, models.Payload{"mood": 5.0}),
			wantType:     models.ConflictClinicalDivergence,
			wantSeverity: models.SeverityClinical,
		},
		{
			name:         "phq9 crisis score",
			local:        newEntity(models.EntityAssessment, 2, testNow, models.Payload{"assessmentType": "phq9", "totalScore": 22.0}),
			remote:       newEntity(models.EntityAssessment, 2, earlier, models.Payload{"assessmentType": "phq9", "totalScore": 18.0}),
			wantType:     models.ConflictClinicalDivergence,
			wantSeverity: models.SeverityEmergency,
		},
		{
			name:         "gad7 crisis score",
			local:        newEntity(models.EntityAssessment, 2, testNow, models.Payload{"assessmentType": "gad7", "totalScore": 15.0}),
			remote:       newEntity(models.EntityAssessment, 2, earlier, models.Payload{"assessmentType": "gad7", "totalScore": 12.0}),
			wantType:     models.ConflictClinicalDivergence,
			wantSeverity: models.SeverityEmergency,
		},
		{
			name:         "large score delta below threshold",
			local:        newEntity(models.EntityAssessment, 2, testNow, models.Payload{"assessmentType": "phq9", "totalScore": 16.0}),
			remote:       newEntity(models.EntityAssessment, 2, earlier, models.Payload{"assessmentType": "phq9", "totalScore": 10.0}),
			wantType:     models.ConflictClinicalDivergence,
			wantSeverity: models.SeveritySafetyCritical,
		},
		{
			name:         "small score delta",
			local:        newEntity(models.EntityAssessment, 2, testNow, models.Payload{"assessmentType": "phq9", "totalScore": 12.0}),
			remote:       newEntity(models.EntityAssessment, 2, earlier, models.Payload{"assessmentType": "phq9", "totalScore": 10.0}),
			wantType:     models.ConflictClinicalDivergence,
			wantSeverity: models.SeverityClinical,
		},
		{
			name:         "emergency contacts differ",
			local:        newEntity(models.EntityCrisisPlan, 4, testNow, models.Payload{"emergencyContacts": []any{"mom"}}),
			remote:       newEntity(models.EntityCrisisPlan, 4, earlier, models.Payload{"emergencyContacts": []any{"mom", "therapist"}}),
			wantType:     models.ConflictClinicalDivergence,
			wantSeverity: models.SeveritySafetyCritical,
		},
		{
			name:         "subscription tier differs",
			local:        newEntity(models.EntityUserProfile, 1, testNow, models.Payload{"subscriptionTier": "free"}),
			remote:       newEntity(models.EntityUserProfile, 1, earlier, models.Payload{"subscriptionTier": "premium"}),
			wantType:     models.ConflictSubscriptionTier,
			wantSeverity: models.SeverityRoutine,
		},
		{
			name:         "timestamp anomaly",
			local:        newEntity(models.EntityCheckIn, 2, testNow, models.Payload{"mood": 6.0}),
			remote:       newEntity(models.EntityCheckIn, 2, testNow.Add(-2*time.Hour), models.Payload{"mood": 6.0}),
			wantType:     models.ConflictTimestampAnomaly,
			wantSeverity: models.SeverityRoutine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflicts, err := d.Detect(tt.local, tt.remote, DetectionContext{})
			require.NoError(t, err)

			if tt.wantNone {
				assert.Empty(t, conflicts)
				return
			}

			c, ok := findType(conflicts, tt.wantType)
			require.True(t, ok, "expected %s in %v", tt.wantType, conflicts)
			assert.Equal(t, tt.wantSeverity, c.Severity)
			assert.Equal(t, testNow, c.DetectedAt)
			assert.Equal(t, tt.local.Type, c.EntityType)
			assert.NotEmpty(t, c.ID)
		})
	}
}

func TestDetector_MoodWithinThreshold(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig(), nil, fixedNow)
	local := newEntity(models.EntityCheckIn, 3, testNow, models.Payload{"mood": 6.0})
	remote := newEntity(models.EntityCheckIn, 2, testNow, models.Payload{"mood": 5.0})

	conflicts, err := d.Detect(local, remote, DetectionContext{})
	require.NoError(t, err)

	_, ok := findType(conflicts, models.ConflictClinicalDivergence)
	assert.False(t, ok, "разница в 1 балл не является клиническим расхождением")
	_, ok = findType(conflicts, models.ConflictVersionMismatch)
	assert.True(t, ok)
	_, ok = findType(conflicts, models.ConflictChecksumMismatch)
	assert.True(t, ok)
}

func TestDetector_PassOrder(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig(), nil, fixedNow)
	local := newEntity(models.EntityCheckIn, 3, testNow, models.Payload{"mood": 9.0})
	remote := newEntity(models.EntityCheckIn, 2, testNow.Add(-3*time.Hour), models.Payload{"mood": 2.0})

	conflicts, err := d.Detect(local, remote, DetectionContext{})
	require.NoError(t, err)

	var types []models.ConflictType
	for _, c := range conflicts {
		types = append(types, c.Type)
	}
	assert.Equal(t, []models.ConflictType{
		models.ConflictVersionMismatch,
		models.ConflictChecksumMismatch,
		models.ConflictTimestampAnomaly,
		models.ConflictClinicalDivergence,
	}, types)
}

func TestDetector_Deadlines(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig(), nil, fixedNow)
	device := models.DeviceContext{DeviceID: "phone", NetworkQuality: 40, Online: true}

	t.Run("emergency gets 60s", func(t *testing.T) {
		local := newEntity(models.EntityAssessment, 2, testNow, models.Payload{"totalScore": 22.0})
		remote := newEntity(models.EntityAssessment, 2, testNow, models.Payload{"totalScore": 18.0})

		conflicts, err := d.Detect(local, remote, DetectionContext{Device: device})
		require.NoError(t, err)

		c, ok := HighestSeverity(conflicts)
		require.True(t, ok)
		assert.Equal(t, models.SeverityEmergency, c.Severity)
		assert.True(t, c.HasDeadline())
		assert.Equal(t, testNow.Add(60*time.Second), c.ResolutionDeadline)
		assert.Equal(t, models.StrategyCrisisOverride, c.SuggestedStrategy)
		assert.Equal(t, device, c.Device)

		checksum, ok := findType(conflicts, models.ConflictChecksumMismatch)
		require.True(t, ok)
		assert.False(t, checksum.HasDeadline())
	})

	t.Run("crisis mode forces 200ms on every conflict", func(t *testing.T) {
		local := newEntity(models.EntityUserProfile, 2, testNow, models.Payload{"subscriptionTier": "free"})
		remote := newEntity(models.EntityUserProfile, 1, testNow, models.Payload{"subscriptionTier": "premium"})

		conflicts, err := d.Detect(local, remote, DetectionContext{Device: device, CrisisMode: true})
		require.NoError(t, err)
		require.NotEmpty(t, conflicts)

		for _, c := range conflicts {
			assert.Equal(t, testNow.Add(200*time.Millisecond), c.ResolutionDeadline)
			assert.True(t, c.CrisisMode)
			assert.Equal(t, models.StrategyCrisisOverride, c.SuggestedStrategy)
		}
	})
}

func TestDetector_InvalidInput(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig(), nil, fixedNow)
	a := newEntity(models.EntityCheckIn, 1, testNow, models.Payload{"mood": 5.0})
	b := newEntity(models.EntityCheckIn, 1, testNow, models.Payload{"mood": 5.0})
	b.ID = "other"

	_, err := d.Detect(a, b, DetectionContext{})
	require.Error(t, err)
	assert.Equal(t, syncerr.KindValidation, syncerr.KindOf(err))

	_, err = d.Detect(a, nil, DetectionContext{})
	assert.ErrorIs(t, err, syncerr.ErrValidation)

	c := newEntity(models.EntityAssessment, 1, testNow, models.Payload{})
	_, err = d.Detect(a, c, DetectionContext{})
	assert.Error(t, err)
}

func TestDetector_ConfigurableMoodThreshold(t *testing.T) {
	cfg := DefaultDetectorConfig()
	cfg.MoodThreshold = 3
	d := NewDetector(cfg, nil, fixedNow)

	local := newEntity(models.EntityCheckIn, 2, testNow, models.Payload{"mood": 8.0})
	remote := newEntity(models.EntityCheckIn, 2, testNow, models.Payload{"mood": 5.0})

	conflicts, err := d.Detect(local, remote, DetectionContext{})
	require.NoError(t, err)
	_, ok := findType(conflicts, models.ConflictClinicalDivergence)
	assert.False(t, ok)
}
