package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/carekeeper/internal/guardian"
)

func TestCli_runCrisis(t *testing.T) {
	plan := crisisPlan("cp-1", 3)
	svc := &ServiceMock{
		HotlineFunc: func() guardian.Hotline { return guardian.CrisisHotline },
		GetCrisisDataFunc: func(_ context.Context, entityID string) guardian.CrisisResult {
			return guardian.CrisisResult{
				Data:                plan,
				DataSource:          guardian.SourceCache,
				ResponseTime:        time.Millisecond,
				Budget:              200 * time.Millisecond,
				GuaranteeCompliance: true,
			}
		},
		GetEmergencyContactsFunc: func(_ context.Context, entityID string) guardian.CrisisResult {
			return guardian.CrisisResult{
				DataSource:   guardian.SourceStorage,
				ResponseTime: 150 * time.Millisecond,
				Budget:       100 * time.Millisecond,
			}
		},
	}
	c, out := newTestCli(svc, nil)

	require.NoError(t, c.runCrisis(context.Background(), "cp-1"))

	got := out.String()
	assert.Contains(t, got, "☎  988 Suicide & Crisis Lifeline: 988")
	assert.Less(t, strings.Index(got, "988"), strings.Index(got, "=== Safety plan ==="), "hotline comes first")
	assert.Contains(t, got, "Source: cache, 1ms of 200ms")
	assert.Contains(t, got, `"title": "My plan"`)
	assert.Contains(t, got, "=== Emergency contacts ===\n(unavailable)")
	assert.Contains(t, got, "(budget 200ms)", "ответ кнопки ограничен самым долгим из чтений")

	require.Len(t, svc.GetCrisisDataCalls(), 1)
	assert.Equal(t, "cp-1", svc.GetCrisisDataCalls()[0].EntityID)
	require.Len(t, svc.GetEmergencyContactsCalls(), 1)
	assert.Equal(t, "cp-1", svc.GetEmergencyContactsCalls()[0].EntityID)
}

func TestCli_printCrisisResult_OverBudget(t *testing.T) {
	c, out := newTestCli(&ServiceMock{}, nil)

	c.printCrisisResult("Safety plan", guardian.CrisisResult{
		Data:         guardian.FallbackSafetyPlan(),
		DataSource:   guardian.SourceFallback,
		ResponseTime: 250 * time.Millisecond,
		Budget:       200 * time.Millisecond,
	})

	got := out.String()
	assert.Contains(t, got, "Source: fallback, 250ms of 200ms ⚠️  over budget")
	assert.Contains(t, got, "emergencyContacts")
}

func TestRunHotline(t *testing.T) {
	out := &output{}
	runHotline(out.mock())

	assert.Equal(t,
		"☎  988 Suicide & Crisis Lifeline: 988\nCall or text 988. If you are in immediate danger, call 911.\n",
		out.String())
}
