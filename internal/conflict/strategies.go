package conflict

import (
	"fmt"

	"github.com/iudanet/carekeeper/internal/models"
)

// outcome промежуточный результат выполнения стратегии
type outcome struct {
	payload    models.Payload
	base       *models.SyncEntity // base сторона, чьи метаданные (deleted) переносятся в результат
	strategy   models.Strategy    // strategy фактически примененная стратегия (с учетом fallback)
	reason     string
	discarded  []string
	confidence float64
	merged     bool
}

func pick(side *models.SyncEntity, strategy models.Strategy, reason string) outcome {
	return outcome{
		payload:    side.Payload.Clone(),
		base:       side,
		strategy:   strategy,
		reason:     reason,
		confidence: 1,
	}
}

func sideName(c *models.SyncConflict, e *models.SyncEntity) string {
	if e == c.Local {
		return "local"
	}
	return "remote"
}

// latestWins выбирает версию с более поздним LastModified; при равенстве - локальную
func latestWins(c *models.SyncConflict, t *auditTrail) outcome {
	chosen, reason := c.Local, "local modified later or at the same time"
	if c.Remote.IsNewerThan(c.Local) {
		chosen, reason = c.Remote, "remote modified later"
	}
	t.add(models.AuditSideSelected, fmt.Sprintf("%s: %s", sideName(c, chosen), reason))
	return pick(chosen, models.StrategyLatestWins, reason)
}

func fixedSide(c *models.SyncConflict, t *auditTrail, s models.Strategy) outcome {
	chosen, reason := c.Local, "client version is authoritative"
	switch s {
	case models.StrategyServerWins:
		chosen, reason = c.Remote, "server version is authoritative"
	case models.StrategyPaymentAuthoritative:
		chosen, reason = c.Remote, "subscription state is owned by the payment provider"
	}
	t.add(models.AuditSideSelected, fmt.Sprintf("%s: %s", sideName(c, chosen), reason))
	return pick(chosen, s, reason)
}

// clinicalValidation выбирает единственную клинически валидную сторону.
// Если валидны обе или ни одной, применяется latest_wins.
func clinicalValidation(c *models.SyncConflict, t *auditTrail) outcome {
	lv := ValidateClinical(c.Local)
	rv := ValidateClinical(c.Remote)
	lq, rq := qualifies(lv), qualifies(rv)
	t.add(models.AuditSideSelected, fmt.Sprintf("validation local=%t remote=%t", lq, rq))

	switch {
	case lq && !rq:
		return pick(c.Local, models.StrategyClinicalValidation, "only local version passes clinical validation")
	case rq && !lq:
		return pick(c.Remote, models.StrategyClinicalValidation, "only remote version passes clinical validation")
	}

	t.add(models.AuditFallback, "clinical validation inconclusive, falling back to latest_wins")
	return latestWins(c, t)
}

// intelligentMerge сливает payload по полям; при низкой уверенности применяется latest_wins
func intelligentMerge(c *models.SyncConflict, t *auditTrail, threshold float64) outcome {
	if c.Local.Deleted || c.Remote.Deleted {
		t.add(models.AuditFallback, "tombstone cannot be merged, falling back to latest_wins")
		return latestWins(c, t)
	}

	m := mergePayloads(c.Local.Payload, c.Remote.Payload)
	for _, f := range m.Fields {
		if f.Ambiguous {
			t.add(models.AuditFieldDiscarded, fmt.Sprintf("%s: %s", f.Field, f.Rule))
			continue
		}
		t.add(models.AuditFieldMerged, fmt.Sprintf("%s: %s", f.Field, f.Rule))
	}

	if m.Confidence < threshold {
		t.add(models.AuditFallback, fmt.Sprintf("merge confidence %.2f below %.2f, falling back to latest_wins", m.Confidence, threshold))
		o := latestWins(c, t)
		o.confidence = m.Confidence
		// контакты и клинические баллы не теряются и при откате к latest_wins
		for _, f := range m.Fields {
			if !f.Safety {
				continue
			}
			o.payload[f.Field] = cloneAny(m.Payload[f.Field])
			t.add(models.AuditFieldMerged, fmt.Sprintf("%s: %s kept after fallback", f.Field, f.Rule))
		}
		return o
	}

	return outcome{
		payload:    m.Payload,
		base:       c.Local,
		strategy:   models.StrategyIntelligentMerge,
		reason:     fmt.Sprintf("merged %d fields with confidence %.2f", m.Compared, m.Confidence),
		discarded:  m.Discarded,
		confidence: m.Confidence,
		merged:     true,
	}
}

// crisisOverride выбирает сторону, максимизирующую безопасность
func crisisOverride(c *models.SyncConflict, t *auditTrail) outcome {
	var chosen *models.SyncEntity
	var reason string

	switch c.Local.Type {
	case models.EntityCrisisPlan:
		ln, rn := len(c.Local.Payload.EmergencyContacts()), len(c.Remote.Payload.EmergencyContacts())
		switch {
		case ln > rn:
			chosen, reason = c.Local, fmt.Sprintf("local crisis plan has more emergency contacts (%d > %d)", ln, rn)
		case rn > ln:
			chosen, reason = c.Remote, fmt.Sprintf("remote crisis plan has more emergency contacts (%d > %d)", rn, ln)
		}
	case models.EntityAssessment:
		ls := scoreOf(c.Local)
		rs := scoreOf(c.Remote)
		switch {
		case ls > rs:
			chosen, reason = c.Local, fmt.Sprintf("local has higher crisis indicator (totalScore %g > %g)", ls, rs)
		case rs > ls:
			chosen, reason = c.Remote, fmt.Sprintf("remote has higher crisis indicator (totalScore %g > %g)", rs, ls)
		}
	case models.EntityCheckIn, models.EntityUserProfile:
	}

	if chosen == nil {
		chosen, reason = c.Local, "most recent version"
		if c.Remote.IsNewerThan(c.Local) {
			chosen = c.Remote
		}
	}

	t.add(models.AuditSideSelected, fmt.Sprintf("%s: %s", sideName(c, chosen), reason))
	return pick(chosen, models.StrategyCrisisOverride, reason)
}

func scoreOf(e *models.SyncEntity) float64 {
	if s, ok := e.Payload.Number(models.FieldTotalScore); ok {
		return s
	}
	return -1
}
