package conflict

import (
	"fmt"

	"github.com/iudanet/carekeeper/internal/models"
)

// Границы шкалы настроения для check_in
const (
	MoodMin = 1
	MoodMax = 10
)

// ValidateClinical проверяет клиническую целостность payload записи.
// Удаленные записи (tombstone) считаются валидными.
func ValidateClinical(e *models.SyncEntity) models.ClinicalValidation {
	v := models.ClinicalValidation{
		ValidAssessmentScores: true,
		ValidCrisisThresholds: true,
	}
	if e == nil {
		v.Issues = append(v.Issues, "entity is missing")
		v.ValidAssessmentScores = false
		return v
	}
	if e.Deleted {
		v.IsValid = true
		return v
	}

	switch e.Type {
	case models.EntityAssessment:
		validateAssessment(e.Payload, &v)
	case models.EntityCrisisPlan:
		if len(e.Payload.EmergencyContacts()) == 0 {
			v.Issues = append(v.Issues, "crisis plan has no emergency contacts")
		}
	case models.EntityCheckIn:
		mood, ok := e.Payload.Number(models.FieldMood)
		switch {
		case !ok:
			v.Issues = append(v.Issues, "check-in mood is missing")
		case mood < MoodMin || mood > MoodMax:
			v.Issues = append(v.Issues, fmt.Sprintf("check-in mood %g outside [%d,%d]", mood, MoodMin, MoodMax))
		}
	case models.EntityUserProfile:
		// профиль не содержит клинических данных
	default:
		v.Issues = append(v.Issues, fmt.Sprintf("unknown entity type %q", e.Type))
	}

	v.IsValid = len(v.Issues) == 0
	return v
}

func validateAssessment(p models.Payload, v *models.ClinicalValidation) {
	kind, _ := p.String(models.FieldAssessmentType)
	score, ok := p.Number(models.FieldTotalScore)
	if !ok {
		v.ValidAssessmentScores = false
		v.Issues = append(v.Issues, "assessment totalScore is missing")
		return
	}

	maxScore := models.MaxScore(kind)
	if score < 0 || score > maxScore {
		v.ValidAssessmentScores = false
		v.Issues = append(v.Issues, fmt.Sprintf("assessment totalScore %g outside [0,%g]", score, maxScore))
	}

	// crisisIndicated, если задан, обязан соответствовать порогу
	if indicated, ok := p.Bool(models.FieldCrisisIndicated); ok {
		expected := score >= models.CrisisThreshold(kind)
		if indicated != expected {
			v.ValidCrisisThresholds = false
			v.Issues = append(v.Issues, fmt.Sprintf("crisisIndicated=%t inconsistent with totalScore %g", indicated, score))
		}
	}
}

// qualifies reports whether a side passes every clinical check.
func qualifies(v models.ClinicalValidation) bool {
	return v.IsValid && v.ValidAssessmentScores && v.ValidCrisisThresholds
}
