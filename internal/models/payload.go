package models

import (
	"encoding/json"
	"strconv"
)

// Имена полей payload, на которые опирается логика обнаружения и разрешения конфликтов
const (
	FieldMood              = "mood"
	FieldTotalScore        = "totalScore"
	FieldAssessmentType    = "assessmentType"
	FieldCrisisIndicated   = "crisisIndicated"
	FieldEmergencyContacts = "emergencyContacts"
	FieldSubscriptionTier  = "subscriptionTier"
	FieldCompletedAt       = "completedAt"
	FieldUpdatedAt         = "updatedAt"
)

// Типы клинических опросников
const (
	AssessmentPHQ9 = "phq9"
	AssessmentGAD7 = "gad7"
)

// Payload структурированные данные записи.
// Значения имеют форму, которую дает encoding/json: float64, string, bool, []any, map[string]any.
type Payload map[string]any

// Clone returns a deep copy of the payload.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = cloneValue(item)
		}
		return m
	case Payload:
		return val.Clone()
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = cloneValue(item)
		}
		return s
	case []string:
		s := make([]string, len(val))
		copy(s, val)
		return s
	default:
		return val
	}
}

// Number извлекает числовое значение поля.
// Поддерживает типы, которые встречаются после json.Unmarshal и при ручном построении payload.
func (p Payload) Number(field string) (float64, bool) {
	v, ok := p[field]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// String returns the string value of field.
func (p Payload) String(field string) (string, bool) {
	v, ok := p[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool returns the boolean value of field.
func (p Payload) Bool(field string) (bool, bool) {
	v, ok := p[field]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// List извлекает список из поля; []string приводится к []any
func (p Payload) List(field string) ([]any, bool) {
	v, ok := p[field]
	if !ok {
		return nil, false
	}
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

// EmergencyContacts returns the emergency contact list of a crisis plan payload.
func (p Payload) EmergencyContacts() []any {
	contacts, _ := p.List(FieldEmergencyContacts)
	return contacts
}

// CrisisThreshold возвращает порог кризисного балла для типа опросника.
// Неизвестный тип опросника трактуется как PHQ-9.
func CrisisThreshold(assessmentType string) float64 {
	if assessmentType == AssessmentGAD7 {
		return 15
	}
	return 20
}

// MaxScore returns the upper bound of the total score for the assessment type.
func MaxScore(assessmentType string) float64 {
	if assessmentType == AssessmentGAD7 {
		return 21
	}
	return 27
}
