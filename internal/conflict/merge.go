package conflict

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iudanet/carekeeper/internal/models"
)

// mergeField результат слияния одного поля
type mergeField struct {
	Field     string
	Rule      string
	Ambiguous bool
	Safety    bool // Safety поле безопасности: максимум балла или объединение контактов
}

// mergeOutcome результат пополевого слияния двух payload
type mergeOutcome struct {
	Payload    models.Payload
	Fields     []mergeField
	Discarded  []string
	Compared   int
	Confidence float64
}

// mergePayloads объединяет payload по полям.
// Совпадающие значения сохраняются, односторонние берутся как есть.
// Для конфликтующих значений: клинические баллы - максимум, списки контактов - объединение,
// временные метки - более позднее значение, остальное - локальное значение
// с записью удаленного в discarded.
func mergePayloads(local, remote models.Payload) mergeOutcome {
	keys := make(map[string]struct{}, len(local)+len(remote))
	for k := range local {
		keys[k] = struct{}{}
	}
	for k := range remote {
		keys[k] = struct{}{}
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	out := mergeOutcome{Payload: make(models.Payload, len(names))}
	unambiguous := 0

	for _, name := range names {
		lv, lok := local[name]
		rv, rok := remote[name]
		out.Compared++

		var f mergeField
		switch {
		case lok && !rok:
			out.Payload[name] = cloneAny(lv)
			f = mergeField{Field: name, Rule: "local only"}
		case rok && !lok:
			out.Payload[name] = cloneAny(rv)
			f = mergeField{Field: name, Rule: "remote only"}
		case sameJSON(lv, rv):
			out.Payload[name] = cloneAny(lv)
			f = mergeField{Field: name, Rule: "identical"}
		default:
			f = mergeConflicting(name, lv, rv, out.Payload)
			if f.Ambiguous {
				out.Discarded = append(out.Discarded, name)
			}
		}
		if !f.Ambiguous {
			unambiguous++
		}
		out.Fields = append(out.Fields, f)
	}

	if out.Compared == 0 {
		out.Confidence = 1
	} else {
		out.Confidence = float64(unambiguous) / float64(out.Compared)
	}
	return out
}

func mergeConflicting(name string, lv, rv any, dst models.Payload) mergeField {
	if isScoreField(name) {
		ln, lok := (models.Payload{name: lv}).Number(name)
		rn, rok := (models.Payload{name: rv}).Number(name)
		if lok && rok {
			// недооценка риска опасна, поэтому берется максимум, а не среднее
			if rn > ln {
				dst[name] = cloneAny(rv)
			} else {
				dst[name] = cloneAny(lv)
			}
			return mergeField{Field: name, Rule: fmt.Sprintf("max(%g, %g)", ln, rn), Safety: true}
		}
	}

	if isContactField(name) {
		ll, lok := (models.Payload{name: lv}).List(name)
		rl, rok := (models.Payload{name: rv}).List(name)
		if lok && rok {
			union := unionList(ll, rl)
			dst[name] = union
			return mergeField{Field: name, Rule: fmt.Sprintf("union of %d and %d items -> %d", len(ll), len(rl), len(union)), Safety: true}
		}
	}

	ls, lIsStr := lv.(string)
	rs, rIsStr := rv.(string)
	if lIsStr && rIsStr {
		lt, lerr := parseTimestamp(ls)
		rt, rerr := parseTimestamp(rs)
		if lerr == nil && rerr == nil {
			if rt.After(lt) {
				dst[name] = rs
			} else {
				dst[name] = ls
			}
			return mergeField{Field: name, Rule: "later timestamp"}
		}
	}

	dst[name] = cloneAny(lv)
	return mergeField{Field: name, Rule: "kept local, remote discarded", Ambiguous: true}
}

// isScoreField сообщает, является ли поле числовым клиническим баллом
func isScoreField(name string) bool {
	return name == models.FieldTotalScore || strings.HasSuffix(name, "Score") || strings.EqualFold(name, "score")
}

func isContactField(name string) bool {
	return strings.Contains(strings.ToLower(name), "contacts")
}

var timestampLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", time.DateOnly}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not a timestamp: %q", s)
}

// unionList объединяет списки со структурной дедупликацией.
// Сначала идут локальные элементы, затем новые удаленные.
func unionList(local, remote []any) []any {
	seen := make(map[string]struct{}, len(local)+len(remote))
	out := make([]any, 0, len(local)+len(remote))
	for _, list := range [][]any{local, remote} {
		for _, item := range list {
			key, err := json.Marshal(item)
			if err != nil {
				key = []byte(fmt.Sprintf("%#v", item))
			}
			if _, dup := seen[string(key)]; dup {
				continue
			}
			seen[string(key)] = struct{}{}
			out = append(out, cloneAny(item))
		}
	}
	return out
}

func cloneAny(v any) any {
	return models.Payload{"v": v}.Clone()["v"]
}
