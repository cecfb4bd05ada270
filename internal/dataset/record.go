package dataset

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is one loosely shaped JSON object from a dataset file. Numbers are
// kept as json.Number so identifiers keep their literal form.
type Record map[string]any

// IdentityKeys lists the field names a student identifier may be stored
// under, in lookup order.
var IdentityKeys = []string{"id", "studentId", "studentID", "ID", "학생ID", "학번"}

// First returns the value of the first key that is present and not null.
func (r Record) First(keys ...string) (any, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		return v, true
	}
	return nil, false
}

// Text returns the trimmed string form of the first present scalar value.
// Objects and arrays are skipped.
func (r Record) Text(keys ...string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if s, ok := scalarString(v); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// Identity is the student identifier of the record, or "" when absent.
func (r Record) Identity() string {
	return r.Text(IdentityKeys...)
}

func (r Record) clone() Record {
	out := make(Record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
