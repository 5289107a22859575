package client

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
)

// NormalizeJSON rewrites every object key in raw to snake_case, so that
// "CommunityName", "communityName" and "community_name" decode alike.
func NormalizeJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return json.Marshal(normalizeValue(v))
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			key := SnakeCase(k)
			// An exact snake_case key wins over a converted one.
			if _, exists := out[key]; exists && key != k {
				continue
			}
			out[key] = normalizeValue(val)
		}
		return out
	case []interface{}:
		for i := range t {
			t[i] = normalizeValue(t[i])
		}
		return t
	}
	return v
}

// SnakeCase converts PascalCase or camelCase to snake_case. Acronyms stay
// together: "PatientID" becomes "patient_id". SCREAMING_SNAKE keys, such as
// enum values used as map keys, are returned unchanged.
func SnakeCase(s string) string {
	if strings.ContainsRune(s, '_') && strings.ToUpper(s) == s {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prev != '_' && (unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower)) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
