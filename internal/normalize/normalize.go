// Package normalize turns raw catalog records into canonical comparison
// strings. All functions here are pure; the same input always produces the
// same output, which the matchers rely on for reproducible runs.
package normalize

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/stefan/catalog-agent/internal/types"
)

// CleanText lowercases s, strips every rune that is not a letter, digit or
// whitespace, collapses consecutive whitespace to a single space and trims
// the ends. Idempotent: CleanText(CleanText(s)) == CleanText(s).
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeField reduces an identity field (model name, category) to
// alphanumeric-only lowercase, the form the two-phase matcher keys on.
func NormalizeField(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FlattenSpecs converts a raw specification payload into a single
// order-stable text line. JSON objects are walked with keys in sorted order
// so that two payloads equal up to key order flatten identically; arrays
// keep their element order; empty values contribute nothing. Input that is
// not valid JSON is returned verbatim as opaque text.
func FlattenSpecs(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return raw
	}
	// Bare JSON scalars ("42", "true") round-trip as their string form,
	// same as the opaque-text path.
	parts := flattenValue(parsed)
	return strings.Join(parts, " ")
}

func flattenValue(v any) []string {
	var parts []string
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, k)
			parts = append(parts, flattenValue(val[k])...)
		}
	case []any:
		for _, item := range val {
			parts = append(parts, flattenValue(item)...)
		}
	case string:
		if strings.TrimSpace(val) != "" {
			parts = append(parts, val)
		}
	case float64:
		parts = append(parts, strconv.FormatFloat(val, 'f', -1, 64))
	case bool:
		parts = append(parts, strconv.FormatBool(val))
	case nil:
		// null contributes nothing
	}
	return parts
}

// SpecsMap parses raw as a flat JSON object of scalar values, the form the
// two-phase matcher scores key-by-key. Nested values and arrays are
// stringified via their flattened form. Returns nil when raw is not a JSON
// object.
func SpecsMap(raw string) map[string]string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case string:
			out[k] = val
		case nil:
			out[k] = ""
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		default:
			out[k] = strings.Join(flattenValue(v), " ")
		}
	}
	return out
}

// Normalize derives the canonical comparison form of a record.
func Normalize(rec types.CatalogRecord) types.NormalizedRecord {
	specsText := FlattenSpecs(rec.RawSpecs)
	return types.NormalizedRecord{
		CatalogRecord: rec,
		TitleClean:    CleanText(rec.Title),
		SpecsText:     specsText,
		SpecsClean:    CleanText(specsText),
		NormModelName: NormalizeField(rec.ModelName),
		NormCategory:  NormalizeField(rec.Category),
		SpecsMap:      SpecsMap(rec.RawSpecs),
	}
}

// NormalizeAll normalizes an ordered record slice into a named catalog,
// preserving input order.
func NormalizeAll(name string, records []types.CatalogRecord) *types.Catalog {
	out := &types.Catalog{
		Name:    name,
		Records: make([]types.NormalizedRecord, len(records)),
	}
	for i, rec := range records {
		out.Records[i] = Normalize(rec)
	}
	return out
}
