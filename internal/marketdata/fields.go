package marketdata

import (
	"github.com/tidwall/gjson"

	"github.com/Vivek1819/FinBoard/internal/models"
)

// ExtractFields flattens a sample payload into addressable field paths with
// inferred primitive types. Arrays are sampled from their first element only,
// nulls are skipped, and containers themselves never produce a field. The
// walk follows document key order, depth-first, and never fails: malformed
// input yields no fields.
func ExtractFields(raw []byte) []models.Field {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	var fields []models.Field
	walkFields(gjson.ParseBytes(raw), "", &fields)
	return fields
}

func walkFields(v gjson.Result, prefix string, out *[]models.Field) {
	if v.IsArray() {
		arr := v.Array()
		if len(arr) > 0 {
			walkFields(arr[0], prefix, out)
		}
		return
	}
	if !v.IsObject() {
		return
	}
	v.ForEach(func(key, val gjson.Result) bool {
		path := key.String()
		if prefix != "" {
			path = prefix + "." + path
		}
		switch val.Type {
		case gjson.String:
			*out = append(*out, models.Field{Path: path, Type: "string"})
		case gjson.Number:
			*out = append(*out, models.Field{Path: path, Type: "number"})
		case gjson.True, gjson.False:
			*out = append(*out, models.Field{Path: path, Type: "boolean"})
		case gjson.Null:
			// skipped: neither emitted nor recursed
		default:
			walkFields(val, path, out)
		}
		return true
	})
}

// Lookup resolves a dot-delimited path against a raw record, short-circuiting
// to absent on any missing intermediate key.
func Lookup(raw []byte, path string) (gjson.Result, bool) {
	r := gjson.GetBytes(raw, path)
	return r, r.Exists()
}
