package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/wellally/healthaudit/internal/models"
)

// CanonicalVersion is folded into every digest preimage and stamped on
// exports. Bumping it is a wire-format change: digests computed under a
// different version never compare equal, so mixed-version archives fail
// verification loudly instead of silently.
const CanonicalVersion = 1

// canonicalDetails encodes a details map as deterministic JSON: object keys
// sorted lexicographically at every level, scalars in encoding/json's fixed
// representation. Two logically identical payloads always produce identical
// bytes regardless of construction order.
func canonicalDetails(details map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, details); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSerialization, err)
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool, string, json.Number:
		return writeScalar(buf, val)
	case float32:
		return writeFloat(buf, float64(val))
	case float64:
		return writeFloat(buf, val)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return writeScalar(buf, val)
	case map[string]any:
		return writeCanonicalMap(buf, val)
	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

func writeCanonicalMap(buf *bytes.Buffer, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeScalar(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeCanonical(buf, m[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeScalar delegates to encoding/json for escaping and numeric
// formatting, which is deterministic for any given value.
func writeScalar(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// writeFloat rejects non-finite values up front; encoding/json would also
// refuse them, but with a less precise error.
func writeFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("non-finite number %v", f)
	}
	return writeScalar(buf, f)
}
