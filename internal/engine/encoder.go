package engine

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrUnsupportedValue is returned for a value whose runtime kind has no SQL
// literal form. The row scanner never produces one, so seeing it means a bug.
var ErrUnsupportedValue = errors.New("unsupported value kind")

const apos = "'"

// EncodeValue renders v as SQL literal text.
//
// declaredType is the column's advisory catalog type. Literal syntax follows
// the runtime kind of v alone, so a BOOLEAN column storing 1 encodes as 1 and
// one storing 'TRUE' encodes as 'TRUE'.
func EncodeValue(v any, declaredType string) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return QuoteString(val), nil
	case []byte:
		return "X'" + strings.ToUpper(hex.EncodeToString(val)) + "'", nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case int:
		return strconv.Itoa(val), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int16:
		return strconv.FormatInt(int64(val), 10), nil
	case int8:
		return strconv.FormatInt(int64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case float64:
		return formatReal(val), nil
	case float32:
		return formatReal(float64(val)), nil
	case bool:
		if val {
			return "1", nil
		}
		return "0", nil
	case time.Time:
		return QuoteString(val.Format(time.RFC3339Nano)), nil
	default:
		return "", fmt.Errorf("%w: %T (declared type %q)", ErrUnsupportedValue, v, declaredType)
	}
}

// QuoteString returns s as a single-quoted SQL string literal, doubling every
// embedded quote. No other character is touched.
func QuoteString(s string) string {
	return apos + strings.ReplaceAll(s, apos, apos+apos) + apos
}

// formatReal prints the shortest text that parses back to f. A trailing ".0"
// is added to integral values so they are read back as REAL, not INTEGER.
func formatReal(f float64) string {
	switch {
	case math.IsNaN(f):
		// SQLite has no NaN; it stores NULL
		return "NULL"
	case math.IsInf(f, 1):
		return "1e999"
	case math.IsInf(f, -1):
		return "-1e999"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
