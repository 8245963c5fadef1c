package engine

import (
	"strconv"
	"strings"

	"sqlitedump/internal/schema"
)

// BooleanType is the declared type name that turns on boolean comparison of
// defaults. Matching is exact; "boolean" or "BOOL" fall through to the
// generic comparison.
const BooleanType = "BOOLEAN"

// IsDefault reports whether v is indistinguishable from what the engine
// stores when col is omitted from an INSERT, so the column can be elided.
//
// The rules are a heuristic and their order is part of the contract:
//  1. function-call defaults such as CURRENT_TIMESTAMP() never match;
//  2. without a declared default only NULL and the empty string match;
//  3. BOOLEAN columns compare default and value as booleans;
//  4. everything else compares the value with the default text exactly as the
//     catalog reports it, numbers numerically.
func IsDefault(v any, col *schema.Column) bool {
	return isDefault(v, col, exactEqual)
}

// IsDefaultLiteral is IsDefault with rule 4 reading the default as a SQL
// literal: 'new' matches the text new and NULL matches a NULL value.
func IsDefaultLiteral(v any, col *schema.Column) bool {
	return isDefault(v, col, literalEqual)
}

func isDefault(v any, col *schema.Column, equal func(v any, expr string) bool) bool {
	switch {
	case col.HasDefault() && strings.HasSuffix(*col.Default, "()"):
		return false
	case !col.HasDefault():
		return v == nil || v == ""
	case col.DeclaredType == BooleanType:
		return asBool(v) == asBool(*col.Default)
	default:
		return equal(v, *col.Default)
	}
}

// asBool treats the text TRUE and the number 1 as true and everything else as
// false. Catalog defaults arrive as text, so the text "1" counts as the number.
func asBool(v any) bool {
	switch val := v.(type) {
	case string:
		if val == "TRUE" {
			return true
		}
		n, ok := parseNumber(val)
		return ok && n == 1
	default:
		n, ok := numberOf(v)
		return ok && n == 1
	}
}

// exactEqual compares a stored value with the text of a default expression
// without interpreting it: text against text, numbers against the parsed text.
func exactEqual(v any, expr string) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val == expr
	default:
		return numberEqual(v, expr)
	}
}

// literalEqual is exactEqual after unquoting a string literal default and
// reading the NULL keyword as nil.
func literalEqual(v any, expr string) bool {
	if s, ok := unquoteString(expr); ok {
		str, isStr := v.(string)
		return isStr && str == s
	}
	if strings.EqualFold(expr, "NULL") {
		return v == nil
	}
	return exactEqual(v, expr)
}

// numberEqual compares a numeric value with numeric literal text. Integers are
// compared exactly so values beyond 2^53 are not conflated.
func numberEqual(v any, expr string) bool {
	if i, ok := v.(int64); ok {
		if d, err := strconv.ParseInt(strings.TrimSpace(expr), 10, 64); err == nil {
			return i == d
		}
	}
	n, ok := numberOf(v)
	if !ok {
		return false
	}
	d, ok := parseNumber(expr)
	return ok && n == d
}

// unquoteString reports whether expr is a single-quoted SQL string literal and
// returns its value with doubled quotes collapsed.
func unquoteString(expr string) (string, bool) {
	if len(expr) < 2 || !strings.HasPrefix(expr, apos) || !strings.HasSuffix(expr, apos) {
		return "", false
	}
	inner := expr[1 : len(expr)-1]
	// a lone quote inside means expr is not one literal, e.g. 'a' || 'b'
	if strings.Count(strings.ReplaceAll(inner, apos+apos, ""), apos) != 0 {
		return "", false
	}
	return strings.ReplaceAll(inner, apos+apos, apos), true
}

func numberOf(v any) (float64, bool) {
	switch val := v.(type) {
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
