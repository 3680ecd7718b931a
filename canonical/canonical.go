package canonical

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Fields maps canonical field names to values. Supported value types are
// listed in Render; anything else is rendered with fmt.Sprint.
type Fields map[string]any

// Build returns the canonical string for op.
func Build(op Operation, fields Fields) (string, error) {
	order, ok := Orders[op]
	if !ok {
		return "", fmt.Errorf("canonical: unknown operation %q", op)
	}
	return Join(order, fields, Strict(op)), nil
}

// MustBuild is Build for operations known at compile time.
func MustBuild(op Operation, fields Fields) string {
	out, err := Build(op, fields)
	if err != nil {
		panic(err)
	}
	return out
}

// Join renders fields in order, skipping absent or empty values. When strict
// is set every key, value and the final string are passed through Strip.
func Join(order []string, fields Fields, strict bool) string {
	var b strings.Builder
	for _, name := range order {
		value, present := Render(fields[name])
		if !present {
			continue
		}
		key := name
		if strict {
			key = Strip(key)
			value = Strip(value)
			if value == "" {
				continue
			}
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(value)
	}
	if strict {
		return Strip(b.String())
	}
	return b.String()
}

// Render returns the literal text of value and whether it is present.
func Render(value any) (string, bool) {
	switch typed := value.(type) {
	case nil:
		return "", false
	case string:
		return typed, typed != ""
	case *string:
		if typed == nil {
			return "", false
		}
		return *typed, *typed != ""
	case Literal:
		return string(typed), typed != ""
	case *Literal:
		if typed == nil {
			return "", false
		}
		return string(*typed), *typed != ""
	case json.Number:
		return typed.String(), typed != ""
	case decimal.Decimal:
		return typed.String(), true
	case *decimal.Decimal:
		if typed == nil {
			return "", false
		}
		return typed.String(), true
	case decimal.NullDecimal:
		if !typed.Valid {
			return "", false
		}
		return typed.Decimal.String(), true
	case int:
		return strconv.Itoa(typed), true
	case int32:
		return strconv.FormatInt(int64(typed), 10), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case *int64:
		if typed == nil {
			return "", false
		}
		return strconv.FormatInt(*typed, 10), true
	case *int:
		if typed == nil {
			return "", false
		}
		return strconv.Itoa(*typed), true
	case uint:
		return strconv.FormatUint(uint64(typed), 10), true
	case uint32:
		return strconv.FormatUint(uint64(typed), 10), true
	case uint64:
		return strconv.FormatUint(typed, 10), true
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(typed), true
	case fmt.Stringer:
		text := typed.String()
		return text, text != ""
	default:
		text := fmt.Sprint(typed)
		return text, text != ""
	}
}

// Strip removes line breaks, Unicode line/paragraph separators, zero-width
// characters and any whitespace.
func Strip(value string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2028', '\u2029', '\ufeff':
			return -1
		}
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
}
