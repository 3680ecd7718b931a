package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Literal holds a scalar JSON value exactly as the counterparty sent it.
// Numbers keep their original text so canonical strings rebuilt from a
// webhook match the ones the counterparty signed.
type Literal string

func (l *Literal) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = ""
		return nil
	}
	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*l = Literal(text)
		return nil
	case '{', '[':
		return fmt.Errorf("canonical: literal must be a scalar, got %s", trimmed[:1])
	}
	*l = Literal(trimmed)
	return nil
}

func (l Literal) MarshalJSON() ([]byte, error) {
	if l == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(l))
}

func (l Literal) String() string {
	return string(l)
}

func (l Literal) IsZero() bool {
	return strings.TrimSpace(string(l)) == ""
}

// Decimal parses the literal as a decimal amount.
func (l Literal) Decimal() (decimal.Decimal, bool) {
	if l.IsZero() {
		return decimal.Decimal{}, false
	}
	value, err := decimal.NewFromString(strings.TrimSpace(string(l)))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return value, true
}

// Int64 parses the literal as a base 10 integer.
func (l Literal) Int64() (int64, bool) {
	if l.IsZero() {
		return 0, false
	}
	value, err := strconv.ParseInt(strings.TrimSpace(string(l)), 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Bool parses true/false literals.
func (l Literal) Bool() (bool, bool) {
	if l.IsZero() {
		return false, false
	}
	value, err := strconv.ParseBool(strings.TrimSpace(string(l)))
	if err != nil {
		return false, false
	}
	return value, true
}
