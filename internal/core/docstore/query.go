package docstore

import (
	"fmt"
	"strings"
	"time"
)

// Operator is a comparison used in a Filter
type Operator string

const (
	OpEqual          Operator = "=="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
)

// MaxCharSentinel is appended to a lowercase prefix to build the upper bound of a prefix range
const MaxCharSentinel = "\uf8ff"

// Filter restricts a List to documents whose field compares to Value
type Filter struct {
	Value any
	Field string
	Op    Operator
}

// Order sorts a List by a field
type Order struct {
	Field      string
	Descending bool
}

// Query describes a List call. Zero Limit means unbounded.
type Query struct {
	Filters []Filter
	OrderBy []Order
	Limit   int
	Offset  int
}

// Where returns q with an added filter
func (q Query) Where(field string, op Operator, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: op, Value: value})
	return q
}

// Sort returns q with an added ordering
func (q Query) Sort(field string, descending bool) Query {
	q.OrderBy = append(append([]Order(nil), q.OrderBy...), Order{Field: field, Descending: descending})
	return q
}

// PrefixRange returns the two filters matching every string in field starting with prefix
func PrefixRange(field, prefix string) []Filter {
	return []Filter{
		{Field: field, Op: OpGreaterOrEqual, Value: prefix},
		{Field: field, Op: OpLessOrEqual, Value: prefix + MaxCharSentinel},
	}
}

// Validate rejects operators the stores do not understand
func (q Query) Validate() error {
	for _, f := range q.Filters {
		switch f.Op {
		case OpEqual, OpLess, OpLessOrEqual, OpGreater, OpGreaterOrEqual:
		default:
			return fmt.Errorf("unsupported filter operator %q on %s", f.Op, f.Field)
		}
		if strings.TrimSpace(f.Field) == "" {
			return fmt.Errorf("filter field is required")
		}
	}
	if q.Limit < 0 || q.Offset < 0 {
		return fmt.Errorf("limit and offset must not be negative")
	}
	return nil
}

// Compare orders two field values of the same kind.
// ok is false when the values are not comparable (different kinds or unsupported types).
func Compare(a, b any) (cmp int, ok bool) {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0, true
		}
		return 0, false
	}

	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

// Matches reports whether value satisfies the filter
func (f Filter) Matches(value any) bool {
	c, ok := Compare(value, f.Value)
	if !ok {
		return false
	}
	switch f.Op {
	case OpEqual:
		return c == 0
	case OpLess:
		return c < 0
	case OpLessOrEqual:
		return c <= 0
	case OpGreater:
		return c > 0
	case OpGreaterOrEqual:
		return c >= 0
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
