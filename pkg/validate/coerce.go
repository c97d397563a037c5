package validate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"fortio.org/safecast"

	"github.com/leapstack-labs/odmval/pkg/core"
	"github.com/leapstack-labs/odmval/pkg/schema"
)

// errNotConvertible is returned when a value has no conversion to a type.
var errNotConvertible = errors.New("not convertible")

// datetimeLayouts are tried in order when parsing datetime text.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// matchesType reports whether v already has the primitive type t.
// Integers are accepted where floats are expected.
func matchesType(v any, t core.PrimitiveType) bool {
	switch t {
	case core.TypeString:
		_, ok := v.(string)
		return ok
	case core.TypeInteger:
		return isInteger(v)
	case core.TypeFloat:
		return isInteger(v) || isFloat(v)
	case core.TypeBoolean:
		_, ok := v.(bool)
		return ok
	case core.TypeDatetime:
		_, ok := v.(time.Time)
		return ok
	}
	return false
}

func isInteger(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func isFloat(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return false
}

// coerce converts v to the target of a coerce constraint.
func coerce(v any, c schema.Constraint) (any, error) {
	switch c.Type {
	case core.TypeString:
		return toString(v)
	case core.TypeInteger:
		return toInteger(v)
	case core.TypeFloat:
		return toFloat(v)
	case core.TypeBoolean:
		return toBoolean(v, c.Allowed)
	case core.TypeDatetime:
		return toDatetime(v)
	}
	return nil, fmt.Errorf("%w: unknown type %q", errNotConvertible, c.Type)
}

func toString(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case time.Time:
		return x.Format(time.RFC3339), nil
	}
	if isInteger(v) {
		return fmt.Sprint(v), nil
	}
	return nil, errNotConvertible
}

func toInteger(v any) (any, error) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errNotConvertible
		}
		return integralFloat(f)
	case float32:
		return integralFloat(float64(x))
	case float64:
		return integralFloat(x)
	}
	if n, ok := asInt64(v); ok {
		return n, nil
	}
	return nil, errNotConvertible
}

func integralFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, errNotConvertible
	}
	n, err := safecast.Convert[int64](f)
	if err != nil {
		return nil, errNotConvertible
	}
	return n, nil
}

func toFloat(v any) (any, error) {
	switch x := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) {
			return nil, errNotConvertible
		}
		return f, nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	}
	if f, ok := number(v); ok {
		return f, nil
	}
	return nil, errNotConvertible
}

// toBoolean matches text against the boolean set without regard to case.
func toBoolean(v any, booleans []string) (any, error) {
	s, ok := v.(string)
	if !ok {
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return nil, errNotConvertible
	}
	if len(booleans) == 0 {
		booleans = []string{"true", "false"}
	}
	s = strings.TrimSpace(s)
	for _, member := range booleans {
		if !strings.EqualFold(s, member) {
			continue
		}
		b, err := strconv.ParseBool(strings.ToLower(member))
		if err != nil {
			return nil, errNotConvertible
		}
		return b, nil
	}
	return nil, errNotConvertible
}

func toDatetime(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
	}
	return nil, errNotConvertible
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint:
		n, err := safecast.Conv[int64](x)
		return n, err == nil
	case uint64:
		n, err := safecast.Conv[int64](x)
		return n, err == nil
	}
	return 0, false
}

// number returns v as a float64 when it is numeric.
func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	if n, ok := asInt64(v); ok {
		return float64(n), true
	}
	return 0, false
}
