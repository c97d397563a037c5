package schema

import "fmt"

// Kind is the kind of a constraint.
type Kind int

// Constraint kinds.
const (
	// KindRequiredColumn requires the column key to be present in every row.
	KindRequiredColumn Kind = iota
	// KindRequiredValue requires a present column to hold a non-absent value.
	KindRequiredValue
	// KindCoerce converts the cell to Type before constraints are checked.
	KindCoerce
	// KindType requires the (coerced) cell to be of Type.
	KindType
	KindMinValue
	KindMaxValue
	KindMinLength
	KindMaxLength
	// KindAllowed requires the cell to be one of Allowed.
	KindAllowed

	kindCount
)

var kindNames = [kindCount]string{
	KindRequiredColumn: "required_column",
	KindRequiredValue:  "required_value",
	KindCoerce:         "coerce",
	KindType:           "type",
	KindMinValue:       "min_value",
	KindMaxValue:       "max_value",
	KindMinLength:      "min_length",
	KindMaxLength:      "max_length",
	KindAllowed:        "allowed",
}

// Valid reports whether k is a declared kind.
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind converts a serialized kind name.
func ParseKind(s string) (Kind, bool) {
	for k, n := range kindNames {
		if n == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid constraint kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, ok := ParseKind(string(b))
	if !ok {
		return fmt.Errorf("unknown constraint kind %q", string(b))
	}
	*k = v
	return nil
}
