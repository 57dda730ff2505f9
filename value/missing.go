package value

import "iter"

// Missing is the value of a lookup that found nothing. It records the key
// that failed.
type Missing struct {
	Key string
}

// NewMissing returns a Missing for key.
func NewMissing(key string) Missing { return Missing{Key: key} }

// IsMissing reports whether v is a Missing value.
func IsMissing(v any) bool {
	switch v.(type) {
	case Missing, *Missing:
		return true
	default:
		return false
	}
}

func (m Missing) String() string   { return "" }
func (m Missing) GoString() string { return "<missing '" + m.Key + "'>" }
func (m Missing) Repr() string     { return m.GoString() }
func (m Missing) Truth() bool      { return false }
func (m Missing) Len() int         { return 0 }

// Index returns m itself, so chained lookups on a missing value stay missing.
func (m Missing) Index(any) (any, bool) { return m, true }

// Contains is always false.
func (m Missing) Contains(any) bool { return false }

// All yields nothing.
func (m Missing) All() iter.Seq[any] { return func(func(any) bool) {} }

// MarshalJSON renders Missing as null.
func (m Missing) MarshalJSON() ([]byte, error) { return []byte("null"), nil }
