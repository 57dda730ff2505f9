package value

import (
	"cmp"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/scopex/pkg"
)

// Errors returned by the protocol functions.
var (
	ErrNotAssignable = pkg.NewError("value does not support assignment")
	ErrNotDeletable  = pkg.NewError("value does not support deletion")
	ErrOutOfRange    = pkg.NewError("index out of range")
	ErrNotIterable   = pkg.NewError("value is not iterable")
	ErrNotComparable = pkg.NewError("values are not comparable")
)

// Indexer is implemented by values that resolve keys themselves.
type Indexer interface {
	Index(key any) (any, bool)
}

// Assigner is implemented by values that accept key assignment.
type Assigner interface {
	SetIndex(key, v any) error
}

// Deleter is implemented by values that support key deletion.
type Deleter interface {
	DeleteIndex(key any) error
}

// Keyer is implemented by values that enumerate their own keys.
type Keyer interface {
	Keys() []any
}

// Lener is implemented by values with a length.
type Lener interface {
	Len() int
}

// Truther is implemented by values with a custom truth value.
type Truther interface {
	Truth() bool
}

// Container is implemented by values that answer membership tests.
type Container interface {
	Contains(v any) bool
}

// Iterable is implemented by values that can be iterated.
type Iterable interface {
	All() iter.Seq[any]
}

// Reprer is implemented by values with a custom expression rendering.
type Reprer interface {
	Repr() string
}

// Lookup returns obj[key].
func Lookup(obj, key any) (any, bool) {
	switch o := obj.(type) {
	case nil:
		return nil, false
	case Indexer:
		return o.Index(key)
	case map[string]any:
		v, ok := o[keyString(key)]

		return v, ok
	case map[any]any:
		return lookupAnyMap(o, key)
	case []any:
		i, ok := sliceIndex(key, len(o))
		if !ok {
			return nil, false
		}

		return o[i], true
	case *[]any:
		return Lookup(*o, key)
	case []string:
		i, ok := sliceIndex(key, len(o))
		if !ok {
			return nil, false
		}

		return o[i], true
	case string:
		rs := []rune(o)

		i, ok := sliceIndex(key, len(rs))
		if !ok {
			return nil, false
		}

		return string(rs[i]), true
	}

	return lookupReflect(reflect.ValueOf(obj), key)
}

func lookupAnyMap(m map[any]any, key any) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}

	switch k := key.(type) {
	case int:
		v, ok := m[strconv.Itoa(k)]

		return v, ok
	case string:
		if n, err := strconv.Atoi(k); err == nil {
			v, ok := m[n]

			return v, ok
		}
	}

	return nil, false
}

func lookupReflect(rv reflect.Value, key any) (any, bool) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		kv, ok := mapKey(rv.Type().Key(), key)
		if !ok {
			return nil, false
		}

		v := rv.MapIndex(kv)
		if !v.IsValid() {
			return nil, false
		}

		return v.Interface(), true

	case reflect.Slice, reflect.Array:
		i, ok := sliceIndex(key, rv.Len())
		if !ok {
			return nil, false
		}

		return rv.Index(i).Interface(), true

	case reflect.Struct:
		f, ok := structField(rv, keyString(key))
		if !ok {
			return nil, false
		}

		return f.Interface(), true

	default:
		return nil, false
	}
}

func mapKey(t reflect.Type, key any) (reflect.Value, bool) {
	kv := reflect.ValueOf(key)
	if key != nil && kv.Type().AssignableTo(t) {
		return kv, true
	}

	if t.Kind() == reflect.String {
		return reflect.ValueOf(keyString(key)).Convert(t), true
	}

	if key != nil && kv.Type().ConvertibleTo(t) && kv.Kind() != reflect.String {
		return kv.Convert(t), true
	}

	return reflect.Value{}, false
}

// structField finds an exported field by name, then by yaml or json tag,
// then case-insensitively.
func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()

	if f, ok := t.FieldByName(name); ok && f.IsExported() {
		return rv.FieldByIndex(f.Index), true
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		for _, tag := range []string{"yaml", "json"} {
			if n, _, _ := strings.Cut(f.Tag.Get(tag), ","); n == name {
				return rv.Field(i), true
			}
		}
	}

	if f, ok := t.FieldByNameFunc(func(s string) bool {
		return strings.EqualFold(s, name)
	}); ok && f.IsExported() {
		return rv.FieldByIndex(f.Index), true
	}

	return reflect.Value{}, false
}

// keyString converts a key to the string used for string-keyed maps.
func keyString(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case int:
		return strconv.Itoa(k)
	default:
		return Str(k)
	}
}

// sliceIndex normalizes key as an index into a sequence of length n.
// Negative indices count from the end.
func sliceIndex(key any, n int) (int, bool) {
	var i int

	switch k := key.(type) {
	case int:
		i = k
	case string:
		v, err := strconv.Atoi(k)
		if err != nil {
			return 0, false
		}

		i = v
	default:
		v, ok := AsInt(key)
		if !ok {
			return 0, false
		}

		i = v
	}

	if i < 0 {
		i += n
	}

	return i, i >= 0 && i < n
}

// Has reports whether obj contains key.
func Has(obj, key any) bool {
	switch o := obj.(type) {
	case nil, Missing:
		return false
	case map[string]any:
		_, ok := o[keyString(key)]

		return ok
	}

	_, ok := Lookup(obj, key)

	return ok
}

// Assign sets obj[key] = v.
func Assign(obj, key, v any) error {
	switch o := obj.(type) {
	case Assigner:
		return o.SetIndex(key, v)
	case map[string]any:
		o[keyString(key)] = v

		return nil
	case map[any]any:
		o[key] = v

		return nil
	case []any:
		i, ok := sliceIndex(key, len(o))
		if !ok {
			return ErrOutOfRange.Wrap(fmt.Errorf("%v", key))
		}

		o[i] = v

		return nil
	case *[]any:
		if i, ok := AsInt(key); ok && i == len(*o) {
			*o = append(*o, v)

			return nil
		}

		return Assign(*o, key, v)
	}

	return assignReflect(reflect.ValueOf(obj), key, v)
}

func assignReflect(rv reflect.Value, key, v any) error {
	for rv.Kind() == reflect.Interface && !rv.IsNil() {
		rv = rv.Elem()
	}

	fail := ErrNotAssignable.Wrap(fmt.Errorf("%s[%v]", reflectTypeName(rv), key))

	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return fail
		}

		kv, ok := mapKey(rv.Type().Key(), key)
		if !ok {
			return fail
		}

		val, ok := convertTo(v, rv.Type().Elem())
		if !ok {
			return fail
		}

		rv.SetMapIndex(kv, val)

		return nil

	case reflect.Slice:
		i, ok := sliceIndex(key, rv.Len())
		if !ok {
			return ErrOutOfRange.Wrap(fmt.Errorf("%v", key))
		}

		val, ok := convertTo(v, rv.Type().Elem())
		if !ok {
			return fail
		}

		rv.Index(i).Set(val)

		return nil

	case reflect.Pointer:
		if rv.IsNil() {
			return fail
		}

		e := rv.Elem()
		if e.Kind() != reflect.Struct {
			return assignReflect(e, key, v)
		}

		f, ok := structField(e, keyString(key))
		if !ok || !f.CanSet() {
			return fail
		}

		val, ok := convertTo(v, f.Type())
		if !ok {
			return fail
		}

		f.Set(val)

		return nil

	default:
		return fail
	}
}

func convertTo(v any, t reflect.Type) (reflect.Value, bool) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), true
		default:
			return reflect.Value{}, false
		}
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, true
	}

	if rv.Type().ConvertibleTo(t) && (rv.Kind() == reflect.String) == (t.Kind() == reflect.String) {
		return rv.Convert(t), true
	}

	return reflect.Value{}, false
}

// Delete removes key from obj.
func Delete(obj, key any) error {
	switch o := obj.(type) {
	case Deleter:
		return o.DeleteIndex(key)
	case map[string]any:
		delete(o, keyString(key))

		return nil
	case map[any]any:
		if _, ok := o[key]; !ok {
			if s, isStr := key.(string); isStr {
				if n, err := strconv.Atoi(s); err == nil {
					key = n
				}
			}
		}

		delete(o, key)

		return nil
	case *[]any:
		i, ok := sliceIndex(key, len(*o))
		if !ok {
			return ErrOutOfRange.Wrap(fmt.Errorf("%v", key))
		}

		*o = slices.Delete(*o, i, i+1)

		return nil
	}

	rv := reflect.ValueOf(obj)
	if rv.Kind() == reflect.Map && !rv.IsNil() {
		if kv, ok := mapKey(rv.Type().Key(), key); ok {
			rv.SetMapIndex(kv, reflect.Value{})

			return nil
		}
	}

	return ErrNotDeletable.Wrap(fmt.Errorf("%s[%v]", TypeName(obj), key))
}

// Keys returns the keys of a mapping (sorted) or the indices of a sequence.
// Other values have no keys.
func Keys(obj any) []any {
	switch o := obj.(type) {
	case nil, Missing:
		return nil
	case Keyer:
		return o.Keys()
	case map[string]any:
		keys := make([]string, 0, len(o))
		for k := range o {
			keys = append(keys, k)
		}

		slices.Sort(keys)

		return toAny(keys)
	case map[any]any:
		keys := make([]any, 0, len(o))
		for k := range o {
			keys = append(keys, k)
		}

		sortAny(keys)

		return keys
	case string:
		return nil
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		keys := make([]any, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.Interface())
		}

		sortAny(keys)

		return keys
	case reflect.Slice, reflect.Array:
		keys := make([]any, rv.Len())
		for i := range keys {
			keys[i] = i
		}

		return keys
	case reflect.Struct:
		var keys []any

		for i := range rv.NumField() {
			if f := rv.Type().Field(i); f.IsExported() {
				keys = append(keys, f.Name)
			}
		}

		return keys
	default:
		return nil
	}
}

// Values returns the values of a mapping in key order, or the elements of a
// sequence.
func Values(obj any) []any {
	keys := Keys(obj)
	vals := make([]any, 0, len(keys))

	for _, k := range keys {
		v, _ := Lookup(obj, k)
		vals = append(vals, v)
	}

	return vals
}

// Items returns [key, value] pairs in key order.
func Items(obj any) []any {
	keys := Keys(obj)
	items := make([]any, 0, len(keys))

	for _, k := range keys {
		v, _ := Lookup(obj, k)
		items = append(items, []any{k, v})
	}

	return items
}

// IsMapping reports whether obj is a key/value mapping.
func IsMapping(obj any) bool {
	switch obj.(type) {
	case map[string]any, map[any]any:
		return true
	case nil, string, []any:
		return false
	}

	return reflect.Indirect(reflect.ValueOf(obj)).Kind() == reflect.Map
}

// IsSequence reports whether obj is a list-like value (not a string).
func IsSequence(obj any) bool {
	switch obj.(type) {
	case []any, *[]any:
		return true
	case nil, string:
		return false
	}

	k := reflect.Indirect(reflect.ValueOf(obj)).Kind()

	return k == reflect.Slice || k == reflect.Array
}

// Len returns the length of obj, if it has one.
func Len(obj any) (int, bool) {
	switch o := obj.(type) {
	case nil:
		return 0, false
	case Lener:
		return o.Len(), true
	case string:
		return utf8.RuneCountInString(o), true
	case []any:
		return len(o), true
	case *[]any:
		return len(*o), true
	case map[string]any:
		return len(o), true
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Chan:
		return rv.Len(), true
	default:
		return 0, false
	}
}

// Iterate returns an iterator over the elements of a sequence, the keys of a
// mapping, or the characters of a string.
func Iterate(obj any) (iter.Seq[any], bool) {
	switch o := obj.(type) {
	case nil:
		return nil, false
	case Iterable:
		return o.All(), true
	case iter.Seq[any]:
		return o, true
	case []any:
		return slices.Values(o), true
	case *[]any:
		return slices.Values(*o), true
	case string:
		return func(yield func(any) bool) {
			for _, r := range o {
				if !yield(string(r)) {
					return
				}
			}
		}, true
	}

	if IsMapping(obj) {
		return slices.Values(Keys(obj)), true
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return func(yield func(any) bool) {
			for i := range rv.Len() {
				if !yield(rv.Index(i).Interface()) {
					return
				}
			}
		}, true
	default:
		return nil, false
	}
}

// List materializes obj as a []any. A []any is returned as is.
func List(obj any) ([]any, error) {
	if l, ok := obj.([]any); ok {
		return l, nil
	}

	seq, ok := Iterate(obj)
	if !ok {
		return nil, ErrNotIterable.Wrap(fmt.Errorf("%s", TypeName(obj)))
	}

	return slices.Collect(seq), nil
}

func toAny[T any](s []T) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}

	return out
}

// sortAny sorts keys with Compare, falling back to their rendered form.
func sortAny(keys []any) {
	slices.SortStableFunc(keys, func(a, b any) int {
		if c, err := Compare(a, b); err == nil {
			return c
		}

		return cmp.Compare(Str(a), Str(b))
	})
}

func reflectTypeName(rv reflect.Value) string {
	if !rv.IsValid() {
		return "None"
	}

	return TypeName(rv.Interface())
}
