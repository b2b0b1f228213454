package nexus

import (
	"reflect"
	"strconv"
	"sync/atomic"
)

// ── Token ─────────────────────────────────────────────────────────────────────

// tokenSeq feeds auto-generated diagnostic names for anonymous tokens.
var tokenSeq atomic.Uint64

// Token is an opaque, typed identity for a dependency.
//
// The pointer itself is the uniqueness anchor: two tokens constructed with
// the same name are still distinct registry keys. The type parameter T is a
// compile-time-only payload consumed by the generic helpers (Get[T],
// MustGet[T]); it has no effect on runtime behaviour.
//
// Tokens are typically declared once, as package-level variables:
//
//	var Logger = nexus.NewToken[*log.Logger]("logger")
//	var DSN    = nexus.NewToken[string]("db.dsn")
type Token[T any] struct {
	name string
}

// NewToken creates a fresh token. When no name is given, a unique diagnostic
// name of the form "token#N" is generated so every token stays renderable.
func NewToken[T any](name ...string) *Token[T] {
	t := &Token[T]{}
	if len(name) > 0 && name[0] != "" {
		t.name = name[0]
	} else {
		t.name = "token#" + strconv.FormatUint(tokenSeq.Add(1), 10)
	}
	return t
}

// Name returns the human-readable name.
func (t *Token[T]) Name() string { return t.name }

// String implements fmt.Stringer; it renders the human-readable name.
func (t *Token[T]) String() string { return t.name }

// Type reports the phantom payload type, for diagnostics only.
func (t *Token[T]) Type() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

// isToken marks *Token[T] as a member of the token union without forcing the
// rest of the package to be generic.
func (t *Token[T]) isToken() {}

// anyToken is the non-generic view of *Token[T].
type anyToken interface {
	Name() string
	String() string
	isToken()
}

// ── Token union ───────────────────────────────────────────────────────────────

// A registry key may take one of three shapes:
//
//   - *Token[T]    — unique-anchor token
//   - string       — plain string key
//   - reflect.Type — a class, usually produced by ClassOf
//
// Anything else is rejected with InvalidTokenError.

// ClassOf returns the class form of the token union for T. Pointer types are
// collapsed to their element type, so ClassOf[*Foo]() == ClassOf[Foo]().
func ClassOf[T any]() reflect.Type {
	return indirectType(reflect.TypeOf((*T)(nil)).Elem())
}

// normalizeToken collapses pointer class tokens to their element type so
// that *Foo and Foo address the same registry entry.
func normalizeToken(tok any) any {
	if rt, ok := tok.(reflect.Type); ok {
		return indirectType(rt)
	}
	return tok
}

// validToken reports whether tok is one of the permitted union shapes.
func validToken(tok any) bool {
	switch v := tok.(type) {
	case nil:
		return false
	case anyToken:
		// A typed-nil *Token[T] still satisfies the interface; rendering it
		// would dereference a nil receiver.
		return !reflect.ValueOf(v).IsNil()
	case string:
		return v != ""
	case reflect.Type:
		return v != nil
	default:
		return false
	}
}

// describeToken renders any union member to a diagnostic string.
func describeToken(tok any) string {
	switch v := tok.(type) {
	case anyToken:
		return v.String()
	case string:
		return strconv.Quote(v)
	case reflect.Type:
		return v.String()
	default:
		return "<invalid token>"
	}
}

func indirectType(t reflect.Type) reflect.Type {
	if t != nil && t.Kind() == reflect.Ptr {
		return t.Elem()
	}
	return t
}

// typeName renders the dynamic type of an arbitrary value, for error context.
func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}
