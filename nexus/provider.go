package nexus

import "reflect"

// ── Provider descriptors ──────────────────────────────────────────────────────

// Factory builds a value from its resolved dependencies. The arguments
// arrive in the order listed in Provider.Deps, positionally.
type Factory func(deps ...any) (any, error)

// Provider describes how to produce a value for a token. Exactly one of the
// three strategies must be set:
//
//   - UseClass:   a struct type; resolution recursively builds its
//     dependencies (see Container.Resolve).
//   - UseValue:   a precomputed value returned as-is.
//   - UseFactory: a function invoked with the resolved values of Deps.
//
// Token is only consulted when the descriptor appears in a module's
// Providers list; Container.Set takes the token as its own first argument.
type Provider struct {
	Token      any
	UseClass   reflect.Type
	UseValue   any
	UseFactory Factory
	Deps       []any
}

// Value builds a value-strategy descriptor.
//
// A nil value is not representable: strategy presence is detected by the
// UseValue field being non-nil, so Value(nil) is rejected at Set time. Use
// a factory returning nil if a nil singleton is genuinely wanted.
//
//	c.Set("answer", nexus.Value(42))
func Value(v any) Provider {
	return Provider{UseValue: v}
}

// Class builds a class-strategy descriptor for T.
//
//	c.Set(SvcToken, nexus.Class[UserService]())
func Class[T any]() Provider {
	return Provider{UseClass: ClassOf[T]()}
}

// FactoryOf builds a factory-strategy descriptor. deps are resolved in
// order and passed to fn positionally.
//
//	c.Set(PoolToken, nexus.FactoryOf(newPool, DSNToken, LoggerToken))
func FactoryOf(fn Factory, deps ...any) Provider {
	return Provider{UseFactory: fn, Deps: deps}
}

// validate checks the one-strategy invariant eagerly. label is the
// diagnostic rendering of the token the descriptor is being registered
// under.
func (p Provider) validate(label string) error {
	n := 0
	if p.UseClass != nil {
		if p.UseClass.Kind() != reflect.Struct {
			return InvalidProviderError{Token: label, Reason: "class strategy requires a struct type, got " + p.UseClass.String()}
		}
		n++
	}
	if p.UseValue != nil {
		n++
	}
	if p.UseFactory != nil {
		n++
	}
	switch {
	case n == 0:
		return InvalidProviderError{Token: label, Reason: "no construction strategy set"}
	case n > 1:
		return InvalidProviderError{Token: label, Reason: "more than one construction strategy set"}
	}
	if len(p.Deps) > 0 && p.UseFactory == nil {
		return InvalidProviderError{Token: label, Reason: "deps are only valid with a factory strategy"}
	}
	return nil
}

// normalized collapses a pointer UseClass to its element type.
func (p Provider) normalized() Provider {
	p.UseClass = indirectType(p.UseClass)
	return p
}
