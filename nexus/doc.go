// Package nexus provides a token-based dependency injection container
// for Go.
//
// # Overview
//
// The container maps tokens to provider descriptors (class, value or
// factory), resolves a class's declared dependencies when instantiating it,
// and memoizes every produced instance per container ("singleton by
// default"). Modules bundle provider declarations, and child containers
// give scoped overrides for tests.
//
// # Tokens
//
// A token is one of three shapes: a *Token[T] (unique identity with a
// diagnostic name), a plain string, or a class obtained with ClassOf.
//
//	var Logger = nexus.NewToken[*log.Logger]("logger")
//
// # Registering
//
//	c := nexus.New()
//
//	// Value — returned as-is
//	c.Set(Logger, nexus.Value(log.Default()))
//
//	// Factory — deps resolved in order, passed positionally
//	c.Set(Store, nexus.FactoryOf(func(deps ...any) (any, error) {
//	    return NewStore(deps[0].(*log.Logger)), nil
//	}, Logger))
//
//	// Class — dependencies injected per declared metadata
//	c.Set(Svc, nexus.ClassOf[UserService]())
//
// # Declaring injection sites
//
// Go has no decorator channel, so classes declare their injection sites in
// an explicit metadata registry, usually from init():
//
//	func init() {
//	    nexus.Describe[UserService]().
//	        Param(0, Logger).        // positional, set before Construct
//	        Field("Audit", Audit)    // property, set after Construct
//	}
//
// Exported pointer-to-struct fields without an explicit site are filled
// best-effort when the container already has a provider for their type.
//
// # Resolving
//
//	// Untyped
//	raw, err := c.Get(Logger)
//
//	// Generic (preferred — no type assertion required)
//	logger, err := nexus.Get[*log.Logger](c, Logger)
//
//	// Direct construction, registry-independent
//	svc, err := nexus.Resolve[UserService](c)
//
// Repeated Get calls for one token return the identical instance until the
// token is re-registered; re-registering drops the cached singleton.
//
// # Modules
//
//	type AppModule struct{}
//
//	func init() {
//	    nexus.DeclareService[UserService](Svc)
//	    nexus.DeclareModule[AppModule](nexus.ModuleDef{
//	        Imports:   []any{nexus.ClassOf[CoreModule]()},
//	        Providers: []any{nexus.ClassOf[UserService]()},
//	        Exports:   []any{Svc},
//	    })
//	}
//
//	c.Set(nexus.ClassOf[AppModule]())  // idempotent per container
//
// # Child containers
//
//	child := c.CreateChild()
//	child.Set(Logger, nexus.Value(testLogger))  // parent unaffected
//
// A child is a snapshot of its parent at creation time, which makes it the
// mechanism for test doubles and for isolating parallel scopes — a single
// container must not be mutated concurrently.
//
// # Failure semantics
//
// Misconfiguration fails fast and loudly: invalid tokens and malformed
// descriptors are rejected at Set time, unregistered tokens fail Get with
// NoProviderError, and circular graphs fail with CircularDependencyError
// carrying the resolution path. The engine never substitutes nil defaults
// and performs no logging of its own.
package nexus
