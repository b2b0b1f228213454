package nexus

import (
	"reflect"
	"sort"
	"sync"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the resolution engine: it maps tokens to provider
// descriptors, memoizes singleton instances, tracks class aliases and
// expands module declarations into registrations.
//
// Map accesses are guarded by a coarse RWMutex, but resolving one
// dependency graph is not an atomic operation: a container should be owned
// by a single logical execution context while Get/Resolve runs. Use
// CreateChild to hand isolated snapshots to parallel scopes.
type Container struct {
	mu   sync.RWMutex
	meta *MetadataRegistry

	// token → provider descriptor
	providers map[any]Provider

	// token → resolved singleton instance
	instances map[any]any

	// class type → token it was registered under
	aliases map[any]any

	// module classes already expanded on this container
	modules map[reflect.Type]bool

	// tokens and classes currently being resolved, plus the diagnostic
	// path for cycle errors (mutated without locking; see type comment)
	resolvingTokens  map[any]bool
	resolvingClasses map[reflect.Type]bool
	buildStack       []string
}

// New creates an empty container reading the process-global metadata
// registry.
func New() *Container { return NewWith(defaultMetadata) }

// NewWith creates an empty container reading a specific metadata registry.
func NewWith(meta *MetadataRegistry) *Container {
	if meta == nil {
		meta = defaultMetadata
	}
	return &Container{
		meta:             meta,
		providers:        make(map[any]Provider),
		instances:        make(map[any]any),
		aliases:          make(map[any]any),
		modules:          make(map[reflect.Type]bool),
		resolvingTokens:  make(map[any]bool),
		resolvingClasses: make(map[reflect.Type]bool),
	}
}

// ── Registration ──────────────────────────────────────────────────────────────

// Set is the unified registration entry point.
//
// With one argument it registers a module: either a module class
// (ClassOf[AppModule](), carrying a declaration made with DeclareModule) or
// a plain ModuleDef configuration object.
//
// With two arguments it registers a provider for a token. The second
// argument is a Provider descriptor or a bare class type, which is
// normalized to a class-strategy descriptor:
//
//	c.Set(LoggerToken, nexus.Value(myLogger))
//	c.Set(SvcToken, nexus.ClassOf[UserService]())
//	c.Set(nexus.ClassOf[AppModule]())
func (c *Container) Set(args ...any) error {
	switch len(args) {
	case 1:
		switch v := args[0].(type) {
		case ModuleDef:
			return c.registerModuleConfig(v)
		case *ModuleDef:
			return c.registerModuleConfig(*v)
		case reflect.Type:
			return c.registerModule(indirectType(v))
		default:
			return InvalidModuleError{Class: typeName(args[0])}
		}
	case 2:
		return c.setProvider(args[0], args[1])
	default:
		return InvalidProviderError{Reason: "Set expects one or two arguments"}
	}
}

// setProvider registers a descriptor under a token, creating an alias for
// class strategies and dropping any stale singleton for the token.
func (c *Container) setProvider(token, descriptor any) error {
	token = normalizeToken(token)
	if !validToken(token) {
		return InvalidTokenError{GotType: typeName(token)}
	}

	var p Provider
	switch d := descriptor.(type) {
	case Provider:
		p = d.normalized()
	case *Provider:
		p = d.normalized()
	case reflect.Type:
		p = Provider{UseClass: indirectType(d)}
	default:
		return InvalidProviderError{
			Token:  describeToken(token),
			Reason: "descriptor must be a Provider or a class type, got " + typeName(descriptor),
		}
	}
	if err := p.validate(describeToken(token)); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// The token becomes canonical again even if it used to alias elsewhere.
	delete(c.aliases, token)

	if p.UseClass != nil {
		if rt, ok := token.(reflect.Type); !ok || rt != p.UseClass {
			c.aliases[p.UseClass] = token
		}
	}

	// Drop the stale singleton so the next Get reads the new descriptor.
	delete(c.instances, token)

	c.providers[token] = p
	return nil
}

// canonical resolves a class alias to the token it was registered under.
// Callers must hold at least a read lock.
func (c *Container) canonical(token any) any {
	if target, ok := c.aliases[token]; ok {
		return target
	}
	return token
}

// ── Lookup ────────────────────────────────────────────────────────────────────

// Has reports whether a descriptor (or cached instance) exists for the
// token, alias-aware. It never instantiates, and a malformed token simply
// reports false.
func (c *Container) Has(token any) bool {
	token = normalizeToken(token)
	if !validToken(token) {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(token)
	if _, ok := c.providers[key]; ok {
		return true
	}
	_, ok := c.instances[key]
	return ok
}

// Get resolves the token to its value. Resolution order: alias → singleton
// cache → strategy dispatch. Produced instances are cached, so repeated
// calls return the identical value until the token is re-registered.
func (c *Container) Get(token any) (any, error) {
	token = normalizeToken(token)
	if !validToken(token) {
		return nil, InvalidTokenError{GotType: typeName(token)}
	}

	c.mu.RLock()
	key := c.canonical(token)
	if inst, ok := c.instances[key]; ok {
		c.mu.RUnlock()
		return inst, nil
	}
	p, ok := c.providers[key]
	c.mu.RUnlock()

	if !ok {
		return nil, NoProviderError{Token: describeToken(key)}
	}

	label := describeToken(key)
	if c.resolvingTokens[key] {
		return nil, CircularDependencyError{Path: append(c.stackCopy(), label)}
	}
	c.resolvingTokens[key] = true
	c.buildStack = append(c.buildStack, label)
	defer func() {
		delete(c.resolvingTokens, key)
		c.buildStack = c.buildStack[:len(c.buildStack)-1]
	}()

	var (
		inst any
		err  error
	)
	switch {
	case p.UseValue != nil:
		inst = p.UseValue
	case p.UseFactory != nil:
		args := make([]any, len(p.Deps))
		for i, dep := range p.Deps {
			if args[i], err = c.Get(dep); err != nil {
				return nil, err
			}
		}
		if inst, err = p.UseFactory(args...); err != nil {
			return nil, err
		}
	default:
		if inst, err = c.resolveClass(p.UseClass); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	c.instances[key] = inst
	c.mu.Unlock()
	return inst, nil
}

// Resolve constructs one instance of the class with dependency injection,
// independent of whether the class is registered. Used internally for
// class-strategy providers and exposed for direct use; direct results are
// not cached.
func (c *Container) Resolve(class reflect.Type) (any, error) {
	class = indirectType(class)
	if class == nil {
		return nil, InvalidProviderError{Reason: "Resolve requires a struct type, got nil"}
	}
	if class.Kind() != reflect.Struct {
		return nil, InvalidProviderError{Reason: "Resolve requires a struct type, got " + class.String()}
	}
	return c.resolveClass(class)
}

func (c *Container) stackCopy() []string {
	cp := make([]string, len(c.buildStack))
	copy(cp, c.buildStack)
	return cp
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// CreateChild returns a new container whose registry, alias map, singleton
// cache and registered-modules set are shallow copies of this one. The
// child is a snapshot, not a live view: later registrations on either side
// do not propagate to the other.
func (c *Container) CreateChild() *Container {
	c.mu.RLock()
	defer c.mu.RUnlock()

	child := NewWith(c.meta)
	for k, v := range c.providers {
		child.providers[k] = v
	}
	for k, v := range c.instances {
		child.instances[k] = v
	}
	for k, v := range c.aliases {
		child.aliases[k] = v
	}
	for k := range c.modules {
		child.modules[k] = true
	}
	return child
}

// Clear returns the container to its just-constructed state.
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers = make(map[any]Provider)
	c.instances = make(map[any]any)
	c.aliases = make(map[any]any)
	c.modules = make(map[reflect.Type]bool)
}

// Listing is the diagnostic snapshot returned by List.
type Listing struct {
	// Tokens renders every registered token, sorted.
	Tokens []string

	// Modules renders every registered module class, sorted.
	Modules []string
}

// List reports the registered tokens and module names for introspection.
// It does not mutate state.
func (c *Container) List() Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l := Listing{
		Tokens:  make([]string, 0, len(c.providers)),
		Modules: make([]string, 0, len(c.modules)),
	}
	for tok := range c.providers {
		l.Tokens = append(l.Tokens, describeToken(tok))
	}
	for m := range c.modules {
		l.Modules = append(l.Modules, m.String())
	}
	sort.Strings(l.Tokens)
	sort.Strings(l.Modules)
	return l
}

// ── Generic helpers ───────────────────────────────────────────────────────────

// Get resolves a token and asserts the result to T.
//
//	logger, err := nexus.Get[*log.Logger](c, LoggerToken)
func Get[T any](c *Container, token any) (T, error) {
	var zero T
	v, err := c.Get(token)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, TypeMismatchError{
			Target:   "token " + describeToken(normalizeToken(token)),
			GotType:  typeName(v),
			WantType: reflect.TypeOf((*T)(nil)).Elem().String(),
		}
	}
	return typed, nil
}

// MustGet is Get or panic, for composition roots where a missing
// dependency is unrecoverable anyway.
func MustGet[T any](c *Container, token any) T {
	v, err := Get[T](c, token)
	if err != nil {
		panic(err)
	}
	return v
}

// Resolve constructs a *T with dependency injection, without requiring a
// registration for T.
func Resolve[T any](c *Container) (*T, error) {
	v, err := c.Resolve(ClassOf[T]())
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}
