package nexus

import (
	"reflect"
	"sync"
)

// ── Injection metadata ────────────────────────────────────────────────────────
//
// Decorator-style annotation channels do not exist in Go, so declared facts
// about a class live in an explicit out-of-band registry keyed by the class
// type. Application code populates it at init time through the fluent
// Describe builder; the container only ever reads it.

// ParamSite declares a positional (constructor) injection target: the field
// at Index receives the value resolved for Token before Construct runs.
type ParamSite struct {
	Token    any
	Index    int
	Optional bool
}

// FieldSite declares a property injection target: the named field receives
// the value resolved for Token after Construct returns.
type FieldSite struct {
	Token    any
	Field    string
	Optional bool
}

// ModuleDef bundles provider declarations. Imports lists module classes (or
// nested ModuleDefs) expanded before this module's own providers. Providers
// lists bare classes (which must carry a service declaration) or explicit
// Provider descriptors with a Token. Exports is informational only; it is
// not enforced as a visibility boundary.
type ModuleDef struct {
	Imports   []any
	Providers []any
	Exports   []any
}

// classMeta is everything declared about one class.
type classMeta struct {
	params     []ParamSite
	fields     []FieldSite
	service    any
	hasService bool
	module     *ModuleDef
}

// MetadataRegistry associates classes with their declared injection sites,
// service declarations and module declarations.
type MetadataRegistry struct {
	mu      sync.RWMutex
	classes map[reflect.Type]*classMeta
}

// NewMetadataRegistry creates an empty registry. Most applications use the
// process-global default (see Describe); a private registry is useful for
// isolating tests.
func NewMetadataRegistry() *MetadataRegistry {
	return &MetadataRegistry{classes: make(map[reflect.Type]*classMeta)}
}

// defaultMetadata backs the package-level declaration helpers.
var defaultMetadata = NewMetadataRegistry()

// DefaultMetadata returns the process-global registry used by New().
func DefaultMetadata() *MetadataRegistry { return defaultMetadata }

func (m *MetadataRegistry) get(t reflect.Type) (*classMeta, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cm, ok := m.classes[t]
	return cm, ok
}

func (m *MetadataRegistry) upsert(t reflect.Type) *classMeta {
	m.mu.Lock()
	defer m.mu.Unlock()
	cm, ok := m.classes[t]
	if !ok {
		cm = &classMeta{}
		m.classes[t] = cm
	}
	return cm
}

// ParamSites returns the declared positional sites for a class.
func (m *MetadataRegistry) ParamSites(t reflect.Type) []ParamSite {
	if cm, ok := m.get(indirectType(t)); ok {
		return cm.params
	}
	return nil
}

// FieldSites returns the declared property sites for a class.
func (m *MetadataRegistry) FieldSites(t reflect.Type) []FieldSite {
	if cm, ok := m.get(indirectType(t)); ok {
		return cm.fields
	}
	return nil
}

// ServiceToken returns the class's self-declared token, if any.
func (m *MetadataRegistry) ServiceToken(t reflect.Type) (any, bool) {
	if cm, ok := m.get(indirectType(t)); ok && cm.hasService {
		return cm.service, true
	}
	return nil, false
}

// Module returns the class's module declaration, if any.
func (m *MetadataRegistry) Module(t reflect.Type) (*ModuleDef, bool) {
	if cm, ok := m.get(indirectType(t)); ok && cm.module != nil {
		return cm.module, true
	}
	return nil, false
}

// ── Declaration builder ───────────────────────────────────────────────────────

// ClassBuilder implements the fluent declaration API.
//
//	nexus.Describe[UserService]().
//	    Param(0, LoggerToken).
//	    Field("Audit", AuditToken).
//	    Service(SvcToken)
type ClassBuilder struct {
	registry *MetadataRegistry
	class    reflect.Type
}

// Describe starts declaring facts about T in the default registry.
func Describe[T any]() *ClassBuilder {
	return defaultMetadata.Describe(ClassOf[T]())
}

// Describe starts declaring facts about the given class in this registry.
func (m *MetadataRegistry) Describe(class reflect.Type) *ClassBuilder {
	return &ClassBuilder{registry: m, class: indirectType(class)}
}

// Param declares that the field at index receives the value for token
// before Construct runs.
func (b *ClassBuilder) Param(index int, token any) *ClassBuilder {
	return b.param(index, token, false)
}

// OptionalParam is Param with a missing provider tolerated (the field is
// left zero).
func (b *ClassBuilder) OptionalParam(index int, token any) *ClassBuilder {
	return b.param(index, token, true)
}

func (b *ClassBuilder) param(index int, token any, optional bool) *ClassBuilder {
	cm := b.registry.upsert(b.class)
	b.registry.mu.Lock()
	cm.params = append(cm.params, ParamSite{Token: token, Index: index, Optional: optional})
	b.registry.mu.Unlock()
	return b
}

// Field declares that the named field receives the value for token after
// Construct returns.
func (b *ClassBuilder) Field(name string, token any) *ClassBuilder {
	return b.field(name, token, false)
}

// OptionalField is Field with a missing provider tolerated.
func (b *ClassBuilder) OptionalField(name string, token any) *ClassBuilder {
	return b.field(name, token, true)
}

func (b *ClassBuilder) field(name string, token any, optional bool) *ClassBuilder {
	cm := b.registry.upsert(b.class)
	b.registry.mu.Lock()
	cm.fields = append(cm.fields, FieldSite{Token: token, Field: name, Optional: optional})
	b.registry.mu.Unlock()
	return b
}

// Service declares the token the class registers under when listed as a
// bare module provider.
func (b *ClassBuilder) Service(token any) *ClassBuilder {
	cm := b.registry.upsert(b.class)
	b.registry.mu.Lock()
	cm.service = token
	cm.hasService = true
	b.registry.mu.Unlock()
	return b
}

// Module attaches a module declaration to the class.
func (b *ClassBuilder) Module(def ModuleDef) *ClassBuilder {
	cm := b.registry.upsert(b.class)
	b.registry.mu.Lock()
	cm.module = &def
	b.registry.mu.Unlock()
	return b
}

// Class returns the class type being described.
func (b *ClassBuilder) Class() reflect.Type { return b.class }

// ── Declaration shorthands ────────────────────────────────────────────────────

// DeclareService marks T as a self-declaring provider for token.
func DeclareService[T any](token any) {
	Describe[T]().Service(token)
}

// DeclareModule attaches a module declaration to T.
func DeclareModule[T any](def ModuleDef) {
	Describe[T]().Module(def)
}
