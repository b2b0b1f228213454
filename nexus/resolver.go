package nexus

import (
	"errors"
	"reflect"
	"strconv"
)

// ── Class resolution ──────────────────────────────────────────────────────────

// Constructible lets a class run constructor logic. Construct is invoked
// after the positional (Param) dependencies are set and before property
// (Field) injection happens, so constructor logic never observes
// property-injected values.
type Constructible interface {
	Construct()
}

// resolveClass builds one instance of the struct type, satisfying declared
// dependencies:
//
//  1. positional sites fill fields by index
//  2. the implicit fallback fills remaining exported pointer-to-struct
//     fields that the container knows how to produce
//  3. Construct runs, if implemented
//  4. property sites fill fields by name
//
// Any resolution failure inside the graph propagates unmodified; there is
// no retry and no partially constructed result.
func (c *Container) resolveClass(t reflect.Type) (any, error) {
	if c.resolvingClasses[t] {
		return nil, CircularDependencyError{Path: append(c.stackCopy(), t.String())}
	}
	c.resolvingClasses[t] = true
	c.buildStack = append(c.buildStack, t.String())
	defer func() {
		delete(c.resolvingClasses, t)
		c.buildStack = c.buildStack[:len(c.buildStack)-1]
	}()

	ptr := reflect.New(t)
	elem := ptr.Elem()

	covered := make(map[int]bool)
	for _, site := range c.meta.ParamSites(t) {
		if site.Index < 0 || site.Index >= t.NumField() {
			return nil, InvalidProviderError{
				Token:  t.String(),
				Reason: "param injection index " + strconv.Itoa(site.Index) + " out of range",
			}
		}
		covered[site.Index] = true
		v, err := c.Get(site.Token)
		if err != nil {
			if skipOptional(c, site.Token, site.Optional, err) {
				continue
			}
			return nil, err
		}
		if err := assign(elem.Field(site.Index), v, t.String()+"."+t.Field(site.Index).Name); err != nil {
			return nil, err
		}
	}

	propertyFields := make(map[string]bool)
	fieldSites := c.meta.FieldSites(t)
	for _, site := range fieldSites {
		propertyFields[site.Field] = true
	}

	if err := c.injectImplicit(t, elem, covered, propertyFields); err != nil {
		return nil, err
	}

	inst := ptr.Interface()
	if ctor, ok := inst.(Constructible); ok {
		ctor.Construct()
	}

	for _, site := range fieldSites {
		sf, ok := t.FieldByName(site.Field)
		if !ok {
			return nil, InvalidProviderError{
				Token:  t.String(),
				Reason: "property injection targets unknown field " + site.Field,
			}
		}
		v, err := c.Get(site.Token)
		if err != nil {
			if skipOptional(c, site.Token, site.Optional, err) {
				continue
			}
			return nil, err
		}
		if err := assign(elem.FieldByIndex(sf.Index), v, t.String()+"."+site.Field); err != nil {
			return nil, err
		}
	}

	return inst, nil
}

// injectImplicit is the best-effort fallback for exported pointer-to-struct
// fields with no explicit site: if the container already has a provider (or
// alias) for the field's type it is injected; a field tagged `inject:""`
// additionally opts into direct recursive construction when the type is
// unregistered. Primitives and interfaces are never implicitly resolved.
func (c *Container) injectImplicit(t reflect.Type, elem reflect.Value, covered map[int]bool, property map[string]bool) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if covered[i] || property[sf.Name] || !sf.IsExported() {
			continue
		}
		ft := sf.Type
		if ft.Kind() != reflect.Ptr || ft.Elem().Kind() != reflect.Struct {
			continue
		}

		var (
			v   any
			err error
		)
		switch {
		case c.Has(ft):
			v, err = c.Get(ft)
		default:
			if _, tagged := sf.Tag.Lookup("inject"); !tagged {
				continue
			}
			v, err = c.resolveClass(ft.Elem())
		}
		if err != nil {
			return err
		}
		if err := assign(elem.Field(i), v, t.String()+"."+sf.Name); err != nil {
			return err
		}
	}
	return nil
}

// assign places a resolved value into a destination field.
func assign(field reflect.Value, v any, label string) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		// nil resolved value, leave the field zero
		return nil
	}
	if !field.CanSet() {
		return InvalidProviderError{Reason: "injection targets unexported field " + label}
	}
	if !rv.Type().AssignableTo(field.Type()) {
		return TypeMismatchError{
			Target:   "field " + label,
			GotType:  rv.Type().String(),
			WantType: field.Type().String(),
		}
	}
	field.Set(rv)
	return nil
}

// skipOptional reports whether an optional site may be left zero. Only the
// site's own token being unregistered qualifies: a NoProviderError from
// deeper in the graph means a registered provider is broken, and that must
// surface, not zero out the field.
func skipOptional(c *Container, token any, optional bool, err error) bool {
	if !optional || !isNoProvider(err) {
		return false
	}
	return !c.Has(token)
}

func isNoProvider(err error) bool {
	var nf NoProviderError
	return errors.As(err, &nf)
}
