package nexus

import "reflect"

// ── Module aggregation ────────────────────────────────────────────────────────

// registerModule expands a module class into registry calls. Registration
// is idempotent per container: a module class already seen is a no-op, so
// diamond-shaped import graphs expand each module exactly once and cyclic
// imports terminate.
func (c *Container) registerModule(class reflect.Type) error {
	def, ok := c.meta.Module(class)
	if !ok {
		return InvalidModuleError{Class: class.String()}
	}

	c.mu.Lock()
	if c.modules[class] {
		c.mu.Unlock()
		return nil
	}
	// Mark before expanding so cyclic imports do not recurse forever.
	c.modules[class] = true
	c.mu.Unlock()

	if err := c.applyModuleDef(*def); err != nil {
		// A failed expansion must not commit: unmarking lets a retry after
		// the metadata is fixed expand the module again.
		c.mu.Lock()
		delete(c.modules, class)
		c.mu.Unlock()
		return err
	}
	return nil
}

// registerModuleConfig processes a plain configuration object. Config
// modules have no class identity, so they are not deduplicated; callers
// construct them fresh each time.
func (c *Container) registerModuleConfig(def ModuleDef) error {
	return c.applyModuleDef(def)
}

// applyModuleDef expands imports first, then the module's own providers,
// so an import's providers are visible to the importer's factories.
func (c *Container) applyModuleDef(def ModuleDef) error {
	for _, imp := range def.Imports {
		var err error
		switch v := imp.(type) {
		case ModuleDef:
			err = c.applyModuleDef(v)
		case *ModuleDef:
			err = c.applyModuleDef(*v)
		case reflect.Type:
			err = c.registerModule(indirectType(v))
		default:
			err = InvalidModuleError{Class: typeName(imp)}
		}
		if err != nil {
			return err
		}
	}

	for _, entry := range def.Providers {
		switch p := entry.(type) {
		case reflect.Type:
			// Bare class shorthand: the class must self-declare its token.
			class := indirectType(p)
			token, ok := c.meta.ServiceToken(class)
			if !ok {
				return InvalidServiceError{Class: class.String()}
			}
			if err := c.setProvider(token, Provider{UseClass: class}); err != nil {
				return err
			}
		case Provider:
			if err := c.setModuleProvider(p); err != nil {
				return err
			}
		case *Provider:
			if err := c.setModuleProvider(*p); err != nil {
				return err
			}
		default:
			return InvalidProviderError{
				Reason: "module provider entry must be a class type or Provider, got " + typeName(entry),
			}
		}
	}

	// Exports are informational only; they are carried on the ModuleDef for
	// introspection but not enforced as a visibility boundary.
	return nil
}

func (c *Container) setModuleProvider(p Provider) error {
	if p.Token == nil {
		return InvalidProviderError{Reason: "module provider entry needs a Token"}
	}
	token := p.Token
	p.Token = nil
	return c.setProvider(token, p)
}
