package nexus

import "strings"

// Error values are small typed structs so callers can match them with
// errors.As and assert on their fields. Messages are assembled without fmt
// so failure paths stay cheap when errors are used for control flow.

// InvalidTokenError is returned when a value used as a token is not one of
// the permitted shapes (*Token[T], non-empty string, reflect.Type).
type InvalidTokenError struct {
	// GotType is the dynamic type of the rejected value.
	GotType string
}

// Error implements the error interface.
func (e InvalidTokenError) Error() string {
	// Example: nexus: invalid token of type int
	return "nexus: invalid token of type " + e.GotType
}

// NoProviderError is returned by Get when no descriptor is registered for
// the requested token (after alias resolution).
type NoProviderError struct {
	// Token is the diagnostic rendering of the canonical token.
	Token string
}

// Error implements the error interface.
func (e NoProviderError) Error() string {
	// Example: nexus: no provider found for token "logger"
	return "nexus: no provider found for token " + e.Token
}

// InvalidProviderError is returned when a descriptor specifies zero or more
// than one construction strategy, or is otherwise structurally broken.
// Validation is eager: misconfiguration surfaces at Set time, not at some
// unrelated Get call site.
type InvalidProviderError struct {
	// Token is the diagnostic rendering of the target token, if known.
	Token string

	// Reason describes what is wrong with the descriptor.
	Reason string
}

// Error implements the error interface.
func (e InvalidProviderError) Error() string {
	// Example: nexus: invalid provider for token "logger": no strategy set
	if e.Token == "" {
		return "nexus: invalid provider: " + e.Reason
	}
	return "nexus: invalid provider for token " + e.Token + ": " + e.Reason
}

// InvalidServiceError is returned during module expansion when a bare class
// is listed as a provider but carries no service declaration.
type InvalidServiceError struct {
	// Class is the rendering of the offending class type.
	Class string
}

// Error implements the error interface.
func (e InvalidServiceError) Error() string {
	// Example: nexus: class main.UserService has no service declaration
	return "nexus: class " + e.Class + " has no service declaration"
}

// InvalidModuleError is returned when a value passed to module registration
// carries no module metadata.
type InvalidModuleError struct {
	// Class is the rendering of the offending value or class type.
	Class string
}

// Error implements the error interface.
func (e InvalidModuleError) Error() string {
	// Example: nexus: main.AppModule carries no module metadata
	return "nexus: " + e.Class + " carries no module metadata"
}

// TypeMismatchError is returned when a resolved value cannot be assigned to
// its destination (a typed Get helper or an injection target field).
type TypeMismatchError struct {
	// Target describes the destination, e.g. `token "logger"` or
	// `field main.UserService.Log`.
	Target string

	// GotType is the dynamic type of the resolved value.
	GotType string

	// WantType is the type the destination expects.
	WantType string
}

// Error implements the error interface.
func (e TypeMismatchError) Error() string {
	// Example: nexus: token "logger" resolved to *bytes.Buffer, want *log.Logger
	return "nexus: " + e.Target + " resolved to " + e.GotType + ", want " + e.WantType
}

// CircularDependencyError is returned when a resolution graph reaches a
// token or class that is already being resolved further up the same call.
type CircularDependencyError struct {
	// Path is the resolution chain, outermost first, ending with the
	// repeated entry.
	Path []string
}

// Error implements the error interface.
func (e CircularDependencyError) Error() string {
	// Example: nexus: circular dependency: main.A -> main.B -> main.A
	return "nexus: circular dependency: " + strings.Join(e.Path, " -> ")
}
