package nexus_test

import (
	"errors"
	"testing"

	"github.com/km-arc/go-nexus/nexus"
)

// ── test fixtures ─────────────────────────────────────────────────────────────

type greeter struct {
	Prefix string
}

type widget struct{}

type gadget struct{}

// loggingSvc receives the greeter positionally, for the end-to-end check.
type loggingSvc struct {
	Log *greeter
}

var (
	e2eLogger = nexus.NewToken[*greeter]("e2e.logger")
	e2eSvc    = nexus.NewToken[*loggingSvc]("e2e.svc")
)

func init() {
	nexus.Describe[loggingSvc]().Param(0, e2eLogger)
}

// ── Set / Get basics ──────────────────────────────────────────────────────────

func TestSet_ValueStrategy_ReturnedVerbatim(t *testing.T) {
	c := nexus.New()
	want := &greeter{Prefix: "hello"}

	if err := c.Set("greeter", nexus.Value(want)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get("greeter")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != any(want) {
		t.Errorf("value strategy must return the registered value verbatim")
	}
}

func TestSet_BareClass_NormalizedToClassStrategy(t *testing.T) {
	c := nexus.New()

	if err := c.Set("widget", nexus.ClassOf[widget]()); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get("widget")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, ok := got.(*widget); !ok {
		t.Errorf("bare class should resolve to *widget, got %T", got)
	}
}

func TestGet_SingletonIdentity(t *testing.T) {
	c := nexus.New()
	tok := nexus.NewToken[*widget]("widget")

	if err := c.Set(tok, nexus.Class[widget]()); err != nil {
		t.Fatalf("Set: %v", err)
	}

	first := nexus.MustGet[*widget](c, tok)
	second := nexus.MustGet[*widget](c, tok)
	if first != second {
		t.Error("two consecutive Get calls must return the identical instance")
	}
}

func TestSet_ReRegistration_ResetsIdentity(t *testing.T) {
	c := nexus.New()
	tok := nexus.NewToken[any]("svc")

	if err := c.Set(tok, nexus.Class[widget]()); err != nil {
		t.Fatalf("Set widget: %v", err)
	}
	i1, err := c.Get(tok)
	if err != nil {
		t.Fatalf("Get widget: %v", err)
	}

	if err := c.Set(tok, nexus.Class[gadget]()); err != nil {
		t.Fatalf("Set gadget: %v", err)
	}
	i2, err := c.Get(tok)
	if err != nil {
		t.Fatalf("Get gadget: %v", err)
	}

	if i1 == i2 {
		t.Error("re-registration must drop the cached singleton")
	}
	if _, ok := i2.(*gadget); !ok {
		t.Errorf("second Get must use the new descriptor, got %T", i2)
	}
}

func TestGet_AliasEquivalence(t *testing.T) {
	c := nexus.New()
	tok := nexus.NewToken[*widget]("custom")

	if err := c.Set(tok, nexus.Class[widget]()); err != nil {
		t.Fatalf("Set: %v", err)
	}

	byToken, err := c.Get(tok)
	if err != nil {
		t.Fatalf("Get(token): %v", err)
	}
	byClass, err := c.Get(nexus.ClassOf[widget]())
	if err != nil {
		t.Fatalf("Get(class): %v", err)
	}
	if byToken != byClass {
		t.Error("class alias must resolve to the same singleton as the token")
	}
}

func TestGet_MissingProvider_Fails(t *testing.T) {
	c := nexus.New()
	tok := nexus.NewToken[string]("absent")

	if c.Has(tok) {
		t.Error("Has must report false for an unregistered token")
	}

	_, err := c.Get(tok)
	var nf nexus.NoProviderError
	if !errors.As(err, &nf) {
		t.Fatalf("want NoProviderError, got %v", err)
	}
	if nf.Token != "absent" {
		t.Errorf("error should carry the token diagnostic, got %q", nf.Token)
	}
}

func TestGet_FactoryDeps_PositionalOrder(t *testing.T) {
	c := nexus.New()
	a := nexus.NewToken[string]("a")
	b := nexus.NewToken[string]("b")

	if err := c.Set(a, nexus.Value("first")); err != nil {
		t.Fatalf("Set a: %v", err)
	}
	if err := c.Set(b, nexus.Value("second")); err != nil {
		t.Fatalf("Set b: %v", err)
	}

	var got []any
	err := c.Set("combined", nexus.FactoryOf(func(deps ...any) (any, error) {
		got = append(got, deps...)
		return deps[0].(string) + "/" + deps[1].(string), nil
	}, a, b))
	if err != nil {
		t.Fatalf("Set factory: %v", err)
	}

	v, err := c.Get("combined")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "first/second" {
		t.Errorf("factory args out of order: got %v", v)
	}
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("factory received %v, want [first second]", got)
	}
}

func TestGet_FactoryError_Propagates(t *testing.T) {
	c := nexus.New()
	boom := errors.New("boom")

	if err := c.Set("failing", nexus.FactoryOf(func(...any) (any, error) {
		return nil, boom
	})); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, err := c.Get("failing"); !errors.Is(err, boom) {
		t.Errorf("factory error must propagate unmodified, got %v", err)
	}
}

func TestHas_DoesNotInstantiate(t *testing.T) {
	c := nexus.New()
	calls := 0

	if err := c.Set("lazy", nexus.FactoryOf(func(...any) (any, error) {
		calls++
		return "built", nil
	})); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if !c.Has("lazy") {
		t.Error("Has must report true for a registered token")
	}
	if calls != 0 {
		t.Errorf("Has triggered %d factory calls, want 0", calls)
	}
}

// ── invalid input ─────────────────────────────────────────────────────────────

func TestSet_InvalidTokenShapes(t *testing.T) {
	c := nexus.New()

	tests := []struct {
		name  string
		token any
	}{
		{"nil", nil},
		{"nil token pointer", (*nexus.Token[string])(nil)},
		{"int", 42},
		{"empty string", ""},
		{"struct value", widget{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Set(tt.token, nexus.Value("x"))
			var inv nexus.InvalidTokenError
			if !errors.As(err, &inv) {
				t.Errorf("want InvalidTokenError, got %v", err)
			}
		})
	}
}

func TestSet_InvalidProviderStrategies(t *testing.T) {
	c := nexus.New()

	tests := []struct {
		name string
		p    nexus.Provider
	}{
		{"no strategy", nexus.Provider{}},
		{"nil value", nexus.Value(nil)},
		{"two strategies", nexus.Provider{
			UseValue:   "v",
			UseFactory: func(...any) (any, error) { return nil, nil },
		}},
		{"deps without factory", nexus.Provider{UseValue: "v", Deps: []any{"a"}}},
		{"non-struct class", nexus.Provider{UseClass: nexus.ClassOf[string]()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Set("tok", tt.p)
			var inv nexus.InvalidProviderError
			if !errors.As(err, &inv) {
				t.Errorf("want InvalidProviderError, got %v", err)
			}
		})
	}
}

func TestGet_InvalidToken(t *testing.T) {
	c := nexus.New()
	_, err := c.Get(3.14)
	var inv nexus.InvalidTokenError
	if !errors.As(err, &inv) {
		t.Errorf("want InvalidTokenError, got %v", err)
	}

	_, err = c.Get((*nexus.Token[int])(nil))
	if !errors.As(err, &inv) {
		t.Errorf("nil token pointer: want InvalidTokenError, got %v", err)
	}
}

// ── lifecycle ─────────────────────────────────────────────────────────────────

func TestCreateChild_Isolation(t *testing.T) {
	parent := nexus.New()
	tok := nexus.NewToken[string]("env")

	if err := parent.Set(tok, nexus.Value("prod")); err != nil {
		t.Fatalf("parent Set: %v", err)
	}

	child := parent.CreateChild()
	if err := child.Set(tok, nexus.Value("test")); err != nil {
		t.Fatalf("child Set: %v", err)
	}

	if got := nexus.MustGet[string](parent, tok); got != "prod" {
		t.Errorf("parent: got %q, want 'prod'", got)
	}
	if got := nexus.MustGet[string](child, tok); got != "test" {
		t.Errorf("child: got %q, want 'test'", got)
	}
}

func TestCreateChild_SnapshotNotLiveView(t *testing.T) {
	parent := nexus.New()
	child := parent.CreateChild()

	if err := parent.Set("late", nexus.Value("x")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if child.Has("late") {
		t.Error("registrations after CreateChild must not propagate to the child")
	}
}

func TestClear_ResetsContainer(t *testing.T) {
	c := nexus.New()
	tok := nexus.NewToken[*widget]("w")

	if err := c.Set(tok, nexus.Class[widget]()); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := c.Get(tok); err != nil {
		t.Fatalf("Get: %v", err)
	}

	c.Clear()

	if c.Has(tok) {
		t.Error("Has must be false after Clear")
	}
	if c.Has(nexus.ClassOf[widget]()) {
		t.Error("aliases must be gone after Clear")
	}
	if l := c.List(); len(l.Tokens) != 0 || len(l.Modules) != 0 {
		t.Errorf("List after Clear: %+v, want empty", l)
	}
}

func TestList_ReportsTokensSorted(t *testing.T) {
	c := nexus.New()
	if err := c.Set("zeta", nexus.Value(1)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set("alpha", nexus.Value(2)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	l := c.List()
	if len(l.Tokens) != 2 {
		t.Fatalf("got %d tokens, want 2", len(l.Tokens))
	}
	if l.Tokens[0] != `"alpha"` || l.Tokens[1] != `"zeta"` {
		t.Errorf("tokens not sorted: %v", l.Tokens)
	}
}

// ── generic helpers ───────────────────────────────────────────────────────────

func TestGetTyped_Mismatch(t *testing.T) {
	c := nexus.New()
	if err := c.Set("n", nexus.Value(7)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	_, err := nexus.Get[string](c, "n")
	var tm nexus.TypeMismatchError
	if !errors.As(err, &tm) {
		t.Fatalf("want TypeMismatchError, got %v", err)
	}
	if tm.GotType != "int" || tm.WantType != "string" {
		t.Errorf("mismatch detail wrong: %+v", tm)
	}
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	c := nexus.New()
	defer func() {
		if recover() == nil {
			t.Error("MustGet must panic for an unregistered token")
		}
	}()
	nexus.MustGet[string](c, "missing")
}

func TestEndToEnd_InjectedReferenceIdentity(t *testing.T) {
	c := nexus.New()
	logger := &greeter{Prefix: "log"}

	if err := c.Set(e2eLogger, nexus.Value(logger)); err != nil {
		t.Fatalf("Set logger: %v", err)
	}
	if err := c.Set(e2eSvc, nexus.Class[loggingSvc]()); err != nil {
		t.Fatalf("Set svc: %v", err)
	}

	svc := nexus.MustGet[*loggingSvc](c, e2eSvc)
	if svc.Log != logger {
		t.Error("injected reference must strictly equal the registered value")
	}
}

func TestSet_WrongArity(t *testing.T) {
	c := nexus.New()
	err := c.Set("a", nexus.Value(1), "extra")
	var inv nexus.InvalidProviderError
	if !errors.As(err, &inv) {
		t.Errorf("want InvalidProviderError, got %v", err)
	}
}
