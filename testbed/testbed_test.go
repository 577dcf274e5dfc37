package testbed

import (
	stderrors "errors"
	"reflect"
	"sync"
	"testing"

	"github.com/wippyai/typedispatch/errors"
	"github.com/wippyai/typedispatch/gen"
	"github.com/wippyai/typedispatch/resolver"
	"github.com/wippyai/typedispatch/scan"
	"github.com/wippyai/typedispatch/testbed/components"
	"github.com/wippyai/typedispatch/testbed/generated"
	"github.com/wippyai/typedispatch/testbed/models"
)

type testComponents struct {
	app    *components.AppComponent
	banana *components.BananaComponent
	label  *components.LabelComponent
	net    *components.NetComponent
	zebra  *components.ZebraComponent
}

func newComponents() testComponents {
	return testComponents{
		app:    &components.AppComponent{},
		banana: &components.BananaComponent{},
		label:  &components.LabelComponent{},
		net:    &components.NetComponent{},
		zebra:  &components.ZebraComponent{},
	}
}

func prepare(t *testing.T) (*resolver.Resolver, *generated.Dispatcher, testComponents) {
	t.Helper()
	r := resolver.NewWithDefaults()
	c := newComponents()
	d, err := generated.Prepare(r, c.app, c.banana, c.label, c.net, c.zebra)
	if err != nil {
		t.Fatalf("prepare dispatcher: %v", err)
	}
	return r, d, c
}

func TestDispatch_Handlers(t *testing.T) {
	r, _, _ := prepare(t)

	app1 := &models.AppObject1{}
	app2 := &models.AppObject2{}
	banana := &models.BananaObject{}
	net1 := &models.NetObject1{}
	net2 := &models.NetObject2{}
	zebra := &models.ZebraObject{}

	tests := []struct {
		name     string
		obj      any
		injected func() bool
	}{
		{name: "app1", obj: app1, injected: func() bool { return app1.Injected }},
		{name: "app2", obj: app2, injected: func() bool { return app2.Injected }},
		{name: "banana", obj: banana, injected: func() bool { return banana.Injected }},
		{name: "net1", obj: net1, injected: func() bool { return net1.Injected }},
		{name: "net2", obj: net2, injected: func() bool { return net2.Injected }},
		{name: "zebra", obj: zebra, injected: func() bool { return zebra.Injected }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.injected() {
				t.Fatal("object injected before dispatch")
			}
			if err := r.Dispatch(tt.obj); err != nil {
				t.Fatalf("dispatch: %v", err)
			}
			if !tt.injected() {
				t.Error("object not injected")
			}
		})
	}
}

func TestDispatch_NonHandled(t *testing.T) {
	r, _, _ := prepare(t)

	obj := &models.NonHandledObject{}
	err := r.Dispatch(obj)
	if !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	var te *errors.Error
	if stderrors.As(err, &te) && te.Type != "*models.NonHandledObject" {
		t.Errorf("error should name the type, got %q", te.Type)
	}
	if obj.Injected {
		t.Error("non handled object must not be touched")
	}
}

func TestDispatch_StrictBanana(t *testing.T) {
	r, _, _ := prepare(t)

	cavendish := &models.CavendishObject{}
	if err := r.Dispatch(cavendish); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("banana handler is strict, dispatching a cavendish should fail, got %v", err)
	}
	if cavendish.Injected {
		t.Error("cavendish must not be injected")
	}
}

func TestDispatch_LooseZebra(t *testing.T) {
	r, _, _ := prepare(t)

	okapi := &models.OkapiObject{}
	if err := r.Dispatch(okapi); err != nil {
		t.Fatalf("dispatch okapi: %v", err)
	}
	if okapi.Injected {
		t.Error("the okapi's own Injected field must not be set by the zebra handler")
	}
	if !okapi.ZebraObject.Injected {
		t.Error("the embedded zebra should be injected")
	}

	onager := &models.OnagerObject{ZebraObject: &models.ZebraObject{}}
	if err := r.Dispatch(onager); err != nil {
		t.Fatalf("dispatch onager: %v", err)
	}
	if !onager.ZebraObject.Injected {
		t.Error("zebra reached through a pointer should be injected")
	}

	if err := r.Dispatch(&models.OnagerObject{}); !errors.IsKind(err, errors.KindNilValue) {
		t.Errorf("onager without a zebra: expected nil value error, got %v", err)
	}
}

func TestDispatch_LooseInterface(t *testing.T) {
	r, _, c := prepare(t)

	for _, id := range []string{"a", "b"} {
		if err := r.Dispatch(&models.TicketObject{ID: id}); err != nil {
			t.Fatalf("dispatch ticket %s: %v", id, err)
		}
	}
	want := []string{"ticket-a", "ticket-b"}
	if got := c.label.Labels(); !reflect.DeepEqual(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}

	// TicketObject values do not implement Labeled.
	if err := r.Dispatch(models.TicketObject{ID: "c"}); !errors.IsKind(err, errors.KindNotFound) {
		t.Errorf("expected not found for a value ticket, got %v", err)
	}
}

func TestDispatch_HandlerError(t *testing.T) {
	r, _, _ := prepare(t)

	obj := &models.NetObject1{Fail: true}
	err := r.Dispatch(obj)
	if err == nil || err.Error() != "net object refused" {
		t.Errorf("handler error should surface unchanged, got %v", err)
	}
	if obj.Injected {
		t.Error("failed handler should not inject")
	}
}

// Components A (strict, X) and B (loose, Y): X goes to A, Z embedding Y goes to
// B, and the unrelated W fails.
func TestScenario_StrictLooseUnrelated(t *testing.T) {
	r, _, _ := prepare(t)

	x := &models.AppObject1{}
	z := &models.OkapiObject{}
	w := &models.NonHandledObject{}

	if err := r.Dispatch(x); err != nil || !x.Injected {
		t.Errorf("X: err=%v injected=%v", err, x.Injected)
	}
	if err := r.Dispatch(z); err != nil || !z.ZebraObject.Injected {
		t.Errorf("Z: err=%v injected=%v", err, z.ZebraObject.Injected)
	}
	if err := r.Dispatch(w); !errors.IsKind(err, errors.KindNotFound) {
		t.Errorf("W: expected resolution failure, got %v", err)
	}
}

func TestGeneratedDispatch(t *testing.T) {
	_, d, _ := prepare(t)

	if generated.Instance() != d {
		t.Error("Instance should return the prepared dispatcher")
	}

	zebra := &models.ZebraObject{}
	if err := d.Dispatch(zebra); err != nil || !zebra.Injected {
		t.Errorf("direct dispatch: err=%v injected=%v", err, zebra.Injected)
	}

	ticket := &models.TicketObject{ID: "direct"}
	if err := d.Dispatch(ticket); err != nil {
		t.Errorf("interface case: %v", err)
	}

	// The generated switch matches declared types only; fallback lives in the resolver.
	err := d.Dispatch(&models.OkapiObject{})
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDispatch, Kind: errors.KindNotFound}) {
		t.Errorf("expected unhandled error, got %v", err)
	}

	if err := d.Dispatch(nil); !errors.IsKind(err, errors.KindNilValue) {
		t.Errorf("expected nil value error, got %v", err)
	}
}

func TestPrepare_Conflict(t *testing.T) {
	r, first, _ := prepare(t)

	c := newComponents()
	_, err := generated.Prepare(r, c.app, c.banana, c.label, c.net, c.zebra)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRegister, Kind: errors.KindDuplicate}) {
		t.Fatalf("expected registration conflict, got %v", err)
	}
	if generated.Instance() != first {
		t.Error("a failed Prepare must not replace the instance")
	}
	if r.Len() != 7 {
		t.Errorf("resolver has %d entries, want 7", r.Len())
	}

	if _, err := generated.Prepare(resolver.NewWithDefaults(), c.app, nil, c.label, c.net, c.zebra); !errors.IsKind(err, errors.KindNilValue) {
		t.Errorf("expected nil component error, got %v", err)
	}
	if _, err := generated.Prepare(nil, c.app, c.banana, c.label, c.net, c.zebra); !errors.IsKind(err, errors.KindNilValue) {
		t.Errorf("expected nil resolver error, got %v", err)
	}
}

func TestClear(t *testing.T) {
	r, _, _ := prepare(t)

	if err := r.Dispatch(&models.AppObject1{}); err != nil {
		t.Fatalf("dispatch before clear: %v", err)
	}

	r.Clear()

	for _, obj := range []any{&models.AppObject1{}, &models.ZebraObject{}, &models.OkapiObject{}} {
		if err := r.Dispatch(obj); !errors.IsKind(err, errors.KindNotFound) {
			t.Errorf("dispatch %T after clear: expected not found, got %v", obj, err)
		}
	}

	// A cleared resolver accepts a fresh registration session.
	c := newComponents()
	if _, err := generated.Prepare(r, c.app, c.banana, c.label, c.net, c.zebra); err != nil {
		t.Errorf("prepare after clear: %v", err)
	}
}

func TestDispatch_Concurrent(t *testing.T) {
	r, _, c := prepare(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				for _, obj := range []any{&models.AppObject1{}, &models.OkapiObject{}, &models.TicketObject{ID: "x"}} {
					if err := r.Dispatch(obj); err != nil {
						errs <- err
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent dispatch: %v", err)
	}
	if n := len(c.label.Labels()); n != workers*50 {
		t.Errorf("labels = %d, want %d", n, workers*50)
	}
}

// The checked-in dispatcher must match what the generator plans for the
// components package today.
func TestGenerated_MatchesScan(t *testing.T) {
	decls, err := scan.Dir("components", "")
	if err != nil {
		t.Fatalf("scan components: %v", err)
	}

	cfg := gen.DefaultConfig().WithPackage("generated", "github.com/wippyai/typedispatch/testbed/generated")
	p, err := gen.NewPlan(decls, cfg)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	prep := reflect.TypeOf(generated.Prepare)
	if prep.NumIn() != len(p.Params)+1 {
		t.Fatalf("Prepare takes %d components, plan has %d", prep.NumIn()-1, len(p.Params))
	}
	for i, c := range p.Params {
		if got := prep.In(i + 1).String(); got != c.Type.Short() {
			t.Errorf("Prepare parameter %d is %s, plan wants %s (%s)", i, got, c.Type.Short(), c.Param)
		}
	}

	r, _, _ := prepare(t)
	if r.Len() != len(p.Branches) {
		t.Errorf("generated dispatcher registers %d types, plan has %d branches", r.Len(), len(p.Branches))
	}
	for _, b := range p.Branches {
		if b.Handled.Name == "ZebraObject" || b.Handled.Name == "Labeled" {
			if b.Strict {
				t.Errorf("%s should be loose", b.Handled.Short())
			}
		} else if !b.Strict {
			t.Errorf("%s should be strict", b.Handled.Short())
		}
	}
}
