package lineage

import (
	"fmt"
	"reflect"
	"testing"
)

type Base struct {
	Name string
}

type Child struct {
	Base
	Extra int
}

type GrandChild struct {
	Child
}

type PtrChild struct {
	*Base
}

type Left struct{ Base }
type Right struct{ Base }

type Diamond struct {
	Left
	Right
}

type Twin struct {
	Base
	*Child
}

type Node struct {
	*Node
	Value int
}

type hidden struct{ Base }

type WithHidden struct {
	hidden
}

func matchTypes(types ...reflect.Type) func(reflect.Type) bool {
	set := make(map[reflect.Type]bool)
	for _, t := range types {
		set[t] = true
	}
	return func(t reflect.Type) bool { return set[t] }
}

func TestEmbedded(t *testing.T) {
	base := reflect.TypeFor[Base]()
	basePtr := reflect.TypeFor[*Base]()
	child := reflect.TypeFor[Child]()

	tests := []struct {
		typ       reflect.Type
		match     func(reflect.Type) bool
		name      string
		wantTypes []reflect.Type
		wantDepth int
		wantOp    Op
	}{
		{
			name:      "direct value embed",
			typ:       reflect.TypeFor[Child](),
			match:     matchTypes(base),
			wantTypes: []reflect.Type{base},
			wantDepth: 1,
			wantOp:    OpField,
		},
		{
			name:      "pointer receiver gets addressable field",
			typ:       reflect.TypeFor[*Child](),
			match:     matchTypes(basePtr),
			wantTypes: []reflect.Type{basePtr},
			wantDepth: 1,
			wantOp:    OpAddr,
		},
		{
			name:      "value receiver cannot address field",
			typ:       reflect.TypeFor[Child](),
			match:     matchTypes(basePtr),
			wantTypes: nil,
		},
		{
			name:      "nearest depth wins",
			typ:       reflect.TypeFor[GrandChild](),
			match:     matchTypes(base, child),
			wantTypes: []reflect.Type{child},
			wantDepth: 1,
			wantOp:    OpField,
		},
		{
			name:      "deeper ancestor when nearer is not registered",
			typ:       reflect.TypeFor[*GrandChild](),
			match:     matchTypes(basePtr),
			wantTypes: []reflect.Type{basePtr},
			wantDepth: 2,
			wantOp:    OpAddr,
		},
		{
			name:      "embedded pointer",
			typ:       reflect.TypeFor[PtrChild](),
			match:     matchTypes(basePtr),
			wantTypes: []reflect.Type{basePtr},
			wantDepth: 1,
			wantOp:    OpField,
		},
		{
			name:      "embedded pointer deref",
			typ:       reflect.TypeFor[PtrChild](),
			match:     matchTypes(base),
			wantTypes: []reflect.Type{base},
			wantDepth: 1,
			wantOp:    OpDeref,
		},
		{
			name:      "diamond is ambiguous",
			typ:       reflect.TypeFor[Diamond](),
			match:     matchTypes(base),
			wantTypes: []reflect.Type{base, base},
			wantDepth: 2,
			wantOp:    OpField,
		},
		{
			name:      "same depth different ancestors",
			typ:       reflect.TypeFor[*Twin](),
			match:     matchTypes(basePtr, reflect.TypeFor[*Child]()),
			wantTypes: []reflect.Type{basePtr, reflect.TypeFor[*Child]()},
			wantDepth: 1,
		},
		{
			name:      "recursive embedding terminates",
			typ:       reflect.TypeFor[Node](),
			match:     matchTypes(base),
			wantTypes: nil,
		},
		{
			name:      "unexported embed skipped",
			typ:       reflect.TypeFor[WithHidden](),
			match:     matchTypes(base),
			wantTypes: nil,
		},
		{
			name:      "non struct",
			typ:       reflect.TypeFor[int](),
			match:     matchTypes(base),
			wantTypes: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Embedded(tt.typ, tt.match)
			if len(got) != len(tt.wantTypes) {
				t.Fatalf("got %d paths, want %d: %+v", len(got), len(tt.wantTypes), got)
			}
			for i, p := range got {
				if p.Target != tt.wantTypes[i] {
					t.Errorf("path %d target = %v, want %v", i, p.Target, tt.wantTypes[i])
				}
				if tt.wantDepth != 0 && p.Depth != tt.wantDepth {
					t.Errorf("path %d depth = %d, want %d", i, p.Depth, tt.wantDepth)
				}
				if len(tt.wantTypes) == 1 && p.Op != tt.wantOp {
					t.Errorf("path %d op = %d, want %d", i, p.Op, tt.wantOp)
				}
			}
		})
	}
}

func TestEmbedded_NilType(t *testing.T) {
	if got := Embedded(nil, func(reflect.Type) bool { return true }); got != nil {
		t.Errorf("Embedded(nil) = %v, want nil", got)
	}
}

func TestPath_Extract(t *testing.T) {
	t.Run("addressable field mutates original", func(t *testing.T) {
		gc := &GrandChild{}
		paths := Embedded(reflect.TypeOf(gc), matchTypes(reflect.TypeFor[*Base]()))
		if len(paths) != 1 {
			t.Fatalf("expected 1 path, got %d", len(paths))
		}

		v, ok := paths[0].Extract(reflect.ValueOf(gc))
		if !ok {
			t.Fatal("Extract failed")
		}
		v.Interface().(*Base).Name = "set"
		if gc.Name != "set" {
			t.Errorf("embedded field not mutated through extracted pointer, got %q", gc.Name)
		}
	})

	t.Run("value field is a copy", func(t *testing.T) {
		c := Child{Base: Base{Name: "orig"}}
		paths := Embedded(reflect.TypeOf(c), matchTypes(reflect.TypeFor[Base]()))
		v, ok := paths[0].Extract(reflect.ValueOf(c))
		if !ok {
			t.Fatal("Extract failed")
		}
		if got := v.Interface().(Base).Name; got != "orig" {
			t.Errorf("Name = %q, want %q", got, "orig")
		}
	})

	t.Run("nil root pointer", func(t *testing.T) {
		var gc *GrandChild
		paths := Embedded(reflect.TypeOf(gc), matchTypes(reflect.TypeFor[*Base]()))
		if _, ok := paths[0].Extract(reflect.ValueOf(gc)); ok {
			t.Error("Extract should fail on nil root")
		}
	})

	t.Run("nil embedded pointer", func(t *testing.T) {
		pc := PtrChild{}
		for _, target := range []reflect.Type{reflect.TypeFor[*Base](), reflect.TypeFor[Base]()} {
			paths := Embedded(reflect.TypeOf(pc), matchTypes(target))
			if len(paths) != 1 {
				t.Fatalf("expected 1 path for %v", target)
			}
			if _, ok := paths[0].Extract(reflect.ValueOf(pc)); ok {
				t.Errorf("Extract should fail on nil embedded pointer for %v", target)
			}
		}
	})

	t.Run("embedded pointer deref copies", func(t *testing.T) {
		pc := PtrChild{Base: &Base{Name: "shared"}}
		paths := Embedded(reflect.TypeOf(pc), matchTypes(reflect.TypeFor[Base]()))
		v, ok := paths[0].Extract(reflect.ValueOf(pc))
		if !ok {
			t.Fatal("Extract failed")
		}
		if got := v.Interface().(Base).Name; got != "shared" {
			t.Errorf("Name = %q, want %q", got, "shared")
		}
	})
}

type Named interface {
	Name() string
}

type NamedStringer interface {
	Named
	fmt.Stringer
}

type Sized interface {
	Size() int
}

type AlsoNamed interface {
	Name() string
}

type thing struct{}

func (thing) Name() string   { return "thing" }
func (thing) String() string { return "thing" }
func (thing) Size() int      { return 1 }

func TestInterfaces(t *testing.T) {
	named := reflect.TypeFor[Named]()
	namedStringer := reflect.TypeFor[NamedStringer]()
	sized := reflect.TypeFor[Sized]()
	alsoNamed := reflect.TypeFor[AlsoNamed]()
	typ := reflect.TypeFor[thing]()

	tests := []struct {
		name       string
		candidates []reflect.Type
		want       []reflect.Type
	}{
		{name: "single", candidates: []reflect.Type{named}, want: []reflect.Type{named}},
		{name: "refined wins", candidates: []reflect.Type{named, namedStringer}, want: []reflect.Type{namedStringer}},
		{name: "incomparable", candidates: []reflect.Type{named, sized}, want: []reflect.Type{named, sized}},
		{name: "identical method sets", candidates: []reflect.Type{named, alsoNamed}, want: []reflect.Type{alsoNamed, named}},
		{name: "non interface ignored", candidates: []reflect.Type{reflect.TypeFor[Base]()}, want: nil},
		{name: "not implemented", candidates: []reflect.Type{reflect.TypeFor[interface{ Missing() }]()}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interfaces(typ, tt.candidates)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Interfaces = %v, want %v", got, tt.want)
			}
		})
	}
}
