package lineage

import (
	"reflect"
	"sort"
)

// Op is the final step applied to the embedded field once it is reached.
type Op uint8

const (
	// OpField yields the field value as declared.
	OpField Op = iota
	// OpAddr yields a pointer to an embedded struct value. Only produced when the
	// field is addressable, i.e. reached through a pointer.
	OpAddr
	// OpDeref yields a copy of the struct an embedded pointer points to.
	OpDeref
)

// Path locates an embedded ancestor inside a value of the descendant type.
type Path struct {
	Target reflect.Type
	Index  []int
	Depth  int
	Op     Op
}

type node struct {
	typ         reflect.Type // struct type being walked
	index       []int
	addressable bool
}

// Embedded walks the embedded fields of t breadth first and returns the ancestors
// accepted by match at the smallest depth where any match exists. More than one
// result means the nearest ancestors are ambiguous. Unexported embedded fields and
// embedded interfaces are skipped.
func Embedded(t reflect.Type, match func(reflect.Type) bool) []Path {
	if t == nil {
		return nil
	}

	start := node{typ: t}
	if t.Kind() == reflect.Pointer {
		start = node{typ: t.Elem(), addressable: true}
	}
	if start.typ.Kind() != reflect.Struct {
		return nil
	}

	visited := map[reflect.Type]bool{start.typ: true}
	level := []node{start}

	for depth := 1; len(level) > 0; depth++ {
		var found []Path
		var next []node

		for _, n := range level {
			for i := 0; i < n.typ.NumField(); i++ {
				f := n.typ.Field(i)
				if !f.Anonymous || !f.IsExported() {
					continue
				}

				index := append(append([]int(nil), n.index...), i)
				ft := f.Type

				switch {
				case ft.Kind() == reflect.Struct:
					if match(ft) {
						found = append(found, Path{Target: ft, Index: index, Depth: depth, Op: OpField})
					}
					if n.addressable {
						if pt := reflect.PointerTo(ft); match(pt) {
							found = append(found, Path{Target: pt, Index: index, Depth: depth, Op: OpAddr})
						}
					}
					if !visited[ft] {
						visited[ft] = true
						next = append(next, node{typ: ft, index: index, addressable: n.addressable})
					}

				case ft.Kind() == reflect.Pointer && ft.Elem().Kind() == reflect.Struct:
					if match(ft) {
						found = append(found, Path{Target: ft, Index: index, Depth: depth, Op: OpField})
					}
					if et := ft.Elem(); match(et) {
						found = append(found, Path{Target: et, Index: index, Depth: depth, Op: OpDeref})
					}
					if et := ft.Elem(); !visited[et] {
						visited[et] = true
						next = append(next, node{typ: et, index: index, addressable: true})
					}
				}
			}
		}

		if len(found) > 0 {
			return found
		}
		level = next
	}
	return nil
}

// Extract follows p through v, a value of the descendant type, and returns the
// ancestor value. It reports false when a nil pointer sits on the path.
func (p Path) Extract(v reflect.Value) (reflect.Value, bool) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}

	for i, idx := range p.Index {
		v = v.Field(idx)
		if i == len(p.Index)-1 {
			break
		}
		// intermediate embedded pointer
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
	}

	switch p.Op {
	case OpAddr:
		if !v.CanAddr() {
			return reflect.Value{}, false
		}
		return v.Addr(), true
	case OpDeref:
		if v.IsNil() {
			return reflect.Value{}, false
		}
		return v.Elem(), true
	default:
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return reflect.Value{}, false
		}
		return v, true
	}
}

// Interfaces returns the most specific interfaces among candidates that t
// implements. An interface is dropped when another implemented candidate also
// implements it. The result is sorted by type string; more than one entry means
// the candidates are incomparable.
func Interfaces(t reflect.Type, candidates []reflect.Type) []reflect.Type {
	var implemented []reflect.Type
	for _, c := range candidates {
		if c.Kind() == reflect.Interface && c != t && t.Implements(c) {
			implemented = append(implemented, c)
		}
	}

	var nearest []reflect.Type
	for _, c := range implemented {
		shadowed := false
		for _, d := range implemented {
			// d strictly refines c: d has all of c's methods, but not the reverse
			if d != c && d.Implements(c) && !c.Implements(d) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			nearest = append(nearest, c)
		}
	}

	sort.Slice(nearest, func(i, j int) bool {
		return nearest[i].String() < nearest[j].String()
	})
	return nearest
}
