package core

import (
	"fmt"
	"reflect"
	"strings"
)

// Namespace resolves dotted patch paths against registered roots. A path
// like "svc.client.get" names the root "svc", walks intermediate members,
// and lands on the binding "get" inside whatever container owns it.
//
// Two container shapes are traversable: map[string]any entries and exported
// fields of a struct reached through a pointer. That covers the usual
// seams - a service registry map, or a config/collaborator struct the code
// under test reads from.
type Namespace struct {
	roots map[string]any
}

// NewNamespace creates an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{roots: map[string]any{}}
}

// Register makes a root container addressable by name.
func (ns *Namespace) Register(name string, root any) {
	ns.roots[name] = root
}

// resolve walks a dotted path to the binding it names. It performs no
// mutation; a path that does not resolve fails with TargetNotFoundError
// before anything is touched.
func (ns *Namespace) resolve(path string) (binding, error) {
	segments := strings.Split(path, ".")
	if len(segments) < 2 || strings.Contains(path, "..") || segments[0] == "" {
		return nil, &TargetNotFoundError{
			Path:   path,
			Reason: "want a dotted path with a root and at least one member",
		}
	}

	container, ok := ns.roots[segments[0]]
	if !ok {
		return nil, &TargetNotFoundError{
			Path:   path,
			Reason: fmt.Sprintf("no root named %q registered", segments[0]),
		}
	}

	// Walk down to the owner of the final member.
	for _, segment := range segments[1 : len(segments)-1] {
		next, err := member(container, segment, path)
		if err != nil {
			return nil, err
		}

		container = next
	}

	return bindingIn(container, segments[len(segments)-1], path)
}

// member reads an intermediate path segment out of a container.
func member(container any, name, path string) (any, error) {
	switch c := container.(type) {
	case map[string]any:
		value, ok := c[name]
		if !ok {
			return nil, &TargetNotFoundError{
				Path:   path,
				Reason: fmt.Sprintf("no entry %q in map container", name),
			}
		}

		return value, nil
	default:
		field, err := structField(container, name, path)
		if err != nil {
			return nil, err
		}

		if !field.CanInterface() {
			return nil, &TargetNotFoundError{
				Path:   path,
				Reason: fmt.Sprintf("field %q is not exported", name),
			}
		}

		return field.Interface(), nil
	}
}

// bindingIn produces the settable binding for the final member of a path.
func bindingIn(container any, name, path string) (binding, error) {
	switch c := container.(type) {
	case map[string]any:
		if _, ok := c[name]; !ok {
			return nil, &TargetNotFoundError{
				Path:   path,
				Reason: fmt.Sprintf("no entry %q in map container", name),
			}
		}

		return &mapBinding{container: c, key: name, path: path}, nil
	default:
		field, err := structField(container, name, path)
		if err != nil {
			return nil, err
		}

		if !field.CanSet() {
			return nil, &TargetNotFoundError{
				Path:   path,
				Reason: fmt.Sprintf("field %q is not settable", name),
			}
		}

		return &fieldBinding{field: field, path: path}, nil
	}
}

// structField resolves an exported field through a struct pointer.
func structField(container any, name, path string) (reflect.Value, error) {
	value := reflect.ValueOf(container)
	if value.Kind() == reflect.Pointer && !value.IsNil() {
		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		return reflect.Value{}, &TargetNotFoundError{
			Path:   path,
			Reason: fmt.Sprintf("%T is not a traversable container (want map[string]any or struct pointer)", container),
		}
	}

	field := value.FieldByName(name)
	if !field.IsValid() {
		return reflect.Value{}, &TargetNotFoundError{
			Path:   path,
			Reason: fmt.Sprintf("no field %q in %s", name, value.Type()),
		}
	}

	return field, nil
}

// binding is a settable slot a patch swaps values through: a map entry, a
// struct field, or a direct pointer.
type binding interface {
	current() any
	assign(v any) error
	describe() string
}

type mapBinding struct {
	container map[string]any
	key       string
	path      string
}

func (b *mapBinding) current() any {
	return b.container[b.key]
}

func (b *mapBinding) assign(v any) error {
	b.container[b.key] = v
	return nil
}

func (b *mapBinding) describe() string {
	return b.path
}

type fieldBinding struct {
	field reflect.Value
	path  string
}

func (b *fieldBinding) current() any {
	return b.field.Interface()
}

func (b *fieldBinding) assign(v any) error {
	if v == nil {
		b.field.SetZero()
		return nil
	}

	value := reflect.ValueOf(v)
	if !value.Type().AssignableTo(b.field.Type()) {
		return fmt.Errorf("cannot assign %T to %s field %s", v, b.field.Type(), b.path)
	}

	b.field.Set(value)

	return nil
}

func (b *fieldBinding) describe() string {
	return b.path
}

// ptrBinding is the direct-reference variant: no path resolution, just a
// typed pointer the caller already holds.
type ptrBinding[T any] struct {
	target *T
	label  string
}

func (b *ptrBinding[T]) current() any {
	return *b.target
}

func (b *ptrBinding[T]) assign(v any) error {
	if v == nil {
		var zero T

		*b.target = zero

		return nil
	}

	typed, ok := v.(T)
	if !ok {
		return fmt.Errorf("cannot assign %T to %s", v, b.label)
	}

	*b.target = typed

	return nil
}

func (b *ptrBinding[T]) describe() string {
	return b.label
}
