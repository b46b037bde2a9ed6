package core

import (
	"errors"
	"strings"
	"testing"
)

type fakeService struct {
	Get    any
	hidden any //nolint:unused // Present to exercise the unexported-field path
}

// TestResolveMapEntry verifies resolution of a map-backed binding.
func TestResolveMapEntry(t *testing.T) {
	t.Parallel()

	ns := NewNamespace()
	ns.Register("svc", map[string]any{"get": "original"})

	slot, err := ns.resolve("svc.get")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if slot.current() != "original" {
		t.Errorf("expected the current value, got %#v", slot.current())
	}

	if err := slot.assign("patched"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if slot.current() != "patched" {
		t.Errorf("expected assignment to land, got %#v", slot.current())
	}
}

// TestResolveStructField verifies resolution of an exported field through a
// struct pointer.
func TestResolveStructField(t *testing.T) {
	t.Parallel()

	svc := &fakeService{Get: "original"}
	ns := NewNamespace()
	ns.Register("svc", svc)

	slot, err := ns.resolve("svc.Get")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := slot.assign("patched"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if svc.Get != "patched" {
		t.Errorf("expected field assignment to land, got %#v", svc.Get)
	}
}

// TestResolveNestedPath verifies traversal through intermediate containers:
// a map entry holding a struct pointer holding the final field.
func TestResolveNestedPath(t *testing.T) {
	t.Parallel()

	svc := &fakeService{Get: "original"}
	ns := NewNamespace()
	ns.Register("app", map[string]any{"svc": svc})

	slot, err := ns.resolve("app.svc.Get")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := slot.assign("patched"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if svc.Get != "patched" {
		t.Errorf("expected nested assignment to land, got %#v", svc.Get)
	}
}

// TestResolveFailures verifies every unresolvable shape fails with
// TargetNotFoundError and a reason.
func TestResolveFailures(t *testing.T) {
	t.Parallel()

	ns := NewNamespace()
	ns.Register("svc", map[string]any{"get": "value", "leaf": 42})

	cases := []struct {
		name   string
		path   string
		reason string
	}{
		{name: "unregistered root", path: "other.get", reason: "no root named"},
		{name: "missing member", path: "svc.missing", reason: "no entry"},
		{name: "bare root", path: "svc", reason: "dotted path"},
		{name: "empty path", path: "", reason: "dotted path"},
		{name: "through a leaf value", path: "svc.leaf.deeper", reason: "not a traversable container"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ns.resolve(tc.path)

			var notFound *TargetNotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("expected TargetNotFoundError, got %v", err)
			}

			if !strings.Contains(notFound.Reason, tc.reason) {
				t.Errorf("expected reason containing %q, got %q", tc.reason, notFound.Reason)
			}
		})
	}
}

// TestResolveUnexportedField verifies that a field patching cannot write to
// is rejected at resolution time, before any mutation.
func TestResolveUnexportedField(t *testing.T) {
	t.Parallel()

	ns := NewNamespace()
	ns.Register("svc", &fakeService{})

	_, err := ns.resolve("svc.hidden")

	var notFound *TargetNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected TargetNotFoundError for an unexported field, got %v", err)
	}
}

// TestFieldAssignTypeMismatch verifies the assignment type check on typed
// struct fields.
func TestFieldAssignTypeMismatch(t *testing.T) {
	t.Parallel()

	target := &struct{ Count int }{Count: 1}
	ns := NewNamespace()
	ns.Register("t", target)

	slot, err := ns.resolve("t.Count")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := slot.assign("not an int"); err == nil {
		t.Error("expected an assignment type mismatch")
	}

	if target.Count != 1 {
		t.Errorf("failed assignment mutated the field to %v", target.Count)
	}
}
