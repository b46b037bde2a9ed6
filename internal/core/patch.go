package core

import (
	"errors"
	"fmt"
)

// Scope owns a stack of applied patches. Entries are restored in strict
// reverse order of installation, each exactly once, whether the protected
// code finished normally or not.
//
// Nested scopes are separate Scope values: an inner Install reads whatever
// value the outer scope put in place and restores back to it, so layering
// unwinds correctly as long as inner scopes restore first. Patched and
// ScopeFor both guarantee that ordering.
type Scope struct {
	entries []patchEntry
}

type patchEntry struct {
	slot        binding
	original    any
	replacement any
	applied     bool
}

// NewScope creates an empty patch scope.
func NewScope() *Scope {
	return &Scope{}
}

// Install resolves the dotted path in the namespace, saves the current value
// as the original, writes the replacement, and pushes the entry onto the
// stack. The replacement is returned for further configuration. An
// unresolvable path fails with TargetNotFoundError before any mutation.
func (s *Scope) Install(ns *Namespace, path string, replacement any) (any, error) {
	slot, err := ns.resolve(path)
	if err != nil {
		return nil, err
	}

	return s.apply(slot, replacement)
}

// InstallNode is Install with a fresh mock node as the replacement, named
// after the path it substitutes.
func (s *Scope) InstallNode(ns *Namespace, path string) (*Node, error) {
	node := NewNode(WithName(path))

	if _, err := s.Install(ns, path, node); err != nil {
		return nil, err
	}

	return node, nil
}

// PatchVar is the direct-reference variant of Install: it swaps the value
// behind a pointer the caller already holds, with the same save, replace,
// and restore contract as path-resolved patches. It returns the replacement.
// A nil target is a programmer error and panics.
func PatchVar[T any](s *Scope, target *T, replacement T) T {
	if target == nil {
		panic("mimic: PatchVar target must not be nil")
	}

	slot := &ptrBinding[T]{
		target: target,
		label:  fmt.Sprintf("*%T", *target),
	}

	// Pointer assignment of an in-scope T cannot fail.
	_, _ = s.apply(slot, replacement)

	return replacement
}

func (s *Scope) apply(slot binding, replacement any) (any, error) {
	original := slot.current()

	if err := slot.assign(replacement); err != nil {
		return nil, err
	}

	s.entries = append(s.entries, patchEntry{
		slot:        slot,
		original:    original,
		replacement: replacement,
		applied:     true,
	})

	return replacement, nil
}

// Depth returns the number of patches currently applied in the scope.
func (s *Scope) Depth() int {
	return len(s.entries)
}

// Restore unwinds the stack, writing each saved original back in reverse
// order of installation. A failing entry is collected as a RestoreError and
// the unwind continues; all failures are joined and returned after every
// entry has attempted to restore. Restore is idempotent: each entry is
// restored at most once.
func (s *Scope) Restore() error {
	var failures []error

	for i := len(s.entries) - 1; i >= 0; i-- {
		entry := &s.entries[i]
		if !entry.applied {
			continue
		}

		entry.applied = false

		if err := entry.slot.assign(entry.original); err != nil {
			failures = append(failures, &RestoreError{
				Target: entry.slot.describe(),
				Cause:  err,
			})
		}
	}

	s.entries = nil

	return errors.Join(failures...)
}

// Patched runs the protected code with a fresh scope and always restores it
// on the way out, panics included. A failure from the protected code stays
// primary: restore failures are joined after it, never replacing it.
func Patched(fn func(s *Scope) error) (err error) {
	scope := NewScope()

	defer func() {
		restoreErr := scope.Restore()
		if restoreErr == nil {
			return
		}

		if err != nil {
			err = errors.Join(err, restoreErr)
		} else {
			err = restoreErr
		}
	}()

	return fn(scope)
}
