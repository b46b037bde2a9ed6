// Package mimic provides a mock-object and scoped-patching engine for tests.
//
// Mock nodes are dynamic proxies: they record every call, resolve responses
// from per-node configuration, and lazily grow child nodes on member access.
// Verification runs over the recorded calls. Patch scopes substitute a
// binding for a bounded stretch of code and guarantee restoration on the way
// out, panics included.
//
// This is the public API entry point. Implementation lives in internal/core.
package mimic

import (
	"github.com/toejough/mimic/internal/core"
)

// Node is a dynamic proxy that records calls and resolves configured
// responses.
type Node = core.Node

// Option configures a Node at construction.
type Option = core.Option

// Invocation is one recorded call with its arguments and sequence position.
type Invocation = core.Invocation

// ExpectedCall is one expected invocation for verification; argument
// positions may hold concrete values or Matchers.
type ExpectedCall = core.ExpectedCall

// Matcher is the duck-typed value-matching interface, compatible with
// gomega matchers.
type Matcher = core.Matcher

// Computed is the signature for callable side effects.
type Computed = core.Computed

// Namespace resolves dotted patch paths against registered roots.
type Namespace = core.Namespace

// Scope owns a stack of applied patches and restores them in reverse order.
type Scope = core.Scope

// ProtoOp identifies a protocol operation a node can emulate.
type ProtoOp = core.ProtoOp

// TestReporter is the minimal interface mimic needs from test frameworks.
// testing.T and testing.B both implement this interface.
type TestReporter = core.TestReporter

// Protocol operations backed by dedicated child nodes.
const (
	OpLen       = core.OpLen
	OpIterBegin = core.OpIterBegin
	OpIterNext  = core.OpIterNext
	OpGetIndex  = core.OpGetIndex
	OpSetIndex  = core.OpSetIndex
	OpEnter     = core.OpEnter
	OpExit      = core.OpExit
)

// Error taxonomy. Every failure kind the engine reports is one of these.
type (
	// SpecViolationError reports member access outside a configured spec.
	SpecViolationError = core.SpecViolationError
	// ExhaustedError reports a sequence side effect that ran out of entries.
	ExhaustedError = core.ExhaustedError
	// MismatchError reports a verification expectation the log did not meet.
	MismatchError = core.MismatchError
	// TargetNotFoundError reports a patch path that did not resolve.
	TargetNotFoundError = core.TargetNotFoundError
	// RestoreError reports a failed restore during scope unwind.
	RestoreError = core.RestoreError
)

// DeferResponse is the marker a Computed side effect returns to defer to the
// node's default resolution.
//
//nolint:gochecknoglobals // Intentional exported marker value
var DeferResponse = core.DeferResponse

// NewNode creates a root mock node.
func NewNode(opts ...Option) *Node {
	return core.NewNode(opts...)
}

// WithName labels the node for diagnostics.
func WithName(name string) Option {
	return core.WithName(name)
}

// WithReturnValue starts the node with a fixed-value response policy.
func WithReturnValue(v any) Option {
	return core.WithReturnValue(v)
}

// WithSideEffect starts the node with a side-effect response policy.
func WithSideEffect(effect any) Option {
	return core.WithSideEffect(effect)
}

// WithSpec constrains the node to the given member names.
func WithSpec(names ...string) Option {
	return core.WithSpec(names...)
}

// WithWraps delegates calls no policy resolves to a real implementation.
func WithWraps(fn Computed) Option {
	return core.WithWraps(fn)
}

// Called builds an expectation over positional arguments.
func Called(args ...any) ExpectedCall {
	return core.Called(args...)
}

// Any returns the wildcard matcher, matching any single value.
func Any() Matcher {
	return core.Any()
}

// NewNamespace creates an empty namespace for patch path resolution.
func NewNamespace() *Namespace {
	return core.NewNamespace()
}

// NewScope creates an empty patch scope.
func NewScope() *Scope {
	return core.NewScope()
}

// PatchVar swaps the value behind a pointer the caller already holds,
// restoring it when the scope unwinds. It returns the replacement.
func PatchVar[T any](s *Scope, target *T, replacement T) T {
	return core.PatchVar(s, target, replacement)
}

// Patched runs the protected code with a fresh scope and always restores it
// on the way out. A failure from the protected code stays primary; restore
// failures are joined after it.
func Patched(fn func(s *Scope) error) error {
	return core.Patched(fn)
}

// ScopeFor returns the per-test patch scope, creating it once per reporter.
// With *testing.T the scope restores automatically at test end.
func ScopeFor(t TestReporter) *Scope {
	return core.ScopeFor(t)
}
