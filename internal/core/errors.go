package core

import (
	"fmt"
	"sort"
	"strings"
)

// Error philosophy:
//
// Failures: conditions the test author is expected to handle or assert on
// (spec violations, exhausted response queues, verification mismatches,
// unresolvable patch targets, failed restores) are returned as typed errors
// so callers can branch on them and read the diagnostic.
//
// Panics: conditions which signal programmer error (patching through a nil
// pointer, configuring a side effect of an unsupported type) trigger an
// explanatory panic for the programmer to track down.
//
// Nothing in this package retries; retry, if desired, belongs to the caller.

// SpecViolationError reports member access outside a node's configured
// allow-list. The access fails immediately; no child is created.
type SpecViolationError struct {
	Node    string
	Member  string
	Allowed []string
}

func (e *SpecViolationError) Error() string {
	allowed := append([]string(nil), e.Allowed...)
	sort.Strings(allowed)

	return fmt.Sprintf(
		"mimic: %s has no member %q (allowed members: %s)",
		e.Node,
		e.Member,
		strings.Join(allowed, ", "),
	)
}

// ExhaustedError reports a call against a sequence side effect whose queue is
// already empty. Served is the number of responses the queue delivered before
// running out.
type ExhaustedError struct {
	Node   string
	Served int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf(
		"mimic: side effect sequence for %s is exhausted after %d responses",
		e.Node,
		e.Served,
	)
}

// MismatchError reports a verification expectation that the invocation log
// did not meet. Expected and Actual hold the formatted call sets; Diff is a
// unified diff between them for quick scanning.
type MismatchError struct {
	Node     string
	Reason   string
	Expected []string
	Actual   []string
	Diff     string
}

func (e *MismatchError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "mimic: %s: %s\n", e.Node, e.Reason)
	fmt.Fprintf(&b, "expected calls:\n%s\n", indentLines(e.Expected))
	fmt.Fprintf(&b, "actual calls:\n%s", indentLines(e.Actual))

	if e.Diff != "" {
		fmt.Fprintf(&b, "\ndiff:\n%s", e.Diff)
	}

	return b.String()
}

// TargetNotFoundError reports a patch path that did not resolve to an
// existing binding. Installation aborts before any mutation.
type TargetNotFoundError struct {
	Path   string
	Reason string
}

func (e *TargetNotFoundError) Error() string {
	return fmt.Sprintf("mimic: patch target %q not found: %s", e.Path, e.Reason)
}

// RestoreError reports a failure to write a saved original back into its
// binding during scope unwind. The unwind continues past it; all restore
// failures are collected and surfaced together.
type RestoreError struct {
	Target string
	Cause  error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("mimic: restoring %s failed: %v", e.Target, e.Cause)
}

func (e *RestoreError) Unwrap() error {
	return e.Cause
}

func indentLines(lines []string) string {
	if len(lines) == 0 {
		return "  (none)"
	}

	indented := make([]string, len(lines))
	for i, line := range lines {
		indented[i] = "  " + line
	}

	return strings.Join(indented, "\n")
}
