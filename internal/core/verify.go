package core

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/akedrou/textdiff"
)

// TestReporter is the minimal interface the Assert helpers need from a test
// framework. *testing.T and *testing.B both implement it.
type TestReporter interface {
	Helper()
	Fatalf(format string, args ...any)
}

// Matcher is the interface for flexible value matching in expectations.
// Compatible with gomega.GomegaMatcher via duck typing - any type
// implementing Match and FailureMessage will work.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// Any returns a matcher that matches any single value, the wildcard
// placeholder for expectation arguments you don't care about.
func Any() Matcher {
	return anyMatcher{}
}

type anyMatcher struct{}

func (anyMatcher) Match(any) (bool, error) {
	return true, nil
}

func (anyMatcher) FailureMessage(any) string {
	return ""
}

// ExpectedCall is one expected invocation: positional arguments and keyword
// arguments, each of which may be a concrete value (compared by deep
// equality) or a Matcher (the wildcard case).
type ExpectedCall struct {
	Args   []any
	KWArgs map[string]any
}

// Called builds an expectation over positional arguments.
func Called(args ...any) ExpectedCall {
	return ExpectedCall{Args: args}
}

// WithKW returns a copy of the expectation with the keyword argument added.
func (c ExpectedCall) WithKW(name string, value any) ExpectedCall {
	kwargs := make(map[string]any, len(c.KWArgs)+1)
	for k, v := range c.KWArgs {
		kwargs[k] = v
	}

	kwargs[name] = value

	return ExpectedCall{Args: c.Args, KWArgs: kwargs}
}

// String renders the expectation in the same shape invocations render in,
// so expected and actual line up in diagnostics.
func (c ExpectedCall) String() string {
	return "(" + formatArgs(c.Args, c.KWArgs) + ")"
}

// CallCount returns the number of calls recorded on the node.
func (n *Node) CallCount() int {
	return len(n.log)
}

// WasCalled reports whether the node was called at least once.
func (n *Node) WasCalled() bool {
	return len(n.log) > 0
}

// WasCalledOnce reports whether the node was called exactly once.
func (n *Node) WasCalledOnce() bool {
	return len(n.log) == 1
}

// CheckCalledWith succeeds iff the most recent invocation's arguments equal
// the expectation. A Matcher in an argument position matches per its own
// rules.
func (n *Node) CheckCalledWith(expected ExpectedCall) error {
	if len(n.log) == 0 {
		return n.mismatch("expected a call, but none were recorded", []ExpectedCall{expected})
	}

	last := n.log[len(n.log)-1]
	if ok, why := matchCall(expected, last); !ok {
		return n.mismatch(
			fmt.Sprintf("most recent call does not match: %s", why),
			[]ExpectedCall{expected},
		)
	}

	return nil
}

// CheckAnyCall succeeds iff some recorded invocation matches the
// expectation.
func (n *Node) CheckAnyCall(expected ExpectedCall) error {
	for _, inv := range n.log {
		if ok, _ := matchCall(expected, inv); ok {
			return nil
		}
	}

	return n.mismatch("no recorded call matches", []ExpectedCall{expected})
}

// CheckCalls verifies a sequence of expectations against the log. With
// anyOrder false, the sequence must appear as a contiguous, order-preserving
// run within the log. With anyOrder true, every expectation must match a
// distinct recorded call somewhere in the log; duplicate expectations
// require at least that many distinct matches.
func (n *Node) CheckCalls(expected []ExpectedCall, anyOrder bool) error {
	if anyOrder {
		return n.checkCallsAnyOrder(expected)
	}

	return n.checkCallsOrdered(expected)
}

func (n *Node) checkCallsOrdered(expected []ExpectedCall) error {
	if len(expected) == 0 {
		return nil
	}

	for start := 0; start+len(expected) <= len(n.log); start++ {
		if matchRun(expected, n.log[start:start+len(expected)]) {
			return nil
		}
	}

	return n.mismatch("calls not found as a contiguous ordered run", expected)
}

func matchRun(expected []ExpectedCall, window []Invocation) bool {
	for i, exp := range expected {
		if ok, _ := matchCall(exp, window[i]); !ok {
			return false
		}
	}

	return true
}

func (n *Node) checkCallsAnyOrder(expected []ExpectedCall) error {
	used := make([]bool, len(n.log))

	for _, exp := range expected {
		found := false

		for i, inv := range n.log {
			if used[i] {
				continue
			}

			if ok, _ := matchCall(exp, inv); ok {
				used[i] = true
				found = true

				break
			}
		}

		if !found {
			return n.mismatch(
				fmt.Sprintf("call %s not found (multiplicity-aware, any order)", exp),
				expected,
			)
		}
	}

	return nil
}

// AssertCalledWith is CheckCalledWith, failing the test on mismatch.
func (n *Node) AssertCalledWith(t TestReporter, expected ExpectedCall) {
	t.Helper()

	if err := n.CheckCalledWith(expected); err != nil {
		t.Fatalf("%v", err)
	}
}

// AssertAnyCall is CheckAnyCall, failing the test on mismatch.
func (n *Node) AssertAnyCall(t TestReporter, expected ExpectedCall) {
	t.Helper()

	if err := n.CheckAnyCall(expected); err != nil {
		t.Fatalf("%v", err)
	}
}

// AssertCalls is CheckCalls, failing the test on mismatch.
func (n *Node) AssertCalls(t TestReporter, expected []ExpectedCall, anyOrder bool) {
	t.Helper()

	if err := n.CheckCalls(expected, anyOrder); err != nil {
		t.Fatalf("%v", err)
	}
}

// matchCall reports whether one invocation meets one expectation, with a
// description of the first difference when it doesn't.
func matchCall(expected ExpectedCall, inv Invocation) (bool, string) {
	if len(expected.Args) != len(inv.Args) {
		return false, fmt.Sprintf("want %d args, got %d", len(expected.Args), len(inv.Args))
	}

	for i, want := range expected.Args {
		if ok, why := matchValue(inv.Args[i], want); !ok {
			return false, fmt.Sprintf("arg %d: %s", i, why)
		}
	}

	if len(expected.KWArgs) != len(inv.KWArgs) {
		return false, fmt.Sprintf("want %d kwargs, got %d", len(expected.KWArgs), len(inv.KWArgs))
	}

	for name, want := range expected.KWArgs {
		got, ok := inv.KWArgs[name]
		if !ok {
			return false, fmt.Sprintf("kwarg %q missing", name)
		}

		if ok, why := matchValue(got, want); !ok {
			return false, fmt.Sprintf("kwarg %q: %s", name, why)
		}
	}

	return true, ""
}

// matchValue checks actual against expected. A Matcher matches per its own
// Match method; anything else compares by reflect.DeepEqual.
func matchValue(actual, expected any) (bool, string) {
	if matcher, ok := expected.(Matcher); ok {
		success, err := matcher.Match(actual)
		if err != nil {
			return false, err.Error()
		}

		if !success {
			return false, matcher.FailureMessage(actual)
		}

		return true, ""
	}

	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	return false, fmt.Sprintf("expected %#v, got %#v", expected, actual)
}

// mismatch builds the MismatchError for a failed check, including a unified
// diff of the expected and actual call sets.
func (n *Node) mismatch(reason string, expected []ExpectedCall) *MismatchError {
	expectedLines := make([]string, len(expected))
	for i, exp := range expected {
		expectedLines[i] = exp.String()
	}

	actualLines := make([]string, len(n.log))
	for i, inv := range n.log {
		actualLines[i] = inv.String()
	}

	diff := textdiff.Unified(
		"expected",
		"actual",
		joinCallLines(expectedLines),
		joinCallLines(actualLines),
	)

	return &MismatchError{
		Node:     n.name,
		Reason:   reason,
		Expected: expectedLines,
		Actual:   actualLines,
		Diff:     diff,
	}
}

func joinCallLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	return strings.Join(lines, "\n") + "\n"
}
