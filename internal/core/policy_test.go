package core

import (
	"errors"
	"testing"
)

// TestFixedValuePolicy verifies that a fixed value is returned on every
// call.
func TestFixedValuePolicy(t *testing.T) {
	t.Parallel()

	node := NewNode(WithReturnValue(42))

	for range 3 {
		out, err := node.Call(5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if out != 42 {
			t.Errorf("expected 42, got %#v", out)
		}
	}
}

// TestRaisesPolicy verifies that an error side effect is raised on every
// call, regardless of call count.
func TestRaisesPolicy(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	node := NewNode(WithSideEffect(boom))

	for range 3 {
		_, err := node.Call()
		if !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
	}
}

// TestSequencePolicy verifies one-response-per-call consumption, embedded
// error entries, and explicit exhaustion.
func TestSequencePolicy(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	node := NewNode(WithName("seq"), WithSideEffect([]any{1, boom, 3}))

	out, err := node.Call()
	if err != nil || out != 1 {
		t.Fatalf("call 1: got (%#v, %v), want (1, nil)", out, err)
	}

	if _, err := node.Call(); !errors.Is(err, boom) {
		t.Fatalf("call 2: expected embedded error raised, got %v", err)
	}

	out, err = node.Call()
	if err != nil || out != 3 {
		t.Fatalf("call 3: got (%#v, %v), want (3, nil)", out, err)
	}

	_, err = node.Call()

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("call 4: expected ExhaustedError, got %v", err)
	}

	if exhausted.Served != 3 || exhausted.Node != "seq" {
		t.Errorf("unexpected exhaustion fields: %+v", exhausted)
	}
}

// TestComputedPolicy verifies callable side effects: argument access,
// raised errors, and the defer marker falling through to the default.
func TestComputedPolicy(t *testing.T) {
	t.Parallel()

	node := NewNode(WithSideEffect(func(inv Invocation) (any, error) {
		n, ok := inv.Args[0].(int)
		if !ok {
			return nil, errors.New("want an int")
		}

		if n < 0 {
			return DeferResponse, nil
		}

		return n + 1, nil
	}))

	out, err := node.Call(1)
	if err != nil || out != 2 {
		t.Fatalf("got (%#v, %v), want (2, nil)", out, err)
	}

	if _, err := node.Call("nope"); err == nil {
		t.Fatal("expected computed error to surface")
	}

	// Deferred: falls through to the return-value child.
	out, err = node.Call(-1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != node.ReturnValue() {
		t.Errorf("expected deferred call to resolve to the return-value child, got %#v", out)
	}
}

// TestComputedDefersToWraps verifies that a deferred computed response uses
// the wraps delegate when one is configured.
func TestComputedDefersToWraps(t *testing.T) {
	t.Parallel()

	node := NewNode(
		WithWraps(func(Invocation) (any, error) { return "real", nil }),
		WithSideEffect(func(Invocation) (any, error) { return DeferResponse, nil }),
	)

	out, err := node.Call()
	if err != nil || out != "real" {
		t.Errorf("got (%#v, %v), want (real, nil)", out, err)
	}
}

// TestPolicyReplacementDiscardsPrior verifies last-write-wins with no
// merging: a sequence configured after a fixed value discards the fixed
// value entirely.
func TestPolicyReplacementDiscardsPrior(t *testing.T) {
	t.Parallel()

	node := NewNode()
	node.SetReturnValue(1)
	node.SetSideEffect([]any{2})

	out, err := node.Call()
	if err != nil || out != 2 {
		t.Fatalf("got (%#v, %v), want (2, nil)", out, err)
	}

	// The fixed value must not resurface once the queue empties.
	_, err = node.Call()

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
}

// TestPolicyReplacementNotRetroactive verifies that reconfiguring affects
// subsequent calls only.
func TestPolicyReplacementNotRetroactive(t *testing.T) {
	t.Parallel()

	node := NewNode(WithReturnValue("before"))

	out, _ := node.Call()
	node.SetReturnValue("after")

	if out != "before" {
		t.Errorf("already-resolved call changed retroactively to %#v", out)
	}

	out, _ = node.Call()
	if out != "after" {
		t.Errorf("expected new policy for subsequent call, got %#v", out)
	}
}

// TestUnsupportedSideEffectPanics verifies the programmer-error contract for
// side-effect configuration.
func TestUnsupportedSideEffectPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an unsupported side effect type")
		}
	}()

	NewNode().SetSideEffect(42)
}
