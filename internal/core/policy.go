package core

import "fmt"

// Computed is the signature for callable side effects. It receives the
// concrete invocation and produces the call's outcome. Returning
// DeferResponse falls through to the node's default resolution.
type Computed func(inv Invocation) (any, error)

// DeferResponse is the marker a Computed side effect returns to decline
// producing a value, deferring to the node's default resolution instead.
//
//nolint:gochecknoglobals // Intentional exported marker value
var DeferResponse any = deferMarker{}

type deferMarker struct{}

type policyKind uint8

const (
	policyUnset policyKind = iota
	policyFixed
	policyRaises
	policySequence
	policyComputed
)

// responsePolicy is the tagged variant resolving what a call returns or
// raises. Exactly one variant is active at a time; installing a new policy
// replaces the previous one wholesale. Only the field matching kind is
// meaningful.
type responsePolicy struct {
	kind    policyKind
	fixed   any
	raise   error
	queue   []any
	served  int
	compute Computed
}

// policyForEffect maps a side-effect configuration value to a policy.
// Supported shapes: an error (raised on every call), a []any queue consumed
// one entry per call (entries that are errors are raised), or a Computed
// callable. Anything else is a programmer error.
func policyForEffect(effect any) responsePolicy {
	switch e := effect.(type) {
	case error:
		return responsePolicy{kind: policyRaises, raise: e}
	case []any:
		return responsePolicy{kind: policySequence, queue: e}
	case Computed:
		return responsePolicy{kind: policyComputed, compute: e}
	case func(Invocation) (any, error):
		return responsePolicy{kind: policyComputed, compute: e}
	default:
		panic(fmt.Sprintf(
			"mimic: unsupported side effect type %T (want error, []any, or Computed)",
			effect,
		))
	}
}

// resolve produces the outcome for one invocation against the node's active
// policy, in fixed precedence order: computed, raised error, sequence, fixed
// value, then the node's default (wraps delegate or return-value child).
func (n *Node) resolve(inv Invocation) (any, error) {
	switch n.policy.kind {
	case policyComputed:
		out, err := n.policy.compute(inv)
		if err != nil {
			return nil, err
		}

		if _, deferred := out.(deferMarker); !deferred {
			return out, nil
		}
		// deferred: fall through to the default below

	case policyRaises:
		return nil, n.policy.raise

	case policySequence:
		if len(n.policy.queue) == 0 {
			return nil, &ExhaustedError{Node: n.name, Served: n.policy.served}
		}

		next := n.policy.queue[0]
		n.policy.queue = n.policy.queue[1:]
		n.policy.served++

		if err, ok := next.(error); ok {
			return nil, err
		}

		return next, nil

	case policyFixed:
		return n.policy.fixed, nil

	case policyUnset:
	}

	if n.wraps != nil {
		return n.wraps(inv)
	}

	return n.ReturnValue(), nil
}
