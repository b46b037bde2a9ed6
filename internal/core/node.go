// Package core implements the mimic engine: dynamic proxy nodes that record
// calls and resolve configured responses, verification over the recorded
// calls, and scoped patching of bindings with guaranteed restoration.
//
// The public API lives in the root mimic package; this package holds the
// implementation.
package core

// Node is a dynamic proxy. It records every call made to it, resolves a
// configurable response per call, and lazily grows child nodes keyed by
// accessed member name. A child accessed twice is the same child both times,
// so configuration applied before or after the first access is visible
// consistently.
//
// Nodes are owned by the test that created them and carry no internal
// locking; calls are expected on a single logical flow of control.
type Node struct {
	name     string
	parent   *Node
	children map[string]*Node
	allowed  map[string]struct{}
	wraps    Computed
	policy   responsePolicy
	log      []Invocation
	seq      *callSeq
	proto    map[ProtoOp]*Node
	retChild *Node
}

// Option configures a Node at construction.
type Option func(*Node)

// WithName labels the node for diagnostics. Child nodes extend the label
// with their member name.
func WithName(name string) Option {
	return func(n *Node) {
		n.name = name
	}
}

// WithReturnValue starts the node with a fixed-value response policy.
func WithReturnValue(v any) Option {
	return func(n *Node) {
		n.policy = responsePolicy{kind: policyFixed, fixed: v}
	}
}

// WithSideEffect starts the node with a side-effect response policy. See
// Node.SetSideEffect for the accepted shapes.
func WithSideEffect(effect any) Option {
	return func(n *Node) {
		n.policy = policyForEffect(effect)
	}
}

// WithSpec constrains the node to the given member names. Accessing any
// other member is a SpecViolationError, not a silently created child.
func WithSpec(names ...string) Option {
	return func(n *Node) {
		n.setSpec(names)
	}
}

// WithWraps delegates calls that no policy resolves to a real
// implementation.
func WithWraps(fn Computed) Option {
	return func(n *Node) {
		n.wraps = fn
	}
}

// NewNode creates a root mock node.
func NewNode(opts ...Option) *Node {
	node := &Node{
		name:     "mock",
		children: map[string]*Node{},
		seq:      &callSeq{},
	}

	for _, o := range opts {
		o(node)
	}

	return node
}

// Name returns the node's diagnostic label.
func (n *Node) Name() string {
	return n.name
}

// Get returns the child node for the given member name, creating it on first
// access. If the node carries a spec, names outside it fail with
// SpecViolationError.
func (n *Node) Get(name string) (*Node, error) {
	if n.allowed != nil {
		if _, ok := n.allowed[name]; !ok {
			return nil, &SpecViolationError{
				Node:    n.name,
				Member:  name,
				Allowed: n.specNames(),
			}
		}
	}

	return n.child(name), nil
}

// child returns or creates a child without consulting the spec. Internal
// children (protocol operations, the return-value child) bypass the spec on
// purpose; it constrains only caller-visible member access.
func (n *Node) child(name string) *Node {
	if existing, ok := n.children[name]; ok {
		return existing
	}

	created := &Node{
		name:     n.name + "." + name,
		parent:   n,
		children: map[string]*Node{},
		seq:      n.seq,
	}
	n.children[name] = created

	return created
}

// Invoke records the call and resolves a response per the active policy.
// The log append is the only state change; resolution never mutates anything
// but a sequence policy's queue.
func (n *Node) Invoke(args []any, kwargs map[string]any) (any, error) {
	inv := Invocation{
		Args:   args,
		KWArgs: kwargs,
		Seq:    n.seq.next(),
	}
	n.log = append(n.log, inv)

	return n.resolve(inv)
}

// Call invokes the node with positional arguments only.
func (n *Node) Call(args ...any) (any, error) {
	return n.Invoke(args, nil)
}

// SetReturnValue replaces the active policy with a fixed value. Effective
// for subsequent calls; already-resolved calls are untouched.
func (n *Node) SetReturnValue(v any) {
	n.policy = responsePolicy{kind: policyFixed, fixed: v}
}

// SetSideEffect replaces the active policy with a side effect: an error
// raised on every call, a []any queue consumed one entry per call, or a
// Computed callable. Last write wins; no merging with a prior policy.
func (n *Node) SetSideEffect(effect any) {
	n.policy = policyForEffect(effect)
}

// SetSpec constrains member access to the given names. Children already
// created for other names remain reachable through references the caller
// already holds, but no new out-of-spec access succeeds.
func (n *Node) SetSpec(names ...string) {
	n.setSpec(names)
}

func (n *Node) setSpec(names []string) {
	n.allowed = make(map[string]struct{}, len(names))
	for _, name := range names {
		n.allowed[name] = struct{}{}
	}
}

func (n *Node) specNames() []string {
	names := make([]string, 0, len(n.allowed))
	for name := range n.allowed {
		names = append(names, name)
	}

	return names
}

// ResetCalls clears the invocation log. The response policy, the children,
// and their configuration are untouched.
func (n *Node) ResetCalls() {
	n.log = nil
}

// Invocations returns a snapshot of the log.
func (n *Node) Invocations() []Invocation {
	snapshot := make([]Invocation, len(n.log))
	copy(snapshot, n.log)

	return snapshot
}

// ReturnValue returns the node's designated return-value child, the value an
// unconfigured node resolves calls to. Configure it like any other node.
func (n *Node) ReturnValue() *Node {
	if n.retChild == nil {
		n.retChild = &Node{
			name:     n.name + "()",
			parent:   n,
			children: map[string]*Node{},
			seq:      n.seq,
		}
	}

	return n.retChild
}
