package core

import "fmt"

// ProtoOp identifies a container or context-manager protocol operation a
// node can emulate. Each operation is backed by a dedicated child node, so a
// test configures, say, the length response exactly as it would configure
// any other child.
type ProtoOp string

const (
	OpLen       ProtoOp = "len"
	OpIterBegin ProtoOp = "iter"
	OpIterNext  ProtoOp = "next"
	OpGetIndex  ProtoOp = "getindex"
	OpSetIndex  ProtoOp = "setindex"
	OpEnter     ProtoOp = "enter"
	OpExit      ProtoOp = "exit"
)

// Proto returns the dedicated child node backing the given protocol
// operation, creating it on first access. The protocol table is separate
// from the member-name children and is not subject to the node's spec.
func (n *Node) Proto(op ProtoOp) *Node {
	if n.proto == nil {
		n.proto = map[ProtoOp]*Node{}
	}

	if existing, ok := n.proto[op]; ok {
		return existing
	}

	created := &Node{
		name:     fmt.Sprintf("%s[%s]", n.name, op),
		parent:   n,
		children: map[string]*Node{},
		seq:      n.seq,
	}
	n.proto[op] = created

	return created
}

// Len invokes the length operation and returns its resolved value, which
// must be an int.
func (n *Node) Len() (int, error) {
	out, err := n.Proto(OpLen).Call()
	if err != nil {
		return 0, err
	}

	length, ok := out.(int)
	if !ok {
		return 0, fmt.Errorf("mimic: %s resolved to %#v, not an int", n.Proto(OpLen).Name(), out)
	}

	return length, nil
}

// GetIndex invokes the indexed-get operation with the given key.
func (n *Node) GetIndex(key any) (any, error) {
	return n.Proto(OpGetIndex).Call(key)
}

// SetIndex invokes the indexed-set operation with the given key and value.
// The resolved value is discarded; only a raised error surfaces.
func (n *Node) SetIndex(key, value any) error {
	_, err := n.Proto(OpSetIndex).Call(key, value)
	return err
}

// IterBegin invokes the iteration-start operation.
func (n *Node) IterBegin() (any, error) {
	return n.Proto(OpIterBegin).Call()
}

// IterNext invokes the iteration-next operation.
func (n *Node) IterNext() (any, error) {
	return n.Proto(OpIterNext).Call()
}

// Enter invokes the context-enter operation.
func (n *Node) Enter() (any, error) {
	return n.Proto(OpEnter).Call()
}

// Exit invokes the context-exit operation with the problem (if any) the
// context body produced.
func (n *Node) Exit(problem any) (any, error) {
	return n.Proto(OpExit).Call(problem)
}
