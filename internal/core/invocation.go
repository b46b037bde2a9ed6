package core

import (
	"fmt"
	"sort"
	"strings"
)

// Invocation is one recorded call: its positional arguments, its keyword
// arguments, and its position in the node tree's call order. Immutable once
// recorded.
type Invocation struct {
	Args   []any
	KWArgs map[string]any
	Seq    int
}

// String renders the invocation as a call expression, keyword arguments
// sorted by name so the output is stable for diffing.
func (inv Invocation) String() string {
	return "(" + formatArgs(inv.Args, inv.KWArgs) + ")"
}

// callSeq numbers invocations across one node tree. The engine is
// single-threaded per test, so a plain counter is enough.
type callSeq struct {
	n int
}

func (s *callSeq) next() int {
	s.n++
	return s.n
}

func formatArgs(args []any, kwargs map[string]any) string {
	parts := make([]string, 0, len(args)+len(kwargs))

	for _, a := range args {
		parts = append(parts, formatValue(a))
	}

	names := make([]string, 0, len(kwargs))
	for name := range kwargs {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		parts = append(parts, name+"="+formatValue(kwargs[name]))
	}

	return strings.Join(parts, ", ")
}

func formatValue(v any) string {
	// Matchers print by their own description, everything else by value.
	if m, ok := v.(Matcher); ok {
		return fmt.Sprintf("<matching %T>", m)
	}

	return fmt.Sprintf("%#v", v)
}
