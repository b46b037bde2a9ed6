package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleSource = `package store

type Closer interface {
	Close() error
}

type Store interface {
	Closer
	Get(key string) (string, error)
	Put(key, value string) error
}

type NotAnInterface struct{}
`

// TestGenerateFlattensEmbeds verifies member collection, embedded-interface
// flattening, and the generated declaration shape.
func TestGenerateFlattensEmbeds(t *testing.T) {
	t.Parallel()

	generated, err := generate([]byte(sampleSource), "Store", "StoreMembers")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"// Code generated by specgen. DO NOT EDIT.",
		"package store",
		"var StoreMembers = []string{",
		`"Close",`,
		`"Get",`,
		`"Put",`,
	} {
		if !strings.Contains(generated, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, generated)
		}
	}

	// Sorted: Close before Get before Put.
	if strings.Index(generated, `"Close"`) > strings.Index(generated, `"Get"`) {
		t.Error("expected members sorted by name")
	}
}

// TestGenerateErrors verifies the failure modes: unknown name, non-interface
// target, unparseable source.
func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		src    string
		iface  string
		reason string
	}{
		{name: "missing interface", src: sampleSource, iface: "Nope", reason: "no interface named"},
		{name: "not an interface", src: sampleSource, iface: "NotAnInterface", reason: "not an interface"},
		{name: "bad source", src: "package {", iface: "Store", reason: "parsing source"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := generate([]byte(tc.src), tc.iface, "X")
			if err == nil || !strings.Contains(err.Error(), tc.reason) {
				t.Errorf("expected error containing %q, got %v", tc.reason, err)
			}
		})
	}
}

// TestGenerateSelfEmbedCycle verifies cycle detection in embedded
// interfaces.
func TestGenerateSelfEmbedCycle(t *testing.T) {
	t.Parallel()

	src := `package p

type A interface {
	B
}

type B interface {
	A
}
`

	_, err := generate([]byte(src), "A", "AMembers")
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("expected a cycle error, got %v", err)
	}
}

// TestParseFlagsDefaults verifies derived defaults for --var and --out.
func TestParseFlagsDefaults(t *testing.T) {
	t.Parallel()

	opts, err := parseFlags([]string{"Store", "sub/store.go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if opts.varName != "StoreMembers" {
		t.Errorf("expected default var name StoreMembers, got %q", opts.varName)
	}

	if opts.outPath != filepath.Join("sub", "store_members.go") {
		t.Errorf("unexpected default out path %q", opts.outPath)
	}
}

// TestParseFlagsOverridesAndArity verifies explicit flags and the
// positional-argument contract.
func TestParseFlagsOverridesAndArity(t *testing.T) {
	t.Parallel()

	opts, err := parseFlags([]string{"--var", "Allowed", "--out", "x.go", "Store", "store.go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if opts.varName != "Allowed" || opts.outPath != "x.go" {
		t.Errorf("expected overrides to apply, got %+v", opts)
	}

	if _, err := parseFlags([]string{"Store"}); err == nil {
		t.Error("expected an arity error for a single positional arg")
	}
}

// TestRunWritesGeneratedFile verifies the end-to-end path through the real
// filesystem.
func TestRunWritesGeneratedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "store.go")

	if err := os.WriteFile(source, []byte(sampleSource), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := run([]string{"Store", source}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	generated, err := os.ReadFile(filepath.Join(dir, "store_members.go"))
	if err != nil {
		t.Fatalf("expected the generated file beside the source: %v", err)
	}

	if !strings.Contains(string(generated), "var StoreMembers") {
		t.Errorf("unexpected generated content:\n%s", generated)
	}
}
