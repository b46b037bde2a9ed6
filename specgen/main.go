// mimic/specgen is a tool to generate allowed-member sets for
// spec-constrained mock nodes. Point it at a Go interface and it emits a
// source file declaring the interface's method names as a []string, ready to
// hand to mimic.WithSpec. To use it, install it with
// `go install github.com/toejough/mimic/specgen@latest` and add a
// `//go:generate specgen <Interface> <file.go>` comment next to the
// interface. By default the generated variable is named <Interface>Members
// and lands in <interface>_members.go beside the source file; --var and
// --out override those.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options holds parsed specgen command options.
type options struct {
	iface   string
	source  string
	varName string
	outPath string
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(opts.source)
	if err != nil {
		return fmt.Errorf("reading %s: %w", opts.source, err)
	}

	generated, err := generate(src, opts.iface, opts.varName)
	if err != nil {
		return err
	}

	if err := atomic.WriteFile(opts.outPath, strings.NewReader(generated)); err != nil {
		return fmt.Errorf("writing %s: %w", opts.outPath, err)
	}

	return nil
}

func parseFlags(args []string) (options, error) {
	flags := flag.NewFlagSet("specgen", flag.ContinueOnError)
	varName := flags.String("var", "", "name for the generated variable (default <Interface>Members)")
	outPath := flags.String("out", "", "output file (default <interface>_members.go beside the source)")

	if err := flags.Parse(args); err != nil {
		return options{}, err
	}

	positional := flags.Args()
	if len(positional) != 2 {
		return options{}, fmt.Errorf("usage: specgen [flags] INTERFACE FILE, got %d positional args", len(positional))
	}

	opts := options{
		iface:   positional[0],
		source:  positional[1],
		varName: *varName,
		outPath: *outPath,
	}

	if opts.varName == "" {
		opts.varName = opts.iface + "Members"
	}

	if opts.outPath == "" {
		opts.outPath = filepath.Join(
			filepath.Dir(opts.source),
			strings.ToLower(opts.iface)+"_members.go",
		)
	}

	return opts, nil
}

// generate parses the source, finds the named interface, and renders the
// member-set declaration. Embedded interfaces declared in the same source
// are flattened into the set; embeds it cannot see are an error rather than
// a silently incomplete set.
func generate(src []byte, ifaceName, varName string) (string, error) {
	file, err := decorator.Parse(src)
	if err != nil {
		return "", fmt.Errorf("parsing source: %w", err)
	}

	members, err := interfaceMembers(file, ifaceName, map[string]bool{})
	if err != nil {
		return "", err
	}

	sort.Strings(members)

	var b strings.Builder

	b.WriteString("// Code generated by specgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", file.Name.Name)
	fmt.Fprintf(&b, "// %s lists the members of %s, for use with mimic.WithSpec.\n", varName, ifaceName)
	fmt.Fprintf(&b, "var %s = []string{\n", varName)

	for _, member := range members {
		fmt.Fprintf(&b, "\t%q,\n", member)
	}

	b.WriteString("}\n")

	return b.String(), nil
}

func interfaceMembers(file *dst.File, ifaceName string, visiting map[string]bool) ([]string, error) {
	if visiting[ifaceName] {
		return nil, fmt.Errorf("interface %s embeds itself (directly or via a cycle)", ifaceName)
	}

	visiting[ifaceName] = true
	defer delete(visiting, ifaceName)

	iface, err := findInterface(file, ifaceName)
	if err != nil {
		return nil, err
	}

	var members []string

	for _, field := range iface.Methods.List {
		if len(field.Names) > 0 {
			members = append(members, field.Names[0].Name)
			continue
		}

		// Embedded interface: flatten if it's declared in this file.
		ident, ok := field.Type.(*dst.Ident)
		if !ok {
			return nil, fmt.Errorf("interface %s embeds a type specgen cannot resolve", ifaceName)
		}

		embedded, err := interfaceMembers(file, ident.Name, visiting)
		if err != nil {
			return nil, fmt.Errorf("resolving embedded interface %s: %w", ident.Name, err)
		}

		members = append(members, embedded...)
	}

	return members, nil
}

func findInterface(file *dst.File, name string) (*dst.InterfaceType, error) {
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*dst.GenDecl)
		if !ok {
			continue
		}

		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*dst.TypeSpec)
			if !ok || typeSpec.Name.Name != name {
				continue
			}

			iface, ok := typeSpec.Type.(*dst.InterfaceType)
			if !ok {
				return nil, fmt.Errorf("%s is not an interface", name)
			}

			return iface, nil
		}
	}

	return nil, fmt.Errorf("no interface named %s in source", name)
}
