// Copyright 2026 The Yixe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package yixe

import (
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"yixe.dev/go/nix"
	"yixe.dev/go/yixe/errors"
)

// Extension is the file name extension of Yixe documents.
const Extension = ".yixe"

const defaultBuilder = "stdenv.mkDerivation"

// transpileExpression converts the `output` of the document, made a
// function of its `arguments` if there are any.
func (r *Root) transpileExpression(s *session) (nix.Expr, error) {
	output := r.Get("output")
	if output == nil {
		return nil, errorf(errors.ErrStructure, r, "missing `output`")
	}
	body, err := output.expr(s)
	if err != nil {
		return nil, err
	}
	return r.withArguments(s, r.Get("arguments"), body)
}

// withArguments makes body a function of args, if not nil.
func (r *Root) withArguments(s *session, args Node, body nix.Expr) (nix.Expr, error) {
	if args == nil {
		return body, nil
	}
	l, ok := args.(*List)
	if !ok {
		return nil, errorf(errors.ErrStructure, r, "arguments must be a List").WithTarget(site(args))
	}
	if len(l.Items) == 0 {
		return nil, errorf(errors.ErrStructure, r, "arguments must not be empty").WithTarget(site(args))
	}
	params := make([]nix.Expr, 0, len(l.Items))
	for _, arg := range l.Items {
		p, err := r.argument(s, arg)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return nix.NewFunc(nix.NewSetPattern(params...), body), nil
}

// argument converts an entry of `arguments` to a set pattern parameter.
// A mapping with a single pair gives the parameter a default value.
func (r *Root) argument(s *session, arg Node) (nix.Expr, error) {
	switch arg := arg.(type) {
	case *String:
		return nix.Raw(arg.Value), nil
	case *Tag:
		if arg.Kind == NixRaw {
			return arg.expr(s)
		}
	case *Mapping:
		if arg.Len() == 1 {
			p := arg.Pairs()[0]
			def, err := p.Value.expr(s)
			if err != nil {
				return nil, err
			}
			return nix.Raw(p.Name() + " ? " + def.Render()), nil
		}
	}
	return nil, errorf(errors.ErrStructure, r,
		"Unhandled argument of type %s for yixe expression arguments.", arg.Type()).WithTarget(site(arg))
}

// transpileProject binds the inputs and outputs of the document in a
// self-referential scope.
func (r *Root) transpileProject(s *session) (nix.Expr, error) {
	attrs := nix.NewAttrs()
	if err := r.addInputs(s, attrs); err != nil {
		return nil, err
	}
	if err := r.addOutputs(s, attrs, nil); err != nil {
		return nil, err
	}
	return makeTopLevel(attrs), nil
}

// makeTopLevel returns attrs bound to the top-level name, so its values can
// refer to each other.
func makeTopLevel(attrs *nix.Attrs) nix.Expr {
	let := nix.NewLet(nix.Raw(topLevel))
	let.Bindings.Set(topLevel, attrs)
	return let
}

func (r *Root) addInputs(s *session, attrs *nix.Attrs) error {
	in := r.Inputs()
	if in == nil {
		return nil
	}
	x, err := in.expr(s)
	if err != nil {
		return err
	}
	attrs.Set("inputs", x)
	return nil
}

// addOutputs adds the outputs of the document to attrs, converted by wrap
// if not nil. Outputs may not rebind a name attrs already holds.
func (r *Root) addOutputs(s *session, attrs *nix.Attrs, wrap func(Node) (nix.Expr, error)) error {
	out := r.Outputs()
	if out == nil {
		return nil
	}
	for _, p := range out.Pairs() {
		if attrs.Get(p.Name()) != nil {
			return errorf(errors.ErrStructure, out, "output name %q is reserved", p.Name()).
				WithTarget(site(p.Key))
		}
		var x nix.Expr
		var err error
		if wrap != nil {
			x, err = wrap(p.Value)
		} else {
			x, err = p.Value.expr(s)
		}
		if err != nil {
			return err
		}
		attrs.Set(p.Name(), x)
	}
	return nil
}

const callNixOS = `(configuration:
  import (` + topLevel + `.inputs.nixpkgs.path + "/nixos") {
    inherit configuration;
  }
)`

// transpileFleet is like transpileProject, but every output is a NixOS
// system built from the nixpkgs input.
func (r *Root) transpileFleet(s *session) (nix.Expr, error) {
	attrs := nix.NewAttrs()
	if err := r.addInputs(s, attrs); err != nil {
		return nil, err
	}
	attrs.Set("__callNixOS", nix.Raw(callNixOS))
	err := r.addOutputs(s, attrs, func(v Node) (nix.Expr, error) {
		if _, ok := documentPath(v); ok {
			// Plain document paths are implicitly systems.
			v = r.synthesizeTag(v, FleetSystem, "!fleet.system")
		}
		x, err := v.expr(s)
		if err != nil {
			return nil, err
		}
		attr := ""
		if t, ok := v.(*Tag); ok && t.Kind == FleetVM {
			attr = ".vm"
		}
		call := nix.NewCall(nix.Raw(topLevel+".__callNixOS"), x)
		return nix.Raw("(" + call.Render() + attr + ")"), nil
	})
	if err != nil {
		return nil, err
	}
	return makeTopLevel(attrs), nil
}

// transpileModule converts a NixOS module made of the `options`, `config`
// and `imports` of the document.
func (r *Root) transpileModule(s *session) (nix.Expr, error) {
	body := nix.NewAttrs()
	for _, name := range []string{"options", "config"} {
		n := r.Get(name)
		if n == nil {
			continue
		}
		x, err := n.expr(s)
		if err != nil {
			return nil, err
		}
		body.Set(name, x)
	}
	if n := r.Get("imports"); n != nil {
		l, ok := n.(*List)
		if !ok {
			return nil, errorf(errors.ErrStructure, r, "imports must be a List").WithTarget(site(n))
		}
		imports := nix.NewList()
		for _, entry := range l.Items {
			x, err := r.moduleImport(s, entry)
			if err != nil {
				return nil, err
			}
			imports.Append(x)
		}
		body.Set("imports", imports)
	}
	return r.withArguments(s, r.Get("arguments"), body)
}

// moduleImport converts an entry of `imports`. Paths to documents are
// transpiled and inlined, other paths are imported by Nix.
func (r *Root) moduleImport(s *session, entry Node) (nix.Expr, error) {
	if _, ok := documentPath(entry); ok {
		return r.synthesizeTag(entry, ImportDocument, "!yixe.import-document").expr(s)
	}
	if str, ok := pathText(entry); ok {
		return nix.Raw(str), nil
	}
	return entry.expr(s)
}

// pathText returns the text of a String or Path node that looks like a
// path: relative, absolute, or a lookup path such as <nixpkgs>.
func pathText(n Node) (string, bool) {
	var str string
	switch n := n.(type) {
	case *String:
		str = n.Value
	case *Path:
		str = n.Value()
	default:
		return "", false
	}
	ok := strings.HasPrefix(str, "./") || strings.HasPrefix(str, "../") || strings.HasPrefix(str, "/") ||
		(strings.HasPrefix(str, "<") && strings.HasSuffix(str, ">"))
	return str, ok
}

// documentPath is like pathText, but only reports paths to documents.
func documentPath(n Node) (string, bool) {
	str, ok := pathText(n)
	return str, ok && strings.HasSuffix(str, Extension)
}

// synthesizeTag returns n tagged as if it were written with the given tag.
func (r *Root) synthesizeTag(n Node, kind TagKind, name string) *Tag {
	return &Tag{base: base{doc: r.doc, node: n.YAML()}, Kind: kind, Name: name, Value: n}
}

// transpilePackage converts a package built from `output` by its
// `builder`, made a function of its `arguments` so it can be used with
// callPackage.
func (r *Root) transpilePackage(s *session) (nix.Expr, error) {
	n := r.Get("output")
	if n == nil {
		return nil, errorf(errors.ErrStructure, r, "missing `output`")
	}
	output, ok := n.(*Mapping)
	if !ok {
		return nil, errorf(errors.ErrStructure, r, "output must be a Mapping").WithTarget(site(n))
	}
	n = r.Get("arguments")
	if n == nil {
		return nil, errorf(errors.ErrStructure, r, "missing `arguments`")
	}
	args, ok := n.(*List)
	if !ok {
		return nil, errorf(errors.ErrStructure, r, "arguments must be a List").WithTarget(site(n))
	}

	// Work on copies so the document can be transpiled again.
	output = output.clone()
	args = &List{base: args.base, Items: slices.Clone(args.Items)}

	builder := defaultBuilder
	if b := output.Consume("builder"); b != nil {
		str, ok := scalarText(b)
		if !ok {
			return nil, errorf(errors.ErrStructure, r, "builder must be a scalar").WithTarget(site(b))
		}
		builder = str
	}
	scope, _, _ := strings.Cut(builder, ".")
	for _, name := range []string{scope, "lib"} {
		if !hasArgument(args, name) {
			args.Prepend(r.synthesizeArgument(name))
		}
	}

	drvAttrs := nix.NewAttrs()
	if output.Get("version") != nil {
		if name := output.Consume("name"); name != nil {
			if err := setExpr(s, drvAttrs, "pname", name); err != nil {
				return nil, err
			}
		}
		if err := setExpr(s, drvAttrs, "version", output.Consume("version")); err != nil {
			return nil, err
		}
	}
	if env := output.Consume("environment"); env != nil {
		if err := setExpr(s, drvAttrs, "env", env); err != nil {
			return nil, err
		}
	}

	ox, err := output.expr(s)
	if err != nil {
		return nil, err
	}
	body := nix.NewCall(nix.Raw(builder), nix.NewMerge(ox, drvAttrs))
	return r.withArguments(s, args, body)
}

func setExpr(s *session, attrs *nix.Attrs, name string, n Node) error {
	x, err := n.expr(s)
	if err != nil {
		return err
	}
	attrs.Set(name, x)
	return nil
}

// hasArgument reports whether args declares the named parameter.
func hasArgument(args *List, name string) bool {
	for _, arg := range args.Items {
		switch arg := arg.(type) {
		case *String:
			if arg.Value == name {
				return true
			}
		case *Tag:
			if arg.Kind == NixRaw && arg.node.Value == name {
				return true
			}
		case *Mapping:
			if arg.Len() == 1 && arg.Pairs()[0].Name() == name {
				return true
			}
		}
	}
	return false
}

// synthesizeArgument returns a parameter that is not written in the
// document.
func (r *Root) synthesizeArgument(name string) *String {
	yn := &yaml.Node{Kind: yaml.ScalarNode, Value: name}
	return &String{base: base{doc: r.doc, node: yn}, Value: name}
}
