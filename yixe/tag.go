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
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"yixe.dev/go/nix"
	"yixe.dev/go/yixe/errors"
)

// A TagKind identifies how a tagged node is converted to Nix.
type TagKind int

const (
	// NixRaw (`!nix`) is raw Nix code, inserted unchecked.
	NixRaw TagKind = iota

	// NixValue (`!nix.<name>`) is a Nix global scope value. With a payload,
	// the value is called with it.
	NixValue

	// NixABICall (`!call`) calls the first item of a sequence with the
	// remaining ones.
	NixABICall

	// ArgumentsRef (`!arguments.<name>`) refers to an argument of the
	// document's expression.
	ArgumentsRef

	// InputsRef (`!inputs.<name>`) refers to an input of the document.
	InputsRef

	// ImportDocument (`!yixe.import-document`) imports another document.
	ImportDocument

	// ProjectShell (`!project.shell`) describes a development shell.
	ProjectShell

	// FleetSystem (`!fleet.system`) imports a machine of a fleet.
	FleetSystem

	// FleetVM (`!fleet.vm`) imports a machine of a fleet as its VM.
	FleetVM
)

var tagKindNames = [...]string{
	NixRaw:         "NixRaw",
	NixValue:       "NixValue",
	NixABICall:     "NixABICall",
	ArgumentsRef:   "ArgumentsRef",
	InputsRef:      "InputsRef",
	ImportDocument: "YixeImportDocument",
	ProjectShell:   "ProjectShell",
	FleetSystem:    "FleetSystem",
	FleetVM:        "FleetVM",
}

func (k TagKind) String() string {
	if int(k) < len(tagKindNames) {
		return tagKindNames[k]
	}
	return fmt.Sprintf("TagKind(%d)", int(k))
}

// Tag is a node carrying an explicit tag.
type Tag struct {
	base

	// Kind is the kind the tag resolved to.
	Kind TagKind

	// Name is the tag, as written.
	Name string

	// Value is the tagged node with its tag removed.
	Value Node
}

func (t *Tag) Type() string { return t.Kind.String() }

func (t *Tag) resolvePaths(dir string) { t.Value.resolvePaths(dir) }

func (t *Tag) expr(s *session) (nix.Expr, error) {
	switch t.Kind {
	case NixRaw:
		if t.node.Kind != yaml.ScalarNode {
			return nil, errorf(errors.ErrStructure, t, "%s expects a scalar, got a %s", t.Name, t.Value.Type())
		}
		return nix.Raw(t.node.Value), nil
	case NixValue:
		return t.nixValue(s)
	case NixABICall:
		l, ok := t.Value.(*List)
		if !ok || len(l.Items) == 0 {
			return nil, errorf(errors.ErrStructure, t, "%s expects a non-empty sequence", t.Name).
				WithTarget(site(t.Value))
		}
		xs, err := l.exprs(s)
		if err != nil {
			return nil, err
		}
		return nix.NewCall(xs[0], xs[1:]...), nil
	case ArgumentsRef:
		return nix.Raw(strings.TrimPrefix(t.Name, "!arguments.")), nil
	case InputsRef:
		return inputsRef(strings.TrimPrefix(t.Name, "!inputs.")), nil
	case ImportDocument, FleetSystem, FleetVM:
		return t.importDocument(s)
	case ProjectShell:
		return t.projectShell(s)
	}
	panic(fmt.Sprintf("unknown tag kind %v", t.Kind))
}

// topLevel is the name binding the attributes of project-like documents.
const topLevel = "__yixe_top"

// inputsRef returns a reference to the named input.
func inputsRef(name string) nix.Raw {
	return nix.Raw(topLevel + ".inputs." + name)
}

func (t *Tag) nixValue(s *session) (nix.Expr, error) {
	value := nix.Raw(strings.TrimPrefix(t.Name, "!nix."))
	var payload nix.Expr
	switch v := t.Value.(type) {
	case *Null:
		return value, nil
	case *Mapping, *List:
		x, err := v.expr(s)
		if err != nil {
			return nil, err
		}
		payload = x
	default:
		if t.node.Style&yaml.DoubleQuotedStyle != 0 {
			payload = nix.String(t.node.Value)
		} else {
			payload = nix.Raw(t.node.Value)
		}
	}
	return nix.NewCall(value, payload), nil
}

func (t *Tag) importDocument(s *session) (nix.Expr, error) {
	path, ok := scalarText(t.Value)
	if !ok {
		return nil, errorf(errors.ErrStructure, t, "%s expects a path, got a %s", t.Name, t.Value.Type())
	}
	switch {
	case strings.HasPrefix(path, "./"), strings.HasPrefix(path, "../"):
		path = t.doc.resolvePath(path)
	case strings.HasPrefix(path, "/"):
	default:
		return nil, errorf(errors.ErrStructure, t, "unexpected path kind %q", path)
	}

	if s.doc.loader.inFlight[documentKey(path)] {
		return nil, errorf(errors.ErrImportCycle, t, "import cycle through %s", filepath.Base(path))
	}
	child, err := s.doc.loader.load(path)
	if err != nil {
		var e *errors.Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, errorf(errors.ErrStructure, t, "cannot import %s", path).Wrap(err)
	}
	code, err := child.Transpile(s.ctx)
	if err != nil {
		return nil, err
	}
	if child.CallPackagePattern() {
		return nix.NewCall(
			nix.Raw("("+inputsRef("nixpkgs")+").callPackage"),
			nix.Raw(code),
			nix.NewAttrs(),
		), nil
	}
	return nix.Raw(code), nil
}

func (t *Tag) projectShell(s *session) (nix.Expr, error) {
	m, ok := t.Value.(*Mapping)
	if !ok {
		return nil, errorf(errors.ErrStructure, t, "%s expects a mapping, got a %s", t.Name, t.Value.Type())
	}
	pattern := nix.NewSetPattern(nix.Raw("mkShell"))
	packages := nix.NewList()
	if n := m.Get("packages"); n != nil {
		l, ok := n.(*List)
		if !ok {
			return nil, errorf(errors.ErrStructure, t, "packages must be a List").WithTarget(site(n))
		}
		for _, pkg := range l.Items {
			switch pkg := pkg.(type) {
			case *String:
				id := nix.Raw(pkg.Value)
				pattern.Append(id)
				packages.Append(id)
			case *Tag:
				if pkg.Kind != NixABICall {
					return nil, errorf(errors.ErrStructure, t, "unexpected package of type %s", pkg.Type()).
						WithTarget(site(pkg))
				}
				x, err := pkg.expr(s)
				if err != nil {
					return nil, err
				}
				packages.Append(x)
			default:
				return nil, errorf(errors.ErrStructure, t, "unexpected package of type %s", pkg.Type()).
					WithTarget(site(pkg))
			}
		}
	}
	environment, err := optionalAttrs(s, m.Get("environment"))
	if err != nil {
		return nil, err
	}
	mkShell, err := optionalAttrs(s, m.Get("mkShell"))
	if err != nil {
		return nil, err
	}

	lines := []string{
		"(",
		"  (" + string(inputsRef("nixpkgs")) + ").callPackage (",
		nix.IndentN(pattern.Render(), 2) + ":",
		"    mkShell (",
		nix.IndentN(environment.Render(), 3),
		"      //",
		nix.IndentN(mkShell.Render(), 3),
		"      // {",
		"        buildInputs =",
		nix.IndentN(packages.Render(), 5),
		"        ;",
		"      }",
		"    )",
		"  ) {}",
		")",
	}
	return nix.Raw(strings.Join(lines, "\n")), nil
}

// optionalAttrs converts n, or returns empty attributes if n is nil.
func optionalAttrs(s *session, n Node) (nix.Expr, error) {
	if n == nil {
		return nix.NewAttrs(), nil
	}
	return n.expr(s)
}
