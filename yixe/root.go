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
	"strings"

	"yixe.dev/go/nix"
	"yixe.dev/go/yixe/errors"
)

// Document types.
const (
	TypeDocument   = "yixe-document"
	TypeProject    = "yixe-project"
	TypeExpression = "yixe-expression"
	TypePackage    = "yixe-nixpkgs-package"
	TypeModule     = "yixe-nixos-module"
	TypeFleet      = "yixe-nixos-fleet"
)

// documentKind describes a type of document.
type documentKind struct {
	name string
	tags *TagSet
}

// documentKinds lists the known document types.
var documentKinds = []documentKind{
	{TypeDocument, BaseMagic},
	{TypeProject, Project},
	{TypeExpression, BaseMagic},
	{TypePackage, BaseMagic},
	{TypeModule, BaseMagic},
	{TypeFleet, Fleet},
}

func lookupKind(name string) (*documentKind, bool) {
	for i := range documentKinds {
		if documentKinds[i].name == name {
			return &documentKinds[i], true
		}
	}
	return nil, false
}

// Root is the top-level mapping of a document. Its first pair declares the
// document type and version, and is not part of its pairs.
type Root struct {
	Mapping

	// DocumentType is the declared document type, such as yixe-project.
	DocumentType string

	// Version is the node holding the declared document version.
	Version Node

	// TagSet is the set of tags the document may use.
	TagSet *TagSet
}

func (*Root) Type() string { return "Root" }

func (r *Root) setDocumentType(k, v Node) error {
	name, ok := k.(*String)
	if !ok {
		return errorf(errors.ErrStructure, r, "document type must be a string, got a %s", k.Type()).
			WithTarget(site(k))
	}
	kind, ok := lookupKind(name.Value)
	if !ok {
		known := make([]string, len(documentKinds))
		for i, dk := range documentKinds {
			known[i] = fmt.Sprintf("%q", dk.name)
		}
		return errorf(errors.ErrStructure, r, "Unexpected document type: %s; known types: [%s]",
			name.Value, strings.Join(known, ", ")).WithTarget(site(k))
	}
	if _, ok := scalarText(v); !ok {
		return errorf(errors.ErrStructure, r, "document version must be a scalar, got a %s", v.Type()).
			WithTarget(site(v))
	}
	r.DocumentType = name.Value
	r.Version = v
	r.TagSet = kind.tags
	return nil
}

// VersionString returns the declared version as written.
func (r *Root) VersionString() string {
	s, _ := scalarText(r.Version)
	return s
}

// Inputs returns the inputs of the document, or nil.
func (r *Root) Inputs() *Inputs {
	in, _ := r.Get("inputs").(*Inputs)
	return in
}

// Outputs returns the outputs of the document, or nil.
func (r *Root) Outputs() *Outputs {
	out, _ := r.Get("outputs").(*Outputs)
	return out
}

// expr returns the document body, without the banner.
func (r *Root) expr(s *session) (nix.Expr, error) {
	switch r.DocumentType {
	case TypeProject:
		return r.transpileProject(s)
	case TypePackage:
		return r.transpilePackage(s)
	case TypeModule:
		return r.transpileModule(s)
	case TypeFleet:
		return r.transpileFleet(s)
	}
	return r.transpileExpression(s)
}

// render returns the document wrapped in the banner recording its metadata.
func (r *Root) render(s *session) (string, error) {
	body, err := r.expr(s)
	if err != nil {
		return "", err
	}
	rule := strings.Repeat("#", 80)
	version := r.VersionString()
	switch v := r.Version.(type) {
	case *String:
		version = nix.QuoteJSON(version)
	case *Number:
		version = nix.Int(v.Value).Render()
	case *Null:
		version = "null"
	}
	return strings.Join([]string{
		"(",
		rule,
		"# Transpiled by Yixe",
		rule,
		"# Document metadata:",
		"#      type: " + nix.QuoteJSON(r.DocumentType),
		"#   version: " + version,
		rule,
		"#",
		body.Render(),
		"#",
		rule,
		")",
	}, "\n"), nil
}

// Outputs holds the outputs of project-like documents. It is converted by
// the enclosing document, which decides how each output is wrapped.
type Outputs struct {
	Mapping
}

func (*Outputs) Type() string { return "Outputs" }

func (o *Outputs) expr(*session) (nix.Expr, error) {
	return nil, errorf(errors.ErrStructure, o, "outputs can only be used by project and fleet documents")
}
