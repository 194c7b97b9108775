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
	"context"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"yixe.dev/go/nix"
	"yixe.dev/go/yixe/errors"
	"yixe.dev/go/yixe/token"
)

// A Node is a node of the intermediate representation of a document.
//
// The set of node types is closed: *String, *Null, *Boolean, *Number,
// *Path, *Mapping, *List, *Root, *Inputs, *Outputs and *Tag.
type Node interface {
	// Type reports the name of the node type, as used in error messages.
	Type() string

	// YAML returns the YAML node the node was built from.
	YAML() *yaml.Node

	// Pos returns the position of the node in its document.
	Pos() token.Position

	// Document returns the document holding the node.
	Document() *Document

	expr(s *session) (nix.Expr, error)
	resolvePaths(dir string)
}

// Expr converts n to a Nix expression. Conversion may read imported
// documents, lock files, and run npins.
func Expr(ctx context.Context, n Node) (nix.Expr, error) {
	return n.expr(newSession(ctx, n.Document()))
}

// session holds the state of a single conversion to Nix.
type session struct {
	ctx context.Context
	doc *Document
}

func newSession(ctx context.Context, doc *Document) *session {
	return &session{ctx: ctx, doc: doc}
}

type base struct {
	doc  *Document
	node *yaml.Node
}

func (b *base) YAML() *yaml.Node { return b.node }

func (b *base) Document() *Document { return b.doc }

func (b *base) Pos() token.Position {
	return token.Position{
		Filename: b.doc.Path,
		Line:     b.node.Line,
		Column:   b.node.Column,
	}
}

func (b *base) resolvePaths(dir string) {}

// site returns the error site of n.
func site(n Node) errors.Site {
	return errors.Site{Type: n.Type(), Pos: n.Pos()}
}

// errorf returns an error of the given kind while processing n.
func errorf(kind error, n Node, format string, args ...any) *errors.Error {
	return errors.Newf(kind, site(n), format, args...)
}

// String is an unquoted or quoted scalar string.
type String struct {
	base
	Value string
}

func (*String) Type() string { return "String" }

func (n *String) expr(*session) (nix.Expr, error) { return nix.String(n.Value), nil }

// Null is an empty scalar or the plain scalar null.
type Null struct{ base }

func (*Null) Type() string { return "Null" }

func (*Null) expr(*session) (nix.Expr, error) { return nix.Null{}, nil }

type Boolean struct {
	base
	Value bool
}

func (*Boolean) Type() string { return "Boolean" }

func (n *Boolean) expr(*session) (nix.Expr, error) { return nix.Bool(n.Value), nil }

// Number is an integer written in decimal, hexadecimal (0x), binary (0b)
// or legacy octal (leading 0) notation.
type Number struct {
	base
	Value int64
}

func (*Number) Type() string { return "Number" }

func (n *Number) expr(*session) (nix.Expr, error) { return nix.Int(n.Value), nil }

// Path is an absolute, relative (./ or ../) or home-relative (~/) path. It is
// rendered as a Nix path literal.
type Path struct{ base }

func (*Path) Type() string { return "Path" }

// Value returns the path as currently held by the YAML node.
func (n *Path) Value() string { return n.node.Value }

func (n *Path) expr(*session) (nix.Expr, error) { return nix.Raw(n.node.Value), nil }

// resolvePaths makes relative paths absolute against dir. Absolute and
// home-relative paths are left alone.
func (n *Path) resolvePaths(dir string) {
	v := n.node.Value
	if filepath.IsAbs(v) || strings.HasPrefix(v, "~") {
		return
	}
	n.node.Value = filepath.Join(dir, v)
}

// scalarText returns the text of a scalar node, and whether n is a scalar.
func scalarText(n Node) (string, bool) {
	switch n := n.(type) {
	case *String:
		return n.Value, true
	case *Path:
		return n.Value(), true
	case *Number, *Boolean, *Null:
		return n.YAML().Value, true
	}
	return "", false
}
