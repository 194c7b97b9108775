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

// Package nix builds Nix expressions in memory and renders them to source.
//
// Every value implements [Expr]. Rendering is deterministic: the same tree
// always renders to the same bytes, and the order in which list items,
// attributes and bindings were added is preserved.
//
// Composite expressions parenthesize their operands, so callers never need
// to reason about Nix operator precedence:
//
//	call := nix.NewCall(nix.Raw("builtins.fetchTarball"), nix.String("https://example.org/x.tar.xz"))
//	fmt.Println(call.Render())
package nix

import (
	"strconv"
	"strings"
)

// An Expr is a Nix expression that can be rendered to source text.
type Expr interface {
	// Render returns the Nix source for the expression.
	Render() string

	exprNode()
}

func (Raw) exprNode()         {}
func (Bool) exprNode()        {}
func (Int) exprNode()         {}
func (String) exprNode()      {}
func (Null) exprNode()        {}
func (*List) exprNode()       {}
func (*Attrs) exprNode()      {}
func (*Let) exprNode()        {}
func (*MergeAttrs) exprNode() {}
func (*Call) exprNode()       {}
func (*Func) exprNode()       {}
func (*SetPattern) exprNode() {}

// Raw is Nix source that is emitted verbatim.
//
// It is never parsed nor validated. It allows non-trivial Nix constructs,
// written by hand or by a document author, to be embedded in the output.
type Raw string

// Import is the import builtin.
const Import = Raw("import")

func (r Raw) Render() string { return string(r) }

// Bool is a Nix boolean.
type Bool bool

func (b Bool) Render() string { return strconv.FormatBool(bool(b)) }

// Int is a Nix integer. It always renders in decimal.
type Int int64

func (i Int) Render() string { return strconv.FormatInt(int64(i), 10) }

// Null is the Nix null value.
type Null struct{}

func (Null) Render() string { return "null" }

// String is a Nix string literal. See [Quote] for how it is rendered.
type String string

func (s String) Render() string { return Quote(string(s)) }

// List is a Nix list.
type List struct {
	Items []Expr
}

// NewList returns a list holding the given items in order.
func NewList(items ...Expr) *List {
	return &List{Items: items}
}

// Append adds x at the end of the list.
func (l *List) Append(x Expr) {
	l.Items = append(l.Items, x)
}

func (l *List) Render() string {
	if len(l.Items) == 0 {
		return "[ /* (empty) */ ]"
	}
	return "[\n" + Indent(parenLines(l.Items, "\n")) + "\n]"
}

// Attrs is a Nix attribute set. Attributes keep their insertion order.
type Attrs struct {
	// Rec makes the set recursive (`rec { ... }`).
	Rec bool

	names  []Expr
	values []Expr
	index  map[string]int
}

// NewAttrs returns an empty attribute set.
func NewAttrs() *Attrs {
	return &Attrs{}
}

// Set binds name, rendered as a string literal, to v. Setting a name that
// is already bound replaces its value in place.
func (a *Attrs) Set(name string, v Expr) {
	a.SetExpr(String(name), v)
}

// SetExpr is like Set, but the attribute name is an arbitrary expression,
// typically a Raw identifier.
func (a *Attrs) SetExpr(name, v Expr) {
	key := name.Render()
	if i, ok := a.index[key]; ok {
		a.values[i] = v
		return
	}
	if a.index == nil {
		a.index = make(map[string]int)
	}
	a.index[key] = len(a.names)
	a.names = append(a.names, name)
	a.values = append(a.values, v)
}

// Get returns the value bound to name, or nil.
func (a *Attrs) Get(name string) Expr {
	if i, ok := a.index[String(name).Render()]; ok {
		return a.values[i]
	}
	return nil
}

// Len reports the number of attributes.
func (a *Attrs) Len() int { return len(a.names) }

func (a *Attrs) Render() string {
	open := "{"
	if a.Rec {
		open = "rec {"
	}
	if len(a.names) == 0 {
		return open + " /* (empty) */ }"
	}
	return open + "\n" + Indent(a.bindings()) + "\n}"
}

func (a *Attrs) bindings() string {
	lines := make([]string, len(a.names))
	for i, name := range a.names {
		lines[i] = name.Render() + " = " + a.values[i].Render() + ";"
	}
	return strings.Join(lines, "\n")
}

// Let is a `let ... in` expression.
type Let struct {
	Bindings Attrs
	Body     Expr
}

// NewLet returns a let expression evaluating to body.
func NewLet(body Expr) *Let {
	return &Let{Body: body}
}

func (l *Let) Render() string {
	var b strings.Builder
	b.WriteString("let\n")
	if l.Bindings.Len() > 0 {
		b.WriteString(Indent(l.Bindings.bindings()))
		b.WriteByte('\n')
	}
	b.WriteString("in\n")
	b.WriteString(Indent(l.Body.Render()))
	return b.String()
}

// MergeAttrs shallowly merges attribute sets with the `//` operator.
// Later operands take precedence on conflicting names.
type MergeAttrs struct {
	Args []Expr
}

// NewMerge returns the merge of args, left to right.
func NewMerge(args ...Expr) *MergeAttrs {
	return &MergeAttrs{Args: args}
}

func (m *MergeAttrs) Render() string {
	return "(\n" + Indent(parenLines(m.Args, "\n // \n")) + "\n)"
}

// Call is a function application. Multiple arguments are applied one at a
// time, as in `(f) (a) (b)`.
type Call struct {
	Fn   Expr
	Args []Expr
}

// NewCall returns the application of fn to args.
func NewCall(fn Expr, args ...Expr) *Call {
	return &Call{Fn: fn, Args: args}
}

func (c *Call) Render() string {
	parts := make([]Expr, 0, len(c.Args)+1)
	parts = append(parts, c.Fn)
	parts = append(parts, c.Args...)
	return "(\n" + Indent(parenLines(parts, "\n")) + "\n)"
}

// Func is a function definition.
type Func struct {
	Param Expr
	Body  Expr
}

// NewFunc returns a function of param evaluating to body.
func NewFunc(param, body Expr) *Func {
	return &Func{Param: param, Body: body}
}

func (f *Func) Render() string {
	return "(" + f.Param.Render() + ": (" + f.Body.Render() + "))"
}

// SetPattern is the `{ a, b, ... }` parameter of a function. It is only
// valid as the Param of a [Func].
type SetPattern struct {
	params []Expr
}

// NewSetPattern returns a set pattern over params. It panics if params is
// empty, as Nix has no empty set pattern that binds names.
func NewSetPattern(params ...Expr) *SetPattern {
	if len(params) == 0 {
		panic("nix: SetPattern with no parameters")
	}
	return &SetPattern{params: params}
}

// Append adds a parameter at the end of the pattern.
func (p *SetPattern) Append(param Expr) {
	p.params = append(p.params, param)
}

func (p *SetPattern) Render() string {
	if len(p.params) == 1 {
		return "{ " + p.params[0].Render() + " }"
	}
	parts := make([]string, len(p.params))
	for i, x := range p.params {
		parts[i] = x.Render()
	}
	return "{ " + strings.Join(parts, "\n, ") + "\n}"
}

func parenLines(xs []Expr, sep string) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = "(" + x.Render() + ")"
	}
	return strings.Join(parts, sep)
}

// Indent prefixes every line of s with two spaces. Trailing empty lines are
// dropped.
func Indent(s string) string {
	return IndentN(s, 1)
}

// IndentN prefixes every line of s with n levels of indentation.
func IndentN(s string, n int) string {
	lines := strings.Split(s, "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	prefix := strings.Repeat("  ", n)
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
