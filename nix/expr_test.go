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

package nix_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"yixe.dev/go/nix"
)

func TestRender(t *testing.T) {
	value := nix.Raw("value")
	testCases := []struct {
		name string
		expr nix.Expr
		want string
	}{{
		name: "Import",
		expr: nix.Import,
		want: "import",
	}, {
		name: "RawIsVerbatim",
		expr: nix.Raw("<<< what's this ?"),
		want: "<<< what's this ?",
	}, {
		name: "Null",
		expr: nix.Null{},
		want: "null",
	}, {
		name: "True",
		expr: nix.Bool(true),
		want: "true",
	}, {
		name: "NegativeInt",
		expr: nix.Int(-15),
		want: "-15",
	}, {
		name: "String",
		expr: nix.String("a"),
		want: `"a"`,
	}, {
		name: "EmptyList",
		expr: nix.NewList(),
		want: "[ /* (empty) */ ]",
	}, {
		name: "ListOne",
		expr: nix.NewList(nix.Raw("item")),
		want: "[\n  (item)\n]",
	}, {
		name: "ListOrder",
		expr: nix.NewList(nix.Raw("one"), nix.Raw("two")),
		want: "[\n  (one)\n  (two)\n]",
	}, {
		name: "NestedListIndents",
		expr: nix.NewList(nix.NewList(nix.Raw("x"))),
		want: "[\n  ([\n    (x)\n  ])\n]",
	}, {
		name: "EmptyAttrs",
		expr: nix.NewAttrs(),
		want: "{ /* (empty) */ }",
	}, {
		name: "EmptyRecAttrs",
		expr: &nix.Attrs{Rec: true},
		want: "rec { /* (empty) */ }",
	}, {
		name: "FunctionCallOneArg",
		expr: nix.NewCall(nix.Raw("a"), nix.Raw("b")),
		want: "(\n  (a)\n  (b)\n)",
	}, {
		name: "FunctionCallTwoArgs",
		expr: nix.NewCall(nix.Raw("a"), nix.Raw("b"), nix.Raw("c")),
		want: "(\n  (a)\n  (b)\n  (c)\n)",
	}, {
		name: "FunctionDefinition",
		expr: nix.NewFunc(nix.Raw("a"), nix.Raw("b")),
		want: "(a: (b))",
	}, {
		name: "SetPatternOne",
		expr: nix.NewSetPattern(nix.Raw("a")),
		want: "{ a }",
	}, {
		name: "SetPatternTwo",
		expr: nix.NewSetPattern(nix.Raw("a"), nix.Raw("b")),
		want: "{ a\n, b\n}",
	}, {
		name: "MergeKeepsOrder",
		expr: nix.NewMerge(nix.Raw("b"), nix.Raw("a")),
		want: "(\n  (b)\n   // \n  (a)\n)",
	}, {
		name: "EmptyLet",
		expr: nix.NewLet(value),
		want: "let\nin\n  value",
	}}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			qt.Assert(t, qt.Equals(tc.expr.Render(), tc.want))
		})
	}
}

func TestAttrs(t *testing.T) {
	attrs := nix.NewAttrs()
	attrs.SetExpr(nix.Raw("b_first"), nix.Raw("value"))
	attrs.SetExpr(nix.Raw("a_second"), nix.Raw("value2"))
	qt.Assert(t, qt.Equals(attrs.Render(), "{\n  b_first = value;\n  a_second = value2;\n}"))

	attrs = nix.NewAttrs()
	attrs.Set("a", nix.String("b"))
	qt.Assert(t, qt.Equals(attrs.Get("a"), nix.Expr(nix.String("b"))))
	qt.Assert(t, qt.IsNil(attrs.Get("missing")))
	qt.Assert(t, qt.Equals(attrs.Render(), "{\n  \"a\" = \"b\";\n}"))

	// Rebinding keeps the original position.
	attrs.Set("z", nix.Int(1))
	attrs.Set("a", nix.Int(2))
	qt.Assert(t, qt.Equals(attrs.Len(), 2))
	qt.Assert(t, qt.Equals(attrs.Render(), "{\n  \"a\" = 2;\n  \"z\" = 1;\n}"))

	rec := &nix.Attrs{Rec: true}
	rec.SetExpr(nix.Raw("item"), nix.Raw("value"))
	qt.Assert(t, qt.Equals(rec.Render(), "rec {\n  item = value;\n}"))
}

func TestLet(t *testing.T) {
	let := nix.NewLet(nix.Raw("value"))
	let.Bindings.SetExpr(nix.Raw("d"), nix.Raw("value"))
	let.Bindings.SetExpr(nix.Raw("a"), nix.Raw("value"))
	qt.Assert(t, qt.Equals(let.Render(), "let\n  d = value;\n  a = value;\nin\n  value"))
}

func TestSetPatternEmptyPanics(t *testing.T) {
	qt.Assert(t, qt.PanicMatches(func() {
		nix.NewSetPattern()
	}, "nix: SetPattern with no parameters"))
}

func TestRenderIsDeterministic(t *testing.T) {
	attrs := nix.NewAttrs()
	attrs.Set("list", nix.NewList(nix.String("x"), nix.Int(0x10)))
	attrs.Set("merged", nix.NewMerge(nix.NewAttrs(), attrs))
	expr := nix.NewFunc(nix.NewSetPattern(nix.Raw("lib")), attrs)
	qt.Assert(t, qt.Equals(expr.Render(), expr.Render()))
}

func TestIndent(t *testing.T) {
	qt.Assert(t, qt.Equals(nix.Indent("a\n\nb\n\n"), "  a\n  \n  b"))
	qt.Assert(t, qt.Equals(nix.IndentN("a", 3), "      a"))
	qt.Assert(t, qt.Equals(nix.Indent(""), ""))
}
