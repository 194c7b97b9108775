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

package nix

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQuote(t *testing.T) {
	testCases := []struct {
		in  string
		out string
	}{
		{in: "a", out: `"a"`},
		{in: "", out: `""`},
		{in: "string value", out: `"string value"`},
		{in: "\"", out: `"\""`},
		{in: "\\", out: `"\\"`},
		{in: "a\nb\tc\r", out: `"a\nb\tc\r"`},
		{in: "\u263a", out: `"☺"`},
		{in: "$ {}", out: `"$ {}"`},
		{in: "<&>", out: `"<&>"`},
		{in: "\x1bhi", out: `"${builtins.fromJSON "\"\\u001bhi\""}"`},
		{in: "\x00", out: `"${builtins.fromJSON "\"\\u0000\""}"`},
		{in: "\b", out: `"${builtins.fromJSON "\"\\u0008\""}"`},
		{
			in:  "echo ${builtins.nixVersion}",
			out: `"${builtins.fromJSON "\"echo \${builtins.nixVersion}\""}"`,
		},
		{
			in:  "funny string: ${} ",
			out: `"${builtins.fromJSON "\"funny string: \${} \""}"`,
		},
		{
			// A literal \u in the input is escaped as \\u, which still
			// takes the decoding route.
			in:  `\u`,
			out: `"${builtins.fromJSON "\"\\\\u\""}"`,
		},
	}
	for _, tc := range testCases {
		if got := Quote(tc.in); got != tc.out {
			t.Errorf("Quote(%q):\n%s", tc.in, cmp.Diff(tc.out, got))
		}
	}
}

// TestQuoteRoundTrip evaluates the two string forms that Quote produces
// with a small model of Nix string literals and builtins.fromJSON.
func TestQuoteRoundTrip(t *testing.T) {
	inputs := []string{
		"plain",
		"quote \" and backslash \\",
		"tab\tnewline\ncr\r",
		"${interpolation}",
		"$${double}",
		"\x01\x02\x1f\x7f",
		"unicode ☺ \u2028",
		`\u0041`,
		"${",
	}
	for _, in := range inputs {
		out := Quote(in)
		got, err := evalNixString(out)
		if err != nil {
			t.Errorf("Quote(%q) = %s: %v", in, out, err)
			continue
		}
		if got != in {
			t.Errorf("Quote(%q) = %s evaluates to %q", in, out, got)
		}
	}
}

func evalNixString(lit string) (string, error) {
	const prefix, suffix = `"${builtins.fromJSON `, `}"`
	if strings.HasPrefix(lit, prefix) && strings.HasSuffix(lit, suffix) {
		inner := unquoteNix(lit[len(prefix) : len(lit)-len(suffix)])
		var s string
		err := json.Unmarshal([]byte(inner), &s)
		return s, err
	}
	return unquoteNix(lit), nil
}

// unquoteNix interprets a double-quoted Nix string without antiquotations.
func unquoteNix(lit string) string {
	lit = lit[1 : len(lit)-1]
	var b strings.Builder
	for i := 0; i < len(lit); i++ {
		c := lit[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		switch lit[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(lit[i])
		}
	}
	return b.String()
}
