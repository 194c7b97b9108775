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

import "strings"

// Antiquote is the sequence starting an interpolation in a Nix string.
const Antiquote = "${"

const hexDigits = "0123456789abcdef"

// Quote returns s as a Nix string literal.
//
// The literal is the minimal JSON encoding of s, which Nix reads back
// unchanged as long as it holds no \u escape and no antiquotation. For any
// other string the JSON encoding is itself JSON encoded, its antiquotations
// are escaped, and the result is decoded at evaluation time:
//
//	"${builtins.fromJSON "\"echo \\${builtins.nixVersion}\""}"
func Quote(s string) string {
	q := QuoteJSON(s)
	if !strings.Contains(q, `\u`) && !strings.Contains(q, Antiquote) {
		return q
	}
	qq := strings.ReplaceAll(QuoteJSON(q), Antiquote, `\`+Antiquote)
	return `"${builtins.fromJSON ` + qq + `}"`
}

// QuoteJSON returns s as a JSON string literal with minimal escaping:
// quotes, backslashes and the common whitespace escapes use their short
// forms, remaining control characters are written as \u00XX, and all other
// bytes, including non-ASCII UTF-8, are written as is.
func QuoteJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hexDigits[c>>4])
				b.WriteByte(hexDigits[c&0xf])
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
