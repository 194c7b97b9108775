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
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"yixe.dev/go/yixe/errors"
	"yixe.dev/go/yixe/token"
)

var (
	numberRx = regexp.MustCompile(`^(0|-?[1-9][0-9]*|-?0x[0-9a-fA-F]+|-?0b[01]+|-?0[1-7][0-7]*)$`)
	pathRx   = regexp.MustCompile(`^(\.\.?|~)?(/[a-zA-Z0-9._+-]+)+$`)
)

const quotedStyles = yaml.SingleQuotedStyle | yaml.DoubleQuotedStyle | yaml.LiteralStyle | yaml.FoldedStyle

// decoder builds the IR of a document from its YAML nodes.
type decoder struct {
	doc  *Document
	root *Root
}

func (d *decoder) base(yn *yaml.Node) base {
	return base{doc: d.doc, node: yn}
}

// posErrorf returns an error about a YAML node that has no IR node yet.
func (d *decoder) posErrorf(kind error, yn *yaml.Node, format string, args ...any) error {
	return errors.Newf(kind, errors.Site{
		Type: kindName(yn.Kind),
		Pos:  token.Position{Filename: d.doc.Path, Line: yn.Line, Column: yn.Column},
	}, format, args...)
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "Document"
	case yaml.SequenceNode:
		return "Sequence"
	case yaml.MappingNode:
		return "Mapping"
	case yaml.ScalarNode:
		return "Scalar"
	case yaml.AliasNode:
		return "Alias"
	}
	return "Unknown"
}

// node builds the IR node for yn, resolving its tag if it has one.
func (d *decoder) node(yn *yaml.Node) (Node, error) {
	if yn.Kind == yaml.AliasNode {
		return nil, d.posErrorf(errors.ErrStructure, yn, "aliases are not supported")
	}
	if yn.Style&yaml.TaggedStyle != 0 {
		return d.tag(yn)
	}
	switch yn.Kind {
	case yaml.ScalarNode:
		return d.scalar(yn)
	case yaml.SequenceNode:
		return d.list(yn)
	case yaml.MappingNode:
		return d.mapping(yn)
	}
	return nil, d.posErrorf(errors.ErrStructure, yn, "unexpected yaml node kind %d", yn.Kind)
}

func (d *decoder) tag(yn *yaml.Node) (Node, error) {
	if d.root.TagSet == nil {
		return nil, d.posErrorf(errors.ErrTag, yn, "tag %s used before the document type is declared", yn.Tag)
	}
	kind, ok := d.root.TagSet.Find(yn.Tag)
	if !ok {
		return nil, d.posErrorf(errors.ErrTag, yn, "could not find type to handle tag %q in tag set %s", yn.Tag, d.root.TagSet)
	}
	untagged := *yn
	untagged.Tag = ""
	untagged.Style &^= yaml.TaggedStyle
	v, err := d.node(&untagged)
	if err != nil {
		return nil, err
	}
	return &Tag{base: d.base(yn), Kind: kind, Name: yn.Tag, Value: v}, nil
}

// scalar classifies an untagged scalar by its value.
func (d *decoder) scalar(yn *yaml.Node) (Node, error) {
	b := d.base(yn)
	v := yn.Value
	if yn.Style&quotedStyles != 0 {
		return &String{base: b, Value: v}, nil
	}
	switch {
	case v == "" || v == "null":
		return &Null{base: b}, nil
	case v == "true" || v == "false":
		return &Boolean{base: b, Value: v == "true"}, nil
	case numberRx.MatchString(v):
		n, err := parseNumber(v)
		if err != nil {
			return nil, d.posErrorf(errors.ErrStructure, yn, "invalid number %s: %v", v, err)
		}
		return &Number{base: b, Value: n}, nil
	case pathRx.MatchString(v):
		return &Path{base: b}, nil
	}
	return &String{base: b, Value: v}, nil
}

// parseNumber parses an integer in any of the notations of numberRx.
func parseNumber(s string) (int64, error) {
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	base := 10
	switch {
	case strings.HasPrefix(digits, "0x"):
		base, digits = 16, digits[2:]
	case strings.HasPrefix(digits, "0b"):
		base, digits = 2, digits[2:]
	case len(digits) > 1 && digits[0] == '0':
		base, digits = 8, digits[1:]
	}
	if neg {
		digits = "-" + digits
	}
	return strconv.ParseInt(digits, base, 64)
}

func (d *decoder) list(yn *yaml.Node) (*List, error) {
	l := &List{base: d.base(yn), Items: make([]Node, 0, len(yn.Content))}
	for _, c := range yn.Content {
		n, err := d.node(c)
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, n)
	}
	return l, nil
}

func (d *decoder) mapping(yn *yaml.Node) (*Mapping, error) {
	m := &Mapping{base: d.base(yn)}
	if err := d.fill(m, yn); err != nil {
		return nil, err
	}
	return m, nil
}

// fill adds the pairs of yn to m.
func (d *decoder) fill(m *Mapping, yn *yaml.Node) error {
	for i := 0; i+1 < len(yn.Content); i += 2 {
		k, err := d.node(yn.Content[i])
		if err != nil {
			return err
		}
		v, err := d.node(yn.Content[i+1])
		if err != nil {
			return err
		}
		if err := m.add(Pair{Key: k, Value: v}); err != nil {
			return err
		}
	}
	return nil
}

// rootMapping builds the Root of a document from its top-level mapping.
func (d *decoder) rootMapping(yn *yaml.Node) (*Root, error) {
	r := &Root{Mapping: Mapping{base: d.base(yn)}}
	d.root = r
	for i := 0; i+1 < len(yn.Content); i += 2 {
		kn, vn := yn.Content[i], yn.Content[i+1]
		k, err := d.node(kn)
		if err != nil {
			return nil, err
		}
		if kn.Value == "input" {
			return nil, errorf(errors.ErrStructure, r,
				"The singular `input` name is reserved at the moment. Did you mean `inputs`?").
				WithTarget(site(k))
		}

		var v Node
		switch kn.Value {
		case "inputs":
			m, err := d.typedMapping(kn, vn)
			if err != nil {
				return nil, err
			}
			v = &Inputs{Mapping: *m}
		case "outputs":
			m, err := d.typedMapping(kn, vn)
			if err != nil {
				return nil, err
			}
			v = &Outputs{Mapping: *m}
		default:
			v, err = d.node(vn)
			if err != nil {
				return nil, err
			}
		}

		// The first pair declares the document type and version.
		if r.DocumentType == "" {
			if err := r.setDocumentType(k, v); err != nil {
				return nil, err
			}
			continue
		}
		if err := r.add(Pair{Key: k, Value: v}); err != nil {
			return nil, err
		}
	}
	if r.DocumentType == "" {
		return nil, errorf(errors.ErrStructure, r, "missing document type declaration")
	}
	return r, nil
}

// typedMapping builds the value of a key that must hold a mapping. An empty
// value is taken as an empty mapping.
func (d *decoder) typedMapping(kn, vn *yaml.Node) (*Mapping, error) {
	switch {
	case vn.Kind == yaml.MappingNode && vn.Style&yaml.TaggedStyle == 0:
		return d.mapping(vn)
	case vn.Kind == yaml.ScalarNode && vn.Value == "" && vn.Style&(quotedStyles|yaml.TaggedStyle) == 0:
		return &Mapping{base: d.base(vn)}, nil
	}
	return nil, d.posErrorf(errors.ErrStructure, vn, "%s must be a Mapping", kn.Value)
}
