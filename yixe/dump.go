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

	"github.com/kr/pretty"
)

// outline is a printable summary of a node, without the references to its
// document.
type outline struct {
	Type     string
	Pos      string
	Key      string
	Value    string
	Children []outline
}

func outlineOf(n Node) outline {
	o := outline{Type: n.Type(), Pos: n.Pos().String()}
	switch n := n.(type) {
	case *String:
		o.Value = fmt.Sprintf("%q", n.Value)
	case *Number:
		o.Value = fmt.Sprint(n.Value)
	case *Boolean:
		o.Value = fmt.Sprint(n.Value)
	case *Path:
		o.Value = n.Value()
	case *Tag:
		o.Value = n.Name
		o.Children = []outline{outlineOf(n.Value)}
	case *List:
		for _, item := range n.Items {
			o.Children = append(o.Children, outlineOf(item))
		}
	case *Root:
		o.Value = n.DocumentType + " " + n.VersionString()
		o.Children = pairsOutline(&n.Mapping)
	case *Inputs:
		o.Children = pairsOutline(&n.Mapping)
	case *Outputs:
		o.Children = pairsOutline(&n.Mapping)
	case *Mapping:
		o.Children = pairsOutline(n)
	}
	return o
}

func pairsOutline(m *Mapping) []outline {
	var children []outline
	for _, p := range m.Pairs() {
		c := outlineOf(p.Value)
		c.Key = p.Name()
		children = append(children, c)
	}
	return children
}

// Dump returns a human readable description of the intermediate
// representation of the document.
func (d *Document) Dump() string {
	return fmt.Sprintf("%# v", pretty.Formatter(outlineOf(d.root)))
}
