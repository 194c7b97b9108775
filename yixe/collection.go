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
	"yixe.dev/go/nix"
	"yixe.dev/go/yixe/errors"
)

// A Pair is a key/value entry of a [Mapping].
type Pair struct {
	Key   Node
	Value Node
}

// Name returns the plain string value of the key.
func (p Pair) Name() string { return p.Key.YAML().Value }

// Mapping is an ordered set of key/value pairs. Keys are unique by their
// plain string value, which is also how they are looked up.
type Mapping struct {
	base
	pairs []Pair
	index map[string]int
}

func (*Mapping) Type() string { return "Mapping" }

// add appends a pair, failing if its key is already present.
func (m *Mapping) add(p Pair) error {
	name := p.Name()
	if i, ok := m.index[name]; ok {
		return errorf(errors.ErrStructure, m, "duplicate key %q", name).
			WithTarget(site(m.pairs[i].Key))
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}
	m.index[name] = len(m.pairs)
	m.pairs = append(m.pairs, p)
	return nil
}

// Len reports the number of pairs.
func (m *Mapping) Len() int { return len(m.pairs) }

// Pairs returns the pairs in document order.
func (m *Mapping) Pairs() []Pair { return m.pairs }

// Keys returns the plain string keys in document order.
func (m *Mapping) Keys() []string {
	keys := make([]string, len(m.pairs))
	for i, p := range m.pairs {
		keys[i] = p.Name()
	}
	return keys
}

// Get returns the value for key, or nil.
func (m *Mapping) Get(key string) Node {
	if i, ok := m.index[key]; ok {
		return m.pairs[i].Value
	}
	return nil
}

// Delete removes key, if present.
func (m *Mapping) Delete(key string) {
	i, ok := m.index[key]
	if !ok {
		return
	}
	m.pairs = append(m.pairs[:i:i], m.pairs[i+1:]...)
	delete(m.index, key)
	for j := i; j < len(m.pairs); j++ {
		m.index[m.pairs[j].Name()] = j
	}
}

// Consume removes key and returns its value, or nil if it was absent.
func (m *Mapping) Consume(key string) Node {
	v := m.Get(key)
	m.Delete(key)
	return v
}

// clone returns a copy of m that can be modified independently. Values
// are shared.
func (m *Mapping) clone() *Mapping {
	c := &Mapping{base: m.base}
	for _, p := range m.pairs {
		c.add(p)
	}
	return c
}

func (m *Mapping) expr(s *session) (nix.Expr, error) {
	attrs := nix.NewAttrs()
	for _, p := range m.pairs {
		v, err := p.Value.expr(s)
		if err != nil {
			return nil, err
		}
		if k, ok := p.Key.(*Tag); ok {
			kx, err := k.expr(s)
			if err != nil {
				return nil, err
			}
			attrs.SetExpr(kx, v)
			continue
		}
		attrs.Set(p.Name(), v)
	}
	return attrs, nil
}

func (m *Mapping) resolvePaths(dir string) {
	for _, p := range m.pairs {
		p.Value.resolvePaths(dir)
	}
}

// List is a sequence of nodes.
type List struct {
	base
	Items []Node
}

func (*List) Type() string { return "List" }

// Prepend adds n at the start of the list.
func (l *List) Prepend(n Node) {
	l.Items = append([]Node{n}, l.Items...)
}

// Append adds n at the end of the list.
func (l *List) Append(n Node) {
	l.Items = append(l.Items, n)
}

func (l *List) exprs(s *session) ([]nix.Expr, error) {
	xs := make([]nix.Expr, len(l.Items))
	for i, n := range l.Items {
		x, err := n.expr(s)
		if err != nil {
			return nil, err
		}
		xs[i] = x
	}
	return xs, nil
}

func (l *List) expr(s *session) (nix.Expr, error) {
	xs, err := l.exprs(s)
	if err != nil {
		return nil, err
	}
	return nix.NewList(xs...), nil
}

func (l *List) resolvePaths(dir string) {
	for _, n := range l.Items {
		n.resolvePaths(dir)
	}
}
