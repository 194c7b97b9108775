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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"yixe.dev/go/internal/lockfile"
	"yixe.dev/go/internal/npins"
	"yixe.dev/go/nix"
	"yixe.dev/go/yixe/errors"
)

// Inputs describes the sources a document depends on:
//
//	inputs:
//	  sources:
//	    nixpkgs:
//	      npins: { channel: nixos-24.05 }
type Inputs struct {
	Mapping
}

func (*Inputs) Type() string { return "Inputs" }

// An input is a single source of [Inputs].
type input struct {
	name string
	node Node

	// Type is the input type, such as nixos-channel or npins.
	Type string

	// Value holds the settings of the input type.
	Value Node
}

// sources returns the inputs declared under `sources`.
func (in *Inputs) sources() ([]input, error) {
	n := in.Get("sources")
	if n == nil {
		return nil, nil
	}
	m, ok := n.(*Mapping)
	if !ok {
		return nil, errorf(errors.ErrStructure, in, "`inputs.sources` must be a mapping").WithTarget(site(n))
	}
	inputs := make([]input, 0, m.Len())
	for _, p := range m.Pairs() {
		def, ok := p.Value.(*Mapping)
		if !ok || def.Len() == 0 {
			return nil, errorf(errors.ErrStructure, in, "input %q must be a mapping from its type to its settings", p.Name()).
				WithTarget(site(p.Value))
		}
		first := def.Pairs()[0]
		inputs = append(inputs, input{
			name:  p.Name(),
			node:  p.Value,
			Type:  first.Name(),
			Value: first.Value,
		})
	}
	return inputs, nil
}

func (in *Inputs) expr(s *session) (nix.Expr, error) {
	inputs, err := in.sources()
	if err != nil {
		return nil, err
	}
	attrs := nix.NewAttrs()
	for _, src := range inputs {
		x, err := in.inputExpr(s, src)
		if err != nil {
			return nil, err
		}
		attrs.Set(src.name, x)
	}
	return attrs, nil
}

func (in *Inputs) inputExpr(s *session, src input) (nix.Expr, error) {
	switch src.Type {
	case "nixos-channel":
		channel, ok := scalarText(src.Value)
		if !ok {
			return nil, errorf(errors.ErrStructure, in, "nixos-channel input %q must name a channel", src.name).
				WithTarget(site(src.Value))
		}
		url := "https://channels.nixos.org/" + channel + "/nixexprs.tar.xz"
		return nix.NewCall(
			nix.Import,
			nix.NewCall(nix.Raw("builtins.fetchTarball"), nix.String(url)),
			nix.NewAttrs(),
		), nil
	case "npins":
		pin, err := in.npinsInput(src)
		if err != nil {
			return nil, err
		}
		return pin.expr(s)
	}
	return nil, errorf(errors.ErrStructure, in, "No type to handle input type %q", src.Type).
		WithTarget(site(src.node))
}

// npinsInput is an input locked with npins.
type npinsInput struct {
	in   *Inputs
	name string

	// kind is the npins pin type, such as channel.
	kind     string
	settings Node
}

func (in *Inputs) npinsInput(src input) (*npinsInput, error) {
	m, ok := src.Value.(*Mapping)
	if !ok || m.Len() == 0 {
		return nil, errorf(errors.ErrStructure, in, "npins input %q must be a mapping from its pin type to its settings", src.name).
			WithTarget(site(src.Value))
	}
	first := m.Pairs()[0]
	return &npinsInput{in: in, name: src.name, kind: first.Name(), settings: first.Value}, nil
}

// addArgs returns the arguments of `npins add` following the pin type.
func (p *npinsInput) addArgs() ([]string, error) {
	switch p.kind {
	case "channel":
		channel, ok := scalarText(p.settings)
		if !ok {
			return nil, errorf(errors.ErrStructure, p.in, "npins channel input %q must name a channel", p.name).
				WithTarget(site(p.settings))
		}
		return []string{channel}, nil
	case "github":
		return nil, errorf(errors.ErrUnsupported, p.in, "the github fetching scheme for npins is not implemented").
			WithTarget(site(p.settings))
	}
	return nil, errorf(errors.ErrUnsupported, p.in, "the %s fetching scheme for npins is not implemented", p.kind).
		WithTarget(site(p.settings))
}

// lockData returns the locked npins data of the input.
func (p *npinsInput) lockData(s *session) (map[string]any, error) {
	path := p.in.doc.LockPath()
	lf, err := s.doc.lockFile()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errorf(errors.ErrLock, p.in,
			"No lock file found (%q)\nPlease use `yixe lock` to update the lock file.", path)
	}
	if err != nil {
		return nil, errorf(errors.ErrLock, p.in, "cannot read lock file").Wrap(err)
	}
	src, ok := lf.Source(p.name)
	if !ok {
		return nil, errorf(errors.ErrLock, p.in,
			"Lock invalid for input %s.\n  No data locked for this input.\nHint: Run `yixe lock` on this document.", p.name)
	}
	if src.Npins == nil {
		return nil, errorf(errors.ErrLock, p.in,
			"Invalid data in lock file for %q, expected to see `npins`, but have not found it.", p.name)
	}
	return src.Npins, nil
}

// validate checks that the locked data matches the input.
func (p *npinsInput) validate(data map[string]any) error {
	args, err := p.addArgs()
	if err != nil {
		return err
	}
	pins, _ := data["pins"].(map[string]any)
	pin, _ := pins[p.name].(map[string]any)

	var problems []string
	if pin == nil {
		problems = append(problems, "No pin locked under this name.")
	} else if p.kind == "channel" {
		if name := fmt.Sprint(pin["name"]); name != args[0] {
			problems = append(problems, strings.Join([]string{
				"Channel name in Yixe document does not match locked channel name.",
				"    " + args[0] + " != " + name,
			}, "\n"))
		}
		if typ := fmt.Sprint(pin["type"]); typ != npins.ChannelType {
			problems = append(problems, strings.Join([]string{
				"Locked type is not a channel.",
				"    Found: " + typ,
			}, "\n"))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return errorf(errors.ErrLock, p.in, "%s", strings.Join([]string{
		"Lock invalid for input " + p.name + ".",
		nix.Indent(strings.Join(problems, "\n")),
		"Hint: Run `yixe lock` on this document.",
	}, "\n"))
}

func (p *npinsInput) expr(s *session) (nix.Expr, error) {
	data, err := p.lockData(s)
	if err != nil {
		return nil, err
	}
	if err := p.validate(data); err != nil {
		return nil, err
	}
	stub, err := s.doc.npins().Stub(s.ctx)
	if err != nil {
		return nil, errorf(errors.ErrLock, p.in, "cannot generate the npins stub").Wrap(err)
	}
	js, err := marshalJSON(data)
	if err != nil {
		return nil, errorf(errors.ErrLock, p.in, "cannot encode lock data of %s", p.name).Wrap(err)
	}
	sources := nix.NewCall(nix.Raw(stub), nix.String(js))
	return nix.NewCall(
		nix.Import,
		nix.Raw(sources.Render()+"."+p.name),
		nix.NewAttrs(),
	), nil
}

// lock returns fresh lock data for the input.
func (p *npinsInput) lock(ctx context.Context, tool *npins.Tool) (lockfile.Source, error) {
	args, err := p.addArgs()
	if err != nil {
		return lockfile.Source{}, err
	}
	data, err := tool.Lock(ctx, p.name, p.kind, args...)
	if err != nil {
		return lockfile.Source{}, errorf(errors.ErrLock, p.in, "cannot lock input %s", p.name).Wrap(err)
	}
	return lockfile.Source{Npins: data}, nil
}

// marshalJSON encodes v without escaping HTML characters.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// updateLocks refreshes the lock data of every locked input.
func (in *Inputs) updateLocks(ctx context.Context, tool *npins.Tool) error {
	inputs, err := in.sources()
	if err != nil {
		return err
	}
	logger := in.doc.logger()
	path := in.doc.LockPath()
	return lockfile.Update(path, func(lf *lockfile.File) error {
		for _, src := range inputs {
			switch src.Type {
			case "npins":
			case "nixos-channel":
				continue
			default:
				return errorf(errors.ErrStructure, in, "No type to handle input type %q", src.Type).
					WithTarget(site(src.node))
			}
			pin, err := in.npinsInput(src)
			if err != nil {
				return err
			}
			logger.Info("updating input", "input", src.name, "lockfile", path)
			locked, err := pin.lock(ctx, tool)
			if err != nil {
				return err
			}
			lf.SetSource(src.name, locked)
		}
		return nil
	})
}
