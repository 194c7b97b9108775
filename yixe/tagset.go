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

import "strings"

// A matcher selects a tag kind for the tag strings it matches.
type matcher struct {
	kind   TagKind
	exact  string
	prefix string
}

func (m matcher) match(tag string) bool {
	if m.prefix != "" {
		return strings.HasPrefix(tag, m.prefix)
	}
	return tag == m.exact
}

func exact(kind TagKind, tag string) matcher { return matcher{kind: kind, exact: tag} }
func prefixed(kind TagKind, tag string) matcher { return matcher{kind: kind, prefix: tag} }

// A TagSet is the set of tags a document may use.
//
// Its own matchers are tried in order, so a catch-all matcher must come
// after the more specific ones sharing its prefix. Included sets are tried
// next, in order.
type TagSet struct {
	name     string
	matchers []matcher
	includes []*TagSet
}

// newTagSet returns a tag set named name, extending the included sets.
func newTagSet(name string, includes []*TagSet, matchers ...matcher) *TagSet {
	return &TagSet{name: name, matchers: matchers, includes: includes}
}

func (s *TagSet) String() string { return s.name }

// Find returns the kind of tag handling tag.
func (s *TagSet) Find(tag string) (TagKind, bool) {
	for _, m := range s.matchers {
		if m.match(tag) {
			return m.kind, true
		}
	}
	for _, inc := range s.includes {
		if k, ok := inc.Find(tag); ok {
			return k, true
		}
	}
	return 0, false
}

// The built-in tag sets.
var (
	// NixInterop holds the tags embedding Nix code.
	NixInterop = newTagSet("NixInterop", nil,
		exact(NixABICall, "!call"),
		exact(NixRaw, "!nix"),
		// Catches all leftover `!nix.` tags.
		prefixed(NixValue, "!nix."),
	)

	// BaseMagic is the default tag set of documents.
	BaseMagic = newTagSet("BaseMagic", []*TagSet{NixInterop},
		prefixed(ArgumentsRef, "!arguments."),
		prefixed(InputsRef, "!inputs."),
		exact(ImportDocument, "!yixe.import-document"),
	)

	// Project is the tag set of yixe-project documents.
	Project = newTagSet("Project", []*TagSet{BaseMagic},
		exact(ProjectShell, "!project.shell"),
	)

	// Fleet is the tag set of yixe-nixos-fleet documents.
	Fleet = newTagSet("Fleet", []*TagSet{BaseMagic},
		exact(FleetVM, "!fleet.vm"),
		exact(FleetSystem, "!fleet.system"),
	)
)
