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
	"testing"

	"github.com/go-quicktest/qt"
)

func TestTagSetFind(t *testing.T) {
	tests := []struct {
		set  *TagSet
		tag  string
		kind TagKind
		ok   bool
	}{
		{NixInterop, "!nix", NixRaw, true},
		{NixInterop, "!call", NixABICall, true},
		{NixInterop, "!nix.pkgs.hello", NixValue, true},
		{NixInterop, "!nixpkgs", 0, false},
		{NixInterop, "!arguments.pkgs", 0, false},
		{BaseMagic, "!nix", NixRaw, true},
		{BaseMagic, "!nix.builtins.throw", NixValue, true},
		{BaseMagic, "!arguments.pkgs", ArgumentsRef, true},
		{BaseMagic, "!inputs.nixpkgs", InputsRef, true},
		{BaseMagic, "!yixe.import-document", ImportDocument, true},
		{BaseMagic, "!yixe.import-documents", 0, false},
		{BaseMagic, "!project.shell", 0, false},
		{BaseMagic, "!fleet.vm", 0, false},
		{Project, "!project.shell", ProjectShell, true},
		{Project, "!inputs.nixpkgs.hello", InputsRef, true},
		{Project, "!call", NixABICall, true},
		{Project, "!fleet.system", 0, false},
		{Fleet, "!fleet.vm", FleetVM, true},
		{Fleet, "!fleet.system", FleetSystem, true},
		{Fleet, "!yixe.import-document", ImportDocument, true},
		{Fleet, "!project.shell", 0, false},
		{Fleet, "!!str", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.set.String()+"/"+tc.tag, func(t *testing.T) {
			kind, ok := tc.set.Find(tc.tag)
			qt.Assert(t, qt.Equals(ok, tc.ok))
			if ok {
				qt.Assert(t, qt.Equals(kind, tc.kind))
			}
		})
	}
}

func TestTagKindString(t *testing.T) {
	qt.Check(t, qt.Equals(NixValue.String(), "NixValue"))
	qt.Check(t, qt.Equals(ImportDocument.String(), "YixeImportDocument"))
	qt.Check(t, qt.Equals(TagKind(100).String(), "TagKind(100)"))
}

func TestDocumentKindTagSets(t *testing.T) {
	want := map[string]*TagSet{
		TypeDocument:   BaseMagic,
		TypeExpression: BaseMagic,
		TypePackage:    BaseMagic,
		TypeModule:     BaseMagic,
		TypeProject:    Project,
		TypeFleet:      Fleet,
	}
	qt.Assert(t, qt.HasLen(documentKinds, len(want)))
	for name, set := range want {
		kind, ok := lookupKind(name)
		qt.Assert(t, qt.IsTrue(ok))
		qt.Check(t, qt.Equals(kind.tags, set), qt.Commentf("%s", name))
	}
	_, ok := lookupKind("yixe-unknown")
	qt.Check(t, qt.IsFalse(ok))
}
