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

package lockfile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"
)

func TestPathFor(t *testing.T) {
	qt.Assert(t, qt.Equals(PathFor("/src/project.yixe"), "/src/project.yixe.lock"))
}

func TestMarshal(t *testing.T) {
	f := New()
	f.SetSource("nixpkgs", Source{Npins: map[string]any{
		"pins":    map[string]any{"nixpkgs": map[string]any{"type": "Channel"}},
		"version": 3,
	}})
	body, err := f.Marshal()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(string(body), `# THIS FILE IS AUTOMATICALLY GENERATED. DO NOT EDIT.
yixe-lock: v0
inputs:
  sources:
    nixpkgs:
      npins:
        pins:
          nixpkgs:
            type: Channel
        version: 3
`))
}

func TestUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.yixe.lock")

	_, err := Read(path)
	qt.Assert(t, qt.IsTrue(errors.Is(err, fs.ErrNotExist)))

	err = Update(path, func(f *File) error {
		f.SetSource("a", Source{Npins: map[string]any{"version": 3}})
		return nil
	})
	qt.Assert(t, qt.IsNil(err))

	err = Update(path, func(f *File) error {
		f.SetSource("b", Source{Npins: map[string]any{"version": 4}})
		return nil
	})
	qt.Assert(t, qt.IsNil(err))

	f, err := Read(path)
	qt.Assert(t, qt.IsNil(err))
	want := map[string]Source{
		"a": {Npins: map[string]any{"version": 3}},
		"b": {Npins: map[string]any{"version": 4}},
	}
	if diff := cmp.Diff(want, f.Inputs.Sources); diff != "" {
		t.Errorf("unexpected sources (-want +got):\n%s", diff)
	}

	src, ok := f.Source("a")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(src.Npins["version"], any(3)))
	_, ok = f.Source("c")
	qt.Assert(t, qt.IsFalse(ok))

	updateErr := errors.New("boom")
	err = Update(path, func(f *File) error { return updateErr })
	qt.Assert(t, qt.ErrorIs(err, updateErr))
}

func TestReadInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yixe.lock")
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte("yixe-lock: v9\n"), 0o666)))
	_, err := Read(path)
	qt.Assert(t, qt.ErrorMatches(err, `invalid lock file .*: unsupported version "v9"`))

	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte("inputs: [\n"), 0o666)))
	_, err = Read(path)
	qt.Assert(t, qt.ErrorMatches(err, `invalid lock file .*: yaml: .*`))
}
