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

package yixe_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"yixe.dev/go/yixe"
	"yixe.dev/go/yixe/errors"
)

// updateGoldenFiles rewrites the expected results of the transpile tests.
var updateGoldenFiles = os.Getenv("YIXE_UPDATE") != ""

// TestTranspile runs the archives in testdata/transpile. Each archive holds
// the document in.yixe, the documents it imports, and either the expected
// Nix code in out.nix or the expected error report in error, where $WORK
// stands for the directory holding the documents.
func TestTranspile(t *testing.T) {
	files, err := filepath.Glob("testdata/transpile/*.txtar")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Not(qt.HasLen(files, 0)))

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".txtar")
		t.Run(name, func(t *testing.T) {
			a, err := txtar.ParseFile(file)
			qt.Assert(t, qt.IsNil(err))

			dir := t.TempDir()
			want := -1
			for i, f := range a.Files {
				switch f.Name {
				case "out.nix", "error":
					want = i
				default:
					err := os.WriteFile(filepath.Join(dir, f.Name), f.Data, 0o666)
					qt.Assert(t, qt.IsNil(err))
				}
			}
			qt.Assert(t, qt.Not(qt.Equals(want, -1)), qt.Commentf("archive has neither out.nix nor error"))

			gotName, got := "out.nix", ""
			doc, err := yixe.Load(filepath.Join(dir, "in.yixe"), nil)
			if err == nil {
				got, err = doc.Transpile(context.Background())
			}
			if err != nil {
				gotName, got = "error", strings.ReplaceAll(errors.Details(err), dir, "$WORK")
			}
			got += "\n"

			if updateGoldenFiles {
				a.Files[want] = txtar.File{Name: gotName, Data: []byte(got)}
				err := os.WriteFile(file, txtar.Format(a), 0o666)
				qt.Assert(t, qt.IsNil(err))
				return
			}
			qt.Assert(t, qt.Equals(gotName, a.Files[want].Name), qt.Commentf("%s", got))
			if diff := cmp.Diff(string(a.Files[want].Data), got); diff != "" {
				t.Errorf("unexpected %s (-want +got):\n%s", gotName, diff)
			}
		})
	}
}

// TestTranspileIsRepeatable checks that transpiling does not alter the
// document.
func TestTranspileIsRepeatable(t *testing.T) {
	a, err := txtar.ParseFile("testdata/transpile/package.txtar")
	qt.Assert(t, qt.IsNil(err))
	doc, err := yixe.Parse("package.yixe", a.Files[0].Data, nil)
	qt.Assert(t, qt.IsNil(err))

	ctx := context.Background()
	first, err := doc.Transpile(ctx)
	qt.Assert(t, qt.IsNil(err))
	second, err := doc.Transpile(ctx)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(second, first))
}
