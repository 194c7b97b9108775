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

package token

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestPositionString(t *testing.T) {
	tests := []struct {
		pos  Position
		want string
	}{
		{Position{}, "-"},
		{Position{Filename: "a.yixe"}, "a.yixe"},
		{Position{Line: 2, Column: 3}, "2:3"},
		{Position{Filename: "a.yixe", Line: 2, Column: 3}, "a.yixe:2:3"},
	}
	for _, tc := range tests {
		qt.Check(t, qt.Equals(tc.pos.String(), tc.want))
	}
	qt.Check(t, qt.IsFalse(NoPos.IsValid()))
}
