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

package envflag

import (
	"testing"

	"github.com/go-quicktest/qt"
)

type testFlags struct {
	DumpIR   bool
	LogLevel string `envflag:"default:info"`
	Depth    int    `envflag:"default:3"`

	hidden bool
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		env     string
		want    testFlags
		wantErr string
	}{{
		name: "Empty",
		env:  "",
		want: testFlags{LogLevel: "info", Depth: 3},
	}, {
		name: "JustCommas",
		env:  ",, ,",
		want: testFlags{LogLevel: "info", Depth: 3},
	}, {
		name: "BoolShorthand",
		env:  "dumpir",
		want: testFlags{DumpIR: true, LogLevel: "info", Depth: 3},
	}, {
		name: "Values",
		env:  "dumpir=false,loglevel=debug,depth=7",
		want: testFlags{LogLevel: "debug", Depth: 7},
	}, {
		name:    "Unknown",
		env:     "ratchet",
		want:    testFlags{LogLevel: "info", Depth: 3},
		wantErr: `unknown flag "ratchet"`,
	}, {
		name:    "UnexportedIsUnknown",
		env:     "hidden",
		want:    testFlags{LogLevel: "info", Depth: 3},
		wantErr: `unknown flag "hidden"`,
	}, {
		name:    "MissingValue",
		env:     "loglevel",
		want:    testFlags{LogLevel: "info", Depth: 3},
		wantErr: `value needed for string flag "loglevel"`,
	}, {
		name:    "BadInt",
		env:     "depth=deep,dumpir",
		want:    testFlags{DumpIR: true, LogLevel: "info", Depth: 3},
		wantErr: `invalid value: invalid int value for depth: .*`,
	}}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var flags testFlags
			err := Parse(&flags, tc.env)
			if tc.wantErr != "" {
				qt.Assert(t, qt.ErrorMatches(err, tc.wantErr))
			} else {
				qt.Assert(t, qt.IsNil(err))
			}
			qt.Assert(t, qt.Equals(flags, tc.want))
		})
	}
}

func TestInvalidIs(t *testing.T) {
	var flags testFlags
	err := Parse(&flags, "depth=x")
	qt.Assert(t, qt.ErrorIs(err, ErrInvalid))
}

func TestInit(t *testing.T) {
	t.Setenv("TEST_YIXE_FLAGS", "loglevel=warn")
	var flags testFlags
	qt.Assert(t, qt.IsNil(Init(&flags, "TEST_YIXE_FLAGS")))
	qt.Assert(t, qt.Equals(flags.LogLevel, "warn"))

	t.Setenv("TEST_YIXE_FLAGS", "nope")
	qt.Assert(t, qt.ErrorMatches(Init(&flags, "TEST_YIXE_FLAGS"),
		`cannot parse TEST_YIXE_FLAGS: unknown flag "nope"`))
}
