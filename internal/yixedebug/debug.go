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

// Package yixedebug holds the YIXE_DEBUG settings.
package yixedebug

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/shlex"

	"yixe.dev/go/internal/envflag"
)

// EnvVar is the environment variable holding the flags.
const EnvVar = "YIXE_DEBUG"

// Flags holds the set of global YIXE_DEBUG flags. It is initialized by Init.
var Flags Config

// Config holds the set of known YIXE_DEBUG flags.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `envflag:"default:info"`

	// LogJSON switches log output to JSON.
	LogJSON bool

	// DumpIR logs the intermediate representation of every parsed document.
	DumpIR bool

	// Npins is the command line used to run npins. It is split like a
	// shell would, so wrappers such as `nix run nixpkgs#npins --` work.
	Npins string `envflag:"default:npins"`
}

// Init initializes Flags from the environment. Later calls return the
// result of the first one.
func Init() error {
	return initOnce()
}

var initOnce = sync.OnceValue(func() error {
	return envflag.Init(&Flags, EnvVar)
})

// Level returns the slog level named by c.LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%s: %w", EnvVar, err)
	}
	return l, nil
}

// NewLogger returns a logger writing to w according to c.
func (c Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// NpinsCommand returns the npins command line as arguments.
func (c Config) NpinsCommand() ([]string, error) {
	args, err := shlex.Split(c.Npins)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid npins command %q: %w", EnvVar, c.Npins, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%s: empty npins command", EnvVar)
	}
	return args, nil
}
