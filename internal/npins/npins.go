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

// Package npins drives the npins pinning tool.
//
// npins is run in throwaway directories only: once to obtain the Nix code
// that reads its lock data, which is embedded in transpiled documents, and
// once per input to obtain fresh pin data for a Yixe lock file.
package npins

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"yixe.dev/go/yixe/errors"
)

// ChannelType is the npins type of a channel pin, as found in lock data.
const ChannelType = "Channel"

// A Runner runs a command line and returns its combined output.
type Runner interface {
	Run(ctx context.Context, args []string) ([]byte, error)
}

// ExecRunner runs commands as subprocesses.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
}

// Tool runs npins.
type Tool struct {
	// Command is the npins command line, "npins" if empty.
	Command []string

	// Runner runs the commands, ExecRunner if nil.
	Runner Runner

	// Logger receives progress messages, if not nil.
	Logger *slog.Logger

	stubOnce sync.Once
	stub     string
	stubErr  error
}

func (t *Tool) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := t.Command
	if len(cmd) == 0 {
		cmd = []string{"npins"}
	}
	cmd = append(cmd[:len(cmd):len(cmd)], args...)
	runner := t.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	if t.Logger != nil {
		t.Logger.Debug("running npins", "args", cmd)
	}
	out, err := runner.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("npins (%q) unexpectedly failed: %w\n%s", cmd, err, errors.Output(out))
	}
	return out, nil
}

// Stub returns Nix code for a function from the JSON text of npins lock
// data to the pinned sources. It is generated once per Tool.
func (t *Tool) Stub(ctx context.Context) (string, error) {
	t.stubOnce.Do(func() {
		t.stub, t.stubErr = t.generateStub(ctx)
	})
	return t.stub, t.stubErr
}

func (t *Tool) generateStub(ctx context.Context) (string, error) {
	dir, err := os.MkdirTemp("", "yixe.npins")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	if _, err := t.run(ctx, "--directory", dir, "init", "--bare"); err != nil {
		return "", err
	}
	code, err := os.ReadFile(filepath.Join(dir, "default.nix"))
	if err != nil {
		return "", fmt.Errorf("npins did not produce its Nix code: %w", err)
	}
	r := strings.NewReplacer(
		"builtins.readFile ./sources.json", "(yixe_json_input)",
		"npins upgrade", "yixe lock",
	)
	return "/* Allows embedding source information in transpiled code. */\n" +
		"yixe_json_input:\n" +
		"/* The following is generated from `npins`. */\n" +
		r.Replace(string(code)), nil
}

// Lock pins a single source named name and returns the resulting npins
// lock data. kind and args are passed to `npins add`, as in
//
//	npins add --name nixpkgs channel nixos-24.05
func (t *Tool) Lock(ctx context.Context, name, kind string, args ...string) (map[string]any, error) {
	dir, err := os.MkdirTemp("", "yixe.npins")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	lockfile := filepath.Join(dir, "sources.json")
	if _, err := t.run(ctx, "--lock-file", lockfile, "init", "--bare"); err != nil {
		return nil, err
	}
	add := append([]string{"--lock-file", lockfile, "add", "--name", name, kind}, args...)
	if _, err := t.run(ctx, add...); err != nil {
		return nil, err
	}

	b, err := os.ReadFile(lockfile)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("cannot decode npins lock data: %w", err)
	}

	// npins ignores --name for channels and keys the pin by channel name.
	if kind == "channel" && len(args) > 0 && args[0] != name {
		if pins, ok := data["pins"].(map[string]any); ok {
			if pin, ok := pins[args[0]]; ok {
				pins[name] = pin
				delete(pins, args[0])
			}
		}
	}
	return data, nil
}
