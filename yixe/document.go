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

// Package yixe transpiles Yixe documents to Nix.
//
// A Yixe document is a YAML mapping whose first pair declares the type of
// the document and its version:
//
//	yixe-nixos-module: v0
//	config:
//	  networking:
//	    hostName: yixe-os
//
// The document is parsed into an intermediate representation made of
// [Node] values, which is then converted to a Nix expression according to
// the document type.
package yixe

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"yixe.dev/go/internal/lockfile"
	"yixe.dev/go/internal/npins"
	"yixe.dev/go/yixe/errors"
	"yixe.dev/go/yixe/token"
)

// Config configures how documents are loaded and transpiled.
type Config struct {
	// Npins runs npins for documents with npins inputs. A default Tool is
	// used when nil.
	Npins *npins.Tool

	// Logger receives progress messages. Nothing is logged when nil.
	Logger *slog.Logger
}

// Document is a parsed Yixe document.
type Document struct {
	// Path is the path of the document. Relative paths and imports are
	// resolved against its directory.
	Path string

	root   *Root
	loader *loader

	lock    *lockfile.File
	lockErr error
}

// loader holds the state shared by a document and the documents it
// imports.
type loader struct {
	cfg *Config

	// inFlight holds the documents being transpiled, by documentKey.
	inFlight map[string]bool

	// resolvePaths is set once paths of the top-level document are resolved,
	// so that imported documents resolve theirs too.
	resolvePaths bool
}

// Load reads and parses the document at path.
func Load(path string, cfg *Config) (*Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, src, cfg)
}

// Parse parses src as the document at path. The file at path is only read
// if the document refers to it.
func Parse(path string, src []byte, cfg *Config) (*Document, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	l := &loader{cfg: cfg, inFlight: make(map[string]bool)}
	return l.parse(path, src)
}

func (l *loader) parse(path string, src []byte) (*Document, error) {
	d := &Document{Path: path, loader: l}
	var file yaml.Node
	if err := yaml.Unmarshal(src, &file); err != nil {
		return nil, errors.Newf(errors.ErrStructure, errors.Site{Type: "Document", Pos: token.Position{Filename: path}},
			"This does not look like a valid Yixe document...").Wrap(err)
	}
	if file.Kind != yaml.DocumentNode || len(file.Content) == 0 {
		return nil, errors.Newf(errors.ErrStructure, errors.Site{Type: "Document", Pos: token.Position{Filename: path}},
			"This does not look like a valid Yixe document...")
	}
	dec := &decoder{doc: d}
	yn := file.Content[0]
	if yn.Kind != yaml.MappingNode || yn.Style&yaml.TaggedStyle != 0 {
		return nil, dec.posErrorf(errors.ErrStructure, yn,
			"Unexpected yixe document structure. Got a %s at the root, instead of a Mapping.", kindName(yn.Kind))
	}
	root, err := dec.rootMapping(yn)
	if err != nil {
		return nil, err
	}
	d.root = root
	if l.resolvePaths {
		if err := d.ResolvePaths(); err != nil {
			return nil, err
		}
	}
	l.logger().Debug("parsed document", "path", path, "type", root.DocumentType)
	return d, nil
}

// load reads and parses a document imported by another one.
func (l *loader) load(path string) (*Document, error) {
	l.logger().Debug("importing document", "path", path)
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.parse(path, src)
}

func (l *loader) logger() *slog.Logger {
	if l.cfg.Logger != nil {
		return l.cfg.Logger
	}
	return discardLogger
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// documentKey returns the key identifying the document at path.
func documentKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Root returns the root of the document.
func (d *Document) Root() *Root { return d.root }

// Type returns the declared document type.
func (d *Document) Type() string { return d.root.DocumentType }

// Version returns the declared document version.
func (d *Document) Version() string { return d.root.VersionString() }

// CallPackagePattern reports whether the document is a package that can
// be used with callPackage: a package document with both `arguments` and
// `output`.
func (d *Document) CallPackagePattern() bool {
	return d.root.DocumentType == TypePackage &&
		d.root.Get("arguments") != nil && d.root.Get("output") != nil
}

// Transpile returns the Nix code of the document.
func (d *Document) Transpile(ctx context.Context) (string, error) {
	key := documentKey(d.Path)
	d.loader.inFlight[key] = true
	defer delete(d.loader.inFlight, key)
	return d.root.render(newSession(ctx, d))
}

// ResolvePaths makes the document path and the relative paths it holds
// absolute, so the transpiled code can be used from any directory.
func (d *Document) ResolvePaths() error {
	abs, err := filepath.Abs(d.Path)
	if err != nil {
		return err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return err
	}
	d.Path = resolved
	d.root.resolvePaths(filepath.Dir(resolved))
	d.loader.resolvePaths = true
	return nil
}

// resolvePath returns rel relative to the directory of the document.
func (d *Document) resolvePath(rel string) string {
	return filepath.Join(filepath.Dir(d.Path), rel)
}

// LockPath returns the path of the lock file of the document.
func (d *Document) LockPath() string {
	return lockfile.PathFor(d.Path)
}

// lockFile returns the lock file of the document, read once.
func (d *Document) lockFile() (*lockfile.File, error) {
	if d.lock == nil && d.lockErr == nil {
		d.lock, d.lockErr = lockfile.Read(d.LockPath())
	}
	return d.lock, d.lockErr
}

func (d *Document) npins() *npins.Tool {
	if d.loader.cfg.Npins == nil {
		d.loader.cfg.Npins = &npins.Tool{Logger: d.loader.cfg.Logger}
	}
	return d.loader.cfg.Npins
}

func (d *Document) logger() *slog.Logger { return d.loader.logger() }

// UpdateLocks runs npins to refresh the lock file of the document.
func (d *Document) UpdateLocks(ctx context.Context) error {
	in := d.root.Inputs()
	if in == nil {
		return errorf(errors.ErrStructure, d.root, "No inputs to lock in this document.")
	}
	if err := in.updateLocks(ctx, d.npins()); err != nil {
		return err
	}
	d.lock, d.lockErr = nil, nil
	return nil
}
