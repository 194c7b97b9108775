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

// Package lockfile reads and writes the lock file kept next to a Yixe
// document, which records the pinned data of its inputs:
//
//	# THIS FILE IS AUTOMATICALLY GENERATED. DO NOT EDIT.
//	yixe-lock: v0
//	inputs:
//	  sources:
//	    nixpkgs:
//	      npins: {...}
package lockfile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"

	"github.com/rogpeppe/go-internal/lockedfile"
	"gopkg.in/yaml.v3"
)

const (
	// Version is the schema version written to new lock files.
	Version = "v0"

	// Suffix is appended to a document path to obtain its lock file path.
	Suffix = ".lock"

	header = "# THIS FILE IS AUTOMATICALLY GENERATED. DO NOT EDIT.\n"
)

// PathFor returns the lock file path of the document at docPath.
func PathFor(docPath string) string {
	return docPath + Suffix
}

// File is the contents of a lock file.
type File struct {
	Version string `yaml:"yixe-lock"`
	Inputs  Inputs `yaml:"inputs"`
}

type Inputs struct {
	Sources map[string]Source `yaml:"sources"`
}

// Source holds the locked data of one input.
type Source struct {
	// Npins is the npins lock data, with the pin stored under the input name.
	Npins map[string]any `yaml:"npins,omitempty"`
}

// New returns an empty lock file.
func New() *File {
	return &File{Version: Version}
}

// Read reads the lock file at path. Errors satisfy errors.Is(err,
// fs.ErrNotExist) when the file does not exist.
func Read(path string) (*File, error) {
	body, err := lockedfile.Read(path)
	if err != nil {
		return nil, err
	}
	f := New()
	if err := yaml.Unmarshal(body, f); err != nil {
		return nil, fmt.Errorf("invalid lock file %s: %w", path, err)
	}
	if f.Version != Version {
		return nil, fmt.Errorf("invalid lock file %s: unsupported version %q", path, f.Version)
	}
	return f, nil
}

// Source returns the locked data of the named input.
func (f *File) Source(name string) (Source, bool) {
	src, ok := f.Inputs.Sources[name]
	return src, ok
}

// SetSource records the locked data of the named input.
func (f *File) SetSource(name string, src Source) {
	if f.Inputs.Sources == nil {
		f.Inputs.Sources = make(map[string]Source)
	}
	f.Inputs.Sources[name] = src
}

// Marshal returns the contents of f as written to disk.
func (f *File) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write replaces the lock file at path with f.
func (f *File) Write(path string) error {
	body, err := f.Marshal()
	if err != nil {
		return err
	}
	return lockedfile.Write(path, bytes.NewReader(body), 0o666)
}

// Update reads the lock file at path, or starts a new one if there is none,
// applies update to it and writes it back.
func Update(path string, update func(*File) error) error {
	f, err := Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		f = New()
	} else if err != nil {
		return err
	}
	if err := update(f); err != nil {
		return err
	}
	return f.Write(path)
}
