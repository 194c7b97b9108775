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

// Package errors defines the errors reported while compiling Yixe documents.
//
// Every compile error names the document node being processed, and the
// node it was checking when the failure concerns a second one. Errors
// belong to one of a small number of kinds that can be tested with [Is]:
//
//	if errors.Is(err, errors.ErrLock) {
//		// suggest running `yixe lock`
//	}
package errors // import "yixe.dev/go/yixe/errors"

import (
	"errors"
	"fmt"
	"strings"

	"yixe.dev/go/nix"
	"yixe.dev/go/yixe/token"
)

// Kinds of compile errors.
var (
	// ErrStructure reports a document of the wrong shape: bad root, unknown
	// document kind, missing or duplicate keys.
	ErrStructure = errors.New("invalid document structure")

	// ErrTag reports a tag that the document's tag set does not know.
	ErrTag = errors.New("unresolved tag")

	// ErrLock reports a missing or stale lock file.
	ErrLock = errors.New("invalid lock")

	// ErrUnsupported reports a recognized feature that is not implemented.
	ErrUnsupported = errors.New("unsupported")

	// ErrImportCycle reports a document importing itself, directly or not.
	ErrImportCycle = errors.New("import cycle")
)

// New is a convenience wrapper for errors.New in the core library.
func New(msg string) error { return errors.New(msg) }

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// Site identifies a document node by its type and position.
type Site struct {
	Type string
	Pos  token.Position
}

func (s Site) String() string {
	return s.Type + " at " + s.Pos.String()
}

// Error is a failure while compiling a document.
type Error struct {
	// Msg describes the failure.
	Msg string

	// Node is the node being processed.
	Node Site

	// Target is the node being checked, if it differs from Node.
	Target *Site

	// Kind is one of the ErrXxx values, or nil.
	Kind error

	// Err is the underlying cause, if any.
	Err error
}

// Newf creates an error of the given kind at node.
func Newf(kind error, node Site, format string, args ...any) *Error {
	return &Error{
		Msg:  fmt.Sprintf(format, args...),
		Node: node,
		Kind: kind,
	}
}

// WithTarget records the node the failure concerns.
func (e *Error) WithTarget(target Site) *Error {
	if target != e.Node {
		e.Target = &target
	}
	return e
}

// Wrap records err as the cause of e.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	b.WriteString(" (")
	b.WriteString(e.Node.String())
	if e.Target != nil {
		b.WriteString("; target ")
		b.WriteString(e.Target.String())
	}
	b.WriteString(")")
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Position returns the position of the node being processed.
func (e *Error) Position() token.Position { return e.Node.Pos }

// Is reports whether the error is of kind target.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && e.Kind == target
}

func (e *Error) Unwrap() error { return e.Err }

// Details returns the full report for err, as printed by the command line.
// Errors other than *Error are returned as is.
func Details(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	msg := e.Msg
	if e.Err != nil {
		msg += "\n" + e.Err.Error()
	}
	trace := []string{
		"   in:",
		"       Node: " + e.Node.Type,
		"         at: in " + e.Node.Pos.String(),
	}
	if e.Target != nil {
		trace = append(trace,
			"   target:",
			"       Node: "+e.Target.Type,
			"         at: in "+e.Target.Pos.String(),
		)
	}
	return strings.Join([]string{
		"Error handling nodes in a Yixe Document",
		"",
		nix.Indent("Error: " + msg),
		nix.Indent(strings.Join(trace, "\n")),
	}, "\n")
}

// Output prefixes each line of the output of an external command, so it can
// be told apart from the surrounding report.
func Output(out []byte) string {
	s := strings.TrimRight(string(out), "\n")
	if s == "" {
		return ""
	}
	return ">  " + strings.ReplaceAll(s, "\n", "\n>  ")
}
