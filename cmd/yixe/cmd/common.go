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

package cmd

import (
	"bytes"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"yixe.dev/go/internal/npins"
	"yixe.dev/go/internal/yixedebug"
	"yixe.dev/go/yixe"
	"yixe.dev/go/yixe/errors"
)

func getLang() language.Tag {
	loc := os.Getenv("LC_ALL")
	if loc == "" {
		loc = os.Getenv("LANG")
	}
	loc = strings.Split(loc, ".")[0]
	return language.Make(loc)
}

func exitOnErr(cmd *Command, err error, fatal bool) {
	if err == nil {
		return
	}

	// Link x/text as our localizer.
	p := message.NewPrinter(getLang())

	details := errors.Details(err)
	if useColor(cmd) {
		details = strings.Replace(details, "Error:", errorColor.Sprint("Error:"), 1)
	}

	w := &bytes.Buffer{}
	p.Fprintf(w, "%s\n", details)

	b := w.Bytes()
	_, _ = cmd.Stderr().Write(b)
	if fatal {
		exit()
	}
}

var errorColor = func() *color.Color {
	c := color.New(color.FgRed, color.Bold)
	// Colors are only used after checking the terminal ourselves.
	c.EnableColor()
	return c
}()

// useColor reports whether errors are written to a terminal.
func useColor(cmd *Command) bool {
	f, ok := cmd.OutOrStderr().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// config returns the document configuration following YIXE_DEBUG and the
// command line flags. Progress is logged with --verbose or when YIXE_DEBUG
// is set.
func config(cmd *Command) (*yixe.Config, error) {
	flags := yixedebug.Flags
	cfg := &yixe.Config{}
	if flagVerbose.Bool(cmd) || os.Getenv(yixedebug.EnvVar) != "" {
		logger, err := flags.NewLogger(cmd.OutOrStderr())
		if err != nil {
			return nil, err
		}
		cfg.Logger = logger
	}
	command, err := flags.NpinsCommand()
	if err != nil {
		return nil, err
	}
	cfg.Npins = &npins.Tool{Command: command, Logger: cfg.Logger}
	return cfg, nil
}

// loadDocument loads the document at path, exiting on failure.
func loadDocument(cmd *Command, path string) *yixe.Document {
	cfg, err := config(cmd)
	exitOnErr(cmd, err, true)
	doc, err := yixe.Load(path, cfg)
	exitOnErr(cmd, err, true)
	if yixedebug.Flags.DumpIR && cfg.Logger != nil {
		cfg.Logger.Info("document IR", "path", path, "ir", doc.Dump())
	}
	return doc
}
