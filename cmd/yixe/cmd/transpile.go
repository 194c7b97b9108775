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
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"yixe.dev/go/yixe/errors"
)

func newTranspileCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transpile [flags] file",
		Short: "transpile a Yixe document to Nix",
		Long: `transpile converts a Yixe document to Nix code, written to stdout or
to the file given with --outfile.

Paths in the document are relative to the document, and kept as written.
With --resolve-paths they are made absolute, so the Nix code can be moved
elsewhere.

With --check, the output file is compared with the transpiled document and
the command fails if they differ. With --diff, the changes are printed.
Neither writes the output file.
`,
		Args: cobra.ExactArgs(1),
		RunE: mkRunE(c, runTranspile),
	}
	addOutFlags(cmd.Flags())
	cmd.Flags().Bool(string(flagResolvePaths), false,
		"make relative paths absolute")
	return cmd
}

func runTranspile(cmd *Command, args []string) error {
	doc := loadDocument(cmd, args[0])
	if flagResolvePaths.Bool(cmd) {
		exitOnErr(cmd, doc.ResolvePaths(), true)
	}
	code, err := doc.Transpile(cmd.Context())
	exitOnErr(cmd, err, true)
	code += "\n"

	outfile := flagOutFile.String(cmd)
	check, diff := flagCheck.Bool(cmd), flagDiff.Bool(cmd)
	if outfile == "" || outfile == "-" {
		if check || diff {
			return fmt.Errorf("--%s and --%s need an output file", flagCheck, flagDiff)
		}
		_, err := io.WriteString(cmd.OutOrStdout(), code)
		return err
	}
	if !check && !diff {
		return os.WriteFile(outfile, []byte(code), 0o666)
	}

	old, err := os.ReadFile(outfile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if string(old) == code {
		return nil
	}
	if diff {
		_, err := io.WriteString(cmd.OutOrStdout(), lineDiff(string(old), code))
		if err != nil {
			return err
		}
	}
	if check {
		return fmt.Errorf("%s is not up to date", outfile)
	}
	return nil
}
