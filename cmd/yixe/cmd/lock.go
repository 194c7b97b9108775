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

	"github.com/spf13/cobra"
)

func newLockCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock [flags] file",
		Short: "update the lock file of a Yixe document",
		Long: `lock pins the npins inputs of a document with npins and records the
result in the lock file next to it, named after the document with a .lock
suffix. Existing entries for other inputs are kept.

The npins command can be replaced through YIXE_DEBUG:

	YIXE_DEBUG='npins=nix run nixpkgs#npins --' yixe lock project.yixe
`,
		Args: cobra.ExactArgs(1),
		RunE: mkRunE(c, runLock),
	}
	return cmd
}

func runLock(cmd *Command, args []string) error {
	doc := loadDocument(cmd, args[0])
	exitOnErr(cmd, doc.UpdateLocks(cmd.Context()), true)
	fmt.Fprintln(cmd.OutOrStdout(), "... done!")
	return nil
}
