/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package changeEditor

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/state"
)

func NewCmdChangeEditor(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "change-editor [editor]",
		Short: "Change the editor used to write stories",
		Long: heredoc.Doc(`
			Updates the editor that 'jottr new', 'jottr edit' and the story browser
			open, and saves it to the configuration file. Use 'custom' to defer
			to $VISUAL or $EDITOR.
		`),
		Example: heredoc.Doc(`
			# Write stories in helix
			jottr change-editor hx
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.Config.ChangeEditor(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Editor set to %s\n", args[0])
			return nil
		},
	}

	return cmd
}
