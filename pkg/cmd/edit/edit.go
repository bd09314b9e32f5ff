package edit

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/editor"
	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdutil"
)

var runEditor = editor.Run

func NewCmdEdit(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a story in your editor.",
		Long: heredoc.Doc(`
			Opens the story in the configured editor (or $EDITOR) and saves the
			text once the editor exits. Stories in the trash must be restored
			before they can be edited.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, r, err := cmdutil.ResolveStory(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}
			if r.IsDiscarded() {
				return fmt.Errorf("story %s is in the trash; restore it first", r.ShortID())
			}

			text, err := editor.Edit(s.Config.Editor, r.Text, runEditor)
			if err != nil {
				return err
			}
			if text == r.Text {
				fmt.Fprintf(cmd.OutOrStdout(), "No changes to %s\n", r.ShortID())
				return nil
			}
			if strings.TrimSpace(text) == "" {
				return cmdutil.ErrEmptyText
			}

			updated := r.WithText(text, s.Now())
			if err := st.Put(cmd.Context(), updated); err != nil {
				return err
			}
			if err := st.Persist(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s %s\n", updated.ShortID(), updated.Title())
			return nil
		},
	}

	return cmd
}
