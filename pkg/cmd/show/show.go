package show

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/render"
	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/internal/story"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdutil"
)

func NewCmdShow(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Render a story in the terminal.",
		Long: heredoc.Doc(`
			Renders a story's Markdown. The id may be any unique prefix of the
			story's identifier, as printed by 'jottr list'.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, r, err := cmdutil.ResolveStory(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}

			raw, _ := cmd.Flags().GetBool("raw")
			return Print(cmd, r, raw)
		},
	}

	cmd.Flags().Bool("raw", false, "Print the Markdown source instead of rendering it")
	return cmd
}

// Print writes the story header line followed by its rendered text.
func Print(cmd *cobra.Command, r story.Story, raw bool) error {
	out := cmd.OutOrStdout()
	if raw {
		_, err := fmt.Fprintln(out, r.Text)
		return err
	}

	profile, width := cmdutil.Output(cmd)
	p, err := render.NewPreviewer(1, profile)
	if err != nil {
		return err
	}
	body, err := p.Render(r, width)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(out, render.Line(r, cmdutil.Styles(cmd))); err != nil {
		return err
	}
	_, err = fmt.Fprint(out, body)
	return err
}
