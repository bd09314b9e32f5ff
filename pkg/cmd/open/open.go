package open

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/fzf"
	"github.com/Paintersrp/jottr/internal/render"
	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/internal/story"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdutil"
	"github.com/Paintersrp/jottr/pkg/cmd/show"
)

type picker interface {
	Run(query string) (story.Story, error)
}

// newPicker is replaced in tests.
var newPicker = func(stories []story.Story, preview *render.Previewer, header string) picker {
	return fzf.NewFuzzyFinder(stories, preview, header)
}

func NewCmdOpen(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "open [query]",
		Aliases: []string{"o", "find"},
		Short:   "Fuzzy find a story and show it.",
		Long: heredoc.Doc(`
			Opens a fuzzy finder over the stories in a category with a rendered
			preview of the highlighted story. The chosen story is printed.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := s.Config.Category()
			if value, _ := cmd.Flags().GetString("category"); value != "" {
				c, err := cmdutil.ParseCategory(value)
				if err != nil {
					return err
				}
				category = c
			}

			st, err := s.Store(cmd.Context())
			if err != nil {
				return err
			}
			records, err := st.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			res, err := s.Engine.Query(records, category, "")
			if err != nil {
				return err
			}

			profile, _ := cmdutil.Output(cmd)
			preview, err := render.NewPreviewer(0, profile)
			if err != nil {
				return err
			}

			header := fmt.Sprintf("%s (%d)", category.Label(), res.Count())
			picked, err := newPicker(res.Stories, preview, header).Run(strings.Join(args, " "))
			if errors.Is(err, fzf.ErrNoSelection) {
				fmt.Fprintln(cmd.OutOrStdout(), "No story selected")
				return nil
			}
			if err != nil {
				return err
			}

			raw, _ := cmd.Flags().GetBool("raw")
			return show.Print(cmd, picked, raw)
		},
	}

	cmd.Flags().StringP("category", "c", "", "Category to pick from: all, recent or trash")
	cmd.Flags().Bool("raw", false, "Print the Markdown source of the chosen story")
	return cmd
}
