package list

import (
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/render"
	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdutil"
)

func NewCmdList(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list [term]",
		Aliases: []string{"ls"},
		Short:   "Print the stories in a category.",
		Long: heredoc.Doc(`
			Prints the stories in a category, newest first, with an item count.
			When a search term is given only matching stories are shown and the
			first match in each is highlighted.

			Categories are all, recent (written in the last 7 days) and trash.
		`),
		Example: heredoc.Doc(`
			jottr list
			jottr list --category trash
			jottr list ship --now "2024-06-15 12:00"
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, s)
		},
	}

	cmd.Flags().StringP("category", "c", "", "Category to list: all, recent or trash (default from config)")
	cmd.Flags().StringP("search", "s", "", "Only show stories containing this term")
	return cmd
}

func run(cmd *cobra.Command, args []string, s *state.State) error {
	category := s.Config.Category()
	if value, _ := cmd.Flags().GetString("category"); value != "" {
		c, err := cmdutil.ParseCategory(value)
		if err != nil {
			return err
		}
		category = c
	}

	term, _ := cmd.Flags().GetString("search")
	if len(args) > 0 {
		term = strings.Join(args, " ")
	}

	st, err := s.Store(cmd.Context())
	if err != nil {
		return err
	}
	records, err := st.ListAll(cmd.Context())
	if err != nil {
		return err
	}

	res, err := s.Engine.Query(records, category, term)
	if err != nil {
		return err
	}

	_, width := cmdutil.Output(cmd)
	return render.WriteList(cmd.OutOrStdout(), res, width, cmdutil.Styles(cmd))
}
