package search

import (
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/state"
	browser "github.com/Paintersrp/jottr/internal/tui/search"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdutil"
)

var runBrowser = browser.Run

func NewCmdSearch(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "search [term]",
		Aliases: []string{"s", "browse"},
		Short:   "Browse and search stories interactively.",
		Long: heredoc.Doc(`
			Opens the story browser. Switch between the All, Recently and Trash
			tabs with tab or 1, 2 and 3; type to search the current tab.

			Stories can be edited, discarded, restored and deleted from the list.
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

			return runBrowser(cmd.Context(), s, category, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringP("category", "c", "", "Tab to open: all, recent or trash")
	return cmd
}
