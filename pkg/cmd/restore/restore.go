package restore

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/internal/store"
	"github.com/Paintersrp/jottr/internal/story"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdutil"
)

func NewCmdRestore(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "restore <id>...",
		Aliases: []string{"untrash"},
		Short:   "Take stories back out of the trash.",
		Long: heredoc.Doc(`
			Restores discarded stories. They keep their original creation date,
			so they return to the same place in the listing.
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			now := s.Now()

			st, err := cmdutil.EachStory(ctx, s, args, func(st store.Store, r story.Story) error {
				if !r.IsDiscarded() {
					fmt.Fprintf(out, "%s is not in the trash\n", r.ShortID())
					return nil
				}
				if err := st.Restore(ctx, r.ID, now); err != nil {
					return err
				}
				fmt.Fprintf(out, "Restored %s %s\n", r.ShortID(), r.Title())
				return nil
			})
			if err != nil {
				return err
			}
			return st.Persist(ctx)
		},
	}

	return cmd
}
