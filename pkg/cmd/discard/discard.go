package discard

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/query"
	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/internal/store"
	"github.com/Paintersrp/jottr/internal/story"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdutil"
)

func NewCmdDiscard(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "discard <id>...",
		Aliases: []string{"trash", "rm"},
		Short:   "Move stories to the trash.",
		Long: heredoc.Doc(`
			Moves stories to the trash. Discarded stories stay listed under the
			trash category until they are restored, deleted, or purged once the
			retention period has passed.
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			now := s.Now()

			st, err := cmdutil.EachStory(ctx, s, args, func(st store.Store, r story.Story) error {
				if r.IsDiscarded() {
					fmt.Fprintf(out, "%s is already in the trash\n", r.ShortID())
					return nil
				}

				discarded := query.Discard(r, now)
				if err := st.MarkDiscarded(ctx, r.ID, *discarded.DiscardedAt); err != nil {
					return err
				}
				fmt.Fprintf(out, "Moved %s %s to trash\n", r.ShortID(), r.Title())
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
