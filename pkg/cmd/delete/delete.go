package delete

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/internal/store"
	"github.com/Paintersrp/jottr/internal/story"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdutil"
)

func NewCmdDelete(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Permanently delete stories from the trash.",
		Long: heredoc.Doc(`
			Permanently deletes stories. Only stories in the trash can be deleted
			unless --force is given.
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			force, _ := cmd.Flags().GetBool("force")

			st, err := cmdutil.EachStory(ctx, s, args, func(st store.Store, r story.Story) error {
				if !r.IsDiscarded() && !force {
					return fmt.Errorf("story %s is not in the trash; discard it first or use --force", r.ShortID())
				}
				if err := st.HardDelete(ctx, r.ID); err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted %s %s\n", r.ShortID(), r.Title())
				return nil
			})
			if err != nil {
				return err
			}
			return st.Persist(ctx)
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Delete stories that are not in the trash")
	return cmd
}
