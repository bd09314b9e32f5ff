package emptytrash

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/internal/store"
)

func NewCmdEmptyTrash(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "empty-trash",
		Short: "Permanently delete every story in the trash.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := s.Store(cmd.Context())
			if err != nil {
				return err
			}

			n, err := store.EmptyTrash(cmd.Context(), st)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d %s from the trash\n", n, plural(n))
			return nil
		},
	}

	return cmd
}

func plural(n int) string {
	if n == 1 {
		return "story"
	}
	return "stories"
}
