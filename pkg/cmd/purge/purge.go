package purge

import (
	"fmt"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/internal/store"
)

func NewCmdPurge(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete stories that have been in the trash too long.",
		Long: heredoc.Doc(`
			Permanently deletes stories discarded longer ago than the retention
			period (retention_days in the config, 30 days by default). A
			retention of 0 disables purging.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			retention := s.Config.Retention()
			if cmd.Flags().Changed("days") {
				days, _ := cmd.Flags().GetInt("days")
				if days < 0 {
					return fmt.Errorf("--days cannot be negative: %d", days)
				}
				retention = time.Duration(days) * 24 * time.Hour
			}
			if retention <= 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Purging is disabled")
				return nil
			}

			st, err := s.Store(cmd.Context())
			if err != nil {
				return err
			}

			n, err := store.PurgeExpired(cmd.Context(), st, s.Now(), retention)
			if err != nil {
				return err
			}

			s.Logger.Info().Int("deleted", n).Dur("retention", retention).Msg("purged expired stories")
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d expired %s\n", n, plural(n))
			return nil
		},
	}

	cmd.Flags().Int("days", 0, "Override the retention period in days")
	return cmd
}

func plural(n int) string {
	if n == 1 {
		return "story"
	}
	return "stories"
}
