package sync

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/config"
	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/internal/store"
	backup "github.com/Paintersrp/jottr/internal/sync"
)

type syncer interface {
	Push(ctx context.Context, st store.Store) (backup.Report, error)
	Pull(ctx context.Context, st store.Store) (backup.Report, error)
}

// newSyncer is replaced in tests.
var newSyncer = func(ctx context.Context, cfg config.SyncConfig, logger zerolog.Logger) (syncer, error) {
	if cfg.Bucket == "" {
		return nil, backup.ErrNoBucket
	}

	client, err := backup.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return backup.New(client, cfg.Bucket, cfg.Prefix, logger)
}

func NewCmdSync(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <command>",
		Short: "Back up stories to an S3 bucket or restore them.",
		Long: heredoc.Doc(`
			Copies stories between the configured store and an S3 compatible
			bucket. Configure the bucket under the sync section of the config
			file or with JOTTR_SYNC_* environment variables.
		`),
	}

	cmd.AddCommand(newCmdPush(s))
	cmd.AddCommand(newCmdPull(s))
	return cmd
}

func newCmdPush(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Upload every story to the bucket.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, s, "Uploaded", syncer.Push)
		},
	}
}

func newCmdPull(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Download stories that are newer in the bucket.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, s, "Downloaded", syncer.Pull)
		},
	}
}

func run(
	cmd *cobra.Command,
	s *state.State,
	verb string,
	op func(syncer, context.Context, store.Store) (backup.Report, error),
) error {
	ctx := cmd.Context()

	st, err := s.Store(ctx)
	if err != nil {
		return err
	}

	sy, err := newSyncer(ctx, s.Config.Sync, s.Logger)
	if err != nil {
		return err
	}

	report, err := op(sy, ctx, st)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %d stories, %d skipped\n", verb, report.Transferred, report.Skipped)
	return nil
}
