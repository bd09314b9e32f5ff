package continuestory

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/complete"
	"github.com/Paintersrp/jottr/internal/config"
	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/internal/story"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdutil"
)

type continuer interface {
	Continue(ctx context.Context, s story.Story, genre string) (string, error)
}

// newContinuer is replaced in tests.
var newContinuer = func(cfg config.CompletionConfig, logger zerolog.Logger) (continuer, error) {
	return complete.New(complete.Config{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout(),
		MaxRetries: cfg.MaxRetries,
	}, logger)
}

func NewCmdContinue(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "continue <id>",
		Short: "Ask the model to write the next passage of a story.",
		Long: heredoc.Doc(`
			Sends the story to the configured chat completion endpoint and appends
			the reply as a new paragraph. The API key is read from
			completion.api_key, JOTTR_COMPLETION_API_KEY or OPENAI_API_KEY.

			Use --dry-run to print the continuation without saving it.
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, r, err := cmdutil.ResolveStory(ctx, s, args[0])
			if err != nil {
				return err
			}
			if r.IsDiscarded() {
				return fmt.Errorf("story %s is in the trash; restore it first", r.ShortID())
			}

			c, err := newContinuer(s.Config.Completion, s.Logger)
			if err != nil {
				return err
			}

			genre, _ := cmd.Flags().GetString("genre")
			continuation, err := c.Continue(ctx, r, genre)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), continuation)

			if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
				return nil
			}

			updated := complete.Append(r, continuation, s.Now())
			if genre != "" {
				updated.Genre = genre
			}
			if err := st.Put(ctx, updated); err != nil {
				return err
			}
			return st.Persist(ctx)
		},
	}

	cmd.Flags().StringP("genre", "g", "", "Genre to write in (defaults to the story's genre)")
	cmd.Flags().Bool("dry-run", false, "Print the continuation without saving it")
	return cmd
}
