package new

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/editor"
	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/internal/story"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdutil"
)

// runEditor is replaced in tests.
var runEditor = editor.Run

func NewCmdNew(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "new [text...]",
		Aliases: []string{"n"},
		Short:   "Write a new story.",
		Long: heredoc.Doc(`
			Creates a new story. The text is taken from the arguments, from stdin
			when it is piped in, or written in your editor when neither is given.
		`),
		Example: heredoc.Doc(`
			jottr new "# Dawn" "The ship left before the tide turned."
			cat draft.md | jottr new --genre Fantasy
			jottr new
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, s)
		},
	}

	cmd.Flags().StringP("genre", "g", "", "Genre of the story")
	return cmd
}

func run(cmd *cobra.Command, args []string, s *state.State) error {
	text, ok, err := cmdutil.ReadText(cmd, args)
	if err != nil {
		return err
	}
	if !ok {
		text, err = editor.Edit(s.Config.Editor, "", runEditor)
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(text) == "" {
		return cmdutil.ErrEmptyText
	}

	r := story.New(text, s.Now())
	r.Genre, _ = cmd.Flags().GetString("genre")

	st, err := s.Store(cmd.Context())
	if err != nil {
		return err
	}
	if err := st.Put(cmd.Context(), r); err != nil {
		return err
	}
	if err := st.Persist(cmd.Context()); err != nil {
		return err
	}

	s.Logger.Debug().Str("id", r.ID.String()).Msg("story created")
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s\n", r.ShortID(), r.Title())
	return nil
}
