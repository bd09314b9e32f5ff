package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/constants"
	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/pkg/cmd/changeEditor"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdutil"
	"github.com/Paintersrp/jottr/pkg/cmd/continuestory"
	"github.com/Paintersrp/jottr/pkg/cmd/delete"
	"github.com/Paintersrp/jottr/pkg/cmd/discard"
	"github.com/Paintersrp/jottr/pkg/cmd/edit"
	"github.com/Paintersrp/jottr/pkg/cmd/emptytrash"
	"github.com/Paintersrp/jottr/pkg/cmd/initialize"
	"github.com/Paintersrp/jottr/pkg/cmd/list"
	"github.com/Paintersrp/jottr/pkg/cmd/new"
	"github.com/Paintersrp/jottr/pkg/cmd/open"
	"github.com/Paintersrp/jottr/pkg/cmd/purge"
	"github.com/Paintersrp/jottr/pkg/cmd/restore"
	"github.com/Paintersrp/jottr/pkg/cmd/search"
	"github.com/Paintersrp/jottr/pkg/cmd/share"
	"github.com/Paintersrp/jottr/pkg/cmd/show"
	"github.com/Paintersrp/jottr/pkg/cmd/sync"
)

type persistentFlag struct {
	name  string
	key   string
	usage string
}

var persistentFlags = []persistentFlag{
	{"driver", "store.driver", "Store driver: vault, postgres or memory"},
	{"vault", "store.vault_dir", "Directory holding the story vault"},
	{"database-url", "store.database_url", "Postgres connection string"},
	{"editor", "editor", "Editor used to write stories"},
	{"log-level", "log_level", "Log level: debug, info, warn or error"},
}

func NewCmdRoot(s *state.State) (*cobra.Command, error) {
	browse := search.NewCmdSearch(s)

	cmd := &cobra.Command{
		Use:     constants.AppName,
		Short:   "Write, search and curate short stories from the terminal.",
		Version: constants.Version,
		Long: heredoc.Doc(`
			A place to jot down short stories. Stories live in a Markdown vault or a
			Postgres database and are grouped into three tabs: All, Recently (the
			last seven days) and Trash.

			Run without a command to open the story browser.
		`),
		Example: heredoc.Doc(`
			jottr new "The ship left at dawn."
			jottr list --category recent ship
			jottr discard 3f2a
		`),
		Args: cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := s.Refresh(); err != nil {
				return err
			}

			value, _ := cmd.Flags().GetString("now")
			now, err := cmdutil.ParseNow(value)
			if err != nil {
				return err
			}
			if !now.IsZero() {
				s.SetNow(now)
			}

			s.Logger.Debug().
				Str("command", cmd.CommandPath()).
				Str("driver", s.Config.Store.Driver).
				Time("now", s.Now()).
				Msg("starting")
			return nil
		},
		RunE: browse.RunE,
	}

	flags := cmd.PersistentFlags()
	for _, f := range persistentFlags {
		flags.String(f.name, "", f.usage)
		if err := s.Viper.BindPFlag(f.key, flags.Lookup(f.name)); err != nil {
			return nil, err
		}
	}
	flags.String("now", "", "Reference time for the Recently tab and lifecycle stamps")
	cmd.Flags().AddFlagSet(browse.Flags())

	cmd.AddCommand(
		initialize.NewCmdInit(s),
		changeEditor.NewCmdChangeEditor(s),
		new.NewCmdNew(s),
		list.NewCmdList(s),
		show.NewCmdShow(s),
		open.NewCmdOpen(s),
		browse,
		edit.NewCmdEdit(s),
		discard.NewCmdDiscard(s),
		restore.NewCmdRestore(s),
		delete.NewCmdDelete(s),
		emptytrash.NewCmdEmptyTrash(s),
		purge.NewCmdPurge(s),
		share.NewCmdShare(s),
		continuestory.NewCmdContinue(s),
		sync.NewCmdSync(s),
	)

	return cmd, nil
}
