package share

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/jottr/internal/export"
	"github.com/Paintersrp/jottr/internal/state"
	"github.com/Paintersrp/jottr/pkg/cmd/cmdutil"
)

// clipboard is replaced in tests.
var clipboard = export.SystemClipboard()

func NewCmdShare(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share <id>",
		Short: "Export a story as text, Markdown or HTML.",
		Long: heredoc.Doc(`
			Exports a story. By default the plain text is printed; use --copy to
			place it on the clipboard or --output to write it to a file.

			The markdown format keeps the story's front matter so the file can be
			dropped into another vault.
		`),
		Example: heredoc.Doc(`
			jottr share 3f2a --copy
			jottr share 3f2a --format html --output dawn.html
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, _ := cmd.Flags().GetString("format")
			format, err := export.ParseFormat(value)
			if err != nil {
				return err
			}

			_, r, err := cmdutil.ResolveStory(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}

			copyFlag, _ := cmd.Flags().GetBool("copy")
			output, _ := cmd.Flags().GetString("output")

			switch {
			case copyFlag:
				if err := export.Copy(clipboard, r, format); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Copied %s to the clipboard\n", r.ShortID())
			case output != "":
				data, err := export.Render(r, format)
				if err != nil {
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s to %s\n", r.ShortID(), output)
			default:
				return export.Write(cmd.OutOrStdout(), r, format)
			}
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "text", "Export format: text, markdown or html")
	cmd.Flags().BoolP("copy", "c", false, "Copy to the clipboard instead of printing")
	cmd.Flags().StringP("output", "o", "", "Write to a file instead of printing")
	return cmd
}
