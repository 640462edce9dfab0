package main

import (
	"os"

	"github.com/go-go-golems/marionette/pkg/script"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newImportCommand() *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "import <conversation.html>",
		Short: "Convert an exported conversation page into a script",
		Long: `Convert an exported conversation page into a playable script.

Accepts a local HTML file, an http(s) URL, or - for stdin. Both embedded
__NEXT_DATA__ exports and plain pages with data-message-author-role blocks
are recognized.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScript(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "json", "":
				data, err = script.ToJSON(s)
			case "yaml":
				data, err = script.ToYAML(s)
			default:
				return errors.Errorf("unknown output format %q", format)
			}
			if err != nil {
				return err
			}

			if out == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			return os.WriteFile(out, data, 0644)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Script format to write (json, yaml)")
	cmd.Flags().StringVar(&out, "out", "", "Write to file instead of stdout")

	return cmd
}
