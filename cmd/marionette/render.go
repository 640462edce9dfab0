package main

import (
	"os"

	"github.com/go-go-golems/marionette/pkg/render"
	"github.com/spf13/cobra"
)

func newRenderCommand() *cobra.Command {
	var (
		format   string
		style    string
		links    bool
		linkBase string
	)

	cmd := &cobra.Command{
		Use:   "render <script>",
		Short: "Print the full transcript without playback timing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScript(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return render.Transcript(os.Stdout, s.Turns, render.TranscriptOptions{
				Format:   render.Format(format),
				Title:    s.Title,
				Style:    style,
				Links:    links,
				LinkBase: linkBase,
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Transcript format (text, markdown, json, yaml)")
	cmd.Flags().StringVar(&style, "style", "", "Glamour style for markdown output")
	cmd.Flags().BoolVar(&links, "links", false, "Rewrite detected links as terminal hyperlinks")
	cmd.Flags().StringVar(&linkBase, "link-base", "", "Base URL for root-relative link targets")

	return cmd
}
