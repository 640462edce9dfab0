package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/go-go-golems/marionette/pkg/doc"
	"github.com/spf13/cobra"
)

func newDocsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show the embedded documentation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				topics, err := doc.Topics()
				if err != nil {
					return err
				}
				for _, topic := range topics {
					fmt.Printf("%-16s %s\n", topic.Slug, topic.Title)
				}
				return nil
			}

			topic, err := doc.Lookup(args[0])
			if err != nil {
				return err
			}
			out, err := glamour.Render(topic.Content, "dark")
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}

	return cmd
}
