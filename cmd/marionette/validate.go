package main

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-go-golems/marionette/pkg/script"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <script>",
		Short: "Check a script and print its playback summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScript(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			messages, toolCalls, toolResults := 0, 0, 0
			for i := range s.Turns {
				switch s.Turns[i].NormalizedKind() {
				case script.KindToolCall:
					toolCalls++
				case script.KindToolResult:
					toolResults++
				default:
					messages++
				}
			}

			if s.Title != "" {
				fmt.Printf("Title:    %s\n", s.Title)
			}
			fmt.Printf("Turns:    %d (%d messages, %d tool calls, %d tool results)\n",
				s.Len(), messages, toolCalls, toolResults)
			fmt.Printf("Pacing:   %d cps, %s dwell\n", s.Rate(), s.Delay())
			fmt.Printf("Duration: ~%s\n", estimateDuration(s).Round(time.Second))
			fmt.Println("OK")

			return nil
		},
	}

	return cmd
}

// estimateDuration sums reveal ticks and dwells across the script the way
// playback would spend them.
func estimateDuration(s *script.Script) time.Duration {
	rate := s.Rate()
	if rate < 1 {
		rate = 1
	}
	tick := time.Second / time.Duration(rate)
	delay := s.Delay()

	total := time.Duration(0)
	for i := range s.Turns {
		t := &s.Turns[i]
		if t.IsEvent() {
			total += t.Duration()
			continue
		}
		total += time.Duration(utf8.RuneCountInString(t.Text()))*tick + delay
	}
	return total
}
