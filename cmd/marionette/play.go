package main

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/marionette/pkg/events"
	"github.com/go-go-golems/marionette/pkg/player"
	"github.com/go-go-golems/marionette/pkg/script"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newPlayCommand() *cobra.Command {
	var (
		speed        int
		delayMs      int
		layout       string
		outputFormat string
		withMetadata bool
		fullOutput   bool
		verbose      bool
		rawEvents    bool
	)

	cmd := &cobra.Command{
		Use:   "play <script>",
		Short: "Animate a script as a growing terminal transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScript(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			playerOptions, err := pacingOptions(speed, delayMs, layout)
			if err != nil {
				return err
			}

			return runPlayback(cmd.Context(), s, playerOptions, playbackOutput{
				format:       outputFormat,
				withMetadata: withMetadata,
				full:         fullOutput,
				verbose:      verbose,
				raw:          rawEvents,
			})
		},
	}

	cmd.Flags().IntVar(&speed, "speed", 0, "Override typing speed in characters per second")
	cmd.Flags().IntVar(&delayMs, "delay", -1, "Override dwell after each turn in milliseconds")
	cmd.Flags().StringVar(&layout, "layout", "scripted", "Layout (scripted, combined)")
	cmd.Flags().StringVar(&outputFormat, "output", "text", "Output format (text, json, yaml)")
	cmd.Flags().BoolVar(&withMetadata, "with-metadata", false, "Include event metadata in structured output")
	cmd.Flags().BoolVar(&fullOutput, "full-output", false, "Include bookkeeping events in structured output")
	cmd.Flags().BoolVar(&verbose, "verbose-router", false, "Verbose event router logging")
	cmd.Flags().BoolVar(&rawEvents, "raw-events", false, "Dump raw event JSON instead of rendering")

	return cmd
}

type playbackOutput struct {
	format       string
	withMetadata bool
	full         bool
	verbose      bool
	raw          bool
}

// pacingOptions translates the shared pacing flags into player options. speed
// 0 and delay -1 mean "whatever the script says".
func pacingOptions(speed int, delayMs int, layout string) ([]player.Option, error) {
	options := []player.Option{}

	switch player.Layout(layout) {
	case player.LayoutScripted, "":
	case player.LayoutCombined:
		options = append(options, player.WithLayout(player.LayoutCombined))
	default:
		return nil, errors.Errorf("unknown layout %q", layout)
	}

	if speed > 0 {
		options = append(options, player.WithRate(speed))
	}
	if delayMs >= 0 {
		options = append(options, player.WithDelay(time.Duration(delayMs)*time.Millisecond))
	}

	return options, nil
}

// runPlayback wires a player to the event router and blocks until the script
// has fully committed or the context is cancelled.
func runPlayback(ctx context.Context, s *script.Script, playerOptions []player.Option, output playbackOutput) error {
	routerOptions := []events.EventRouterOption{}
	if output.verbose {
		routerOptions = append(routerOptions, events.WithVerbose(true))
	}

	router, err := events.NewEventRouter(routerOptions...)
	if err != nil {
		return errors.Wrap(err, "failed to create event router")
	}
	defer func() {
		if router != nil {
			_ = router.Close()
		}
	}()

	watermillSink := events.NewWatermillSink(router.Publisher, "playback")

	if output.raw {
		router.AddHandler("raw-events", "playback", router.DumpRawEvents)
	} else {
		printer := events.NewStructuredPrinter(os.Stdout, events.PrinterOptions{
			Format:          events.PrinterFormat(output.format),
			IncludeMetadata: output.withMetadata,
			Full:            output.full,
		})
		router.AddHandler("playback", "playback", printer)
	}

	done := make(chan struct{})
	var once sync.Once
	router.AddHandler("completion", "playback", func(msg *message.Message) error {
		defer msg.Ack()

		e, err := events.NewEventFromJson(msg.Payload)
		if err != nil {
			return err
		}
		switch e.(type) {
		case *events.EventPlaybackFinished, *events.EventError:
			once.Do(func() {
				close(done)
			})
		}
		return nil
	})

	eg := errgroup.Group{}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg.Go(func() error {
		defer cancel()
		return router.Run(ctx)
	})

	eg.Go(func() error {
		defer cancel()
		<-router.Running()

		options := append([]player.Option{player.WithSink(watermillSink)}, playerOptions...)
		p, err := player.NewWithScript(s, options...)
		if err != nil {
			return err
		}
		p.Play()

		select {
		case <-done:
		case <-ctx.Done():
			p.Pause()
		}
		return nil
	})

	err = eg.Wait()
	if err != nil {
		return err
	}

	log.Debug().Int("turns", s.Len()).Msg("Playback completed")
	return nil
}
