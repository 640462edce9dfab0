package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/marionette/pkg/echo"
	"github.com/go-go-golems/marionette/pkg/events"
	"github.com/go-go-golems/marionette/pkg/player"
	"github.com/go-go-golems/marionette/pkg/render"
	"github.com/go-go-golems/marionette/pkg/script"
	"github.com/go-go-golems/marionette/pkg/ui"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newTuiCommand() *cobra.Command {
	var (
		speed    int
		delayMs  int
		layout   string
		live     bool
		autoplay bool
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "tui [script]",
		Short: "Play a script in an interactive terminal player",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var s *script.Script

			fromStdin := false
			if len(args) > 0 {
				fromStdin = args[0] == "-"
				var err error
				s, err = loadScript(cmd.Context(), args[0])
				if err != nil {
					return err
				}
			} else if live {
				// live without a script starts from an empty conversation
				s = &script.Script{}
			} else {
				return errors.New("a script argument is required unless --live is set")
			}

			playerOptions, err := pacingOptions(speed, delayMs, layout)
			if err != nil {
				return err
			}

			return runTui(cmd.Context(), s, tuiOptions{
				fromStdin: fromStdin,
				live:      live,
				autoplay:  autoplay,
				verbose:   verbose,
			}, playerOptions)
		},
	}

	cmd.Flags().IntVar(&speed, "speed", 0, "Override typing speed in characters per second")
	cmd.Flags().IntVar(&delayMs, "delay", -1, "Override dwell after each turn in milliseconds")
	cmd.Flags().StringVar(&layout, "layout", "scripted", "Layout (scripted, combined)")
	cmd.Flags().BoolVar(&live, "live", false, "Let the composer interrupt playback and echo replies")
	cmd.Flags().BoolVar(&autoplay, "autoplay", true, "Start playing as soon as the player opens")
	cmd.Flags().BoolVar(&verbose, "verbose-router", false, "Verbose event router logging")

	return cmd
}

type tuiOptions struct {
	fromStdin bool
	live      bool
	autoplay  bool
	verbose   bool
}

func runTui(ctx context.Context, s *script.Script, opts tuiOptions, playerOptions []player.Option) error {
	routerOptions := []events.EventRouterOption{}
	if opts.verbose {
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

	watermillSink := events.NewWatermillSink(router.Publisher, "ui")

	options := append([]player.Option{player.WithSink(watermillSink)}, playerOptions...)
	p, err := player.NewWithScript(s, options...)
	if err != nil {
		return err
	}

	modelOptions := []ui.ModelOption{}
	if s.Title != "" {
		modelOptions = append(modelOptions, ui.WithTitle(s.Title))
	}
	if opts.live {
		modelOptions = append(modelOptions, ui.WithResponder(echo.NewCanned()))
	}
	if opts.autoplay && s.Len() > 0 {
		modelOptions = append(modelOptions, ui.WithAutoplay())
	}

	isOutputTerminal := isatty.IsTerminal(os.Stdout.Fd())

	programOptions := []tea.ProgramOption{
		tea.WithMouseCellMotion(), // turn on mouse support so we can track the mouse wheel
	}
	if !isOutputTerminal {
		programOptions = append(programOptions, tea.WithOutput(os.Stderr))
	} else {
		programOptions = append(programOptions, tea.WithAltScreen())
	}

	if opts.fromStdin {
		tty, err := ui.OpenTTY()
		if err != nil {
			return errors.Wrap(err, "stdin carries the script and no terminal is available for input")
		}
		defer func() {
			_ = tty.Close()
		}()
		programOptions = append(programOptions, tea.WithInput(tty))
	}

	program := tea.NewProgram(
		ui.InitialModel(p, modelOptions...),
		programOptions...,
	)

	router.AddHandler("ui", "ui", ui.PlaybackForwardFunc(program))

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

		if _, err := program.Run(); err != nil {
			return err
		}
		p.Pause()
		return nil
	})

	err = eg.Wait()
	if err != nil {
		return err
	}

	// echo the committed transcript now that the alternate screen is gone
	for _, t := range p.History() {
		fmt.Printf("\n%s\n", render.TurnText(t))
	}

	return nil
}
