package events

import (
	"fmt"
	"io"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/marionette/pkg/script"
	"gopkg.in/yaml.v3"
)

// PlaybackPrinterFunc returns a watermill handler that renders playback
// events as a growing transcript: a role label when a turn starts, reveal
// deltas as they arrive, tool activity as YAML blocks. Used by the play
// command for animated terminal output.
func PlaybackPrinterFunc(w io.Writer) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		defer msg.Ack()

		e, err := NewEventFromJson(msg.Payload)
		if err != nil {
			return err
		}

		switch p_ := e.(type) {
		case *EventTurnStart:
			if p_.Kind == script.KindMessage {
				_, err = fmt.Fprintf(w, "%s: ", p_.Role)
				if err != nil {
					return err
				}
			}

		case *EventReveal:
			_, err = fmt.Fprintf(w, "%s", p_.Delta)
			if err != nil {
				return err
			}

		case *EventComposer:
			// staged user text reads the same as a reveal outside a TUI
			_, err = fmt.Fprintf(w, "%s", p_.Delta)
			if err != nil {
				return err
			}

		case *EventToolCall:
			v_, err := yaml.Marshal(p_.ToolCall)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "%s\n", v_)
			if err != nil {
				return err
			}

		case *EventToolResult:
			v_, err := yaml.Marshal(p_.ToolResult)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "%s\n", v_)
			if err != nil {
				return err
			}

		case *EventTurnCommit:
			if !p_.Turn.IsEvent() {
				_, err = fmt.Fprintf(w, "\n")
				if err != nil {
					return err
				}
			}

		case *EventError:
			_, err = fmt.Fprintf(w, "\nerror: %s\n", p_.ErrorString)
			if err != nil {
				return err
			}

		case *EventInterrupt:
			_, err = fmt.Fprintf(w, "\n")
			if err != nil {
				return err
			}

		case *EventPlaybackStart,
			*EventStateChange,
			*EventPlaybackFinished:
		}

		return nil
	}
}
