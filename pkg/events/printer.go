package events

import (
	"encoding/json"
	"io"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type PrinterFormat string

const (
	FormatText PrinterFormat = "text"
	FormatJSON PrinterFormat = "json"
	FormatYAML PrinterFormat = "yaml"
)

type PrinterOptions struct {
	Format PrinterFormat
	// IncludeMetadata adds the event metadata to structured output.
	IncludeMetadata bool
	// Full also prints bookkeeping events (start, state, finished) that the
	// compact structured output drops.
	Full bool
}

// NewStructuredPrinter returns a handler that renders playback events either
// as transcript text or as one structured record per event. The JSON format
// emits one object per line, the YAML format separates events with document
// markers.
func NewStructuredPrinter(w io.Writer, options PrinterOptions) func(msg *message.Message) error {
	textPrinter := PlaybackPrinterFunc(w)

	return func(msg *message.Message) error {
		switch options.Format {
		case FormatText, "":
			return textPrinter(msg)
		case FormatJSON:
			return handleStructuredFormat(w, msg, options, func(v interface{}) ([]byte, error) {
				b, err := json.Marshal(v)
				if err != nil {
					return nil, err
				}
				return append(b, '\n'), nil
			})
		case FormatYAML:
			return handleStructuredFormat(w, msg, options, func(v interface{}) ([]byte, error) {
				b, err := yaml.Marshal(v)
				if err != nil {
					return nil, err
				}
				return append([]byte("---\n"), b...), nil
			})
		default:
			msg.Ack()
			return errors.Errorf("unknown printer format %q", options.Format)
		}
	}
}

func handleStructuredFormat(
	w io.Writer,
	msg *message.Message,
	options PrinterOptions,
	marshal func(v interface{}) ([]byte, error),
) error {
	defer msg.Ack()

	e, err := NewEventFromJson(msg.Payload)
	if err != nil {
		return err
	}

	record := structuredRecord(e, options)
	if record == nil {
		return nil
	}

	b, err := marshal(record)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func structuredRecord(e Event, options PrinterOptions) map[string]interface{} {
	record := map[string]interface{}{
		"type": string(e.Type()),
	}

	switch p_ := e.(type) {
	case *EventTurnStart:
		record["kind"] = string(p_.Kind)
		if p_.Role != "" {
			record["role"] = string(p_.Role)
		}
	case *EventReveal:
		record["delta"] = p_.Delta
		if options.Full {
			record["partial"] = p_.Partial
		}
	case *EventComposer:
		record["delta"] = p_.Delta
		if options.Full {
			record["staged"] = p_.Staged
		}
	case *EventToolCall:
		record["tool_call"] = p_.ToolCall
		record["duration_ms"] = p_.DurationMs
	case *EventToolResult:
		record["tool_result"] = p_.ToolResult
	case *EventTurnCommit:
		record["turn"] = p_.Turn
	case *EventError:
		record["error"] = p_.ErrorString
	case *EventStateChange:
		if !options.Full {
			return nil
		}
		record["state"] = p_.State
	case *EventPlaybackStart:
		if !options.Full {
			return nil
		}
		record["total_turns"] = p_.TotalTurns
	case *EventPlaybackFinished:
		if !options.Full {
			return nil
		}
		record["committed"] = p_.Committed
	case *EventInterrupt:
		record["text"] = p_.Text
	}

	if options.IncludeMetadata {
		record["meta"] = e.Metadata()
	}

	return record
}
