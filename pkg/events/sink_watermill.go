package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog/log"
)

// WatermillSink publishes events to a watermill Publisher. Every message
// carries a monotonically increasing sequence_number in its metadata so
// subscribers can verify they observed the playback in order.
type WatermillSink struct {
	publisher message.Publisher
	topic     string

	mutex          sync.Mutex
	sequenceNumber uint64
}

// NewWatermillSink creates a new WatermillSink that publishes to the given
// publisher and topic.
func NewWatermillSink(publisher message.Publisher, topic string) *WatermillSink {
	return &WatermillSink{
		publisher: publisher,
		topic:     topic,
	}
}

// PublishEvent publishes the event to the watermill publisher.
// The event is serialized to JSON and sent as a watermill message.
func (w *WatermillSink) PublishEvent(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal event to JSON")
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)

	w.mutex.Lock()
	msg.Metadata.Set("sequence_number", fmt.Sprintf("%d", w.sequenceNumber))
	w.sequenceNumber++
	w.mutex.Unlock()

	err = w.publisher.Publish(w.topic, msg)
	if err != nil {
		log.Error().Err(err).Str("topic", w.topic).Msg("Failed to publish event to watermill")
		return err
	}

	log.Trace().Str("topic", w.topic).Str("event_type", string(event.Type())).Msg("Published event to watermill")
	return nil
}

var _ EventSink = (*WatermillSink)(nil)
