package events

import "sync"

// CollectorSink retains every published event in memory, in publish order.
type CollectorSink struct {
	mutex  sync.Mutex
	events []Event
}

func NewCollectorSink() *CollectorSink {
	return &CollectorSink{}
}

func (c *CollectorSink) PublishEvent(event Event) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.events = append(c.events, event)
	return nil
}

// Events returns a copy of everything collected so far.
func (c *CollectorSink) Events() []Event {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]Event(nil), c.events...)
}

// Types returns the collected event types, in order.
func (c *CollectorSink) Types() []EventType {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	types := make([]EventType, len(c.events))
	for i, e := range c.events {
		types[i] = e.Type()
	}
	return types
}

// Reset drops everything collected so far.
func (c *CollectorSink) Reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.events = nil
}

var _ EventSink = (*CollectorSink)(nil)
