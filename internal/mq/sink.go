package mq

// EventSink adapts the producer to the escrow engine's event sink. Event
// types are used verbatim as routing keys.
type EventSink struct {
	producer *Producer
}

func NewEventSink(producer *Producer) *EventSink {
	return &EventSink{producer: producer}
}

func (s *EventSink) Emit(eventType string, payload any) error {
	return s.producer.Publish(eventType, payload)
}
