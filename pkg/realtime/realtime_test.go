package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/bazarly/bazarly-backend/pkg/config"
	"github.com/bazarly/bazarly-backend/pkg/enums"
	"github.com/bazarly/bazarly-backend/pkg/logger"
	"github.com/rs/zerolog"
)

type stubBroker struct {
	published map[string][][]byte
	failOn    string
}

func (s *stubBroker) Publish(_ context.Context, channel string, payload any) error {
	if channel == s.failOn {
		return errors.New("broker down")
	}
	if s.published == nil {
		s.published = map[string][][]byte{}
	}
	s.published[channel] = append(s.published[channel], payload.([]byte))
	return nil
}

func testPublisher(broker Broker) *Publisher {
	return NewPublisher(broker, config.RealtimeConfig{
		ChannelPrefix:  "bzr:room",
		PublishTimeout: time.Second,
	}, logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard}))
}

func TestRoomNames(t *testing.T) {
	p := testPublisher(&stubBroker{})
	if got := p.Room(enums.ActorRoleBuyer, "u-1"); got != "bzr:room:buyer:u-1" {
		t.Fatalf("unexpected room: %s", got)
	}
	if got := p.AdminRoom(); got != "bzr:room:admin" {
		t.Fatalf("unexpected admin room: %s", got)
	}
}

func TestPublishToRoomsDeliversToEach(t *testing.T) {
	broker := &stubBroker{}
	p := testPublisher(broker)

	event := Event{
		Type:      enums.EventOrderAccepted,
		OrderID:   "order-1",
		Seq:       4,
		Status:    enums.FulfillmentStatusAccepted,
		EmittedAt: time.Now().UTC(),
	}
	p.PublishToRooms(context.Background(), event, "bzr:room:buyer:u-1", "bzr:room:seller:s-1")

	if len(broker.published["bzr:room:buyer:u-1"]) != 1 {
		t.Fatal("expected buyer room to receive the event")
	}
	var decoded Event
	if err := json.Unmarshal(broker.published["bzr:room:seller:s-1"][0], &decoded); err != nil {
		t.Fatalf("unexpected error decoding event: %v", err)
	}
	if decoded.Seq != 4 || decoded.Status != enums.FulfillmentStatusAccepted {
		t.Fatalf("unexpected event: %+v", decoded)
	}
}

func TestPublishToRoomsSkipsFailedRoom(t *testing.T) {
	broker := &stubBroker{failOn: "bzr:room:buyer:u-1"}
	p := testPublisher(broker)

	p.PublishToRooms(context.Background(), Event{OrderID: "order-1"}, "bzr:room:buyer:u-1", "bzr:room:admin")

	if len(broker.published["bzr:room:admin"]) != 1 {
		t.Fatal("expected admin room to still receive the event")
	}
}
