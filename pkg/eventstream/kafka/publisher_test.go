package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/venyro/pkg/eventstream"
	"github.com/papercomputeco/venyro/pkg/storage"
)

type fakeWriter struct {
	messages    []kafkago.Message
	err         error
	closed      bool
	hadDeadline bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	_, f.hadDeadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

var _ = Describe("Publisher", func() {
	var (
		writer    *fakeWriter
		publisher *Publisher
		event     *eventstream.RecordedEvent
	)

	BeforeEach(func() {
		writer = &fakeWriter{}
		publisher = newPublisher(writer, time.Second)
		event = eventstream.NewRecordedEvent(&storage.Record{
			ID:     "rec-1",
			Action: "chatWithStrategy",
			Status: storage.StatusSucceeded,
		}, eventstream.EventSource{Provider: "gemini"})
	})

	It("requires brokers", func() {
		_, err := NewPublisher(Config{})
		Expect(err).To(HaveOccurred())
	})

	It("builds a writer for the default topic", func() {
		p, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}})
		Expect(err).NotTo(HaveOccurred())

		w, ok := p.writer.(*kafkago.Writer)
		Expect(ok).To(BeTrue())
		Expect(w.Topic).To(Equal(DefaultTopic))
		Expect(p.timeout).To(Equal(10 * time.Second))
	})

	It("writes one JSON message keyed by action", func() {
		Expect(publisher.PublishRecord(context.Background(), event)).To(Succeed())

		Expect(writer.messages).To(HaveLen(1))
		msg := writer.messages[0]
		Expect(string(msg.Key)).To(Equal("chatWithStrategy"))
		Expect(writer.hadDeadline).To(BeTrue())

		var decoded eventstream.RecordedEvent
		Expect(json.Unmarshal(msg.Value, &decoded)).To(Succeed())
		Expect(decoded.EventID).To(Equal(event.EventID))
		Expect(decoded.Record.ID).To(Equal("rec-1"))
		Expect(msg.Headers).To(ContainElement(kafkago.Header{
			Key:   "event_type",
			Value: []byte(eventstream.EventTypeGenerationRecorded),
		}))
	})

	It("rejects nil events", func() {
		err := publisher.PublishRecord(context.Background(), nil)
		Expect(err).To(MatchError(eventstream.ErrNilRecordedEvent))
		Expect(writer.messages).To(BeEmpty())
	})

	It("wraps writer failures", func() {
		boom := errors.New("broker unavailable")
		writer.err = boom

		err := publisher.PublishRecord(context.Background(), event)
		Expect(errors.Is(err, boom)).To(BeTrue())
	})

	It("closes the writer", func() {
		Expect(publisher.Close()).To(Succeed())
		Expect(writer.closed).To(BeTrue())
	})
})
