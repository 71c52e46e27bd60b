package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// publishTimeout は1イベントの書き込みに待つ上限。
const publishTimeout = 5 * time.Second

// MessageWriter はトピック指定でKafkaメッセージを書き込むインターフェース。
type MessageWriter interface {
	WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error
	Close() error
}

// Topics はイベント種別ごとの出力先トピック。
type Topics struct {
	Users     string
	Exercises string
}

// topicFor はイベント種別に対応するトピック名を返す。
func (t Topics) topicFor(eventType string) (string, bool) {
	switch eventType {
	case TypeUserRegistered:
		return t.Users, t.Users != ""
	case TypeExerciseLogged:
		return t.Exercises, t.Exercises != ""
	default:
		return "", false
	}
}

// KafkaPublisher はイベントをJSONにしてKafkaへ発行するPublisher。
type KafkaPublisher struct {
	writer MessageWriter
	topics Topics
}

// NewKafkaPublisher は指定ブローカーに接続するKafkaPublisherを生成する。
func NewKafkaPublisher(brokers []string, topics Topics) *KafkaPublisher {
	return NewKafkaPublisherWithWriter(NewKafkaProducer(brokers), topics)
}

// NewKafkaPublisherWithWriter は任意のMessageWriterを使うKafkaPublisherを生成する。
func NewKafkaPublisherWithWriter(writer MessageWriter, topics Topics) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topics: topics}
}

// Publish はイベントを対応するトピックへ書き込む。
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	topic, ok := p.topics.topicFor(e.Type)
	if !ok {
		return fmt.Errorf("no topic configured for event type %q", e.Type)
	}

	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", e.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(e.Key),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", e.Type, topic, err)
	}
	return nil
}

// Close は内部のライターを解放する。
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// KafkaProducer はトピックごとのkafka.Writerを遅延生成して管理する。
type KafkaProducer struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaProducer はKafkaProducerを生成する。
func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

// WriteMessages は指定トピックへメッセージを書き込む。ライターが無ければ生成する。
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	return p.writerForTopic(topic).WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
		WriteTimeout:           publishTimeout,
	}
	p.writers[topic] = writer
	return writer
}

// Close は全ライターを閉じる。最初に発生したエラーを返す。
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}

// compile-time interface checks
var _ Publisher = (*KafkaPublisher)(nil)
var _ Publisher = NopPublisher{}
var _ MessageWriter = (*KafkaProducer)(nil)
