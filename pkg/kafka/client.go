// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"genom-go/internal/config"
	"genom-go/pkg/log"
	"genom-go/pkg/tasks"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// maxAttempts 是同一事件的处理次数上限，超过后提交 offset 放弃该事件。
const maxAttempts = 3

// EventProcessor defines the interface for any service that can process a taxonomy event.
// This decouples the Kafka consumer from the concrete pipeline implementation.
type EventProcessor interface {
	Process(ctx context.Context, event tasks.TaxonomyEvent) error
}

// publishBatchTimeout 覆盖 kafka-go 默认的 1s 攒批等待，事件是逐条同步发送的。
const publishBatchTimeout = 10 * time.Millisecond

// Producer 将分类编辑事件写入 Kafka。
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 初始化 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	p := &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(strings.Split(cfg.Brokers, ",")...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           publishBatchTimeout,
			AllowAutoTopicCreation: true,
		},
	}
	log.Info("Kafka 生产者初始化成功")
	return p
}

// Publish 发送一个分类编辑事件。同一编辑者的事件使用相同的 key，保证分区内有序。
func (p *Producer) Publish(ctx context.Context, event tasks.TaxonomyEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Editor),
		Value: value,
	})
}

// Close 刷新并关闭生产者。
func (p *Producer) Close() error {
	return p.writer.Close()
}

// messageReader 是消费循环用到的 kafka.Reader 方法子集。
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// retryBackoff 是同一事件两次处理之间的基础等待时间，第 n 次重试等待 n 倍。
var retryBackoff = time.Second

// StartConsumer 启动一个 Kafka 消费者来处理分类编辑事件，ctx 取消时退出。
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, processor EventProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(cfg.Brokers, ","),
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)
	consume(ctx, r, processor)
}

// consume 逐条处理消息。offset 只在消息处理成功或放弃之后提交，
// 失败的消息在原地重试，后续消息不会越过它被提交。
func consume(ctx context.Context, r messageReader, processor EventProcessor) {
	defer func() {
		if err := r.Close(); err != nil {
			log.Errorf("关闭 Kafka 消费者失败: %v", err)
		}
	}()

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("Kafka 消费者收到停止信号")
			} else {
				log.Error("从 Kafka 读取消息失败", err)
			}
			return
		}

		var event tasks.TaxonomyEvent
		if err := json.Unmarshal(m.Value, &event); err != nil {
			log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
			// 消息格式错误，直接提交，避免阻塞队列
			if err := r.CommitMessages(ctx, m); err != nil {
				log.Errorf("提交错误消息失败: %v", err)
			}
			continue
		}

		if err := processWithRetry(ctx, processor, event); err != nil {
			if ctx.Err() != nil {
				// 停机时不提交，重启后从这条消息继续
				log.Info("Kafka 消费者收到停止信号")
				return
			}
			log.Errorf("分类事件多次失败(>=%d)，提交 offset 终止重试: event=%s, error: %v", maxAttempts, event.EventID, err)
		}
		if err := r.CommitMessages(ctx, m); err != nil {
			log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
		}
	}
}

// processWithRetry 最多处理 maxAttempts 次，返回最后一次的错误。
func processWithRetry(ctx context.Context, processor EventProcessor, event tasks.TaxonomyEvent) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = processor.Process(ctx, event); err == nil {
			return nil
		}
		log.Errorf("处理分类事件失败: event=%s, action=%s, attempt=%d, error: %v", event.EventID, event.Action, attempt, err)
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return err
}
