package service

import (
	"context"
	"genom-go/internal/model"
	"genom-go/pkg/log"
	"genom-go/pkg/tasks"
	"genom-go/pkg/token"
	"time"
)

// EventPublisher 发布分类编辑事件，由 Kafka 生产者实现。
type EventPublisher interface {
	Publish(ctx context.Context, event tasks.TaxonomyEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, tasks.TaxonomyEvent) error { return nil }

// NoopPublisher 返回一个丢弃所有事件的 EventPublisher。
func NoopPublisher() EventPublisher { return noopPublisher{} }

func committedEvent(editor string, commit model.TaxonomyCommit) tasks.TaxonomyEvent {
	rowID := commit.RowID
	return tasks.TaxonomyEvent{
		EventID:    token.GenerateRandomString(16),
		Action:     tasks.ActionTaxonomyCommitted,
		Editor:     editor,
		RowID:      &rowID,
		OrderID:    commit.OrderID,
		FamilyID:   commit.FamilyID,
		GenusID:    commit.GenusID,
		KindID:     commit.KindID,
		OccurredAt: time.Now(),
	}
}

func createdEvent(editor string, req model.NewNode, node model.TopologyNode, rowID *uint) tasks.TaxonomyEvent {
	id := node.ID
	return tasks.TaxonomyEvent{
		EventID:    token.GenerateRandomString(16),
		Action:     tasks.ActionNodeCreated,
		Editor:     editor,
		RowID:      rowID,
		Rank:       req.Rank.String(),
		NodeID:     &id,
		NodeName:   node.DisplayName(),
		ParentID:   req.ParentID,
		OccurredAt: time.Now(),
	}
}

// publishTimeout 限制单次发布的等待时间。
const publishTimeout = 5 * time.Second

// publish 发布事件；失败只记录日志，不影响已经完成的写入。
// 调用方必须在释放会话锁之后调用。请求被取消也不丢弃已经完成的写入的事件。
func publish(ctx context.Context, p EventPublisher, event tasks.TaxonomyEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, event); err != nil {
		log.Warnw("[Events] 发布分类事件失败", "eventId", event.EventID, "action", event.Action, "error", err)
	}
}
