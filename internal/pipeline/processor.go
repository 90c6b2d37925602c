// Package pipeline 定义了分类编辑事件的异步处理流程。
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"genom-go/internal/config"
	"genom-go/internal/model"
	"genom-go/internal/repository"
	"genom-go/pkg/es"
	"genom-go/pkg/log"
	"genom-go/pkg/tasks"
)

type indexFunc func(ctx context.Context, indexName string, doc model.NodeDocument) error

// Processor 消费 Kafka 中的分类编辑事件：写审计历史，并把新建的节点索引到 Elasticsearch。
type Processor struct {
	esCfg     config.ElasticsearchConfig
	auditRepo repository.AuditRepository
	indexNode indexFunc
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(esCfg config.ElasticsearchConfig, auditRepo repository.AuditRepository) *Processor {
	return &Processor{
		esCfg:     esCfg,
		auditRepo: auditRepo,
		indexNode: es.IndexNode,
	}
}

// Process 处理单个事件。返回错误时消费者会原地重试，多次失败后提交 offset 放弃。
func (p *Processor) Process(ctx context.Context, event tasks.TaxonomyEvent) error {
	log.Infof("[Processor] 开始处理事件, EventID: %s, Action: %s, Editor: %s", event.EventID, event.Action, event.Editor)

	if event.EventID == "" {
		return errors.New("事件缺少 event_id")
	}

	// 1. 写入审计历史；event_id 唯一，重投的事件不会重复记录
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}
	entry := &model.AuditLog{
		EventID:   event.EventID,
		Editor:    event.Editor,
		Action:    event.Action,
		RowID:     event.RowID,
		Rank:      event.Rank,
		NodeID:    event.NodeID,
		Payload:   string(payload),
		CreatedAt: event.OccurredAt,
	}
	if err := p.auditRepo.Create(ctx, entry); err != nil {
		log.Errorf("[Processor] 写入审计记录失败, EventID: %s, Error: %v", event.EventID, err)
		return fmt.Errorf("写入审计记录失败: %w", err)
	}

	// 2. 新建的节点进入搜索索引
	if event.Action != tasks.ActionNodeCreated {
		return nil
	}
	if event.NodeID == nil {
		log.Warnf("[Processor] node.created 事件缺少 node_id, EventID: %s", event.EventID)
		return nil
	}
	doc := model.NodeDocument{
		DocID:    es.NodeDocID(event.Rank, *event.NodeID),
		NodeID:   *event.NodeID,
		Rank:     event.Rank,
		Name:     event.NodeName,
		ParentID: event.ParentID,
	}
	if err := p.indexNode(ctx, p.esCfg.IndexName, doc); err != nil {
		log.Errorf("[Processor] 索引节点失败, DocID: %s, Error: %v", doc.DocID, err)
		return fmt.Errorf("索引节点 %s 到 Elasticsearch 失败: %w", doc.DocID, err)
	}
	log.Infof("[Processor] 节点已索引, DocID: %s", doc.DocID)
	return nil
}
