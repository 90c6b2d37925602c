package pipeline

import (
	"context"
	"fmt"
	"genom-go/internal/config"
	"genom-go/internal/model"
	"genom-go/internal/repository"
	"genom-go/pkg/es"
	"genom-go/pkg/log"
)

// Reindexer 把数据库中已有的分类节点整体写入搜索索引，
// 用于补齐索引创建之前、或事件处理放弃之后遗漏的节点。
type Reindexer struct {
	esCfg        config.ElasticsearchConfig
	taxonomyRepo repository.TaxonomyRepository
	indexNode    indexFunc
}

// NewReindexer 创建一个新的 Reindexer 实例。
func NewReindexer(esCfg config.ElasticsearchConfig, taxonomyRepo repository.TaxonomyRepository) *Reindexer {
	return &Reindexer{
		esCfg:        esCfg,
		taxonomyRepo: taxonomyRepo,
		indexNode:    es.IndexNode,
	}
}

// Run 自 order 起逐级按父级遍历全部节点并写入索引，返回写入的文档数。
// 文档 ID 由等级与节点 ID 决定，重复执行只会覆盖同一批文档。
func (r *Reindexer) Run(ctx context.Context) (int, error) {
	log.Infof("[Reindexer] 开始重建索引 '%s'", r.esCfg.IndexName)
	count := 0
	if err := r.walk(ctx, model.RankOrder, nil, &count); err != nil {
		log.Errorf("[Reindexer] 重建索引中断, 已写入: %d, Error: %v", count, err)
		return count, err
	}
	log.Infof("[Reindexer] 重建索引完成, 共写入 %d 个节点", count)
	return count, nil
}

func (r *Reindexer) walk(ctx context.Context, rank model.Rank, parentID *uint, count *int) error {
	nodes, err := r.taxonomyRepo.ListNodes(ctx, rank, parentID)
	if err != nil {
		return fmt.Errorf("加载 %s 节点失败: %w", rank, err)
	}
	child, hasChild := rank.Child()
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := model.NodeDocument{
			DocID:    es.NodeDocID(rank.String(), n.ID),
			NodeID:   n.ID,
			Rank:     rank.String(),
			Name:     n.DisplayName(),
			ParentID: parentID,
		}
		if err := r.indexNode(ctx, r.esCfg.IndexName, doc); err != nil {
			return fmt.Errorf("索引节点 %s 失败: %w", doc.DocID, err)
		}
		*count++

		if hasChild {
			id := n.ID
			if err := r.walk(ctx, child, &id, count); err != nil {
				return err
			}
		}
	}
	return nil
}
