package service

import (
	"context"
	"genom-go/internal/model"
	"genom-go/internal/repository"
	"genom-go/pkg/log"
)

// OptionList 是某一等级的候选节点列表。
// Enabled 为 false 表示父级尚未选中；Failed 表示加载失败，此时 Nodes 为空。
type OptionList struct {
	Rank     model.Rank           `json:"rank"`
	ParentID *uint                `json:"parentId,omitempty"`
	Enabled  bool                 `json:"enabled"`
	Nodes    []model.TopologyNode `json:"nodes"`
	Failed   bool                 `json:"failed"`
}

// OptionService 定义了四个依赖型选项加载器。
type OptionService interface {
	// Load 返回 rank 在 parentID 下的选项，优先读缓存。
	Load(ctx context.Context, rank model.Rank, parentID *uint) OptionList
	// Refresh 跳过缓存读取直接查询数据库，并用结果整体替换缓存。
	Refresh(ctx context.Context, rank model.Rank, parentID *uint) OptionList
	// LoadAll 按编辑缓冲区的当前选择加载全部四个等级；row 为 nil 时只有 order 可用。
	LoadAll(ctx context.Context, row *model.GenomRow) []OptionList
	Invalidate(ctx context.Context, rank model.Rank, parentID *uint)
}

type optionService struct {
	taxonomyRepo repository.TaxonomyRepository
	cache        repository.OptionCacheRepository
}

// NewOptionService 创建一个新的 OptionService。cache 可以为 nil。
func NewOptionService(taxonomyRepo repository.TaxonomyRepository, cache repository.OptionCacheRepository) OptionService {
	return &optionService{taxonomyRepo: taxonomyRepo, cache: cache}
}

func (s *optionService) Load(ctx context.Context, rank model.Rank, parentID *uint) OptionList {
	return s.load(ctx, rank, parentID, true)
}

func (s *optionService) Refresh(ctx context.Context, rank model.Rank, parentID *uint) OptionList {
	return s.load(ctx, rank, parentID, false)
}

func (s *optionService) load(ctx context.Context, rank model.Rank, parentID *uint, useCache bool) OptionList {
	if rank == model.RankOrder {
		parentID = nil
	}
	list := OptionList{
		Rank:     rank,
		ParentID: parentID,
		Enabled:  rank == model.RankOrder || parentID != nil,
		Nodes:    []model.TopologyNode{},
	}
	if !list.Enabled {
		return list
	}

	if useCache && s.cache != nil {
		nodes, ok, err := s.cache.Get(ctx, rank, parentID)
		if err != nil {
			log.Warnf("[OptionService] 读取选项缓存失败, rank: %s, error: %v", rank, err)
		} else if ok {
			list.Nodes = nodes
			return list
		}
	}

	nodes, err := s.taxonomyRepo.ListNodes(ctx, rank, parentID)
	if err != nil {
		log.Warnw("[OptionService] 加载选项失败", "rank", rank.String(), "parentId", parentID, "error", err)
		list.Failed = true
		return list
	}
	list.Nodes = nodes

	if s.cache != nil {
		if err := s.cache.Set(ctx, rank, parentID, nodes); err != nil {
			log.Warnf("[OptionService] 写入选项缓存失败, rank: %s, error: %v", rank, err)
		}
	}
	return list
}

func (s *optionService) LoadAll(ctx context.Context, row *model.GenomRow) []OptionList {
	lists := make([]OptionList, 0, len(model.Ranks))
	for _, r := range model.Ranks {
		var parentID *uint
		if row != nil {
			parentID = row.ParentID(r)
		}
		lists = append(lists, s.Load(ctx, r, parentID))
	}
	return lists
}

func (s *optionService) Invalidate(ctx context.Context, rank model.Rank, parentID *uint) {
	if s.cache == nil {
		return
	}
	if rank == model.RankOrder {
		parentID = nil
	}
	if err := s.cache.Invalidate(ctx, rank, parentID); err != nil {
		log.Warnf("[OptionService] 清除选项缓存失败, rank: %s, error: %v", rank, err)
	}
}

// findNode 在选项列表中按 ID 查找节点。
func findNode(nodes []model.TopologyNode, id uint) (*model.TopologyNode, bool) {
	for i := range nodes {
		if nodes[i].ID == id {
			n := nodes[i]
			return &n, true
		}
	}
	return nil, false
}
