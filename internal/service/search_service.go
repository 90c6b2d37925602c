package service

import (
	"context"
	"errors"
	"genom-go/internal/model"
	"genom-go/pkg/es"
	"genom-go/pkg/log"
	"strings"
)

// ErrEmptyQuery 表示搜索文本为空。
var ErrEmptyQuery = errors.New("search text must not be empty")

// SearchService 接口定义了分类节点的名称搜索，用于新建弹窗中的搜索文本。
type SearchService interface {
	SearchNodes(ctx context.Context, text string, rank *model.Rank, size int) ([]model.NodeSearchResult, error)
}

type searchFunc func(ctx context.Context, indexName, text, rank string, size int) ([]model.NodeSearchResult, error)

type searchService struct {
	indexName string
	search    searchFunc
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(indexName string) SearchService {
	return &searchService{indexName: indexName, search: es.SearchNodes}
}

// SearchNodes 按名称前缀搜索节点，rank 为 nil 时搜索全部等级。
func (s *searchService) SearchNodes(ctx context.Context, text string, rank *model.Rank, size int) ([]model.NodeSearchResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}
	if size < 1 || size > 50 {
		size = 10
	}
	rankName := ""
	if rank != nil {
		rankName = rank.String()
	}
	results, err := s.search(ctx, s.indexName, text, rankName, size)
	if err != nil {
		log.Errorf("[SearchService] 搜索节点失败, text: '%s', error: %v", text, err)
		return nil, err
	}
	return results, nil
}
