// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"genom-go/internal/config"
	"genom-go/internal/model"
	"genom-go/pkg/log"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// InitES 初始化 Elasticsearch 客户端
func InitES(esCfg config.ElasticsearchConfig) error {
	cfg := elasticsearch.Config{
		Addresses: strings.Split(esCfg.Addresses, ","),
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(esCfg.IndexName)
}

// nodeMapping 为节点名称同时建立 search_as_you_type 字段，用于新建弹窗中的前缀搜索。
const nodeMapping = `{
	"mappings": {
		"properties": {
			"doc_id": { "type": "keyword" },
			"node_id": { "type": "long" },
			"rank": { "type": "keyword" },
			"name": {
				"type": "search_as_you_type",
				"fields": { "raw": { "type": "keyword", "normalizer": "lowercase" } }
			},
			"parent_id": { "type": "long" }
		}
	},
	"settings": {
		"analysis": {
			"normalizer": {
				"lowercase": { "type": "custom", "filter": ["lowercase"] }
			}
		}
	}
}`

// createIndexIfNotExists 检查索引是否存在，如果不存在则创建它
func createIndexIfNotExists(indexName string) error {
	res, err := ESClient.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	defer res.Body.Close()
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("检查索引 '%s' 是否存在时收到意外的状态码: %d", indexName, res.StatusCode)
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	res, err = ESClient.Indices.Create(
		indexName,
		ESClient.Indices.Create.WithBody(strings.NewReader(nodeMapping)),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", indexName, err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", indexName)
	return nil
}

// NodeDocID 返回节点在索引中的文档 ID。
func NodeDocID(rank string, nodeID uint) string {
	return fmt.Sprintf("%s-%d", rank, nodeID)
}

// IndexNode 将单个分类节点索引到 Elasticsearch。
func IndexNode(ctx context.Context, indexName string, doc model.NodeDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: doc.DocID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, ESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引节点到 Elasticsearch 出错: %s", res.String())
		return errors.New("failed to index node")
	}
	return nil
}

// BuildNodeQuery 构建节点名称前缀搜索的查询体；rank 为空时不按等级过滤。
func BuildNodeQuery(text, rank string, size int) map[string]interface{} {
	boolQuery := map[string]interface{}{
		"must": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"type":   "bool_prefix",
				"fields": []string{"name", "name._2gram", "name._3gram"},
			},
		},
	}
	if rank != "" {
		boolQuery["filter"] = []map[string]interface{}{
			{"term": map[string]interface{}{"rank": rank}},
		}
	}
	return map[string]interface{}{
		"size":  size,
		"query": map[string]interface{}{"bool": boolQuery},
	}
}

// SearchNodes 按名称前缀搜索分类节点。
func SearchNodes(ctx context.Context, indexName, text, rank string, size int) ([]model.NodeSearchResult, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(BuildNodeQuery(text, rank, size)); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := ESClient.Search(
		ESClient.Search.WithContext(ctx),
		ESClient.Search.WithIndex(indexName),
		ESClient.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search nodes: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("Elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.NodeDocument `json:"_source"`
				Score  float64            `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	results := make([]model.NodeSearchResult, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		results = append(results, model.NodeSearchResult{
			NodeID:   hit.Source.NodeID,
			Rank:     hit.Source.Rank,
			Name:     hit.Source.Name,
			ParentID: hit.Source.ParentID,
			Score:    hit.Score,
		})
	}
	return results, nil
}
