// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"context"
	"errors"
	"fmt"
	"genom-go/internal/model"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ErrParentNotFound 表示新建节点时指定的父级节点不存在。
var ErrParentNotFound = errors.New("parent node not found")

// TaxonomyRepository 接口定义了分类节点与标本分类路径的数据操作方法。
type TaxonomyRepository interface {
	ListNodes(ctx context.Context, rank model.Rank, parentID *uint) ([]model.TopologyNode, error)
	CreateNode(ctx context.Context, req model.NewNode) (*model.TopologyNode, error)
	FindSpecimen(ctx context.Context, rowID uint) (*model.Specimen, error)
	CommitTaxonomy(ctx context.Context, commit model.TaxonomyCommit) error
}

type taxonomyRepository struct {
	db *gorm.DB
}

// NewTaxonomyRepository 创建一个新的 TaxonomyRepository 实例。
func NewTaxonomyRepository(db *gorm.DB) TaxonomyRepository {
	return &taxonomyRepository{db: db}
}

// ListNodes 返回某一等级的节点，parentID 不为 nil 时按父级外键过滤。
// order 等级只返回名称不为空的节点。
func (r *taxonomyRepository) ListNodes(ctx context.Context, rank model.Rank, parentID *uint) ([]model.TopologyNode, error) {
	if !rank.Valid() {
		return nil, fmt.Errorf("invalid rank %d", rank)
	}
	q := r.db.WithContext(ctx).Table(rank.Table()).Select("id", "name").Order("name")
	if rank == model.RankOrder {
		q = q.Where("name IS NOT NULL")
	} else if parentID != nil {
		q = q.Where(rank.ParentColumn()+" = ?", *parentID)
	}

	nodes := make([]model.TopologyNode, 0)
	if err := q.Scan(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

// CreateNode 在对应等级的表中插入一个新节点。
// 唯一索引冲突会被转换为 model.ErrDuplicateName。
func (r *taxonomyRepository) CreateNode(ctx context.Context, req model.NewNode) (*model.TopologyNode, error) {
	db := r.db.WithContext(ctx)
	name := req.Name

	if parent, ok := req.Rank.Parent(); ok {
		if req.ParentID == nil {
			return nil, ErrParentNotFound
		}
		var count int64
		if err := db.Table(parent.Table()).Where("id = ?", *req.ParentID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrParentNotFound
		}
	}

	var created model.TopologyNode
	var err error
	switch req.Rank {
	case model.RankOrder:
		rec := model.Order{Name: &name}
		err = db.Create(&rec).Error
		created = rec.Node()
	case model.RankFamily:
		rec := model.Family{Name: &name, OrderID: req.ParentID}
		err = db.Create(&rec).Error
		created = rec.Node()
	case model.RankGenus:
		rec := model.Genus{Name: &name, FamilyID: req.ParentID}
		err = db.Create(&rec).Error
		created = rec.Node()
	case model.RankKind:
		rec := model.Kind{Name: &name, GenusID: req.ParentID}
		err = db.Create(&rec).Error
		created = rec.Node()
	default:
		return nil, fmt.Errorf("invalid rank %d", req.Rank)
	}
	if err != nil {
		if isDuplicateKey(err) {
			return nil, model.ErrDuplicateName
		}
		return nil, err
	}
	return &created, nil
}

// FindSpecimen 根据 ID 查找标本，并预加载四个分类等级。
func (r *taxonomyRepository) FindSpecimen(ctx context.Context, rowID uint) (*model.Specimen, error) {
	var s model.Specimen
	err := r.db.WithContext(ctx).
		Preload("Order").
		Preload("Family").
		Preload("Genus").
		Preload("Kind").
		First(&s, rowID).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CommitTaxonomy 在一个事务中整体更新标本的四个分类外键，未设置的等级写为 NULL，
// 避免出现只更新了一部分的中间状态。
func (r *taxonomyRepository) CommitTaxonomy(ctx context.Context, commit model.TaxonomyCommit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s model.Specimen
		if err := tx.Select("id").First(&s, commit.RowID).Error; err != nil {
			return err
		}
		return tx.Model(&s).Updates(map[string]interface{}{
			"order_id":  commit.OrderID,
			"family_id": commit.FamilyID,
			"genus_id":  commit.GenusID,
			"kind_id":   commit.KindID,
		}).Error
	})
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
