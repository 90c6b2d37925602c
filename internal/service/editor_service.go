package service

import (
	"context"
	"errors"
	"fmt"
	"genom-go/internal/model"
	"genom-go/internal/repository"
	"genom-go/pkg/log"

	"gorm.io/gorm"
)

// StartResult 是开始编辑的结果。ReplacedRowID 不为 nil 时表示之前未保存的编辑已被丢弃。
type StartResult struct {
	Row           model.GenomRow `json:"row"`
	ReplacedRowID *uint          `json:"replacedRowId,omitempty"`
}

// EditorService 接口定义了分类编辑缓冲区的操作：开始编辑、级联修改、提交与放弃。
type EditorService interface {
	StartEditing(ctx context.Context, editor string, rowID uint, strict bool) (*StartResult, error)
	Current(ctx context.Context, editor string) (*model.EditSession, error)
	Change(ctx context.Context, editor string, rank model.Rank, nodeID *uint) (*model.GenomRow, error)
	Commit(ctx context.Context, editor string) (*model.GenomRow, error)
	Discard(ctx context.Context, editor string) error
}

type editorService struct {
	taxonomyRepo repository.TaxonomyRepository
	sessions     *SessionStore
	options      OptionService
	publisher    EventPublisher
	strict       bool
}

// NewEditorService 创建一个新的 EditorService 实例。strict 为 true 时，
// 不允许在另一行尚未保存时开始编辑新行。
func NewEditorService(taxonomyRepo repository.TaxonomyRepository, sessions *SessionStore, options OptionService, publisher EventPublisher, strict bool) EditorService {
	if publisher == nil {
		publisher = NoopPublisher()
	}
	return &editorService{
		taxonomyRepo: taxonomyRepo,
		sessions:     sessions,
		options:      options,
		publisher:    publisher,
		strict:       strict,
	}
}

// StartEditing 把指定行当前的分类路径复制到编辑缓冲区。
// 同一编辑者同时只能编辑一行：默认静默替换之前的缓冲区，strict 模式下返回 ErrEditInProgress。
func (s *editorService) StartEditing(ctx context.Context, editor string, rowID uint, strict bool) (*StartResult, error) {
	unlock := s.sessions.lock(editor)
	defer unlock()

	specimen, err := s.taxonomyRepo.FindSpecimen(ctx, rowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRowNotFound
		}
		return nil, err
	}

	sess, err := s.sessions.load(ctx, editor)
	if err != nil {
		return nil, err
	}

	result := &StartResult{Row: specimen.GenomRow()}
	if prev := sess.Row; prev != nil {
		if prev.RowID != rowID && (strict || s.strict) {
			return nil, fmt.Errorf("%w: row %d", ErrEditInProgress, prev.RowID)
		}
		if sess.Create != nil && sess.Create.State == model.CreatePersisting {
			return nil, model.ErrCreatePending
		}
		if prev.RowID != rowID {
			replaced := prev.RowID
			result.ReplacedRowID = &replaced
			log.Warnf("[EditorService] 编辑者 '%s' 开始编辑行 %d，丢弃了行 %d 未保存的修改", editor, rowID, prev.RowID)
		}
	}

	row := result.Row.Clone()
	sess.Row = &row
	sess.Create = nil
	if err := s.sessions.save(ctx, sess); err != nil {
		return nil, err
	}
	return result, nil
}

// Current 返回编辑者的当前会话；没有正在编辑的行时 Row 为 nil。
func (s *editorService) Current(ctx context.Context, editor string) (*model.EditSession, error) {
	return s.sessions.load(ctx, editor)
}

// Change 在 rank 上选择 nodeID（nil 表示清除），并清空所有下级等级。
// nodeID 必须出现在按父级限定的选项中。
func (s *editorService) Change(ctx context.Context, editor string, rank model.Rank, nodeID *uint) (*model.GenomRow, error) {
	unlock := s.sessions.lock(editor)
	defer unlock()

	sess, err := s.sessions.load(ctx, editor)
	if err != nil {
		return nil, err
	}
	if sess.Row == nil {
		return nil, ErrNoEditInProgress
	}

	var selected *model.TopologyNode
	if nodeID != nil {
		parentID := sess.Row.ParentID(rank)
		if rank != model.RankOrder && parentID == nil {
			return nil, ErrParentNotSelected
		}
		options := s.options.Load(ctx, rank, parentID)
		node, ok := findNode(options.Nodes, *nodeID)
		if !ok {
			return nil, fmt.Errorf("%w: %s %d", ErrNodeNotInScope, rank, *nodeID)
		}
		selected = node
	}

	row := model.ApplyChange(*sess.Row, rank, selected)
	sess.Row = &row
	// 同级或下级的新建流程随之关闭。写入中的流程也关闭，写入返回后不再覆盖这次选择
	if c := sess.Create; c != nil && c.Rank >= rank {
		if c.State == model.CreatePersisting {
			log.Warnf("[EditorService] 编辑者 '%s' 修改了 %s，正在写入的 %s 新建结果将不会被自动选中", editor, rank, c.Rank)
		}
		sess.Create = nil
	}
	if err := s.sessions.save(ctx, sess); err != nil {
		return nil, err
	}
	return &row, nil
}

// Commit 通过一次远程调用持久化编辑后的分类路径。
// 成功后清空缓冲区；失败时保留缓冲区以便重试。
func (s *editorService) Commit(ctx context.Context, editor string) (*model.GenomRow, error) {
	committed, commit, err := s.commit(ctx, editor)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.publisher, committedEvent(editor, commit))
	log.Infof("[EditorService] 编辑者 '%s' 提交了行 %d 的分类", editor, commit.RowID)
	return committed, nil
}

func (s *editorService) commit(ctx context.Context, editor string) (*model.GenomRow, model.TaxonomyCommit, error) {
	unlock := s.sessions.lock(editor)
	defer unlock()

	sess, err := s.sessions.load(ctx, editor)
	if err != nil {
		return nil, model.TaxonomyCommit{}, err
	}
	if sess.Row == nil {
		return nil, model.TaxonomyCommit{}, ErrNoEditInProgress
	}
	if sess.Create != nil && sess.Create.State == model.CreatePersisting {
		return nil, model.TaxonomyCommit{}, model.ErrCreatePending
	}

	commit := model.NewTaxonomyCommit(*sess.Row)
	if err := s.taxonomyRepo.CommitTaxonomy(ctx, commit); err != nil {
		log.Errorf("[EditorService] 提交分类失败, editor: %s, row: %d, error: %v", editor, commit.RowID, err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.TaxonomyCommit{}, ErrRowNotFound
		}
		return nil, model.TaxonomyCommit{}, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	committed := *sess.Row
	if err := s.sessions.clear(ctx, editor); err != nil {
		// 数据已写入，缓冲区残留只影响界面状态
		log.Warnf("[EditorService] 提交后清除编辑会话失败, editor: %s, error: %v", editor, err)
	}
	return &committed, commit, nil
}

// Discard 放弃内存中的修改，不发起任何远程调用。
func (s *editorService) Discard(ctx context.Context, editor string) error {
	unlock := s.sessions.lock(editor)
	defer unlock()
	return s.sessions.clear(ctx, editor)
}
