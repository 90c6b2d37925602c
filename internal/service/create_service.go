package service

import (
	"context"
	"errors"
	"fmt"
	"genom-go/internal/model"
	"genom-go/internal/repository"
	"genom-go/pkg/log"
	"genom-go/pkg/token"
)

// ConfirmResult 是新建节点成功后的结果：新节点已经通过级联规则被选中。
type ConfirmResult struct {
	Node model.TopologyNode `json:"node"`
	Row  *model.GenomRow    `json:"row,omitempty"`
}

// CreateService 接口定义了行内新建分类节点的流程。
type CreateService interface {
	Begin(ctx context.Context, editor string, rank model.Rank, searchText string) (*model.CreateFlow, error)
	Submit(ctx context.Context, editor, name string) (*model.CreateFlow, error)
	Confirm(ctx context.Context, editor string) (*ConfirmResult, *model.CreateFlow, error)
	Cancel(ctx context.Context, editor string) error
}

type createService struct {
	taxonomyRepo repository.TaxonomyRepository
	sessions     *SessionStore
	options      OptionService
	publisher    EventPublisher
}

// NewCreateService 创建一个新的 CreateService 实例。
func NewCreateService(taxonomyRepo repository.TaxonomyRepository, sessions *SessionStore, options OptionService, publisher EventPublisher) CreateService {
	if publisher == nil {
		publisher = NoopPublisher()
	}
	return &createService{
		taxonomyRepo: taxonomyRepo,
		sessions:     sessions,
		options:      options,
		publisher:    publisher,
	}
}

// Begin 在 rank 上打开新建流程，名称预填为当前搜索文本。父级取自编辑行的直接上级。
func (s *createService) Begin(ctx context.Context, editor string, rank model.Rank, searchText string) (*model.CreateFlow, error) {
	unlock := s.sessions.lock(editor)
	defer unlock()

	sess, err := s.sessions.load(ctx, editor)
	if err != nil {
		return nil, err
	}
	if sess.Row == nil {
		return nil, ErrNoEditInProgress
	}
	if sess.Create != nil && sess.Create.State == model.CreatePersisting {
		return nil, model.ErrCreatePending
	}

	parentID := sess.Row.ParentID(rank)
	if rank != model.RankOrder && parentID == nil {
		return nil, ErrParentNotSelected
	}

	sess.Create = model.BeginCreate(rank, searchText, parentID)
	if err := s.sessions.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess.Create, nil
}

// Submit 校验名称。同级选项在校验前重新从数据库加载，尽量缩小并发重名的窗口；
// 数据库上的唯一索引兜底。校验失败时返回错误，同时返回仍处于 Collecting 的流程。
func (s *createService) Submit(ctx context.Context, editor, name string) (*model.CreateFlow, error) {
	unlock := s.sessions.lock(editor)
	defer unlock()

	sess, err := s.sessions.load(ctx, editor)
	if err != nil {
		return nil, err
	}
	flow := sess.Create
	if flow == nil {
		return nil, ErrNoCreateInProgress
	}

	var siblings []model.TopologyNode
	if flow.State == model.CreateCollecting {
		options := s.options.Refresh(ctx, flow.Rank, flow.ParentID)
		if options.Failed {
			log.Warnf("[CreateService] 加载同级选项失败，仅依赖数据库唯一约束去重, rank: %s", flow.Rank)
		}
		siblings = options.Nodes
	}

	validationErr := flow.Submit(name, siblings)
	if errors.Is(validationErr, model.ErrInvalidTransition) {
		return flow, validationErr
	}
	if err := s.sessions.save(ctx, sess); err != nil {
		return nil, err
	}
	return flow, validationErr
}

// Confirm 执行二次确认并写入新节点。写入期间不持有会话锁，
// 同一编辑者重复确认会得到 model.ErrCreatePending。
// 写入返回时只有仍属于本次 attempt 的流程会被结算；期间被取消或重开的流程保持不变。
func (s *createService) Confirm(ctx context.Context, editor string) (*ConfirmResult, *model.CreateFlow, error) {
	req, attempt, err := s.beginPersist(ctx, editor)
	if err != nil {
		return nil, nil, err
	}

	node, createErr := s.taxonomyRepo.CreateNode(ctx, req)
	if createErr != nil {
		log.Errorf("[CreateService] 新建 %s 节点 '%s' 失败: %v", req.Rank, req.Name, createErr)
		if !errors.Is(createErr, model.ErrDuplicateName) && !errors.Is(createErr, repository.ErrParentNotFound) {
			createErr = fmt.Errorf("%w: %v", ErrCreateFailed, createErr)
		}
		flow, err := s.fail(ctx, editor, attempt, createErr)
		if err != nil {
			return nil, nil, err
		}
		return nil, flow, createErr
	}

	s.options.Invalidate(ctx, req.Rank, req.ParentID)
	result, settled, rowID, err := s.settle(ctx, editor, attempt, req, *node)
	if err != nil {
		return nil, nil, err
	}
	publish(ctx, s.publisher, createdEvent(editor, req, *node, rowID))
	return result, settled, nil
}

func (s *createService) beginPersist(ctx context.Context, editor string) (model.NewNode, string, error) {
	unlock := s.sessions.lock(editor)
	defer unlock()

	sess, err := s.sessions.load(ctx, editor)
	if err != nil {
		return model.NewNode{}, "", err
	}
	if sess.Create == nil {
		return model.NewNode{}, "", ErrNoCreateInProgress
	}
	attempt := token.GenerateRandomString(16)
	if err := sess.Create.Confirm(attempt); err != nil {
		return model.NewNode{}, "", err
	}
	if err := s.sessions.save(ctx, sess); err != nil {
		return model.NewNode{}, "", err
	}
	return sess.Create.Request(), attempt, nil
}

// fail 把写入失败记录到仍属于 attempt 的流程上，返回会话中当前的流程。
func (s *createService) fail(ctx context.Context, editor, attempt string, createErr error) (*model.CreateFlow, error) {
	unlock := s.sessions.lock(editor)
	defer unlock()

	sess, err := s.sessions.load(ctx, editor)
	if err != nil {
		return nil, err
	}
	if !sess.Create.Owns(attempt) {
		return sess.Create, nil
	}
	sess.Create.Fail(createErr)
	if err := s.sessions.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess.Create, nil
}

// settle 结算写入成功的流程，并按级联规则选中新节点。
func (s *createService) settle(ctx context.Context, editor, attempt string, req model.NewNode, node model.TopologyNode) (*ConfirmResult, *model.CreateFlow, *uint, error) {
	unlock := s.sessions.lock(editor)
	defer unlock()

	sess, err := s.sessions.load(ctx, editor)
	if err != nil {
		return nil, nil, nil, err
	}
	result := &ConfirmResult{Node: node}
	var rowID *uint
	if sess.Row != nil {
		id := sess.Row.RowID
		rowID = &id
	}

	flow := sess.Create
	if !flow.Owns(attempt) {
		// 写入期间流程被取消、被级联修改关闭或已被新的流程取代：节点已创建，但不再自动选中
		log.Warnf("[CreateService] 新建流程已不在进行中，节点 %d 未被自动选中, editor: %s", node.ID, editor)
		return result, flow, rowID, nil
	}

	flow.Settle()
	settled := *flow
	if sess.Row != nil && sameParent(sess.Row.ParentID(req.Rank), req.ParentID) {
		row := model.ApplyChange(*sess.Row, req.Rank, &node)
		sess.Row = &row
		result.Row = &row
	}
	// Settled -> Idle
	sess.Create = nil
	if err := s.sessions.save(ctx, sess); err != nil {
		return nil, nil, nil, err
	}
	log.Infof("[CreateService] 编辑者 '%s' 新建了 %s 节点 %d", editor, req.Rank, node.ID)
	return result, &settled, rowID, nil
}

// Cancel 关闭新建流程。Persisting 状态也可以取消，用于从挂起的写入中恢复。
func (s *createService) Cancel(ctx context.Context, editor string) error {
	unlock := s.sessions.lock(editor)
	defer unlock()

	sess, err := s.sessions.load(ctx, editor)
	if err != nil {
		return err
	}
	if sess.Create == nil {
		return nil
	}
	sess.Create = nil
	return s.sessions.save(ctx, sess)
}

func sameParent(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
