// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"genom-go/internal/model"
	"genom-go/internal/repository"
	"sync"
	"time"
)

var (
	ErrNoEditInProgress   = errors.New("no taxonomy edit in progress")
	ErrEditInProgress     = errors.New("another row is already being edited")
	ErrRowNotFound        = errors.New("collection row not found")
	ErrNodeNotInScope     = errors.New("node is not among the options for this rank")
	ErrParentNotSelected  = errors.New("parent rank has no selection")
	ErrCommitFailed       = errors.New("commit taxonomy failed")
	ErrNoCreateInProgress = errors.New("no create flow in progress")
	ErrCreateFailed       = errors.New("create node failed")
)

// SessionStore 串行化同一编辑者对编辑会话的读-改-写。
// EditorService 与 CreateService 必须共享同一个实例。
type SessionStore struct {
	repo repository.EditSessionRepository
	now  func() time.Time

	mu    sync.Mutex
	locks map[string]*editorLock // 只保存正在被持有或等待的锁
}

type editorLock struct {
	mu   sync.Mutex
	refs int
}

// NewSessionStore 创建一个新的 SessionStore。
func NewSessionStore(repo repository.EditSessionRepository) *SessionStore {
	return &SessionStore{repo: repo, now: time.Now, locks: make(map[string]*editorLock)}
}

// lock 获取编辑者的互斥锁，返回解锁函数。最后一个持有者解锁时条目被移除。
func (s *SessionStore) lock(editor string) func() {
	s.mu.Lock()
	l, ok := s.locks[editor]
	if !ok {
		l = &editorLock{}
		s.locks[editor] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, editor)
		}
		s.mu.Unlock()
	}
}

// load 读取会话；不存在时返回一个空会话而不是 nil。
func (s *SessionStore) load(ctx context.Context, editor string) (*model.EditSession, error) {
	sess, err := s.repo.Get(ctx, editor)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = &model.EditSession{Editor: editor}
	}
	return sess, nil
}

// save 写回会话；既没有编辑行也没有新建流程时直接删除。
func (s *SessionStore) save(ctx context.Context, sess *model.EditSession) error {
	if sess.Row == nil && sess.Create == nil {
		return s.repo.Delete(ctx, sess.Editor)
	}
	sess.UpdatedAt = s.now()
	return s.repo.Save(ctx, sess)
}

func (s *SessionStore) clear(ctx context.Context, editor string) error {
	return s.repo.Delete(ctx, editor)
}
