package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyName         = errors.New("name must not be empty")
	ErrDuplicateName     = errors.New("a node with this name already exists under the same parent")
	ErrCreatePending     = errors.New("a create request for this rank is already in progress")
	ErrInvalidTransition = errors.New("invalid create flow transition")
)

// CreateState 是行内新建流程的状态。
type CreateState string

const (
	CreateIdle       CreateState = "idle"
	CreateCollecting CreateState = "collecting"
	CreateValidating CreateState = "validating"
	CreateConfirming CreateState = "confirming"
	CreatePersisting CreateState = "persisting"
	CreateSettled    CreateState = "settled"
)

// CreateFlow 记录在某一等级上新建分类节点的进度。
//
//	Idle -> Collecting -> Validating -> {Collecting | Confirming} -> Persisting -> {Settled -> Idle | Collecting}
type CreateFlow struct {
	State    CreateState `json:"state"`
	Rank     Rank        `json:"rank"`
	Name     string      `json:"name"`
	ParentID *uint       `json:"parentId,omitempty"`
	Error    string      `json:"error,omitempty"`
	// AttemptID 标识一次进入 Persisting 的写入，写入返回时据此判断流程是否仍是同一次尝试。
	AttemptID string `json:"attemptId,omitempty"`
}

// BeginCreate 进入 Collecting 状态，名称预填为用户当前的搜索文本。
func BeginCreate(rank Rank, searchText string, parentID *uint) *CreateFlow {
	return &CreateFlow{
		State:    CreateCollecting,
		Rank:     rank,
		Name:     searchText,
		ParentID: parentID,
	}
}

// Submit 校验候选名称。siblings 是已按父级限定的同级选项。
// 校验失败时流程留在 Collecting，并保留输入与错误信息。
func (f *CreateFlow) Submit(name string, siblings []TopologyNode) error {
	if f.State != CreateCollecting {
		return fmt.Errorf("%w: submit from %s", ErrInvalidTransition, f.State)
	}
	f.Name = name
	f.State = CreateValidating

	if err := ValidateNodeName(name, siblings); err != nil {
		f.State = CreateCollecting
		f.Error = err.Error()
		return err
	}
	f.Error = ""
	f.State = CreateConfirming
	return nil
}

// ValidateNodeName 拒绝空白名称以及与同级节点大小写不敏感重名的名称。
func ValidateNodeName(name string, siblings []TopologyNode) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyName
	}
	for _, s := range siblings {
		if strings.EqualFold(strings.TrimSpace(s.DisplayName()), trimmed) {
			return ErrDuplicateName
		}
	}
	return nil
}

// Confirm 是写入前的二次确认，进入 Persisting 并记录本次写入的 attempt。
func (f *CreateFlow) Confirm(attempt string) error {
	switch f.State {
	case CreateConfirming:
		f.State = CreatePersisting
		f.AttemptID = attempt
		return nil
	case CreatePersisting:
		return ErrCreatePending
	}
	return fmt.Errorf("%w: confirm from %s", ErrInvalidTransition, f.State)
}

// Request 返回要发送给存储层的新建参数。
func (f *CreateFlow) Request() NewNode {
	req := NewNode{Rank: f.Rank, Name: strings.TrimSpace(f.Name)}
	if f.Rank != RankOrder && f.ParentID != nil {
		id := *f.ParentID
		req.ParentID = &id
	}
	return req
}

// Owns 判断流程是否仍停留在 attempt 发起的那次写入上。
func (f *CreateFlow) Owns(attempt string) bool {
	return f != nil && f.State == CreatePersisting && attempt != "" && f.AttemptID == attempt
}

// Fail 记录远端写入失败，回到 Collecting 并保留已输入的名称。
func (f *CreateFlow) Fail(err error) {
	f.State = CreateCollecting
	f.AttemptID = ""
	if err != nil {
		f.Error = err.Error()
	}
}

// Settle 标记写入成功。
func (f *CreateFlow) Settle() {
	f.State = CreateSettled
	f.AttemptID = ""
	f.Error = ""
}
