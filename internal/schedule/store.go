package schedule

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
)

var (
	ErrDuplicateID = errors.New("条目 id 重复")
	ErrWrongKind   = errors.New("条目类型不匹配")
)

// Store 保存一个区域当前的营业时间表。
// 每次修改都会构造一张新表再整体替换，读者拿到的快照永远不会被改动，
// 因此 ReplaceByIDs 的删除与插入对外表现为一次状态变化。
type Store struct {
	mu  sync.RWMutex
	cur *domain.ZoneTimeTable
}

func NewStore(tt *domain.ZoneTimeTable) *Store {
	if tt == nil {
		tt = &domain.ZoneTimeTable{}
	}
	return &Store{cur: cloneTable(tt)}
}

// Snapshot 返回当前时间表的副本
func (s *Store) Snapshot() *domain.ZoneTimeTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTable(s.cur)
}

func (s *Store) WorkTime() []domain.TimeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cur.WorkTime)
}

func (s *Store) SpecialTime() []domain.TimeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cur.SpecialTime)
}

// AllIDs 返回两张表中所有条目的 id，工作时间在前
func (s *Store) AllIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.cur.WorkTime)+len(s.cur.SpecialTime))
	for _, e := range s.cur.WorkTime {
		ids = append(ids, e.ID)
	}
	for _, e := range s.cur.SpecialTime {
		ids = append(ids, e.ID)
	}
	return ids
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cur.WorkTime) + len(s.cur.SpecialTime)
}

// Add 追加条目。重新保存一个已存在的范围时应使用 ReplaceByIDs，否则会产生重复条目
func (s *Store) Add(kind domain.EntryKind, entries []domain.TimeEntry) error {
	return s.ReplaceByIDs(kind, nil, entries)
}

// RemoveByIDs 从两张表中删除给定 id 的条目，不存在的 id 会被忽略。返回实际删除的数量
func (s *Store) RemoveByIDs(ids ...string) int {
	if len(ids) == 0 {
		return 0
	}
	drop := toSet(ids)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneTable(s.cur)
	next.WorkTime = slices.DeleteFunc(next.WorkTime, func(e domain.TimeEntry) bool { return inSet(drop, e.ID) })
	next.SpecialTime = slices.DeleteFunc(next.SpecialTime, func(e domain.TimeEntry) bool { return inSet(drop, e.ID) })

	removed := len(s.cur.WorkTime) + len(s.cur.SpecialTime) - len(next.WorkTime) - len(next.SpecialTime)
	s.cur = next
	return removed
}

// ReplaceByIDs 删除 ids 对应的条目并把 entries 加入 kind 指定的表，二者在一次替换中完成。
// 任何一个新条目不合法时时间表保持不变
func (s *Store) ReplaceByIDs(kind domain.EntryKind, ids []string, entries []domain.TimeEntry) error {
	if kind != domain.EntryKindWork && kind != domain.EntryKindSpecial {
		return fmt.Errorf("%w: %q", ErrWrongKind, kind)
	}
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%w: 第 %d 个条目: %w", ErrInvalidEntry, i+1, err)
		}
		if kind == domain.EntryKindSpecial && !e.IsDated() {
			return fmt.Errorf("%w: 第 %d 个条目没有日期", ErrWrongKind, i+1)
		}
	}

	drop := toSet(ids)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneTable(s.cur)
	next.WorkTime = slices.DeleteFunc(next.WorkTime, func(e domain.TimeEntry) bool { return inSet(drop, e.ID) })
	next.SpecialTime = slices.DeleteFunc(next.SpecialTime, func(e domain.TimeEntry) bool { return inSet(drop, e.ID) })

	seen := make(map[string]struct{}, len(next.WorkTime)+len(next.SpecialTime)+len(entries))
	for _, e := range next.WorkTime {
		seen[e.ID] = struct{}{}
	}
	for _, e := range next.SpecialTime {
		seen[e.ID] = struct{}{}
	}
	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	switch kind {
	case domain.EntryKindWork:
		next.WorkTime = append(next.WorkTime, entries...)
	case domain.EntryKindSpecial:
		next.SpecialTime = append(next.SpecialTime, entries...)
	}

	s.cur = next
	return nil
}

// Clear 清空两张表
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneTable(s.cur)
	next.WorkTime = []domain.TimeEntry{}
	next.SpecialTime = []domain.TimeEntry{}
	s.cur = next
}

func cloneTable(tt *domain.ZoneTimeTable) *domain.ZoneTimeTable {
	c := *tt
	c.WorkTime = slices.Clone(tt.WorkTime)
	c.SpecialTime = slices.Clone(tt.SpecialTime)
	if c.WorkTime == nil {
		c.WorkTime = []domain.TimeEntry{}
	}
	if c.SpecialTime == nil {
		c.SpecialTime = []domain.TimeEntry{}
	}
	return &c
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, id string) bool {
	_, ok := set[id]
	return ok
}
