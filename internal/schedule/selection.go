package schedule

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
)

var (
	ErrNothingSelected  = errors.New("没有选中任何营业时间")
	ErrMultipleSelected = errors.New("同时选中了多个营业时间，无法编辑")
	ErrUnknownCard      = errors.New("营业时间不存在或已被修改")
)

// Selection 记录用户选中了哪些卡片。卡片是最小的选择单位，选中一张卡片即选中它包含的所有条目
type Selection struct {
	cards    []RangeCard
	index    map[string]int
	selected map[string]struct{}
}

func NewSelection(groups ...[]RangeCard) *Selection {
	s := &Selection{
		index:    make(map[string]int),
		selected: make(map[string]struct{}),
	}
	for _, group := range groups {
		for _, c := range group {
			s.index[c.ID] = len(s.cards)
			s.cards = append(s.cards, c)
		}
	}
	return s
}

// Toggle 切换一张卡片的选中状态
func (s *Selection) Toggle(cardID string) error {
	if _, ok := s.index[cardID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	if _, ok := s.selected[cardID]; ok {
		delete(s.selected, cardID)
	} else {
		s.selected[cardID] = struct{}{}
	}
	return nil
}

// Select 选中给定的卡片，只要有一张不存在就不做任何修改
func (s *Selection) Select(cardIDs ...string) error {
	for _, id := range cardIDs {
		if _, ok := s.index[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCard, id)
		}
	}
	for _, id := range cardIDs {
		s.selected[id] = struct{}{}
	}
	return nil
}

func (s *Selection) IsSelected(cardID string) bool {
	_, ok := s.selected[cardID]
	return ok
}

func (s *Selection) SelectAll() {
	for _, c := range s.cards {
		s.selected[c.ID] = struct{}{}
	}
}

func (s *Selection) Clear() {
	clear(s.selected)
}

// ToggleAll 已全选时清空，否则全选
func (s *Selection) ToggleAll() {
	if s.AllSelected() {
		s.Clear()
		return
	}
	s.SelectAll()
}

func (s *Selection) Count() int {
	return len(s.selected)
}

func (s *Selection) AllSelected() bool {
	return len(s.cards) > 0 && len(s.selected) == len(s.cards)
}

func (s *Selection) IsMultiSelect() bool {
	return len(s.selected) > 1
}

// Cards 按卡片原有顺序返回选中的卡片
func (s *Selection) Cards() []RangeCard {
	cards := make([]RangeCard, 0, len(s.selected))
	for _, c := range s.cards {
		if s.IsSelected(c.ID) {
			cards = append(cards, c)
		}
	}
	return cards
}

// EntryIDs 返回选中卡片包含的全部条目 id
func (s *Selection) EntryIDs() []string {
	var ids []string
	for _, c := range s.Cards() {
		ids = append(ids, c.IDs...)
	}
	return ids
}

// EditTarget 返回唯一选中的卡片。表单一次只能表示一个范围，选中多张卡片时不能编辑
func (s *Selection) EditTarget() (RangeCard, error) {
	switch len(s.selected) {
	case 0:
		return RangeCard{}, ErrNothingSelected
	case 1:
		return s.Cards()[0], nil
	default:
		return RangeCard{}, ErrMultipleSelected
	}
}

// DeleteFrom 从 store 中删除选中的条目并清空选择，返回删除的条目数量
func (s *Selection) DeleteFrom(store *Store) (int, error) {
	if len(s.selected) == 0 {
		return 0, ErrNothingSelected
	}
	removed := store.RemoveByIDs(s.EntryIDs()...)
	s.Clear()
	return removed, nil
}

// ReplaceIn 用新条目替换唯一选中卡片所代表的条目
func (s *Selection) ReplaceIn(store *Store, kind domain.EntryKind, entries []domain.TimeEntry) error {
	target, err := s.EditTarget()
	if err != nil {
		return err
	}
	if err := store.ReplaceByIDs(kind, target.IDs, entries); err != nil {
		return err
	}
	s.Clear()
	return nil
}
