package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/schedule"
)

var errStaleVersion = errors.New("营业时间已被他人修改，请刷新后重试")

type zoneView struct {
	*domain.ZoneTimeTable
	HasConflicts bool                `json:"hasConflicts"`
	Conflicts    []schedule.Conflict `json:"conflicts"`
}

func newZoneView(tt *domain.ZoneTimeTable) zoneView {
	conflicts := schedule.FindConflicts(tt.SpecialTime)
	return zoneView{
		ZoneTimeTable: tt,
		HasConflicts:  len(conflicts) > 0,
		Conflicts:     conflicts,
	}
}

type cardsView struct {
	ZoneID       string               `json:"zoneID"`
	Version      int32                `json:"version"`
	WorkCards    []schedule.RangeCard `json:"workCards"`
	SpecialCards []schedule.RangeCard `json:"specialCards"`
}

type windowRequest struct {
	OpenTime  string `json:"openTime" validate:"omitempty,clock"`
	CloseTime string `json:"closeTime" validate:"omitempty,clock"`
}

func (w windowRequest) window() schedule.Window {
	return schedule.Window{OpenTime: w.OpenTime, CloseTime: w.CloseTime}
}

type workRangeRequest struct {
	Version         int32              `json:"version" validate:"gte=0"`
	SelectedCardIDs []string           `json:"selectedCardIDs"`
	DateFrom        string             `json:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo          string             `json:"dateTo" validate:"omitempty,datetime=2006-01-02"`
	WeekdayDays     []domain.DayNumber `json:"weekdayDays" validate:"dive,min=1,max=7"`
	WeekendDays     []domain.DayNumber `json:"weekendDays" validate:"dive,min=1,max=7"`
	WeekdayWindow   windowRequest      `json:"weekdayWindow"`
	WeekendWindow   windowRequest      `json:"weekendWindow"`
	SameAsWeekdays  bool               `json:"sameAsWeekdays"`
}

func (req workRangeRequest) form() schedule.WorkForm {
	return schedule.WorkForm{
		DateFrom:       req.DateFrom,
		DateTo:         req.DateTo,
		WeekdayDays:    req.WeekdayDays,
		WeekendDays:    req.WeekendDays,
		WeekdayWindow:  req.WeekdayWindow.window(),
		WeekendWindow:  req.WeekendWindow.window(),
		SameAsWeekdays: req.SameAsWeekdays,
	}
}

type specialRangeRequest struct {
	Version         int32         `json:"version" validate:"gte=0"`
	SelectedCardIDs []string      `json:"selectedCardIDs"`
	DateFrom        string        `json:"dateFrom" validate:"required,datetime=2006-01-02"`
	DateTo          string        `json:"dateTo" validate:"required,datetime=2006-01-02"`
	Window          windowRequest `json:"window"`
}

func (req specialRangeRequest) form() schedule.SpecialForm {
	return schedule.SpecialForm{
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Window:   req.Window.window(),
	}
}

type deletionRequest struct {
	Version int32    `json:"version" validate:"gte=0"`
	CardIDs []string `json:"cardIDs"`
	All     bool     `json:"all"`
}

// zoneEdit 一次修改所看到的时间表，卡片和 store 来自同一张快照
type zoneEdit struct {
	store        *schedule.Store
	workCards    []schedule.RangeCard
	specialCards []schedule.RangeCard
}

type zoneMutation func(e *zoneEdit) error

// applyToZone 在时间表的副本上执行修改，成功时返回修改后的新表，原表不变
func applyToZone(tt *domain.ZoneTimeTable, version int32, mutate zoneMutation) (*domain.ZoneTimeTable, error) {
	if version != tt.Version {
		return nil, errStaleVersion
	}

	e := &zoneEdit{
		store:        schedule.NewStore(tt),
		workCards:    schedule.CompressWork(tt.WorkTime),
		specialCards: schedule.CompressSpecial(tt.SpecialTime),
	}
	if err := mutate(e); err != nil {
		return nil, err
	}
	return e.store.Snapshot(), nil
}

// addOrReplace 没有选中卡片时新增条目，选中一张卡片时用新条目替换它
func addOrReplace(store *schedule.Store, sel *schedule.Selection, kind domain.EntryKind, cardIDs []string, entries []domain.TimeEntry) error {
	if len(cardIDs) == 0 {
		return store.Add(kind, entries)
	}
	if err := sel.Select(cardIDs...); err != nil {
		return err
	}
	return sel.ReplaceIn(store, kind, entries)
}

func (h *Handler) workRangeMutation(req workRangeRequest) zoneMutation {
	return func(e *zoneEdit) error {
		entries, err := h.expander.ExpandWork(req.form())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return schedule.ErrEmptyRange
		}
		return addOrReplace(e.store, schedule.NewSelection(e.workCards), domain.EntryKindWork, req.SelectedCardIDs, entries)
	}
}

func (h *Handler) specialRangeMutation(req specialRangeRequest) zoneMutation {
	return func(e *zoneEdit) error {
		entries, err := h.expander.ExpandSpecial(req.form())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return schedule.ErrEmptyRange
		}
		return addOrReplace(e.store, schedule.NewSelection(e.specialCards), domain.EntryKindSpecial, req.SelectedCardIDs, entries)
	}
}

func deletionMutation(req deletionRequest) zoneMutation {
	return func(e *zoneEdit) error {
		sel := schedule.NewSelection(e.workCards, e.specialCards)
		if req.All {
			sel.SelectAll()
		} else if err := sel.Select(req.CardIDs...); err != nil {
			return err
		}
		_, err := sel.DeleteFrom(e.store)
		return err
	}
}

func isScheduleError(err error) bool {
	for _, target := range []error{
		errStaleVersion,
		schedule.ErrInvalidEntry,
		schedule.ErrEmptyRange,
		schedule.ErrRangeTooLong,
		schedule.ErrDuplicateID,
		schedule.ErrWrongKind,
		schedule.ErrNothingSelected,
		schedule.ErrMultipleSelected,
		schedule.ErrUnknownCard,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// mutateZone 修改并保存当前区域的营业时间
func (h *Handler) mutateZone(w http.ResponseWriter, r *http.Request, version int32, mutate zoneMutation, msg string) {
	tt := r.Context().Value(ZoneTimeTableCtx).(*domain.ZoneTimeTable)

	next, err := applyToZone(tt, version, mutate)
	if err != nil {
		if isScheduleError(err) {
			h.errorResponse(w, r, err.Error())
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.SaveZoneTimeTable(next); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidateCalendar(next.ZoneID)

	view := newZoneView(next)
	if view.HasConflicts {
		h.notifyConflicts(r, view)
	}

	h.successResponse(w, r, msg, view)
}

// notifyConflicts 冲突只作提示，不阻止保存
func (h *Handler) notifyConflicts(r *http.Request, view zoneView) {
	slog.Warn("特殊营业时间存在冲突", "zone", view.ZoneID, "conflicts", len(view.Conflicts))
	if !h.config.Schedule.ConflictNotify {
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	if err := h.publishMail(conflictMail(myInfo, view)); err != nil {
		slog.Error("无法投递冲突提醒邮件", "zone", view.ZoneID, "error", err)
	}
}

func conflictMail(to *domain.User, view zoneView) domain.MailMessage {
	items := make([]domain.SpecialConflictMailItem, 0, len(view.Conflicts))
	for _, c := range view.Conflicts {
		items = append(items, domain.SpecialConflictMailItem{
			Date:        c.Date,
			FirstWindow: c.First.OpenTime + " – " + c.First.CloseTime,
			OtherWindow: c.Other.OpenTime + " – " + c.Other.CloseTime,
		})
	}

	return domain.MailMessage{
		Type: domain.MailTypeSpecialConflict,
		To:   to.Email,
		Data: domain.SpecialConflictMailData{
			FullName:  to.FullName,
			ZoneID:    view.ZoneID,
			Conflicts: items,
		},
	}
}

func (h *Handler) GetZoneTimeTable(w http.ResponseWriter, r *http.Request) {
	tt := r.Context().Value(ZoneTimeTableCtx).(*domain.ZoneTimeTable)
	h.successResponse(w, r, "获取营业时间成功", newZoneView(tt))
}

func (h *Handler) GetZoneCards(w http.ResponseWriter, r *http.Request) {
	tt := r.Context().Value(ZoneTimeTableCtx).(*domain.ZoneTimeTable)
	h.successResponse(w, r, "获取营业时间成功", cardsView{
		ZoneID:       tt.ZoneID,
		Version:      tt.Version,
		WorkCards:    schedule.CompressWork(tt.WorkTime),
		SpecialCards: schedule.CompressSpecial(tt.SpecialTime),
	})
}

func (h *Handler) GetCardForm(w http.ResponseWriter, r *http.Request) {
	tt := r.Context().Value(ZoneTimeTableCtx).(*domain.ZoneTimeTable)
	cardID := chi.URLParam(r, "cardID")

	for _, c := range schedule.CompressWork(tt.WorkTime) {
		if c.ID == cardID {
			h.successResponse(w, r, "获取表单成功", map[string]any{
				"kind":    domain.EntryKindWork,
				"version": tt.Version,
				"form":    schedule.WorkFormFromCard(c),
			})
			return
		}
	}
	for _, c := range schedule.CompressSpecial(tt.SpecialTime) {
		if c.ID == cardID {
			h.successResponse(w, r, "获取表单成功", map[string]any{
				"kind":    domain.EntryKindSpecial,
				"version": tt.Version,
				"form":    schedule.SpecialFormFromCard(c),
			})
			return
		}
	}

	h.errorResponse(w, r, schedule.ErrUnknownCard.Error())
}

func (h *Handler) GetZoneCalendar(w http.ResponseWriter, r *http.Request) {
	tt := r.Context().Value(ZoneTimeTableCtx).(*domain.ZoneTimeTable)

	year := time.Now().Year()
	if s := r.URL.Query().Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1 || y > 9999 {
			h.errorResponse(w, r, "年份无效")
			return
		}
		year = y
	}

	months, ok := h.getCachedCalendar(tt.ZoneID, tt.Version, year)
	if !ok {
		months = schedule.BuildYear(year, schedule.NewResolver(tt.WorkTime, tt.SpecialTime))
		h.setCachedCalendar(tt.ZoneID, tt.Version, year, months)
	}

	h.successResponse(w, r, "获取日历成功", map[string]any{
		"zoneID": tt.ZoneID,
		"year":   year,
		"months": months,
	})
}

func (h *Handler) GetDayStatus(w http.ResponseWriter, r *http.Request) {
	tt := r.Context().Value(ZoneTimeTableCtx).(*domain.ZoneTimeTable)

	date, err := domain.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		h.errorResponse(w, r, "日期格式必须为 YYYY-MM-DD")
		return
	}

	h.successResponse(w, r, "获取状态成功", map[string]any{
		"date":   domain.FormatDate(date),
		"day":    domain.DayNumberFromWeekday(date.Weekday()),
		"status": schedule.StatusOf(date, tt.WorkTime, tt.SpecialTime),
	})
}

func (h *Handler) SaveWorkRange(w http.ResponseWriter, r *http.Request) {
	var req workRangeRequest

	if !h.decodeRequest(w, r, &req) {
		return
	}

	h.mutateZone(w, r, req.Version, h.workRangeMutation(req), "保存基础营业时间成功")
}

func (h *Handler) SaveSpecialRange(w http.ResponseWriter, r *http.Request) {
	var req specialRangeRequest

	if !h.decodeRequest(w, r, &req) {
		return
	}

	h.mutateZone(w, r, req.Version, h.specialRangeMutation(req), "保存特殊营业时间成功")
}

func (h *Handler) DeleteRanges(w http.ResponseWriter, r *http.Request) {
	var req deletionRequest

	if !h.decodeRequest(w, r, &req) {
		return
	}

	h.mutateZone(w, r, req.Version, deletionMutation(req), "删除营业时间成功")
}

func (h *Handler) ClearZone(w http.ResponseWriter, r *http.Request) {
	tt := r.Context().Value(ZoneTimeTableCtx).(*domain.ZoneTimeTable)

	version, err := h.repository.ClearZoneTimeTable(tt.ZoneID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "该区域尚未设置营业时间")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.invalidateCalendar(tt.ZoneID)

	h.successResponse(w, r, fmt.Sprintf("已清空区域 %s 的营业时间", tt.ZoneID), map[string]any{
		"zoneID":  tt.ZoneID,
		"version": version,
	})
}
