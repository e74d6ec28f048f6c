package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/schedule"
)

func zoneFixture() *domain.ZoneTimeTable {
	return &domain.ZoneTimeTable{
		ZoneID: "zone24",
		WorkTime: []domain.TimeEntry{
			{ID: "w1", Day: domain.Monday, OpenTime: "08:00", CloseTime: "20:00"},
			{ID: "w2", Day: domain.Tuesday, OpenTime: "08:00", CloseTime: "20:00"},
			{ID: "w6", Day: domain.Saturday, OpenTime: "10:00", CloseTime: "18:00"},
		},
		SpecialTime: []domain.TimeEntry{
			{ID: "s1", Date: "2025-05-01", OpenTime: "10:00", CloseTime: "14:00"},
		},
		Version: 2,
	}
}

func cardIDOf(t *testing.T, cards []schedule.RangeCard, kind schedule.CardKind) string {
	t.Helper()
	for _, c := range cards {
		if c.Kind == kind {
			return c.ID
		}
	}
	t.Fatalf("no %s card", kind)
	return ""
}

func TestApplyToZoneRejectsStaleVersion(t *testing.T) {
	_, err := applyToZone(zoneFixture(), 1, func(e *zoneEdit) error { return nil })
	assert.ErrorIs(t, err, errStaleVersion)
	assert.True(t, isScheduleError(err))
}

func TestWorkRangeMutationAdds(t *testing.T) {
	h := newTestHandler(t)
	tt := zoneFixture()

	next, err := applyToZone(tt, 2, h.workRangeMutation(workRangeRequest{
		WeekdayDays:   []domain.DayNumber{domain.Wednesday},
		WeekdayWindow: windowRequest{"09:00", "17:00"},
	}))
	require.NoError(t, err)

	assert.Len(t, next.WorkTime, 4)
	assert.Len(t, tt.WorkTime, 3, "原表不应被修改")
	assert.Equal(t, int32(2), next.Version)
}

func TestWorkRangeMutationEditsSelectedCard(t *testing.T) {
	h := newTestHandler(t)
	tt := zoneFixture()
	weekday := cardIDOf(t, schedule.CompressWork(tt.WorkTime), schedule.CardKindWeekday)

	next, err := applyToZone(tt, 2, h.workRangeMutation(workRangeRequest{
		SelectedCardIDs: []string{weekday},
		WeekdayDays:     []domain.DayNumber{domain.Monday, domain.Tuesday, domain.Wednesday},
		WeekdayWindow:   windowRequest{"07:00", "19:00"},
	}))
	require.NoError(t, err)

	require.Len(t, next.WorkTime, 4)
	for _, e := range next.WorkTime {
		if e.Day.IsWeekend() {
			assert.Equal(t, "w6", e.ID)
			continue
		}
		assert.Equal(t, "07:00", e.OpenTime)
	}
	assert.Equal(t, tt.SpecialTime, next.SpecialTime)
}

func TestWorkRangeMutationCannotEditMultipleCards(t *testing.T) {
	h := newTestHandler(t)
	tt := zoneFixture()
	cards := schedule.CompressWork(tt.WorkTime)
	require.Len(t, cards, 2)

	_, err := applyToZone(tt, 2, h.workRangeMutation(workRangeRequest{
		SelectedCardIDs: []string{cards[0].ID, cards[1].ID},
		WeekdayDays:     []domain.DayNumber{domain.Monday},
		WeekdayWindow:   windowRequest{"07:00", "19:00"},
	}))
	assert.ErrorIs(t, err, schedule.ErrMultipleSelected)
}

func TestWorkRangeMutationRejectsSpecialCard(t *testing.T) {
	h := newTestHandler(t)
	tt := zoneFixture()
	special := schedule.CompressSpecial(tt.SpecialTime)[0].ID

	_, err := applyToZone(tt, 2, h.workRangeMutation(workRangeRequest{
		SelectedCardIDs: []string{special},
		WeekdayDays:     []domain.DayNumber{domain.Monday},
		WeekdayWindow:   windowRequest{"07:00", "19:00"},
	}))
	assert.ErrorIs(t, err, schedule.ErrUnknownCard)
}

func TestRangeMutationRejectsEmptyResult(t *testing.T) {
	h := newTestHandler(t)

	_, err := applyToZone(zoneFixture(), 2, h.specialRangeMutation(specialRangeRequest{
		DateFrom: "2025-06-02",
		DateTo:   "2025-06-01",
		Window:   windowRequest{"10:00", "12:00"},
	}))
	assert.ErrorIs(t, err, schedule.ErrEmptyRange)

	// 2025-06-07 到 2025-06-08 是周末，只选了工作日
	_, err = applyToZone(zoneFixture(), 2, h.workRangeMutation(workRangeRequest{
		DateFrom:      "2025-06-07",
		DateTo:        "2025-06-08",
		WeekdayDays:   []domain.DayNumber{domain.Monday},
		WeekdayWindow: windowRequest{"07:00", "19:00"},
	}))
	assert.ErrorIs(t, err, schedule.ErrEmptyRange)
}

func TestSpecialRangeMutationRangeTooLong(t *testing.T) {
	h := newTestHandler(t)

	_, err := applyToZone(zoneFixture(), 2, h.specialRangeMutation(specialRangeRequest{
		DateFrom: "2025-01-01",
		DateTo:   "2027-01-01",
		Window:   windowRequest{"10:00", "12:00"},
	}))
	assert.ErrorIs(t, err, schedule.ErrRangeTooLong)
}

func TestDeletionMutation(t *testing.T) {
	next, err := applyToZone(zoneFixture(), 2, deletionMutation(deletionRequest{Version: 2, All: true}))
	require.NoError(t, err)
	assert.Empty(t, next.WorkTime)
	assert.Empty(t, next.SpecialTime)

	tt := zoneFixture()
	weekend := cardIDOf(t, schedule.CompressWork(tt.WorkTime), schedule.CardKindWeekend)
	next, err = applyToZone(tt, 2, deletionMutation(deletionRequest{CardIDs: []string{weekend}}))
	require.NoError(t, err)
	assert.Len(t, next.WorkTime, 2)
	assert.Len(t, next.SpecialTime, 1)

	_, err = applyToZone(zoneFixture(), 2, deletionMutation(deletionRequest{}))
	assert.ErrorIs(t, err, schedule.ErrNothingSelected)
}

func TestZoneViewReportsConflicts(t *testing.T) {
	tt := zoneFixture()
	tt.SpecialTime = append(tt.SpecialTime, domain.TimeEntry{ID: "s2", Date: "2025-05-01", OpenTime: "13:00", CloseTime: "16:00"})

	view := newZoneView(tt)
	require.True(t, view.HasConflicts)
	require.Len(t, view.Conflicts, 1)

	msg := conflictMail(&domain.User{FullName: "张三", Email: "zhangsan@example.com"}, view)
	assert.Equal(t, domain.MailTypeSpecialConflict, msg.Type)
	assert.Equal(t, "zhangsan@example.com", msg.To)

	data := msg.Data.(domain.SpecialConflictMailData)
	assert.Equal(t, "zone24", data.ZoneID)
	assert.Equal(t, []domain.SpecialConflictMailItem{
		{Date: "2025-05-01", FirstWindow: "10:00 – 14:00", OtherWindow: "13:00 – 16:00"},
	}, data.Conflicts)

	assert.False(t, newZoneView(zoneFixture()).HasConflicts)
}
