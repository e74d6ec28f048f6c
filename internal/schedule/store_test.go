package schedule

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
)

func sampleTable() *domain.ZoneTimeTable {
	return &domain.ZoneTimeTable{
		ZoneID: "zone24",
		WorkTime: []domain.TimeEntry{
			dayEntry("w1", 1, "08:00", "20:00"),
			dayEntry("w2", 2, "08:00", "20:00"),
		},
		SpecialTime: []domain.TimeEntry{
			dateEntry("s1", "2025-05-01", "10:00", "14:00"),
		},
		Version: 3,
	}
}

func TestStoreRemoveUnknownIDIsNoop(t *testing.T) {
	store := NewStore(sampleTable())
	before := store.Snapshot()

	removed := store.RemoveByIDs("missing")

	assert.Equal(t, 0, removed)
	assert.Equal(t, before, store.Snapshot())
}

func TestStoreRemoveAcrossCollections(t *testing.T) {
	store := NewStore(sampleTable())

	removed := store.RemoveByIDs("w1", "s1", "w1")

	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"w2"}, store.AllIDs())
	assert.Empty(t, store.SpecialTime())
}

func TestStoreReplaceByIDs(t *testing.T) {
	store := NewStore(sampleTable())

	err := store.ReplaceByIDs(domain.EntryKindWork, []string{"w1", "w2"}, []domain.TimeEntry{
		dayEntry("n1", 1, "09:00", "18:00"),
	})
	require.NoError(t, err)

	work := store.WorkTime()
	require.Len(t, work, 1)
	assert.Equal(t, "n1", work[0].ID)
	assert.Len(t, store.SpecialTime(), 1)
	assert.Equal(t, int32(3), store.Snapshot().Version)
}

func TestStoreReplaceRejectsInvalidWithoutChange(t *testing.T) {
	tests := []struct {
		name    string
		kind    domain.EntryKind
		entries []domain.TimeEntry
		want    error
	}{
		{"inverted window", domain.EntryKindWork, []domain.TimeEntry{dayEntry("n", 1, "20:00", "08:00")}, ErrInvalidEntry},
		{"no key", domain.EntryKindWork, []domain.TimeEntry{{ID: "n", OpenTime: "08:00", CloseTime: "09:00"}}, ErrInvalidEntry},
		{"day and date", domain.EntryKindWork, []domain.TimeEntry{{ID: "n", Day: 1, Date: "2025-01-01", OpenTime: "08:00", CloseTime: "09:00"}}, ErrInvalidEntry},
		{"special by day", domain.EntryKindSpecial, []domain.TimeEntry{dayEntry("n", 1, "08:00", "09:00")}, ErrWrongKind},
		{"duplicate id", domain.EntryKindSpecial, []domain.TimeEntry{dateEntry("s1", "2025-06-01", "08:00", "09:00")}, ErrDuplicateID},
		{"unknown kind", domain.EntryKind("other"), nil, ErrWrongKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(sampleTable())
			before := store.Snapshot()

			err := store.ReplaceByIDs(tt.kind, []string{"w1"}, tt.entries)

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, store.Snapshot())
		})
	}
}

func TestStoreReplaceMayReuseRemovedID(t *testing.T) {
	store := NewStore(sampleTable())

	err := store.ReplaceByIDs(domain.EntryKindSpecial, []string{"s1"}, []domain.TimeEntry{
		dateEntry("s1", "2025-05-02", "10:00", "14:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-05-02", store.SpecialTime()[0].Date)
}

func TestStoreSnapshotIsIsolated(t *testing.T) {
	store := NewStore(sampleTable())

	snap := store.Snapshot()
	snap.WorkTime[0].OpenTime = "00:00"

	assert.Equal(t, "08:00", store.WorkTime()[0].OpenTime)
}

func TestStoreClear(t *testing.T) {
	store := NewStore(sampleTable())
	store.Clear()

	assert.Equal(t, 0, store.Len())
	assert.NotNil(t, store.Snapshot().WorkTime)
	assert.Equal(t, "zone24", store.Snapshot().ZoneID)
}

func TestStoreReplaceNeverObservedEmpty(t *testing.T) {
	store := NewStore(sampleTable())

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				assert.NotEmpty(t, store.WorkTime())
			}
		}
	}()

	for i := 0; i < 200; i++ {
		ids := make([]string, 0)
		for _, e := range store.WorkTime() {
			ids = append(ids, e.ID)
		}
		err := store.ReplaceByIDs(domain.EntryKindWork, ids, []domain.TimeEntry{
			dayEntry("gen-"+string(rune('a'+i%26))+string(rune('a'+i/26)), 1, "08:00", "20:00"),
		})
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()
}
