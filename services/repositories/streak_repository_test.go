package repositories

import (
	"testing"
	"time"

	"github.com/streakforge/streak_api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepository(t *testing.T) *StreakRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.StreakRecord{}, &model.StreakHistory{}))

	return NewStreakRepository(db)
}

func createRecord(t *testing.T, repo *StreakRepository, userID string) *model.StreakRecord {
	t.Helper()

	today := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	record := &model.StreakRecord{
		UserID:           userID,
		CurrentStreak:    1,
		LongestStreak:    1,
		LastActivityDate: &today,
	}
	require.NoError(t, repo.CreateStreak(record))
	return record
}

func TestCreateAndGetStreak(t *testing.T) {
	repo := newTestRepository(t)

	created := createRecord(t, repo, "u1")
	assert.NotEmpty(t, created.ID)

	loaded, err := repo.GetStreak("u1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.ID)
	assert.Equal(t, 1, loaded.CurrentStreak)
	assert.Equal(t, 0, loaded.Version)
}

func TestGetStreakNotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetStreak("ghost")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestGuardedUpdateBumpsVersion(t *testing.T) {
	repo := newTestRepository(t)

	record := createRecord(t, repo, "u1")
	record.CurrentStreak = 2
	record.LongestStreak = 2

	require.NoError(t, repo.UpdateStreakGuarded(record))
	assert.Equal(t, 1, record.Version)

	loaded, err := repo.GetStreak("u1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.CurrentStreak)
	assert.Equal(t, 1, loaded.Version)
}

func TestGuardedUpdateDetectsLostUpdate(t *testing.T) {
	repo := newTestRepository(t)

	createRecord(t, repo, "u1")

	// Two readers load the same version.
	first, err := repo.GetStreak("u1")
	require.NoError(t, err)
	second, err := repo.GetStreak("u1")
	require.NoError(t, err)

	first.CurrentStreak = 2
	require.NoError(t, repo.UpdateStreakGuarded(first))

	// The stale copy must not clobber the first write.
	second.CurrentStreak = 5
	err = repo.UpdateStreakGuarded(second)
	require.ErrorIs(t, err, ErrVersionConflict)

	loaded, err := repo.GetStreak("u1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.CurrentStreak)
}

func TestAppendAndGetHistory(t *testing.T) {
	repo := newTestRepository(t)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := &model.StreakHistory{
			UserID:       "u1",
			EventType:    "activity",
			StreakBefore: i,
			StreakAfter:  i + 1,
			CreatedAt:    base.AddDate(0, 0, i),
		}
		require.NoError(t, repo.AppendHistory(entry))
		assert.NotEmpty(t, entry.ID)
	}

	entries, err := repo.GetHistory("u1", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[0].StreakAfter, "newest entry first")
	assert.Equal(t, 2, entries[1].StreakAfter)

	total, err := repo.CountHistory("u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	other, err := repo.GetHistory("u2", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestGetTopStreaks(t *testing.T) {
	repo := newTestRepository(t)

	for _, tc := range []struct {
		userID  string
		current int
		longest int
	}{
		{"mid", 5, 9},
		{"top", 9, 9},
		{"low", 1, 2},
	} {
		today := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		record := &model.StreakRecord{
			UserID:           tc.userID,
			CurrentStreak:    tc.current,
			LongestStreak:    tc.longest,
			LastActivityDate: &today,
		}
		require.NoError(t, repo.CreateStreak(record))
	}

	records, err := repo.GetTopStreaks(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "top", records[0].UserID)
	assert.Equal(t, "mid", records[1].UserID)
}
