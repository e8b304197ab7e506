package repositories

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/streakforge/streak_api/model"
	"gorm.io/gorm"
)

// ErrVersionConflict is returned when a guarded update loses the race against
// a concurrent writer for the same user.
var ErrVersionConflict = errors.New("streak record version conflict")

// StreakRepository handles streak-related database operations
type StreakRepository struct {
	BaseRepository
}

func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *StreakRepository) GetStreak(userID string) (*model.StreakRecord, error) {
	var record model.StreakRecord
	if err := ds.db.Where("user_id = ?", userID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (ds *StreakRepository) CreateStreak(record *model.StreakRecord) error {
	if record.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		record.ID = id.String()
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	return ds.db.Create(record).Error
}

// UpdateStreakGuarded writes the record back with a compare-and-swap on the
// version column. The in-memory record must still carry the version it was
// read with; on success the stored and in-memory versions are bumped. A miss
// means another writer got there first and surfaces as ErrVersionConflict.
func (ds *StreakRepository) UpdateStreakGuarded(record *model.StreakRecord) error {
	now := time.Now()
	res := ds.db.Model(&model.StreakRecord{}).
		Where("user_id = ? AND version = ?", record.UserID, record.Version).
		Updates(map[string]interface{}{
			"current_streak":      record.CurrentStreak,
			"longest_streak":      record.LongestStreak,
			"last_activity_date":  record.LastActivityDate,
			"grace_period_used":   record.GracePeriodUsed,
			"grace_expires_at":    record.GraceExpiresAt,
			"day7_achieved":       record.Day7Achieved,
			"day14_achieved":      record.Day14Achieved,
			"day30_achieved":      record.Day30Achieved,
			"day60_achieved":      record.Day60Achieved,
			"bonus_credits":       record.BonusCredits,
			"discount_earned":     record.DiscountEarned,
			"discount_percentage": record.DiscountPercentage,
			"discount_expires_at": record.DiscountExpiresAt,
			"version":             record.Version + 1,
			"updated_at":          now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	record.Version++
	record.UpdatedAt = now
	return nil
}

// AppendHistory inserts one audit row. History rows are write-once; there is
// deliberately no update or delete counterpart.
func (ds *StreakRepository) AppendHistory(entry *model.StreakHistory) error {
	if entry.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		entry.ID = id.String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return ds.db.Create(entry).Error
}

func (ds *StreakRepository) GetHistory(userID string, limit int) ([]model.StreakHistory, error) {
	var entries []model.StreakHistory
	q := ds.db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (ds *StreakRepository) CountHistory(userID string) (int64, error) {
	var total int64
	err := ds.db.Model(&model.StreakHistory{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}

func (ds *StreakRepository) GetTopStreaks(limit int) ([]model.StreakRecord, error) {
	var records []model.StreakRecord
	err := ds.db.
		Order("current_streak DESC").
		Order("longest_streak DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
