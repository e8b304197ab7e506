package model

import "time"

// StreakRecord is the single mutable row per user owned by the streak engine.
// Version backs the conditional update guard; every successful write bumps it.
type StreakRecord struct {
	ID               string     `json:"id" gorm:"primaryKey"`
	UserID           string     `json:"user_id" gorm:"uniqueIndex;not null"`
	CurrentStreak    int        `json:"current_streak" gorm:"default:0"`
	LongestStreak    int        `json:"longest_streak" gorm:"default:0"`
	LastActivityDate *time.Time `json:"last_activity_date"`
	GracePeriodUsed  bool       `json:"grace_period_used" gorm:"default:false"`
	GraceExpiresAt   *time.Time `json:"grace_expires_at"`

	Day7Achieved  bool `json:"day_7_achieved" gorm:"column:day7_achieved;default:false"`
	Day14Achieved bool `json:"day_14_achieved" gorm:"column:day14_achieved;default:false"`
	Day30Achieved bool `json:"day_30_achieved" gorm:"column:day30_achieved;default:false"`
	Day60Achieved bool `json:"day_60_achieved" gorm:"column:day60_achieved;default:false"`

	BonusCredits       int        `json:"bonus_credits" gorm:"default:0"`
	DiscountEarned     bool       `json:"discount_earned" gorm:"default:false"`
	DiscountPercentage int        `json:"discount_percentage" gorm:"default:0"`
	DiscountExpiresAt  *time.Time `json:"discount_expires_at"`

	Version   int       `json:"version" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MilestoneAchieved reports whether the flag for the given milestone day is set.
func (r *StreakRecord) MilestoneAchieved(day int) bool {
	switch day {
	case 7:
		return r.Day7Achieved
	case 14:
		return r.Day14Achieved
	case 30:
		return r.Day30Achieved
	case 60:
		return r.Day60Achieved
	}
	return false
}

// SetMilestoneAchieved flips the flag for the given milestone day. Flags are
// never cleared, even when the streak later resets.
func (r *StreakRecord) SetMilestoneAchieved(day int) {
	switch day {
	case 7:
		r.Day7Achieved = true
	case 14:
		r.Day14Achieved = true
	case 30:
		r.Day30Achieved = true
	case 60:
		r.Day60Achieved = true
	}
}

// StreakHistory is the append-only audit trail. Rows are written once per
// state-changing transition and never updated or deleted.
type StreakHistory struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	UserID           string    `json:"user_id" gorm:"index:idx_streak_history_user_time;not null"`
	EventType        string    `json:"event_type" gorm:"not null"` // activity, milestone, reset, grace_used, discount_applied
	StreakBefore     int       `json:"streak_before"`
	StreakAfter      int       `json:"streak_after"`
	MilestoneReached *int      `json:"milestone_reached"`
	RewardGiven      *string   `json:"reward_given"`
	CreatedAt        time.Time `json:"created_at" gorm:"index:idx_streak_history_user_time"`
}
