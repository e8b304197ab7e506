package dto

import "time"

// RecordActivityResult describes the outcome of a single activity transition.
// Success=false means the store rejected the write and no state change is
// guaranteed; callers must not assume a blind retry is safe.
type RecordActivityResult struct {
	Success          bool    `json:"success"`
	StreakUpdated    bool    `json:"streak_updated"`
	StreakBefore     int     `json:"streak_before"`
	StreakAfter      int     `json:"streak_after"`
	MilestoneReached *int    `json:"milestone_reached"`
	RewardGiven      *string `json:"reward_given"`
	GraceUsed        bool    `json:"grace_used"`
	Reset            bool    `json:"reset"`
	Error            string  `json:"error,omitempty"`
}

type MilestonesAchieved struct {
	Day7  bool `json:"day_7"`
	Day14 bool `json:"day_14"`
	Day30 bool `json:"day_30"`
	Day60 bool `json:"day_60"`
}

// StreakStatusResponse is the read-only projection of a user's streak record
// plus the derived next-milestone fields.
type StreakStatusResponse struct {
	CurrentStreak          int                `json:"current_streak"`
	LongestStreak          int                `json:"longest_streak"`
	LastActivityDate       *time.Time         `json:"last_activity_date"`
	GracePeriodUsed        bool               `json:"grace_period_used"`
	GraceExpiresAt         *time.Time         `json:"grace_expires_at"`
	MilestonesAchieved     MilestonesAchieved `json:"milestones_achieved"`
	BonusCredits           int                `json:"bonus_credits"`
	DiscountEarned         bool               `json:"discount_earned"`
	DiscountPercentage     int                `json:"discount_percentage"`
	DiscountExpiresAt      *time.Time         `json:"discount_expires_at"`
	NextMilestone          *int               `json:"next_milestone"`
	DaysUntilNextMilestone *int               `json:"days_until_next_milestone"`
}

type StreakHistoryEntry struct {
	ID               string    `json:"id"`
	EventType        string    `json:"event_type"`
	StreakBefore     int       `json:"streak_before"`
	StreakAfter      int       `json:"streak_after"`
	MilestoneReached *int      `json:"milestone_reached"`
	RewardGiven      *string   `json:"reward_given"`
	Timestamp        time.Time `json:"timestamp"`
}

type StreakHistoryResponse struct {
	Entries []StreakHistoryEntry `json:"entries"`
	Total   int                  `json:"total"`
}

type StreakHistoryRequest struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=200"`
}

// MilestoneRewardPreview shows one reward-table row resolved for the caller's
// tier, with the caller's achievement state folded in.
type MilestoneRewardPreview struct {
	Day                int    `json:"day"`
	Label              string `json:"label"`
	BonusCredits       int    `json:"bonus_credits,omitempty"`
	DiscountPercentage int    `json:"discount_percentage,omitempty"`
	Achieved           bool   `json:"achieved"`
}

type MilestonePreviewResponse struct {
	Tier       string                   `json:"tier"`
	Milestones []MilestoneRewardPreview `json:"milestones"`
}

type StreakLeaderboardEntry struct {
	UserID        string `json:"user_id"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	Rank          int    `json:"rank"`
}

type StreakLeaderboardResponse struct {
	TopUsers []StreakLeaderboardEntry `json:"top_users"`
}

type StreakLeaderboardRequest struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=100"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
