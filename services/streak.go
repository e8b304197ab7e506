package services

import (
	"context"
	"os"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"github.com/streakforge/streak_api/dto"
	"github.com/streakforge/streak_api/model"
	"github.com/streakforge/streak_api/services/repositories"
	"github.com/streakforge/streak_api/shared"
)

// StreakService owns the per-user streak state machine: consecutive-day
// counting, the one-time grace allowance, milestone detection and the
// append-only audit trail.
//
// RecordActivity is a read-modify-write against a single row. Calls for the
// same user are serialized through a per-user mutex, and the write itself is
// guarded by a version compare-and-swap in the repository, so a concurrent
// writer from another process surfaces as a conflict instead of a lost
// update. Calls for different users never block each other.
type StreakService struct {
	appContext.DefaultService

	sqlSvc    *PostgresService
	redisSvc  *RedisService
	rewardSvc *RewardService

	repo *repositories.StreakRepository

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	// strictReset opts into resetting the streak when the grace allowance is
	// already spent and the gap is 2-3 days. The documented default leaves
	// the streak untouched in that window.
	strictReset bool

	now func() time.Time
}

const STREAK_SVC = "streak_svc"

const (
	graceMinGap   = 2
	graceMaxGap   = 3
	resetGap      = 4
	graceValidity = 72 * time.Hour
)

func (svc StreakService) Id() string {
	return STREAK_SVC
}

func (svc *StreakService) Configure(ctx *appContext.Context) error {
	svc.locks = make(map[string]*sync.Mutex)
	svc.now = time.Now
	svc.strictReset = os.Getenv("STREAK_STRICT_RESET") == "true"
	return svc.DefaultService.Configure(ctx)
}

func (svc *StreakService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.rewardSvc = svc.Service(REWARD_SVC).(*RewardService)
	svc.repo = repositories.NewStreakRepository(svc.sqlSvc.Db())
	return nil
}

func (svc *StreakService) lockFor(userID string) *sync.Mutex {
	svc.locksMu.Lock()
	defer svc.locksMu.Unlock()

	mu, ok := svc.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		svc.locks[userID] = mu
	}
	return mu
}

// dateOf truncates a timestamp to its calendar date.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysBetween(from, to time.Time) int {
	return int(dateOf(to).Sub(dateOf(from)).Hours() / 24)
}

// RecordActivity applies one day of activity for the user and returns a
// structured result. Failures never panic or propagate: Success=false means
// the store rejected the transition and no state change is guaranteed.
func (svc *StreakService) RecordActivity(userID, tier string) *dto.RecordActivityResult {
	timer := startRecordTimer()
	defer timer.observe()

	mu := svc.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	result := svc.recordActivityLocked(userID, tier)

	if result.Success && result.StreakUpdated {
		if err := svc.redisSvc.InvalidateStatus(context.Background(), userID); err != nil {
			log.WithError(err).WithField(shared.UserID, userID).Warn("Failed to invalidate status cache")
		}
	}

	observeActivityResult(result)
	return result
}

func (svc *StreakService) recordActivityLocked(userID, tier string) *dto.RecordActivityResult {
	now := svc.now()
	today := dateOf(now)

	record, err := svc.repo.GetStreak(userID)
	if err != nil {
		if !repositories.IsNotFound(err) {
			err = svc.sqlSvc.HandleError(err)
			return &dto.RecordActivityResult{Error: "failed to load streak record: " + err.Error()}
		}
		return svc.createFirstActivity(userID, today)
	}

	if record.LastActivityDate == nil {
		// A row without a last-activity date is malformed. Treat it as a
		// first activity by forcing the reset path instead of failing.
		past := today.AddDate(0, 0, -resetGap)
		record.LastActivityDate = &past
	}

	streakBefore := record.CurrentStreak
	daysSince := daysBetween(*record.LastActivityDate, today)

	if daysSince == 0 {
		return &dto.RecordActivityResult{
			Success:      true,
			StreakBefore: streakBefore,
			StreakAfter:  streakBefore,
		}
	}

	var (
		graceUsed bool
		didReset  bool
	)

	switch {
	case daysSince == 1:
		record.CurrentStreak++

	case daysSince >= graceMinGap && daysSince <= graceMaxGap && !record.GracePeriodUsed:
		record.CurrentStreak++
		record.GracePeriodUsed = true
		graceExpiry := now.Add(graceValidity)
		record.GraceExpiresAt = &graceExpiry
		graceUsed = true

	case daysSince >= resetGap:
		record.CurrentStreak = 1
		record.GracePeriodUsed = false
		record.GraceExpiresAt = nil
		didReset = true

	default:
		// Gap of 2-3 days with the grace allowance already spent. The
		// documented behavior keeps the streak as-is unless strict reset is
		// switched on.
		if !svc.strictReset {
			return &dto.RecordActivityResult{
				Success:      true,
				StreakBefore: streakBefore,
				StreakAfter:  streakBefore,
			}
		}
		record.CurrentStreak = 1
		record.GracePeriodUsed = false
		record.GraceExpiresAt = nil
		didReset = true
	}

	record.LastActivityDate = &today
	if record.CurrentStreak > record.LongestStreak {
		record.LongestStreak = record.CurrentStreak
	}

	milestone, reward := svc.applyMilestone(record, tier, now)

	if err := svc.repo.UpdateStreakGuarded(record); err != nil {
		if err == repositories.ErrVersionConflict {
			log.WithField(shared.UserID, userID).Warn("Concurrent streak update detected")
			return &dto.RecordActivityResult{
				StreakBefore: streakBefore,
				StreakAfter:  streakBefore,
				Error:        "concurrent update detected, retry",
			}
		}
		err = svc.sqlSvc.HandleError(err)
		return &dto.RecordActivityResult{
			StreakBefore: streakBefore,
			StreakAfter:  streakBefore,
			Error:        "failed to persist streak record: " + err.Error(),
		}
	}

	if didReset {
		svc.appendHistory(userID, shared.EventReset, streakBefore, 0, nil, nil)
	}
	if graceUsed {
		svc.appendHistory(userID, shared.EventGraceUsed, streakBefore, record.CurrentStreak, nil, nil)
	}

	eventType := shared.EventActivity
	var milestonePtr *int
	var rewardPtr *string
	if milestone != 0 {
		eventType = shared.EventMilestone
		milestonePtr = &milestone
		if reward != nil {
			rewardPtr = &reward.Label
		}
	}
	svc.appendHistory(userID, eventType, streakBefore, record.CurrentStreak, milestonePtr, rewardPtr)

	if reward != nil && reward.DiscountPercentage > 0 {
		svc.appendHistory(userID, shared.EventDiscountApplied, record.CurrentStreak, record.CurrentStreak, milestonePtr, rewardPtr)
	}

	return &dto.RecordActivityResult{
		Success:          true,
		StreakUpdated:    true,
		StreakBefore:     streakBefore,
		StreakAfter:      record.CurrentStreak,
		MilestoneReached: milestonePtr,
		RewardGiven:      rewardPtr,
		GraceUsed:        graceUsed,
		Reset:            didReset,
	}
}

func (svc *StreakService) createFirstActivity(userID string, today time.Time) *dto.RecordActivityResult {
	record := &model.StreakRecord{
		UserID:           userID,
		CurrentStreak:    1,
		LongestStreak:    1,
		LastActivityDate: &today,
	}

	if err := svc.repo.CreateStreak(record); err != nil {
		err = svc.sqlSvc.HandleError(err)
		return &dto.RecordActivityResult{Error: "failed to create streak record: " + err.Error()}
	}

	svc.appendHistory(userID, shared.EventActivity, 0, 1, nil, nil)

	return &dto.RecordActivityResult{
		Success:       true,
		StreakUpdated: true,
		StreakBefore:  0,
		StreakAfter:   1,
	}
}

// applyMilestone fires the matching reward when the new streak length lands
// exactly on an unachieved milestone. Achievement flags are permanent, so a
// rebuilt streak never re-fires a milestone.
func (svc *StreakService) applyMilestone(record *model.StreakRecord, tier string, now time.Time) (int, *RewardDescriptor) {
	day := record.CurrentStreak
	descriptor, ok := svc.rewardSvc.Resolve(day, tier)
	if !ok || record.MilestoneAchieved(day) {
		return 0, nil
	}

	record.SetMilestoneAchieved(day)
	record.BonusCredits += descriptor.BonusCredits

	if descriptor.DiscountPercentage > 0 {
		record.DiscountEarned = true
		record.DiscountPercentage = descriptor.DiscountPercentage
		discountExpiry := now.Add(DiscountValidity)
		record.DiscountExpiresAt = &discountExpiry
	}

	return day, &descriptor
}

// appendHistory writes one audit row. The trail is observability, not state:
// failures are logged and never fail the transition that produced them.
func (svc *StreakService) appendHistory(userID, eventType string, before, after int, milestone *int, reward *string) {
	entry := &model.StreakHistory{
		UserID:           userID,
		EventType:        eventType,
		StreakBefore:     before,
		StreakAfter:      after,
		MilestoneReached: milestone,
		RewardGiven:      reward,
		CreatedAt:        svc.now(),
	}

	if err := svc.repo.AppendHistory(entry); err != nil {
		log.WithError(err).WithFields(log.Fields{
			shared.UserID: userID,
			"event_type":  eventType,
		}).Error("Failed to append streak history")
	}
}

// GetStatus projects the stored record plus the derived next-milestone
// fields. A user who never recorded activity gets (nil, nil), not an error.
func (svc *StreakService) GetStatus(userID string) (*dto.StreakStatusResponse, error) {
	ctx := context.Background()

	var cached dto.StreakStatusResponse
	if hit, err := svc.redisSvc.GetCachedStatus(ctx, userID, &cached); err != nil {
		log.WithError(err).WithField(shared.UserID, userID).Warn("Status cache read failed")
	} else if hit {
		return &cached, nil
	}

	record, err := svc.repo.GetStreak(userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, nil
		}
		return nil, shared.NewInternalError(err, "Failed to load streak record")
	}

	status := svc.buildStatus(record)

	if err := svc.redisSvc.CacheStatus(ctx, userID, status); err != nil {
		log.WithError(err).WithField(shared.UserID, userID).Warn("Status cache write failed")
	}

	return status, nil
}

func (svc *StreakService) buildStatus(record *model.StreakRecord) *dto.StreakStatusResponse {
	return &dto.StreakStatusResponse{
		CurrentStreak:    record.CurrentStreak,
		LongestStreak:    record.LongestStreak,
		LastActivityDate: record.LastActivityDate,
		GracePeriodUsed:  record.GracePeriodUsed,
		GraceExpiresAt:   record.GraceExpiresAt,
		MilestonesAchieved: dto.MilestonesAchieved{
			Day7:  record.Day7Achieved,
			Day14: record.Day14Achieved,
			Day30: record.Day30Achieved,
			Day60: record.Day60Achieved,
		},
		BonusCredits:           record.BonusCredits,
		DiscountEarned:         record.DiscountEarned,
		DiscountPercentage:     record.DiscountPercentage,
		DiscountExpiresAt:      record.DiscountExpiresAt,
		NextMilestone:          svc.rewardSvc.NextMilestone(record.CurrentStreak),
		DaysUntilNextMilestone: svc.rewardSvc.DaysUntilNextMilestone(record.CurrentStreak),
	}
}

// GetHistory returns the newest audit entries for the user.
func (svc *StreakService) GetHistory(userID string, limit int) (*dto.StreakHistoryResponse, error) {
	if limit <= 0 {
		limit = 50
	}

	entries, err := svc.repo.GetHistory(userID, limit)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load streak history")
	}

	total, err := svc.repo.CountHistory(userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to count streak history")
	}

	out := make([]dto.StreakHistoryEntry, len(entries))
	for i, entry := range entries {
		out[i] = dto.StreakHistoryEntry{
			ID:               entry.ID,
			EventType:        entry.EventType,
			StreakBefore:     entry.StreakBefore,
			StreakAfter:      entry.StreakAfter,
			MilestoneReached: entry.MilestoneReached,
			RewardGiven:      entry.RewardGiven,
			Timestamp:        entry.CreatedAt,
		}
	}

	return &dto.StreakHistoryResponse{Entries: out, Total: int(total)}, nil
}

// GetMilestonePreview resolves the full reward table for the caller's tier
// and folds in which milestones they already hold.
func (svc *StreakService) GetMilestonePreview(userID, tier string) (*dto.MilestonePreviewResponse, error) {
	record, err := svc.repo.GetStreak(userID)
	if err != nil && !repositories.IsNotFound(err) {
		return nil, shared.NewInternalError(err, "Failed to load streak record")
	}

	normalized := shared.NormalizeTier(tier)
	milestones := make([]dto.MilestoneRewardPreview, 0, len(MilestoneDays))
	for _, day := range MilestoneDays {
		descriptor, _ := svc.rewardSvc.Resolve(day, normalized)
		achieved := record != nil && record.MilestoneAchieved(day)
		milestones = append(milestones, dto.MilestoneRewardPreview{
			Day:                day,
			Label:              descriptor.Label,
			BonusCredits:       descriptor.BonusCredits,
			DiscountPercentage: descriptor.DiscountPercentage,
			Achieved:           achieved,
		})
	}

	return &dto.MilestonePreviewResponse{Tier: normalized, Milestones: milestones}, nil
}

// GetLeaderboard returns the users with the longest running streaks.
func (svc *StreakService) GetLeaderboard(limit int) (*dto.StreakLeaderboardResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	records, err := svc.repo.GetTopStreaks(limit)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load streak leaderboard")
	}

	topUsers := make([]dto.StreakLeaderboardEntry, len(records))
	for i, record := range records {
		topUsers[i] = dto.StreakLeaderboardEntry{
			UserID:        record.UserID,
			CurrentStreak: record.CurrentStreak,
			LongestStreak: record.LongestStreak,
			Rank:          i + 1,
		}
	}

	return &dto.StreakLeaderboardResponse{TopUsers: topUsers}, nil
}
