package services

import (
	"time"

	"github.com/alphabatem/common/context"
	"github.com/streakforge/streak_api/shared"
)

// RewardService is the static milestone reward table. It is pure lookup: no
// database access and no side effects, so it is safe from any goroutine.
type RewardService struct {
	context.DefaultService
}

const REWARD_SVC = "reward_svc"

// MilestoneDays are the streak lengths that trigger a one-time reward, in
// ascending order.
var MilestoneDays = []int{7, 14, 30, 60}

// DiscountValidity is how long a day-60 subscription discount stays usable
// after it is granted.
const DiscountValidity = 365 * 24 * time.Hour

// RewardDescriptor describes the reward for one (milestone, tier) pair. At
// most one of BonusCredits and DiscountPercentage is non-zero; day 7 carries
// neither, it is badge-only.
type RewardDescriptor struct {
	Day                int
	Label              string
	BonusCredits       int
	DiscountPercentage int
}

var rewardTable = map[int]map[string]RewardDescriptor{
	7: {
		shared.TierBasic:   {Day: 7, Label: "Week Warrior"},
		shared.TierPremium: {Day: 7, Label: "Week Warrior"},
	},
	14: {
		shared.TierBasic:   {Day: 14, Label: "Fortnight Focus", BonusCredits: 50},
		shared.TierPremium: {Day: 14, Label: "Fortnight Focus", BonusCredits: 100},
	},
	30: {
		shared.TierBasic:   {Day: 30, Label: "Monthly Master", BonusCredits: 150},
		shared.TierPremium: {Day: 30, Label: "Monthly Master", BonusCredits: 300},
	},
	60: {
		shared.TierBasic:   {Day: 60, Label: "Diamond Dedication", DiscountPercentage: 10},
		shared.TierPremium: {Day: 60, Label: "Diamond Dedication", DiscountPercentage: 20},
	},
}

func (svc RewardService) Id() string {
	return REWARD_SVC
}

func (svc *RewardService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *RewardService) Start() error {
	return nil
}

// Resolve returns the reward for the given milestone day and tier. Unknown
// tiers fall back to the baseline reward; unknown days return ok=false.
func (svc *RewardService) Resolve(day int, tier string) (RewardDescriptor, bool) {
	byTier, ok := rewardTable[day]
	if !ok {
		return RewardDescriptor{}, false
	}
	return byTier[shared.NormalizeTier(tier)], true
}

// NextMilestone returns the smallest milestone day not yet covered by the
// given streak length, or nil once all milestones are behind it.
func (svc *RewardService) NextMilestone(streak int) *int {
	for _, day := range MilestoneDays {
		if streak < day {
			d := day
			return &d
		}
	}
	return nil
}

// DaysUntilNextMilestone returns how many more consecutive days are needed to
// hit the next milestone, or nil when fully graduated.
func (svc *RewardService) DaysUntilNextMilestone(streak int) *int {
	next := svc.NextMilestone(streak)
	if next == nil {
		return nil
	}
	remaining := *next - streak
	return &remaining
}
