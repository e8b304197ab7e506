package services

import (
	"testing"

	"github.com/streakforge/streak_api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewardResolveDay7IsBadgeOnly(t *testing.T) {
	svc := &RewardService{}

	for _, tier := range []string{shared.TierBasic, shared.TierPremium} {
		descriptor, ok := svc.Resolve(7, tier)
		require.True(t, ok)
		assert.Equal(t, "Week Warrior", descriptor.Label)
		assert.Zero(t, descriptor.BonusCredits)
		assert.Zero(t, descriptor.DiscountPercentage)
	}
}

func TestRewardResolvePremiumOutscoresBasic(t *testing.T) {
	svc := &RewardService{}

	for _, day := range []int{14, 30} {
		basic, ok := svc.Resolve(day, shared.TierBasic)
		require.True(t, ok)
		premium, ok := svc.Resolve(day, shared.TierPremium)
		require.True(t, ok)

		assert.Greater(t, basic.BonusCredits, 0)
		assert.Greater(t, premium.BonusCredits, basic.BonusCredits)
		assert.Zero(t, basic.DiscountPercentage)
	}

	basic, _ := svc.Resolve(60, shared.TierBasic)
	premium, _ := svc.Resolve(60, shared.TierPremium)
	assert.Greater(t, basic.DiscountPercentage, 0)
	assert.Greater(t, premium.DiscountPercentage, basic.DiscountPercentage)
	assert.Zero(t, basic.BonusCredits)
	assert.Zero(t, premium.BonusCredits)
}

func TestRewardResolveUnknownTierFallsBackToBasic(t *testing.T) {
	svc := &RewardService{}

	fallback, ok := svc.Resolve(14, "free")
	require.True(t, ok)
	basic, _ := svc.Resolve(14, shared.TierBasic)
	assert.Equal(t, basic, fallback)
}

func TestRewardResolveUnknownDay(t *testing.T) {
	svc := &RewardService{}

	_, ok := svc.Resolve(13, shared.TierBasic)
	assert.False(t, ok)
}

func TestNextMilestone(t *testing.T) {
	svc := &RewardService{}

	cases := []struct {
		streak int
		want   int
	}{
		{0, 7},
		{1, 7},
		{6, 7},
		{7, 14},
		{13, 14},
		{14, 30},
		{29, 30},
		{30, 60},
		{59, 60},
	}

	for _, tc := range cases {
		next := svc.NextMilestone(tc.streak)
		require.NotNil(t, next, "streak %d", tc.streak)
		assert.Equal(t, tc.want, *next, "streak %d", tc.streak)
	}

	assert.Nil(t, svc.NextMilestone(60))
	assert.Nil(t, svc.NextMilestone(100))
}

func TestDaysUntilNextMilestone(t *testing.T) {
	svc := &RewardService{}

	days := svc.DaysUntilNextMilestone(1)
	require.NotNil(t, days)
	assert.Equal(t, 6, *days)

	days = svc.DaysUntilNextMilestone(59)
	require.NotNil(t, days)
	assert.Equal(t, 1, *days)

	assert.Nil(t, svc.DaysUntilNextMilestone(60))
}
