package shared

const (
	UserID = "user_id"
	Tier   = "tier"

	TierBasic   = "basic"
	TierPremium = "premium"

	EventActivity        = "activity"
	EventMilestone       = "milestone"
	EventReset           = "reset"
	EventGraceUsed       = "grace_used"
	EventDiscountApplied = "discount_applied"
)

// NormalizeTier maps whatever the identity provider reports onto the closed
// tier set. Anything that is not the elevated tier gets baseline rewards.
func NormalizeTier(tier string) string {
	if tier == TierPremium {
		return TierPremium
	}
	return TierBasic
}
