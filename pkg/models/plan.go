package models

import "time"

// Plan represents a subscription plan tier
type Plan string

const (
	PlanFree      Plan = "free"
	PlanEssential Plan = "essential"
	PlanAbundance Plan = "abundance"
)

// ParsePlan normalizes a stored plan value, defaulting unknown values to free
func ParsePlan(s string) Plan {
	switch Plan(s) {
	case PlanEssential:
		return PlanEssential
	case PlanAbundance:
		return PlanAbundance
	default:
		return PlanFree
	}
}

// PlanLimits maps each plan to its metered generations per billing period
type PlanLimits struct {
	Free      int
	Essential int
	Abundance int
}

// LimitFor returns the generation limit for a plan
func (pl PlanLimits) LimitFor(plan Plan) int {
	switch plan {
	case PlanEssential:
		return pl.Essential
	case PlanAbundance:
		return pl.Abundance
	default:
		return pl.Free
	}
}

// UsageProfile is the per-user quota record owned by the quota store
type UsageProfile struct {
	UserID          string
	Plan            Plan
	CountThisPeriod int
	ResetAt         time.Time
}
