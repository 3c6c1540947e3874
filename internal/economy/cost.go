package economy

import "math"

const (
	RebirthBaseCost = 1_000_000
	RebirthScaling  = 5
	PrestigeStep    = 0.5
)

// Cost is the price of the next unit of u when owned units are already held.
func Cost(u Upgrade, owned int) float64 {
	return math.Floor(u.BaseCost * math.Pow(u.CostMultiplier, float64(owned)))
}

// RebirthCost is the balance required to perform rebirth number rebirths+1.
func RebirthCost(rebirths int) float64 {
	return RebirthBaseCost * math.Pow(RebirthScaling, float64(rebirths))
}
