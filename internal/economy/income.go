package economy

// clickIncomeShare ties manual clicks to passive income so clicking stays
// relevant at every stage.
const clickIncomeShare = 0.05

type Stats struct {
	IncomePerSecond float64 `json:"income_per_second"`
	ClickValue      float64 `json:"click_value"`
}

// BaseIncome sums per-second income of owned upgrades before multipliers.
// Ids missing from the catalog contribute nothing.
func (c *Catalog) BaseIncome(owned map[string]int) float64 {
	total := 0.0
	for _, u := range c.upgrades {
		if n := owned[u.ID]; n > 0 {
			total += u.BaseIncome * float64(n)
		}
	}
	return total
}

// Compute derives income per second and click value. market is the transient
// event multiplier, 1.0 when no event is active.
func (c *Catalog) Compute(owned map[string]int, prestige, market float64) Stats {
	ips := c.BaseIncome(owned) * prestige * market
	return Stats{
		IncomePerSecond: ips,
		ClickValue:      (1 + ips*clickIncomeShare) * prestige * market,
	}
}
