package finance

import "math"

// GoalPercentage is min(100, round(current/target*100)); 0 for a zero target.
func GoalPercentage(current, target int64) int {
	if target <= 0 || current <= 0 {
		return 0
	}
	pct := int(math.Round(float64(current) / float64(target) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

// BudgetUsage is spent against a monthly cap.
type BudgetUsage struct {
	Spent      int64   `json:"spent"`
	Remaining  int64   `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

// UsageOf computes spent/remaining/percentage for a budget amount.
func UsageOf(amount, spent int64) BudgetUsage {
	return BudgetUsage{
		Spent:      spent,
		Remaining:  amount - spent,
		Percentage: Round2(Percent(spent, amount)),
	}
}
