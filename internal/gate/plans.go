package gate

import (
	"fmt"
	"strings"
)

// Plan is a subscription tier.
type Plan string

const (
	PlanFree  Plan = "free"
	PlanIndie Plan = "indie"
	PlanPro   Plan = "pro"
	PlanTeam  Plan = "team"
)

var monthlyQuotas = map[Plan]int{
	PlanFree:  5,
	PlanIndie: 100,
	PlanPro:   1000,
	PlanTeam:  5000,
}

// MonthlyQuota is the number of AI suggestions allowed per calendar month.
func (p Plan) MonthlyQuota() int {
	return monthlyQuotas[p]
}

func (p Plan) Valid() bool {
	_, ok := monthlyQuotas[p]
	return ok
}

func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown plan %q (use free, indie, pro or team)", s)
	}
	return p, nil
}
