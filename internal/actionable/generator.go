package actionable

import (
	"fmt"
	"sort"

	"call-quality-go/internal/aggregator"
)

const unresolvedThreshold = 0.35

type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

func Generate(ins aggregator.Insight) ActionCard {
	cats := make([]string, 0, len(ins.UnresolvedByCategory))
	for c := range ins.UnresolvedByCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	worst := ""
	highest := 0.0
	for _, c := range cats {
		if v := ins.UnresolvedByCategory[c]; v > highest {
			highest = v
			worst = c
		}
	}
	if highest >= unresolvedThreshold && worst != "" {
		return ActionCard{
			Insight: fmt.Sprintf("High unresolved rate in %s calls (%.0f%%)", worst, highest*100),
			Action:  "Review the resolution playbook for this category with agents; route repeat callers to senior staff",
			Impact:  "Fewer repeat calls and escalations",
		}
	}
	if ins.PauseViolations > 0 {
		return ActionCard{
			Insight: fmt.Sprintf("%d long holds without an announcement", ins.PauseViolations),
			Action:  "Coach agents to announce holds over one minute and check back with the customer",
			Impact:  "Pause compliance and customer patience",
		}
	}
	if ins.Degraded > 0 {
		return ActionCard{
			Insight: fmt.Sprintf("%d recordings could not be analyzed", ins.Degraded),
			Action:  "Review these recordings manually and re-run the analysis",
			Impact:  "Complete review coverage",
		}
	}
	return ActionCard{
		Insight: "No strong quality pattern detected",
		Action:  "Monitor and collect more data",
		Impact:  "Low immediate intervention",
	}
}
