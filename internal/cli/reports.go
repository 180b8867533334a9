package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/notexe/remind/internal/gate"
	"github.com/notexe/remind/internal/reminder"
)

func (a *App) cmdUsage(ctx context.Context, args []string) error {
	if err := a.license.RequirePremium(); err != nil {
		return err
	}
	lic, err := a.license.Get()
	if err != nil {
		return err
	}
	if a.cfg.AI.BackendURL == "" {
		return fmt.Errorf("AI backend not configured (run `remind settings --backend-url URL`)")
	}

	stats, err := a.newCloud(a.cfg.AI.BackendURL, lic.Token).UsageStats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, a.format.RenderMarkdown(usageMarkdown(stats)))
	return nil
}

func usageMarkdown(s *gate.Stats) string {
	var sb strings.Builder
	sb.WriteString("# AI usage\n\n")
	sb.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Plan | %s |\n", s.PlanTier)
	fmt.Fprintf(&sb, "| Suggestions this month | %d / %d (%d left) |\n", s.AIQuotaUsed, s.AIQuotaTotal, s.AIQuotaRemaining)
	fmt.Fprintf(&sb, "| Spend this month | $%.2f |\n", float64(s.ThisMonthCostCents)/100)
	fmt.Fprintf(&sb, "| Rate limit | %d requests left, resets %s |\n", s.RateLimitRemaining, s.RateLimitResetAt)
	return sb.String()
}

type reportCounts struct {
	total, active, done, overdue int
	byPriority                   map[reminder.Priority]int
	byProject                    map[string]int
}

func (a *App) cmdReport(_ context.Context, args []string) error {
	if err := a.license.RequirePremium(); err != nil {
		return err
	}

	rs, err := a.store.ListAll()
	if err != nil {
		return err
	}

	c := reportCounts{
		byPriority: make(map[reminder.Priority]int),
		byProject:  make(map[string]int),
	}
	now := a.now()
	for i := range rs {
		r := &rs[i]
		c.total++
		if !r.Active() {
			c.done++
			continue
		}
		c.active++
		if r.Overdue(now) {
			c.overdue++
		}
		c.byPriority[r.Priority]++
		if r.Project != "" {
			c.byProject[r.Project]++
		}
	}

	fmt.Fprintln(a.out, a.format.RenderMarkdown(reportMarkdown(c)))
	return nil
}

func reportMarkdown(c reportCounts) string {
	var sb strings.Builder
	sb.WriteString("# Analytics\n\n")
	fmt.Fprintf(&sb, "- Total reminders: %d\n", c.total)
	fmt.Fprintf(&sb, "- Active: %d\n", c.active)
	fmt.Fprintf(&sb, "- Completed: %d\n", c.done)
	fmt.Fprintf(&sb, "- Overdue: %d\n", c.overdue)

	sb.WriteString("\n## Active by priority\n\n| Priority | Count |\n|---|---|\n")
	for _, p := range []reminder.Priority{reminder.PriorityHigh, reminder.PriorityMedium, reminder.PriorityLow} {
		fmt.Fprintf(&sb, "| %s | %d |\n", p, c.byPriority[p])
	}

	if len(c.byProject) > 0 {
		projects := make([]string, 0, len(c.byProject))
		for p := range c.byProject {
			projects = append(projects, p)
		}
		sort.Strings(projects)

		sb.WriteString("\n## Active by project\n\n| Project | Count |\n|---|---|\n")
		for _, p := range projects {
			fmt.Fprintf(&sb, "| %s | %d |\n", p, c.byProject[p])
		}
	}
	return sb.String()
}
