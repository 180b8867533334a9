package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/notexe/remind/internal/cloud"
	"github.com/notexe/remind/internal/reminder"
	"github.com/notexe/remind/internal/suggest"
	"github.com/notexe/remind/internal/ui"
)

func (a *App) cmdAdd(ctx context.Context, args []string) error {
	fs := a.newFlagSet("add")
	var due, priority, project string
	fs.StringVar(&due, "due", "", "due time, e.g. 'tomorrow 3pm', 'in 2 hours'")
	fs.StringVar(&due, "d", "", "shorthand for --due")
	fs.StringVar(&priority, "priority", "", "priority: low, medium, high")
	fs.StringVar(&priority, "p", "", "shorthand for --priority")
	fs.StringVar(&project, "project", "", "project tag")
	fs.StringVar(&project, "c", "", "shorthand for --project")
	noAI := fs.Bool("no-ai", false, "skip the AI suggestion")

	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	text := strings.TrimSpace(strings.Join(rest, " "))
	if text == "" {
		if text, err = a.readLine("Reminder: "); err != nil {
			return err
		}
	}

	now := a.now()
	loc := a.cfg.Location()

	dueAt := reminder.DefaultDue(now, loc)
	if due != "" {
		if dueAt, err = reminder.ParseDue(due, now, loc); err != nil {
			return fmt.Errorf("could not parse due time %q (examples: 'tomorrow', 'in 2 hours', '3pm', '2025-01-15 09:00')", due)
		}
	}

	prio := reminder.PriorityMedium
	if priority != "" {
		if prio, err = reminder.ParsePriority(priority); err != nil {
			return err
		}
	}

	var aiText string
	if a.cfg.AI.Enabled && !*noAI {
		if s := a.suggest(ctx, text); s != nil {
			aiText = s.SuggestedText
			// explicit flags win over the suggestion
			if priority == "" {
				prio = reminder.PriorityOrDefault(string(s.Priority), prio)
			}
			if due == "" && s.DueTimeSuggestion != nil {
				if t, err := reminder.ParseDue(*s.DueTimeSuggestion, now, loc); err == nil {
					dueAt = t
				}
			}
		}
	}

	r, err := a.store.Add(text, dueAt, prio, project, aiText)
	if err != nil {
		return err
	}

	a.success("Reminder added (ID: %d)", r.ID)
	fmt.Fprintf(a.out, "  Text: %s\n", r.Text)
	fmt.Fprintf(a.out, "  Due: %s %s\n", a.format.FormatTime(r.DueAt), a.format.FormatPriority(r.Priority))
	if aiText != "" {
		fmt.Fprintf(a.out, "  Suggested: %s\n", aiText)
	}
	return nil
}

// suggest asks the remote gate for an improved reminder. Every failure is
// reported and turns into a nil result so the reminder is still added.
func (a *App) suggest(ctx context.Context, text string) *suggest.Suggestion {
	if err := a.license.RequirePremium(); err != nil {
		return nil
	}
	lic, err := a.license.Get()
	if err != nil || lic == nil {
		return nil
	}
	if a.cfg.AI.BackendURL == "" {
		a.warn("AI backend not configured. Set it with `remind settings --backend-url URL`.")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.AI.Timeout)*time.Second)
	defer cancel()

	spinner := ui.NewSpinner(a.format.Colored())
	spinner.Start("Asking AI...")
	s, err := a.newCloud(a.cfg.AI.BackendURL, lic.Token).Suggest(ctx, text)
	spinner.Stop()

	if err != nil {
		var rl *cloud.RateLimitedError
		switch {
		case errors.Is(err, cloud.ErrInvalidLicense):
			a.warn("AI error: %v. Check `remind license --show`.", err)
		case errors.As(err, &rl):
			a.warn("AI unavailable: %s", rl.Detail)
		default:
			a.warn("AI error: %v", err)
		}
		return nil
	}

	fmt.Fprintf(a.out, "AI suggestion: %s\n", s.SuggestedText)
	fmt.Fprintln(a.out, a.format.FormatDim(fmt.Sprintf("  Cost: $%.2f", float64(s.CostCents)/100)))
	return s
}

func (a *App) cmdList(_ context.Context, args []string) error {
	fs := a.newFlagSet("list")
	var all bool
	var project string
	fs.BoolVar(&all, "all", false, "include done reminders")
	fs.BoolVar(&all, "a", false, "shorthand for --all")
	fs.StringVar(&project, "project", "", "only this project")
	fs.StringVar(&project, "c", "", "shorthand for --project")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	var (
		rs  []reminder.Reminder
		err error
	)
	switch {
	case project != "":
		rs, err = a.store.ListByProject(project, all)
	case all:
		rs, err = a.store.ListAll()
	default:
		rs, err = a.store.ListActive()
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, a.format.FormatReminderList(rs, a.now()))
	return nil
}

func (a *App) cmdDone(_ context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	if _, err := a.store.MarkDone(id); err != nil {
		if errors.Is(err, reminder.ErrNotFound) {
			return fmt.Errorf("reminder %d not found", id)
		}
		return err
	}

	a.success("Reminder %d marked done", id)
	return nil
}

func (a *App) cmdDelete(_ context.Context, args []string) error {
	fs := a.newFlagSet("delete")
	var yes bool
	fs.BoolVar(&yes, "yes", false, "do not ask for confirmation")
	fs.BoolVar(&yes, "y", false, "shorthand for --yes")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return err
	}

	id, err := parseID(rest)
	if err != nil {
		return err
	}

	r, err := a.store.Get(id)
	if err != nil {
		if errors.Is(err, reminder.ErrNotFound) {
			return fmt.Errorf("reminder %d not found", id)
		}
		return err
	}

	if !yes {
		ok, err := ui.Confirm(fmt.Sprintf("Delete reminder %d %q?", id, r.Text), a.format.Colored(), a.in, a.out)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}
	}

	if _, err := a.store.Delete(id); err != nil {
		return err
	}
	a.success("Reminder %d deleted", id)
	return nil
}

func (a *App) cmdSearch(_ context.Context, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("search query is required")
	}

	rs, err := a.store.Search(query)
	if err != nil {
		return err
	}
	if len(rs) == 0 {
		fmt.Fprintf(a.out, "No reminders found matching: %s\n", query)
		return nil
	}

	fmt.Fprintln(a.out, a.format.FormatHeader(fmt.Sprintf("Results for '%s':", query)))
	for i := range rs {
		fmt.Fprintln(a.out, a.format.FormatReminder(&rs[i], true))
	}
	return nil
}
