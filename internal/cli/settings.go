package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/notexe/remind/internal/config"
)

func (a *App) cmdSettings(_ context.Context, args []string) error {
	fs := a.newFlagSet("settings")
	show := fs.Bool("show", false, "show current settings")
	timezone := fs.String("timezone", "", "IANA timezone, e.g. Europe/Berlin")
	interval := fs.Int("interval", 0, "scheduler check interval in minutes (1-60)")
	nudges := fs.String("nudges", "", "nudge intervals in minutes, e.g. 5,15,60")
	firstNotify := fs.String("first-notify", "", "first notification: immediate or first_interval")
	sound := fs.Bool("sound", true, "notification sounds")
	notifications := fs.Bool("notifications", true, "desktop notifications")
	ai := fs.Bool("ai", true, "AI suggestions when adding reminders")
	backendURL := fs.String("backend-url", "", "AI backend URL")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	// Work on a copy so an invalid combination is never saved
	next := *a.cfg
	next.Scheduler.NudgeIntervalsMinutes = append([]int(nil), a.cfg.Scheduler.NudgeIntervalsMinutes...)
	updates := make(map[string]interface{})
	var changes []string

	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "timezone":
			next.Timezone = *timezone
			updates["timezone"] = *timezone
			changes = append(changes, "Timezone set to "+*timezone)
		case "interval":
			next.Scheduler.IntervalMinutes = *interval
			updates["scheduler.interval_minutes"] = *interval
			changes = append(changes, fmt.Sprintf("Scheduler interval set to %dm", *interval))
		case "nudges":
			mins, err := config.ParseIntervals(*nudges)
			if err != nil {
				parseErr = err
				return
			}
			next.Scheduler.NudgeIntervalsMinutes = mins
			updates["scheduler.nudge_intervals_minutes"] = mins
			changes = append(changes, fmt.Sprintf("Nudge intervals set to %v", mins))
		case "first-notify":
			next.Scheduler.FirstNotify = *firstNotify
			updates["scheduler.first_notify"] = *firstNotify
			changes = append(changes, "First notification policy set to "+*firstNotify)
		case "sound":
			next.Notifications.Sound = *sound
			updates["notifications.sound"] = *sound
			changes = append(changes, "Notification sounds "+enabled(*sound))
		case "notifications":
			next.Notifications.Enabled = *notifications
			updates["notifications.enabled"] = *notifications
			changes = append(changes, "Desktop notifications "+enabled(*notifications))
		case "ai":
			next.AI.Enabled = *ai
			updates["ai.enabled"] = *ai
			changes = append(changes, "AI suggestions "+enabled(*ai))
		case "backend-url":
			next.AI.BackendURL = strings.TrimRight(*backendURL, "/")
			updates["ai.backend_url"] = next.AI.BackendURL
			changes = append(changes, "AI backend set to "+next.AI.BackendURL)
		}
	})
	if parseErr != nil {
		return parseErr
	}

	if *show || len(updates) == 0 {
		a.printSettings(a.cfg)
		return nil
	}

	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := config.Save(a.configPath, updates); err != nil {
		return err
	}
	*a.cfg = next

	for _, c := range changes {
		a.success("%s", c)
	}
	return nil
}

func (a *App) printSettings(cfg *config.Config) {
	fmt.Fprintln(a.out, a.format.FormatHeader("Current settings:"))
	fmt.Fprintf(a.out, "  Timezone: %s\n", cfg.Timezone)
	fmt.Fprintf(a.out, "  Scheduler interval: %dm\n", cfg.Scheduler.IntervalMinutes)
	fmt.Fprintf(a.out, "  Nudge intervals: %v\n", cfg.Scheduler.NudgeIntervalsMinutes)
	fmt.Fprintf(a.out, "  First notification: %s\n", cfg.Scheduler.FirstNotify)
	fmt.Fprintf(a.out, "  Desktop notifications: %s\n", enabled(cfg.Notifications.Enabled))
	fmt.Fprintf(a.out, "  Notification sounds: %s\n", enabled(cfg.Notifications.Sound))
	fmt.Fprintf(a.out, "  AI suggestions: %s\n", enabled(cfg.AI.Enabled))
	backend := cfg.AI.BackendURL
	if backend == "" {
		backend = "(not set)"
	}
	fmt.Fprintf(a.out, "  AI backend: %s\n", backend)
	fmt.Fprintf(a.out, "  Telegram: %s\n", enabled(cfg.Telegram.Enabled))
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func (a *App) cmdLicense(_ context.Context, args []string) error {
	fs := a.newFlagSet("license")
	token := fs.String("token", "", "license token from your purchase email")
	email := fs.String("email", "", "email the license was issued to")
	show := fs.Bool("show", false, "show the installed license")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	if *token == "" || *show {
		l, err := a.license.Get()
		if err != nil {
			return err
		}
		if l == nil {
			fmt.Fprintln(a.out, "No license installed. Run `remind license --token <TOKEN>`.")
			return nil
		}
		fmt.Fprintf(a.out, "License: %s\n", maskToken(l.Token))
		if l.Email != "" {
			fmt.Fprintf(a.out, "  Email: %s\n", l.Email)
		}
		fmt.Fprintf(a.out, "  Installed: %s\n", a.format.FormatTime(l.CreatedAt))
		return nil
	}

	if _, err := a.license.Save(*token, *email); err != nil {
		return err
	}
	a.success("License installed")
	return nil
}

// maskToken keeps the plan prefix and the last four characters.
func maskToken(token string) string {
	if len(token) <= 16 {
		return token[:4] + "…"
	}
	cut := strings.LastIndex(token, "_") + 1
	if cut <= 0 || cut > len(token)-4 {
		cut = 4
	}
	return token[:cut] + "…" + token[len(token)-4:]
}
