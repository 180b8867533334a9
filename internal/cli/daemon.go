package cli

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/notexe/remind/internal/scheduler"
)

func (a *App) cmdScheduler(ctx context.Context, args []string) error {
	fs := a.newFlagSet("scheduler")
	once := fs.Bool("once", false, "run a single pass and exit")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	sch := scheduler.New(a.store, a.chooseNotifier(), a.plugins(), scheduler.Options{
		Interval: time.Duration(a.cfg.Scheduler.IntervalMinutes) * time.Minute,
		Policy: scheduler.Policy{
			Intervals:   a.cfg.NudgeIntervals(),
			FirstNotify: scheduler.FirstNotifyPolicy(a.cfg.Scheduler.FirstNotify),
		},
		NotifyTimeout: time.Duration(a.cfg.Scheduler.NotifyTimeoutSeconds) * time.Second,
		Sound:         a.cfg.Notifications.Sound,
		Premium:       a.license,
	})
	sch.SetClock(a.now)

	if *once {
		sent := 0
		for _, d := range sch.Pass(ctx) {
			if d.Action == scheduler.ActionNotifyDue || d.Action == scheduler.ActionNotifyNudge {
				sent++
			}
		}
		fmt.Fprintf(a.out, "Sent %d notification(s)\n", sent)
		return nil
	}

	fmt.Fprintln(a.out, "Starting scheduler (Ctrl+C to stop)...")
	if err := sch.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	fmt.Fprintln(a.out, "Scheduler stopped.")
	return nil
}

func (a *App) chooseNotifier() scheduler.Notifier {
	if a.notifier != nil {
		return a.notifier
	}
	if !a.cfg.Notifications.Enabled {
		return scheduler.LogNotifier{}
	}
	d := scheduler.NewDesktopNotifier()
	if !d.Supported() {
		log.Printf("[scheduler] Desktop notifications are not available, logging instead")
		return scheduler.LogNotifier{}
	}
	return d
}

func (a *App) plugins() *scheduler.Registry {
	reg := scheduler.NewRegistry()
	if !a.cfg.Telegram.Enabled {
		return reg
	}

	chatID, err := strconv.ParseInt(a.cfg.Telegram.ChatID, 10, 64)
	if err != nil {
		log.Printf("[plugins] Invalid telegram chat id %q: %v", a.cfg.Telegram.ChatID, err)
		return reg
	}
	tg, err := scheduler.NewTelegramPlugin(a.cfg.Telegram.BotToken, chatID,
		time.Duration(a.cfg.Scheduler.NotifyTimeoutSeconds)*time.Second)
	if err != nil {
		log.Printf("[plugins] Telegram disabled: %v", err)
		return reg
	}
	reg.Register(tg)
	return reg
}
