package scheduler

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
)

const (
	appName          = "Remind"
	maxMessageLength = 100
)

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// Notification is a single desktop notification.
type Notification struct {
	Title   string
	Message string
	Urgency Urgency
	Sound   bool
}

// Notifier delivers notifications. Send reports whether delivery succeeded
// and must not panic.
type Notifier interface {
	Send(ctx context.Context, n Notification) bool
}

func DueNotification(text string, sound bool) Notification {
	return Notification{
		Title:   "Reminder",
		Message: truncate(text),
		Urgency: UrgencyNormal,
		Sound:   sound,
	}
}

func NudgeNotification(text string, sound bool) Notification {
	return Notification{
		Title:   "Reminder Nudge",
		Message: truncate(text),
		Urgency: UrgencyCritical,
		Sound:   sound,
	}
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxMessageLength {
		return text
	}
	return string(runes[:maxMessageLength]) + "..."
}

// DesktopNotifier shells out to notify-send on Linux and osascript on macOS.
type DesktopNotifier struct {
	goos string
	run  func(ctx context.Context, name string, args ...string) error
}

func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{
		goos: runtime.GOOS,
		run:  runCommand,
	}
}

// Supported reports whether the current platform has a notification command.
func (d *DesktopNotifier) Supported() bool {
	name, _, ok := d.command(Notification{})
	if !ok {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}

func (d *DesktopNotifier) Send(ctx context.Context, n Notification) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[notify] Error: notification panicked: %v", rec)
			ok = false
		}
	}()

	name, args, supported := d.command(n)
	if !supported {
		log.Printf("[notify] Notifications are not supported on %s", d.goos)
		return false
	}

	if err := d.run(ctx, name, args...); err != nil {
		log.Printf("[notify] Error: %s failed: %v", name, err)
		return false
	}
	return true
}

func (d *DesktopNotifier) command(n Notification) (string, []string, bool) {
	switch d.goos {
	case "linux":
		args := []string{"-a", appName, "-u", string(n.Urgency)}
		if n.Sound {
			args = append(args, "-h", "string:sound-name:message-new-instant")
		}
		return "notify-send", append(args, n.Title, n.Message), true
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s", appleScriptString(n.Message), appleScriptString(n.Title))
		if n.Sound {
			script += ` sound name "default"`
		}
		return "osascript", []string{"-e", script}, true
	default:
		return "", nil, false
	}
}

func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// LogNotifier writes notifications to the log. Used when desktop
// notifications are disabled or unavailable.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, n Notification) bool {
	log.Printf("[notify] %s: %s", n.Title, n.Message)
	return true
}
