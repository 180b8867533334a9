package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNotificationsTruncate(t *testing.T) {
	long := strings.Repeat("ü", 150)

	due := DueNotification(long, true)
	if due.Title != "Reminder" || due.Urgency != UrgencyNormal || !due.Sound {
		t.Errorf("due notification = %+v", due)
	}
	if want := strings.Repeat("ü", 100) + "..."; due.Message != want {
		t.Errorf("message has %d runes", len([]rune(due.Message)))
	}

	nudge := NudgeNotification("short", false)
	if nudge.Title != "Reminder Nudge" || nudge.Urgency != UrgencyCritical || nudge.Message != "short" {
		t.Errorf("nudge notification = %+v", nudge)
	}
}

func TestDesktopNotifierCommands(t *testing.T) {
	var gotName string
	var gotArgs []string
	run := func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}

	linux := &DesktopNotifier{goos: "linux", run: run}
	if !linux.Send(context.Background(), NudgeNotification("Call mom", false)) {
		t.Fatal("linux send failed")
	}
	if gotName != "notify-send" || strings.Join(gotArgs, " ") != "-a Remind -u critical Reminder Nudge Call mom" {
		t.Errorf("linux command = %s %q", gotName, gotArgs)
	}

	mac := &DesktopNotifier{goos: "darwin", run: run}
	mac.Send(context.Background(), DueNotification(`Say "hi"`, true))
	if gotName != "osascript" || len(gotArgs) != 2 {
		t.Fatalf("darwin command = %s %q", gotName, gotArgs)
	}
	want := `display notification "Say \"hi\"" with title "Reminder" sound name "default"`
	if gotArgs[1] != want {
		t.Errorf("script = %s, want %s", gotArgs[1], want)
	}
}

func TestDesktopNotifierFailures(t *testing.T) {
	failing := &DesktopNotifier{goos: "linux", run: func(context.Context, string, ...string) error {
		return errors.New("no dbus session")
	}}
	if failing.Send(context.Background(), DueNotification("x", false)) {
		t.Error("failed command should report false")
	}

	panicking := &DesktopNotifier{goos: "linux", run: func(context.Context, string, ...string) error {
		panic("unexpected")
	}}
	if panicking.Send(context.Background(), DueNotification("x", false)) {
		t.Error("panicking command should report false")
	}

	plan9 := &DesktopNotifier{goos: "plan9", run: runCommand}
	if plan9.Send(context.Background(), DueNotification("x", false)) {
		t.Error("unsupported OS should report false")
	}
}
