package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/notexe/remind/internal/reminder"
)

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	AccentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("147")) // Light purple

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")). // Soft blue border
			Padding(0, 1)
)

var priorityColors = map[reminder.Priority]lipgloss.Color{
	reminder.PriorityHigh:   lipgloss.Color("203"),
	reminder.PriorityMedium: lipgloss.Color("222"),
	reminder.PriorityLow:    lipgloss.Color("114"),
}

// Formatter renders CLI output, with or without colour.
type Formatter struct {
	colored bool
	loc     *time.Location
}

func NewFormatter(colored bool, loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{colored: colored, loc: loc}
}

func (f *Formatter) Colored() bool { return f.colored }

func (f *Formatter) render(style lipgloss.Style, s string) string {
	if f.colored {
		return style.Render(s)
	}
	return s
}

func (f *Formatter) FormatError(err error) string {
	return f.render(ErrorStyle, "✗ ") + err.Error()
}

func (f *Formatter) FormatSuccess(msg string) string {
	return f.render(SuccessStyle, "✓ ") + msg
}

func (f *Formatter) FormatInfo(msg string) string {
	return f.render(InfoStyle, msg)
}

func (f *Formatter) FormatHeader(msg string) string {
	return f.render(HeaderStyle, msg)
}

func (f *Formatter) FormatDim(msg string) string {
	return f.render(DimStyle, msg)
}

// FormatTime shows t in the configured zone.
func (f *Formatter) FormatTime(t time.Time) string {
	return t.In(f.loc).Format("Mon Jan 2 15:04")
}

func (f *Formatter) FormatPriority(p reminder.Priority) string {
	label := "[" + string(p) + "]"
	if !f.colored {
		return label
	}
	color, ok := priorityColors[p]
	if !ok {
		return label
	}
	return lipgloss.NewStyle().Foreground(color).Render(label)
}

// FormatReminder renders one reminder on two lines: status, id and text,
// then due time and priority.
func (f *Formatter) FormatReminder(r *reminder.Reminder, showAIText bool) string {
	status := "○"
	if !r.Active() {
		status = "✓"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s %s", status, f.render(AccentStyle, fmt.Sprintf("#%d", r.ID)), r.Text))
	if r.Project != "" {
		sb.WriteString(" " + f.render(DimStyle, "@"+r.Project))
	}
	sb.WriteString(fmt.Sprintf("\n  %s %s", f.FormatTime(r.DueAt), f.FormatPriority(r.Priority)))
	if showAIText && r.AISuggestedText != "" && r.AISuggestedText != r.Text {
		sb.WriteString("\n  " + f.render(DimStyle, "Suggested: "+r.AISuggestedText))
	}
	return sb.String()
}

// maxUpcoming caps the upcoming section of FormatReminderList.
const maxUpcoming = 10

// FormatReminderList groups reminders into overdue, due today and upcoming
// sections relative to now.
func (f *Formatter) FormatReminderList(rs []reminder.Reminder, now time.Time) string {
	if len(rs) == 0 {
		return "No reminders found."
	}

	var overdue, today, upcoming, done []reminder.Reminder
	localNow := now.In(f.loc)
	for _, r := range rs {
		due := r.DueAt.In(f.loc)
		switch {
		case !r.Active():
			done = append(done, r)
		case due.Before(now):
			overdue = append(overdue, r)
		case sameDay(due, localNow):
			today = append(today, r)
		default:
			upcoming = append(upcoming, r)
		}
	}

	summary := []string{fmt.Sprintf("%d total", len(rs))}
	for _, part := range []struct {
		n     int
		label string
	}{{len(overdue), "overdue"}, {len(today), "today"}, {len(upcoming), "upcoming"}, {len(done), "done"}} {
		if part.n > 0 {
			summary = append(summary, fmt.Sprintf("%d %s", part.n, part.label))
		}
	}

	var sb strings.Builder
	sb.WriteString(f.FormatHeader("Reminders: " + strings.Join(summary, ", ")))

	section := func(title string, items []reminder.Reminder, limit int) {
		if len(items) == 0 {
			return
		}
		sb.WriteString("\n\n" + f.FormatHeader(title))
		for i := range items {
			if limit > 0 && i == limit {
				sb.WriteString(fmt.Sprintf("\n  ... and %d more", len(items)-limit))
				break
			}
			sb.WriteString("\n" + f.FormatReminder(&items[i], false))
		}
	}
	section("Overdue", overdue, 0)
	section("Due today", today, 0)
	section("Upcoming", upcoming, maxUpcoming)
	section("Done", done, 0)

	return sb.String()
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FormatBox wraps content in a styled box
func (f *Formatter) FormatBox(title, content string) string {
	if f.colored {
		return HeaderStyle.Render(title) + "\n" + BoxStyle.Render(content)
	}
	return title + "\n" + content
}
