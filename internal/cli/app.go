package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/notexe/remind/internal/cloud"
	"github.com/notexe/remind/internal/config"
	"github.com/notexe/remind/internal/gate"
	"github.com/notexe/remind/internal/license"
	"github.com/notexe/remind/internal/reminder"
	"github.com/notexe/remind/internal/scheduler"
	"github.com/notexe/remind/internal/suggest"
	"github.com/notexe/remind/internal/ui"
)

// CloudClient is the part of the remote gate the CLI uses.
type CloudClient interface {
	Suggest(ctx context.Context, text string) (*suggest.Suggestion, error)
	UsageStats(ctx context.Context) (*gate.Stats, error)
}

// App runs one CLI command against the local store.
type App struct {
	cfg        *config.Config
	configPath string
	store      *reminder.Store
	license    *license.Manager
	format     *ui.Formatter

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	now      func() time.Time
	newCloud func(baseURL, token string) CloudClient
	notifier scheduler.Notifier
}

func NewApp(cfg *config.Config, configPath string, store *reminder.Store, lic *license.Manager) *App {
	return &App{
		cfg:        cfg,
		configPath: configPath,
		store:      store,
		license:    lic,
		format:     ui.NewFormatter(cfg.UI.ColoredOutput, cfg.Location()),
		in:         os.Stdin,
		out:        os.Stdout,
		errOut:     os.Stderr,
		now:        time.Now,
		newCloud: func(baseURL, token string) CloudClient {
			return cloud.NewClient(baseURL, token)
		},
	}
}

// SetIO replaces stdin, stdout and stderr.
func (a *App) SetIO(in io.Reader, out, errOut io.Writer) {
	a.in = in
	a.out = out
	a.errOut = errOut
}

// SetClock replaces the time source.
func (a *App) SetClock(now func() time.Time) {
	a.now = now
}

// SetCloudFactory replaces how the remote gate client is built.
func (a *App) SetCloudFactory(fn func(baseURL, token string) CloudClient) {
	a.newCloud = fn
}

// SetNotifier overrides the notifier chosen by the scheduler command.
func (a *App) SetNotifier(n scheduler.Notifier) {
	a.notifier = n
}

// Formatter returns the output formatter.
func (a *App) Formatter() *ui.Formatter {
	return a.format
}

type command struct {
	name    string
	usage   string
	summary string
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = []command{
	{"add", "add [--due T] [--priority P] [--project C] [--no-ai] TEXT", "Add a reminder", (*App).cmdAdd},
	{"list", "list [--all] [--project C]", "List reminders", (*App).cmdList},
	{"done", "done ID", "Mark a reminder as done", (*App).cmdDone},
	{"delete", "delete [--yes] ID", "Delete a reminder", (*App).cmdDelete},
	{"search", "search QUERY", "Search reminder text", (*App).cmdSearch},
	{"settings", "settings [--show] [--timezone TZ] [--interval N] [--nudges 5,15,60] ...", "Show or change settings", (*App).cmdSettings},
	{"license", "license --token T [--email E] | --show", "Install or show the license", (*App).cmdLicense},
	{"usage", "usage", "Show AI quota and spend (premium)", (*App).cmdUsage},
	{"report", "report", "Show reminder analytics (premium)", (*App).cmdReport},
	{"scheduler", "scheduler [--once]", "Run the notification scheduler", (*App).cmdScheduler},
}

// Run dispatches args[0] to its command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printUsage()
		return nil
	}

	name := args[0]
	switch name {
	case "help", "-h", "--help":
		a.printUsage()
		return nil
	}

	for _, c := range commands {
		if c.name == name {
			return c.run(a, ctx, args[1:])
		}
	}
	return fmt.Errorf("unknown command %q (run `remind help`)", name)
}

func (a *App) printUsage() {
	fmt.Fprintln(a.out, a.format.FormatHeader("remind - reminders with escalating nudges"))
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Usage:")
	for _, c := range commands {
		fmt.Fprintf(a.out, "  remind %-70s %s\n", c.usage, a.format.FormatDim(c.summary))
	}
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// parseArgs parses flags that may appear before, between or after
// positional arguments and returns the positionals in order.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one reminder ID")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid reminder ID %q", args[0])
	}
	return id, nil
}

// readLine prompts for one line, using line editing on a real terminal.
func (a *App) readLine(label string) (string, error) {
	if a.in == os.Stdin {
		return ui.Prompt(label)
	}
	fmt.Fprint(a.out, label)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" && err != nil {
		return "", ui.ErrCancelled
	}
	return line, nil
}

func (a *App) success(format string, args ...interface{}) {
	fmt.Fprintln(a.out, a.format.FormatSuccess(fmt.Sprintf(format, args...)))
}

func (a *App) warn(format string, args ...interface{}) {
	fmt.Fprintln(a.errOut, a.format.FormatInfo(fmt.Sprintf(format, args...)))
}
