// Command mcp-reminder exposes the local reminder database over MCP.
//
// Usage:
//
//	./mcp-reminder                          # Start MCP server (stdio)
//	./mcp-reminder --config path/to/config  # Use another config file
//	./mcp-reminder --help                   # Show help
//
// Environment:
//
//	REMINDER_DB_PATH  Path to SQLite database (overrides database.path)
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/remind/internal/config"
	"github.com/notexe/remind/internal/reminder"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	dbPath := cfg.Database.Path
	if env := os.Getenv("REMINDER_DB_PATH"); env != "" {
		dbPath = config.ExpandPath(env)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create data directory: %v\n", err)
		os.Exit(1)
	}

	store, err := reminder.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	s := reminder.NewServer(store, cfg.Location())

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Reminder Server - reminder management via MCP protocol

USAGE:
    mcp-reminder                 Start MCP server (communicates via stdio)
    mcp-reminder --config PATH   Read settings from PATH (default: ~/.remind/config.yaml)
    mcp-reminder --help          Show this help

ENVIRONMENT:
    REMINDER_DB_PATH  Path to SQLite database file
                      Default: database.path from the config (~/.remind/reminders.db)

TOOLS:
    add_reminder       Add a reminder (text, due, priority, project)
    list_reminders     List reminders (active by default, optional project)
    get_due_reminders  Active reminders that are due or overdue
    search_reminders   Case-insensitive text search
    complete_reminder  Mark a reminder as done
    delete_reminder    Delete a reminder permanently
    update_reminder    Change text, due time, priority or project`)
}
