// Command vidqa is a terminal client for the video transcript, summary and Q&A backend.
//
// Subcommands:
//
//	vidqa [tui]        interactive TUI (default)
//	vidqa mcp          MCP tool server over stdio
//	vidqa history      print the request journal
//	vidqa version
//
// Configuration comes from VIDQA_* environment variables; see internal/config.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jwulff/vidqa/internal/api"
	"github.com/jwulff/vidqa/internal/app"
	"github.com/jwulff/vidqa/internal/config"
	"github.com/jwulff/vidqa/internal/db"
	"github.com/jwulff/vidqa/internal/mcptools"
	"github.com/jwulff/vidqa/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var version = "dev"

func main() {
	cfg := config.Load()

	cmd := "tui"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "tui":
		err = runTUI(cfg)
	case "mcp":
		err = runMCP(cfg)
	case "history":
		err = runHistory(cfg, args)
	case "version":
		fmt.Println(version)
	case "help", "-h", "--help":
		usage(os.Stdout)
	default:
		usage(os.Stderr)
		os.Exit(2)
	}

	if err != nil {
		slog.Error("vidqa failed", slog.String("command", cmd), slog.Any("error", err))
		fmt.Fprintln(os.Stderr, "vidqa:", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: vidqa [tui|mcp|history [-n N]|version]")
}

func newClient(cfg config.Config) *api.Client {
	return api.New(cfg.APIURL, api.WithTimeout(cfg.RequestTimeout))
}

// runTUI owns the terminal, so logs go to VIDQA_LOG or nowhere.
func runTUI(cfg config.Config) error {
	var logOut io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug})))

	opts := app.Options{
		Backend:  newClient(cfg),
		ChatMode: cfg.ChatMode,
		Timeout:  cfg.RequestTimeout,
		APIURL:   cfg.APIURL,
	}

	if cfg.JournalPath != "" {
		store, err := db.Open(cfg.JournalPath)
		if err != nil {
			slog.Warn("journal disabled", slog.String("path", cfg.JournalPath), slog.Any("error", err))
		} else {
			defer store.Close()
			opts.Journal = store
		}
	}

	slog.Info("starting vidqa",
		slog.String("version", version),
		slog.String("api", cfg.APIURL),
		slog.Bool("chat", cfg.ChatMode),
	)

	p := tea.NewProgram(app.New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func runMCP(cfg config.Config) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	slog.Info("starting vidqa mcp", slog.String("version", version), slog.String("api", cfg.APIURL))

	s := mcptools.NewServer(newClient(cfg), version, cfg.RequestTimeout)
	return mcptools.ServeStdio(s)
}

func runHistory(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	limit := fs.Int("n", cfg.HistoryLimit, "number of requests to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := cfg.JournalPath
	if path == "" {
		path = db.DefaultDBPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("No journal at %s (set VIDQA_JOURNAL to enable it)\n", path)
		return nil
	}

	store, err := db.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries, err := store.Recent(ctx, *limit)
	if err != nil {
		return err
	}
	counts, err := store.Counts(ctx)
	if err != nil {
		return err
	}

	fmt.Println(renderHistory(entries, counts))
	return nil
}

// historyOutcomes is the order outcomes are totalled in.
var historyOutcomes = []string{db.OutcomeOK, db.OutcomeBackend, db.OutcomeTransport, db.OutcomeLocal, db.OutcomeDiscarded}

const outcomeCol = 4

// renderHistory draws the journal entries as a table followed by per-outcome totals.
func renderHistory(entries []db.Entry, counts map[string]int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(ui.DividerStyle).
		Headers("TIME", "OP", "SOURCE", "SEQ", "OUTCOME", "DURATION", "ERROR").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return ui.TableHeaderStyle
			}
			if col != outcomeCol || row < 0 || row >= len(entries) {
				return ui.TableCellStyle
			}
			switch entries[row].Outcome {
			case db.OutcomeOK:
				return ui.TableCellStyle.Foreground(ui.ColorGreen)
			case db.OutcomeDiscarded:
				return ui.TableCellStyle.Foreground(ui.ColorGray)
			default:
				return ui.TableCellStyle.Foreground(ui.ColorRed)
			}
		})

	for _, e := range entries {
		t.Row(
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.Op,
			e.Source,
			fmt.Sprint(e.Seq),
			e.Outcome,
			e.Duration.Round(time.Millisecond).String(),
			e.Error,
		)
	}

	totals := make([]string, 0, len(historyOutcomes))
	for _, o := range historyOutcomes {
		totals = append(totals, fmt.Sprintf("%s=%d", o, counts[o]))
	}
	return t.Render() + "\n" + ui.DimStyle.Render(strings.Join(totals, " "))
}
