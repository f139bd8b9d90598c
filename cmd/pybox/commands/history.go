package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"

	"github.com/vidtree/pybox/internal/app/history"
	"github.com/vidtree/pybox/internal/model"
	"github.com/vidtree/pybox/internal/printer"
)

// NewHistoryCommand returns the parent command of the run history subcommands.
func NewHistoryCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("history", "Inspect the run history.")
}

type HistoryListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	statusFilter string
	limit        int
	format       string
}

// NewHistoryListCommand returns the history list command.
func NewHistoryListCommand(rootCmd *RootCommand, historyCmd *kingpin.CmdClause) *HistoryListCommand {
	c := &HistoryListCommand{rootCmd: rootCmd}

	c.Cmd = historyCmd.Command("list", "List past runs, newest first.")
	c.Cmd.Flag("status", "Filter by status (running, succeeded, failed, error).").StringVar(&c.statusFilter)
	c.Cmd.Flag("limit", "Maximum number of runs, 0 for all.").Short('n').Default("20").IntVar(&c.limit)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c HistoryListCommand) Name() string { return c.Cmd.FullCommand() }

func (c HistoryListCommand) Run(ctx context.Context) error {
	var statusFilter *model.RunStatus
	if c.statusFilter != "" {
		status := model.RunStatus(strings.ToLower(c.statusFilter))
		switch status {
		case model.RunStatusRunning, model.RunStatusSucceeded, model.RunStatusFailed, model.RunStatusError:
			statusFilter = &status
		default:
			return fmt.Errorf("invalid status filter: %s (must be: running, succeeded, failed, error)", c.statusFilter)
		}
	}

	svc, closeRepo, err := newHistoryService(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer closeRepo()

	runs, err := svc.List(ctx, history.ListRequest{
		Limit:        c.limit,
		StatusFilter: statusFilter,
	})
	if err != nil {
		return fmt.Errorf("could not list runs: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd).PrintRuns(runs); err != nil {
		return fmt.Errorf("could not print runs: %w", err)
	}

	return nil
}

type HistoryShowCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id     string
	format string
}

// NewHistoryShowCommand returns the history show command.
func NewHistoryShowCommand(rootCmd *RootCommand, historyCmd *kingpin.CmdClause) *HistoryShowCommand {
	c := &HistoryShowCommand{rootCmd: rootCmd}

	c.Cmd = historyCmd.Command("show", "Show a single run.")
	c.Cmd.Arg("id", "Run ID.").Required().StringVar(&c.id)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c HistoryShowCommand) Name() string { return c.Cmd.FullCommand() }

func (c HistoryShowCommand) Run(ctx context.Context) error {
	svc, closeRepo, err := newHistoryService(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer closeRepo()

	run, err := svc.Get(ctx, c.id)
	if err != nil {
		return err
	}

	if err := newPrinter(c.format, c.rootCmd).PrintRun(*run); err != nil {
		return fmt.Errorf("could not print run: %w", err)
	}

	return nil
}

func newHistoryService(ctx context.Context, rootCmd *RootCommand) (*history.Service, func(), error) {
	repo, closeRepo, err := rootCmd.newRunRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	svc, err := history.NewService(history.ServiceConfig{
		Repository: repo,
		Logger:     rootCmd.Logger,
	})
	if err != nil {
		closeRepo()
		return nil, nil, fmt.Errorf("could not create service: %w", err)
	}

	return svc, closeRepo, nil
}

func newPrinter(format string, rootCmd *RootCommand) printer.Printer {
	switch format {
	case "json":
		return printer.NewJSONPrinter(rootCmd.Stdout)
	default: // table
		return printer.NewTablePrinter(rootCmd.Stdout)
	}
}
