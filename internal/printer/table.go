package printer

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/vidtree/pybox/internal/model"
)

// TablePrinter prints run history in a table format.
type TablePrinter struct {
	writer  io.Writer
	timeNow func() time.Time
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w, timeNow: time.Now}
}

// PrintRuns prints runs in a table format.
func (t *TablePrinter) PrintRuns(runs []model.RunRecord) error {
	if len(runs) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tSTATUS\tEXIT\tLINES\tDURATION\tSTARTED\tARGS")
	now := t.timeNow()
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID,
			r.Status,
			exitCode(r),
			r.Lines,
			FormatDuration(r.StartedAt, r.FinishedAt),
			TimeAgo(now, r.StartedAt),
			r.Args,
		)
	}

	return nil
}

// PrintRun prints a single run in detail.
func (t *TablePrinter) PrintRun(r model.RunRecord) error {
	fmt.Fprintf(t.writer, "ID:        %s\n", r.ID)
	fmt.Fprintf(t.writer, "Root:      %s\n", r.Root)
	fmt.Fprintf(t.writer, "Args:      %s\n", r.Args)
	fmt.Fprintf(t.writer, "Status:    %s\n", r.Status)
	fmt.Fprintf(t.writer, "Exit code: %s\n", exitCode(r))
	fmt.Fprintf(t.writer, "Lines:     %d\n", r.Lines)
	fmt.Fprintf(t.writer, "Started:   %s\n", FormatTimestamp(r.StartedAt))
	if r.FinishedAt != nil {
		fmt.Fprintf(t.writer, "Finished:  %s\n", FormatTimestamp(*r.FinishedAt))
		fmt.Fprintf(t.writer, "Duration:  %s\n", FormatDuration(r.StartedAt, r.FinishedAt))
	}
	if r.Error != "" {
		fmt.Fprintf(t.writer, "Error:     %s\n", r.Error)
	}

	return nil
}

var checkIcons = map[model.CheckStatus]string{
	model.CheckStatusOK:      "OK",
	model.CheckStatusWarning: "!!",
	model.CheckStatusError:   "XX",
}

// PrintChecks prints one line per check followed by a summary.
func (t *TablePrinter) PrintChecks(results []model.CheckResult) error {
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	for _, r := range results {
		fmt.Fprintf(tw, "[%s]\t%s\t%s\n", checkIcons[r.Status], r.ID, r.Message)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	summary := model.SummarizeChecks(results)
	fmt.Fprintf(t.writer, "\n%d ok, %d warnings, %d errors\n", summary.OK, summary.Warnings, summary.Errors)

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func exitCode(r model.RunRecord) string {
	if r.Status == model.RunStatusRunning || (r.Status == model.RunStatusError && r.ExitCode == 0) {
		return "-"
	}
	return fmt.Sprintf("%d", r.ExitCode)
}
