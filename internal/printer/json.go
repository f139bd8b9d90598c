package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/vidtree/pybox/internal/model"
)

// JSONPrinter prints run history in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

type runOutput struct {
	ID         string     `json:"id"`
	Root       string     `json:"root"`
	Args       string     `json:"args"`
	Status     string     `json:"status"`
	ExitCode   int        `json:"exit_code"`
	Error      string     `json:"error,omitempty"`
	Lines      int        `json:"lines"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

type checkOutput struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type messageOutput struct {
	Message string `json:"message"`
}

func newRunOutput(r model.RunRecord) runOutput {
	out := runOutput{
		ID:        r.ID,
		Root:      r.Root,
		Args:      r.Args,
		Status:    string(r.Status),
		ExitCode:  r.ExitCode,
		Error:     r.Error,
		Lines:     r.Lines,
		StartedAt: r.StartedAt.UTC(),
	}
	if r.FinishedAt != nil {
		utcTime := r.FinishedAt.UTC()
		out.FinishedAt = &utcTime
	}
	return out
}

// PrintRuns prints runs in JSON format.
func (j *JSONPrinter) PrintRuns(runs []model.RunRecord) error {
	items := make([]runOutput, 0, len(runs))
	for _, r := range runs {
		items = append(items, newRunOutput(r))
	}
	return j.encode(items)
}

// PrintRun prints a single run in JSON format.
func (j *JSONPrinter) PrintRun(r model.RunRecord) error {
	return j.encode(newRunOutput(r))
}

// PrintChecks prints check results in JSON format.
func (j *JSONPrinter) PrintChecks(results []model.CheckResult) error {
	items := make([]checkOutput, 0, len(results))
	for _, r := range results {
		items = append(items, checkOutput{ID: r.ID, Status: string(r.Status), Message: r.Message})
	}
	return j.encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
