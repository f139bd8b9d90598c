package printer

import "github.com/vidtree/pybox/internal/model"

// Printer knows how to print run history and installation checks in
// different formats.
type Printer interface {
	PrintRuns(runs []model.RunRecord) error
	PrintRun(run model.RunRecord) error
	PrintChecks(results []model.CheckResult) error
	PrintMessage(msg string) error
}

var (
	_ Printer = &TablePrinter{}
	_ Printer = &JSONPrinter{}
)
