package model

// CheckStatus is the outcome of one installation health check.
type CheckStatus string

const (
	CheckStatusOK      CheckStatus = "ok"
	CheckStatusWarning CheckStatus = "warning"
	CheckStatusError   CheckStatus = "error"
)

// CheckResult is the outcome of a single health check run by doctor.
type CheckResult struct {
	// ID names the checked part, e.g. "executable" or "path_config".
	ID string
	// Message is shown next to the status, on failures it says what to fix.
	Message string
	Status  CheckStatus
}

// CheckSummary counts check results per status.
type CheckSummary struct {
	OK       int
	Warnings int
	Errors   int
}

// Healthy is true when no check failed. Warnings don't make an installation
// unusable.
func (c CheckSummary) Healthy() bool { return c.Errors == 0 }

// SummarizeChecks counts results by status. Unknown statuses are ignored.
func SummarizeChecks(results []CheckResult) CheckSummary {
	var s CheckSummary
	for _, r := range results {
		switch r.Status {
		case CheckStatusOK:
			s.OK++
		case CheckStatusWarning:
			s.Warnings++
		case CheckStatusError:
			s.Errors++
		}
	}
	return s
}
