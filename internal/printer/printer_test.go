package printer_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtree/pybox/internal/model"
	"github.com/vidtree/pybox/internal/printer"
)

func runFixture() model.RunRecord {
	started := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	finished := started.Add(2500 * time.Millisecond)
	return model.RunRecord{
		ID:         "01HX0000000000000000000000",
		Root:       "Python",
		Args:       "Scripts/main.py --data_dir in",
		Status:     model.RunStatusFailed,
		ExitCode:   2,
		Lines:      14,
		StartedAt:  started,
		FinishedAt: &finished,
	}
}

func TestTablePrinterPrintRun(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintRun(runFixture())
	require.NoError(t, err)

	exp := `ID:        01HX0000000000000000000000
Root:      Python
Args:      Scripts/main.py --data_dir in
Status:    failed
Exit code: 2
Lines:     14
Started:   2026-01-30 10:00:00 UTC
Finished:  2026-01-30 10:00:02 UTC
Duration:  2.5s
`
	assert.Equal(t, exp, buf.String())
}

func TestTablePrinterPrintRuns(t *testing.T) {
	tests := map[string]struct {
		runs     []model.RunRecord
		expLines int
		expParts []string
	}{
		"No runs should print nothing.": {
			runs:     nil,
			expLines: 0,
		},
		"Runs should be printed with a header.": {
			runs: []model.RunRecord{
				runFixture(),
				{ID: "01HX0000000000000000000001", Args: "x.py", Status: model.RunStatusRunning, StartedAt: time.Now()},
			},
			expLines: 3,
			expParts: []string{"ID", "STATUS", "01HX0000000000000000000000", "failed", "2.5s", "running", "x.py"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			p := printer.NewTablePrinter(&buf)

			err := p.PrintRuns(test.runs)
			require.NoError(t, err)

			out := buf.String()
			if test.expLines == 0 {
				assert.Empty(t, out)
				return
			}
			assert.Len(t, strings.Split(strings.TrimSuffix(out, "\n"), "\n"), test.expLines)
			for _, p := range test.expParts {
				assert.Contains(t, out, p)
			}
		})
	}
}

func TestTablePrinterPrintChecks(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintChecks([]model.CheckResult{
		{ID: "executable", Status: model.CheckStatusOK, Message: "Python/python.exe"},
		{ID: "native_libs_dir", Status: model.CheckStatusWarning, Message: "DLLs directory is missing"},
		{ID: "path_config", Status: model.CheckStatusError, Message: "no ._pth file found"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "[OK]  executable")
	assert.Contains(t, out, "[!!]  native_libs_dir")
	assert.Contains(t, out, "[XX]  path_config")
	assert.True(t, strings.HasSuffix(out, "1 ok, 1 warnings, 1 errors\n"))
}

func TestJSONPrinterPrintRun(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	err := p.PrintRun(runFixture())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "failed", got["status"])
	assert.Equal(t, float64(2), got["exit_code"])
	assert.Equal(t, "2026-01-30T10:00:02.5Z", got["finished_at"])
	assert.NotContains(t, got, "error")
}

func TestJSONPrinterPrintRunsEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	require.NoError(t, p.PrintRuns(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestTablePrinterPrintMessage(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintMessage("ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", strings.TrimSpace(buf.String()))
}
