package check_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vidtree/pybox/internal/app/check"
	"github.com/vidtree/pybox/internal/conventions"
	"github.com/vidtree/pybox/internal/model"
	"github.com/vidtree/pybox/internal/sink"
	"github.com/vidtree/pybox/internal/supervisor/supervisormock"
)

const pthName = "python311._pth"

// healthyInstallation writes a complete installation layout under a temp dir.
func healthyInstallation(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	pth := strings.Join(conventions.PathConfigLines(root), "\n") + "\n"
	files := map[string]string{
		model.InterpreterExecutable:   "bin",
		conventions.PipBootstrapFile:  "pip",
		conventions.SiteCustomizeFile: conventions.SiteCustomizeContent,
		pthName:                       pth,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
	require.NoError(t, os.Mkdir(conventions.NativeLibsPath(root), 0o755))

	return root
}

func statuses(results []model.CheckResult) map[string]model.CheckStatus {
	m := map[string]model.CheckStatus{}
	for _, r := range results {
		m[r.ID] = r.Status
	}
	return m
}

func TestServiceRun(t *testing.T) {
	tests := map[string]struct {
		breakInstall func(t *testing.T, root string)
		pthFile      string
		expStatuses  map[string]model.CheckStatus
	}{
		"A complete installation should pass every check.": {
			breakInstall: func(t *testing.T, root string) {},
			expStatuses: map[string]model.CheckStatus{
				check.IDExecutable:    model.CheckStatusOK,
				check.IDPathConfig:    model.CheckStatusOK,
				check.IDSiteCustomize: model.CheckStatusOK,
				check.IDNativeLibs:    model.CheckStatusOK,
				check.IDPipBootstrap:  model.CheckStatusOK,
			},
		},
		"A named path config file should be used.": {
			breakInstall: func(t *testing.T, root string) {},
			pthFile:      pthName,
			expStatuses: map[string]model.CheckStatus{
				check.IDExecutable:    model.CheckStatusOK,
				check.IDPathConfig:    model.CheckStatusOK,
				check.IDSiteCustomize: model.CheckStatusOK,
				check.IDNativeLibs:    model.CheckStatusOK,
				check.IDPipBootstrap:  model.CheckStatusOK,
			},
		},
		"A missing interpreter should be an error.": {
			breakInstall: func(t *testing.T, root string) {
				require.NoError(t, os.Remove(filepath.Join(root, model.InterpreterExecutable)))
			},
			expStatuses: map[string]model.CheckStatus{
				check.IDExecutable:    model.CheckStatusError,
				check.IDPathConfig:    model.CheckStatusOK,
				check.IDSiteCustomize: model.CheckStatusOK,
				check.IDNativeLibs:    model.CheckStatusOK,
				check.IDPipBootstrap:  model.CheckStatusOK,
			},
		},
		"A missing path config should be an error.": {
			breakInstall: func(t *testing.T, root string) {
				require.NoError(t, os.Remove(filepath.Join(root, pthName)))
			},
			expStatuses: map[string]model.CheckStatus{
				check.IDExecutable:    model.CheckStatusOK,
				check.IDPathConfig:    model.CheckStatusError,
				check.IDSiteCustomize: model.CheckStatusOK,
				check.IDNativeLibs:    model.CheckStatusOK,
				check.IDPipBootstrap:  model.CheckStatusOK,
			},
		},
		"An edited path config should be a warning.": {
			breakInstall: func(t *testing.T, root string) {
				require.NoError(t, os.WriteFile(filepath.Join(root, pthName), []byte("python311.zip\n.\n"), 0o644))
			},
			expStatuses: map[string]model.CheckStatus{
				check.IDExecutable:    model.CheckStatusOK,
				check.IDPathConfig:    model.CheckStatusWarning,
				check.IDSiteCustomize: model.CheckStatusOK,
				check.IDNativeLibs:    model.CheckStatusOK,
				check.IDPipBootstrap:  model.CheckStatusOK,
			},
		},
		"Missing optional pieces should be warnings.": {
			breakInstall: func(t *testing.T, root string) {
				require.NoError(t, os.Remove(conventions.SiteCustomizePath(root)))
				require.NoError(t, os.Remove(conventions.PipBootstrapPath(root)))
				require.NoError(t, os.Remove(conventions.NativeLibsPath(root)))
			},
			expStatuses: map[string]model.CheckStatus{
				check.IDExecutable:    model.CheckStatusOK,
				check.IDPathConfig:    model.CheckStatusOK,
				check.IDSiteCustomize: model.CheckStatusWarning,
				check.IDNativeLibs:    model.CheckStatusWarning,
				check.IDPipBootstrap:  model.CheckStatusWarning,
			},
		},
		"A modified sitecustomize should be a warning.": {
			breakInstall: func(t *testing.T, root string) {
				require.NoError(t, os.WriteFile(conventions.SiteCustomizePath(root), []byte("import sys\n"), 0o644))
			},
			expStatuses: map[string]model.CheckStatus{
				check.IDExecutable:    model.CheckStatusOK,
				check.IDPathConfig:    model.CheckStatusOK,
				check.IDSiteCustomize: model.CheckStatusWarning,
				check.IDNativeLibs:    model.CheckStatusOK,
				check.IDPipBootstrap:  model.CheckStatusOK,
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			root := healthyInstallation(t)
			test.breakInstall(t, root)

			svc, err := check.NewService(check.ServiceConfig{})
			require.NoError(t, err)

			results, err := svc.Run(context.Background(), check.Request{Root: root, PathConfigFile: test.pthFile})
			require.NoError(t, err)
			assert.Equal(t, test.expStatuses, statuses(results))
		})
	}
}

func TestServiceRunInterpreter(t *testing.T) {
	tests := map[string]struct {
		mock       func(mr *supervisormock.MockRunner, inst model.Installation)
		expStatus  model.CheckStatus
		expMessage string
	}{
		"A starting interpreter should report its version.": {
			mock: func(mr *supervisormock.MockRunner, inst model.Installation) {
				mr.On("Run", mock.Anything, inst, "--version", mock.Anything).Once().Return(
					func(_ context.Context, _ model.Installation, _ string, s sink.Sink) (*model.ExitStatus, error) {
						s.WriteLine("Python 3.11.9")
						return &model.ExitStatus{Code: 0}, nil
					})
			},
			expStatus:  model.CheckStatusOK,
			expMessage: "Python 3.11.9",
		},
		"A failing interpreter should be an error.": {
			mock: func(mr *supervisormock.MockRunner, inst model.Installation) {
				mr.On("Run", mock.Anything, inst, "--version", mock.Anything).Once().Return(&model.ExitStatus{Code: 1}, nil)
			},
			expStatus:  model.CheckStatusError,
			expMessage: "--version exited with code 1",
		},
		"An interpreter that can not start should be an error.": {
			mock: func(mr *supervisormock.MockRunner, inst model.Installation) {
				mr.On("Run", mock.Anything, inst, "--version", mock.Anything).Once().Return(nil, fmt.Errorf("exec format error"))
			},
			expStatus:  model.CheckStatusError,
			expMessage: "exec format error",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			root := healthyInstallation(t)
			mr := supervisormock.NewMockRunner(t)
			test.mock(mr, model.Installation{Root: root})

			svc, err := check.NewService(check.ServiceConfig{Runner: mr})
			require.NoError(t, err)

			results, err := svc.Run(context.Background(), check.Request{Root: root})
			require.NoError(t, err)
			require.Len(t, results, 6)

			last := results[5]
			assert.Equal(t, check.IDInterpreter, last.ID)
			assert.Equal(t, test.expStatus, last.Status)
			assert.Equal(t, test.expMessage, last.Message)
		})
	}
}

func TestServiceRunSkipsInterpreterWithoutExecutable(t *testing.T) {
	root := t.TempDir()
	mr := supervisormock.NewMockRunner(t)

	svc, err := check.NewService(check.ServiceConfig{Runner: mr})
	require.NoError(t, err)

	results, err := svc.Run(context.Background(), check.Request{Root: root})
	require.NoError(t, err)
	assert.Len(t, results, 5)
	assert.False(t, model.SummarizeChecks(results).Healthy())
}

func TestServiceRunRequiresRoot(t *testing.T) {
	svc, err := check.NewService(check.ServiceConfig{})
	require.NoError(t, err)

	_, err = svc.Run(context.Background(), check.Request{})
	assert.ErrorIs(t, err, model.ErrNotValid)
}
