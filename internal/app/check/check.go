package check

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vidtree/pybox/internal/conventions"
	"github.com/vidtree/pybox/internal/log"
	"github.com/vidtree/pybox/internal/model"
	"github.com/vidtree/pybox/internal/sink"
	"github.com/vidtree/pybox/internal/supervisor"
)

// Check IDs.
const (
	IDExecutable    = "executable"
	IDPathConfig    = "path_config"
	IDSiteCustomize = "site_customize"
	IDNativeLibs    = "native_libs_dir"
	IDPipBootstrap  = "pip_bootstrap"
	IDInterpreter   = "interpreter"
)

// ServiceConfig is the configuration for the check service.
type ServiceConfig struct {
	// Runner is used to start the interpreter. Optional, without it the
	// interpreter check is skipped.
	Runner supervisor.Runner
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Check"})
	return nil
}

// Service runs health checks on an installation.
type Service struct {
	runner supervisor.Runner
	logger log.Logger
}

// NewService creates a new check service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		runner: cfg.Runner,
		logger: cfg.Logger,
	}, nil
}

// Request contains the parameters for a health check.
type Request struct {
	// Root is the installation root.
	Root string
	// PathConfigFile is the path config filename. When empty the first
	// `*._pth` file in the root is used.
	PathConfigFile string
}

// Run checks the installation at req.Root. Checks never fail the call, their
// outcome is in the results.
func (s *Service) Run(ctx context.Context, req Request) ([]model.CheckResult, error) {
	if req.Root == "" {
		return nil, fmt.Errorf("installation root is required: %w", model.ErrNotValid)
	}

	inst := model.Installation{Root: req.Root}
	results := []model.CheckResult{
		s.checkExecutable(inst),
		s.checkPathConfig(req.Root, req.PathConfigFile),
		s.checkSiteCustomize(req.Root),
		s.checkNativeLibs(req.Root),
		s.checkPipBootstrap(req.Root),
	}

	if s.runner != nil && results[0].Status == model.CheckStatusOK {
		results = append(results, s.checkInterpreter(ctx, inst))
	}

	return results, nil
}

func (s *Service) checkExecutable(inst model.Installation) model.CheckResult {
	if err := inst.Validate(); err != nil {
		return model.CheckResult{ID: IDExecutable, Status: model.CheckStatusError, Message: err.Error()}
	}
	return model.CheckResult{ID: IDExecutable, Status: model.CheckStatusOK, Message: inst.Executable()}
}

func (s *Service) checkPathConfig(root, name string) model.CheckResult {
	if name == "" {
		matches, _ := filepath.Glob(filepath.Join(root, "*._pth"))
		if len(matches) == 0 {
			return model.CheckResult{ID: IDPathConfig, Status: model.CheckStatusError, Message: "no ._pth file found"}
		}
		name = filepath.Base(matches[0])
	}

	p := filepath.Join(root, name)
	data, err := os.ReadFile(p)
	if err != nil {
		return model.CheckResult{ID: IDPathConfig, Status: model.CheckStatusError, Message: fmt.Sprintf("could not read %s: %s", name, err)}
	}

	got := strings.Split(strings.TrimRight(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"), "\n")
	exp := conventions.PathConfigLines(root)
	if !equalLines(got, exp) {
		return model.CheckResult{ID: IDPathConfig, Status: model.CheckStatusWarning, Message: fmt.Sprintf("%s has unexpected entries: %q", name, got)}
	}

	return model.CheckResult{ID: IDPathConfig, Status: model.CheckStatusOK, Message: name}
}

func (s *Service) checkSiteCustomize(root string) model.CheckResult {
	data, err := os.ReadFile(conventions.SiteCustomizePath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return model.CheckResult{ID: IDSiteCustomize, Status: model.CheckStatusWarning, Message: "sitecustomize.py is missing, sibling imports will fail"}
		}
		return model.CheckResult{ID: IDSiteCustomize, Status: model.CheckStatusError, Message: err.Error()}
	}
	if string(data) != conventions.SiteCustomizeContent {
		return model.CheckResult{ID: IDSiteCustomize, Status: model.CheckStatusWarning, Message: "sitecustomize.py was modified"}
	}
	return model.CheckResult{ID: IDSiteCustomize, Status: model.CheckStatusOK, Message: "working directory on module path"}
}

func (s *Service) checkNativeLibs(root string) model.CheckResult {
	info, err := os.Stat(conventions.NativeLibsPath(root))
	if err != nil || !info.IsDir() {
		return model.CheckResult{ID: IDNativeLibs, Status: model.CheckStatusWarning, Message: conventions.NativeLibsDir + " directory is missing"}
	}
	return model.CheckResult{ID: IDNativeLibs, Status: model.CheckStatusOK, Message: conventions.NativeLibsDir}
}

func (s *Service) checkPipBootstrap(root string) model.CheckResult {
	info, err := os.Stat(conventions.PipBootstrapPath(root))
	if err != nil || info.Size() == 0 {
		return model.CheckResult{ID: IDPipBootstrap, Status: model.CheckStatusWarning, Message: conventions.PipBootstrapFile + " is missing or empty"}
	}
	return model.CheckResult{ID: IDPipBootstrap, Status: model.CheckStatusOK, Message: conventions.PipBootstrapFile}
}

func (s *Service) checkInterpreter(ctx context.Context, inst model.Installation) model.CheckResult {
	buf := sink.NewBuffer()
	status, err := s.runner.Run(ctx, inst, "--version", buf)
	if err != nil {
		return model.CheckResult{ID: IDInterpreter, Status: model.CheckStatusError, Message: err.Error()}
	}
	if !status.Success() {
		return model.CheckResult{ID: IDInterpreter, Status: model.CheckStatusError, Message: fmt.Sprintf("--version exited with code %d", status.Code)}
	}

	version := strings.TrimSpace(buf.String())
	if version == "" {
		version = "started"
	}
	return model.CheckResult{ID: IDInterpreter, Status: model.CheckStatusOK, Message: version}
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
