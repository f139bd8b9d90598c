package provision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/vidtree/pybox/internal/conventions"
	"github.com/vidtree/pybox/internal/log"
	"github.com/vidtree/pybox/internal/model"
)

// Installer manages interpreter installations on disk.
type Installer interface {
	EnsureInstalled(ctx context.Context, targetDir string, cfg model.ProvisioningConfig) (*model.Installation, error)
	Installed(targetDir string) bool
	Remove(targetDir string) error
}

var _ Installer = &RuntimeInstaller{}

// RuntimeInstallerConfig configures the runtime installer.
type RuntimeInstallerConfig struct {
	// HTTPClient is the HTTP client for downloads.
	HTTPClient *http.Client
	// TempDir is where the runtime archive is downloaded before extraction.
	// Defaults to the OS temp dir.
	TempDir string
	// StatusWriter receives download progress output (optional).
	StatusWriter io.Writer
	// Logger for logging.
	Logger log.Logger
}

func (c *RuntimeInstallerConfig) defaults() error {
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "provision.RuntimeInstaller"})
	return nil
}

// RuntimeInstaller installs an embeddable Python runtime into a directory.
type RuntimeInstaller struct {
	httpClient   *http.Client
	tempDir      string
	statusWriter io.Writer
	logger       log.Logger
}

// NewRuntimeInstaller creates a new runtime installer.
func NewRuntimeInstaller(cfg RuntimeInstallerConfig) (*RuntimeInstaller, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &RuntimeInstaller{
		httpClient:   cfg.HTTPClient,
		tempDir:      cfg.TempDir,
		statusWriter: cfg.StatusWriter,
		logger:       cfg.Logger,
	}, nil
}

// Installed returns true when targetDir holds the interpreter executable.
func (r *RuntimeInstaller) Installed(targetDir string) bool {
	return model.Installation{Root: targetDir}.Validate() == nil
}

// EnsureInstalled returns the installation at targetDir, installing it first
// if there is none.
//
// An existing installation is returned without any network or disk write. A
// targetDir that exists without the interpreter executable is a conflict and
// is left untouched. A failed install leaves its partial tree on disk.
func (r *RuntimeInstaller) EnsureInstalled(ctx context.Context, targetDir string, cfg model.ProvisioningConfig) (*model.Installation, error) {
	if targetDir == "" {
		return nil, fmt.Errorf("target directory is required: %w", model.ErrNotValid)
	}

	inst := model.Installation{Root: targetDir}
	if r.Installed(targetDir) {
		r.logger.Debugf("Runtime already installed at %s", targetDir)
		return &inst, nil
	}

	_, err := os.Stat(targetDir)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%s exists but has no %s, remove it and retry: %w", targetDir, model.InterpreterExecutable, model.ErrInstallationConflict)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("could not stat %s: %w", targetDir, err)
	}

	r.logger.Infof("Installing runtime into %s", targetDir)

	chain := NewProvisionerChain(r.logger,
		Step{Name: "install_dir", Provisioner: r.createDir(targetDir)},
		Step{Name: "runtime_archive", Provisioner: r.installRuntimeArchive(targetDir, cfg.PythonDownloadURL)},
		Step{Name: "pip_bootstrap", Provisioner: r.downloadPipBootstrap(targetDir, cfg.PipDownloadURL)},
		Step{Name: "interior_archive", Provisioner: r.extractInteriorArchive(targetDir, cfg.InteriorArchive)},
		Step{Name: "path_config", Provisioner: r.writePathConfig(targetDir, cfg.PathConfigFile)},
		Step{Name: "site_customize", Provisioner: r.writeSiteCustomize(targetDir)},
		Step{Name: "native_libs_dir", Provisioner: r.createDir(conventions.NativeLibsPath(targetDir))},
	)
	if err := chain.Provision(ctx); err != nil {
		return nil, fmt.Errorf("could not install runtime: %w", err)
	}

	if err := inst.Validate(); err != nil {
		return nil, fmt.Errorf("runtime archive did not provide the interpreter: %w", err)
	}

	r.logger.Infof("Runtime installed at %s", targetDir)
	return &inst, nil
}

// Remove deletes the installation root, complete or not.
func (r *RuntimeInstaller) Remove(targetDir string) error {
	if _, err := os.Stat(targetDir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("installation %s: %w", targetDir, model.ErrNotFound)
		}
		return fmt.Errorf("could not stat %s: %w", targetDir, err)
	}

	if err := os.RemoveAll(targetDir); err != nil {
		return fmt.Errorf("removing installation %s: %w", targetDir, err)
	}

	r.logger.Infof("Removed installation %s", targetDir)
	return nil
}

func (r *RuntimeInstaller) createDir(dir string) Provisioner {
	return ProvisionerFunc(func(_ context.Context) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
		return nil
	})
}

// installRuntimeArchive downloads the runtime zip to a temp file and extracts
// it into root. The temp file is removed whatever the outcome.
func (r *RuntimeInstaller) installRuntimeArchive(root, url string) Provisioner {
	return ProvisionerFunc(func(ctx context.Context) error {
		tmp, err := os.CreateTemp(r.tempDir, "pybox-runtime-*.zip")
		if err != nil {
			return fmt.Errorf("creating temp archive: %w", err)
		}
		tmpPath := tmp.Name()
		tmp.Close()

		defer func() {
			if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
				r.logger.Warningf("Could not remove temp archive %s: %s", tmpPath, err)
			}
		}()

		if err := r.downloadFile(ctx, url, tmpPath); err != nil {
			return fmt.Errorf("downloading runtime: %w", err)
		}

		if err := extractZip(tmpPath, root); err != nil {
			return err
		}

		return nil
	})
}

func (r *RuntimeInstaller) downloadPipBootstrap(root, url string) Provisioner {
	return ProvisionerFunc(func(ctx context.Context) error {
		if err := r.downloadFile(ctx, url, conventions.PipBootstrapPath(root)); err != nil {
			return fmt.Errorf("downloading pip bootstrap: %w", err)
		}
		return nil
	})
}

// extractInteriorArchive unpacks the standard library zip shipped inside the
// runtime, if present, and deletes it. Runtimes shipped flattened have none.
func (r *RuntimeInstaller) extractInteriorArchive(root, name string) Provisioner {
	return ProvisionerFunc(func(_ context.Context) error {
		zipPath := filepath.Join(root, name)
		info, err := os.Stat(zipPath)
		if err != nil {
			if os.IsNotExist(err) {
				r.logger.Debugf("No interior archive %s, skipping", name)
				return nil
			}
			return fmt.Errorf("could not stat %s: %w", zipPath, err)
		}
		if info.IsDir() {
			return nil
		}

		if err := extractZip(zipPath, root); err != nil {
			return err
		}

		if err := os.Remove(zipPath); err != nil {
			return fmt.Errorf("removing interior archive %s: %w", zipPath, err)
		}

		return nil
	})
}

func (r *RuntimeInstaller) writePathConfig(root, name string) Provisioner {
	return ProvisionerFunc(func(_ context.Context) error {
		content := strings.Join(conventions.PathConfigLines(root), "\n") + "\n"
		pthPath := filepath.Join(root, name)
		if err := os.WriteFile(pthPath, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w: %w", pthPath, err, model.ErrConfigWriteFailed)
		}
		return nil
	})
}

func (r *RuntimeInstaller) writeSiteCustomize(root string) Provisioner {
	return ProvisionerFunc(func(_ context.Context) error {
		p := conventions.SiteCustomizePath(root)
		if err := os.WriteFile(p, []byte(conventions.SiteCustomizeContent), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w: %w", p, err, model.ErrConfigWriteFailed)
		}
		return nil
	})
}
