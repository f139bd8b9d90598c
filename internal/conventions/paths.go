package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default pybox data directory name (relative to home).
	DefaultDataDir = ".pybox"
	// DefaultDBFile is the run history database filename inside the data dir.
	DefaultDBFile = "pybox.db"
	// DefaultInstallDir is the default installation root (relative to the working directory).
	DefaultInstallDir = "Python"
	// DefaultConfigFile is the default provisioning config file.
	DefaultConfigFile = "python-setup.json"

	// Installation layout, relative to the installation root.

	// PipBootstrapFile is the package manager bootstrap filename.
	PipBootstrapFile = "pip.pyz"
	// SiteCustomizeFile is the site customization script filename.
	SiteCustomizeFile = "sitecustomize.py"
	// ScriptsDir is the directory where package entry points are installed.
	ScriptsDir = "Scripts"
	// SitePackagesDir is the third party packages directory.
	SitePackagesDir = "Lib/site-packages"
	// NativeLibsDir is the directory for native extension binaries.
	NativeLibsDir = "DLLs"
	// SiteImportDirective enables the site module from a path config file.
	SiteImportDirective = "import site"
)

// SiteCustomizeContent appends the working directory to the module search path.
const SiteCustomizeContent = "import sys\nsys.path.append('.')\n"

// PipBootstrapPath returns the pip bootstrap path inside an installation root.
func PipBootstrapPath(root string) string {
	return filepath.Join(root, PipBootstrapFile)
}

// SiteCustomizePath returns the sitecustomize script path inside an installation root.
func SiteCustomizePath(root string) string {
	return filepath.Join(root, SiteCustomizeFile)
}

// NativeLibsPath returns the native binaries directory inside an installation root.
func NativeLibsPath(root string) string {
	return filepath.Join(root, NativeLibsDir)
}

// PathConfigLines returns the module search path entries written to the
// runtime path config file, in order.
func PathConfigLines(root string) []string {
	return []string{
		filepath.Clean(root),
		ScriptsDir,
		".",
		SitePackagesDir,
		SiteImportDirective,
	}
}
