package model

// ProvisioningConfig describes where the runtime artifacts are downloaded from
// and how the downloaded runtime is laid out. It is loaded once and read only.
type ProvisioningConfig struct {
	// PythonDownloadURL is the URL of the embeddable runtime zip.
	PythonDownloadURL string
	// PipDownloadURL is the URL of the package manager bootstrap (pip.pyz).
	PipDownloadURL string
	// InteriorArchive is the name of the standard library zip shipped inside
	// the runtime zip (e.g. "python311.zip").
	InteriorArchive string
	// PathConfigFile is the name of the ._pth file the runtime reads at
	// startup (e.g. "python311._pth").
	PathConfigFile string
}
