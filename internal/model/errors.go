package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")

	// ErrConfigNotFound is returned when the provisioning config file does not exist.
	ErrConfigNotFound = errors.New("configuration not found")
	// ErrConfigInvalid is returned when the provisioning config can't be decoded or misses fields.
	ErrConfigInvalid = errors.New("configuration invalid")
	// ErrInstallationConflict is returned when the installation root exists but
	// does not hold a complete installation.
	ErrInstallationConflict = errors.New("installation directory already exists")
	// ErrDownloadFailed is returned when a runtime artifact could not be downloaded.
	ErrDownloadFailed = errors.New("download failed")
	// ErrExtractionFailed is returned when a runtime archive could not be extracted.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrConfigWriteFailed is returned when a runtime startup file could not be written.
	ErrConfigWriteFailed = errors.New("runtime config write failed")
	// ErrExecutableMissing is returned when the interpreter executable is not on disk.
	ErrExecutableMissing = errors.New("interpreter executable missing")
	// ErrChildProcessIO is returned when the child process could not be started
	// or its output streams could not be read.
	ErrChildProcessIO = errors.New("child process i/o error")
)

// ErrDirectoryAlreadyExists is the same condition as ErrInstallationConflict.
var ErrDirectoryAlreadyExists = ErrInstallationConflict

// ConfigValidationError lists every problem found in a provisioning config at once.
type ConfigValidationError struct {
	// MissingFields are the required fields that are absent or empty.
	MissingFields []string
	// InvalidFields are fields present with a non scalar value.
	InvalidFields []string
}

func (e *ConfigValidationError) Error() string {
	var problems []string
	if len(e.MissingFields) > 0 {
		problems = append(problems, "missing required fields: "+strings.Join(e.MissingFields, ", "))
	}
	if len(e.InvalidFields) > 0 {
		problems = append(problems, "fields must be strings: "+strings.Join(e.InvalidFields, ", "))
	}
	return fmt.Sprintf("%s: %s", ErrConfigInvalid, strings.Join(problems, "; "))
}

// Is makes errors.Is(err, ErrConfigInvalid) match.
func (e *ConfigValidationError) Is(target error) bool { return target == ErrConfigInvalid }

// DownloadError is returned on a non successful HTTP response.
type DownloadError struct {
	URL        string
	StatusCode int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("%s: HTTP %d from %s", ErrDownloadFailed, e.StatusCode, e.URL)
}

// Is makes errors.Is(err, ErrDownloadFailed) match.
func (e *DownloadError) Is(target error) bool { return target == ErrDownloadFailed }
