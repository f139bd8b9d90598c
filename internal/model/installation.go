package model

import (
	"fmt"
	"os"
	"path/filepath"
)

// InterpreterExecutable is the interpreter binary name inside an installation root.
const InterpreterExecutable = "python.exe"

// Installation describes one interpreter installation on disk.
type Installation struct {
	// Root is the installation root directory.
	Root string
}

// Executable returns the interpreter executable path.
func (i Installation) Executable() string {
	return filepath.Join(i.Root, InterpreterExecutable)
}

// Validate checks the interpreter executable exists. The check hits the
// filesystem on every call.
func (i Installation) Validate() error {
	info, err := os.Stat(i.Executable())
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", i.Executable(), ErrExecutableMissing)
		}
		return fmt.Errorf("could not stat %s: %w", i.Executable(), err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory: %w", i.Executable(), ErrExecutableMissing)
	}

	return nil
}
