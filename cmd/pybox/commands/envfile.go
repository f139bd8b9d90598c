package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is the dotenv file loaded when none is set.
const DefaultEnvFile = ".env"

// LoadEnvFile loads a dotenv file into the process environment without
// overriding variables that are already set. A missing default file is
// ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if path == DefaultEnvFile && errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("could not load env file %q: %w", path, err)
}

// EnvFileFromArgs returns the env file set on the command line arguments,
// falling back to PYBOX_ENV_FILE and then the default. Flags are read before
// kingpin parses them so the file can provide envar-backed flag values.
func EnvFileFromArgs(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			break
		}
		if v, ok := strings.CutPrefix(a, "--env-file="); ok {
			return v
		}
		if a == "--env-file" && i+1 < len(args) {
			return args[i+1]
		}
	}

	if v, ok := os.LookupEnv("PYBOX_ENV_FILE"); ok {
		return v
	}

	return DefaultEnvFile
}
