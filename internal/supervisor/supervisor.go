package supervisor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/vidtree/pybox/internal/log"
	"github.com/vidtree/pybox/internal/model"
	"github.com/vidtree/pybox/internal/sink"
)

// MaxLineSize is the longest line the supervisor forwards as a single line.
// Longer lines are forwarded in chunks of MaxLineSize bytes.
const MaxLineSize = 1024 * 1024

// Runner launches the interpreter of an installation and streams its output.
type Runner interface {
	Run(ctx context.Context, inst model.Installation, args string, s sink.Sink) (*model.ExitStatus, error)
}

// SupervisorConfig is the configuration for the supervisor.
type SupervisorConfig struct {
	// WorkDir is the child working directory. Defaults to the current one.
	WorkDir string
	// Env is appended to the current process environment.
	Env []string
	// Logger for logging.
	Logger log.Logger
}

func (c *SupervisorConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "supervisor.Supervisor"})
	return nil
}

// Supervisor runs child interpreter processes.
type Supervisor struct {
	workDir string
	env     []string
	logger  log.Logger
}

// NewSupervisor creates a new supervisor.
func NewSupervisor(cfg SupervisorConfig) (*Supervisor, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Supervisor{
		workDir: cfg.WorkDir,
		env:     cfg.Env,
		logger:  cfg.Logger,
	}, nil
}

// Run launches the installation interpreter with args split on whitespace and
// writes every stdout and stderr line to s as it arrives. Lines of one stream
// keep their order; lines of both streams interleave in arrival order.
//
// A line ends at "\n", "\r" or "\r\n", so carriage return progress output
// arrives as one line per update.
//
// A non zero exit code is returned as a status, not an error. Once started the
// child runs to completion: ctx is only checked before launch. Run returns
// when both output streams are closed, so a background process inheriting
// the child pipes keeps Run blocked after the child itself exited.
func (s *Supervisor) Run(ctx context.Context, inst model.Installation, args string, out sink.Sink) (*model.ExitStatus, error) {
	if out == nil {
		out = sink.Discard
	}

	if err := inst.Validate(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	argv := strings.Fields(args)
	cmd := exec.Command(inst.Executable(), argv...)
	cmd.Dir = s.workDir
	if len(s.env) > 0 {
		cmd.Env = append(os.Environ(), s.env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("could not open stdout: %w: %w", err, model.ErrChildProcessIO)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("could not open stderr: %w: %w", err, model.ErrChildProcessIO)
	}

	logger := s.logger.WithValues(log.Kv{"exe": inst.Executable()})
	logger.Debugf("Starting %s %v", inst.Executable(), argv)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("could not start %s: %w: %w", inst.Executable(), err, model.ErrChildProcessIO)
	}

	var (
		wg      sync.WaitGroup
		errMu   sync.Mutex
		readErr error
	)
	drainStream := func(name string, r io.Reader) {
		defer wg.Done()
		if err := drain(r, out); err != nil {
			errMu.Lock()
			readErr = errors.Join(readErr, fmt.Errorf("reading %s: %w", name, err))
			errMu.Unlock()
		}
	}

	wg.Add(2)
	go drainStream("stdout", stdout)
	go drainStream("stderr", stderr)
	wg.Wait()

	// Wait closes the pipes, both drains must be done before.
	waitErr := cmd.Wait()

	status := &model.ExitStatus{Code: 0}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("waiting for child: %w: %w", waitErr, model.ErrChildProcessIO)
		}
		status.Code = exitErr.ExitCode()
	}
	logger.Debugf("Child exited with code %d", status.Code)

	if readErr != nil {
		return status, fmt.Errorf("child output lost: %w: %w", readErr, model.ErrChildProcessIO)
	}

	return status, nil
}

// drain forwards every line of r to out. On a read error the rest of r is
// discarded so the child never blocks on a full pipe.
func drain(r io.Reader, out sink.Sink) error {
	scanner := bufio.NewScanner(r)
	// Room for a full chunk, its terminator and a "\n" after a "\r".
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize+2)
	scanner.Split(splitLines(MaxLineSize))
	for scanner.Scan() {
		out.WriteLine(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		_, _ = io.Copy(io.Discard, r)
		return err
	}

	return nil
}

// splitLines is a bufio.SplitFunc ending lines at "\n", "\r" or "\r\n".
// Lines longer than maxLen are split in maxLen sized tokens.
func splitLines(maxLen int) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}

		window := data
		if len(window) > maxLen+1 {
			window = window[:maxLen+1]
		}

		if i := bytes.IndexAny(window, "\r\n"); i >= 0 {
			if data[i] == '\n' {
				return i + 1, data[:i], nil
			}

			switch {
			case i+1 < len(data) && data[i+1] == '\n':
				return i + 2, data[:i], nil
			case i+1 < len(data), atEOF:
				return i + 1, data[:i], nil
			}
			// Need the next byte to know if "\r" starts a "\r\n".
			return 0, nil, nil
		}

		if len(data) > maxLen {
			return maxLen, data[:maxLen], nil
		}
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	}
}
