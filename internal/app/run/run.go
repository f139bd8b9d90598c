package run

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vidtree/pybox/internal/log"
	"github.com/vidtree/pybox/internal/model"
	"github.com/vidtree/pybox/internal/sink"
	"github.com/vidtree/pybox/internal/storage"
	"github.com/vidtree/pybox/internal/supervisor"
)

// ServiceConfig is the configuration for the run service.
type ServiceConfig struct {
	Runner     supervisor.Runner
	Repository storage.RunRepository
	Logger     log.Logger
	// TimeNow is used to timestamp runs. Defaults to time.Now.
	TimeNow func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Runner == nil {
		return fmt.Errorf("runner is required")
	}
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Run"})
	return nil
}

// Service runs scripts on an installation and records each run.
type Service struct {
	runner  supervisor.Runner
	repo    storage.RunRepository
	timeNow func() time.Time
	logger  log.Logger
}

// NewService creates a new run service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		runner:  cfg.Runner,
		repo:    cfg.Repository,
		timeNow: cfg.TimeNow,
		logger:  cfg.Logger,
	}, nil
}

// Request contains the parameters for a script run.
type Request struct {
	Installation model.Installation
	// Args is the space separated argument string.
	Args string
	// Sink receives the child output and the rendered errors.
	Sink sink.Sink
}

// Run runs the interpreter with the request arguments. The returned record
// holds the final state of the run, also when an error is returned.
func (s *Service) Run(ctx context.Context, req Request) (*model.RunRecord, error) {
	out := req.Sink
	if out == nil {
		out = sink.Discard
	}

	now := s.timeNow().UTC()
	rec := model.RunRecord{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Root:      req.Installation.Root,
		Args:      req.Args,
		Status:    model.RunStatusRunning,
		StartedAt: now,
	}

	if err := s.repo.CreateRun(ctx, rec); err != nil {
		err = fmt.Errorf("could not record run: %w", err)
		sink.WriteError(out, err)
		return nil, err
	}

	logger := s.logger.WithValues(log.Kv{"run": rec.ID})
	logger.Debugf("Running %q", req.Args)

	counter := sink.NewCounter(out)
	status, runErr := s.runner.Run(ctx, req.Installation, req.Args, counter)

	finished := s.timeNow().UTC()
	rec.FinishedAt = &finished
	rec.Lines = counter.Count()
	switch {
	case runErr != nil:
		rec.Status = model.RunStatusError
		rec.Error = runErr.Error()
		if status != nil {
			rec.ExitCode = status.Code
		}
		sink.WriteError(out, runErr)
	case status.Success():
		rec.Status = model.RunStatusSucceeded
	default:
		rec.Status = model.RunStatusFailed
		rec.ExitCode = status.Code
	}

	// History update failures are logged only.
	if err := s.repo.UpdateRun(context.WithoutCancel(ctx), rec); err != nil {
		logger.Warningf("Could not update run record: %s", err)
	}

	if runErr != nil {
		return &rec, fmt.Errorf("could not run script: %w", runErr)
	}

	logger.Infof("Run finished with exit code %d (%d lines)", rec.ExitCode, rec.Lines)
	return &rec, nil
}

// RunJob runs a processing job: the script path followed by the job flags.
func (s *Service) RunJob(ctx context.Context, inst model.Installation, script string, params model.JobParams, out sink.Sink) (*model.RunRecord, error) {
	if script == "" {
		err := fmt.Errorf("script is required: %w", model.ErrNotValid)
		if out != nil {
			sink.WriteError(out, err)
		}
		return nil, err
	}

	args := script
	if jobArgs := params.Args(); jobArgs != "" {
		args += " " + jobArgs
	}

	return s.Run(ctx, Request{Installation: inst, Args: args, Sink: out})
}
