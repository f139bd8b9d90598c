package provision

import (
	"context"
	"fmt"
	"time"

	"github.com/vidtree/pybox/internal/log"
)

// Provisioner is a single installation step.
type Provisioner interface {
	Provision(ctx context.Context) error
}

// ProvisionerFunc is a convenience adapter to allow the use of ordinary functions as Provisioners.
type ProvisionerFunc func(ctx context.Context) error

func (f ProvisionerFunc) Provision(ctx context.Context) error { return f(ctx) }

// Step is a named Provisioner inside a chain.
type Step struct {
	Name        string
	Provisioner Provisioner
}

// StepError reports the chain step that failed.
type StepError struct {
	Step  string
	Index int
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %s", e.Index, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// NewProvisionerChain returns a Provisioner running steps in order. The chain
// stops at the first failing or cancelled step with a *StepError. An empty
// chain succeeds immediately.
func NewProvisionerChain(logger log.Logger, steps ...Step) Provisioner {
	if logger == nil {
		logger = log.Noop
	}

	return ProvisionerFunc(func(ctx context.Context) error {
		for i, s := range steps {
			if err := ctx.Err(); err != nil {
				return &StepError{Step: s.Name, Index: i, Err: err}
			}

			logger.Debugf("Provisioning %q...", s.Name)
			start := time.Now()
			if err := s.Provisioner.Provision(ctx); err != nil {
				return &StepError{Step: s.Name, Index: i, Err: err}
			}
			logger.WithValues(log.Kv{"step": s.Name, "duration": time.Since(start).String()}).Debugf("Provisioned %q", s.Name)
		}
		return nil
	})
}
