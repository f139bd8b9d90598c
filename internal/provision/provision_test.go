package provision_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vidtree/pybox/internal/log"
	"github.com/vidtree/pybox/internal/provision"
	"github.com/vidtree/pybox/internal/provision/provisionmock"
)

func TestProvisionerChain(t *testing.T) {
	tests := map[string]struct {
		count     int
		cancelled bool
		mock      func(provisioners []*provisionmock.MockProvisioner)
		expStep   string
		expIndex  int
	}{
		"An empty chain should succeed immediately.": {
			count: 0,
			mock:  func(provisioners []*provisionmock.MockProvisioner) {},
		},
		"Steps that all succeed should run in order.": {
			count: 3,
			mock: func(provisioners []*provisionmock.MockProvisioner) {
				provisioners[0].On("Provision", mock.Anything).Once().Return(nil)
				provisioners[1].On("Provision", mock.Anything).Once().Return(nil)
				provisioners[2].On("Provision", mock.Anything).Once().Return(nil)
			},
		},
		"A failing step should stop the chain.": {
			count: 3,
			mock: func(provisioners []*provisionmock.MockProvisioner) {
				provisioners[0].On("Provision", mock.Anything).Once().Return(nil)
				provisioners[1].On("Provision", mock.Anything).Once().Return(fmt.Errorf("something broke"))
			},
			expStep:  "step-1",
			expIndex: 1,
		},
		"A cancelled context should stop the chain before the first step.": {
			count:     2,
			cancelled: true,
			mock:      func(provisioners []*provisionmock.MockProvisioner) {},
			expStep:   "step-0",
			expIndex:  0,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if test.cancelled {
				var cancel context.CancelFunc
				ctx, cancel = context.WithCancel(ctx)
				cancel()
			}

			mocks := make([]*provisionmock.MockProvisioner, test.count)
			steps := make([]provision.Step, test.count)
			for i := range test.count {
				m := provisionmock.NewMockProvisioner(t)
				mocks[i] = m
				steps[i] = provision.Step{Name: fmt.Sprintf("step-%d", i), Provisioner: m}
			}
			test.mock(mocks)

			err := provision.NewProvisionerChain(log.Noop, steps...).Provision(ctx)

			if test.expStep == "" {
				assert.NoError(t, err)
				return
			}

			var serr *provision.StepError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, test.expStep, serr.Step)
			assert.Equal(t, test.expIndex, serr.Index)
		})
	}
}

func TestProvisionerChainKeepsErrorIdentity(t *testing.T) {
	errStep := errors.New("step failed")

	chain := provision.NewProvisionerChain(nil,
		provision.Step{Name: "ok", Provisioner: provision.ProvisionerFunc(func(context.Context) error { return nil })},
		provision.Step{Name: "broken", Provisioner: provision.ProvisionerFunc(func(context.Context) error {
			return fmt.Errorf("wrapped: %w", errStep)
		})},
	)

	err := chain.Provision(context.Background())
	assert.ErrorIs(t, err, errStep)
	assert.Equal(t, "step 1 (broken): wrapped: step failed", err.Error())
}

func TestProvisionerChainCancelledKeepsContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := provision.NewProvisionerChain(nil, provision.Step{Name: "never", Provisioner: provision.ProvisionerFunc(func(context.Context) error {
		return errors.New("should not run")
	})}).Provision(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
