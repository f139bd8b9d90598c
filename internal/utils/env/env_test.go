package env_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtree/pybox/internal/utils/env"
)

func TestParseSpecs(t *testing.T) {
	t.Setenv("FROM_HOST", "host-value")

	tests := map[string]struct {
		specs  []string
		expEnv map[string]string
		expErr bool
	}{
		"KEY=VALUE should parse.": {
			specs:  []string{"FOO=bar"},
			expEnv: map[string]string{"FOO": "bar"},
		},
		"Values may contain equal signs.": {
			specs:  []string{"FOO=a=b"},
			expEnv: map[string]string{"FOO": "a=b"},
		},
		"Empty values should be kept.": {
			specs:  []string{"FOO="},
			expEnv: map[string]string{"FOO": ""},
		},
		"KEY should inherit from host.": {
			specs:  []string{"FROM_HOST"},
			expEnv: map[string]string{"FROM_HOST": "host-value"},
		},
		"Later entries should override earlier ones.": {
			specs:  []string{"FOO=one", "FOO=two"},
			expEnv: map[string]string{"FOO": "two"},
		},
		"No specs should be an empty env.": {
			specs:  nil,
			expEnv: map[string]string{},
		},
		"Missing inherited var should fail.": {
			specs:  []string{"PYBOX_DOES_NOT_EXIST"},
			expErr: true,
		},
		"Invalid key should fail.": {
			specs:  []string{"1INVALID=value"},
			expErr: true,
		},
		"Empty spec should fail.": {
			specs:  []string{""},
			expErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := env.ParseSpecs(tc.specs)

			if tc.expErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expEnv, got)
		})
	}
}

func TestList(t *testing.T) {
	got := env.List(map[string]string{"PYTHONUNBUFFERED": "1", "DATA": "in", "A_B": "x=y"})
	assert.Equal(t, []string{"A_B=x=y", "DATA=in", "PYTHONUNBUFFERED=1"}, got)
	assert.Empty(t, env.List(nil))
}
