package supervisor_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtree/pybox/internal/model"
	"github.com/vidtree/pybox/internal/sink"
	"github.com/vidtree/pybox/internal/supervisor"
)

// fakeInstallation writes script as the interpreter executable of a new
// installation root.
func fakeInstallation(t *testing.T, script string) model.Installation {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script interpreters are not supported on windows")
	}

	root := t.TempDir()
	inst := model.Installation{Root: root}
	err := os.WriteFile(inst.Executable(), []byte("#!/bin/sh\n"+script+"\n"), 0o755)
	require.NoError(t, err)

	return inst
}

func newTestSupervisor(t *testing.T, cfg supervisor.SupervisorConfig) *supervisor.Supervisor {
	t.Helper()

	s, err := supervisor.NewSupervisor(cfg)
	require.NoError(t, err)
	return s
}

func TestSupervisorRun(t *testing.T) {
	tests := map[string]struct {
		script   string
		args     string
		expLines []string
		expCode  int
	}{
		"Lines of one stream should keep their order.": {
			script:   "echo A\necho B\necho C",
			expLines: []string{"A", "B", "C"},
		},
		"Stderr lines should reach the same sink.": {
			script:   "echo oops >&2",
			expLines: []string{"oops"},
		},
		"Arguments should be split on whitespace without a shell.": {
			script:   `for a in "$@"; do echo "[$a]"; done`,
			args:     "  Scripts/main.py   --data_dir  'a b' $HOME ",
			expLines: []string{"[Scripts/main.py]", "[--data_dir]", "['a]", "[b']", "[$HOME]"},
		},
		"An empty argument string should pass no arguments.": {
			script:   `echo "$#"`,
			args:     "   ",
			expLines: []string{"0"},
		},
		"A non zero exit should be returned as status.": {
			script:   "echo failing\nexit 3",
			expLines: []string{"failing"},
			expCode:  3,
		},
		"A child without output should succeed with no lines.": {
			script:   "true",
			expLines: []string{},
		},
		"Carriage returns should be stripped from line ends.": {
			script:   `printf 'dos\r\nline\n'`,
			expLines: []string{"dos", "line"},
		},
		"A carriage return should end a line.": {
			script:   `printf 'a\rb\n'`,
			expLines: []string{"a", "b"},
		},
		"Carriage return progress updates should be separate lines.": {
			script:   `printf '10%%\r20%%\r30%%\n' >&2`,
			expLines: []string{"10%", "20%", "30%"},
		},
		"Empty lines should be kept.": {
			script:   `printf 'a\n\nb\r\r\nc\n'`,
			expLines: []string{"a", "", "b", "", "c"},
		},
		"A last line ending in a carriage return should be delivered.": {
			script:   `printf 'last\r'`,
			expLines: []string{"last"},
		},
		"A last line without newline should be delivered.": {
			script:   `printf 'partial'`,
			expLines: []string{"partial"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			inst := fakeInstallation(t, tc.script)
			s := newTestSupervisor(t, supervisor.SupervisorConfig{})
			buf := sink.NewBuffer()

			status, err := s.Run(context.Background(), inst, tc.args, buf)
			require.NoError(t, err)
			assert.Equal(t, tc.expCode, status.Code)
			assert.Equal(t, tc.expCode == 0, status.Success())
			assert.Equal(t, tc.expLines, buf.Lines())
		})
	}
}

func TestSupervisorRunLargeInterleavedOutput(t *testing.T) {
	const n = 5000

	inst := fakeInstallation(t, fmt.Sprintf(`i=0
while [ $i -lt %d ]; do
  echo "out $i"
  echo "err $i" >&2
  i=$((i+1))
done`, n))
	s := newTestSupervisor(t, supervisor.SupervisorConfig{})
	buf := sink.NewBuffer()

	status, err := s.Run(context.Background(), inst, "", buf)
	require.NoError(t, err)
	assert.True(t, status.Success())

	lines := buf.Lines()
	require.Len(t, lines, 2*n)

	// Each stream is delivered in order, however both interleave.
	next := map[string]int{"out": 0, "err": 0}
	for _, l := range lines {
		var stream string
		var i int
		_, err := fmt.Sscanf(l, "%s %d", &stream, &i)
		require.NoError(t, err)
		require.Equal(t, next[stream], i, "stream %s out of order", stream)
		next[stream]++
	}
	assert.Equal(t, n, next["out"])
	assert.Equal(t, n, next["err"])
}

func TestSupervisorRunLongLines(t *testing.T) {
	long := strings.Repeat("a", supervisor.MaxLineSize)

	tests := map[string]struct {
		script   string
		expLines []string
	}{
		"A line of the max size should be a single line.": {
			script:   fmt.Sprintf(`head -c %d /dev/zero | tr '\0' 'a'; echo; echo after`, supervisor.MaxLineSize),
			expLines: []string{long, "after"},
		},
		"A longer line should be chunked and the following lines delivered.": {
			script:   fmt.Sprintf(`head -c %d /dev/zero | tr '\0' 'a'; echo; echo after`, supervisor.MaxLineSize+10),
			expLines: []string{long, "aaaaaaaaaa", "after"},
		},
		"A longer line on stderr should not hide the following stderr lines.": {
			script:   fmt.Sprintf(`(head -c %d /dev/zero | tr '\0' 'a'; printf '\r\n'; echo after) >&2`, supervisor.MaxLineSize+1),
			expLines: []string{long, "a", "after"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			inst := fakeInstallation(t, tc.script)
			s := newTestSupervisor(t, supervisor.SupervisorConfig{})
			buf := sink.NewBuffer()

			status, err := s.Run(context.Background(), inst, "", buf)
			require.NoError(t, err)
			assert.True(t, status.Success())

			// Compare lengths first, a diff of megabyte lines is unreadable.
			lines := buf.Lines()
			require.Len(t, lines, len(tc.expLines))
			for i := range tc.expLines {
				assert.True(t, tc.expLines[i] == lines[i], "line %d differs (%d bytes)", i, len(lines[i]))
			}
		})
	}
}

func TestSupervisorRunProgressFloodKeepsTraceback(t *testing.T) {
	const updates = 60000

	inst := fakeInstallation(t, fmt.Sprintf(`i=0
while [ $i -lt %d ]; do
  printf 'progress %%d\r' $i >&2
  i=$((i+1))
done
echo "Traceback: boom" >&2
exit 3`, updates))
	s := newTestSupervisor(t, supervisor.SupervisorConfig{})
	buf := sink.NewBuffer()

	status, err := s.Run(context.Background(), inst, "", buf)
	require.NoError(t, err)
	assert.Equal(t, 3, status.Code)

	lines := buf.Lines()
	require.Len(t, lines, updates+1)
	assert.Equal(t, "progress 0", lines[0])
	assert.Equal(t, fmt.Sprintf("progress %d", updates-1), lines[updates-1])
	assert.Equal(t, "Traceback: boom", lines[updates])
}

func TestSupervisorRunWorkDirAndEnv(t *testing.T) {
	inst := fakeInstallation(t, `pwd
echo "$PYBOX_TEST_VALUE"`)
	workDir := t.TempDir()
	s := newTestSupervisor(t, supervisor.SupervisorConfig{
		WorkDir: workDir,
		Env:     []string{"PYBOX_TEST_VALUE=hello"},
	})
	buf := sink.NewBuffer()

	_, err := s.Run(context.Background(), inst, "", buf)
	require.NoError(t, err)

	lines := buf.Lines()
	require.Len(t, lines, 2)
	expDir, err := filepath.EvalSymlinks(workDir)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(lines[0])
	require.NoError(t, err)
	assert.Equal(t, expDir, gotDir)
	assert.Equal(t, "hello", lines[1])
}

func TestSupervisorRunErrors(t *testing.T) {
	tests := map[string]struct {
		inst   func(t *testing.T) model.Installation
		ctx    func() context.Context
		expErr error
	}{
		"A missing executable should fail before launch.": {
			inst: func(t *testing.T) model.Installation {
				return model.Installation{Root: t.TempDir()}
			},
			ctx:    context.Background,
			expErr: model.ErrExecutableMissing,
		},
		"An executable that can't be started should fail with child IO.": {
			inst: func(t *testing.T) model.Installation {
				if runtime.GOOS == "windows" {
					t.Skip("exec permissions are not used on windows")
				}
				inst := model.Installation{Root: t.TempDir()}
				require.NoError(t, os.WriteFile(inst.Executable(), []byte("not a program"), 0o644))
				return inst
			},
			ctx:    context.Background,
			expErr: model.ErrChildProcessIO,
		},
		"A cancelled context should abort before launch.": {
			inst: func(t *testing.T) model.Installation {
				return fakeInstallation(t, "echo should-not-run")
			},
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			expErr: context.Canceled,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			inst := tc.inst(t)
			s := newTestSupervisor(t, supervisor.SupervisorConfig{})
			buf := sink.NewBuffer()

			status, err := s.Run(tc.ctx(), inst, "", buf)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.expErr), "got %v", err)
			assert.Nil(t, status)
			assert.Equal(t, 0, buf.Len())
		})
	}
}

func TestSupervisorRunIsRepeatable(t *testing.T) {
	inst := fakeInstallation(t, `echo "run $1"`)
	s := newTestSupervisor(t, supervisor.SupervisorConfig{})

	var all []string
	for i := 0; i < 3; i++ {
		buf := sink.NewBuffer()
		_, err := s.Run(context.Background(), inst, fmt.Sprint(i), buf)
		require.NoError(t, err)
		all = append(all, strings.Join(buf.Lines(), ""))
	}

	assert.Equal(t, []string{"run 0", "run 1", "run 2"}, all)
}
