package cmdexec

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping on Windows")
	}
}

func run(t *testing.T, commands string, replacements map[string][]string) ([]byte, error) {
	t.Helper()
	return execute(context.Background(), Request{Commands: commands, Timeout: 30 * time.Second, Replacements: replacements})
}

// TestApplyReplacements tests the behavior of applyReplacements.
//
// It verifies:
//   - Each list element is escaped separately and joined with spaces
//   - Requirements with operators are quoted
//   - An empty list removes the placeholder
func TestApplyReplacements(t *testing.T) {
	t.Run("requirement list", func(t *testing.T) {
		result := applyReplacements("uv add --no-sync {{requirements}}", map[string][]string{
			"requirements": {"requests>=2.31", "numpy", "rich[jupyter]>=13; python_version >= '3.9'"},
		})
		assert.Equal(t, `uv add --no-sync 'requests>=2.31' numpy 'rich[jupyter]>=13; python_version >= '\''3.9'\'''`, result)
	})

	t.Run("empty list removes placeholder", func(t *testing.T) {
		result := applyReplacements("uv add {{flags}} {{requirements}}", map[string][]string{
			"flags":        nil,
			"requirements": {"numpy"},
		})
		assert.Equal(t, "uv add  numpy", result)
		assert.NotContains(t, result, "''")
	})

	t.Run("unknown placeholder kept", func(t *testing.T) {
		assert.Equal(t, "echo {{other}}", applyReplacements("echo {{other}}", map[string][]string{"x": {"y"}}))
	})
}

// TestGetShell tests the behavior of getShell.
//
// It verifies:
//   - SHELL environment variable is used when set
//   - Falls back to sh when SHELL is not set
func TestGetShell(t *testing.T) {
	skipOnWindows(t)

	t.Run("uses SHELL env var when set", func(t *testing.T) {
		t.Setenv("SHELL", "/bin/bash")
		shell, args := getShell()
		assert.Equal(t, "/bin/bash", shell)
		assert.Equal(t, []string{"-l", "-c"}, args)
	})

	t.Run("falls back to sh when SHELL not set", func(t *testing.T) {
		t.Setenv("SHELL", "")
		require.NoError(t, os.Unsetenv("SHELL"))
		shell, args := getShell()
		assert.Equal(t, "sh", shell)
		assert.Equal(t, []string{"-c"}, args)
	})
}

// TestParseCommandGroups tests splitting templates into pipelines.
//
// It verifies:
//   - A single command is one group
//   - Inline and trailing pipes join commands into one group
//   - Separate lines are separate groups
//   - Backslash continuation joins lines
//   - Blank lines and CRLF endings are ignored
func TestParseCommandGroups(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected [][]string
	}{
		{"single", "echo hello", [][]string{{"echo hello"}}},
		{"inline pipe", `echo "hello world" | grep hello`, [][]string{{`echo "hello world"`, "grep hello"}}},
		{"trailing pipe", "uv pip list |\ngrep numpy", [][]string{{"uv pip list", "grep numpy"}}},
		{"sequential", "echo first\necho second\necho third", [][]string{{"echo first"}, {"echo second"}, {"echo third"}}},
		{"continuation", "uv add \\\n  --no-sync numpy", [][]string{{"uv add --no-sync numpy"}}},
		{"blank lines and crlf", "echo a\r\n\r\n   \r\necho b", [][]string{{"echo a"}, {"echo b"}}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseCommandGroups(tt.input))
		})
	}
}

// TestSplitByPipe tests the behavior of splitByPipe.
//
// It verifies:
//   - Pipes outside quotes split
//   - Pipes inside quotes are preserved
func TestSplitByPipe(t *testing.T) {
	assert.Equal(t, []string{"echo hello"}, splitByPipe("echo hello"))
	assert.Equal(t, []string{"cat f", "grep x", "wc -l"}, splitByPipe("cat f | grep x | wc -l"))
	assert.Equal(t, []string{`echo "a | b"`}, splitByPipe(`echo "a | b"`))
	assert.Equal(t, []string{`echo 'a | b'`, "cat"}, splitByPipe(`echo 'a | b' | cat`))
}

// TestShellEscape tests the behavior of shellEscape.
//
// It verifies:
//   - Empty strings are quoted
//   - Safe strings are not quoted
//   - Unsafe characters trigger quoting
//   - Single quotes are properly escaped
//   - Injection attempts are safely escaped
func TestShellEscape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", "''"},
		{"bare name", "requests", "requests"},
		{"pin", "numpy==1.26", "numpy==1.26"},
		{"lower bound", "numpy>=1.26", "'numpy>=1.26'"},
		{"range", "numpy>=1.26,<2", "'numpy>=1.26,<2'"},
		{"extras", "rich[jupyter]", "'rich[jupyter]'"},
		{"with single quote", "foo'bar", `'foo'\''bar'`},
		{"injection attempt", "numpy; rm -rf /", "'numpy; rm -rf /'"},
		{"command substitution", "$(whoami)", "'$(whoami)'"},
		{"backtick substitution", "`whoami`", "'`whoami`'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shellEscape(tt.input))
		})
	}
}

// TestIsShellSafe tests the behavior of isShellSafe.
func TestIsShellSafe(t *testing.T) {
	for _, r := range "abcABC012-_./@:+=" {
		assert.True(t, isShellSafe(r), "expected '%c' to be safe", r)
	}
	for _, r := range " ;$`\"'(){}[]|&<>*?#!~," {
		assert.False(t, isShellSafe(r), "expected '%c' to be unsafe", r)
	}
}

// TestExecute tests running command templates through the shell.
//
// It verifies:
//   - Output of the last group is returned
//   - Replacements reach the command as separate arguments
//   - Pipelines, environment and working directory work
//   - Failures carry stderr
func TestExecute(t *testing.T) {
	skipOnWindows(t)

	t.Run("simple", func(t *testing.T) {
		out, err := run(t, "echo hello", nil)
		require.NoError(t, err)
		assert.Contains(t, string(out), "hello")
	})

	t.Run("sequential returns last output", func(t *testing.T) {
		out, err := run(t, "echo first\necho second", nil)
		require.NoError(t, err)
		assert.Contains(t, string(out), "second")
		assert.NotContains(t, string(out), "first")
	})

	t.Run("list replacement", func(t *testing.T) {
		out, err := run(t, "printf '%s\\n' {{requirements}}", map[string][]string{
			"requirements": {"numpy>=1.26", "requests"},
		})
		require.NoError(t, err)
		assert.Contains(t, string(out), "numpy>=1.26\nrequests\n")
	})

	t.Run("pipeline", func(t *testing.T) {
		out, err := run(t, "echo hello world | grep hello", nil)
		require.NoError(t, err)
		assert.Contains(t, string(out), "hello")
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("DEPFLOOR_TEST_BASE", "base")
		out, err := execute(context.Background(), Request{
			Commands: "printenv DEPFLOOR_TEST_VAR",
			Env:      map[string]string{"DEPFLOOR_TEST_VAR": "$DEPFLOOR_TEST_BASE/value"},
		})
		require.NoError(t, err)
		assert.Contains(t, string(out), "base/value")
	})

	t.Run("working directory", func(t *testing.T) {
		dir := t.TempDir()
		out, err := execute(context.Background(), Request{Commands: "pwd", Dir: dir})
		require.NoError(t, err)
		assert.Contains(t, string(out), dir)
	})

	t.Run("failure includes stderr", func(t *testing.T) {
		_, err := run(t, "echo boom >&2; exit 3", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("failure falls back to stdout", func(t *testing.T) {
		// A login shell may write profile noise to stderr; use plain sh -c.
		t.Setenv("SHELL", "")
		_, err := run(t, "echo from-stdout; exit 1", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "from-stdout")
	})

	t.Run("command not found", func(t *testing.T) {
		_, err := run(t, "nonexistent_command_12345", nil)
		assert.Error(t, err)
	})

	t.Run("stops at first failing group", func(t *testing.T) {
		marker := t.TempDir() + "/marker"
		_, err := run(t, "false\ntouch "+marker, nil)
		require.Error(t, err)
		_, statErr := os.Stat(marker)
		assert.True(t, os.IsNotExist(statErr))
	})
}

// TestExecuteEdgeCases tests input validation and cancellation.
//
// It verifies:
//   - Empty and whitespace-only templates fail
//   - A cancelled context fails before anything runs
//   - A timeout kills a long-running command
func TestExecuteEdgeCases(t *testing.T) {
	_, err := execute(context.Background(), Request{Commands: "   \n\t  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no commands provided")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = execute(ctx, Request{Commands: "echo hello"})
	assert.Equal(t, context.Canceled, err)

	_, err = runGroup(context.Background(), nil, nil, "", 0)
	assert.Error(t, err)

	skipOnWindows(t)
	start := time.Now()
	_, err = execute(context.Background(), Request{Commands: "sleep 10", Timeout: 200 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 5*time.Second)
}

// TestExecuteIsReplaceable tests that callers can swap the executor.
func TestExecuteIsReplaceable(t *testing.T) {
	orig := Execute
	defer func() { Execute = orig }()

	var got Request
	Execute = func(ctx context.Context, req Request) ([]byte, error) {
		got = req
		return []byte("ok"), nil
	}

	out, err := Execute(context.Background(), Request{Commands: "uv add {{requirements}}"})
	require.NoError(t, err)
	assert.Equal(t, "ok", string(out))
	assert.Equal(t, "uv add {{requirements}}", got.Commands)
}

// TestKillProcGroup tests the behavior of killProcGroup.
//
// It verifies:
//   - Nil command process returns nil error
//   - Running processes are killed successfully
func TestKillProcGroup(t *testing.T) {
	skipOnWindows(t)

	assert.NoError(t, killProcGroup(&exec.Cmd{}))

	cmd := exec.Command("sleep", "60")
	setProcGroup(cmd)
	require.NoError(t, cmd.Start())
	time.Sleep(50 * time.Millisecond)
	assert.NoError(t, killProcGroup(cmd))
	_ = cmd.Wait()
}

// TestSetProcGroup tests the behavior of setProcGroup.
func TestSetProcGroup(t *testing.T) {
	skipOnWindows(t)

	cmd := exec.Command("echo", "test")
	assert.Nil(t, cmd.SysProcAttr)
	setProcGroup(cmd)
	require.NotNil(t, cmd.SysProcAttr)
	assert.True(t, cmd.SysProcAttr.Setpgid)
}
