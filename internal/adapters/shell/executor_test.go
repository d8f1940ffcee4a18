package shell_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/goalkeeper/internal/adapters/shell"
	"go.trai.ch/goalkeeper/internal/core/domain"
)

func TestExecutor_Execute_MultiLineOutput(t *testing.T) {
	executor := shell.NewExecutor()

	var stdout bytes.Buffer
	err := executor.Execute(context.Background(), domain.Command{
		Name: "sh",
		Args: []string{"-c", "echo line1; echo line2"},
		Dir:  t.TempDir(),
	}, &stdout, io.Discard)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "line1")
	assert.Contains(t, stdout.String(), "line2")
}

func TestExecutor_Execute_EnvironmentVariables(t *testing.T) {
	executor := shell.NewExecutor()

	var stdout bytes.Buffer
	err := executor.Execute(context.Background(), domain.Command{
		Name:        "sh",
		Args:        []string{"-c", "echo $GOAL_TOKEN"},
		Dir:         t.TempDir(),
		Environment: map[string]string{"GOAL_TOKEN": "secret-123"},
	}, &stdout, io.Discard)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "secret-123")
}

func TestExecutor_Execute_HermeticEnvironment(t *testing.T) {
	executor := shell.NewExecutorWithEnviron([]string{
		"PATH=" + os.Getenv("PATH"),
		"LEAKED_SECRET=should-not-appear",
	})

	var stdout bytes.Buffer
	err := executor.Execute(context.Background(), domain.Command{
		Name: "sh",
		Args: []string{"-c", "echo value=${LEAKED_SECRET:-unset}"},
		Dir:  t.TempDir(),
	}, &stdout, io.Discard)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "value=unset")
}

func TestExecutor_Execute_NonZeroExit(t *testing.T) {
	executor := shell.NewExecutor()

	err := executor.Execute(context.Background(), domain.Command{
		Name: "sh",
		Args: []string{"-c", "exit 3"},
		Dir:  t.TempDir(),
	}, io.Discard, io.Discard)
	require.ErrorContains(t, err, "command failed")
}

func TestExecutor_Execute_InvalidCommand(t *testing.T) {
	executor := shell.NewExecutor()

	err := executor.Execute(context.Background(), domain.Command{
		Name: "this-command-does-not-exist-goalkeeper",
		Dir:  t.TempDir(),
	}, io.Discard, io.Discard)
	require.Error(t, err)
}

func TestExecutor_Execute_EmptyCommand(t *testing.T) {
	require.NoError(t, shell.NewExecutor().Execute(context.Background(), domain.Command{}, io.Discard, io.Discard))
}

func TestResolveEnvironment(t *testing.T) {
	env := shell.ResolveEnvironment(
		[]string{"PATH=/usr/bin", "HOME=/home/ci", "AWS_SECRET=x", "MALFORMED"},
		map[string]string{"HOME": "/workspace", "GOAL_SET_ID": "gs-1"},
	)

	assert.Equal(t, []string{"GOAL_SET_ID=gs-1", "HOME=/workspace", "PATH=/usr/bin"}, env)
}
