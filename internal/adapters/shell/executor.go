// Package shell runs implementation commands in a pseudo terminal.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/goalkeeper/internal/core/domain"
	"go.trai.ch/goalkeeper/internal/core/ports"
	"go.trai.ch/zerr"
)

// Executor implements ports.Executor using os/exec and pty.
type Executor struct {
	environ func() []string
}

var _ ports.Executor = (*Executor)(nil)

// NewExecutor creates a new Executor inheriting the allow-listed process environment.
func NewExecutor() *Executor {
	return &Executor{environ: os.Environ}
}

// Execute runs the command in a PTY and waits for it to complete. The PTY
// merges stdout and stderr, so all output is written to stdout.
func (e *Executor) Execute(ctx context.Context, command domain.Command, stdout, _ io.Writer) error {
	if command.Name == "" {
		return nil
	}

	cmdEnv := resolveEnvironment(e.environ(), command.Environment)

	executable := command.Name
	if !filepath.IsAbs(executable) {
		if lp, err := lookPath(executable, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, command.Args...) //nolint:gosec // implementation commands are operator configured
	if len(cmd.Args) > 0 {
		cmd.Args[0] = command.Name
	}
	cmd.Dir = command.Dir
	cmd.Env = cmdEnv

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to start pty"), "command", command.Name)
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		_, _ = io.Copy(stdout, ptmx)
	}()

	waitErr := cmd.Wait()
	<-ioDone
	_ = ptmx.Close()

	if waitErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.With(zerr.Wrap(waitErr, "command failed"), "command", command.Name), "exit_code", exitCode)
	}
	return nil
}

// allowListedEnvVars are the system environment variables a command inherits.
// Everything else must be passed explicitly through the implementation or
// the goal credentials.
var allowListedEnvVars = map[string]struct{}{
	"HOME": {},
	"TERM": {},
	"USER": {},
	"PATH": {},
}

// resolveEnvironment merges the allow-listed system environment with the command environment.
// The result is sorted so commands see a stable environment.
func resolveEnvironment(sysEnv []string, cmdEnv map[string]string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			envMap[k] = v
		}
	}
	for k, v := range cmdEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// lookPath searches for an executable in the PATH of the command environment.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
