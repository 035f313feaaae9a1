// Package launcher hands a registry write to an external PowerShell script
// instead of performing it in-process. The script receives the four inputs
// as named parameters:
//
//	powershell.exe -NoProfile -ExecutionPolicy Bypass -File set.ps1 `
//	    -Path <path> -Name <name> -Value <data> -Type <type>
//
// The process is started once; a failed launch is reported, not retried.
package launcher

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/joshuapare/regset/internal/logger"
	"github.com/joshuapare/regset/pkg/types"
)

const (
	DefaultInterpreter     = "powershell.exe"
	DefaultExecutionPolicy = "Bypass"
)

// Request carries the same four strings as a direct write.
type Request struct {
	Path      string
	ValueName string
	Data      string
	Type      string
}

// Launcher describes how to start the script.
type Launcher struct {
	Interpreter     string // default DefaultInterpreter
	Script          string // path to the .ps1 file; required
	ExecutionPolicy string // default DefaultExecutionPolicy

	Logger *slog.Logger
}

func (l *Launcher) interpreter() string {
	if l.Interpreter == "" {
		return DefaultInterpreter
	}
	return l.Interpreter
}

func (l *Launcher) log() *slog.Logger {
	if l.Logger == nil {
		return logger.L
	}
	return l.Logger
}

// Args returns the interpreter arguments for req.
func (l *Launcher) Args(req Request) ([]string, error) {
	if strings.TrimSpace(l.Script) == "" {
		return nil, types.Newf(types.ErrKindInvalidArgument, "script path cannot be empty")
	}
	policy := l.ExecutionPolicy
	if policy == "" {
		policy = DefaultExecutionPolicy
	}
	return []string{
		"-NoProfile",
		"-ExecutionPolicy", policy,
		"-File", l.Script,
		"-Path", req.Path,
		"-Name", req.ValueName,
		"-Value", req.Data,
		"-Type", req.Type,
	}, nil
}

// CommandLine renders the full command with Windows argument quoting.
func (l *Launcher) CommandLine(req Request) (string, error) {
	args, err := l.Args(req)
	if err != nil {
		return "", err
	}
	quoted := make([]string, 0, len(args)+1)
	quoted = append(quoted, QuoteArg(l.interpreter()))
	for _, a := range args {
		quoted = append(quoted, QuoteArg(a))
	}
	return strings.Join(quoted, " "), nil
}

// Run starts the script, waits for it, and classifies the result.
// A missing interpreter or script is ErrKindNotFound; a non-zero exit is
// ErrKindIO and carries the script's stderr.
func (l *Launcher) Run(ctx context.Context, req Request) error {
	args, err := l.Args(req)
	if err != nil {
		return err
	}

	if _, err := os.Stat(l.Script); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.Wrapf(types.ErrKindNotFound, err, "script %s not found", l.Script)
		}
		return types.Wrapf(types.ErrKindIO, err, "cannot access script %s", l.Script)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, l.interpreter(), args...)
	cmd.Stderr = &stderr

	l.log().Info("launching registry script", "interpreter", l.interpreter(), "script", l.Script,
		"path", req.Path, "name", req.ValueName, "type", req.Type)

	err = cmd.Run()
	if err == nil {
		l.log().Debug("registry script finished", "script", l.Script)
		return nil
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return types.Wrapf(types.ErrKindNotFound, err, "cannot start %s", l.interpreter())
	case ctx.Err() != nil:
		return types.Wrapf(types.ErrKindIO, ctx.Err(), "script %s was interrupted", l.Script)
	case errors.As(err, &exitErr):
		msg := strings.TrimSpace(stderr.String())
		l.log().Warn("registry script failed", "script", l.Script, "exit_code", exitErr.ExitCode(), "stderr", msg)
		if msg == "" {
			return types.Wrapf(types.ErrKindIO, err, "script %s failed", l.Script)
		}
		return types.Wrapf(types.ErrKindIO, err, "script %s failed: %s", l.Script, msg)
	default:
		l.log().Error("registry script could not run", "script", l.Script, "error", err)
		return types.Wrapf(types.ErrKindUnknown, err, "script %s could not run", l.Script)
	}
}

// QuoteArg quotes s the way the Windows C runtime parses command lines:
// arguments with spaces, tabs or quotes are wrapped in double quotes,
// embedded quotes become \", and backslashes are doubled only where they
// precede a quote.
func QuoteArg(s string) string {
	if s == "" {
		return `""`
	}
	if !strings.ContainsAny(s, " \t\"") {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	slashes := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			slashes++
		case '"':
			// Double the run of backslashes, then escape the quote.
			b.WriteString(strings.Repeat(`\`, slashes+1))
			slashes = 0
			b.WriteByte('"')
			continue
		default:
			slashes = 0
		}
		b.WriteByte(c)
	}
	// Backslashes before the closing quote must be doubled too.
	b.WriteString(strings.Repeat(`\`, slashes))
	b.WriteByte('"')
	return b.String()
}
