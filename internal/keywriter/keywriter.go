// Package keywriter opens-or-creates registry keys and writes typed values,
// classifying OS failures into the regset error taxonomy.
//
// The OS is reached through the Registry interface. Default returns the
// native backend (the Windows registry on Windows); NewMemory returns an
// in-process registry with the same semantics.
package keywriter

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joshuapare/regset/internal/logger"
	"github.com/joshuapare/regset/internal/regpath"
	"github.com/joshuapare/regset/pkg/types"
)

// Registry hands out hive handles.
type Registry interface {
	OpenHive(h types.Hive) (Hive, error)
}

// Hive is an open handle to a registry root.
type Hive interface {
	// ID returns which root this handle refers to.
	ID() types.Hive
	// CreateKey creates every missing key along path and opens the last one
	// for reading and writing. An empty path opens the root itself.
	CreateKey(path string) (Key, error)
	// OpenKey opens an existing key read-only.
	OpenKey(path string) (Key, error)
	Close() error
}

// Key is an open registry key handle.
type Key interface {
	// SetValue stores v under name; "" is the key's default value.
	SetValue(name string, v types.Value) error
	Close() error
}

// Writer performs the open-or-create and set-value stage of a write.
type Writer struct {
	log *slog.Logger
}

// New returns a Writer logging to log, or to logger.L when log is nil.
func New(log *slog.Logger) *Writer {
	if log == nil {
		log = logger.L
	}
	return &Writer{log: log}
}

// Write ensures subkey exists under hive and sets valueName to v.
//
// The key handle is released on every exit path, and hive is closed once
// the write completes whether or not it succeeded. When the key cannot be
// opened for writing, a read-only probe distinguishes an existing key that
// denies write access from a key that could not be created. The probe is a
// hint: the key may change between the two calls.
//
// Intermediate keys created before a failure are not rolled back.
func (w *Writer) Write(hive Hive, subkey, valueName string, v types.Value) error {
	if hive == nil {
		return types.Newf(types.ErrKindInvalidArgument, "no hive handle given")
	}
	full := regpath.Join(hive.ID(), subkey)
	defer func() {
		if err := hive.Close(); err != nil {
			w.log.Warn("failed to release hive handle", "hive", hive.ID().String(), "error", err)
		}
	}()

	if v == nil {
		return types.Newf(types.ErrKindInvalidArgument, "no value given for %q under %s", valueName, full)
	}

	key, err := hive.CreateKey(subkey)
	if err != nil {
		return w.diagnose(hive, subkey, full, err)
	}
	defer func() {
		if err := key.Close(); err != nil {
			w.log.Warn("failed to release registry key", "key", full, "error", err)
		}
	}()

	if err := key.SetValue(valueName, v); err != nil {
		return classify(err, "failed to set value %q (%s) under %s", valueName, v.Kind().RegName(), full)
	}

	w.log.Debug("registry value set", "key", full, "name", valueName, "type", v.Kind().String())
	return nil
}

// diagnose classifies a failed CreateKey using a read-only probe.
func (w *Writer) diagnose(hive Hive, subkey, full string, createErr error) error {
	probe, probeErr := hive.OpenKey(subkey)
	if probeErr == nil {
		if err := probe.Close(); err != nil {
			w.log.Warn("failed to release probe key", "key", full, "error", err)
		}
		w.log.Debug("registry key exists but is not writable", "key", full, "error", createErr)
		return types.Wrapf(types.ErrKindPermissionDenied, createErr,
			"registry key %s exists but write access was denied", full)
	}
	w.log.Debug("registry key could not be created or read back", "key", full,
		"create_error", createErr, "probe_error", probeErr)

	var typed *types.Error
	switch {
	case errors.As(createErr, &typed):
		return types.Wrapf(typed.Kind, createErr, "failed to create or open registry key %s", full)
	case errors.Is(createErr, fs.ErrPermission):
		return types.Wrapf(types.ErrKindPermissionDenied, createErr,
			"cannot create registry key %s: access denied", full)
	case errors.Is(createErr, fs.ErrNotExist):
		return types.Wrapf(types.ErrKindNotFound, createErr,
			"registry key %s does not exist and could not be created", full)
	default:
		return types.Wrapf(types.ErrKindIO, createErr,
			"failed to create or open registry key %s with write access; is the path valid or too long", full)
	}
}

// classify wraps an OS error with the matching taxonomy kind.
func classify(err error, format string, args ...any) error {
	var typed *types.Error
	switch {
	case errors.As(err, &typed):
		return types.Wrapf(typed.Kind, err, format, args...)
	case errors.Is(err, fs.ErrPermission):
		return types.Wrapf(types.ErrKindPermissionDenied, err, format, args...)
	case errors.Is(err, fs.ErrNotExist):
		return types.Wrapf(types.ErrKindNotFound, err, format, args...)
	default:
		return types.Wrapf(types.ErrKindIO, err, format, args...)
	}
}
