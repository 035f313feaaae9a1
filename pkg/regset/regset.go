// Package regset writes a single Windows Registry value described by four
// strings: a hive-qualified key path, a value name, the value's text form,
// and a type name.
//
// The write runs as a pipeline of path resolution, type conversion and key
// writing. Any stage may fail; the failure is returned as a Result carrying
// an error kind and a message that names the path, value, type and data
// involved.
//
//	res := regset.SetValue(`HKCU\Software\MyApp`, "Enabled", "1", "DWord")
//	if !res.OK {
//	    fmt.Println(res.Message)
//	}
package regset

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/regset/internal/convert"
	"github.com/joshuapare/regset/internal/keywriter"
	"github.com/joshuapare/regset/internal/logger"
	"github.com/joshuapare/regset/internal/regpath"
	"github.com/joshuapare/regset/internal/regtext"
	"github.com/joshuapare/regset/pkg/types"
)

// Request is the four-string input of a write.
type Request struct {
	Path      string // e.g. `HKEY_CURRENT_USER\Software\MyApp` or `HKCU:\Software\MyApp`
	ValueName string // "" for the key's default value
	Data      string // text form of the value, see package convert for the grammar
	Type      string // String, ExpandString, Binary, DWord, MultiString or QWord
}

// Result is the outcome of one write.
type Result struct {
	OK      bool
	Kind    types.ErrKind // ErrKindNone on success
	Message string        // suitable for direct display
	Err     error         // underlying error, nil on success
}

// Options configures a Writer.
type Options struct {
	// Registry is the backend to write to. Nil selects keywriter.Default().
	Registry keywriter.Registry
	// Logger receives one record per write. Nil selects the global logger.
	Logger *slog.Logger
}

// Writer applies Requests to a registry backend.
type Writer struct {
	reg keywriter.Registry
	log *slog.Logger
	kw  *keywriter.Writer
}

// New returns a Writer configured by opts.
func New(opts Options) *Writer {
	w := &Writer{reg: opts.Registry, log: opts.Logger}
	if w.reg == nil {
		w.reg = keywriter.Default()
	}
	if w.log == nil {
		w.log = logger.L
	}
	w.kw = keywriter.New(w.log)
	return w
}

// SetValue writes one value using the default registry backend.
func SetValue(path, valueName, data, typeName string) Result {
	return New(Options{}).Set(Request{Path: path, ValueName: valueName, Data: data, Type: typeName})
}

// Set runs the full pipeline for req. It never panics; unexpected failures
// are reported as ErrKindUnknown.
func (w *Writer) Set(req Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			res = w.fail(req, types.Wrapf(types.ErrKindUnknown, err, "unexpected failure"))
		}
	}()

	if err := w.set(req); err != nil {
		return w.fail(req, err)
	}
	w.log.Debug("registry value written", requestAttrs(req)...)
	return Result{OK: true, Kind: types.ErrKindNone, Message: "value set: " + describe(req)}
}

func (w *Writer) set(req Request) error {
	hive, subkey, kind, value, err := prepare(req)
	if err != nil {
		return err
	}
	w.log.Debug("registry value converted", "hive", hive.String(), "subkey", subkey, "kind", kind.String())

	h, err := w.reg.OpenHive(hive)
	if err != nil {
		return err
	}
	return w.kw.Write(h, subkey, req.ValueName, value)
}

// prepare runs the pure stages: path resolution and type conversion.
func prepare(req Request) (types.Hive, string, types.ValueKind, types.Value, error) {
	hive, subkey, err := regpath.Resolve(req.Path)
	if err != nil {
		return 0, "", 0, nil, err
	}
	kind, err := convert.ParseKind(req.Type)
	if err != nil {
		return 0, "", 0, nil, err
	}
	value, err := convert.Convert(req.Data, kind)
	if err != nil {
		return 0, "", 0, nil, err
	}
	return hive, subkey, kind, value, nil
}

// Validate runs path resolution and type conversion for req without
// writing anything.
func Validate(req Request) error {
	_, _, _, _, err := prepare(req)
	return err
}

// Render resolves and converts req without touching any registry and
// returns the equivalent .reg document.
func Render(req Request, opts regtext.Options) ([]byte, error) {
	hive, subkey, _, value, err := prepare(req)
	if err != nil {
		return nil, err
	}
	return regtext.Render(regtext.Write{Hive: hive, Subkey: subkey, Name: req.ValueName, Value: value}, opts)
}

func (w *Writer) fail(req Request, err error) Result {
	kind := types.KindOf(err)
	attrs := append(requestAttrs(req), "kind", kind.String(), "error", err)
	switch kind {
	case types.ErrKindUnknown:
		w.log.Error("registry write failed unexpectedly", attrs...)
	default:
		w.log.Warn("registry write failed", attrs...)
	}
	return Result{
		OK:      false,
		Kind:    kind,
		Message: fmt.Sprintf("%s: %s%s", describe(req), err.Error(), hint(kind)),
		Err:     err,
	}
}

func describe(req Request) string {
	name := req.ValueName
	if name == "" {
		name = "(Default)"
	}
	return fmt.Sprintf("path='%s' name='%s' type='%s' data='%s'", req.Path, name, req.Type, req.Data)
}

func hint(kind types.ErrKind) string {
	if kind == types.ErrKindPermissionDenied {
		return " (do you need to run as Administrator?)"
	}
	return ""
}

func requestAttrs(req Request) []any {
	return []any{"path", req.Path, "name", req.ValueName, "type", req.Type, "data", req.Data}
}
