//go:build windows

package keywriter

import (
	"golang.org/x/sys/windows/registry"

	"github.com/joshuapare/regset/pkg/types"
)

// writeAccess mirrors a read-write subtree permission check: enough to
// create subkeys, set values and read them back.
const writeAccess = registry.READ | registry.WRITE

var predefined = map[types.Hive]registry.Key{
	types.HiveCurrentUser:   registry.CURRENT_USER,
	types.HiveLocalMachine:  registry.LOCAL_MACHINE,
	types.HiveClassesRoot:   registry.CLASSES_ROOT,
	types.HiveUsers:         registry.USERS,
	types.HiveCurrentConfig: registry.CURRENT_CONFIG,
}

// Default returns the Windows registry.
func Default() Registry { return windowsRegistry{} }

type windowsRegistry struct{}

func (windowsRegistry) OpenHive(h types.Hive) (Hive, error) {
	root, ok := predefined[h]
	if !ok {
		return nil, types.Newf(types.ErrKindInvalidArgument, "unknown hive %s", h)
	}
	return &winHive{id: h, root: root}, nil
}

type winHive struct {
	id   types.Hive
	root registry.Key
}

func (h *winHive) ID() types.Hive { return h.id }

func (h *winHive) CreateKey(path string) (Key, error) {
	k, _, err := registry.CreateKey(h.root, path, writeAccess)
	if err != nil {
		return nil, err
	}
	return winKey{k}, nil
}

func (h *winHive) OpenKey(path string) (Key, error) {
	k, err := registry.OpenKey(h.root, path, registry.READ)
	if err != nil {
		return nil, err
	}
	return winKey{k}, nil
}

// Close is a no-op: predefined root handles belong to the process and stay
// valid for its lifetime.
func (h *winHive) Close() error { return nil }

type winKey struct {
	k registry.Key
}

func (k winKey) SetValue(name string, v types.Value) error {
	switch v := v.(type) {
	case types.String:
		return k.k.SetStringValue(name, string(v))
	case types.ExpandString:
		return k.k.SetExpandStringValue(name, string(v))
	case types.DWord:
		return k.k.SetDWordValue(name, uint32(v))
	case types.QWord:
		return k.k.SetQWordValue(name, uint64(v))
	case types.MultiString:
		return k.k.SetStringsValue(name, []string(v))
	case types.Binary:
		return k.k.SetBinaryValue(name, []byte(v))
	default:
		return types.Newf(types.ErrKindInvalidArgument, "unsupported value type %T", v)
	}
}

func (k winKey) Close() error { return k.k.Close() }
