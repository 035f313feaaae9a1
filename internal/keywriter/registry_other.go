//go:build !windows

package keywriter

import (
	"runtime"

	"github.com/joshuapare/regset/pkg/types"
)

// Default returns a registry whose hives cannot be opened: there is no
// system registry outside Windows. Use NewMemory for an in-process one.
func Default() Registry { return unavailableRegistry{} }

type unavailableRegistry struct{}

func (unavailableRegistry) OpenHive(h types.Hive) (Hive, error) {
	return nil, types.Newf(types.ErrKindIO, "cannot open %s: the Windows registry is not available on %s", h, runtime.GOOS)
}
