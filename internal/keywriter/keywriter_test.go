package keywriter

import (
	"errors"
	"io/fs"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regset/pkg/types"
)

func openHive(t *testing.T, reg Registry, h types.Hive) Hive {
	t.Helper()
	hive, err := reg.OpenHive(h)
	require.NoError(t, err)
	return hive
}

func TestWrite_CreatesKeyChain(t *testing.T) {
	mem := NewMemory()
	w := New(nil)

	err := w.Write(openHive(t, mem, types.HiveCurrentUser), `Software\Vendor\App`, "Test", types.DWord(1))
	require.NoError(t, err)

	assert.True(t, mem.KeyExists(types.HiveCurrentUser, `Software`))
	assert.True(t, mem.KeyExists(types.HiveCurrentUser, `Software\Vendor`))
	v, ok := mem.Value(types.HiveCurrentUser, `software\vendor\app`, "TEST")
	require.True(t, ok)
	assert.Equal(t, types.DWord(1), v)
	assert.Zero(t, mem.OpenHandles(), "hive and key handles must be released")
}

func TestWrite_DefaultValueAndRoot(t *testing.T) {
	mem := NewMemory()
	w := New(nil)

	require.NoError(t, w.Write(openHive(t, mem, types.HiveUsers), "", "", types.String("root default")))
	v, ok := mem.Value(types.HiveUsers, "", "")
	require.True(t, ok)
	assert.Equal(t, types.String("root default"), v)
}

func TestWrite_OverwritesAndCopies(t *testing.T) {
	mem := NewMemory()
	w := New(nil)
	data := types.Binary{1, 2, 3}

	require.NoError(t, w.Write(openHive(t, mem, types.HiveCurrentUser), "K", "B", types.String("old")))
	require.NoError(t, w.Write(openHive(t, mem, types.HiveCurrentUser), "K", "B", data))
	data[0] = 9

	v, _ := mem.Value(types.HiveCurrentUser, "K", "B")
	assert.Equal(t, types.Binary{1, 2, 3}, v)
}

func TestWrite_ExistingKeyWithoutWriteAccess(t *testing.T) {
	mem := NewMemory()
	mem.Deny(types.HiveCurrentUser, `Software\Locked`)

	err := New(nil).Write(openHive(t, mem, types.HiveCurrentUser), `Software\Locked`, "x", types.DWord(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrPermissionDenied)
	assert.Contains(t, err.Error(), "exists but write access was denied")
	assert.Zero(t, mem.OpenHandles(), "probe handle must be released")
}

func TestWrite_ProtectedHive(t *testing.T) {
	mem := NewMemory()
	mem.Deny(types.HiveLocalMachine, "")

	err := New(nil).Write(openHive(t, mem, types.HiveLocalMachine), `SOFTWARE\regset`, "x", types.DWord(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrPermissionDenied)
	assert.Contains(t, err.Error(), `HKEY_LOCAL_MACHINE\SOFTWARE\regset`)
	assert.False(t, mem.KeyExists(types.HiveLocalMachine, "SOFTWARE"))
	assert.Zero(t, mem.OpenHandles())
}

func TestWrite_DeniedParentBlocksChildCreation(t *testing.T) {
	mem := NewMemory()
	mem.Deny(types.HiveCurrentUser, `A\B`)

	err := New(nil).Write(openHive(t, mem, types.HiveCurrentUser), `A\B\C\D`, "x", types.DWord(1))
	assert.ErrorIs(t, err, types.ErrPermissionDenied)
	assert.True(t, mem.KeyExists(types.HiveCurrentUser, `A\B`))
	assert.False(t, mem.KeyExists(types.HiveCurrentUser, `A\B\C`))
}

func TestWrite_NilArguments(t *testing.T) {
	w := New(nil)
	assert.ErrorIs(t, w.Write(nil, "", "", types.DWord(1)), types.ErrInvalidArgument)

	mem := NewMemory()
	assert.ErrorIs(t, w.Write(openHive(t, mem, types.HiveCurrentUser), "", "", nil), types.ErrInvalidArgument)
	assert.Zero(t, mem.OpenHandles())
}

// fakeHive injects failures into each registry call.
type fakeHive struct {
	createErr error
	probeErr  error
	setErr    error
	setPanic  bool

	hiveClosed int
	keyClosed  int
	probed     bool
}

func (f *fakeHive) ID() types.Hive { return types.HiveCurrentUser }

func (f *fakeHive) CreateKey(string) (Key, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &fakeKey{h: f}, nil
}

func (f *fakeHive) OpenKey(string) (Key, error) {
	f.probed = true
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	return &fakeKey{h: f}, nil
}

func (f *fakeHive) Close() error {
	f.hiveClosed++
	return nil
}

type fakeKey struct{ h *fakeHive }

func (k *fakeKey) SetValue(string, types.Value) error {
	if k.h.setPanic {
		panic("set value exploded")
	}
	return k.h.setErr
}

func (k *fakeKey) Close() error {
	k.h.keyClosed++
	return nil
}

func TestWrite_Classification(t *testing.T) {
	notExist := &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}

	tests := []struct {
		name  string
		hive  *fakeHive
		want  error
		probe bool
	}{
		{
			name:  "probe succeeds",
			hive:  &fakeHive{createErr: syscall.EINVAL},
			want:  types.ErrPermissionDenied,
			probe: true,
		},
		{
			name:  "create denied, key missing",
			hive:  &fakeHive{createErr: fs.ErrPermission, probeErr: notExist},
			want:  types.ErrPermissionDenied,
			probe: true,
		},
		{
			name:  "create reports not found",
			hive:  &fakeHive{createErr: notExist, probeErr: notExist},
			want:  types.ErrNotFound,
			probe: true,
		},
		{
			name:  "other create failure",
			hive:  &fakeHive{createErr: errors.New("path too long"), probeErr: notExist},
			want:  types.ErrIO,
			probe: true,
		},
		{
			name:  "typed backend error keeps kind",
			hive:  &fakeHive{createErr: types.Newf(types.ErrKindOverflow, "odd"), probeErr: notExist},
			want:  types.ErrOverflow,
			probe: true,
		},
		{
			name: "set value denied",
			hive: &fakeHive{setErr: fs.ErrPermission},
			want: types.ErrPermissionDenied,
		},
		{
			name: "set value failure",
			hive: &fakeHive{setErr: errors.New("disk full")},
			want: types.ErrIO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(nil).Write(tt.hive, `Software\X`, "v", types.String("s"))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.probe, tt.hive.probed)
			assert.Equal(t, 1, tt.hive.hiveClosed, "hive must be released exactly once")
			if tt.probe {
				// Only the probe key, if any, was opened.
				expected := 0
				if tt.hive.probeErr == nil {
					expected = 1
				}
				assert.Equal(t, expected, tt.hive.keyClosed)
			} else {
				assert.Equal(t, 1, tt.hive.keyClosed)
			}
		})
	}
}

func TestWrite_ReleasesOnPanic(t *testing.T) {
	hive := &fakeHive{setPanic: true}

	assert.PanicsWithValue(t, "set value exploded", func() {
		_ = New(nil).Write(hive, "K", "v", types.DWord(1))
	})
	assert.Equal(t, 1, hive.keyClosed)
	assert.Equal(t, 1, hive.hiveClosed)
}

func TestMemory_DenyInvalidHive(t *testing.T) {
	mem := NewMemory()

	assert.NotPanics(t, func() { mem.Deny(types.HiveInvalid, `Software\X`) })
	assert.NotPanics(t, func() { mem.Deny(types.Hive(42), "") })
	assert.False(t, mem.KeyExists(types.HiveInvalid, `Software\X`))
}

func TestMemory_HandleLifecycle(t *testing.T) {
	mem := NewMemory()

	_, err := mem.OpenHive(types.HiveInvalid)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	hive := openHive(t, mem, types.HiveCurrentConfig)
	_, err = hive.OpenKey("missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	key, err := hive.CreateKey("k")
	require.NoError(t, err)
	assert.Equal(t, 2, mem.OpenHandles())

	require.NoError(t, key.Close())
	assert.ErrorIs(t, key.Close(), errHandleClosed)
	assert.ErrorIs(t, key.SetValue("x", types.DWord(1)), errHandleClosed)

	ro, err := hive.OpenKey("K")
	require.NoError(t, err)
	assert.ErrorIs(t, ro.SetValue("x", types.DWord(1)), fs.ErrPermission)
	require.NoError(t, ro.Close())

	require.NoError(t, hive.Close())
	_, err = hive.CreateKey("k")
	assert.ErrorIs(t, err, errHandleClosed)
	assert.Zero(t, mem.OpenHandles())
}
