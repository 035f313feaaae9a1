package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regset/internal/keywriter"
	"github.com/joshuapare/regset/pkg/types"
)

func TestSet_WritesValue(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want types.Value
	}{
		{
			name: "string default type",
			args: []string{"set", `HKCU\Software\RegsetTest`, "Version", "1.0.0"},
			want: types.String("1.0.0"),
		},
		{
			name: "dword hex",
			args: []string{"set", `HKCU\Software\RegsetTest`, "Version", "0xFFFFFFFF", "--type", "DWord"},
			want: types.DWord(-1),
		},
		{
			name: "multistring short flag",
			args: []string{"set", `HKCU\Software\RegsetTest`, "Version", "a||b", "-t", "multistring"},
			want: types.MultiString{"a", "", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := keywriter.NewMemory()
			out, err := runCLI(t, mem, tt.args...)
			require.NoError(t, err)
			assertContains(t, out, []string{"✓ Set", "Version"})

			got, ok := mem.Value(types.HiveCurrentUser, `Software\RegsetTest`, "Version")
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Zero(t, mem.OpenHandles())
		})
	}
}

func TestSet_DefaultValueName(t *testing.T) {
	mem := keywriter.NewMemory()
	out, err := runCLI(t, mem, "set", `HKCU:\Software\RegsetTest`, "", "hello")
	require.NoError(t, err)
	assertContains(t, out, []string{"(Default)"})

	got, ok := mem.Value(types.HiveCurrentUser, `Software\RegsetTest`, "")
	require.True(t, ok)
	assert.Equal(t, types.String("hello"), got)
}

func TestSet_Failures(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown hive", []string{"set", `HKXX\Software`, "v", "1"}, "HKXX"},
		{"bad type", []string{"set", `HKCU\Software`, "v", "1", "--type", "Float"}, "unsupported registry value type"},
		{"overflow", []string{"set", `HKCU\Software`, "v", "4294967296", "--type", "DWord"}, "out of range"},
		{"wrong arg count", []string{"set", `HKCU\Software`, "v"}, "accepts 3 arg(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := keywriter.NewMemory()
			_, err := runCLI(t, mem, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.False(t, mem.KeyExists(types.HiveCurrentUser, "Software"))
		})
	}
}

func TestSet_PermissionDeniedHint(t *testing.T) {
	mem := keywriter.NewMemory()
	mem.Deny(types.HiveLocalMachine, "Software")

	_, err := runCLI(t, mem, "set", `HKLM\Software\Vendor`, "v", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Administrator")
}

func TestSet_JSONOutput(t *testing.T) {
	mem := keywriter.NewMemory()
	out, err := runCLI(t, mem, "set", `HKCU\Software\RegsetTest`, "Count", "42", "--type", "QWord", "--json")
	require.NoError(t, err)

	result, ok := assertJSON(t, out).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "QWord", result["type"])
	assertNotContains(t, out, []string{"✓"})
}

func TestSet_JSONOutputOnFailure(t *testing.T) {
	mem := keywriter.NewMemory()
	out, err := runCLI(t, mem, "set", `HKCU\Software`, "v", "abc", "--type", "DWord", "--json")
	require.Error(t, err)

	result, ok := assertJSON(t, out).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, result["success"])
	assert.Equal(t, "FormatError", result["kind"])
}

func TestSet_EmitReg(t *testing.T) {
	mem := keywriter.NewMemory()
	out, err := runCLI(t, mem, "set", `HKCU\Software\RegsetTest`, "Enabled", "1", "--type", "DWord", "--emit-reg")
	require.NoError(t, err)

	assertContains(t, out, []string{
		"Windows Registry Editor Version 5.00",
		`[HKEY_CURRENT_USER\Software\RegsetTest]`,
		`"Enabled"=dword:00000001`,
	})
	assert.False(t, mem.KeyExists(types.HiveCurrentUser, "Software"))
}

func TestSet_EmitRegToFile(t *testing.T) {
	mem := keywriter.NewMemory()
	target := filepath.Join(t.TempDir(), "out.reg")

	out, err := runCLI(t, mem, "set", `HKCU\Software\RegsetTest`, "Name", "x",
		"--emit-reg", "--encoding", "UTF-16LE", "--bom", "-o", target)
	require.NoError(t, err)
	assertContains(t, out, []string{"Wrote", target})

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), 2)
	assert.Equal(t, []byte{0xFF, 0xFE}, data[:2])
}

func TestSet_ConfigDefaultType(t *testing.T) {
	mem := keywriter.NewMemory()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "regset.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("default_type: DWord\n"), 0o644))

	_, err := runCLI(t, mem, "set", `HKCU\Software\RegsetTest`, "n", "7", "--config", cfgPath)
	require.NoError(t, err)

	got, ok := mem.Value(types.HiveCurrentUser, `Software\RegsetTest`, "n")
	require.True(t, ok)
	assert.Equal(t, types.DWord(7), got)
}

func TestSet_QuietSuppressesOutput(t *testing.T) {
	mem := keywriter.NewMemory()
	out, err := runCLI(t, mem, "set", `HKCU\Software\RegsetTest`, "n", "v", "-q")
	require.NoError(t, err)
	assert.Empty(t, out)
}
