package creg_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/creg/pkg/creg"
)

func writeHiveFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "SYSTEM.DAT")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestGetHiveInfo(t *testing.T) {
	path := writeHiveFile(t, buildS2Hive())

	major, minor, corrupted, err := creg.GetHiveInfo(path, creg.OpenOptions{})
	require.NoError(t, err)
	require.Equal(t, uint16(1), major)
	require.Equal(t, uint16(0), minor)
	require.False(t, corrupted)
}

func TestListKeysNonRecursive(t *testing.T) {
	path := writeHiveFile(t, buildS2Hive())

	keys, err := creg.ListKeys(path, "", false, 0, creg.OpenOptions{})
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.Equal(t, "Software", keys[0].Name)
	require.Equal(t, "Software", keys[0].Path)
	require.Equal(t, 1, keys[0].ValueN)
}

func TestListKeysUnknownPath(t *testing.T) {
	path := writeHiveFile(t, buildS2Hive())

	_, err := creg.ListKeys(path, "Nonexistent", false, 0, creg.OpenOptions{})
	require.ErrorIs(t, err, creg.ErrNotFound)
}

func TestListValues(t *testing.T) {
	path := writeHiveFile(t, buildS2Hive())

	values, err := creg.ListValues(path, "Software", creg.OpenOptions{})
	require.NoError(t, err)
	require.Len(t, values, 1)
	require.Equal(t, "ProductName", values[0].Name)
	require.Equal(t, creg.RegSZ, values[0].Type)
}
