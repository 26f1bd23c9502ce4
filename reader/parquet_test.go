package reader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/pqview/result"
)

func TestOpenFile(t *testing.T) {
	path := writeParquet(t, t.TempDir(), "users.parquet", sampleUsers())

	f, err := OpenFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.NumRows())
	assert.Len(t, f.Columns(), 4)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close(), "second close is a no-op")
}

func TestOpenFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := OpenFile(filepath.Join(dir, "missing.parquet"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = OpenFile(dir)
	assert.ErrorContains(t, err, "is a directory")

	text := filepath.Join(dir, "notes.parquet")
	require.NoError(t, os.WriteFile(text, []byte("not parquet"), 0o644))
	_, err = OpenFile(text)
	assert.ErrorContains(t, err, "failed to open parquet file")
}

func TestFileRows(t *testing.T) {
	path := writeParquet(t, t.TempDir(), "users.parquet", sampleUsers())
	f, err := OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	cols := []Column{
		{Name: "name", Type: result.TextType},
		{Name: FileColumn, Type: result.TextType},
		{Name: "id", Type: result.IntegerType},
	}
	rows, err := f.Rows(cols, true)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []result.Value{result.Text("bob"), result.Text(path), result.Integer(2)}, rows[1].Values)

	// Without the file column flag an unknown column reads as null
	rows, err = f.Rows(cols, false)
	require.NoError(t, err)
	assert.True(t, rows[0].Values[1].IsNull())
}
