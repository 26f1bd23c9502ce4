package reader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/pqview/result"
)

// File is one open parquet file of a repository.
//
// It holds both the OS file handle and the parquet handle; Close releases
// both.
type File struct {
	path   string
	file   *os.File
	pqFile *parquet.File
}

// OpenFile opens path and validates it as a parquet file. Directories are
// rejected.
func OpenFile(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.IsDir() {
		_ = file.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file %s: %w", path, err)
	}
	return &File{path: path, file: file, pqFile: pqFile}, nil
}

// Columns returns the queryable columns of the file schema
func (f *File) Columns() []Column {
	return extractColumns(f.pqFile.Schema())
}

// NumRows returns the number of rows stored in the file
func (f *File) NumRows() int64 {
	return f.pqFile.NumRows()
}

// Rows decodes every row and converts the values of cols, in order. With
// withFile set, FileColumn holds the file path.
func (f *File) Rows(cols []Column, withFile bool) ([]result.Row, error) {
	rows := make([]result.Row, 0, f.pqFile.NumRows())

	reader := parquet.NewReader(f.pqFile)
	defer func() { _ = reader.Close() }()

	for {
		raw := make(map[string]interface{})
		if err := reader.Read(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row from %s: %w", f.path, err)
		}

		values := make([]result.Value, len(cols))
		for i, c := range cols {
			if withFile && c.Name == FileColumn {
				values[i] = result.Text(f.path)
				continue
			}
			v, _ := lookup(raw, c.Name)
			converted, err := convertValue(v, c)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.path, err)
			}
			values[i] = converted
		}
		rows = append(rows, result.Row{Values: values})
	}
	return rows, nil
}

// Close releases the file. It is safe to call Close multiple times.
func (f *File) Close() error {
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
