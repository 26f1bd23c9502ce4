package reader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/vegasq/pqview/query"
	"github.com/vegasq/pqview/result"
)

// FileColumn is the column added to glob repositories holding the source
// file path of each row
const FileColumn = "_file"

// maxFiles limits glob expansion to prevent resource exhaustion
const maxFiles = 1000

// ErrNoMatches is returned when a glob pattern matches no files
var ErrNoMatches = errors.New("no files match pattern")

// Repository is a queryable parquet dataset: one file or a glob of files
type Repository struct {
	Name    string
	Pattern string
	Files   []string
	Columns []Column
	glob    bool
}

// OpenRepository resolves a repository path and reads its schema.
//
// The path is a parquet file or a glob pattern, optionally prefixed by an
// alias as in "events=logs/*.parquet". Without an alias the table name is
// derived from the file name, or the directory name for globs.
//
// The pattern can include wildcards:
//   - * matches any sequence of non-separator characters
//   - ? matches any single non-separator character
//   - [range] matches any character in range
func OpenRepository(path string) (*Repository, error) {
	name, pattern := splitAlias(path)
	if pattern == "" {
		return nil, fmt.Errorf("empty repository path")
	}

	repo := &Repository{Pattern: pattern, glob: isGlob(pattern)}
	if repo.glob {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoMatches, pattern)
		}
		if len(matches) > maxFiles {
			return nil, fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), maxFiles)
		}
		repo.Files = matches
	} else {
		if _, err := os.Stat(pattern); err != nil {
			return nil, fmt.Errorf("repository %s: %w", pattern, err)
		}
		repo.Files = []string{pattern}
	}

	f, err := OpenFile(repo.Files[0])
	if err != nil {
		return nil, err
	}
	repo.Columns = f.Columns()
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", repo.Files[0], err)
	}
	if repo.glob {
		repo.Columns = append(repo.Columns, Column{Name: FileColumn, Type: result.TextType})
	}

	if name == "" {
		name = deriveName(pattern, repo.glob)
	}
	repo.Name = name
	return repo, nil
}

// ValidateRepositories opens every path in order. The first failure aborts
// and is returned; no partial list is returned with it.
func ValidateRepositories(paths []string) ([]*Repository, error) {
	repos := make([]*Repository, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		repo, err := OpenRepository(p)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[repo.Name]; dup {
			return nil, fmt.Errorf("repositories %s and %s share the table name %s, use name=path to alias one", prev, repo.Pattern, repo.Name)
		}
		seen[repo.Name] = repo.Pattern
		repos = append(repos, repo)
	}
	return repos, nil
}

// Schema builds the query schema describing every repository
func Schema(repos []*Repository) query.Schema {
	schema := query.Schema{
		Tables: make(map[string][]string, len(repos)),
		Types:  make(map[string]map[string]result.DataType, len(repos)),
	}
	for _, repo := range repos {
		names := make([]string, len(repo.Columns))
		types := make(map[string]result.DataType, len(repo.Columns))
		for i, c := range repo.Columns {
			names[i] = c.Name
			types[c.Name] = c.Type
		}
		schema.Tables[repo.Name] = names
		schema.Types[repo.Name] = types
	}
	return schema
}

// Column returns the named column
func (r *Repository) Column(name string) (Column, bool) {
	for _, c := range r.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Rows reads every file and returns the requested fields of each row in
// order. Fields missing from a file read as null.
func (r *Repository) Rows(fields []string) ([]result.Row, error) {
	cols := make([]Column, len(fields))
	for i, f := range fields {
		c, ok := r.Column(f)
		if !ok {
			return nil, fmt.Errorf("repository %s has no column %s", r.Name, f)
		}
		cols[i] = c
	}

	var rows []result.Row
	for _, path := range r.Files {
		f, err := OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		fileRows, readErr := f.Rows(cols, r.glob)
		closeErr := f.Close()

		// Preserve the first error encountered
		if readErr != nil {
			return nil, readErr
		}
		if closeErr != nil {
			return nil, fmt.Errorf("failed to close %s: %w", path, closeErr)
		}
		rows = append(rows, fileRows...)
	}
	return rows, nil
}

// lookup finds a possibly dotted column name in a decoded row, walking
// nested group maps
func lookup(row map[string]interface{}, name string) (interface{}, bool) {
	if v, ok := row[name]; ok {
		return v, true
	}
	for i := 0; i < len(name); i++ {
		if name[i] != '.' {
			continue
		}
		sub, ok := row[name[:i]].(map[string]interface{})
		if !ok {
			continue
		}
		if v, ok := lookup(sub, name[i+1:]); ok {
			return v, true
		}
	}
	return nil, false
}

func splitAlias(path string) (string, string) {
	if i := strings.Index(path, "="); i > 0 && isIdentifier(path[:i]) {
		return path[:i], path[i+1:]
	}
	return "", path
}

func isGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// deriveName turns a file or directory name into a table identifier
func deriveName(pattern string, glob bool) string {
	base := filepath.Base(pattern)
	if glob || isGlob(base) {
		base = filepath.Base(filepath.Dir(pattern))
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	for _, r := range base {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" || name == "_" || unicode.IsDigit([]rune(name)[0]) {
		name = "t_" + name
	}
	return name
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if !(unicode.IsLetter(r) || r == '_' || (i > 0 && unicode.IsDigit(r))) {
			return false
		}
	}
	return s != ""
}
