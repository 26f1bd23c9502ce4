package reader

import (
	"fmt"
	"strings"

	"github.com/vegasq/pqview/result"
)

// Provider serves repository rows to the query engine. Rows are cached per
// table and field list for the lifetime of the provider.
type Provider struct {
	repos map[string]*Repository
	cache map[string][]result.Row
}

// NewProvider creates a provider over repos
func NewProvider(repos []*Repository) *Provider {
	p := &Provider{
		repos: make(map[string]*Repository, len(repos)),
		cache: make(map[string][]result.Row),
	}
	for _, r := range repos {
		p.repos[r.Name] = r
	}
	return p
}

// Provide implements query.DataProvider
func (p *Provider) Provide(table string, fields []string) ([]result.Row, error) {
	repo, ok := p.repos[table]
	if !ok {
		return nil, fmt.Errorf("unknown repository %s", table)
	}

	key := table + "\x00" + strings.Join(fields, "\x00")
	if rows, ok := p.cache[key]; ok {
		return rows, nil
	}
	rows, err := repo.Rows(fields)
	if err != nil {
		return nil, err
	}
	p.cache[key] = rows
	return rows, nil
}
