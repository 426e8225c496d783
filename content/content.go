// Package content loads the portal's embedded reference data: the MSP rate
// table and the news feed seed. Both ship inside the binary so the portal
// serves them without any external dependency.
package content

import (
	"embed"

	"krishi-mitra/domain"
	"krishi-mitra/errors"

	"gopkg.in/yaml.v3"
)

//go:embed data
var dataFS embed.FS

// Store holds the loaded reference data. Immutable after Load.
type Store struct {
	mspRates []domain.MSPRate
	articles []domain.Article
}

// Load parses the embedded YAML seeds. An empty seed file is a packaging
// mistake and fails loudly instead of serving an empty portal.
func Load() (*Store, error) {
	var rates []domain.MSPRate
	if err := unmarshalSeed("data/msp.yaml", &rates); err != nil {
		return nil, err
	}
	var articles []domain.Article
	if err := unmarshalSeed("data/news.yaml", &articles); err != nil {
		return nil, err
	}
	if len(rates) == 0 || len(articles) == 0 {
		return nil, errors.ErrEmptySeed
	}
	return &Store{mspRates: rates, articles: articles}, nil
}

// MSPRates returns the rate table. Callers must not mutate it.
func (s *Store) MSPRates() []domain.MSPRate {
	return s.mspRates
}

// Articles returns the news feed, newest first as seeded.
func (s *Store) Articles() []domain.Article {
	return s.articles
}

func unmarshalSeed(path string, out any) error {
	raw, err := dataFS.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(raw, out)
}
