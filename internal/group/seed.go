package group

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"groupnest/ledger/internal/ledgererror"
)

// SeedCategory is one entry of a category seed file.
type SeedCategory struct {
	Name   string `yaml:"name"`
	IsLoan bool   `yaml:"is_loan,omitempty"`
}

// seedConfig is the top-level shape of a category seed file:
//
//	categories:
//	  - name: Groceries
//	  - name: Loans
//	    is_loan: true
type seedConfig struct {
	Categories []SeedCategory `yaml:"categories"`
}

// LoadSeedCategories reads a YAML category seed file.
func LoadSeedCategories(path string) ([]SeedCategory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading categories file: %w", err)
	}

	var cfg seedConfig
	if err := yaml.Unmarshal(data, &cfg); err == nil && len(cfg.Categories) > 0 {
		return cfg.Categories, nil
	}

	// Fallback: a bare list without the top-level key.
	var categories []SeedCategory
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("error parsing categories file: %w", err)
	}
	return categories, nil
}

// SeedCategories loads a category seed file and creates every category it
// names in the group. Admin only. Categories already present by name are
// skipped, so reseeding is safe.
func (s *Service) SeedCategories(ctx context.Context, userID, groupID, path string) (int, error) {
	if err := s.requireAdmin(ctx, groupID, userID, "seed categories"); err != nil {
		return 0, err
	}

	seeds, err := LoadSeedCategories(path)
	if err != nil {
		return 0, err
	}
	if len(seeds) == 0 {
		return 0, &ledgererror.ValidationError{Field: "file", Reason: "seed file contains no categories"}
	}

	existing, err := s.store.ListCategories(ctx, groupID)
	if err != nil {
		return 0, err
	}
	present := make(map[string]bool, len(existing))
	for _, c := range existing {
		present[c.Name] = true
	}

	created := 0
	for _, seed := range seeds {
		if seed.Name == "" || present[seed.Name] {
			continue
		}
		if _, err := s.AddCategory(ctx, userID, groupID, seed.Name, seed.IsLoan); err != nil {
			return created, err
		}
		present[seed.Name] = true
		created++
	}

	log.WithFields(logrus.Fields{
		"group":   groupID,
		"created": created,
	}).Info("Seeded categories")
	return created, nil
}
