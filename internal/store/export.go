// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is one meal log with its nutrients scaled by servings.
type ExportEntry struct {
	Date     string  `json:"date" yaml:"date"`
	Meal     string  `json:"meal" yaml:"meal"`
	FoodID   int64   `json:"food_id" yaml:"food_id"`
	Food     string  `json:"food" yaml:"food"`
	Servings float64 `json:"servings" yaml:"servings"`
	Calories float64 `json:"calories" yaml:"calories"`
	Protein  float64 `json:"protein" yaml:"protein"`
	Carbs    float64 `json:"carbs" yaml:"carbs"`
	Fat      float64 `json:"fat" yaml:"fat"`
}

// LogsBetween returns a user's logs with dates from..to inclusive, oldest first.
func (s *Store) LogsBetween(ctx context.Context, userID int64, from, to string) ([]ExportEntry, error) {
	logs, err := s.queryLogs(ctx,
		logSelect+` WHERE l.user_id = ? AND l.log_date BETWEEN ? AND ? ORDER BY l.log_date, l.logged_at, l.log_id`,
		userID, from, to)
	if err != nil {
		return nil, err
	}

	entries := make([]ExportEntry, len(logs))
	for i, l := range logs {
		entries[i] = ExportEntry{
			Date:     l.LogDate,
			Meal:     string(l.Meal),
			FoodID:   l.FoodID,
			Food:     l.Food.Name,
			Servings: l.Servings,
			Calories: l.Food.Calories * l.Servings,
			Protein:  l.Food.ProteinG * l.Servings,
			Carbs:    l.Food.CarbsG * l.Servings,
			Fat:      l.Food.FatG * l.Servings,
		}
	}
	return entries, nil
}

// ExportYAML writes a user's logs between from and to to path.
func (s *Store) ExportYAML(ctx context.Context, userID int64, from, to, path string) (int, error) {
	entries, err := s.LogsBetween(ctx, userID, from, to)
	if err != nil {
		return 0, fmt.Errorf("querying for export: %w", err)
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return 0, fmt.Errorf("marshaling YAML: %w", err)
	}
	return len(entries), writeExport(path, data)
}

// ExportJSON writes a user's logs between from and to to path.
func (s *Store) ExportJSON(ctx context.Context, userID int64, from, to, path string) (int, error) {
	entries, err := s.LogsBetween(ctx, userID, from, to)
	if err != nil {
		return 0, fmt.Errorf("querying for export: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshaling JSON: %w", err)
	}
	return len(entries), writeExport(path, data)
}

func writeExport(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
