// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package seed populates the food catalog from seed files and from
// FoodData Central searches for common foods.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nutriscan/internal/usda"
	"github.com/pdiddy/nutriscan/pkg/types"
)

// CommonFoods are the search terms used to build a starter catalog.
var CommonFoods = []string{
	// Proteins
	"chicken breast", "ground beef", "salmon", "tuna", "eggs", "turkey",
	"pork chop", "shrimp", "tofu", "greek yogurt",
	// Grains
	"rice", "pasta", "bread", "oatmeal", "quinoa", "tortilla", "bagel", "cereal",
	// Fruits
	"apple", "banana", "orange", "strawberry", "blueberry", "grapes",
	"watermelon", "avocado",
	// Vegetables
	"broccoli", "spinach", "carrot", "tomato", "potato", "sweet potato",
	"onion", "bell pepper", "cucumber", "lettuce",
	// Dairy
	"milk", "cheese", "butter", "cream cheese", "cottage cheese",
	// Nuts
	"almonds", "peanut butter", "walnuts", "cashews",
	// Meals
	"pizza", "hamburger", "sandwich", "salad", "soup", "burrito", "sushi",
	// Beverages
	"coffee", "orange juice", "protein shake",
	// Snacks
	"chips", "crackers", "popcorn", "granola bar",
}

// DefaultPageSize is the number of search results imported per term.
const DefaultPageSize = 25

// FoodSaver stores catalog foods. created is false when a food with the
// same FDC id already exists.
type FoodSaver interface {
	SaveFood(ctx context.Context, f types.FoodItem) (saved types.FoodItem, created bool, err error)
}

// FoodSearcher searches FoodData Central.
type FoodSearcher interface {
	SearchFoods(ctx context.Context, query string, pageSize int, dataTypes []string) (usda.SearchResponse, error)
}

// ImportSummary holds counts from a seed or import run.
type ImportSummary struct {
	Added   int
	Skipped int
	Failed  int
}

// Total returns the number of foods processed.
func (s ImportSummary) Total() int {
	return s.Added + s.Skipped + s.Failed
}

func (s *ImportSummary) add(o ImportSummary) {
	s.Added += o.Added
	s.Skipped += o.Skipped
	s.Failed += o.Failed
}

// LoadFile reads a list of foods from a YAML or JSON seed file.
func LoadFile(path string) ([]types.FoodItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var foods []types.FoodItem
	if err := yaml.Unmarshal(data, &foods); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	return foods, nil
}

// Load saves foods into the catalog. Foods whose FDC id is already stored
// are skipped; a food that fails to save is reported and counted, and
// loading continues.
func Load(ctx context.Context, saver FoodSaver, foods []types.FoodItem, w io.Writer) (ImportSummary, error) {
	var summary ImportSummary
	for _, f := range foods {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		saved, created, err := saver.SaveFood(ctx, f)
		switch {
		case err != nil:
			fmt.Fprintf(w, "failed  %s: %v\n", f.Name, err)
			summary.Failed++
		case created:
			fmt.Fprintf(w, "added   %s (id %d)\n", saved.Name, saved.ID)
			summary.Added++
		default:
			fmt.Fprintf(w, "skipped %s (fdc %d)\n", saved.Name, saved.FDCID)
			summary.Skipped++
		}
	}
	return summary, nil
}

// ImportCommon searches FoodData Central for each term and saves the
// results. A term whose search fails is reported and counted as one
// failure; the import moves on to the next term.
func ImportCommon(ctx context.Context, client FoodSearcher, saver FoodSaver, terms []string, pageSize int, w io.Writer) (ImportSummary, error) {
	if len(terms) == 0 {
		terms = CommonFoods
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var summary ImportSummary
	for i, term := range terms {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		fmt.Fprintf(w, "[%d/%d] %s\n", i+1, len(terms), term)
		resp, err := client.SearchFoods(ctx, term, pageSize, nil)
		if err != nil {
			fmt.Fprintf(w, "failed  %q: %v\n", term, err)
			summary.Failed++
			continue
		}

		foods := make([]types.FoodItem, 0, len(resp.Foods))
		for _, f := range resp.Foods {
			foods = append(foods, usda.ToFoodItem(f))
		}
		termSummary, err := Load(ctx, saver, foods, io.Discard)
		summary.add(termSummary)
		if err != nil {
			return summary, err
		}
		fmt.Fprintf(w, "        %d added, %d skipped\n", termSummary.Added, termSummary.Skipped)
	}
	return summary, nil
}
