// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for nutriscan: catalog
// foods, meal plans, tracking records, and configuration.
package types

// Standard food categories. Foods imported from FoodData Central carry
// whatever category string the source reports; the planner only matches
// on exact names.
const (
	CategoryGrains     = "Grains"
	CategoryDairy      = "Dairy"
	CategoryEggs       = "Eggs"
	CategoryFruits     = "Fruits"
	CategoryPoultry    = "Poultry"
	CategoryFish       = "Fish"
	CategoryBeef       = "Beef"
	CategoryVegetables = "Vegetables"
	CategoryProtein    = "Protein"
	CategoryNuts       = "Nuts"
	CategorySnacks     = "Snacks"
)

// DefaultServingSize and DefaultServingUnit describe the reference serving
// used by FoodData Central nutrient values (per 100 g).
const (
	DefaultServingSize = 100.0
	DefaultServingUnit = "g"
)

// FoodItem is a catalog entry with nutrient values per serving.
type FoodItem struct {
	// ID is the local catalog identifier (0 before the food is stored).
	ID int64 `json:"id" yaml:"id"`

	// FDCID is the FoodData Central identifier, 0 when the food did not
	// come from FoodData Central.
	FDCID int64 `json:"fdc_id,omitempty" yaml:"fdc_id,omitempty"`

	Name     string `json:"name" yaml:"name"`
	Brand    string `json:"brand,omitempty" yaml:"brand,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// ServingSize and ServingUnit describe one serving (default 100 g).
	ServingSize float64 `json:"serving_size" yaml:"serving_size"`
	ServingUnit string  `json:"serving_unit" yaml:"serving_unit"`

	Calories float64 `json:"calories" yaml:"calories"`
	ProteinG float64 `json:"protein_g" yaml:"protein_g"`
	CarbsG   float64 `json:"carbs_g" yaml:"carbs_g"`
	FatG     float64 `json:"fat_g" yaml:"fat_g"`
	FiberG   float64 `json:"fiber_g" yaml:"fiber_g"`
	SugarG   float64 `json:"sugar_g" yaml:"sugar_g"`
	SodiumMg float64 `json:"sodium_mg" yaml:"sodium_mg"`
}

// WithDefaults returns a copy of f with an empty serving size or unit
// replaced by the 100 g reference serving.
func (f FoodItem) WithDefaults() FoodItem {
	if f.ServingSize <= 0 {
		f.ServingSize = DefaultServingSize
	}
	if f.ServingUnit == "" {
		f.ServingUnit = DefaultServingUnit
	}
	return f
}
