// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package usda

import (
	"bytes"
	"encoding/json"

	"github.com/pdiddy/nutriscan/pkg/types"
)

// FoodData Central nutrient ids.
const (
	NutrientEnergy        = 1008
	NutrientProtein       = 1003
	NutrientCarbohydrate  = 1005
	NutrientFat           = 1004
	NutrientFiber         = 1079
	NutrientSugars        = 2000
	NutrientSodium        = 1093
	NutrientEnergyAtwater = 2047
)

// Nutrients are the values nutriscan tracks, per 100 g.
type Nutrients struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
	SugarG   float64 `json:"sugar_g"`
	SodiumMg float64 `json:"sodium_mg"`
}

// Category is a food category. Search results report it as a plain
// string; food details wrap it in an object with a description.
type Category string

// UnmarshalJSON accepts either shape.
func (c *Category) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Category(s)
		return nil
	}
	var obj struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*c = Category(obj.Description)
	return nil
}

// FoodNutrient is one nutrient row. Search results use the flat
// nutrientId/value form; food details nest the id and report amount.
type FoodNutrient struct {
	NutrientID   int      `json:"nutrientId,omitempty"`
	NutrientName string   `json:"nutrientName,omitempty"`
	UnitName     string   `json:"unitName,omitempty"`
	Value        *float64 `json:"value,omitempty"`
	Amount       *float64 `json:"amount,omitempty"`
	Nutrient     *struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		UnitName string `json:"unitName"`
	} `json:"nutrient,omitempty"`
}

func (n FoodNutrient) id() int {
	if n.NutrientID != 0 {
		return n.NutrientID
	}
	if n.Nutrient != nil {
		return n.Nutrient.ID
	}
	return 0
}

func (n FoodNutrient) value() float64 {
	if n.Value != nil && *n.Value != 0 {
		return *n.Value
	}
	if n.Amount != nil {
		return *n.Amount
	}
	return 0
}

// Food is a FoodData Central food as returned by search and detail endpoints.
type Food struct {
	FDCID         int64          `json:"fdcId"`
	Description   string         `json:"description"`
	DataType      string         `json:"dataType,omitempty"`
	BrandOwner    string         `json:"brandOwner,omitempty"`
	FoodCategory  Category       `json:"foodCategory,omitempty"`
	FoodNutrients []FoodNutrient `json:"foodNutrients"`
}

// ParseNutrients extracts tracked nutrients from a food. Missing
// nutrients are zero. Energy falls back to the Atwater general factor
// value when the kcal row is absent, as in some Foundation foods.
func ParseNutrients(f Food) Nutrients {
	var n Nutrients
	var atwater float64
	haveEnergy := false

	for _, fn := range f.FoodNutrients {
		v := fn.value()
		switch fn.id() {
		case NutrientEnergy:
			n.Calories = v
			haveEnergy = true
		case NutrientEnergyAtwater:
			atwater = v
		case NutrientProtein:
			n.ProteinG = v
		case NutrientCarbohydrate:
			n.CarbsG = v
		case NutrientFat:
			n.FatG = v
		case NutrientFiber:
			n.FiberG = v
		case NutrientSugars:
			n.SugarG = v
		case NutrientSodium:
			n.SodiumMg = v
		}
	}
	if !haveEnergy {
		n.Calories = atwater
	}
	return n
}

// ToFoodItem converts a FoodData Central food into a catalog entry with
// the 100 g reference serving.
func ToFoodItem(f Food) types.FoodItem {
	n := ParseNutrients(f)
	name := f.Description
	if name == "" {
		name = "Unknown"
	}
	return types.FoodItem{
		FDCID:       f.FDCID,
		Name:        name,
		Brand:       f.BrandOwner,
		Category:    string(f.FoodCategory),
		ServingSize: types.DefaultServingSize,
		ServingUnit: types.DefaultServingUnit,
		Calories:    n.Calories,
		ProteinG:    n.ProteinG,
		CarbsG:      n.CarbsG,
		FatG:        n.FatG,
		FiberG:      n.FiberG,
		SugarG:      n.SugarG,
		SodiumMg:    n.SodiumMg,
	}
}
