// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package planner generates daily and weekly meal plans from a food
// catalog. A day is split into meal slots by calorie fraction; each slot
// is filled greedily from the foods eligible for it.
package planner

import "github.com/pdiddy/nutriscan/pkg/types"

// StandardMeals is the default meal table: calorie share and eligible
// categories per slot, in assembly order.
var StandardMeals = []types.MealTypeSpec{
	{
		Meal:     types.MealBreakfast,
		Fraction: 0.25,
		Categories: []string{
			types.CategoryGrains, types.CategoryDairy, types.CategoryEggs, types.CategoryFruits,
		},
	},
	{
		Meal:     types.MealLunch,
		Fraction: 0.30,
		Categories: []string{
			types.CategoryPoultry, types.CategoryFish, types.CategoryGrains,
			types.CategoryVegetables, types.CategoryProtein,
		},
	},
	{
		Meal:     types.MealDinner,
		Fraction: 0.30,
		Categories: []string{
			types.CategoryPoultry, types.CategoryFish, types.CategoryBeef,
			types.CategoryVegetables, types.CategoryGrains, types.CategoryProtein,
		},
	},
	{
		Meal:     types.MealSnack,
		Fraction: 0.15,
		Categories: []string{
			types.CategoryFruits, types.CategoryNuts, types.CategoryDairy, types.CategorySnacks,
		},
	},
}

// Allocate splits day-level targets into per-meal calorie and protein
// budgets. Both macros scale by the meal's calorie fraction. Fractions are
// not required to sum to 1.
func Allocate(targets types.Targets, meals []types.MealTypeSpec) map[types.MealType]types.SubTarget {
	out := make(map[types.MealType]types.SubTarget, len(meals))
	for _, m := range meals {
		out[m.Meal] = types.SubTarget{
			Calories: targets.Calories * m.Fraction,
			Protein:  targets.Protein * m.Fraction,
		}
	}
	return out
}
