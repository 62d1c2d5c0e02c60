// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/nutriscan/pkg/types"
)

func TestAllocate_StandardMeals(t *testing.T) {
	got := Allocate(types.Targets{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65}, StandardMeals)

	assert.Len(t, got, 4)
	assert.InDelta(t, 500, got[types.MealBreakfast].Calories, 1e-9)
	assert.InDelta(t, 37.5, got[types.MealBreakfast].Protein, 1e-9)
	assert.InDelta(t, 600, got[types.MealLunch].Calories, 1e-9)
	assert.InDelta(t, 600, got[types.MealDinner].Calories, 1e-9)
	assert.InDelta(t, 300, got[types.MealSnack].Calories, 1e-9)
	assert.InDelta(t, 22.5, got[types.MealSnack].Protein, 1e-9)
}

func TestAllocate_SumsMatchTargets(t *testing.T) {
	for _, tgt := range []types.Targets{
		{Calories: 2000, Protein: 150},
		{Calories: 1733, Protein: 91},
		{Calories: 0, Protein: 0},
	} {
		var cal, protein float64
		for _, st := range Allocate(tgt, StandardMeals) {
			cal += st.Calories
			protein += st.Protein
		}
		assert.InDelta(t, tgt.Calories, cal, 1e-6)
		assert.InDelta(t, tgt.Protein, protein, 1e-6)
	}
}

func TestAllocate_FractionsNeedNotSumToOne(t *testing.T) {
	meals := []types.MealTypeSpec{
		{Meal: types.MealLunch, Fraction: 0.5},
		{Meal: types.MealDinner, Fraction: 0.9},
	}
	got := Allocate(types.Targets{Calories: 1000, Protein: 100}, meals)
	assert.InDelta(t, 500, got[types.MealLunch].Calories, 1e-9)
	assert.InDelta(t, 900, got[types.MealDinner].Calories, 1e-9)
	assert.InDelta(t, 90, got[types.MealDinner].Protein, 1e-9)
}

func TestAllocate_EmptyTable(t *testing.T) {
	assert.Empty(t, Allocate(types.Targets{Calories: 2000}, nil))
}
