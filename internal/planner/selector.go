// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package planner

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/pdiddy/nutriscan/pkg/types"
)

const (
	minServings = 0.5
	maxServings = 2.0
)

// Selector picks foods for a single meal budget. The random source sets
// the order candidates are considered in; with a protein target it only
// breaks ties between foods of equal protein. Inject a seeded source for
// reproducible output.
type Selector struct {
	rng *rand.Rand
}

// NewSelector returns a Selector drawing from rng. A nil rng is seeded
// from the runtime's random state.
func NewSelector(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{rng: rng}
}

// NewSeededSelector returns a Selector whose output is fully determined by seed.
func NewSeededSelector(seed uint64) *Selector {
	return NewSelector(rand.New(rand.NewPCG(seed, seed)))
}

// Select greedily chooses at most maxItems foods whose scaled calories
// approach calorieTarget. Candidates are shuffled, then ordered by protein
// descending when proteinTarget is positive, and only the first
// 2*maxItems are considered. Each chosen food gets a serving multiplier in
// [0.5, 2.0] rounded to the nearest half (ties to even).
//
// The remaining protein budget is tracked but never stops selection.
func (s *Selector) Select(candidates []types.FoodItem, calorieTarget, proteinTarget float64, maxItems int) []types.SelectedItem {
	items, _ := s.SelectWithRemainder(candidates, calorieTarget, proteinTarget, maxItems)
	return items
}

// SelectWithRemainder is Select that also reports the unspent budget.
// Either field may be negative when the chosen servings overshoot.
func (s *Selector) SelectWithRemainder(candidates []types.FoodItem, calorieTarget, proteinTarget float64, maxItems int) ([]types.SelectedItem, types.SubTarget) {
	remaining := types.SubTarget{Calories: calorieTarget, Protein: proteinTarget}
	if len(candidates) == 0 || maxItems <= 0 {
		return nil, remaining
	}

	pool := slices.Clone(candidates)
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	if proteinTarget > 0 {
		slices.SortStableFunc(pool, func(a, b types.FoodItem) int {
			switch {
			case a.ProteinG > b.ProteinG:
				return -1
			case a.ProteinG < b.ProteinG:
				return 1
			}
			return 0
		})
	}

	if limit := 2 * maxItems; len(pool) > limit {
		pool = pool[:limit]
	}

	var selected []types.SelectedItem
	for _, food := range pool {
		if len(selected) >= maxItems || exhausted(remaining.Calories) {
			break
		}
		if food.Calories <= 0 {
			continue
		}

		servings := servingMultiplier(remaining.Calories / food.Calories)
		item := scale(food, servings)
		selected = append(selected, item)

		remaining.Calories -= item.Calories
		remaining.Protein -= item.Protein
	}

	return selected, remaining
}

// exhausted reports whether a calorie budget leaves nothing to fill. A
// non-finite budget counts as exhausted.
func exhausted(calories float64) bool {
	return calories <= 0 || math.IsNaN(calories) || math.IsInf(calories, 0)
}

// servingMultiplier clamps ideal to [0.5, 2.0] and rounds it to a
// multiple of 0.5, resolving exact quarters to the even half-step.
func servingMultiplier(ideal float64) float64 {
	clamped := math.Min(math.Max(minServings, ideal), maxServings)
	return math.RoundToEven(clamped*2) / 2
}

func scale(food types.FoodItem, servings float64) types.SelectedItem {
	return types.SelectedItem{
		FoodID:   food.ID,
		Name:     food.Name,
		Servings: servings,
		Calories: food.Calories * servings,
		Protein:  food.ProteinG * servings,
		Carbs:    food.CarbsG * servings,
		Fat:      food.FatG * servings,
	}
}
