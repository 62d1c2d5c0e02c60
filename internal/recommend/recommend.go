// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recommend ranks catalog foods for a macro, for similarity to a
// reference food, for how often a user logs them, and for what is left of
// the day's budget. Every function works on an in-memory catalog slice
// and leaves it unmodified.
package recommend

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/pdiddy/nutriscan/pkg/types"
)

// DefaultLimit is used when a non-positive limit is passed.
const DefaultLimit = 5

const (
	minMacroGrams      = 10.0
	similarTolerance   = 0.3
	lowCarbThreshold   = 5.0
	lowCarbCeiling     = 10.0
	proteinGapTrigger  = 20.0
	calorieGapTrigger  = 400.0
	minSuggestProtein  = 15.0
	minSuggestFiber    = 3.0
	suggestionsPerRule = 3
	maxSuggestions     = 5
)

// Suggestion pairs a food with the reason it was suggested.
type Suggestion struct {
	Food   types.FoodItem `json:"food" yaml:"food"`
	Reason string         `json:"reason" yaml:"reason"`
}

// Macros lists the names accepted by ForMacro.
var Macros = []string{"protein", "carbs", "fat"}

func macroValue(f types.FoodItem, macro string) (float64, bool) {
	switch macro {
	case "protein":
		return f.ProteinG, true
	case "carbs":
		return f.CarbsG, true
	case "fat":
		return f.FatG, true
	}
	return 0, false
}

func normLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

func head(foods []types.FoodItem, n int) []types.FoodItem {
	if len(foods) > n {
		return foods[:n]
	}
	return foods
}

// ForMacro returns foods with at least 10 g of macro per serving, richest
// first. An unknown macro returns nil.
func ForMacro(foods []types.FoodItem, macro string, limit int) []types.FoodItem {
	if _, ok := macroValue(types.FoodItem{}, macro); !ok {
		return nil
	}
	var out []types.FoodItem
	for _, f := range foods {
		if v, _ := macroValue(f, macro); v >= minMacroGrams {
			out = append(out, f)
		}
	}
	slices.SortStableFunc(out, func(a, b types.FoodItem) int {
		va, _ := macroValue(a, macro)
		vb, _ := macroValue(b, macro)
		return cmp.Compare(vb, va)
	})
	return head(out, normLimit(limit))
}

// Similar returns foods whose protein is within 30% of the reference
// food's and whose carbs are within 30% too (or at most 10 g when the
// reference has 5 g or less). Matches are ranked by cosine similarity of
// their protein/carbs/fat profile. The reference food is never returned;
// an unknown refID returns nil.
func Similar(foods []types.FoodItem, refID int64, limit int) []types.FoodItem {
	idx := slices.IndexFunc(foods, func(f types.FoodItem) bool { return f.ID == refID })
	if idx < 0 {
		return nil
	}
	ref := foods[idx]

	pLo, pHi := ref.ProteinG*(1-similarTolerance), ref.ProteinG*(1+similarTolerance)
	cLo, cHi := 0.0, lowCarbCeiling
	if ref.CarbsG > lowCarbThreshold {
		cLo, cHi = ref.CarbsG*(1-similarTolerance), ref.CarbsG*(1+similarTolerance)
	}

	type scored struct {
		food  types.FoodItem
		score float64
	}
	var matches []scored
	for _, f := range foods {
		if f.ID == refID {
			continue
		}
		if f.ProteinG < pLo || f.ProteinG > pHi || f.CarbsG < cLo || f.CarbsG > cHi {
			continue
		}
		matches = append(matches, scored{food: f, score: cosine(macroVector(ref), macroVector(f))})
	}
	slices.SortStableFunc(matches, func(a, b scored) int { return cmp.Compare(b.score, a.score) })

	out := make([]types.FoodItem, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.food)
	}
	return head(out, normLimit(limit))
}

func macroVector(f types.FoodItem) [3]float64 {
	return [3]float64{f.ProteinG, f.CarbsG, f.FatG}
}

// cosine returns 0 when either vector is zero.
func cosine(a, b [3]float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Favorites returns the foods a user logged most often. loggedFoodIDs
// holds one entry per log; ties keep the order in which foods were first
// logged. Ids missing from foods are skipped.
func Favorites(foods []types.FoodItem, loggedFoodIDs []int64, limit int) []types.FoodItem {
	counts := make(map[int64]int)
	var order []int64
	for _, id := range loggedFoodIDs {
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}
	slices.SortStableFunc(order, func(a, b int64) int { return cmp.Compare(counts[b], counts[a]) })

	byID := make(map[int64]types.FoodItem, len(foods))
	for _, f := range foods {
		byID[f.ID] = f
	}

	limit = normLimit(limit)
	var out []types.FoodItem
	for _, id := range order {
		if f, ok := byID[id]; ok {
			out = append(out, f)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// MealSuggestions picks foods for what is left of the day. More than 20 g
// of protein left favors protein-dense foods; otherwise more than 400 kcal
// left favors low-calorie high-fiber foods; otherwise the most
// protein-dense foods that fit the remaining calories are chosen.
func MealSuggestions(foods []types.FoodItem, remainingCalories, remainingProtein float64) []Suggestion {
	var picked []types.FoodItem
	var reason func(types.FoodItem) string

	switch {
	case remainingProtein > proteinGapTrigger:
		picked = filterSorted(foods,
			func(f types.FoodItem) bool { return f.ProteinG >= minSuggestProtein },
			func(a, b types.FoodItem) int { return cmp.Compare(b.ProteinG, a.ProteinG) })
		reason = func(f types.FoodItem) string {
			return fmt.Sprintf("High protein (%gg) to help hit your target", f.ProteinG)
		}
	case remainingCalories > calorieGapTrigger:
		picked = filterSorted(foods,
			func(f types.FoodItem) bool { return f.FiberG >= minSuggestFiber },
			func(a, b types.FoodItem) int { return cmp.Compare(a.Calories, b.Calories) })
		reason = func(f types.FoodItem) string {
			return fmt.Sprintf("High fiber (%gg) and filling", f.FiberG)
		}
	default:
		picked = filterSorted(foods,
			func(f types.FoodItem) bool { return f.Calories <= remainingCalories },
			func(a, b types.FoodItem) int { return cmp.Compare(b.ProteinG, a.ProteinG) })
		reason = func(types.FoodItem) string {
			return fmt.Sprintf("Fits your remaining %.0f cal budget", remainingCalories)
		}
	}

	picked = head(picked, suggestionsPerRule)
	out := make([]Suggestion, 0, len(picked))
	for _, f := range picked {
		out = append(out, Suggestion{Food: f, Reason: reason(f)})
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

func filterSorted(foods []types.FoodItem, keep func(types.FoodItem) bool, order func(a, b types.FoodItem) int) []types.FoodItem {
	var out []types.FoodItem
	for _, f := range foods {
		if keep(f) {
			out = append(out, f)
		}
	}
	slices.SortStableFunc(out, order)
	return out
}
