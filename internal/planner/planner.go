// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package planner

import (
	"errors"
	"slices"

	"github.com/pdiddy/nutriscan/pkg/types"
)

// ErrNoPlan is returned by callers when no meal could be filled for any
// requested day.
var ErrNoPlan = errors.New("no meal plan could be generated: the food catalog is empty or has no foods with calories")

const (
	defaultFallbackSize = 20
	highProteinMin      = 10.0
)

// meatCategories are excluded from vegetarian plans.
var meatCategories = []string{types.CategoryPoultry, types.CategoryFish, types.CategoryBeef}

// Planner assembles day and week plans over a fixed catalog.
//
// A Planner is not safe for concurrent use; its Selector shares one
// random source. Create one Planner per goroutine.
type Planner struct {
	catalog      []types.FoodItem
	selector     *Selector
	meals        []types.MealTypeSpec
	fallbackSize int
}

// Option configures a Planner.
type Option func(*Planner)

// WithMeals replaces the standard meal table.
func WithMeals(meals []types.MealTypeSpec) Option {
	return func(p *Planner) { p.meals = meals }
}

// WithFallbackSize sets how many leading catalog foods a meal uses when
// none match its filters. Values <= 0 keep the default of 20.
func WithFallbackSize(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.fallbackSize = n
		}
	}
}

// New returns a Planner over catalog. The catalog order matters: the
// fallback branch takes its leading foods.
func New(catalog []types.FoodItem, selector *Selector, opts ...Option) *Planner {
	if selector == nil {
		selector = NewSelector(nil)
	}
	p := &Planner{
		catalog:      catalog,
		selector:     selector,
		meals:        StandardMeals,
		fallbackSize: defaultFallbackSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BuildDay fills each meal slot in order. A slot whose selection comes
// back empty is omitted. The second return value is false when no slot
// produced any food.
func (p *Planner) BuildDay(targets types.Targets, prefs types.Preferences) (types.DayPlan, bool) {
	budgets := Allocate(targets, p.meals)

	var meals []types.MealPlan
	for _, spec := range p.meals {
		candidates := p.Candidates(spec, prefs)
		if len(candidates) == 0 {
			candidates = p.fallback()
		}

		budget := budgets[spec.Meal]
		foods := p.selector.Select(candidates, budget.Calories, budget.Protein, maxItemsFor(spec.Meal))
		if len(foods) == 0 {
			continue
		}
		meals = append(meals, newMealPlan(spec.Meal, foods))
	}

	if len(meals) == 0 {
		return types.DayPlan{}, false
	}
	return types.DayPlan{Meals: meals, Targets: targets}, true
}

// BuildWeek generates seven independent days tagged 0..6. Days that
// produce no meals are left out, so the result may hold fewer than seven.
func (p *Planner) BuildWeek(targets types.Targets, prefs types.Preferences) types.WeekPlan {
	var week types.WeekPlan
	for day := range 7 {
		plan, ok := p.BuildDay(targets, prefs)
		if !ok {
			continue
		}
		plan.Day = day
		week.Days = append(week.Days, plan)
	}
	return week
}

// Candidates returns the catalog foods eligible for a meal slot under
// prefs, in catalog order.
func (p *Planner) Candidates(spec types.MealTypeSpec, prefs types.Preferences) []types.FoodItem {
	var out []types.FoodItem
	for _, f := range p.catalog {
		if len(spec.Categories) > 0 && !slices.Contains(spec.Categories, f.Category) {
			continue
		}
		if prefs.Vegetarian && slices.Contains(meatCategories, f.Category) {
			continue
		}
		if prefs.HighProtein && f.ProteinG < highProteinMin {
			continue
		}
		out = append(out, f)
	}
	return out
}

// fallback returns the leading catalog foods, ignoring category and
// preference filters.
func (p *Planner) fallback() []types.FoodItem {
	if len(p.catalog) <= p.fallbackSize {
		return p.catalog
	}
	return p.catalog[:p.fallbackSize]
}

func maxItemsFor(meal types.MealType) int {
	if meal == types.MealSnack {
		return 2
	}
	return 3
}

func newMealPlan(meal types.MealType, foods []types.SelectedItem) types.MealPlan {
	m := types.MealPlan{Meal: meal, Foods: foods}
	for _, f := range foods {
		m.Calories += f.Calories
		m.Protein += f.Protein
		m.Carbs += f.Carbs
		m.Fat += f.Fat
	}
	return m
}
