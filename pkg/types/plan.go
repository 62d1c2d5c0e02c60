// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// MealType identifies one of the four daily meal slots.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealTypes lists the meal slots in the order a day is assembled.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// ParseMealType validates s as a meal type.
func ParseMealType(s string) (MealType, error) {
	for _, m := range MealTypes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown meal type %q: use breakfast, lunch, dinner, or snack", s)
}

// MealTypeSpec configures how one meal slot is filled: its share of the
// day's calories and the food categories eligible for it.
type MealTypeSpec struct {
	Meal       MealType `json:"meal" yaml:"meal"`
	Fraction   float64  `json:"fraction" yaml:"fraction"`
	Categories []string `json:"categories" yaml:"categories"`
}

// Targets are day-level nutrition goals.
type Targets struct {
	Calories float64 `json:"calories" yaml:"calories"`
	Protein  float64 `json:"protein" yaml:"protein"`
	Carbs    float64 `json:"carbs" yaml:"carbs"`
	Fat      float64 `json:"fat" yaml:"fat"`
}

// Preferences are dietary flags applied when filtering candidate foods.
type Preferences struct {
	Vegetarian  bool `json:"vegetarian" yaml:"vegetarian"`
	HighProtein bool `json:"high_protein" yaml:"high_protein"`
}

// SubTarget is the calorie and protein budget of a single meal.
type SubTarget struct {
	Calories float64 `json:"calories" yaml:"calories"`
	Protein  float64 `json:"protein" yaml:"protein"`
}

// SelectedItem is a food chosen for a meal with its scaled nutrients.
type SelectedItem struct {
	FoodID   int64   `json:"food_id" yaml:"food_id"`
	Name     string  `json:"name" yaml:"name"`
	Servings float64 `json:"servings" yaml:"servings"`
	Calories float64 `json:"calories" yaml:"calories"`
	Protein  float64 `json:"protein" yaml:"protein"`
	Carbs    float64 `json:"carbs" yaml:"carbs"`
	Fat      float64 `json:"fat" yaml:"fat"`
}

// MealPlan is the food selection for one meal slot.
type MealPlan struct {
	Meal     MealType       `json:"meal" yaml:"meal"`
	Foods    []SelectedItem `json:"foods" yaml:"foods"`
	Calories float64        `json:"calories" yaml:"calories"`
	Protein  float64        `json:"protein" yaml:"protein"`
	Carbs    float64        `json:"carbs" yaml:"carbs"`
	Fat      float64        `json:"fat" yaml:"fat"`
}

// DayPlan holds the meals generated for one day. Day is the week index
// (0-6); single-day plans use 0.
type DayPlan struct {
	Day     int        `json:"day" yaml:"day"`
	Meals   []MealPlan `json:"meals" yaml:"meals"`
	Targets Targets    `json:"targets" yaml:"targets"`
}

// Totals sums the nutrients of every meal in the day.
func (d DayPlan) Totals() Targets {
	var t Targets
	for _, m := range d.Meals {
		t.Calories += m.Calories
		t.Protein += m.Protein
		t.Carbs += m.Carbs
		t.Fat += m.Fat
	}
	return t
}

// WeekPlan is an ordered list of up to seven day plans. Days that could
// not be generated are absent.
type WeekPlan struct {
	Days []DayPlan `json:"days" yaml:"days"`
}

// DayNames maps week indices to display names.
var DayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayName returns the display name for a week index.
func DayName(day int) string {
	if day < 0 || day >= len(DayNames) {
		return fmt.Sprintf("Day %d", day)
	}
	return DayNames[day]
}
