// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// Goal is a user's weight goal.
type Goal string

const (
	GoalMaintain   Goal = "maintain"
	GoalLoseWeight Goal = "lose_weight"
	GoalGainMuscle Goal = "gain_muscle"
)

// ParseGoal validates s as a goal. An empty string means maintain.
func ParseGoal(s string) (Goal, error) {
	switch Goal(s) {
	case "", GoalMaintain:
		return GoalMaintain, nil
	case GoalLoseWeight, GoalGainMuscle:
		return Goal(s), nil
	}
	return "", fmt.Errorf("unknown goal %q: use maintain, lose_weight, or gain_muscle", s)
}

// DateLayout is the storage and CLI format for log dates.
const DateLayout = "2006-01-02"

// User is an anonymous tracker identified by a session id.
type User struct {
	ID        int64     `json:"id" yaml:"id"`
	SessionID string    `json:"session_id" yaml:"session_id"`
	Goal      Goal      `json:"goal" yaml:"goal"`
	Targets   Targets   `json:"targets" yaml:"targets"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// MealLog records a food eaten by a user. Food is populated when the log
// is read back with its catalog entry.
type MealLog struct {
	ID       int64     `json:"id" yaml:"id"`
	UserID   int64     `json:"user_id" yaml:"user_id"`
	FoodID   int64     `json:"food_id" yaml:"food_id"`
	Meal     MealType  `json:"meal" yaml:"meal"`
	Servings float64   `json:"servings" yaml:"servings"`
	LoggedAt time.Time `json:"logged_at" yaml:"logged_at"`
	LogDate  string    `json:"log_date" yaml:"log_date"`
	Food     *FoodItem `json:"food,omitempty" yaml:"food,omitempty"`
}

// DailyTotals are the whole-number nutrient totals of a day's logs.
type DailyTotals struct {
	Date     string `json:"date" yaml:"date"`
	Calories int    `json:"calories" yaml:"calories"`
	Protein  int    `json:"protein" yaml:"protein"`
	Carbs    int    `json:"carbs" yaml:"carbs"`
	Fat      int    `json:"fat" yaml:"fat"`
	Fiber    int    `json:"fiber" yaml:"fiber"`
}

// DailySummary is the persisted roll-up of a day's totals against the
// user's targets.
type DailySummary struct {
	DailyTotals      `yaml:",inline"`
	UserID           int64 `json:"user_id" yaml:"user_id"`
	CalorieTargetMet bool  `json:"calorie_target_met" yaml:"calorie_target_met"`
	ProteinTargetMet bool  `json:"protein_target_met" yaml:"protein_target_met"`
}

// PlanRow is one stored meal plan entry.
type PlanRow struct {
	Day      int      `json:"day" yaml:"day"`
	Meal     MealType `json:"meal" yaml:"meal"`
	FoodID   int64    `json:"food_id" yaml:"food_id"`
	FoodName string   `json:"food_name" yaml:"food_name"`
	Servings float64  `json:"servings" yaml:"servings"`
}
