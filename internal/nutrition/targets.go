// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package nutrition computes daily targets from a body profile and
// compares logged or planned intake against them.
package nutrition

import (
	"fmt"
	"math"
	"sort"

	"github.com/pdiddy/nutriscan/pkg/types"
)

// Unit conversions for imperial profile inputs.
const (
	kgPerLb = 0.453592
	cmPerIn = 2.54
)

// ActivityMultipliers maps activity levels to their TDEE multiplier.
var ActivityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// ActivityLevels returns the valid activity level names, least active first.
func ActivityLevels() []string {
	levels := make([]string, 0, len(ActivityMultipliers))
	for k := range ActivityMultipliers {
		levels = append(levels, k)
	}
	sort.Slice(levels, func(i, j int) bool {
		return ActivityMultipliers[levels[i]] < ActivityMultipliers[levels[j]]
	})
	return levels
}

// Calorie adjustments applied to TDEE per goal.
const (
	loseWeightDeficit = 500
	gainMuscleSurplus = 300
)

// Profile is the body data used to estimate energy expenditure.
type Profile struct {
	WeightLbs float64
	HeightIn  float64
	Age       int
	// Female selects the Mifflin-St Jeor female constant. The default is male.
	Female   bool
	Activity string
	Goal     types.Goal
}

// Recommendation is the result of Recommend.
type Recommendation struct {
	BMR     int           `json:"bmr" yaml:"bmr"`
	TDEE    int           `json:"tdee" yaml:"tdee"`
	Targets types.Targets `json:"targets" yaml:"targets"`
}

// Recommend estimates BMR with Mifflin-St Jeor, scales it by activity,
// adjusts for the goal, and splits the calories into macros: 0.8 g
// protein per lb, 25% of calories from fat, the remainder from carbs.
// Every figure is truncated to a whole number.
func Recommend(p Profile) (Recommendation, error) {
	if !positive(p.WeightLbs) || !positive(p.HeightIn) || p.Age <= 0 {
		return Recommendation{}, fmt.Errorf("weight, height, and age must be positive")
	}
	mult, ok := ActivityMultipliers[p.Activity]
	if !ok {
		return Recommendation{}, fmt.Errorf("unknown activity level %q: use one of %v", p.Activity, ActivityLevels())
	}

	weightKg := p.WeightLbs * kgPerLb
	heightCm := p.HeightIn * cmPerIn
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(p.Age)
	if p.Female {
		bmr -= 161
	} else {
		bmr += 5
	}
	tdee := bmr * mult

	var cals int
	switch p.Goal {
	case types.GoalLoseWeight:
		cals = int(tdee - loseWeightDeficit)
	case types.GoalGainMuscle:
		cals = int(tdee + gainMuscleSurplus)
	default:
		cals = int(tdee)
	}

	protein := int(p.WeightLbs * 0.8)
	fat := int(float64(cals) * 0.25 / 9)
	carbs := int(float64(cals-protein*4-fat*9) / 4)

	return Recommendation{
		BMR:  int(bmr),
		TDEE: int(tdee),
		Targets: types.Targets{
			Calories: float64(cals),
			Protein:  float64(protein),
			Carbs:    float64(carbs),
			Fat:      float64(fat),
		},
	}, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// TargetMet reports whether total is within tolerance (a fraction, e.g.
// 0.10) of target. A non-positive target is never met.
func TargetMet(total, target, tolerance float64) bool {
	if target <= 0 {
		return false
	}
	return math.Abs(total-target)/target <= tolerance
}
