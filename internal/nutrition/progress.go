// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nutrition

import (
	"math"
	"sort"

	"github.com/pdiddy/nutriscan/pkg/types"
)

// MacroProgress is intake against one target.
type MacroProgress struct {
	Name      string  `json:"name" yaml:"name"`
	Total     float64 `json:"total" yaml:"total"`
	Target    float64 `json:"target" yaml:"target"`
	Percent   float64 `json:"percent" yaml:"percent"`
	Remaining float64 `json:"remaining" yaml:"remaining"`
}

// Progress compares a day's totals with targets. Percent is capped at
// 100 and zero when the target is unset; Remaining never goes below 0.
func Progress(totals types.DailyTotals, targets types.Targets) []MacroProgress {
	return []MacroProgress{
		progress("calories", float64(totals.Calories), targets.Calories),
		progress("protein", float64(totals.Protein), targets.Protein),
		progress("carbs", float64(totals.Carbs), targets.Carbs),
		progress("fat", float64(totals.Fat), targets.Fat),
	}
}

func progress(name string, total, target float64) MacroProgress {
	p := MacroProgress{Name: name, Total: total, Target: target}
	if target > 0 {
		p.Percent = math.Min(100, total/target*100)
	}
	p.Remaining = math.Max(0, target-total)
	return p
}

// Remaining returns the calories and protein left for the day, floored at 0.
func Remaining(totals types.DailyTotals, targets types.Targets) types.SubTarget {
	return types.SubTarget{
		Calories: math.Max(0, targets.Calories-float64(totals.Calories)),
		Protein:  math.Max(0, targets.Protein-float64(totals.Protein)),
	}
}

// Delta is planned totals minus targets per macro.
func Delta(planned, targets types.Targets) types.Targets {
	return types.Targets{
		Calories: planned.Calories - targets.Calories,
		Protein:  planned.Protein - targets.Protein,
		Carbs:    planned.Carbs - targets.Carbs,
		Fat:      planned.Fat - targets.Fat,
	}
}

// WeekAverage returns the mean daily totals across a week plan.
func WeekAverage(week types.WeekPlan) types.Targets {
	var sum types.Targets
	if len(week.Days) == 0 {
		return sum
	}
	for _, d := range week.Days {
		t := d.Totals()
		sum.Calories += t.Calories
		sum.Protein += t.Protein
		sum.Carbs += t.Carbs
		sum.Fat += t.Fat
	}
	n := float64(len(week.Days))
	return types.Targets{
		Calories: sum.Calories / n,
		Protein:  sum.Protein / n,
		Carbs:    sum.Carbs / n,
		Fat:      sum.Fat / n,
	}
}

// GroceryList returns the sorted unique food names across the given days.
func GroceryList(days ...types.DayPlan) []string {
	seen := make(map[string]bool)
	var names []string
	for _, d := range days {
		for _, m := range d.Meals {
			for _, f := range m.Foods {
				if !seen[f.Name] {
					seen[f.Name] = true
					names = append(names, f.Name)
				}
			}
		}
	}
	sort.Strings(names)
	return names
}
