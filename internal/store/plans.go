// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"

	"github.com/pdiddy/nutriscan/pkg/types"
)

// SavePlan replaces a user's stored meal plan with week. Only food ids
// and servings are kept; nutrients are recomputed from the catalog when
// the plan is loaded.
func (s *Store) SavePlan(ctx context.Context, userID int64, week types.WeekPlan) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM meal_plans WHERE user_id = ?`, userID); err != nil {
		return 0, fmt.Errorf("clearing previous plan: %w", err)
	}

	createdAt := s.timestamp()
	rows := 0
	for _, day := range week.Days {
		for _, meal := range day.Meals {
			for _, item := range meal.Foods {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO meal_plans (user_id, day_of_week, meal_type, food_id, servings, created_at)
					VALUES (?, ?, ?, ?, ?, ?)`,
					userID, day.Day, string(meal.Meal), item.FoodID, item.Servings, createdAt); err != nil {
					return 0, fmt.Errorf("saving plan entry for day %d: %w", day.Day, err)
				}
				rows++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing plan: %w", err)
	}
	return rows, nil
}

// LoadPlan returns the stored plan rows for a user ordered by day, meal
// slot, and insertion.
func (s *Store) LoadPlan(ctx context.Context, userID int64) ([]types.PlanRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.day_of_week, p.meal_type, p.food_id, f.name, p.servings
		FROM meal_plans p JOIN foods f ON f.food_id = p.food_id
		WHERE p.user_id = ?
		ORDER BY p.day_of_week,
			CASE p.meal_type WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 WHEN 'dinner' THEN 2 ELSE 3 END,
			p.plan_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying plan: %w", err)
	}
	defer rows.Close()

	var out []types.PlanRow
	for rows.Next() {
		var (
			r    types.PlanRow
			meal string
		)
		if err := rows.Scan(&r.Day, &meal, &r.FoodID, &r.FoodName, &r.Servings); err != nil {
			return nil, fmt.Errorf("scanning plan row: %w", err)
		}
		r.Meal = types.MealType(meal)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RebuildPlan turns stored plan rows back into a week plan, recomputing
// nutrients from the current catalog entries.
func (s *Store) RebuildPlan(ctx context.Context, userID int64) (types.WeekPlan, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return types.WeekPlan{}, err
	}
	planRows, err := s.LoadPlan(ctx, userID)
	if err != nil {
		return types.WeekPlan{}, err
	}

	var week types.WeekPlan
	foods := make(map[int64]types.FoodItem)
	for _, r := range planRows {
		f, ok := foods[r.FoodID]
		if !ok {
			if f, err = s.GetFood(ctx, r.FoodID); err != nil {
				return types.WeekPlan{}, err
			}
			foods[r.FoodID] = f
		}

		if n := len(week.Days); n == 0 || week.Days[n-1].Day != r.Day {
			week.Days = append(week.Days, types.DayPlan{Day: r.Day, Targets: user.Targets})
		}
		day := &week.Days[len(week.Days)-1]
		if n := len(day.Meals); n == 0 || day.Meals[n-1].Meal != r.Meal {
			day.Meals = append(day.Meals, types.MealPlan{Meal: r.Meal})
		}
		meal := &day.Meals[len(day.Meals)-1]

		item := types.SelectedItem{
			FoodID:   f.ID,
			Name:     f.Name,
			Servings: r.Servings,
			Calories: f.Calories * r.Servings,
			Protein:  f.ProteinG * r.Servings,
			Carbs:    f.CarbsG * r.Servings,
			Fat:      f.FatG * r.Servings,
		}
		meal.Foods = append(meal.Foods, item)
		meal.Calories += item.Calories
		meal.Protein += item.Protein
		meal.Carbs += item.Carbs
		meal.Fat += item.Fat
	}
	return week, nil
}
