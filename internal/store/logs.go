// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pdiddy/nutriscan/internal/nutrition"
	"github.com/pdiddy/nutriscan/pkg/types"
)

const logSelect = `SELECT l.log_id, l.user_id, l.food_id, l.meal_type, l.servings, l.logged_at, l.log_date,
	f.food_id, f.fdc_id, f.name, f.brand, f.category, f.serving_size, f.serving_unit,
	f.calories, f.protein_g, f.carbs_g, f.fat_g, f.fiber_g, f.sugar_g, f.sodium_mg
	FROM meal_logs l JOIN foods f ON f.food_id = l.food_id`

// LogMeal records servings of a food eaten by a user on date (YYYY-MM-DD).
func (s *Store) LogMeal(ctx context.Context, userID, foodID int64, meal types.MealType, servings float64, date string) (types.MealLog, error) {
	if _, err := types.ParseMealType(string(meal)); err != nil {
		return types.MealLog{}, err
	}
	if !validServings(servings) {
		return types.MealLog{}, fmt.Errorf("servings must be positive, got %v", servings)
	}
	if _, err := time.Parse(types.DateLayout, date); err != nil {
		return types.MealLog{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", date)
	}

	loggedAt := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO meal_logs (user_id, food_id, meal_type, servings, logged_at, log_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, foodID, string(meal), servings, loggedAt.Format(time.RFC3339Nano), date)
	if err != nil {
		return types.MealLog{}, fmt.Errorf("logging meal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.MealLog{}, fmt.Errorf("reading log id: %w", err)
	}
	return types.MealLog{
		ID: id, UserID: userID, FoodID: foodID, Meal: meal,
		Servings: servings, LoggedAt: loggedAt, LogDate: date,
	}, nil
}

func (s *Store) queryLogs(ctx context.Context, query string, args ...any) ([]types.MealLog, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying meal logs: %w", err)
	}
	defer rows.Close()

	var logs []types.MealLog
	for rows.Next() {
		var (
			l        types.MealLog
			meal     string
			loggedAt string
			f        types.FoodItem
			fdcID    sql.NullInt64
			brand    sql.NullString
			category sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.UserID, &l.FoodID, &meal, &l.Servings, &loggedAt, &l.LogDate,
			&f.ID, &fdcID, &f.Name, &brand, &category, &f.ServingSize, &f.ServingUnit,
			&f.Calories, &f.ProteinG, &f.CarbsG, &f.FatG, &f.FiberG, &f.SugarG, &f.SodiumMg); err != nil {
			return nil, fmt.Errorf("scanning meal log: %w", err)
		}
		l.Meal = types.MealType(meal)
		l.LoggedAt = parseTimestamp(loggedAt)
		f.FDCID = fdcID.Int64
		f.Brand = brand.String
		f.Category = category.String
		l.Food = &f
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// LogsForDate returns a user's logs for date in the order they were recorded.
func (s *Store) LogsForDate(ctx context.Context, userID int64, date string) ([]types.MealLog, error) {
	return s.queryLogs(ctx, logSelect+` WHERE l.user_id = ? AND l.log_date = ? ORDER BY l.logged_at, l.log_id`,
		userID, date)
}

// LogsByMealType returns a user's logs for one meal slot on date.
func (s *Store) LogsByMealType(ctx context.Context, userID int64, meal types.MealType, date string) ([]types.MealLog, error) {
	return s.queryLogs(ctx, logSelect+` WHERE l.user_id = ? AND l.log_date = ? AND l.meal_type = ? ORDER BY l.logged_at, l.log_id`,
		userID, date, string(meal))
}

// DeleteLog removes a log owned by userID. It reports whether a row was
// deleted and, when one was, the date the log belonged to.
func (s *Store) DeleteLog(ctx context.Context, userID, logID int64) (date string, deleted bool, err error) {
	err = s.db.QueryRowContext(ctx, `DELETE FROM meal_logs WHERE log_id = ? AND user_id = ? RETURNING log_date`,
		logID, userID).Scan(&date)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("deleting log %d: %w", logID, err)
	}
	return date, true, nil
}

// UpdateServings changes the servings of a log owned by userID and returns
// the date the log belongs to.
func (s *Store) UpdateServings(ctx context.Context, userID, logID int64, servings float64) (string, error) {
	if !validServings(servings) {
		return "", fmt.Errorf("servings must be positive, got %v", servings)
	}
	var date string
	err := s.db.QueryRowContext(ctx, `UPDATE meal_logs SET servings = ? WHERE log_id = ? AND user_id = ? RETURNING log_date`,
		servings, logID, userID).Scan(&date)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("log %d: %w", logID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("updating log %d: %w", logID, err)
	}
	return date, nil
}

func validServings(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// LoggedFoodIDs returns the food id of every log a user has recorded,
// one entry per log.
func (s *Store) LoggedFoodIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT food_id FROM meal_logs WHERE user_id = ? ORDER BY log_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying logged foods: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning food id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DailyTotals sums nutrient x servings over a user's logs for date.
// Totals are truncated to whole numbers.
func (s *Store) DailyTotals(ctx context.Context, userID int64, date string) (types.DailyTotals, error) {
	var cal, protein, carbs, fat, fiber float64
	err := s.db.QueryRowContext(ctx,
		`SELECT coalesce(sum(f.calories * l.servings), 0),
			coalesce(sum(f.protein_g * l.servings), 0),
			coalesce(sum(f.carbs_g * l.servings), 0),
			coalesce(sum(f.fat_g * l.servings), 0),
			coalesce(sum(f.fiber_g * l.servings), 0)
		FROM meal_logs l JOIN foods f ON f.food_id = l.food_id
		WHERE l.user_id = ? AND l.log_date = ?`, userID, date).Scan(&cal, &protein, &carbs, &fat, &fiber)
	if err != nil {
		return types.DailyTotals{}, fmt.Errorf("summing logs for %s: %w", date, err)
	}
	return types.DailyTotals{
		Date:     date,
		Calories: int(cal),
		Protein:  int(protein),
		Carbs:    int(carbs),
		Fat:      int(fat),
		Fiber:    int(fiber),
	}, nil
}

// UpdateDailySummary recomputes the day's totals, compares them with the
// user's targets within tolerance, and upserts the summary row.
func (s *Store) UpdateDailySummary(ctx context.Context, userID int64, date string, tolerance float64) (types.DailySummary, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return types.DailySummary{}, err
	}
	totals, err := s.DailyTotals(ctx, userID, date)
	if err != nil {
		return types.DailySummary{}, err
	}

	summary := types.DailySummary{
		DailyTotals:      totals,
		UserID:           userID,
		CalorieTargetMet: nutrition.TargetMet(float64(totals.Calories), user.Targets.Calories, tolerance),
		ProteinTargetMet: nutrition.TargetMet(float64(totals.Protein), user.Targets.Protein, tolerance),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO daily_summaries (user_id, log_date, total_calories, total_protein, total_carbs, total_fat,
			total_fiber, calorie_target_met, protein_target_met)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, log_date) DO UPDATE SET
			total_calories = excluded.total_calories,
			total_protein = excluded.total_protein,
			total_carbs = excluded.total_carbs,
			total_fat = excluded.total_fat,
			total_fiber = excluded.total_fiber,
			calorie_target_met = excluded.calorie_target_met,
			protein_target_met = excluded.protein_target_met`,
		userID, date, totals.Calories, totals.Protein, totals.Carbs, totals.Fat, totals.Fiber,
		boolToInt(summary.CalorieTargetMet), boolToInt(summary.ProteinTargetMet))
	if err != nil {
		return types.DailySummary{}, fmt.Errorf("saving daily summary: %w", err)
	}
	return summary, nil
}

// Summaries returns stored daily summaries for a user between from and
// to inclusive, oldest first.
func (s *Store) Summaries(ctx context.Context, userID int64, from, to string) ([]types.DailySummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT log_date, total_calories, total_protein, total_carbs, total_fat, total_fiber,
			calorie_target_met, protein_target_met
		FROM daily_summaries WHERE user_id = ? AND log_date BETWEEN ? AND ? ORDER BY log_date`,
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer rows.Close()

	var out []types.DailySummary
	for rows.Next() {
		sm := types.DailySummary{UserID: userID}
		var calMet, proMet int
		if err := rows.Scan(&sm.Date, &sm.Calories, &sm.Protein, &sm.Carbs, &sm.Fat, &sm.Fiber, &calMet, &proMet); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		sm.CalorieTargetMet = calMet != 0
		sm.ProteinTargetMet = proMet != 0
		out = append(out, sm)
	}
	return out, rows.Err()
}

// DailyRange returns one DailyTotals per calendar day from from to to
// inclusive. Days without logs are present with zero totals.
func (s *Store) DailyRange(ctx context.Context, userID int64, from, to time.Time) ([]types.DailyTotals, error) {
	fromDate := from.Format(types.DateLayout)
	toDate := to.Format(types.DateLayout)

	rows, err := s.db.QueryContext(ctx,
		`SELECT l.log_date,
			sum(f.calories * l.servings), sum(f.protein_g * l.servings),
			sum(f.carbs_g * l.servings), sum(f.fat_g * l.servings), sum(f.fiber_g * l.servings)
		FROM meal_logs l JOIN foods f ON f.food_id = l.food_id
		WHERE l.user_id = ? AND l.log_date BETWEEN ? AND ?
		GROUP BY l.log_date`, userID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("querying daily totals: %w", err)
	}
	defer rows.Close()

	byDate := make(map[string]types.DailyTotals)
	for rows.Next() {
		var (
			date                           string
			cal, protein, carbs, fat, fiber float64
		)
		if err := rows.Scan(&date, &cal, &protein, &carbs, &fat, &fiber); err != nil {
			return nil, fmt.Errorf("scanning daily totals: %w", err)
		}
		byDate[date] = types.DailyTotals{
			Date: date, Calories: int(cal), Protein: int(protein),
			Carbs: int(carbs), Fat: int(fat), Fiber: int(fiber),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []types.DailyTotals
	for d := truncateDay(from); !d.After(truncateDay(to)); d = d.AddDate(0, 0, 1) {
		key := d.Format(types.DateLayout)
		t, ok := byDate[key]
		if !ok {
			t = types.DailyTotals{Date: key}
		}
		out = append(out, t)
	}
	return out, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
