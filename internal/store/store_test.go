// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nutriscan/pkg/types"
)

// --- test helpers ---

var fixedNow = time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), types.StoreConfig{DataDir: t.TempDir()}, io.Discard)
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { s.Close() })
	return s
}

func chicken() types.FoodItem {
	return types.FoodItem{FDCID: 171077, Name: "Chicken breast", Category: types.CategoryPoultry,
		Calories: 165, ProteinG: 31, FatG: 3.6}
}

func apple() types.FoodItem {
	return types.FoodItem{FDCID: 171688, Name: "Apple", Category: types.CategoryFruits,
		Calories: 52, ProteinG: 0.3, CarbsG: 14, FatG: 0.2, FiberG: 2.4, SugarG: 10.4, SodiumMg: 1}
}

func mustSave(t *testing.T, s *Store, f types.FoodItem) types.FoodItem {
	t.Helper()
	saved, _, err := s.SaveFood(context.Background(), f)
	require.NoError(t, err)
	return saved
}

func mustUser(t *testing.T, s *Store, targets types.Targets) types.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), targets, types.GoalMaintain)
	require.NoError(t, err)
	return u
}

// --- schema ---

func TestOpen_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(ctx, types.StoreConfig{DataDir: dir}, io.Discard)
	require.NoError(t, err)
	_, _, err = s.SaveFood(ctx, chicken())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, types.StoreConfig{DataDir: dir}, io.Discard)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.CountFoods(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(dir, dbFile))
}

// --- foods ---

func TestSchemaVersion(t *testing.T) {
	v, err := SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestSaveFood_DefaultsAndLookup(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	saved, created, err := s.SaveFood(ctx, chicken())
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, 100.0, saved.ServingSize)
	assert.Equal(t, "g", saved.ServingUnit)

	got, err := s.GetFood(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	byFDC, err := s.GetFoodByFDCID(ctx, 171077)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byFDC.ID)
}

func TestSaveFood_DeduplicatesByFDCID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := mustSave(t, s, chicken())
	renamed := chicken()
	renamed.Name = "Chicken breast (again)"
	second, created, err := s.SaveFood(ctx, renamed)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Chicken breast", second.Name)

	n, err := s.CountFoods(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSaveFood_ManualFoodsWithoutFDCID(t *testing.T) {
	s := testStore(t)
	a := mustSave(t, s, types.FoodItem{Name: "Grandma's soup", Calories: 80})
	b := mustSave(t, s, types.FoodItem{Name: "Grandma's soup", Calories: 80})
	assert.NotEqual(t, a.ID, b.ID)
	assert.Zero(t, a.FDCID)
}

func TestSaveFood_RequiresName(t *testing.T) {
	s := testStore(t)
	_, _, err := s.SaveFood(context.Background(), types.FoodItem{FDCID: 5, Name: "  "})
	assert.ErrorContains(t, err, "name is required")
}

func TestGetFood_NotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.GetFood(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetFoodByFDCID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchFoods(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	mustSave(t, s, chicken())
	mustSave(t, s, apple())
	mustSave(t, s, types.FoodItem{Name: "Chicken thigh", Calories: 209})
	mustSave(t, s, types.FoodItem{Name: "100% whole wheat bread", Calories: 247})
	mustSave(t, s, types.FoodItem{Name: "1000 island dressing", Calories: 379})

	got, err := s.SearchFoods(ctx, "CHICKEN", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Chicken breast", got[0].Name)
	assert.Equal(t, "Chicken thigh", got[1].Name)

	got, err = s.SearchFoods(ctx, "chicken", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.SearchFoods(ctx, "100%", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "100% whole wheat bread", got[0].Name)

	got, err = s.SearchFoods(ctx, "kale", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListFoodsAndCategories(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	c := mustSave(t, s, chicken())
	a := mustSave(t, s, apple())

	all, err := s.ListFoods(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, c.ID, all[0].ID)
	assert.Equal(t, a.ID, all[1].ID)

	fruit, err := s.FoodsByCategory(ctx, types.CategoryFruits, types.CategoryNuts)
	require.NoError(t, err)
	require.Len(t, fruit, 1)
	assert.Equal(t, "Apple", fruit[0].Name)

	none, err := s.FoodsByCategory(ctx)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBulkSaveFoods(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	mustSave(t, s, chicken())

	added, err := s.BulkSaveFoods(ctx, []types.FoodItem{chicken(), apple(), apple(), {Name: "Rice", Calories: 130}})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	n, err := s.CountFoods(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestBulkSaveFoods_RollsBackOnError(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.BulkSaveFoods(ctx, []types.FoodItem{apple(), {FDCID: 9, Name: ""}})
	require.Error(t, err)

	n, err := s.CountFoods(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBulkSaveFoods_RollbackWithMock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	mock.ExpectQuery("FROM foods WHERE fdc_id").
		WithArgs(int64(171688)).
		WillReturnRows(sqlmock.NewRows([]string{"food_id"}))
	mock.ExpectExec("INSERT INTO foods").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	s := New(db)
	_, err = s.BulkSaveFoods(context.Background(), []types.FoodItem{apple()})
	assert.ErrorContains(t, err, "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- users ---

func TestCreateUser(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	targets := types.Targets{Calories: 1800, Protein: 140, Carbs: 180, Fat: 60}

	u, err := s.CreateUser(ctx, targets, "")
	require.NoError(t, err)
	_, err = uuid.Parse(u.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, types.GoalMaintain, u.Goal)

	got, err := s.GetUserBySession(ctx, u.SessionID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, targets, got.Targets)
	assert.Equal(t, fixedNow, got.CreatedAt)

	other := mustUser(t, s, targets)
	assert.NotEqual(t, u.SessionID, other.SessionID)
}

func TestUpdateTargets(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := mustUser(t, s, types.Targets{Calories: 2000})

	newTargets := types.Targets{Calories: 2500, Protein: 180, Carbs: 280, Fat: 70}
	require.NoError(t, s.UpdateTargets(ctx, u.ID, newTargets, types.GoalGainMuscle))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, newTargets, got.Targets)
	assert.Equal(t, types.GoalGainMuscle, got.Goal)

	assert.ErrorIs(t, s.UpdateTargets(ctx, 999, newTargets, types.GoalMaintain), ErrNotFound)
	_, err = s.GetUserBySession(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// --- meal logs ---

func TestLogMeal_Validation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := mustUser(t, s, types.Targets{})
	f := mustSave(t, s, apple())

	_, err := s.LogMeal(ctx, u.ID, f.ID, "brunch", 1, "2026-03-02")
	assert.ErrorContains(t, err, "unknown meal type")
	_, err = s.LogMeal(ctx, u.ID, f.ID, types.MealSnack, 0, "2026-03-02")
	assert.ErrorContains(t, err, "servings must be positive")
	_, err = s.LogMeal(ctx, u.ID, f.ID, types.MealSnack, math.NaN(), "2026-03-02")
	assert.ErrorContains(t, err, "servings must be positive")
	_, err = s.LogMeal(ctx, u.ID, f.ID, types.MealSnack, 1, "03/02/2026")
	assert.ErrorContains(t, err, "invalid date")
	_, err = s.LogMeal(ctx, u.ID, 999, types.MealSnack, 1, "2026-03-02")
	assert.Error(t, err, "unknown food violates the foreign key")
}

func TestLogsForDateAndMealType(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := mustUser(t, s, types.Targets{})
	c := mustSave(t, s, chicken())
	a := mustSave(t, s, apple())

	_, err := s.LogMeal(ctx, u.ID, c.ID, types.MealLunch, 1.5, "2026-03-02")
	require.NoError(t, err)
	_, err = s.LogMeal(ctx, u.ID, a.ID, types.MealSnack, 1, "2026-03-02")
	require.NoError(t, err)
	_, err = s.LogMeal(ctx, u.ID, a.ID, types.MealSnack, 2, "2026-03-01")
	require.NoError(t, err)

	logs, err := s.LogsForDate(ctx, u.ID, "2026-03-02")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Chicken breast", logs[0].Food.Name)
	assert.Equal(t, 1.5, logs[0].Servings)
	assert.Equal(t, fixedNow, logs[0].LoggedAt)
	assert.Equal(t, types.MealSnack, logs[1].Meal)

	snacks, err := s.LogsByMealType(ctx, u.ID, types.MealSnack, "2026-03-01")
	require.NoError(t, err)
	require.Len(t, snacks, 1)
	assert.Equal(t, 2.0, snacks[0].Servings)

	ids, err := s.LoggedFoodIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{c.ID, a.ID, a.ID}, ids)
}

func TestDeleteAndUpdateLog(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := mustUser(t, s, types.Targets{})
	intruder := mustUser(t, s, types.Targets{})
	a := mustSave(t, s, apple())

	l, err := s.LogMeal(ctx, u.ID, a.ID, types.MealBreakfast, 1, "2026-03-02")
	require.NoError(t, err)

	_, err = s.UpdateServings(ctx, intruder.ID, l.ID, 3)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateServings(ctx, u.ID, l.ID, -1)
	assert.ErrorContains(t, err, "servings must be positive")
	_, err = s.UpdateServings(ctx, u.ID, l.ID, math.NaN())
	assert.ErrorContains(t, err, "servings must be positive")
	date, err := s.UpdateServings(ctx, u.ID, l.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", date)

	logs, err := s.LogsForDate(ctx, u.ID, "2026-03-02")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 3.0, logs[0].Servings)

	date, deleted, err := s.DeleteLog(ctx, intruder.ID, l.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, date)

	date, deleted, err = s.DeleteLog(ctx, u.ID, l.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, "2026-03-02", date)

	_, deleted, err = s.DeleteLog(ctx, u.ID, l.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDailyTotals(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := mustUser(t, s, types.Targets{})
	c := mustSave(t, s, chicken())
	a := mustSave(t, s, apple())

	empty, err := s.DailyTotals(ctx, u.ID, "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, types.DailyTotals{Date: "2026-03-02"}, empty)

	_, err = s.LogMeal(ctx, u.ID, c.ID, types.MealLunch, 1.5, "2026-03-02")
	require.NoError(t, err)
	_, err = s.LogMeal(ctx, u.ID, a.ID, types.MealSnack, 1, "2026-03-02")
	require.NoError(t, err)

	got, err := s.DailyTotals(ctx, u.ID, "2026-03-02")
	require.NoError(t, err)
	// 247.5 + 52 kcal, 46.5 + 0.3 g protein, 5.4 + 0.2 g fat, truncated.
	assert.Equal(t, types.DailyTotals{Date: "2026-03-02", Calories: 299, Protein: 46, Carbs: 14, Fat: 5, Fiber: 2}, got)
}

func TestUpdateDailySummary(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := mustUser(t, s, types.Targets{Calories: 300, Protein: 50})
	c := mustSave(t, s, chicken())
	a := mustSave(t, s, apple())

	_, err := s.LogMeal(ctx, u.ID, c.ID, types.MealLunch, 1.5, "2026-03-02")
	require.NoError(t, err)
	_, err = s.LogMeal(ctx, u.ID, a.ID, types.MealSnack, 1, "2026-03-02")
	require.NoError(t, err)

	sum, err := s.UpdateDailySummary(ctx, u.ID, "2026-03-02", 0.10)
	require.NoError(t, err)
	assert.True(t, sum.CalorieTargetMet)
	assert.True(t, sum.ProteinTargetMet)

	_, err = s.LogMeal(ctx, u.ID, c.ID, types.MealDinner, 2, "2026-03-02")
	require.NoError(t, err)
	sum, err = s.UpdateDailySummary(ctx, u.ID, "2026-03-02", 0.10)
	require.NoError(t, err)
	assert.False(t, sum.CalorieTargetMet)
	assert.False(t, sum.ProteinTargetMet)

	stored, err := s.Summaries(ctx, u.ID, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, sum.Calories, stored[0].Calories)
	assert.False(t, stored[0].CalorieTargetMet)

	_, err = s.UpdateDailySummary(ctx, 999, "2026-03-02", 0.10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDailyRange_FillsGaps(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := mustUser(t, s, types.Targets{})
	a := mustSave(t, s, apple())

	_, err := s.LogMeal(ctx, u.ID, a.ID, types.MealSnack, 2, "2026-03-01")
	require.NoError(t, err)
	_, err = s.LogMeal(ctx, u.ID, a.ID, types.MealSnack, 1, "2026-03-03")
	require.NoError(t, err)
	_, err = s.LogMeal(ctx, u.ID, a.ID, types.MealSnack, 1, "2026-03-09")
	require.NoError(t, err)

	from := time.Date(2026, 2, 28, 15, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	got, err := s.DailyRange(ctx, u.ID, from, to)
	require.NoError(t, err)

	require.Len(t, got, 4)
	assert.Equal(t, "2026-02-28", got[0].Date)
	assert.Zero(t, got[0].Calories)
	assert.Equal(t, 104, got[1].Calories)
	assert.Equal(t, "2026-03-02", got[2].Date)
	assert.Zero(t, got[2].Calories)
	assert.Equal(t, 52, got[3].Calories)
}

// --- plans ---

func TestSaveAndRebuildPlan(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	targets := types.Targets{Calories: 2000, Protein: 150}
	u := mustUser(t, s, targets)
	c := mustSave(t, s, chicken())
	a := mustSave(t, s, apple())

	week := types.WeekPlan{Days: []types.DayPlan{
		{Day: 0, Meals: []types.MealPlan{
			{Meal: types.MealLunch, Foods: []types.SelectedItem{{FoodID: c.ID, Name: c.Name, Servings: 2}}},
			{Meal: types.MealSnack, Foods: []types.SelectedItem{{FoodID: a.ID, Name: a.Name, Servings: 0.5}}},
		}},
		{Day: 3, Meals: []types.MealPlan{
			{Meal: types.MealBreakfast, Foods: []types.SelectedItem{
				{FoodID: a.ID, Name: a.Name, Servings: 1},
				{FoodID: c.ID, Name: c.Name, Servings: 1},
			}},
		}},
	}}

	n, err := s.SavePlan(ctx, u.ID, week)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	rows, err := s.LoadPlan(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, types.PlanRow{Day: 0, Meal: types.MealLunch, FoodID: c.ID, FoodName: "Chicken breast", Servings: 2}, rows[0])
	assert.Equal(t, 3, rows[3].Day)

	rebuilt, err := s.RebuildPlan(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rebuilt.Days, 2)
	assert.Equal(t, targets, rebuilt.Days[0].Targets)
	assert.Equal(t, 330.0, rebuilt.Days[0].Meals[0].Calories)
	assert.Equal(t, 26.0, rebuilt.Days[0].Meals[1].Calories)
	assert.Len(t, rebuilt.Days[1].Meals[0].Foods, 2)
	assert.Equal(t, 217.0, rebuilt.Days[1].Meals[0].Calories)

	// Saving again replaces the previous plan.
	_, err = s.SavePlan(ctx, u.ID, types.WeekPlan{Days: week.Days[:1]})
	require.NoError(t, err)
	rows, err = s.LoadPlan(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

// --- export ---

func TestExport(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	u := mustUser(t, s, types.Targets{})
	c := mustSave(t, s, chicken())
	_, err := s.LogMeal(ctx, u.ID, c.ID, types.MealDinner, 2, "2026-03-02")
	require.NoError(t, err)
	_, err = s.LogMeal(ctx, u.ID, c.ID, types.MealDinner, 1, "2026-04-02")
	require.NoError(t, err)

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "exports", "march.yaml")
	n, err := s.ExportYAML(ctx, u.ID, "2026-03-01", "2026-03-31", yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML []ExportEntry
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "Chicken breast", fromYAML[0].Food)
	assert.Equal(t, 330.0, fromYAML[0].Calories)

	jsonPath := filepath.Join(dir, "all.json")
	n, err = s.ExportJSON(ctx, u.ID, "2026-01-01", "2026-12-31", jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON []ExportEntry
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	require.Len(t, fromJSON, 2)
	assert.Equal(t, "2026-03-02", fromJSON[0].Date)
	assert.Equal(t, "2026-04-02", fromJSON[1].Date)
}
