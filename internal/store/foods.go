// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/nutriscan/pkg/types"
)

const foodColumns = `food_id, fdc_id, name, brand, category, serving_size, serving_unit,
	calories, protein_g, carbs_g, fat_g, fiber_g, sugar_g, sodium_mg`

const defaultSearchLimit = 20

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFood(row rowScanner) (types.FoodItem, error) {
	var (
		f        types.FoodItem
		fdcID    sql.NullInt64
		brand    sql.NullString
		category sql.NullString
	)
	err := row.Scan(&f.ID, &fdcID, &f.Name, &brand, &category, &f.ServingSize, &f.ServingUnit,
		&f.Calories, &f.ProteinG, &f.CarbsG, &f.FatG, &f.FiberG, &f.SugarG, &f.SodiumMg)
	if err != nil {
		return types.FoodItem{}, err
	}
	f.FDCID = fdcID.Int64
	f.Brand = brand.String
	f.Category = category.String
	return f, nil
}

func (s *Store) queryFoods(ctx context.Context, query string, args ...any) ([]types.FoodItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying foods: %w", err)
	}
	defer rows.Close()

	var foods []types.FoodItem
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning food: %w", err)
		}
		foods = append(foods, f)
	}
	return foods, rows.Err()
}

// SearchFoods returns foods whose name contains query, case-insensitively,
// ordered by name. limit <= 0 uses 20.
func (s *Store) SearchFoods(ctx context.Context, query string, limit int) ([]types.FoodItem, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return s.queryFoods(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE lower(name) LIKE ? ESCAPE '\' ORDER BY name LIMIT ?`,
		pattern, limit)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ListFoods returns the whole catalog in insertion order. The planner's
// fallback depends on this order being stable.
func (s *Store) ListFoods(ctx context.Context) ([]types.FoodItem, error) {
	return s.queryFoods(ctx, `SELECT `+foodColumns+` FROM foods ORDER BY food_id`)
}

// FoodsByCategory returns foods in any of the given categories.
func (s *Store) FoodsByCategory(ctx context.Context, categories ...string) ([]types.FoodItem, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(categories)), ",")
	args := make([]any, len(categories))
	for i, c := range categories {
		args[i] = c
	}
	return s.queryFoods(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE category IN (`+placeholders+`) ORDER BY food_id`, args...)
}

// CountFoods returns the catalog size.
func (s *Store) CountFoods(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM foods`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting foods: %w", err)
	}
	return n, nil
}

// GetFood looks up a food by local id.
func (s *Store) GetFood(ctx context.Context, id int64) (types.FoodItem, error) {
	f, err := scanFood(s.db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE food_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.FoodItem{}, fmt.Errorf("food %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.FoodItem{}, fmt.Errorf("reading food %d: %w", id, err)
	}
	return f, nil
}

// GetFoodByFDCID looks up a food by its FoodData Central id.
func (s *Store) GetFoodByFDCID(ctx context.Context, fdcID int64) (types.FoodItem, error) {
	f, err := scanFood(s.db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE fdc_id = ?`, fdcID))
	if errors.Is(err, sql.ErrNoRows) {
		return types.FoodItem{}, fmt.Errorf("FDC food %d: %w", fdcID, ErrNotFound)
	}
	if err != nil {
		return types.FoodItem{}, fmt.Errorf("reading FDC food %d: %w", fdcID, err)
	}
	return f, nil
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SaveFood inserts f and returns it with its id. A food whose FDC id is
// already stored is not inserted again; the stored row is returned with
// created=false.
func (s *Store) SaveFood(ctx context.Context, f types.FoodItem) (saved types.FoodItem, created bool, err error) {
	return s.saveFood(ctx, s.db, f)
}

func (s *Store) saveFood(ctx context.Context, q execQuerier, f types.FoodItem) (types.FoodItem, bool, error) {
	if strings.TrimSpace(f.Name) == "" {
		return types.FoodItem{}, false, fmt.Errorf("food name is required")
	}
	if f.FDCID != 0 {
		existing, err := scanFood(q.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE fdc_id = ?`, f.FDCID))
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return types.FoodItem{}, false, fmt.Errorf("checking FDC food %d: %w", f.FDCID, err)
		}
	}

	f = f.WithDefaults()
	res, err := q.ExecContext(ctx,
		`INSERT INTO foods (fdc_id, name, brand, category, serving_size, serving_unit,
			calories, protein_g, carbs_g, fat_g, fiber_g, sugar_g, sodium_mg, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullInt64(f.FDCID), f.Name, nullString(f.Brand), nullString(f.Category), f.ServingSize, f.ServingUnit,
		f.Calories, f.ProteinG, f.CarbsG, f.FatG, f.FiberG, f.SugarG, f.SodiumMg, s.timestamp())
	if err != nil {
		return types.FoodItem{}, false, fmt.Errorf("inserting food %q: %w", f.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.FoodItem{}, false, fmt.Errorf("reading food id: %w", err)
	}
	f.ID = id
	return f, true, nil
}

// BulkSaveFoods inserts foods in one transaction, skipping FDC ids that
// are already stored or repeated within foods. It returns the number
// added. Any failure rolls back the whole batch.
func (s *Store) BulkSaveFoods(ctx context.Context, foods []types.FoodItem) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for _, f := range foods {
		_, created, err := s.saveFood(ctx, tx, f)
		if err != nil {
			return 0, err
		}
		if created {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing foods: %w", err)
	}
	return added, nil
}
