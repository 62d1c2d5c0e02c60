// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pdiddy/nutriscan/pkg/types"
)

const userColumns = `user_id, session_id, goal, calorie_target, protein_target, carb_target, fat_target, created_at`

func scanUser(row rowScanner) (types.User, error) {
	var (
		u         types.User
		goal      string
		createdAt string
	)
	err := row.Scan(&u.ID, &u.SessionID, &goal,
		&u.Targets.Calories, &u.Targets.Protein, &u.Targets.Carbs, &u.Targets.Fat, &createdAt)
	if err != nil {
		return types.User{}, err
	}
	u.Goal = types.Goal(goal)
	u.CreatedAt = parseTimestamp(createdAt)
	return u, nil
}

// CreateUser registers an anonymous user with a fresh session id.
func (s *Store) CreateUser(ctx context.Context, targets types.Targets, goal types.Goal) (types.User, error) {
	if goal == "" {
		goal = types.GoalMaintain
	}
	u := types.User{
		SessionID: uuid.NewString(),
		Goal:      goal,
		Targets:   targets,
		CreatedAt: s.now().UTC(),
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (session_id, goal, calorie_target, protein_target, carb_target, fat_target, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.SessionID, string(u.Goal), targets.Calories, targets.Protein, targets.Carbs, targets.Fat, s.timestamp())
	if err != nil {
		return types.User{}, fmt.Errorf("creating user: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return types.User{}, fmt.Errorf("reading user id: %w", err)
	}
	return u, nil
}

// GetUserBySession looks up a user by session id.
func (s *Store) GetUserBySession(ctx context.Context, sessionID string) (types.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE session_id = ?`, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return types.User{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return types.User{}, fmt.Errorf("reading user: %w", err)
	}
	return u, nil
}

// GetUser looks up a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (types.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.User{}, fmt.Errorf("reading user %d: %w", id, err)
	}
	return u, nil
}

// UpdateTargets replaces a user's targets and goal.
func (s *Store) UpdateTargets(ctx context.Context, userID int64, targets types.Targets, goal types.Goal) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET goal = ?, calorie_target = ?, protein_target = ?, carb_target = ?, fat_target = ?
		WHERE user_id = ?`,
		string(goal), targets.Calories, targets.Protein, targets.Carbs, targets.Fat, userID)
	if err != nil {
		return fmt.Errorf("updating targets: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return nil
}
