// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nutriscan/internal/nutrition"
	"github.com/pdiddy/nutriscan/pkg/types"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Create a tracking session and manage daily targets",
	Long: `User manages the anonymous tracking user. "user init" creates a session
and saves its id in the data directory so later commands pick it up.`,
}

// --- init subcommand ---

var userInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new tracking session",
	RunE:  runUserInit,
}

func runUserInit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := appConfig()

	targets, err := targetsFromFlags(cmd, cfg.Nutrition.DefaultTargets)
	if err != nil {
		return err
	}
	goalFlag, _ := cmd.Flags().GetString("goal")
	goal, err := types.ParseGoal(goalFlag)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg, io.Discard)
	if err != nil {
		return err
	}
	defer st.Close()

	u, err := st.CreateUser(ctx, targets, goal)
	if err != nil {
		return err
	}
	if err := saveSession(cfg, u.SessionID); err != nil {
		return err
	}

	fmt.Printf("Created session %s\n", u.SessionID)
	printTargets(u.Targets, u.Goal)
	return nil
}

// --- show subcommand ---

var userShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current user and targets",
	RunE:  runUserShow,
}

func runUserShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := appConfig()
	st, err := openStore(ctx, cfg, io.Discard)
	if err != nil {
		return err
	}
	defer st.Close()

	u, err := currentUser(ctx, st, cfg)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(u)
	}
	fmt.Printf("Session:  %s\n", u.SessionID)
	fmt.Printf("Created:  %s\n", u.CreatedAt.Format(types.DateLayout))
	printTargets(u.Targets, u.Goal)
	return nil
}

// --- targets subcommand ---

var userTargetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Set daily targets directly or calculate them from body data",
	Long: `Targets updates the daily calorie and macro targets. Pass --calories,
--protein, --carbs, and --fat to set them directly, or --calculate with
--weight, --height, --age, and --activity to estimate them with the
Mifflin-St Jeor equation adjusted for --goal.`,
	RunE: runUserTargets,
}

func runUserTargets(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := appConfig()
	st, err := openStore(ctx, cfg, io.Discard)
	if err != nil {
		return err
	}
	defer st.Close()

	u, err := currentUser(ctx, st, cfg)
	if err != nil {
		return err
	}

	goal := u.Goal
	if cmd.Flags().Changed("goal") {
		g, _ := cmd.Flags().GetString("goal")
		if goal, err = types.ParseGoal(g); err != nil {
			return err
		}
	}

	var targets types.Targets
	if calculate, _ := cmd.Flags().GetBool("calculate"); calculate {
		p := profileFromFlags(cmd, goal)
		rec, err := nutrition.Recommend(p)
		if err != nil {
			return err
		}
		fmt.Printf("BMR %d kcal, TDEE %d kcal (%s)\n", rec.BMR, rec.TDEE, p.Activity)
		targets = rec.Targets
	} else if targets, err = targetsFromFlags(cmd, u.Targets); err != nil {
		return err
	}

	if err := st.UpdateTargets(ctx, u.ID, targets, goal); err != nil {
		return err
	}
	printTargets(targets, goal)
	return nil
}

// --- shared helpers ---

func targetsFromFlags(cmd *cobra.Command, base types.Targets) (types.Targets, error) {
	t := base
	for name, dst := range map[string]*float64{
		"calories": &t.Calories,
		"protein":  &t.Protein,
		"carbs":    &t.Carbs,
		"fat":      &t.Fat,
	} {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, _ := cmd.Flags().GetFloat64(name)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return types.Targets{}, fmt.Errorf("--%s must be a finite number", name)
		}
		if v < 0 {
			return types.Targets{}, fmt.Errorf("--%s must not be negative", name)
		}
		*dst = v
	}
	return t, nil
}

func profileFromFlags(cmd *cobra.Command, goal types.Goal) nutrition.Profile {
	weight, _ := cmd.Flags().GetFloat64("weight")
	height, _ := cmd.Flags().GetFloat64("height")
	age, _ := cmd.Flags().GetInt("age")
	female, _ := cmd.Flags().GetBool("female")
	activity, _ := cmd.Flags().GetString("activity")
	return nutrition.Profile{
		WeightLbs: weight,
		HeightIn:  height,
		Age:       age,
		Female:    female,
		Activity:  activity,
		Goal:      goal,
	}
}

func printTargets(t types.Targets, goal types.Goal) {
	fmt.Printf("Goal:     %s\n", goal)
	fmt.Printf("Targets:  %.0f kcal, %.0f g protein, %.0f g carbs, %.0f g fat\n",
		t.Calories, t.Protein, t.Carbs, t.Fat)
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("calories", 0, "daily calorie target")
	cmd.Flags().Float64("protein", 0, "daily protein target in grams")
	cmd.Flags().Float64("carbs", 0, "daily carbohydrate target in grams")
	cmd.Flags().Float64("fat", 0, "daily fat target in grams")
	cmd.Flags().String("goal", "", "goal: maintain, lose_weight, or gain_muscle")
}

func init() {
	addTargetFlags(userInitCmd)

	userShowCmd.Flags().Bool("json", false, "output the user as JSON")

	addTargetFlags(userTargetsCmd)
	userTargetsCmd.Flags().Bool("calculate", false, "estimate targets from body data")
	userTargetsCmd.Flags().Float64("weight", 0, "body weight in pounds")
	userTargetsCmd.Flags().Float64("height", 0, "height in inches")
	userTargetsCmd.Flags().Int("age", 0, "age in years")
	userTargetsCmd.Flags().Bool("female", false, "use the female BMR constant")
	userTargetsCmd.Flags().String("activity", "moderate",
		"activity level: "+strings.Join(nutrition.ActivityLevels(), ", "))

	userCmd.AddCommand(userInitCmd)
	userCmd.AddCommand(userShowCmd)
	userCmd.AddCommand(userTargetsCmd)

	rootCmd.AddCommand(userCmd)
}
