// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/nutriscan/internal/nutrition"
	"github.com/pdiddy/nutriscan/internal/store"
	"github.com/pdiddy/nutriscan/pkg/types"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log meals and review daily totals",
	Long: `Log records what the current user eats. Each entry is a catalog food,
a meal slot, and a number of servings on a date (default today). The
daily summary is refreshed after every change.`,
}

// --- add subcommand ---

var logAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log servings of a food",
	RunE:  runLogAdd,
}

func runLogAdd(cmd *cobra.Command, args []string) error {
	foodID, _ := cmd.Flags().GetInt64("food")
	mealFlag, _ := cmd.Flags().GetString("meal")
	servings, _ := cmd.Flags().GetFloat64("servings")
	meal, err := types.ParseMealType(mealFlag)
	if err != nil {
		return err
	}
	date, err := dateArg(cmd)
	if err != nil {
		return err
	}

	return withUser(func(ctx context.Context, st *store.Store, cfg types.AppConfig, u types.User) error {
		f, err := st.GetFood(ctx, foodID)
		if err != nil {
			return err
		}
		l, err := st.LogMeal(ctx, u.ID, f.ID, meal, servings, date)
		if err != nil {
			return err
		}
		fmt.Printf("Logged #%d: %g x %s (%s, %s) %.0f kcal\n",
			l.ID, servings, f.Name, meal, date, f.Calories*servings)
		return refreshSummary(ctx, st, cfg, u, date)
	})
}

// --- list subcommand ---

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "List logged foods for a day",
	RunE:  runLogList,
}

func runLogList(cmd *cobra.Command, args []string) error {
	date, err := dateArg(cmd)
	if err != nil {
		return err
	}
	mealFlag, _ := cmd.Flags().GetString("meal")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return withUser(func(ctx context.Context, st *store.Store, _ types.AppConfig, u types.User) error {
		var logs []types.MealLog
		if mealFlag != "" {
			meal, err := types.ParseMealType(mealFlag)
			if err != nil {
				return err
			}
			logs, err = st.LogsByMealType(ctx, u.ID, meal, date)
			if err != nil {
				return err
			}
		} else if logs, err = st.LogsForDate(ctx, u.ID, date); err != nil {
			return err
		}
		return formatLogs(logs, date, jsonOutput)
	})
}

func formatLogs(logs []types.MealLog, date string, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(logs)
	}

	if len(logs) == 0 {
		fmt.Printf("Nothing logged on %s.\n", date)
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-9s  %-40s  %8s  %7s  %7s\n", "ID", "Meal", "Food", "Servings", "kcal", "Protein")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 86))
	for _, l := range logs {
		fmt.Fprintf(os.Stdout, "%-6d  %-9s  %-40s  %8g  %7.0f  %7.1f\n",
			l.ID, l.Meal, truncate(l.Food.Name, 40), l.Servings,
			l.Food.Calories*l.Servings, l.Food.ProteinG*l.Servings)
	}
	return nil
}

// --- delete subcommand ---

var logDeleteCmd = &cobra.Command{
	Use:   "delete <log-id>",
	Short: "Delete a log entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogDelete,
}

func runLogDelete(cmd *cobra.Command, args []string) error {
	logID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid log id %q", args[0])
	}

	return withUser(func(ctx context.Context, st *store.Store, cfg types.AppConfig, u types.User) error {
		date, deleted, err := st.DeleteLog(ctx, u.ID, logID)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("log %d not found", logID)
		}
		fmt.Printf("Deleted log #%d\n", logID)
		return refreshSummary(ctx, st, cfg, u, date)
	})
}

// --- update subcommand ---

var logUpdateCmd = &cobra.Command{
	Use:   "update <log-id>",
	Short: "Change the servings of a log entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogUpdate,
}

func runLogUpdate(cmd *cobra.Command, args []string) error {
	logID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid log id %q", args[0])
	}
	servings, _ := cmd.Flags().GetFloat64("servings")

	return withUser(func(ctx context.Context, st *store.Store, cfg types.AppConfig, u types.User) error {
		date, err := st.UpdateServings(ctx, u.ID, logID, servings)
		if err != nil {
			return err
		}
		fmt.Printf("Updated log #%d to %g servings\n", logID, servings)
		return refreshSummary(ctx, st, cfg, u, date)
	})
}

// --- totals subcommand ---

var logTotalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Show a day's totals against targets",
	RunE:  runLogTotals,
}

func runLogTotals(cmd *cobra.Command, args []string) error {
	date, err := dateArg(cmd)
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return withUser(func(ctx context.Context, st *store.Store, _ types.AppConfig, u types.User) error {
		totals, err := st.DailyTotals(ctx, u.ID, date)
		if err != nil {
			return err
		}
		progress := nutrition.Progress(totals, u.Targets)

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(progress)
		}

		fmt.Printf("Totals for %s\n\n", date)
		fmt.Fprintf(os.Stdout, "%-9s  %8s  %8s  %6s  %9s\n", "Macro", "Total", "Target", "%", "Remaining")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 48))
		for _, p := range progress {
			fmt.Fprintf(os.Stdout, "%-9s  %8.0f  %8.0f  %5.0f%%  %9.0f  %s\n",
				p.Name, p.Total, p.Target, p.Percent, p.Remaining, bar(p.Percent, 20))
		}
		fmt.Printf("\nFiber: %d g\n", totals.Fiber)
		return nil
	})
}

func bar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// --- summary subcommand ---

var logSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Recompute and show stored daily summaries",
	Long: `Summary recomputes the summary for --date and lists the stored
summaries for the last --days days, marking the days whose calories and
protein landed within the configured tolerance of the targets.`,
	RunE: runLogSummary,
}

func runLogSummary(cmd *cobra.Command, args []string) error {
	date, err := dateArg(cmd)
	if err != nil {
		return err
	}
	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		days = 7
	}

	return withUser(func(ctx context.Context, st *store.Store, cfg types.AppConfig, u types.User) error {
		if _, err := st.UpdateDailySummary(ctx, u.ID, date, cfg.Nutrition.TargetTolerance); err != nil {
			return err
		}
		end, _ := parseDate(date)
		from := end.AddDate(0, 0, -(days - 1)).Format(types.DateLayout)
		summaries, err := st.Summaries(ctx, u.ID, from, date)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "%-10s  %6s  %7s  %5s  %4s  %8s  %8s\n",
			"Date", "kcal", "Protein", "Carbs", "Fat", "kcal ok", "prot ok")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 62))
		for _, s := range summaries {
			fmt.Fprintf(os.Stdout, "%-10s  %6d  %7d  %5d  %4d  %8s  %8s\n",
				s.Date, s.Calories, s.Protein, s.Carbs, s.Fat, check(s.CalorieTargetMet), check(s.ProteinTargetMet))
		}
		return nil
	})
}

func check(ok bool) string {
	if ok {
		return "yes"
	}
	return "-"
}

// --- export subcommand ---

var logExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export logs for a date range to YAML or JSON",
	RunE:  runLogExport,
}

func runLogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	out, _ := cmd.Flags().GetString("out")

	if to == "" {
		to = today()
	}
	if from == "" {
		end, err := parseDate(to)
		if err != nil {
			return err
		}
		from = end.AddDate(0, 0, -29).Format(types.DateLayout)
	}
	if out == "" {
		out = "nutriscan-logs." + format
	}

	return withUser(func(ctx context.Context, st *store.Store, _ types.AppConfig, u types.User) error {
		var (
			n   int
			err error
		)
		switch format {
		case "yaml":
			n, err = st.ExportYAML(ctx, u.ID, from, to, out)
		case "json":
			n, err = st.ExportJSON(ctx, u.ID, from, to, out)
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d entries (%s to %s) to %s\n", n, from, to, out)
		return nil
	})
}

// --- shared helpers ---

// withUser opens the store, resolves the current user, and runs fn.
func withUser(fn func(ctx context.Context, st *store.Store, cfg types.AppConfig, u types.User) error) error {
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
	return fn(ctx, st, cfg, u)
}

func refreshSummary(ctx context.Context, st *store.Store, cfg types.AppConfig, u types.User, date string) error {
	if _, err := st.UpdateDailySummary(ctx, u.ID, date, cfg.Nutrition.TargetTolerance); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not update daily summary: %v\n", err)
	}
	return nil
}

func today() string {
	return time.Now().Format(types.DateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(types.DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return t, nil
}

func init() {
	for _, c := range []*cobra.Command{logAddCmd, logListCmd, logTotalsCmd, logSummaryCmd} {
		c.Flags().String("date", "", "date as YYYY-MM-DD (default today)")
	}

	logAddCmd.Flags().Int64("food", 0, "catalog food id (see food search)")
	logAddCmd.Flags().String("meal", "", "meal: breakfast, lunch, dinner, or snack")
	logAddCmd.Flags().Float64("servings", 1, "number of servings")
	logAddCmd.MarkFlagRequired("food")
	logAddCmd.MarkFlagRequired("meal")

	logListCmd.Flags().String("meal", "", "only show one meal")
	logListCmd.Flags().Bool("json", false, "output logs as JSON")

	logUpdateCmd.Flags().Float64("servings", 1, "new number of servings")
	logUpdateCmd.MarkFlagRequired("servings")

	logTotalsCmd.Flags().Bool("json", false, "output progress as JSON")

	logSummaryCmd.Flags().Int("days", 7, "number of days to list")

	logExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	logExportCmd.Flags().String("from", "", "first date (default 30 days before --to)")
	logExportCmd.Flags().String("to", "", "last date (default today)")
	logExportCmd.Flags().String("out", "", "output file (default nutriscan-logs.<format>)")

	logCmd.AddCommand(logAddCmd)
	logCmd.AddCommand(logListCmd)
	logCmd.AddCommand(logDeleteCmd)
	logCmd.AddCommand(logUpdateCmd)
	logCmd.AddCommand(logTotalsCmd)
	logCmd.AddCommand(logSummaryCmd)
	logCmd.AddCommand(logExportCmd)

	rootCmd.AddCommand(logCmd)
}
