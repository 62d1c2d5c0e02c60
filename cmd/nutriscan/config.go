// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/nutriscan/internal/secrets"
	"github.com/pdiddy/nutriscan/internal/store"
	"github.com/pdiddy/nutriscan/internal/usda"
	"github.com/pdiddy/nutriscan/pkg/types"
)

// sessionFile holds the session id written by "user init".
const sessionFile = "session"

// loadConfig merges configuration keys from v over the defaults.
func loadConfig(v *viper.Viper) types.AppConfig {
	cfg := types.DefaultAppConfig()

	if d := v.GetString("data_dir"); d != "" {
		cfg.Store.DataDir = d
		cfg.USDA.CacheDir = filepath.Join(d, "usda_cache")
	}

	if s := v.GetString("usda.base_url"); s != "" {
		cfg.USDA.BaseURL = s
	}
	if s := v.GetString("usda.api_key"); s != "" {
		cfg.USDA.APIKey = s
	}
	if s := v.GetString("usda.cache_dir"); s != "" {
		cfg.USDA.CacheDir = s
	}
	if d := v.GetDuration("usda.cache_ttl"); d > 0 {
		cfg.USDA.CacheTTL = d
	}
	if d := v.GetDuration("usda.timeout"); d > 0 {
		cfg.USDA.Timeout = d
	}
	if s := v.GetString("usda.user_agent"); s != "" {
		cfg.USDA.UserAgent = s
	}
	if n := v.GetInt("usda.page_size"); n > 0 {
		cfg.USDA.DefaultPageSize = n
	}
	if n := v.GetInt("usda.max_retries"); n > 0 {
		cfg.USDA.MaxRetries = n
	}

	if f := v.GetFloat64("nutrition.target_tolerance"); f > 0 {
		cfg.Nutrition.TargetTolerance = f
	}
	targets := &cfg.Nutrition.DefaultTargets
	for key, dst := range map[string]*float64{
		"nutrition.targets.calories": &targets.Calories,
		"nutrition.targets.protein":  &targets.Protein,
		"nutrition.targets.carbs":    &targets.Carbs,
		"nutrition.targets.fat":      &targets.Fat,
	} {
		if f := v.GetFloat64(key); f > 0 {
			*dst = f
		}
	}

	if v.IsSet("planner.seed") {
		cfg.Planner.Seed = v.GetUint64("planner.seed")
	}
	if n := v.GetInt("planner.fallback_size"); n > 0 {
		cfg.Planner.FallbackSize = n
	}
	return cfg
}

func appConfig() types.AppConfig {
	return loadConfig(viper.GetViper())
}

// openStore opens the database, writing migration output to w.
func openStore(ctx context.Context, cfg types.AppConfig, w io.Writer) (*store.Store, error) {
	return store.Open(ctx, cfg.Store, w)
}

// newUSDAClient builds a FoodData Central client. The API key comes from
// --api-key when the command has that flag, then the environment or
// config, then the usda-api-key secret, then DEMO_KEY.
func newUSDAClient(cmd *cobra.Command, cfg types.AppConfig) (*usda.Client, error) {
	explicit := ""
	if f := cmd.Flags().Lookup("api-key"); f != nil {
		explicit = f.Value.String()
	}
	if explicit == "" && cfg.USDA.APIKey != secrets.DemoKey {
		explicit = cfg.USDA.APIKey
	}
	cfg.USDA.APIKey = secrets.USDAKey(explicit, loadedSecrets)
	if cfg.USDA.APIKey == secrets.DemoKey {
		fmt.Fprintln(os.Stderr, "warning: using DEMO_KEY; FoodData Central limits it to 30 requests per hour")
	}

	client, err := usda.NewClient(cfg.USDA)
	if err != nil {
		return nil, err
	}
	client.Progress = os.Stderr
	return client, nil
}

// currentUser resolves the tracking user from --user, NUTRISCAN_USER, or
// the session saved in the data directory.
func currentUser(ctx context.Context, st *store.Store, cfg types.AppConfig) (types.User, error) {
	sessionID := viper.GetString("user")
	if sessionID == "" {
		data, err := os.ReadFile(filepath.Join(cfg.Store.DataDir, sessionFile))
		if err != nil && !os.IsNotExist(err) {
			return types.User{}, fmt.Errorf("reading saved session: %w", err)
		}
		sessionID = strings.TrimSpace(string(data))
	}
	if sessionID == "" {
		return types.User{}, errors.New("no user session: run \"nutriscan user init\" or pass --user")
	}
	u, err := st.GetUserBySession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("unknown session %s: run \"nutriscan user init\"", sessionID)
	}
	return u, err
}

func saveSession(cfg types.AppConfig, sessionID string) error {
	path := filepath.Join(cfg.Store.DataDir, sessionFile)
	if err := os.WriteFile(path, []byte(sessionID+"\n"), 0o600); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// dateArg returns --date or today's date.
func dateArg(cmd *cobra.Command) (string, error) {
	date, _ := cmd.Flags().GetString("date")
	if date == "" {
		return today(), nil
	}
	if _, err := parseDate(date); err != nil {
		return "", err
	}
	return date, nil
}
