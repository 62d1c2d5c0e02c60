// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "nutriscan/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// USDAConfig holds settings for the FoodData Central client.
type USDAConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the FoodData Central API root (default https://api.nal.usda.gov/fdc/v1).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey authenticates requests. DEMO_KEY works with low rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// CacheDir stores cached API responses (default data/usda_cache).
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// CacheTTL is how long a cached response stays valid (default 30 days).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// DefaultPageSize is the search page size when none is given (default 25).
	DefaultPageSize int `json:"default_page_size" yaml:"default_page_size"`

	// MaxRetries bounds retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StoreConfig holds settings for the local SQLite database.
type StoreConfig struct {
	// DataDir contains nutriscan.db (default data).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// NutritionConfig holds target defaults and the tolerance used to decide
// whether a day met its targets.
type NutritionConfig struct {
	// TargetTolerance is the allowed relative deviation from a target (default 0.10).
	TargetTolerance float64 `json:"target_tolerance" yaml:"target_tolerance"`

	// DefaultTargets seed new users (default 2000 kcal, 150 g protein, 200 g carbs, 65 g fat).
	DefaultTargets Targets `json:"default_targets" yaml:"default_targets"`
}

// PlannerConfig holds meal-plan generation settings.
type PlannerConfig struct {
	// Seed fixes the random source for reproducible plans. Zero means
	// seed from the clock.
	Seed uint64 `json:"seed" yaml:"seed"`

	// FallbackSize is how many catalog foods a meal falls back to when no
	// food matches its filters (default 20).
	FallbackSize int `json:"fallback_size" yaml:"fallback_size"`
}

// AppConfig groups every configurable section.
type AppConfig struct {
	USDA      USDAConfig      `json:"usda" yaml:"usda"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Nutrition NutritionConfig `json:"nutrition" yaml:"nutrition"`
	Planner   PlannerConfig   `json:"planner" yaml:"planner"`
}

// DefaultAppConfig returns the configuration used when no file or
// environment overrides are present.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		USDA: USDAConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "nutriscan/0.1",
			},
			BaseURL:         "https://api.nal.usda.gov/fdc/v1",
			APIKey:          "DEMO_KEY",
			CacheDir:        "data/usda_cache",
			CacheTTL:        30 * 24 * time.Hour,
			DefaultPageSize: 25,
			MaxRetries:      3,
		},
		Store: StoreConfig{DataDir: "data"},
		Nutrition: NutritionConfig{
			TargetTolerance: 0.10,
			DefaultTargets:  Targets{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65},
		},
		Planner: PlannerConfig{FallbackSize: 20},
	}
}
