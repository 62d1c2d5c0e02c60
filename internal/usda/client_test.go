// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package usda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nutriscan/internal/httputil"
	"github.com/pdiddy/nutriscan/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const searchBody = `{
  "totalHits": 1,
  "currentPage": 1,
  "totalPages": 1,
  "foods": [
    {
      "fdcId": 171077,
      "description": "Chicken, broilers or fryers, breast, meat only, cooked, roasted",
      "dataType": "SR Legacy",
      "foodCategory": "Poultry Products",
      "foodNutrients": [
        {"nutrientId": 1008, "nutrientName": "Energy", "unitName": "KCAL", "value": 165},
        {"nutrientId": 1003, "nutrientName": "Protein", "unitName": "G", "value": 31.02},
        {"nutrientId": 1004, "nutrientName": "Total lipid (fat)", "unitName": "G", "value": 3.57},
        {"nutrientId": 1005, "nutrientName": "Carbohydrate, by difference", "unitName": "G", "value": 0}
      ]
    }
  ]
}`

func testClient(t *testing.T, url string, cacheDir string) *Client {
	t.Helper()
	c, err := NewClient(types.USDAConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "nutriscan-test"},
		BaseURL:    url,
		APIKey:     "test-key",
		CacheDir:   cacheDir,
		CacheTTL:   time.Hour,
		MaxRetries: 2,
	})
	require.NoError(t, err)
	return c
}

func TestSearchFoods(t *testing.T) {
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/foods/search", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "nutriscan-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(searchBody))
	}))
	defer ts.Close()

	c := testClient(t, ts.URL, "")
	resp, err := c.SearchFoods(context.Background(), "chicken breast", 10, []string{"SR Legacy"})
	require.NoError(t, err)

	assert.Equal(t, "chicken breast", gotBody["query"])
	assert.Equal(t, float64(10), gotBody["pageSize"])
	assert.Equal(t, []any{"SR Legacy"}, gotBody["dataType"])

	require.Len(t, resp.Foods, 1)
	f := resp.Foods[0]
	assert.Equal(t, int64(171077), f.FDCID)
	assert.Equal(t, Category("Poultry Products"), f.FoodCategory)
	assert.Equal(t, 165.0, ParseNutrients(f).Calories)
}

func TestSearchFoods_DefaultPageSizeOmitsDataType(t *testing.T) {
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"foods": []}`))
	}))
	defer ts.Close()

	c := testClient(t, ts.URL, "")
	_, err := c.SearchFoods(context.Background(), "apple", 0, nil)
	require.NoError(t, err)

	assert.Equal(t, float64(25), gotBody["pageSize"])
	assert.NotContains(t, gotBody, "dataType")
}

func TestSearchFoods_UsesCache(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(searchBody))
	}))
	defer ts.Close()

	c := testClient(t, ts.URL, t.TempDir())
	for range 3 {
		resp, err := c.SearchFoods(context.Background(), "chicken breast", 10, nil)
		require.NoError(t, err)
		require.Len(t, resp.Foods, 1)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// A different page size is a different cache key.
	_, err := c.SearchFoods(context.Background(), "chicken breast", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSearchFoods_RetriesRateLimit(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "chicken breast", body["query"])
		w.Write([]byte(searchBody))
	}))
	defer ts.Close()

	c := testClient(t, ts.URL, "")
	resp, err := c.SearchFoods(context.Background(), "chicken breast", 10, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Foods, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"not found", http.StatusNotFound, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			c := testClient(t, ts.URL, "")
			_, err := c.GetFood(context.Background(), 1)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := testClient(t, ts.URL, t.TempDir())
	_, err := c.SearchFoods(context.Background(), "apple", 5, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestClient_ServerErrorIsNotCached(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(searchBody))
	}))
	defer ts.Close()

	c := testClient(t, ts.URL, t.TempDir())
	_, err := c.SearchFoods(context.Background(), "chicken", 5, nil)
	require.Error(t, err)

	resp, err := c.SearchFoods(context.Background(), "chicken", 5, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Foods, 1)
}

func TestGetFood_DetailShape(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/food/1750340", r.URL.Path)
		w.Write([]byte(`{
			"fdcId": 1750340,
			"description": "Apples, fuji, with skin, raw",
			"dataType": "Foundation",
			"foodCategory": {"id": 9, "code": "0900", "description": "Fruits and Fruit Juices"},
			"foodNutrients": [
				{"nutrient": {"id": 2047, "name": "Energy (Atwater General Factors)", "unitName": "kcal"}, "amount": 63},
				{"nutrient": {"id": 1003, "name": "Protein", "unitName": "g"}, "amount": 0.148},
				{"nutrient": {"id": 1005, "name": "Carbohydrate, by difference", "unitName": "g"}, "amount": 15.7}
			]
		}`))
	}))
	defer ts.Close()

	c := testClient(t, ts.URL, "")
	f, err := c.GetFood(context.Background(), 1750340)
	require.NoError(t, err)

	item := ToFoodItem(f)
	assert.Equal(t, "Apples, fuji, with skin, raw", item.Name)
	assert.Equal(t, "Fruits and Fruit Juices", item.Category)
	assert.Equal(t, 63.0, item.Calories)
	assert.Equal(t, 15.7, item.CarbsG)
	assert.Equal(t, 100.0, item.ServingSize)
	assert.Equal(t, "g", item.ServingUnit)
}

func TestGetFoods(t *testing.T) {
	var gotIDs []int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/foods", r.URL.Path)
		var body struct {
			FDCIDs []int64 `json:"fdcIds"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotIDs = body.FDCIDs
		w.Write([]byte(`[{"fdcId": 2, "description": "B"}, {"fdcId": 1, "description": "A"}]`))
	}))
	defer ts.Close()

	c := testClient(t, ts.URL, "")
	foods, err := c.GetFoods(context.Background(), []int64{2, 1})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, gotIDs)
	assert.Len(t, foods, 2)
}

func TestGetFoods_Empty(t *testing.T) {
	c := testClient(t, "http://127.0.0.1:0", "")
	foods, err := c.GetFoods(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, foods)
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(types.USDAConfig{})
	require.NoError(t, err)
	assert.Nil(t, c.Cache())
	assert.Equal(t, "https://api.nal.usda.gov/fdc/v1", c.cfg.BaseURL)
	assert.Equal(t, "DEMO_KEY", c.cfg.APIKey)
	assert.Equal(t, 25, c.cfg.DefaultPageSize)
}
