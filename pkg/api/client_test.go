package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClient_CalculatePaint(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/calculate-paint", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req PaintRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 4.5, req.Width)
		assert.Equal(t, 4, req.Walls)
		assert.Nil(t, req.Coverage)

		_ = json.NewEncoder(w).Encode(PaintResponse{
			TotalArea:        48.4,
			LitersNeeded:     8.9,
			SuggestedPackage: "2 × 3,6 L + 2 × 0,9 L",
		})
	}))
	defer ts.Close()

	client := NewClient(ts.URL+"/", "secret", time.Second, zap.NewNop())
	resp, err := client.CalculatePaint(context.Background(), PaintRequest{Width: 4.5, Height: 2.8, Walls: 4})
	require.NoError(t, err)
	assert.Equal(t, 8.9, resp.LitersNeeded)
	assert.Equal(t, "2 × 3,6 L + 2 × 0,9 L", resp.SuggestedPackage)
}

func TestClient_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "invalid input: width must be positive, got 0"})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "", time.Second, zap.NewNop())
	_, err := client.CalculateFloor(context.Background(), FloorRequest{FloorType: "laminado"})
	require.Error(t, err)
	assert.True(t, IsBadRequest(err))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Message, "width must be positive")
}

func TestClient_GetProduct(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products/CORAL_001":
			_, _ = w.Write([]byte(`{"id":"CORAL_001","name":"Coral Rende Muito","packages":[{"label":"Galão 3,6L","size":3.6,"price":"89.9"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"product not found"}`))
		}
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "", time.Second, zap.NewNop())

	product, err := client.GetProduct(context.Background(), "CORAL_001")
	require.NoError(t, err)
	require.Len(t, product.Packages, 1)
	assert.Equal(t, "89.9", product.Packages[0].Price.String())

	_, err = client.GetProduct(context.Background(), "NOPE")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.False(t, IsBadRequest(err))
}
