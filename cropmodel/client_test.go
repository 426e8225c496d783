package cropmodel

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"krishi-mitra/domain"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func sample() domain.SoilSample {
	return domain.SoilSample{
		Nitrogen:   lo.ToPtr(43.0),
		Phosphorus: lo.ToPtr(54.0),
		Potassium:  lo.ToPtr(23.0),
	}
}

func TestClient_Predict_AppliesDefaults(t *testing.T) {
	req := require.New(t)

	var received predictRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/predict", r.URL.Path)
		req.NoError(json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(domain.CropSuggestion{
			Predictions:   []string{"rice", "maize", "cotton"},
			Probabilities: []float64{0.7, 0.2, 0.1},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, time.Millisecond, slog.Default())
	suggestion, err := client.Predict(context.Background(), sample())
	req.NoError(err)
	req.Equal([]string{"rice", "maize", "cotton"}, suggestion.Predictions)

	req.Equal(43.0, received.Nitrogen)
	req.Equal(25.0, received.Temperature)
	req.Equal(50.0, received.Humidity)
	req.Equal(6.5, received.PH)
	req.Equal(0.0, received.Rainfall)
	req.Equal(3, received.TopK)
}

func TestClient_Predict_RetriesThenSucceeds(t *testing.T) {
	req := require.New(t)

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "model warming up", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(domain.CropSuggestion{Predictions: []string{"wheat"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, 3, time.Millisecond, slog.Default())
	suggestion, err := client.Predict(context.Background(), sample())
	req.NoError(err)
	req.Equal([]string{"wheat"}, suggestion.Predictions)
	req.Equal(int32(3), calls.Load())
}

func TestClient_Predict_ExhaustsRetries(t *testing.T) {
	req := require.New(t)

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 2, time.Millisecond, slog.Default())
	_, err := client.Predict(context.Background(), sample())
	req.Error(err)
	req.Equal(int32(3), calls.Load(), "initial attempt plus two retries")
}

func TestClient_Predict_ValidatesSample(t *testing.T) {
	req := require.New(t)

	client := NewClient("http://model.invalid", 0, time.Millisecond, slog.Default())
	_, err := client.Predict(context.Background(), domain.SoilSample{Nitrogen: lo.ToPtr(43.0)})
	req.Error(err, "missing phosphorus and potassium must be rejected before any call")
}

func TestClient_Predict_ZeroIsAValidReading(t *testing.T) {
	req := require.New(t)

	var received predictRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.NoError(json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(domain.CropSuggestion{Predictions: []string{"lentil"}})
	}))
	defer server.Close()

	client := NewClient(server.URL, 0, time.Millisecond, slog.Default())
	suggestion, err := client.Predict(context.Background(), domain.SoilSample{
		Nitrogen:   lo.ToPtr(0.0),
		Phosphorus: lo.ToPtr(30.0),
		Potassium:  lo.ToPtr(40.0),
	})
	req.NoError(err, "a zero nitrogen reading is a measurement, not a missing field")
	req.Equal([]string{"lentil"}, suggestion.Predictions)
	req.Equal(0.0, received.Nitrogen)
	req.Equal(30.0, received.Phosphorus)
}

func TestClient_Predict_ContextCancelsBackoff(t *testing.T) {
	req := require.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(server.URL, 5, time.Second, slog.Default())
	_, err := client.Predict(ctx, sample())
	req.ErrorIs(err, context.DeadlineExceeded)
}
