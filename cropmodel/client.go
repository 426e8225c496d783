// Package cropmodel talks to the external crop prediction service.
// The model itself is an opaque HTTP collaborator; this client only shapes
// requests, applies the calibration defaults and retries transient failures
// against the one configured endpoint.
package cropmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"krishi-mitra/domain"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// Defaults the model was calibrated with, applied when a sample omits the
// optional parameters.
const (
	DefaultTemperature = 25.0
	DefaultHumidity    = 50.0
	DefaultPH          = 6.5
	DefaultRainfall    = 0.0
	DefaultTopK        = 3
)

var validate = validator.New()

type IClient interface {
	Predict(ctx context.Context, sample domain.SoilSample) (domain.CropSuggestion, error)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	retries    int
	backoff    time.Duration
	log        *slog.Logger
}

func NewClient(baseURL string, retries int, backoff time.Duration, log *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		retries:    retries,
		backoff:    backoff,
		log:        log,
	}
}

type predictRequest struct {
	Nitrogen    float64 `json:"nitrogen"`
	Phosphorus  float64 `json:"phosphorus"`
	Potassium   float64 `json:"potassium"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
	TopK        int     `json:"top_k"`
}

// Predict validates the sample, fills in calibration defaults and calls the
// model's /predict endpoint. Failed attempts are retried with a linear
// backoff; the context cancels the whole operation including waits.
func (c *Client) Predict(ctx context.Context, sample domain.SoilSample) (domain.CropSuggestion, error) {
	if err := validate.Struct(sample); err != nil {
		return domain.CropSuggestion{}, err
	}

	payload, err := json.Marshal(toRequest(sample))
	if err != nil {
		return domain.CropSuggestion{}, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.log.Warn("Retrying crop prediction",
				"attempt", attempt,
				"err", lastErr)
			select {
			case <-ctx.Done():
				return domain.CropSuggestion{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		suggestion, err := c.predictOnce(ctx, payload)
		if err == nil {
			return suggestion, nil
		}
		lastErr = err
	}
	return domain.CropSuggestion{}, fmt.Errorf("crop prediction failed after %d attempts: %w", c.retries+1, lastErr)
}

func (c *Client) predictOnce(ctx context.Context, payload []byte) (domain.CropSuggestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return domain.CropSuggestion{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.CropSuggestion{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.CropSuggestion{}, fmt.Errorf("model server returned %d: %s", resp.StatusCode, string(body))
	}

	var suggestion domain.CropSuggestion
	if err := json.NewDecoder(resp.Body).Decode(&suggestion); err != nil {
		return domain.CropSuggestion{}, err
	}
	return suggestion, nil
}

func toRequest(sample domain.SoilSample) predictRequest {
	topK := sample.TopK
	if topK == 0 {
		topK = DefaultTopK
	}
	return predictRequest{
		Nitrogen:    lo.FromPtr(sample.Nitrogen),
		Phosphorus:  lo.FromPtr(sample.Phosphorus),
		Potassium:   lo.FromPtr(sample.Potassium),
		Temperature: lo.FromPtrOr(sample.Temperature, DefaultTemperature),
		Humidity:    lo.FromPtrOr(sample.Humidity, DefaultHumidity),
		PH:          lo.FromPtrOr(sample.PH, DefaultPH),
		Rainfall:    lo.FromPtrOr(sample.Rainfall, DefaultRainfall),
		TopK:        topK,
	}
}
