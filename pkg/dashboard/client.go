package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/underwriteiq/platform/pkg/common/models"
	"github.com/underwriteiq/platform/pkg/gateway/httpclient"
)

// InferenceClient calls the inference service over HTTP.
type InferenceClient struct {
	baseURL string
	client  *http.Client
}

func NewInferenceClient(baseURL string, timeout time.Duration) *InferenceClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &InferenceClient{
		baseURL: baseURL,
		client:  httpclient.New(timeout),
	}
}

// Score submits one scoring request and decodes the prediction.
func (c *InferenceClient) Score(ctx context.Context, req models.ScoreRequest) (models.PredictionResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return models.PredictionResult{}, fmt.Errorf("encoding score request: %w", err)
	}

	var result models.PredictionResult
	err = httpclient.Retry(ctx, 3, 200*time.Millisecond, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/score", bytes.NewReader(body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("inference service returned status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&result)
	})
	if err != nil {
		return models.PredictionResult{}, err
	}
	return result, nil
}

// Healthy probes the inference service health endpoint.
func (c *InferenceClient) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
