package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/underwriteiq/platform/pkg/common/models"
	"github.com/underwriteiq/platform/pkg/features"
	"github.com/underwriteiq/platform/pkg/gateway/httpclient"
)

// RegistryClient scores against a deployed model registry service over its
// row-indexed envelope protocol: the request carries one [index, features]
// row and the response one [index, {"output_feature_0": score}] row. Any
// deviation from that shape is an error; the caller decides the fallback.
type RegistryClient struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

func NewRegistryClient(url string, timeout time.Duration) *RegistryClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RegistryClient{
		url:     url,
		client:  httpclient.New(timeout),
		timeout: timeout,
	}
}

func (c *RegistryClient) Name() string { return models.ModelVersionRegistry }

type registryEnvelope struct {
	Data [][]interface{} `json:"data"`
}

type registryResponse struct {
	Data [][]json.RawMessage `json:"data"`
}

func (c *RegistryClient) Score(ctx context.Context, combined map[string]interface{}) (float64, error) {
	body, err := json.Marshal(registryEnvelope{
		Data: [][]interface{}{{0, registryPayload(combined)}},
	})
	if err != nil {
		return 0, fmt.Errorf("marshal registry request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build registry request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call model registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("model registry returned status %d", resp.StatusCode)
	}

	var parsed registryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode registry response: %w", err)
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0]) < 2 {
		return 0, fmt.Errorf("registry response has no prediction row")
	}

	return extractPrediction(parsed.Data[0][1])
}

// registryPayload is the fixed ten-key subset of the combined mapping the
// registry model was trained on. Booleans are sent as 0/1.
func registryPayload(combined map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"MIB_TOTAL_RECORDS":   features.GetInt(combined, "mib_total_records"),
		"MIB_HIT_COUNT":       features.GetInt(combined, "mib_hit_count"),
		"MIB_HAS_HIT":         boolToInt(features.GetBool(combined, "mib_has_hit")),
		"MIB_AVG_BMI":         features.GetFloat(combined, "mib_avg_bmi"),
		"RX_TOTAL_FILLS":      features.GetInt(combined, "rx_total_fills"),
		"RX_UNIQUE_DRUGS":     features.GetInt(combined, "rx_unique_drugs"),
		"RX_DRUG_OPIOID":      boolToInt(features.GetBool(combined, "rx_drug_opioid")),
		"HAS_MIB_EVIDENCE":    boolToInt(features.GetInt(combined, "mib_total_records") > 0),
		"HAS_RX_EVIDENCE":     boolToInt(features.GetInt(combined, "rx_total_fills") > 0),
		"COMBINED_RISK_SCORE": 0,
	}
}

// extractPrediction accepts either {"output_feature_0": n} or a bare number.
func extractPrediction(raw json.RawMessage) (float64, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		value, ok := obj["output_feature_0"]
		if !ok {
			return 0, fmt.Errorf("registry prediction missing output_feature_0")
		}
		var score float64
		if err := json.Unmarshal(value, &score); err != nil {
			return 0, fmt.Errorf("registry prediction is not numeric: %w", err)
		}
		return score, nil
	}

	var score float64
	if err := json.Unmarshal(raw, &score); err != nil {
		return 0, fmt.Errorf("unexpected registry prediction shape")
	}
	return score, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
