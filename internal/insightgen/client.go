// Package insightgen talks to the external natural-language insight service.
// The client is fallible by contract; callers substitute a deterministic
// local summary on any failure so users never see a hard error.
package insightgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

// TopEventContext is one ranked event embedded in the prompt context
type TopEventContext struct {
	Title      string `json:"title"`
	BaseCost   string `json:"base_cost"`
	FinalPrice string `json:"final_price"`
}

// Context is the structured numeric payload sent alongside the prompt
type Context struct {
	TotalEvents      int               `json:"total_events"`
	TotalItems       int               `json:"total_items"`
	TotalItemCost    string            `json:"total_item_cost"`
	EstimatedRevenue string            `json:"estimated_revenue"`
	CostMean         float64           `json:"cost_mean"`
	CostStdDev       float64           `json:"cost_std_dev"`
	CostDescription  string            `json:"cost_description"`
	ExpectedTotal    int               `json:"expected_total"`
	ActualTotal      int               `json:"actual_total"`
	AttendanceRate   float64           `json:"attendance_rate"`
	AverageRating    float64           `json:"average_rating"`
	TotalResponses   int               `json:"total_responses"`
	TopEvents        []TopEventContext `json:"top_events"`
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Context Context `json:"context"`
}

type generateResponse struct {
	Insight string `json:"insight"`
}

// Generate submits the prompt plus structured context and returns the
// narrative text. Any non-success status or empty payload is an error.
func (c *Client) Generate(ctx context.Context, prompt string, payload Context) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("insight service not configured")
	}

	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Context: payload,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode generate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call insight service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("insight API error: %d - %s", resp.StatusCode, string(respBody))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode insight response: %w", err)
	}
	if result.Insight == "" {
		return "", fmt.Errorf("insight service returned an empty insight")
	}

	return result.Insight, nil
}
